package create_payout

import (
	"context"

	createPayout "github.com/m04kA/HSM-MarketplaceService/internal/usecase/create_payout"
)

type CreatePayoutUseCase interface {
	Execute(ctx context.Context, req *createPayout.Request) (*createPayout.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
