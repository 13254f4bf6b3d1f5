package create_payout

import (
	"fmt"
	"math"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
)

// validateAmount проверяет сумму выплаты: целое число не меньше минимума
func validateAmount(amount float64) error {
	if amount != math.Trunc(amount) {
		return fmt.Errorf("%w: amount must be a whole number", ErrInvalidAmount)
	}

	if amount < float64(domain.MinPayoutAmountUnits) {
		return fmt.Errorf("%w: amount must be at least %d", ErrInvalidAmount, domain.MinPayoutAmountUnits)
	}

	return nil
}
