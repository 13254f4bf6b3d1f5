package domain

import "time"

// Payout represents a disbursement of accumulated earnings to a provider's external account
type Payout struct {
	ID          int64
	ProviderID  int64
	AmountCents int64
	Currency    string

	// Ссылка и статус выплаты на стороне процессинга
	PayoutID string
	Status   string

	PaymentMethod      string
	DestinationAccount string

	// Денормализованный снимок внешнего счёта на момент выплаты
	DestinationType     string
	DestinationLast4    *string
	DestinationCountry  *string
	DestinationCurrency *string

	CreatedAt time.Time
}

// PayoutTerminalStatuses статусы выплат, которые больше не требуют синхронизации с процессингом
var PayoutTerminalStatuses = []string{"paid", "failed", "canceled"}

// IsPayoutTerminal returns true if the processor-side payout status is final
func IsPayoutTerminal(status string) bool {
	for _, s := range PayoutTerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}
