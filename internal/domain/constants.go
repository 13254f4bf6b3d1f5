package domain

import "time"

// Business timing constants
const (
	// MinBookingLeadTime минимальный интервал между созданием бронирования и его началом
	MinBookingLeadTime = 60 * time.Minute

	// ClaimListingWindow бронирования, до начала которых осталось меньше этого интервала,
	// не показываются провайдерам в списке доступных
	ClaimListingWindow = 10 * time.Minute
)

// Money constants
const (
	// MinPayoutAmountUnits минимальная сумма выплаты в целых единицах валюты
	MinPayoutAmountUnits int64 = 20

	// CentsPerUnit центов в одной единице валюты
	CentsPerUnit int64 = 100

	// DefaultCurrency валюта всех платежей и выплат
	DefaultCurrency = "usd"
)

// Input validation constants
const (
	MaxAddressLength            = 500
	MaxCancellationReasonLength = 500
	MaxHoursPerBooking          = 24
)
