package models

import (
	"time"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
)

// EarningResponse начисление за завершенное бронирование
type EarningResponse struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"bookingId"`
	AmountCents int64     `json:"amountCents"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PayoutResponse выплата провайдера
type PayoutResponse struct {
	ID                  int64     `json:"id"`
	PayoutID            string    `json:"payoutId"`
	Status              string    `json:"status"`
	AmountCents         int64     `json:"amountCents"`
	Currency            string    `json:"currency"`
	DestinationType     string    `json:"destinationType"`
	DestinationLast4    *string   `json:"destinationLast4,omitempty"`
	DestinationCountry  *string   `json:"destinationCountry,omitempty"`
	DestinationCurrency *string   `json:"destinationCurrency,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// SummaryResponse сводка заработка провайдера: текущий баланс,
// начисления и история выплат
type SummaryResponse struct {
	BalanceCents int64              `json:"balanceCents"`
	Earnings     []*EarningResponse `json:"earnings"`
	Payouts      []*PayoutResponse  `json:"payouts"`
}

// FromDomainEarnings конвертирует начисления в response
func FromDomainEarnings(earnings []*domain.Earning) []*EarningResponse {
	result := make([]*EarningResponse, 0, len(earnings))
	for _, e := range earnings {
		result = append(result, &EarningResponse{
			ID:          e.ID,
			BookingID:   e.BookingID,
			AmountCents: e.AmountCents,
			CreatedAt:   e.CreatedAt,
		})
	}
	return result
}

// FromDomainPayouts конвертирует выплаты в response
func FromDomainPayouts(payouts []*domain.Payout) []*PayoutResponse {
	result := make([]*PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		result = append(result, &PayoutResponse{
			ID:                  p.ID,
			PayoutID:            p.PayoutID,
			Status:              p.Status,
			AmountCents:         p.AmountCents,
			Currency:            p.Currency,
			DestinationType:     p.DestinationType,
			DestinationLast4:    p.DestinationLast4,
			DestinationCountry:  p.DestinationCountry,
			DestinationCurrency: p.DestinationCurrency,
			CreatedAt:           p.CreatedAt,
		})
	}
	return result
}
