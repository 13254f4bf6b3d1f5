package models

import (
	"time"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	BookingID          int64
	ActorID            int64
	CancellationReason string
}

// Response модели

// BookingResponse бронирование в ответе API
type BookingResponse struct {
	ID                    int64      `json:"id"`
	Status                string     `json:"status"`
	UserID                int64      `json:"userId"`
	ProviderID            *int64     `json:"providerId,omitempty"`
	ServiceID             int64      `json:"serviceId"`
	ServiceName           string     `json:"serviceName"`
	RateCents             int64      `json:"rateCents"`
	Hours                 int64      `json:"hours"`
	AmountCents           int64      `json:"amountCents"`
	StartAt               time.Time  `json:"startAt"`
	StartedAt             *time.Time `json:"startedAt,omitempty"`
	CompletedAt           *time.Time `json:"completedAt,omitempty"`
	CancelledAt           *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason    *string    `json:"cancellationReason,omitempty"`
	UserApprovalRequested bool       `json:"userApprovalRequested"`
	Address               string     `json:"address"`
	Latitude              float64    `json:"latitude"`
	Longitude             float64    `json:"longitude"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// PaymentResponse платёж бронирования в ответе API
type PaymentResponse struct {
	ID                int64      `json:"id"`
	Status            string     `json:"status"`
	AmountCents       int64      `json:"amountCents"`
	PaymentIntentID   string     `json:"paymentIntentId"`
	ClientSecret      string     `json:"clientSecret,omitempty"`
	RefundID          *string    `json:"refundId,omitempty"`
	RefundStatus      *string    `json:"refundStatus,omitempty"`
	RefundAmountCents *int64     `json:"refundAmountCents,omitempty"`
	RefundCreatedAt   *time.Time `json:"refundCreatedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// BookingDetailResponse бронирование с его платежами
type BookingDetailResponse struct {
	BookingResponse
	Payments []*PaymentResponse `json:"payments"`
}

// BookingListResponse список бронирований
type BookingListResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
}

// GroupedBookingsResponse бронирования пользователя, сгруппированные по жизненному циклу
type GroupedBookingsResponse struct {
	Scheduled []*BookingResponse `json:"scheduled"`
	Active    []*BookingResponse `json:"active"`
	History   []*BookingResponse `json:"history"`
}

// FromDomainBooking конвертирует domain модель в response
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:                    b.ID,
		Status:                string(b.Status),
		UserID:                b.UserID,
		ProviderID:            b.ProviderID,
		ServiceID:             b.ServiceID,
		ServiceName:           b.ServiceName,
		RateCents:             b.RateCents,
		Hours:                 b.Hours,
		AmountCents:           b.AmountCents(),
		StartAt:               b.StartAt,
		StartedAt:             b.StartedAt,
		CompletedAt:           b.CompletedAt,
		CancelledAt:           b.CancelledAt,
		CancellationReason:    b.CancellationReason,
		UserApprovalRequested: b.UserApprovalRequested,
		Address:               b.Address,
		Latitude:              b.Latitude,
		Longitude:             b.Longitude,
		CreatedAt:             b.CreatedAt,
	}
}

// FromDomainPayment конвертирует domain модель платежа в response
func FromDomainPayment(p *domain.Payment) *PaymentResponse {
	resp := &PaymentResponse{
		ID:                p.ID,
		Status:            string(p.Status),
		AmountCents:       p.AmountCents,
		PaymentIntentID:   p.PaymentIntentID,
		RefundID:          p.RefundID,
		RefundAmountCents: p.RefundAmountCents,
		RefundCreatedAt:   p.RefundCreatedAt,
		CreatedAt:         p.CreatedAt,
	}
	// Секрет нужен клиенту только для подтверждения незавершённого платежа
	if p.Status == domain.PaymentStatusPending {
		resp.ClientSecret = p.ClientSecret
	}
	if p.RefundStatus != nil {
		status := string(*p.RefundStatus)
		resp.RefundStatus = &status
	}
	return resp
}

// FromDomainBookingDetail собирает бронирование с его платежами
func FromDomainBookingDetail(b *domain.Booking, payments []*domain.Payment) *BookingDetailResponse {
	detail := &BookingDetailResponse{
		BookingResponse: *FromDomainBooking(b),
		Payments:        make([]*PaymentResponse, 0, len(payments)),
	}
	for _, p := range payments {
		detail.Payments = append(detail.Payments, FromDomainPayment(p))
	}
	return detail
}

// FromDomainBookingList конвертирует список domain моделей в response
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	result := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, FromDomainBooking(b))
	}
	return &BookingListResponse{Bookings: result}
}

// GroupByLifecycle раскладывает бронирования пользователя по группам:
// scheduled ещё не начались, active идут сейчас, history завершены или отменены
func GroupByLifecycle(bookings []*domain.Booking) *GroupedBookingsResponse {
	grouped := &GroupedBookingsResponse{
		Scheduled: make([]*BookingResponse, 0),
		Active:    make([]*BookingResponse, 0),
		History:   make([]*BookingResponse, 0),
	}

	for _, b := range bookings {
		resp := FromDomainBooking(b)
		switch b.Status {
		case domain.StatusPending:
			grouped.Scheduled = append(grouped.Scheduled, resp)
		case domain.StatusInProgress:
			grouped.Active = append(grouped.Active, resp)
		default:
			grouped.History = append(grouped.History, resp)
		}
	}

	return grouped
}
