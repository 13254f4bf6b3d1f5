package create_booking

import (
	"time"

	createBooking "github.com/m04kA/HSM-MarketplaceService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model.
// StartAt — основной вход (RFC3339); startDate и startTime приняты
// для совместимости со старыми клиентами.
type CreateBookingRequest struct {
	ServiceID int64   `json:"serviceId"`
	Rate      int64   `json:"rate"`
	Hours     int64   `json:"hours"`
	StartAt   string  `json:"startAt,omitempty"`
	StartDate string  `json:"startDate,omitempty"`
	StartTime string  `json:"startTime,omitempty"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64  `json:"id"`
	Status          string `json:"status"`
	ServiceID       int64  `json:"serviceId"`
	ServiceName     string `json:"serviceName"`
	RateCents       int64  `json:"rateCents"`
	Hours           int64  `json:"hours"`
	AmountCents     int64  `json:"amountCents"`
	StartAt         string `json:"startAt"`
	Address         string `json:"address"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	CreatedAt       string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) *createBooking.Request {
	return &createBooking.Request{
		UserID:    userID,
		ServiceID: r.ServiceID,
		RateUnits: r.Rate,
		Hours:     r.Hours,
		StartAt:   r.StartAt,
		StartDate: r.StartDate,
		StartTime: r.StartTime,
		Address:   r.Address,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		Status:          resp.Status,
		ServiceID:       resp.ServiceID,
		ServiceName:     resp.ServiceName,
		RateCents:       resp.RateCents,
		Hours:           resp.Hours,
		AmountCents:     resp.AmountCents,
		StartAt:         resp.StartAt.Format(time.RFC3339),
		Address:         resp.Address,
		PaymentIntentID: resp.PaymentIntentID,
		ClientSecret:    resp.ClientSecret,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
