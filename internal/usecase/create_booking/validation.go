package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
)

const (
	legacyDateFormat = "2006-01-02"
	legacyTimeFormat = "15:04"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if _, ok := domain.ServiceName(req.ServiceID); !ok {
		return fmt.Errorf("%w: serviceID=%d", ErrUnknownService, req.ServiceID)
	}

	if req.RateUnits <= 0 {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidInput)
	}

	if req.Hours <= 0 || req.Hours > domain.MaxHoursPerBooking {
		return fmt.Errorf("%w: hours must be between 1 and %d", ErrInvalidInput, domain.MaxHoursPerBooking)
	}

	if req.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidInput)
	}

	if len(req.Address) > domain.MaxAddressLength {
		return fmt.Errorf("%w: address is too long", ErrInvalidInput)
	}

	if req.StartAt == "" && (req.StartDate == "" || req.StartTime == "") {
		return fmt.Errorf("%w: startAt is required", ErrInvalidInput)
	}

	return nil
}

// resolveStartAt вычисляет момент начала работ из запроса.
// Основной вход startAt в формате RFC3339. Пара startDate+startTime
// принимается для совместимости со старыми клиентами; если указаны оба
// варианта, их календарные даты обязаны совпадать.
func resolveStartAt(req *Request) (time.Time, error) {
	if req.StartAt == "" {
		legacy, err := parseLegacyStart(req.StartDate, req.StartTime)
		if err != nil {
			return time.Time{}, err
		}
		return legacy, nil
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: startAt must be RFC3339: %v", ErrInvalidInput, err)
	}

	if req.StartDate != "" {
		legacyDate, err := time.Parse(legacyDateFormat, req.StartDate)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: startDate must be YYYY-MM-DD: %v", ErrInvalidInput, err)
		}

		y1, m1, d1 := startAt.Date()
		y2, m2, d2 := legacyDate.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return time.Time{}, ErrStartMismatch
		}
	}

	return startAt, nil
}

// parseLegacyStart собирает момент начала из пары дата+время в UTC
func parseLegacyStart(startDate, startTime string) (time.Time, error) {
	date, err := time.Parse(legacyDateFormat, startDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: startDate must be YYYY-MM-DD: %v", ErrInvalidInput, err)
	}

	clock, err := time.Parse(legacyTimeFormat, startTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: startTime must be HH:MM: %v", ErrInvalidInput, err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		time.UTC,
	), nil
}

// validateStartAt проверяет, что до начала работ остаётся не меньше часа
func validateStartAt(startAt, now time.Time) error {
	if startAt.Before(now.Add(domain.MinBookingLeadTime)) {
		return fmt.Errorf("%w: must start at least %d minutes from now",
			ErrStartTooSoon, int(domain.MinBookingLeadTime.Minutes()))
	}
	return nil
}
