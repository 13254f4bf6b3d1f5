package domain

import "time"

// Location координаты провайдера, передаются с мобильного клиента
type Location struct {
	Latitude  float64
	Longitude float64
}

// ProviderProfile represents the provider-relevant slice of a user account
type ProviderProfile struct {
	UserID int64

	// Баланс в центах, не может быть отрицательным.
	// Уменьшается только созданием выплаты, увеличивается только начислением заработка.
	BalanceCents int64

	// ID подключённого счёта в процессинге (nil, пока онбординг не начат)
	ConnectedAccountID *string

	IsAvailable      bool
	CurrentLocation  *Location
	SelectedServices []int64

	UpdatedAt time.Time
}

// HasConnectedAccount returns true if the provider finished (or started) processor onboarding
func (p *ProviderProfile) HasConnectedAccount() bool {
	return p.ConnectedAccountID != nil && *p.ConnectedAccountID != ""
}
