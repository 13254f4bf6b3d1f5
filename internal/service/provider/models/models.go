package models

// UpdateAvailabilityRequest запрос на обновление доступности провайдера
type UpdateAvailabilityRequest struct {
	ProviderID int64
	Latitude   float64
	Longitude  float64
	ServiceIDs []int64
}

// LinkResponse одноразовая ссылка процессинга (онбординг или вход в кабинет)
type LinkResponse struct {
	URL string `json:"url"`
}

// AvailabilityResponse текущее состояние доступности провайдера
type AvailabilityResponse struct {
	IsAvailable bool    `json:"isAvailable"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ServiceIDs  []int64 `json:"serviceIds"`
}
