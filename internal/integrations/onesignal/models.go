package onesignal

// notificationRequest тело запроса на отправку push-уведомления
type notificationRequest struct {
	AppID                  string            `json:"app_id"`
	IncludeExternalUserIDs []string          `json:"include_external_user_ids"`
	Headings               map[string]string `json:"headings"`
	Contents               map[string]string `json:"contents"`
	Data                   map[string]string `json:"data,omitempty"`
}

// notificationResponse ответ сервиса на отправку push-уведомления
type notificationResponse struct {
	ID     string   `json:"id"`
	Errors []string `json:"errors,omitempty"`
}
