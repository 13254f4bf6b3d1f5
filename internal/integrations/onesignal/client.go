package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const notificationsURL = "https://api.onesignal.com/notifications"

// Logger контракт логгера, передаётся из main
type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
}

// Client клиент для отправки push-уведомлений через OneSignal.
// Уведомления best-effort: вызывающий код логирует ошибку и продолжает работу.
type Client struct {
	appID      string
	restAPIKey string
	httpClient *retryablehttp.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента OneSignal
func NewClient(appID, restAPIKey string, timeout time.Duration, log Logger) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.HTTPClient.Timeout = timeout
	httpClient.RetryMax = 3
	httpClient.Logger = nil

	return &Client{
		appID:      appID,
		restAPIKey: restAPIKey,
		httpClient: httpClient,
		log:        log,
	}
}

// Notify отправляет push-уведомление пользователю по его внутреннему ID
func (c *Client) Notify(ctx context.Context, userID int64, title, message string, data map[string]string) error {
	body, err := json.Marshal(notificationRequest{
		AppID:                  c.appID,
		IncludeExternalUserIDs: []string{strconv.FormatInt(userID, 10)},
		Headings:               map[string]string{"en": title},
		Contents:               map[string]string{"en": message},
		Data:                   data,
	})
	if err != nil {
		return fmt.Errorf("%w: Notify - marshal request: %v", ErrInternal, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, notificationsURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: Notify - create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.restAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: Notify - execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: Notify - unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var result notificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: Notify - decode response: %v", ErrInvalidResponse, err)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: Notify - service errors: %v", ErrInvalidResponse, result.Errors)
	}

	c.log.Info("Push notification %s sent to user_id=%d", result.ID, userID)

	return nil
}
