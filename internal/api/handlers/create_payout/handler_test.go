package create_payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	createPayout "github.com/m04kA/HSM-MarketplaceService/internal/usecase/create_payout"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type stubUseCase struct {
	resp *createPayout.Response
	err  error

	gotRequest *createPayout.Request
}

func (s *stubUseCase) Execute(ctx context.Context, req *createPayout.Request) (*createPayout.Response, error) {
	s.gotRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

const testSecret = "test-secret"

func providerToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "9",
		"roles": []string{"provider"},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func serve(t *testing.T, uc *stubUseCase, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(uc, nopLogger{})
	wrapped := middleware.Auth(testSecret)(http.HandlerFunc(h.Handle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/provider/payouts", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+providerToken(t))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	last4 := "4242"
	uc := &stubUseCase{resp: &createPayout.Response{
		ID:               11,
		PayoutID:         "po_123",
		Status:           "pending",
		AmountCents:      2000,
		Currency:         "usd",
		DestinationType:  "bank_account",
		DestinationLast4: &last4,
		CreatedAt:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}}

	rec := serve(t, uc, `{"amount": 20}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.gotRequest)
	assert.Equal(t, int64(9), uc.gotRequest.ProviderID, "provider id must come from the token")
	assert.Equal(t, float64(20), uc.gotRequest.Amount)

	var resp PayoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "po_123", resp.PayoutID)
	assert.Equal(t, "2026-03-01T10:00:00Z", resp.CreatedAt)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid amount", createPayout.ErrInvalidAmount, http.StatusBadRequest},
		{"no payout account", createPayout.ErrNoPayoutAccount, http.StatusConflict},
		{"no external account", createPayout.ErrNoExternalAccount, http.StatusConflict},
		{"insufficient balance", createPayout.ErrInsufficientBalance, http.StatusConflict},
		{"processor rejected", fmt.Errorf("%w: account restricted", createPayout.ErrProcessorRejected), http.StatusUnprocessableEntity},
		{"processor unavailable", createPayout.ErrProcessorUnavailable, http.StatusBadGateway},
		{"internal", createPayout.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &stubUseCase{err: tt.err}, `{"amount": 20}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandle_RejectedMessagePassedThrough(t *testing.T) {
	// сообщение процессинга отдаётся клиенту как есть, без внутренних обёрток
	uc := &stubUseCase{err: &createPayout.RejectionError{Message: "account restricted"}}

	rec := serve(t, uc, `{"amount": 20}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "account restricted")
	assert.NotContains(t, rec.Body.String(), "create_payout")
}

func TestHandle_RejectedWithoutDetailsGetsGenericMessage(t *testing.T) {
	uc := &stubUseCase{err: createPayout.ErrProcessorRejected}

	rec := serve(t, uc, `{"amount": 20}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), msgProcessorRejected)
	assert.NotContains(t, rec.Body.String(), "create_payout")
}

func TestHandle_BadBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"broken json", `{"amount":`},
		{"unknown field", `{"amount": 20, "currency": "eur"}`},
		{"wrong type", `{"amount": "twenty"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &stubUseCase{}, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
