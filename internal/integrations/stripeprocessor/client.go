package stripeprocessor

import (
	"encoding/json"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/m04kA/HSM-MarketplaceService/internal/domain"
)

// Logger контракт логгера, передаётся из main
type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// Client клиент для работы с процессингом Stripe
type Client struct {
	api           *client.API
	webhookSecret string
	log           Logger
}

// NewClient создает новый экземпляр клиента Stripe
func NewClient(secretKey, webhookSecret string, log Logger) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &Client{
		api:           api,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// CreatePaymentIntent создает платёж на сумму бронирования
func (c *Client) CreatePaymentIntent(amountCents int64, bookingID int64) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(domain.DefaultCurrency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("booking_id", fmt.Sprintf("%d", bookingID))

	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, classify("CreatePaymentIntent", err)
	}

	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

// CreateConnectedAccount создает express-счёт провайдера с ручным графиком выплат
func (c *Client) CreateConnectedAccount(providerID int64) (*ConnectedAccount, error) {
	params := &stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
		Settings: &stripe.AccountSettingsParams{
			Payouts: &stripe.AccountSettingsPayoutsParams{
				Schedule: &stripe.AccountSettingsPayoutsScheduleParams{
					Interval: stripe.String("manual"),
				},
			},
		},
	}
	params.AddMetadata("provider_id", fmt.Sprintf("%d", providerID))

	account, err := c.api.Accounts.New(params)
	if err != nil {
		return nil, classify("CreateConnectedAccount", err)
	}

	return &ConnectedAccount{ID: account.ID}, nil
}

// GetConnectedAccount получает подключённый счёт вместе с признаком наличия внешних счетов
func (c *Client) GetConnectedAccount(accountID string) (*ConnectedAccount, error) {
	account, err := c.api.Accounts.GetByID(accountID, nil)
	if err != nil {
		return nil, classify("GetConnectedAccount", err)
	}

	hasExternal := account.ExternalAccounts != nil && len(account.ExternalAccounts.Data) > 0

	return &ConnectedAccount{
		ID:                  account.ID,
		HasExternalAccounts: hasExternal,
	}, nil
}

// CreateOnboardingLink создает одноразовую ссылку для прохождения онбординга
func (c *Client) CreateOnboardingLink(accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}

	link, err := c.api.AccountLinks.New(params)
	if err != nil {
		return "", classify("CreateOnboardingLink", err)
	}

	return link.URL, nil
}

// CreateLoginLink создает ссылку в кабинет express-счёта
func (c *Client) CreateLoginLink(accountID string) (string, error) {
	params := &stripe.LoginLinkParams{
		Account: stripe.String(accountID),
	}

	link, err := c.api.LoginLinks.New(params)
	if err != nil {
		return "", classify("CreateLoginLink", err)
	}

	return link.URL, nil
}

// CreatePayout создает выплату на внешний счёт подключённого счёта провайдера
func (c *Client) CreatePayout(accountID string, amountCents int64) (*PayoutResult, error) {
	params := &stripe.PayoutParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(domain.DefaultCurrency),
	}
	params.SetStripeAccount(accountID)
	params.AddExpand("destination")

	payout, err := c.api.Payouts.New(params)
	if err != nil {
		return nil, classify("CreatePayout", err)
	}

	return payoutResult(payout), nil
}

// GetPayout получает текущее состояние выплаты на стороне процессинга
func (c *Client) GetPayout(accountID, payoutID string) (*PayoutResult, error) {
	params := &stripe.PayoutParams{}
	params.SetStripeAccount(accountID)
	params.AddExpand("destination")

	payout, err := c.api.Payouts.Get(payoutID, params)
	if err != nil {
		return nil, classify("GetPayout", err)
	}

	return payoutResult(payout), nil
}

// CreateRefund создает полный возврат по payment intent
func (c *Client) CreateRefund(paymentIntentID string) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}

	refund, err := c.api.Refunds.New(params)
	if err != nil {
		return nil, classify("CreateRefund", err)
	}

	return &Refund{
		ID:          refund.ID,
		Status:      string(refund.Status),
		AmountCents: refund.Amount,
	}, nil
}

// ParseWebhookEvent проверяет подпись и разбирает событие webhook-а
func (c *Client) ParseWebhookEvent(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	parsed := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if len(event.Data.Raw) > 0 {
		var object struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &object); err != nil {
			return nil, fmt.Errorf("%w: ParseWebhookEvent - decode event object: %v", ErrUnavailable, err)
		}
		parsed.PaymentIntentID = object.ID
	}

	return parsed, nil
}

// payoutResult собирает результат выплаты вместе со снимком внешнего счёта
func payoutResult(payout *stripe.Payout) *PayoutResult {
	result := &PayoutResult{
		ID:     payout.ID,
		Status: string(payout.Status),
	}

	if payout.Destination == nil {
		return result
	}

	result.DestinationAccount = payout.Destination.ID
	result.DestinationType = string(payout.Type)

	switch {
	case payout.Destination.BankAccount != nil:
		result.DestinationType = "bank_account"
		result.DestinationLast4 = payout.Destination.BankAccount.Last4
		result.DestinationCountry = payout.Destination.BankAccount.Country
		result.DestinationCurrency = string(payout.Destination.BankAccount.Currency)
	case payout.Destination.Card != nil:
		result.DestinationType = "card"
		result.DestinationLast4 = payout.Destination.Card.Last4
		result.DestinationCountry = payout.Destination.Card.Country
		result.DestinationCurrency = string(payout.Destination.Card.Currency)
	}

	return result
}

// classify переводит ошибку Stripe в ошибку клиента.
// Ошибки запроса (невалидные параметры, незавершённый онбординг) отделяются
// от недоступности процессинга: первые не имеет смысла ретраить.
func classify(method string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeInvalidRequest, stripe.ErrorTypeCard, stripe.ErrorTypeIdempotency:
			return &RejectionError{Method: method, Message: stripeErr.Msg}
		}
		return fmt.Errorf("%w: %s - %s", ErrUnavailable, method, stripeErr.Msg)
	}

	return fmt.Errorf("%w: %s - %v", ErrUnavailable, method, err)
}
