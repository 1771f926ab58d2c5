package contracts

import "context"

type PaymentIntentRequest struct {
	Amount   float64
	Currency string
	Metadata map[string]string
}

// PaymentIntentResult is never returned alongside an error: provider failures
// are reported through Success and Error.
type PaymentIntentResult struct {
	Success         bool
	PaymentIntentID string
	ClientSecret    string
	Status          string
	AmountInCents   int64
	Currency        string
	IsMock          bool
	Error           string
}

type CheckoutSessionRequest struct {
	Amount        float64
	Currency      string
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSessionResult struct {
	Success         bool
	SessionID       string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
	IsMock          bool
	Error           string
}

type PaymentGatewayService interface {
	CreatePaymentIntent(ctx context.Context, request *PaymentIntentRequest) *PaymentIntentResult
	ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) *PaymentIntentResult
	CreateCheckoutSession(ctx context.Context, request *CheckoutSessionRequest) *CheckoutSessionResult
	RetrieveCheckoutSession(ctx context.Context, sessionID string) *CheckoutSessionResult
	IsMock() bool
}
