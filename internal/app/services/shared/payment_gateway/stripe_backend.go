package payment_gateway

import (
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// stripeBackend is the subset of the Stripe API the gateway calls.
type stripeBackend interface {
	NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	GetPaymentIntent(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeClientBackend struct {
	api *client.API
}

func newStripeClientBackend(secretKey string) *stripeClientBackend {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeClientBackend{api: api}
}

func (b *stripeClientBackend) NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return b.api.PaymentIntents.New(params)
}

func (b *stripeClientBackend) GetPaymentIntent(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return b.api.PaymentIntents.Get(id, params)
}

func (b *stripeClientBackend) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return b.api.CheckoutSessions.New(params)
}

func (b *stripeClientBackend) GetCheckoutSession(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return b.api.CheckoutSessions.Get(id, params)
}
