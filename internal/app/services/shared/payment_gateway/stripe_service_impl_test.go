package payment_gateway

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

type fakeBackend struct {
	intent      *stripe.PaymentIntent
	session     *stripe.CheckoutSession
	err         error
	intentCalls []*stripe.PaymentIntentParams
	getCalls    []string
	sessionGets []string
}

func (f *fakeBackend) NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.intentCalls = append(f.intentCalls, params)
	return f.intent, f.err
}

func (f *fakeBackend) GetPaymentIntent(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.getCalls = append(f.getCalls, id)
	return f.intent, f.err
}

func (f *fakeBackend) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return f.session, f.err
}

func (f *fakeBackend) GetCheckoutSession(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.sessionGets = append(f.sessionGets, id)
	return f.session, f.err
}

func fixedClock() time.Time {
	return time.UnixMilli(1717236000000)
}

func newMockService() *stripeService {
	svc := newStripeService(nil, config.AppStripe{Currency: "usd"}, zap.NewNop())
	svc.now = fixedClock
	return svc
}

func newRealService(backend stripeBackend) *stripeService {
	return newStripeService(backend, config.AppStripe{Currency: "usd", RequestsPerSecond: 100, RequestBurst: 10}, zap.NewNop())
}

func TestIsValidSecretKey(t *testing.T) {
	assert.False(t, IsValidSecretKey(""))
	assert.False(t, IsValidSecretKey("sk_test_short"))
	assert.False(t, IsValidSecretKey("pk_"+strings.Repeat("a", 60)))
	assert.True(t, IsValidSecretKey("sk_test_"+strings.Repeat("a", 60)))
}

func TestNewStripeService_MockWithoutKey(t *testing.T) {
	gateway := NewStripeService(&config.InternalConfig{}, zap.NewNop())
	assert.True(t, gateway.IsMock())
}

func TestStripeService_MockMode(t *testing.T) {
	ctx := context.Background()
	svc := newMockService()

	t.Run("create intent returns deterministic mock ids in cents", func(t *testing.T) {
		result := svc.CreatePaymentIntent(ctx, &contracts.PaymentIntentRequest{Amount: 75.5})
		require.True(t, result.Success)
		assert.True(t, result.IsMock)
		assert.Equal(t, "mock_1717236000000", result.PaymentIntentID)
		assert.Equal(t, "mock_client_secret_1717236000000", result.ClientSecret)
		assert.Equal(t, int64(7550), result.AmountInCents)
		assert.Equal(t, "requires_payment_method", result.Status)
		assert.Equal(t, "usd", result.Currency)
	})

	t.Run("confirm always succeeds", func(t *testing.T) {
		result := svc.ConfirmPaymentIntent(ctx, "pi_anything")
		require.True(t, result.Success)
		assert.Equal(t, "succeeded", result.Status)
		assert.Equal(t, int64(5000), result.AmountInCents)
	})

	t.Run("checkout url is the success url", func(t *testing.T) {
		result := svc.CreateCheckoutSession(ctx, &contracts.CheckoutSessionRequest{
			Amount:     50,
			SuccessURL: "http://localhost:3000/payment/success?session_id=" + CheckoutSessionIDPlaceholder,
		})
		require.True(t, result.Success)
		assert.Equal(t, "mock_cs_1717236000000", result.SessionID)
		assert.Equal(t, "http://localhost:3000/payment/success?session_id=mock_cs_1717236000000", result.URL)

		retrieved := svc.RetrieveCheckoutSession(ctx, result.SessionID)
		assert.Equal(t, "paid", retrieved.PaymentStatus)
	})
}

func TestStripeService_RealMode(t *testing.T) {
	ctx := context.Background()

	t.Run("create intent forwards amount and metadata", func(t *testing.T) {
		backend := &fakeBackend{intent: &stripe.PaymentIntent{
			ID:           "pi_1",
			ClientSecret: "pi_1_secret",
			Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
			Amount:       5000,
			Currency:     stripe.CurrencyUSD,
		}}
		svc := newRealService(backend)

		result := svc.CreatePaymentIntent(ctx, &contracts.PaymentIntentRequest{
			Amount:   50,
			Metadata: map[string]string{"billId": "b1"},
		})
		require.True(t, result.Success)
		assert.False(t, result.IsMock)
		assert.Equal(t, "pi_1", result.PaymentIntentID)

		require.Len(t, backend.intentCalls, 1)
		params := backend.intentCalls[0]
		assert.Equal(t, int64(5000), *params.Amount)
		assert.Equal(t, "b1", params.Metadata["billId"])
		assert.True(t, *params.AutomaticPaymentMethods.Enabled)
	})

	t.Run("provider errors are normalized", func(t *testing.T) {
		backend := &fakeBackend{err: &stripe.Error{Msg: "Your card was declined."}}
		svc := newRealService(backend)

		result := svc.CreatePaymentIntent(ctx, &contracts.PaymentIntentRequest{Amount: 50})
		assert.False(t, result.Success)
		assert.Equal(t, "Your card was declined.", result.Error)
	})

	t.Run("confirm maps intent status", func(t *testing.T) {
		cases := []struct {
			status  stripe.PaymentIntentStatus
			success bool
			message string
		}{
			{stripe.PaymentIntentStatusSucceeded, true, ""},
			{stripe.PaymentIntentStatusRequiresPaymentMethod, false, "Payment method required"},
			{stripe.PaymentIntentStatusProcessing, false, "Payment not completed"},
		}
		for _, tc := range cases {
			backend := &fakeBackend{intent: &stripe.PaymentIntent{ID: "pi_2", Status: tc.status}}
			result := newRealService(backend).ConfirmPaymentIntent(ctx, "pi_2")
			assert.Equal(t, tc.success, result.Success, tc.status)
			assert.Equal(t, tc.message, result.Error, tc.status)
		}
	})

	t.Run("mock looking intent ids are verified with the provider", func(t *testing.T) {
		backend := &fakeBackend{intent: &stripe.PaymentIntent{ID: "mock_123", Status: stripe.PaymentIntentStatusRequiresPaymentMethod}}
		result := newRealService(backend).ConfirmPaymentIntent(ctx, "mock_123")
		assert.Equal(t, []string{"mock_123"}, backend.getCalls)
		assert.False(t, result.Success)
		assert.False(t, result.IsMock)
	})

	t.Run("mock looking checkout ids are verified with the provider", func(t *testing.T) {
		backend := &fakeBackend{session: &stripe.CheckoutSession{ID: "mock_cs_123", PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid}}
		result := newRealService(backend).RetrieveCheckoutSession(ctx, "mock_cs_123")
		assert.Equal(t, []string{"mock_cs_123"}, backend.sessionGets)
		assert.False(t, result.IsMock)
		assert.Equal(t, "unpaid", result.PaymentStatus)
	})
}
