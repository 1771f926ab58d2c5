package payment_gateway

import (
	"context"
	"errors"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/utils"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	mockIntentPrefix       = "mock_"
	mockClientSecretPrefix = "mock_client_secret_"
	mockCheckoutPrefix     = "mock_cs_"

	// mockConfirmedAmountInCents is reported by every mocked confirmation.
	mockConfirmedAmountInCents = 5000

	// CheckoutSessionIDPlaceholder is substituted by Stripe in success URLs.
	CheckoutSessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

	minSecretKeyLength = 50
	secretKeyPrefix    = "sk_"
)

type stripeService struct {
	backend        stripeBackend
	limiter        *rate.Limiter
	requestTimeout time.Duration
	currency       string
	Log            *zap.Logger
	now            func() time.Time
}

// IsValidSecretKey reports whether key looks like a usable Stripe secret key.
func IsValidSecretKey(key string) bool {
	return len(key) > minSecretKeyLength && strings.HasPrefix(key, secretKeyPrefix)
}

// NewStripeService returns a Stripe backed gateway, or a mock gateway when the
// configured secret key is missing or malformed.
func NewStripeService(internalConfig *config.InternalConfig, logger *zap.Logger) contracts.PaymentGatewayService {
	stripeConfig := internalConfig.Stripe

	var backend stripeBackend
	if IsValidSecretKey(stripeConfig.SecretKey) {
		backend = newStripeClientBackend(stripeConfig.SecretKey)
		logger.Info("Stripe payment gateway initialized")
	} else {
		logger.Warn("No valid Stripe secret key found, using mock payments")
	}

	return newStripeService(backend, stripeConfig, logger)
}

func newStripeService(backend stripeBackend, stripeConfig config.AppStripe, logger *zap.Logger) *stripeService {
	limit := rate.Limit(stripeConfig.RequestsPerSecond)
	if stripeConfig.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := stripeConfig.RequestBurst
	if burst <= 0 {
		burst = 1
	}
	timeout := time.Duration(stripeConfig.RequestTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	currency := stripeConfig.Currency
	if currency == "" {
		currency = "usd"
	}

	return &stripeService{
		backend:        backend,
		limiter:        rate.NewLimiter(limit, burst),
		requestTimeout: timeout,
		currency:       currency,
		Log:            logger,
		now:            time.Now,
	}
}

func (s *stripeService) IsMock() bool {
	return s.backend == nil
}

func (s *stripeService) CreatePaymentIntent(ctx context.Context, request *contracts.PaymentIntentRequest) *contracts.PaymentIntentResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("stripeService.CreatePaymentIntent called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Float64(constvars.LoggingAmountKey, request.Amount),
	)

	currency := s.currencyOrDefault(request.Currency)
	amountInCents := utils.ToMinorUnits(request.Amount)

	if s.IsMock() {
		millis := s.now().UnixMilli()
		return &contracts.PaymentIntentResult{
			Success:         true,
			PaymentIntentID: fmt.Sprintf("%s%d", mockIntentPrefix, millis),
			ClientSecret:    fmt.Sprintf("%s%d", mockClientSecretPrefix, millis),
			Status:          string(stripe.PaymentIntentStatusRequiresPaymentMethod),
			AmountInCents:   amountInCents,
			Currency:        currency,
			IsMock:          true,
		}
	}

	callCtx, cancel, err := s.acquire(ctx)
	if err != nil {
		return s.intentFailure(requestID, "CreatePaymentIntent", err)
	}
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = callCtx
	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}

	intent, err := s.backend.NewPaymentIntent(params)
	if err != nil {
		return s.intentFailure(requestID, "CreatePaymentIntent", err)
	}

	s.Log.Info("stripeService.CreatePaymentIntent succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentIntentKey, intent.ID),
	)
	return &contracts.PaymentIntentResult{
		Success:         true,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Status:          string(intent.Status),
		AmountInCents:   intent.Amount,
		Currency:        string(intent.Currency),
	}
}

func (s *stripeService) ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) *contracts.PaymentIntentResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("stripeService.ConfirmPaymentIntent called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentIntentKey, paymentIntentID),
	)

	if s.IsMock() {
		return &contracts.PaymentIntentResult{
			Success:         true,
			PaymentIntentID: paymentIntentID,
			Status:          string(stripe.PaymentIntentStatusSucceeded),
			AmountInCents:   mockConfirmedAmountInCents,
			Currency:        s.currency,
			IsMock:          true,
		}
	}

	callCtx, cancel, err := s.acquire(ctx)
	if err != nil {
		return s.intentFailure(requestID, "ConfirmPaymentIntent", err)
	}
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = callCtx
	intent, err := s.backend.GetPaymentIntent(paymentIntentID, params)
	if err != nil {
		return s.intentFailure(requestID, "ConfirmPaymentIntent", err)
	}

	result := &contracts.PaymentIntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Status:          string(intent.Status),
		AmountInCents:   intent.Amount,
		Currency:        string(intent.Currency),
	}
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		result.Success = true
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		result.Error = "Payment method required"
	default:
		result.Error = "Payment not completed"
	}
	return result
}

func (s *stripeService) CreateCheckoutSession(ctx context.Context, request *contracts.CheckoutSessionRequest) *contracts.CheckoutSessionResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("stripeService.CreateCheckoutSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Float64(constvars.LoggingAmountKey, request.Amount),
	)

	if s.IsMock() {
		sessionID := fmt.Sprintf("%s%d", mockCheckoutPrefix, s.now().UnixMilli())
		return &contracts.CheckoutSessionResult{
			Success:       true,
			SessionID:     sessionID,
			URL:           withSessionID(request.SuccessURL, sessionID),
			PaymentStatus: string(stripe.CheckoutSessionPaymentStatusUnpaid),
			IsMock:        true,
		}
	}

	callCtx, cancel, err := s.acquire(ctx)
	if err != nil {
		return s.checkoutFailure(requestID, "CreateCheckoutSession", err)
	}
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(request.SuccessURL),
		CancelURL:  stripe.String(request.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.currencyOrDefault(request.Currency)),
					UnitAmount: stripe.Int64(utils.ToMinorUnits(request.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(request.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if request.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(request.CustomerEmail)
	}
	params.Context = callCtx
	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := s.backend.NewCheckoutSession(params)
	if err != nil {
		return s.checkoutFailure(requestID, "CreateCheckoutSession", err)
	}

	s.Log.Info("stripeService.CreateCheckoutSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingCheckoutIDKey, session.ID),
	)
	return checkoutResult(session)
}

func (s *stripeService) RetrieveCheckoutSession(ctx context.Context, sessionID string) *contracts.CheckoutSessionResult {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("stripeService.RetrieveCheckoutSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingCheckoutIDKey, sessionID),
	)

	if s.IsMock() {
		return &contracts.CheckoutSessionResult{
			Success:       true,
			SessionID:     sessionID,
			PaymentStatus: string(stripe.CheckoutSessionPaymentStatusPaid),
			IsMock:        true,
		}
	}

	callCtx, cancel, err := s.acquire(ctx)
	if err != nil {
		return s.checkoutFailure(requestID, "RetrieveCheckoutSession", err)
	}
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = callCtx
	session, err := s.backend.GetCheckoutSession(sessionID, params)
	if err != nil {
		return s.checkoutFailure(requestID, "RetrieveCheckoutSession", err)
	}
	return checkoutResult(session)
}

// acquire waits for a provider call slot and bounds the call with the request timeout.
func (s *stripeService) acquire(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	return callCtx, cancel, nil
}

func (s *stripeService) currencyOrDefault(currency string) string {
	if currency == "" {
		return s.currency
	}
	return strings.ToLower(currency)
}

func (s *stripeService) intentFailure(requestID, method string, err error) *contracts.PaymentIntentResult {
	message := providerMessage(err)
	s.Log.Error("stripeService."+method+" provider call failed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	return &contracts.PaymentIntentResult{Success: false, Error: message}
}

func (s *stripeService) checkoutFailure(requestID, method string, err error) *contracts.CheckoutSessionResult {
	message := providerMessage(err)
	s.Log.Error("stripeService."+method+" provider call failed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	return &contracts.CheckoutSessionResult{Success: false, Error: message}
}

func checkoutResult(session *stripe.CheckoutSession) *contracts.CheckoutSessionResult {
	result := &contracts.CheckoutSessionResult{
		Success:       true,
		SessionID:     session.ID,
		URL:           session.URL,
		PaymentStatus: string(session.PaymentStatus),
	}
	if session.PaymentIntent != nil {
		result.PaymentIntentID = session.PaymentIntent.ID
	}
	return result
}

// providerMessage extracts the human readable message of a Stripe error.
func providerMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}

// withSessionID fills the Stripe session placeholder of a success URL.
func withSessionID(successURL, sessionID string) string {
	return strings.ReplaceAll(successURL, CheckoutSessionIDPlaceholder, sessionID)
}
