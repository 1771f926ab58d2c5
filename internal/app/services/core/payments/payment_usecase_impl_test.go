package payments

import (
	"context"
	"errors"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryStore struct {
	bills        map[primitive.ObjectID]models.Bill
	appointments map[primitive.ObjectID]models.Appointment
	failConfirm  error
}

type memoryTransactionManager struct {
	store *memoryStore
}

func (m *memoryTransactionManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	bills := make(map[primitive.ObjectID]models.Bill, len(m.store.bills))
	for k, v := range m.store.bills {
		bills[k] = v
	}
	appointments := make(map[primitive.ObjectID]models.Appointment, len(m.store.appointments))
	for k, v := range m.store.appointments {
		appointments[k] = v
	}
	if err := fn(ctx); err != nil {
		m.store.bills = bills
		m.store.appointments = appointments
		return err
	}
	return nil
}

// memoryBillRepository implements the calls the payment flows make. The
// embedded interface panics if anything else is reached.
type memoryBillRepository struct {
	contracts.BillRepository
	store *memoryStore
}

func (r *memoryBillRepository) FindByID(ctx context.Context, billID primitive.ObjectID) (*models.Bill, error) {
	bill, ok := r.store.bills[billID]
	if !ok {
		return nil, nil
	}
	return &bill, nil
}

func (r *memoryBillRepository) MarkPaid(ctx context.Context, billID primitive.ObjectID, payment *models.BillPayment) (*models.Bill, error) {
	bill, ok := r.store.bills[billID]
	if !ok || bill.IsPaid() {
		return nil, nil
	}
	paidAt := payment.PaidAt
	bill.Status = models.BillStatusPaid
	bill.PaidAt = &paidAt
	bill.TransactionID = payment.TransactionID
	bill.PaymentDetails = payment.PaymentDetails
	if payment.PaymentMethod != "" {
		bill.PaymentMethod = payment.PaymentMethod
	}
	r.store.bills[billID] = bill
	return &bill, nil
}

func (r *memoryBillRepository) SumByStatus(ctx context.Context, query models.BillQuery) (map[string]models.StatusAmount, error) {
	result := map[string]models.StatusAmount{}
	for _, bill := range r.store.bills {
		amount := result[bill.Status]
		amount.Count++
		amount.TotalAmount += bill.Amount
		amount.AverageAmount = amount.TotalAmount / float64(amount.Count)
		result[bill.Status] = amount
	}
	return result, nil
}

type memoryAppointmentRepository struct {
	contracts.AppointmentRepository
	store *memoryStore
}

func (r *memoryAppointmentRepository) UpdateStatusIf(ctx context.Context, appointmentID primitive.ObjectID, from, status string) (bool, error) {
	if r.store.failConfirm != nil {
		return false, r.store.failConfirm
	}
	appointment, ok := r.store.appointments[appointmentID]
	if !ok || appointment.Status != from {
		return false, nil
	}
	appointment.Status = status
	r.store.appointments[appointmentID] = appointment
	return true, nil
}

type stubGateway struct {
	intent         *contracts.PaymentIntentResult
	confirmation   *contracts.PaymentIntentResult
	session        *contracts.CheckoutSessionResult
	retrieved      *contracts.CheckoutSessionResult
	intentRequest  *contracts.PaymentIntentRequest
	sessionRequest *contracts.CheckoutSessionRequest
}

func (g *stubGateway) CreatePaymentIntent(ctx context.Context, request *contracts.PaymentIntentRequest) *contracts.PaymentIntentResult {
	g.intentRequest = request
	return g.intent
}

func (g *stubGateway) ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) *contracts.PaymentIntentResult {
	return g.confirmation
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, request *contracts.CheckoutSessionRequest) *contracts.CheckoutSessionResult {
	g.sessionRequest = request
	return g.session
}

func (g *stubGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) *contracts.CheckoutSessionResult {
	return g.retrieved
}

func (g *stubGateway) IsMock() bool {
	return g.intent != nil && g.intent.IsMock
}

type recordingPublisher struct {
	keys []string
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	p.keys = append(p.keys, routingKey)
	return nil
}

func clientMessage(err error) string {
	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		return customErr.ClientMessage
	}
	return ""
}

type paymentFixture struct {
	usecase       *paymentUsecase
	store         *memoryStore
	gateway       *stubGateway
	publisher     *recordingPublisher
	billID        primitive.ObjectID
	appointmentID primitive.ObjectID
	now           time.Time
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	store := &memoryStore{
		bills:        map[primitive.ObjectID]models.Bill{},
		appointments: map[primitive.ObjectID]models.Appointment{},
	}
	appointmentID := primitive.NewObjectID()
	billID := primitive.NewObjectID()
	store.appointments[appointmentID] = models.Appointment{
		ID:     appointmentID,
		Status: models.AppointmentStatusScheduled,
		BillID: &billID,
	}
	store.bills[billID] = models.Bill{
		ID:            billID,
		AppointmentID: appointmentID,
		UserID:        primitive.NewObjectID(),
		DoctorID:      primitive.NewObjectID(),
		Amount:        150,
		Status:        models.BillStatusUnpaid,
	}

	gateway := &stubGateway{
		intent: &contracts.PaymentIntentResult{
			Success:         true,
			PaymentIntentID: "mock_1715000000000",
			ClientSecret:    "mock_client_secret_1715000000000",
			Status:          "requires_payment_method",
			AmountInCents:   15000,
			Currency:        "usd",
			IsMock:          true,
		},
		confirmation: &contracts.PaymentIntentResult{Success: true, Status: "succeeded"},
	}
	publisher := &recordingPublisher{}

	internalConfig := &config.InternalConfig{}
	internalConfig.Stripe.SuccessURL = "http://localhost:3000/payment/success"
	internalConfig.Stripe.CancelURL = "http://localhost:3000/payment/cancel"

	usecase := newPaymentUsecase(
		&memoryTransactionManager{store: store},
		&memoryBillRepository{store: store},
		&memoryAppointmentRepository{store: store},
		gateway,
		publisher,
		internalConfig,
		zap.NewNop(),
	)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	usecase.now = func() time.Time { return now }

	return &paymentFixture{
		usecase:       usecase,
		store:         store,
		gateway:       gateway,
		publisher:     publisher,
		billID:        billID,
		appointmentID: appointmentID,
		now:           now,
	}
}

func TestPaymentUsecase_ProcessPayment(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")

	result, err := f.usecase.ProcessPayment(ctx, &requests.ProcessPayment{
		BillID:         f.billID.Hex(),
		PaymentMethod:  models.PaymentMethodCard,
		PaymentDetails: map[string]interface{}{"last4": "4242"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.BillStatusPaid, result.Bill.Status)
	assert.Equal(t, models.PaymentMethodCard, result.Bill.PaymentMethod)
	assert.Equal(t, "mock_1715000000000", result.Bill.TransactionID)
	assert.Equal(t, "4242", result.Bill.PaymentDetails["last4"])
	assert.Equal(t, "mock_1715000000000", result.Bill.PaymentDetails["stripePaymentIntentId"])
	require.NotNil(t, result.Bill.PaidAt)
	assert.True(t, f.now.Equal(*result.Bill.PaidAt))

	assert.Equal(t, "completed", result.Payment.Status)
	assert.Equal(t, 150.0, result.Payment.Amount)
	assert.Equal(t, "mock_client_secret_1715000000000", result.Payment.StripeClientSecret)

	assert.Equal(t, 150.0, f.gateway.intentRequest.Amount)
	assert.Equal(t, f.billID.Hex(), f.gateway.intentRequest.Metadata["billId"])
	assert.Equal(t, f.appointmentID.Hex(), f.gateway.intentRequest.Metadata["appointmentId"])

	assert.Equal(t, models.AppointmentStatusConfirmed, f.store.appointments[f.appointmentID].Status)
	assert.Equal(t, []string{constvars.EventPaymentCompleted}, f.publisher.keys)
}

func TestPaymentUsecase_ProcessPaymentOverrideAmount(t *testing.T) {
	f := newPaymentFixture(t)
	amount := 99.5

	_, err := f.usecase.ProcessPayment(context.Background(), &requests.ProcessPayment{
		BillID:        f.billID.Hex(),
		PaymentMethod: models.PaymentMethodWallet,
		Amount:        &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, 99.5, f.gateway.intentRequest.Amount)
}

func TestPaymentUsecase_ProcessPaymentRejections(t *testing.T) {
	t.Run("already paid bill is a conflict and state is unchanged", func(t *testing.T) {
		f := newPaymentFixture(t)
		bill := f.store.bills[f.billID]
		bill.Status = models.BillStatusPaid
		bill.TransactionID = "txn_original"
		f.store.bills[f.billID] = bill

		_, err := f.usecase.ProcessPayment(context.Background(), &requests.ProcessPayment{
			BillID:        f.billID.Hex(),
			PaymentMethod: models.PaymentMethodCard,
		})
		require.Error(t, err)
		assert.True(t, exceptions.IsConflict(err))
		assert.Equal(t, "txn_original", f.store.bills[f.billID].TransactionID)
		assert.Nil(t, f.gateway.intentRequest)
		assert.Empty(t, f.publisher.keys)
	})

	t.Run("unknown bill is not found", func(t *testing.T) {
		f := newPaymentFixture(t)

		_, err := f.usecase.ProcessPayment(context.Background(), &requests.ProcessPayment{
			BillID:        primitive.NewObjectID().Hex(),
			PaymentMethod: models.PaymentMethodCard,
		})
		require.Error(t, err)
		assert.True(t, exceptions.IsNotFound(err))
	})

	t.Run("provider failure surfaces the provider message", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.gateway.intent = &contracts.PaymentIntentResult{Success: false, Error: "Your card was declined."}

		_, err := f.usecase.ProcessPayment(context.Background(), &requests.ProcessPayment{
			BillID:        f.billID.Hex(),
			PaymentMethod: models.PaymentMethodCard,
		})
		require.Error(t, err)
		assert.Equal(t, constvars.StatusBadRequest, exceptions.StatusCodeOf(err))
		assert.Contains(t, clientMessage(err), "Your card was declined.")
		assert.Equal(t, models.BillStatusUnpaid, f.store.bills[f.billID].Status)
	})
}

func TestPaymentUsecase_CompleteRollsBack(t *testing.T) {
	f := newPaymentFixture(t)
	f.store.failConfirm = errors.New("write conflict")

	_, err := f.usecase.ProcessPayment(context.Background(), &requests.ProcessPayment{
		BillID:        f.billID.Hex(),
		PaymentMethod: models.PaymentMethodCard,
	})
	require.Error(t, err)

	bill := f.store.bills[f.billID]
	assert.Equal(t, models.BillStatusUnpaid, bill.Status)
	assert.Nil(t, bill.PaidAt)
	assert.Equal(t, models.AppointmentStatusScheduled, f.store.appointments[f.appointmentID].Status)
	assert.Empty(t, f.publisher.keys)
}

func TestPaymentUsecase_ConfirmedAppointmentIsNotDowngraded(t *testing.T) {
	f := newPaymentFixture(t)
	appointment := f.store.appointments[f.appointmentID]
	appointment.Status = models.AppointmentStatusCompleted
	f.store.appointments[f.appointmentID] = appointment

	_, err := f.usecase.ProcessPayment(context.Background(), &requests.ProcessPayment{
		BillID:        f.billID.Hex(),
		PaymentMethod: models.PaymentMethodBank,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPaid, f.store.bills[f.billID].Status)
	assert.Equal(t, models.AppointmentStatusCompleted, f.store.appointments[f.appointmentID].Status)
}

func TestPaymentUsecase_IntentFlow(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	intent, err := f.usecase.CreatePaymentIntent(ctx, &requests.CreatePaymentIntent{BillID: f.billID.Hex()})
	require.NoError(t, err)
	assert.True(t, intent.IsMock)
	assert.Equal(t, 150.0, intent.Amount)
	assert.Equal(t, models.BillStatusUnpaid, f.store.bills[f.billID].Status)

	confirmed, err := f.usecase.ConfirmPayment(ctx, &requests.ConfirmPayment{
		BillID:          f.billID.Hex(),
		PaymentIntentID: intent.PaymentIntentID,
	})
	require.NoError(t, err)
	assert.Equal(t, "succeeded", confirmed.PaymentStatus)
	assert.Equal(t, models.BillStatusPaid, confirmed.Bill.Status)
	assert.Equal(t, intent.PaymentIntentID, confirmed.Bill.TransactionID)
	assert.Equal(t, "succeeded", confirmed.Bill.PaymentDetails["stripeStatus"])

	_, err = f.usecase.ConfirmPayment(ctx, &requests.ConfirmPayment{
		BillID:          f.billID.Hex(),
		PaymentIntentID: intent.PaymentIntentID,
	})
	require.Error(t, err)
	assert.True(t, exceptions.IsConflict(err))
}

func TestPaymentUsecase_ConfirmPaymentNotSucceeded(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.confirmation = &contracts.PaymentIntentResult{
		Success: false,
		Status:  "requires_payment_method",
		Error:   "Payment method required",
	}

	_, err := f.usecase.ConfirmPayment(context.Background(), &requests.ConfirmPayment{
		BillID:          f.billID.Hex(),
		PaymentIntentID: "pi_123",
	})
	require.Error(t, err)
	assert.Contains(t, clientMessage(err), "Payment method required")
	assert.Equal(t, models.BillStatusUnpaid, f.store.bills[f.billID].Status)
}

func TestPaymentUsecase_CheckoutFlow(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	f.gateway.session = &contracts.CheckoutSessionResult{
		Success:   true,
		SessionID: "mock_session_1",
		URL:       "http://localhost:3000/payment/success?session_id=mock_session_1",
		IsMock:    true,
	}

	session, err := f.usecase.CreateCheckoutSession(ctx, &requests.CreateCheckoutSession{
		Amount:        150,
		ProductName:   "Consultation",
		BillID:        f.billID.Hex(),
		CustomerEmail: "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "mock_session_1", session.SessionID)
	assert.True(t, session.IsMock)
	assert.Equal(t,
		"http://localhost:3000/payment/success?session_id={CHECKOUT_SESSION_ID}&bill_id="+f.billID.Hex(),
		f.gateway.sessionRequest.SuccessURL,
	)
	assert.Equal(t, f.billID.Hex(), f.gateway.sessionRequest.Metadata["billId"])

	t.Run("unpaid session is rejected", func(t *testing.T) {
		f.gateway.retrieved = &contracts.CheckoutSessionResult{Success: true, SessionID: "mock_session_1", PaymentStatus: "unpaid"}

		_, err := f.usecase.HandleCheckoutSuccess(ctx, &requests.CheckoutSuccess{SessionID: "mock_session_1", BillID: f.billID.Hex()})
		require.Error(t, err)
		assert.Equal(t, constvars.StatusPaymentRequired, exceptions.StatusCodeOf(err))
		assert.Equal(t, models.BillStatusUnpaid, f.store.bills[f.billID].Status)
	})

	t.Run("paid session completes the bill", func(t *testing.T) {
		f.gateway.retrieved = &contracts.CheckoutSessionResult{Success: true, SessionID: "mock_session_1", PaymentStatus: "paid"}

		bill, err := f.usecase.HandleCheckoutSuccess(ctx, &requests.CheckoutSuccess{SessionID: "mock_session_1", BillID: f.billID.Hex()})
		require.NoError(t, err)
		assert.Equal(t, models.BillStatusPaid, bill.Status)
		assert.Equal(t, models.PaymentMethodCard, bill.PaymentMethod)
		assert.Equal(t, "mock_session_1", bill.TransactionID)
		assert.Equal(t, models.AppointmentStatusConfirmed, f.store.appointments[f.appointmentID].Status)
	})
}

func TestPaymentUsecase_Summary(t *testing.T) {
	f := newPaymentFixture(t)
	paidID := primitive.NewObjectID()
	f.store.bills[paidID] = models.Bill{ID: paidID, Amount: 75, Status: models.BillStatusPaid}

	summary, err := f.usecase.Summary(context.Background(), &requests.BillFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalBills)
	assert.Equal(t, 225.0, summary.TotalAmount)
	assert.Equal(t, int64(1), summary.ByStatus[models.BillStatusUnpaid].Count)
}

func TestCheckoutSuccessURL(t *testing.T) {
	assert.Equal(t, "https://app.test/done?session_id={CHECKOUT_SESSION_ID}&bill_id=abc", checkoutSuccessURL("https://app.test/done", "abc"))
	assert.Equal(t, "https://app.test/done?x=1&session_id={CHECKOUT_SESSION_ID}&bill_id=abc", checkoutSuccessURL("https://app.test/done?x=1", "abc"))
}
