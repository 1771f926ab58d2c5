package payments

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/shared/payment_gateway"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const paymentStatusCompleted = "completed"

type paymentUsecase struct {
	TransactionManager    contracts.TransactionManager
	BillRepository        contracts.BillRepository
	AppointmentRepository contracts.AppointmentRepository
	PaymentGateway        contracts.PaymentGatewayService
	EventPublisher        contracts.EventPublisher
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
	now                   func() time.Time
}

var (
	paymentUsecaseInstance contracts.PaymentUsecase
	oncePaymentUsecase     sync.Once
)

func NewPaymentUsecase(
	transactionManager contracts.TransactionManager,
	billRepository contracts.BillRepository,
	appointmentRepository contracts.AppointmentRepository,
	paymentGateway contracts.PaymentGatewayService,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PaymentUsecase {
	oncePaymentUsecase.Do(func() {
		paymentUsecaseInstance = newPaymentUsecase(
			transactionManager,
			billRepository,
			appointmentRepository,
			paymentGateway,
			eventPublisher,
			internalConfig,
			logger,
		)
	})
	return paymentUsecaseInstance
}

func newPaymentUsecase(
	transactionManager contracts.TransactionManager,
	billRepository contracts.BillRepository,
	appointmentRepository contracts.AppointmentRepository,
	paymentGateway contracts.PaymentGatewayService,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *paymentUsecase {
	return &paymentUsecase{
		TransactionManager:    transactionManager,
		BillRepository:        billRepository,
		AppointmentRepository: appointmentRepository,
		PaymentGateway:        paymentGateway,
		EventPublisher:        eventPublisher,
		InternalConfig:        internalConfig,
		Log:                   logger,
		now:                   time.Now,
	}
}

type paymentEvent struct {
	BillID        string    `json:"billId"`
	AppointmentID string    `json:"appointmentId"`
	UserID        string    `json:"userId"`
	DoctorID      string    `json:"doctorId"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	TransactionID string    `json:"transactionId"`
	PaidAt        time.Time `json:"paidAt"`
}

func (uc *paymentUsecase) ProcessPayment(ctx context.Context, request *requests.ProcessPayment) (*responses.ProcessPayment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ProcessPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBillIDKey, request.BillID),
		zap.String(constvars.LoggingPaymentMethodKey, request.PaymentMethod),
	)

	bill, err := uc.findPayableBill(ctx, request.BillID)
	if err != nil {
		return nil, err
	}

	amount := bill.Amount
	if request.Amount != nil {
		amount = *request.Amount
	}

	intent := uc.PaymentGateway.CreatePaymentIntent(ctx, &contracts.PaymentIntentRequest{
		Amount:   amount,
		Metadata: billMetadata(bill),
	})
	if !intent.Success {
		uc.Log.Error("paymentUsecase.ProcessPayment payment provider failure",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBillIDKey, request.BillID),
			zap.String(constvars.LoggingErrorTypeKey, intent.Error),
		)
		return nil, exceptions.ErrPaymentProvider(nil, constvars.ErrClientPaymentProcessingFailed, intent.Error)
	}

	details := make(map[string]interface{}, len(request.PaymentDetails)+2)
	for key, value := range request.PaymentDetails {
		details[key] = value
	}
	details["stripePaymentIntentId"] = intent.PaymentIntentID
	if intent.ClientSecret != "" {
		details["stripeClientSecret"] = intent.ClientSecret
	}

	paidAt := uc.now()
	paid, err := uc.completeBill(ctx, bill.ID, &models.BillPayment{
		PaymentMethod:  request.PaymentMethod,
		TransactionID:  intent.PaymentIntentID,
		PaidAt:         paidAt,
		PaymentDetails: details,
	})
	if err != nil {
		return nil, err
	}

	return &responses.ProcessPayment{
		Bill: paid,
		Payment: &responses.PaymentReceipt{
			TransactionID:      intent.PaymentIntentID,
			Status:             paymentStatusCompleted,
			Amount:             utils.FromMinorUnits(intent.AmountInCents),
			PaymentMethod:      request.PaymentMethod,
			ProcessedAt:        paidAt,
			StripeClientSecret: intent.ClientSecret,
		},
	}, nil
}

// CreatePaymentIntent starts a two phase payment. No state changes until ConfirmPayment.
func (uc *paymentUsecase) CreatePaymentIntent(ctx context.Context, request *requests.CreatePaymentIntent) (*responses.PaymentIntent, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.CreatePaymentIntent called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBillIDKey, request.BillID),
	)

	bill, err := uc.findPayableBill(ctx, request.BillID)
	if err != nil {
		return nil, err
	}

	intent := uc.PaymentGateway.CreatePaymentIntent(ctx, &contracts.PaymentIntentRequest{
		Amount:   bill.Amount,
		Metadata: billMetadata(bill),
	})
	if !intent.Success {
		return nil, exceptions.ErrPaymentProvider(nil, constvars.ErrClientPaymentIntentFailed, intent.Error)
	}

	uc.Log.Info("paymentUsecase.CreatePaymentIntent succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentIntentKey, intent.PaymentIntentID),
	)
	return &responses.PaymentIntent{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.PaymentIntentID,
		Amount:          utils.FromMinorUnits(intent.AmountInCents),
		Currency:        intent.Currency,
		Status:          intent.Status,
		IsMock:          intent.IsMock,
	}, nil
}

func (uc *paymentUsecase) ConfirmPayment(ctx context.Context, request *requests.ConfirmPayment) (*responses.ConfirmPayment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ConfirmPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBillIDKey, request.BillID),
		zap.String(constvars.LoggingPaymentIntentKey, request.PaymentIntentID),
	)

	bill, err := uc.findPayableBill(ctx, request.BillID)
	if err != nil {
		return nil, err
	}

	confirmation := uc.PaymentGateway.ConfirmPaymentIntent(ctx, request.PaymentIntentID)
	if !confirmation.Success {
		return nil, exceptions.ErrPaymentProvider(nil, constvars.ErrClientPaymentConfirmFailed, confirmation.Error)
	}

	paid, err := uc.completeBill(ctx, bill.ID, &models.BillPayment{
		TransactionID: request.PaymentIntentID,
		PaidAt:        uc.now(),
		PaymentDetails: map[string]interface{}{
			"stripePaymentIntentId": request.PaymentIntentID,
			"stripeStatus":          confirmation.Status,
		},
	})
	if err != nil {
		return nil, err
	}

	return &responses.ConfirmPayment{
		Bill:          paid,
		PaymentStatus: confirmation.Status,
	}, nil
}

func (uc *paymentUsecase) CreateCheckoutSession(ctx context.Context, request *requests.CreateCheckoutSession) (*responses.CheckoutSession, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.CreateCheckoutSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBillIDKey, request.BillID),
		zap.Float64(constvars.LoggingAmountKey, request.Amount),
	)

	bill, err := uc.findPayableBill(ctx, request.BillID)
	if err != nil {
		return nil, err
	}

	metadata := billMetadata(bill)
	for key, value := range map[string]string{
		"userId":        request.UserID,
		"doctorId":      request.DoctorID,
		"appointmentId": request.AppointmentID,
	} {
		if value != "" {
			metadata[key] = value
		}
	}

	stripeConfig := uc.InternalConfig.Stripe
	session := uc.PaymentGateway.CreateCheckoutSession(ctx, &contracts.CheckoutSessionRequest{
		Amount:        request.Amount,
		ProductName:   request.ProductName,
		CustomerEmail: request.CustomerEmail,
		SuccessURL:    checkoutSuccessURL(stripeConfig.SuccessURL, request.BillID),
		CancelURL:     stripeConfig.CancelURL,
		Metadata:      metadata,
	})
	if !session.Success {
		return nil, exceptions.ErrPaymentProvider(nil, constvars.ErrClientCheckoutFailed, session.Error)
	}

	uc.Log.Info("paymentUsecase.CreateCheckoutSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingCheckoutIDKey, session.SessionID),
	)
	return &responses.CheckoutSession{
		URL:       session.URL,
		SessionID: session.SessionID,
		IsMock:    session.IsMock,
	}, nil
}

func (uc *paymentUsecase) HandleCheckoutSuccess(ctx context.Context, request *requests.CheckoutSuccess) (*models.Bill, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.HandleCheckoutSuccess called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBillIDKey, request.BillID),
		zap.String(constvars.LoggingCheckoutIDKey, request.SessionID),
	)

	bill, err := uc.findPayableBill(ctx, request.BillID)
	if err != nil {
		return nil, err
	}

	session := uc.PaymentGateway.RetrieveCheckoutSession(ctx, request.SessionID)
	if !session.Success {
		return nil, exceptions.ErrPaymentProvider(nil, constvars.ErrClientPaymentConfirmFailed, session.Error)
	}
	if session.PaymentStatus != checkoutPaymentStatusPaid {
		return nil, exceptions.ErrCheckoutNotPaid(nil, request.SessionID, session.PaymentStatus)
	}

	transactionID := session.PaymentIntentID
	if transactionID == "" {
		transactionID = request.SessionID
	}
	details := map[string]interface{}{"stripeCheckoutSessionId": request.SessionID}
	if session.PaymentIntentID != "" {
		details["stripePaymentIntentId"] = session.PaymentIntentID
	}

	return uc.completeBill(ctx, bill.ID, &models.BillPayment{
		PaymentMethod:  models.PaymentMethodCard,
		TransactionID:  transactionID,
		PaidAt:         uc.now(),
		PaymentDetails: details,
	})
}

func (uc *paymentUsecase) FindUnpaidBills(ctx context.Context, filter *requests.BillFilter) ([]models.BillDetail, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.FindUnpaidBills called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, filter.PatientID),
	)

	query, err := buildBillQuery(filter)
	if err != nil {
		return nil, err
	}
	query.Status = models.BillStatusUnpaid
	if filter.Date != "" {
		day, err := utils.ParseDate(filter.Date)
		if err != nil {
			return nil, err
		}
		query.DueDay = &day
	}

	return uc.BillRepository.FindDetails(ctx, query, "date")
}

func (uc *paymentUsecase) FindPaymentHistory(ctx context.Context, filter *requests.BillFilter) ([]models.BillDetail, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.FindPaymentHistory called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, filter.PatientID),
	)

	query, err := buildBillQuery(filter)
	if err != nil {
		return nil, err
	}
	query.Status = models.BillStatusPaid
	query.PaidAt, err = utils.ParseDateRange(filter.DateRange, nil)
	if err != nil {
		return nil, err
	}

	return uc.BillRepository.FindDetails(ctx, query, "paidAt")
}

func (uc *paymentUsecase) FindByID(ctx context.Context, billID string) (*models.BillDetail, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBillIDKey, billID),
	)

	id, err := utils.ParseObjectID(billID)
	if err != nil {
		return nil, err
	}
	detail, err := uc.BillRepository.FindDetailByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, exceptions.ErrBillNotFound(nil, billID)
	}
	return detail, nil
}

// Stats windows on paidAt, matching the payment history listing.
func (uc *paymentUsecase) Stats(ctx context.Context, filter *requests.BillFilter) (*models.PaymentStats, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.Stats called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, filter.PatientID),
	)

	query, err := buildBillQuery(filter)
	if err != nil {
		return nil, err
	}
	query.PaidAt, err = utils.ParseDateRange(filter.DateRange, nil)
	if err != nil {
		return nil, err
	}
	return uc.BillRepository.Stats(ctx, query)
}

// Summary windows on the bill date.
func (uc *paymentUsecase) Summary(ctx context.Context, filter *requests.BillFilter) (*models.PaymentSummary, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.Summary called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, filter.PatientID),
	)

	query, err := buildBillQuery(filter)
	if err != nil {
		return nil, err
	}
	query.Window, err = utils.ParseDateRange(filter.DateRange, nil)
	if err != nil {
		return nil, err
	}

	byStatus, err := uc.BillRepository.SumByStatus(ctx, query)
	if err != nil {
		return nil, err
	}

	summary := &models.PaymentSummary{ByStatus: byStatus}
	for _, amount := range byStatus {
		summary.TotalBills += amount.Count
		summary.TotalAmount += amount.TotalAmount
	}
	summary.TotalAmount = utils.Round2(summary.TotalAmount)
	return summary, nil
}

// completeBill marks the bill paid and confirms its scheduled appointment in
// one transaction. Appointments in any other status are left as they are.
func (uc *paymentUsecase) completeBill(ctx context.Context, billID primitive.ObjectID, payment *models.BillPayment) (*models.Bill, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var paid *models.Bill
	err := uc.TransactionManager.WithTransaction(ctx, func(txCtx context.Context) error {
		current, err := uc.BillRepository.FindByID(txCtx, billID)
		if err != nil {
			return err
		}
		if current == nil {
			return exceptions.ErrBillNotFound(nil, billID.Hex())
		}
		if current.IsPaid() {
			return exceptions.ErrBillAlreadyPaid(nil, billID.Hex())
		}

		paid, err = uc.BillRepository.MarkPaid(txCtx, billID, payment)
		if err != nil {
			return err
		}
		if paid == nil {
			return exceptions.ErrBillAlreadyPaid(nil, billID.Hex())
		}

		_, err = uc.AppointmentRepository.UpdateStatusIf(txCtx, paid.AppointmentID, models.AppointmentStatusScheduled, models.AppointmentStatusConfirmed)
		return err
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.completeBill error applying payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBillIDKey, billID.Hex()),
			zap.Error(err),
		)
		return nil, err
	}

	event := paymentEvent{
		BillID:        paid.ID.Hex(),
		AppointmentID: paid.AppointmentID.Hex(),
		UserID:        paid.UserID.Hex(),
		DoctorID:      paid.DoctorID.Hex(),
		Amount:        paid.Amount,
		PaymentMethod: paid.PaymentMethod,
		TransactionID: paid.TransactionID,
		PaidAt:        payment.PaidAt,
	}
	if err := uc.EventPublisher.Publish(ctx, constvars.EventPaymentCompleted, event); err != nil {
		uc.Log.Warn("paymentUsecase.completeBill error publishing event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}

	utils.LogBusinessEvent(uc.Log, "payment_completed", requestID,
		zap.String(constvars.LoggingBillIDKey, paid.ID.Hex()),
		zap.String(constvars.LoggingAppointmentIDKey, paid.AppointmentID.Hex()),
		zap.Float64(constvars.LoggingAmountKey, paid.Amount),
	)
	return paid, nil
}

// findPayableBill loads a bill that still accepts payment.
func (uc *paymentUsecase) findPayableBill(ctx context.Context, billID string) (*models.Bill, error) {
	id, err := utils.ParseObjectID(billID)
	if err != nil {
		return nil, err
	}
	bill, err := uc.BillRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, exceptions.ErrBillNotFound(nil, billID)
	}
	if bill.IsPaid() {
		return nil, exceptions.ErrBillAlreadyPaid(nil, billID)
	}
	return bill, nil
}

const checkoutPaymentStatusPaid = "paid"

func billMetadata(bill *models.Bill) map[string]string {
	return map[string]string{
		"billId":        bill.ID.Hex(),
		"appointmentId": bill.AppointmentID.Hex(),
		"userId":        bill.UserID.Hex(),
		"doctorId":      bill.DoctorID.Hex(),
	}
}

// checkoutSuccessURL appends the session placeholder and bill id to the
// configured return page. The placeholder must stay unescaped for the provider.
func checkoutSuccessURL(base, billID string) string {
	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}
	return base + separator + "session_id=" + payment_gateway.CheckoutSessionIDPlaceholder + "&bill_id=" + billID
}

func buildBillQuery(filter *requests.BillFilter) (models.BillQuery, error) {
	userID, err := utils.ParseOptionalObjectID(filter.PatientID)
	if err != nil {
		return models.BillQuery{}, err
	}
	return models.BillQuery{UserID: userID, Status: filter.Status}, nil
}
