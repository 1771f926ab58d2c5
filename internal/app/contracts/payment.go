package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentUsecase interface {
	ProcessPayment(ctx context.Context, request *requests.ProcessPayment) (*responses.ProcessPayment, error)
	CreatePaymentIntent(ctx context.Context, request *requests.CreatePaymentIntent) (*responses.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, request *requests.ConfirmPayment) (*responses.ConfirmPayment, error)
	CreateCheckoutSession(ctx context.Context, request *requests.CreateCheckoutSession) (*responses.CheckoutSession, error)
	HandleCheckoutSuccess(ctx context.Context, request *requests.CheckoutSuccess) (*models.Bill, error)
	FindUnpaidBills(ctx context.Context, filter *requests.BillFilter) ([]models.BillDetail, error)
	FindPaymentHistory(ctx context.Context, filter *requests.BillFilter) ([]models.BillDetail, error)
	FindByID(ctx context.Context, billID string) (*models.BillDetail, error)
	Stats(ctx context.Context, filter *requests.BillFilter) (*models.PaymentStats, error)
	Summary(ctx context.Context, filter *requests.BillFilter) (*models.PaymentSummary, error)
}

type BillRepository interface {
	Create(ctx context.Context, bill *models.Bill) (*models.Bill, error)
	FindByID(ctx context.Context, billID primitive.ObjectID) (*models.Bill, error)
	FindDetailByID(ctx context.Context, billID primitive.ObjectID) (*models.BillDetail, error)
	FindDetails(ctx context.Context, query models.BillQuery, sortField string) ([]models.BillDetail, error)
	// MarkPaid applies payment only to a bill that is not paid yet.
	MarkPaid(ctx context.Context, billID primitive.ObjectID, payment *models.BillPayment) (*models.Bill, error)
	Stats(ctx context.Context, query models.BillQuery) (*models.PaymentStats, error)
	SumByStatus(ctx context.Context, query models.BillQuery) (map[string]models.StatusAmount, error)
	MarkOverdue(ctx context.Context, createdBefore time.Time) (int64, error)
}
