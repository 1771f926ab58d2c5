package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/requests"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnalyticsUsecase interface {
	Generate(ctx context.Context, actor models.Actor, request *requests.GenerateAnalytics) (*models.Analytics, error)
	FindByID(ctx context.Context, analyticsID string) (*models.Analytics, error)
	List(ctx context.Context, filter *requests.AnalyticsFilter) ([]models.Analytics, int, error)
	Delete(ctx context.Context, analyticsID string) error
}

type AnalyticsRepository interface {
	Create(ctx context.Context, analytics *models.Analytics) (*models.Analytics, error)
	FindByID(ctx context.Context, analyticsID primitive.ObjectID) (*models.Analytics, error)
	Find(ctx context.Context, reportType, status string, pagination *requests.Pagination) ([]models.Analytics, int, error)
	Update(ctx context.Context, analyticsID primitive.ObjectID, fields map[string]interface{}) (*models.Analytics, error)
	Delete(ctx context.Context, analyticsID primitive.ObjectID) error
}
