package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportUsecase interface {
	Generate(ctx context.Context, actor models.Actor, request *requests.GenerateReport) (*models.Report, error)
	FindByID(ctx context.Context, actor models.Actor, reportID string) (*models.Report, error)
	List(ctx context.Context, actor models.Actor, filter *requests.ReportFilter) ([]models.Report, int, error)
	Update(ctx context.Context, actor models.Actor, reportID string, request *requests.UpdateReport) (*models.Report, error)
	Delete(ctx context.Context, actor models.Actor, reportID string) error
	Export(ctx context.Context, actor models.Actor, request *requests.ExportReport) (*responses.ReportExport, error)
	FindTemplates(ctx context.Context, actor models.Actor) ([]models.Report, error)
	GenerateFromTemplate(ctx context.Context, actor models.Actor, templateID string, request *requests.GenerateFromTemplate) (*models.Report, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) (*models.Report, error)
	FindByID(ctx context.Context, reportID primitive.ObjectID) (*models.Report, error)
	Find(ctx context.Context, query models.ReportQuery, pagination *requests.Pagination) ([]models.Report, int, error)
	Update(ctx context.Context, reportID primitive.ObjectID, fields map[string]interface{}) (*models.Report, error)
	Delete(ctx context.Context, reportID primitive.ObjectID) error
	IncrementViews(ctx context.Context, reportID primitive.ObjectID, at time.Time) error
	IncrementDownloads(ctx context.Context, reportID primitive.ObjectID, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
