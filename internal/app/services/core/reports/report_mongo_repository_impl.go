package reports

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportMongoRepository struct {
	Collection *mongo.Collection
}

func NewReportMongoRepository(db *mongo.Client, dbName string) contracts.ReportRepository {
	return &ReportMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionReports),
	}
}

func (repo *ReportMongoRepository) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	result, err := repo.Collection.InsertOne(ctx, report)
	if err != nil {
		return nil, exceptions.ErrMongoDBInsertDocument(err)
	}
	report.ID = result.InsertedID.(primitive.ObjectID)
	return report, nil
}

func (repo *ReportMongoRepository) FindByID(ctx context.Context, reportID primitive.ObjectID) (*models.Report, error) {
	var report models.Report
	err := repo.Collection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &report, nil
}

func (repo *ReportMongoRepository) Find(ctx context.Context, query models.ReportQuery, pagination *requests.Pagination) ([]models.Report, int, error) {
	filter := queries.ReportFilter(query)

	total, err := repo.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBCountDocuments(err)
	}

	// Listings omit content; it is only served by id or export.
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"content": 0})
	if pagination != nil {
		opts.SetSkip(pagination.Skip()).SetLimit(pagination.Limit())
	}

	cursor, err := repo.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	reports := make([]models.Report, 0)
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return reports, int(total), nil
}

func (repo *ReportMongoRepository) Update(ctx context.Context, reportID primitive.ObjectID, fields map[string]interface{}) (*models.Report, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var report models.Report
	err := repo.Collection.FindOneAndUpdate(ctx, bson.M{"_id": reportID}, bson.M{"$set": fields}, opts).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return &report, nil
}

func (repo *ReportMongoRepository) Delete(ctx context.Context, reportID primitive.ObjectID) error {
	result, err := repo.Collection.DeleteOne(ctx, bson.M{"_id": reportID})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	if result.DeletedCount == 0 {
		return exceptions.ErrReportNotFound(nil, reportID.Hex())
	}
	return nil
}

func (repo *ReportMongoRepository) IncrementViews(ctx context.Context, reportID primitive.ObjectID, at time.Time) error {
	return repo.increment(ctx, reportID, "statistics.views", "statistics.lastViewed", at)
}

func (repo *ReportMongoRepository) IncrementDownloads(ctx context.Context, reportID primitive.ObjectID, at time.Time) error {
	return repo.increment(ctx, reportID, "statistics.downloads", "statistics.lastDownloaded", at)
}

func (repo *ReportMongoRepository) increment(ctx context.Context, reportID primitive.ObjectID, counter, stamp string, at time.Time) error {
	update := bson.M{
		"$inc": bson.M{counter: 1},
		"$set": bson.M{stamp: at},
	}
	result, err := repo.Collection.UpdateOne(ctx, bson.M{"_id": reportID}, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	if result.MatchedCount == 0 {
		return exceptions.ErrReportNotFound(nil, reportID.Hex())
	}
	return nil
}

// DeleteExpired removes reports, templates included, whose expiresAt has passed.
func (repo *ReportMongoRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{"expiresAt": bson.M{"$lt": now}}
	result, err := repo.Collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, exceptions.ErrMongoDBDeleteDocument(err)
	}
	return result.DeletedCount, nil
}
