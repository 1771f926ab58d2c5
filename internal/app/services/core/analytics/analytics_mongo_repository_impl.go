package analytics

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AnalyticsMongoRepository struct {
	Collection *mongo.Collection
}

func NewAnalyticsMongoRepository(db *mongo.Client, dbName string) contracts.AnalyticsRepository {
	return &AnalyticsMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionAnalytics),
	}
}

func (repo *AnalyticsMongoRepository) Create(ctx context.Context, analytics *models.Analytics) (*models.Analytics, error) {
	result, err := repo.Collection.InsertOne(ctx, analytics)
	if err != nil {
		return nil, exceptions.ErrMongoDBInsertDocument(err)
	}
	analytics.ID = result.InsertedID.(primitive.ObjectID)
	return analytics, nil
}

func (repo *AnalyticsMongoRepository) FindByID(ctx context.Context, analyticsID primitive.ObjectID) (*models.Analytics, error) {
	var analytics models.Analytics
	err := repo.Collection.FindOne(ctx, bson.M{"_id": analyticsID}).Decode(&analytics)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &analytics, nil
}

func (repo *AnalyticsMongoRepository) Find(ctx context.Context, reportType, status string, pagination *requests.Pagination) ([]models.Analytics, int, error) {
	filter := bson.M{}
	if reportType != "" {
		filter["reportType"] = reportType
	}
	if status != "" {
		filter["status"] = status
	}

	total, err := repo.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBCountDocuments(err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if pagination != nil {
		opts.SetSkip(pagination.Skip()).SetLimit(pagination.Limit())
	}

	cursor, err := repo.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	snapshots := make([]models.Analytics, 0)
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, 0, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return snapshots, int(total), nil
}

func (repo *AnalyticsMongoRepository) Update(ctx context.Context, analyticsID primitive.ObjectID, fields map[string]interface{}) (*models.Analytics, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var analytics models.Analytics
	err := repo.Collection.FindOneAndUpdate(ctx, bson.M{"_id": analyticsID}, bson.M{"$set": fields}, opts).Decode(&analytics)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return &analytics, nil
}

func (repo *AnalyticsMongoRepository) Delete(ctx context.Context, analyticsID primitive.ObjectID) error {
	result, err := repo.Collection.DeleteOne(ctx, bson.M{"_id": analyticsID})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	if result.DeletedCount == 0 {
		return exceptions.ErrAnalyticsNotFound(nil, analyticsID.Hex())
	}
	return nil
}
