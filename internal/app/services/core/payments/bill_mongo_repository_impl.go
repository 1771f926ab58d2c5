package payments

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BillMongoRepository struct {
	Collection *mongo.Collection
}

func NewBillMongoRepository(db *mongo.Client, dbName string) contracts.BillRepository {
	return &BillMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionBills),
	}
}

func (repo *BillMongoRepository) Create(ctx context.Context, bill *models.Bill) (*models.Bill, error) {
	result, err := repo.Collection.InsertOne(ctx, bill)
	if err != nil {
		return nil, exceptions.ErrMongoDBInsertDocument(err)
	}
	bill.ID = result.InsertedID.(primitive.ObjectID)
	return bill, nil
}

func (repo *BillMongoRepository) FindByID(ctx context.Context, billID primitive.ObjectID) (*models.Bill, error) {
	var bill models.Bill
	err := repo.Collection.FindOne(ctx, bson.M{"_id": billID}).Decode(&bill)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &bill, nil
}

func (repo *BillMongoRepository) FindDetailByID(ctx context.Context, billID primitive.ObjectID) (*models.BillDetail, error) {
	pipeline := []bson.M{{"$match": bson.M{"_id": billID}}}
	pipeline = append(pipeline, queries.BillDetailStages()...)

	details, err := repo.aggregateDetails(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

// FindDetails lists matching bills, newest first by sortField.
func (repo *BillMongoRepository) FindDetails(ctx context.Context, query models.BillQuery, sortField string) ([]models.BillDetail, error) {
	pipeline := []bson.M{
		{"$match": queries.BillFilter(query)},
		{"$sort": bson.M{sortField: -1}},
	}
	pipeline = append(pipeline, queries.BillDetailStages()...)
	return repo.aggregateDetails(ctx, pipeline)
}

func (repo *BillMongoRepository) MarkPaid(ctx context.Context, billID primitive.ObjectID, payment *models.BillPayment) (*models.Bill, error) {
	set := bson.M{
		"status":         models.BillStatusPaid,
		"paidAt":         payment.PaidAt,
		"transactionId":  payment.TransactionID,
		"paymentDetails": payment.PaymentDetails,
		"updatedAt":      payment.PaidAt,
	}
	if payment.PaymentMethod != "" {
		set["paymentMethod"] = payment.PaymentMethod
	}

	filter := bson.M{"_id": billID, "status": bson.M{"$ne": models.BillStatusPaid}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var bill models.Bill
	err := repo.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&bill)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return &bill, nil
}

func (repo *BillMongoRepository) Stats(ctx context.Context, query models.BillQuery) (*models.PaymentStats, error) {
	pipeline := []bson.M{
		{"$match": queries.BillFilter(query)},
		{"$group": bson.M{
			"_id":         nil,
			"totalPaid":   sumIf(models.BillStatusPaid, "$amount"),
			"totalUnpaid": sumIf(models.BillStatusUnpaid, "$amount"),
			"totalBills":  bson.M{"$sum": 1},
			"paidBills":   sumIf(models.BillStatusPaid, 1),
			"unpaidBills": sumIf(models.BillStatusUnpaid, 1),
		}},
	}

	cursor, err := repo.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	var stats []models.PaymentStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	if len(stats) == 0 {
		return &models.PaymentStats{}, nil
	}
	return &stats[0], nil
}

func (repo *BillMongoRepository) SumByStatus(ctx context.Context, query models.BillQuery) (map[string]models.StatusAmount, error) {
	pipeline := []bson.M{
		{"$match": queries.BillFilter(query)},
		{"$group": bson.M{
			"_id":           "$status",
			"count":         bson.M{"$sum": 1},
			"totalAmount":   bson.M{"$sum": "$amount"},
			"averageAmount": bson.M{"$avg": "$amount"},
		}},
	}

	cursor, err := repo.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status              string `bson:"_id"`
		models.StatusAmount `bson:",inline"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}

	byStatus := make(map[string]models.StatusAmount, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row.StatusAmount
	}
	return byStatus, nil
}

// MarkOverdue flags unpaid bills created before the cutoff and returns how many changed.
func (repo *BillMongoRepository) MarkOverdue(ctx context.Context, createdBefore time.Time) (int64, error) {
	filter := bson.M{
		"status":    models.BillStatusUnpaid,
		"createdAt": bson.M{"$lt": createdBefore},
	}
	update := bson.M{"$set": bson.M{"status": models.BillStatusOverdue, "updatedAt": time.Now()}}

	result, err := repo.Collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.ModifiedCount, nil
}

func (repo *BillMongoRepository) aggregateDetails(ctx context.Context, pipeline []bson.M) ([]models.BillDetail, error) {
	cursor, err := repo.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	details := make([]models.BillDetail, 0)
	if err := cursor.All(ctx, &details); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return details, nil
}

func sumIf(status string, value interface{}) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, value, 0}}}
}
