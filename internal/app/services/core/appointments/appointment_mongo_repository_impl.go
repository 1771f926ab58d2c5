package appointments

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

type AppointmentMongoRepository struct {
	Collection *mongo.Collection
}

func NewAppointmentMongoRepository(db *mongo.Client, dbName string) contracts.AppointmentRepository {
	return &AppointmentMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionAppointments),
	}
}

func (repo *AppointmentMongoRepository) Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	result, err := repo.Collection.InsertOne(ctx, appointment)
	if err != nil {
		return nil, exceptions.ErrMongoDBInsertDocument(err)
	}
	appointment.ID = result.InsertedID.(primitive.ObjectID)
	return appointment, nil
}

func (repo *AppointmentMongoRepository) FindByID(ctx context.Context, appointmentID primitive.ObjectID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := repo.Collection.FindOne(ctx, bson.M{"_id": appointmentID}).Decode(&appointment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &appointment, nil
}

func (repo *AppointmentMongoRepository) FindDetailByID(ctx context.Context, appointmentID primitive.ObjectID) (*models.AppointmentDetail, error) {
	pipeline := []bson.M{{"$match": bson.M{"_id": appointmentID}}}
	pipeline = append(pipeline, queries.AppointmentDetailStages()...)

	details, err := repo.aggregateDetails(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

// FindActiveBySlot returns the booking holding the slot, if any. Inside a
// transaction the read is part of the snapshot the booking writes against.
func (repo *AppointmentMongoRepository) FindActiveBySlot(ctx context.Context, doctorID primitive.ObjectID, date time.Time, timeSlot string) (*models.Appointment, error) {
	filter := queries.ActiveSlotFilter(models.AppointmentQuery{DoctorID: &doctorID}, timeSlot)
	filter["date"] = queries.SameDay(date)

	var appointment models.Appointment
	err := repo.Collection.FindOne(ctx, filter).Decode(&appointment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &appointment, nil
}

func (repo *AppointmentMongoRepository) FindActiveByDoctorAndDay(ctx context.Context, doctorID primitive.ObjectID, date time.Time) ([]models.Appointment, error) {
	filter := queries.ActiveSlotFilter(models.AppointmentQuery{DoctorID: &doctorID}, "")
	filter["date"] = queries.SameDay(date)

	cursor, err := repo.Collection.Find(ctx, filter)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return appointments, nil
}

func (repo *AppointmentMongoRepository) Find(ctx context.Context, query models.AppointmentQuery, pagination *requests.Pagination) ([]models.AppointmentDetail, int, error) {
	filter := queries.AppointmentFilter(query)

	total, err := repo.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBCountDocuments(err)
	}

	pipeline := []bson.M{
		{"$match": filter},
		{"$sort": bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}},
	}
	if pagination != nil {
		pipeline = queries.Paginate(pipeline, pagination.Skip(), pagination.Limit())
	}
	pipeline = append(pipeline, queries.AppointmentDetailStages()...)

	details, err := repo.aggregateDetails(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	return details, int(total), nil
}

func (repo *AppointmentMongoRepository) SetBillID(ctx context.Context, appointmentID, billID primitive.ObjectID) error {
	result, err := repo.Collection.UpdateByID(ctx, appointmentID, bson.M{"$set": bson.M{"billId": billID}})
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	if result.MatchedCount == 0 {
		return exceptions.ErrAppointmentNotFound(nil, appointmentID.Hex())
	}
	return nil
}

func (repo *AppointmentMongoRepository) Update(ctx context.Context, appointmentID primitive.ObjectID, fields map[string]interface{}) (*models.Appointment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var appointment models.Appointment
	err := repo.Collection.FindOneAndUpdate(ctx, bson.M{"_id": appointmentID}, bson.M{"$set": fields}, opts).Decode(&appointment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return &appointment, nil
}

func (repo *AppointmentMongoRepository) UpdateStatusIf(ctx context.Context, appointmentID primitive.ObjectID, from, status string) (bool, error) {
	filter := bson.M{"_id": appointmentID, "status": from}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}

	result, err := repo.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.ModifiedCount > 0, nil
}

func (repo *AppointmentMongoRepository) aggregateDetails(ctx context.Context, pipeline []bson.M) ([]models.AppointmentDetail, error) {
	cursor, err := repo.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	details := make([]models.AppointmentDetail, 0)
	if err := cursor.All(ctx, &details); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return details, nil
}
