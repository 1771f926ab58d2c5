package patients

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PatientMongoRepository struct {
	Collection *mongo.Collection
}

func NewPatientMongoRepository(db *mongo.Client, dbName string) contracts.PatientRepository {
	return &PatientMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionPatients),
	}
}

func (repo *PatientMongoRepository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	result, err := repo.Collection.InsertOne(ctx, patient)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, exceptions.ErrHealthCardAlreadyExist(err, patient.HealthCardNumber)
		}
		return nil, exceptions.ErrMongoDBInsertDocument(err)
	}
	patient.ID = result.InsertedID.(primitive.ObjectID)
	return patient, nil
}

func (repo *PatientMongoRepository) FindByID(ctx context.Context, patientID primitive.ObjectID) (*models.Patient, error) {
	return repo.findOne(ctx, bson.M{"_id": patientID})
}

func (repo *PatientMongoRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Patient, error) {
	return repo.findOne(ctx, bson.M{"user": userID})
}

func (repo *PatientMongoRepository) FindByHealthCardNumber(ctx context.Context, healthCardNumber string) (*models.Patient, error) {
	return repo.findOne(ctx, bson.M{"healthCardNumber": healthCardNumber})
}

func (repo *PatientMongoRepository) Search(ctx context.Context, query models.PatientQuery, pagination *requests.Pagination) ([]models.Patient, int, error) {
	pipeline := []bson.M{{"$match": queries.PatientFilter(query)}}
	pipeline = append(pipeline, queries.PatientSearchStages(query.Search)...)

	items := []bson.M{{"$sort": bson.M{"createdAt": -1}}}
	pipeline = append(pipeline, bson.M{"$facet": bson.M{
		"items": queries.Paginate(items, pagination.Skip(), pagination.Limit()),
		"total": []bson.M{{"$count": "count"}},
	}})

	cursor, err := repo.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	var page []struct {
		Items []models.Patient `bson:"items"`
		Total []struct {
			Count int `bson:"count"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &page); err != nil {
		return nil, 0, exceptions.ErrMongoDBIterateDocuments(err)
	}

	patients := make([]models.Patient, 0)
	total := 0
	if len(page) > 0 {
		patients = append(patients, page[0].Items...)
		if len(page[0].Total) > 0 {
			total = page[0].Total[0].Count
		}
	}
	return patients, total, nil
}

func (repo *PatientMongoRepository) Update(ctx context.Context, patientID primitive.ObjectID, fields map[string]interface{}) (*models.Patient, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var patient models.Patient
	err := repo.Collection.FindOneAndUpdate(ctx, bson.M{"_id": patientID}, bson.M{"$set": fields}, opts).Decode(&patient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, exceptions.ErrDuplicateKey(err)
		}
		return nil, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return &patient, nil
}

func (repo *PatientMongoRepository) Delete(ctx context.Context, patientID primitive.ObjectID) error {
	_, err := repo.Collection.DeleteOne(ctx, bson.M{"_id": patientID})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	return nil
}

func (repo *PatientMongoRepository) Stats(ctx context.Context, created *models.DateRange) (*models.PatientStats, error) {
	match := bson.M{}
	if created != nil {
		match["createdAt"] = queries.Between(*created)
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":               nil,
			"totalPatients":     bson.M{"$sum": 1},
			"activePatients":    statusCounter(models.PatientStatusActive),
			"inactivePatients":  statusCounter(models.PatientStatusInactive),
			"suspendedPatients": statusCounter(models.PatientStatusSuspended),
		}},
	}

	cursor, err := repo.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	var stats []models.PatientStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	if len(stats) == 0 {
		return &models.PatientStats{}, nil
	}
	return &stats[0], nil
}

func (repo *PatientMongoRepository) PushMedicalRecord(ctx context.Context, patientID primitive.ObjectID, record *models.MedicalRecord) error {
	return repo.push(ctx, patientID, "medicalHistory", record)
}

func (repo *PatientMongoRepository) ReplaceMedicalRecord(ctx context.Context, patientID primitive.ObjectID, record *models.MedicalRecord) (bool, error) {
	filter := bson.M{"_id": patientID, "medicalHistory._id": record.ID}
	update := bson.M{"$set": bson.M{"medicalHistory.$": record}}

	result, err := repo.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount > 0, nil
}

func (repo *PatientMongoRepository) PullMedicalRecord(ctx context.Context, patientID, recordID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": patientID, "medicalHistory._id": recordID}
	update := bson.M{"$pull": bson.M{"medicalHistory": bson.M{"_id": recordID}}}

	result, err := repo.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.ModifiedCount > 0, nil
}

func (repo *PatientMongoRepository) PushDocument(ctx context.Context, patientID primitive.ObjectID, document *models.Document) error {
	return repo.push(ctx, patientID, "documents", document)
}

func (repo *PatientMongoRepository) push(ctx context.Context, patientID primitive.ObjectID, field string, value interface{}) error {
	_, err := repo.Collection.UpdateOne(ctx, bson.M{"_id": patientID}, bson.M{"$push": bson.M{field: value}})
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (repo *PatientMongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Patient, error) {
	var patient models.Patient
	err := repo.Collection.FindOne(ctx, filter).Decode(&patient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &patient, nil
}

func statusCounter(status string) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0}}}
}
