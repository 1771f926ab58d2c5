package analytics

import (
	"context"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// medicalHistoryUnwinds names the nested array to unwind before grouping on a
// medical history field. Fields not listed are scalars on the record itself.
var medicalHistoryUnwinds = map[string]string{
	"medicalHistory.symptoms":            "$medicalHistory.symptoms",
	"medicalHistory.medications.name":    "$medicalHistory.medications",
	"medicalHistory.labResults.testName": "$medicalHistory.labResults",
}

const unspecifiedLabel = "unspecified"

type MetricsMongoRepository struct {
	Patients     *mongo.Collection
	Appointments *mongo.Collection
	Bills        *mongo.Collection
	Users        *mongo.Collection
}

func NewMetricsMongoRepository(db *mongo.Client, dbName string) contracts.MetricsRepository {
	database := db.Database(dbName)
	return &MetricsMongoRepository{
		Patients:     database.Collection(constvars.MongoCollectionPatients),
		Appointments: database.Collection(constvars.MongoCollectionAppointments),
		Bills:        database.Collection(constvars.MongoCollectionBills),
		Users:        database.Collection(constvars.MongoCollectionUsers),
	}
}

func (repo *MetricsMongoRepository) CountPatients(ctx context.Context, query models.PatientQuery) (int64, error) {
	return count(ctx, repo.Patients, queries.PatientFilter(query))
}

func (repo *MetricsMongoRepository) PatientDemographics(ctx context.Context, query models.PatientQuery) ([]models.Patient, error) {
	opts := options.Find().SetProjection(bson.M{"dateOfBirth": 1, "gender": 1})

	cursor, err := repo.Patients.Find(ctx, queries.PatientFilter(query), opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	patients := make([]models.Patient, 0)
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return patients, nil
}

func (repo *MetricsMongoRepository) CountByPatientField(ctx context.Context, field string, query models.PatientQuery, limit int64) ([]models.CountItem, error) {
	pipeline := []bson.M{
		{"$match": queries.PatientFilter(query)},
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	}
	return aggregateCounts(ctx, repo.Patients, withTopN(pipeline, limit))
}

// CountMedicalHistory groups medical history entries dated inside window by field.
func (repo *MetricsMongoRepository) CountMedicalHistory(ctx context.Context, field string, window models.DateRange, filter models.MetricsFilter, limit int64) ([]models.CountItem, error) {
	pipeline := []bson.M{{"$unwind": "$medicalHistory"}}
	if path, ok := medicalHistoryUnwinds[field]; ok {
		pipeline = append(pipeline, bson.M{"$unwind": path})
	}

	match := bson.M{
		"medicalHistory.date": queries.Between(window),
		field:                 bson.M{"$nin": bson.A{nil, ""}},
	}
	if filter.DoctorID != nil {
		match["medicalHistory.doctor"] = *filter.DoctorID
	}
	pipeline = append(pipeline,
		bson.M{"$match": match},
		bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	)
	return aggregateCounts(ctx, repo.Patients, withTopN(pipeline, limit))
}

func (repo *MetricsMongoRepository) CountFollowUps(ctx context.Context, window models.DateRange, filter models.MetricsFilter) (int64, error) {
	record := bson.M{
		"followUpRequired": true,
		"date":             queries.Between(window),
	}
	if filter.DoctorID != nil {
		record["doctor"] = *filter.DoctorID
	}
	return count(ctx, repo.Patients, bson.M{"medicalHistory": bson.M{"$elemMatch": record}})
}

func (repo *MetricsMongoRepository) CountAppointments(ctx context.Context, query models.AppointmentQuery) (int64, error) {
	return count(ctx, repo.Appointments, queries.AppointmentFilter(query))
}

func (repo *MetricsMongoRepository) CountAppointmentsBy(ctx context.Context, field string, query models.AppointmentQuery, limit int64) ([]models.CountItem, error) {
	pipeline := []bson.M{
		{"$match": queries.AppointmentFilter(query)},
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	}
	return aggregateCounts(ctx, repo.Appointments, withTopN(pipeline, limit))
}

func (repo *MetricsMongoRepository) AppointmentsPerDoctor(ctx context.Context, query models.AppointmentQuery, limit int64) ([]models.DoctorAppointmentCount, error) {
	pipeline := []bson.M{
		{"$match": queries.AppointmentFilter(query)},
		{"$group": bson.M{"_id": "$doctorId", "appointmentCount": bson.M{"$sum": 1}}},
		{"$sort": bson.D{{Key: "appointmentCount", Value: -1}, {Key: "_id", Value: 1}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}
	pipeline = append(pipeline, doctorNameStages()...)

	cursor, err := repo.Appointments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	counts := make([]models.DoctorAppointmentCount, 0)
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return counts, nil
}

func (repo *MetricsMongoRepository) DoctorWorkloads(ctx context.Context, query models.AppointmentQuery) ([]models.DoctorWorkload, error) {
	pipeline := []bson.M{
		{"$match": queries.AppointmentFilter(query)},
		{"$group": bson.M{
			"_id":                   "$doctorId",
			"totalAppointments":     bson.M{"$sum": 1},
			"completedAppointments": statusCounter(models.AppointmentStatusCompleted),
			"cancelledAppointments": statusCounter(models.AppointmentStatusCancelled),
			"patients":              bson.M{"$addToSet": "$userId"},
		}},
		{"$addFields": bson.M{"uniquePatients": bson.M{"$size": "$patients"}}},
		{"$project": bson.M{"patients": 0}},
	}
	pipeline = append(pipeline, doctorNameStages()...)

	cursor, err := repo.Appointments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	workloads := make([]models.DoctorWorkload, 0)
	if err := cursor.All(ctx, &workloads); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return workloads, nil
}

func (repo *MetricsMongoRepository) CountUsers(ctx context.Context, role string, createdBefore *time.Time) (int64, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	if createdBefore != nil {
		filter["createdAt"] = bson.M{"$lte": *createdBefore}
	}
	return count(ctx, repo.Users, filter)
}

func (repo *MetricsMongoRepository) RegistrationsByMonth(ctx context.Context, window models.DateRange) ([]models.MonthlyCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"createdAt": queries.Between(window)}},
		{"$group": bson.M{
			"_id":   bson.M{"year": bson.M{"$year": "$createdAt"}, "month": bson.M{"$month": "$createdAt"}},
			"count": bson.M{"$sum": 1},
		}},
		{"$project": bson.M{"_id": 0, "year": "$_id.year", "month": "$_id.month", "count": 1}},
		{"$sort": bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}}},
	}

	cursor, err := repo.Users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	months := make([]models.MonthlyCount, 0)
	if err := cursor.All(ctx, &months); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	for i := range months {
		months[i].Month = models.MonthName(months[i].Number)
	}
	return months, nil
}

func (repo *MetricsMongoRepository) CountUsersBy(ctx context.Context, field string) ([]models.CountItem, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
	}
	return aggregateCounts(ctx, repo.Users, pipeline)
}

// SumBillsBy groups bills by field. Object id fields are grouped on their hex form.
func (repo *MetricsMongoRepository) SumBillsBy(ctx context.Context, field string, query models.BillQuery) ([]models.AmountItem, error) {
	var key interface{} = "$" + field
	if strings.HasSuffix(field, "Id") {
		key = bson.M{"$toString": "$" + field}
	}

	pipeline := []bson.M{
		{"$match": queries.BillFilter(query)},
		{"$group": bson.M{
			"_id":         key,
			"count":       bson.M{"$sum": 1},
			"totalAmount": bson.M{"$sum": "$amount"},
		}},
		{"$sort": bson.D{{Key: "totalAmount", Value: -1}, {Key: "_id", Value: 1}}},
	}

	cursor, err := repo.Bills.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	items := make([]models.AmountItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return items, nil
}

func (repo *MetricsMongoRepository) RevenueByMonth(ctx context.Context, query models.BillQuery) ([]models.MonthlyAmount, error) {
	pipeline := []bson.M{
		{"$match": queries.BillFilter(query)},
		{"$group": bson.M{
			"_id":    bson.M{"year": bson.M{"$year": "$date"}, "month": bson.M{"$month": "$date"}},
			"amount": bson.M{"$sum": "$amount"},
			"count":  bson.M{"$sum": 1},
		}},
		{"$project": bson.M{"_id": 0, "year": "$_id.year", "month": "$_id.month", "amount": 1, "count": 1}},
		{"$sort": bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}}},
	}

	cursor, err := repo.Bills.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	months := make([]models.MonthlyAmount, 0)
	if err := cursor.All(ctx, &months); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	for i := range months {
		months[i].Month = models.MonthName(months[i].Number)
	}
	return months, nil
}

func count(ctx context.Context, collection *mongo.Collection, filter bson.M) (int64, error) {
	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, exceptions.ErrMongoDBCountDocuments(err)
	}
	return total, nil
}

func aggregateCounts(ctx context.Context, collection *mongo.Collection, pipeline []bson.M) ([]models.CountItem, error) {
	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBAggregate(err)
	}
	defer cursor.Close(ctx)

	items := make([]models.CountItem, 0)
	for cursor.Next(ctx) {
		var raw struct {
			Label interface{} `bson:"_id"`
			Count int64       `bson:"count"`
		}
		if err := cursor.Decode(&raw); err != nil {
			return nil, exceptions.ErrMongoDBIterateDocuments(err)
		}
		items = append(items, models.CountItem{Label: labelOf(raw.Label), Count: raw.Count})
	}
	if err := cursor.Err(); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return items, nil
}

// labelOf renders a group key. Documents missing the grouped field land in "unspecified".
func labelOf(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return unspecifiedLabel
	case string:
		if v == "" {
			return unspecifiedLabel
		}
		return v
	case primitive.ObjectID:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}

// withTopN sorts by count descending, ties broken by label, and keeps limit buckets.
func withTopN(pipeline []bson.M, limit int64) []bson.M {
	pipeline = append(pipeline, bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}})
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}
	return pipeline
}

// doctorNameStages resolves the grouped doctor id into name and email.
func doctorNameStages() []bson.M {
	return []bson.M{
		{"$lookup": bson.M{
			"from":         constvars.MongoCollectionUsers,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "doctor",
		}},
		{"$unwind": bson.M{"path": "$doctor", "preserveNullAndEmptyArrays": true}},
		{"$addFields": bson.M{
			"doctorName": bson.M{"$trim": bson.M{"input": bson.M{"$concat": bson.A{
				bson.M{"$ifNull": bson.A{"$doctor.firstName", ""}},
				" ",
				bson.M{"$ifNull": bson.A{"$doctor.lastName", ""}},
			}}}},
			"email": "$doctor.email",
		}},
		{"$project": bson.M{"doctor": 0}},
	}
}

func statusCounter(status string) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0}}}
}
