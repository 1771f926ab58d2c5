package queries

import (
	"fmt"
	"hospital-service/internal/app/models"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
)

// PatientFilter translates every field of query except Search.
func PatientFilter(query models.PatientQuery) bson.M {
	filter := bson.M{}
	if query.Status != "" {
		filter["status"] = query.Status
	}
	if query.Gender != "" {
		filter["gender"] = query.Gender
	}
	if query.DoctorID != nil {
		filter["medicalHistory.doctor"] = *query.DoctorID
	}
	if query.Created != nil {
		filter["createdAt"] = Between(*query.Created)
	}
	if query.LastVisit != nil {
		filter["lastVisit"] = Between(*query.LastVisit)
	}
	if query.BornWithin != nil {
		filter["dateOfBirth"] = Between(*query.BornWithin)
	}
	if query.MinVisits > 0 {
		// medicalHistory has at least MinVisits entries
		filter[fmt.Sprintf("medicalHistory.%d", query.MinVisits-1)] = bson.M{"$exists": true}
	}
	return filter
}

// PatientSearchStages joins the owning user and matches search, case
// insensitive, against name, health card, phone and city.
func PatientSearchStages(search string) []bson.M {
	if search == "" {
		return nil
	}
	pattern := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	return []bson.M{
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "user",
			"foreignField": "_id",
			"as":           "searchUser",
		}},
		{"$match": bson.M{"$or": []bson.M{
			{"searchUser.firstName": pattern},
			{"searchUser.lastName": pattern},
			{"healthCardNumber": pattern},
			{"phone": pattern},
			{"address.city": pattern},
		}}},
		{"$project": bson.M{"searchUser": 0}},
	}
}
