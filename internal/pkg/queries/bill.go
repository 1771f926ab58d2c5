package queries

import (
	"hospital-service/internal/app/models"

	"go.mongodb.org/mongo-driver/bson"
)

func BillFilter(query models.BillQuery) bson.M {
	filter := bson.M{}
	if query.UserID != nil {
		filter["userId"] = *query.UserID
	}
	if query.DoctorID != nil {
		filter["doctorId"] = *query.DoctorID
	}
	if query.Status != "" {
		filter["status"] = query.Status
	}
	if query.Window != nil {
		filter["date"] = Between(*query.Window)
	}
	if query.PaidAt != nil {
		filter["paidAt"] = Between(*query.PaidAt)
	}
	if query.DueDay != nil {
		filter["date"] = SameDay(*query.DueDay)
	}
	return filter
}

// BillDetailStages resolves the appointment summary and both participants of each bill.
func BillDetailStages() []bson.M {
	stages := []bson.M{
		{"$lookup": bson.M{
			"from":         "appointments",
			"localField":   "appointmentId",
			"foreignField": "_id",
			"as":           "appointment",
			"pipeline": []bson.M{
				{"$project": bson.M{"date": 1, "time": 1, "reason": 1, "status": 1}},
			},
		}},
		{"$unwind": bson.M{"path": "$appointment", "preserveNullAndEmptyArrays": true}},
	}
	stages = append(stages, UserSummaryLookup("userId", "patient")...)
	return append(stages, UserSummaryLookup("doctorId", "doctor")...)
}
