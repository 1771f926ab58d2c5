package queries

import (
	"hospital-service/internal/app/models"

	"go.mongodb.org/mongo-driver/bson"
)

func AppointmentFilter(query models.AppointmentQuery) bson.M {
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
	return filter
}

// ActiveSlotFilter matches the bookings that hold a doctor's slot on a day.
func ActiveSlotFilter(query models.AppointmentQuery, timeSlot string) bson.M {
	filter := AppointmentFilter(query)
	filter["status"] = bson.M{"$in": models.ActiveAppointmentStatuses}
	if timeSlot != "" {
		filter["time"] = timeSlot
	}
	return filter
}

// AppointmentDetailStages resolves patient, doctor and bill of each appointment.
func AppointmentDetailStages() []bson.M {
	stages := append(UserSummaryLookup("userId", "patient"), UserSummaryLookup("doctorId", "doctor")...)
	return append(stages,
		bson.M{"$lookup": bson.M{
			"from":         "bills",
			"localField":   "billId",
			"foreignField": "_id",
			"as":           "bill",
		}},
		bson.M{"$unwind": bson.M{"path": "$bill", "preserveNullAndEmptyArrays": true}},
	)
}
