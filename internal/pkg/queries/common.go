package queries

import (
	"hospital-service/internal/app/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Between is an inclusive range condition on both ends.
func Between(window models.DateRange) bson.M {
	return bson.M{"$gte": window.StartDate, "$lte": window.EndDate}
}

// SameDay matches any instant of the calendar day of t.
func SameDay(t time.Time) bson.M {
	day := models.CalendarDay(t)
	return bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)}
}

// Paginate appends skip and limit stages when pagination is set.
func Paginate(pipeline []bson.M, skip, limit int64) []bson.M {
	if skip > 0 {
		pipeline = append(pipeline, bson.M{"$skip": skip})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}
	return pipeline
}

// UserSummaryLookup resolves localField into a single user summary stored under as.
func UserSummaryLookup(localField, as string) []bson.M {
	return []bson.M{
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   localField,
			"foreignField": "_id",
			"as":           as,
			"pipeline": []bson.M{
				{"$project": bson.M{"firstName": 1, "lastName": 1, "email": 1}},
			},
		}},
		{"$unwind": bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}},
	}
}
