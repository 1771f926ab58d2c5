package queries

import (
	"hospital-service/internal/app/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ReportFilter restricts a non admin viewer to public reports and reports
// shared with their role or with them directly.
func ReportFilter(query models.ReportQuery) bson.M {
	filter := bson.M{}
	if query.ReportType != "" {
		filter["reportType"] = query.ReportType
	}
	if query.Status != "" {
		filter["status"] = query.Status
	}
	if query.Category != "" {
		filter["category"] = query.Category
	}
	if len(query.Tags) > 0 {
		filter["tags"] = bson.M{"$in": query.Tags}
	}
	if query.IsTemplate != nil {
		filter["isTemplate"] = *query.IsTemplate
	}

	if query.Viewer != nil && !query.Viewer.IsAdmin() {
		visibility := []bson.M{
			{"accessLevel": models.AccessLevelPublic},
			{"allowedRoles": query.Viewer.Role},
		}
		if !query.Viewer.IsSystem() {
			visibility = append(visibility, bson.M{"allowedUsers": query.Viewer.UserID})
		}
		filter["$or"] = visibility
	}
	return filter
}
