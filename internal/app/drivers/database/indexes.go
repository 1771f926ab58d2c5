package database

import (
	"context"
	"fmt"
	"hospital-service/internal/pkg/constvars"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CollectionIndexes struct {
	Collection string
	Models     []mongo.IndexModel
}

// IndexDefinitions lists every index the service expects to exist.
// Email and health card uniqueness are enforced here, not in application code.
func IndexDefinitions() []CollectionIndexes {
	return []CollectionIndexes{
		{
			Collection: constvars.MongoCollectionUsers,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetName("uniq_email").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "role", Value: 1}},
					Options: options.Index().SetName("idx_role"),
				},
			},
		},
		{
			Collection: constvars.MongoCollectionPatients,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "healthCardNumber", Value: 1}},
					Options: options.Index().SetName("uniq_health_card_number").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "user", Value: 1}},
					Options: options.Index().SetName("uniq_user").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("idx_status_created_at"),
				},
			},
		},
		{
			Collection: constvars.MongoCollectionAppointments,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "doctorId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
					Options: options.Index().SetName("idx_doctor_slot"),
				},
				{
					Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
					Options: options.Index().SetName("idx_user_date"),
				},
				{
					Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}},
					Options: options.Index().SetName("idx_status_date"),
				},
			},
		},
		{
			Collection: constvars.MongoCollectionBills,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
					Options: options.Index().SetName("idx_status_created_at"),
				},
				{
					Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
					Options: options.Index().SetName("idx_user_date"),
				},
				{
					Keys:    bson.D{{Key: "appointmentId", Value: 1}},
					Options: options.Index().SetName("uniq_appointment").SetUnique(true),
				},
			},
		},
		{
			Collection: constvars.MongoCollectionReports,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "expiresAt", Value: 1}},
					Options: options.Index().SetName("idx_expires_at"),
				},
				{
					Keys:    bson.D{{Key: "reportType", Value: 1}, {Key: "isTemplate", Value: 1}, {Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("idx_type_template_created_at"),
				},
				{
					Keys:    bson.D{{Key: "tags", Value: 1}},
					Options: options.Index().SetName("idx_tags"),
				},
			},
		},
		{
			Collection: constvars.MongoCollectionAnalytics,
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "reportType", Value: 1}, {Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("idx_type_created_at"),
				},
			},
		},
	}
}

// EnsureIndexes creates any missing index and returns the created names per
// collection. Creating an index that already exists with identical options is a no-op.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) (map[string][]string, error) {
	created := make(map[string][]string)
	db := client.Database(dbName)
	for _, def := range IndexDefinitions() {
		names, err := db.Collection(def.Collection).Indexes().CreateMany(ctx, def.Models)
		if err != nil {
			return created, fmt.Errorf("create indexes on %s: %w", def.Collection, err)
		}
		created[def.Collection] = names
	}
	return created, nil
}

// ListIndexes returns the index names currently present on every managed collection.
func ListIndexes(ctx context.Context, client *mongo.Client, dbName string) (map[string][]string, error) {
	existing := make(map[string][]string)
	db := client.Database(dbName)
	for _, def := range IndexDefinitions() {
		cursor, err := db.Collection(def.Collection).Indexes().List(ctx)
		if err != nil {
			return existing, fmt.Errorf("list indexes on %s: %w", def.Collection, err)
		}

		var specs []bson.M
		if err := cursor.All(ctx, &specs); err != nil {
			return existing, fmt.Errorf("decode indexes on %s: %w", def.Collection, err)
		}
		for _, spec := range specs {
			if name, ok := spec["name"].(string); ok {
				existing[def.Collection] = append(existing[def.Collection], name)
			}
		}
	}
	return existing, nil
}
