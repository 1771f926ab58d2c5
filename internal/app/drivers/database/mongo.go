package database

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoDB connects to a replica set member. Multi-document transactions
// used by booking and payment flows are rejected by standalone servers.
func NewMongoDB(driverConfig *config.DriverConfig) *mongo.Client {
	connectionString := driverConfig.MongoDB.URI
	if connectionString == "" {
		connectionString = buildMongoConnectionString(driverConfig.MongoDB)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbOptions := options.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(ctx, dbOptions)
	if err != nil {
		log.Fatalf("Failed to connect to mongo database: %s", err.Error())
	}
	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		log.Fatalf("Failed to ping or test the connection to mongo database: %s", err.Error())
	}
	log.Println("Successfully connected to mongo database")
	return client
}

func buildMongoConnectionString(cfg config.MongoDB) string {
	credentials := ""
	if cfg.Username != "" {
		credentials = fmt.Sprintf("%s:%s@", cfg.Username, cfg.Password)
	}
	connectionString := fmt.Sprintf("mongodb://%s%s:%s/", credentials, cfg.Host, cfg.Port)
	if cfg.ReplicaSet != "" {
		connectionString = fmt.Sprintf("%s?replicaSet=%s", connectionString, cfg.ReplicaSet)
	}
	return connectionString
}
