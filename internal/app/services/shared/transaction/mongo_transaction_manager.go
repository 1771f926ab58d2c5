package transaction

import (
	"context"
	"errors"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

type mongoTransactionManager struct {
	Client *mongo.Client
	Log    *zap.Logger
}

func NewMongoTransactionManager(client *mongo.Client, logger *zap.Logger) contracts.TransactionManager {
	return &mongoTransactionManager{
		Client: client,
		Log:    logger,
	}
}

// WithTransaction runs fn in a mongo session transaction. fn may be retried by
// the driver on transient transaction errors.
func (m *mongoTransactionManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	session, err := m.Client.StartSession()
	if err != nil {
		m.Log.Error("mongoTransactionManager.WithTransaction error starting session",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrMongoDBTransaction(err)
	}
	defer session.EndSession(ctx)

	transactionOptions := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessionCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessionCtx)
	}, transactionOptions)
	if err != nil {
		m.Log.Error("mongoTransactionManager.WithTransaction transaction aborted",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		var customErr *exceptions.CustomError
		if errors.As(err, &customErr) {
			return err
		}
		return exceptions.ErrMongoDBTransaction(err)
	}

	return nil
}
