package contracts

import "context"

// EventPublisher emits domain events after the state change they describe is committed.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}
