package events

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Envelope is the message body written to the events exchange.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	RequestID  string      `json:"requestId,omitempty"`
	Data       interface{} `json:"data"`
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type rabbitMQEventPublisher struct {
	ch amqpChannel
	confirms <-chan amqp.Confirmation
	exchange string
	log      *zap.Logger
	mu       sync.Mutex
}

// NewRabbitMQEventPublisher opens a confirm mode channel on conn and publishes
// persistent messages to the configured topic exchange.
func NewRabbitMQEventPublisher(conn *amqp.Connection, internalConfig *config.InternalConfig, logger *zap.Logger) (contracts.EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, exceptions.ErrRabbitMQOpenChannel(err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, exceptions.ErrRabbitMQOpenChannel(err)
	}

	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return newRabbitMQEventPublisher(ch, confirms, internalConfig.RabbitMQ.Exchange, logger), nil
}

func newRabbitMQEventPublisher(ch amqpChannel, confirms <-chan amqp.Confirmation, exchange string, logger *zap.Logger) *rabbitMQEventPublisher {
	return &rabbitMQEventPublisher{
		ch:       ch,
		confirms: confirms,
		exchange: exchange,
		log:      logger,
	}
}

func (p *rabbitMQEventPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	envelope := Envelope{
		ID:         uuid.NewString(),
		Type:       routingKey,
		OccurredAt: time.Now().UTC(),
		RequestID:  requestID,
		Data:       payload,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		MessageId:    envelope.ID,
		Timestamp:    envelope.OccurredAt,
		Type:         routingKey,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		p.log.Error("rabbitMQEventPublisher.Publish error publishing message",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, routingKey),
			zap.Error(err),
		)
		return exceptions.ErrRabbitMQPublish(err, p.exchange)
	}

	select {
	case confirmed, ok := <-p.confirms:
		if !ok || !confirmed.Ack {
			return exceptions.ErrRabbitMQPublish(fmt.Errorf("message %s not confirmed", envelope.ID), p.exchange)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublish(ctx.Err(), p.exchange)
	}

	p.log.Info("rabbitMQEventPublisher.Publish succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventTypeKey, routingKey),
	)
	return nil
}

type logEventPublisher struct {
	log *zap.Logger
}

// NewLogEventPublisher records events in the log only. It backs deployments
// without a broker.
func NewLogEventPublisher(logger *zap.Logger) contracts.EventPublisher {
	return &logEventPublisher{log: logger}
}

func (p *logEventPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	p.log.Info("logEventPublisher.Publish",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventTypeKey, routingKey),
		zap.Any("data", payload),
	)
	return nil
}
