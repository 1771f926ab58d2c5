package messaging

import (
	"fmt"
	"hospital-service/internal/app/config"
	"log"

	"github.com/rabbitmq/amqp091-go"
)

func NewRabbitMQ(driverConfig *config.DriverConfig) *amqp091.Connection {
	connectionString := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		driverConfig.RabbitMQ.Username,
		driverConfig.RabbitMQ.Password,
		driverConfig.RabbitMQ.Host,
		driverConfig.RabbitMQ.Port,
	)
	conn, err := amqp091.Dial(connectionString)
	if err != nil {
		log.Fatalf("Failed to connect to rabbitMQ: %s", err.Error())
	}
	log.Println("Successfully connected to rabbitMQ")
	return conn
}

// DeclareExchange makes sure the durable topic exchange domain events are published to exists.
func DeclareExchange(conn *amqp091.Connection, internalConfig *config.InternalConfig) {
	channel, err := conn.Channel()
	if err != nil {
		log.Fatalf("Failed to open rabbitMQ channel: %s", err.Error())
	}
	defer channel.Close()

	err = channel.ExchangeDeclare(internalConfig.RabbitMQ.Exchange, amqp091.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		log.Fatalf("Failed to declare rabbitMQ exchange %s: %s", internalConfig.RabbitMQ.Exchange, err.Error())
	}
	log.Printf("Successfully declared rabbitMQ exchange %s", internalConfig.RabbitMQ.Exchange)
}
