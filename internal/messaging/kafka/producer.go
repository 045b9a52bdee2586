package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
)

// TopicOrderEvents — топик, в который публикуются события заказов.
const TopicOrderEvents = "cafe.order.events"

// OrderEventPublisher публикует события заказов в Kafka.
// Ключ сообщения — идентификатор заказа, поэтому события одного
// заказа попадают в одну партицию и сохраняют порядок.
type OrderEventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *log.Entry
}

// NewOrderEventPublisher подключается к брокерам и создаёт publisher.
func NewOrderEventPublisher(brokers []string) (*OrderEventPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // требование идемпотентного продюсера

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &OrderEventPublisher{
		producer: producer,
		topic:    TopicOrderEvents,
		logger:   log.WithField("component", "kafka-order-events"),
	}, nil
}

// PublishOrderEvent сериализует событие и синхронно отправляет его в топик.
func (p *OrderEventPublisher) PublishOrderEvent(event domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.OrderID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic":    p.topic,
			"order_id": event.OrderID,
			"type":     event.Type,
		}).Error("failed to send order event to kafka")
		return fmt.Errorf("failed to send order event: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"topic":     p.topic,
		"order_id":  event.OrderID,
		"type":      event.Type,
		"partition": partition,
		"offset":    offset,
	}).Debug("order event sent to kafka")

	return nil
}

// Close закрывает producer
func (p *OrderEventPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

var _ domain.EventPublisher = (*OrderEventPublisher)(nil)
