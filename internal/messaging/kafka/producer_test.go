package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
)

func TestOrderEventPublisher_PublishOrderEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	publisher := &OrderEventPublisher{
		producer: mockProducer,
		topic:    TopicOrderEvents,
		logger:   log.WithField("component", "kafka-order-events-test"),
	}

	// Проверяем и ключ, и содержимое сообщения.
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "order-1" {
			t.Errorf("expected message key order-1, got %s", key)
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded domain.OrderEvent
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.Type != domain.OrderEventCreated {
			t.Errorf("expected event type %s, got %s", domain.OrderEventCreated, decoded.Type)
		}
		if decoded.TotalPrice.StringFixed(2) != "21.98" {
			t.Errorf("expected total 21.98, got %s", decoded.TotalPrice)
		}
		return nil
	})

	err := publisher.PublishOrderEvent(domain.OrderEvent{
		ID:          "event-1",
		Type:        domain.OrderEventCreated,
		OrderID:     "order-1",
		TableNumber: 5,
		Status:      domain.OrderStatusPending,
		TotalPrice:  decimal.RequireFromString("21.98"),
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderEventPublisher_PublishOrderEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	publisher := &OrderEventPublisher{
		producer: mockProducer,
		topic:    TopicOrderEvents,
		logger:   log.WithField("component", "kafka-order-events-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := publisher.PublishOrderEvent(domain.OrderEvent{
		ID:      "event-2",
		Type:    domain.OrderEventDeleted,
		OrderID: "order-2",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}
