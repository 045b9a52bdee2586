package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafe-manager/internal/messaging/kafka"
)

// initKafkaPublisher инициализирует publisher событий, если brokers не пустой.
// Возвращает nil, nil если brokers пустой или если произошла ошибка.
func initKafkaPublisher(brokers string, logger *log.Entry) (*kafka.OrderEventPublisher, error) {
	if brokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(brokers, ",")
	publisher, err := kafka.NewOrderEventPublisher(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka publisher, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka publisher initialized")
	return publisher, nil
}

// closeKafka закрывает publisher если он не nil.
func closeKafka(publisher *kafka.OrderEventPublisher, logger *log.Entry) {
	if publisher == nil {
		return
	}

	if err := publisher.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka publisher")
	} else {
		logger.Info("kafka publisher closed")
	}
}
