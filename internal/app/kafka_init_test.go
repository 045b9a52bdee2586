package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitKafkaPublisher_EmptyBrokers(t *testing.T) {
	logger := log.WithField("component", "app-test")

	publisher, err := initKafkaPublisher("", logger)
	if err != nil {
		t.Fatalf("expected no error for empty brokers, got %v", err)
	}
	if publisher != nil {
		t.Fatal("expected nil publisher for empty brokers")
	}
}

func TestCloseKafka_Nil(t *testing.T) {
	logger := log.WithField("component", "app-test")

	// Не должно паниковать.
	closeKafka(nil, logger)
}
