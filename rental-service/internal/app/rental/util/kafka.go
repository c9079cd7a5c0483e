package util

import (
	"context"
	"fmt"
	"time"

	"rentaldesk/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer отправляет доменные события о товарах и бронированиях
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer создает producer.
// Короткий BatchTimeout: запись идёт в пути запроса и не должна ждать заполнения батча.
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

// PublishMessage отправляет сообщение; key - id сущности, чтобы события одной записи шли по порядку
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	timer := metrics.NewKafkaProduceTimer(metricsService, p.topic)

	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	timer.Success()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NoopPublisher используется, когда брокеры Kafka не настроены
type NoopPublisher struct{}

func (NoopPublisher) PublishMessage(context.Context, string, []byte) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
