package events

import (
	"context"
	"encoding/json"

	"github.com/anjiri1684/studlyf_network/metrics"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaPublisher struct {
	writer *kafkago.Writer
	log    *zap.SugaredLogger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.SugaredLogger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireOne,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				log.Warnw("failed to deliver events", "count", len(messages), "error", err)
			}
		},
	}
	return &KafkaPublisher{writer: w, log: log}
}

// Publish queues ev; delivery errors surface through the writer's completion
// callback, not here.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(ev.Type, "error").Inc()
		return err
	}
	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: b,
		Time:  ev.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(ev.Type, "error").Inc()
		return err
	}
	metrics.EventsPublished.WithLabelValues(ev.Type, "queued").Inc()
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
