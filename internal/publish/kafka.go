package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/egregors/iotsim/internal/telemetry"
	"github.com/egregors/iotsim/log"
)

const (
	DefaultKafkaTopic = "device.readings"

	// one sample per loop iteration: a sync write must not wait for a batch
	// to fill up or for the default 1s batch timer
	kafkaBatchSize    = 1
	kafkaBatchTimeout = 10 * time.Millisecond
)

type KafkaOpts struct {
	Brokers  []string
	Topic    string
	SensorID string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Kafka struct {
	w        messageWriter
	sensorID string
	now      func() time.Time
}

func NewKafka(opts KafkaOpts) *Kafka {
	if opts.Topic == "" {
		opts.Topic = DefaultKafkaTopic
	}
	log.Info.Printf("kafka writer for %v, topic %s", opts.Brokers, opts.Topic)

	return &Kafka{
		w: &kafka.Writer{
			Addr:         kafka.TCP(opts.Brokers...),
			Topic:        opts.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchSize:    kafkaBatchSize,
			BatchTimeout: kafkaBatchTimeout,
		},
		sensorID: opts.SensorID,
		now:      time.Now,
	}
}

func (k *Kafka) Publish(ctx context.Context, r telemetry.Reading) error {
	msg, err := k.message(r)
	if err != nil {
		return err
	}

	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write failed: %w", err)
	}

	return nil
}

func (k *Kafka) message(r telemetry.Reading) (kafka.Message, error) {
	at := k.now()

	payload, err := encode(k.sensorID, r, at)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("can't marshal sample: %w", err)
	}

	return kafka.Message{Key: []byte(k.sensorID), Value: payload, Time: at}, nil
}

func (k *Kafka) Close() error {
	return k.w.Close()
}
