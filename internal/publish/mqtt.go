package publish

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/egregors/iotsim/internal/telemetry"
	"github.com/egregors/iotsim/log"
)

const (
	DefaultMQTTTopic = "sensors/readings"

	disconnectQuiesce = 250 // ms
)

type MQTTOpts struct {
	Broker   string
	Topic    string
	SensorID string
}

type MQTT struct {
	client   mqtt.Client
	topic    string
	sensorID string
	now      func() time.Time
}

// ClientID returns a broker-unique client id with the given prefix.
func ClientID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func NewMQTT(opts MQTTOpts) (*MQTT, error) {
	if opts.Topic == "" {
		opts.Topic = DefaultMQTTTopic
	}

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(ClientID("iotsim")).
		SetAutoReconnect(true)

	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("can't connect to MQTT broker %s: %w", opts.Broker, token.Error())
	}
	log.Info.Printf("connected to MQTT broker at %s, topic %s", opts.Broker, opts.Topic)

	return &MQTT{
		client:   client,
		topic:    opts.Topic,
		sensorID: opts.SensorID,
		now:      time.Now,
	}, nil
}

func (m *MQTT) Publish(ctx context.Context, r telemetry.Reading) error {
	payload, err := encode(m.sensorID, r, m.now())
	if err != nil {
		return fmt.Errorf("can't marshal sample: %w", err)
	}

	token := m.client.Publish(m.topic, 0, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("can't publish to %s: %w", m.topic, err)
	}
	log.Debg.Printf("mqtt %s <- %s", m.topic, payload)

	return nil
}

func (m *MQTT) Close() error {
	m.client.Disconnect(disconnectQuiesce)

	return nil
}
