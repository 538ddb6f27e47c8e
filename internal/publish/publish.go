// Package publish fans readings out to message brokers next to the text stream.
package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/egregors/iotsim/internal/telemetry"
)

type Publisher interface {
	Publish(ctx context.Context, r telemetry.Reading) error
	Close() error
}

// Message is the JSON payload sent to brokers. Values carry the same single
// decimal the text line does.
type Message struct {
	SensorID    string    `json:"sensorId"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
}

func NewMessage(sensorID string, r telemetry.Reading, at time.Time) Message {
	r = telemetry.Round(r)

	return Message{
		SensorID:    sensorID,
		Timestamp:   at.UTC(),
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
	}
}

func (m Message) Reading() telemetry.Reading {
	return telemetry.Reading{Temperature: m.Temperature, Humidity: m.Humidity}
}

func encode(sensorID string, r telemetry.Reading, at time.Time) ([]byte, error) {
	return json.Marshal(NewMessage(sensorID, r, at))
}

// Decode parses a payload produced by any publisher in this package.
func Decode(payload []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(payload, &m)

	return m, err
}
