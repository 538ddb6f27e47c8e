package sensors

import (
	"github.com/egregors/iotsim/internal/prng"
	"github.com/egregors/iotsim/internal/telemetry"
)

const (
	baseTemperature = 20.0
	baseHumidity    = 50.0

	temperatureScale = prng.MaxDraw / 10.0
	humidityScale    = prng.MaxDraw / 20.0
)

// Drawer is a source of values in [0, prng.MaxDraw).
type Drawer interface {
	Draw() uint32
}

// Simulated is a climate sensor MOCK fed by a deterministic generator.
// Two simulators built from equally seeded generators yield the same stream.
type Simulated struct {
	gen Drawer
}

func NewSimulated(gen Drawer) *Simulated {
	return &Simulated{gen: gen}
}

// NewDefault returns a simulator seeded with prng.DefaultSeed.
func NewDefault() *Simulated {
	return NewSimulated(prng.New(prng.DefaultSeed))
}

// Sample draws temperature first, then humidity.
func (s *Simulated) Sample() (telemetry.Reading, error) {
	t, _ := s.CurrentTemperature()
	h, _ := s.CurrentHumidity()

	return telemetry.Reading{Temperature: t, Humidity: h}, nil
}

func (s *Simulated) CurrentTemperature() (float64, error) {
	return baseTemperature + float64(s.gen.Draw())/temperatureScale, nil
}

func (s *Simulated) CurrentHumidity() (float64, error) {
	return baseHumidity + float64(s.gen.Draw())/humidityScale, nil
}
