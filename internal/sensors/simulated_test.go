package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egregors/iotsim/internal/prng"
	"github.com/egregors/iotsim/internal/telemetry"
)

type fixedDrawer []uint32

func (f *fixedDrawer) Draw() uint32 {
	v := (*f)[0]
	*f = (*f)[1:]

	return v
}

func TestSampleGolden(t *testing.T) {
	s := NewDefault()

	want := []string{"T:26.9,H:60.1", "T:25.9,H:61.1", "T:23.8,H:55.2", "T:22.1,H:62.5", "T:23.4,H:66.9"}
	for i, w := range want {
		r, err := s.Sample()
		require.NoError(t, err)
		assert.Equalf(t, w, telemetry.Format(r), "sample #%d", i)
	}
}

func TestFirstSampleValues(t *testing.T) {
	r, err := NewDefault().Sample()
	require.NoError(t, err)

	assert.InDelta(t, 26.900010, r.Temperature, 1e-5)
	assert.InDelta(t, 60.108368, r.Humidity, 1e-5)
}

func TestDeterministic(t *testing.T) {
	a, b := NewDefault(), NewDefault()
	for i := 0; i < 500; i++ {
		ra, _ := a.Sample()
		rb, _ := b.Sample()
		require.Equal(t, ra, rb)
	}
}

func TestRange(t *testing.T) {
	s := NewSimulated(prng.New(prng.DefaultSeed))
	for i := 0; i < 100000; i++ {
		r, _ := s.Sample()

		require.GreaterOrEqual(t, r.Temperature, 20.0)
		require.Less(t, r.Temperature, 30.0)
		require.GreaterOrEqual(t, r.Humidity, 50.0)
		require.Less(t, r.Humidity, 70.0)
	}
}

func TestBounds(t *testing.T) {
	low := fixedDrawer{0, 0}
	r, _ := NewSimulated(&low).Sample()
	assert.Equal(t, telemetry.Reading{Temperature: 20, Humidity: 50}, r)

	high := fixedDrawer{prng.MaxDraw - 1, prng.MaxDraw - 1}
	r, _ = NewSimulated(&high).Sample()
	assert.Less(t, r.Temperature, 30.0)
	assert.Less(t, r.Humidity, 70.0)
}

func TestDrawOrder(t *testing.T) {
	// temperature takes the first draw, humidity the second
	d := fixedDrawer{prng.MaxDraw / 2, 0}
	r, _ := NewSimulated(&d).Sample()

	assert.InDelta(t, 25.0, r.Temperature, 1e-9)
	assert.Equal(t, 50.0, r.Humidity)
}
