// Package telemetry defines the reading type and its text line format
// `T:<temperature>,H:<humidity>` shared by the simulator and the dashboard.
package telemetry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Banner is written once before the first sample. The trailing newline makes
// a blank line once the line terminator is added.
const Banner = "RISC-V IoT Data Simulator Starting...\n"

var ErrNotSample = errors.New("not a sample line")

type Reading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// Snapshot is a reading stamped with the moment it was observed.
type Snapshot struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   float64 `json:"timestamp"` // unix seconds
}

func NewSnapshot(r Reading, at time.Time) Snapshot {
	return Snapshot{
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Timestamp:   float64(at.UnixNano()) / float64(time.Second),
	}
}

// Format renders r with one fractional digit per value, without a newline.
func Format(r Reading) string {
	return fmt.Sprintf("T:%.1f,H:%.1f", r.Temperature, r.Humidity)
}

// Round returns r with both values rounded the way Format prints them.
func Round(r Reading) Reading {
	return Reading{
		Temperature: round1(r.Temperature),
		Humidity:    round1(r.Humidity),
	}
}

func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)

	return r
}

// Parse reads one sample line. Surrounding whitespace is ignored.
func Parse(line string) (Reading, error) {
	line = strings.TrimSpace(line)

	t, h, ok := strings.Cut(line, ",")
	if !ok {
		return Reading{}, fmt.Errorf("%w: %q", ErrNotSample, line)
	}

	temp, err := field(t, "T:")
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %q: %w", ErrNotSample, line, err)
	}
	humi, err := field(h, "H:")
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %q: %w", ErrNotSample, line, err)
	}

	return Reading{Temperature: temp, Humidity: humi}, nil
}

func field(s, prefix string) (float64, error) {
	v, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return 0, fmt.Errorf("missing %q", prefix)
	}

	return strconv.ParseFloat(v, 64)
}

// LastSample scans r to the end and returns the last line that parses as a
// sample. ErrNotSample is returned when there is none.
func LastSample(r io.Reader) (Reading, error) {
	var (
		last  Reading
		found bool
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if reading, err := Parse(sc.Text()); err == nil {
			last, found = reading, true
		}
	}
	if err := sc.Err(); err != nil {
		return Reading{}, fmt.Errorf("can't scan samples: %w", err)
	}

	if !found {
		return Reading{}, ErrNotSample
	}

	return last, nil
}
