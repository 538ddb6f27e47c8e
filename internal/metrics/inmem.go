package metrics

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/egregors/iotsim/log"
)

const (
	cleanerWorkerSleep = 30 * time.Second
)

type Option func(m *InMem)

func WithRetention(dur time.Duration) Option {
	return func(m *InMem) {
		m.retentionDuration = dur
	}
}

// WithBackup restores the timeline from path on start and lets Dump write it back.
func WithBackup(path string) Option {
	return func(m *InMem) {
		m.backupPath = path
	}
}

func withClock(now func() time.Time) Option {
	return func(m *InMem) {
		m.now = now
	}
}

type Value struct {
	T time.Time
	V float64
}

// InMem keeps gauge timelines in memory. Safe for concurrent use.
type InMem struct {
	mu            sync.RWMutex
	gaugeTimeLine map[string][]Value

	backupPath        string
	retentionDuration time.Duration
	now               func() time.Time
}

func New(opts ...Option) *InMem {
	m := &InMem{
		gaugeTimeLine: make(map[string][]Value),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.backupPath != "" {
		log.Info.Println("try to restore from dump")
		if err := m.Restore(); err != nil {
			log.Erro.Printf("not this time: %s", err.Error())
		} else {
			for k, v := range m.gaugeTimeLine {
				log.Info.Printf("-- %s: %d", k, len(v))
			}
		}
	}

	return m
}

func (m *InMem) Gauge(key string, val float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gaugeTimeLine[key] = append(m.gaugeTimeLine[key], Value{T: m.now(), V: val})
}

// Last returns up to n most recent values of key, oldest first.
func (m *InMem) Last(key string, n int) []Value {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := m.gaugeTimeLine[key]
	if n <= 0 || len(data) == 0 {
		return nil
	}
	if n > len(data) {
		n = len(data)
	}

	out := make([]Value, n)
	copy(out, data[len(data)-n:])

	return out
}

// Avg returns hourly averages of key over the last dur, sorted by hour.
func (m *InMem) Avg(key string, dur time.Duration) []Value {
	m.mu.RLock()
	data := m.gaugeTimeLine[key]
	end := m.now()
	start := end.Add(-dur)

	hAvg := make(map[time.Time][]float64)
	for _, v := range data {
		if v.T.After(start) && !v.T.After(end) {
			h := v.T.Truncate(time.Hour)
			hAvg[h] = append(hAvg[h], v.V)
		}
	}
	m.mu.RUnlock()

	avg := make([]Value, 0, len(hAvg))
	for k, v := range hAvg {
		sum := 0.0
		for _, vv := range v {
			sum += vv
		}

		avg = append(avg, Value{T: k, V: sum / float64(len(v))})
	}

	sort.Slice(avg, func(i, j int) bool {
		return avg[i].T.Before(avg[j].T)
	})

	return avg
}

// Run drops values older than the retention window until ctx is done.
func (m *InMem) Run(ctx context.Context) error {
	if m.retentionDuration == 0 {
		log.Info.Println("retention isn't set up")
		<-ctx.Done()

		return nil
	}

	t := time.NewTicker(cleanerWorkerSleep)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := m.cleanup(); n != 0 {
				log.Debg.Printf("cleaner removed %d gauges by retention policy", n)
			}
		}
	}
}

func (m *InMem) cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.retentionDuration)
	removed := 0
	for k, v := range m.gaugeTimeLine {
		kept := v[:0]
		for _, vv := range v {
			if vv.T.After(cutoff) {
				kept = append(kept, vv)
			}
		}
		removed += len(v) - len(kept)
		m.gaugeTimeLine[k] = kept
	}

	return removed
}

func (m *InMem) Dump() error {
	if m.backupPath == "" {
		return nil
	}

	m.mu.RLock()
	buf := new(bytes.Buffer)
	err := gob.NewEncoder(buf).Encode(m.gaugeTimeLine)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("can't encode items: %w", err)
	}

	if err := os.WriteFile(m.backupPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("can't save dump: %w", err)
	}

	return nil
}

func (m *InMem) Restore() error {
	f, err := os.ReadFile(m.backupPath)
	if err != nil {
		return fmt.Errorf("can't read dump: %w", err)
	}

	tl := make(map[string][]Value)
	if err := gob.NewDecoder(bytes.NewReader(f)).Decode(&tl); err != nil {
		return fmt.Errorf("can't decode items: %w", err)
	}

	m.mu.Lock()
	m.gaugeTimeLine = tl
	m.mu.Unlock()

	return nil
}
