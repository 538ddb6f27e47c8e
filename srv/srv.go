package srv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/egregors/iotsim/internal/telemetry"
	"github.com/egregors/iotsim/log"
)

const (
	DefaultInterval = 2 * time.Second
)

// ErrOutputWrite wraps any failure of the primary sink. It is not retried.
var ErrOutputWrite = errors.New("output write failure")

type Sampler interface {
	Sample() (telemetry.Reading, error)
}

// Publisher is a secondary sink. Its failures never stop the loop.
type Publisher interface {
	Publish(ctx context.Context, r telemetry.Reading) error
}

type flusher interface {
	Flush() error
}

type Option func(s *Server)

// WithInterval sets the pause between samples. Zero disables it.
func WithInterval(d time.Duration) Option {
	return func(s *Server) {
		s.interval = d
	}
}

// WithCount stops the loop after n samples. Zero means run until cancelled.
func WithCount(n int) Option {
	return func(s *Server) {
		s.count = n
	}
}

func WithPublishers(ps ...Publisher) Option {
	return func(s *Server) {
		s.publishers = append(s.publishers, ps...)
	}
}

type Server struct {
	out        io.Writer
	sensor     Sampler
	publishers []Publisher

	interval time.Duration
	count    int

	emitted   int
	startTime time.Time
}

func New(out io.Writer, sensor Sampler, opts ...Option) *Server {
	s := &Server{
		out:      out,
		sensor:   sensor,
		interval: DefaultInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run writes the banner, then samples, emits and sleeps until ctx is done or
// the configured count is reached. A nil error means a graceful stop.
func (s *Server) Run(ctx context.Context) error {
	s.startTime = time.Now()
	defer func() {
		log.Info.Printf("emitted %d samples %s", s.emitted, s.formatUptime())
	}()

	if err := s.writeLine(telemetry.Banner); err != nil {
		return err
	}

	log.Info.Printf("start sampling with %v sleep", s.interval)
	for s.count == 0 || s.emitted < s.count {
		if ctx.Err() != nil {
			return nil
		}

		r, err := s.sensor.Sample()
		if err != nil {
			log.Erro.Printf("can't get sensor data: %s", err.Error())
		} else {
			if err := s.writeLine(telemetry.Format(r)); err != nil {
				return err
			}
			s.emitted++
			s.publish(ctx, r)
		}

		if s.count != 0 && s.emitted >= s.count {
			break
		}

		if !sleep(ctx, s.interval) {
			return nil
		}
	}

	return nil
}

func (s *Server) writeLine(line string) error {
	if _, err := io.WriteString(s.out, line+"\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	if f, ok := s.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("%w: flush: %w", ErrOutputWrite, err)
		}
	}

	return nil
}

func (s *Server) publish(ctx context.Context, r telemetry.Reading) {
	for _, p := range s.publishers {
		if err := p.Publish(ctx, r); err != nil {
			log.Erro.Printf("can't publish sample: %s", err.Error())
		}
	}
}

// sleep reports false when ctx ended before d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Server) formatUptime() string {
	d := time.Since(s.startTime)

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	parts = append(parts, fmt.Sprintf("%dm", minutes))

	return fmt.Sprintf("(uptime: %s)", strings.Join(parts, " "))
}
