// Package dashboard serves the readings of a running simulator: a live
// chart, a JSON API, a text report and Prometheus metrics.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/egregors/iotsim/internal/metrics"
	"github.com/egregors/iotsim/internal/telemetry"
	"github.com/egregors/iotsim/log"
)

const (
	DefaultAddr = ":5000"

	temperatureKey = "current_temperature"
	humidityKey    = "current_humidity"

	shutdownTimeout = 5 * time.Second
)

type HapServer interface {
	SetCurrentTemperature(t float64)
	SetCurrentHumidity(h float64)

	ListenAndServe(ctx context.Context) error
}

type Opts struct {
	Addr    string
	Source  Source
	Hap     HapServer
	Metrics *metrics.InMem
}

type Server struct {
	addr    string
	source  Source
	hkSrv   HapServer
	metrics *metrics.InMem
	prom    *promMetrics
	now     func() time.Time

	mu     sync.RWMutex
	latest telemetry.Snapshot
	seen   bool
}

func New(opts Opts) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	return &Server{
		addr:    opts.Addr,
		source:  opts.Source,
		hkSrv:   opts.Hap,
		metrics: opts.Metrics,
		prom:    newPromMetrics(),
		now:     time.Now,
	}
}

// Run serves until ctx is done or one of the workers fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.source.Run(ctx, s.ingest, s.sourceFailed)
	})
	g.Go(func() error {
		log.Info.Printf("start web server on http://localhost%s", s.addr)
		return s.runWebServer(ctx)
	})
	if s.hkSrv != nil {
		g.Go(func() error {
			log.Info.Println("start HAP server")
			return s.hkSrv.ListenAndServe(ctx)
		})
	}
	g.Go(func() error {
		return s.metrics.Run(ctx)
	})

	return g.Wait()
}

func (s *Server) ingest(r telemetry.Reading) {
	s.mu.Lock()
	s.latest = telemetry.NewSnapshot(r, s.now())
	s.seen = true
	s.mu.Unlock()

	s.metrics.Gauge(temperatureKey, r.Temperature)
	s.metrics.Gauge(humidityKey, r.Humidity)

	s.prom.temperature.Set(r.Temperature)
	s.prom.humidity.Set(r.Humidity)
	s.prom.samples.Inc()

	if s.hkSrv != nil {
		s.hkSrv.SetCurrentTemperature(r.Temperature)
		s.hkSrv.SetCurrentHumidity(r.Humidity)
	}

	log.Debg.Printf("got %s", telemetry.Format(r))
}

func (s *Server) sourceFailed(error) {
	s.prom.sourceErrors.Inc()
}

// Latest returns the last snapshot. Before the first sample it is all zeros
// stamped with the current time.
func (s *Server) Latest() telemetry.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.seen {
		return telemetry.NewSnapshot(telemetry.Reading{}, s.now())
	}

	return s.latest
}

func (s *Server) runWebServer(ctx context.Context) error {
	webSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 1 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := webSrv.Shutdown(shutdownCtx); err != nil {
			log.Erro.Printf("can't shutdown web server: %s", err.Error())
		}
	}()

	if err := webSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
