package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/egregors/iotsim/internal/metrics"
	"github.com/egregors/iotsim/log"
	"github.com/egregors/iotsim/utils/bp"
)

const (
	defaultHistoryPoints = 20
	maxHistoryPoints     = 1000

	statsWindow = 24 * time.Hour
	plotPoints  = 40
	plotRows    = 3
)

type point struct {
	T float64 `json:"t"` // unix seconds
	V float64 `json:"v"`
}

type history struct {
	Temperature []point `json:"temperature"`
	Humidity    []point `json:"humidity"`
}

// Handler is the dashboard HTTP API: CORS open to any origin, access logged.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.indexHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/data", s.dataHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.historyHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.statsHandler).Methods(http.MethodGet)
	r.Handle("/metrics", s.prom.handler()).Methods(http.MethodGet)

	cors := handlers.CORS(handlers.AllowedOrigins([]string{"*"}))

	return handlers.LoggingHandler(log.Info.Writer(), cors(r))
}

func (s *Server) indexHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

func (s *Server) dataHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.Latest())
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	n := defaultHistoryPoints
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			http.Error(w, fmt.Sprintf("bad n: %q", raw), http.StatusBadRequest)
			return
		}
		n = min(v, maxHistoryPoints)
	}

	writeJSON(w, history{
		Temperature: points(s.metrics.Last(temperatureKey, n)),
		Humidity:    points(s.metrics.Last(humidityKey, n)),
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	latest := s.Latest()

	temp := s.metrics.Avg(temperatureKey, statsWindow)
	humi := s.metrics.Avg(humidityKey, statsWindow)

	recent := s.metrics.Last(temperatureKey, plotPoints)
	vals := make([]float64, 0, len(recent))
	for _, v := range recent {
		vals = append(vals, v.V)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(
		w,
		"Temp %0.2f °C\nHumi %0.2f %%\n\n%s\n%s\n",
		latest.Temperature, latest.Humidity,
		renderHourlyAvgTable(temp, humi),
		bp.SimplePlot(plotRows, vals),
	)
}

func points(vs []metrics.Value) []point {
	out := make([]point, 0, len(vs))
	for _, v := range vs {
		out = append(out, point{T: float64(v.T.UnixNano()) / float64(time.Second), V: v.V})
	}

	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Erro.Printf("can't write response: %s", err.Error())
	}
}
