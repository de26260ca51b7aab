package core

import (
	"errors"
	"net/http"
	"reflect"
	"time"

	"github.com/pfa/go-eigrp/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Telemetry exposes engine counters and a topology dump on the admin bind.
type Telemetry struct {
	reg *prometheus.Registry

	events        *prometheus.CounterVec
	actions       *prometheus.CounterVec
	replyTimeouts prometheus.Counter
	activeDest    prometheus.Gauge

	srv *http.Server
}

func (t *Telemetry) Init(s *state.State) error {
	t.reg = prometheus.NewRegistry()
	t.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eigrp_events_total",
		Help: "Inbound protocol events processed, by kind.",
	}, []string{"kind"})
	t.actions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eigrp_actions_total",
		Help: "Output actions emitted by the DUAL state machines, by kind.",
	}, []string{"kind"})
	t.replyTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eigrp_reply_timeouts_total",
		Help: "Diffusing computations that presumed a neighbour dead.",
	})
	t.activeDest = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eigrp_active_destinations",
		Help: "Destinations currently running a diffusing computation.",
	})
	t.reg.MustRegister(t.events, t.actions, t.replyTimeouts, t.activeDest)

	if s.AdminBind == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(t.reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/topology", func(w http.ResponseWriter, _ *http.Request) {
		dump, err := s.DispatchWait(func(st *state.State) (any, error) {
			return Get[*DualEngine](st).DumpTopology(), nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(dump.(string)))
	})
	t.srv = &http.Server{
		Addr:              s.AdminBind,
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 5,
	}
	go func() {
		if err := t.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("admin endpoint failed", "error", err)
		}
	}()
	s.Log.Info("admin endpoint listening", "bind", s.AdminBind)
	return nil
}

func (t *Telemetry) Cleanup(s *state.State) error {
	if t.srv != nil {
		return t.srv.Close()
	}
	return nil
}

// getTelemetry tolerates a missing module so the engine stays usable in
// isolation.
func getTelemetry(s *state.State) *Telemetry {
	m, ok := s.Modules[reflect.TypeFor[*Telemetry]().String()]
	if !ok {
		return nil
	}
	return m.(*Telemetry)
}

func telemetryObserveEvent(s *state.State, ev Event) {
	if t := getTelemetry(s); t != nil {
		t.events.WithLabelValues(eventKind(ev)).Inc()
	}
}

func telemetryObserveAction(s *state.State, a Action) {
	if t := getTelemetry(s); t != nil {
		t.actions.WithLabelValues(a.Kind.String()).Inc()
	}
}

func telemetryObserveReplyTimeout(s *state.State) {
	if t := getTelemetry(s); t != nil {
		t.replyTimeouts.Inc()
	}
}

func telemetrySetActiveDestinations(s *state.State, n int) {
	if t := getTelemetry(s); t != nil {
		t.activeDest.Set(float64(n))
	}
}
