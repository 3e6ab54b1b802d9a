package metrics

import (
	"net/http"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace = "notebook_commands"

	OutcomeStarted   = "started"
	OutcomeCoalesced = "coalesced"
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"

	// UnknownCommand labels requests for commands that are not registered.
	UnknownCommand = "unknown"
)

// CommandMetrics registers the daemon's metrics with its own Prometheus registry and serves them.
//
// All recording methods are safe to call on a nil *CommandMetrics, in which case nothing is recorded.
type CommandMetrics struct {
	log logger.Logger

	registry *prometheus.Registry
	handler  http.Handler

	// KernelOperations counts kernel interrupts and restarts by operation and outcome.
	KernelOperations *prometheus.CounterVec

	// KernelOperationDuration is how long started kernel operations took, in seconds.
	KernelOperationDuration *prometheus.HistogramVec

	// CommandRequests counts the commands served to websocket clients by command ID and status.
	CommandRequests *prometheus.CounterVec

	// CommandLatency is the time it took to execute a command, in seconds.
	CommandLatency *prometheus.HistogramVec
}

func NewCommandMetrics() (*CommandMetrics, error) {
	m := &CommandMetrics{
		registry: prometheus.NewRegistry(),
	}
	config.InitLogger(&m.log, m)

	m.KernelOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "kernel",
		Name:      "operations_total",
		Help:      "Number of kernel interrupts and restarts by outcome",
	}, []string{"operation", "outcome"})

	m.KernelOperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "kernel",
		Name:      "operation_duration_seconds",
		Help:      "Duration of kernel interrupts and restarts",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"operation"})

	m.CommandRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "command_requests_total",
		Help:      "Number of commands executed for websocket clients",
	}, []string{"command", "status"})

	m.CommandLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "command_latency_seconds",
		Help:      "Latency of commands executed for websocket clients",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	named := []struct {
		name      string
		collector prometheus.Collector
	}{
		{"Kernel Operations", m.KernelOperations},
		{"Kernel Operation Duration", m.KernelOperationDuration},
		{"Command Requests", m.CommandRequests},
		{"Command Latency", m.CommandLatency},
		{"Go Runtime", collectors.NewGoCollector()},
		{"Process", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})},
	}
	for _, c := range named {
		if err := m.registry.Register(c.collector); err != nil {
			m.log.Error("Failed to register '%s' metric because: %v", c.name, err)
			return nil, err
		}
	}

	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m, nil
}

// Handler serves the registered metrics in the Prometheus exposition format.
func (m *CommandMetrics) Handler() http.Handler {
	return m.handler
}

func (m *CommandMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// KernelOperationStarted records that a new interrupt or restart began.
func (m *CommandMetrics) KernelOperationStarted(op string) {
	if m == nil {
		return
	}
	m.KernelOperations.WithLabelValues(op, OutcomeStarted).Inc()
}

// KernelOperationCoalesced records a request that joined an operation already in flight.
func (m *CommandMetrics) KernelOperationCoalesced(op string) {
	if m == nil {
		return
	}
	m.KernelOperations.WithLabelValues(op, OutcomeCoalesced).Inc()
}

// KernelOperationFinished records the outcome and duration of a started operation.
func (m *CommandMetrics) KernelOperationFinished(op string, d time.Duration, err error) {
	if m == nil {
		return
	}

	outcome := OutcomeSucceeded
	if err != nil {
		outcome = OutcomeFailed
	}
	m.KernelOperations.WithLabelValues(op, outcome).Inc()
	m.KernelOperationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// CommandServed records a command executed for a websocket client.
func (m *CommandMetrics) CommandServed(command string, d time.Duration, err error) {
	if m == nil {
		return
	}

	status := OutcomeSucceeded
	if err != nil {
		status = OutcomeFailed
	}
	m.CommandRequests.WithLabelValues(command, status).Inc()
	m.CommandLatency.WithLabelValues(command).Observe(d.Seconds())
}
