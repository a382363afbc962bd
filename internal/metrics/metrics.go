// Package metrics exports health report summaries as Prometheus gauges
// and serves the latest report as JSON.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dashu-baba/docker-service-manager/internal/types"
)

const namespace = "dsm"

var severities = []string{"high", "medium", "low"}

// Exporter holds one registry per process; Observe replaces every gauge
// with the values of the latest report.
type Exporter struct {
	registry *prometheus.Registry

	daemonUp   prometheus.Gauge
	containers *prometheus.GaugeVec
	images     *prometheus.GaugeVec
	cpu        prometheus.Gauge
	memory     prometheus.Gauge
	disk       *prometheus.GaugeVec
	issues     *prometheus.GaugeVec
	errors     prometheus.Gauge
	lastReport prometheus.Gauge
	reports    *prometheus.CounterVec

	mu     sync.RWMutex
	latest *types.HealthReport
}

// NewExporter registers the dsm collectors on a fresh registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		daemonUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "daemon_up",
			Help:      "Whether the Docker Engine API answered during the last report",
		}),
		containers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "containers",
			Help:      "Containers by state",
		}, []string{"state"}),
		images: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "images",
			Help:      "Images by kind",
		}, []string{"kind"}),
		cpu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_cpu_percent",
			Help:      "Host CPU utilisation",
		}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_memory_percent",
			Help:      "Host memory utilisation",
		}),
		disk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_disk_percent",
			Help:      "Filesystem utilisation by path",
		}, []string{"path"}),
		issues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "issues",
			Help:      "Findings of the last full report by severity",
		}, []string{"severity"}),
		errors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_errors",
			Help:      "Sections that failed to collect in the last report",
		}),
		lastReport: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_report_timestamp_seconds",
			Help:      "Unix timestamp of the last report",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Reports generated by kind",
		}, []string{"kind"}),
	}
	e.registry.MustRegister(
		e.daemonUp,
		e.containers,
		e.images,
		e.cpu,
		e.memory,
		e.disk,
		e.issues,
		e.errors,
		e.lastReport,
		e.reports,
	)
	return e
}

// Registry exposes the underlying registry, mainly for tests.
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Observe records a report. Host and issue gauges are only touched by
// full reports so a quick report in between does not zero them.
func (e *Exporter) Observe(r *types.HealthReport) {
	if r == nil {
		return
	}
	e.reports.WithLabelValues(string(r.Kind)).Inc()
	e.lastReport.Set(float64(r.Timestamp.Unix()))
	e.errors.Set(float64(len(r.Errors)))

	if r.Service.Reachable {
		e.daemonUp.Set(1)
	} else {
		e.daemonUp.Set(0)
	}

	c := r.Counts
	e.containers.WithLabelValues("running").Set(float64(c.ContainersRunning))
	e.containers.WithLabelValues("stopped").Set(float64(c.ContainersStopped))
	e.containers.WithLabelValues("unhealthy").Set(float64(c.ContainersUnhealthy))
	e.images.WithLabelValues("total").Set(float64(c.Images))
	e.images.WithLabelValues("dangling").Set(float64(c.DanglingImages))

	if r.Kind == types.ReportFull {
		counts := make(map[string]int, len(severities))
		for _, is := range r.Issues {
			counts[is.Severity]++
		}
		for _, s := range severities {
			e.issues.WithLabelValues(s).Set(float64(counts[s]))
		}
		if h := r.Host; h != nil {
			e.cpu.Set(h.CPUPercent)
			e.memory.Set(h.Memory.UsedPercent)
			e.disk.Reset()
			for path, d := range h.DiskUsage {
				e.disk.WithLabelValues(path).Set(d.UsedPercent)
			}
		}
	}

	e.mu.Lock()
	e.latest = r
	e.mu.Unlock()
}

// Handler serves the registry in the Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// StatusHandler serves the latest report as JSON, or 503 before the first one.
func (e *Exporter) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		e.mu.RLock()
		r := e.latest
		e.mu.RUnlock()
		if r == nil {
			http.Error(w, "no report yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(r)
	})
}

// Mux wires /metrics and /status.
func (e *Exporter) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	mux.Handle("/status", e.StatusHandler())
	return mux
}
