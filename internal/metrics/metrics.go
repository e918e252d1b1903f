// Package metrics exposes prometheus collectors for equipment and checklist state.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"equipment-tracker-backend/internal/model"
)

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	statusMu          sync.Mutex
	equipmentStatus   *prometheus.GaugeVec
	checklistSaves    prometheus.Counter
	checklistFailures prometheus.Counter
	reportsGenerated  prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		equipmentStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "equipment_status",
				Help: "Number of equipment records per location and status",
			},
			[]string{"location", "status"},
		),
		checklistSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checklist_saves_total",
			Help: "Maintenance checklist saves that reached storage",
		}),
		checklistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checklist_save_failures_total",
			Help: "Maintenance checklist saves skipped because storage failed",
		}),
		reportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reports_generated_total",
			Help: "Equipment reports generated",
		}),
	}
	m.registry.MustRegister(m.equipmentStatus, m.checklistSaves, m.checklistFailures, m.reportsGenerated)
	return m
}

type statusKey struct {
	location string
	status   model.Status
}

// ObserveEquipment resets the status gauges to match list. Concurrent calls
// do not interleave; the last one wins.
func (m *Metrics) ObserveEquipment(list []model.Equipment, locations []string) {
	counts := make(map[statusKey]float64)
	for _, loc := range locations {
		for _, s := range model.Statuses() {
			counts[statusKey{loc, s}] = 0
		}
	}
	for _, e := range list {
		counts[statusKey{e.Location, e.Status}]++
	}

	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.equipmentStatus.Reset()
	for k, n := range counts {
		m.equipmentStatus.WithLabelValues(k.location, string(k.status)).Set(n)
	}
}

// ObserveChecklistSave records the outcome of a checklist save.
func (m *Metrics) ObserveChecklistSave(err error) {
	if err != nil {
		m.checklistFailures.Inc()
		return
	}
	m.checklistSaves.Inc()
}

// ReportGenerated counts a generated report.
func (m *Metrics) ReportGenerated() {
	m.reportsGenerated.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
