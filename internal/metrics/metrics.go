package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"recshelf/internal/db"
)

var (
	actionCountDesc = prometheus.NewDesc(
		"recshelf_actions_total",
		"Total user action count by action and outcome",
		[]string{"action", "outcome"},
		nil,
	)
	recommendationsDesc = prometheus.NewDesc(
		"recshelf_recommendations",
		"Live recommendation row count by domain and status",
		[]string{"domain", "status"},
		nil,
	)
)

// Collector is a custom Prometheus collector that reads counts from the
// database on each scrape.
type Collector struct {
	db *db.DB
}

// Describe sends the metric descriptors to the channel.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- actionCountDesc
	ch <- recommendationsDesc
}

// Collect queries the database and emits the current counters and gauges.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	actions, err := c.db.GetAllActionCounts(context.Background())
	if err != nil {
		slog.Error("failed to collect action count metrics", "error", err)
	} else {
		for _, a := range actions {
			ch <- prometheus.MustNewConstMetric(
				actionCountDesc,
				prometheus.CounterValue,
				float64(a.Count),
				a.Action,
				a.Outcome,
			)
		}
	}

	statuses, err := c.db.GetRecommendationStatusCounts(context.Background())
	if err != nil {
		slog.Error("failed to collect recommendation status metrics", "error", err)
		return
	}
	for _, s := range statuses {
		ch <- prometheus.MustNewConstMetric(
			recommendationsDesc,
			prometheus.GaugeValue,
			float64(s.Count),
			s.Domain,
			s.Status,
		)
	}
}

// Recorder provides async action recording.
type Recorder struct {
	db *db.DB
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the custom collector and initializes the recorder.
// Must be called once at startup.
func Init(database *db.DB) {
	recorderOnce.Do(func() {
		recorder = &Recorder{db: database}
		prometheus.MustRegister(&Collector{db: database})
	})
}

// RecordAction asynchronously bumps the persistent counter for an action
// outcome, e.g. ("recommend", "sent") or ("status", "hit").
func RecordAction(action, outcome string) {
	if recorder == nil {
		return
	}
	go func() {
		if err := recorder.db.IncrementActionCount(context.Background(), action, outcome); err != nil {
			slog.Error("failed to record action", "action", action, "outcome", outcome, "error", err)
		}
	}()
}
