package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	LedgerActionTotal          = "ledger_actions_total"
	LedgerRevocationTotal      = "ledger_revocations_total"
	WinnerSelectionTotal       = "winner_selections_total"
	OutboxPublishedTotal       = "outbox_published_total"
	DrawPoolSize               = "draw_pool_size"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{
		DrawPoolSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: DrawPoolSize,
			Help: "Number of positive-weight entrants in the last draw of a campaign",
		}, []string{"campaign_id"}),
	}

	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		LedgerActionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LedgerActionTotal,
			Help: "Count of recorded action attempts by kind and result",
		}, []string{"kind", "result"}),
		LedgerRevocationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LedgerRevocationTotal,
			Help: "Count of action revocations by result",
		}, []string{"result"}),
		WinnerSelectionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: WinnerSelectionTotal,
			Help: "Count of winner selections by kind",
		}, []string{"kind"}),
		OutboxPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: OutboxPublishedTotal,
			Help: "Count of outbox messages published to the broker",
		}, []string{"topic"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
	}
)

// IncCounter increases the counter registered under name. Unknown names are
// ignored.
func IncCounter(name string, labels ...string) {
	if counter, ok := PromCounters[name]; ok {
		counter.WithLabelValues(labels...).Inc()
	}
}

func SetGauge(name string, value float64, labels ...string) {
	if gauge, ok := PromGauges[name]; ok {
		gauge.WithLabelValues(labels...).Set(value)
	}
}
