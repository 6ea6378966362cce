package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты попыток восстановления сессии.
const (
	RefreshOK      = "ok"
	RefreshFailed  = "failed"
	RefreshSkipped = "skipped"
	RefreshShared  = "shared"
)

// Metrics — метрики клиента. Нулевой *Metrics ничего не пишет.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	refresh  *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует метрики клиента в reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skilltrack_client_requests_total",
				Help: "Total number of HTTP requests sent to the backend",
			},
			[]string{"method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skilltrack_client_request_duration_seconds",
				Help:    "Duration of HTTP requests to the backend",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		refresh: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skilltrack_client_refresh_total",
				Help: "Session recovery attempts after 401 by result",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.refresh} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// status == 0 — транспортная ошибка.
func (m *Metrics) observeRequest(method string, status int, dur time.Duration) {
	if m == nil {
		return
	}

	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(dur.Seconds())
}

func (m *Metrics) observeRefresh(result string) {
	if m == nil {
		return
	}

	m.refresh.WithLabelValues(result).Inc()
}
