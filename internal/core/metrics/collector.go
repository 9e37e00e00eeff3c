package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-msgbus"
	"github.com/dep2p/go-msgbus/config"
)

const busLabel = "bus"

// Collector 把注册表事件记录为 Prometheus 指标
type Collector struct {
	registry *prometheus.Registry

	buses       prometheus.Gauge
	subscribers *prometheus.GaugeVec
	sends       *prometheus.CounterVec
	sendErrors  *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewCollector 创建 Collector 并注册到 reg
//
// reg 为 nil 时创建新的 prometheus.Registry。
func NewCollector(cfg config.MetricsConfig, reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsConfig().Namespace
	}
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.ExponentialBuckets(0.00001, 4, 10) // 10µs ~ 2.6s
	}

	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		buses: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buses",
			Help:      "Number of message buses created by the registry",
		}),
		subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Current number of subscribers per bus",
		}, []string{busLabel}),
		sends: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Total number of Send calls per bus",
		}, []string{busLabel}),
		sendErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Total number of Send calls aborted by a subscriber error",
		}, []string{busLabel}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Total number of subscriber invocations that returned without error",
		}, []string{busLabel}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of a single Send in seconds",
			Buckets:   buckets,
		}, []string{busLabel}),
	}
}

// Registry 返回指标所在的 Prometheus 注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// BusCreated 实现 msgbus.Observer
func (c *Collector) BusCreated(name string, _ int) {
	c.buses.Inc()
	c.subscribers.WithLabelValues(name).Set(0)
}

// SubscribersChanged 实现 msgbus.Observer
func (c *Collector) SubscribersChanged(name string, subscribers int) {
	c.subscribers.WithLabelValues(name).Set(float64(subscribers))
}

// Dispatched 实现 msgbus.Observer
func (c *Collector) Dispatched(name string, delivered int, elapsed time.Duration, err error) {
	c.sends.WithLabelValues(name).Inc()
	if delivered > 0 {
		c.deliveries.WithLabelValues(name).Add(float64(delivered))
	}
	if err != nil {
		c.sendErrors.WithLabelValues(name).Inc()
	}
	c.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

var _ msgbus.Observer = (*Collector)(nil)
