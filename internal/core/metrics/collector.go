package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 探测结果标签
const (
	ProbePeer        = "peer"
	ProbeNotPeer     = "not_peer"
	ProbeUnreachable = "unreachable"
)

// 调用路由标签
const (
	RouteLocal  = "local"
	RouteRemote = "remote"
)

// OutcomeOK 成功调用的结果标签，失败时使用错误码
const OutcomeOK = "ok"

// Collector 是收集 dapp 指标的 prometheus.Collector
type Collector struct {
	probes       *prometheus.CounterVec
	peers        prometheus.Gauge
	scanDuration prometheus.Histogram
	syncFailures prometheus.Counter
	objects      *prometheus.GaugeVec
	calls        *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	codeFetches  *prometheus.CounterVec
}

// NewCollector 创建 Collector，namespace 为指标名前缀
func NewCollector(namespace string) *Collector {
	return &Collector{
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "discovery",
				Name:      "probes_total",
				Help:      "The number of identity probes by outcome.",
			}, []string{"outcome"},
		),
		peers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "discovery",
				Name:      "peers",
				Help:      "The number of connected peers.",
			},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "discovery",
				Name:      "scan_duration_seconds",
				Help:      "The time taken by one discover and sync pass.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
		),
		syncFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "discovery",
				Name:      "sync_failures_total",
				Help:      "The number of failed object listings from peers.",
			},
		),
		objects: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "directory",
				Name:      "objects",
				Help:      "The number of directory entries by location.",
			}, []string{"location"},
		),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "calls_total",
				Help:      "The number of routed calls by route and outcome.",
			}, []string{"route", "outcome"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "call_duration_seconds",
				Help:      "The time taken by routed calls.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route"},
		),
		codeFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "codestore",
				Name:      "fetches_total",
				Help:      "The number of code fetches from peers by outcome.",
			}, []string{"outcome"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.probes.Describe(ch)
	c.peers.Describe(ch)
	c.scanDuration.Describe(ch)
	c.syncFailures.Describe(ch)
	c.objects.Describe(ch)
	c.calls.Describe(ch)
	c.callDuration.Describe(ch)
	c.codeFetches.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.probes.Collect(ch)
	c.peers.Collect(ch)
	c.scanDuration.Collect(ch)
	c.syncFailures.Collect(ch)
	c.objects.Collect(ch)
	c.calls.Collect(ch)
	c.callDuration.Collect(ch)
	c.codeFetches.Collect(ch)
}

// ObserveProbe 记录一次探测结果
func (c *Collector) ObserveProbe(outcome string) {
	if c == nil {
		return
	}
	c.probes.WithLabelValues(outcome).Inc()
}

// SetPeers 记录已连接节点数
func (c *Collector) SetPeers(n int) {
	if c == nil {
		return
	}
	c.peers.Set(float64(n))
}

// ObserveScan 记录一次扫描耗时
func (c *Collector) ObserveScan(d time.Duration) {
	if c == nil {
		return
	}
	c.scanDuration.Observe(d.Seconds())
}

// IncSyncFailure 记录一次同步失败
func (c *Collector) IncSyncFailure() {
	if c == nil {
		return
	}
	c.syncFailures.Inc()
}

// SetObjects 记录目录条目数
func (c *Collector) SetObjects(local, remote int) {
	if c == nil {
		return
	}
	c.objects.WithLabelValues("local").Set(float64(local))
	c.objects.WithLabelValues("remote").Set(float64(remote))
}

// ObserveCall 记录一次调用
func (c *Collector) ObserveCall(route, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.calls.WithLabelValues(route, outcome).Inc()
	c.callDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveCodeFetch 记录一次代码拉取
func (c *Collector) ObserveCodeFetch(outcome string) {
	if c == nil {
		return
	}
	c.codeFetches.WithLabelValues(outcome).Inc()
}
