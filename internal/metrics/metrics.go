package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	TCPAccepted      prometheus.Counter
	TCPRejected      prometheus.Counter
	TCPBytesReceived prometheus.Counter
	ParseTotal       *prometheus.CounterVec // labels: result=ok|error|pending
	DispatchTotal    *prometheus.CounterVec // labels: result=true|false|unknown
	QueryTotal       *prometheus.CounterVec // labels: result=hit|miss
	RegisterTotal    *prometheus.CounterVec // labels: result=ok|full|rejected
	TableCapacity    prometheus.Gauge
	TableFilled      prometheus.Gauge
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_accept_total",
			Help: "Total accepted TCP connections.",
		}),
		TCPRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_reject_total",
			Help: "Total TCP connections rejected by limiters.",
		}),
		TCPBytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_bytes_received_total",
			Help: "Total bytes received over TCP.",
		}),
		ParseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modop_parse_total",
			Help: "MODOP frame parse attempts.",
		}, []string{"result"}),
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modop_dispatch_total",
			Help: "MODOP EXEC dispatches by outcome.",
		}, []string{"result"}),
		QueryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modop_query_total",
			Help: "MODOP QUERY lookups by outcome.",
		}, []string{"result"}),
		RegisterTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_register_total",
			Help: "Runtime handler registrations by outcome.",
		}, []string{"result"}),
		TableCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_table_capacity",
			Help: "Fixed capacity of the dispatch table.",
		}),
		TableFilled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_table_filled",
			Help: "Occupied slots in the dispatch table.",
		}),
	}
	reg.MustRegister(
		m.TCPAccepted, m.TCPRejected, m.TCPBytesReceived,
		m.ParseTotal, m.DispatchTotal, m.QueryTotal, m.RegisterTotal,
		m.TableCapacity, m.TableFilled,
	)
	return m
}
