package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the booking dialogue flow.
type AssistantMetrics struct {
	inboundTotal    *prometheus.CounterVec
	outboundTotal   *prometheus.CounterVec
	extractionTotal *prometheus.CounterVec
	ordersTotal     prometheus.Counter
	webhookLatency  *prometheus.HistogramVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tayri",
			Subsystem: "webhook",
			Name:      "inbound_total",
			Help:      "Total inbound WhatsApp webhook events",
		}, []string{"event_type", "status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tayri",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total outbound WhatsApp sends",
		}, []string{"action", "status"}),
		extractionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tayri",
			Subsystem: "extract",
			Name:      "extraction_total",
			Help:      "Total field extraction attempts",
		}, []string{"strategy", "status"}),
		ordersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tayri",
			Subsystem: "orders",
			Name:      "captured_total",
			Help:      "Total finalized booking orders",
		}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tayri",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of WhatsApp webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.extractionTotal, m.ordersTotal, m.webhookLatency)
	return m
}

func (m *AssistantMetrics) ObserveInbound(eventType, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(eventType, status).Inc()
}

func (m *AssistantMetrics) ObserveOutbound(action, status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(action, status).Inc()
}

func (m *AssistantMetrics) ObserveExtraction(strategy, status string) {
	if m == nil {
		return
	}
	m.extractionTotal.WithLabelValues(strategy, status).Inc()
}

func (m *AssistantMetrics) ObserveOrderCaptured() {
	if m == nil {
		return
	}
	m.ordersTotal.Inc()
}

func (m *AssistantMetrics) ObserveWebhookLatency(eventType string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(eventType).Observe(seconds)
}
