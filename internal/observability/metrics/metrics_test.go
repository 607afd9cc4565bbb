package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAssistantMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAssistantMetrics(reg)

	m.ObserveInbound("message", "accepted")
	m.ObserveInbound("message", "accepted")
	m.ObserveOutbound("summary", "sent")
	m.ObserveExtraction("pattern", "ok")
	m.ObserveOrderCaptured()
	m.ObserveWebhookLatency("message", 0.05)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.inboundTotal.WithLabelValues("message", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outboundTotal.WithLabelValues("summary", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractionTotal.WithLabelValues("pattern", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersTotal))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *AssistantMetrics
	m.ObserveInbound("message", "accepted")
	m.ObserveOutbound("ack", "sent")
	m.ObserveExtraction("llm", "failed")
	m.ObserveOrderCaptured()
	m.ObserveWebhookLatency("verify", 0.01)
}
