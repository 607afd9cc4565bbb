// Package handlers contains the HTTP surface of the assistant.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tayritours/booking-assistant/internal/dialogue"
	observemetrics "github.com/tayritours/booking-assistant/internal/observability/metrics"
	"github.com/tayritours/booking-assistant/pkg/logging"
)

type dialoguePublisher interface {
	EnqueueMessage(ctx context.Context, msg dialogue.InboundMessage) error
}

// WhatsAppWebhookHandler handles Meta's webhook verification handshake and
// inbound message events forwarded by the BSP.
type WhatsAppWebhookHandler struct {
	publisher   dialoguePublisher
	verifyToken string
	logger      *logging.Logger
	metrics     *observemetrics.AssistantMetrics
}

type WhatsAppWebhookConfig struct {
	Publisher   dialoguePublisher
	VerifyToken string
	Logger      *logging.Logger
	Metrics     *observemetrics.AssistantMetrics
}

func NewWhatsAppWebhookHandler(cfg WhatsAppWebhookConfig) *WhatsAppWebhookHandler {
	if cfg.Publisher == nil {
		panic("handlers: publisher cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &WhatsAppWebhookHandler{
		publisher:   cfg.Publisher,
		verifyToken: cfg.VerifyToken,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
}

// webhookPayload mirrors the slice of the Cloud API event envelope we consume.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					From      string `json:"from"`
					ID        string `json:"id"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// HandleVerify answers the GET subscription handshake. Meta sends hub.mode,
// hub.verify_token and hub.challenge; a matching token echoes the challenge.
func (h *WhatsAppWebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if challenge == "" {
		h.metrics.ObserveInbound("verify", "missing_challenge")
		http.Error(w, "missing challenge", http.StatusBadRequest)
		return
	}
	if mode != "subscribe" || token != h.verifyToken {
		h.logger.Warn("webhook verification rejected", "mode", mode)
		h.metrics.ObserveInbound("verify", "rejected")
		http.Error(w, "verification failed", http.StatusForbidden)
		return
	}

	h.metrics.ObserveInbound("verify", "ok")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// HandleEvent accepts inbound event batches. The BSP retries non-2xx
// responses, so every parseable request is answered 200 regardless of what
// processing decides; real work happens on the queue.
func (h *WhatsAppWebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("undecodable webhook payload", "error", err)
		h.metrics.ObserveInbound("message", "undecodable")
		h.acknowledge(w)
		return
	}

	msg, ok := extractInbound(payload)
	if !ok {
		// Status updates and other non-message events arrive on the same URL.
		h.metrics.ObserveInbound("status", "ignored")
		h.acknowledge(w)
		return
	}

	if err := h.publisher.EnqueueMessage(r.Context(), msg); err != nil {
		h.logger.Error("failed to enqueue inbound message", "error", err, "customer_id", msg.CustomerID)
		h.metrics.ObserveInbound("message", "enqueue_failed")
		h.acknowledge(w)
		return
	}

	h.metrics.ObserveInbound("message", "accepted")
	h.metrics.ObserveWebhookLatency("message", time.Since(start).Seconds())
	h.acknowledge(w)
}

// HealthCheck reports liveness.
func (h *WhatsAppWebhookHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *WhatsAppWebhookHandler) acknowledge(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("EVENT_RECEIVED"))
}

func extractInbound(payload webhookPayload) (dialogue.InboundMessage, bool) {
	if len(payload.Entry) == 0 {
		return dialogue.InboundMessage{}, false
	}
	entry := payload.Entry[0]
	if len(entry.Changes) == 0 {
		return dialogue.InboundMessage{}, false
	}
	value := entry.Changes[0].Value
	if len(value.Messages) == 0 {
		return dialogue.InboundMessage{}, false
	}

	raw := value.Messages[0]
	if raw.From == "" {
		return dialogue.InboundMessage{}, false
	}
	// Only plain text advances a booking; images, stickers, audio and
	// reactions are dropped without touching the session.
	if raw.Type != "text" || strings.TrimSpace(raw.Text.Body) == "" {
		return dialogue.InboundMessage{}, false
	}

	name := ""
	if len(value.Contacts) > 0 {
		name = value.Contacts[0].Profile.Name
	}

	return dialogue.InboundMessage{
		CustomerID:  raw.From,
		DisplayName: name,
		Text:        raw.Text.Body,
		MessageID:   raw.ID,
		ReceivedAt:  time.Now().UTC(),
	}, true
}
