package handlers

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayritours/booking-assistant/internal/dialogue"
	"github.com/tayritours/booking-assistant/pkg/logging"
)

type fakePublisher struct {
	enqueued []dialogue.InboundMessage
	err      error
}

func (p *fakePublisher) EnqueueMessage(_ context.Context, msg dialogue.InboundMessage) error {
	if p.err != nil {
		return p.err
	}
	p.enqueued = append(p.enqueued, msg)
	return nil
}

func newTestHandler(publisher *fakePublisher) *WhatsAppWebhookHandler {
	return NewWhatsAppWebhookHandler(WhatsAppWebhookConfig{
		Publisher:   publisher,
		VerifyToken: "tayribot",
		Logger:      logging.Default(),
	})
}

const inboundMessageBody = `{
  "entry": [{
    "changes": [{
      "value": {
        "contacts": [{"wa_id": "972501234567", "profile": {"name": "Dana"}}],
        "messages": [{
          "from": "972501234567",
          "id": "wamid.abc123",
          "timestamp": "1722510000",
          "type": "text",
          "text": {"body": "נסיעה ב-03/08/2025"}
        }]
      }
    }]
  }]
}`

func TestHandleVerifyEchoesChallenge(t *testing.T) {
	h := newTestHandler(&fakePublisher{})

	req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=tayribot&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	assert.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "12345", string(body))
}

func TestHandleVerifyRejectsBadToken(t *testing.T) {
	h := newTestHandler(&fakePublisher{})

	req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	assert.Equal(t, 403, rec.Code)
}

func TestHandleVerifyMissingChallenge(t *testing.T) {
	h := newTestHandler(&fakePublisher{})

	req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=tayribot", nil)
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestHandleEventEnqueuesMessage(t *testing.T) {
	publisher := &fakePublisher{}
	h := newTestHandler(publisher)

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(inboundMessageBody))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)

	assert.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "EVENT_RECEIVED", string(body))

	require.Len(t, publisher.enqueued, 1)
	msg := publisher.enqueued[0]
	assert.Equal(t, "972501234567", msg.CustomerID)
	assert.Equal(t, "Dana", msg.DisplayName)
	assert.Equal(t, "נסיעה ב-03/08/2025", msg.Text)
	assert.Equal(t, "wamid.abc123", msg.MessageID)
	assert.False(t, msg.ReceivedAt.IsZero())
}

func TestHandleEventStatusUpdateIsAcknowledged(t *testing.T) {
	publisher := &fakePublisher{}
	h := newTestHandler(publisher)

	statusBody := `{"entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.x","status":"delivered"}]}}]}]}`
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(statusBody))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Empty(t, publisher.enqueued)
}

func TestHandleEventNonTextMessageIsDropped(t *testing.T) {
	publisher := &fakePublisher{}
	h := newTestHandler(publisher)

	imageBody := `{
	  "entry": [{
	    "changes": [{
	      "value": {
	        "contacts": [{"wa_id": "972501234567", "profile": {"name": "Dana"}}],
	        "messages": [{
	          "from": "972501234567",
	          "id": "wamid.img1",
	          "timestamp": "1722510000",
	          "type": "image"
	        }]
	      }
	    }]
	  }]
	}`
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(imageBody))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Empty(t, publisher.enqueued)
}

func TestHandleEventEmptyTextBodyIsDropped(t *testing.T) {
	publisher := &fakePublisher{}
	h := newTestHandler(publisher)

	emptyBody := `{
	  "entry": [{
	    "changes": [{
	      "value": {
	        "messages": [{
	          "from": "972501234567",
	          "id": "wamid.empty1",
	          "type": "text",
	          "text": {"body": "   "}
	        }]
	      }
	    }]
	  }]
	}`
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(emptyBody))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Empty(t, publisher.enqueued)
}

func TestHandleEventEnqueueFailureStillAcknowledged(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("queue full")}
	h := newTestHandler(publisher)

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(inboundMessageBody))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)

	// Returning non-2xx would make the BSP redeliver the same event forever.
	assert.Equal(t, 200, rec.Code)
}

func TestHandleEventGarbageBodyStillAcknowledged(t *testing.T) {
	publisher := &fakePublisher{}
	h := newTestHandler(publisher)

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Empty(t, publisher.enqueued)
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(&fakePublisher{})

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
