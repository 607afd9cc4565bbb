package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tayritours/booking-assistant/pkg/logging"
)

var dialog360Tracer = otel.Tracer("tayri.internal.messaging.dialog360")

// DefaultDialog360BaseURL is 360dialog's Cloud API hosted endpoint.
const DefaultDialog360BaseURL = "https://waba-v2.360dialog.io"

// Dialog360Sender posts text messages through the 360dialog WhatsApp API.
type Dialog360Sender struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewDialog360Sender builds a sender for the 360dialog messages endpoint.
func NewDialog360Sender(apiKey, baseURL string, logger *logging.Logger) *Dialog360Sender {
	if logger == nil {
		logger = logging.Default()
	}
	if baseURL == "" {
		baseURL = DefaultDialog360BaseURL
	}
	return &Dialog360Sender{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ Sender = (*Dialog360Sender)(nil)

type textPayload struct {
	To            string      `json:"to"`
	RecipientType string      `json:"recipient_type"`
	Type          string      `json:"type"`
	Text          textContent `json:"text"`
}

type textContent struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

// SendText dispatches a single message, retrying transient failures.
func (s *Dialog360Sender) SendText(ctx context.Context, to, body string) error {
	if s.apiKey == "" {
		return errors.New("messaging: 360dialog api key missing")
	}
	to = normalizeRecipient(to)
	if to == "" {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := dialog360Tracer.Start(ctx, "messaging.dialog360.send")
	defer span.End()
	span.SetAttributes(attribute.String("tayri.to", to))

	payload := textPayload{
		To:            to,
		RecipientType: "individual",
		Type:          "text",
		Text:          textContent{Body: body},
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("messaging: failed to marshal 360dialog payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(bodyBytes))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("D360-API-KEY", s.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				s.logger.Info("360dialog message sent", "to", to)
				return nil
			}
			var errorBody map[string]interface{}
			if len(respBody) > 0 && json.Unmarshal(respBody, &errorBody) == nil {
				lastErr = fmt.Errorf("360dialog send failed: status %d, body: %v", resp.StatusCode, errorBody)
			} else {
				lastErr = fmt.Errorf("360dialog send failed: status %d", resp.StatusCode)
			}
		}

		if attempt < 3 {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			time.Sleep(sleep)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		s.logger.Error("failed to send 360dialog message", "error", lastErr, "to", to)
	}
	return lastErr
}
