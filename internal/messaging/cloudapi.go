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

var cloudAPITracer = otel.Tracer("tayri.internal.messaging.cloudapi")

// DefaultCloudAPIBaseURL is Meta's Graph API root.
const DefaultCloudAPIBaseURL = "https://graph.facebook.com/v19.0"

// CloudAPISender posts text messages directly through Meta's WhatsApp Cloud
// API using a system user token and a registered phone number id.
type CloudAPISender struct {
	accessToken   string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
	logger        *logging.Logger
}

// NewCloudAPISender builds a sender for the Graph API messages endpoint.
func NewCloudAPISender(accessToken, phoneNumberID, baseURL string, logger *logging.Logger) *CloudAPISender {
	if logger == nil {
		logger = logging.Default()
	}
	if baseURL == "" {
		baseURL = DefaultCloudAPIBaseURL
	}
	return &CloudAPISender{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ Sender = (*CloudAPISender)(nil)

type cloudAPIPayload struct {
	MessagingProduct string      `json:"messaging_product"`
	RecipientType    string      `json:"recipient_type"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             textContent `json:"text"`
}

// SendText dispatches a single message, retrying transient failures.
func (s *CloudAPISender) SendText(ctx context.Context, to, body string) error {
	if s.accessToken == "" {
		return errors.New("messaging: cloud api token missing")
	}
	if s.phoneNumberID == "" {
		return errors.New("messaging: cloud api phone number id missing")
	}
	to = normalizeRecipient(to)
	if to == "" {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := cloudAPITracer.Start(ctx, "messaging.cloudapi.send")
	defer span.End()
	span.SetAttributes(attribute.String("tayri.to", to))

	payload := cloudAPIPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textContent{Body: body},
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("messaging: failed to marshal cloud api payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				s.logger.Info("cloud api message sent", "to", to)
				return nil
			}
			var errorBody map[string]interface{}
			if len(respBody) > 0 && json.Unmarshal(respBody, &errorBody) == nil {
				lastErr = fmt.Errorf("cloud api send failed: status %d, body: %v", resp.StatusCode, errorBody)
			} else {
				lastErr = fmt.Errorf("cloud api send failed: status %d", resp.StatusCode)
			}
		}

		if attempt < 3 {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			time.Sleep(sleep)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		s.logger.Error("failed to send cloud api message", "error", lastErr, "to", to)
	}
	return lastErr
}
