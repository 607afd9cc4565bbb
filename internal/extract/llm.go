package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tayritours/booking-assistant/internal/booking"
)

const (
	extractSystemPromptEN = "You extract ride booking details from a customer message. " +
		"Respond with a single JSON object using only the keys date, time, pickup, destination, passengers, luggage. " +
		"Omit keys that do not appear in the message. Respond with JSON only, no explanations."
	extractSystemPromptHE = "חלץ פרטי הזמנת נסיעה מהודעת לקוח. " +
		"החזר אובייקט JSON יחיד עם המפתחות date, time, pickup, destination, passengers, luggage בלבד. " +
		"השמט מפתחות שלא מופיעים בהודעה. החזר JSON בלבד, ללא הסברים."

	defaultMaxTokens = 256
)

// LLMExtractor asks a hosted language model to map a message onto the six-key
// booking schema. It returns an error on any transport or parsing failure; the
// caller composes it with a fallback strategy (see FallbackExtractor), so
// failures never reach the customer.
type LLMExtractor struct {
	client LLMClient
	model  string
}

// NewLLMExtractor builds the model-backed extraction strategy. The model id is
// forwarded to clients that need one (Bedrock); Gemini ignores it.
func NewLLMExtractor(client LLMClient, model string) *LLMExtractor {
	if client == nil {
		panic("extract: llm client cannot be nil")
	}
	return &LLMExtractor{client: client, model: model}
}

var _ Extractor = (*LLMExtractor)(nil)

func (e *LLMExtractor) Extract(ctx context.Context, text, language string) (booking.Fields, error) {
	if strings.TrimSpace(text) == "" {
		return booking.Fields{}, nil
	}

	system := extractSystemPromptEN
	user := "Customer message: " + text
	if language == booking.LanguageHebrew {
		system = extractSystemPromptHE
		user = "טקסט לקוח: " + text
	}

	resp, err := e.client.Complete(ctx, LLMRequest{
		Model:     e.model,
		System:    []string{system},
		Messages:  []ChatMessage{{Role: ChatRoleUser, Content: user}},
		MaxTokens: defaultMaxTokens,
		// Deterministic output; schema extraction has no use for sampling.
		Temperature: 0,
	})
	if err != nil {
		return booking.Fields{}, fmt.Errorf("extract: llm completion failed: %w", err)
	}

	fields, err := parseFieldsJSON(resp.Text)
	if err != nil {
		return booking.Fields{}, fmt.Errorf("extract: llm returned unparseable content: %w", err)
	}
	return fields, nil
}

// parseFieldsJSON pulls the first JSON object out of the model reply (code
// fences and surrounding prose tolerated) and normalizes it into Fields.
// Numbers are accepted for passengers/luggage; null, empty and unknown keys
// are dropped.
func parseFieldsJSON(text string) (booking.Fields, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return booking.Fields{}, errors.New("no JSON object in reply")
	}

	raw := map[string]any{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return booking.Fields{}, err
	}

	var fields booking.Fields
	for _, key := range booking.FieldOrder {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		fields.Set(key, coerceString(value))
	}
	return fields, nil
}

func coerceString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
