// Package extract turns free-text customer messages into booking fields.
// Two interchangeable strategies exist: a regex-based extractor and an
// LLM-backed extractor; FallbackExtractor composes them so the active
// strategy is a wiring decision, not a scattered conditional.
package extract

import (
	"context"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// Extractor produces zero or more booking fields from a single message.
// Implementations return trimmed, non-empty values only; absent slots mean
// "not found". The result is additive evidence, never a validated form.
type Extractor interface {
	Extract(ctx context.Context, text, language string) (booking.Fields, error)
}
