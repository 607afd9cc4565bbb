package extract

import (
	"context"
	"time"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// TimeoutExtractor bounds each extraction attempt. A slow model trips the
// deadline and surfaces as an error, which the fallback chain absorbs.
type TimeoutExtractor struct {
	inner   Extractor
	timeout time.Duration
}

func NewTimeoutExtractor(inner Extractor, timeout time.Duration) *TimeoutExtractor {
	if inner == nil {
		panic("extract: inner extractor cannot be nil")
	}
	return &TimeoutExtractor{inner: inner, timeout: timeout}
}

var _ Extractor = (*TimeoutExtractor)(nil)

func (e *TimeoutExtractor) Extract(ctx context.Context, text, language string) (booking.Fields, error) {
	if e.timeout <= 0 {
		return e.inner.Extract(ctx, text, language)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.inner.Extract(ctx, text, language)
}
