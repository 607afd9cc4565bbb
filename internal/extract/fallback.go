package extract

import (
	"context"
	"log/slog"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// FallbackExtractor runs the primary strategy and, if it fails, retries the
// same message against the fallback. The pattern extractor never fails, so
// wiring it as the fallback guarantees extraction always produces a result.
type FallbackExtractor struct {
	primary  Extractor
	fallback Extractor
	logger   *slog.Logger
}

func NewFallbackExtractor(primary, fallback Extractor, logger *slog.Logger) *FallbackExtractor {
	if primary == nil || fallback == nil {
		panic("extract: fallback extractor requires both strategies")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackExtractor{primary: primary, fallback: fallback, logger: logger}
}

var _ Extractor = (*FallbackExtractor)(nil)

func (e *FallbackExtractor) Extract(ctx context.Context, text, language string) (booking.Fields, error) {
	fields, err := e.primary.Extract(ctx, text, language)
	if err == nil {
		return fields, nil
	}

	e.logger.Warn("primary extractor failed, using fallback",
		slog.String("language", language),
		slog.String("error", err.Error()),
	)
	return e.fallback.Extract(ctx, text, language)
}
