package messaging

import (
	"context"
	"errors"

	"github.com/tayritours/booking-assistant/pkg/logging"
)

// FailoverSender attempts a primary send, then falls back to a secondary
// provider on error.
type FailoverSender struct {
	primary       Sender
	secondary     Sender
	primaryName   string
	secondaryName string
	logger        *logging.Logger
}

// NewFailoverSender builds a failover sender with named providers.
func NewFailoverSender(primary Sender, primaryName string, secondary Sender, secondaryName string, logger *logging.Logger) *FailoverSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &FailoverSender{
		primary:       primary,
		secondary:     secondary,
		primaryName:   primaryName,
		secondaryName: secondaryName,
		logger:        logger,
	}
}

var _ Sender = (*FailoverSender)(nil)

// SendText tries the primary provider first, then the secondary on failure.
func (f *FailoverSender) SendText(ctx context.Context, to, body string) error {
	if f == nil || f.primary == nil {
		return errors.New("messaging: failover primary sender not configured")
	}
	err := f.primary.SendText(ctx, to, body)
	if err == nil {
		return nil
	}
	if f.secondary == nil {
		return err
	}

	f.logger.Warn("primary whatsapp send failed; attempting fallback",
		"provider", f.primaryName,
		"fallback", f.secondaryName,
		"error", err,
		"to", to,
	)
	if fallbackErr := f.secondary.SendText(ctx, to, body); fallbackErr != nil {
		f.logger.Error("fallback whatsapp send failed",
			"provider", f.secondaryName,
			"error", fallbackErr,
			"to", to,
		)
		return fallbackErr
	}
	return nil
}
