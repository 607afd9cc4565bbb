package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/tayritours/booking-assistant/internal/booking"
	"github.com/tayritours/booking-assistant/internal/extract"
	"github.com/tayritours/booking-assistant/internal/reply"
	"github.com/tayritours/booking-assistant/internal/session"
	"github.com/tayritours/booking-assistant/pkg/logging"
)

// Outcome is the result of one dialogue turn: the updated session, the reply
// to send and whether this turn finalized a complete booking.
type Outcome struct {
	Session        *booking.Session
	Action         reply.Action
	Text           string
	OrderFinalized bool
}

// Controller advances a customer's session by one turn. It extracts fields
// from the message, merges them into the session under the store's
// per-customer lock and decides which reply to send.
type Controller struct {
	store     session.Store
	extractor extract.Extractor
	renderer  *reply.Renderer
	logger    *logging.Logger
}

func NewController(store session.Store, extractor extract.Extractor, renderer *reply.Renderer, logger *logging.Logger) *Controller {
	if store == nil {
		panic("dialogue: session store cannot be nil")
	}
	if extractor == nil {
		panic("dialogue: extractor cannot be nil")
	}
	if renderer == nil {
		renderer = reply.NewRenderer()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		store:     store,
		extractor: extractor,
		renderer:  renderer,
		logger:    logger,
	}
}

// Handle runs one dialogue turn. The transition rules, in order:
//
//  1. merge extracted fields into the session (last write wins per field)
//  2. a session already done replies with a fresh summary when the message
//     carried booking fields, otherwise a short acknowledgment
//  3. a session whose six fields are now filled gets the summary and moves
//     to done, regardless of its previous stage
//  4. a brand new session gets the greeting and moves to collecting
//  5. otherwise ask for the highest-priority missing field
func (c *Controller) Handle(ctx context.Context, msg InboundMessage) (*Outcome, error) {
	if msg.CustomerID == "" {
		return nil, fmt.Errorf("dialogue: inbound message has no customer id")
	}

	// Language is re-detected on every message; an empty body falls back to
	// the profile name so Hebrew customers get a Hebrew greeting.
	sample := strings.TrimSpace(msg.Text)
	if sample == "" {
		sample = msg.DisplayName
	}
	language := booking.DetectLanguage(sample)

	extracted, err := c.extractor.Extract(ctx, msg.Text, language)
	if err != nil {
		// The fallback chain makes this unreachable in the wired service,
		// but a bare extractor may still fail.
		return nil, fmt.Errorf("dialogue: extraction failed: %w", err)
	}

	var (
		action    reply.Action
		finalized bool
	)
	sess, err := c.store.Update(ctx, msg.CustomerID, func(s *booking.Session) error {
		s.Language = language
		if name := strings.TrimSpace(msg.DisplayName); name != "" {
			s.DisplayName = name
		}
		s.Fields.Merge(extracted)

		switch {
		case s.Stage == booking.StageDone:
			if extracted.Empty() {
				action = reply.ActionAck
			} else {
				action = reply.ActionSummary
				finalized = true
			}
		case s.Fields.Complete():
			action = reply.ActionSummary
			s.Stage = booking.StageDone
			finalized = true
		case s.Stage == booking.StageStart:
			action = reply.ActionGreeting
			s.Stage = booking.StageCollecting
		default:
			action = reply.ActionAsk
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	text, err := c.renderer.Render(action, sess)
	if err != nil {
		return nil, fmt.Errorf("dialogue: render %s reply: %w", action, err)
	}

	c.logger.Info("dialogue turn",
		"customer_id", msg.CustomerID,
		"language", language,
		"stage", string(sess.Stage),
		"action", string(action),
		"missing", len(sess.Fields.Missing()),
	)

	return &Outcome{
		Session:        sess,
		Action:         action,
		Text:           text,
		OrderFinalized: finalized,
	}, nil
}
