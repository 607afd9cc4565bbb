package dialogue

import (
	"context"
	"fmt"

	"github.com/tayritours/booking-assistant/pkg/logging"
)

// Publisher enqueues inbound messages for asynchronous processing, keeping the
// webhook handler fast.
type Publisher struct {
	queue  Queue
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("dialogue: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueueMessage publishes a dialogue job for one inbound message.
func (p *Publisher) EnqueueMessage(ctx context.Context, msg InboundMessage) error {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, body, err := encodePayload("", msg)
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("dialogue: failed to enqueue job: %w", err)
	}

	p.logger.Debug("dialogue job enqueued", "job_id", payload.ID, "customer_id", msg.CustomerID)
	return nil
}
