package dialogue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Queue is the transport between the webhook and the dialogue workers.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// QueueMessage is a raw message pulled from a Queue.
type QueueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type queuePayload struct {
	ID      string         `json:"id"`
	Message InboundMessage `json:"message"`
}

func encodePayload(jobID string, msg InboundMessage) (queuePayload, string, error) {
	payload := queuePayload{ID: jobID, Message: msg}
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return queuePayload{}, "", fmt.Errorf("dialogue: failed to encode payload: %w", err)
	}

	return payload, string(body), nil
}
