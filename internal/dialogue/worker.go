package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/tayritours/booking-assistant/internal/observability/metrics"
	"github.com/tayritours/booking-assistant/internal/orders"
	"github.com/tayritours/booking-assistant/pkg/logging"
)

// replySender is the outbound delivery contract the worker depends on.
type replySender interface {
	SendText(ctx context.Context, to, body string) error
}

// orderNotifier alerts the operator when a booking is finalized.
type orderNotifier interface {
	NotifyOrderCaptured(ctx context.Context, order *orders.Order) error
}

// Worker consumes dialogue jobs from the queue, advances the session and
// delivers the reply. A failed job is logged and dropped, never retried; the
// customer simply sends another message.
type Worker struct {
	controller *Controller
	queue      Queue
	sender     replySender
	orders     orders.Repository
	notifier   orderNotifier
	metrics    *metrics.AssistantMetrics
	logger     *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	sendTimeout      time.Duration
	orders           orders.Repository
	notifier         orderNotifier
	metrics          *metrics.AssistantMetrics
}

const (
	defaultWorkerCount  = 2
	defaultWaitSeconds  = 2
	defaultBatchSize    = 5
	defaultSendTimeout  = 10 * time.Second
	maxWaitSeconds      = 20
	maxReceiveBatchSize = 10
	deleteTimeout       = 5 * time.Second
)

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the SQS long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithSendTimeout bounds each outbound delivery attempt.
func WithSendTimeout(d time.Duration) WorkerOption {
	return func(cfg *workerConfig) {
		if d > 0 {
			cfg.sendTimeout = d
		}
	}
}

// WithOrderRepository wires persistent storage for finalized orders.
func WithOrderRepository(repo orders.Repository) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.orders = repo
	}
}

// WithNotifier wires an operator notifier for finalized orders.
func WithNotifier(notifier orderNotifier) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.notifier = notifier
	}
}

// WithMetrics wires dialogue flow metrics.
func WithMetrics(m *metrics.AssistantMetrics) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.metrics = m
	}
}

// NewWorker constructs a queue consumer around the provided controller.
func NewWorker(controller *Controller, queue Queue, sender replySender, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if controller == nil {
		panic("dialogue: controller cannot be nil")
	}
	if queue == nil {
		panic("dialogue: queue cannot be nil")
	}
	if sender == nil {
		panic("dialogue: sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
		sendTimeout:      defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		controller: controller,
		queue:      queue,
		sender:     sender,
		orders:     cfg.orders,
		notifier:   cfg.notifier,
		metrics:    cfg.metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// Start launches worker goroutines until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("dialogue worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("dialogue worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive dialogue jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg QueueMessage) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("failed to decode dialogue job", "error", err)
		w.deleteMessage(context.Background(), msg.ReceiptHandle)
		return
	}

	outcome, err := w.controller.Handle(ctx, payload.Message)
	if err != nil {
		w.logger.Error("dialogue job failed", "error", err, "job_id", payload.ID, "customer_id", payload.Message.CustomerID)
		w.deleteMessage(context.Background(), msg.ReceiptHandle)
		return
	}

	w.sendReply(ctx, payload, outcome)

	if outcome.OrderFinalized {
		w.captureOrder(ctx, payload, outcome)
	}

	w.deleteMessage(context.Background(), msg.ReceiptHandle)
}

func (w *Worker) sendReply(ctx context.Context, payload queuePayload, outcome *Outcome) {
	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.sendTimeout)
	defer cancel()

	if err := w.sender.SendText(sendCtx, payload.Message.CustomerID, outcome.Text); err != nil {
		w.metrics.ObserveOutbound(string(outcome.Action), "failed")
		w.logger.Error("failed to send reply",
			"error", err,
			"job_id", payload.ID,
			"customer_id", payload.Message.CustomerID,
			"action", string(outcome.Action),
		)
		return
	}
	w.metrics.ObserveOutbound(string(outcome.Action), "sent")
}

func (w *Worker) captureOrder(ctx context.Context, payload queuePayload, outcome *Outcome) {
	sess := outcome.Session

	var order *orders.Order
	if w.orders != nil {
		created, err := w.orders.Create(ctx, &orders.CreateOrderRequest{
			CustomerID:   sess.CustomerID,
			CustomerName: sess.DisplayName,
			Language:     sess.Language,
			Fields:       sess.Fields,
		})
		if err != nil {
			w.logger.Error("failed to persist order", "error", err, "job_id", payload.ID, "customer_id", sess.CustomerID)
		} else {
			order = created
		}
	}
	if order == nil {
		order = &orders.Order{
			CustomerID:   sess.CustomerID,
			CustomerName: sess.DisplayName,
			Language:     sess.Language,
			Fields:       sess.Fields,
			CreatedAt:    time.Now().UTC(),
		}
	}

	w.metrics.ObserveOrderCaptured()
	w.logger.Info("order captured",
		"customer_id", sess.CustomerID,
		"date", sess.Fields.Date,
		"time", sess.Fields.Time,
		"destination", sess.Fields.Destination,
	)

	if w.notifier != nil {
		if err := w.notifier.NotifyOrderCaptured(ctx, order); err != nil {
			w.logger.Error("failed to notify operator", "error", err, "customer_id", sess.CustomerID)
		}
	}
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}

	deleteCtx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	if err := w.queue.Delete(deleteCtx, receiptHandle); err != nil {
		w.logger.Error("failed to delete dialogue job", "error", err)
	}
}
