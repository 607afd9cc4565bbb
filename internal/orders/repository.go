package orders

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for order storage
type Repository interface {
	Create(ctx context.Context, req *CreateOrderRequest) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*Order, error)
}

// InMemoryRepository keeps orders in memory for deployments without a
// database and for tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*Order
	byTime []*Order
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders: make(map[string]*Order),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order := &Order{
		ID:           uuid.New().String(),
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Language:     req.Language,
		Fields:       req.Fields,
		CreatedAt:    time.Now().UTC(),
	}

	r.mu.Lock()
	r.orders[order.ID] = order
	r.byTime = append(r.byTime, order)
	r.mu.Unlock()

	return order, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByCustomer returns the newest orders for a customer, newest first.
func (r *InMemoryRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 10
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Order, 0, limit)
	for i := len(r.byTime) - 1; i >= 0 && len(out) < limit; i-- {
		if r.byTime[i].CustomerID == customerID {
			out = append(out, r.byTime[i])
		}
	}
	return out, nil
}
