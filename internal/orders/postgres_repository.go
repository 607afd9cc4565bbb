package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores orders in the relational database.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("orders: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO orders (id, customer_id, customer_name, language, ride_date, ride_time, pickup, destination, passengers, luggage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.CustomerID,
		req.CustomerName,
		req.Language,
		req.Fields.Date,
		req.Fields.Time,
		req.Fields.Pickup,
		req.Fields.Destination,
		req.Fields.Passengers,
		req.Fields.Luggage,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("orders: insert failed: %w", err)
	}

	return &Order{
		ID:           id.String(),
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Language:     req.Language,
		Fields:       req.Fields,
		CreatedAt:    createdAt,
	}, nil
}

// GetByID fetches a single order.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `
		SELECT id, customer_id, customer_name, language, ride_date, ride_time, pickup, destination, passengers, luggage, created_at
		FROM orders
		WHERE id = $1
	`
	row := r.db.QueryRow(ctx, query, id)
	order, err := scanOrder(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("orders: select failed: %w", err)
	}
	return order, nil
}

// ListByCustomer returns the newest orders for a customer, newest first.
func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, customer_id, customer_name, language, ride_date, ride_time, pickup, destination, passengers, luggage, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("orders: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("orders: scan failed: %w", err)
		}
		out = append(out, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders: iterate failed: %w", err)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var order Order
	if err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.CustomerName,
		&order.Language,
		&order.Fields.Date,
		&order.Fields.Time,
		&order.Fields.Pickup,
		&order.Fields.Destination,
		&order.Fields.Passengers,
		&order.Fields.Luggage,
		&order.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}
