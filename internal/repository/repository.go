package repository

import (
	"context"

	"github.com/JossueJativa/websocket/internal/domain"
)

// OrderDetailRepository defines the interface for order line persistence.
type OrderDetailRepository interface {
	// Save inserts a new order line and fills in its generated ID and timestamps.
	Save(ctx context.Context, detail *domain.OrderDetail) error

	// Update overwrites the line with the given ID.
	Update(ctx context.Context, detail *domain.OrderDetail, id int64) error

	// Delete removes a single line by ID.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every line belonging to a desk and returns how many
	// rows were removed.
	DeleteAll(ctx context.Context, deskID int64) (int64, error)

	// Get retrieves a single line by ID.
	Get(ctx context.Context, id int64) (*domain.OrderDetail, error)

	// GetAll returns every line for a desk in insertion order.
	GetAll(ctx context.Context, deskID int64) ([]domain.OrderDetail, error)
}
