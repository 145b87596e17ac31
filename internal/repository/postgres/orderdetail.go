package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JossueJativa/websocket/internal/domain"
	"github.com/JossueJativa/websocket/pkg/database"
	apperrors "github.com/JossueJativa/websocket/pkg/errors"
)

// OrderDetailRepository implements repository.OrderDetailRepository using PostgreSQL.
type OrderDetailRepository struct {
	pool database.DBTX
}

// NewOrderDetailRepository creates a new PostgreSQL-backed order detail repository.
func NewOrderDetailRepository(pool database.DBTX) *OrderDetailRepository {
	return &OrderDetailRepository{pool: pool}
}

// Save inserts a new order line and fills in its generated ID and timestamps.
func (r *OrderDetailRepository) Save(ctx context.Context, d *domain.OrderDetail) error {
	garrisonJSON, err := marshalGarrison(d.Garrison)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO order_details (product_id, quantity, desk_id, garrison, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if err := r.pool.QueryRow(ctx, query,
		d.ProductID,
		d.Quantity,
		d.DeskID,
		garrisonJSON,
		now,
		now,
	).Scan(&d.ID); err != nil {
		return fmt.Errorf("insert order detail: %w", err)
	}

	d.CreatedAt = now
	d.UpdatedAt = now

	return nil
}

// Update overwrites the line with the given ID.
func (r *OrderDetailRepository) Update(ctx context.Context, d *domain.OrderDetail, id int64) error {
	garrisonJSON, err := marshalGarrison(d.Garrison)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	query := `
		UPDATE order_details
		SET product_id = $1, quantity = $2, desk_id = $3, garrison = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.pool.Exec(ctx, query,
		d.ProductID,
		d.Quantity,
		d.DeskID,
		garrisonJSON,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("update order detail: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFoundMessage("OrderDetail not found")
	}

	d.ID = id
	d.UpdatedAt = now

	return nil
}

// Delete removes a single line by ID.
func (r *OrderDetailRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM order_details WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order detail: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFoundMessage("OrderDetail not found")
	}

	return nil
}

// DeleteAll removes every line belonging to a desk and returns the row count.
func (r *OrderDetailRepository) DeleteAll(ctx context.Context, deskID int64) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM order_details WHERE desk_id = $1`, deskID)
	if err != nil {
		return 0, fmt.Errorf("delete order details for desk: %w", err)
	}

	return ct.RowsAffected(), nil
}

// Get retrieves a single line by ID.
func (r *OrderDetailRepository) Get(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	query := `
		SELECT id, product_id, quantity, desk_id, garrison, created_at, updated_at
		FROM order_details
		WHERE id = $1`

	var (
		d            domain.OrderDetail
		garrisonJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.ProductID,
		&d.Quantity,
		&d.DeskID,
		&garrisonJSON,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundMessage("OrderDetail not found")
		}
		return nil, fmt.Errorf("scan order detail: %w", err)
	}

	if d.Garrison, err = unmarshalGarrison(garrisonJSON); err != nil {
		return nil, err
	}

	return &d, nil
}

// GetAll returns every line for a desk ordered by insertion.
func (r *OrderDetailRepository) GetAll(ctx context.Context, deskID int64) ([]domain.OrderDetail, error) {
	query := `
		SELECT id, product_id, quantity, desk_id, garrison, created_at, updated_at
		FROM order_details
		WHERE desk_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, deskID)
	if err != nil {
		return nil, fmt.Errorf("list order details: %w", err)
	}
	defer rows.Close()

	details := make([]domain.OrderDetail, 0)

	for rows.Next() {
		var (
			d            domain.OrderDetail
			garrisonJSON []byte
		)

		if err := rows.Scan(
			&d.ID,
			&d.ProductID,
			&d.Quantity,
			&d.DeskID,
			&garrisonJSON,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order detail row: %w", err)
		}

		if d.Garrison, err = unmarshalGarrison(garrisonJSON); err != nil {
			return nil, err
		}

		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order detail rows: %w", err)
	}

	return details, nil
}

// marshalGarrison serializes a garrison for the JSONB column. A nil garrison
// is stored as SQL NULL so it round-trips back as nil.
func marshalGarrison(g domain.Garrison) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal garrison: %w", err)
	}
	return raw, nil
}

func unmarshalGarrison(raw []byte) (domain.Garrison, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var g domain.Garrison
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("unmarshal garrison: %w", err)
	}
	return g, nil
}
