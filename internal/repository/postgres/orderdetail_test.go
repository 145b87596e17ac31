package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JossueJativa/websocket/internal/domain"
	"github.com/JossueJativa/websocket/pkg/database"
	apperrors "github.com/JossueJativa/websocket/pkg/errors"
)

var orderDetailColumns = []string{
	"id", "product_id", "quantity", "desk_id", "garrison", "created_at", "updated_at",
}

// ─── Save ────────────────────────────────────────────────────────────────────

func TestOrderDetailRepository_Save_Success(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)
	d := &domain.OrderDetail{ProductID: 11, Quantity: 2, DeskID: 5, Garrison: domain.Garrison{3, 4}}

	mock.ExpectQuery("INSERT INTO order_details").
		WithArgs(d.ProductID, d.Quantity, d.DeskID, []byte("[3,4]"), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	err = repo.Save(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(42), d.ID)
	assert.False(t, d.CreatedAt.IsZero())
	assert.Equal(t, d.CreatedAt, d.UpdatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDetailRepository_Save_NilGarrisonStoredAsNull(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)
	d := &domain.OrderDetail{ProductID: 11, Quantity: 1, DeskID: 5}

	mock.ExpectQuery("INSERT INTO order_details").
		WithArgs(d.ProductID, d.Quantity, d.DeskID, nil, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	err = repo.Save(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDetailRepository_Save_QueryError(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)
	d := &domain.OrderDetail{ProductID: 11, Quantity: 2, DeskID: 5}

	mock.ExpectQuery("INSERT INTO order_details").
		WithArgs(d.ProductID, d.Quantity, d.DeskID, nil, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	err = repo.Save(context.Background(), d)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert order detail")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── Update ──────────────────────────────────────────────────────────────────

func TestOrderDetailRepository_Update_Success(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)
	d := &domain.OrderDetail{ProductID: 11, Quantity: 3, DeskID: 5, Garrison: domain.Garrison{9}}

	mock.ExpectExec("UPDATE order_details").
		WithArgs(d.ProductID, d.Quantity, d.DeskID, []byte("[9]"), pgxmock.AnyArg(), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.Update(context.Background(), d, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), d.ID)
	assert.False(t, d.UpdatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDetailRepository_Update_NotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)
	d := &domain.OrderDetail{ProductID: 11, Quantity: 3, DeskID: 5}

	mock.ExpectExec("UPDATE order_details").
		WithArgs(d.ProductID, d.Quantity, d.DeskID, nil, pgxmock.AnyArg(), int64(999)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Update(context.Background(), d, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "OrderDetail not found", apperrors.Message(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── Delete ──────────────────────────────────────────────────────────────────

func TestOrderDetailRepository_Delete_Success(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)

	mock.ExpectExec("DELETE FROM order_details").
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err = repo.Delete(context.Background(), 42)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDetailRepository_Delete_NotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)

	mock.ExpectExec("DELETE FROM order_details").
		WithArgs(int64(999)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── DeleteAll ───────────────────────────────────────────────────────────────

func TestOrderDetailRepository_DeleteAll_ReturnsCount(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)

	mock.ExpectExec("DELETE FROM order_details").
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	count, err := repo.DeleteAll(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDetailRepository_DeleteAll_ZeroRows(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)

	mock.ExpectExec("DELETE FROM order_details").
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	count, err := repo.DeleteAll(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── Get ─────────────────────────────────────────────────────────────────────

func TestOrderDetailRepository_Get_Success(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM order_details").
		WithArgs(int64(42)).
		WillReturnRows(
			pgxmock.NewRows(orderDetailColumns).
				AddRow(int64(42), int64(11), 2, int64(5), []byte("[3,4]"), now, now),
		)

	d, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), d.ID)
	assert.Equal(t, int64(11), d.ProductID)
	assert.Equal(t, 2, d.Quantity)
	assert.Equal(t, int64(5), d.DeskID)
	assert.Equal(t, domain.Garrison{3, 4}, d.Garrison)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDetailRepository_Get_NullGarrison(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM order_details").
		WithArgs(int64(42)).
		WillReturnRows(
			pgxmock.NewRows(orderDetailColumns).
				AddRow(int64(42), int64(11), 2, int64(5), nil, now, now),
		)

	d, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, d.Garrison)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDetailRepository_Get_NotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM order_details").
		WithArgs(int64(999)).
		WillReturnError(pgx.ErrNoRows)

	d, err := repo.Get(context.Background(), 999)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "OrderDetail not found", apperrors.Message(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── GetAll ──────────────────────────────────────────────────────────────────

func TestOrderDetailRepository_GetAll_OrderedByID(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM order_details").
		WithArgs(int64(5)).
		WillReturnRows(
			pgxmock.NewRows(orderDetailColumns).
				AddRow(int64(1), int64(11), 2, int64(5), []byte("[3]"), now, now).
				AddRow(int64(2), int64(12), 1, int64(5), nil, now, now),
		)

	details, err := repo.GetAll(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, int64(1), details[0].ID)
	assert.Equal(t, domain.Garrison{3}, details[0].Garrison)
	assert.Equal(t, int64(2), details[1].ID)
	assert.Nil(t, details[1].Garrison)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDetailRepository_GetAll_Empty(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM order_details").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(orderDetailColumns))

	details, err := repo.GetAll(context.Background(), 99)
	require.NoError(t, err)
	assert.NotNil(t, details)
	assert.Empty(t, details)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderDetailRepository_GetAll_QueryError(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderDetailRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM order_details").
		WithArgs(int64(5)).
		WillReturnError(errors.New("database timeout"))

	details, err := repo.GetAll(context.Background(), 5)
	assert.Nil(t, details)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "list order details")

	assert.NoError(t, mock.ExpectationsWereMet())
}
