package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JossueJativa/websocket/internal/domain"
	"github.com/JossueJativa/websocket/internal/event"
	"github.com/JossueJativa/websocket/internal/repository"
	"github.com/JossueJativa/websocket/internal/room"
	apperrors "github.com/JossueJativa/websocket/pkg/errors"
)

// User-facing messages. These travel verbatim in WebSocket acks, so clients
// match on the exact strings.
const (
	MsgDeskIDRequired      = "Desk ID is required"
	MsgOrderDetailNotFound = "OrderDetail not found"
	MsgNoOrdersToDelete    = "No orders found to delete for the specified desk"
	MsgKitchenSuccess      = "Order sent to kitchen successfully"
)

// Broadcast event names.
const (
	EventOrderDetails = "order:details"
	EventKitchenOrder = "kitchen:order"
)

// Broadcaster fans an event out to every member of a room except the client
// with the given ID. Pass an empty exceptID to reach everyone.
type Broadcaster interface {
	Broadcast(roomName, exceptID, eventName string, data any)
}

// KitchenOrder is the payload relayed to the kitchen room.
type KitchenOrder struct {
	DeskID       int64 `json:"desk_id"`
	OrderDetails any   `json:"orderDetails"`
}

// OrderService implements the business logic for desk order operations: line
// consolidation, desk-scoped re-broadcast and the kitchen relay.
type OrderService struct {
	repo        repository.OrderDetailRepository
	broadcaster Broadcaster
	producer    *event.Producer
	logger      *slog.Logger

	// Mutations on the same desk are serialized so two concurrent creates
	// cannot both miss the merge candidate and insert duplicate lines.
	mu        sync.Mutex
	deskLocks map[int64]*sync.Mutex
}

// NewOrderService creates a new order service.
func NewOrderService(
	repo repository.OrderDetailRepository,
	broadcaster Broadcaster,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		repo:        repo,
		broadcaster: broadcaster,
		producer:    producer,
		logger:      logger,
		deskLocks:   make(map[int64]*sync.Mutex),
	}
}

// lockDesk returns the mutation lock for a desk, creating it on first use.
func (s *OrderService) lockDesk(deskID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.deskLocks[deskID]
	if !ok {
		l = &sync.Mutex{}
		s.deskLocks[deskID] = l
	}
	return l
}

func validateDeskID(deskID int64) error {
	if deskID <= 0 {
		return apperrors.InvalidInput(MsgDeskIDRequired)
	}
	return nil
}

// CreateOrderInput holds the parameters for creating or merging a line item.
type CreateOrderInput struct {
	ProductID int64
	Quantity  int
	DeskID    int64
	Garrison  domain.Garrison
}

// CreateOrder adds a line item to a desk's order, merging it into an existing
// line when possible. The merge candidate is the first line on the desk with
// the same product: when the candidate carries a garrison that differs from
// the request's, a separate line is created; otherwise the candidate's
// quantity is incremented and its garrison kept as-is. On success the desk's
// full line list is re-broadcast to every observer except the initiator.
func (s *OrderService) CreateOrder(ctx context.Context, clientID string, input CreateOrderInput) (*domain.OrderDetail, error) {
	if err := validateDeskID(input.DeskID); err != nil {
		return nil, err
	}

	candidate, err := domain.NewOrderDetail(input.ProductID, input.Quantity, input.DeskID, input.Garrison)
	if err != nil {
		return nil, err
	}

	lock := s.lockDesk(input.DeskID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.GetAll(ctx, input.DeskID)
	if err != nil {
		return nil, fmt.Errorf("load desk lines: %w", err)
	}

	merged, target := consolidate(existing, candidate)

	if merged {
		if err := s.repo.Update(ctx, target, target.ID); err != nil {
			return nil, fmt.Errorf("merge order detail: %w", err)
		}
		consolidationOutcomes.WithLabelValues("merged").Inc()

		if err := s.producer.PublishOrderDetailMerged(ctx, target); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order_detail.merged event",
				slog.Int64("order_detail_id", target.ID),
				slog.String("error", err.Error()),
			)
		}
	} else {
		if err := s.repo.Save(ctx, target); err != nil {
			return nil, fmt.Errorf("save order detail: %w", err)
		}
		consolidationOutcomes.WithLabelValues("created").Inc()

		if err := s.producer.PublishOrderDetailCreated(ctx, target); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order_detail.created event",
				slog.Int64("order_detail_id", target.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order detail written",
		slog.Int64("order_detail_id", target.ID),
		slog.Int64("desk_id", target.DeskID),
		slog.Bool("merged", merged),
	)

	s.broadcastDeskOrders(ctx, input.DeskID, clientID)

	return target, nil
}

// consolidate picks the first line matching the candidate's product and
// decides between merging and forking. It reports whether a merge happened
// and returns the line to persist.
func consolidate(existing []domain.OrderDetail, candidate *domain.OrderDetail) (bool, *domain.OrderDetail) {
	for i := range existing {
		line := &existing[i]
		if line.ProductID != candidate.ProductID {
			continue
		}

		// A line with a configured garrison only absorbs requests whose
		// garrison is set-equal to its own; anything else forks a new line.
		if line.HasGarrison() && !line.Garrison.Equals(candidate.Garrison) {
			return false, candidate
		}

		// Only the quantity moves on a merge. The absorbed line keeps its own
		// garrison even when the request carried a different one.
		line.Quantity += candidate.Quantity
		return true, line
	}

	return false, candidate
}

// GetOrders returns every line on a desk's order.
func (s *OrderService) GetOrders(ctx context.Context, deskID int64) ([]domain.OrderDetail, error) {
	if err := validateDeskID(deskID); err != nil {
		return nil, err
	}

	details, err := s.repo.GetAll(ctx, deskID)
	if err != nil {
		return nil, fmt.Errorf("list order details: %w", err)
	}

	return details, nil
}

// UpdateOrderInput holds the parameters for rewriting a line item.
type UpdateOrderInput struct {
	OrderDetailID int64
	DeskID        int64
	Quantity      int
	Garrison      domain.Garrison
}

// UpdateOrder replaces a line's quantity and, when a garrison is supplied,
// its garrison. On success the desk's line list is re-broadcast.
func (s *OrderService) UpdateOrder(ctx context.Context, clientID string, input UpdateOrderInput) (*domain.OrderDetail, error) {
	if err := validateDeskID(input.DeskID); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("Quantity must be greater than zero")
	}

	lock := s.lockDesk(input.DeskID)
	lock.Lock()
	defer lock.Unlock()

	detail, err := s.repo.Get(ctx, input.OrderDetailID)
	if err != nil {
		return nil, fmt.Errorf("get order detail for update: %w", err)
	}

	detail.Quantity = input.Quantity
	if input.Garrison != nil {
		detail.Garrison = input.Garrison
	}

	if err := s.repo.Update(ctx, detail, detail.ID); err != nil {
		return nil, fmt.Errorf("update order detail: %w", err)
	}

	if err := s.producer.PublishOrderDetailUpdated(ctx, detail); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order_detail.updated event",
			slog.Int64("order_detail_id", detail.ID),
			slog.String("error", err.Error()),
		)
	}

	s.broadcastDeskOrders(ctx, input.DeskID, clientID)

	return detail, nil
}

// DeleteOrder removes a single line from a desk's order and re-broadcasts the
// remaining lines.
func (s *OrderService) DeleteOrder(ctx context.Context, clientID string, orderDetailID, deskID int64) error {
	if err := validateDeskID(deskID); err != nil {
		return err
	}

	lock := s.lockDesk(deskID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.repo.Get(ctx, orderDetailID); err != nil {
		return fmt.Errorf("get order detail for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, orderDetailID); err != nil {
		return fmt.Errorf("delete order detail: %w", err)
	}

	if err := s.producer.PublishOrderDetailDeleted(ctx, orderDetailID, deskID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order_detail.deleted event",
			slog.Int64("order_detail_id", orderDetailID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order detail deleted",
		slog.Int64("order_detail_id", orderDetailID),
		slog.Int64("desk_id", deskID),
	)

	s.broadcastDeskOrders(ctx, deskID, clientID)

	return nil
}

// DeleteAllOrders clears every line on a desk. Clearing an already-empty desk
// is an error so desks cannot silently ack a no-op clear.
func (s *OrderService) DeleteAllOrders(ctx context.Context, clientID string, deskID int64) (int64, error) {
	if err := validateDeskID(deskID); err != nil {
		return 0, err
	}

	lock := s.lockDesk(deskID)
	lock.Lock()
	defer lock.Unlock()

	count, err := s.repo.DeleteAll(ctx, deskID)
	if err != nil {
		return 0, fmt.Errorf("delete desk order details: %w", err)
	}

	if count == 0 {
		return 0, apperrors.NotFoundMessage(MsgNoOrdersToDelete)
	}

	if err := s.producer.PublishDeskCleared(ctx, deskID, count); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish desk.cleared event",
			slog.Int64("desk_id", deskID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "desk cleared",
		slog.Int64("desk_id", deskID),
		slog.Int64("deleted", count),
	)

	s.broadcastDeskOrders(ctx, deskID, clientID)

	return count, nil
}

// SendToKitchen relays a desk's order snapshot to the kitchen room. The
// payload is forwarded as supplied; the store is never consulted.
func (s *OrderService) SendToKitchen(ctx context.Context, deskID int64, orderDetails any) error {
	if err := validateDeskID(deskID); err != nil {
		return err
	}

	s.broadcaster.Broadcast(room.KitchenRoom, "", EventKitchenOrder, KitchenOrder{
		DeskID:       deskID,
		OrderDetails: orderDetails,
	})
	broadcastsTotal.WithLabelValues("kitchen").Inc()

	lines := 0
	if list, ok := orderDetails.([]any); ok {
		lines = len(list)
	}
	if err := s.producer.PublishKitchenDispatched(ctx, deskID, lines); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish kitchen.dispatched event",
			slog.Int64("desk_id", deskID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order relayed to kitchen", slog.Int64("desk_id", deskID))

	return nil
}

// broadcastDeskOrders re-reads the desk's canonical line list and publishes it
// to the desk room, excluding the initiating client. Called only after a
// mutation has committed; a failed re-read suppresses the broadcast but not
// the caller's ack.
func (s *OrderService) broadcastDeskOrders(ctx context.Context, deskID int64, exceptID string) {
	details, err := s.repo.GetAll(ctx, deskID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load desk lines for broadcast",
			slog.Int64("desk_id", deskID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.broadcaster.Broadcast(room.DeskRoom(deskID), exceptID, EventOrderDetails, details)
	broadcastsTotal.WithLabelValues("desk").Inc()
}
