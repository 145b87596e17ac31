package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/JossueJativa/websocket/internal/domain"
	pkgkafka "github.com/JossueJativa/websocket/pkg/kafka"
)

// Kafka topics for order detail domain events.
var (
	TopicOrderDetailCreated = pkgkafka.Topic("order_detail", "created")
	TopicOrderDetailMerged  = pkgkafka.Topic("order_detail", "merged")
	TopicOrderDetailUpdated = pkgkafka.Topic("order_detail", "updated")
	TopicOrderDetailDeleted = pkgkafka.Topic("order_detail", "deleted")
	TopicDeskCleared        = pkgkafka.Topic("desk", "cleared")
	TopicKitchenDispatched  = pkgkafka.Topic("kitchen", "dispatched")
)

// Aggregate type constant.
const AggregateTypeOrderDetail = "order_detail"

// Source identifier for events originating from this service.
const SourceDeskOrderService = "deskorder-service"

// OrderDetailData is the event payload for a single order line snapshot.
type OrderDetailData struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	DeskID    int64           `json:"desk_id"`
	Garrison  domain.Garrison `json:"garrison"`
}

// DeskClearedData is the payload for a desk.cleared event.
type DeskClearedData struct {
	DeskID  int64 `json:"desk_id"`
	Deleted int64 `json:"deleted"`
}

// KitchenDispatchedData is the payload for a kitchen.dispatched event.
type KitchenDispatchedData struct {
	DeskID int64 `json:"desk_id"`
	Lines  int   `json:"lines"`
}

// Producer publishes order detail domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func detailData(d *domain.OrderDetail) OrderDetailData {
	return OrderDetailData{
		ID:        d.ID,
		ProductID: d.ProductID,
		Quantity:  d.Quantity,
		DeskID:    d.DeskID,
		Garrison:  d.Garrison,
	}
}

func (p *Producer) publishDetail(ctx context.Context, topic string, d *domain.OrderDetail) error {
	if p.kafka == nil {
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, strconv.FormatInt(d.ID, 10), AggregateTypeOrderDetail, SourceDeskOrderService, detailData(d))
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published order detail event",
		slog.String("topic", topic),
		slog.Int64("order_detail_id", d.ID),
		slog.Int64("desk_id", d.DeskID),
	)

	return nil
}

// PublishOrderDetailCreated publishes an order_detail.created event.
func (p *Producer) PublishOrderDetailCreated(ctx context.Context, d *domain.OrderDetail) error {
	return p.publishDetail(ctx, TopicOrderDetailCreated, d)
}

// PublishOrderDetailMerged publishes an order_detail.merged event carrying the
// consolidated line.
func (p *Producer) PublishOrderDetailMerged(ctx context.Context, d *domain.OrderDetail) error {
	return p.publishDetail(ctx, TopicOrderDetailMerged, d)
}

// PublishOrderDetailUpdated publishes an order_detail.updated event.
func (p *Producer) PublishOrderDetailUpdated(ctx context.Context, d *domain.OrderDetail) error {
	return p.publishDetail(ctx, TopicOrderDetailUpdated, d)
}

// PublishOrderDetailDeleted publishes an order_detail.deleted event.
func (p *Producer) PublishOrderDetailDeleted(ctx context.Context, id, deskID int64) error {
	if p.kafka == nil {
		return nil
	}

	data := OrderDetailData{ID: id, DeskID: deskID}

	event, err := pkgkafka.NewEvent(TopicOrderDetailDeleted, strconv.FormatInt(id, 10), AggregateTypeOrderDetail, SourceDeskOrderService, data)
	if err != nil {
		return fmt.Errorf("create order_detail.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderDetailDeleted, event); err != nil {
		return fmt.Errorf("publish order_detail.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order_detail.deleted event",
		slog.Int64("order_detail_id", id),
		slog.Int64("desk_id", deskID),
	)

	return nil
}

// PublishDeskCleared publishes a desk.cleared event after a bulk delete.
func (p *Producer) PublishDeskCleared(ctx context.Context, deskID, deleted int64) error {
	if p.kafka == nil {
		return nil
	}

	data := DeskClearedData{DeskID: deskID, Deleted: deleted}

	event, err := pkgkafka.NewEvent(TopicDeskCleared, strconv.FormatInt(deskID, 10), AggregateTypeOrderDetail, SourceDeskOrderService, data)
	if err != nil {
		return fmt.Errorf("create desk.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicDeskCleared, event); err != nil {
		return fmt.Errorf("publish desk.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published desk.cleared event",
		slog.Int64("desk_id", deskID),
		slog.Int64("deleted", deleted),
	)

	return nil
}

// PublishKitchenDispatched publishes a kitchen.dispatched event when a desk's
// order is forwarded to the kitchen.
func (p *Producer) PublishKitchenDispatched(ctx context.Context, deskID int64, lines int) error {
	if p.kafka == nil {
		return nil
	}

	data := KitchenDispatchedData{DeskID: deskID, Lines: lines}

	event, err := pkgkafka.NewEvent(TopicKitchenDispatched, strconv.FormatInt(deskID, 10), AggregateTypeOrderDetail, SourceDeskOrderService, data)
	if err != nil {
		return fmt.Errorf("create kitchen.dispatched event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicKitchenDispatched, event); err != nil {
		return fmt.Errorf("publish kitchen.dispatched event: %w", err)
	}

	p.logger.DebugContext(ctx, "published kitchen.dispatched event",
		slog.Int64("desk_id", deskID),
		slog.Int("lines", lines),
	)

	return nil
}
