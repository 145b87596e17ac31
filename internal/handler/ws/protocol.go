package ws

import (
	"encoding/json"

	"github.com/JossueJativa/websocket/internal/domain"
)

// Inbound event names.
const (
	EventJoinDesk       = "join:desk"
	EventJoinKitchen    = "join:kitchen"
	EventOrderCreate    = "order:create"
	EventOrderGet       = "order:get"
	EventOrderUpdate    = "order:update"
	EventOrderDelete    = "order:delete"
	EventOrderDeleteAll = "order:delete:all"
	EventOrderKitchen   = "order:kitchen"
)

// Server-emitted event names.
const (
	EventAck        = "ack"
	EventJoinedDesk = "joined:desk"
)

// Envelope is the frame exchanged over the WebSocket connection. Requests may
// carry an id; the matching ack echoes it back so clients can correlate
// replies on a multiplexed connection.
type Envelope struct {
	Event string          `json:"event"`
	ID    uint64          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody carries the user-facing failure message of an ack.
type ErrorBody struct {
	Message string `json:"message"`
}

// joinDeskRequest subscribes the connection to a desk's room.
type joinDeskRequest struct {
	DeskID int64 `json:"desk_id"`
}

// createOrderRequest adds (or merges) a line item on a desk's order.
type createOrderRequest struct {
	ProductID int64           `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
	DeskID    int64           `json:"desk_id"`
	Garrison  domain.Garrison `json:"garrison"`
}

// getOrdersRequest reads a desk's full line list.
type getOrdersRequest struct {
	DeskID int64 `json:"desk_id"`
}

// updateOrderRequest rewrites a line's quantity and optionally its garrison.
type updateOrderRequest struct {
	OrderDetailID  int64           `json:"order_detail_id" validate:"required"`
	DeskID         int64           `json:"desk_id"`
	UpdateQuantity int             `json:"update_quantity" validate:"required,gte=1"`
	Garrison       domain.Garrison `json:"garrison"`
}

// deleteOrderRequest removes a single line.
type deleteOrderRequest struct {
	OrderDetailID int64 `json:"order_detail_id" validate:"required"`
	DeskID        int64 `json:"desk_id"`
}

// deleteAllRequest clears every line on a desk.
type deleteAllRequest struct {
	DeskID int64 `json:"desk_id"`
}

// kitchenRequest relays a desk's order snapshot to the kitchen room.
type kitchenRequest struct {
	DeskID       int64 `json:"desk_id"`
	OrderDetails any   `json:"orderDetails"`
}

// joinedDeskData is the payload of the joined:desk confirmation.
type joinedDeskData struct {
	DeskID int64 `json:"desk_id"`
}

// deletedData is the ack payload of order:delete.
type deletedData struct {
	OrderDetailID int64 `json:"order_detail_id"`
}

// deleteAllData is the ack payload of order:delete:all.
type deleteAllData struct {
	DeskID      int64 `json:"desk_id"`
	RowsDeleted int64 `json:"rowsDeleted"`
}

// messageData is the ack payload for message-only confirmations.
type messageData struct {
	Message string `json:"message"`
}
