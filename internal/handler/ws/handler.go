package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JossueJativa/websocket/internal/room"
	"github.com/JossueJativa/websocket/internal/service"
	apperrors "github.com/JossueJativa/websocket/pkg/errors"
	pkgvalidator "github.com/JossueJativa/websocket/pkg/validator"
)

const (
	readLimit    = 64 * 1024
	readWait     = 60 * time.Second
	upgradeBufsz = 1024
)

// Handler upgrades HTTP requests to WebSocket connections and dispatches the
// desk order protocol. Each request with an id receives an ack echoing that
// id; join:kitchen is silent. A frame that is not valid JSON closes the
// connection.
type Handler struct {
	hub      *room.Hub
	svc      *service.OrderService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket handler. allowedOrigins restricts the
// upgrade handshake; an empty list or "*" admits any origin.
func NewHandler(hub *room.Hub, svc *service.OrderService, logger *slog.Logger, allowedOrigins []string) *Handler {
	return &Handler{
		hub:    hub,
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  upgradeBufsz,
			WriteBufferSize: upgradeBufsz,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return set[origin]
	}
}

// ServeHTTP upgrades the connection and runs the read loop until the client
// goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := room.NewClient(conn)
	go client.WritePump(h.logger)

	h.logger.Info("websocket client connected", slog.String("client_id", client.ID))

	defer func() {
		h.hub.LeaveAll(client)
		conn.Close()
		h.logger.Info("websocket client disconnected", slog.String("client_id", client.ID))
	}()

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	ctx := r.Context()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed",
					slog.String("client_id", client.ID),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var req Envelope
		if err := json.Unmarshal(raw, &req); err != nil {
			h.logger.Warn("closing connection on malformed frame",
				slog.String("client_id", client.ID),
				slog.String("error", err.Error()),
			)
			return
		}

		h.dispatch(ctx, client, req)
	}
}

func (h *Handler) dispatch(ctx context.Context, client *room.Client, req Envelope) {
	switch req.Event {
	case EventJoinDesk:
		h.handleJoinDesk(client, req)
	case EventJoinKitchen:
		h.hub.Join(room.KitchenRoom, client)
	case EventOrderCreate:
		h.handleCreate(ctx, client, req)
	case EventOrderGet:
		h.handleGet(ctx, client, req)
	case EventOrderUpdate:
		h.handleUpdate(ctx, client, req)
	case EventOrderDelete:
		h.handleDelete(ctx, client, req)
	case EventOrderDeleteAll:
		h.handleDeleteAll(ctx, client, req)
	case EventOrderKitchen:
		h.handleKitchen(ctx, client, req)
	default:
		h.ackError(client, req.ID, apperrors.InvalidInput("unknown event "+req.Event))
	}
}

func (h *Handler) handleJoinDesk(client *room.Client, req Envelope) {
	var in joinDeskRequest
	if !h.decode(client, req, &in) {
		return
	}
	if in.DeskID <= 0 {
		h.ackError(client, req.ID, apperrors.InvalidInput(service.MsgDeskIDRequired))
		return
	}

	h.hub.Join(room.DeskRoom(in.DeskID), client)

	h.ackData(client, req.ID, joinedDeskData{DeskID: in.DeskID})
	h.emit(client, EventJoinedDesk, joinedDeskData{DeskID: in.DeskID})
}

func (h *Handler) handleCreate(ctx context.Context, client *room.Client, req Envelope) {
	var in createOrderRequest
	if !h.decode(client, req, &in) {
		return
	}
	if err := h.validate(client, req.ID, &in); err != nil {
		return
	}

	detail, err := h.svc.CreateOrder(ctx, client.ID, service.CreateOrderInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		DeskID:    in.DeskID,
		Garrison:  in.Garrison,
	})
	if err != nil {
		h.ackError(client, req.ID, err)
		return
	}

	h.ackData(client, req.ID, detail)
}

func (h *Handler) handleGet(ctx context.Context, client *room.Client, req Envelope) {
	var in getOrdersRequest
	if !h.decode(client, req, &in) {
		return
	}

	details, err := h.svc.GetOrders(ctx, in.DeskID)
	if err != nil {
		h.ackError(client, req.ID, err)
		return
	}

	h.ackData(client, req.ID, details)
}

func (h *Handler) handleUpdate(ctx context.Context, client *room.Client, req Envelope) {
	var in updateOrderRequest
	if !h.decode(client, req, &in) {
		return
	}
	if err := h.validate(client, req.ID, &in); err != nil {
		return
	}

	detail, err := h.svc.UpdateOrder(ctx, client.ID, service.UpdateOrderInput{
		OrderDetailID: in.OrderDetailID,
		DeskID:        in.DeskID,
		Quantity:      in.UpdateQuantity,
		Garrison:      in.Garrison,
	})
	if err != nil {
		h.ackError(client, req.ID, err)
		return
	}

	h.ackData(client, req.ID, detail)
}

func (h *Handler) handleDelete(ctx context.Context, client *room.Client, req Envelope) {
	var in deleteOrderRequest
	if !h.decode(client, req, &in) {
		return
	}
	if err := h.validate(client, req.ID, &in); err != nil {
		return
	}

	if err := h.svc.DeleteOrder(ctx, client.ID, in.OrderDetailID, in.DeskID); err != nil {
		h.ackError(client, req.ID, err)
		return
	}

	h.ackData(client, req.ID, deletedData{OrderDetailID: in.OrderDetailID})
}

func (h *Handler) handleDeleteAll(ctx context.Context, client *room.Client, req Envelope) {
	var in deleteAllRequest
	if !h.decode(client, req, &in) {
		return
	}

	count, err := h.svc.DeleteAllOrders(ctx, client.ID, in.DeskID)
	if err != nil {
		h.ackError(client, req.ID, err)
		return
	}

	h.ackData(client, req.ID, deleteAllData{DeskID: in.DeskID, RowsDeleted: count})
}

func (h *Handler) handleKitchen(ctx context.Context, client *room.Client, req Envelope) {
	var in kitchenRequest
	if !h.decode(client, req, &in) {
		return
	}

	if err := h.svc.SendToKitchen(ctx, in.DeskID, in.OrderDetails); err != nil {
		h.ackError(client, req.ID, err)
		return
	}

	h.ackData(client, req.ID, messageData{Message: service.MsgKitchenSuccess})
}

// decode unmarshals the request data, acking an error on failure.
func (h *Handler) decode(client *room.Client, req Envelope, dst any) bool {
	if len(req.Data) == 0 {
		h.ackError(client, req.ID, apperrors.InvalidInput("missing event data"))
		return false
	}
	if err := json.Unmarshal(req.Data, dst); err != nil {
		h.ackError(client, req.ID, apperrors.InvalidInput("invalid event data"))
		return false
	}
	return true
}

// validate runs struct tag validation, acking an error on failure.
func (h *Handler) validate(client *room.Client, id uint64, dst any) error {
	if err := pkgvalidator.Validate(dst); err != nil {
		h.ackError(client, id, apperrors.InvalidInput(err.Error()))
		return err
	}
	return nil
}

// ackData sends a success ack when the request carried an id.
func (h *Handler) ackData(client *room.Client, id uint64, data any) {
	if id == 0 {
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to marshal ack payload", slog.String("error", err.Error()))
		h.ackError(client, id, apperrors.Internal(err))
		return
	}

	h.send(client, Envelope{Event: EventAck, ID: id, Data: raw})
}

// ackError sends a failure ack carrying the user-facing message.
func (h *Handler) ackError(client *room.Client, id uint64, err error) {
	if id == 0 {
		return
	}

	h.send(client, Envelope{
		Event: EventAck,
		ID:    id,
		Error: &ErrorBody{Message: apperrors.Message(err)},
	})
}

// emit sends a server-initiated event directly to one client.
func (h *Handler) emit(client *room.Client, eventName string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to marshal event payload",
			slog.String("event", eventName),
			slog.String("error", err.Error()),
		)
		return
	}

	h.send(client, Envelope{Event: eventName, Data: raw})
}

func (h *Handler) send(client *room.Client, frame Envelope) {
	raw, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("failed to marshal frame", slog.String("error", err.Error()))
		return
	}
	if !client.Send(raw) {
		h.logger.Warn("dropping frame for slow client", slog.String("client_id", client.ID))
	}
}
