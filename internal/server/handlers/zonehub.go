package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/zonesync/internal/models"
	"github.com/iudanet/zonesync/internal/server/storage"
	"github.com/iudanet/zonesync/internal/server/version"
	"github.com/iudanet/zonesync/pkg/api"
)

const (
	hubSendBuffer   = 64
	hubPingInterval = 25 * time.Second
	hubPongWait     = 60 * time.Second
	hubWriteWait    = 10 * time.Second
	hubReadLimit    = 1 << 20
)

// ZoneStorage определяет интерфейс хранилища, нужный хабу
type ZoneStorage interface {
	ListZones(ctx context.Context) ([]models.Zone, error)
	ApplyChange(ctx context.Context, change models.ZoneChangeRecord) (bool, int64, error)
}

// ZoneHub is the authoritative websocket endpoint. It applies client changes
// in arrival order and broadcasts every applied change as an update to all
// clients. The sender gets its update right before the ack.
type ZoneHub struct {
	logger   *slog.Logger
	storage  ZoneStorage
	clock    *version.Clock
	clients  map[*hubClient]struct{}
	upgrader websocket.Upgrader
	mu       sync.Mutex // сериализует применение изменений и рассылку
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

// NewZoneHub создает хаб. Версии продолжаются с текущего значения clock.
func NewZoneHub(logger *slog.Logger, storage ZoneStorage, clock *version.Clock) *ZoneHub {
	return &ZoneHub{
		logger:  logger,
		storage: storage,
		clock:   clock,
		clients: make(map[*hubClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ClientCount returns the number of connected clients.
func (h *ZoneHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS обрабатывает GET /ws
func (h *ZoneHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	c := &hubClient{conn: conn, send: make(chan []byte, hubSendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(c)
	}()

	h.readPump(r.Context(), c)

	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	<-writerDone
	h.logger.Info("Client disconnected", "client_id", c.id)
}

func (h *ZoneHub) readPump(ctx context.Context, c *hubClient) {
	c.conn.SetReadLimit(hubReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(hubPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(hubPongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("Unexpected websocket close", "client_id", c.id, "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(hubPongWait))

		env, err := api.DecodeEnvelope(msg)
		if err != nil {
			h.replyError(c, api.Error{Message: err.Error()})
			continue
		}

		switch env.Type {
		case api.TypeHello:
			h.handleHello(ctx, c, env)
		case api.TypeChange:
			h.handleChange(ctx, c, env)
		default:
			h.replyError(c, api.Error{Message: "unknown message type " + env.Type})
		}
	}
}

func (h *ZoneHub) handleHello(ctx context.Context, c *hubClient, env api.Envelope) {
	hello, err := api.DecodePayload[api.Hello](env)
	if err != nil {
		h.replyError(c, api.Error{Message: err.Error()})
		return
	}

	// Снимок и регистрация под одной блокировкой: клиент не пропустит
	// рассылку между снимком и первым update
	h.mu.Lock()
	defer h.mu.Unlock()

	c.id = hello.ClientID
	zones, err := h.storage.ListZones(ctx)
	if err != nil {
		h.logger.Error("Failed to list zones", "error", err)
		h.replyErrorLocked(c, api.Error{Message: "failed to list zones"})
		return
	}

	list := api.ZoneList{Zones: make([]api.Zone, 0, len(zones))}
	for _, z := range zones {
		list.Zones = append(list.Zones, api.ZoneFromModel(z))
	}
	h.sendLocked(c, api.TypeZones, list)

	h.logger.Info("Client connected", "client_id", c.id, "zones", len(zones))
}

func (h *ZoneHub) handleChange(ctx context.Context, c *hubClient, env api.Envelope) {
	wire, err := api.DecodePayload[api.ZoneChange](env)
	if err != nil {
		h.replyError(c, api.Error{Message: err.Error()})
		return
	}

	change := wire.ToModel(models.OriginServer)
	if change.ChangeID == "" {
		h.replyError(c, api.Error{Message: "missing change id", ZoneID: change.ZoneID})
		return
	}
	if err := change.Validate(); err != nil {
		h.replyError(c, api.Error{Message: err.Error(), ZoneID: change.ZoneID, ChangeID: change.ChangeID})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	change.Timestamp = h.clock.Next()
	applied, v, err := h.storage.ApplyChange(ctx, change)
	if err != nil {
		msg := "failed to apply change"
		if errors.Is(err, storage.ErrZoneNotFound) || errors.Is(err, storage.ErrChangeConflict) {
			msg = err.Error()
		} else {
			h.logger.Error("Failed to apply change", "error", err, "change_id", change.ChangeID)
		}
		h.replyErrorLocked(c, api.Error{Message: msg, ZoneID: change.ZoneID, ChangeID: change.ChangeID})
		return
	}

	ack := api.Ack{ZoneID: change.ZoneID, ChangeID: change.ChangeID, Version: v}

	// Повтор уже примененного изменения только переподтверждается
	if !applied {
		h.sendLocked(c, api.TypeAck, ack)
		h.logger.Debug("Duplicate change re-acknowledged",
			"client_id", c.id,
			"change_id", change.ChangeID,
			"version", v)
		return
	}

	// Отправитель получает свой update раньше ack
	change.Timestamp = v
	update := api.ChangeFromModel(change)
	h.sendLocked(c, api.TypeUpdate, update)
	h.sendLocked(c, api.TypeAck, ack)
	for other := range h.clients {
		if other != c && other.id != "" {
			h.sendLocked(other, api.TypeUpdate, update)
		}
	}

	h.logger.Info("Change applied",
		"client_id", c.id,
		"zone_id", change.ZoneID,
		"change_id", change.ChangeID,
		"version", v,
		"recipients", len(h.clients))
}

func (h *ZoneHub) replyError(c *hubClient, e api.Error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replyErrorLocked(c, e)
}

func (h *ZoneHub) replyErrorLocked(c *hubClient, e api.Error) {
	h.logger.Warn("Rejecting client message",
		"client_id", c.id,
		"zone_id", e.ZoneID,
		"change_id", e.ChangeID,
		"reason", e.Message)
	h.sendLocked(c, api.TypeError, e)
}

// sendLocked queues a frame without blocking. A client whose buffer is full
// is cut off and will resync on reconnect.
func (h *ZoneHub) sendLocked(c *hubClient, t string, payload any) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	frame, err := api.Encode(t, payload)
	if err != nil {
		h.logger.Error("Failed to encode message", "type", t, "error", err)
		return
	}

	select {
	case c.send <- frame:
	default:
		h.logger.Warn("Client too slow, dropping connection", "client_id", c.id)
		_ = c.conn.Close()
	}
}

func (h *ZoneHub) writePump(c *hubClient) {
	ticker := time.NewTicker(hubPingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
