// Package ws carries zone changes between the sync engine and the zone
// authority over a single websocket connection.
package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/zonesync/internal/client/zonesync"
	"github.com/iudanet/zonesync/internal/models"
	"github.com/iudanet/zonesync/pkg/api"
)

var (
	// ErrNotConnected is returned by Send while the link is down
	ErrNotConnected = errors.New("websocket not connected")
	// ErrSendBufferFull is returned by Send when the outbound queue is full
	ErrSendBufferFull = errors.New("send buffer full")
)

const (
	defaultSendBuffer   = 256
	defaultPingInterval = 25 * time.Second
	defaultPongWait     = 60 * time.Second
	defaultWriteWait    = 10 * time.Second
	defaultMinBackoff   = 500 * time.Millisecond
	defaultMaxBackoff   = 30 * time.Second
	maxMessageSize      = 1 << 20
)

var _ zonesync.Transport = (*Client)(nil)

// Client is a reconnecting websocket transport.
type Client struct {
	logger       *slog.Logger
	dialer       *websocket.Dialer
	outbound     chan []byte
	url          string
	clientID     string
	pingInterval time.Duration
	pongWait     time.Duration
	writeWait    time.Duration
	minBackoff   time.Duration
	maxBackoff   time.Duration
	sendBuffer   int
	connected    atomic.Bool
}

// Option customizes a Client.
type Option func(*Client)

// WithClientID sets the id announced in the hello message.
func WithClientID(id string) Option {
	return func(c *Client) { c.clientID = id }
}

// WithBackoff sets the reconnect delay bounds.
func WithBackoff(minDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.minBackoff = minDelay
		c.maxBackoff = maxDelay
	}
}

// WithPingInterval sets how often pings are sent. The pong wait is derived
// from it.
func WithPingInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pingInterval = d
		c.pongWait = d * 12 / 5
	}
}

// WithSendBuffer sets the outbound queue capacity.
func WithSendBuffer(n int) Option {
	return func(c *Client) { c.sendBuffer = n }
}

// NewClient создает websocket транспорт для адреса вида ws://host:port/ws
func NewClient(url string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		url:          url,
		logger:       logger,
		dialer:       websocket.DefaultDialer,
		clientID:     models.NewChangeID(),
		pingInterval: defaultPingInterval,
		pongWait:     defaultPongWait,
		writeWait:    defaultWriteWait,
		minBackoff:   defaultMinBackoff,
		maxBackoff:   defaultMaxBackoff,
		sendBuffer:   defaultSendBuffer,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.outbound = make(chan []byte, c.sendBuffer)
	return c
}

// ClientID returns the id announced to the server.
func (c *Client) ClientID() string {
	return c.clientID
}

// Connected reports whether the link is up and the zone snapshot was received.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Send encodes the change and queues it for the writer. It never blocks.
func (c *Client) Send(ctx context.Context, record models.ZoneChangeRecord) error {
	if !c.connected.Load() {
		return ErrNotConnected
	}

	frame, err := api.Encode(api.TypeChange, api.ChangeFromModel(record))
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}

	select {
	case c.outbound <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrSendBufferFull
	}
}

// Run keeps the connection up until ctx is cancelled, reconnecting with
// capped exponential backoff. Inbound traffic is dispatched to h from the
// calling goroutine.
func (c *Client) Run(ctx context.Context, h Handler) error {
	backoff := c.minBackoff

	for {
		established, err := c.session(ctx, h)
		if ctx.Err() != nil {
			return nil
		}
		if established {
			backoff = c.minBackoff
		}

		c.logger.Warn("Websocket session ended, reconnecting",
			"url", c.url,
			"error", err,
			"backoff", backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

// session runs one connection. Returns true if the zone snapshot was
// received, i.e. the engine saw the link as up.
func (c *Client) session(ctx context.Context, h Handler) (bool, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	hello, err := api.Encode(api.TypeHello, api.Hello{ClientID: c.clientID})
	if err != nil {
		return false, err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		return false, fmt.Errorf("write hello: %w", err)
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(c.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	sessCtx, cancel := context.WithCancel(ctx)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(sessCtx, conn)
	}()

	ready := false
	defer func() {
		c.connected.Store(false)
		cancel()
		<-writerDone
		c.drainOutbound()
		if ready {
			h.HandleDisconnected()
		}
	}()

	c.logger.Info("Websocket connected", "url", c.url, "client_id", c.clientID)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return ready, fmt.Errorf("read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(c.pongWait))

		isSnapshot := c.dispatch(h, msg)

		// Снимок зон сверяется до повторной отправки очереди,
		// иначе ответ на переотправленные изменения гонится со снимком
		if isSnapshot && !ready {
			ready = true
			c.connected.Store(true)
			h.HandleConnected()
		}
	}
}

func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.writeWait))
			_ = conn.Close()
			return

		case frame := <-c.outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn("Websocket write failed", "error", err)
				_ = conn.Close()
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// drainOutbound drops frames queued for a dead connection. The engine
// replays every unacknowledged change on reconnect.
func (c *Client) drainOutbound() {
	for {
		select {
		case <-c.outbound:
		default:
			return
		}
	}
}

// dispatch routes one inbound frame. Returns true for a zone snapshot.
func (c *Client) dispatch(h Handler, msg []byte) bool {
	env, err := api.DecodeEnvelope(msg)
	if err != nil {
		c.logger.Warn("Dropping malformed frame", "error", err)
		return false
	}

	switch env.Type {
	case api.TypeZones:
		list, err := api.DecodePayload[api.ZoneList](env)
		if err != nil {
			c.logger.Warn("Dropping malformed zone list", "error", err)
			return false
		}
		for _, z := range list.Zones {
			h.ReconcileZone(z.ToModel())
		}
		return true

	case api.TypeAck:
		ack, err := api.DecodePayload[api.Ack](env)
		if err != nil {
			c.logger.Warn("Dropping malformed ack", "error", err)
			return false
		}
		h.HandleAck(ack.ZoneID, ack.ChangeID)

	case api.TypeUpdate:
		change, err := api.DecodePayload[api.ZoneChange](env)
		if err != nil {
			c.logger.Warn("Dropping malformed update", "error", err)
			return false
		}
		if err := h.HandleServerUpdate(change.ZoneID, change.ToModel(models.OriginServer)); err != nil {
			c.logger.Warn("Server update rejected",
				"zone_id", change.ZoneID,
				"change_id", change.ChangeID,
				"error", err)
		}

	case api.TypeError:
		e, _ := api.DecodePayload[api.Error](env)
		c.logger.Warn("Server reported error",
			"message", e.Message,
			"zone_id", e.ZoneID,
			"change_id", e.ChangeID)

	default:
		c.logger.Debug("Ignoring unknown message type", "type", env.Type)
	}

	return false
}
