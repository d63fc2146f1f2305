package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iudanet/zonesync/internal/client/transport/ws"
	"github.com/iudanet/zonesync/internal/client/zonesync"
	"github.com/iudanet/zonesync/internal/models"
)

// trackingHandler passes transport callbacks to the engine and lets a
// command wait for link and acknowledgement events.
type trackingHandler struct {
	*zonesync.Engine
	connected chan struct{}
	acks      chan string
}

func (h *trackingHandler) HandleConnected() {
	h.Engine.HandleConnected()
	select {
	case h.connected <- struct{}{}:
	default:
	}
}

func (h *trackingHandler) HandleAck(zoneID, changeID string) {
	h.Engine.HandleAck(zoneID, changeID)
	select {
	case h.acks <- changeID:
	default:
	}
}

// session is one engine bound to one websocket client.
type session struct {
	runCtx    context.Context
	engine    *zonesync.Engine
	transport *ws.Client
	handler   *trackingHandler
	done      chan error
	runErr    error
	cancel    context.CancelFunc
	stop      sync.Once
}

// newSession wires an engine to a websocket client. Nothing touches the
// network until start, so listeners can subscribe first.
func (c *Cli) newSession(ctx context.Context) (*session, error) {
	url, err := c.apiClient.WebsocketURL()
	if err != nil {
		return nil, err
	}

	opts := []ws.Option{}
	if c.clientID != "" {
		opts = append(opts, ws.WithClientID(c.clientID))
	}
	transport := ws.NewClient(url, c.logger, opts...)

	engine, err := zonesync.New(transport, c.engineCfg, zonesync.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &session{
		runCtx:    runCtx,
		engine:    engine,
		transport: transport,
		handler: &trackingHandler{
			Engine:    engine,
			connected: make(chan struct{}, 1),
			acks:      make(chan string, 16),
		},
		done:   make(chan error, 1),
		cancel: cancel,
	}

	return s, nil
}

func (s *session) start() {
	go func() {
		s.done <- s.transport.Run(s.runCtx, s.handler)
	}()
}

// waitConnected blocks until the first zone list has been applied.
func (s *session) waitConnected(ctx context.Context) error {
	select {
	case <-s.handler.connected:
		return nil
	case err := <-s.done:
		s.done <- err
		if err == nil {
			err = errors.New("transport stopped")
		}
		return fmt.Errorf("failed to connect: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("failed to connect: %w", ctx.Err())
	}
}

// stopTransport cancels the transport and waits for Run to return. The
// engine stays queryable. Safe to call more than once.
func (s *session) stopTransport() error {
	s.stop.Do(func() {
		s.cancel()
		s.runErr = <-s.done
	})
	return s.runErr
}

// close stops the transport and disposes of the engine.
func (s *session) close() error {
	err := s.stopTransport()
	s.engine.Close()
	return err
}

// zoneLabel formats a zone for humans.
func zoneLabel(z models.Zone) string {
	if name := z.Name(); name != "" {
		return fmt.Sprintf("%s (%s)", z.ID, name)
	}
	return z.ID
}
