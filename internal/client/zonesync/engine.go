// Package zonesync keeps a client's local copy of shared zones usable
// immediately (optimistic edits) while converging on the server-authoritative
// copy. It owns per-zone sync state, the change queue with acknowledgement
// deadlines, conflict resolution and the latency estimate.
package zonesync

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/iudanet/zonesync/internal/config"
	"github.com/iudanet/zonesync/internal/latency"
	"github.com/iudanet/zonesync/internal/models"
)

// StateChangeFunc receives a snapshot after every zone state transition.
type StateChangeFunc func(zoneID string, state models.ZoneSyncState)

// ConflictFunc receives every detected conflict exactly once.
type ConflictFunc func(conflict models.ZoneConflict)

// event is a queued notification. Exactly one of state and conflict is set.
type event struct {
	state    *models.ZoneSyncState
	conflict *models.ZoneConflict
	zoneID   string
}

// Engine is the zone synchronization facade.
//
// All operations, transport callbacks and timer expirations are serialized by
// a single lock, which gives the engine one logical thread of control.
// Listeners are invoked in order, outside the lock, by whichever goroutine is
// draining the notification queue; they may call back into the engine but
// must not block.
type Engine struct {
	ctx       context.Context
	transport Transport
	clock     Clock
	logger    *slog.Logger
	latency   *latency.Estimator
	cancel    context.CancelFunc

	zones     map[string]*zoneRecord
	conflicts []models.ZoneConflict // кольцевой журнал последних конфликтов
	events    []event

	stateListeners    map[int]StateChangeFunc
	conflictListeners map[int]ConflictFunc

	cfg            config.ZoneSyncConfig
	nextListenerID int
	mu             sync.Mutex
	online         bool
	dispatching    bool
	closed         bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. Nil keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine. The partial config is layered over the defaults.
func New(transport Transport, u config.Update, opts ...Option) (*Engine, error) {
	cfg, err := config.New(u)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		ctx:               ctx,
		cancel:            cancel,
		transport:         transport,
		clock:             RealClock(),
		logger:            slog.Default(),
		cfg:               cfg,
		latency:           latency.NewEstimator(cfg.LatencyWindow, cfg.LatencyAlpha),
		zones:             make(map[string]*zoneRecord),
		stateListeners:    make(map[int]StateChangeFunc),
		conflictListeners: make(map[int]ConflictFunc),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.online = transport.Connected()

	return e, nil
}

// InitializeZone registers the zone as synced with an empty queue. Calling it
// again for a registered zone is a no-op: the existing queue and counters are
// kept and no entry is duplicated.
func (e *Engine) InitializeZone(zone models.Zone) {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	if e.closed {
		return
	}
	if _, ok := e.zones[zone.ID]; ok {
		return
	}
	e.initializeLocked(zone)
}

func (e *Engine) initializeLocked(zone models.Zone) {
	zr := newZoneRecord(zone, e.clock.Now())
	e.zones[zone.ID] = zr
	e.settle(zr)

	e.trace("Zone initialized", "zone_id", zone.ID, "status", zr.status)
	e.emitState(zr)
}

// RemoveZone tears the zone down: timers are cancelled, the queue is dropped
// and no further notifications are delivered for it.
func (e *Engine) RemoveZone(zoneID string) {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	zr, ok := e.zones[zoneID]
	if !ok {
		return
	}
	for _, pc := range zr.queue {
		pc.stopTimer()
	}
	delete(e.zones, zoneID)

	e.events = slices.DeleteFunc(e.events, func(ev event) bool {
		return ev.zoneID == zoneID
	})

	e.trace("Zone removed", "zone_id", zoneID)
}

// Close cancels every timer and disposes of all zones. Later calls are no-ops
// or return ErrEngineClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	for _, zr := range e.zones {
		for _, pc := range zr.queue {
			pc.stopTimer()
		}
	}
	clear(e.zones)
	e.events = nil
	e.cancel()
}

// SyncState returns a snapshot of the zone state.
func (e *Engine) SyncState(zoneID string) (models.ZoneSyncState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	zr, ok := e.zones[zoneID]
	if !ok {
		return models.ZoneSyncState{}, false
	}
	return zr.snapshot(), true
}

// SyncStatus returns the zone status, or false for unknown zones.
func (e *Engine) SyncStatus(zoneID string) (models.SyncStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	zr, ok := e.zones[zoneID]
	if !ok {
		return "", false
	}
	return zr.status, true
}

// PendingChangesCount returns the number of unacknowledged optimistic changes.
// Unknown zones report zero.
func (e *Engine) PendingChangesCount(zoneID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	zr, ok := e.zones[zoneID]
	if !ok {
		return 0
	}
	return zr.pendingCount()
}

// ZoneIDs returns the registered zone ids in sorted order.
func (e *Engine) ZoneIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sortedZoneIDs()
}

// LatencyCompensation returns the smoothed change-to-ack round trip.
func (e *Engine) LatencyCompensation() time.Duration {
	return e.latency.Compensation()
}

// Conflicts returns the retained conflict log, oldest first.
func (e *Engine) Conflicts() []models.ZoneConflict {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.ZoneConflict, 0, len(e.conflicts))
	for _, c := range e.conflicts {
		out = append(out, c.Clone())
	}
	return out
}

// ClearConflictHistory empties the conflict log. Per-zone conflict counters
// are not touched.
func (e *Engine) ClearConflictHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.conflicts = nil
}

// Config returns the current configuration.
func (e *Engine) Config() config.ZoneSyncConfig {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cfg
}

// UpdateConfig merges the partial config into the current one. Changes
// already in flight keep the snapshot they were issued under; the conflict
// mode is read when a conflict is resolved.
func (e *Engine) UpdateConfig(u config.Update) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.cfg.Merge(u)
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.latency.Resize(cfg.LatencyWindow, cfg.LatencyAlpha)
	if over := len(e.conflicts) - cfg.ConflictLogSize; over > 0 {
		e.conflicts = slices.Delete(e.conflicts, 0, over)
	}

	e.logger.Info("Config updated",
		"conflict_resolution_mode", cfg.ConflictResolutionMode,
		"optimistic", cfg.EnableOptimisticUpdates,
		"ack_timeout", cfg.AckTimeout,
		"debug", cfg.Debug)

	return nil
}

// OnStateChange subscribes to state transitions. The returned func unsubscribes.
func (e *Engine) OnStateChange(fn StateChangeFunc) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextListenerID
	e.nextListenerID++
	e.stateListeners[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.stateListeners, id)
	}
}

// OnConflict subscribes to conflict notifications. The returned func unsubscribes.
func (e *Engine) OnConflict(fn ConflictFunc) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextListenerID
	e.nextListenerID++
	e.conflictListeners[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.conflictListeners, id)
	}
}

// settle recomputes the zone status from the queue and link state and
// reports whether it changed.
func (e *Engine) settle(zr *zoneRecord) bool {
	status := zr.settledStatus(e.online)
	if status == zr.status {
		return false
	}
	e.trace("Zone status changed", "zone_id", zr.id, "from", zr.status, "to", status)
	zr.status = status
	return true
}

func (e *Engine) recordConflict(c models.ZoneConflict) {
	e.conflicts = append(e.conflicts, c)
	if over := len(e.conflicts) - e.cfg.ConflictLogSize; over > 0 {
		e.conflicts = slices.Delete(e.conflicts, 0, over)
	}
}

func (e *Engine) emitState(zr *zoneRecord) {
	st := zr.snapshot()
	e.events = append(e.events, event{zoneID: zr.id, state: &st})
}

func (e *Engine) emitConflict(c models.ZoneConflict) {
	cc := c.Clone()
	e.events = append(e.events, event{zoneID: c.ZoneID, conflict: &cc})
}

// unlockAndDispatch releases the lock and delivers queued notifications.
// Only one goroutine drains at a time, so listeners observe events in the
// order they were produced even when they re-enter the engine.
func (e *Engine) unlockAndDispatch() {
	if e.dispatching {
		e.mu.Unlock()
		return
	}
	e.dispatching = true

	for len(e.events) > 0 {
		ev := e.events[0]
		e.events = e.events[1:]

		var stateFns []StateChangeFunc
		var conflictFns []ConflictFunc
		if ev.state != nil {
			stateFns = listenersInOrder(e.stateListeners)
		} else {
			conflictFns = listenersInOrder(e.conflictListeners)
		}

		e.mu.Unlock()
		e.deliver(ev, stateFns, conflictFns)
		e.mu.Lock()
	}

	e.dispatching = false
	e.mu.Unlock()
}

func (e *Engine) deliver(ev event, stateFns []StateChangeFunc, conflictFns []ConflictFunc) {
	for _, fn := range stateFns {
		e.callListener(ev.zoneID, func() { fn(ev.zoneID, ev.state.Clone()) })
	}
	for _, fn := range conflictFns {
		e.callListener(ev.zoneID, func() { fn(ev.conflict.Clone()) })
	}
}

// callListener runs one listener; its panic is logged and does not reach the
// other listeners of the event.
func (e *Engine) callListener(zoneID string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Listener panicked", "zone_id", zoneID, "panic", r)
		}
	}()
	call()
}

func listenersInOrder[F any](m map[int]F) []F {
	if len(m) == 0 {
		return nil
	}
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]F, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func (e *Engine) traceLevel() slog.Level {
	if e.cfg.Debug {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// trace logs engine diagnostics; Debug in the config promotes them to Info.
func (e *Engine) trace(msg string, args ...any) {
	e.logger.Log(context.Background(), e.traceLevel(), msg, args...)
}
