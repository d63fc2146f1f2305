package zonesync

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/iudanet/zonesync/internal/models"
)

// ApplyZoneChanges issues a local edit for the zone. With optimistic updates
// enabled the edit becomes visible immediately and the zone moves to syncing;
// otherwise it only becomes visible once acknowledged. The call returns after
// the local mutation, never after network confirmation.
func (e *Engine) ApplyZoneChanges(ctx context.Context, zoneID string, cs models.ChangeSet) (models.ZoneChangeRecord, error) {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	if e.closed {
		return models.ZoneChangeRecord{}, ErrEngineClosed
	}

	zr, ok := e.zones[zoneID]
	if !ok {
		e.logger.Warn("Change for unknown zone rejected", "zone_id", zoneID)
		return models.ZoneChangeRecord{}, fmt.Errorf("apply changes to %q: %w", zoneID, ErrUnknownZone)
	}

	rec := models.NewLocalRecord(zoneID, cs, e.clock.Now().UnixMilli())
	if rec.IsEmpty() {
		return models.ZoneChangeRecord{}, fmt.Errorf("%w: nothing to change", models.ErrInvalidChange)
	}
	if err := rec.Validate(); err != nil {
		return models.ZoneChangeRecord{}, err
	}

	pc := &pendingChange{
		record:     rec,
		cfg:        e.cfg,
		optimistic: e.cfg.EnableOptimisticUpdates,
	}
	zr.queue = append(zr.queue, pc)

	// Без связи не отправляем: запись уйдет при переподключении
	if e.online {
		e.transmit(ctx, zr, pc)
	}

	e.trace("Local change issued",
		"zone_id", zoneID,
		"change_id", rec.ChangeID,
		"optimistic", pc.optimistic,
		"pending", zr.pendingCount())

	e.settle(zr)
	e.emitState(zr)

	return rec.Clone(), nil
}

// HandleAck processes the server acknowledgement of a local change.
// Acks may arrive in any order; duplicates and unknown ids are ignored.
func (e *Engine) HandleAck(zoneID, changeID string) {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	if e.closed {
		return
	}

	zr, ok := e.zones[zoneID]
	if !ok {
		e.trace("Ack for unknown zone ignored", "zone_id", zoneID, "change_id", changeID)
		return
	}

	if !e.ackLocked(zr, changeID) {
		e.trace("Duplicate or unknown ack ignored", "zone_id", zoneID, "change_id", changeID)
		return
	}

	e.settle(zr)
	e.emitState(zr)
}

// ackLocked marks the change acknowledged and folds what it can.
// Returns false when there is nothing to acknowledge.
func (e *Engine) ackLocked(zr *zoneRecord, changeID string) bool {
	pc := zr.find(changeID)
	if pc == nil || pc.acked {
		return false
	}

	now := e.clock.Now()
	pc.stopTimer()
	pc.acked = true
	pc.expired = false
	if !pc.sentAt.IsZero() {
		e.latency.Add(now.Sub(pc.sentAt))
	}
	zr.lastSyncTime = now

	// Сервер применил правку после отложенных записей: они ложатся
	// в подтвержденное состояние под нее
	if len(zr.deferred) > 0 {
		e.trace("Deferred server updates folded under acknowledged change",
			"zone_id", zr.id,
			"change_id", changeID,
			"deferred", len(zr.deferred))
		zr.foldDeferred()
	}

	zr.popAcked()

	e.trace("Change acknowledged",
		"zone_id", zr.id,
		"change_id", changeID,
		"rtt_ms", now.Sub(pc.sentAt).Milliseconds(),
		"pending", zr.pendingCount())

	return true
}

// HandleConnected is called by the transport when the link comes up. Every
// unacknowledged change is retransmitted with its original change id, zone by
// zone, in issue order.
func (e *Engine) HandleConnected() {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	if e.closed {
		return
	}

	e.online = true
	e.logger.Info("Transport connected, replaying pending changes")

	for _, id := range e.sortedZoneIDs() {
		zr := e.zones[id]
		replayed := 0
		for _, pc := range zr.queue {
			if pc.acked {
				continue
			}
			pc.retries = 0
			pc.expired = false
			e.transmit(e.ctx, zr, pc)
			replayed++
		}
		if replayed > 0 {
			e.trace("Replayed pending changes", "zone_id", id, "count", replayed)
		}
		if e.settle(zr) || replayed > 0 {
			e.emitState(zr)
		}
	}
}

// HandleDisconnected is called by the transport when the link drops.
// Deadlines are suspended until the link returns.
func (e *Engine) HandleDisconnected() {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	if e.closed {
		return
	}

	e.online = false
	e.logger.Warn("Transport disconnected")

	for _, id := range e.sortedZoneIDs() {
		zr := e.zones[id]
		for _, pc := range zr.queue {
			pc.stopTimer()
		}
		if e.settle(zr) {
			e.emitState(zr)
		}
	}
}

// transmit sends the record and arms its acknowledgement deadline using the
// config snapshot taken when the change was issued.
func (e *Engine) transmit(ctx context.Context, zr *zoneRecord, pc *pendingChange) {
	pc.sentAt = e.clock.Now()
	if err := e.transport.Send(ctx, pc.record.Clone()); err != nil {
		e.logger.Warn("Failed to send change",
			"zone_id", zr.id,
			"change_id", pc.record.ChangeID,
			"error", err)
	}

	pc.stopTimer()
	gen := pc.gen
	zoneID, changeID := zr.id, pc.record.ChangeID
	pc.timer = e.clock.AfterFunc(pc.cfg.AckTimeout, func() {
		e.handleAckTimeout(zoneID, changeID, gen)
	})
}

// handleAckTimeout retries once while the transport is up, otherwise parks the
// change and marks the zone disconnected until the link recovers.
func (e *Engine) handleAckTimeout(zoneID, changeID string, gen uint64) {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	if e.closed {
		return
	}

	zr, ok := e.zones[zoneID]
	if !ok {
		return
	}
	pc := zr.find(changeID)
	if pc == nil || pc.acked || pc.gen != gen {
		return
	}
	pc.timer = nil

	connected := e.transport.Connected()
	if connected && pc.retries < pc.cfg.MaxRetries {
		pc.retries++
		e.logger.Log(context.Background(), e.traceLevel(), "Retransmitting unacknowledged change",
			"zone_id", zoneID,
			"change_id", changeID,
			"attempt", pc.retries,
			"error", ErrAckTimeout)
		e.transmit(e.ctx, zr, pc)
		return
	}

	pc.expired = true
	e.logger.Warn("Change unacknowledged, zone marked disconnected",
		slog.String("zone_id", zoneID),
		slog.String("change_id", changeID),
		slog.Bool("transport_connected", connected),
		slog.Any("error", ErrAckTimeout))

	if e.settle(zr) {
		e.emitState(zr)
	}
}

func (e *Engine) sortedZoneIDs() []string {
	ids := make([]string, 0, len(e.zones))
	for id := range e.zones {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
