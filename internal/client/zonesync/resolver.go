package zonesync

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/iudanet/zonesync/internal/config"
	"github.com/iudanet/zonesync/internal/models"
)

// HandleServerUpdate applies an authoritative server record for the zone.
//
// Records older than the last applied server update are dropped silently, so
// applied server versions never go backwards. If no local change is in flight
// the record is applied directly; otherwise the race is resolved with the
// conflict mode configured at the time of arrival.
func (e *Engine) HandleServerUpdate(zoneID string, rec models.ZoneChangeRecord) error {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	if e.closed {
		return ErrEngineClosed
	}

	zr, ok := e.zones[zoneID]
	if !ok {
		e.logger.Warn("Server update for unknown zone", "zone_id", zoneID, "change_id", rec.ChangeID)
		return fmt.Errorf("server update for %q: %w", zoneID, ErrUnknownZone)
	}

	rec = rec.Clone()
	rec.Origin = models.OriginServer
	if rec.ZoneID == "" {
		rec.ZoneID = zoneID
	}
	if rec.ZoneID != zoneID {
		return fmt.Errorf("%w: record for zone %q delivered to %q", models.ErrInvalidChange, rec.ZoneID, zoneID)
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	e.applyServerRecordLocked(zr, rec)
	return nil
}

// ReconcileZone brings a known zone in line with a full server snapshot, for
// example after a reconnect. Differences are turned into a server record and
// go through the normal conflict path. Unknown zones are initialized.
func (e *Engine) ReconcileZone(zone models.Zone) {
	e.mu.Lock()
	defer e.unlockAndDispatch()

	if e.closed {
		return
	}

	zr, ok := e.zones[zone.ID]
	if !ok {
		e.initializeLocked(zone)
		return
	}

	rec := diffZones(zr.confirmed, zone.Clone())
	rec.ZoneID = zone.ID
	rec.Timestamp = zone.UpdatedAt
	rec.Origin = models.OriginServer
	if rec.IsEmpty() && zone.UpdatedAt <= zr.lastServerUpdate {
		return
	}

	e.applyServerRecordLocked(zr, rec)
}

func (e *Engine) applyServerRecordLocked(zr *zoneRecord, rec models.ZoneChangeRecord) {
	if rec.Timestamp < zr.lastServerUpdate {
		e.trace("Stale server update dropped",
			"zone_id", zr.id,
			"change_id", rec.ChangeID,
			"timestamp", rec.Timestamp,
			"last_server_update", zr.lastServerUpdate,
			"error", ErrStaleUpdate)
		return
	}
	zr.lastServerUpdate = rec.Timestamp

	// Сервер разослал нашу же правку: это подтверждение, а не гонка.
	// Вытесненная локально правка тоже могла быть принята сервером.
	if rec.ChangeID != "" && (e.ackLocked(zr, rec.ChangeID) || zr.forgetSuperseded(rec.ChangeID)) {
		e.applyDirect(zr, rec)
		return
	}

	if zr.pendingCount() == 0 {
		e.applyDirect(zr, rec)
		return
	}

	e.resolveConflict(zr, rec)
}

// applyDirect folds a server record into the confirmed state when no local
// change races it.
func (e *Engine) applyDirect(zr *zoneRecord, rec models.ZoneChangeRecord) {
	zr.foldDeferred()
	zr.absorbAcked()
	zr.confirmed = zr.confirmed.Apply(rec)
	zr.lastSyncTime = e.clock.Now()

	e.trace("Server update applied", "zone_id", zr.id, "change_id", rec.ChangeID, "timestamp", rec.Timestamp)

	e.settle(zr)
	e.emitState(zr)
}

// resolveConflict applies the configured policy to a server record that
// arrived while local changes were still unacknowledged.
func (e *Engine) resolveConflict(zr *zoneRecord, rec models.ZoneChangeRecord) {
	var local models.ZoneChangeRecord
	for _, pc := range zr.queue {
		if pc.racing() {
			local = pc.record.Clone()
			break
		}
	}

	now := e.clock.Now()
	mode := e.cfg.ConflictResolutionMode
	var resolution models.Resolution

	switch mode {
	case config.ConflictClientWins:
		resolution = models.ResolutionClientWins
		// Откладываем серверную запись, локальная очередь продолжает отправку.
		// Уже подтвержденные правки сервер применил раньше нее.
		zr.absorbAcked()
		zr.deferred = append(zr.deferred, rec.Clone())

	case config.ConflictMerge:
		resolution = models.ResolutionMerged
		overlap := e.mergeLocked(zr, rec)
		zr.foldDeferred()
		zr.absorbAcked()
		zr.confirmed = zr.confirmed.Apply(rec)
		zr.lastSyncTime = now
		e.trace("Conflict merged", "zone_id", zr.id, "overlapping_keys", len(overlap))

	default:
		resolution = models.ResolutionServerWins
		dropped := zr.dropRacing()
		zr.supersede(dropped)
		zr.foldDeferred()
		zr.absorbAcked()
		zr.confirmed = zr.confirmed.Apply(rec)
		zr.lastSyncTime = now
		e.trace("Local changes superseded by server", "zone_id", zr.id, "dropped", len(dropped))
	}

	zr.conflictCount++
	conflict := models.ZoneConflict{
		ZoneID:       zr.id,
		LocalChange:  local,
		ServerChange: rec.Clone(),
		Resolution:   resolution,
		Timestamp:    now,
	}
	e.recordConflict(conflict)

	e.logger.Info("Zone conflict resolved",
		"zone_id", zr.id,
		"resolution", resolution,
		"local_change_id", local.ChangeID,
		"server_change_id", rec.ChangeID,
		"conflict_count", zr.conflictCount)

	// conflict держится ровно один цикл уведомлений
	zr.status = models.SyncStatusConflict
	e.emitState(zr)
	e.emitConflict(conflict)
	e.settle(zr)
	e.emitState(zr)
}

// mergeLocked strips keys touched by the server record from every racing
// local change. Local-only keys survive, overlapping keys go to the server.
// Changes left empty are dropped from the queue and remembered as superseded.
// Returns the overlapping keys.
func (e *Engine) mergeLocked(zr *zoneRecord, rec models.ZoneChangeRecord) map[string]struct{} {
	serverKeys := rec.Keys()
	overlap := make(map[string]struct{})

	for _, pc := range zr.queue {
		if !pc.racing() {
			continue
		}
		for k := range pc.record.Keys() {
			if _, ok := serverKeys[k]; ok {
				overlap[k] = struct{}{}
			}
		}
	}
	if len(overlap) == 0 {
		return overlap
	}

	kept := zr.queue[:0]
	for _, pc := range zr.queue {
		if pc.racing() {
			pc.record = pc.record.Without(overlap)
			if pc.record.IsEmpty() {
				pc.stopTimer()
				zr.supersede([]models.ZoneChangeRecord{pc.record})
				continue
			}
		}
		kept = append(kept, pc)
	}
	clear(zr.queue[len(kept):])
	zr.queue = kept

	return overlap
}

// diffZones describes how to get from have to want as a change record.
func diffZones(have, want models.Zone) models.ZoneChangeRecord {
	var rec models.ZoneChangeRecord

	for _, c := range want.Cells {
		if !have.HasCell(c) {
			rec.Added = append(rec.Added, c)
		}
	}
	for _, c := range have.Cells {
		if !want.HasCell(c) {
			rec.Removed = append(rec.Removed, c)
		}
	}

	for _, k := range slices.Sorted(maps.Keys(want.Attributes)) {
		v := want.Attributes[k]
		if old, ok := have.Attributes[k]; ok && reflect.DeepEqual(old, v) {
			continue
		}
		if rec.Modified == nil {
			rec.Modified = make(map[string]any)
		}
		rec.Modified[k] = v
	}

	return rec
}
