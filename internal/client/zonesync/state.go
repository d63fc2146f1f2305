package zonesync

import (
	"slices"
	"time"

	"github.com/iudanet/zonesync/internal/config"
	"github.com/iudanet/zonesync/internal/models"
)

// maxSuperseded ограничивает память о вытесненных локальных изменениях
const maxSuperseded = 64

// pendingChange is one locally issued change waiting for acknowledgement.
type pendingChange struct {
	sentAt     time.Time             // время последней отправки (для RTT)
	timer      Timer                 // таймер ожидания ack, nil если не взведен
	cfg        config.ZoneSyncConfig // снимок конфигурации на момент выпуска
	record     models.ZoneChangeRecord
	gen        uint64 // поколение таймера, защищает от устаревших срабатываний
	retries    int
	optimistic bool // применено к видимому состоянию до подтверждения
	acked      bool
	expired    bool // дедлайн истек без ack, ждем переподключения
}

func (pc *pendingChange) stopTimer() {
	if pc.timer != nil {
		pc.timer.Stop()
		pc.timer = nil
	}
	pc.gen++
}

// racing reports whether the change can conflict with a server update.
func (pc *pendingChange) racing() bool {
	return pc.optimistic && !pc.acked
}

// zoneRecord is the engine-owned state of one zone. It is only touched while
// the engine lock is held.
type zoneRecord struct {
	lastSyncTime     time.Time
	deferred         []models.ZoneChangeRecord // серверные записи, отложенные политикой client-wins, по возрастанию версии
	superseded       []string                  // id локальных изменений, вытесненных при разрешении конфликта
	id               string
	status           models.SyncStatus
	confirmed        models.Zone // состояние, подтвержденное сервером
	queue            []*pendingChange
	lastServerUpdate int64
	conflictCount    int
}

func newZoneRecord(zone models.Zone, now time.Time) *zoneRecord {
	return &zoneRecord{
		id:               zone.ID,
		status:           models.SyncStatusSynced,
		confirmed:        zone.Clone(),
		lastSyncTime:     now,
		lastServerUpdate: zone.UpdatedAt,
	}
}

func (zr *zoneRecord) find(changeID string) *pendingChange {
	for _, pc := range zr.queue {
		if pc.record.ChangeID == changeID {
			return pc
		}
	}
	return nil
}

func (zr *zoneRecord) pendingCount() int {
	n := 0
	for _, pc := range zr.queue {
		if pc.racing() {
			n++
		}
	}
	return n
}

// unacked counts changes still waiting for the server, optimistic or not.
func (zr *zoneRecord) unacked() int {
	n := 0
	for _, pc := range zr.queue {
		if !pc.acked {
			n++
		}
	}
	return n
}

func (zr *zoneRecord) hasExpired() bool {
	for _, pc := range zr.queue {
		if pc.expired && !pc.acked {
			return true
		}
	}
	return false
}

// popAcked folds acknowledged changes at the head of the queue into the
// confirmed state. Acks that arrive out of order wait behind the head so the
// fold always follows issue order.
func (zr *zoneRecord) popAcked() {
	for len(zr.queue) > 0 && zr.queue[0].acked {
		zr.confirmed = zr.confirmed.Apply(zr.queue[0].record)
		zr.queue[0] = nil
		zr.queue = zr.queue[1:]
	}
}

// absorbAcked folds every acknowledged change into the confirmed state
// regardless of its position. Used right before an authoritative server
// record is applied on top.
func (zr *zoneRecord) absorbAcked() {
	kept := zr.queue[:0]
	for _, pc := range zr.queue {
		if pc.acked {
			zr.confirmed = zr.confirmed.Apply(pc.record)
			continue
		}
		kept = append(kept, pc)
	}
	clear(zr.queue[len(kept):])
	zr.queue = kept
}

// foldDeferred applies deferred server records to the confirmed state, oldest
// first, and ends the deferral.
func (zr *zoneRecord) foldDeferred() {
	for _, rec := range zr.deferred {
		zr.confirmed = zr.confirmed.Apply(rec)
	}
	zr.deferred = nil
}

// supersede remembers local changes dropped by conflict resolution. The server
// may still have applied them; their echo is then our own edit, not a race.
func (zr *zoneRecord) supersede(recs []models.ZoneChangeRecord) {
	for _, rec := range recs {
		zr.superseded = append(zr.superseded, rec.ChangeID)
	}
	if over := len(zr.superseded) - maxSuperseded; over > 0 {
		zr.superseded = slices.Delete(zr.superseded, 0, over)
	}
}

// forgetSuperseded reports whether changeID was superseded locally and
// forgets it.
func (zr *zoneRecord) forgetSuperseded(changeID string) bool {
	i := slices.Index(zr.superseded, changeID)
	if i < 0 {
		return false
	}
	zr.superseded = slices.Delete(zr.superseded, i, i+1)
	return true
}

// dropRacing removes every racing change from the queue, cancelling timers,
// and returns the removed records in issue order.
func (zr *zoneRecord) dropRacing() []models.ZoneChangeRecord {
	var dropped []models.ZoneChangeRecord
	kept := zr.queue[:0]
	for _, pc := range zr.queue {
		if pc.racing() {
			pc.stopTimer()
			dropped = append(dropped, pc.record)
			continue
		}
		kept = append(kept, pc)
	}
	clear(zr.queue[len(kept):])
	zr.queue = kept
	return dropped
}

// view returns the externally visible zone: the confirmed state with
// acknowledged and optimistic changes folded on top in issue order.
func (zr *zoneRecord) view() models.Zone {
	v := zr.confirmed.Clone()
	for _, pc := range zr.queue {
		if pc.optimistic || pc.acked {
			v = v.Apply(pc.record)
		}
	}
	return v
}

// settledStatus derives the status from queue contents and link state.
// A change sent without the optimistic path still keeps the zone syncing
// until its ack arrives.
func (zr *zoneRecord) settledStatus(online bool) models.SyncStatus {
	switch {
	case !online, zr.hasExpired():
		return models.SyncStatusDisconnected
	case zr.unacked() > 0:
		return models.SyncStatusSyncing
	default:
		return models.SyncStatusSynced
	}
}

// snapshot returns a deep copy safe to hand to callers.
func (zr *zoneRecord) snapshot() models.ZoneSyncState {
	pending := make([]models.ZoneChangeRecord, 0, zr.pendingCount())
	for _, pc := range zr.queue {
		if pc.racing() {
			pending = append(pending, pc.record.Clone())
		}
	}

	return models.ZoneSyncState{
		ZoneID:           zr.id,
		Status:           zr.status,
		PendingChanges:   pending,
		LastSyncTime:     zr.lastSyncTime,
		LastServerUpdate: zr.lastServerUpdate,
		ConflictCount:    zr.conflictCount,
		Zone:             zr.view(),
	}
}
