package models

import "time"

// SyncStatus статус синхронизации зоны
type SyncStatus string

const (
	SyncStatusSynced       SyncStatus = "synced"
	SyncStatusSyncing      SyncStatus = "syncing"
	SyncStatusConflict     SyncStatus = "conflict"
	SyncStatusDisconnected SyncStatus = "disconnected"
)

// ZoneSyncState is a read-only snapshot of one zone's synchronization state.
// Callers always receive copies; mutating a snapshot has no effect on the engine.
type ZoneSyncState struct {
	LastSyncTime     time.Time          `json:"last_sync_time"`     // LastSyncTime последний ack или применённое серверное обновление
	Zone             Zone               `json:"zone"`               // Zone видимое состояние зоны с учетом оптимистичных правок
	ZoneID           string             `json:"zone_id"`            // ZoneID идентификатор зоны
	Status           SyncStatus         `json:"status"`             // Status текущий статус
	PendingChanges   []ZoneChangeRecord `json:"pending_changes"`    // PendingChanges неподтвержденные локальные изменения (FIFO)
	LastServerUpdate int64              `json:"last_server_update"` // LastServerUpdate версия последнего применённого серверного изменения
	ConflictCount    int                `json:"conflict_count"`     // ConflictCount монотонный счетчик конфликтов
}

// Clone создает глубокую копию состояния
func (s ZoneSyncState) Clone() ZoneSyncState {
	out := s
	out.Zone = s.Zone.Clone()
	out.PendingChanges = make([]ZoneChangeRecord, 0, len(s.PendingChanges))
	for _, rec := range s.PendingChanges {
		out.PendingChanges = append(out.PendingChanges, rec.Clone())
	}
	return out
}

// PendingIDs returns the change ids of pending records in queue order.
func (s ZoneSyncState) PendingIDs() []string {
	ids := make([]string, 0, len(s.PendingChanges))
	for _, rec := range s.PendingChanges {
		ids = append(ids, rec.ChangeID)
	}
	return ids
}
