package models

import "time"

// Resolution способ разрешения конфликта
type Resolution string

const (
	ResolutionServerWins Resolution = "server-wins"
	ResolutionClientWins Resolution = "client-wins"
	ResolutionMerged     Resolution = "merged"
)

// ZoneConflict описывает гонку между локальным изменением и серверным обновлением.
type ZoneConflict struct {
	Timestamp    time.Time        `json:"timestamp"`     // Timestamp время обнаружения
	ServerChange ZoneChangeRecord `json:"server_change"` // ServerChange запись, вызвавшая обнаружение
	ZoneID       string           `json:"zone_id"`       // ZoneID идентификатор зоны
	Resolution   Resolution       `json:"resolution"`    // Resolution примененная политика
	LocalChange  ZoneChangeRecord `json:"local_change"`  // LocalChange старейшее из гонявшихся локальных изменений
}

// Clone создает глубокую копию конфликта
func (c ZoneConflict) Clone() ZoneConflict {
	out := c
	out.LocalChange = c.LocalChange.Clone()
	out.ServerChange = c.ServerChange.Clone()
	return out
}
