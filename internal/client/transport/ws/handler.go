package ws

import "github.com/iudanet/zonesync/internal/models"

//go:generate moq -out handler_mock.go . Handler

// Handler receives inbound traffic and link transitions.
// *zonesync.Engine satisfies it.
type Handler interface {
	// ReconcileZone приводит зону к серверному снимку (или регистрирует новую)
	ReconcileZone(zone models.Zone)

	// HandleAck обрабатывает подтверждение локального изменения
	HandleAck(zoneID, changeID string)

	// HandleServerUpdate применяет авторитетное серверное изменение
	HandleServerUpdate(zoneID string, rec models.ZoneChangeRecord) error

	// HandleConnected вызывается, когда связь установлена и снимок зон получен
	HandleConnected()

	// HandleDisconnected вызывается при потере связи
	HandleDisconnected()
}
