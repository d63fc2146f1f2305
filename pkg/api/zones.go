package api

import "github.com/iudanet/zonesync/internal/models"

// Типы сообщений websocket-протокола
const (
	TypeHello  = "hello"  // клиент -> сервер: представление клиента
	TypeZones  = "zones"  // сервер -> клиент: полный список зон
	TypeChange = "change" // клиент -> сервер: локальное изменение
	TypeAck    = "ack"    // сервер -> клиент: изменение принято
	TypeUpdate = "update" // сервер -> клиент: авторитетное изменение
	TypeError  = "error"  // сервер -> клиент: ошибка обработки
)

// Hello отправляется клиентом сразу после подключения
type Hello struct {
	ClientID string `json:"client_id"`
}

// Zone представляет зону на проводе
type Zone struct {
	Attributes map[string]any `json:"attributes"`
	ID         string         `json:"id"`
	Cells      []string       `json:"cells,omitempty"`
	UpdatedAt  int64          `json:"updated_at"` // Серверная версия зоны
}

// ZoneList ответ сервера на hello
type ZoneList struct {
	Zones []Zone `json:"zones"`
}

// ZoneChange изменение зоны. Для update поле Timestamp содержит серверную версию.
type ZoneChange struct {
	Modified  map[string]any `json:"modified,omitempty"`
	ChangeID  string         `json:"change_id"`
	ZoneID    string         `json:"zone_id"`
	Added     []string       `json:"added,omitempty"`
	Removed   []string       `json:"removed,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Ack подтверждение изменения
type Ack struct {
	ZoneID   string `json:"zone_id"`
	ChangeID string `json:"change_id"`
	Version  int64  `json:"version"` // Версия, присвоенная изменению
}

// Error сообщение об ошибке обработки запроса
type Error struct {
	Message  string `json:"message"`
	ZoneID   string `json:"zone_id,omitempty"`
	ChangeID string `json:"change_id,omitempty"`
}

// ZoneFromModel converts a domain zone to its wire form.
func ZoneFromModel(z models.Zone) Zone {
	c := z.Clone()
	return Zone{
		ID:         c.ID,
		Attributes: c.Attributes,
		Cells:      c.Cells,
		UpdatedAt:  c.UpdatedAt,
	}
}

// ToModel converts the wire zone to the domain type.
func (z Zone) ToModel() models.Zone {
	return models.Zone{
		ID:         z.ID,
		Attributes: z.Attributes,
		Cells:      z.Cells,
		UpdatedAt:  z.UpdatedAt,
	}.Clone()
}

// ChangeFromModel converts a change record to its wire form. Origin is not
// transmitted: the direction of the message defines it.
func ChangeFromModel(r models.ZoneChangeRecord) ZoneChange {
	c := r.Clone()
	return ZoneChange{
		ChangeID:  c.ChangeID,
		ZoneID:    c.ZoneID,
		Added:     c.Added,
		Removed:   c.Removed,
		Modified:  c.Modified,
		Timestamp: c.Timestamp,
	}
}

// ToModel converts the wire change to a record with the given origin.
func (c ZoneChange) ToModel(origin models.Origin) models.ZoneChangeRecord {
	return models.ZoneChangeRecord{
		ChangeID:  c.ChangeID,
		ZoneID:    c.ZoneID,
		Added:     c.Added,
		Removed:   c.Removed,
		Modified:  c.Modified,
		Timestamp: c.Timestamp,
		Origin:    origin,
	}.Clone()
}
