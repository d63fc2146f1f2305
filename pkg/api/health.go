package api

// HealthResponse ответ GET /api/v1/health
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	ZoneVersion int64  `json:"zone_version"` // Последняя выданная версия зон
}

// ErrorResponse представляет ответ с ошибкой HTTP API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
