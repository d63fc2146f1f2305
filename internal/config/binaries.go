package config

// ClientConfig файл настроек клиента. Настройки движка лежат на верхнем
// уровне рядом с адресом сервера.
type ClientConfig struct {
	Server   string `yaml:"server"`
	DBPath   string `yaml:"db"`
	ClientID string `yaml:"client_id"`
	Update   `yaml:",inline"`
}

// ServerConfig файл настроек сервера
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	DBPath    string `yaml:"db"`
	ZonesFile string `yaml:"zones"` // YAML со стартовым набором зон
	Debug     bool   `yaml:"debug"`
}

// DefaultClient returns the client settings used when nothing is configured.
func DefaultClient() ClientConfig {
	return ClientConfig{
		Server: "http://localhost:8080",
		DBPath: "zonesync-client.db",
	}
}

// DefaultServer returns the server settings used when nothing is configured.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Addr:   ":8080",
		DBPath: "zonesync-server.db",
	}
}

// LoadClient layers the YAML file at path over DefaultClient.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClient()
	if err := loadYAML(path, &cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// LoadServer layers the YAML file at path over DefaultServer.
func LoadServer(path string) (ServerConfig, error) {
	cfg := DefaultServer()
	if err := loadYAML(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}
