// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Personas     PersonaConfig      `mapstructure:"personas"`
	Offers       OffersConfig       `mapstructure:"offers"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval"`
	Integrations IntegrationConfig  `mapstructure:"integrations"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`    // seconds
	WriteTimeout   int `mapstructure:"write_timeout"`   // seconds
	RequestTimeout int `mapstructure:"request_timeout"` // seconds, per-orchestration budget
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PersonaConfig locates the persona document store.
type PersonaConfig struct {
	Dir string `mapstructure:"dir"`
}

// OffersConfig locates the static offer catalog.
type OffersConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
}

// RetrievalConfig holds the embedding provider and vector store settings.
type RetrievalConfig struct {
	Provider       string `mapstructure:"provider"` // "hash" or "remote"
	Dim            int    `mapstructure:"dim"`
	Collection     string `mapstructure:"collection"`
	TopK           int    `mapstructure:"top_k"`
	TimeoutMS      int    `mapstructure:"timeout_ms"`
	EmbeddingURL   string `mapstructure:"embedding_url"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	APIKey         string `mapstructure:"api_key"`
	CacheTTLMS     int    `mapstructure:"cache_ttl_ms"`
}

// IntegrationConfig holds settings for email/SMS and other external services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
			OpsEmail  string `mapstructure:"ops_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
			OpsPhone           string `mapstructure:"ops_phone"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}
