package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Qdrant     QdrantConfig     `mapstructure:"qdrant"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Brain      BrainConfig      `mapstructure:"brain"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Sources    SourcesConfig    `mapstructure:"sources"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	Path            string        `mapstructure:"path"` // sqlite file path
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type QdrantConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
	Dimensions int    `mapstructure:"dimensions"`
}

// ArchiveConfig configures the S3-compatible raw-record archive used for
// provenance snapshots of ingested source rows.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"` // s3 | r2 | s3compatible
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type EnrichmentConfig struct {
	Endpoint string        `mapstructure:"endpoint"` // empty = local fallback enrichment
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type EmbeddingConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

// BrainConfig carries the tunable knobs of the dedupe brain. Thresholds and
// blend weights are configuration, not code, so they can be re-validated
// against labeled data without a deploy.
type BrainConfig struct {
	TSame           float64 `mapstructure:"t_same"`
	TMaybe          float64 `mapstructure:"t_maybe"`
	NameWeight      float64 `mapstructure:"name_weight"`
	RelevanceWeight float64 `mapstructure:"relevance_weight"`
	JaccardWeight   float64 `mapstructure:"jaccard_weight"`
	SequenceWeight  float64 `mapstructure:"sequence_weight"`
	CandidatePool   int     `mapstructure:"candidate_pool"`
}

type IngestConfig struct {
	BatchSize              int `mapstructure:"batch_size"`
	MaxConsecutiveFailures int `mapstructure:"max_consecutive_failures"`
}

type SourcesConfig struct {
	KaggleCSV KaggleCSVConfig `mapstructure:"kagglecsv"`
	UserForm  UserFormConfig  `mapstructure:"userform"`
}

type KaggleCSVConfig struct {
	Path       string `mapstructure:"path"`
	SourceType string `mapstructure:"source_type"`
}

type UserFormConfig struct {
	StagingDir string `mapstructure:"staging_dir"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/meals.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("qdrant.enabled", false)
	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.collection", "meals")
	v.SetDefault("qdrant.dimensions", 1024)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.type", "s3compatible")
	v.SetDefault("archive.endpoint", "localhost:9000")
	v.SetDefault("archive.use_ssl", false)
	v.SetDefault("archive.bucket", "meal-raw-records")
	v.SetDefault("enrichment.endpoint", "")
	v.SetDefault("enrichment.timeout", "30s")
	v.SetDefault("embedding.enabled", false)
	v.SetDefault("embedding.provider", "jina")
	v.SetDefault("embedding.model", "jina-embeddings-v3")
	v.SetDefault("embedding.dimensions", 1024)
	v.SetDefault("brain.t_same", 0.85)
	v.SetDefault("brain.t_maybe", 0.70)
	v.SetDefault("brain.name_weight", 0.55)
	v.SetDefault("brain.relevance_weight", 0.45)
	v.SetDefault("brain.jaccard_weight", 0.55)
	v.SetDefault("brain.sequence_weight", 0.45)
	v.SetDefault("brain.candidate_pool", 20)
	v.SetDefault("ingest.batch_size", 100)
	v.SetDefault("ingest.max_consecutive_failures", 5)
	v.SetDefault("sources.kagglecsv.path", "./data/indian_food.csv")
	v.SetDefault("sources.kagglecsv.source_type", "kaggle:indian_food")
	v.SetDefault("sources.userform.staging_dir", "./data/staging")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("qdrant.host", "QDRANT_HOST")
	v.BindEnv("qdrant.port", "QDRANT_PORT")
	v.BindEnv("qdrant.api_key", "QDRANT_API_KEY")
	v.BindEnv("archive.endpoint", "ARCHIVE_ENDPOINT")
	v.BindEnv("archive.access_key", "ARCHIVE_ACCESS_KEY")
	v.BindEnv("archive.secret_key", "ARCHIVE_SECRET_KEY")
	v.BindEnv("enrichment.endpoint", "ENRICHMENT_ENDPOINT")
	v.BindEnv("enrichment.api_key", "ENRICHMENT_API_KEY")
	v.BindEnv("embedding.api_key", "JINA_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
