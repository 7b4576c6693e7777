package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrFailOnDBErrorUnset is returned when the database failure policy was not chosen explicitly
var ErrFailOnDBErrorUnset = errors.New("fail_on_db_error must be set explicitly (FAIL_ON_DB_ERROR=true|false)")

// StartupMode describes how startup reacts to an unreachable database
type StartupMode string

const (
	// StartupModeStrict aborts startup when the database cannot be reached
	StartupModeStrict StartupMode = "strict"
	// StartupModeGraceful serves requests without persistence
	StartupModeGraceful StartupMode = "graceful"
)

// MongoDBConfig holds the document store connection settings
type MongoDBConfig struct {
	// URI is the connection string (MONGO_DB_URL)
	URI                    string        `mapstructure:"uri"`
	Database               string        `mapstructure:"database"`
	AppName                string        `mapstructure:"app_name"`
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout"`
	SocketTimeout          time.Duration `mapstructure:"socket_timeout"`
	MaxPoolSize            uint64        `mapstructure:"max_pool_size"`
	RetryWrites            bool          `mapstructure:"retry_writes"`
	ConnectAttempts        int           `mapstructure:"connect_attempts"`
	RetryDelay             time.Duration `mapstructure:"retry_delay"`
}

// RateLimitConfig holds the per-client token bucket settings
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host              string          `mapstructure:"host"`
	Port              int             `mapstructure:"port"` // PORT
	ReadHeaderTimeout time.Duration   `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit         RateLimitConfig `mapstructure:"rate_limit"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// Config holds all configuration for the taskhub service
type Config struct {
	// FailOnDBError aborts startup when the database is unreachable.
	// It has no default and must be set explicitly.
	FailOnDBError bool `mapstructure:"fail_on_db_error"`

	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// setDefaults sets default configuration values
func setDefaults() {
	// fail_on_db_error deliberately has no default

	viper.SetDefault("mongodb.uri", "")
	viper.SetDefault("mongodb.database", "")
	viper.SetDefault("mongodb.app_name", "taskhub")
	viper.SetDefault("mongodb.server_selection_timeout", 5*time.Second)
	viper.SetDefault("mongodb.socket_timeout", 45*time.Second)
	viper.SetDefault("mongodb.max_pool_size", 10)
	viper.SetDefault("mongodb.retry_writes", true)
	viper.SetDefault("mongodb.connect_attempts", 3)
	viper.SetDefault("mongodb.retry_delay", 2*time.Second)

	viper.SetDefault("server.host", "")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.read_header_timeout", 10*time.Second)
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)
	viper.SetDefault("server.rate_limit.enabled", true)
	viper.SetDefault("server.rate_limit.requests_per_second", 50)
	viper.SetDefault("server.rate_limit.burst", 100)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	viper.SetEnvPrefix("TASKHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unprefixed names used by deployments
	_ = viper.BindEnv("mongodb.uri", "MONGO_DB_URL", "TASKHUB_MONGODB_URI")
	_ = viper.BindEnv("server.port", "PORT", "TASKHUB_SERVER_PORT")
	_ = viper.BindEnv("fail_on_db_error", "FAIL_ON_DB_ERROR", "TASKHUB_FAIL_ON_DB_ERROR")
}

// LoadConfig loads configuration from file and environment variables.
// configFile may be empty, in which case config.yaml is searched for in . and ./config.
func LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, will use defaults and env vars
	}

	if !viper.IsSet("fail_on_db_error") {
		return nil, ErrFailOnDBErrorUnset
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// StartupMode returns the startup policy implied by FailOnDBError
func (c *Config) StartupMode() StartupMode {
	if c.FailOnDBError {
		return StartupModeStrict
	}
	return StartupModeGraceful
}

// ListenAddr returns the host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// validateConfig validates the configuration for correctness
func validateConfig(config *Config) error {
	// The URI shape is left to the driver; a malformed one fails each connect attempt
	if config.MongoDB.ConnectAttempts < 1 {
		return fmt.Errorf("mongodb.connect_attempts must be at least 1, got %d", config.MongoDB.ConnectAttempts)
	}
	if config.MongoDB.RetryDelay < 0 {
		return fmt.Errorf("mongodb.retry_delay cannot be negative")
	}
	if config.MongoDB.ServerSelectionTimeout <= 0 {
		return fmt.Errorf("mongodb.server_selection_timeout must be positive")
	}
	if config.MongoDB.SocketTimeout < 0 {
		return fmt.Errorf("mongodb.socket_timeout cannot be negative")
	}
	if config.MongoDB.MaxPoolSize == 0 {
		return fmt.Errorf("mongodb.max_pool_size must be at least 1")
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d: must be between 1 and 65535", config.Server.Port)
	}
	if config.Server.RateLimit.Enabled && (config.Server.RateLimit.RequestsPerSecond <= 0 || config.Server.RateLimit.Burst < 1) {
		return fmt.Errorf("server.rate_limit requires positive requests_per_second and burst")
	}

	switch config.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be console or json", config.Log.Format)
	}

	return nil
}
