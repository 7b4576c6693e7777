package bootstrap

import (
	"fmt"
	"os"

	"taskhub/config"
	"taskhub/storage"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger initializes the zap logger. The console format uses colored
// levels; json uses the production encoder.
func InitLogger(cfg config.LogConfig) (*zap.Logger, *zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder // Colored levels
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder        // Readable timestamps
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder      // Short file paths
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, logger.Sugar(), nil
}

// InitConfig loads the dotenv file and the application configuration.
// It runs before the logger exists, so failures go to stderr.
func InitConfig(configFile string) (*config.Config, error) {
	if _, err := config.LoadDotEnv(config.DefaultDotEnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %v\n", err)
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load config: %v\n", err)
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// LogConfigSummary logs the effective configuration without secrets
func LogConfigSummary(cfg *config.Config, sugar *zap.SugaredLogger) {
	if viper.ConfigFileUsed() == "" {
		sugar.Info("No config file found, using defaults and env vars")
	}

	mode := cfg.StartupMode()
	sugar.Infow("Startup mode",
		"mode", string(mode),
		"fail_on_db_error", cfg.FailOnDBError,
		"description", func() string {
			if mode == config.StartupModeGraceful {
				return "will serve requests without persistence if MongoDB is unreachable"
			}
			return "will abort startup if MongoDB is unreachable"
		}())

	sugar.Infow("Config loaded",
		"listen_addr", cfg.ListenAddr(),
		"mongodb_uri_set", cfg.MongoDB.URI != "",
		"connect_attempts", cfg.MongoDB.ConnectAttempts,
		"retry_delay", cfg.MongoDB.RetryDelay)
}

// ConnectionOptionsFromConfig maps configuration onto storage connection options
func ConnectionOptionsFromConfig(cfg *config.Config) storage.ConnectionOptions {
	return storage.ConnectionOptions{
		Database:               cfg.MongoDB.Database,
		AppName:                cfg.MongoDB.AppName,
		ServerSelectionTimeout: cfg.MongoDB.ServerSelectionTimeout,
		SocketTimeout:          cfg.MongoDB.SocketTimeout,
		MaxPoolSize:            cfg.MongoDB.MaxPoolSize,
		RetryWrites:            cfg.MongoDB.RetryWrites,
		Attempts:               cfg.MongoDB.ConnectAttempts,
		RetryDelay:             cfg.MongoDB.RetryDelay,
	}
}
