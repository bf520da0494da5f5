package config

// LogConfig controls the zap logger and its lumberjack rotation.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func LoadLogConfig() LogConfig {
	return LogConfig{
		Level:      getenv("LOG_LEVEL", "info"),
		File:       getenv("LOG_FILE", "logs/server.log"),
		MaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 50),
		MaxBackups: envInt("LOG_MAX_BACKUPS", 5),
		MaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 28),
		Compress:   envBool("LOG_COMPRESS", false),
	}
}
