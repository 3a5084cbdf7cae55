package config

// AppConfig is loaded from app.json.
type AppConfig struct {
	Host      string `json:"host" validate:"required"`
	Port      int    `json:"port" validate:"required,min=1,max=65535"`
	SecretKey string `json:"secret_key" validate:"required,min=8"`
	Debug     bool   `json:"debug"`
	DataPath  string `json:"data_path" validate:"required"`
	LogLevel  string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DatabaseConfig is loaded from database.json.
type DatabaseConfig struct {
	Type             string `json:"type" validate:"required,oneof=sqlite postgres"`
	Path             string `json:"path" validate:"required_if=Type sqlite"`
	DSN              string `json:"dsn" validate:"required_if=Type postgres"`
	MigrationsPath   string `json:"migrations_path" validate:"required"`
	TimeoutMs        int    `json:"timeout_ms" validate:"required,min=1"`
	CheckSameThread  bool   `json:"check_same_thread"`
}

// Level is a per-module or global logging level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// HandlerConfig toggles and configures a single logging sink.
type HandlerConfig struct {
	Enabled bool   `json:"enabled"`
	Level   Level  `json:"level" validate:"omitempty,oneof=debug info warn error"`
}

// LoggerOverride configures the level for one named module logger.
type LoggerOverride struct {
	Level Level `json:"level" validate:"required,oneof=debug info warn error"`
}

// LoggingConfig is loaded from logging.json.
type LoggingConfig struct {
	Global struct {
		Enabled bool  `json:"enabled"`
		Level   Level `json:"level" validate:"required,oneof=debug info warn error"`
	} `json:"global" validate:"required"`
	Handlers struct {
		Console      HandlerConfig `json:"console"`
		File         HandlerConfig `json:"file"`
		ErrorFile    HandlerConfig `json:"error_file"`
		FilePath     string        `json:"file_path"`
		RotationSize int64         `json:"rotation_size_bytes"`
	} `json:"handlers"`
	Loggers map[string]LoggerOverride `json:"loggers"`
}
