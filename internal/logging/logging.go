// Package logging builds zerolog loggers from a config.LoggingConfig: a
// global level, per-module overrides, and console/file sinks. The services,
// the migrator, the feature-flag reader and cmd/condoserver log through a
// logger obtained here rather than the standard library's log package; the
// store repositories do not log.
package logging

import (
	"io"
	"os"

	"github.com/condocore/condo-manager/internal/config"
	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Registry hands out a *zerolog.Logger per named module, honoring the
// per-module level overrides in LoggingConfig.
type Registry struct {
	base   zerolog.Logger
	levels map[string]zerolog.Level
}

// New builds a Registry from the loaded logging configuration.
func New(cfg config.LoggingConfig) *Registry {
	globalLvl := parseLevel(cfg.Global.Level, zerolog.InfoLevel)
	if !cfg.Global.Enabled {
		globalLvl = zerolog.Disabled
	}

	var writers []io.Writer
	if cfg.Handlers.Console.Enabled || !anySinkEnabled(cfg) {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}
	if cfg.Handlers.File.Enabled && cfg.Handlers.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename: cfg.Handlers.FilePath,
			MaxSize:  maxSizeMB(cfg.Handlers.RotationSize),
			Compress: true,
		})
	}
	if cfg.Handlers.ErrorFile.Enabled && cfg.Handlers.FilePath != "" {
		writers = append(writers, &errorOnlyWriter{
			w: &lumberjack.Logger{
				Filename: errorFilePath(cfg.Handlers.FilePath),
				MaxSize:  maxSizeMB(cfg.Handlers.RotationSize),
				Compress: true,
			},
		})
	}
	var out io.Writer = zerolog.MultiLevelWriter(writers...)

	base := zerolog.New(out).Level(globalLvl).With().Timestamp().Logger()

	levels := make(map[string]zerolog.Level, len(cfg.Loggers))
	for name, override := range cfg.Loggers {
		levels[name] = parseLevel(override.Level, globalLvl)
	}

	return &Registry{base: base, levels: levels}
}

// For returns the logger for a named module, applying its level override
// if logging.json configured one.
func (r *Registry) For(module string) zerolog.Logger {
	if lvl, ok := r.levels[module]; ok {
		return r.base.Level(lvl).With().Str("module", module).Logger()
	}
	return r.base.With().Str("module", module).Logger()
}

// errorOnlyWriter drops everything below error level before forwarding,
// letting the error-file sink share the same zerolog.MultiLevelWriter fan-out
// as the console/file sinks instead of keeping a separate logger instance.
type errorOnlyWriter struct {
	w io.Writer
}

func (e *errorOnlyWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func (e *errorOnlyWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.ErrorLevel {
		return len(p), nil
	}
	return e.w.Write(p)
}

func errorFilePath(base string) string {
	if len(base) > 4 && base[len(base)-4:] == ".log" {
		return base[:len(base)-4] + ".error.log"
	}
	return base + ".error"
}

func anySinkEnabled(cfg config.LoggingConfig) bool {
	return cfg.Handlers.Console.Enabled || cfg.Handlers.File.Enabled || cfg.Handlers.ErrorFile.Enabled
}

func maxSizeMB(bytes int64) int {
	const mb = 1024 * 1024
	if bytes <= 0 {
		return 100
	}
	mbs := int(bytes / mb)
	if mbs < 1 {
		return 1
	}
	return mbs
}

func parseLevel(l config.Level, def zerolog.Level) zerolog.Level {
	switch l {
	case config.LevelDebug:
		return zerolog.DebugLevel
	case config.LevelInfo:
		return zerolog.InfoLevel
	case config.LevelWarn:
		return zerolog.WarnLevel
	case config.LevelError:
		return zerolog.ErrorLevel
	default:
		return def
	}
}
