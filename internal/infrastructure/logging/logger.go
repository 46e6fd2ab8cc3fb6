package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	// FilePath is a directory; when set, logs are also written to a rotated
	// file inside it.
	FilePath   string
	Encoding   string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"fatal": zapcore.FatalLevel,
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	l, ok := levels[level]
	if !ok {
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level %q", level)
	}
	return l, nil
}

// New builds the process logger. Every entry carries AppName.
func New(cfg Config, appName string) (*zap.SugaredLogger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unsupported log encoding %q", cfg.Encoding)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if cfg.FilePath != "" {
		if err := os.MkdirAll(cfg.FilePath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.FilePath, appName+".log"),
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		Sugar().
		With(string(AppName), appName)

	return logger, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Fields flattens extra into key/value pairs for the sugared logger, in a
// stable order.
func Fields(cat Category, sub SubCategory, extra map[ExtraKey]any) []any {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	params := make([]any, 0, 4+2*len(extra))
	params = append(params, KeyCategory, cat, KeySubCategory, sub)
	for _, k := range keys {
		params = append(params, k, extra[ExtraKey(k)])
	}
	return params
}
