// Package logging builds the process-wide zap logger. Subsystems take named
// children so every line carries its category.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Encoding   string `yaml:"encoding"`    // json or console
	OutputPath string `yaml:"output_path"` // empty means stdout
}

// Subsystem categories used with Named.
const (
	CategoryRouting    = "routing"
	CategoryPrompt     = "prompt"
	CategoryValidation = "validation"
	CategoryGeneration = "generation"
	CategoryLLM        = "llm"
	CategoryStore      = "store"
	CategoryUsage      = "usage"
	CategoryServer     = "server"
)

// New builds a zap logger from cfg. Invalid levels fall back to info with a
// note on stderr, because the logger does not exist yet to report it.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	name := strings.ToLower(cfg.Level)
	if name == "" {
		name = "info"
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, using info: %v\n", cfg.Level, err)
		level.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoding := strings.ToLower(cfg.Encoding)
	if encoding != "console" && encoding != "json" {
		encoding = "json"
	}

	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = "stdout"
	}

	zapConfig := zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{outputPath},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// For returns a category-named child of log.
func For(log *zap.Logger, category string) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log.Named(category)
}
