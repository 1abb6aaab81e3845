package logger

import (
	"fmt"

	"github.com/fxnlabs/cmdstream/internal/config"
	"go.uber.org/zap"
)

func New(cfg config.Logger) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.Verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	switch cfg.Encoding {
	case "", "json":
	case "console":
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("unknown log encoding %q", cfg.Encoding)
	}
	return config.Build()
}
