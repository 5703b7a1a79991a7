package common

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/samber/do/v2"
)

func NewLogger(_ do.Injector) (*slog.Logger, error) {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	})), nil
}
