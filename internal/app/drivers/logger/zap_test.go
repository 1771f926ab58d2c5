package logger

import (
	"hospital-service/internal/app/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestBuildZapConfig(t *testing.T) {
	loggerConfig := config.Logger{
		Level:               "warn",
		OutputFileName:      "app.log",
		OutputErrorFileName: "app_error.log",
	}

	t.Run("development writes to stdout", func(t *testing.T) {
		cfg := buildZapConfig(loggerConfig, "development")
		assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
		assert.True(t, cfg.Development)
		assert.Nil(t, cfg.Sampling)
		assert.Equal(t, zapcore.WarnLevel, cfg.Level.Level())
	})

	t.Run("production writes to files and samples", func(t *testing.T) {
		cfg := buildZapConfig(loggerConfig, "production")
		assert.Equal(t, []string{"app.log"}, cfg.OutputPaths)
		assert.Equal(t, []string{"stderr", "app_error.log"}, cfg.ErrorOutputPaths)
		assert.NotNil(t, cfg.Sampling)
	})

	t.Run("unknown level defaults to info", func(t *testing.T) {
		assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	})
}
