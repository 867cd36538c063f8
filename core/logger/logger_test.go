package logger_test

import (
	"net/http/httptest"
	"testing"

	"stocktake/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		cfg        logger.Config
		wantDebug  bool
		wantInfoOn bool
	}{
		{"Default Info JSON", logger.Config{Level: "info", Format: "json"}, false, true},
		{"Debug Console", logger.Config{Level: "debug", Format: "console"}, true, true},
		{"Warn Suppresses Info", logger.Config{Level: "warn", Format: "json"}, false, false},
		{"Unknown Level Falls Back To Info", logger.Config{Level: "loud", Format: "json"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := logger.New(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, l.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.wantInfoOn, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestWithRayID(t *testing.T) {
	base, err := logger.New(&logger.Config{Level: "info", Format: "json"})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		// Without a stored ray ID the logger is returned as-is.
		assert.Same(t, base, logger.WithRayID(base, c))

		c.Locals("ray_id", "abc-123")
		assert.NotSame(t, base, logger.WithRayID(base, c))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
