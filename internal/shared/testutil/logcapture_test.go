package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewLogger(t)

	logger.With(slog.String("component", "dashboard")).
		WithGroup("export").
		Warn("Export failed", slog.String("format", "csv"))
	logger.Info("Report data loaded")

	rec := AssertLogged(t, h, slog.LevelWarn, "Export failed")
	assert.Equal(t, "dashboard", rec.Attrs["component"])
	assert.Equal(t, "csv", rec.Attrs["export.format"])
	assert.Len(t, h.Records(), 2)
	AssertNoErrors(t, h)

	_, ok := h.Find("never logged")
	assert.False(t, ok)
}
