package config_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/cli/config"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
)

type vendorCredential struct {
	Name   string
	APIKey string
}

func TestNewHandler_JSONMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	h, err := config.NewHandler("json", slog.LevelInfo, &buf, false)
	gt.NoError(t, err).Required()

	slog.New(h).Info("vendor configured",
		"vendor", vendorCredential{Name: "cork", APIKey: "sk-live-123"},
		"header", "Bearer sk-live-123")

	var line map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &line)).Required()
	gt.Value(t, line["msg"]).Equal(any("vendor configured"))
	gt.Bool(t, strings.Contains(buf.String(), "sk-live-123")).False()
	gt.String(t, buf.String()).Contains("cork")
}

func TestNewHandler_Console(t *testing.T) {
	var buf bytes.Buffer
	h, err := config.NewHandler("console", slog.LevelWarn, &buf, false)
	gt.NoError(t, err).Required()

	logger := slog.New(h)
	logger.Info("hidden")
	logger.Warn("shown")

	gt.Bool(t, strings.Contains(buf.String(), "hidden")).False()
	gt.String(t, buf.String()).Contains("shown")
}

func TestNewHandler_InvalidFormat(t *testing.T) {
	_, err := config.NewHandler("xml", slog.LevelInfo, &bytes.Buffer{}, false)
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}

func TestLoggerConfigure(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "json", "stderr").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("writes to file", func(t *testing.T) {
		prev := logging.Default()
		t.Cleanup(func() { logging.SetDefault(prev) })

		path := filepath.Join(t.TempDir(), "lmx.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Debug("written to file")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains("written to file")
	})
}
