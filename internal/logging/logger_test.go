package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"upright/internal/logging"
	"upright/internal/services"
)

func TestConsoleFormatIncludesComponentAndAttrs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "compose")
	logger.Info("render finished", logging.String("output", "short.mp4"), logging.Int("loops", 2))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log output: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "compose: render finished") {
		t.Fatalf("missing component prefix in %q", line)
	}
	if !strings.Contains(line, "output=short.mp4") {
		t.Fatalf("missing string attr in %q", line)
	}
	if !strings.Contains(line, "loops=2") {
		t.Fatalf("missing int attr in %q", line)
	}
}

func TestJSONFormatRenamesStandardKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Warn("music library empty", logging.String("dir", "/music"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log output: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if record["msg"] != "music library empty" {
		t.Fatalf("msg = %v", record["msg"])
	}
	if record["level"] != "warn" {
		t.Fatalf("level = %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("expected ts key")
	}
	if record["dir"] != "/music" {
		t.Fatalf("dir = %v", record["dir"])
	}
}

func TestUnsupportedFormatFails(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "logfmt"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("suppressed")
	logger.Error("kept")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log output: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("error line missing: %q", out)
	}
}

func TestWithContextAddsPipelineFields(t *testing.T) {
	ctx := services.WithChannel(context.Background(), "dashcam")
	ctx = services.WithContentID(ctx, "abc123")

	fields := logging.ContextFields(ctx)
	keys := map[string]string{}
	for _, attr := range fields {
		keys[attr.Key] = attr.Value.String()
	}
	if keys[logging.FieldChannel] != "dashcam" {
		t.Fatalf("channel field = %q", keys[logging.FieldChannel])
	}
	if keys[logging.FieldContentID] != "abc123" {
		t.Fatalf("content id field = %q", keys[logging.FieldContentID])
	}
	if _, ok := keys[logging.FieldStage]; ok {
		t.Fatal("stage should be absent when not set")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should disable all levels")
	}
}
