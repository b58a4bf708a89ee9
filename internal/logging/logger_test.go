package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/simonhull/mediameta/internal/config"
	"github.com/simonhull/mediameta/internal/logging"
)

func noColor() *bool {
	b := false
	return &b
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf, Color: noColor()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("hidden")
	logger.With("file", "a b.mp3").WithGroup("mpeg").Info("frame found", "offset", 417, "took", time.Second)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %q", out)
	}
	for _, want := range []string{"INFO ", "frame found", `file="a b.mp3"`, "mpeg.offset=417", "mpeg.took=1s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes written with colour disabled: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", out)
	}
}

func TestConsoleLoggerColor(t *testing.T) {
	var buf bytes.Buffer
	on := true
	logger, err := logging.New(logging.Options{Level: "warn", Output: &buf, Color: &on})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("careful")
	if !strings.Contains(buf.String(), "\x1b[33m") {
		t.Fatalf("expected yellow warning, got %q", buf.String())
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "JSON", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("walk", "stage", "quicktime", "took", 1500*time.Millisecond)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if line["level"] != "debug" || line["msg"] != "walk" || line["stage"] != "quicktime" {
		t.Errorf("unexpected record: %v", line)
	}
	if ts, _ := line["ts"].(string); !strings.HasSuffix(ts, "Z") || !strings.Contains(ts, ".") {
		t.Errorf("ts = %q, want UTC with milliseconds", ts)
	}
	if line["took_ms"] != 1500.0 {
		t.Errorf("took_ms = %v, want 1500", line["took_ms"])
	}
	if _, ok := line["took"]; ok {
		t.Errorf("duration kept under its raw key: %v", line)
	}
	if src, _ := line["source"].(string); !strings.HasPrefix(src, "logger_test.go:") {
		t.Errorf("source = %q, want the base file name", src)
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := logging.New(logging.Options{Level: tt.level, Output: &bytes.Buffer{}})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			if !logger.Enabled(t.Context(), tt.want) {
				t.Errorf("level %v disabled", tt.want)
			}
			if logger.Enabled(t.Context(), tt.want-1) {
				t.Errorf("level below %v enabled", tt.want)
			}
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("default level should be warn")
	}
	if _, err := logging.NewFromConfig(nil); err != nil {
		t.Fatalf("NewFromConfig(nil) returned error: %v", err)
	}
}

func TestNewNop(t *testing.T) {
	if logging.NewNop().Enabled(t.Context(), slog.LevelError) {
		t.Error("nop logger should be disabled")
	}
}
