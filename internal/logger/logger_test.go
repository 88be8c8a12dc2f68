package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewProvidesJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")
	if l == nil {
		t.Fatal("expected logger, got nil")
	}

	if !l.Enabled(context.Background(), slog.LevelInfo) {
		t.Errorf("expected info level to be enabled")
	}
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Errorf("did not expect debug level to be enabled")
	}

	l.Info("order placed", slog.Int64("order_id", 1))
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if record["service"] != "storefront" {
		t.Errorf("expected service attribute, got %v", record["service"])
	}
	if record["msg"] != "order placed" {
		t.Errorf("unexpected message %v", record["msg"])
	}
}

func TestNewParsesLevel(t *testing.T) {
	cases := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		l := New(&bytes.Buffer{}, tc.level)
		if !l.Enabled(context.Background(), tc.want) {
			t.Errorf("%q: expected %v enabled", tc.level, tc.want)
		}
		if tc.want > slog.LevelDebug && l.Enabled(context.Background(), tc.want-1) {
			t.Errorf("%q: expected level below %v disabled", tc.level, tc.want)
		}
	}
}
