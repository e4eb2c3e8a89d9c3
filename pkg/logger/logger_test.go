package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCloudRunHandler_WritesSeverityAndData(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelInfo)).
		With("dashboard_id", "d1").
		WithGroup("update")

	log.Debug("dropped")
	log.Warn("rejected", "key", "currency", "error", errors.New("bad value"))

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if event["severity"] != "WARNING" {
		t.Errorf("expected WARNING severity, got %v", event["severity"])
	}
	data, ok := event["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", event["data"])
	}
	if data["dashboard_id"] != "d1" {
		t.Errorf("expected dashboard_id attr, got %v", data)
	}
	if data["update.key"] != "currency" {
		t.Errorf("expected grouped key, got %v", data)
	}
	if data["update.error"] != "bad value" {
		t.Errorf("expected error rendered as string, got %v", data["update.error"])
	}
}

func TestFromContext_DefaultsWhenMissing(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected default logger")
	}
	log := slog.New(NewTestHandler(slog.LevelInfo))
	ctx := ToContext(context.Background(), log)
	if FromContext(ctx) != log {
		t.Fatal("expected stored logger")
	}
}
