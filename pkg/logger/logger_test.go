package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	log := Get()
	log.Debug(ctx, "debug message", String("k", "v"))
	log.Info(ctx, "info message", Int("n", 42), Bool("ok", true))
	log.Warn(ctx, "warn message", Any("payload", map[string]int{"a": 1}))
	log.Error(ctx, "error message", Error(context.Canceled))
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("orchestrator")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "named message", String("k", "v"))

	nested := named.Named("campaign")
	if nested == nil {
		t.Fatal("nested named logger is nil")
	}
	nested.Info(context.Background(), "nested message")
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{" Error ", slog.LevelError, false},
		{"nope", 0, true},
	}
	for _, c := range cases {
		err := SetLevelString(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("SetLevelString(%q): expected error, got nil", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetLevelString(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got := levelVar.Level(); got != c.want {
			t.Errorf("SetLevelString(%q): level = %v, want %v", c.in, got, c.want)
		}
	}

	// Restore so later tests in the same binary log at the default level.
	SetLevel(slog.LevelInfo)
}
