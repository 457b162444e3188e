package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPrettyHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := newPrettyHandler(&buf, prettyOptions{Level: slog.LevelDebug, NoColor: true})

	ts := time.Date(2026, 1, 15, 10, 30, 45, 123000000, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "repository ingested", 0)
	r.AddAttrs(slog.String("url", "https://example.com/r.git"), slog.Int("files", 3))

	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	want := "10:30:45.123 INF repository ingested url=https://example.com/r.git files=3\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			h := newPrettyHandler(&buf, prettyOptions{Level: slog.LevelDebug})

			r := slog.NewRecord(time.Now(), tt.level, "msg", 0)
			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error: %v", err)
			}

			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestPrettyHandler_Colour(t *testing.T) {
	var coloured, plain bytes.Buffer
	slog.New(newPrettyHandler(&coloured, prettyOptions{})).Warn("careful")
	slog.New(newPrettyHandler(&plain, prettyOptions{NoColor: true})).Warn("careful")

	if !strings.Contains(coloured.String(), ansiYellow) {
		t.Errorf("expected yellow for warn, got: %q", coloured.String())
	}
	if strings.Contains(plain.String(), "\033[") {
		t.Errorf("expected no escape codes, got: %q", plain.String())
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := newPrettyHandler(&bytes.Buffer{}, prettyOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, prettyOptions{NoColor: true}))

	logger.With("batch_id", "b1").WithGroup("clone").Info("done", "depth", 1)

	out := buf.String()
	if !strings.Contains(out, "batch_id=b1") {
		t.Errorf("expected pre-rendered attr, got: %s", out)
	}
	if !strings.Contains(out, "clone.depth=1") {
		t.Errorf("expected grouped attr, got: %s", out)
	}
}

func TestPrettyHandler_NestedGroupAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, prettyOptions{NoColor: true}))

	logger.Info("config", slog.Group("git", slog.String("provider", "gogit")))

	if !strings.Contains(buf.String(), "git.provider=gogit") {
		t.Errorf("expected flattened group, got: %s", buf.String())
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   slog.Value
		want string
	}{
		{"plain", slog.StringValue("abc"), "abc"},
		{"spaces", slog.StringValue("a b"), `"a b"`},
		{"empty", slog.StringValue(""), `""`},
		{"equals", slog.StringValue("k=v"), `"k=v"`},
		{"duration", slog.DurationValue(1500 * time.Millisecond), "1.5s"},
		{"int", slog.IntValue(42), "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.in); got != tt.want {
				t.Errorf("formatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
