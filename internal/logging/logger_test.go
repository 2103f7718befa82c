package logging

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

// useRegistry swaps in a fresh registry for the duration of the test.
func useRegistry(t *testing.T) {
	t.Helper()
	prev, prevDefault := std, slog.Default()
	std = newRegistry()
	t.Cleanup(func() {
		std = prev
		slog.SetDefault(prevDefault)
	})
}

func enabled(l *slog.Logger, level slog.Level) bool {
	return l.Handler().Enabled(context.Background(), level)
}

func TestModuleOverrides(t *testing.T) {
	useRegistry(t)
	Initialize(Config{
		Level:   "info",
		Format:  "text",
		Modules: map[string]string{"bridge": "debug", "dialog": "warn"},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"bridge", true, true, true},
		{"dialog", false, false, true},
		{"process", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			l := GetLogger(tt.module)
			if got := enabled(l, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := enabled(l, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("info enabled = %v, want %v", got, tt.wantInfo)
			}
			if got := enabled(l, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("warn enabled = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestLoggerCachedAcrossInitialize(t *testing.T) {
	useRegistry(t)

	before := GetLogger("process")
	if enabled(before, slog.LevelDebug) {
		t.Fatal("logger created before Initialize should default to info")
	}

	Initialize(Config{Level: "info", Modules: map[string]string{"process": "debug"}})

	if after := GetLogger("process"); after != before {
		t.Error("expected the same logger after Initialize")
	}
	if !enabled(before, slog.LevelDebug) {
		t.Error("held logger should see the debug override")
	}
}

func TestReloadDropsOverride(t *testing.T) {
	useRegistry(t)

	Initialize(Config{Level: "info", Modules: map[string]string{"bridge": "debug"}})
	l := GetLogger("bridge")
	if !enabled(l, slog.LevelDebug) {
		t.Fatal("expected debug enabled for bridge")
	}

	Initialize(Config{Level: "warn"})
	if enabled(l, slog.LevelInfo) {
		t.Error("expected info disabled after reload to warn")
	}
	if !enabled(l, slog.LevelWarn) {
		t.Error("expected warn enabled after reload to warn")
	}
}

func TestInvalidOverrideFallsBack(t *testing.T) {
	useRegistry(t)
	Initialize(Config{Level: "error", Modules: map[string]string{"bridge": "loud"}})

	l := GetLogger("bridge")
	if enabled(l, slog.LevelWarn) {
		t.Error("unparseable override should fall back to the global level")
	}
	if !enabled(l, slog.LevelError) {
		t.Error("expected error enabled")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"DEBUG", slog.LevelDebug, true},
		{" info ", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"Warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"trace", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestOutputWriter(t *testing.T) {
	if outputWriter("stderr") != os.Stderr {
		t.Error("expected stderr for output=stderr")
	}
	if outputWriter("STDERR") != os.Stderr {
		t.Error("output name should be case-insensitive")
	}
	if outputWriter("") != os.Stdout {
		t.Error("expected stdout by default")
	}
}

func TestWritable(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if !writable(f) {
		t.Error("regular file should be writable")
	}
}

func TestJournalFields(t *testing.T) {
	fields := map[string]string{}
	putField(fields, "", slog.String("session_id", "abc"))
	putField(fields, "PROC", slog.Int("pid", 42))
	putField(fields, "", slog.Group("state", slog.String("to", "connected")))
	putField(fields, "", slog.Bool("running", false))
	putField(fields, "", slog.String("launch-target", "rubyw dialog.rb"))
	putField(fields, "", slog.Attr{})

	want := map[string]string{
		"SESSION_ID":    "abc",
		"PROC_PID":      "42",
		"STATE_TO":      "connected",
		"RUNNING":       "false",
		"LAUNCH_TARGET": "rubyw dialog.rb",
	}
	if len(fields) != len(want) {
		t.Errorf("got %d fields, want %d: %v", len(fields), len(want), fields)
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, fields[k], v)
		}
	}
}

func TestJournalHandlerGroupsAndAttrs(t *testing.T) {
	h := NewJournalHandler(slog.LevelInfo).
		WithAttrs([]slog.Attr{slog.String("module", "bridge")}).
		WithGroup("session").
		WithAttrs([]slog.Attr{slog.String("id", "s1")})

	jh, ok := h.(*JournalHandler)
	if !ok {
		t.Fatalf("unexpected handler type %T", h)
	}
	if jh.fields["MODULE"] != "bridge" || jh.fields["SESSION_ID"] != "s1" {
		t.Errorf("unexpected fields %v", jh.fields)
	}
	if jh.prefix != "SESSION" {
		t.Errorf("prefix = %q, want SESSION", jh.prefix)
	}
}

func TestJournalHandlerFollowsLevelVar(t *testing.T) {
	var lv slog.LevelVar
	lv.Set(slog.LevelWarn)
	h := NewJournalHandler(&lv)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn")
	}
	lv.Set(slog.LevelDebug)
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("journal handler should follow LevelVar changes")
	}
}

func TestJournalPriority(t *testing.T) {
	if priority(slog.LevelError+4) != priority(slog.LevelError) {
		t.Error("levels above error should map to err")
	}
	if priority(slog.LevelDebug) == priority(slog.LevelInfo) {
		t.Error("debug and info should map to distinct priorities")
	}
}
