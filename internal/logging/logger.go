package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is the subset of *slog.Logger the bridge packages depend on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Output  string            `toml:"output"` // stdout (default) or stderr
	Modules map[string]string `toml:"modules"`
}

// levelFor resolves the effective level of module: its override when it
// parses, else the global level, else info.
func (c Config) levelFor(module string) slog.Level {
	if lvl, ok := ParseLevel(c.Modules[module]); ok {
		return lvl
	}
	if lvl, ok := ParseLevel(c.Level); ok {
		return lvl
	}
	return slog.LevelInfo
}

type moduleLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

type registry struct {
	mu         sync.RWMutex
	cfg        Config
	configured bool
	root       slog.LevelVar
	modules    map[string]moduleLogger
}

var std = newRegistry()

func newRegistry() *registry {
	return &registry{modules: make(map[string]moduleLogger)}
}

// Initialize applies config to the default logger and to every module
// logger handed out so far. Loggers already held by callers keep working
// and pick up the new level; format and output changes apply to loggers
// created afterwards.
func Initialize(config Config) {
	std.initialize(config)
}

// GetLogger returns the logger for module, creating it on first use.
func GetLogger(module string) *slog.Logger {
	return std.get(module)
}

func (r *registry) initialize(config Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cfg = config
	r.configured = true
	r.root.Set(config.levelFor(""))

	for name, m := range r.modules {
		m.level.Set(config.levelFor(name))
	}

	slog.SetDefault(slog.New(newHandler(config, &r.root)))
}

func (r *registry) get(module string) *slog.Logger {
	r.mu.RLock()
	m, ok := r.modules[module]
	r.mu.RUnlock()
	if ok {
		return m.logger
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.modules[module]; ok {
		return m.logger
	}

	cfg := r.cfg
	if !r.configured {
		cfg = Config{Format: "text"}
	}
	level := &slog.LevelVar{}
	level.Set(cfg.levelFor(module))

	m = moduleLogger{
		logger: slog.New(newHandler(cfg, level)).With("module", module),
		level:  level,
	}
	r.modules[module] = m
	return m.logger
}

// newHandler builds the stream handler for config and, when journald is
// reachable, fans out to it as well.
func newHandler(config Config, level slog.Leveler) slog.Handler {
	out := outputWriter(config.Output)
	opts := &slog.HandlerOptions{Level: level}

	var stream slog.Handler
	if strings.EqualFold(config.Format, "json") {
		stream = slog.NewJSONHandler(out, opts)
	} else {
		stream = slog.NewTextHandler(out, opts)
	}

	journald := IsJournalAvailable()
	switch {
	case journald && writable(out):
		return NewMultiHandler(stream, NewJournalHandler(level))
	case journald:
		return NewJournalHandler(level)
	default:
		return stream
	}
}

// outputWriter maps the configured output name to a stream.
func outputWriter(name string) *os.File {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// writable reports whether f is a character device, pipe, socket or
// regular file.
func writable(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return mode&(os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket) != 0 || mode.IsRegular()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name to a slog.Level. Names are case
// insensitive; "warning" is accepted for warn.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
