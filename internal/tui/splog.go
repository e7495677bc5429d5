package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SplogOptions configures a Splog
type SplogOptions struct {
	// Writer receives console output. Defaults to os.Stdout.
	Writer io.Writer
	// LogFile enables rotating file logging when non-empty.
	LogFile string
	// Debug enables debug output on the console, rendered with tint.
	Debug bool
	// Tool is recorded on every file log record.
	Tool string
}

// Splog is the logger every command writes through. Console records are
// printed bare, or through tint in debug mode; the optional file log keeps
// every level with timestamps, the run id and the tool name.
type Splog struct {
	logger  *slog.Logger
	writer  io.Writer
	console *heldWriter
	file    io.WriteCloser
	runID   string
}

// NewSplog creates a console-only logger. DEBUG in the environment enables
// debug output.
func NewSplog() *Splog {
	splog, _ := NewSplogWithOptions(SplogOptions{Debug: os.Getenv("DEBUG") != ""})
	return splog
}

// NewSplogWithOptions creates a logger with optional file logging
func NewSplogWithOptions(opts SplogOptions) (*Splog, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}
	s := &Splog{
		writer:  writer,
		console: &heldWriter{w: writer},
		runID:   uuid.NewString(),
	}

	var console slog.Handler = &plainHandler{writer: s.console}
	if opts.Debug {
		console = tint.NewHandler(s.console, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			NoColor:    !IsTTY(),
		})
	}
	handlers := []slog.Handler{console}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file := rotatingFile(opts.LogFile)
		s.file = file
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{
			Level:       slog.LevelDebug,
			ReplaceAttr: fileTimestamp,
		}).WithAttrs([]slog.Attr{
			slog.String("run_id", s.runID),
			slog.String("tool", opts.Tool),
		}))
	}

	s.logger = slog.New(teeHandler(handlers))
	return s, nil
}

// rotatingFile opens the lumberjack log. WP_SCAFFOLD_LOG_MAX_SIZE (MB),
// _LOG_MAX_BACKUPS and _LOG_MAX_AGE (days) override the defaults.
func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    envInt(EnvPrefix+"_LOG_MAX_SIZE", 1, 1),
		MaxBackups: envInt(EnvPrefix+"_LOG_MAX_BACKUPS", 2, 0),
		MaxAge:     envInt(EnvPrefix+"_LOG_MAX_AGE", 30, 1),
	}
}

// envInt reads an integer of at least floor from the environment, or returns def
func envInt(name string, def, floor int) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil || n < floor {
		return def
	}
	return n
}

func fileTimestamp(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
	}
	return a
}

// plainHandler prints only the message; debug records are dropped
type plainHandler struct {
	writer io.Writer
}

func (h *plainHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level > slog.LevelDebug
}

func (h *plainHandler) Handle(_ context.Context, record slog.Record) error {
	_, err := fmt.Fprintln(h.writer, record.Message)
	return err
}

func (h *plainHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *plainHandler) WithGroup(string) slog.Handler      { return h }

// heldWriter buffers console output while a spinner or progress view owns
// the terminal and writes it out once the view is released.
type heldWriter struct {
	mu   sync.Mutex
	w    io.Writer
	held bool
	buf  bytes.Buffer
}

func (h *heldWriter) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.held {
		return h.buf.Write(p)
	}
	return h.w.Write(p)
}

func (h *heldWriter) hold(held bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.held = held
	if held || h.buf.Len() == 0 {
		return nil
	}
	_, err := h.buf.WriteTo(h.w)
	return err
}

func (h *heldWriter) isHeld() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.held
}

// teeHandler hands each record to every handler that accepts its level
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range t {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// RunID returns the identifier attached to every file log record of this run
func (s *Splog) RunID() string {
	return s.runID
}

// SetQuiet holds console output back while set; clearing it prints what was
// held, in order. File logging is never held.
func (s *Splog) SetQuiet(quiet bool) {
	_ = s.console.hold(quiet)
}

// IsQuiet reports whether console output is being held
func (s *Splog) IsQuiet() bool {
	return s.console.isHeld()
}

// Writer returns the console writer
func (s *Splog) Writer() io.Writer {
	return s.writer
}

func (s *Splog) log(level slog.Level, msg string) {
	s.logger.Log(context.Background(), level, msg)
}

func sprintf(format string, args []interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Info writes an info message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Info(format string, args ...interface{}) {
	s.log(slog.LevelInfo, sprintf(format, args))
}

// Newline writes an empty console line
func (s *Splog) Newline() {
	_, _ = fmt.Fprintln(s.console)
}

// Warn writes a warning message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Warn(format string, args ...interface{}) {
	s.log(slog.LevelWarn, FormatWarning("⚠️  "+sprintf(format, args)))
}

// Error writes an error message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Error(format string, args ...interface{}) {
	s.log(slog.LevelError, FormatError("❌ "+sprintf(format, args)))
}

// Success writes a success message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Success(format string, args ...interface{}) {
	s.log(slog.LevelInfo, FormatSuccess(sprintf(format, args)))
}

// Debug writes a debug message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Debug(format string, args ...interface{}) {
	s.log(slog.LevelDebug, sprintf(format, args))
}

// Tip writes a tip message
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Tip(format string, args ...interface{}) {
	s.log(slog.LevelInfo, "💡 "+sprintf(format, args))
}

// Close prints any held console output and closes the log file
func (s *Splog) Close() error {
	if err := s.console.hold(false); err != nil {
		return err
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
