// Package logger provides the leveled logger shared by every deckd component.
//
// A Logger is constructed once at process start and passed explicitly to the
// components that need it. All writes to the underlying sink are serialized.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (case-insensitive) to a Level.
// Unknown names fall back to LevelInfo.
func ParseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format selects the line encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// sink is the shared, mutex-guarded writer. Child loggers created with With
// share the sink of their parent.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
}

// Logger writes leveled messages to a single sink.
type Logger struct {
	sink   *sink
	level  Level
	format Format
	fields []field
	now    func() time.Time
}

type field struct {
	key   string
	value any
}

// New creates a Logger writing to w.
func New(w io.Writer, level Level, format Format) *Logger {
	if format != FormatJSON {
		format = FormatText
	}
	return &Logger{
		sink:   &sink{out: w},
		level:  level,
		format: format,
		now:    time.Now,
	}
}

// Open creates a Logger for the given output destination: "stdout", "stderr"
// or a file path. Files are opened in append mode.
func Open(output, level, format string) (*Logger, error) {
	var (
		w      io.Writer
		closer io.Closer
	)

	switch strings.ToLower(output) {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", output, err)
		}
		w = f
		closer = f
	}

	l := New(w, ParseLevel(level), Format(strings.ToLower(format)))
	l.sink.closer = closer
	return l, nil
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, LevelError+1, FormatText)
}

// With returns a child logger that attaches key=value to every message.
func (l *Logger) With(key string, value any) *Logger {
	fields := make([]field, len(l.fields), len(l.fields)+1)
	copy(fields, l.fields)
	fields = append(fields, field{key: key, value: value})

	return &Logger{
		sink:   l.sink,
		level:  l.level,
		format: l.format,
		fields: fields,
		now:    l.now,
	}
}

// Level returns the minimum level this logger emits.
func (l *Logger) Level() Level {
	return l.level
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

// Close releases the sink if it was opened from a file path.
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.closer == nil {
		return nil
	}
	err := l.sink.closer.Close()
	l.sink.closer = nil
	return err
}

func (l *Logger) log(level Level, format string, v ...any) {
	if level < l.level {
		return
	}

	message := fmt.Sprintf(format, v...)
	timestamp := l.now()

	var line string
	if l.format == FormatJSON {
		line = l.jsonLine(timestamp, level, message)
	} else {
		line = l.textLine(timestamp, level, message)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.out, line)
}

func (l *Logger) textLine(ts time.Time, level Level, message string) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(ts.Format("2006-01-02 15:04:05"))
	b.WriteString("] [")
	b.WriteString(level.String())
	b.WriteString("] ")
	for _, f := range l.fields {
		fmt.Fprintf(&b, "%s=%v ", f.key, f.value)
	}
	b.WriteString(message)
	b.WriteString("\n")
	return b.String()
}

func (l *Logger) jsonLine(ts time.Time, level Level, message string) string {
	entry := make(map[string]any, len(l.fields)+3)
	for _, f := range l.fields {
		entry[f.key] = f.value
	}
	entry["time"] = ts.Format(time.RFC3339)
	entry["level"] = level.String()
	entry["msg"] = message

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"time":%q,"level":"ERROR","msg":"log encode failed: %v"}`+"\n",
			ts.Format(time.RFC3339), err)
	}
	return string(data) + "\n"
}

func (l *Logger) Debug(format string, v ...any) {
	l.log(LevelDebug, format, v...)
}

func (l *Logger) Info(format string, v ...any) {
	l.log(LevelInfo, format, v...)
}

func (l *Logger) Warn(format string, v ...any) {
	l.log(LevelWarn, format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.log(LevelError, format, v...)
}
