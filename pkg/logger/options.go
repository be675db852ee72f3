package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LogBuilder builds a log entry with a fluent interface.
type LogBuilder struct {
	Logger *Logger
	Ctx    context.Context
	Level  LogLevel
	Meta   map[string]string
	Fields []interface{}
}

// WithFormat sets the Fiber logger format.
func WithFormat(format string) LoggerOption {
	return func(l *Logger) { l.Format = format }
}

// WithTimeFormat sets the timestamp format.
func WithTimeFormat(timeformat string) LoggerOption {
	return func(l *Logger) { l.TimeFormat = timeformat }
}

// WithOutputDir sets the output directory of Log File.
func WithOutputDir(dir string) LoggerOption {
	return func(l *Logger) { l.OutputDir = dir }
}

// WithFileName sets the active log file name.
func WithFileName(name string) LoggerOption {
	return func(l *Logger) { l.FileName = name }
}

// WithMaxFileSize sets the maximum size of single Log file.
func WithMaxFileSize(size int) LoggerOption {
	return func(l *Logger) { l.MaxSizeMB = size }
}

// WithMaxDays sets the maximum age for the log files.
func WithMaxDays(days int) LoggerOption {
	return func(l *Logger) { l.MaxAgeDays = days }
}

// WithMinLevel drops entries below level.
func WithMinLevel(level LogLevel) LoggerOption {
	return func(l *Logger) {
		if _, ok := levelRank[level]; ok {
			l.MinLevel = level
		}
	}
}

// WithStdout toggles mirroring entries to stdout.
func WithStdout(enabled bool) LoggerOption {
	return func(l *Logger) { l.Stdout = enabled }
}

// Debug starts a debug-level log entry.
func (l *Logger) Debug(ctx context.Context) *LogBuilder {
	return &LogBuilder{Logger: l, Ctx: ctx, Level: LevelDebug}
}

// Info starts an info-level log entry.
func (l *Logger) Info(ctx context.Context) *LogBuilder {
	return &LogBuilder{Logger: l, Ctx: ctx, Level: LevelInfo}
}

// Warn starts a warn-level log entry.
func (l *Logger) Warn(ctx context.Context) *LogBuilder {
	return &LogBuilder{Logger: l, Ctx: ctx, Level: LevelWarn}
}

// Error starts an error-level log entry.
func (l *Logger) Error(ctx context.Context) *LogBuilder {
	return &LogBuilder{Logger: l, Ctx: ctx, Level: LevelError}
}

// WithMeta adds metadata to the log entry.
func (b *LogBuilder) WithMeta(meta map[string]string) *LogBuilder {
	if b.Meta == nil {
		b.Meta = make(map[string]string, len(meta))
	}
	for k, v := range meta {
		b.Meta[k] = v
	}
	return b
}

// WithFields adds key/value pairs to the metadata.
func (b *LogBuilder) WithFields(kv ...interface{}) *LogBuilder {
	if b.Meta == nil {
		b.Meta = make(map[string]string, len(kv)/2)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		b.Meta[fmt.Sprint(kv[i])] = fmt.Sprint(kv[i+1])
	}
	return b
}

// Logs enqueues the entry for the background writer.
func (b *LogBuilder) Logs(msg string) {
	if b.Logger == nil || !b.Logger.Enabled(b.Level) {
		return
	}
	ctx := b.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	entry := LogEntry{
		TimeStamp: time.Now().Format(b.Logger.TimeFormat),
		Level:     string(b.Level),
		Message:   msg,
		Meta:      b.Meta,
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		entry.RequestID = reqID
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		entry.UserID = userID
	}

	if c, ok := ctx.Value(FiberCtxKey).(*fiber.Ctx); ok {
		entry.Path = c.Path()
		entry.Method = c.Method()
		entry.Status = c.Response().StatusCode()
		entry.Latency = time.Since(c.Context().Time()).String()
	}

	select {
	case b.Logger.Queue <- entry:
	case <-b.Logger.Quit:
	}
}

// Worker processes the async logging queue.
func (l *Logger) Worker() {
	defer close(l.done)
	for {
		select {
		case entry := <-l.Queue:
			l.WriteEntry(entry)
		case <-l.Quit:
			for {
				select {
				case entry := <-l.Queue:
					l.WriteEntry(entry)
				default:
					return
				}
			}
		}
	}
}
