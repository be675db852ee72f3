package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	fiblog "github.com/gofiber/fiber/v2/middleware/logger"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

var levelRank = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

type ctxKey string

const (
	RequestIDKey ctxKey = "request_id"
	UserIDKey    ctxKey = "user_id"
	FiberCtxKey  ctxKey = "fiber_ctx"
)

// LogEntry represents a structured log entry in JSON.
type LogEntry struct {
	TimeStamp string            `json:"timestamp"`
	Level     string            `json:"level"`
	RequestID string            `json:"request_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Message   string            `json:"message"`
	Path      string            `json:"path,omitempty"`
	Method    string            `json:"method,omitempty"`
	Status    int               `json:"status,omitempty"`
	Latency   string            `json:"latency,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// Logger manages structured logging with rotation and color
type Logger struct {
	Mu         sync.Mutex
	Format     string
	TimeFormat string
	OutputDir  string
	FileName   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	MinLevel   LogLevel
	Stdout     bool
	Writer     *lumberjack.Logger
	Log        *log.Logger
	FiberLog   fiber.Handler
	Queue      chan LogEntry
	Quit       chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// LoggerOption defines a function to configure the logger.
type LoggerOption func(*Logger)

// NewLogger creates the log directory, opens the rotating file and starts
// the background writer.
func NewLogger(opts ...LoggerOption) (*Logger, error) {
	l := &Logger{
		Format:     "[${time}] ${status} - ${method} ${path} ${latency}\n",
		TimeFormat: time.RFC3339,
		OutputDir:  "./logs",
		FileName:   "foodgram.log",
		MaxSizeMB:  10,
		MaxAgeDays: 7,
		MaxBackups: 5,
		MinLevel:   LevelDebug,
		Stdout:     true,
		Queue:      make(chan LogEntry, 1000),
		Quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}

	if err := os.MkdirAll(l.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l.Writer = &lumberjack.Logger{
		Filename:   filepath.Join(l.OutputDir, l.FileName),
		MaxSize:    l.MaxSizeMB,
		MaxAge:     l.MaxAgeDays,
		MaxBackups: l.MaxBackups,
		Compress:   true,
	}
	l.Log = log.New(l.Writer, "", 0)

	var access io.Writer = l.Writer
	if l.Stdout {
		access = io.MultiWriter(l.Writer, os.Stdout)
	}
	l.FiberLog = fiblog.New(fiblog.Config{
		Format:     l.Format,
		TimeFormat: l.TimeFormat,
		Output:     access,
	})

	go l.Worker()

	return l, nil
}

// WriteEntry writes a structured JSON log entry with color.
func (l *Logger) WriteEntry(entry LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	l.Mu.Lock()
	defer l.Mu.Unlock()

	l.Log.Println(string(data))
	if !l.Stdout {
		return nil
	}

	var colorPrefix string
	switch LogLevel(entry.Level) {
	case LevelDebug:
		colorPrefix = "\033[36m" // Cyan
	case LevelInfo:
		colorPrefix = "\033[32m" // Green
	case LevelWarn:
		colorPrefix = "\033[33m" // Yellow
	case LevelError:
		colorPrefix = "\033[31m" // Red
	default:
		colorPrefix = "\033[0m"
	}
	fmt.Fprintf(os.Stdout, "%s%s\033[0m\n", colorPrefix, string(data))

	return nil
}

// Enabled reports whether entries of the given level are written.
func (l *Logger) Enabled(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.MinLevel]
}

// Middleware returns the Fiber access log middleware.
func (l *Logger) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.WithValue(c.UserContext(), FiberCtxKey, c)
		c.SetUserContext(ctx)
		return l.FiberLog(c)
	}
}

// SetupRoutesContext adds request ID and user ID to the context.
func SetupRoutesContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	reqID := c.Get(fiber.HeaderXRequestID)
	if reqID == "" {
		reqID = fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	c.Set(fiber.HeaderXRequestID, reqID)
	ctx = context.WithValue(ctx, RequestIDKey, reqID)

	if userID, ok := c.Locals("user_id").(uint); ok && userID != 0 {
		ctx = WithUserID(ctx, userID)
	}

	return ctx
}

// WithUserID tags ctx with the authenticated user.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, UserIDKey, fmt.Sprintf("%d", userID))
}

// SetupLogger initializes the logger and adds it to Fiber locals.
func SetupLogger(l *Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("logger", l)
		c.SetUserContext(SetupRoutesContext(c))
		return c.Next()
	}
}

// Close drains the queue and closes the log file. Safe to call twice.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		close(l.Quit)
		<-l.done
		l.Mu.Lock()
		l.Writer.Close()
		l.Mu.Unlock()
	})
}
