// Package logger writes leveled, structured log lines to a rotating file
// and optionally to stderr. It is a process-wide singleton: Init once,
// then call the package-level Debug/Info/Warn/Error functions.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level is the log severity.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel reads a level name, case-insensitive. Unknown names fall
// back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Field is one key-value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config selects the minimum level, the log file (empty disables file
// logging) and whether lines are mirrored to stderr.
type Config struct {
	Level    Level
	FilePath string
	Console  bool
}

// Rotation limits for the log file.
const (
	maxLogSize = 10 * 1024 * 1024
	maxLogAge  = 7 * 24 * time.Hour
	maxBackups = 5
)

type fileLogger struct {
	config  Config
	file    *os.File
	mu      sync.Mutex
	writers []io.Writer
}

var (
	global *fileLogger
	once   sync.Once
)

// Init sets up the global logger. Only the first call has any effect.
func Init(config Config) error {
	var err error
	once.Do(func() {
		l := &fileLogger{config: config}
		if err = l.open(); err != nil {
			return
		}
		global = l
	})
	return err
}

func (l *fileLogger) open() error {
	l.writers = l.writers[:0]

	if l.config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(l.config.FilePath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(l.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		l.writers = append(l.writers, file)
	}

	if l.config.Console {
		l.writers = append(l.writers, os.Stderr)
	}
	return nil
}

// rotateIfNeeded rolls the log file over when it grows past maxLogSize or
// sits untouched longer than maxLogAge. Callers hold l.mu.
func (l *fileLogger) rotateIfNeeded() error {
	if l.file == nil {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < maxLogSize && time.Since(info.ModTime()) <= maxLogAge {
		return nil
	}

	l.file.Close()
	for i := maxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", l.config.FilePath, i),
			fmt.Sprintf("%s.%d", l.config.FilePath, i+1))
	}
	if _, err := os.Stat(l.config.FilePath); err == nil {
		if err := os.Rename(l.config.FilePath, l.config.FilePath+".1"); err != nil {
			return err
		}
	}

	l.file = nil
	return l.open()
}

func (l *fileLogger) log(level Level, msg string, fields []Field) {
	if level < l.config.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.rotateIfNeeded()

	caller := "???"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s: %s",
		time.Now().Format("2006-01-02 15:04:05.000"), level, caller, msg)
	if len(fields) > 0 {
		b.WriteString(" |")
		for _, f := range fields {
			fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
		}
	}
	b.WriteByte('\n')

	for _, w := range l.writers {
		w.Write([]byte(b.String()))
	}
}

// Debug logs at DEBUG level.
func Debug(msg string, fields ...Field) {
	if global != nil {
		global.log(DEBUG, msg, fields)
	}
}

// Info logs at INFO level.
func Info(msg string, fields ...Field) {
	if global != nil {
		global.log(INFO, msg, fields)
	}
}

// Warn logs at WARN level.
func Warn(msg string, fields ...Field) {
	if global != nil {
		global.log(WARN, msg, fields)
	}
}

// Error logs at ERROR level.
func Error(msg string, fields ...Field) {
	if global != nil {
		global.log(ERROR, msg, fields)
	}
}

// Close closes the log file of the global logger.
func Close() error {
	if global == nil {
		return nil
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.file != nil {
		return global.file.Close()
	}
	return nil
}
