// Package logging provides config-driven categorized file-based logging
// for the reachability engine. Logs are written under the configured
// directory with separate files per category. When logging is disabled
// every call is a no-op, so the engine's hot path stays silent in
// production.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot      Category = "boot"      // startup, config resolution
	CategoryStore     Category = "store"     // corpus load and validation
	CategoryBundle    Category = "bundle"    // segmentation and bundle extraction
	CategoryProjector Category = "projector" // page filtering, zone projection
	CategoryEngine    Category = "engine"    // folio classification
	CategoryQuery     Category = "query"     // per-query lifecycle
	CategoryExport    Category = "export"    // fact export
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Options controls the logging subsystem. The caller (usually the CLI)
// maps its config file onto this struct; the package deliberately does
// not read config itself to avoid an import cycle with config.
type Options struct {
	Enabled    bool
	Dir        string
	Level      string // debug, info, warn, error
	JSONFormat bool
	Categories map[string]bool // nil = all categories enabled
}

// StructuredLogEntry is the JSON form of one log line, shaped for the
// repository's ad hoc log-analysis scripts.
type StructuredLogEntry struct {
	Timestamp int64                  `json:"ts"` // Unix milliseconds
	Category  string                 `json:"cat"`
	Level     string                 `json:"lvl"`
	Message   string                 `json:"msg"`
	QueryID   string                 `json:"query,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	opts      Options
	optsMu    sync.RWMutex
	logLevel  int
)

// Initialize sets up the logging directory from the given options.
// Should be called once at startup; calling it again reconfigures the
// subsystem (used by tests).
func Initialize(o Options) error {
	optsMu.Lock()
	opts = o
	switch o.Level {
	case "debug":
		logLevel = LevelDebug
	case "info", "":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	optsMu.Unlock()

	loggersMu.Lock()
	for _, l := range loggers {
		if l.file != nil {
			_ = l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
	loggersMu.Unlock()

	if !o.Enabled {
		return nil
	}
	if o.Dir == "" {
		return fmt.Errorf("logging enabled but no directory configured")
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("logging initialized: dir=%s level=%s json=%v", o.Dir, o.Level, o.JSONFormat)
	return nil
}

// IsEnabled returns whether logging is active at all.
func IsEnabled() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.Enabled
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	optsMu.RLock()
	defer optsMu.RUnlock()

	if !opts.Enabled {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category. Returns a
// no-op logger if logging or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	optsMu.RLock()
	dir := opts.Dir
	optsMu.RUnlock()
	if dir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.log", date, category)
	logPath := filepath.Join(dir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) logJSON(level, msg string) {
	entry := StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}
	l.logger.Printf("%s", data)
}

func (l *Logger) emit(level int, tag, format string, args ...interface{}) {
	if l.logger == nil || logLevel > level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	optsMu.RLock()
	jsonFmt := opts.JSONFormat
	optsMu.RUnlock()
	if jsonFmt {
		l.logJSON(tag, msg)
	} else {
		l.logger.Printf("[%s] %s", tag, msg)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(LevelDebug, "DEBUG", format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(LevelInfo, "INFO", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(LevelWarn, "WARN", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(LevelError, "ERROR", format, args...)
}

// Query logs a per-query line with the query id attached, using the
// structured form when JSON output is enabled.
func (l *Logger) Query(queryID, format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	msg := fmt.Sprintf(format, args...)
	optsMu.RLock()
	jsonFmt := opts.JSONFormat
	optsMu.RUnlock()
	if jsonFmt {
		entry := StructuredLogEntry{
			Timestamp: time.Now().UnixMilli(),
			Category:  string(l.category),
			Level:     "info",
			Message:   msg,
			QueryID:   queryID,
		}
		if data, err := json.Marshal(entry); err == nil {
			l.logger.Printf("%s", data)
			return
		}
	}
	l.logger.Printf("[INFO] query=%s %s", queryID, msg)
}

// =============================================================================
// CONVENIENCE HELPERS
// =============================================================================

// Store logs an info message to the store category.
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreDebug logs a debug message to the store category.
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

// Projector logs a debug message to the projector category.
func Projector(format string, args ...interface{}) {
	Get(CategoryProjector).Debug(format, args...)
}

// Engine logs a debug message to the engine category.
func Engine(format string, args ...interface{}) {
	Get(CategoryEngine).Debug(format, args...)
}

// =============================================================================
// TIMERS
// =============================================================================

// Timer measures the duration of an operation for performance logging.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the elapsed time at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s took %v", t.op, elapsed)
	return elapsed
}
