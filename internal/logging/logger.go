// Package logging provides config-driven categorized file logging for the
// pipeline. Each phase writes to its own file under .powermap/logs/; when
// debug mode is off in .powermap/config.yaml nothing is written at all.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Category identifies a pipeline phase for log routing.
type Category string

const (
	CategoryBoot         Category = "boot"
	CategoryExtract      Category = "extract"
	CategoryEthnicity    Category = "ethnicity"
	CategoryDemographics Category = "demographics"
	CategoryElections    Category = "elections"
	CategoryIssues       Category = "issues"
	CategoryTimeline     Category = "timeline"
	CategoryJoin         Category = "join"
	CategoryValidate     Category = "validate"
	CategoryStore        Category = "store"
	CategoryDist         Category = "dist"
	CategoryServe        Category = "serve"
	CategorySnapshot     Category = "snapshot"
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// loggingConfig mirrors the logging section of the workspace config to
// avoid importing internal/config from here.
type loggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

type configFile struct {
	Logging loggingConfig `yaml:"logging"`
}

// Logger writes to one category's log file. A Logger with a nil inner
// logger is a no-op.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	mu      sync.RWMutex
	loggers = make(map[Category]*Logger)
	logsDir string
	cfg     loggingConfig

	// logLevel is read on every log call, concurrently with config
	// reloads, so it is atomic rather than guarded by mu.
	logLevel atomic.Int32
)

func init() {
	logLevel.Store(LevelInfo)
}

// Initialize loads the logging section of the workspace config and, when
// debug mode is enabled, creates the logs directory. Call once at startup.
func Initialize(workspace string) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	mu.Lock()
	logsDir = filepath.Join(workspace, ".powermap", "logs")
	loadConfigLocked(filepath.Join(workspace, ".powermap", "config.yaml"))
	debug := cfg.DebugMode
	mu.Unlock()

	if !debug {
		return nil
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	Get(CategoryBoot).Info("logging initialized, level=%s", cfg.Level)
	return nil
}

func loadConfigLocked(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// No config means production mode: stay silent.
		cfg = loggingConfig{}
		return
	}
	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] bad config %s: %v\n", path, err)
		return
	}
	cfg = cf.Logging
	switch cfg.Level {
	case "debug":
		logLevel.Store(LevelDebug)
	case "warn", "warning":
		logLevel.Store(LevelWarn)
	case "error":
		logLevel.Store(LevelError)
	default:
		logLevel.Store(LevelInfo)
	}
}

func enabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if !cfg.DebugMode || logsDir == "" {
		return false
	}
	if cfg.Categories == nil {
		return true
	}
	on, ok := cfg.Categories[string(category)]
	return !ok || on
}

// Get returns the logger for a category, creating its file on first use.
// Disabled categories get a no-op logger.
func Get(category Category) *Logger {
	if !enabled(category) {
		return &Logger{category: category}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	name := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	file, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] open %s: %v\n", name, err)
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

func (l *Logger) Debug(format string, args ...any) {
	if l.logger == nil || logLevel.Load() > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] "+format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	if l.logger == nil || logLevel.Load() > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] "+format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	if l.logger == nil || logLevel.Load() > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] "+format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] "+format, args...)
}

// CloseAll closes every open log file. Call at shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}
