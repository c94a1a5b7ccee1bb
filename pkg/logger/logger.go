// Package logger is the process-wide leveled logger. Output goes to stdout and,
// once Init is called, to a size-rotated file under the log directory.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu        sync.RWMutex
	appLogger *log.Logger
	logFile   *lumberjack.Logger
)

// Init initializes the file-based logging system.
// Logs are saved in logDir as app-<date>.log and rotated by lumberjack.
func Init(logDir string) error {
	absLogDir, err := filepath.Abs(logDir)
	if err != nil {
		absLogDir = logDir
	}

	if err := os.MkdirAll(absLogDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", absLogDir, err)
	}

	currentDate := time.Now().Format("2006-01-02")

	file := &lumberjack.Logger{
		Filename:   filepath.Join(absLogDir, fmt.Sprintf("app-%s.log", currentDate)),
		MaxSize:    10, // MB
		MaxBackups: 30,
		MaxAge:     30, // days
		Compress:   true,
		LocalTime:  true,
	}

	out := io.MultiWriter(os.Stdout, file)

	mu.Lock()
	appLogger = log.New(out, "", log.LstdFlags)
	logFile = file
	mu.Unlock()

	// gin and gorm write through the default logger too
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)

	Info("Logger initialized, log directory: %s", absLogDir)
	return nil
}

// SetOutput redirects the logger, mainly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	appLogger = log.New(w, "", 0)
}

// Close flushes and closes the current log file
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func printf(level, format string, v ...interface{}) {
	mu.RLock()
	l := appLogger
	mu.RUnlock()

	if l != nil {
		l.Printf("["+level+"] "+format, v...)
	} else {
		log.Printf("["+level+"] "+format, v...)
	}
}

// Info logs info level messages
func Info(format string, v ...interface{}) {
	printf("INFO", format, v...)
}

// Warn logs warning level messages
func Warn(format string, v ...interface{}) {
	printf("WARN", format, v...)
}

// Error logs error level messages
func Error(format string, v ...interface{}) {
	printf("ERROR", format, v...)
}

// Debug logs debug level messages
func Debug(format string, v ...interface{}) {
	printf("DEBUG", format, v...)
}
