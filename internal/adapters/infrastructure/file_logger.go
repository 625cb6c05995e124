package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cardbinder.app/internal/ports"
)

// FileLoggerAdapter writes one JSON object per line to a file.
// It backs the catalog request log so provider traffic can be inspected apart from the service log.
type FileLoggerAdapter struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileLoggerAdapter opens logPath for appending, creating parent directories as needed
func NewFileLoggerAdapter(logPath string) (*FileLoggerAdapter, error) {
	if logPath == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileLoggerAdapter{file: file}, nil
}

func (f *FileLoggerAdapter) Debug(msg string, fields ...ports.Field) {
	f.write("DEBUG", msg, fields)
}

func (f *FileLoggerAdapter) Info(msg string, fields ...ports.Field) {
	f.write("INFO", msg, fields)
}

func (f *FileLoggerAdapter) Warn(msg string, fields ...ports.Field) {
	f.write("WARN", msg, fields)
}

func (f *FileLoggerAdapter) Error(msg string, fields ...ports.Field) {
	f.write("ERROR", msg, fields)
}

// Close flushes and closes the file; later writes are dropped
func (f *FileLoggerAdapter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

func (f *FileLoggerAdapter) write(level, msg string, fields []ports.Field) {
	entry := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"level":     level,
		"message":   msg,
	}
	for _, field := range fields {
		if err, ok := field.Value.(error); ok {
			entry[field.Key] = err.Error()
			continue
		}
		entry[field.Key] = field.Value
	}

	line, err := json.Marshal(entry)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":"ERROR","message":"failed to marshal log entry: %v"}`, err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return
	}
	if _, err := f.file.Write(append(line, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
	}
}
