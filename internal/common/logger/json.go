package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger is the common interface for result loggers. Both CSVLogger and
// JSONLogger satisfy it, so action handlers do not care which format the
// user picked.
type Logger interface {
	WriteHeader(columns []string) error
	WriteRow(row []string) error
	ShouldWriteHeader() (bool, error)
	Close() error
}

// Format selects the result log file format.
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
)

// ParseLogFormat converts a user-supplied format string to a Format.
// Accepts "csv", "json" and "jsonl" (case-insensitive); empty defaults to CSV.
func ParseLogFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json", "jsonl":
		return FormatJSON, nil
	default:
		return FormatCSV, fmt.Errorf("unknown log format %q (valid: csv, json)", s)
	}
}

// NewLogger creates a result logger of the requested format.
func NewLogger(format Format, toolName, action string) (Logger, error) {
	if format == FormatJSON {
		return NewJSONLogger(toolName, action)
	}
	return NewCSVLogger(toolName, action)
}

// JSONLogger writes results as JSON Lines, one object per row. Unlike CSV,
// the header is not written to the file; it supplies the field names for
// subsequent rows.
type JSONLogger struct {
	writer     *bufio.Writer
	file       *os.File
	toolName   string
	action     string
	columns    []string
	rowCount   int
	lastFlush  time.Time
	flushEvery int
}

// NewJSONLogger creates a new JSON Lines logger for the specified tool and
// action. Filename pattern: %TEMP%\_{toolName}_{action}_{date}.jsonl
func NewJSONLogger(toolName, action string) (*JSONLogger, error) {
	tempDir := os.TempDir()

	dateStr := time.Now().Format("2006-01-02")
	fileName := fmt.Sprintf("_%s_%s_%s.jsonl", toolName, action, dateStr)
	filePath := filepath.Join(tempDir, fileName)

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not create JSON log file: %w", err)
	}

	logger := &JSONLogger{
		writer:     bufio.NewWriter(file),
		file:       file,
		toolName:   toolName,
		action:     action,
		rowCount:   0,
		lastFlush:  time.Now(),
		flushEvery: 10,
	}

	fmt.Printf("Logging to: %s\n\n", filePath)
	return logger, nil
}

// WriteHeader records the column names used as JSON field names for every
// subsequent row. Nothing is written to the file.
func (l *JSONLogger) WriteHeader(columns []string) error {
	l.columns = append([]string(nil), columns...)
	return nil
}

// WriteRow writes one JSON object per row. A timestamp field is added
// automatically. Rows are flushed every N rows or every 5 seconds.
func (l *JSONLogger) WriteRow(row []string) error {
	if l.writer == nil {
		return fmt.Errorf("JSON writer is not initialized")
	}
	if l.columns == nil {
		return fmt.Errorf("WriteHeader must be called before WriteRow")
	}
	if len(row) != len(l.columns) {
		return fmt.Errorf("row has %d values, header has %d columns", len(row), len(l.columns))
	}

	obj := make(map[string]string, len(row)+1)
	obj["timestamp"] = time.Now().Format("2006-01-02 15:04:05")
	for i, col := range l.columns {
		obj[col] = row[i]
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON row: %w", err)
	}
	if _, err := l.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON row: %w", err)
	}

	l.rowCount++

	if l.rowCount%l.flushEvery == 0 || time.Since(l.lastFlush) > 5*time.Second {
		if err := l.writer.Flush(); err != nil {
			return fmt.Errorf("failed to flush JSON log: %w", err)
		}
		l.lastFlush = time.Now()
	}

	return nil
}

// Close flushes buffered rows and closes the file.
func (l *JSONLogger) Close() error {
	if l.writer != nil {
		if err := l.writer.Flush(); err != nil {
			return fmt.Errorf("error flushing JSON log on close: %w", err)
		}
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ShouldWriteHeader reports whether the file is new (empty). Kept for
// interface parity with CSVLogger; JSON rows are self-describing, but action
// handlers still gate WriteHeader on it.
func (l *JSONLogger) ShouldWriteHeader() (bool, error) {
	fileInfo, err := l.file.Stat()
	if err != nil {
		return false, fmt.Errorf("could not stat JSON log file: %w", err)
	}
	return fileInfo.Size() == 0, nil
}
