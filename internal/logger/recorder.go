package logger

import (
	"encoding/json"
)

const defaultRecorderSize = 1000

// LogEntry is a parsed log line kept by the Recorder.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Recorder implements io.Writer and keeps the most recent zerolog JSON
// entries in memory.
type Recorder struct {
	buffer *RingBuffer[LogEntry]
}

// NewRecorder creates a recorder holding up to size entries.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = defaultRecorderSize
	}
	return &Recorder{buffer: NewRingBuffer[LogEntry](size)}
}

// Write implements io.Writer. It receives JSON log entries from zerolog.
func (r *Recorder) Write(p []byte) (n int, err error) {
	n = len(p)

	entry, parseErr := parseLogEntry(p)
	if parseErr != nil {
		return n, nil //nolint:nilerr // Silently ignore malformed log entries
	}

	r.buffer.Push(entry)
	return n, nil
}

// Recent returns the buffered entries, oldest first, optionally filtered
// to levels at or above minLevel.
func (r *Recorder) Recent(minLevel string) []LogEntry {
	all := r.buffer.GetAll()
	if minLevel == "" {
		return all
	}
	threshold := parseLevel(minLevel)
	out := make([]LogEntry, 0, len(all))
	for _, e := range all {
		if parseLevel(e.Level) >= threshold {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of buffered entries.
func (r *Recorder) Len() int {
	return r.buffer.Len()
}

// parseLogEntry parses a zerolog JSON entry into a LogEntry.
func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{
		Fields: make(map[string]any),
	}

	if ts, ok := raw["time"].(string); ok {
		entry.Timestamp = ts
		delete(raw, "time")
	}

	if level, ok := raw["level"].(string); ok {
		entry.Level = level
		delete(raw, "level")
	}

	if component, ok := raw["component"].(string); ok {
		entry.Component = component
		delete(raw, "component")
	}

	if msg, ok := raw["message"].(string); ok {
		entry.Message = msg
		delete(raw, "message")
	}

	for k, v := range raw {
		entry.Fields[k] = v
	}

	return entry, nil
}
