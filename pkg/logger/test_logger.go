package logger

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a logger implementation for testing that captures all log messages
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	zerolog  *zerolog.Logger
	fields   map[string]interface{}
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nopLogger := zerolog.Nop()
	return &TestLogger{
		messages: make([]LogMessage, 0),
		zerolog:  &nopLogger,
		fields:   make(map[string]interface{}),
	}
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	l.messages = append(l.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  merged,
	})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// WithField returns a logger with an additional field
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger with additional fields, sharing the captured messages
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &testLoggerView{parent: l, fields: merged}
}

// WithError returns a logger with an error field
func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// GetZerolog returns a no-op zerolog instance
func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// Messages returns a copy of all captured messages
func (l *TestLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasMessage reports whether any captured message at the given level contains substr
func (l *TestLogger) HasMessage(level, substr string) bool {
	for _, m := range l.Messages() {
		if m.Level == level && strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

// testLoggerView is a field-scoped view over a TestLogger
type testLoggerView struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (v *testLoggerView) log(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(v.fields)+len(fields))
	for k, val := range v.fields {
		merged[k] = val
	}
	for k, val := range fields {
		merged[k] = val
	}
	v.parent.log(level, msg, merged)
}

func (v *testLoggerView) Debug(msg string) { v.log("DEBUG", msg, nil) }
func (v *testLoggerView) Info(msg string)  { v.log("INFO", msg, nil) }
func (v *testLoggerView) Warn(msg string)  { v.log("WARN", msg, nil) }
func (v *testLoggerView) Error(msg string) { v.log("ERROR", msg, nil) }
func (v *testLoggerView) Fatal(msg string) { v.log("FATAL", msg, nil) }

func (v *testLoggerView) DebugWithFields(msg string, fields map[string]interface{}) {
	v.log("DEBUG", msg, fields)
}

func (v *testLoggerView) InfoWithFields(msg string, fields map[string]interface{}) {
	v.log("INFO", msg, fields)
}

func (v *testLoggerView) WarnWithFields(msg string, fields map[string]interface{}) {
	v.log("WARN", msg, fields)
}

func (v *testLoggerView) ErrorWithFields(msg string, fields map[string]interface{}) {
	v.log("ERROR", msg, fields)
}

func (v *testLoggerView) WithField(key string, value interface{}) Logger {
	return v.WithFields(map[string]interface{}{key: value})
}

func (v *testLoggerView) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(v.fields)+len(fields))
	for k, val := range v.fields {
		merged[k] = val
	}
	for k, val := range fields {
		merged[k] = val
	}
	return &testLoggerView{parent: v.parent, fields: merged}
}

func (v *testLoggerView) WithError(err error) Logger {
	if err == nil {
		return v
	}
	return v.WithField("error", err.Error())
}

func (v *testLoggerView) GetZerolog() *zerolog.Logger {
	return v.parent.zerolog
}
