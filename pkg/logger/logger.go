package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus to provide structured, service-scoped logging.
type Logger struct {
	entry *logrus.Entry
}

// Init configures the global logrus instance. The JSON formatter keeps the
// output machine-parseable for log collection.
func Init(level logrus.Level) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(level)
}

// ParseLevel maps a config string to a logrus level, defaulting to Info.
func ParseLevel(s string) logrus.Level {
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// New creates a Logger scoped to a service name.
func New(serviceName string) *Logger {
	return &Logger{
		entry: logrus.WithFields(logrus.Fields{
			"service_name": serviceName,
		}),
	}
}

// WithField returns a Logger carrying an extra structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithPayload attaches custom business data to the log entry.
func (l *Logger) WithPayload(payload map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithField("payload", payload)}
}

// Info logs an info-level message.
func (l *Logger) Info(message string) {
	l.entry.Info(message)
}

// Warn logs a warning-level message.
func (l *Logger) Warn(message string) {
	l.entry.Warn(message)
}

// Error logs an error-level message.
func (l *Logger) Error(message string) {
	l.entry.Error(message)
}

// Debug logs a debug-level message.
func (l *Logger) Debug(message string) {
	l.entry.Debug(message)
}

// Fatal logs a fatal-level message and terminates the process.
func (l *Logger) Fatal(message string) {
	l.entry.Fatal(message)
}
