package logger

import (
	"context"
	"sync"
)

type contextKey struct{}

var loggerKey = contextKey{}

var (
	defaultLogger   = New(Config{})
	defaultLoggerMu sync.RWMutex
)

// SetDefault replaces the logger used when a context carries none.
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultLoggerMu.Lock()
	defaultLogger = l
	defaultLoggerMu.Unlock()
}

func Default() *Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// WithContext returns a new context with the logger attached.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the context logger or the default one.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok {
			return l
		}
	}
	return Default()
}

func WithField(ctx context.Context, key string, value any) context.Context {
	return FromContext(ctx).WithField(key, value).WithContext(ctx)
}

func WithFields(ctx context.Context, fields Fields) context.Context {
	return FromContext(ctx).WithFields(fields).WithContext(ctx)
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldRequestID, id)
}

func SetAnalysisID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldAnalysisID, id)
}

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) string {
	s, _ := FromContext(ctx).Data[FieldRequestID].(string)
	return s
}
