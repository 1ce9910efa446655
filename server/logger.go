package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"
)

// Logger sends log messages to the client, honouring the level set with logging/setLevel.
type Logger struct {
	name     string
	mux      sync.RWMutex
	level    schema.LoggingLevel
	notifier transport.Notifier
}

// SetLevel sets the minimum level sent to the client.
func (l *Logger) SetLevel(level schema.LoggingLevel) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.level = level
}

// Level returns the minimum level sent to the client.
func (l *Logger) Level() schema.LoggingLevel {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return l.level
}

// Log sends data as a notifications/message unless level is below the client's level.
func (l *Logger) Log(ctx context.Context, level schema.LoggingLevel, data any) error {
	minimum := l.Level()
	if minimum.Ordinal() > level.Ordinal() {
		//skip logging since level is too verbose
		return nil
	}
	notification := &jsonrpc.Notification{Method: schema.MethodNotificationMessage}
	params := schema.LoggingMessageNotificationParams{
		Level:  level,
		Logger: &l.name,
		Data:   data,
	}
	var err error
	notification.Params, err = json.Marshal(params)
	if err != nil {
		return err
	}
	return l.notifier.Notify(ctx, notification)
}

func (l *Logger) Debug(ctx context.Context, data interface{}) error {
	return l.Log(ctx, schema.LoggingLevelDebug, data)
}

func (l *Logger) Info(ctx context.Context, data interface{}) error {
	return l.Log(ctx, schema.Info, data)
}

func (l *Logger) Error(ctx context.Context, data interface{}) error {
	return l.Log(ctx, schema.Err, data)
}

// NewLogger creates a logger sending notifications through notifier.
func NewLogger(name string, level schema.LoggingLevel, notifier transport.Notifier) *Logger {
	return &Logger{
		name:     name,
		level:    level,
		notifier: notifier,
	}
}
