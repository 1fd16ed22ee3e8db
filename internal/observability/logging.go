package observability

import (
	"context"
	"log/slog"
	"os"
)

// GlobalLogger is the default logger for components below the HTTP layer.
var GlobalLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	collection string
	logger     *slog.Logger
}

// NewRepoLogger creates a new RepoLogger for the given table or collection.
func NewRepoLogger(collection string) *RepoLogger {
	return &RepoLogger{collection: collection, logger: GlobalLogger}
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string, attrs ...any) {
	args := append([]any{
		slog.String("collection", l.collection),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}, attrs...)
	l.logger.ErrorContext(ctx, "repository error", args...)
}

// WSLogger provides structured logging for WebSocket operations.
type WSLogger struct {
	hubName string
	logger  *slog.Logger
}

// NewWSLogger creates a new WSLogger for the given hub.
func NewWSLogger(hubName string) *WSLogger {
	return &WSLogger{hubName: hubName, logger: GlobalLogger}
}

// LogConnect logs a WebSocket connection event.
func (l *WSLogger) LogConnect(ctx context.Context, handle string) {
	l.logger.InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hubName),
		slog.String("user_handle", handle),
	)
}

// LogDisconnect logs a WebSocket disconnection event.
func (l *WSLogger) LogDisconnect(ctx context.Context, handle, reason string) {
	l.logger.InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hubName),
		slog.String("user_handle", handle),
		slog.String("reason", reason),
	)
}

// LogLifecycle logs a WebSocket hub lifecycle event.
func (l *WSLogger) LogLifecycle(ctx context.Context, event string, attrs ...any) {
	args := append([]any{
		slog.String("hub", l.hubName),
		slog.String("event", event),
	}, attrs...)
	l.logger.InfoContext(ctx, "websocket lifecycle", args...)
}
