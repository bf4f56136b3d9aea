// audit.go

// Package audit is an append-only sink for security-relevant events.
// The core calls into it and never reads back.
package audit

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

const (
	EventAdminLogin     = "admin.login"
	EventAdminLoginFail = "admin.login.failed"
	EventAdminLocked    = "admin.login.locked"
	EventAdminBootstrap = "admin.bootstrap"
	EventAdminCreated   = "admin.created"
	EventAdminDeleted   = "admin.deleted"
)

type Logger struct {
	logger *slog.Logger
	file   *os.File
}

// New writes JSON lines to filePath, or to stdout when filePath is
// empty.
func New(filePath string) (*Logger, error) {
	if filePath == "" {
		return &Logger{
			logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		}, nil
	}

	f, err := os.OpenFile(
		filePath,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0o600,
	)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	return &Logger{
		logger: slog.New(slog.NewJSONHandler(f, nil)),
		file:   f,
	}, nil
}

func (l *Logger) Record(event string, attrs ...any) {
	args := append([]any{
		"event", event,
		"at", time.Now().UTC().Format(time.RFC3339),
	}, attrs...)
	l.logger.Info("audit", args...)
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
