package logging

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ErrAuditPathEmpty = errors.New("audit log path cannot be empty")
)

// Audit records every user query, response, source list and crisis event of a
// session as timestamped lines. All entries carry the session ID.
type Audit struct {
	logger  *zap.Logger
	session string
}

// OpenAudit opens (appending) the audit log file at path.
func OpenAudit(path string) (*Audit, error) {
	if path == "" {
		return nil, ErrAuditPathEmpty
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding:         "console",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return NewAudit(logger), nil
}

// NewAudit wraps an existing logger. A nil logger discards all entries.
func NewAudit(logger *zap.Logger) *Audit {
	id := uuid.NewString()
	return &Audit{
		logger:  OrNop(logger).With(zap.String("session", id)),
		session: id,
	}
}

// SessionID returns the ID attached to every entry.
func (a *Audit) SessionID() string {
	return a.session
}

// Query records a user question.
func (a *Audit) Query(question string) {
	a.logger.Info("User Query", zap.String("query", question))
}

// Crisis records a crisis keyword match. Logged at warn level.
func (a *Audit) Crisis(keyword string) {
	a.logger.Warn("Crisis Keyword Detected", zap.String("keyword", keyword))
}

// Response records the text returned to the user.
func (a *Audit) Response(text string) {
	a.logger.Info("Mentor Response", zap.String("response", text))
}

// Sources records the chunk IDs that grounded a response.
func (a *Audit) Sources(ids []string) {
	a.logger.Info("Sources", zap.Strings("sources", ids))
}

// Close flushes the underlying logger.
func (a *Audit) Close() error {
	return a.logger.Sync()
}
