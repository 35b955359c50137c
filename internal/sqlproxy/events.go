package sqlproxy

import (
	"context"
	"errors"
	"time"
)

// Publisher receives one event per executed batch.
type Publisher interface {
	Publish(ctx context.Context, payload any) error
}

// ExecutionEvent describes one batch execution. It never carries
// credentials or statement text.
type ExecutionEvent struct {
	Server          string `json:"server"`
	Database        string `json:"database"`
	Dialect         string `json:"dialect"`
	Statements      int    `json:"statements"`
	Successful      bool   `json:"successful"`
	ErrorKind       string `json:"errorKind,omitempty"`
	FailedStatement *int   `json:"failedStatement,omitempty"`
	DurationMs      int64  `json:"durationMs"`
	At              string `json:"at"`
}

func newExecutionEvent(req *ExecutionRequest, err error, took time.Duration, now time.Time) ExecutionEvent {
	ev := ExecutionEvent{
		Server:     req.Server,
		Database:   req.Database,
		Dialect:    req.Dialect,
		Statements: len(req.Queries),
		Successful: err == nil,
		DurationMs: took.Milliseconds(),
		At:         now.UTC().Format(time.RFC3339Nano),
	}

	var stmtErr *StatementError
	var connErr *ConnectionError
	switch {
	case err == nil:
	case errors.As(err, &stmtErr):
		ev.ErrorKind = kindStatement
		idx := stmtErr.Index
		ev.FailedStatement = &idx
	case errors.As(err, &connErr):
		ev.ErrorKind = kindConnection
	default:
		ev.ErrorKind = kindInternal
	}
	return ev
}
