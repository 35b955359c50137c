package sqlproxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type ServiceDeps struct {
	Connector        Connector
	StatementTimeout time.Duration
	Publisher        Publisher
	PublishTimeout   time.Duration
	Logger           *slog.Logger
}

// Service runs a batch of statements on one connection.
type Service struct {
	connector        Connector
	statementTimeout time.Duration
	publisher        Publisher
	publishTimeout   time.Duration
	log              *slog.Logger
	now              func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		connector:        deps.Connector,
		statementTimeout: deps.StatementTimeout,
		publisher:        deps.Publisher,
		publishTimeout:   deps.PublishTimeout,
		log:              log,
		now:              time.Now,
	}
}

// Run opens one connection, executes req.Queries in order and closes the
// connection before returning, whatever the outcome. The first failing
// statement stops the batch and yields a *StatementError; results of the
// statements before it are discarded.
func (s *Service) Run(ctx context.Context, req *ExecutionRequest) ([]StatementResult, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}

	start := s.now()
	results, err := s.run(ctx, req)
	s.publish(req, err, s.now().Sub(start))

	if err != nil {
		s.log.Error("query batch failed",
			slog.String("server", req.Server),
			slog.String("database", req.Database),
			slog.Any("error", err),
		)
	}
	return results, err
}

func (s *Service) run(ctx context.Context, req *ExecutionRequest) ([]StatementResult, error) {
	conn, err := s.connector.Connect(ctx, req.Credentials)
	if err != nil {
		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			err = &ConnectionError{Err: err}
		}
		return nil, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.log.Warn("closing connection failed", slog.String("server", req.Server), slog.Any("error", err))
		}
	}()

	results := make([]StatementResult, 0, len(req.Queries))
	for i, statement := range req.Queries {
		s.log.Debug(fmt.Sprintf("%s :: %s", req.Server, statement))

		rows, err := executeStatement(ctx, conn, statement, s.statementTimeout)
		if err != nil {
			return nil, &StatementError{Index: i, Err: err}
		}
		results = append(results, rows)
	}
	return results, nil
}

func (s *Service) publish(req *ExecutionRequest, err error, took time.Duration) {
	if s.publisher == nil {
		return
	}

	ctx := context.Background()
	if s.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
	}

	ev := newExecutionEvent(req, err, took, s.now())
	if perr := s.publisher.Publish(ctx, ev); perr != nil {
		s.log.Warn("publishing execution event failed", slog.Any("error", perr))
	}
}
