package sqlproxy

import (
	"context"
	"database/sql"
	"time"

	"query-proxy/pkg/db"
)

// Connection is one live, exclusively owned database connection.
type Connection interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Close() error
}

// Connector establishes connections from request credentials.
type Connector interface {
	Connect(ctx context.Context, creds Credentials) (Connection, error)
}

// Repository opens one unpooled connection per call through database/sql.
type Repository struct {
	opts db.Options
}

func NewRepository(opts db.Options) *Repository {
	return &Repository{opts: opts}
}

// Connect blocks until the driver finishes the handshake. Failures are
// returned as *ConnectionError carrying the driver's cause unchanged.
func (r *Repository) Connect(ctx context.Context, creds Credentials) (Connection, error) {
	driverName, dsn, err := db.BuildDSN(creds.target())
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	conn, err := db.Open(ctx, driverName, dsn, r.opts)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return conn, nil
}

// executeStatement runs one statement and collects every row of every result
// set it produced. Nothing is returned for a statement that fails.
func executeStatement(ctx context.Context, conn Connection, statement string, timeout time.Duration) (StatementResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rows, err := conn.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanRows(rows *sql.Rows) (StatementResult, error) {
	result := make(StatementResult, 0)

	for {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			raw := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range raw {
				ptrs[i] = &raw[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return nil, err
			}
			result = append(result, toRowResult(raw))
		}

		if err := rows.Err(); err != nil {
			return nil, err
		}

		if !rows.NextResultSet() {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
