package db

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "github.com/SAP/go-hdb/driver"
	_ "github.com/denisenkom/go-mssqldb"
)

type Options struct {
	ConnectTimeout time.Duration
}

// Conn is a single, unpooled database connection. It is opened once and
// closed once; Close on a nil or already closed Conn is a no-op.
type Conn struct {
	db   *sql.DB
	conn *sql.Conn

	closeOnce sync.Once
	closeErr  error
}

// Open performs the handshake for exactly one connection and blocks until the
// driver reports success or failure. The driver's error is returned as is.
func Open(ctx context.Context, driverName, dsn string, opt Options) (*Conn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	if opt.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opt.ConnectTimeout)
		defer cancel()
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Conn{db: db, conn: conn}, nil
}

func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c == nil || c.conn == nil {
		return nil, sql.ErrConnDone
	}
	return c.conn.QueryContext(ctx, query, args...)
}

func (c *Conn) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closeErr = errors.Join(c.conn.Close(), c.db.Close())
	})
	return c.closeErr
}
