package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
)

// FakeDriverName is the database/sql driver name the fake registers under.
const FakeDriverName = "fakesql"

// FakeDB scripts what a fake database answers for one test.
//
// Example usage:
//
//	fake := testutil.NewFakeDB(t)
//	fake.On("SELECT 1", testutil.Rows([]string{"n"}, []driver.Value{int64(1)}))
//	conn, err := db.Open(ctx, testutil.FakeDriverName, fake.DSN(), db.Options{})
type FakeDB struct {
	dsn string

	mu         sync.Mutex
	connectErr error
	blockOpen  bool
	results    map[string]Result
	executed   []string
	opens      int
	closes     int
}

// Result is what one statement returns: one or more result sets, or an error
// raised before any row is produced.
type Result struct {
	Sets  []ResultSet
	Err   error
	Block bool
}

// ResultSet is a list of rows. Err, when set, is raised after the rows.
type ResultSet struct {
	Columns []string
	Rows    [][]driver.Value
	Err     error
}

// Rows builds a single result set Result.
func Rows(columns []string, rows ...[]driver.Value) Result {
	return Result{Sets: []ResultSet{{Columns: columns, Rows: rows}}}
}

// Fails builds a Result whose statement raises err.
func Fails(err error) Result {
	return Result{Err: err}
}

var (
	registerOnce sync.Once
	fakeCounter  atomic.Uint64
	fakes        sync.Map
)

// NewFakeDB registers a fresh script under a unique DSN.
func NewFakeDB(t *testing.T) *FakeDB {
	t.Helper()
	registerOnce.Do(func() {
		sql.Register(FakeDriverName, fakeDriver{})
	})

	f := &FakeDB{
		dsn:     fmt.Sprintf("%s-%d", t.Name(), fakeCounter.Add(1)),
		results: make(map[string]Result),
	}
	fakes.Store(f.dsn, f)
	t.Cleanup(func() { fakes.Delete(f.dsn) })
	return f
}

func (f *FakeDB) DSN() string { return f.dsn }

// On scripts the answer for statement.
func (f *FakeDB) On(statement string, r Result) *FakeDB {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[statement] = r
	return f
}

// FailConnect makes every handshake fail with err.
func (f *FakeDB) FailConnect(err error) *FakeDB {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
	return f
}

// BlockConnect makes the handshake wait until its context is done.
func (f *FakeDB) BlockConnect() *FakeDB {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockOpen = true
	return f
}

// Executed returns the statements submitted so far, in order.
func (f *FakeDB) Executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.executed...)
}

func (f *FakeDB) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *FakeDB) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

type fakeDriver struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) {
	c, err := fakeDriver{}.OpenConnector(name)
	if err != nil {
		return nil, err
	}
	return c.Connect(context.Background())
}

func (d fakeDriver) OpenConnector(name string) (driver.Connector, error) {
	v, ok := fakes.Load(name)
	if !ok {
		return nil, fmt.Errorf("fakesql: unknown dsn %q", name)
	}
	return &fakeConnector{db: v.(*FakeDB), drv: d}, nil
}

type fakeConnector struct {
	db  *FakeDB
	drv fakeDriver
}

func (c *fakeConnector) Connect(ctx context.Context) (driver.Conn, error) {
	c.db.mu.Lock()
	connectErr, block := c.db.connectErr, c.db.blockOpen
	c.db.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if connectErr != nil {
		return nil, connectErr
	}

	c.db.mu.Lock()
	c.db.opens++
	c.db.mu.Unlock()
	return &fakeConn{db: c.db}, nil
}

func (c *fakeConnector) Driver() driver.Driver { return c.drv }

type fakeConn struct {
	db     *FakeDB
	closed bool
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("fakesql: prepare not supported")
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakesql: transactions not supported")
}

func (c *fakeConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.db.mu.Lock()
	c.db.closes++
	c.db.mu.Unlock()
	return nil
}

func (c *fakeConn) QueryContext(ctx context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.db.mu.Lock()
	c.db.executed = append(c.db.executed, query)
	r, ok := c.db.results[query]
	c.db.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("fakesql: unscripted statement %q", query)
	}
	if r.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.Err != nil {
		return nil, r.Err
	}
	if len(r.Sets) == 0 {
		return &fakeRows{sets: []ResultSet{{}}}, nil
	}
	return &fakeRows{sets: r.Sets}, nil
}

type fakeRows struct {
	sets []ResultSet
	set  int
	row  int
}

func (r *fakeRows) Columns() []string { return r.sets[r.set].Columns }

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	cur := r.sets[r.set]
	if r.row >= len(cur.Rows) {
		if cur.Err != nil {
			return cur.Err
		}
		return io.EOF
	}
	copy(dest, cur.Rows[r.row])
	r.row++
	return nil
}

func (r *fakeRows) HasNextResultSet() bool { return r.set+1 < len(r.sets) }

func (r *fakeRows) NextResultSet() error {
	if !r.HasNextResultSet() {
		return io.EOF
	}
	r.set++
	r.row = 0
	return nil
}
