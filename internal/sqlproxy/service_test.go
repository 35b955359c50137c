package sqlproxy

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-proxy/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ExecutionEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload.(ExecutionEvent))
	return p.err
}

func newTestRequest(queries ...string) *ExecutionRequest {
	return &ExecutionRequest{
		Credentials: Credentials{
			Dialect:  "mssql",
			Server:   "db.local",
			Port:     1433,
			Database: "sales",
			Username: "sa",
			Password: "secret",
		},
		Queries: queries,
	}
}

func TestServiceRunPreservesOrder(t *testing.T) {
	fake := testutil.NewFakeDB(t).
		On("SELECT 'a'", testutil.Rows([]string{"v"}, []driver.Value{"a"})).
		On("SELECT 'b'", testutil.Rows([]string{"v"}, []driver.Value{"b"}, []driver.Value{"bb"})).
		On("SELECT 'c'", testutil.Rows([]string{"v"}, []driver.Value{"c"}))
	connector := &fakeConnector{fake: fake}
	pub := &recordingPublisher{}
	svc := NewService(ServiceDeps{Connector: connector, Publisher: pub})

	results, err := svc.Run(context.Background(), newTestRequest("SELECT 'a'", "SELECT 'b'", "SELECT 'c'"))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, StatementResult{{"a"}}, results[0])
	assert.Equal(t, StatementResult{{"b"}, {"bb"}}, results[1])
	assert.Equal(t, StatementResult{{"c"}}, results[2])

	assert.Equal(t, []string{"SELECT 'a'", "SELECT 'b'", "SELECT 'c'"}, fake.Executed())
	assert.Equal(t, 1, connector.calls)
	assert.Equal(t, "db.local", connector.creds.Server)
	assert.Equal(t, 1, fake.Opens())
	assert.Equal(t, 1, fake.Closes())

	require.Len(t, pub.events, 1)
	assert.True(t, pub.events[0].Successful)
	assert.Equal(t, 3, pub.events[0].Statements)
	assert.Empty(t, pub.events[0].ErrorKind)
}

func TestServiceRunStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("Invalid object name 'missing'")
	fake := testutil.NewFakeDB(t).
		On("q0", testutil.Rows([]string{"v"}, []driver.Value{int64(0)})).
		On("q1", testutil.Rows([]string{"v"}, []driver.Value{int64(1)})).
		On("q2", testutil.Fails(boom)).
		On("q3", testutil.Rows([]string{"v"}, []driver.Value{int64(3)}))
	pub := &recordingPublisher{}
	svc := NewService(ServiceDeps{Connector: &fakeConnector{fake: fake}, Publisher: pub})

	results, err := svc.Run(context.Background(), newTestRequest("q0", "q1", "q2", "q3"))
	require.Nil(t, results)

	var stmtErr *StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, 2, stmtErr.Index)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"q0", "q1", "q2"}, fake.Executed())
	assert.Equal(t, 1, fake.Closes())

	require.Len(t, pub.events, 1)
	assert.False(t, pub.events[0].Successful)
	assert.Equal(t, "statement", pub.events[0].ErrorKind)
	require.NotNil(t, pub.events[0].FailedStatement)
	assert.Equal(t, 2, *pub.events[0].FailedStatement)
}

func TestServiceRunEmptyBatchStillConnects(t *testing.T) {
	fake := testutil.NewFakeDB(t)
	svc := NewService(ServiceDeps{Connector: &fakeConnector{fake: fake}})

	results, err := svc.Run(context.Background(), newTestRequest())
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Empty(t, results)
	assert.Equal(t, 1, fake.Opens())
	assert.Equal(t, 1, fake.Closes())
}

func TestServiceRunConnectionFailure(t *testing.T) {
	loginErr := errors.New("Login failed for user 'sa'.")
	fake := testutil.NewFakeDB(t).FailConnect(loginErr)
	pub := &recordingPublisher{}
	svc := NewService(ServiceDeps{Connector: &fakeConnector{fake: fake}, Publisher: pub})

	_, err := svc.Run(context.Background(), newTestRequest("SELECT 1"))

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.ErrorIs(t, err, loginErr)
	assert.Empty(t, fake.Executed())
	assert.Zero(t, fake.Closes())
	require.Len(t, pub.events, 1)
	assert.Equal(t, "connection", pub.events[0].ErrorKind)
}

type plainErrConnector struct{ err error }

func (c plainErrConnector) Connect(context.Context, Credentials) (Connection, error) {
	return nil, c.err
}

func TestServiceRunWrapsUntypedConnectErrors(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	svc := NewService(ServiceDeps{Connector: plainErrConnector{err: cause}})

	_, err := svc.Run(context.Background(), newTestRequest("SELECT 1"))

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Same(t, cause, connErr.Err)
}

func TestServiceRunPublishFailureDoesNotFailBatch(t *testing.T) {
	fake := testutil.NewFakeDB(t).On("SELECT 1", testutil.Rows([]string{"n"}, []driver.Value{int64(1)}))
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := NewService(ServiceDeps{Connector: &fakeConnector{fake: fake}, Publisher: pub})

	results, err := svc.Run(context.Background(), newTestRequest("SELECT 1"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, pub.events, 1)
}

func TestServiceRunNilRequest(t *testing.T) {
	svc := NewService(ServiceDeps{Connector: plainErrConnector{}})
	_, err := svc.Run(context.Background(), nil)
	require.Error(t, err)
}
