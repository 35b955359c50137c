package sqlproxy

import "query-proxy/pkg/db"

// Credentials says where to connect and as whom. Port defaults to 1433 and
// Dialect to mssql.
type Credentials struct {
	Dialect  string
	Server   string
	Port     int
	Database string
	Username string
	Password string
}

func (c Credentials) target() db.Target {
	return db.Target{
		Dialect:  c.Dialect,
		Server:   c.Server,
		Port:     c.Port,
		Database: c.Database,
		User:     c.Username,
		Password: c.Password,
	}
}

// ExecutionRequest is one validated /query call.
type ExecutionRequest struct {
	Credentials
	Queries []string
}

// RowResult is the column values of one row, in column order.
type RowResult []any

// StatementResult is every row one statement returned.
type StatementResult []RowResult

type ErrorMessage struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Successful bool `json:"successful"`
	Error      any  `json:"error"`
}

type QueryResponse struct {
	Successful bool              `json:"successful"`
	Results    []StatementResult `json:"results"`
}

type InfoResponse struct {
	Version string `json:"version"`
}
