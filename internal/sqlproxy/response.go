package sqlproxy

import (
	"context"
	"errors"
	"net/http"

	mssql "github.com/denisenkom/go-mssqldb"

	"query-proxy/pkg/req"
)

const (
	kindConnection = "connection"
	kindStatement  = "statement"
	kindInternal   = "internal"
)

const msgNotFound = "not-found"

// BuildResponse maps the outcome of a /query call to a status and body.
// Every error resolves to exactly one of: 400 for bodies and fields, 500 for
// anything raised while talking to the database.
func BuildResponse(results []StatementResult, err error) (int, any) {
	if err == nil {
		if results == nil {
			results = []StatementResult{}
		}
		return http.StatusOK, QueryResponse{Successful: true, Results: results}
	}

	var bodyErr *req.BodyError
	if errors.As(err, &bodyErr) {
		return http.StatusBadRequest, errorMessage(bodyErr.Message)
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, errorMessage(fieldErr.Message())
	}

	return http.StatusInternalServerError, ErrorResponse{Successful: false, Error: describeCause(err)}
}

// NotFoundResponse is the body for any unrouted path or method.
func NotFoundResponse() (int, any) {
	return http.StatusNotFound, errorMessage(msgNotFound)
}

func errorMessage(message string) ErrorResponse {
	return ErrorResponse{Successful: false, Error: ErrorMessage{Message: message}}
}

// describeCause serializes the driver's error. The message is the cause's
// own text; SQL Server errors also expose their number, state and origin.
func describeCause(err error) map[string]any {
	out := map[string]any{}
	cause := err

	var stmtErr *StatementError
	var connErr *ConnectionError
	switch {
	case errors.As(err, &stmtErr):
		out["kind"] = kindStatement
		out["statementIndex"] = stmtErr.Index
		cause = stmtErr.Err
	case errors.As(err, &connErr):
		out["kind"] = kindConnection
		cause = connErr.Err
	default:
		out["kind"] = kindInternal
	}
	out["message"] = cause.Error()

	var msErr mssql.Error
	if errors.As(cause, &msErr) {
		out["message"] = msErr.Message
		out["number"] = msErr.Number
		out["state"] = msErr.State
		out["class"] = msErr.Class
		out["serverName"] = msErr.ServerName
		out["procName"] = msErr.ProcName
		out["lineNumber"] = msErr.LineNo
	}

	var coded interface{ Code() int }
	if errors.As(cause, &coded) {
		out["code"] = coded.Code()
	}

	if errors.Is(cause, context.DeadlineExceeded) {
		out["timeout"] = true
	}
	return out
}
