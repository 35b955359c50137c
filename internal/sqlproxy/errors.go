package sqlproxy

import "fmt"

// FieldError is a required field that is absent, or a field of the wrong type.
type FieldError struct {
	Field   string
	Missing bool
}

func (e *FieldError) Error() string { return e.Message() }

// Message is the client facing code, e.g. "missing-database".
func (e *FieldError) Message() string {
	if e.Missing {
		return "missing-" + e.Field
	}
	return "invalid-" + e.Field
}

// ConnectionError is a failed handshake. Err is the driver's cause.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "connect: " + e.Err.Error() }

func (e *ConnectionError) Unwrap() error { return e.Err }

// StatementError is the first statement of a batch that failed. Index is
// zero based; statements after it were never submitted.
type StatementError struct {
	Index int
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d: %s", e.Index, e.Err.Error())
}

func (e *StatementError) Unwrap() error { return e.Err }
