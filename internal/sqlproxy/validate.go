package sqlproxy

import (
	"encoding/json"
	"strings"

	"query-proxy/pkg/db"
)

// ValidateRequest builds an ExecutionRequest from a decoded body.
//
// Fields are checked in a fixed order: server, database, username, password,
// queries, then the optional port and dialect. The first failing field is
// reported so clients always see the same error for the same body.
func ValidateRequest(body map[string]any) (*ExecutionRequest, error) {
	var req ExecutionRequest
	var err error

	if req.Server, err = requiredString(body, "server"); err != nil {
		return nil, err
	}
	if req.Database, err = requiredString(body, "database"); err != nil {
		return nil, err
	}
	if req.Username, err = requiredString(body, "username"); err != nil {
		return nil, err
	}
	if req.Password, err = requiredString(body, "password"); err != nil {
		return nil, err
	}
	if req.Queries, err = requiredStrings(body, "queries"); err != nil {
		return nil, err
	}
	if req.Port, err = optionalPort(body, "port"); err != nil {
		return nil, err
	}
	if req.Dialect, err = optionalDialect(body, "dialect"); err != nil {
		return nil, err
	}

	return &req, nil
}

func requiredString(body map[string]any, field string) (string, error) {
	v, ok := body[field]
	if !ok || v == nil {
		return "", &FieldError{Field: field, Missing: true}
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: field}
	}
	return s, nil
}

func requiredStrings(body map[string]any, field string) ([]string, error) {
	v, ok := body[field]
	if !ok || v == nil {
		return nil, &FieldError{Field: field, Missing: true}
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &FieldError{Field: field}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &FieldError{Field: field}
		}
		out = append(out, s)
	}
	return out, nil
}

func optionalPort(body map[string]any, field string) (int, error) {
	v, ok := body[field]
	if !ok || v == nil {
		return db.DefaultPort, nil
	}

	var port int64
	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, &FieldError{Field: field}
		}
		port = n
	case float64:
		if x != float64(int64(x)) {
			return 0, &FieldError{Field: field}
		}
		port = int64(x)
	default:
		return 0, &FieldError{Field: field}
	}

	if port < 1 || port > 65535 {
		return 0, &FieldError{Field: field}
	}
	return int(port), nil
}

func optionalDialect(body map[string]any, field string) (string, error) {
	v, ok := body[field]
	if !ok || v == nil {
		return db.DialectMSSQL, nil
	}
	s, ok := v.(string)
	if !ok || !db.IsDialect(s) {
		return "", &FieldError{Field: field}
	}
	return strings.ToLower(s), nil
}
