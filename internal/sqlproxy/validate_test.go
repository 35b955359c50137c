package sqlproxy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBody() map[string]any {
	return map[string]any{
		"server":   "db.local",
		"database": "sales",
		"username": "sa",
		"password": "secret",
		"queries":  []any{"SELECT 1", "SELECT 2"},
	}
}

func TestValidateRequest(t *testing.T) {
	req, err := ValidateRequest(validBody())
	require.NoError(t, err)
	assert.Equal(t, "db.local", req.Server)
	assert.Equal(t, "sales", req.Database)
	assert.Equal(t, "sa", req.Username)
	assert.Equal(t, "secret", req.Password)
	assert.Equal(t, 1433, req.Port)
	assert.Equal(t, "mssql", req.Dialect)
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, req.Queries)
}

func TestValidateRequestFieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b map[string]any)
		message string
	}{
		{name: "no server", mutate: func(b map[string]any) { delete(b, "server") }, message: "missing-server"},
		{name: "null server", mutate: func(b map[string]any) { b["server"] = nil }, message: "missing-server"},
		{name: "no database", mutate: func(b map[string]any) { delete(b, "database") }, message: "missing-database"},
		{name: "no username", mutate: func(b map[string]any) { delete(b, "username") }, message: "missing-username"},
		{name: "no password", mutate: func(b map[string]any) { delete(b, "password") }, message: "missing-password"},
		{name: "no queries", mutate: func(b map[string]any) { delete(b, "queries") }, message: "missing-queries"},
		{
			name: "first missing wins",
			mutate: func(b map[string]any) {
				delete(b, "database")
				delete(b, "password")
				delete(b, "queries")
			},
			message: "missing-database",
		},
		{name: "server not a string", mutate: func(b map[string]any) { b["server"] = json.Number("1") }, message: "invalid-server"},
		{name: "queries scalar", mutate: func(b map[string]any) { b["queries"] = "SELECT 1" }, message: "invalid-queries"},
		{name: "queries object", mutate: func(b map[string]any) { b["queries"] = map[string]any{"q": "SELECT 1"} }, message: "invalid-queries"},
		{name: "queries non string item", mutate: func(b map[string]any) { b["queries"] = []any{"SELECT 1", true} }, message: "invalid-queries"},
		{name: "port string", mutate: func(b map[string]any) { b["port"] = "1433" }, message: "invalid-port"},
		{name: "port fraction", mutate: func(b map[string]any) { b["port"] = json.Number("14.5") }, message: "invalid-port"},
		{name: "port zero", mutate: func(b map[string]any) { b["port"] = json.Number("0") }, message: "invalid-port"},
		{name: "port too big", mutate: func(b map[string]any) { b["port"] = json.Number("65536") }, message: "invalid-port"},
		{name: "unknown dialect", mutate: func(b map[string]any) { b["dialect"] = "oracle" }, message: "invalid-dialect"},
		{
			name: "missing beats invalid later field",
			mutate: func(b map[string]any) {
				delete(b, "username")
				b["queries"] = "x"
			},
			message: "missing-username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validBody()
			tt.mutate(body)

			_, err := ValidateRequest(body)
			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr), "got %v", err)
			assert.Equal(t, tt.message, fieldErr.Message())
		})
	}
}

func TestValidateRequestOptionalFields(t *testing.T) {
	body := validBody()
	body["port"] = json.Number("30015")
	body["dialect"] = "HANA"
	body["queries"] = []any{}

	req, err := ValidateRequest(body)
	require.NoError(t, err)
	assert.Equal(t, 30015, req.Port)
	assert.Equal(t, "hana", req.Dialect)
	assert.Empty(t, req.Queries)
	assert.NotNil(t, req.Queries)
}

func TestValidateRequestAcceptsAnyStatementText(t *testing.T) {
	body := validBody()
	body["queries"] = []any{"", "DROP TABLE x; --"}
	body["port"] = float64(1434)

	req, err := ValidateRequest(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "DROP TABLE x; --"}, req.Queries)
	assert.Equal(t, 1434, req.Port)
}
