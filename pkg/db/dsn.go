package db

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	DialectMSSQL = "mssql"
	DialectHANA  = "hana"
)

const DefaultPort = 1433

// Target describes where and how to connect. It never outlives one request.
type Target struct {
	Dialect  string
	Server   string
	Port     int
	Database string
	User     string
	Password string
}

// Dialects lists the supported dialect names.
func Dialects() []string {
	return []string{DialectMSSQL, DialectHANA}
}

func IsDialect(name string) bool {
	switch strings.ToLower(name) {
	case DialectMSSQL, DialectHANA:
		return true
	default:
		return false
	}
}

// BuildDSN returns the database/sql driver name and data source name for t.
// Transport encryption is always disabled and authentication is always
// username/password.
func BuildDSN(t Target) (driverName string, dsn string, err error) {
	if t.Server == "" {
		return "", "", fmt.Errorf("server is required")
	}
	port := t.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 1 || port > 65535 {
		return "", "", fmt.Errorf("port is invalid: %d", port)
	}

	host := net.JoinHostPort(t.Server, strconv.Itoa(port))

	switch strings.ToLower(t.Dialect) {
	case "", DialectMSSQL:
		u := &url.URL{
			Scheme: "sqlserver",
			User:   url.UserPassword(t.User, t.Password),
			Host:   host,
		}
		q := url.Values{}
		q.Set("database", t.Database)
		q.Set("encrypt", "disable")
		u.RawQuery = q.Encode()
		return "sqlserver", u.String(), nil

	case DialectHANA:
		u := &url.URL{
			Scheme: "hdb",
			User:   url.UserPassword(t.User, t.Password),
			Host:   host,
		}
		q := url.Values{}
		if t.Database != "" {
			q.Set("defaultSchema", t.Database)
		}
		u.RawQuery = q.Encode()
		return "hdb", u.String(), nil

	default:
		return "", "", fmt.Errorf("unsupported db dialect: %s", t.Dialect)
	}
}
