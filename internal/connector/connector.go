// Package connector defines the database access boundary for the
// conversion pipeline: connection management, schema introspection, and
// read-only execution of generated SQL, behind one interface per driver.
package connector

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/seeqdb/seeq/internal/model"
)

// ConnectionConfig holds database connection parameters.
type ConnectionConfig struct {
	Driver          string
	DSN             string
	SchemaName      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Connector is the interface every database driver must implement. All
// operations are read-only: the pipeline introspects and queries, it never
// mutates.
type Connector interface {
	// Connection management
	Connect(cfg ConnectionConfig) error
	Disconnect() error
	Ping(ctx context.Context) error
	DB() *sqlx.DB

	// Schema introspection
	IntrospectSchema(ctx context.Context) (*model.Schema, error)
	IntrospectTable(ctx context.Context, tableName string) (*model.TableSchema, error)
	GetTableNames(ctx context.Context) ([]string, error)

	// Query executes one SQL statement and returns the full row set.
	// Implementations reconnect transparently on a detected dead
	// connection before surfacing an error.
	Query(ctx context.Context, sqlText string) (*model.ResultSet, error)

	// Dialect metadata
	DriverName() string
	QuoteIdentifier(name string) string
	// PeriodExpr returns the dialect expression that buckets the given
	// date/time column by month, formatted as YYYY-MM.
	PeriodExpr(column string) string
}

// SanitizeDSN ensures URL-style DSNs (postgres://) have their userinfo
// properly percent-encoded. Raw passwords containing @, #, %, or other
// URL-special characters cause the Go URL parser to mis-split the
// authority component, producing connection failures long before the
// pipeline can report anything useful.
func SanitizeDSN(driver, dsn string) string {
	if driver != "postgres" {
		return dsn
	}
	return sanitizeURLDSN(dsn)
}

// sanitizeURLDSN parses a DSN that begins with a scheme (e.g.
// postgres://user:p@ss#word@host/db) and re-encodes the password so the
// URL library can parse it unambiguously.
func sanitizeURLDSN(dsn string) string {
	schemeEnd := strings.Index(dsn, "://")
	if schemeEnd < 0 {
		return dsn // key=value style DSN, return as-is
	}

	scheme := dsn[:schemeEnd]
	rest := dsn[schemeEnd+3:]

	query := ""
	if qi := strings.IndexByte(rest, '?'); qi >= 0 {
		query = rest[qi:]
		rest = rest[:qi]
	}

	// The LAST '@' splits userinfo from host+path.
	atIdx := strings.LastIndex(rest, "@")
	if atIdx < 0 {
		return dsn // no credentials in the DSN
	}

	userinfo := rest[:atIdx]
	hostpath := rest[atIdx+1:]

	// url.Userinfo handles the percent-encoding rules for this component,
	// including '@' and '#'.
	var creds *url.Userinfo
	if ci := strings.IndexByte(userinfo, ':'); ci >= 0 {
		creds = url.UserPassword(userinfo[:ci], userinfo[ci+1:])
	} else {
		creds = url.User(userinfo)
	}

	return scheme + "://" + creds.String() + "@" + hostpath + query
}
