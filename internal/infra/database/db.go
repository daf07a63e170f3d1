package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema/sqlite.sql
var sqliteSchema string

//go:embed schema/postgres.sql
var postgresSchema string

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute

	sqliteBusyTimeout = 5000 // milliseconds
)

// Dialect selects placeholder style and schema.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB is a *sql.DB that knows which SQL dialect it speaks.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Open connects to databaseURL and creates the schema if needed.
// postgres:// and postgresql:// URLs use PostgreSQL, anything else is
// treated as a SQLite path or DSN.
func Open(ctx context.Context, databaseURL string) (*DB, error) {
	dialect, dsn := parseDatabaseURL(databaseURL)

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if dialect == DialectSQLite {
		// A single connection keeps :memory: databases shared and writes serialized.
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		conn.SetMaxOpenConns(defaultMaxOpenConns)
		conn.SetMaxIdleConns(defaultMaxIdleConns)
		conn.SetConnMaxLifetime(defaultConnMaxLifetime)
		conn.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	}

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: conn, dialect: dialect}
	if err := db.initSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Dialect reports the SQL dialect of the connection.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := sqliteSchema
	if db.dialect == DialectPostgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseDatabaseURL(databaseURL string) (Dialect, string) {
	url := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, url
	case strings.HasPrefix(url, "sqlite://"):
		return DialectSQLite, sqliteDSN(strings.TrimPrefix(url, "sqlite://"))
	default:
		return DialectSQLite, sqliteDSN(url)
	}
}

func sqliteDSN(path string) string {
	switch {
	case path == "":
		return ":memory:"
	case path == ":memory:", strings.Contains(path, "?"):
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		strings.TrimPrefix(path, "file:"), sqliteBusyTimeout)
}
