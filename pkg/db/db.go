package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/sqlite.sql
var sqliteMigrationsSQL string

//go:embed migrations/postgres.sql
var postgresMigrationsSQL string

// Dialect identifies the SQL flavour spoken by a connection.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite3"
	case Postgres:
		return "pgx"
	}
	return "unknown"
}

// DialectFor picks the dialect from a DSN. postgres:// and postgresql:// URLs
// go to pgx, everything else is treated as a SQLite path or file: URI.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Open opens the database named by dsn and runs migrations.
func Open(dsn string) (*sql.DB, Dialect, error) {
	dialect := DialectFor(dsn)
	conn, err := sql.Open(dialect.String(), strings.TrimPrefix(dsn, "sqlite://"))
	if err != nil {
		return nil, dialect, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == SQLite && strings.Contains(dsn, ":memory:") {
		// Each new connection would get its own empty in-memory database.
		conn.SetMaxOpenConns(1)
	}
	if err := InitDB(conn, dialect); err != nil {
		conn.Close()
		return nil, dialect, fmt.Errorf("migrate: %w", err)
	}
	return conn, dialect, nil
}

// InitDB runs migrations on the given DB connection using the embedded SQL.
func InitDB(db *sql.DB, dialect Dialect) error {
	migrationsSQL := sqliteMigrationsSQL
	if dialect == Postgres {
		migrationsSQL = postgresMigrationsSQL
	}
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Rebind rewrites ? placeholders into the $n form pgx expects. Queries in this
// package never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
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
