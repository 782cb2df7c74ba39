package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AnyLanguage disables the language filter of QueryVocabulary.
const AnyLanguage = -1

const (
	insertVocabularySQL = `INSERT INTO vocabulary (word, translation, priority, creation, modification, language) VALUES (?, ?, ?, ?, ?, ?)`
	selectVocabularySQL = `SELECT word, translation, priority FROM vocabulary`
	selectByLanguageSQL = `SELECT word, translation, priority FROM vocabulary WHERE language = ?`
	exportColumnCount   = 3

	savepointSQL         = `SAVEPOINT row`
	releaseSavepointSQL  = `RELEASE SAVEPOINT row`
	rollbackSavepointSQL = `ROLLBACK TO SAVEPOINT row`
)

// ErrNoSelect is returned when an export query does not produce the expected row columns.
var ErrNoSelect = errors.New("no select")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// InsertVocabulary inserts a single vocabulary row. Errors carry the statement
// text followed by the driver's reason.
func InsertVocabulary(ctx context.Context, db DBExecutor, dialect Dialect, v Vocabulary) error {
	query := dialect.Rebind(insertVocabularySQL)
	_, err := db.ExecContext(ctx, query, v.Word, v.Translation, v.Priority, v.Creation, v.Modification, v.Language)
	if err != nil {
		return fmt.Errorf("%s: %w", query, err)
	}
	return nil
}

// QueryVocabulary selects word, translation and priority, filtered by language
// unless language is AnyLanguage. The caller must close the returned rows.
func QueryVocabulary(ctx context.Context, db DBExecutor, dialect Dialect, language int) (*sql.Rows, error) {
	query := selectVocabularySQL
	var args []interface{}
	if language != AnyLanguage {
		query = dialect.Rebind(selectByLanguageSQL)
		args = append(args, language)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", query, err)
	}
	cols, err := rows.Columns()
	if err != nil || len(cols) != exportColumnCount {
		rows.Close()
		if err == nil {
			err = ErrNoSelect
		}
		return nil, fmt.Errorf("%s: %w", query, err)
	}
	return rows, nil
}

// CountVocabulary returns the number of rows for a language, or all rows for AnyLanguage.
func CountVocabulary(ctx context.Context, db DBExecutor, dialect Dialect, language int) (int, error) {
	var n int
	var err error
	if language == AnyLanguage {
		err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vocabulary`).Scan(&n)
	} else {
		err = db.QueryRowContext(ctx, dialect.Rebind(`SELECT COUNT(*) FROM vocabulary WHERE language = ?`), language).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count vocabulary: %w", err)
	}
	return n, nil
}

// VocabularyTx is an open import transaction.
type VocabularyTx interface {
	InsertVocabulary(ctx context.Context, v Vocabulary) error
	Commit() error
	Rollback() error
}

// VocabularyCursor iterates export rows.
type VocabularyCursor interface {
	Next() bool
	Row() (ExportRow, error)
	Err() error
	Close() error
}

// Store binds a connection to its dialect.
type Store struct {
	DB      *sql.DB
	Dialect Dialect
}

// NewStore creates a Store.
func NewStore(conn *sql.DB, dialect Dialect) *Store {
	return &Store{DB: conn, Dialect: dialect}
}

// BeginImport starts the transaction all rows of one import are written into.
func (s *Store) BeginImport(ctx context.Context) (VocabularyTx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &sqlTx{tx: tx, exec: tx, dialect: s.Dialect}, nil
}

// QueryExport runs the export query and returns a cursor over its rows.
func (s *Store) QueryExport(ctx context.Context, language int) (VocabularyCursor, error) {
	rows, err := QueryVocabulary(ctx, s.DB, s.Dialect, language)
	if err != nil {
		return nil, err
	}
	return &sqlCursor{rows: rows}, nil
}

type sqlTx struct {
	tx      *sql.Tx
	exec    DBExecutor
	dialect Dialect
}

// InsertVocabulary inserts one row. Postgres aborts the whole transaction on
// any failed statement, so there each row runs inside its own savepoint and a
// failed insert only undoes itself.
func (t *sqlTx) InsertVocabulary(ctx context.Context, v Vocabulary) error {
	if t.dialect != Postgres {
		return InsertVocabulary(ctx, t.exec, t.dialect, v)
	}
	if _, err := t.exec.ExecContext(ctx, savepointSQL); err != nil {
		return fmt.Errorf("%s: %w", savepointSQL, err)
	}
	if err := InsertVocabulary(ctx, t.exec, t.dialect, v); err != nil {
		if _, rbErr := t.exec.ExecContext(ctx, rollbackSavepointSQL); rbErr != nil {
			return fmt.Errorf("%w (%s: %v)", err, rollbackSavepointSQL, rbErr)
		}
		return err
	}
	if _, err := t.exec.ExecContext(ctx, releaseSavepointSQL); err != nil {
		return fmt.Errorf("%s: %w", releaseSavepointSQL, err)
	}
	return nil
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }

type sqlCursor struct {
	rows *sql.Rows
}

func (c *sqlCursor) Next() bool { return c.rows.Next() }

func (c *sqlCursor) Row() (ExportRow, error) {
	var word, translation, priority sql.NullString
	if err := c.rows.Scan(&word, &translation, &priority); err != nil {
		return ExportRow{}, err
	}
	return ExportRow{Word: word.String, Translation: translation.String, Priority: priority.String}, nil
}

func (c *sqlCursor) Err() error   { return c.rows.Err() }
func (c *sqlCursor) Close() error { return c.rows.Close() }
