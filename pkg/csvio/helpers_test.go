package csvio

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/japaniel/vocabcsv/pkg/db"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const testToday = 2460371

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) (*sql.DB, *db.Store) {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if err := db.InitDB(conn, db.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, db.NewStore(conn, db.SQLite)
}

func newTestImporter(store TxBeginner) *Importer {
	im := NewImporter(store)
	im.Logger = quietLogger()
	im.Now = func() time.Time { return testNow }
	return im
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocabulary.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

type storedRow struct {
	Word         string
	Translation  string
	Priority     int
	Creation     int64
	Modification int64
	Language     int
}

func loadRows(t *testing.T, conn *sql.DB) []storedRow {
	t.Helper()
	rows, err := conn.Query(`SELECT word, translation, priority, creation, modification, language FROM vocabulary ORDER BY id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var out []storedRow
	for rows.Next() {
		var r storedRow
		if err := rows.Scan(&r.Word, &r.Translation, &r.Priority, &r.Creation, &r.Modification, &r.Language); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	return out
}

type triple struct {
	Word, Translation string
	Priority          int
}

func sortedTriples(rows []storedRow) []triple {
	out := make([]triple, 0, len(rows))
	for _, r := range rows {
		out = append(out, triple{r.Word, r.Translation, r.Priority})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Word != out[j].Word {
			return out[i].Word < out[j].Word
		}
		if out[i].Translation != out[j].Translation {
			return out[i].Translation < out[j].Translation
		}
		return out[i].Priority < out[j].Priority
	})
	return out
}

// fakeStore stages inserts per transaction and only publishes them on a
// successful commit.
type fakeStore struct {
	rows      []db.Vocabulary
	began     int
	beginErr  error
	commitErr error
	insertErr func(db.Vocabulary) error
	queryErr  error
}

func (s *fakeStore) BeginImport(ctx context.Context) (db.VocabularyTx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.began++
	return &fakeTx{store: s}, nil
}

func (s *fakeStore) QueryExport(ctx context.Context, language int) (db.VocabularyCursor, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return nil, errors.New("not implemented")
}

type fakeTx struct {
	store      *fakeStore
	staged     []db.Vocabulary
	done       bool
	rolledBack bool
}

func (tx *fakeTx) InsertVocabulary(ctx context.Context, v db.Vocabulary) error {
	if tx.store.insertErr != nil {
		if err := tx.store.insertErr(v); err != nil {
			return err
		}
	}
	tx.staged = append(tx.staged, v)
	return nil
}

func (tx *fakeTx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true
	if tx.store.commitErr != nil {
		return tx.store.commitErr
	}
	tx.store.rows = append(tx.store.rows, tx.staged...)
	return nil
}

func (tx *fakeTx) Rollback() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true
	tx.rolledBack = true
	return nil
}
