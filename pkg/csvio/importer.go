package csvio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/japaniel/vocabcsv/pkg/db"
)

// DefaultMaxLineBytes bounds the length of a single input line.
const DefaultMaxLineBytes = 1 << 20

// TxBeginner opens the transaction an import writes into.
type TxBeginner interface {
	BeginImport(ctx context.Context) (db.VocabularyTx, error)
}

// Columns holds the zero-based positions of the imported fields.
type Columns struct {
	Word        int
	Translation int
	Priority    int
}

// Validate rejects negative positions. Priority is only checked when it is imported.
func (c Columns) Validate(importPriority bool) error {
	if c.Word < 0 || c.Translation < 0 || (importPriority && c.Priority < 0) {
		return ErrInvalidColumns
	}
	return nil
}

// required is the minimum number of fields a line needs.
func (c Columns) required(importPriority bool) int {
	n := max(c.Word, c.Translation)
	if importPriority {
		n = max(n, c.Priority)
	}
	return n + 1
}

// ImportOptions describes one import run.
type ImportOptions struct {
	Path           string
	Delimiter      Delimiter
	HasHeader      bool
	Columns        Columns
	ImportPriority bool
	// Language is stored on every imported row.
	Language int
}

// Importer reads delimited vocabulary files into the database.
type Importer struct {
	Store TxBeginner
	// Logger receives one warning per error message. nil means slog.Default().
	Logger *slog.Logger
	// Now is the clock used for creation and modification dates.
	Now func() time.Time
	// MaxLineBytes bounds a single line; longer lines abort the import.
	MaxLineBytes int
}

// NewImporter creates a new Importer.
func NewImporter(store TxBeginner) *Importer {
	return &Importer{
		Store:        store,
		Now:          time.Now,
		MaxLineBytes: DefaultMaxLineBytes,
	}
}

// Import reads opts.Path and inserts every valid line inside a single
// transaction. Lines that are too short or fail to insert are skipped and
// reported; the rest of the file is still imported. Invalid columns, an
// unreadable file or a failed begin abort before anything is written.
func (im *Importer) Import(ctx context.Context, opts ImportOptions) Result {
	logger := im.logger().With("import_id", uuid.NewString(), "path", opts.Path)
	var res Result

	if err := opts.Columns.Validate(opts.ImportPriority); err != nil {
		return res.abort(logger, err.Error(), err)
	}
	sep := opts.Delimiter.Rune()

	f, err := os.Open(opts.Path)
	if err != nil {
		return res.abort(logger, openFileMessage(opts.Path, err), fmt.Errorf("%w: %w", ErrOpenFile, err))
	}
	defer f.Close()

	tx, err := im.Store.BeginImport(ctx)
	if err != nil {
		return res.abort(logger, err.Error(), fmt.Errorf("%w: %w", ErrBegin, err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	scanner := bufio.NewScanner(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	maxLine := im.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)

	if opts.HasHeader {
		scanner.Scan()
	}

	need := opts.Columns.required(opts.ImportPriority)
	today := JulianDay(im.now())
	inserted := 0

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := splitFields(line, sep)
		if len(fields) < need {
			res.addError(logger, fmt.Sprintf("Error at \"%s\": column too small", line))
			continue
		}

		v := db.Vocabulary{
			Word:         Simplify(fields[opts.Columns.Word]),
			Translation:  Simplify(fields[opts.Columns.Translation]),
			Priority:     DefaultPriority,
			Creation:     today,
			Modification: today,
			Language:     opts.Language,
		}
		if opts.ImportPriority {
			raw := fields[opts.Columns.Priority]
			p, err := parsePriority(raw)
			if err != nil {
				res.addError(logger, fmt.Sprintf("Can not convert \"%s\" to priority", raw))
			}
			v.Priority = p
		}

		if err := tx.InsertVocabulary(ctx, v); err != nil {
			res.addError(logger, err.Error())
			continue
		}
		inserted++
	}
	if err := scanner.Err(); err != nil {
		return res.abort(logger, fmt.Sprintf("Can not read file \"%s\": %v", opts.Path, err), fmt.Errorf("%w: %w", ErrReadFile, err))
	}

	committed = true
	if err := tx.Commit(); err != nil {
		return res.abort(logger, err.Error(), fmt.Errorf("%w: %w", ErrCommit, err))
	}
	res.Rows = inserted
	logger.Info("import finished", "language", opts.Language, "rows", inserted, "errors", len(res.Errors))
	return res
}

func (im *Importer) logger() *slog.Logger {
	if im.Logger != nil {
		return im.Logger
	}
	return slog.Default()
}

func (im *Importer) now() time.Time {
	if im.Now != nil {
		return im.Now()
	}
	return time.Now()
}

// openFileMessage formats a file-level failure without repeating the path
// that fs.PathError already embeds.
func openFileMessage(path string, err error) string {
	reason := err
	var pe *fs.PathError
	if errors.As(err, &pe) {
		reason = pe.Err
	}
	return fmt.Sprintf("Can not open file \"%s\": %v", path, reason)
}
