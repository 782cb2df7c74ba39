package csvio

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/japaniel/vocabcsv/pkg/db"
)

// AllLanguages exports every row regardless of language.
const AllLanguages = db.AnyLanguage

// ExportQuerier runs the export query.
type ExportQuerier interface {
	QueryExport(ctx context.Context, language int) (db.VocabularyCursor, error)
}

// ExportOptions describes one export run.
type ExportOptions struct {
	Path        string
	Delimiter   Delimiter
	WriteHeader bool
	// Language restricts the export to one language; AllLanguages disables the filter.
	Language int
}

// Exporter writes vocabulary rows to a delimited text file.
type Exporter struct {
	Store  ExportQuerier
	Logger *slog.Logger
}

// NewExporter creates a new Exporter.
func NewExporter(store ExportQuerier) *Exporter {
	return &Exporter{Store: store}
}

// Export writes word, translation and priority of every selected row to
// opts.Path, one line per row. Values are written as stored. Field values
// containing the delimiter are not quoted.
func (ex *Exporter) Export(ctx context.Context, opts ExportOptions) (res Result) {
	logger := ex.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("export_id", uuid.NewString(), "path", opts.Path)

	sep := opts.Delimiter.Rune()

	f, err := os.Create(opts.Path)
	if err != nil {
		return res.abort(logger, openFileMessage(opts.Path, err), fmt.Errorf("%w: %w", ErrOpenFile, err))
	}
	defer func() {
		if err := f.Close(); err != nil {
			res.addError(logger, fmt.Sprintf("Can not close file \"%s\": %v", opts.Path, err))
		}
	}()

	cur, err := ex.Store.QueryExport(ctx, opts.Language)
	if err != nil {
		return res.abort(logger, err.Error(), fmt.Errorf("%w: %w", ErrQuery, err))
	}
	defer cur.Close()

	tw := transform.NewWriter(f, unicode.UTF8.NewEncoder())
	w := bufio.NewWriter(tw)

	if opts.WriteHeader {
		w.WriteString(joinFields(sep, "word", "translation", "priority") + "\n")
	}

	written := 0
	for cur.Next() {
		row, err := cur.Row()
		if err != nil {
			res.addError(logger, err.Error())
			continue
		}
		w.WriteString(joinFields(sep, row.Word, row.Translation, row.Priority) + "\n")
		written++
	}
	if err := cur.Err(); err != nil {
		res.abort(logger, err.Error(), fmt.Errorf("%w: %w", ErrQuery, err))
	}

	// bufio keeps the first write error and reports it from Flush.
	if err := w.Flush(); err != nil {
		res.addError(logger, fmt.Sprintf("Can not write file \"%s\": %v", opts.Path, err))
	} else if err := tw.Close(); err != nil {
		res.addError(logger, fmt.Sprintf("Can not write file \"%s\": %v", opts.Path, err))
	}

	res.Rows = written
	logger.Info("export finished", "language", opts.Language, "rows", written, "errors", len(res.Errors))
	return res
}
