package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/japaniel/vocabcsv/pkg/config"
	"github.com/japaniel/vocabcsv/pkg/csvio"
	"github.com/japaniel/vocabcsv/pkg/db"
	"github.com/japaniel/vocabcsv/pkg/logging"
	"github.com/japaniel/vocabcsv/pkg/settings"
)

const usage = `usage: vocabcsv [-db DSN] [-settings PATH] <command> [flags]

commands:
  import    read a delimited file into the vocabulary table
  export    write vocabulary rows to a delimited file
  settings  show or change saved settings (settings show | settings set KEY VALUE)
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	global := flag.NewFlagSet("vocabcsv", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	dsn := global.String("db", cfg.Database.DSN, "SQLite path or postgres:// URL")
	settingsPath := global.String("settings", cfg.Settings.Path, "Path to the settings YAML file")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	prefs, err := settings.Load(*settingsPath)
	if err != nil {
		slog.Warn("using default settings", "error", err)
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "import":
		return runImport(ctx, cfg, prefs, *dsn, rest, stdout, stderr)
	case "export":
		return runExport(ctx, cfg, prefs, *dsn, rest, stdout, stderr)
	case "settings":
		return runSettings(prefs, *settingsPath, rest, stdout, stderr)
	}
	fmt.Fprintf(stderr, "unknown command %q\n", cmd)
	global.Usage()
	return 2
}

func openStore(dsn string, stderr io.Writer) (*db.Store, func(), bool) {
	conn, dialect, err := db.Open(dsn)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to open database: %v\n", err)
		return nil, nil, false
	}
	return db.NewStore(conn, dialect), func() { conn.Close() }, true
}

func runImport(ctx context.Context, cfg *config.Config, prefs settings.Settings, dsn string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "File to import (required)")
	delim := fs.String("delimiter", cfg.Delimiter().String(), "Field separator: tab, space, comma or semicolon")
	header := fs.Bool("header", false, "Skip the first line")
	word := fs.Int("word", 0, "Zero-based column of the word")
	translation := fs.Int("translation", 1, "Zero-based column of the translation")
	priority := fs.Int("priority", 2, "Zero-based column of the priority")
	importPriority := fs.Bool("import-priority", false, "Read priorities from the priority column")
	language := fs.Int("language", prefs.AddVocabularyLanguage, "Language id stored on every row")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "import: -file is required")
		return 2
	}
	d, err := csvio.ParseDelimiter(*delim)
	if err != nil {
		fmt.Fprintf(stderr, "import: %v\n", err)
		return 2
	}

	store, closeStore, ok := openStore(dsn, stderr)
	if !ok {
		return 1
	}
	defer closeStore()

	im := csvio.NewImporter(store)
	im.MaxLineBytes = cfg.Transfer.MaxLineBytes
	res := im.Import(ctx, csvio.ImportOptions{
		Path:           *file,
		Delimiter:      d,
		HasHeader:      *header,
		Columns:        csvio.Columns{Word: *word, Translation: *translation, Priority: *priority},
		ImportPriority: *importPriority,
		Language:       *language,
	})
	code := report(res, "Imported", stdout, stderr)
	if n, err := db.CountVocabulary(ctx, store.DB, store.Dialect, *language); err != nil {
		slog.Warn("count vocabulary", "error", err)
	} else {
		fmt.Fprintf(stdout, "Language %d now holds %d rows.\n", *language, n)
	}
	return code
}

func runExport(ctx context.Context, cfg *config.Config, prefs settings.Settings, dsn string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "Destination file (required)")
	delim := fs.String("delimiter", cfg.Delimiter().String(), "Field separator: tab, space, comma or semicolon")
	header := fs.Bool("header", false, "Write a word/translation/priority header line")
	language := fs.Int("language", prefs.TrainingFilterLanguage, "Language id to export, -1 for all")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "export: -file is required")
		return 2
	}
	d, err := csvio.ParseDelimiter(*delim)
	if err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return 2
	}

	store, closeStore, ok := openStore(dsn, stderr)
	if !ok {
		return 1
	}
	defer closeStore()

	res := csvio.NewExporter(store).Export(ctx, csvio.ExportOptions{
		Path:        *file,
		Delimiter:   d,
		WriteHeader: *header,
		Language:    *language,
	})
	return report(res, "Exported", stdout, stderr)
}

func runSettings(prefs settings.Settings, path string, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "show" {
		b, err := yaml.Marshal(prefs)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		stdout.Write(b)
		return 0
	}
	if args[0] != "set" || len(args) != 3 {
		fmt.Fprintln(stderr, "usage: vocabcsv settings show | settings set KEY VALUE")
		return 2
	}
	if err := prefs.Set(args[1], args[2]); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := prefs.Save(path); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// report prints every error message and a summary line. Any message means
// the user should look at the result, so it also sets the exit status.
func report(res csvio.Result, verb string, stdout, stderr io.Writer) int {
	for _, e := range res.Errors {
		fmt.Fprintln(stderr, e)
	}
	fmt.Fprintf(stdout, "%s %d rows with %d errors.\n", verb, res.Rows, len(res.Errors))
	if !res.OK() {
		return 1
	}
	return 0
}
