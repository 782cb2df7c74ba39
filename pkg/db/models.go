package db

// Vocabulary is a row of the vocabulary table as written by an import.
// Creation and Modification are Julian day numbers.
type Vocabulary struct {
	Word         string
	Translation  string
	Priority     int
	Creation     int64
	Modification int64
	Language     int
}

// ExportRow holds the exported columns exactly as the database returned them.
// NULL values come back as empty strings.
type ExportRow struct {
	Word        string
	Translation string
	Priority    string
}
