package csvio

import (
	"fmt"
	"strings"
)

// Delimiter is one of the field separators supported by import and export.
type Delimiter int

const (
	Tab Delimiter = iota
	Space
	Comma
	Semicolon
)

// Rune returns the literal separator character. Any value outside the
// enumerated set is a programming error and panics.
func (d Delimiter) Rune() rune {
	switch d {
	case Tab:
		return '\t'
	case Space:
		return ' '
	case Comma:
		return ','
	case Semicolon:
		return ';'
	}
	panic(fmt.Sprintf("csvio: invalid delimiter %d", int(d)))
}

func (d Delimiter) String() string {
	switch d {
	case Tab:
		return "tab"
	case Space:
		return "space"
	case Comma:
		return "comma"
	case Semicolon:
		return "semicolon"
	}
	return fmt.Sprintf("Delimiter(%d)", int(d))
}

// ParseDelimiter accepts a delimiter name (tab, space, comma, semicolon) or the
// literal character itself.
func ParseDelimiter(s string) (Delimiter, error) {
	switch strings.ToLower(s) {
	case "tab", "\t", `\t`:
		return Tab, nil
	case "space", " ":
		return Space, nil
	case "comma", ",":
		return Comma, nil
	case "semicolon", ";":
		return Semicolon, nil
	}
	return 0, fmt.Errorf("unknown delimiter %q (want tab, space, comma or semicolon)", s)
}

// splitFields cuts line at every sep and keeps empty fields.
func splitFields(line string, sep rune) []string {
	return strings.Split(line, string(sep))
}

// joinFields is the inverse of splitFields.
func joinFields(sep rune, fields ...string) string {
	return strings.Join(fields, string(sep))
}
