package vocab

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Delimiter separates the source term from the target term on each line.
const Delimiter = ','

// Row represents one vocabulary entry parsed from an input line
type Row struct {
	// Index is the 0-based position of the row in the parsed sequence
	Index  int
	Source string
	Target string
}

// ParseFile reads a vocabulary table from a file and returns its rows
func ParseFile(filename string) ([]Row, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", filename, err)
	}
	return rows, nil
}

// Parse reads a two-column vocabulary table and returns its rows in input
// order. Malformed lines (no delimiter outside parentheses) are skipped with
// a warning and contribute no row, so the returned count may be smaller than
// the input line count. An optional header line naming the two expected
// columns is dropped.
func Parse(r io.Reader) ([]Row, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary input: %w", err)
	}

	var rows []Row
	first := true

	for lineNo, line := range splitLines(string(content)) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if first {
			first = false
			if isHeader(line) {
				continue
			}
		}

		source, target, ok := splitOutsideParens(line)
		if !ok {
			fmt.Fprintf(os.Stderr, "Warning: line %d has no %q delimiter, skipping: %s\n",
				lineNo+1, string(Delimiter), line)
			continue
		}

		rows = append(rows, Row{
			Index:  len(rows),
			Source: source,
			Target: target,
		})
	}

	return rows, nil
}

// WriteRetryList serializes rows back into the two-column input format so a
// failed subset can be fed through ParseFile again. Original text and
// relative order are preserved; no header is written.
func WriteRetryList(filename string, rows []Row) error {
	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(row.Source)
		sb.WriteByte(Delimiter)
		sb.WriteString(row.Target)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(filename, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write retry list: %w", err)
	}
	return nil
}

// splitOutsideParens splits line at the first delimiter that occurs outside
// any parenthesized span. Both halves are trimmed of surrounding whitespace.
func splitOutsideParens(line string) (source, target string, ok bool) {
	depth := 0
	for i, r := range line {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case Delimiter:
			if depth == 0 {
				return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
			}
		}
	}
	return "", "", false
}

// isHeader reports whether line is the optional column-name header.
func isHeader(line string) bool {
	source, target, ok := splitOutsideParens(line)
	if !ok {
		return false
	}
	return strings.EqualFold(source, "source") && strings.EqualFold(target, "target")
}

// splitLines splits a string by newlines, tolerating Windows line endings
func splitLines(s string) []string {
	var lines []string
	current := ""
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
		} else if r != '\r' {
			current += string(r)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
