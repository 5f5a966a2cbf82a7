// Package importer converts raw text blobs (delimited text or JSON arrays)
// into issue drafts for bulk creation.
package importer

import (
	"strings"
	"unicode"

	"github.com/ghbulk/ghbulk/internal/domain"
)

// DefaultDelimiter is used when the caller passes an empty delimiter.
const DefaultDelimiter = ","

// Parse splits a delimited text blob into records. Fields wrapped in double
// quotes may contain the delimiter; doubled quotes ("") collapse to a literal
// quote. Every input line produces a record, including empty ones: filtering
// is the caller's concern, not the parser's.
//
// Lines are split before quote handling runs, so a quoted field containing a
// literal newline is broken into two records. Known limitation, pinned by
// TestParse_NewlineInsideQuotes.
func Parse(text, delimiter string) [][]string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	lines := splitLines(text)

	records := make([][]string, len(lines))
	for i, line := range lines {
		records[i] = parseLine(line, delimiter)
	}
	return records
}

// DraftsFromRecords maps parsed records to issue drafts: column 0 is the
// title, column 1 the body, missing columns become empty strings.
func DraftsFromRecords(records [][]string) []domain.IssueDraft {
	drafts := make([]domain.IssueDraft, len(records))
	for i, record := range records {
		if len(record) > 0 {
			drafts[i].Title = record[0]
		}
		if len(record) > 1 {
			drafts[i].Body = record[1]
		}
	}
	return drafts
}

// splitLines splits on \r\n, \r, or \n.
func splitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

// parseLine splits one line on the delimiter, then scans the fields right to
// left repairing quoted values the split broke apart:
//
//   - a field that both starts and ends with an unescaped quote (ignoring
//     surrounding whitespace) is a self-contained quoted value: the wrapping
//     quotes are stripped and doubled quotes collapsed;
//   - a field that only ends with a quote closes a quoted value the
//     delimiter was part of: it is rejoined with its left neighbor and the
//     merged field is rescanned;
//   - a dangling closing quote in the leftmost field has no neighbor to
//     merge with and is left as-is;
//   - unquoted fields only get doubled-quote collapsing.
func parseLine(line, delimiter string) []string {
	fields := strings.Split(line, delimiter)

	for i := len(fields) - 1; i >= 0; i-- {
		field := fields[i]

		if !strings.HasSuffix(strings.TrimRightFunc(field, unicode.IsSpace), `"`) {
			fields[i] = strings.ReplaceAll(field, `""`, `"`)
			continue
		}

		leading := strings.TrimLeftFunc(field, unicode.IsSpace)
		if len(leading) > 1 && strings.HasPrefix(leading, `"`) {
			fields[i] = unquote(field)
			continue
		}

		if i > 0 {
			fields[i-1] = fields[i-1] + delimiter + field
			fields = append(fields[:i], fields[i+1:]...)
			// next iteration rescans the merged field at i-1
		}
	}

	return fields
}

// unquote strips the wrapping quotes (and the whitespace outside them) and
// collapses doubled quotes.
func unquote(field string) string {
	value := strings.TrimLeftFunc(field, unicode.IsSpace)
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimRightFunc(value, unicode.IsSpace)
	value = strings.TrimSuffix(value, `"`)
	return strings.ReplaceAll(value, `""`, `"`)
}
