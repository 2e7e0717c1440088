package storage

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"unicode"

	"metastats-scraper/models"
)

// ReadReport parses a report back into sections.
//
// A line is a card when the text before its first "_" reads as a quantity,
// i.e. holds no letters other than "x"/"X" ("2", "x2", "2x", "★", ""); the
// rest is the card name. Any other line starts a new archetype. The truncation marker
// is the only line written without a trailing newline, so a final name line
// is returned as the marker only when the input does not end in "\n".
func ReadReport(r io.Reader) ([]models.Section, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	endsWithNewline := len(data) > 0 && data[len(data)-1] == '\n'

	var sections []models.Section

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		qty, card, isCard := strings.Cut(line, "_")
		if !isCard || !isQuantity(qty) || len(sections) == 0 {
			sections = append(sections, models.Section{Name: line})
			continue
		}

		last := &sections[len(sections)-1]
		last.Lines = append(last.Lines, models.DecklistLine{Quantity: qty, CardName: card})
	}
	if err := scanner.Err(); err != nil {
		return nil, "", err
	}

	marker := ""
	if n := len(sections); n > 0 && !endsWithNewline && len(sections[n-1].Lines) == 0 {
		marker = sections[n-1].Name
		sections = sections[:n-1]
	}
	return sections, marker, nil
}

// isQuantity reports whether s can be a displayed card count.
func isQuantity(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && r != 'x' && r != 'X' {
			return false
		}
	}
	return true
}

// ReadReportFile opens path and parses it with ReadReport.
func ReadReportFile(path string) ([]models.Section, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &FilesystemError{Path: path, Op: OpRead, Message: "open report", Cause: err}
	}
	defer f.Close()

	sections, marker, err := ReadReport(f)
	if err != nil {
		return nil, "", &FilesystemError{Path: path, Op: OpRead, Message: "scan report", Cause: err}
	}
	return sections, marker, nil
}
