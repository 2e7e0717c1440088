package services

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"metastats-scraper/models"
	"metastats-scraper/utils"
)

// quantityRegexp captures the copy count in "2", "x2", "2x" or "× 2".
var quantityRegexp = regexp.MustCompile(`\d+`)

const topCardsLimit = 10

// SummaryService computes and prints metagame summaries.
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a SummaryService with the given logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate computes per-deck and cross-deck figures for a report.
func (s *SummaryService) Generate(report *models.Report) *models.MetaSummary {
	summary := &models.MetaSummary{
		Identifier:       report.Identifier,
		Archetypes:       len(report.Sections),
		Truncated:        report.Truncated,
		TruncationMarker: report.TruncationMarker,
	}

	usage := make(map[string]*models.CardUsage)
	for _, section := range report.Sections {
		deck := models.DeckSummary{Name: section.Name, CardLines: len(section.Lines)}
		seen := make(map[string]struct{})

		for _, line := range section.Lines {
			copies := s.parseQuantity(line.Quantity)
			deck.Copies += copies

			u, ok := usage[line.CardName]
			if !ok {
				u = &models.CardUsage{CardName: line.CardName}
				usage[line.CardName] = u
			}
			u.Copies += copies
			if _, dup := seen[line.CardName]; !dup {
				seen[line.CardName] = struct{}{}
				u.Decks++
			}
		}
		summary.Decks = append(summary.Decks, deck)
	}

	for _, u := range usage {
		summary.TopCards = append(summary.TopCards, *u)
	}
	sort.Slice(summary.TopCards, func(i, j int) bool {
		a, b := summary.TopCards[i], summary.TopCards[j]
		if a.Decks != b.Decks {
			return a.Decks > b.Decks
		}
		if a.Copies != b.Copies {
			return a.Copies > b.Copies
		}
		return a.CardName < b.CardName
	})
	if len(summary.TopCards) > topCardsLimit {
		summary.TopCards = summary.TopCards[:topCardsLimit]
	}

	s.logger.Debug("[summary] %d archetypes, %d distinct cards", summary.Archetypes, len(usage))
	return summary
}

// parseQuantity reads the copy count leniently; anything without digits counts as one copy.
func (s *SummaryService) parseQuantity(raw string) int {
	match := quantityRegexp.FindString(raw)
	if match == "" {
		return 1
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Print renders the summary as a boxed console report.
func (s *SummaryService) Print(w io.Writer, r *models.MetaSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  METAGAME SNAPSHOT %s\033[0m\n", r.Identifier)
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Archetypes\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Decks) == 0 {
		fmt.Fprintf(w, "  No archetypes in report\n")
	}
	for i, d := range r.Decks {
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-32s %3d lines %3d cards\n",
			i+1, truncate(d.Name, 30), d.CardLines, d.Copies)
	}
	if r.Truncated {
		fmt.Fprintf(w, "  \033[2m... truncated at %s\033[0m\n", r.TruncationMarker)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Most Played Cards\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopCards) == 0 {
		fmt.Fprintf(w, "  No cards found\n")
	}
	for _, c := range r.TopCards {
		bar := strings.Repeat("█", c.Decks)
		fmt.Fprintf(w, "  %-30s %s (%d decks, %d copies)\n", truncate(c.CardName, 28), bar, c.Decks, c.Copies)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
