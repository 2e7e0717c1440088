package models

import "time"

// ArchetypeEntry is one row of the index page: a normalised deck name and
// the absolute URL of its decklist page.
type ArchetypeEntry struct {
	Name        string
	DecklistURL string
}

// DecklistLine is a single card row as displayed on a decklist page.
// Quantity is kept verbatim ("2", "x2", ...).
type DecklistLine struct {
	Quantity string
	CardName string
}

// Render formats the line the way it appears in the report.
func (l DecklistLine) Render() string {
	return l.Quantity + "_" + l.CardName + "\n"
}

// Section is one archetype block of the report.
type Section struct {
	Name  string
	Lines []DecklistLine
}

// Report is the in-memory result of a single scrape run.
// The on-disk artifact is written incrementally; this mirrors it.
type Report struct {
	Identifier       string
	SourceURL        string
	Sections         []Section
	Truncated        bool
	TruncationMarker string
	CreatedAt        time.Time
}

// MetaSummary holds aggregate figures computed over a report's sections.
type MetaSummary struct {
	Identifier       string
	Archetypes       int
	Truncated        bool
	TruncationMarker string
	Decks            []DeckSummary
	TopCards         []CardUsage
}

// DeckSummary describes one archetype's decklist.
type DeckSummary struct {
	Name      string
	CardLines int
	Copies    int
}

// CardUsage counts how many archetypes include a card.
type CardUsage struct {
	CardName string
	Decks    int
	Copies   int
}
