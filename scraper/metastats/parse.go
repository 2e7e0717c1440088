package metastats

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"metastats-scraper/models"
)

// Selectors for the metastats page structure.
const (
	archetypeSelector    = `[id="archetype"]`
	cardItemSelector     = ".card-list-item"
	cardQuantitySelector = ".card-quantity"
	headMetaSelector     = "head meta"
)

// The publish date sits in the fourth <meta> of <head>, 19 to 9 characters
// from the end of its content attribute.
const (
	dateMetaIndex   = 3
	dateWindowStart = 19
	dateWindowEnd   = 9
)

// ParseDocument parses raw HTML into a queryable document.
func ParseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Stage: StageDocument, Index: -1, Message: "failed to parse HTML", Cause: err}
	}
	return doc, nil
}

// ReportName derives the dated report filename from the index page head.
// It is the only place that knows where the publish date lives.
func ReportName(doc *goquery.Document) (string, error) {
	metas := doc.Find(headMetaSelector)
	if metas.Length() <= dateMetaIndex {
		return "", &ParseError{
			Stage:   StageNamer,
			Index:   -1,
			Message: "head has fewer than 4 meta tags",
		}
	}

	content, ok := metas.Eq(dateMetaIndex).Attr("content")
	if !ok {
		return "", &ParseError{Stage: StageNamer, Index: dateMetaIndex, Message: "meta tag has no content attribute"}
	}

	runes := []rune(content)
	if len(runes) < dateWindowStart {
		return "", &ParseError{
			Stage:   StageNamer,
			Index:   dateMetaIndex,
			Message: "meta content too short for date window: " + content,
		}
	}

	date := string(runes[len(runes)-dateWindowStart : len(runes)-dateWindowEnd])
	return "meta_" + date + ".txt", nil
}

// NormalizeArchetypeName removes every whitespace character from a display name.
// Tabs and newlines go too, not only spaces, so the name always fits on one line.
func NormalizeArchetypeName(text string) string {
	return strings.Join(strings.Fields(text), "")
}

// ArchetypeIterator walks the archetype entries of an index page in document order.
// Entries are parsed lazily, so a malformed entry past the point where the
// caller stops is never inspected.
type ArchetypeIterator struct {
	sel  *goquery.Selection
	base *url.URL
	pos  int
}

// Archetypes returns an iterator over the index page's archetype entries.
// Relative links are resolved against base.
func Archetypes(doc *goquery.Document, base *url.URL) *ArchetypeIterator {
	return &ArchetypeIterator{sel: doc.Find(archetypeSelector), base: base}
}

// Len reports how many archetype elements the page holds.
func (it *ArchetypeIterator) Len() int {
	return it.sel.Length()
}

// Next returns the next entry. ok is false once the page is exhausted.
func (it *ArchetypeIterator) Next() (entry models.ArchetypeEntry, ok bool, err error) {
	if it.pos >= it.sel.Length() {
		return models.ArchetypeEntry{}, false, nil
	}
	idx := it.pos
	it.pos++

	s := it.sel.Eq(idx)
	name := NormalizeArchetypeName(s.Text())
	if name == "" {
		return models.ArchetypeEntry{}, false, &ParseError{Stage: StageEnumerator, Index: idx, Message: "archetype has no text"}
	}

	href, exists := s.Find("a").First().Attr("href")
	if !exists {
		return models.ArchetypeEntry{}, false, &ParseError{
			Stage:   StageEnumerator,
			Index:   idx,
			Message: "archetype " + name + " has no anchor href",
		}
	}

	link, err := it.base.Parse(href)
	if err != nil {
		return models.ArchetypeEntry{}, false, &ParseError{
			Stage:   StageEnumerator,
			Index:   idx,
			Message: "invalid decklist href " + href,
			Cause:   err,
		}
	}

	return models.ArchetypeEntry{Name: name, DecklistURL: link.String()}, true, nil
}

// ExtractDecklist reads every card-list item of a decklist page in order.
// Duplicates are preserved.
func ExtractDecklist(doc *goquery.Document) ([]models.DecklistLine, error) {
	var (
		lines   []models.DecklistLine
		itemErr error
	)

	doc.Find(cardItemSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		anchor := s.Find("a").First()
		if anchor.Length() == 0 {
			itemErr = &ParseError{Stage: StageExtractor, Index: i, Message: "card item has no anchor"}
			return false
		}
		quantity := s.Find(cardQuantitySelector).First()
		if quantity.Length() == 0 {
			itemErr = &ParseError{Stage: StageExtractor, Index: i, Message: "card item has no quantity"}
			return false
		}

		lines = append(lines, models.DecklistLine{
			Quantity: quantity.Text(),
			CardName: strings.TrimSpace(anchor.Text()),
		})
		return true
	})

	if itemErr != nil {
		return nil, itemErr
	}
	return lines, nil
}

// RenderDecklist concatenates the report lines for a decklist.
func RenderDecklist(lines []models.DecklistLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Render())
	}
	return b.String()
}
