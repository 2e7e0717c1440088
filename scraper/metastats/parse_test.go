package metastats

import (
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := ParseDocument([]byte(html))
	require.NoError(t, err)
	return doc
}

func headWithDate(content string) string {
	return `<html><head>
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width">
		<meta name="description" content="Hearthstone meta">
		<meta name="updated" content="` + content + `">
		</head><body></body></html>`
}

func TestReportNameFixedWindow(t *testing.T) {
	doc := mustDoc(t, headWithDate("Updated: 2024-03-15 09:41:07"))

	name, err := ReportName(doc)

	require.NoError(t, err)
	assert.Equal(t, "meta_2024-03-15.txt", name)
}

func TestReportNameIsPositionalNotSemantic(t *testing.T) {
	// The window is applied blindly; no date detection happens.
	doc := mustDoc(t, headWithDate("Published on 2024-03-15 UTC"))

	name, err := ReportName(doc)

	require.NoError(t, err)
	assert.Equal(t, "meta_d on 2024-.txt", name)
}

func TestReportNameExactWindowLength(t *testing.T) {
	doc := mustDoc(t, headWithDate("2024-03-15123456789"))

	name, err := ReportName(doc)

	require.NoError(t, err)
	assert.Equal(t, "meta_2024-03-15.txt", name)
}

func TestReportNameCountsRunes(t *testing.T) {
	doc := mustDoc(t, headWithDate("Mis à jour: 2024-03-15 à 09h41m"))

	name, err := ReportName(doc)

	require.NoError(t, err)
	assert.Equal(t, "meta_2024-03-15.txt", name)
}

func TestReportNameTooFewMetaTags(t *testing.T) {
	doc := mustDoc(t, `<html><head><meta charset="utf-8"><meta name="a" content="b"></head></html>`)

	_, err := ReportName(doc)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, StageNamer, parseErr.Stage)
}

func TestReportNameContentTooShort(t *testing.T) {
	doc := mustDoc(t, headWithDate("2024-03-15"))

	_, err := ReportName(doc)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "too short")
}

func TestReportNameMissingContent(t *testing.T) {
	doc := mustDoc(t, `<html><head><meta charset="utf-8"><meta name="a" content="b">
		<meta name="c" content="d"><meta name="e"></head></html>`)

	_, err := ReportName(doc)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "no content attribute")
}

func TestNormalizeArchetypeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mono Red Aggro", "MonoRedAggro"},
		{"MonoRedAggro", "MonoRedAggro"},
		{"\n  Odd   Warrior\t\n", "OddWarrior"},
		{"", ""},
	}

	for _, tt := range tests {
		got := NormalizeArchetypeName(tt.in)
		assert.Equal(t, tt.want, got, "NormalizeArchetypeName(%q)", tt.in)
		assert.Equal(t, got, NormalizeArchetypeName(got), "not idempotent for %q", tt.in)
	}
}

func TestArchetypesInPageOrder(t *testing.T) {
	base, _ := url.Parse("http://metastats.net")
	doc := mustDoc(t, `<html><body><table>
		<tr><td id="archetype"><a href="/deck/1/">Mono Red Aggro</a></td></tr>
		<tr><td id="other"><a href="/nope/">Ignored</a></td></tr>
		<tr><td id="archetype"><a href="deck/2/"> Odd Warrior </a></td></tr>
		</table></body></html>`)

	it := Archetypes(doc, base)
	require.Equal(t, 2, it.Len())

	first, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "MonoRedAggro", first.Name)
	assert.Equal(t, "http://metastats.net/deck/1/", first.DecklistURL)

	second, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "OddWarrior", second.Name)
	assert.Equal(t, "http://metastats.net/deck/2/", second.DecklistURL)

	_, ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArchetypeMissingAnchorIsFatal(t *testing.T) {
	base, _ := url.Parse("http://metastats.net")
	doc := mustDoc(t, `<html><body><div id="archetype">Token Druid</div></body></html>`)

	_, _, err := Archetypes(doc, base).Next()

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, StageEnumerator, parseErr.Stage)
	assert.Equal(t, 0, parseErr.Index)
}

func TestArchetypeMissingTextIsFatal(t *testing.T) {
	base, _ := url.Parse("http://metastats.net")
	doc := mustDoc(t, `<html><body><div id="archetype"><a href="/deck/1/">  </a></div></body></html>`)

	_, _, err := Archetypes(doc, base).Next()

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "no text")
}

func TestExtractDecklistFormatting(t *testing.T) {
	doc := mustDoc(t, `<html><body><ul>
		<li class="card-list-item"><span class="card-quantity">4</span><a href="#"> Lightning Bolt </a></li>
		<li class="card-list-item"><span class="card-quantity">x2 </span><a href="#">Fireball</a></li>
		<li class="card-list-item"><span class="card-quantity">4</span><a href="#">Lightning Bolt</a></li>
		</ul></body></html>`)

	lines, err := ExtractDecklist(doc)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "4_Lightning Bolt\n", lines[0].Render())
	assert.Equal(t, "x2 _Fireball\n", lines[1].Render())
	assert.Equal(t, lines[0], lines[2])
	assert.Equal(t, "4_Lightning Bolt\nx2 _Fireball\n4_Lightning Bolt\n", RenderDecklist(lines))
}

func TestExtractDecklistEmptyPage(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>No cards</p></body></html>`)

	lines, err := ExtractDecklist(doc)

	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, "", RenderDecklist(lines))
}

func TestExtractDecklistMissingQuantityIsFatal(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="card-list-item"><span class="card-quantity">1</span><a>Ok</a></div>
		<div class="card-list-item"><a>Broken</a></div>
		</body></html>`)

	_, err := ExtractDecklist(doc)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, StageExtractor, parseErr.Stage)
	assert.Equal(t, 1, parseErr.Index)
}

func TestExtractDecklistMissingAnchorIsFatal(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="card-list-item"><span class="card-quantity">1</span>Bare</div>
		</body></html>`)

	_, err := ExtractDecklist(doc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no anchor")
}
