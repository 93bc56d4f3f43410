package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoscraper/internal/models"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Test Article</title><meta name="author" content="Jane Doe"/></head>
<body>
<main>
<article class="post">
<h1 class="post-title">Breaking News Headline</h1>
<span class="byline">Jane Doe</span>
<time datetime="2026-03-01T10:00:00Z">March 1, 2026</time>
<div class="post-content">
<p>First paragraph of the article body with enough text to matter.</p>
<p>Second paragraph continues the story with further detail and context so the block is substantial.</p>
<p>Third paragraph wraps things up with a conclusion that pads the content block past the size threshold used for analysis.</p>
</div>
</article>
</main>
<ul class="related">
<li><a href="/articles/1">Related one</a></li>
<li><a href="/articles/2">Related two</a></li>
<li><a href="/articles/3">Related three</a></li>
</ul>
</body>
</html>`

func TestTestSelector_TextMatch(t *testing.T) {
	report, err := TestSelector(articleHTML, "h1.post-title", "")
	require.NoError(t, err)

	assert.Equal(t, 1, report.MatchCount)
	assert.True(t, report.Matched())
	require.Len(t, report.Samples, 1)
	assert.Equal(t, "Breaking News Headline", report.Samples[0])
}

func TestTestSelector_AttributeMatch(t *testing.T) {
	report, err := TestSelector(articleHTML, "time", "datetime")
	require.NoError(t, err)

	assert.Equal(t, 1, report.MatchCount)
	require.Len(t, report.Samples, 1)
	assert.Equal(t, "2026-03-01T10:00:00Z", report.Samples[0])
}

func TestTestSelector_NoMatch(t *testing.T) {
	report, err := TestSelector(articleHTML, ".nonexistent-class", "")
	require.NoError(t, err)

	assert.Equal(t, 0, report.MatchCount)
	assert.False(t, report.Matched())
	assert.Empty(t, report.Samples)
}

func TestTestSelector_MultipleMatchesCapsSamples(t *testing.T) {
	report, err := TestSelector(articleHTML, ".post-content p", "")
	require.NoError(t, err)

	assert.Equal(t, 3, report.MatchCount)
	assert.Len(t, report.Samples, 3)
}

func TestVerifySelectorMap(t *testing.T) {
	selectorMap := &models.SelectorMap{
		SiteName: "Test Site",
		Fields: map[string]models.FieldRule{
			"title":  {Selector: "h1.post-title", Kind: models.ExtractionText},
			"author": {Selector: ".byline", Kind: models.ExtractionText},
			"date":   {Selector: "time", Attribute: "datetime", Kind: models.ExtractionAttribute},
			"bogus":  {Selector: ".does-not-exist", Kind: models.ExtractionText},
		},
	}

	reports, err := VerifySelectorMap(articleHTML, selectorMap)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.True(t, reports["title"].Matched())
	assert.True(t, reports["author"].Matched())
	assert.True(t, reports["date"].Matched())
	assert.False(t, reports["bogus"].Matched())

	formatted := FormatSelectorReports(reports, selectorMap)
	assert.Contains(t, formatted, "title: 1 match(es)")
	assert.Contains(t, formatted, `bogus: NO MATCH for selector ".does-not-exist"`)
}
