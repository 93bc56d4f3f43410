package specialists

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
	"autoscraper/internal/services/llm"
)

type fakeGenerator struct {
	response string
	err      error
	lastReq  *llm.ContentRequest
}

func (g *fakeGenerator) GenerateContent(_ context.Context, req *llm.ContentRequest) (*llm.ContentResponse, error) {
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return &llm.ContentResponse{Text: g.response}, nil
}

type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*models.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page{URL: url, HTML: f.html, Renderer: "static", FetchedAt: time.Now()}, nil
}

type fakeSandbox struct {
	result map[string]interface{}
	err    error
}

func (s *fakeSandbox) Execute(context.Context, string, string) (map[string]interface{}, error) {
	return s.result, s.err
}

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

const testPageHTML = `<html><body>
<article><h1 class="title">Headline</h1>
<time datetime="2026-01-02">Jan 2</time>
<div class="body"><p>Enough body text to register as content in the structure report and digest.</p></div>
</article>
</body></html>`

func TestAnalyst_Analyze(t *testing.T) {
	gen := &fakeGenerator{response: `{
		"site_name": "Example",
		"fields": {
			"title": {"selector": "h1.title", "kind": "text"},
			"date": {"selector": "time", "attribute": "datetime", "kind": "attribute"}
		},
		"notes": "semantic selectors"
	}`}
	analyst := NewAnalyst(gen, &fakeFetcher{html: testPageHTML}, "gemini-2.5-flash", testLogger())

	selectorMap, err := analyst.Analyze(context.Background(), interfaces.AnalystTask{
		URL:    "https://example.com/article",
		Prompt: "extract title and date",
		Kind:   models.ScraperKindContent,
	})
	require.NoError(t, err)

	assert.Equal(t, "Example", selectorMap.SiteName)
	assert.Equal(t, "h1.title", selectorMap.Fields["title"].Selector)
	assert.Equal(t, "datetime", selectorMap.Fields["date"].Attribute)
	// Verification summary is appended to the notes
	assert.Contains(t, selectorMap.Notes, "Verification:")
	assert.Contains(t, selectorMap.Notes, "title: 1 match(es)")

	require.NotNil(t, gen.lastReq)
	assert.Equal(t, "gemini-2.5-flash", gen.lastReq.Model)
	assert.NotEmpty(t, gen.lastReq.OutputSchema)
	assert.Contains(t, gen.lastReq.Messages[0].Content, "extract title and date")
}

func TestAnalyst_Analyze_IncludesFeedbackAndPriorMap(t *testing.T) {
	gen := &fakeGenerator{response: `{"fields": {"title": {"selector": "h1", "kind": "text"}}}`}
	analyst := NewAnalyst(gen, &fakeFetcher{html: testPageHTML}, "gemini-2.5-flash", testLogger())

	_, err := analyst.Analyze(context.Background(), interfaces.AnalystTask{
		URL:    "https://example.com/article",
		Prompt: "extract title",
		Kind:   models.ScraperKindContent,
		PriorMap: &models.SelectorMap{
			Fields: map[string]models.FieldRule{
				"title": {Selector: ".wrong", Kind: models.ExtractionText},
			},
		},
		Feedback: "fields came back empty: title",
	})
	require.NoError(t, err)

	assert.Contains(t, gen.lastReq.Messages[0].Content, "FAILED validation")
	assert.Contains(t, gen.lastReq.Messages[0].Content, ".wrong")
	assert.Contains(t, gen.lastReq.Messages[0].Content, "fields came back empty: title")
}

func TestAnalyst_Analyze_FetchFailure(t *testing.T) {
	analyst := NewAnalyst(&fakeGenerator{}, &fakeFetcher{err: errors.New("connection refused")}, "m", testLogger())

	_, err := analyst.Analyze(context.Background(), interfaces.AnalystTask{URL: "https://example.com", Kind: models.ScraperKindContent})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch")
}

func TestParseSelectorMap_ArrayForm(t *testing.T) {
	selectorMap, err := parseSelectorMap(`{
		"site_name": "Example",
		"fields": [
			{"name": "urls", "selector": "main a", "attribute": "href", "kind": "url_list"}
		]
	}`, models.ScraperKindList)
	require.NoError(t, err)

	assert.Equal(t, "main a", selectorMap.Fields["urls"].Selector)
	assert.Equal(t, models.ExtractionURLList, selectorMap.Fields["urls"].Kind)
}

func TestParseSelectorMap_FencedResponse(t *testing.T) {
	selectorMap, err := parseSelectorMap("```json\n{\"fields\": {\"title\": {\"selector\": \"h1\", \"kind\": \"text\"}}}\n```", models.ScraperKindContent)
	require.NoError(t, err)
	assert.Equal(t, "h1", selectorMap.Fields["title"].Selector)
}

func TestParseSelectorMap_ListWithoutURLListField(t *testing.T) {
	_, err := parseSelectorMap(`{"fields": {"title": {"selector": "h1", "kind": "text"}}}`, models.ScraperKindList)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url_list")
}

func TestParseSelectorMap_InvalidJSON(t *testing.T) {
	_, err := parseSelectorMap("not json at all", models.ScraperKindContent)
	require.Error(t, err)
}

func TestCoder_GenerateCode(t *testing.T) {
	source := `(() => {
	const result = {};
	const el = document.querySelector("h1.title");
	result.title = el ? el.textContent.trim() : null;
	return result;
})()`
	gen := &fakeGenerator{response: "```javascript\n" + source + "\n```"}
	coder := NewCoder(gen, "claude-sonnet-4-20250514", testLogger())

	selectorMap := models.SelectorMap{
		Fields: map[string]models.FieldRule{
			"title": {Selector: "h1.title", Kind: models.ExtractionText},
		},
	}
	artifact, err := coder.GenerateCode(context.Background(), interfaces.CoderTask{
		URL:  "https://example.com/article",
		Kind: models.ScraperKindContent,
		Map:  selectorMap,
	})
	require.NoError(t, err)

	assert.Equal(t, source, artifact.Source)
	assert.Equal(t, "javascript", artifact.Language)
	assert.Equal(t, selectorMap, artifact.Map)
	assert.Contains(t, gen.lastReq.Messages[0].Content, "h1.title")
}

func TestCoder_GenerateCode_IncludesPriorSourceAndFeedback(t *testing.T) {
	gen := &fakeGenerator{response: `(() => { return {"title": document.querySelector("h1")}; })()`}
	coder := NewCoder(gen, "m", testLogger())

	_, err := coder.GenerateCode(context.Background(), interfaces.CoderTask{
		URL:         "https://example.com",
		Kind:        models.ScraperKindContent,
		Map:         models.SelectorMap{Fields: map[string]models.FieldRule{"title": {Selector: "h1", Kind: models.ExtractionText}}},
		PriorSource: `(() => { return document.q("h1"); })()`,
		Feedback:    "TypeError: document.q is not a function",
	})
	require.NoError(t, err)

	assert.Contains(t, gen.lastReq.Messages[0].Content, "FAILED at runtime")
	assert.Contains(t, gen.lastReq.Messages[0].Content, "document.q is not a function")
}

func TestCoder_GenerateCode_RejectsNonDOMSource(t *testing.T) {
	gen := &fakeGenerator{response: "Sure! Here is an explanation of the scraper instead of code."}
	coder := NewCoder(gen, "m", testLogger())

	_, err := coder.GenerateCode(context.Background(), interfaces.CoderTask{
		URL:  "https://example.com",
		Kind: models.ScraperKindContent,
		Map:  models.SelectorMap{Fields: map[string]models.FieldRule{"title": {Selector: "h1", Kind: models.ExtractionText}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without DOM queries")
}

func contentTask(result map[string]interface{}) (interfaces.ValidatorTask, *fakeSandbox) {
	task := interfaces.ValidatorTask{
		URL:  "https://example.com/article",
		Kind: models.ScraperKindContent,
		Artifact: models.ScraperArtifact{
			Source:   "(() => ({}))()",
			Language: "javascript",
			Map: models.SelectorMap{
				Fields: map[string]models.FieldRule{
					"title":  {Selector: "h1", Kind: models.ExtractionText},
					"author": {Selector: ".byline", Kind: models.ExtractionText},
				},
			},
		},
	}
	return task, &fakeSandbox{result: result}
}

func TestValidator_ContentPass(t *testing.T) {
	task, sandbox := contentTask(map[string]interface{}{"title": "Headline", "author": "Jane"})
	validator := NewValidator(sandbox, testLogger())

	result, err := validator.Validate(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, models.ValidationPass, result.Status)
	require.NotNil(t, result.Extracted["title"])
	assert.Equal(t, "Headline", *result.Extracted["title"])
}

func TestValidator_ContentFail_NullField(t *testing.T) {
	task, sandbox := contentTask(map[string]interface{}{"title": "Headline", "author": nil})
	validator := NewValidator(sandbox, testLogger())

	result, err := validator.Validate(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, models.ValidationFail, result.Status)
	assert.Empty(t, result.RawError)
	assert.Nil(t, result.Extracted["author"])
	assert.Contains(t, result.Detail, "author")
	assert.Equal(t, []string{"author"}, result.MissingFields([]string{"title", "author"}))
}

func TestValidator_RuntimeError(t *testing.T) {
	task, sandbox := contentTask(map[string]interface{}{
		"__error": "TypeError: Cannot read properties of null (reading 'textContent')\n    at <anonymous>:3:20",
	})
	validator := NewValidator(sandbox, testLogger())

	result, err := validator.Validate(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, models.ValidationFail, result.Status)
	assert.Contains(t, result.RawError, "TypeError")
	assert.Contains(t, result.Detail, "runtime error")
}

func TestValidator_ListPass(t *testing.T) {
	sandbox := &fakeSandbox{result: map[string]interface{}{
		"urls": []interface{}{
			"https://example.com/a",
			"https://example.com/b",
			"https://example.com/a", // duplicate
			"javascript:void(0)",    // not http(s)
			"",
		},
	}}
	validator := NewValidator(sandbox, testLogger())

	result, err := validator.Validate(context.Background(), interfaces.ValidatorTask{
		URL:  "https://example.com/news",
		Kind: models.ScraperKindList,
		Artifact: models.ScraperArtifact{
			Map: models.SelectorMap{Fields: map[string]models.FieldRule{
				"urls": {Selector: "main a", Attribute: "href", Kind: models.ExtractionURLList},
			}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ValidationPass, result.Status)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, result.URLs)
}

func TestValidator_ListFail_Empty(t *testing.T) {
	sandbox := &fakeSandbox{result: map[string]interface{}{"urls": []interface{}{}}}
	validator := NewValidator(sandbox, testLogger())

	result, err := validator.Validate(context.Background(), interfaces.ValidatorTask{
		URL:      "https://example.com/news",
		Kind:     models.ScraperKindList,
		Artifact: models.ScraperArtifact{Map: models.SelectorMap{Fields: map[string]models.FieldRule{"urls": {Selector: "a", Kind: models.ExtractionURLList}}}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ValidationFail, result.Status)
	assert.Contains(t, result.Detail, "no usable URLs")
}

func TestService_WrapsInfrastructureFailures(t *testing.T) {
	cfg := common.DefaultConfig()
	service := NewService(cfg, &fakeGenerator{err: errors.New("connection refused")}, &fakeFetcher{html: testPageHTML}, &fakeSandbox{}, testLogger())

	_, err := service.Analyze(context.Background(), interfaces.AnalystTask{
		URL:    "https://example.com",
		Prompt: "anything",
		Kind:   models.ScraperKindContent,
	})
	require.Error(t, err)

	var gatewayErr *interfaces.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "analyst", gatewayErr.Role)
}

func TestService_SandboxFailureIsGatewayError(t *testing.T) {
	cfg := common.DefaultConfig()
	service := NewService(cfg, &fakeGenerator{}, &fakeFetcher{html: testPageHTML}, &fakeSandbox{err: errors.New("browser crashed")}, testLogger())

	_, err := service.Validate(context.Background(), interfaces.ValidatorTask{
		URL:      "https://example.com",
		Kind:     models.ScraperKindContent,
		Artifact: models.ScraperArtifact{Source: "(() => ({}))()"},
	})
	require.Error(t, err)

	var gatewayErr *interfaces.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "validator", gatewayErr.Role)
}
