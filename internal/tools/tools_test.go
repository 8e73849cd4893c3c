package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/research-ai-mole/internal/config"
)

func testSearchConfig(endpoint string) *config.SearchConfig {
	return &config.SearchConfig{
		APIKey:      "test-key",
		APIEndpoint: endpoint,
		MaxResults:  5,
		Timeout:     5 * time.Second,
	}
}

func TestRegistryDefinitions(t *testing.T) {
	reg := NewRegistry(testSearchConfig("http://localhost"), t.TempDir())

	defs := reg.Definitions("web_search", "hackernews_search")
	require.Len(t, defs, 2)
	assert.Equal(t, "web_search", defs[0].Function.Value.Name.Value)
	assert.Equal(t, "hackernews_search", defs[1].Function.Value.Name.Value)
}

func TestRegistryDefinitionsSkipsUnknown(t *testing.T) {
	reg := NewRegistry(testSearchConfig("http://localhost"), t.TempDir())

	defs := reg.Definitions("web_search", "no_such_tool")
	assert.Len(t, defs, 1)
}

func TestRegistryInvokeUnknownTool(t *testing.T) {
	reg := NewRegistry(testSearchConfig("http://localhost"), t.TempDir())

	_, err := reg.Invoke(context.Background(), "no_such_tool", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestWebSearchInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)

		var req webSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "urban sustainability", req.Query)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"Green cities","url":"https://example.com/green","content":"City-level initiatives."}]}`))
	}))
	defer srv.Close()

	ws := NewWebSearch(testSearchConfig(srv.URL))
	out, err := ws.Invoke(context.Background(), json.RawMessage(`{"query":"urban sustainability"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "Green cities")
	assert.Contains(t, out, "https://example.com/green")
}

func TestWebSearchRequiresAPIKey(t *testing.T) {
	cfg := testSearchConfig("http://localhost")
	cfg.APIKey = ""

	ws := NewWebSearch(cfg)
	_, err := ws.Invoke(context.Background(), json.RawMessage(`{"query":"anything"}`))
	assert.ErrorIs(t, err, ErrSearchNotConfigured)
}

func TestWebSearchRejectsEmptyQuery(t *testing.T) {
	ws := NewWebSearch(testSearchConfig("http://localhost"))
	_, err := ws.Invoke(context.Background(), json.RawMessage(`{"query":"  "}`))
	require.Error(t, err)
}

func TestHackerNewsInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "zig", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":[{"title":"Zig 1.0","url":"","points":512,"num_comments":300,"objectID":"12345"}]}`))
	}))
	defer srv.Close()

	hn := NewHackerNews(5 * time.Second)
	hn.client.SetBaseURL(srv.URL)

	out, err := hn.Invoke(context.Background(), json.RawMessage(`{"query":"zig"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "Zig 1.0")
	assert.Contains(t, out, "512 points")
	// Stories without a URL fall back to the HN item page.
	assert.Contains(t, out, "news.ycombinator.com/item?id=12345")
}

const arxivFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <title>Urban Air Quality Forecasting</title>
    <summary>We study PM2.5 forecasting in metropolitan areas.</summary>
    <published>2024-01-01T00:00:00Z</published>
    <author><name>A. Researcher</name></author>
    <link href="http://arxiv.org/abs/2401.00001v1" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2401.00001v1" rel="related" title="pdf" type="application/pdf"/>
  </entry>
</feed>`

func TestArxivInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.URL.Query().Get("search_query"), "all:"))

		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(arxivFixture))
	}))
	defer srv.Close()

	ax := NewArxiv(5*time.Second, t.TempDir())
	ax.client.SetBaseURL(srv.URL)

	out, err := ax.Invoke(context.Background(), json.RawMessage(`{"query":"air quality"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "Urban Air Quality Forecasting")
	assert.Contains(t, out, "A. Researcher")
	assert.Contains(t, out, "PDF: http://arxiv.org/pdf/2401.00001v1")
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", maxToolOutput+100)
	out := truncate(long, maxToolOutput)
	assert.Len(t, out, maxToolOutput+len("\n[truncated]"))
	assert.True(t, strings.HasSuffix(out, "[truncated]"))

	short := "short"
	assert.Equal(t, short, truncate(short, maxToolOutput))
}
