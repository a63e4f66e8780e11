package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/gtm-insight/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPage struct {
	Title       string
	Subtitle    string
	Connected   bool
	Model       string
	Input       string
	Error       string
	Report      any
	Entries     []view.Action
	Nav         []view.Action
	Generate    *view.Action
	TakesInput  bool
	CanGenerate bool
}

var (
	analyzeAction = view.Action{Kind: view.ActionGenerate, Label: "Analyze", Method: "post", Path: "/generate"}
	homeAction    = view.Action{Kind: view.ActionNavigate, Label: "Home", Method: "post", Path: "/navigate/home"}
)

func TestRendererParsesAllPages(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, page := range []string{"home.html", "analysis.html", "login.html"} {
		_, ok := r.pages[page]
		assert.True(t, ok, "missing page %s", page)
	}
	_, ok := r.pages["_report.html"]
	assert.False(t, ok, "partials must not be pages")
	_, ok = r.pages["layout.html"]
	assert.False(t, ok, "layout must not be a page")
}

func TestRenderEscapesInput(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusOK, "analysis.html", testPage{
		Title:       "Manual news analysis",
		Connected:   true,
		Model:       "gemini-2.0-flash",
		Input:       "<script>x</script>",
		Nav:         []view.Action{homeAction},
		Generate:    &analyzeAction,
		TakesInput:  true,
		CanGenerate: true,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "gemini-2.0-flash")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, `action="/navigate/home"`)
	assert.Contains(t, body, "<textarea")
	assert.NotContains(t, body, "disabled")
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
}

func TestRenderDisconnectedWarning(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	run := view.Action{Kind: view.ActionGenerate, Label: "Run scan", Method: "post", Path: "/generate"}
	r.Render(rec, http.StatusOK, "analysis.html", testPage{Title: "Market risk scan", Model: "m", Generate: &run})

	body := rec.Body.String()
	assert.Contains(t, body, "No API key")
	assert.Contains(t, body, "disabled")
	assert.NotContains(t, body, "<textarea", "the scan screen takes no input")
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusOK, "nope.html", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStaticHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/portal.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".report")
}
