package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ashureev/gtm-insight/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	path string
	key  string
	body map[string]any
}

func newGeminiStub(t *testing.T, status int, response string) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	var mu sync.Mutex
	calls := &[]recordedCall{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		var body map[string]any
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Errorf("decode body: %v", err)
			}
		}
		key := r.Header.Get("x-goog-api-key")
		if key == "" {
			key = r.URL.Query().Get("key")
		}

		mu.Lock()
		*calls = append(*calls, recordedCall{path: r.URL.Path, key: key, body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func newStubGenerator(t *testing.T, srv *httptest.Server) *GenAIGenerator {
	t.Helper()
	gen, err := NewGenAIGenerator(context.Background(), GenAIConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return gen
}

func TestNewGenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenAIGenerator(context.Background(), GenAIConfig{})
	assert.Error(t, err)
}

func TestGenAIGeneratorSendsRequest(t *testing.T) {
	srv, calls := newGeminiStub(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"## Report\nfine"}]}}]}`)
	gen := newStubGenerator(t, srv)

	temp := float32(0.2)
	text, err := gen.Generate(context.Background(), prompt.Request{
		SystemInstruction: "persona text",
		UserContent:       "Brazil drought",
		ModelID:           "gemini-2.0-flash",
		Params:            prompt.Params{Temperature: &temp, MaxOutputTokens: 512},
		Search:            true,
	})
	require.NoError(t, err)
	assert.Equal(t, "## Report\nfine", text)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.True(t, strings.HasSuffix(call.path, "models/gemini-2.0-flash:generateContent"), call.path)
	assert.Equal(t, "test-key", call.key)

	raw, err := json.Marshal(call.body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "Brazil drought")
	assert.Contains(t, body, "persona text")
	assert.Contains(t, body, "googleSearch")
	assert.Contains(t, body, "maxOutputTokens")
}

func TestGenAIGeneratorOmitsSearchTool(t *testing.T) {
	srv, calls := newGeminiStub(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`)
	gen := newStubGenerator(t, srv)

	_, err := gen.Generate(context.Background(), prompt.Request{UserContent: "x", ModelID: "gemini-2.0-flash"})
	require.NoError(t, err)

	raw, err := json.Marshal((*calls)[0].body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "googleSearch")
}

func TestGenAIGeneratorErrorClassification(t *testing.T) {
	srv, _ := newGeminiStub(t, http.StatusNotFound,
		`{"error":{"code":404,"message":"models/gemini-9 is not found","status":"NOT_FOUND"}}`)
	gen := newStubGenerator(t, srv)

	svc := NewService(gen, nil)
	res := svc.Execute(context.Background(), prompt.Request{UserContent: "x", ModelID: "gemini-9"})
	require.False(t, res.OK())
	assert.Equal(t, FailureModelNotFound, res.Failure.Kind)
	assert.Contains(t, res.Failure.Message, "gemini-9")
}
