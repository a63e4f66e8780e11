package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/ashureev/gtm-insight/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() *Builder {
	temp := float32(0.4)
	return NewBuilder("gemini-2.0-flash", "", Params{Temperature: &temp, MaxOutputTokens: 2048}, true)
}

func TestBuildManualForwardsTextVerbatim(t *testing.T) {
	b := newTestBuilder()
	inputs := []string{"Brazil drought", "  padded  ", "line one\nline two", "한국어 뉴스"}

	for _, in := range inputs {
		req, err := b.Build(domain.ModeManual, in)
		require.NoError(t, err)
		assert.Equal(t, in, req.UserContent)
		assert.NotEmpty(t, req.SystemInstruction)
		assert.Equal(t, "gemini-2.0-flash", req.ModelID)
		assert.True(t, req.Search)
		require.NotNil(t, req.Params.Temperature)
		assert.InDelta(t, 0.4, *req.Params.Temperature, 1e-6)
		assert.Equal(t, int32(2048), req.Params.MaxOutputTokens)
	}
}

func TestBuildManualRejectsBlank(t *testing.T) {
	b := newTestBuilder()
	for _, in := range []string{"", " ", "\n\t "} {
		req, err := b.Build(domain.ModeManual, in)
		assert.True(t, errors.Is(err, ErrEmptyInput), "input %q", in)
		assert.Equal(t, Request{}, req)
	}
}

func TestBuildAutoIsDeterministic(t *testing.T) {
	b := newTestBuilder()
	first, err := b.Build(domain.ModeAuto, "")
	require.NoError(t, err)
	assert.Equal(t, AutoScanQuery, first.UserContent)
	assert.Contains(t, first.UserContent, "supply-chain disruptions")

	for _, noise := range []string{"ignored", "Brazil drought", ""} {
		if _, err := b.Build(domain.ModeManual, noise); err != nil && !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("unexpected error: %v", err)
		}
		again, err := b.Build(domain.ModeAuto, noise)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuildHomeHasNoPrompt(t *testing.T) {
	_, err := newTestBuilder().Build(domain.ModeHome, "anything")
	assert.ErrorIs(t, err, ErrNoPrompt)
}

func TestBuildUnknownMode(t *testing.T) {
	_, err := newTestBuilder().Build(domain.Mode("zzz"), "anything")
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestPersonaLanguage(t *testing.T) {
	assert.Contains(t, Persona(""), "Korean only")
	assert.Contains(t, Persona("English"), "English only")
	for _, section := range []string{"### ROLE", "### LANGUAGE", "### OUTPUT", "Sales Execution"} {
		assert.True(t, strings.Contains(Persona(""), section), "missing %s", section)
	}
}
