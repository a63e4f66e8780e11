// Package portal ties the view router, access gate, prompt builder and
// generation service into the user-facing interaction flow.
package portal

import (
	"context"
	"errors"
	"html/template"
	"log/slog"

	"github.com/ashureev/gtm-insight/internal/agent"
	"github.com/ashureev/gtm-insight/internal/domain"
	"github.com/ashureev/gtm-insight/internal/gate"
	"github.com/ashureev/gtm-insight/internal/prompt"
	"github.com/ashureev/gtm-insight/internal/view"
)

// Warnings shown instead of a report when no call was made.
const (
	WarnEmptyInput   = "Please enter a news snippet or topic before running the analysis."
	WarnNotConnected = "No API key configured. The portal is not connected to the model service."
	WarnAccessDenied = "Access denied."
	WarnNoPrompt     = "Choose auto scan or manual input first."
)

// Executor runs a prompt request. It is satisfied by *agent.Service.
type Executor interface {
	Connected() bool
	Execute(ctx context.Context, req prompt.Request) agent.Result
}

// MarkdownRenderer turns report text into HTML. It is satisfied by *report.Renderer.
type MarkdownRenderer interface {
	Render(markdown string) (template.HTML, error)
}

// Report is what a generate action shows to the user.
type Report struct {
	Mode    domain.Mode     `json:"mode"`
	Request *prompt.Request `json:"-"`
	Result  *agent.Result   `json:"result,omitempty"`
	Warning string          `json:"warning,omitempty"`
	HTML    template.HTML   `json:"-"`
}

// OK reports whether the report holds generated text.
func (r Report) OK() bool {
	return r.Result != nil && r.Result.OK()
}

// Portal implements the session interaction flow.
type Portal struct {
	gate     *gate.Gate
	builder  *prompt.Builder
	executor Executor
	renderer MarkdownRenderer
	logger   *slog.Logger
}

// New creates a Portal.
func New(g *gate.Gate, builder *prompt.Builder, executor Executor, renderer MarkdownRenderer, logger *slog.Logger) *Portal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Portal{
		gate:     g,
		builder:  builder,
		executor: executor,
		renderer: renderer,
		logger:   logger,
	}
}

// Gate returns the access gate.
func (p *Portal) Gate() *gate.Gate {
	return p.gate
}

// Connected reports whether an API key is configured.
func (p *Portal) Connected() bool {
	return p.executor != nil && p.executor.Connected()
}

// ModelID returns the model requests are sent to.
func (p *Portal) ModelID() string {
	return p.builder.ModelID
}

// Allowed reports whether s passes the access gate.
func (p *Portal) Allowed(s domain.Session) bool {
	return p.gate.Allowed(s)
}

// Login checks candidate against the access gate.
func (p *Portal) Login(s domain.Session, candidate string) (domain.Session, error) {
	next, ok := p.gate.Authenticate(s, candidate)
	if !ok {
		p.logger.Info("Login rejected", "session_id", s.ID)
		return s, gate.ErrAccessDenied
	}
	p.logger.Info("Login accepted", "session_id", s.ID)
	return next, nil
}

// Navigate moves s to target.
func (p *Portal) Navigate(s domain.Session, target domain.Mode) domain.Session {
	return view.Navigate(s, target)
}

// Generate builds the request for the session's current mode and runs it.
// The returned report always renders; failures never escape as errors.
func (p *Portal) Generate(ctx context.Context, s domain.Session, userText string) Report {
	rep := Report{Mode: s.Mode}

	if !p.Allowed(s) {
		rep.Warning = WarnAccessDenied
		return rep
	}

	req, err := p.builder.Build(s.Mode, userText)
	switch {
	case errors.Is(err, prompt.ErrEmptyInput):
		rep.Warning = WarnEmptyInput
		return rep
	case err != nil:
		rep.Warning = WarnNoPrompt
		return rep
	}
	rep.Request = &req

	if !p.Connected() {
		rep.Warning = WarnNotConnected
		return rep
	}

	res := p.executor.Execute(ctx, req)
	rep.Result = &res
	if !res.OK() {
		return rep
	}

	if p.renderer != nil {
		html, err := p.renderer.Render(res.Text)
		if err != nil {
			p.logger.Warn("Failed to render report", "session_id", s.ID, "error", err)
			html = template.HTML(template.HTMLEscapeString(res.Text))
		}
		rep.HTML = html
	}
	return rep
}
