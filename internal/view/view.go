// Package view maps session modes to renderable screens.
package view

import "github.com/ashureev/gtm-insight/internal/domain"

// ActionKind says what submitting an action does.
type ActionKind string

const (
	// ActionNavigate switches the session to another view.
	ActionNavigate ActionKind = "navigate"
	// ActionGenerate runs the view's report request.
	ActionGenerate ActionKind = "generate"
)

// Action is a button offered on a screen. Heading and Description are
// shown only where the action is presented as an entry card.
type Action struct {
	Kind        ActionKind
	Label       string
	Method      string
	Path        string
	Heading     string
	Description string
}

// View describes the screen bound to a mode.
type View struct {
	Mode     domain.Mode
	Title    string
	Subtitle string
	Template string
	// Generates is true when the screen offers a generate action.
	Generates bool
	// TakesInput is true when the screen has the free-text field.
	TakesInput bool
	Actions    []Action
}

func navigateTo(m domain.Mode, label string) Action {
	return Action{Kind: ActionNavigate, Label: label, Method: "post", Path: "/navigate/" + string(m)}
}

func generate(label string) Action {
	return Action{Kind: ActionGenerate, Label: label, Method: "post", Path: "/generate"}
}

func entry(a Action, heading, description string) Action {
	a.Heading = heading
	a.Description = description
	return a
}

var views = map[domain.Mode]View{
	domain.ModeHome: {
		Mode:     domain.ModeHome,
		Title:    "Global Market Strategist",
		Subtitle: "GTM strategy tool",
		Template: "home.html",
		Actions: []Action{
			entry(navigateTo(domain.ModeAuto, "Start scan"),
				"AI auto scan", "Scan recent supply-chain disruptions in global agri-food trade."),
			entry(navigateTo(domain.ModeManual, "Manual input"),
				"Expert analysis", "Paste a news snippet or name a topic to analyse."),
		},
	},
	domain.ModeAuto: {
		Mode:      domain.ModeAuto,
		Title:     "Market risk scan",
		Subtitle:  "Scan recent supply-chain disruptions",
		Template:  "analysis.html",
		Generates: true,
		Actions: []Action{
			generate("Run scan"),
			navigateTo(domain.ModeHome, "Home"),
		},
	},
	domain.ModeManual: {
		Mode:       domain.ModeManual,
		Title:      "Manual news analysis",
		Subtitle:   "Paste a news snippet or name a topic",
		Template:   "analysis.html",
		Generates:  true,
		TakesInput: true,
		Actions: []Action{
			generate("Analyze"),
			navigateTo(domain.ModeHome, "Home"),
		},
	},
}

// Navigate returns s with its mode set to target. Navigating to the
// current mode returns s unchanged.
func Navigate(s domain.Session, target domain.Mode) domain.Session {
	if s.Mode == target {
		return s
	}
	s.Mode = target
	return s
}

// Current returns the view bound to mode. Unknown modes fall back to home.
func Current(mode domain.Mode) View {
	if v, ok := views[mode]; ok {
		return v
	}
	return views[domain.ModeHome]
}
