// Package agent talks to the hosted language model that writes reports.
package agent

// FailureKind categorizes why a generation attempt did not produce a report.
type FailureKind string

const (
	// FailureNotConnected means no API key is configured.
	FailureNotConnected FailureKind = "not_connected"
	// FailureQuota means the key ran out of quota or hit a rate limit.
	FailureQuota FailureKind = "quota"
	// FailureAuth means the key was rejected.
	FailureAuth FailureKind = "auth"
	// FailureModelNotFound means the configured model name is unknown to the service.
	FailureModelNotFound FailureKind = "model_not_found"
	// FailureInvalidRequest means the service refused the request shape, e.g. a tool config.
	FailureInvalidRequest FailureKind = "invalid_request"
	// FailureTimeout means the call did not finish in time.
	FailureTimeout FailureKind = "timeout"
	// FailureCanceled means the caller went away before the call finished.
	FailureCanceled FailureKind = "canceled"
	// FailureUnavailable means the service reported a server-side error.
	FailureUnavailable FailureKind = "unavailable"
	// FailureEmpty means the call succeeded but returned no text.
	FailureEmpty FailureKind = "empty"
	// FailureUnknown covers everything else.
	FailureUnknown FailureKind = "unknown"
)

// Failure is a user-presentable description of a failed call.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

// Result is the outcome of one generation attempt: either text or a Failure.
type Result struct {
	Text    string   `json:"text,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// Succeeded returns a successful result.
func Succeeded(text string) Result {
	return Result{Text: text}
}

// Failed returns a failed result.
func Failed(f Failure) Result {
	return Result{Failure: &f}
}

// OK reports whether the result carries generated text.
func (r Result) OK() bool {
	return r.Failure == nil
}

var hints = map[FailureKind]string{
	FailureNotConnected:   "Set GOOGLE_API_KEY and restart the portal.",
	FailureQuota:          "The API key is out of quota. Wait a minute or switch MODEL_NAME to a model on the free tier.",
	FailureAuth:           "The API key was rejected. Check GOOGLE_API_KEY.",
	FailureModelNotFound:  "MODEL_NAME is not available to this API key. Pick a model your key can use.",
	FailureInvalidRequest: "The request was refused. Try disabling ENABLE_SEARCH or lowering MAX_OUTPUT_TOKENS.",
	FailureTimeout:        "The model took too long to answer. Try again.",
	FailureCanceled:       "The request was interrupted before the model answered.",
	FailureUnavailable:    "The model service is having trouble. Try again shortly.",
	FailureEmpty:          "The model returned nothing. Rephrase the input and try again.",
	FailureUnknown:        "Check the configured model name and API key.",
}

// HintFor returns the help text shown next to a failure of kind k.
func HintFor(k FailureKind) string {
	if h, ok := hints[k]; ok {
		return h
	}
	return hints[FailureUnknown]
}
