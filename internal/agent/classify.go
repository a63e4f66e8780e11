package agent

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Classify converts an error from a Generator into a Failure.
func Classify(err error) Failure {
	if err == nil {
		return Failure{Kind: FailureUnknown, Message: "unknown error", Hint: HintFor(FailureUnknown)}
	}

	kind := FailureUnknown
	message := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailureTimeout
		message = "request timed out"
	case errors.Is(err, context.Canceled):
		kind = FailureCanceled
		message = "request canceled"
	default:
		if apiErr, ok := asAPIError(err); ok {
			kind = kindForAPIError(apiErr)
			if apiErr.Message != "" {
				message = apiErr.Message
			}
		}
	}

	return Failure{Kind: kind, Message: message, Hint: HintFor(kind)}
}

func asAPIError(err error) (genai.APIError, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return genai.APIError{}, false
}

func kindForAPIError(e genai.APIError) FailureKind {
	status := strings.ToUpper(e.Status)
	switch {
	case e.Code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		return FailureQuota
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden ||
		status == "UNAUTHENTICATED" || status == "PERMISSION_DENIED":
		return FailureAuth
	case e.Code == http.StatusNotFound || status == "NOT_FOUND":
		return FailureModelNotFound
	case e.Code == http.StatusBadRequest || status == "INVALID_ARGUMENT" || status == "FAILED_PRECONDITION":
		// An invalid key comes back as 400 INVALID_ARGUMENT.
		if strings.Contains(strings.ToLower(e.Message), "api key") {
			return FailureAuth
		}
		return FailureInvalidRequest
	case e.Code == http.StatusGatewayTimeout || status == "DEADLINE_EXCEEDED":
		return FailureTimeout
	case e.Code >= 500:
		return FailureUnavailable
	}
	return FailureUnknown
}
