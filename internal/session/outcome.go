package session

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/ziadkadry99/pdfqa/internal/backend"
)

// Outcome labels how a controller operation ended.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeRejected     Outcome = "rejected"
	OutcomeServerError  Outcome = "server_error"
	OutcomeNetworkError Outcome = "network_error"
	OutcomeAbandoned    Outcome = "abandoned"
	OutcomeFailed       Outcome = "failed"
)

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrClosed):
		return OutcomeAbandoned
	case errors.Is(err, ErrInvalidFileType), errors.Is(err, ErrEmptyQuery),
		errors.Is(err, ErrNoActiveDocument), errors.Is(err, ErrNoResult):
		return OutcomeRejected
	case errors.Is(err, backend.ErrServer):
		return OutcomeServerError
	case errors.Is(err, backend.ErrNetwork):
		return OutcomeNetworkError
	default:
		return OutcomeFailed
	}
}

// failureText turns a request error into the message shown to the user.
// Server messages are shown verbatim.
func failureText(action string, err error) string {
	var se *backend.ServerError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		if errors.Is(err, backend.ErrMalformedResponse) && se.StatusCode >= 200 && se.StatusCode < 300 {
			return fmt.Sprintf("%s failed: the backend sent an unreadable response.", action)
		}
		return fmt.Sprintf("%s failed (HTTP %d).", action, se.StatusCode)
	}

	var ne *backend.NetworkError
	if errors.As(err, &ne) {
		return fmt.Sprintf("%s failed: %v. The backend may be unreachable; is the server running at %s?",
			action, ne.Err, hostOf(ne.URL))
	}
	return fmt.Sprintf("%s failed: %v", action, err)
}

// hostOf reduces a request URL to scheme and host.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

func selectedStaleText(selected, indexed string) string {
	return fmt.Sprintf("Selected %s. The backend last indexed %s; upload %s again to ask about it.",
		selected, indexed, selected)
}
