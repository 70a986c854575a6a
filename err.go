package formio

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/formio/formio.go/pkg/constants"
)

// Errors surfaced by the facade. Match them with errors.Is.
var (
	ErrSessionExpired      = constants.ErrSessionExpired
	ErrUnauthorized        = constants.ErrUnauthorized
	ErrBadToken            = constants.ErrBadToken
	ErrNotAuthenticated    = constants.ErrNotAuthenticated
	ErrRangeNotSatisfiable = constants.ErrRangeNotSatisfiable
	ErrTransport           = constants.ErrTransport
	ErrMissingID           = constants.ErrMissingID
	ErrNothingToDelete     = constants.ErrNothingToDelete
	ErrInvalidQuery        = constants.ErrInvalidQuery
	ErrInvalidKind         = constants.ErrInvalidKind
	ErrNoProjectURL        = constants.ErrNoProjectURL
	ErrNoBaseURL           = constants.ErrNoBaseURL
)

// ValidationError is one message of a failed validation, either from the
// server or from a submit hook.
type ValidationError struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// ValidationErrors is returned, not raised, so that callers can render the
// messages next to the offending fields.
type ValidationErrors []ValidationError

// Messages returns the plain messages.
func (v ValidationErrors) Messages() []string {
	out := make([]string, len(v))
	for i, e := range v {
		out[i] = e.Message
	}
	return out
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Body    []byte
	// Details holds per-field messages of a server-side ValidationError.
	Details ValidationErrors

	kind error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.kind != nil {
		return fmt.Sprintf("formio: %d %s: %s", e.Status, e.kind, msg)
	}
	return fmt.Sprintf("formio: %d %s", e.Status, msg)
}

// Unwrap exposes the sentinel for session and range failures.
func (e *APIError) Unwrap() error {
	return e.kind
}

// Is matches another *APIError with the same status, or any *APIError when
// the target status is zero.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Status == 0 || t.Status == e.Status
}

func newAPIError(status int, body []byte, kind error) *APIError {
	e := &APIError{Status: status, Body: body, kind: kind}

	if msg, err := jsonparser.GetString(body, "message"); err == nil {
		e.Message = msg
	} else if len(body) > 0 && body[0] != '{' && body[0] != '[' {
		e.Message = strings.TrimSpace(string(body))
	}

	_, _ = jsonparser.ArrayEach(body, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		var d ValidationError
		d.Message, _ = jsonparser.GetString(value, "message")
		if path, err := jsonparser.GetString(value, "path"); err == nil {
			d.Path = path
		} else {
			var parts []string
			_, _ = jsonparser.ArrayEach(value, func(p []byte, t jsonparser.ValueType, _ int, _ error) {
				parts = append(parts, string(p))
			}, "path")
			d.Path = strings.Join(parts, ".")
		}
		e.Details = append(e.Details, d)
	}, "details")

	return e
}
