package constants

import "errors"

// Session errors
var (
	ErrSessionExpired      = errors.New("session expired")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrBadToken            = errors.New("bad token")
	ErrNotAuthenticated    = errors.New("you must be authenticated")
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
	ErrTransport           = errors.New("network request failed")
)

// Request errors
var (
	ErrMissingID       = errors.New("missing id")
	ErrNothingToDelete = errors.New("nothing to delete")
	ErrInvalidQuery    = errors.New("invalid query")
	ErrInvalidKind     = errors.New("invalid resource kind")
	ErrNoProjectURL    = errors.New("project url not set")
	ErrNoBaseURL       = errors.New("base url not set")
	InvalidResponse    = errors.New("invalid response") //nolint:stylecheck
)
