package constants

// Headers
const (
	HeaderAccept       = "Accept"
	HeaderContentType  = "Content-type"
	HeaderJWTToken     = "x-jwt-token"
	HeaderRange        = "Range"
	HeaderRangeUnit    = "Range-Unit"
	HeaderContentRange = "Content-Range"
	HeaderExpire       = "x-expire"
	HeaderAllow        = "x-allow"

	MIMEApplicationJSON = "application/json"
	RangeUnitItems      = "items"
)

// Path types describe how a project is addressed on the API host.
const (
	PathTypeSubdomains     = "Subdomains"
	PathTypeSubdirectories = "Subdirectories"
)

const (
	DefaultNamespace = "formio"
	DefaultBaseURL   = "https://api.form.io"

	// BadTokenBody is the plain-text body the server answers with when it
	// cannot decode the presented token.
	BadTokenBody = "Bad Token"

	// StatusSessionExpired is the non-standard "login time-out" status.
	StatusSessionExpired = 440
)
