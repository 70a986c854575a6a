// Package formio is a client for Form.io compatible REST servers.
//
// # Addressing resources
//
// A [Formio] value is created from a path such as
// "https://myproject.form.io/myform/submission/5d1f..." with [New]. The path
// is parsed into identity fields (project, form, submission, action, role
// and form revision) and every URL is derived from those fields, so setters
// like [Formio.SetSubmissionID] move the URLs along with the id.
//
// # Shared state
//
// Server URLs, the session token and user, the GET cache, plugins and the
// event bus live in a [Context]. Instances made from the same Context share
// them. [DefaultContext] is used when nil is passed to [New].
//
// # Requests
//
// Every request runs through the plugin extension points of
// [github.com/formio/formio.go/pkg/plugin]: preRequest, request (or
// staticRequest), requestOptions and requestResponse. Authentication
// failures end the session and are reported on the event bus of
// [github.com/formio/formio.go/pkg/events] as well as through the returned
// error, which can be matched with errors.Is against [ErrSessionExpired],
// [ErrUnauthorized], [ErrBadToken] and [ErrRangeNotSatisfiable].
//
// # Contrib
//
// The [github.com/formio/formio.go/contrib] directory holds optional
// plugins, such as request metrics and client side rate limiting.
package formio
