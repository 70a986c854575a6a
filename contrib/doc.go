// Package contrib holds optional plugins for the Form.io Go client.
//
// Nothing here is needed to talk to a Form.io server. Each subpackage hooks
// into a [github.com/formio/formio.go.Context] through its plugin registry:
// [github.com/formio/formio.go/contrib/ratelimit] throttles requests per
// host and [github.com/formio/formio.go/contrib/formiometrics] exports
// Prometheus metrics for requests, responses and the HTTP transport.
//
// These packages are outside the compatibility guarantees of the core
// client and may change between minor releases.
package contrib
