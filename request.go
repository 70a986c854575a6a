package formio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/formio/formio.go/pkg/cache"
	"github.com/formio/formio.go/pkg/constants"
	"github.com/formio/formio.go/pkg/events"
	"github.com/formio/formio.go/pkg/plugin"
	"github.com/formio/formio.go/pkg/session"
)

// RequestOptions are per-request switches. Plugins may rewrite them in the
// requestOptions hook.
type RequestOptions struct {
	Header http.Header
	// IgnoreCache bypasses the GET cache on read. The response is still
	// cached.
	IgnoreCache bool
	// Namespace selects the session; "" uses the instance or context one.
	Namespace string
	// NoToken sends the request without the session token.
	NoToken bool
	// External marks a request to another host: no token is attached and
	// no token is adopted from the response.
	External bool
	// Range asks for an item window through the Range header.
	Range *ItemRange
}

// ItemRange is an item window, sent as "Range: <skip>-<skip+limit-1>".
type ItemRange struct {
	Skip  int
	Limit int
}

// RequestOption modifies RequestOptions.
type RequestOption func(*RequestOptions)

func WithIgnoreCache() RequestOption {
	return func(o *RequestOptions) { o.IgnoreCache = true }
}

func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) { o.Header.Set(key, value) }
}

func WithRequestNamespace(ns string) RequestOption {
	return func(o *RequestOptions) { o.Namespace = ns }
}

func WithoutToken() RequestOption {
	return func(o *RequestOptions) { o.NoToken = true }
}

func WithExternal() RequestOption {
	return func(o *RequestOptions) { o.External = true }
}

func WithItemRange(skip, limit int) RequestOption {
	return func(o *RequestOptions) { o.Range = &ItemRange{Skip: skip, Limit: limit} }
}

func newRequestOptions(opts []RequestOption) *RequestOptions {
	o := &RequestOptions{Header: http.Header{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RequestArgs describe one request as it travels through the plugin hooks.
type RequestArgs struct {
	// Formio is nil for static requests.
	Formio  *Formio
	Kind    string
	URL     string
	Method  string
	Data    any
	Options *RequestOptions
}

// Response is a server answer, or the value a request plugin produced in
// its place.
type Response struct {
	Status       int
	Header       http.Header
	Body         []byte
	ContentRange string
	// Cached is set when the body came from the GET cache.
	Cached bool
}

// Decode unmarshals the body into out. Range metadata from Content-Range is
// applied to pages.
func (r *Response) Decode(out any) error {
	if out == nil || r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("%w: %v", constants.InvalidResponse, err)
	}
	if rs, ok := out.(rangeSetter); ok && r.ContentRange != "" {
		if skip, limit, total, ok := parseContentRange(r.ContentRange); ok {
			if limit < 0 {
				limit = rs.Len()
			}
			rs.SetRange(skip, limit, total)
		}
	}
	return nil
}

type rangeSetter interface {
	Len() int
	SetRange(skip, limit, total int)
}

// parseContentRange reads "items 0-9/100", "0-9/100" or "*/100". A limit or
// total of -1 means the header did not carry one.
func parseContentRange(h string) (skip, limit, total int, ok bool) {
	h = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(h), constants.RangeUnitItems))
	span, count, found := strings.Cut(h, "/")
	if !found {
		return 0, 0, 0, false
	}
	total = -1
	if count != "*" {
		n, err := strconv.Atoi(count)
		if err != nil {
			return 0, 0, 0, false
		}
		total = n
	}
	if span == "*" {
		return 0, -1, total, true
	}
	from, to, found := strings.Cut(span, "-")
	if !found {
		return 0, 0, 0, false
	}
	a, err := strconv.Atoi(from)
	if err != nil {
		return 0, 0, 0, false
	}
	b, err := strconv.Atoi(to)
	if err != nil || b < a {
		return 0, 0, 0, false
	}
	return a, b - a + 1, total, true
}

// MakeRequest sends a request on behalf of f and decodes the answer into
// out, which may be nil.
func (f *Formio) MakeRequest(ctx context.Context, kind, url, method string, data, out any, opts ...RequestOption) error {
	return f.ctx.do(ctx, f, kind, url, method, data, out, opts)
}

// StaticRequest sends a request that belongs to no Formio instance.
// Plugins see it through the staticRequest hook instead of request.
func (c *Context) StaticRequest(ctx context.Context, url, method string, data, out any, opts ...RequestOption) error {
	return c.do(ctx, nil, "", url, method, data, out, opts)
}

func (c *Context) do(ctx context.Context, f *Formio, kind, url, method string, data, out any, opts []RequestOption) error {
	o := newRequestOptions(opts)
	if o.Namespace == "" && f != nil {
		o.Namespace = f.namespace()
	}
	resp, err := c.send(ctx, &RequestArgs{
		Formio:  f,
		Kind:    kind,
		URL:     url,
		Method:  method,
		Data:    data,
		Options: o,
	})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Context) send(ctx context.Context, args *RequestArgs) (*Response, error) {
	if args.URL == "" {
		return nil, fmt.Errorf("%w: empty url for %s", ErrMissingID, args.Kind)
	}
	args.Method = strings.ToUpper(args.Method)
	if args.Method == "" {
		args.Method = http.MethodGet
	}

	if err := c.plugins.Wait(ctx, plugin.PreRequest, args); err != nil {
		return nil, fmt.Errorf("preRequest: %w", err)
	}

	hook := plugin.Request
	if args.Formio == nil {
		hook = plugin.StaticRequest
	}
	result, err := c.plugins.First(ctx, hook, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", hook, err)
	}
	if result != nil {
		return responseFrom(result)
	}
	return c.request(ctx, args)
}

// responseFrom turns a request plugin result into a Response.
func responseFrom(v any) (*Response, error) {
	switch r := v.(type) {
	case *Response:
		return r, nil
	case []byte:
		return &Response{Status: http.StatusOK, Body: r}, nil
	case json.RawMessage:
		return &Response{Status: http.StatusOK, Body: r}, nil
	default:
		body, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		return &Response{Status: http.StatusOK, Body: body}, nil
	}
}

func (c *Context) request(ctx context.Context, args *RequestArgs) (*Response, error) {
	opts := args.Options
	ns := c.ns(opts.Namespace)

	token := ""
	if !opts.NoToken && !opts.External {
		token = c.sessions.Token(ns)
	}
	key := cache.Key(args.URL, token)
	if args.Method == http.MethodGet && !opts.IgnoreCache {
		if e, ok := c.cache.Get(key); ok {
			c.logger.Debug().Str("method", args.Method).Str("url", args.URL).Msg("formio cache hit")
			return c.alterResponse(ctx, &Response{
				Status:       http.StatusOK,
				Body:         e.Body,
				ContentRange: e.ContentRange,
				Cached:       true,
			}, args)
		}
	}

	if token != "" && c.checkTokens {
		if _, err := session.Inspect(token, c.now()); err != nil {
			switch {
			case errors.Is(err, ErrSessionExpired):
				c.endSession(ns, events.SessionExpired, err.Error())
			default:
				c.endSession(ns, events.BadToken, err.Error())
			}
			return nil, err
		}
	}

	opts, err := plugin.AlterAs(ctx, c.plugins, plugin.RequestOptions, opts, args.URL)
	if err != nil {
		return nil, fmt.Errorf("requestOptions: %w", err)
	}

	var body io.Reader = http.NoBody
	if args.Data != nil {
		raw, err := json.Marshal(args.Data)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, args.Method, args.URL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.HeaderAccept, constants.MIMEApplicationJSON)
	req.Header.Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if token != "" {
		req.Header.Set(constants.HeaderJWTToken, token)
	}
	if opts.Range != nil && opts.Range.Limit > 0 {
		req.Header.Set(constants.HeaderRangeUnit, constants.RangeUnitItems)
		req.Header.Set(constants.HeaderRange,
			fmt.Sprintf("%d-%d", opts.Range.Skip, opts.Range.Skip+opts.Range.Limit-1))
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", args.Method).Str("url", args.URL).Msg("formio request failed")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	c.logger.Debug().
		Str("method", args.Method).
		Str("url", args.URL).
		Int("status", httpResp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("formio request")

	if err := c.checkStatus(ns, httpResp.StatusCode, respBody); err != nil {
		return nil, err
	}

	if newToken := httpResp.Header.Get(constants.HeaderJWTToken); newToken != "" && !opts.External {
		introduced := args.Method == http.MethodGet && token == "" && !strings.Contains(args.URL, "token=")
		if introduced {
			c.logger.Warn().Str("url", args.URL).Msg("ignoring token introduced by an unauthenticated GET")
		} else {
			c.SetToken(ns, newToken)
		}
	}

	resp := &Response{
		Status:       httpResp.StatusCode,
		Header:       httpResp.Header,
		ContentRange: httpResp.Header.Get(constants.HeaderContentRange),
	}
	if httpResp.StatusCode != http.StatusNoContent {
		resp.Body = respBody
	}

	if args.Method == http.MethodGet {
		c.cache.Add(cache.Key(args.URL, c.sessions.Token(ns)), cache.Entry{
			Body:         resp.Body,
			ContentType:  httpResp.Header.Get(constants.HeaderContentType),
			ContentRange: resp.ContentRange,
		})
	} else {
		c.cache.Purge()
	}

	return c.alterResponse(ctx, resp, args)
}

func (c *Context) alterResponse(ctx context.Context, resp *Response, args *RequestArgs) (*Response, error) {
	resp, err := plugin.AlterAs(ctx, c.plugins, plugin.RequestResponse, resp, args)
	if err != nil {
		return nil, fmt.Errorf("requestResponse: %w", err)
	}
	return resp, nil
}

// checkStatus maps a response status to an error, ending the session on
// authentication failures.
func (c *Context) checkStatus(ns string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	text := strings.TrimSpace(string(body))
	switch {
	case status == constants.StatusSessionExpired:
		c.endSession(ns, events.SessionExpired, text)
		return newAPIError(status, body, ErrSessionExpired)
	case status == http.StatusUnauthorized:
		c.endSession(ns, events.Unauthorized, text)
		return newAPIError(status, body, ErrUnauthorized)
	case status == http.StatusRequestedRangeNotSatisfiable:
		c.events.Emit(events.RangeNotSatisfiable, text)
		return newAPIError(status, body, ErrRangeNotSatisfiable)
	case status == http.StatusGatewayTimeout:
		return newAPIError(status, body, ErrTransport)
	case text == constants.BadTokenBody:
		c.endSession(ns, events.BadToken, text)
		return newAPIError(status, body, ErrBadToken)
	default:
		return newAPIError(status, body, nil)
	}
}
