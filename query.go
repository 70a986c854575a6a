package formio

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/formio/formio.go/pkg/models"
)

// QueryParams is anything that renders to a query string: a *Query or a
// RawQuery.
type QueryParams interface {
	Encode() (string, error)
}

// Query is a typed index filter.
type Query struct {
	Type   models.FormType
	Limit  *int
	Skip   *int
	Select []string
	Sort   string
	// Live asks the server to compute results without its cache.
	Live bool
	// Regex maps a field path to a pattern, sent as <field>__regex.
	Regex map[string]string
	// Filters are sent verbatim, for operators such as data.age__gt.
	Filters map[string]string
}

func NewQuery() *Query {
	return &Query{}
}

func (q *Query) WithType(t models.FormType) *Query {
	q.Type = t
	return q
}

func (q *Query) WithLimit(n int) *Query {
	q.Limit = &n
	return q
}

func (q *Query) WithSkip(n int) *Query {
	q.Skip = &n
	return q
}

func (q *Query) WithSelect(fields ...string) *Query {
	q.Select = append(q.Select, fields...)
	return q
}

func (q *Query) WithSort(sort string) *Query {
	q.Sort = sort
	return q
}

func (q *Query) WithRegex(field, pattern string) *Query {
	if q.Regex == nil {
		q.Regex = make(map[string]string)
	}
	q.Regex[field] = pattern
	return q
}

// Where adds a verbatim filter.
func (q *Query) Where(key, value string) *Query {
	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}
	q.Filters[key] = value
	return q
}

func (q *Query) Validate() error {
	if q == nil {
		return nil
	}
	if q.Limit != nil && *q.Limit < 0 {
		return fmt.Errorf("%w: limit %d", ErrInvalidQuery, *q.Limit)
	}
	if q.Skip != nil && *q.Skip < 0 {
		return fmt.Errorf("%w: skip %d", ErrInvalidQuery, *q.Skip)
	}
	if q.Type != "" && !q.Type.Valid() {
		return fmt.Errorf("%w: type %q", ErrInvalidQuery, q.Type)
	}
	for field := range q.Regex {
		if field == "" {
			return fmt.Errorf("%w: empty regex field", ErrInvalidQuery)
		}
	}
	for key := range q.Filters {
		if key == "" {
			return fmt.Errorf("%w: empty filter key", ErrInvalidQuery)
		}
	}
	return nil
}

// Encode validates q and renders "?k=v&..." with keys in sorted order, or
// "" for an empty query.
func (q *Query) Encode() (string, error) {
	if q == nil {
		return "", nil
	}
	if err := q.Validate(); err != nil {
		return "", err
	}
	v := url.Values{}
	for k, val := range q.Filters {
		v.Set(k, val)
	}
	for field, pattern := range q.Regex {
		v.Set(field+"__regex", pattern)
	}
	if q.Type != "" {
		v.Set("type", string(q.Type))
	}
	if q.Limit != nil {
		v.Set("limit", strconv.Itoa(*q.Limit))
	}
	if q.Skip != nil {
		v.Set("skip", strconv.Itoa(*q.Skip))
	}
	if len(q.Select) > 0 {
		v.Set("select", strings.Join(q.Select, ","))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Live {
		v.Set("live", "1")
	}
	if len(v) == 0 {
		return "", nil
	}
	return "?" + v.Encode(), nil
}

func (q *Query) limitSkip() (limit, skip int, ok bool) {
	if q == nil || q.Limit == nil {
		return 0, 0, false
	}
	if q.Skip != nil {
		skip = *q.Skip
	}
	return *q.Limit, skip, true
}

// RawQuery is a query string passed through as is, with or without the
// leading "?".
type RawQuery string

func (r RawQuery) Encode() (string, error) {
	s := strings.TrimSpace(string(r))
	s = strings.TrimPrefix(s, "?")
	if s == "" {
		return "", nil
	}
	if _, err := url.ParseQuery(s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return "?" + s, nil
}

func encodeQuery(q QueryParams) (string, error) {
	if q == nil {
		return "", nil
	}
	return q.Encode()
}

// joinQuery appends the encoded query extra to base, either of which may
// be empty.
func joinQuery(base, extra string) string {
	switch {
	case extra == "":
		return base
	case base == "":
		return extra
	default:
		return base + "&" + strings.TrimPrefix(extra, "?")
	}
}

// appendParam adds key=value to u, choosing "?" or "&".
func appendParam(u, key, value string) string {
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

var interpolation = regexp.MustCompile(`{{\s*([^}\s]+)\s*}}`)

// Serialize renders a flat map as a query string. When data is non-nil,
// {{ path }} placeholders in values are replaced with the value found at
// the dotted path in data.
func Serialize(params map[string]any, data map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		val := fmt.Sprint(params[k])
		if data != nil {
			val = Interpolate(val, data)
		}
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(val))
	}
	return "?" + strings.Join(parts, "&")
}

// Interpolate replaces {{ path }} placeholders in s. Missing paths render
// as the empty string.
func Interpolate(s string, data map[string]any) string {
	return interpolation.ReplaceAllStringFunc(s, func(m string) string {
		path := interpolation.FindStringSubmatch(m)[1]
		v, ok := lookup(data, path)
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}

func lookup(data map[string]any, path string) (any, bool) {
	var cur any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
