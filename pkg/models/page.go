package models

import "encoding/json"

// Page is one page of an index request. Limit and Skip echo the range the
// server answered with; ServerCount is the number of matches on the server,
// independent of len(Items).
type Page[T any] struct {
	Items       []T
	Limit       int
	Skip        int
	ServerCount int
}

// Len returns the number of items on the page.
func (p *Page[T]) Len() int {
	return len(p.Items)
}

// HasMore reports whether items exist past this page.
func (p *Page[T]) HasMore() bool {
	return p.Skip+len(p.Items) < p.ServerCount
}

func (p Page[T]) MarshalJSON() ([]byte, error) {
	if p.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Items)
}

// UnmarshalJSON decodes the item array. Range metadata travels in headers
// and is filled in by the caller.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &p.Items); err != nil {
		return err
	}
	if p.ServerCount < len(p.Items) {
		p.ServerCount = len(p.Items)
	}
	return nil
}

// SetRange records range metadata. A negative total means the server did not
// report one; ServerCount never drops below the number of returned items.
func (p *Page[T]) SetRange(skip, limit, total int) {
	p.Skip = skip
	p.Limit = limit
	if total < len(p.Items) {
		total = len(p.Items)
	}
	p.ServerCount = total
}
