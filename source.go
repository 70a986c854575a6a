package formio

import (
	"context"

	"github.com/formio/formio.go/pkg/models"
)

// FormSource is a form given either as a URL to load or as a schema in
// hand.
type FormSource interface {
	resolve(ctx context.Context, c *Context, opts []RequestOption) (*models.Form, error)
}

type formURLSource string

type formSchemaSource struct {
	form *models.Form
}

// FormFromURL is a FormSource loaded from url.
func FormFromURL(url string) FormSource {
	return formURLSource(url)
}

// FormFromSchema is a FormSource that is already resolved.
func FormFromSchema(form *models.Form) FormSource {
	return formSchemaSource{form: form}
}

func (s formURLSource) resolve(ctx context.Context, c *Context, opts []RequestOption) (*models.Form, error) {
	return New(c, string(s)).LoadForm(ctx, nil, opts...)
}

func (s formSchemaSource) resolve(context.Context, *Context, []RequestOption) (*models.Form, error) {
	if s.form == nil {
		return nil, ErrMissingID
	}
	return s.form, nil
}

// ResolveForm returns the schema behind src, loading it when src is a URL.
func (c *Context) ResolveForm(ctx context.Context, src FormSource, opts ...RequestOption) (*models.Form, error) {
	return src.resolve(ctx, c, opts)
}
