package formio

import (
	"context"
	"net/http"

	"github.com/formio/formio.go/pkg/models"
)

func (f *Formio) LoadProject(ctx context.Context, q QueryParams, opts ...RequestOption) (*models.Project, error) {
	u := f.ProjectURL()
	if u == "" {
		return nil, ErrNoProjectURL
	}
	qs, err := encodeQuery(q)
	if err != nil {
		return nil, err
	}
	var p models.Project
	if err := f.MakeRequest(ctx, "project", u+qs, http.MethodGet, nil, &p, opts...); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProject updates the addressed project, or creates one when p has no
// id.
func (f *Formio) SaveProject(ctx context.Context, p *models.Project, opts ...RequestOption) (*models.Project, error) {
	method, u := http.MethodPost, f.ProjectsURL()
	if p.ID != "" {
		method, u = http.MethodPut, f.ProjectURL()
	}
	if u == "" {
		return nil, ErrNoProjectURL
	}
	f.ctx.ClearCache()
	var saved models.Project
	if err := f.MakeRequest(ctx, "project", u, method, p, &saved, opts...); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (f *Formio) DeleteProject(ctx context.Context, opts ...RequestOption) error {
	if f.ProjectID() == "" && f.NoProject() {
		return ErrNothingToDelete
	}
	u := f.ProjectURL()
	if u == "" {
		return ErrNoProjectURL
	}
	f.ctx.ClearCache()
	return f.MakeRequest(ctx, "project", u, http.MethodDelete, nil, nil, opts...)
}

// LoadProjects lists the projects visible to the session.
func (c *Context) LoadProjects(ctx context.Context, q QueryParams, opts ...RequestOption) (*models.Page[models.Project], error) {
	qs, err := encodeQuery(q)
	if err != nil {
		return nil, err
	}
	var page models.Page[models.Project]
	if err := c.StaticRequest(ctx, c.BaseURL()+"/project"+qs, http.MethodGet, nil, &page, opts...); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProjectID returns the project id, loading the project when the
// instance only knows its name.
func (f *Formio) GetProjectID(ctx context.Context) (string, error) {
	id := f.ProjectID()
	if id == "" || IsObjectID(id) {
		return id, nil
	}
	p, err := f.LoadProject(ctx, nil)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}
