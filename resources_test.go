package formio_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formio "github.com/formio/formio.go"
	"github.com/formio/formio.go/internal/fakeformio"
	"github.com/formio/formio.go/pkg/models"
)

func contactForm() *models.Form {
	return &models.Form{
		Title: "Contact",
		Name:  "contact",
		Path:  "contact",
		Type:  models.FormTypeForm,
		Components: models.Components{
			&models.TextField{
				Field:     models.Field{Type: models.TypeTextField, Input: true, Key: "name", Label: "Name"},
				TextInput: models.TextInput{Validate: &models.Validate{Required: true}},
			},
		},
	}
}

func TestFormCRUD(t *testing.T) {
	server, c := newTestServer(t)
	login(t, server, c)
	ctx := context.Background()

	created, err := formio.New(c, "").SaveForm(ctx, contactForm())
	require.NoError(t, err)
	require.True(t, formio.IsObjectID(created.ID))
	last, _ := server.LastRequest()
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "/form", last.Path)

	f := formio.New(c, "/form/"+created.ID)
	loaded, err := f.LoadForm(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Contact", loaded.Title)
	require.Len(t, loaded.Components, 1)
	assert.IsType(t, &models.TextField{}, loaded.Components[0])

	// An id in the payload turns the save into a PUT on the item.
	loaded.Title = "Contact us"
	updated, err := formio.New(c, "").SaveForm(ctx, loaded)
	require.NoError(t, err)
	assert.Equal(t, "Contact us", updated.Title)
	last, _ = server.LastRequest()
	assert.Equal(t, http.MethodPut, last.Method)
	assert.Equal(t, "/form/"+created.ID, last.Path)

	require.NoError(t, f.DeleteForm(ctx))
	_, err = f.LoadForm(ctx, nil)
	var apiErr *formio.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Form not found", apiErr.Message)
}

func TestSaveFormValidationError(t *testing.T) {
	_, c := newTestServer(t)

	_, err := formio.New(c, "").SaveForm(context.Background(), &models.Form{Title: "Bad", Type: "widget"})
	var apiErr *formio.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Form validation failed", apiErr.Message)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "title", apiErr.Details[0].Path)
}

func TestFormAlias(t *testing.T) {
	server, c := newTestServer(t)
	id := server.AddForm(contactForm())
	ctx := context.Background()

	f := formio.New(c, "/contact")
	form, err := f.LoadForm(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, id, form.ID)

	got, err := f.GetFormID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = formio.New(c, "/form/"+id).GetFormID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestFormRevisionQuery(t *testing.T) {
	server, c := newTestServer(t)
	id := server.AddForm(contactForm())

	_, err := formio.New(c, "/form/"+id+"/v/3").LoadForm(context.Background(), nil)
	require.NoError(t, err)
	last, _ := server.LastRequest()
	assert.Equal(t, "/form/"+id, last.Path)
	assert.Equal(t, "formRevision=3", last.Query)
}

func TestSubmissionCRUD(t *testing.T) {
	server, c := newTestServer(t)
	userID := login(t, server, c)
	formID := server.AddForm(contactForm())
	ctx := context.Background()

	sub, err := formio.New(c, "/contact/submission").SaveSubmission(ctx, &models.Submission{
		Data:         map[string]any{"name": "Joe"},
		FormRevision: "2",
	})
	require.NoError(t, err)
	assert.Equal(t, formID, sub.Form)
	assert.Equal(t, userID, sub.Owner)

	f := formio.New(c, "/contact/submission/"+sub.ID)
	loaded, err := f.LoadSubmission(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Joe", loaded.Data["name"])
	assert.Equal(t, "2", f.FormRevision())

	loaded.Data["name"] = "Jane"
	updated, err := f.SaveSubmission(ctx, loaded)
	require.NoError(t, err)
	assert.Equal(t, "Jane", updated.Data["name"])
	last, _ := server.LastRequest()
	assert.Equal(t, http.MethodPut, last.Method)
	assert.Equal(t, "/contact/submission/"+sub.ID, last.Path)

	require.NoError(t, f.DeleteSubmission(ctx))
	_, err = f.LoadSubmission(ctx, nil)
	assert.ErrorIs(t, err, &formio.APIError{Status: http.StatusNotFound})
}

func TestLoadSubmissionsPaging(t *testing.T) {
	server, c := newTestServer(t)
	server.AddForm(contactForm())
	ctx := context.Background()
	f := formio.New(c, "/contact")
	for i := 0; i < 25; i++ {
		_, err := f.SaveSubmission(ctx, &models.Submission{Data: map[string]any{"name": fmt.Sprintf("user%02d", i)}})
		require.NoError(t, err)
	}

	page, err := f.LoadSubmissions(ctx, formio.NewQuery().WithLimit(10).WithSkip(20))
	require.NoError(t, err)
	assert.Equal(t, 5, page.Len())
	assert.Equal(t, 20, page.Skip)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 25, page.ServerCount)
	assert.False(t, page.HasMore())

	page, err = f.LoadSubmissions(ctx, formio.NewQuery().Where("data.name", "user07"))
	require.NoError(t, err)
	require.Equal(t, 1, page.Len())
	assert.Equal(t, "user07", page.Items[0].Data["name"])

	page, err = f.LoadSubmissions(ctx, formio.NewQuery().WithRegex("data.name", "^user1"))
	require.NoError(t, err)
	assert.Equal(t, 10, page.ServerCount)
}

func TestIndexWithoutContentRange(t *testing.T) {
	server, c := newTestServer(t)
	server.AddStubResponse(fakeformio.SimpleStubResponse(http.MethodGet, "/form", []map[string]any{
		{"_id": "a"}, {"_id": "b"},
	}))

	page, err := formio.New(c, "").LoadForms(context.Background(), formio.NewQuery().WithLimit(2).WithSkip(4))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Len())
	assert.Equal(t, 4, page.Skip)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 2, page.ServerCount)
}

func TestSubmitRequiredFieldMissing(t *testing.T) {
	server, c := newTestServer(t)
	server.AddForm(contactForm())

	_, err := formio.New(c, "/contact").SaveSubmission(context.Background(), &models.Submission{})
	var apiErr *formio.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, formio.ValidationErrors{{Message: "Name is required", Path: "name"}}, apiErr.Details)
}

func TestRoleCRUD(t *testing.T) {
	server, c := newTestServer(t)
	login(t, server, c)
	ctx := context.Background()

	created, err := formio.New(c, "").SaveRole(ctx, &models.Role{Title: "Editor"})
	require.NoError(t, err)
	assert.Equal(t, "editor", created.MachineName)

	roles, err := formio.New(c, "").LoadRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 4)

	f := formio.New(c, "/role/"+created.ID)
	role, err := f.LoadRole(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Editor", role.Title)

	role.Description = "Edits content"
	updated, err := f.SaveRole(ctx, role)
	require.NoError(t, err)
	assert.Equal(t, "Edits content", updated.Description)

	require.NoError(t, f.DeleteRole(ctx))
	roles, err = formio.New(c, "").LoadRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}

func TestActionCRUD(t *testing.T) {
	server, c := newTestServer(t)
	formID := server.AddForm(contactForm())
	ctx := context.Background()
	f := formio.New(c, "/form/"+formID)

	available, err := f.AvailableActions(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, available)

	info, err := f.ActionInfo(ctx, "webhook")
	require.NoError(t, err)
	assert.Equal(t, "Webhook", info.Title)

	created, err := f.SaveAction(ctx, &models.Action{
		Name:     "webhook",
		Title:    "Notify",
		Handler:  []models.Handler{models.HandlerAfter},
		Method:   []string{"create"},
		Priority: 5,
		Settings: map[string]any{"url": "https://example.com/hook"},
	})
	require.NoError(t, err)
	assert.Equal(t, formID, created.Form)

	page, err := f.LoadActions(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, page.Len())

	af := formio.New(c, "/form/"+formID+"/action/"+created.ID)
	action, err := af.LoadAction(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Notify", action.Title)
	assert.Equal(t, "https://example.com/hook", action.Settings["url"])

	require.NoError(t, af.DeleteAction(ctx))
	page, err = f.LoadActions(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, page.Len())
}

func TestResourceArgumentErrors(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()
	f := formio.New(c, "")

	assert.ErrorIs(t, f.Load(ctx, formio.KindForms, nil, &models.Form{}), formio.ErrInvalidKind)
	assert.ErrorIs(t, f.Load(ctx, formio.Kind("widget"), nil, &models.Form{}), formio.ErrInvalidKind)
	assert.ErrorIs(t, f.Load(ctx, formio.KindForm, nil, &models.Form{}), formio.ErrMissingID)
	assert.ErrorIs(t, f.Index(ctx, formio.KindForm, nil, &models.Page[models.Form]{}), formio.ErrInvalidKind)
	assert.ErrorIs(t, f.Save(ctx, formio.KindSubmissions, map[string]any{}, nil), formio.ErrInvalidKind)
	assert.ErrorIs(t, f.Delete(ctx, formio.KindSubmission), formio.ErrNothingToDelete)
	assert.ErrorIs(t, f.DeleteProject(ctx), formio.ErrNothingToDelete)

	_, err := f.AvailableActions(ctx)
	assert.ErrorIs(t, err, formio.ErrMissingID)

	_, err = f.LoadForms(ctx, formio.NewQuery().WithLimit(-1))
	assert.ErrorIs(t, err, formio.ErrInvalidQuery)
}

func TestKind(t *testing.T) {
	k, ok := formio.KindSubmissions.Singular()
	assert.True(t, ok)
	assert.Equal(t, formio.KindSubmission, k)
	assert.True(t, formio.KindSubmissions.IsCollection())
	assert.False(t, formio.KindSubmission.IsCollection())
	_, ok = formio.Kind("widgets").Singular()
	assert.False(t, ok)
}

func TestProject(t *testing.T) {
	server, c := newTestServer(t)
	login(t, server, c)
	ctx := context.Background()
	f := formio.New(c, "")

	p, err := f.LoadProject(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, server.Project().ID, p.ID)

	id, err := f.GetProjectID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	p.Description = "Test project"
	saved, err := f.SaveProject(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Test project", saved.Description)

	page, err := c.LoadProjects(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, page.Len())
	assert.Equal(t, "Test project", page.Items[0].Description)
}

func TestResolveForm(t *testing.T) {
	server, c := newTestServer(t)
	id := server.AddForm(contactForm())
	ctx := context.Background()

	form, err := c.ResolveForm(ctx, formio.FormFromURL(server.URL()+"/contact"))
	require.NoError(t, err)
	assert.Equal(t, id, form.ID)

	schema := contactForm()
	form, err = c.ResolveForm(ctx, formio.FormFromSchema(schema))
	require.NoError(t, err)
	assert.Same(t, schema, form)
	assert.Len(t, server.Requests(), 1)

	_, err = c.ResolveForm(ctx, formio.FormFromSchema(nil))
	assert.ErrorIs(t, err, formio.ErrMissingID)
}
