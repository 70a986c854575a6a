package formio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/formio/formio.go/pkg/models"
)

// Kind names a resource type the facade can load, save and delete.
type Kind string

const (
	KindForm       Kind = "form"
	KindSubmission Kind = "submission"
	KindRole       Kind = "role"
	KindAction     Kind = "action"

	KindForms       Kind = "forms"
	KindSubmissions Kind = "submissions"
	KindRoles       Kind = "roles"
	KindActions     Kind = "actions"
)

// Singular returns the item kind of a collection kind and reports whether
// k is known at all.
func (k Kind) Singular() (Kind, bool) {
	switch k {
	case KindForm, KindSubmission, KindRole, KindAction:
		return k, true
	case KindForms, KindSubmissions, KindRoles, KindActions:
		return Kind(strings.TrimSuffix(string(k), "s")), true
	default:
		return "", false
	}
}

// IsCollection reports whether k names a collection.
func (k Kind) IsCollection() bool {
	s, ok := k.Singular()
	return ok && s != k
}

func (f *Formio) idFor(k Kind) string {
	switch k {
	case KindForm:
		return f.FormID()
	case KindSubmission:
		return f.SubmissionID()
	case KindRole:
		return f.RoleID()
	case KindAction:
		return f.ActionID()
	}
	return ""
}

func (f *Formio) itemURLFor(k Kind) string {
	switch k {
	case KindForm:
		return f.FormURL()
	case KindSubmission:
		return f.SubmissionURL()
	case KindRole:
		return f.RoleURL()
	case KindAction:
		return f.ActionURL()
	}
	return ""
}

func (f *Formio) collectionURLFor(k Kind) string {
	switch k {
	case KindForm:
		return f.FormsURL()
	case KindSubmission:
		return f.SubmissionsURL()
	case KindRole:
		return f.RolesURL()
	case KindAction:
		return f.ActionsURL()
	}
	return ""
}

// Load fetches the item of kind addressed by the instance into out.
func (f *Formio) Load(ctx context.Context, kind Kind, q QueryParams, out any, opts ...RequestOption) error {
	if kind.IsCollection() {
		return fmt.Errorf("%w: load of %s", ErrInvalidKind, kind)
	}
	if _, ok := kind.Singular(); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if f.idFor(kind) == "" {
		return fmt.Errorf("%w: %sId", ErrMissingID, kind)
	}
	qs, err := encodeQuery(q)
	if err != nil {
		return err
	}
	u := f.itemURLFor(kind) + joinQuery(f.Query(), qs)
	if kind == KindForm {
		if v := f.revision(); v > 0 {
			u = appendParam(u, "formRevision", strconv.Itoa(v))
		}
	}
	return f.MakeRequest(ctx, string(kind), u, http.MethodGet, nil, out, opts...)
}

// Index lists the collection of kinds under the instance into out, which
// is usually a *models.Page. Without a Content-Range header the page range
// is taken from q.
func (f *Formio) Index(ctx context.Context, kinds Kind, q QueryParams, out any, opts ...RequestOption) error {
	kind, ok := kinds.Singular()
	if !ok || !kinds.IsCollection() {
		return fmt.Errorf("%w: index of %q", ErrInvalidKind, kinds)
	}
	qs, err := encodeQuery(q)
	if err != nil {
		return err
	}

	o := newRequestOptions(opts)
	if o.Namespace == "" {
		o.Namespace = f.namespace()
	}
	resp, err := f.ctx.send(ctx, &RequestArgs{
		Formio:  f,
		Kind:    string(kinds),
		URL:     f.collectionURLFor(kind) + qs,
		Method:  http.MethodGet,
		Options: o,
	})
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		return err
	}
	if rs, ok := out.(rangeSetter); ok && resp.ContentRange == "" {
		if typed, isQuery := q.(*Query); isQuery {
			if limit, skip, set := typed.limitSkip(); set {
				rs.SetRange(skip, limit, -1)
			}
		}
	}
	return nil
}

// Save creates or updates an item of kind. The request is a PUT when the
// instance or the payload carries an id, otherwise a POST to the collection.
func (f *Formio) Save(ctx context.Context, kind Kind, data, out any, opts ...RequestOption) error {
	if _, ok := kind.Singular(); !ok || kind.IsCollection() {
		return fmt.Errorf("%w: save of %q", ErrInvalidKind, kind)
	}
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	dataID, _ := jsonparser.GetString(body, "_id")

	id := f.idFor(kind)
	method := http.MethodPost
	if id != "" || dataID != "" {
		method = http.MethodPut
	}
	u := f.collectionURLFor(kind)
	if id != "" {
		u = f.itemURLFor(kind)
	}
	if method == http.MethodPut && id == "" && !strings.Contains(u, "/"+dataID) {
		u += "/" + dataID
	}
	u += f.Query()

	f.ctx.ClearCache()
	return f.MakeRequest(ctx, string(kind), u, method, json.RawMessage(body), out, opts...)
}

// Delete removes the item of kind addressed by the instance.
func (f *Formio) Delete(ctx context.Context, kind Kind, opts ...RequestOption) error {
	if _, ok := kind.Singular(); !ok || kind.IsCollection() {
		return fmt.Errorf("%w: delete of %q", ErrInvalidKind, kind)
	}
	if f.idFor(kind) == "" {
		return fmt.Errorf("%w: no %sId", ErrNothingToDelete, kind)
	}
	f.ctx.ClearCache()
	return f.MakeRequest(ctx, string(kind), f.itemURLFor(kind)+f.Query(), http.MethodDelete, nil, nil, opts...)
}

func (f *Formio) LoadForm(ctx context.Context, q QueryParams, opts ...RequestOption) (*models.Form, error) {
	var form models.Form
	if err := f.Load(ctx, KindForm, q, &form, opts...); err != nil {
		return nil, err
	}
	return &form, nil
}

func (f *Formio) SaveForm(ctx context.Context, form *models.Form, opts ...RequestOption) (*models.Form, error) {
	var saved models.Form
	if err := f.Save(ctx, KindForm, form, &saved, opts...); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (f *Formio) DeleteForm(ctx context.Context, opts ...RequestOption) error {
	return f.Delete(ctx, KindForm, opts...)
}

func (f *Formio) LoadForms(ctx context.Context, q QueryParams, opts ...RequestOption) (*models.Page[models.Form], error) {
	var page models.Page[models.Form]
	if err := f.Index(ctx, KindForms, q, &page, opts...); err != nil {
		return nil, err
	}
	return &page, nil
}

// LoadSubmission loads the addressed submission and pins the instance to
// the form revision it was made against.
func (f *Formio) LoadSubmission(ctx context.Context, q QueryParams, opts ...RequestOption) (*models.Submission, error) {
	var sub models.Submission
	if err := f.Load(ctx, KindSubmission, q, &sub, opts...); err != nil {
		return nil, err
	}
	if sub.FormRevision != "" {
		f.SetFormRevision(sub.FormRevision)
	}
	return &sub, nil
}

func (f *Formio) SaveSubmission(ctx context.Context, sub *models.Submission, opts ...RequestOption) (*models.Submission, error) {
	var saved models.Submission
	if err := f.Save(ctx, KindSubmission, sub, &saved, opts...); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (f *Formio) DeleteSubmission(ctx context.Context, opts ...RequestOption) error {
	return f.Delete(ctx, KindSubmission, opts...)
}

func (f *Formio) LoadSubmissions(ctx context.Context, q QueryParams, opts ...RequestOption) (*models.Page[models.Submission], error) {
	var page models.Page[models.Submission]
	if err := f.Index(ctx, KindSubmissions, q, &page, opts...); err != nil {
		return nil, err
	}
	return &page, nil
}

func (f *Formio) LoadRole(ctx context.Context, q QueryParams, opts ...RequestOption) (*models.Role, error) {
	var role models.Role
	if err := f.Load(ctx, KindRole, q, &role, opts...); err != nil {
		return nil, err
	}
	return &role, nil
}

func (f *Formio) SaveRole(ctx context.Context, role *models.Role, opts ...RequestOption) (*models.Role, error) {
	var saved models.Role
	if err := f.Save(ctx, KindRole, role, &saved, opts...); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (f *Formio) DeleteRole(ctx context.Context, opts ...RequestOption) error {
	return f.Delete(ctx, KindRole, opts...)
}

// LoadRoles lists the project roles. The server answers with a plain
// array, not a page.
func (f *Formio) LoadRoles(ctx context.Context, opts ...RequestOption) ([]models.Role, error) {
	if f.ProjectURL() == "" {
		return nil, ErrNoProjectURL
	}
	var roles []models.Role
	if err := f.MakeRequest(ctx, string(KindRoles), f.RolesURL(), http.MethodGet, nil, &roles, opts...); err != nil {
		return nil, err
	}
	return roles, nil
}

func (f *Formio) LoadAction(ctx context.Context, q QueryParams, opts ...RequestOption) (*models.Action, error) {
	var action models.Action
	if err := f.Load(ctx, KindAction, q, &action, opts...); err != nil {
		return nil, err
	}
	return &action, nil
}

func (f *Formio) SaveAction(ctx context.Context, action *models.Action, opts ...RequestOption) (*models.Action, error) {
	var saved models.Action
	if err := f.Save(ctx, KindAction, action, &saved, opts...); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (f *Formio) DeleteAction(ctx context.Context, opts ...RequestOption) error {
	return f.Delete(ctx, KindAction, opts...)
}

func (f *Formio) LoadActions(ctx context.Context, q QueryParams, opts ...RequestOption) (*models.Page[models.Action], error) {
	var page models.Page[models.Action]
	if err := f.Index(ctx, KindActions, q, &page, opts...); err != nil {
		return nil, err
	}
	return &page, nil
}

// AvailableActions lists the action types the server can attach to the
// form.
func (f *Formio) AvailableActions(ctx context.Context, opts ...RequestOption) ([]models.AvailableAction, error) {
	formURL := f.FormURL()
	if formURL == "" {
		return nil, fmt.Errorf("%w: formId", ErrMissingID)
	}
	var actions []models.AvailableAction
	if err := f.MakeRequest(ctx, "availableActions", formURL+"/actions", http.MethodGet, nil, &actions, opts...); err != nil {
		return nil, err
	}
	return actions, nil
}

// ActionInfo describes one action type, including its settings form.
func (f *Formio) ActionInfo(ctx context.Context, name string, opts ...RequestOption) (*models.AvailableAction, error) {
	formURL := f.FormURL()
	if formURL == "" {
		return nil, fmt.Errorf("%w: formId", ErrMissingID)
	}
	var info models.AvailableAction
	if err := f.MakeRequest(ctx, "actionInfo", formURL+"/actions/"+name, http.MethodGet, nil, &info, opts...); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetFormID returns the form id, loading the form when the instance only
// knows its alias.
func (f *Formio) GetFormID(ctx context.Context) (string, error) {
	id := f.FormID()
	if id == "" || IsObjectID(id) {
		return id, nil
	}
	form, err := f.LoadForm(ctx, nil)
	if err != nil {
		return "", err
	}
	return form.ID, nil
}
