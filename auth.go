package formio

import (
	"context"
	"net/http"
	"slices"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/formio/formio.go/pkg/constants"
	"github.com/formio/formio.go/pkg/models"
)

// TempToken is a short lived token scoped to a set of requests.
type TempToken struct {
	Key   string `json:"key"`
	Token string `json:"token"`
}

// authURLOr returns the configured auth URL, or fallback.
func (c *Context) authURLOr(fallback string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.authURL != "" {
		return c.authURL
	}
	return fallback
}

// CurrentUser returns the cached user, or asks the server for it when a
// token is present. Without a session it returns nil and no error.
func (c *Context) CurrentUser(ctx context.Context, opts ...RequestOption) (*models.User, error) {
	return c.currentUser(ctx, nil, c.ProjectURL(), opts)
}

func (f *Formio) CurrentUser(ctx context.Context, opts ...RequestOption) (*models.User, error) {
	return f.ctx.currentUser(ctx, f, f.ProjectURL(), opts)
}

func (c *Context) currentUser(ctx context.Context, f *Formio, projectURL string, opts []RequestOption) (*models.User, error) {
	o := newRequestOptions(opts)
	ns := o.Namespace
	if ns == "" && f != nil {
		ns = f.namespace()
	}
	if user := c.User(ns); user != nil {
		return user, nil
	}
	if c.Token(ns) == "" && !o.External {
		return nil, nil
	}
	var user models.User
	if err := c.do(ctx, f, "currentUser", c.authURLOr(projectURL)+"/current", http.MethodGet, nil, &user, opts); err != nil {
		return nil, err
	}
	c.SetUser(ns, &user)
	return &user, nil
}

// Logout ends the session on the server and locally. The local session is
// cleared even when the server call fails.
func (c *Context) Logout(ctx context.Context, opts ...RequestOption) error {
	return c.logout(ctx, nil, c.ProjectURL(), opts)
}

func (f *Formio) Logout(ctx context.Context, opts ...RequestOption) error {
	return f.ctx.logout(ctx, f, f.ProjectURL(), opts)
}

func (c *Context) logout(ctx context.Context, f *Formio, projectURL string, opts []RequestOption) error {
	o := newRequestOptions(opts)
	ns := o.Namespace
	if ns == "" && f != nil {
		ns = f.namespace()
	}
	opts = append(opts, WithIgnoreCache())
	err := c.do(ctx, f, "logout", c.authURLOr(projectURL)+"/logout", http.MethodGet, nil, nil, opts)
	c.SetToken(ns, "")
	c.ClearCache()
	return err
}

// AccessInfo loads the role and form access summary of the project.
func (f *Formio) AccessInfo(ctx context.Context, opts ...RequestOption) (*models.AccessInfo, error) {
	u := f.ProjectURL()
	if u == "" {
		return nil, ErrNoProjectURL
	}
	var info models.AccessInfo
	if err := f.MakeRequest(ctx, "accessInfo", u+"/access", http.MethodGet, nil, &info, opts...); err != nil {
		return nil, err
	}
	return &info, nil
}

// ProjectRoles lists the roles of the project.
func (f *Formio) ProjectRoles(ctx context.Context, opts ...RequestOption) ([]models.Role, error) {
	u := f.ProjectURL()
	if u == "" {
		return nil, ErrNoProjectURL
	}
	var roles []models.Role
	if err := f.MakeRequest(ctx, "projectRoles", u+"/role", http.MethodGet, nil, &roles, opts...); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetTempToken asks for a token valid for expire seconds and restricted
// to the allowed "METHOD:/path" list.
func (f *Formio) GetTempToken(ctx context.Context, expire int, allowed string, opts ...RequestOption) (*TempToken, error) {
	if f.Token() == "" {
		return nil, ErrNotAuthenticated
	}
	u := f.ProjectURL()
	if u == "" {
		return nil, ErrNoProjectURL
	}
	opts = append(opts,
		WithIgnoreCache(),
		WithHeader(constants.HeaderExpire, strconv.Itoa(expire)),
		WithHeader(constants.HeaderAllow, allowed),
	)
	var tok TempToken
	if err := f.MakeRequest(ctx, "tempToken", u+"/token", http.MethodGet, nil, &tok, opts...); err != nil {
		return nil, err
	}
	return &tok, nil
}

// DownloadURL returns the PDF download URL of the addressed submission,
// signed with a one hour temp token when one can be had. It returns "" when
// no submission is addressed. A nil form is loaded first.
func (f *Formio) DownloadURL(ctx context.Context, form *models.Form) (string, error) {
	subID := f.SubmissionID()
	if subID == "" {
		return "", nil
	}
	if form == nil {
		var err error
		if form, err = f.LoadForm(ctx, nil); err != nil {
			return "", err
		}
	}
	apiURL := "/project/" + form.Project + "/form/" + form.ID + "/submission/" + subID + "/download"
	download := f.Base() + apiURL
	tok, err := f.GetTempToken(ctx, 3600, http.MethodGet+":"+apiURL)
	if err != nil {
		f.ctx.logger.Debug().Err(err).Msg("download url without temp token")
		return download, nil
	}
	return appendParam(download, "token", tok.Key), nil
}

// PermissionsInput selects what UserPermissions evaluates. Nil fields are
// loaded through the instance.
type PermissionsInput struct {
	User       *models.User
	Form       *models.Form
	Submission *models.Submission
	// Anonymous evaluates for a visitor without loading the current user.
	Anonymous bool
}

// UserPermissions evaluates what a user may do with the form and the
// submission. Admin roles grant everything; anonymous users hold the
// default roles; _own access requires owning the submission.
func (f *Formio) UserPermissions(ctx context.Context, in PermissionsInput) (*models.Permissions, error) {
	var access *models.AccessInfo
	g, gctx := errgroup.WithContext(ctx)
	if in.Form == nil && f.FormID() != "" {
		g.Go(func() (err error) {
			in.Form, err = f.LoadForm(gctx, nil)
			return err
		})
	}
	if in.User == nil && !in.Anonymous {
		g.Go(func() (err error) {
			in.User, err = f.CurrentUser(gctx)
			return err
		})
	}
	if in.Submission == nil && f.SubmissionID() != "" {
		g.Go(func() (err error) {
			in.Submission, err = f.LoadSubmission(gctx, nil)
			return err
		})
	}
	g.Go(func() (err error) {
		access, err = f.AccessInfo(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evaluatePermissions(in.User, in.Form, in.Submission, access), nil
}

func evaluatePermissions(user *models.User, form *models.Form, sub *models.Submission, access *models.AccessInfo) *models.Permissions {
	perms := &models.Permissions{}
	anonymous := models.IsAnonymous(user)
	var roles []string
	userID := ""
	if !anonymous {
		roles = slices.Clone(user.Roles)
		userID = user.ID
	}

	for _, role := range sortedRoles(access) {
		switch {
		case role.Default && anonymous:
			roles = append(roles, role.ID)
		case role.Admin && slices.Contains(roles, role.ID):
			return &models.Permissions{Create: true, Read: true, Edit: true, Delete: true}
		}
	}

	if form == nil {
		return perms
	}
	for _, a := range form.SubmissionAccess {
		if !intersects(a.Roles, roles) {
			continue
		}
		// grants only add up; an _own entry never revokes an _all one
		granted := a.Type.Scope() == "all" || sub == nil || (userID != "" && userID == sub.Owner)
		if !granted {
			continue
		}
		switch a.Type.Permission() {
		case "create":
			perms.Create = true
		case "read":
			perms.Read = true
		case "update":
			perms.Edit = true
		case "delete":
			perms.Delete = true
		}
	}
	return perms
}

// CanSubmit reports whether the current session may submit the form. When
// only anonymous visitors may, the session is dropped so that the
// submission is made anonymously.
func (f *Formio) CanSubmit(ctx context.Context) (bool, error) {
	var (
		form   *models.Form
		user   *models.User
		access *models.AccessInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		form, err = f.LoadForm(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		user, err = f.CurrentUser(gctx)
		return err
	})
	g.Go(func() (err error) {
		access, err = f.AccessInfo(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, err
	}

	var anonRole, adminRole string
	for _, role := range sortedRoles(access) {
		if role.Default {
			anonRole = role.ID
		}
		if role.Admin {
			adminRole = role.ID
		}
	}

	var userRoles []string
	if user != nil {
		userRoles = user.Roles
	}
	if adminRole != "" && slices.Contains(userRoles, adminRole) {
		return true, nil
	}

	canSubmit, anonymously := false, false
	for _, a := range form.SubmissionAccess {
		if a.Type != models.AccessCreateAll && a.Type != models.AccessCreateOwn {
			continue
		}
		for _, r := range a.Roles {
			if anonRole != "" && r == anonRole {
				anonymously = true
			}
			if slices.Contains(userRoles, r) {
				canSubmit = true
				break
			}
		}
		if canSubmit {
			break
		}
	}
	if !canSubmit && anonymously {
		f.ctx.SetUser(f.namespace(), nil)
		return true, nil
	}
	return canSubmit, nil
}

// sortedRoles returns the roles of access in name order.
func sortedRoles(access *models.AccessInfo) []models.Role {
	if access == nil {
		return nil
	}
	names := make([]string, 0, len(access.Roles))
	for name := range access.Roles {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]models.Role, len(names))
	for i, name := range names {
		out[i] = access.Roles[name]
	}
	return out
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}
