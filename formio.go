package formio

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/formio/formio.go/pkg/constants"
)

// Options tune a single Formio instance.
type Options struct {
	// Base overrides the context base URL.
	Base string
	// Project overrides the context project URL.
	Project string
	// Namespace overrides the context session namespace.
	Namespace string
}

// Formio addresses one project, form, submission, action or role on the
// server. All URLs are computed from the identity fields, so changing an
// id with a setter moves every dependent URL along with it.
type Formio struct {
	ctx  *Context
	opts Options

	mu          sync.RWMutex
	base        string
	path        string
	noProject   bool
	projectURL  string
	projectsURL string
	projectID   string
	// formID is an ObjectID or, when formAlias is set, a path alias.
	formID       string
	formAlias    bool
	submissionID string
	actionID     string
	roleID       string
	vID          string
	query        string
}

var (
	projectPathRe = regexp.MustCompile(`(^|/)(project)($|/[^/]+)`)
	projectIDRe   = regexp.MustCompile(`/project/([^/?]+)`)
	formPathRe    = regexp.MustCompile(`(^|/)(form)($|/)`)
	subPathRe     = regexp.MustCompile(`/(submission|action|v)($|/.*)`)
)

func itemRe(item string) *regexp.Regexp {
	return regexp.MustCompile(`/` + item + `/([^/]+)`)
}

var (
	formItemRe       = itemRe("form")
	roleItemRe       = itemRe("role")
	submissionItemRe = itemRe("submission")
	actionItemRe     = itemRe("action")
	versionItemRe    = itemRe("v")
)

// New parses path, absolute or relative to the base URL, into a Formio
// instance. A nil ctx uses DefaultContext.
func New(ctx *Context, path string, opts ...Options) *Formio {
	if ctx == nil {
		ctx = DefaultContext()
	}
	f := &Formio{ctx: ctx}
	if len(opts) > 0 {
		f.opts = opts[0]
	}
	f.parse(path)
	return f
}

func (f *Formio) parse(path string) {
	f.base = strings.TrimRight(f.opts.Base, "/")
	if f.base == "" {
		f.base = f.ctx.BaseURL()
	}
	f.path = path
	f.projectsURL = f.base + "/project"

	if path == "" {
		f.projectURL = strings.TrimRight(f.opts.Project, "/")
		if f.projectURL == "" {
			f.projectURL = f.ctx.ProjectURL()
		}
		f.noProject = f.projectURL == f.base
		return
	}

	f.projectURL = strings.TrimRight(f.opts.Project, "/")
	project := f.projectURL
	if project == "" {
		project = f.ctx.configuredProjectURL()
	}
	isProjectURL := projectPathRe.MatchString(stripOrigin(path))
	if project != "" && f.base == project && !isProjectURL {
		f.noProject = true
		f.projectURL = f.base
	}

	if !strings.HasPrefix(path, "http") && !strings.HasPrefix(path, "//") {
		path = f.base + path
	}
	hostName, rest := splitOrigin(path)
	rest, f.query = splitQuery(rest)

	if f.projectURL == "" || f.projectURL == f.base {
		f.projectURL = hostName
	}

	if !f.noProject {
		pathType := f.ctx.PathType()
		switch {
		case isProjectURL:
			f.projectsURL = hostName + "/project"
			if m := projectIDRe.FindStringSubmatch(rest); m != nil {
				f.projectURL = hostName + m[0]
				f.projectID = m[1]
			}
			rest = projectPathRe.ReplaceAllString(rest, "")
		case hostName == f.base:
			// Subdirectory project: /:project/...
			parts := strings.Split(strings.Trim(rest, "/"), "/")
			if len(parts) > 1 && parts[0] != "form" && parts[0] != "role" {
				f.projectID = parts[0]
				f.projectURL = hostName + "/" + parts[0]
				rest = "/" + strings.Join(parts[1:], "/")
			}
		default:
			host := hostOf(hostName)
			subdomain := strings.Count(host, ".") >= 2 || strings.Contains(host, "localhost")
			if subdomain && pathType != constants.PathTypeSubdirectories {
				f.projectURL = hostName
				f.projectID = strings.SplitN(host, ".", 2)[0]
			}
		}
	}

	if m := roleItemRe.FindStringSubmatch(rest); m != nil {
		f.roleID = m[1]
	}

	if formPathRe.MatchString(rest) {
		m := formItemRe.FindStringSubmatch(rest)
		if m == nil {
			return
		}
		f.formID = m[1]
		formBase := rest[strings.Index(rest, m[0])+len(m[0]):]
		if m := submissionItemRe.FindStringSubmatch(formBase); m != nil {
			f.submissionID = m[1]
		}
		if m := actionItemRe.FindStringSubmatch(formBase); m != nil {
			f.actionID = m[1]
		}
		if m := versionItemRe.FindStringSubmatch(formBase); m != nil {
			f.vID = m[1]
		}
		return
	}

	// Alias form: /example/submission/:id
	var item, itemID string
	if m := subPathRe.FindStringSubmatch(rest); m != nil {
		item = m[1]
		itemID = strings.Trim(m[2], "/")
		rest = rest[:strings.Index(rest, m[0])]
	}
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.HasPrefix(rest, "role") {
		return
	}
	f.formID = rest
	f.formAlias = true
	switch item {
	case "submission":
		f.submissionID = itemID
	case "action":
		f.actionID = itemID
	case "v":
		f.vID = itemID
	}
}

// stripOrigin drops scheme and host so that host names containing
// "project" are not mistaken for project paths.
func stripOrigin(path string) string {
	_, rest := splitOrigin(path)
	return rest
}

func splitOrigin(raw string) (origin, rest string) {
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", raw
	}
	origin = u.Scheme + "://" + u.Host
	rest = strings.TrimPrefix(raw, origin)
	return origin, rest
}

func splitQuery(path string) (string, string) {
	if i := strings.Index(path, "?"); i >= 0 {
		return path[:i], path[i:]
	}
	return path, ""
}

func hostOf(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return origin
	}
	return u.Hostname()
}

// Context returns the context the instance was created from.
func (f *Formio) Context() *Context {
	return f.ctx
}

func (f *Formio) namespace() string {
	return f.opts.Namespace
}

// Token returns the session token of the instance namespace.
func (f *Formio) Token() string {
	return f.ctx.Token(f.namespace())
}

func (f *Formio) SetToken(token string) {
	f.ctx.SetToken(f.namespace(), token)
}

func (f *Formio) Base() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.base
}

// Query returns the query string carried by the parsed path.
func (f *Formio) Query() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.query
}

// NoProject reports whether the server hosts a single project at its root.
func (f *Formio) NoProject() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.noProject
}

func (f *Formio) ProjectID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.projectID
}

func (f *Formio) FormID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.formID
}

func (f *Formio) SubmissionID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submissionID
}

func (f *Formio) ActionID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.actionID
}

func (f *Formio) RoleID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.roleID
}

// FormRevision returns the form revision the instance is pinned to.
func (f *Formio) FormRevision() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.vID
}

// SetProjectID points the instance at a project on the same host.
func (f *Formio) SetProjectID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectID = id
	f.noProject = false
	f.projectURL = f.base + "/project/" + id
}

// SetFormID addresses a form by id. An id that is not an ObjectID is used
// as a path alias.
func (f *Formio) SetFormID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formID = id
	f.formAlias = id != "" && !IsObjectID(id)
}

func (f *Formio) SetSubmissionID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissionID = id
}

func (f *Formio) SetActionID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actionID = id
}

func (f *Formio) SetRoleID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleID = id
}

func (f *Formio) SetFormRevision(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vID = v
}

func (f *Formio) ProjectsURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.projectsURL
}

func (f *Formio) ProjectURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.projectURL
}

func (f *Formio) RolesURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.projectURL + "/role"
}

func (f *Formio) RoleURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return itemURL(f.projectURL+"/role", f.roleID)
}

func (f *Formio) FormsURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.projectURL + "/form"
}

// FormURL is "" until a form id or alias is known.
func (f *Formio) FormURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.formURL()
}

func (f *Formio) formURL() string {
	switch {
	case f.formID == "":
		return ""
	case f.formAlias:
		return f.projectURL + "/" + f.formID
	default:
		return f.projectURL + "/form/" + f.formID
	}
}

// formBase is the parent of submission, action and version URLs.
func (f *Formio) formBase() string {
	if u := f.formURL(); u != "" {
		return u
	}
	return f.projectURL
}

func (f *Formio) SubmissionsURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.formBase() + "/submission"
}

func (f *Formio) SubmissionURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return itemURL(f.formBase()+"/submission", f.submissionID)
}

func (f *Formio) ActionsURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.formBase() + "/action"
}

func (f *Formio) ActionURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return itemURL(f.formBase()+"/action", f.actionID)
}

func (f *Formio) VersionsURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.formBase() + "/v"
}

func (f *Formio) VersionURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return itemURL(f.formBase()+"/v", f.vID)
}

func itemURL(collection, id string) string {
	if id == "" {
		return ""
	}
	return collection + "/" + id
}

// revision returns the form revision as a positive number, or 0.
func (f *Formio) revision() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n, err := strconv.Atoi(f.vID)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
