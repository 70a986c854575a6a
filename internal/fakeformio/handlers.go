package fakeformio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/formio/formio.go/pkg/constants"
	"github.com/formio/formio.go/pkg/models"
)

// availableActions is what /form/{id}/actions lists.
var availableActions = []models.AvailableAction{
	{Name: "email", Title: "Email", Description: "Send an email.", Priority: 0},
	{Name: "save", Title: "Save Submission", Description: "Saves the submission into the database.", Priority: 10},
	{Name: "webhook", Title: "Webhook", Description: "Send the submission to a URL.", Priority: 0},
}

func (s *Server) routes() {
	r := mux.NewRouter()

	r.HandleFunc("/", s.authed(s.handleGetProject)).Methods(http.MethodGet)
	r.HandleFunc("/", s.authed(s.handleUpdateProject)).Methods(http.MethodPut)
	r.HandleFunc("/project", s.authed(s.handleListProjects)).Methods(http.MethodGet)

	r.HandleFunc("/user/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/current", s.authed(s.handleCurrent)).Methods(http.MethodGet)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)
	r.HandleFunc("/access", s.authed(s.handleAccess)).Methods(http.MethodGet)
	r.HandleFunc("/token", s.authed(s.handleTempToken)).Methods(http.MethodGet)

	r.HandleFunc("/role", s.authed(s.handleListRoles)).Methods(http.MethodGet)
	r.HandleFunc("/role", s.authed(s.handleSaveRole)).Methods(http.MethodPost)
	r.HandleFunc("/role/{id}", s.authed(s.handleGetRole)).Methods(http.MethodGet)
	r.HandleFunc("/role/{id}", s.authed(s.handleSaveRole)).Methods(http.MethodPut)
	r.HandleFunc("/role/{id}", s.authed(s.handleDeleteRole)).Methods(http.MethodDelete)

	r.HandleFunc("/form", s.authed(s.handleListForms)).Methods(http.MethodGet)
	r.HandleFunc("/form", s.authed(s.handleSaveForm)).Methods(http.MethodPost)
	r.HandleFunc("/form/{form}", s.authed(s.handleGetForm)).Methods(http.MethodGet)
	r.HandleFunc("/form/{form}", s.authed(s.handleSaveForm)).Methods(http.MethodPut)
	r.HandleFunc("/form/{form}", s.authed(s.handleDeleteForm)).Methods(http.MethodDelete)
	r.HandleFunc("/form/{form}/actions", s.authed(s.handleAvailableActions)).Methods(http.MethodGet)
	r.HandleFunc("/form/{form}/actions/{name}", s.authed(s.handleActionInfo)).Methods(http.MethodGet)
	s.formRoutes(r.PathPrefix("/form/{form}").Subrouter())

	// Alias paths come last so that the fixed routes above win.
	r.HandleFunc("/{alias}", s.authed(s.handleGetForm)).Methods(http.MethodGet)
	s.formRoutes(r.PathPrefix("/{alias}").Subrouter())

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	s.router = r
}

func (s *Server) formRoutes(r *mux.Router) {
	r.HandleFunc("/submission", s.authed(s.handleListSubmissions)).Methods(http.MethodGet)
	r.HandleFunc("/submission", s.authed(s.handleSaveSubmission)).Methods(http.MethodPost)
	r.HandleFunc("/submission/{id}", s.authed(s.handleGetSubmission)).Methods(http.MethodGet)
	r.HandleFunc("/submission/{id}", s.authed(s.handleSaveSubmission)).Methods(http.MethodPut)
	r.HandleFunc("/submission/{id}", s.authed(s.handleDeleteSubmission)).Methods(http.MethodDelete)
	r.HandleFunc("/action", s.authed(s.handleListActions)).Methods(http.MethodGet)
	r.HandleFunc("/action", s.authed(s.handleSaveAction)).Methods(http.MethodPost)
	r.HandleFunc("/action/{id}", s.authed(s.handleGetAction)).Methods(http.MethodGet)
	r.HandleFunc("/action/{id}", s.authed(s.handleSaveAction)).Methods(http.MethodPut)
	r.HandleFunc("/action/{id}", s.authed(s.handleDeleteAction)).Methods(http.MethodDelete)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user *models.User)

// authed resolves the session and echoes (or refreshes) the token on the
// way out.
func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, token, aerr := s.authenticate(r)
		if aerr != nil {
			w.WriteHeader(aerr.status)
			_, _ = w.Write([]byte(aerr.body))
			return
		}
		if user != nil && r.Header.Get(constants.HeaderJWTToken) != "" {
			if s.RefreshTokens {
				if fresh, err := s.IssueToken(user.ID, s.TokenTTL); err == nil {
					token = fresh
				}
			}
			w.Header().Set(constants.HeaderJWTToken, token)
		}
		next(w, r, user)
	}
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, err
}

func decodeBody(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func machineName(title string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(title), "")
}

func (s *Server) handleGetProject(w http.ResponseWriter, _ *http.Request, _ *models.User) {
	writeJSON(w, http.StatusOK, s.Project())
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request, user *models.User) {
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var p models.Project
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	s.mu.Lock()
	p.ID = s.project.ID
	p.Created = s.project.Created
	p.Modified = s.timestamp()
	s.project = p
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, _ *models.User) {
	writePage(w, r, s.DefaultLimit, []models.Project{s.Project()})
}

type loginRequest struct {
	Data struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"data"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	s.mu.RLock()
	var user *models.User
	if pw, ok := s.passwords[req.Data.Email]; ok && pw == req.Data.Password {
		for _, u := range s.users {
			if u.Data["email"] == req.Data.Email {
				user = u
				break
			}
		}
	}
	s.mu.RUnlock()
	if user == nil {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("User or password was incorrect"))
		return
	}
	token, err := s.IssueToken(user.ID, s.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set(constants.HeaderJWTToken, token)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCurrent(w http.ResponseWriter, _ *http.Request, user *models.User) {
	if user == nil {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleAccess(w http.ResponseWriter, _ *http.Request, _ *models.User) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := models.AccessInfo{
		Roles: make(map[string]models.Role, len(s.roles)),
		Forms: make(map[string]models.FormAccessInfo, len(s.forms)),
	}
	for _, role := range s.roles {
		info.Roles[role.MachineName] = *role
	}
	for _, f := range s.forms {
		info.Forms[f.Name] = models.FormAccessInfo{
			ID:               f.ID,
			Title:            f.Title,
			Name:             f.Name,
			Path:             f.Path,
			Access:           f.Access,
			SubmissionAccess: f.SubmissionAccess,
		}
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleTempToken(w http.ResponseWriter, r *http.Request, user *models.User) {
	if user == nil {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return
	}
	ttl := time.Hour
	if v := r.Header.Get(constants.HeaderExpire); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid x-expire")
			return
		}
		ttl = time.Duration(secs) * time.Second
	}
	token, err := s.IssueToken(user.ID, ttl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	key := uuid.NewString()
	s.mu.Lock()
	s.tempTokens[key] = token
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "token": token})
}

func (s *Server) handleListRoles(w http.ResponseWriter, _ *http.Request, _ *models.User) {
	s.mu.RLock()
	roles := make([]models.Role, 0, len(s.roles))
	for _, role := range s.roles {
		roles = append(roles, *role)
	}
	s.mu.RUnlock()
	sort.Slice(roles, func(i, j int) bool { return roles[i].Title < roles[j].Title })
	writeJSON(w, http.StatusOK, roles)
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request, _ *models.User) {
	s.mu.RLock()
	role, ok := s.roles[mux.Vars(r)["id"]]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Role not found")
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (s *Server) handleSaveRole(w http.ResponseWriter, r *http.Request, _ *models.User) {
	var role models.Role
	if err := decodeBody(r, &role); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	id, update := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	status := http.StatusCreated
	if update {
		prev, ok := s.roles[id]
		if !ok {
			writeError(w, http.StatusNotFound, "Role not found")
			return
		}
		role.ID, role.Created, status = id, prev.Created, http.StatusOK
	} else {
		role.ID, role.Created = NewID(), s.timestamp()
	}
	if role.MachineName == "" {
		role.MachineName = machineName(role.Title)
	}
	role.Modified = s.timestamp()
	s.roles[role.ID] = &role
	writeJSON(w, status, role)
}

func (s *Server) handleDeleteRole(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	_, ok := s.roles[id]
	delete(s.roles, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Role not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// lookupForm resolves {form} or {alias} to a stored form.
func (s *Server) lookupForm(r *http.Request) (*models.Form, bool) {
	vars := mux.Vars(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := vars["form"]; ok {
		f, found := s.forms[id]
		return f, found
	}
	alias := vars["alias"]
	for _, f := range s.forms {
		if f.Path == alias || f.Name == alias {
			return f, true
		}
	}
	return nil, false
}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request, _ *models.User) {
	s.mu.RLock()
	forms := make([]models.Form, 0, len(s.forms))
	for _, f := range s.forms {
		forms = append(forms, *f)
	}
	s.mu.RUnlock()
	sort.Slice(forms, func(i, j int) bool { return forms[i].ID < forms[j].ID })
	writePage(w, r, s.DefaultLimit, forms)
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request, _ *models.User) {
	f, ok := s.lookupForm(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleSaveForm(w http.ResponseWriter, r *http.Request, _ *models.User) {
	var form models.Form
	if err := decodeBody(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := form.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"name":    "ValidationError",
			"message": "Form validation failed",
			"details": []map[string]any{{"message": err.Error(), "path": []string{"title"}}},
		})
		return
	}
	id, update := mux.Vars(r)["form"]
	s.mu.Lock()
	defer s.mu.Unlock()
	status := http.StatusCreated
	if update {
		prev, ok := s.forms[id]
		if !ok {
			writeError(w, http.StatusNotFound, "Form not found")
			return
		}
		form.ID, form.Created, status = id, prev.Created, http.StatusOK
	} else {
		form.ID, form.Created = NewID(), s.timestamp()
	}
	if form.Project == "" {
		form.Project = s.project.ID
	}
	form.Modified = s.timestamp()
	s.forms[form.ID] = &form
	writeJSON(w, status, form)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id := mux.Vars(r)["form"]
	s.mu.Lock()
	_, ok := s.forms[id]
	delete(s.forms, id)
	delete(s.subs, id)
	delete(s.actions, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleAvailableActions(w http.ResponseWriter, r *http.Request, _ *models.User) {
	if _, ok := s.lookupForm(r); !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	writeJSON(w, http.StatusOK, availableActions)
}

func (s *Server) handleActionInfo(w http.ResponseWriter, r *http.Request, _ *models.User) {
	name := mux.Vars(r)["name"]
	for _, a := range availableActions {
		if a.Name == name {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Action not found")
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request, _ *models.User) {
	form, ok := s.lookupForm(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	s.mu.RLock()
	subs := make([]models.Submission, 0, len(s.subs[form.ID]))
	for _, sub := range s.subs[form.ID] {
		subs = append(subs, *sub)
	}
	s.mu.RUnlock()
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	writePage(w, r, s.DefaultLimit, subs)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request, _ *models.User) {
	form, ok := s.lookupForm(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	s.mu.RLock()
	sub, found := s.subs[form.ID][mux.Vars(r)["id"]]
	s.mu.RUnlock()
	if !found {
		writeError(w, http.StatusNotFound, "Submission not found")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSaveSubmission(w http.ResponseWriter, r *http.Request, user *models.User) {
	form, ok := s.lookupForm(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	var sub models.Submission
	if err := decodeBody(r, &sub); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if details := missingRequired(form, &sub); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"name":    "ValidationError",
			"message": "Submission validation failed",
			"details": details,
		})
		return
	}

	id, update := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs[form.ID] == nil {
		s.subs[form.ID] = make(map[string]*models.Submission)
	}
	status := http.StatusCreated
	if update {
		prev, found := s.subs[form.ID][id]
		if !found {
			writeError(w, http.StatusNotFound, "Submission not found")
			return
		}
		sub.ID, sub.Created, sub.Owner, status = id, prev.Created, prev.Owner, http.StatusOK
	} else {
		sub.ID, sub.Created = NewID(), s.timestamp()
		if user != nil {
			sub.Owner = user.ID
		}
	}
	sub.Form, sub.Project = form.ID, form.Project
	sub.Modified = s.timestamp()
	s.subs[form.ID][sub.ID] = &sub
	writeJSON(w, status, sub)
}

// missingRequired reports required inputs left empty, in the server's
// ValidationError detail shape.
func missingRequired(form *models.Form, sub *models.Submission) []map[string]any {
	var details []map[string]any
	form.Components.Walk(func(c models.Component) bool {
		f := c.Base()
		raw, err := json.Marshal(c)
		if err != nil {
			return true
		}
		if required, _ := jsonparser.GetBoolean(raw, "validate", "required"); f.Input && required {
			if v, ok := sub.Data[f.Key]; !ok || v == nil || v == "" {
				details = append(details, map[string]any{
					"message": fmt.Sprintf("%s is required", labelOf(f)),
					"path":    []string{f.Key},
				})
			}
		}
		return true
	})
	return details
}

func labelOf(f *models.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request, _ *models.User) {
	form, ok := s.lookupForm(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	_, found := s.subs[form.ID][id]
	delete(s.subs[form.ID], id)
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "Submission not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request, _ *models.User) {
	form, ok := s.lookupForm(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	s.mu.RLock()
	actions := make([]models.Action, 0, len(s.actions[form.ID]))
	for _, a := range s.actions[form.ID] {
		actions = append(actions, *a)
	}
	s.mu.RUnlock()
	sort.Slice(actions, func(i, j int) bool { return actions[i].Priority > actions[j].Priority })
	writePage(w, r, s.DefaultLimit, actions)
}

func (s *Server) handleGetAction(w http.ResponseWriter, r *http.Request, _ *models.User) {
	form, ok := s.lookupForm(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	s.mu.RLock()
	a, found := s.actions[form.ID][mux.Vars(r)["id"]]
	s.mu.RUnlock()
	if !found {
		writeError(w, http.StatusNotFound, "Action not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleSaveAction(w http.ResponseWriter, r *http.Request, _ *models.User) {
	form, ok := s.lookupForm(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	var a models.Action
	if err := decodeBody(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	id, update := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.actions[form.ID] == nil {
		s.actions[form.ID] = make(map[string]*models.Action)
	}
	status := http.StatusCreated
	if update {
		if _, found := s.actions[form.ID][id]; !found {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		a.ID, status = id, http.StatusOK
	} else {
		a.ID = NewID()
	}
	a.Form = form.ID
	s.actions[form.ID][a.ID] = &a
	writeJSON(w, status, a)
}

func (s *Server) handleDeleteAction(w http.ResponseWriter, r *http.Request, _ *models.User) {
	form, ok := s.lookupForm(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	_, found := s.actions[form.ID][id]
	delete(s.actions[form.ID], id)
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "Action not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// reserved query keys that are not field filters.
var reserved = map[string]bool{"limit": true, "skip": true, "select": true, "sort": true, "live": true, "formRevision": true, "token": true}

// writePage filters items by the query, cuts the requested window and
// answers with a Content-Range header.
func writePage[T any](w http.ResponseWriter, r *http.Request, defaultLimit int, items []T) {
	q := r.URL.Query()
	filtered := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if matches(raw, q) {
			filtered = append(filtered, raw)
		}
	}

	limit, skip := defaultLimit, 0
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v >= 0 {
		limit = v
	}
	if v, err := strconv.Atoi(q.Get("skip")); err == nil && v >= 0 {
		skip = v
	}
	if rng := r.Header.Get(constants.HeaderRange); rng != "" {
		if a, b, ok := strings.Cut(rng, "-"); ok {
			from, err1 := strconv.Atoi(a)
			to, err2 := strconv.Atoi(b)
			if err1 == nil && err2 == nil && to >= from {
				skip, limit = from, to-from+1
			}
		}
	}

	total := len(filtered)
	if skip > total || (skip == total && total > 0) {
		w.Header().Set(constants.HeaderContentRange, fmt.Sprintf("%s */%d", constants.RangeUnitItems, total))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}
	end := skip + limit
	if end > total {
		end = total
	}
	window := filtered[skip:end]
	if len(window) == 0 {
		w.Header().Set(constants.HeaderContentRange, fmt.Sprintf("%s */%d", constants.RangeUnitItems, total))
	} else {
		w.Header().Set(constants.HeaderContentRange,
			fmt.Sprintf("%s %d-%d/%d", constants.RangeUnitItems, skip, skip+len(window)-1, total))
	}
	writeJSON(w, http.StatusOK, window)
}

// matches applies equality and __regex filters to a JSON document. Dotted
// keys address nested fields, such as data.email.
func matches(doc []byte, q map[string][]string) bool {
	for key, values := range q {
		if reserved[key] || len(values) == 0 {
			continue
		}
		want := values[0]
		field, isRegex := strings.CutSuffix(key, "__regex")
		got, err := jsonparser.GetString(doc, strings.Split(field, ".")...)
		if err != nil {
			return false
		}
		if isRegex {
			re, err := regexp.Compile(want)
			if err != nil || !re.MatchString(got) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}
