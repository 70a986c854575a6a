package models

// AccessType names a permission and its scope, such as read_all or
// update_own.
type AccessType string

const (
	AccessCreateAll AccessType = "create_all"
	AccessReadAll   AccessType = "read_all"
	AccessUpdateAll AccessType = "update_all"
	AccessDeleteAll AccessType = "delete_all"
	AccessCreateOwn AccessType = "create_own"
	AccessReadOwn   AccessType = "read_own"
	AccessUpdateOwn AccessType = "update_own"
	AccessDeleteOwn AccessType = "delete_own"
)

// Permission returns the verb half of the access type ("create", "read",
// "update" or "delete").
func (a AccessType) Permission() string {
	p, _ := a.split()
	return p
}

// Scope returns "all" or "own".
func (a AccessType) Scope() string {
	_, s := a.split()
	return s
}

func (a AccessType) split() (string, string) {
	s := string(a)
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// Access grants an access type to a set of role ids.
type Access struct {
	Type  AccessType `json:"type"`
	Roles []string   `json:"roles"`
}

// AccessInfo is the project access summary served from /access.
type AccessInfo struct {
	Roles map[string]Role           `json:"roles"`
	Forms map[string]FormAccessInfo `json:"forms,omitempty"`
}

// FormAccessInfo is the per-form entry of AccessInfo.
type FormAccessInfo struct {
	ID               string   `json:"_id"`
	Title            string   `json:"title,omitempty"`
	Name             string   `json:"name,omitempty"`
	Path             string   `json:"path,omitempty"`
	Access           []Access `json:"access,omitempty"`
	SubmissionAccess []Access `json:"submissionAccess,omitempty"`
}

// Permissions is the result of evaluating a user's access to a form and a
// submission.
type Permissions struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// All reports whether every permission is granted.
func (p Permissions) All() bool {
	return p.Create && p.Read && p.Edit && p.Delete
}
