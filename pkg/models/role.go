package models

// Role is a project role.
type Role struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MachineName string `json:"machineName,omitempty"`
	Admin       bool   `json:"admin"`
	Default     bool   `json:"default"`
	Created     string `json:"created,omitempty"`
	Modified    string `json:"modified,omitempty"`

	Extra Extra `json:"-"`
}

type roleAlias Role

func (r Role) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(roleAlias(r), r.Extra)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*roleAlias)(r), &r.Extra)
}
