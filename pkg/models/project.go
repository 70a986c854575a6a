package models

// Project groups forms, roles and submissions under one URL.
type Project struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Created     string `json:"created,omitempty"`
	Modified    string `json:"modified,omitempty"`

	Extra Extra `json:"-"`
}

type projectAlias Project

func (p Project) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(projectAlias(p), p.Extra)
}

func (p *Project) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*projectAlias)(p), &p.Extra)
}
