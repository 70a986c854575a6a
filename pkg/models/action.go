package models

import "encoding/json"

// Handler says whether an action runs before or after the submission is
// persisted.
type Handler string

const (
	HandlerBefore Handler = "before"
	HandlerAfter  Handler = "after"
)

// Action is a server-side hook attached to a form.
type Action struct {
	ID          string         `json:"_id,omitempty"`
	Form        string         `json:"form,omitempty"`
	Name        string         `json:"name,omitempty"`
	Title       string         `json:"title,omitempty"`
	MachineName string         `json:"machineName,omitempty"`
	Handler     []Handler      `json:"handler,omitempty"`
	Method      []string       `json:"method,omitempty"`
	Priority    int            `json:"priority"`
	Settings    map[string]any `json:"settings,omitempty"`

	Extra Extra `json:"-"`
}

type actionAlias Action

func (a Action) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(actionAlias(a), a.Extra)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*actionAlias)(a), &a.Extra)
}

// AvailableAction describes an action type the server can attach to forms.
type AvailableAction struct {
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Priority     int             `json:"priority"`
	Defaults     ActionDefaults  `json:"defaults"`
	Access       ActionAccess    `json:"access"`
	SettingsForm json.RawMessage `json:"settingsForm,omitempty"`
}

type ActionDefaults struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Priority int       `json:"priority"`
	Handler  []Handler `json:"handler"`
	Method   []string  `json:"method"`
}

type ActionAccess struct {
	Handler *bool `json:"handler,omitempty"`
	Method  *bool `json:"method,omitempty"`
}
