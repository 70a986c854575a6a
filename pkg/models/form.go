package models

import (
	"fmt"
	"time"
)

// FormType distinguishes resources (nouns) from forms (verbs).
type FormType string

const (
	FormTypeForm     FormType = "form"
	FormTypeResource FormType = "resource"
)

// Valid reports whether t is one of the enumerated form types.
func (t FormType) Valid() bool {
	return t == FormTypeForm || t == FormTypeResource
}

// Display controls how a form is rendered.
type Display string

const (
	DisplayForm   Display = "form"
	DisplayWizard Display = "wizard"
	DisplayPDF    Display = "pdf"
)

// Valid reports whether d is one of the enumerated display modes.
func (d Display) Valid() bool {
	switch d {
	case DisplayForm, DisplayWizard, DisplayPDF:
		return true
	}
	return false
}

// Form is a form or resource definition.
//
// The path is unique within a project; that is enforced by the store, not
// here.
type Form struct {
	ID               string     `json:"_id,omitempty"`
	Title            string     `json:"title,omitempty"`
	Name             string     `json:"name,omitempty"`
	Path             string     `json:"path,omitempty"`
	Type             FormType   `json:"type,omitempty"`
	Display          Display    `json:"display,omitempty"`
	MachineName      string     `json:"machineName,omitempty"`
	Owner            *string    `json:"owner"`
	Project          string     `json:"project,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	Access           []Access   `json:"access,omitempty"`
	SubmissionAccess []Access   `json:"submissionAccess,omitempty"`
	Components       Components `json:"components"`
	Created          string     `json:"created,omitempty"`
	Modified         string     `json:"modified,omitempty"`

	Extra Extra `json:"-"`
}

type formAlias Form

func (f Form) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(formAlias(f), f.Extra)
}

func (f *Form) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*formAlias)(f), &f.Extra)
}

// Validate checks the enumerated fields that are set.
func (f *Form) Validate() error {
	if f.Type != "" && !f.Type.Valid() {
		return fmt.Errorf("form %q: invalid type %q", f.Path, f.Type)
	}
	if f.Display != "" && !f.Display.Valid() {
		return fmt.Errorf("form %q: invalid display %q", f.Path, f.Display)
	}
	return nil
}

// CreatedAt parses the created timestamp.
func (f *Form) CreatedAt() (time.Time, error) {
	return parseTimestamp(f.Created)
}

// ModifiedAt parses the modified timestamp.
func (f *Form) ModifiedAt() (time.Time, error) {
	return parseTimestamp(f.Modified)
}

// FindComponent returns the first component with the given key, searching
// the whole tree.
func (f *Form) FindComponent(key string) (Component, bool) {
	return f.Components.Find(key)
}

// InputKeys returns the keys of all data-bearing components in tree order.
func (f *Form) InputKeys() []string {
	return f.Components.InputKeys()
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
