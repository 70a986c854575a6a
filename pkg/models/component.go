package models

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// Component types with a typed variant. Any other type decodes into
// *GenericComponent.
const (
	TypeTextField   = "textfield"
	TypeEmail       = "email"
	TypePassword    = "password"
	TypePhoneNumber = "phoneNumber"
	TypeButton      = "button"
	TypeHTMLElement = "htmlelement"
	TypeSignature   = "signature"
	TypePanel       = "panel"
	TypeColumns     = "columns"
	TypeSelect      = "select"
)

// Component is one node of a form schema tree.
type Component interface {
	// ComponentType returns the type tag.
	ComponentType() string
	// Base returns the fields every component carries.
	Base() *Field
}

// Field holds the fields shared by all component variants. Structural
// components (panels, columns) own their children in Components.
type Field struct {
	Type       string     `json:"type"`
	Input      bool       `json:"input"`
	Key        string     `json:"key"`
	Label      string     `json:"label,omitempty"`
	TableView  *bool      `json:"tableView,omitempty"`
	Persistent *bool      `json:"persistent,omitempty"`
	Hidden     bool       `json:"hidden,omitempty"`
	Disabled   bool       `json:"disabled,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Properties any        `json:"properties,omitempty"`
	Components Components `json:"components,omitempty"`

	Extra Extra `json:"-"`
}

func (f *Field) Base() *Field { return f }

// ComponentType returns the type tag.
func (f *Field) ComponentType() string { return f.Type }

type Validate struct {
	Required      bool   `json:"required,omitempty"`
	MinLength     any    `json:"minLength,omitempty"`
	MaxLength     any    `json:"maxLength,omitempty"`
	Pattern       string `json:"pattern,omitempty"`
	Custom        string `json:"custom,omitempty"`
	CustomPrivate bool   `json:"customPrivate,omitempty"`

	Extra Extra `json:"-"`
}

type Conditional struct {
	Show any     `json:"show,omitempty"`
	When *string `json:"when"`
	Eq   string  `json:"eq,omitempty"`

	Extra Extra `json:"-"`
}

type Attr struct {
	Attr  string `json:"attr"`
	Value string `json:"value"`
}

// TextInput holds the properties shared by single-line text inputs.
type TextInput struct {
	Autofocus     bool         `json:"autofocus,omitempty"`
	InputType     string       `json:"inputType,omitempty"`
	InputMask     string       `json:"inputMask,omitempty"`
	Placeholder   string       `json:"placeholder,omitempty"`
	Prefix        string       `json:"prefix,omitempty"`
	Suffix        string       `json:"suffix,omitempty"`
	Multiple      bool         `json:"multiple,omitempty"`
	DefaultValue  any          `json:"defaultValue,omitempty"`
	Protected     bool         `json:"protected,omitempty"`
	Unique        bool         `json:"unique,omitempty"`
	ClearOnHide   *bool        `json:"clearOnHide,omitempty"`
	Validate      *Validate    `json:"validate,omitempty"`
	Conditional   *Conditional `json:"conditional,omitempty"`
	LabelPosition string       `json:"labelPosition,omitempty"`
	InputFormat   string       `json:"inputFormat,omitempty"`
}

type TextField struct {
	Field
	TextInput
	Spellcheck *bool `json:"spellcheck,omitempty"`
}

type Email struct {
	Field
	DefaultValue any    `json:"defaultValue,omitempty"`
	InputType    string `json:"inputType,omitempty"`
	Placeholder  string `json:"placeholder,omitempty"`
	Prefix       string `json:"prefix,omitempty"`
	Suffix       string `json:"suffix,omitempty"`
	Protected    bool   `json:"protected,omitempty"`
	Unique       bool   `json:"unique,omitempty"`
}

type Password struct {
	Field
	InputType   string `json:"inputType,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	Protected   bool   `json:"protected,omitempty"`
}

type PhoneNumber struct {
	Field
	TextInput
	LockKey bool   `json:"lockKey,omitempty"`
	Source  string `json:"source,omitempty"`
}

type Button struct {
	Field
	Action           string `json:"action,omitempty"`
	Block            bool   `json:"block,omitempty"`
	DisableOnInvalid bool   `json:"disableOnInvalid,omitempty"`
	LeftIcon         string `json:"leftIcon,omitempty"`
	RightIcon        string `json:"rightIcon,omitempty"`
	Size             string `json:"size,omitempty"`
	Theme            string `json:"theme,omitempty"`
}

type HTMLElement struct {
	Field
	Tag         string       `json:"tag,omitempty"`
	Attrs       []Attr       `json:"attrs,omitempty"`
	ClassName   string       `json:"className,omitempty"`
	Content     string       `json:"content,omitempty"`
	HideLabel   bool         `json:"hideLabel,omitempty"`
	Conditional *Conditional `json:"conditional,omitempty"`
}

type Signature struct {
	Field
	Placeholder     string       `json:"placeholder,omitempty"`
	Footer          string       `json:"footer,omitempty"`
	Width           string       `json:"width,omitempty"`
	Height          string       `json:"height,omitempty"`
	PenColor        string       `json:"penColor,omitempty"`
	BackgroundColor string       `json:"backgroundColor,omitempty"`
	MinWidth        string       `json:"minWidth,omitempty"`
	MaxWidth        string       `json:"maxWidth,omitempty"`
	Protected       bool         `json:"protected,omitempty"`
	ClearOnHide     *bool        `json:"clearOnHide,omitempty"`
	Validate        *Validate    `json:"validate,omitempty"`
	HideLabel       bool         `json:"hideLabel,omitempty"`
	Conditional     *Conditional `json:"conditional,omitempty"`
}

type Panel struct {
	Field
	Title       string `json:"title,omitempty"`
	IsNew       bool   `json:"isNew,omitempty"`
	ClearOnHide *bool  `json:"clearOnHide,omitempty"`
	Theme       string `json:"theme,omitempty"`
	HideLabel   bool   `json:"hideLabel,omitempty"`
}

// Column is one cell of a Columns layout.
type Column struct {
	Components   Components `json:"components"`
	Width        int        `json:"width,omitempty"`
	Size         string     `json:"size,omitempty"`
	CurrentWidth int        `json:"currentWidth,omitempty"`
	Offset       int        `json:"offset,omitempty"`
	Push         int        `json:"push,omitempty"`
	Pull         int        `json:"pull,omitempty"`
}

type Columns struct {
	Field
	Columns     []Column     `json:"columns"`
	ClearOnHide *bool        `json:"clearOnHide,omitempty"`
	Conditional *Conditional `json:"conditional,omitempty"`
	LockKey     bool         `json:"lockKey,omitempty"`
	Source      string       `json:"source,omitempty"`
	HideLabel   bool         `json:"hideLabel,omitempty"`
}

type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type SelectData struct {
	Values []SelectOption `json:"values"`
}

type Select struct {
	Field
	Data         *SelectData `json:"data,omitempty"`
	DefaultValue any         `json:"defaultValue,omitempty"`
	Multiple     bool        `json:"multiple,omitempty"`
	Tooltip      string      `json:"tooltip,omitempty"`
	Widget       string      `json:"widget,omitempty"`
}

// GenericComponent carries any component type without a typed variant.
type GenericComponent struct {
	Field
}

type (
	textFieldAlias   TextField
	emailAlias       Email
	passwordAlias    Password
	phoneNumberAlias PhoneNumber
	buttonAlias      Button
	htmlElementAlias HTMLElement
	signatureAlias   Signature
	panelAlias       Panel
	columnsAlias     Columns
	selectAlias      Select
	genericAlias     GenericComponent
	validateAlias    Validate
	conditionalAlias Conditional
)

func (v Validate) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(validateAlias(v), v.Extra)
}

func (v *Validate) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*validateAlias)(v), &v.Extra)
}

func (c Conditional) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(conditionalAlias(c), c.Extra)
}

func (c *Conditional) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*conditionalAlias)(c), &c.Extra)
}

func (c TextField) MarshalJSON() ([]byte, error) {
	c.Type = TypeTextField
	return marshalWithExtra(textFieldAlias(c), c.Extra)
}

func (c *TextField) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*textFieldAlias)(c), &c.Extra)
}

func (c Email) MarshalJSON() ([]byte, error) {
	c.Type = TypeEmail
	return marshalWithExtra(emailAlias(c), c.Extra)
}

func (c *Email) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*emailAlias)(c), &c.Extra)
}

func (c Password) MarshalJSON() ([]byte, error) {
	c.Type = TypePassword
	return marshalWithExtra(passwordAlias(c), c.Extra)
}

func (c *Password) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*passwordAlias)(c), &c.Extra)
}

func (c PhoneNumber) MarshalJSON() ([]byte, error) {
	c.Type = TypePhoneNumber
	return marshalWithExtra(phoneNumberAlias(c), c.Extra)
}

func (c *PhoneNumber) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*phoneNumberAlias)(c), &c.Extra)
}

func (c Button) MarshalJSON() ([]byte, error) {
	c.Type = TypeButton
	return marshalWithExtra(buttonAlias(c), c.Extra)
}

func (c *Button) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*buttonAlias)(c), &c.Extra)
}

func (c HTMLElement) MarshalJSON() ([]byte, error) {
	c.Type = TypeHTMLElement
	return marshalWithExtra(htmlElementAlias(c), c.Extra)
}

func (c *HTMLElement) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*htmlElementAlias)(c), &c.Extra)
}

func (c Signature) MarshalJSON() ([]byte, error) {
	c.Type = TypeSignature
	return marshalWithExtra(signatureAlias(c), c.Extra)
}

func (c *Signature) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*signatureAlias)(c), &c.Extra)
}

func (c Panel) MarshalJSON() ([]byte, error) {
	c.Type = TypePanel
	return marshalWithExtra(panelAlias(c), c.Extra)
}

func (c *Panel) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*panelAlias)(c), &c.Extra)
}

func (c Columns) MarshalJSON() ([]byte, error) {
	c.Type = TypeColumns
	return marshalWithExtra(columnsAlias(c), c.Extra)
}

func (c *Columns) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*columnsAlias)(c), &c.Extra)
}

func (c Select) MarshalJSON() ([]byte, error) {
	c.Type = TypeSelect
	return marshalWithExtra(selectAlias(c), c.Extra)
}

func (c *Select) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*selectAlias)(c), &c.Extra)
}

func (c GenericComponent) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(genericAlias(c), c.Extra)
}

func (c *GenericComponent) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*genericAlias)(c), &c.Extra)
}

// NewComponent returns an empty variant for the given type tag.
func NewComponent(componentType string) Component {
	var c Component
	switch componentType {
	case TypeTextField:
		c = &TextField{}
	case TypeEmail:
		c = &Email{}
	case TypePassword:
		c = &Password{}
	case TypePhoneNumber:
		c = &PhoneNumber{}
	case TypeButton:
		c = &Button{}
	case TypeHTMLElement:
		c = &HTMLElement{}
	case TypeSignature:
		c = &Signature{}
	case TypePanel:
		c = &Panel{}
	case TypeColumns:
		c = &Columns{}
	case TypeSelect:
		c = &Select{}
	default:
		c = &GenericComponent{}
	}
	c.Base().Type = componentType
	return c
}

// Components is an ordered list of sibling components.
type Components []Component

func (cs Components) MarshalJSON() ([]byte, error) {
	if cs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Component(cs))
}

func (cs *Components) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	out := make(Components, 0, len(raws))
	for i, raw := range raws {
		componentType, err := jsonparser.GetString(raw, "type")
		if err != nil && err != jsonparser.KeyPathNotFoundError {
			return fmt.Errorf("component %d: %w", i, err)
		}
		c := NewComponent(componentType)
		if err := json.Unmarshal(raw, c); err != nil {
			return fmt.Errorf("component %d (%s): %w", i, componentType, err)
		}
		out = append(out, c)
	}
	*cs = out
	return nil
}

// Children returns the components directly owned by c, including the
// contents of every column of a Columns component.
func Children(c Component) Components {
	var children Components
	if cols, ok := c.(*Columns); ok {
		for _, col := range cols.Columns {
			children = append(children, col.Components...)
		}
	}
	return append(children, c.Base().Components...)
}

// Walk visits the tree depth-first, parents before children. Returning false
// from fn stops the walk.
func (cs Components) Walk(fn func(Component) bool) bool {
	for _, c := range cs {
		if !fn(c) {
			return false
		}
		if !Children(c).Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first component in tree order with the given key.
func (cs Components) Find(key string) (Component, bool) {
	var found Component
	cs.Walk(func(c Component) bool {
		if c.Base().Key == key {
			found = c
			return false
		}
		return true
	})
	return found, found != nil
}

// InputKeys returns the keys of data-bearing components in tree order.
func (cs Components) InputKeys() []string {
	var keys []string
	cs.Walk(func(c Component) bool {
		if c.Base().Input {
			keys = append(keys, c.Base().Key)
		}
		return true
	})
	return keys
}
