package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formio/formio.go/pkg/models"
)

const exampleForm = `{
  "_id": "5e3c2f8e1b0f4a3b9c7d6e5f",
  "title": "Example",
  "name": "example",
  "path": "example",
  "type": "form",
  "display": "wizard",
  "owner": null,
  "settings": {"pdf": {"id": "1"}},
  "submissionAccess": [{"type": "create_own", "roles": ["r1"]}],
  "components": [
    {"type": "textfield", "key": "firstName", "label": "First Name", "input": true, "placeholder": "Enter", "customClass": "x"},
    {"type": "panel", "key": "page1", "input": false, "title": "Page 1", "components": [
      {"type": "email", "key": "email", "input": true},
      {"type": "columns", "key": "cols", "input": false, "columns": [
        {"components": [{"type": "phoneNumber", "key": "phone", "input": true, "inputMask": "(999) 999-9999", "lockKey": true}], "width": 6},
        {"components": [{"type": "select", "key": "colors", "input": true, "widget": "choicesjs", "data": {"values": [{"label": "Red", "value": "red"}]}}], "width": 6}
      ]}
    ]},
    {"type": "datetime", "key": "when", "input": true, "format": "yyyy-MM-dd"},
    {"type": "button", "key": "submit", "input": true, "action": "submit", "theme": "primary"}
  ],
  "created": "2023-04-05T10:11:12.123Z",
  "modified": "2023-04-06T10:11:12.123Z"
}`

func TestFormDecodesComponentVariants(t *testing.T) {
	var form models.Form
	require.NoError(t, json.Unmarshal([]byte(exampleForm), &form))

	assert.Equal(t, models.FormTypeForm, form.Type)
	assert.Equal(t, models.DisplayWizard, form.Display)
	assert.Nil(t, form.Owner)
	require.Len(t, form.Components, 4)

	tf, ok := form.Components[0].(*models.TextField)
	require.True(t, ok)
	assert.Equal(t, "Enter", tf.Placeholder)
	assert.Contains(t, tf.Extra, "customClass")

	panel, ok := form.Components[1].(*models.Panel)
	require.True(t, ok)
	assert.Equal(t, "Page 1", panel.Title)

	generic, ok := form.Components[2].(*models.GenericComponent)
	require.True(t, ok)
	assert.Equal(t, "datetime", generic.ComponentType())
	assert.Contains(t, generic.Extra, "format")

	phone, ok := form.FindComponent("phone")
	require.True(t, ok)
	require.IsType(t, &models.PhoneNumber{}, phone)
	assert.True(t, phone.(*models.PhoneNumber).LockKey)
	assert.Equal(t, "(999) 999-9999", phone.(*models.PhoneNumber).InputMask)

	sel, ok := form.FindComponent("colors")
	require.True(t, ok)
	require.Len(t, sel.(*models.Select).Data.Values, 1)

	assert.Equal(t, []string{"firstName", "email", "phone", "colors", "when", "submit"}, form.InputKeys())
}

func TestFormRoundTripKeepsUntouchedFields(t *testing.T) {
	var form models.Form
	require.NoError(t, json.Unmarshal([]byte(exampleForm), &form))

	form.Title = "Changed"
	out, err := json.Marshal(form)
	require.NoError(t, err)

	var want, got map[string]any
	require.NoError(t, json.Unmarshal([]byte(exampleForm), &want))
	require.NoError(t, json.Unmarshal(out, &got))

	want["title"] = "Changed"
	assert.Equal(t, want, got)
}

func TestFormRoundTripKeepsEmptyValues(t *testing.T) {
	raw := `{"owner":null,"tags":[],"access":[],"components":[
		{"type":"textfield","key":"a","input":true,"hidden":false,"tags":[],"label":"",
			"validate":{"required":false,"pattern":"","custom":""},
			"conditional":{"show":null,"when":null,"eq":""}}]}`

	var form models.Form
	require.NoError(t, json.Unmarshal([]byte(raw), &form))
	out, err := json.Marshal(form)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	c, ok := form.FindComponent("a")
	require.True(t, ok)
	tf := c.(*models.TextField)
	tf.Hidden = true
	tf.Validate.Required = true
	out, err = json.Marshal(form)
	require.NoError(t, err)

	var again models.Form
	require.NoError(t, json.Unmarshal(out, &again))
	c, ok = again.FindComponent("a")
	require.True(t, ok)
	assert.True(t, c.(*models.TextField).Hidden)
	assert.True(t, c.(*models.TextField).Validate.Required)
	assert.Contains(t, string(out), `"pattern":""`)
}

func TestComponentsWalkStops(t *testing.T) {
	var form models.Form
	require.NoError(t, json.Unmarshal([]byte(exampleForm), &form))

	var visited []string
	form.Components.Walk(func(c models.Component) bool {
		visited = append(visited, c.Base().Key)
		return c.Base().Key != "email"
	})
	assert.Equal(t, []string{"firstName", "page1", "email"}, visited)
}

func TestEmptyComponentsEncodeAsArray(t *testing.T) {
	out, err := json.Marshal(models.Form{Title: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"x","owner":null,"components":[]}`, string(out))
}

func TestNewComponentSetsType(t *testing.T) {
	c := models.NewComponent(models.TypeSignature)
	require.IsType(t, &models.Signature{}, c)
	c.Base().Key = "sig"

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"signature","input":false,"key":"sig"}`, string(out))
}

func TestFormValidate(t *testing.T) {
	assert.NoError(t, (&models.Form{Type: models.FormTypeResource, Display: models.DisplayPDF}).Validate())
	assert.Error(t, (&models.Form{Type: "survey"}).Validate())
	assert.Error(t, (&models.Form{Display: "grid"}).Validate())
}

func TestFormTimestamps(t *testing.T) {
	var form models.Form
	require.NoError(t, json.Unmarshal([]byte(exampleForm), &form))

	created, err := form.CreatedAt()
	require.NoError(t, err)
	assert.Equal(t, 2023, created.Year())
	assert.Equal(t, 123000000, created.Nanosecond())
}
