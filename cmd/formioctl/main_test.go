package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formio/formio.go/internal/fakeformio"
	"github.com/formio/formio.go/pkg/models"
)

func startServer(t *testing.T) *fakeformio.Server {
	t.Helper()
	server := fakeformio.NewServer()
	server.AddForm(&models.Form{
		Title: "Contact",
		Name:  "contact",
		Path:  "contact",
		Type:  models.FormTypeForm,
		Components: models.Components{
			&models.TextField{
				Field:     models.Field{Type: models.TypeTextField, Input: true, Key: "name", Label: "Name"},
				TextInput: models.TextInput{Validate: &models.Validate{Required: true}},
			},
		},
	})
	server.Start()
	t.Cleanup(server.Stop)
	return server
}

func runCLI(t *testing.T, server *fakeformio.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-base", server.URL(), "-log-level", "error"}, args...)
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr, server.Client())
	return stdout.String(), err
}

func TestForms(t *testing.T) {
	server := startServer(t)

	out, err := runCLI(t, server, "", "forms")
	require.NoError(t, err)
	assert.Contains(t, out, "\tcontact\tContact\n")
	assert.Contains(t, out, "1 of 1\n")

	out, err = runCLI(t, server, "", "form", "contact")
	require.NoError(t, err)
	var form models.Form
	require.NoError(t, json.Unmarshal([]byte(out), &form))
	assert.Equal(t, "contact", form.Path)
}

func TestSubmitAndList(t *testing.T) {
	server := startServer(t)

	out, err := runCLI(t, server, `{"data":{"name":"Joe"}}`, "submit", "contact", "-")
	require.NoError(t, err)
	var saved models.Submission
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	require.NotEmpty(t, saved.ID)

	out, err = runCLI(t, server, "", "submission", "/contact", saved.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Joe"`)

	out, err = runCLI(t, server, "", "submissions", "contact", "-where", "data.name=Joe", "-limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, saved.ID)
	assert.Contains(t, out, "1 of 1\n")

	_, err = runCLI(t, server, "", "delete", "contact", saved.ID)
	require.NoError(t, err)
	_, err = runCLI(t, server, "", "submission", "contact", saved.ID)
	assert.Error(t, err)
}

func TestSubmitRejected(t *testing.T) {
	server := startServer(t)

	out, err := runCLI(t, server, `{"data":{}}`, "submit", "contact", "-")
	assert.ErrorContains(t, err, "rejected")
	assert.Contains(t, out, "name: Name is required")
}

func TestWhoamiAnonymous(t *testing.T) {
	server := startServer(t)

	out, err := runCLI(t, server, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "anonymous\n", out)
}

func TestUsageErrors(t *testing.T) {
	server := startServer(t)

	_, err := runCLI(t, server, "")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, server, "", "frobnicate")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, server, "", "form")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, server, "", "submissions", "contact", "-where", "nokey")
	assert.ErrorIs(t, err, errUsage)
}
