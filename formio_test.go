package formio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formio "github.com/formio/formio.go"
	"github.com/formio/formio.go/pkg/session"
)

type parsedURLs struct {
	NoProject     bool
	ProjectID     string
	ProjectURL    string
	FormID        string
	FormURL       string
	SubmissionID  string
	SubmissionURL string
	ActionID      string
	RoleID        string
	RoleURL       string
	FormRevision  string
	Query         string
}

func urlsOf(f *formio.Formio) parsedURLs {
	return parsedURLs{
		NoProject:     f.NoProject(),
		ProjectID:     f.ProjectID(),
		ProjectURL:    f.ProjectURL(),
		FormID:        f.FormID(),
		FormURL:       f.FormURL(),
		SubmissionID:  f.SubmissionID(),
		SubmissionURL: f.SubmissionURL(),
		ActionID:      f.ActionID(),
		RoleID:        f.RoleID(),
		RoleURL:       f.RoleURL(),
		FormRevision:  f.FormRevision(),
		Query:         f.Query(),
	}
}

func TestNewParsesHostedURLs(t *testing.T) {
	c, err := formio.NewContext()
	require.NoError(t, err)

	cases := []struct {
		name string
		path string
		want parsedURLs
	}{
		{
			name: "subdomain alias submission",
			path: "https://myproject.form.io/myform/submission/123",
			want: parsedURLs{
				ProjectID:     "myproject",
				ProjectURL:    "https://myproject.form.io",
				FormID:        "myform",
				FormURL:       "https://myproject.form.io/myform",
				SubmissionID:  "123",
				SubmissionURL: "https://myproject.form.io/myform/submission/123",
			},
		},
		{
			name: "project path with form ids",
			path: "https://api.form.io/project/5a1/form/5b2/submission/5c3",
			want: parsedURLs{
				ProjectID:     "5a1",
				ProjectURL:    "https://api.form.io/project/5a1",
				FormID:        "5b2",
				FormURL:       "https://api.form.io/project/5a1/form/5b2",
				SubmissionID:  "5c3",
				SubmissionURL: "https://api.form.io/project/5a1/form/5b2/submission/5c3",
			},
		},
		{
			name: "subdirectory project",
			path: "https://api.form.io/myproject/myform",
			want: parsedURLs{
				ProjectID:  "myproject",
				ProjectURL: "https://api.form.io/myproject",
				FormID:     "myform",
				FormURL:    "https://api.form.io/myproject/myform",
			},
		},
		{
			name: "role",
			path: "https://api.form.io/project/p1/role/r1",
			want: parsedURLs{
				ProjectID:  "p1",
				ProjectURL: "https://api.form.io/project/p1",
				RoleID:     "r1",
				RoleURL:    "https://api.form.io/project/p1/role/r1",
			},
		},
		{
			name: "form revision",
			path: "https://myproject.form.io/form/f1/v/3",
			want: parsedURLs{
				ProjectID:    "myproject",
				ProjectURL:   "https://myproject.form.io",
				FormID:       "f1",
				FormURL:      "https://myproject.form.io/form/f1",
				FormRevision: "3",
			},
		},
		{
			name: "action under form id",
			path: "https://myproject.form.io/form/f1/action/a1",
			want: parsedURLs{
				ProjectID:  "myproject",
				ProjectURL: "https://myproject.form.io",
				FormID:     "f1",
				FormURL:    "https://myproject.form.io/form/f1",
				ActionID:   "a1",
			},
		},
		{
			name: "query string is kept aside",
			path: "https://myproject.form.io/myform/submission?limit=5",
			want: parsedURLs{
				ProjectID:  "myproject",
				ProjectURL: "https://myproject.form.io",
				FormID:     "myform",
				FormURL:    "https://myproject.form.io/myform",
				Query:      "?limit=5",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, urlsOf(formio.New(c, tc.path)))
		})
	}
}

func TestNewSingleProjectServer(t *testing.T) {
	c, err := formio.NewContext(formio.WithBaseURL("http://localhost:3000"))
	require.NoError(t, err)

	f := formio.New(c, "/form/abc/submission/def")
	assert.Equal(t, parsedURLs{
		NoProject:     true,
		ProjectURL:    "http://localhost:3000",
		FormID:        "abc",
		FormURL:       "http://localhost:3000/form/abc",
		SubmissionID:  "def",
		SubmissionURL: "http://localhost:3000/form/abc/submission/def",
	}, urlsOf(f))

	f = formio.New(c, "http://localhost:3000/myform")
	assert.True(t, f.NoProject())
	assert.Equal(t, "http://localhost:3000/myform", f.FormURL())

	f = formio.New(c, "")
	assert.True(t, f.NoProject())
	assert.Equal(t, "http://localhost:3000", f.ProjectURL())
	assert.Equal(t, "http://localhost:3000/form", f.FormsURL())
	assert.Empty(t, f.FormURL())
}

func TestNewPathTypeSubdirectories(t *testing.T) {
	c, err := formio.NewContext(formio.WithPathType("Subdirectories"))
	require.NoError(t, err)

	f := formio.New(c, "https://forms.example.com/myform")
	assert.Empty(t, f.ProjectID())
	assert.Equal(t, "https://forms.example.com", f.ProjectURL())
	assert.Equal(t, "myform", f.FormID())
}

func TestNewOptionsOverrideContext(t *testing.T) {
	c, err := formio.NewContext()
	require.NoError(t, err)

	f := formio.New(c, "", formio.Options{Base: "http://localhost:3001/", Project: "http://localhost:3001/project/p9"})
	assert.Equal(t, "http://localhost:3001", f.Base())
	assert.Equal(t, "http://localhost:3001/project/p9", f.ProjectURL())
	assert.False(t, f.NoProject())
}

func TestSettersMoveDependentURLs(t *testing.T) {
	c, err := formio.NewContext()
	require.NoError(t, err)

	f := formio.New(c, "https://myproject.form.io/form/5e8f0f3c9d1e2a0012345678")
	assert.Equal(t, "https://myproject.form.io/form/5e8f0f3c9d1e2a0012345678", f.FormURL())

	f.SetFormID("contact")
	assert.Equal(t, "https://myproject.form.io/contact", f.FormURL())

	f.SetSubmissionID("s1")
	assert.Equal(t, "https://myproject.form.io/contact/submission/s1", f.SubmissionURL())

	f.SetActionID("a1")
	assert.Equal(t, "https://myproject.form.io/contact/action/a1", f.ActionURL())

	f.SetFormRevision("2")
	assert.Equal(t, "https://myproject.form.io/contact/v/2", f.VersionURL())

	f.SetFormID("5e8f0f3c9d1e2a0012345679")
	assert.Equal(t, "https://myproject.form.io/form/5e8f0f3c9d1e2a0012345679/submission/s1", f.SubmissionURL())

	f.SetSubmissionID("")
	assert.Empty(t, f.SubmissionURL())

	f.SetProjectID("p2")
	assert.Equal(t, "https://api.form.io/project/p2", f.ProjectURL())
	assert.Equal(t, "https://api.form.io/project/p2/role", f.RolesURL())
}

func TestNilContextUsesDefault(t *testing.T) {
	f := formio.New(nil, "https://myproject.form.io/myform")
	assert.Same(t, formio.DefaultContext(), f.Context())
}

func TestIsObjectID(t *testing.T) {
	assert.True(t, formio.IsObjectID("5e8f0f3c9d1e2a0012345678"))
	assert.False(t, formio.IsObjectID("not-an-id"))
	assert.False(t, formio.IsObjectID("5e8f0f3c9d1e2a001234567"))
	assert.False(t, formio.IsObjectID("zz8f0f3c9d1e2a0012345678"))
}

func TestWithTokenFollowsNamespace(t *testing.T) {
	c, err := formio.NewContext(formio.WithToken("tok"), formio.WithNamespace("custom"))
	require.NoError(t, err)
	assert.Equal(t, "tok", c.Token("custom"))
	assert.Empty(t, c.Token("formio"))

	store := session.NewStore()
	c, err = formio.NewContext(formio.WithToken("tok"), formio.WithSessionStore(store))
	require.NoError(t, err)
	assert.Equal(t, "tok", store.Token("formio"))
	assert.Equal(t, "tok", c.Token(""))
}
