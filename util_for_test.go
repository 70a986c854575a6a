package formio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	formio "github.com/formio/formio.go"
	"github.com/formio/formio.go/internal/fakeformio"
)

// newTestServer starts a fake server and a context whose base URL points at
// it, the single project layout.
func newTestServer(t *testing.T, opts ...formio.ContextOption) (*fakeformio.Server, *formio.Context) {
	t.Helper()
	server := fakeformio.NewServer()
	return server, startTestServer(t, server, opts...)
}

// startTestServer starts a server configured by the caller.
func startTestServer(t *testing.T, server *fakeformio.Server, opts ...formio.ContextOption) *formio.Context {
	t.Helper()
	server.Start()
	t.Cleanup(server.Stop)

	opts = append([]formio.ContextOption{
		formio.WithBaseURL(server.URL()),
		formio.WithHTTPClient(server.Client()),
	}, opts...)
	c, err := formio.NewContext(opts...)
	require.NoError(t, err)
	return c
}

// login registers a user and stores a token for it in the context.
func login(t *testing.T, server *fakeformio.Server, c *formio.Context, roles ...string) string {
	t.Helper()
	user := server.AddUser(t.Name()+"@example.com", "secret", roles...)
	token, err := server.IssueToken(user.ID, time.Hour)
	require.NoError(t, err)
	c.SetToken("", token)
	return user.ID
}

// recordEvents collects every event emitted on the bus.
type recordedEvent struct {
	Name    string
	Payload any
}

func recordEvents(t *testing.T, c *formio.Context) *[]recordedEvent {
	t.Helper()
	var got []recordedEvent
	unsubscribe := c.Events().OnAny(func(event string, payload any) {
		got = append(got, recordedEvent{Name: event, Payload: payload})
	})
	t.Cleanup(unsubscribe)
	return &got
}

func eventNames(evs []recordedEvent) []string {
	names := make([]string, len(evs))
	for i, e := range evs {
		names[i] = e.Name
	}
	return names
}
