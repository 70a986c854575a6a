package formiometrics_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formio "github.com/formio/formio.go"
	"github.com/formio/formio.go/contrib/formiometrics"
	"github.com/formio/formio.go/internal/fakeformio"
	"github.com/formio/formio.go/pkg/models"
	"github.com/formio/formio.go/pkg/plugin"
)

func setup(t *testing.T) (*fakeformio.Server, *formio.Context, *prometheus.Registry) {
	t.Helper()
	server := fakeformio.NewServer()
	server.AddForm(&models.Form{Title: "Contact", Name: "contact", Path: "contact"})
	server.Start()
	t.Cleanup(server.Stop)

	client := server.Client()
	c, err := formio.NewContext(
		formio.WithBaseURL(server.URL()),
		formio.WithHTTPClient(client),
	)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	col, err := formiometrics.NewCollector("test", reg)
	require.NoError(t, err)
	col.Register(c, client)
	return server, c, reg
}

func TestCollectorCountsRequests(t *testing.T) {
	server, c, reg := setup(t)
	ctx := context.Background()
	f := formio.New(c, "/contact")

	_, err := f.LoadForm(ctx, nil)
	require.NoError(t, err)
	_, err = f.LoadForm(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, server.Requests(), 1)

	expected := `
# HELP test_client_requests_total Requests started, by resource kind and method
# TYPE test_client_requests_total counter
test_client_requests_total{kind="form",method="GET"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_client_requests_total"))

	expected = `
# HELP test_client_responses_total Successful responses, by resource kind, method, status and source
# TYPE test_client_responses_total counter
test_client_responses_total{kind="form",method="GET",source="cache",status="200"} 1
test_client_responses_total{kind="form",method="GET",source="server",status="200"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_client_responses_total"))

	expected = `
# HELP test_http_requests_total HTTP requests sent to the server
# TYPE test_http_requests_total counter
test_http_requests_total{code="200",method="get"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_http_requests_total"))
	n, err := testutil.GatherAndCount(reg, "test_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollectorPluginResponses(t *testing.T) {
	server, c, reg := setup(t)
	c.Plugins().Register(&plugin.Plugin{Hooks: map[string]plugin.Hook{
		plugin.StaticRequest: func(context.Context, ...any) (any, error) {
			return []byte(`{"ok":true}`), nil
		},
	}}, "canned")

	var out map[string]any
	require.NoError(t, c.StaticRequest(context.Background(), server.URL()+"/anything", http.MethodGet, nil, &out))
	assert.Equal(t, true, out["ok"])
	assert.Empty(t, server.Requests())

	expected := `
# HELP test_client_responses_total Successful responses, by resource kind, method, status and source
# TYPE test_client_responses_total counter
test_client_responses_total{kind="static",method="GET",source="plugin",status="200"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_client_responses_total"))
}

func TestCollectorFailedRequestIsNotAResponse(t *testing.T) {
	server, c, reg := setup(t)
	server.AddStubResponse(fakeformio.ErrorStubResponse(http.MethodGet, "/contact", http.StatusInternalServerError, "boom"))

	_, err := formio.New(c, "/contact").LoadForm(context.Background(), nil)
	require.Error(t, err)

	n, err := testutil.GatherAndCount(reg, "test_client_responses_total")
	require.NoError(t, err)
	assert.Zero(t, n)

	expected := `
# HELP test_http_requests_total HTTP requests sent to the server
# TYPE test_http_requests_total counter
test_http_requests_total{code="500",method="get"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_http_requests_total"))
}

func TestNewCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := formiometrics.NewCollector("", reg)
	require.NoError(t, err)
	_, err = formiometrics.NewCollector("", reg)
	assert.Error(t, err)
}
