package main

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
	hubtest "github.com/GriffinCanCode/adapterhub/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCallCommand(t *testing.T) {
	hub := hubtest.NewHub(t)

	out, err := run(t, "--base-url", hub.URL(), "call", "pdf-extractor", "--input", "doc.pdf", "--user", "u1")
	require.NoError(t, err)

	var resp types.AdapterResponse
	require.NoError(t, sonic.UnmarshalString(out, &resp))
	assert.Equal(t, types.StatusOK, resp.Status)
	assert.Equal(t, "doc.pdf", *resp.Output)

	req := hub.Requests("pdf-extractor")[0]
	assert.Equal(t, "u1", req.Context.UserID())
}

func TestCallCommand_AdapterError(t *testing.T) {
	hub := hubtest.NewHub(t)
	hub.On("audit-logger", hubtest.Always(http.StatusBadRequest, map[string]string{"status": "error", "error": "nope"}))

	out, err := run(t, "--base-url", hub.URL(), "call", "audit-logger")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
	assert.Contains(t, out, `"status": "error"`)
	assert.Nil(t, hub.Requests("audit-logger")[0].Input)
}

func TestCallCommand_UnknownAdapter(t *testing.T) {
	hub := hubtest.NewHub(t)

	_, err := run(t, "--base-url", hub.URL(), "call", "not-a-real-adapter")
	require.Error(t, err)
	assert.Equal(t, 0, hub.Attempts("not-a-real-adapter"))
}

func TestBeforeCommand(t *testing.T) {
	hub := hubtest.NewHub(t)
	hub.On("web-enricher", hubtest.Always(http.StatusOK, types.Success("enriched", map[string]interface{}{"links": 2})))

	out, err := run(t, "--base-url", hub.URL(), "before", "pdf-extractor", "web-enricher",
		"--input", "q", "--context", `{"userId":"u1","meta":{"lang":"en"}}`)
	require.NoError(t, err)

	assert.Contains(t, out, `"prompt": "enriched"`)
	assert.Contains(t, out, `"links": 2`)
	assert.Contains(t, out, `"userId": "u1"`)
}

func TestParallelCommand(t *testing.T) {
	hub := hubtest.NewHub(t)

	out, err := run(t, "--base-url", hub.URL(), "parallel", "pdf-extractor", "web-enricher", "--input", "x")
	require.NoError(t, err)

	var results []keyedResponse
	require.NoError(t, sonic.UnmarshalString(out, &results))
	require.Len(t, results, 2)
	assert.Equal(t, "pdf-extractor", results[0].AdapterID)
	assert.Equal(t, "web-enricher", results[1].AdapterID)
}

func TestHealthCommand(t *testing.T) {
	hub := hubtest.NewHub(t)

	out, err := run(t, "--base-url", hub.URL(), "health")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "ok"`)

	hub.OnHealth(func() hubtest.Reply { return hubtest.Reply{Status: http.StatusServiceUnavailable} })
	_, err = run(t, "--base-url", hub.URL(), "health")
	assert.Error(t, err)
}

func TestRegistryListCommand(t *testing.T) {
	out, err := run(t, "registry", "list", "--type", "notification")
	require.NoError(t, err)

	var defs []types.AdapterDefinition
	require.NoError(t, sonic.UnmarshalString(out, &defs))
	require.NotEmpty(t, defs)
	for _, d := range defs {
		assert.Equal(t, types.AdapterTypeNotification, d.Type)
	}

	_, err = run(t, "registry", "list", "--type", "bogus")
	assert.Error(t, err)
}

func TestContextFlags(t *testing.T) {
	cmd := newCallCmd(&env{})
	require.NoError(t, cmd.Flags().Set("context", `{"userId":"a","chatId":"c","topic":"billing"}`))
	require.NoError(t, cmd.Flags().Set("user", "b"))

	actx, err := contextFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, "b", actx.UserID())
	assert.Equal(t, "c", actx.ChatID())
	topic, _ := actx.Get("topic")
	assert.Equal(t, "billing", topic)

	require.NoError(t, cmd.Flags().Set("context", `[1,2]`))
	_, err = contextFromFlags(cmd)
	assert.Error(t, err)
}
