package registry

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-netlify/internal/netlify"
)

func stubSpec(name string, schema string) Spec {
	return Spec{
		Name:        name,
		Description: "stub " + name,
		InputSchema: json.RawMessage(schema),
		Operation:   "stub",
		Validate: func(args map[string]any) (Call, error) {
			return Call{
				Build: func() netlify.Request { return netlify.Request{Method: http.MethodGet, Path: "/" + name} },
				Shape: func(body []byte) (any, error) { return string(body), nil },
			}, nil
		},
	}
}

func TestRegistryLookupAndOrder(t *testing.T) {
	r, err := New(
		stubSpec("listSites", `{"type":"object"}`),
		stubSpec("getSite", `{"type":"object","properties":{"siteId":{"type":"string"}},"required":["siteId"]}`),
	)
	require.NoError(t, err)

	spec, ok := r.Lookup("getSite")
	require.True(t, ok)
	assert.Equal(t, "getSite", spec.Name)

	_, ok = r.Lookup("getsite")
	assert.False(t, ok, "lookup is case sensitive")

	names := []string{}
	for _, tl := range r.Tools() {
		names = append(names, tl.Name)
	}
	assert.Equal(t, []string{"listSites", "getSite"}, names)
	assert.Len(t, r.List(), 2)
}

func TestRegistryRejectsBadSpecs(t *testing.T) {
	_, err := New(stubSpec("a", `{"type":"object"}`), stubSpec("a", `{"type":"object"}`))
	assert.ErrorContains(t, err, "duplicate")

	_, err = New(stubSpec("b", `{"type": 12}`))
	assert.ErrorContains(t, err, "invalid inputSchema for b")

	s := stubSpec("c", `{"type":"object"}`)
	s.Validate = nil
	_, err = New(s)
	assert.ErrorContains(t, err, "no validator")
}

func TestRegistryConform(t *testing.T) {
	r, err := New(stubSpec("getSite", `{
		"type":"object",
		"properties":{"siteId":{"type":"string","minLength":1},"page":{"type":"integer","minimum":1}},
		"required":["siteId"]
	}`))
	require.NoError(t, err)

	assert.NoError(t, r.Conform("getSite", map[string]any{"siteId": "abc"}))

	err = r.Conform("getSite", map[string]any{"siteId": "abc", "page": float64(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page")

	err = r.Conform("getSite", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "siteId")

	assert.Error(t, r.Conform("nope", map[string]any{}))
}

func TestRegistrySuggest(t *testing.T) {
	r, err := New(
		stubSpec("createSiteFromGitHub", `{"type":"object"}`),
		stubSpec("listSites", `{"type":"object"}`),
		stubSpec("getSite", `{"type":"object"}`),
		stubSpec("deleteSite", `{"type":"object"}`),
	)
	require.NoError(t, err)

	got := r.Suggest("listSite", 1)
	assert.Equal(t, []string{"listSites"}, got)

	got = r.Suggest("get_site", 1)
	assert.Equal(t, []string{"getSite"}, got)

	assert.Empty(t, r.Suggest("", 3))
	assert.Empty(t, r.Suggest("zzzzzzzzzzzzzzzzzzzzzzzzzzzz", 3))
}
