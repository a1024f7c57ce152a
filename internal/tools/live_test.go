package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-netlify/internal/netlify"
	"github.com/golovatskygroup/mcp-netlify/internal/testutil"
)

// TestLiveReadOnly runs the read-only tools against the real API. It is
// skipped unless NETLIFY_ACCESS_TOKEN is set (directly or through .env).
func TestLiveReadOnly(t *testing.T) {
	env := testutil.RequireEnv(t, "NETLIFY_ACCESS_TOKEN")

	reg, err := NewRegistry()
	require.NoError(t, err)
	d := NewDispatcher(reg, netlify.NewClientWithOptions(netlify.Options{Token: env["NETLIFY_ACCESS_TOKEN"]}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	out, err := d.Dispatch(ctx, ToolListSites, json.RawMessage(`{"perPage":1}`))
	require.NoError(t, err)
	list := out.(ListSitesEnvelope)
	assert.LessOrEqual(t, list.Count, 1)

	_, err = d.Dispatch(ctx, ToolGetSite, json.RawMessage(`{"siteId":"definitely-not-a-real-site-0000"}`))
	te := AsError(err)
	require.NotNil(t, te)
	assert.Equal(t, KindInvalidParams, te.Kind)
}
