package mcpserver_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/nlquery/pkg/catalog"
	"github.com/malbeclabs/nlquery/pkg/mcpserver"
	"github.com/malbeclabs/nlquery/pkg/pipeline"
	"github.com/malbeclabs/nlquery/pkg/reasoning"
	"github.com/malbeclabs/nlquery/pkg/store/storetest"
)

type elektroReasoning struct{}

func (elektroReasoning) Translate(context.Context, reasoning.Request) (string, error) {
	return `{"SQL": "SELECT element_code, element_name FROM elements WHERE category = 'Elektro' ORDER BY element_code", "additional": "prices are assumed"}`, nil
}

func (elektroReasoning) Summarize(context.Context, reasoning.Request) (string, error) {
	return "Electrical elements listed.", nil
}

func newServer(t *testing.T) *mcpserver.Server {
	t.Helper()

	db := storetest.NewDuckDB(t)
	p, _, err := pipeline.Setup(t.Context(), pipeline.SetupConfig{
		Logger:    storetest.Logger(),
		DB:        db,
		Reasoning: elektroReasoning{},
	})
	require.NoError(t, err)
	cat, err := catalog.New(catalog.Config{Logger: storetest.Logger(), DB: db})
	require.NoError(t, err)

	srv, err := mcpserver.New(mcpserver.Config{
		Logger:   storetest.Logger(),
		Pipeline: p,
		Catalog:  cat,
		Version:  "test",
	})
	require.NoError(t, err)
	return srv
}

func connectInMemory(t *testing.T, srv *mcpserver.Server) *mcp.ClientSession {
	t.Helper()
	ctx := t.Context()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func decodeStructured[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError)

	b, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestMCP_Tools(t *testing.T) {
	t.Parallel()

	session := connectInMemory(t, newServer(t))
	ctx := t.Context()

	t.Run("lists tools", func(t *testing.T) {
		res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
		require.NoError(t, err)

		names := make([]string, 0, len(res.Tools))
		for _, tool := range res.Tools {
			names = append(names, tool.Name)
			require.NotNil(t, tool.InputSchema)
		}
		require.ElementsMatch(t, []string{"ask", "schema", "info"}, names)
	})

	t.Run("ask", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "ask",
			Arguments: map[string]any{"question": "Which electrical elements exist?"},
		})
		require.NoError(t, err)

		out := decodeStructured[mcpserver.AskOutput](t, res)
		require.True(t, out.Success)
		require.Empty(t, out.Error)
		require.Equal(t, "prices are assumed", out.AdditionalContext)
		require.Equal(t, []string{"element_code", "element_name"}, out.Columns)
		require.Equal(t, out.RowCount, len(out.Results))
		require.Equal(t, "Electrical elements listed.", out.NaturalResponse)
	})

	t.Run("schema", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "schema", Arguments: map[string]any{}})
		require.NoError(t, err)

		out := decodeStructured[mcpserver.SchemaOutput](t, res)
		require.Contains(t, out.Schema, "--- TABLE: story_elements ---")
		require.Contains(t, out.Schema, "VIEW: story_summary_view")
	})

	t.Run("info", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "info", Arguments: map[string]any{}})
		require.NoError(t, err)

		out := decodeStructured[catalog.Info](t, res)
		require.Equal(t, 4, out.StoryCount)
		require.Equal(t, 59, out.ElementCount)
		require.Equal(t, int64(1420), out.TotalItems)
	})
}

func TestMCP_StreamableHTTP(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newServer(t).Handler())
	t.Cleanup(ts.Close)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(t.Context(), &mcp.StreamableClientTransport{Endpoint: ts.URL}, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(t.Context(), &mcp.CallToolParams{Name: "info", Arguments: map[string]any{}})
	require.NoError(t, err)
	out := decodeStructured[catalog.Info](t, res)
	require.Len(t, out.Categories, 11)
}
