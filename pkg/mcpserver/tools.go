package mcpserver

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/malbeclabs/nlquery/pkg/catalog"
	"github.com/malbeclabs/nlquery/pkg/pipeline"
)

type AskInput struct {
	Question string `json:"question" jsonschema:"A natural-language question about the construction project, in English or German. Examples: How many smoke detectors are on the ground floor?, Wie viele Steckdosen gibt es im 1OG?"`
}

type AskOutput struct {
	NaturalQuery      string           `json:"natural_query"`
	SQLQuery          string           `json:"sql_query"`
	AdditionalContext string           `json:"additional_context"`
	Columns           []string         `json:"columns"`
	Results           []map[string]any `json:"results"`
	RowCount          int              `json:"row_count"`
	NaturalResponse   string           `json:"natural_response"`
	Success           bool             `json:"success"`
	Error             string           `json:"error"`
}

type EmptyInput struct{}

type SchemaOutput struct {
	Schema string `json:"schema"`
}

func askOutput(out pipeline.Outcome) AskOutput {
	res := AskOutput{
		NaturalQuery:    out.NaturalQuery,
		Columns:         out.Columns,
		Results:         make([]map[string]any, 0, len(out.Results)),
		RowCount:        out.RowCount,
		NaturalResponse: out.NaturalResponse,
		Success:         out.Success,
	}
	if res.Columns == nil {
		res.Columns = []string{}
	}
	if out.SQLQuery != nil {
		res.SQLQuery = *out.SQLQuery
	}
	if out.AdditionalContext != nil {
		res.AdditionalContext = *out.AdditionalContext
	}
	if out.Error != nil {
		res.Error = *out.Error
	}
	for _, row := range out.Results {
		m := make(map[string]any, row.Len())
		for i, col := range row.Columns() {
			m[col] = row.Values()[i]
		}
		res.Results = append(res.Results, m)
	}
	return res
}

func (s *Server) registerAsk() error {
	in, err := jsonschema.For[AskInput](nil)
	if err != nil {
		return fmt.Errorf("failed to create ask input schema: %w", err)
	}
	out, err := jsonschema.For[AskOutput](nil)
	if err != nil {
		return fmt.Errorf("failed to create ask output schema: %w", err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "ask",
		Description: `
			Answer a natural-language question about the construction project database.
			The question is translated to SQL, executed read-only, and the rows are summarized.
			The reply carries the generated SQL, the result rows and a prose answer.
			When success is false, natural_response explains what went wrong.
		`,
		InputSchema:  in,
		OutputSchema: out,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, req AskInput) (*mcp.CallToolResult, AskOutput, error) {
		s.log.Debug("mcp: ask", "question", req.Question)
		return nil, askOutput(s.cfg.Pipeline.Run(ctx, req.Question)), nil
	})
	return nil
}

func (s *Server) registerSchema() error {
	in, err := jsonschema.For[EmptyInput](nil)
	if err != nil {
		return fmt.Errorf("failed to create schema input schema: %w", err)
	}
	out, err := jsonschema.For[SchemaOutput](nil)
	if err != nil {
		return fmt.Errorf("failed to create schema output schema: %w", err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:         "schema",
		Description:  "Describe the tables, columns, sample rows and views of the construction project database.",
		InputSchema:  in,
		OutputSchema: out,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, SchemaOutput, error) {
		return nil, SchemaOutput{Schema: s.cfg.Pipeline.Schema().String()}, nil
	})
	return nil
}

func (s *Server) registerInfo() error {
	in, err := jsonschema.For[EmptyInput](nil)
	if err != nil {
		return fmt.Errorf("failed to create info input schema: %w", err)
	}
	out, err := jsonschema.For[catalog.Info](nil)
	if err != nil {
		return fmt.Errorf("failed to create info output schema: %w", err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:         "info",
		Description:  "Return dataset aggregates: story count, element count, categories and the total item quantity.",
		InputSchema:  in,
		OutputSchema: out,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, catalog.Info, error) {
		info, err := s.cfg.Catalog.Info(ctx)
		if err != nil {
			return nil, catalog.Info{}, fmt.Errorf("failed to read info: %w", err)
		}
		return nil, info, nil
	})
	return nil
}
