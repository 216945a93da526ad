package tool

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/eino/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCP exposes every tool that needs no caller identity on s.
// It returns the names registered.
func (r *Registry) RegisterMCP(s *server.MCPServer) []string {
	var names []string
	for _, spec := range r.Specs() {
		if spec.RequiresCaller {
			continue
		}
		s.AddTool(mcpTool(spec), r.mcpHandler(spec.Name))
		names = append(names, spec.Name)
	}
	return names
}

func mcpTool(spec Spec) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}
	for _, p := range spec.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Desc)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case schema.Integer, schema.Number:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case schema.Boolean:
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		default:
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}
	return mcp.NewTool(spec.Name, opts...)
}

func (r *Registry) mcpHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := r.Call(ctx, name, req.GetArguments())
		if res.Error != "" {
			return mcp.NewToolResultError(res.Error), nil
		}
		body, err := json.MarshalIndent(res.Result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError("encode result: " + err.Error()), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}
