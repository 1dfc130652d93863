package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvvmshift/mvvmshift/internal/engine"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// addScanSourceTool adds the scan_source tool to the MCP server
func addScanSourceTool(s *server.MCPServer, eng *engine.Engine) {
	scanTool := mcp.NewTool("scan_source",
		mcp.WithDescription("Scan C# source code for legacy MVVM notification and command patterns. Returns findings with byte offsets usable by fix_source."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("C# source code to scan"),
		),
		mcp.WithString("path",
			mcp.Description("File name to report findings under (optional)"),
		),
	)

	s.AddTool(scanTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		source, ok := args["source"].(string)
		if !ok || source == "" {
			return mcp.NewToolResultError("source is required"), nil
		}
		path, _ := args["path"].(string)

		content, err := scanSourceResult(ctx, eng, path, source)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error scanning source: %v", err)), nil
		}

		return mcp.NewToolResultText(content), nil
	})
}

// addFixSourceTool adds the fix_source tool to the MCP server
func addFixSourceTool(s *server.MCPServer, eng *engine.Engine) {
	fixTool := mcp.NewTool("fix_source",
		mcp.WithDescription("Rewrite legacy MVVM patterns in C# source code. Fixes the finding at a byte offset, or every fixable finding when all is set."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("C# source code to fix"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Byte offset of the finding to fix, as reported by scan_source"),
		),
		mcp.WithString("rule",
			mcp.Description("Rule ID to restrict the fix to (optional)"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Fix every fixable finding"),
			mcp.DefaultBool(false),
		),
	)

	s.AddTool(fixTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		source, ok := args["source"].(string)
		if !ok || source == "" {
			return mcp.NewToolResultError("source is required"), nil
		}
		rule, _ := args["rule"].(string)
		all, _ := args["all"].(bool)

		var offset *int
		if val, ok := args["offset"].(float64); ok {
			n := int(val)
			offset = &n
		}

		content, err := fixSourceResult(ctx, eng, source, offset, rule, all)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(content), nil
	})
}

// addListRulesTool adds the list_rules tool to the MCP server
func addListRulesTool(s *server.MCPServer, eng *engine.Engine) {
	rulesTool := mcp.NewTool("list_rules",
		mcp.WithDescription("List the migration rules this server can detect and fix"),
	)

	s.AddTool(rulesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := listRulesResult(eng)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error listing rules: %v", err)), nil
		}
		return mcp.NewToolResultText(content), nil
	})
}

// scanSourceResult scans one source snippet and renders the summary as
// indented JSON.
func scanSourceResult(ctx context.Context, eng *engine.Engine, path, source string) (string, error) {
	if path == "" {
		path = "source.cs"
	}

	report, err := eng.Scan(ctx, path, []byte(source))
	if err != nil {
		return "", err
	}

	summary := model.NewScanSummary()
	summary.Add(report)
	summary.Sort()

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// fixSourceResult fixes the finding at offset, or everything when all
// is set, and renders the result as indented JSON.
func fixSourceResult(ctx context.Context, eng *engine.Engine, source string, offset *int, rule string, all bool) (string, error) {
	var result model.FixResult
	var err error

	switch {
	case all:
		result, err = eng.FixAll(ctx, "source.cs", []byte(source))
	case offset == nil:
		return "", errors.New("offset is required unless all is set")
	default:
		loc := model.Location{Span: model.Span{Start: *offset, End: *offset + 1}}
		result, err = eng.Fix(ctx, "source.cs", []byte(source), loc, rule)
	}

	switch {
	case errors.Is(err, engine.ErrNoFix):
		return "", errors.New("no applicable fix at offset; the finding needs a manual rewrite")
	case errors.Is(err, engine.ErrStale):
		return "", errors.New("offset does not match a fixable construct; re-run scan_source")
	case err != nil:
		return "", err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// listRulesResult renders the rule set as indented JSON.
func listRulesResult(eng *engine.Engine) (string, error) {
	data, err := json.MarshalIndent(eng.Rules(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
