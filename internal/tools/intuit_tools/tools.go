package intuit_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/quickgraph/internal/instrumentation"
	"github.com/teemow/quickgraph/internal/intuit"
	"github.com/teemow/quickgraph/internal/server"
	"github.com/teemow/quickgraph/internal/tools/common"
)

// RegisterIntuitTools registers all Intuit API tools with the MCP server.
func RegisterIntuitTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	executeGraphQLTool := mcp.NewTool("intuit_execute_graphql",
		mcp.WithDescription("Execute a GraphQL query or mutation against the Intuit API. "+
			"Accepts a raw GraphQL query string, or a JSON object with 'query' and 'variables' keys. "+
			"The configured QuickBooks company ID is added to the variables automatically."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The GraphQL query or mutation to execute. May also be a JSON object "+
				"string with 'query' and 'variables' keys."),
		),
		mcp.WithObject("variables",
			mcp.Description("Optional GraphQL variables for the query."),
		),
	)

	s.AddTool(executeGraphQLTool, common.InstrumentedToolHandlerWithOperation(
		"intuit_execute_graphql", instrumentation.OperationGraphQL, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExecuteGraphQL(ctx, request, sc)
		},
	))

	return nil
}

// handleExecuteGraphQL runs one GraphQL operation and applies the REST
// compatibility fallback for failed company-info queries.
func handleExecuteGraphQL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client := sc.IntuitClient()
	if client == nil {
		return mcp.NewToolResultError("Intuit client is not configured"), nil
	}

	args := request.GetArguments()
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	var variables map[string]interface{}
	if v, ok := args["variables"].(map[string]interface{}); ok {
		variables = v
	}

	op := intuit.ResolveOperation(query, variables)

	ctx, span := instrumentation.StartIntuitAPISpan(ctx, instrumentation.OperationGraphQL)
	result := client.Execute(ctx, op.Query, op.Variables)
	if result.HasErrors() {
		instrumentation.SetSpanError(span, fmt.Errorf("graphql result contains errors"))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	span.End()

	if result.HasErrors() && shouldAttemptCompanyInfoFallback(op.Query, client.RealmID()) {
		result = attemptCompanyInfoFallback(ctx, sc, client, result)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

// shouldAttemptCompanyInfoFallback reports whether a failed query looks like a
// company-info lookup that the REST endpoint can answer. The substring match
// is intentionally loose; it mirrors the query shapes agents actually send.
func shouldAttemptCompanyInfoFallback(query, realmID string) bool {
	if realmID == "" {
		return false
	}
	lower := strings.ToLower(query)
	return strings.Contains(lower, "company") && strings.Contains(lower, "companyname")
}

// attemptCompanyInfoFallback retries a failed company-info query via the
// QuickBooks v3 REST endpoint. On any fallback failure the original GraphQL
// error result is returned unchanged.
func attemptCompanyInfoFallback(ctx context.Context, sc *server.ServerContext, client *intuit.Client, original intuit.Result) intuit.Result {
	slog.Debug("attempting REST company info fallback", "realm", client.RealmID())

	info, err := client.CompanyInfo(ctx)
	if err != nil {
		slog.Debug("REST fallback failed, keeping original GraphQL error", "error", err.Error())
		if metrics := sc.Metrics(); metrics != nil {
			metrics.RecordFallbackAttempt(ctx, instrumentation.StatusError)
		}
		return original
	}

	slog.Debug("REST fallback succeeded")
	instrumentation.MarkFallbackUsed(ctx)
	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordFallbackAttempt(ctx, instrumentation.StatusSuccess)
	}
	return info
}
