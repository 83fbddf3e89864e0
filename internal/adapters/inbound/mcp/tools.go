package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/relcheck/relcheck/internal/adapters/outbound/gitcache"
	"github.com/relcheck/relcheck/internal/adapters/outbound/project"
	"github.com/relcheck/relcheck/internal/adapters/outbound/registry"
	"github.com/relcheck/relcheck/internal/adapters/outbound/snapshot"
	"github.com/relcheck/relcheck/internal/application"
	"github.com/relcheck/relcheck/internal/domain"
	"github.com/relcheck/relcheck/internal/domain/rules"
)

// registerTools registers all relcheck MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. relcheck_check_release
	s.AddTool(
		mcplib.NewTool("relcheck_check_release",
			mcplib.WithDescription("Run a release compatibility check against a baseline and return the full report as JSON"),
			mcplib.WithString("package",
				mcplib.Description("Comma-separated package names to check (default: workspace default members)"),
			),
			mcplib.WithString("baseline_version",
				mcplib.Description("Compare against this published version"),
			),
			mcplib.WithString("baseline_rev",
				mcplib.Description("Compare against this git revision"),
			),
			mcplib.WithString("baseline_root",
				mcplib.Description("Compare against a source root on disk"),
			),
			mcplib.WithString("registry",
				mcplib.Description("Registry base URL (default $RELCHECK_REGISTRY)"),
			),
		),
		handleCheckRelease(projectPath),
	)

	// 2. relcheck_list_rules
	s.AddTool(
		mcplib.NewTool("relcheck_list_rules",
			mcplib.WithDescription("Returns the full compatibility rule catalog as JSON"),
		),
		handleListRules(),
	)

	// 3. relcheck_explain_rule
	s.AddTool(
		mcplib.NewTool("relcheck_explain_rule",
			mcplib.WithDescription("Returns one compatibility rule with its description and reference"),
			mcplib.WithString("rule",
				mcplib.Required(),
				mcplib.Description("Rule identifier, e.g. function_missing"),
			),
		),
		handleExplainRule(),
	)
}

func handleCheckRelease(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()

		scope := domain.Scope{}
		if pkgs, ok := args["package"].(string); ok && pkgs != "" {
			scope.Selection = domain.SelectPackages
			scope.Packages = splitAndTrim(pkgs)
		}

		version, _ := args["baseline_version"].(string)
		rev, _ := args["baseline_rev"].(string)
		root, _ := args["baseline_root"].(string)

		supplied := 0
		for _, arg := range []string{version, rev, root} {
			if arg != "" {
				supplied++
			}
		}
		if supplied > 1 {
			return errorResult("baseline_version, baseline_rev, and baseline_root are mutually exclusive"), nil
		}

		baseline := domain.LatestBaseline()
		switch {
		case version != "":
			baseline = domain.VersionBaseline(version)
		case rev != "":
			baseline = domain.RevisionBaseline(rev)
		case root != "":
			baseline = domain.RootBaseline(root)
		}

		registryURL, _ := args["registry"].(string)
		if registryURL == "" {
			registryURL = os.Getenv("RELCHECK_REGISTRY")
		}

		logger := log.New(io.Discard)
		manifests := project.New()

		var reg domain.RegistryClient
		if registryURL != "" {
			manifest, err := manifests.Load(projectPath)
			if err != nil {
				return errorResult(fmt.Sprintf("loading manifest failed: %v", err)), nil
			}
			reg = registry.New(registryURL, manifest.CacheDir(), logger)
		}

		catalog, err := rules.Load()
		if err != nil {
			return errorResult(fmt.Sprintf("loading rule catalog failed: %v", err)), nil
		}

		svc := application.NewCheckService(
			manifests,
			snapshot.NewGenerator(snapshot.DefaultTool, false, logger),
			reg,
			gitcache.New(logger),
			catalog,
			logger,
		)

		report, err := svc.CheckRelease(ctx, application.CheckConfig{
			Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: projectPath},
			Scope:    scope,
			Baseline: baseline,
		})
		if err != nil {
			return errorResult(fmt.Sprintf("check failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleListRules() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		catalog, err := rules.Load()
		if err != nil {
			return errorResult(fmt.Sprintf("loading rule catalog failed: %v", err)), nil
		}
		return jsonResult(catalog.Rules())
	}
}

func handleExplainRule() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		id, err := request.RequireString("rule")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		catalog, err := rules.Load()
		if err != nil {
			return errorResult(fmt.Sprintf("loading rule catalog failed: %v", err)), nil
		}

		rule, ok := catalog.Rule(id)
		if !ok {
			return errorResult(fmt.Sprintf("unknown rule %q; available rules: %s", id, strings.Join(catalog.IDs(), ", "))), nil
		}
		return jsonResult(rule)
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
