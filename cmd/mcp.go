package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/Siddhant-K-code/simplify/pkg/batch"
	"github.com/Siddhant-K-code/simplify/pkg/simplify"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start Simplify as an MCP server",
	Long: `Starts Simplify as a Model Context Protocol (MCP) server.

This allows AI assistants like Claude, Amp, and Cursor to shorten text
deterministically before it goes into a prompt.

Transports:
  stdio (default) - For local desktop apps (Claude Desktop, Cursor)
  http            - For remote/cloud deployments (hosted MCP server)

Tools exposed:
  simplify_sentence      - Simplify one sentence at a level
  simplify_batch         - Simplify many sentences at a level
  explain_simplification - Per-stage trace for one sentence

Resources exposed:
  simplify://levels - Compression levels and labels
  simplify://rules  - Active rule tables

Example:
  # Local stdio server (Claude Desktop, Cursor, Amp)
  simplify mcp

  # Remote HTTP server
  simplify mcp --transport http --port 8081

Configure in Claude Desktop (claude_desktop_config.json):
  {
    "mcpServers": {
      "simplify": {
        "command": "simplify",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	// Transport settings
	mcpCmd.Flags().String("transport", "stdio", "Transport type: stdio or http")
	mcpCmd.Flags().Int("port", 8081, "HTTP server port (for http transport)")
	mcpCmd.Flags().String("host", "0.0.0.0", "HTTP server host (for http transport)")
	mcpCmd.Flags().Int("max-batch", 1000, "Maximum sentences per simplify_batch call")
}

// MCPServer wraps the MCP server with simplification capabilities.
type MCPServer struct {
	simplifier *simplify.Simplifier
	runner     *batch.Runner
	maxBatch   int
}

func newMCPServer(s *simplify.Simplifier, workers, maxBatch int) *MCPServer {
	return &MCPServer{
		simplifier: s,
		runner:     batch.New(s, batch.Config{Workers: workers}),
		maxBatch:   maxBatch,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")
	maxBatch, _ := cmd.Flags().GetInt("max-batch")

	cfg, s, _, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	mcpSrv := newMCPServer(s, cfg.Batch.Workers, maxBatch)
	srv := mcpSrv.build()

	// Start server based on transport
	switch transport {
	case "stdio":
		if err := server.ServeStdio(srv); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}

	case "http":
		addr := fmt.Sprintf("%s:%d", host, port)
		fmt.Printf("Simplify MCP server starting on http://%s\n", addr)
		fmt.Printf("  Endpoint: http://%s/mcp\n", addr)
		fmt.Printf("  Health:   http://%s/health\n", addr)
		fmt.Println()

		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok","server":"simplify-mcp"}`))
		})
		mux.Handle("/mcp", server.NewStreamableHTTPServer(srv, server.WithStateful(true)))

		httpServer := &http.Server{
			Addr:    addr,
			Handler: mux,
		}
		if err := httpServer.ListenAndServe(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

	default:
		return fmt.Errorf("unsupported transport: %s (use 'stdio' or 'http')", transport)
	}

	return nil
}

// build creates the MCP server with tools, resources and prompts registered.
func (m *MCPServer) build() *server.MCPServer {
	s := server.NewMCPServer(
		"Simplify",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(false),
	)

	m.registerTools(s)
	m.registerResources(s)
	m.registerPrompts(s)

	return s
}

func (m *MCPServer) registerTools(s *server.MCPServer) {
	levelDesc := fmt.Sprintf("Compression level %d-%d: 1 minimal, 2 moderate, 3 aggressive, 4 maximum (default: %d)",
		m.simplifier.Rules().MinLevel(), m.simplifier.Rules().MaxLevel(), m.simplifier.Level())

	simplifyTool := mcp.NewTool("simplify_sentence",
		mcp.WithDescription(`Shorten a sentence with deterministic lexical rules.

WHEN TO USE: Call this to cut tokens from verbose text before putting it into
a prompt. Higher levels remove more words but read less naturally.

OUTPUT: The simplified sentence plus word and token counts.`),
		mcp.WithString("sentence",
			mcp.Required(),
			mcp.Description("The sentence to simplify"),
		),
		mcp.WithNumber("level",
			mcp.Description(levelDesc),
		),
	)
	s.AddTool(simplifyTool, m.handleSimplifySentence)

	batchTool := mcp.NewTool("simplify_batch",
		mcp.WithDescription(`Simplify many sentences at one level. Results keep input order.`),
		mcp.WithArray("sentences",
			mcp.Required(),
			mcp.Description("Array of sentences (strings)"),
		),
		mcp.WithNumber("level",
			mcp.Description(levelDesc),
		),
	)
	s.AddTool(batchTool, m.handleSimplifyBatch)

	explainTool := mcp.NewTool("explain_simplification",
		mcp.WithDescription(`Show the text after every pipeline stage for one sentence.
Use this to understand why a word was removed or replaced.`),
		mcp.WithString("sentence",
			mcp.Required(),
			mcp.Description("The sentence to explain"),
		),
		mcp.WithNumber("level",
			mcp.Description(levelDesc),
		),
	)
	s.AddTool(explainTool, m.handleExplain)
}

func (m *MCPServer) registerResources(s *server.MCPServer) {
	levelsResource := mcp.NewResource(
		"simplify://levels",
		"Simplify Levels",
		mcp.WithResourceDescription("Configured compression levels and the active default"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(levelsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		t := m.simplifier.Rules()
		levels := make([]map[string]interface{}, 0, len(t.Levels()))
		for _, l := range t.Levels() {
			levels = append(levels, map[string]interface{}{"level": l, "label": t.Label(l)})
		}
		return jsonResource("simplify://levels", map[string]interface{}{
			"levels":  levels,
			"default": m.simplifier.Level(),
		})
	})

	rulesResource := mcp.NewResource(
		"simplify://rules",
		"Simplify Rule Tables",
		mcp.WithResourceDescription("Stop words, adjectives, synonyms, phrases and number words in use"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(rulesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		t := m.simplifier.Rules()
		return jsonResource("simplify://rules", map[string]interface{}{
			"stop_words":             t.StopWords().Words(),
			"unnecessary_adjectives": t.UnnecessaryAdjectives().Words(),
			"synonyms":               t.Synonyms(),
			"redundant_phrases":      t.RedundantPhrases(),
			"number_words":           t.NumberWords(),
		})
	})
}

func jsonResource(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (m *MCPServer) registerPrompts(s *server.MCPServer) {
	simplifyPrompt := mcp.NewPrompt(
		"simplify-text",
		mcp.WithPromptDescription("Shorten text with the simplify tools before working with it"),
		mcp.WithArgument("text", mcp.ArgumentDescription("The text to shorten"), mcp.RequiredArgument()),
		mcp.WithArgument("level", mcp.ArgumentDescription("Compression level 1-4")),
	)
	s.AddPrompt(simplifyPrompt, func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text := request.Params.Arguments["text"]
		level := request.Params.Arguments["level"]
		if level == "" {
			level = fmt.Sprint(m.simplifier.Level())
		}

		return &mcp.GetPromptResult{
			Description: "Shorten text before using it",
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.TextContent{
						Type: "text",
						Text: fmt.Sprintf(`Here is some text:

%s

Please:
1. Split it into sentences and call simplify_batch with level %s
2. Check that the simplified sentences keep the original meaning
3. If a sentence lost meaning, call explain_simplification on it and use a lower level`, text, level),
					},
				},
			},
		}, nil
	})
}

// toolLevel reads the optional level argument, falling back to the
// simplifier's active level.
func (m *MCPServer) toolLevel(request mcp.CallToolRequest) int {
	if level := request.GetFloat("level", 0); level != 0 {
		return int(level)
	}
	return m.simplifier.Level()
}

func toolJSON(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

func (m *MCPServer) handleSimplifySentence(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sentence, err := request.RequireString("sentence")
	if err != nil {
		return mcp.NewToolResultError("sentence parameter is required"), nil
	}
	level := m.toolLevel(request)

	out, err := m.simplifier.SimplifyAt(sentence, level)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return toolJSON(map[string]interface{}{
		"simplified": out,
		"level":      level,
		"label":      m.simplifier.Rules().Label(level),
		"stats":      simplify.Measure(sentence, out),
	}), nil
}

func (m *MCPServer) handleSimplifyBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.GetArguments()["sentences"]
	if !ok {
		return mcp.NewToolResultError("sentences parameter is required"), nil
	}

	// Convert to JSON and back to parse properly
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sentences format: %v", err)), nil
	}
	var sentences []string
	if err := json.Unmarshal(rawJSON, &sentences); err != nil {
		return mcp.NewToolResultError("sentences parameter must be an array of strings"), nil
	}
	if len(sentences) == 0 {
		return mcp.NewToolResultError("sentences array is empty"), nil
	}
	if m.maxBatch > 0 && len(sentences) > m.maxBatch {
		return mcp.NewToolResultError(fmt.Sprintf("batch of %d sentences exceeds limit of %d", len(sentences), m.maxBatch)), nil
	}
	level := m.toolLevel(request)

	results, stats, err := m.runner.Run(ctx, sentences, level, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return toolJSON(map[string]interface{}{
		"results": results,
		"level":   level,
		"stats":   stats.Reduction,
	}), nil
}

func (m *MCPServer) handleExplain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sentence, err := request.RequireString("sentence")
	if err != nil {
		return mcp.NewToolResultError("sentence parameter is required"), nil
	}

	trace, err := m.simplifier.Explain(sentence, m.toolLevel(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(trace), nil
}
