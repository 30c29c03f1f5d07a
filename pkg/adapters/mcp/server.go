package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/internal/logging"
	"github.com/aretw0/skillgraph/internal/presentation/graph"
	"github.com/aretw0/skillgraph/pkg/domain"
	sgraph "github.com/aretw0/skillgraph/pkg/graph"
)

// GraphURI is the resource holding the workspace graph document.
const GraphURI = "skillgraph://graph"

// DefaultMaxTicks bounds run_skill when the caller gives no limit.
const DefaultMaxTicks = 10000

// ParametersResponse lists the graph parameters.
type ParametersResponse struct {
	Parameters []domain.ParameterRecord `json:"parameters" jsonschema_description:"Graph parameters in declaration order"`
}

// SetParameterArgs selects a parameter by GUID or name.
type SetParameterArgs struct {
	GUID  string `json:"guid,omitempty"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value"`
}

// RunSkillArgs bounds a run.
type RunSkillArgs struct {
	MaxTicks int `json:"max_ticks,omitempty"`
}

// RunResponse reports how a run ended.
type RunResponse struct {
	Skill       skillgraph.SkillStatus   `json:"skill" jsonschema_description:"Final snapshot of the skill"`
	TickLimited bool                     `json:"tick_limited" jsonschema_description:"True when the skill was still running at the tick limit"`
	Parameters  []domain.ParameterRecord `json:"parameters" jsonschema_description:"Parameter values after the run"`
}

// Server exposes a workspace as an MCP server.
type Server struct {
	ws        *skillgraph.Workspace
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP server over ws.
func NewServer(ws *skillgraph.Workspace, opts ...Option) *Server {
	s := &Server{
		ws:     ws,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("skillgraph-mcp", skillgraph.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer.AddTools(s.tools()...)
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. to mount other transports.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves on stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("get_graph",
				mcp.WithDescription("Get the graph document: nodes, edges, parameters and entry node."),
			),
			Handler: s.handleGetGraph,
		},
		{
			Tool: mcp.NewTool("get_mermaid",
				mcp.WithDescription("Render the graph as a Mermaid flowchart."),
			),
			Handler: s.handleGetMermaid,
		},
		{
			Tool: mcp.NewTool("list_parameters",
				mcp.WithDescription("List the graph parameters with their types and values."),
				mcp.WithOutputSchema[ParametersResponse](),
			),
			Handler: mcp.NewStructuredToolHandler(s.handleListParameters),
		},
		{
			Tool: mcp.NewTool("set_parameter",
				mcp.WithDescription("Assign a parameter value. The value must fit the declared type."),
				mcp.WithString("guid", mcp.Description("Parameter GUID (preferred)")),
				mcp.WithString("name", mcp.Description("Parameter name, used when guid is empty")),
				mcp.WithString("value", mcp.Required(), mcp.Description("JSON encoded value, e.g. 5, true or \"text\"")),
				mcp.WithOutputSchema[domain.ParameterRecord](),
			),
			Handler: mcp.NewStructuredToolHandler(s.handleSetParameter),
		},
		{
			Tool: mcp.NewTool("run_skill",
				mcp.WithDescription("Start a skill at the entry node and tick it until it finishes or hits the tick limit."),
				mcp.WithNumber("max_ticks", mcp.Description(fmt.Sprintf("Tick limit (default %d)", DefaultMaxTicks))),
				mcp.WithOutputSchema[RunResponse](),
			),
			Handler: mcp.NewStructuredToolHandler(s.handleRunSkill),
		},
	}
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.ws.Document()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("document failed: %v", err)), nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleGetMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out string
	_ = s.ws.Do(func(g *sgraph.Graph) error {
		out = graph.GenerateMermaid(g, nil)
		return nil
	})
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleListParameters(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (ParametersResponse, error) {
	return ParametersResponse{Parameters: s.parameters()}, nil
}

func (s *Server) handleSetParameter(ctx context.Context, request mcp.CallToolRequest, args SetParameterArgs) (domain.ParameterRecord, error) {
	value := decodeValue(args.Value)

	var rec domain.ParameterRecord
	err := s.ws.Do(func(g *sgraph.Graph) error {
		guid := args.GUID
		if guid == "" {
			p, ok := g.ParameterByName(args.Name)
			if !ok {
				return fmt.Errorf("parameter %q: %w", args.Name, domain.ErrParameterNotFound)
			}
			guid = p.GUID
		}
		if err := g.UpdateParameter(guid, value); err != nil {
			return err
		}
		p, _ := g.Parameter(guid)
		rec = p.Record()
		return nil
	})
	if err != nil {
		s.logger.Debug("MCP set_parameter rejected", "err", err)
		return domain.ParameterRecord{}, err
	}
	return rec, nil
}

func (s *Server) handleRunSkill(ctx context.Context, request mcp.CallToolRequest, args RunSkillArgs) (RunResponse, error) {
	limit := args.MaxTicks
	if limit <= 0 {
		limit = DefaultMaxTicks
	}
	st, err := s.ws.RunSkill(ctx, skillgraph.RunOptions{MaxTicks: limit})
	limited := errors.Is(err, skillgraph.ErrTickLimit)
	if err != nil && !limited {
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	return RunResponse{Skill: st, TickLimited: limited, Parameters: s.parameters()}, nil
}

func (s *Server) parameters() []domain.ParameterRecord {
	out := []domain.ParameterRecord{}
	_ = s.ws.Do(func(g *sgraph.Graph) error {
		for _, p := range g.Parameters() {
			out = append(out, p.Record())
		}
		return nil
	})
	return out
}

// decodeValue reads raw as JSON and falls back to the raw string.
func decodeValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Graph Document",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		doc, err := s.ws.Document()
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot graph: %w", err)
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	})
}
