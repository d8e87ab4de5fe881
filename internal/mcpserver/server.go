// Package mcpserver exposes the trading tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"kiwoom-mcp/internal/tools"
)

// Server MCP 서버
type Server struct {
	mcp     *server.MCPServer
	handler *tools.Handler
	logger  *slog.Logger
}

// New 도구를 모두 등록한 MCP 서버 생성
func New(h *tools.Handler, name, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp: server.NewMCPServer(name, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		handler: h,
		logger:  logger,
	}

	for _, def := range tools.Definitions() {
		s.mcp.AddTool(NewTool(def), s.toolHandler(def.Name))
	}
	return s
}

// MCP 내부 mcp-go 서버
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve stdin/stdout으로 JSON-RPC를 주고받는다. ctx가 끝나면 반환.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("MCP server listening on stdio", "tools", len(tools.Definitions()))
	return stdio.Listen(ctx, in, out)
}

func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := s.handler.Call(ctx, name, req.GetArguments())
		if res.IsError {
			return mcp.NewToolResultError(res.Text), nil
		}
		return mcp.NewToolResultText(res.Text), nil
	}
}

// NewTool 도구 선언을 mcp.Tool로 변환
func NewTool(def tools.Definition) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}

	for _, p := range def.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		if len(p.Enum) > 0 {
			props = append(props, mcp.Enum(p.Enum...))
		}

		switch p.Type {
		case tools.TypeBoolean:
			if v, ok := p.Default.(bool); ok {
				props = append(props, mcp.DefaultBool(v))
			}
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		case tools.TypeInteger:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		default:
			if v, ok := p.Default.(string); ok {
				props = append(props, mcp.DefaultString(v))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}

	return mcp.NewTool(def.Name, opts...)
}
