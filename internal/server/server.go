// Package server exposes the transcription operations as MCP tools over
// stdio for an AI assistant host.
package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"speechmatics-mcp/internal/domain"
	"speechmatics-mcp/internal/transcribe"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// UsageAPI provides account usage statistics.
type UsageAPI interface {
	Usage(ctx context.Context) (domain.Usage, error)
}

// Server registers the transcription tools on an MCP server.
type Server struct {
	mcp         *mcpserver.MCPServer
	transcriber *transcribe.Transcriber
	usage       UsageAPI
	log         zerolog.Logger
}

// New builds the MCP server and registers all four tools.
func New(transcriber *transcribe.Transcriber, usage UsageAPI, log zerolog.Logger) *Server {
	s := &Server{
		transcriber: transcriber,
		usage:       usage,
		log:         log,
	}

	m := mcpserver.NewMCPServer(
		"transcription",
		Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	m.AddTool(mcp.NewTool("transcribe_file",
		mcp.WithDescription("Transcribe a single audio/video file using the Speechmatics API"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the media file"),
		),
		mcp.WithString("accuracy",
			mcp.Description("Transcription accuracy level"),
			mcp.Enum("standard", "enhanced"),
			mcp.DefaultString("standard"),
		),
		mcp.WithBoolean("diarize",
			mcp.Description("Label transcript lines with speaker identifiers"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("with_timestamps",
			mcp.Description("Include word-level timestamps (outputs JSON instead of TXT)"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("force",
			mcp.Description("Re-transcribe even if a transcript already exists"),
			mcp.DefaultBool(false),
		),
	), s.handleTranscribeFile)

	m.AddTool(mcp.NewTool("transcribe_directory",
		mcp.WithDescription("Transcribe all media files in a directory (parallel processing)"),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Path to directory containing media files"),
		),
		mcp.WithArray("file_types",
			mcp.Description("File extensions to include (without dots)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("accuracy",
			mcp.Description("Transcription accuracy level"),
			mcp.Enum("standard", "enhanced"),
			mcp.DefaultString("standard"),
		),
		mcp.WithBoolean("diarize",
			mcp.Description("Label transcript lines with speaker identifiers"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("with_timestamps",
			mcp.Description("Include word-level timestamps"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("force",
			mcp.Description("Re-transcribe files that already have transcripts"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Search subdirectories"),
			mcp.DefaultBool(false),
		),
		mcp.WithNumber("max_concurrent",
			mcp.Description("Maximum parallel transcription jobs"),
			mcp.DefaultNumber(transcribe.DefaultConcurrent),
			mcp.Min(transcribe.MinConcurrent),
			mcp.Max(transcribe.MaxConcurrent),
		),
	), s.handleTranscribeDirectory)

	m.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Read an existing transcript file"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to media file OR transcript file"),
		),
	), s.handleGetTranscript)

	m.AddTool(mcp.NewTool("get_usage",
		mcp.WithDescription("Get Speechmatics API usage statistics for the current month"),
	), s.handleGetUsage)

	s.mcp = m
	return s
}

// ServeStdio runs the MCP server over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcp)
}
