// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Sowilo tools for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/sowilo/internal/apperr"
	"github.com/starford/sowilo/internal/models"
	"github.com/starford/sowilo/internal/noteservice"
	"github.com/starford/sowilo/internal/parser"
	"github.com/starford/sowilo/internal/scan"
	"github.com/starford/sowilo/internal/storage"
)

// Server wraps the MCP server with Sowilo tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *noteservice.Service
	store storage.Provider
}

// New creates a new MCP server with all Sowilo tools registered.
func New(svc *noteservice.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Sowilo",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("scan_notes",
		mcp.WithDescription("Scan the note tree and report every note carrying all required tags. "+
			"Output uses the scan report format: '@ path', '  > title', '[ tags ]' per note."),
		mcp.WithString("tags", mcp.Description("Required tags, space or comma separated (empty matches every note)")),
	), s.scanNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. topics/idea.note.txt)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note at the specified path. The header (title line plus "+
			"bracketed tag list) is composed from the title and tags arguments so the result always "+
			"follows the note format. Read the contract first via the get_note_contract tool or the "+
			"sowilo://note-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new note (base name must contain a .note. segment)")),
		mcp.WithString("title", mcp.Description("Title line (single line, optional)")),
		mcp.WithString("tags", mcp.Description("Tags, space or comma separated (optional)")),
		mcp.WithString("body", mcp.Description("Body text below the header (optional)")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("rename_note",
		mcp.WithDescription("Move a note to a new path, keeping its header indexed."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Current relative path")),
		mcp.WithString("to", mcp.Required(), mcp.Description("New relative path (must follow the note name convention)")),
	), s.renameNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes or notes in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every known tag with the number of notes carrying it."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical Sowilo note format contract. "+
			"Call this before creating notes to ensure correct structure."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("sowilo://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical note header format that all notes must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// splitTagArg splits a tags argument on commas and whitespace.
func splitTagArg(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func (s *Server) scanNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawTags := ""
	if v, err := req.RequireString("tags"); err == nil {
		rawTags = v
	}
	required := models.NormalizeTags(splitTagArg(rawTags))

	paths, err := s.store.Paths("")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries := make([]scan.Entry, 0, len(paths))
	for _, p := range paths {
		data, readErr := s.store.Read(p)
		if readErr != nil {
			entries = append(entries, scan.Entry{Path: p, Err: &parser.ReadError{Path: p, Err: readErr}})
			continue
		}
		h, parseErr := parser.ParseHeader(bytes.NewReader(data))
		if parseErr != nil {
			entries = append(entries, scan.Entry{Path: p, Err: &parser.ReadError{Path: p, Err: parseErr}})
			continue
		}
		h.Path = p
		entries = append(entries, scan.Entry{Path: p, Header: h, Qualified: h.HasAll(required)})
	}

	var buf bytes.Buffer
	if err := scan.NewReporter(&buf).Report(entries); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if buf.Len() == 0 {
		return mcp.NewToolResultText("no matching notes"), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := ""
	if v, err := req.RequireString("title"); err == nil {
		title = v
	}
	rawTags := ""
	if v, err := req.RequireString("tags"); err == nil {
		rawTags = v
	}
	body := ""
	if v, err := req.RequireString("body"); err == nil {
		body = v
	}

	tags := models.NormalizeTags(splitTagArg(rawTags))
	data := composeNote(title, tags, body)
	if msg := validateComposed(data, title, tags); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}

	if _, err := s.svc.CreateNote(ctx, path, data); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotANote):
			return mcp.NewToolResultError(fmt.Sprintf("not a note path: %s (base name must contain a .note. segment)", path)), nil
		case errors.Is(err, apperr.ErrAlreadyExists):
			return mcp.NewToolResultError(fmt.Sprintf("note already exists: %s", path)), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

// composeNote assembles note content so the header parses back to the given
// title and tags. A tag list line always terminates the header when a title
// is present; without one the title would absorb leading body lines.
func composeNote(title string, tags []string, body string) []byte {
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	if title != "" || len(tags) > 0 {
		b.WriteString("[" + strings.Join(tags, " ") + "]\n")
	}
	if body != "" {
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// validateComposed checks each tag against the tag word grammar and
// round-trips composed content through the header parser to confirm the
// title survives. Returns "" when the composition is faithful.
func validateComposed(data []byte, title string, tags []string) string {
	for _, tag := range tags {
		cl := parser.ClassifyLine("[" + tag + "]")
		if cl.Kind != parser.LineTagList || len(cl.Words) != 1 || cl.Words[0] != tag {
			return fmt.Sprintf("tag %q is not a valid tag word; see sowilo://note-format", tag)
		}
	}
	if title == "" {
		return ""
	}
	h, err := parser.ParseHeader(bytes.NewReader(data))
	if err != nil {
		return err.Error()
	}
	if h.Title != strings.TrimSpace(title) {
		return fmt.Sprintf("title %q cannot be represented in a note header (single line, must not parse as a tag list); see sowilo://note-format", title)
	}
	return ""
}

func (s *Server) renameNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := s.svc.RenameNote(ctx, from, to); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotANote):
			return mcp.NewToolResultError("both paths must follow the note name convention"), nil
		case errors.Is(err, apperr.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", from)), nil
		case errors.Is(err, apperr.ErrAlreadyExists):
			return mcp.NewToolResultError(fmt.Sprintf("target already exists: %s", to)), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed: %s -> %s", from, to)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	paths, err := s.store.Paths(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, err := s.svc.Tags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(counts) == 0 {
		return mcp.NewToolResultText("no tags found"), nil
	}
	out, _ := json.MarshalIndent(counts, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "sowilo://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
