// CLAUDE:SUMMARY MCP tools over the pipeline: import, detect, formats, toc, markdown.
// CLAUDE:DEPENDS kit/transport_mcp.go, toc
package docpipe

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/folio/horosafe"
	"github.com/hazyhaar/folio/kit"
	"github.com/hazyhaar/folio/toc"
)

// RegisterMCP registers docpipe tools on an MCP server.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerImportTool(srv)
	p.registerDetectTool(srv)
	p.registerFormatsTool(srv)
	p.registerTOCTool(srv)
	p.registerMarkdownTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// register wraps endpoint with call logging and adds it to srv; the
// endpoint receives a *Req.
func register[Req any](p *Pipeline, srv *mcp.Server, tool *mcp.Tool, endpoint kit.Endpoint) {
	endpoint = kit.Chain(kit.Logging(p.logger, tool.Name))(endpoint)
	kit.RegisterMCPTool[Req](srv, tool, endpoint)
}

// --- import ---

type importReq struct {
	Path          string `json:"path"`
	Content       string `json:"content"`
	ContentBase64 string `json:"content_base64"`
	MIME          string `json:"mime"`
	Name          string `json:"name"`
}

func (p *Pipeline) registerImportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_import",
		Description: "Import a document (text, docx, odt, pdf, markdown, html) and return normalized HTML. Give either a path under the configured file root, or content with its MIME type.",
		InputSchema: inputSchema(map[string]any{
			"path":           map[string]any{"type": "string", "description": "File path relative to the server's file root"},
			"content":        map[string]any{"type": "string", "description": "Inline textual content (text, markdown, html)"},
			"content_base64": map[string]any{"type": "string", "description": "Inline binary content, base64 encoded (docx, odt, pdf)"},
			"mime":           map[string]any{"type": "string", "description": "Declared MIME type of inline content"},
			"name":           map[string]any{"type": "string", "description": "Original file name, informational"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*importReq)
		switch {
		case r.Path != "":
			if p.cfg.FileRoot == "" {
				return nil, errors.New("path imports are disabled: no file root configured")
			}
			path, err := horosafe.SafePath(p.cfg.FileRoot, r.Path)
			if err != nil {
				return nil, err
			}
			return p.ImportFile(ctx, path)
		case r.ContentBase64 != "":
			data, err := base64.StdEncoding.DecodeString(r.ContentBase64)
			if err != nil {
				return nil, fmt.Errorf("content_base64: %w", err)
			}
			return p.Import(ctx, Request{Name: r.Name, MIME: r.MIME, Data: data})
		case r.Content != "":
			return p.Import(ctx, Request{Name: r.Name, MIME: r.MIME, Data: []byte(r.Content)})
		default:
			return nil, errors.New("one of path, content or content_base64 is required")
		}
	}

	register[importReq](p, srv, tool, endpoint)
}

// --- detect ---

type detectReq struct {
	Path string `json:"path"`
	MIME string `json:"mime"`
}

func (p *Pipeline) registerDetectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_detect",
		Description: "Detect the import format from a MIME type or a file name.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File name or path"},
			"mime": map[string]any{"type": "string", "description": "Declared MIME type (takes precedence)"},
		}, nil),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*detectReq)
		var (
			format Format
			err    error
		)
		switch {
		case r.MIME != "":
			format, err = DetectMIME(r.MIME)
		case r.Path != "":
			format, err = DetectPath(r.Path)
		default:
			return nil, errors.New("path or mime is required")
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"format": string(format)}, nil
	}

	register[detectReq](p, srv, tool, endpoint)
}

// --- formats ---

func (p *Pipeline) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_formats",
		Description: "List supported import formats and MIME types.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{
			"formats":    SupportedFormats(),
			"mime_types": SupportedMIMETypes(),
		}, nil
	}

	register[struct{}](p, srv, tool, endpoint)
}

// --- toc ---

type htmlReq struct {
	HTML string `json:"html"`
}

func (p *Pipeline) registerTOCTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_toc",
		Description: "Inject anchor ids into the headings of an HTML document and return its table of contents.",
		InputSchema: inputSchema(map[string]any{
			"html": map[string]any{"type": "string", "description": "Document HTML"},
		}, []string{"html"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*htmlReq)
		anchored, headings, err := toc.Extract(r.HTML)
		if err != nil {
			return nil, err
		}
		return map[string]any{"html": anchored, "toc": headings}, nil
	}

	register[htmlReq](p, srv, tool, endpoint)
}

// --- markdown ---

func (p *Pipeline) registerMarkdownTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_markdown",
		Description: "Convert document HTML to Markdown.",
		InputSchema: inputSchema(map[string]any{
			"html": map[string]any{"type": "string", "description": "Document HTML"},
		}, []string{"html"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*htmlReq)
		md, err := ToMarkdown(r.HTML)
		if err != nil {
			return nil, err
		}
		return map[string]any{"markdown": md}, nil
	}

	register[htmlReq](p, srv, tool, endpoint)
}
