// CLAUDE:SUMMARY Import orchestrator: size check, MIME/extension detection, per-format dispatch under a timeout, normalization, stage reporting.
// Package docpipe turns author-supplied documents into normalized semantic
// HTML.
//
// Supported inputs:
//   - plain text (blank-line paragraphs, explicit line breaks)
//   - Word .docx (word/document.xml, styles resolved through word/styles.xml)
//   - OpenDocument .odt (content.xml)
//   - PDF (positioned text, line and paragraph reconstruction per page)
//   - Markdown and rich-text HTML (sanitized, bare text wrapped)
//
// Every successful import yields HTML in which each block element is closed
// and no text sits outside a block. The pipeline stores nothing; callers
// persist the HTML and derive slugs and tables of contents from it.
//
// Usage:
//
//	pipe := docpipe.New(docpipe.Config{})
//	doc, err := pipe.Import(ctx, docpipe.Request{MIME: "application/pdf", Data: raw})
//	fmt.Println(doc.Title, doc.Paragraphs, "paragraphs")
package docpipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/folio/horosafe"
	"github.com/hazyhaar/folio/kit"
)

// maxTitleLen caps the inferred title, in bytes.
const maxTitleLen = 200

// Pipeline is the document import engine. It is immutable after New and
// safe for concurrent use.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// MaxFileSize returns the effective input size limit.
func (p *Pipeline) MaxFileSize() int64 { return p.cfg.MaxFileSize }

// DetectMIME maps a declared content type to a Format. Parameters such as
// "; charset=utf-8" are ignored.
func DetectMIME(contentType string) (Format, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, contentType)
	}
	if f, ok := mimeFormats[mt]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, contentType)
}

// DetectPath maps a file extension to a Format.
func DetectPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extFormats[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
}

// SupportedFormats returns every accepted format.
func SupportedFormats() []Format {
	return []Format{FormatText, FormatWord, FormatPDF, FormatODT, FormatMarkdown, FormatHTML}
}

// SupportedMIMETypes returns every accepted content type, sorted.
func SupportedMIMETypes() []string {
	out := make([]string, 0, len(mimeFormats))
	for mt := range mimeFormats {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}

// Import decodes one request. The size limit is enforced before the type is
// even looked at; an unaccepted type is rejected before any parsing.
func (p *Pipeline) Import(ctx context.Context, req Request) (*Document, error) {
	p.stage(ctx, StageReceived, "name", req.Name, "mime", req.MIME, "size", req.Size())
	if req.Size() > p.cfg.MaxFileSize {
		err := fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, req.Size(), p.cfg.MaxFileSize)
		p.stage(ctx, StageFailed, "error", err)
		return nil, err
	}

	format, err := DetectMIME(req.MIME)
	if err != nil {
		p.stage(ctx, StageFailed, "error", err)
		return nil, err
	}
	return p.run(ctx, format, req.Data)
}

// ImportReader reads at most MaxFileSize bytes from r and imports them.
func (p *Pipeline) ImportReader(ctx context.Context, r io.Reader, contentType, name string) (*Document, error) {
	data, err := horosafe.LimitedReadAll(r, p.cfg.MaxFileSize)
	if err != nil {
		p.stage(ctx, StageReceived, "name", name, "mime", contentType)
		p.stage(ctx, StageFailed, "error", err)
		if errors.Is(err, horosafe.ErrTooLarge) {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, p.cfg.MaxFileSize)
		}
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return p.Import(ctx, Request{Name: name, MIME: contentType, Data: data})
}

// ImportFile imports a file from disk, detecting the format from its
// extension.
func (p *Pipeline) ImportFile(ctx context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrRead, path, err)
	}
	p.stage(ctx, StageReceived, "path", path, "size", info.Size())
	if info.Size() > p.cfg.MaxFileSize {
		err := fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), p.cfg.MaxFileSize)
		p.stage(ctx, StageFailed, "error", err)
		return nil, err
	}

	format, err := DetectPath(path)
	if err != nil {
		p.stage(ctx, StageFailed, "error", err)
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		p.stage(ctx, StageFailed, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return p.run(ctx, format, data)
}

// ImportHTML imports rich-text editor output.
func (p *Pipeline) ImportHTML(ctx context.Context, html string) (*Document, error) {
	p.stage(ctx, StageReceived, "size", len(html))
	if int64(len(html)) > p.cfg.MaxFileSize {
		err := fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(html), p.cfg.MaxFileSize)
		p.stage(ctx, StageFailed, "error", err)
		return nil, err
	}
	return p.run(ctx, FormatHTML, []byte(html))
}

func (p *Pipeline) run(ctx context.Context, format Format, data []byte) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	p.stage(ctx, StageTypeDetected, "format", format)
	p.stage(ctx, StageImporting, "format", format)
	d, err := p.decode(ctx, format, data)
	if err != nil {
		p.stage(ctx, StageFailed, "format", format, "error", err)
		return nil, err
	}

	p.stage(ctx, StageNormalizing, "format", format)
	doc := d.document(format)
	p.stage(ctx, StageDone, "format", format, "paragraphs", doc.Paragraphs, "warnings", len(doc.Warnings))
	return doc, nil
}

// draft is importer output before normalization.
type draft struct {
	html     string
	title    string
	warnings []Warning
	quality  *ExtractionQuality
}

func builderDraft(b *builder, warnings []Warning) draft {
	return draft{html: b.String(), title: b.firstText(), warnings: warnings}
}

func (p *Pipeline) decode(ctx context.Context, format Format, data []byte) (draft, error) {
	if err := ctx.Err(); err != nil {
		return draft{}, importErr(format, err)
	}

	var b builder
	switch format {
	case FormatText:
		importText(decodeText(data), &b)
		return builderDraft(&b, nil), nil

	case FormatWord:
		if err := importDocx(ctx, data, &p.cfg, &b); err != nil {
			return draft{}, importErr(format, err)
		}
		return builderDraft(&b, nil), nil

	case FormatODT:
		if err := importODT(ctx, data, &p.cfg, &b); err != nil {
			return draft{}, importErr(format, err)
		}
		return builderDraft(&b, nil), nil

	case FormatPDF:
		quality, warnings, err := importPDF(ctx, data, &p.cfg, &b)
		if err != nil {
			return draft{}, importErr(format, err)
		}
		for _, w := range warnings {
			p.logger.Debug("docpipe: pdf warning", "code", w.Code, "page", w.Page, "error", w.Message)
		}
		d := builderDraft(&b, warnings)
		d.quality = quality
		return d, nil

	case FormatMarkdown:
		rendered, err := markdownToHTML([]byte(decodeText(data)))
		if err != nil {
			return draft{}, importErr(format, err)
		}
		return richDraft(format, rendered)

	case FormatHTML:
		return richDraft(format, decodeText(data))

	default:
		return draft{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func richDraft(format Format, raw string) (draft, error) {
	rt, err := prepareRichText(raw)
	if err != nil {
		return draft{}, importErr(format, err)
	}
	d := draft{html: rt.html, title: rt.title}
	if rt.sanitized {
		d.warnings = append(d.warnings, Warning{
			Code:    WarnSanitized,
			Message: "active content (scripts, event handlers) was removed",
		})
	}
	return d, nil
}

// document normalizes the draft and fills the derived fields.
func (d draft) document(format Format) *Document {
	html := Normalize(d.html)
	doc := &Document{
		Format:     format,
		Title:      truncateTitle(d.title),
		HTML:       html,
		Paragraphs: CountParagraphs(html),
		Warnings:   d.warnings,
		Quality:    d.quality,
	}
	if doc.Title == "" {
		doc.Warnings = append(doc.Warnings, Warning{
			Code:    WarnEmpty,
			Message: "document contains no text",
		})
	}
	return doc
}

// finish normalizes builder output for the package-level importers.
func finish(format Format, b *builder, warnings []Warning) *Document {
	return builderDraft(b, warnings).document(format)
}

// truncateTitle cuts s to maxTitleLen bytes without splitting a rune.
func truncateTitle(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxTitleLen {
		return s
	}
	cut := maxTitleLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

func (p *Pipeline) stage(ctx context.Context, s Stage, args ...any) {
	attrs := append([]any{"stage", s}, args...)
	p.logger.DebugContext(ctx, "docpipe: stage", append(attrs, kit.LogAttrs(ctx)...)...)
	if p.cfg.OnStage != nil {
		p.cfg.OnStage(s)
	}
}
