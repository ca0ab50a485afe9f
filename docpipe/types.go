// CLAUDE:SUMMARY Defines Format, Stage, Request, Document, and Warning types for the docpipe import pipeline.
package docpipe

// Format identifies a supported input format.
type Format string

const (
	FormatText     Format = "text"
	FormatWord     Format = "word"
	FormatPDF      Format = "pdf"
	FormatODT      Format = "odt"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// MIME types accepted by DetectMIME.
const (
	MIMEText      = "text/plain"
	MIMEMSWord    = "application/msword"
	MIMEDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPDF       = "application/pdf"
	MIMEODT       = "application/vnd.oasis.opendocument.text"
	MIMEMarkdown  = "text/markdown"
	MIMEXMarkdown = "text/x-markdown"
	MIMEHTML      = "text/html"
)

var mimeFormats = map[string]Format{
	MIMEText:      FormatText,
	MIMEMSWord:    FormatWord,
	MIMEDocx:      FormatWord,
	MIMEPDF:       FormatPDF,
	MIMEODT:       FormatODT,
	MIMEMarkdown:  FormatMarkdown,
	MIMEXMarkdown: FormatMarkdown,
	MIMEHTML:      FormatHTML,
}

var formatMIME = map[Format]string{
	FormatText:     MIMEText,
	FormatWord:     MIMEDocx,
	FormatPDF:      MIMEPDF,
	FormatODT:      MIMEODT,
	FormatMarkdown: MIMEMarkdown,
	FormatHTML:     MIMEHTML,
}

// MIME returns the canonical content type of f, "" for an unknown format.
func (f Format) MIME() string { return formatMIME[f] }

var extFormats = map[string]Format{
	".txt":      FormatText,
	".text":     FormatText,
	".docx":     FormatWord,
	".doc":      FormatWord,
	".pdf":      FormatPDF,
	".odt":      FormatODT,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// Stage is a step of the import state machine:
// Received → TypeDetected → Importing → Normalizing → Done, with Failed
// reachable from Received (size), TypeDetected (unsupported type) and
// Importing (decode failure).
type Stage string

const (
	StageReceived     Stage = "received"
	StageTypeDetected Stage = "type_detected"
	StageImporting    Stage = "importing"
	StageNormalizing  Stage = "normalizing"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Request is one file handed to the pipeline.
type Request struct {
	Name string `json:"name,omitempty"` // original file name, informational
	MIME string `json:"mime"`           // declared content type
	Data []byte `json:"-"`
}

// Size returns the request's byte length.
func (r Request) Size() int64 { return int64(len(r.Data)) }

// WarningCode classifies a non-fatal import problem.
type WarningCode string

const (
	// WarnPageFailed marks a page or section that could not be extracted.
	// The rest of the document is still usable.
	WarnPageFailed WarningCode = "page_failed"
	WarnNeedsOCR   WarningCode = "needs_ocr"
	WarnEmpty      WarningCode = "empty_document"
	WarnSanitized  WarningCode = "sanitized"
)

// Warning is reported alongside a successful import.
type Warning struct {
	Code    WarningCode `json:"code"`
	Page    int         `json:"page,omitempty"`
	Message string      `json:"message"`
}

// Document is the normalized result of an import.
type Document struct {
	Format     Format             `json:"format"`
	Title      string             `json:"title"`
	HTML       string             `json:"html"`
	Paragraphs int                `json:"paragraphs"`
	Warnings   []Warning          `json:"warnings,omitempty"`
	Quality    *ExtractionQuality `json:"quality,omitempty"` // PDF only
}

// Partial reports whether some pages or sections were replaced by
// placeholders.
func (d *Document) Partial() bool {
	for _, w := range d.Warnings {
		if w.Code == WarnPageFailed {
			return true
		}
	}
	return false
}
