// CLAUDE:SUMMARY chi HTTP API over the article service: multipart import, editor publish, list, render with TOC, update, delete, standalone TOC.
package articles

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/folio/docpipe"
	"github.com/hazyhaar/folio/horosafe"
	"github.com/hazyhaar/folio/shield"
	"github.com/hazyhaar/folio/toc"
)

// multipartMemory is the part of a multipart upload kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// Handler serves the article HTTP API.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the API on r:
//
//	POST   /articles/import   multipart "file" (+ optional "title")
//	POST   /articles          JSON {"title", "html"}
//	GET    /articles          ?limit=&offset=
//	GET    /articles/{slug}   article, anchored HTML, TOC
//	PUT    /articles/{id}     JSON {"title"?, "html"?}
//	DELETE /articles/{id}
//	POST   /toc               JSON {"html"}
//	GET    /health
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Post("/toc", h.handleTOC)
	r.Route("/articles", func(r chi.Router) {
		r.Post("/import", h.handleImport)
		r.Post("/", h.handlePublish)
		r.Get("/", h.handleList)
		r.Get("/{slug}", h.handleRender)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type importResponse struct {
	Article  *Article                   `json:"article"`
	Warnings []docpipe.Warning          `json:"warnings,omitempty"`
	Quality  *docpipe.ExtractionQuality `json:"quality,omitempty"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeErr(w, r, requestBodyErr(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, fh, err := r.FormFile("file")
	if err != nil {
		writeErr(w, r, errors.Join(ErrInvalidInput, errors.New(`multipart field "file" is required`)))
		return
	}
	defer f.Close()

	// The declared part type wins; browsers often send
	// application/octet-stream, so fall back to the file extension.
	contentType := fh.Header.Get("Content-Type")
	if _, err := docpipe.DetectMIME(contentType); err != nil {
		if format, perr := docpipe.DetectPath(fh.Filename); perr == nil {
			contentType = format.MIME()
		}
	}

	a, doc, err := h.svc.ImportReader(r.Context(), r.FormValue("title"), f, contentType, fh.Filename)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{Article: a, Warnings: doc.Warnings, Quality: doc.Quality})
}

type publishRequest struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, r, requestBodyErr(err))
		return
	}
	a, doc, err := h.svc.Publish(r.Context(), req.Title, req.HTML)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{Article: a, Warnings: doc.Warnings})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	list, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleRender(w http.ResponseWriter, r *http.Request) {
	sl := chi.URLParam(r, "slug")
	if err := horosafe.ValidateIdentifier(sl); err != nil {
		writeErr(w, r, err)
		return
	}
	out, err := h.svc.Render(r.Context(), sl)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := horosafe.ValidateIdentifier(id); err != nil {
		writeErr(w, r, err)
		return
	}
	var u Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeErr(w, r, requestBodyErr(err))
		return
	}
	a, err := h.svc.Update(r.Context(), id, u)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := horosafe.ValidateIdentifier(id); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type tocRequest struct {
	HTML string `json:"html"`
}

type tocResponse struct {
	HTML    string         `json:"html"`
	TOC     []*toc.Heading `json:"toc"`
	TOCHTML string         `json:"toc_html"`
}

func (h *Handler) handleTOC(w http.ResponseWriter, r *http.Request) {
	var req tocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, r, requestBodyErr(err))
		return
	}
	html, headings, err := toc.Extract(req.HTML)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if headings == nil {
		headings = []*toc.Heading{}
	}
	writeJSON(w, http.StatusOK, tocResponse{HTML: html, TOC: headings, TOCHTML: toc.RenderHTML(headings)})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestBodyErr classifies a body decoding failure: an exceeded body cap
// is a size error, anything else is malformed input.
func requestBodyErr(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return errors.Join(docpipe.ErrFileTooLarge, err)
	}
	return errors.Join(ErrInvalidInput, err)
}

// statusOf maps an error to an HTTP status.
func statusOf(err error) int {
	var ie *docpipe.ImportError
	switch {
	case errors.Is(err, docpipe.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, docpipe.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &ie):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSlugTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, horosafe.ErrInvalidIdentifier),
		errors.Is(err, docpipe.ErrRead):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		shield.GetLogger(r.Context()).ErrorContext(r.Context(), "articles: request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
