// Package handler exposes document submission, replacement, and review over
// HTTP. Uploads arrive as multipart form data with the metadata fields beside
// the file part.
package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"permitdesk/internal/document"
	docservice "permitdesk/internal/document/service"
	"permitdesk/internal/platform/middleware"
	id "permitdesk/pkg/domain"
	dErrors "permitdesk/pkg/domain-errors"

	"permitdesk/internal/transport/http/shared"
)

// maxUploadBytes bounds a single document upload.
const maxUploadBytes = 32 << 20

// Handler handles document endpoints.
type Handler struct {
	docs   *docservice.Service
	logger *slog.Logger
}

func New(docs *docservice.Service, logger *slog.Logger) *Handler {
	return &Handler{docs: docs, logger: logger}
}

// Register mounts the document routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/applications/{appID}/requirements", h.handleRequirements)
	r.Get("/applications/{appID}/documents", h.handleListCurrent)
	r.Post("/applications/{appID}/documents", h.handleSubmit)
	r.Get("/applications/{appID}/documents/{docType}/versions", h.handleVersions)
	r.Get("/documents/{docID}/file", h.handleDownload)
	r.Post("/documents/{docID}/replace", h.handleReplace)
	r.Post("/documents/{docID}/review", h.handleReview)
}

func (h *Handler) handleRequirements(w http.ResponseWriter, r *http.Request) {
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	reqs, err := h.docs.Requirements(r.Context(), appID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"requirements": reqs})
}

func (h *Handler) handleListCurrent(w http.ResponseWriter, r *http.Request) {
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	docs, err := h.docs.Current(r.Context(), appID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	docType, upload, closeFn, err := h.parseUpload(r, true)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	defer closeFn()

	doc, err := h.docs.Submit(ctx, appID, docType, upload)
	if err != nil {
		h.logError(r, "document submission failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleVersions(w http.ResponseWriter, r *http.Request) {
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	docType, err := document.ParseType(chi.URLParam(r, "docType"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	versions, err := h.docs.Versions(r.Context(), appID, docType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	docID, err := parseDocID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	doc, body, err := h.docs.Open(r.Context(), docID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID, err := parseDocID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	_, upload, closeFn, err := h.parseUpload(r, false)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	defer closeFn()

	doc, err := h.docs.Replace(ctx, docID, upload)
	if err != nil {
		h.logError(r, "document replacement failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, doc)
}

type reviewRequest struct {
	Decision string  `json:"decision"`
	Notes    *string `json:"notes"`
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID, err := parseDocID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	decision, err := document.ParseDecision(req.Decision)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	doc, err := h.docs.Review(ctx, docID, decision, req.Notes, middleware.GetActor(ctx))
	if err != nil {
		h.logError(r, "document review failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, doc)
}

// parseUpload extracts the file part and, when wantType is set, the
// document_type form field.
func (h *Handler) parseUpload(r *http.Request, wantType bool) (document.Type, docservice.Upload, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", docservice.Upload{}, noop, dErrors.New(dErrors.CodeInvalidInput, "invalid multipart form")
	}

	var docType document.Type
	if wantType {
		parsed, err := document.ParseType(r.FormValue("document_type"))
		if err != nil {
			return "", docservice.Upload{}, noop, err
		}
		docType = parsed
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", docservice.Upload{}, noop, dErrors.New(dErrors.CodeInvalidInput, "file part is required")
	}

	return docType, docservice.Upload{
		FileName:  header.Filename,
		MIMEType:  contentType(header),
		SizeBytes: header.Size,
		Body:      file,
	}, func() { _ = file.Close() }, nil
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", middleware.GetRequestID(ctx),
		"path", r.URL.Path,
		"error", err.Error(),
	)
}

func parseAppID(r *http.Request) (id.ApplicationID, error) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "appID"))
	if err != nil {
		return id.ApplicationID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid application id")
	}
	return appID, nil
}

func parseDocID(r *http.Request) (id.DocumentID, error) {
	docID, err := id.ParseDocumentID(chi.URLParam(r, "docID"))
	if err != nil {
		return id.DocumentID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid document id")
	}
	return docID, nil
}
