// Package handler exposes the application lifecycle over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"permitdesk/internal/application"
	appservice "permitdesk/internal/application/service"
	"permitdesk/internal/compliance"
	"permitdesk/internal/platform/middleware"
	id "permitdesk/pkg/domain"
	dErrors "permitdesk/pkg/domain-errors"

	"permitdesk/internal/transport/http/shared"
)

// Handler handles application endpoints.
type Handler struct {
	apps       *appservice.Service
	compliance *compliance.Service
	logger     *slog.Logger
}

func New(apps *appservice.Service, comp *compliance.Service, logger *slog.Logger) *Handler {
	return &Handler{apps: apps, compliance: comp, logger: logger}
}

// Register mounts the application routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.handleCreate)
	r.Get("/applications/{appID}", h.handleGet)
	r.Get("/applications/{appID}/compliance", h.handleCompliance)
	r.Get("/applications/{appID}/fee", h.handleFee)
	r.Get("/applications/{appID}/history", h.handleHistory)
	r.Post("/applications/{appID}/review", h.handleBeginReview)
	r.Post("/applications/{appID}/approve", h.handleApprove)
	r.Post("/applications/{appID}/reject", h.handleReject)
	r.Post("/applications/{appID}/reopen", h.handleReopen)
}

type createRequest struct {
	ApplicantType    string           `json:"applicant_type"`
	IsRepresentative bool             `json:"is_representative"`
	IsSubdivision    bool             `json:"is_subdivision"`
	ZoneID           *string          `json:"zone_id"`
	ProjectType      string           `json:"project_type"`
	FloorAreaSqm     *decimal.Decimal `json:"floor_area_sqm"`
	TotalLotsPlanned *int             `json:"total_lots_planned"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	applicantType, err := application.ParseApplicantType(req.ApplicantType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	app, err := h.apps.Create(ctx, appservice.CreateInput{
		Profile: application.Profile{
			ApplicantType:    applicantType,
			IsRepresentative: req.IsRepresentative,
			IsSubdivision:    req.IsSubdivision,
		},
		ZoneID:           req.ZoneID,
		ProjectType:      req.ProjectType,
		FloorAreaSqm:     req.FloorAreaSqm,
		TotalLotsPlanned: req.TotalLotsPlanned,
	}, middleware.GetActor(ctx))
	if err != nil {
		h.logError(r, "failed to create application", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	app, err := h.apps.Get(r.Context(), appID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleCompliance(w http.ResponseWriter, r *http.Request) {
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	report, err := h.compliance.Report(r.Context(), appID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleFee(w http.ResponseWriter, r *http.Request) {
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	assessment, err := h.apps.Fee(r.Context(), appID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, assessment)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	entries, err := h.apps.History(r.Context(), appID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (h *Handler) handleBeginReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.apps.BeginReview)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.apps.Approve)
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.apps.Reopen)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	app, err := h.apps.Reject(ctx, appID, middleware.GetActor(ctx), req.Reason)
	if err != nil {
		h.logError(r, "failed to reject application", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, app)
}

type transitionFunc func(ctx context.Context, appID id.ApplicationID, actor id.ActorID) (application.Application, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	ctx := r.Context()
	appID, err := parseAppID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	app, err := fn(ctx, appID, middleware.GetActor(ctx))
	if err != nil {
		h.logError(r, "status transition failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, app)
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
