// Package service drives the application status machine. Every transition is
// guarded, serialized per application, and paired with exactly one status
// history entry; if the history write fails the transition is rolled back.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"permitdesk/internal/application"
	"permitdesk/internal/compliance"
	"permitdesk/internal/fee"
	"permitdesk/internal/history"
	"permitdesk/internal/platform/metrics"
	id "permitdesk/pkg/domain"
	dErrors "permitdesk/pkg/domain-errors"
	"permitdesk/pkg/platform/keyedmutex"
	"permitdesk/pkg/platform/sentinel"
	txcontext "permitdesk/pkg/platform/tx"
)

// Service owns application lifecycle orchestration.
type Service struct {
	apps       application.Store
	refs       application.ReferenceAllocator
	compliance *compliance.Service
	history    *history.Publisher
	assessor   *fee.Assessor
	runner     txcontext.Runner
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer

	// locks serializes transitions per application id on top of the store's
	// compare-and-set, so concurrent callers fail fast with a conflict instead
	// of interleaving guard checks.
	locks *keyedmutex.Mutex

	now func() time.Time
}

func New(
	apps application.Store,
	refs application.ReferenceAllocator,
	comp *compliance.Service,
	hist *history.Publisher,
	assessor *fee.Assessor,
	runner txcontext.Runner,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		apps:       apps,
		refs:       refs,
		compliance: comp,
		history:    hist,
		assessor:   assessor,
		runner:     runner,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer("permitdesk/application"),
		locks:      keyedmutex.New(),
		now:        time.Now,
	}
}

// CreateInput carries the applicant-supplied fields for a new application.
type CreateInput struct {
	Profile          application.Profile
	ZoneID           *string
	ProjectType      string
	FloorAreaSqm     *decimal.Decimal
	TotalLotsPlanned *int
}

// Create registers a new application in pending status, assigns its reference
// number, and assesses the fee up front so the applicant sees the amount owed
// immediately.
func (s *Service) Create(ctx context.Context, in CreateInput, actor id.ActorID) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.Create")
	defer span.End()

	app := application.Application{
		ID:               id.NewApplicationID(),
		Profile:          in.Profile,
		ZoneID:           in.ZoneID,
		ProjectType:      in.ProjectType,
		FloorAreaSqm:     in.FloorAreaSqm,
		TotalLotsPlanned: in.TotalLotsPlanned,
		Status:           application.StatusPending,
	}
	if err := app.Validate(); err != nil {
		return application.Application{}, err
	}

	seq, err := s.refs.Next(ctx)
	if err != nil {
		return application.Application{}, dErrors.Wrap(dErrors.CodeInternal, "allocate reference number", err)
	}
	app.ReferenceNumber = application.FormatReferenceNumber(s.now().Year(), seq)

	assessment := s.assessor.Assess(ctx, fee.AssessRequest{
		ZoneID:           in.ZoneID,
		IsSubdivision:    in.Profile.IsSubdivision,
		FloorAreaSqm:     in.FloorAreaSqm,
		TotalLotsPlanned: in.TotalLotsPlanned,
	})
	amount := assessment.Amount
	app.AssessedFee = &amount

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.apps.Create(ctx, &app); err != nil {
			if errors.Is(err, sentinel.ErrDuplicate) {
				return dErrors.New(dErrors.CodeConflict, "reference number already allocated")
			}
			return dErrors.Wrap(dErrors.CodeInternal, "create application", err)
		}
		return s.history.Record(ctx, app.ID, nil, application.StatusPending, actor, "application created")
	})
	if err != nil {
		return application.Application{}, err
	}

	span.SetAttributes(attribute.String("application.id", app.ID.String()))
	if s.metrics != nil {
		s.metrics.ApplicationsCreated.Inc()
		s.metrics.FeeAssessments.Inc()
	}
	s.logger.InfoContext(ctx, "application created",
		"application_id", app.ID,
		"reference_number", app.ReferenceNumber,
		"assessed_fee", amount,
	)
	return app, nil
}

// Get loads one application.
func (s *Service) Get(ctx context.Context, appID id.ApplicationID) (application.Application, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return application.Application{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return application.Application{}, dErrors.Wrap(dErrors.CodeInternal, "load application", err)
	}
	return app, nil
}

// History returns the full status trail, oldest first.
func (s *Service) History(ctx context.Context, appID id.ApplicationID) ([]history.Entry, error) {
	if _, err := s.Get(ctx, appID); err != nil {
		return nil, err
	}
	return s.history.List(ctx, appID)
}

// Fee recomputes the assessment from the application's stored classification
// inputs. The amount persisted at creation stays authoritative; this read
// surfaces the current breakdown.
func (s *Service) Fee(ctx context.Context, appID id.ApplicationID) (fee.Assessment, error) {
	app, err := s.Get(ctx, appID)
	if err != nil {
		return fee.Assessment{}, err
	}
	return s.assessor.Assess(ctx, fee.AssessRequest{
		ZoneID:           app.ZoneID,
		IsSubdivision:    app.Profile.IsSubdivision,
		FloorAreaSqm:     app.FloorAreaSqm,
		TotalLotsPlanned: app.TotalLotsPlanned,
	}), nil
}

// BeginReview moves a pending application into review.
func (s *Service) BeginReview(ctx context.Context, appID id.ApplicationID, actor id.ActorID) (application.Application, error) {
	return s.transition(ctx, transitionRequest{
		appID:  appID,
		actor:  actor,
		action: "begin_review",
		to:     application.StatusInReview,
		notes:  "review started",
	})
}

// Approve closes the application successfully. The compliance signal must be
// green: a missing, rejected, or pending document blocks approval with a
// report of what is outstanding.
func (s *Service) Approve(ctx context.Context, appID id.ApplicationID, actor id.ActorID) (application.Application, error) {
	return s.transition(ctx, transitionRequest{
		appID:  appID,
		actor:  actor,
		action: "approve",
		to:     application.StatusApproved,
		notes:  "application approved",
		guard: func(ctx context.Context) error {
			report, err := s.compliance.Report(ctx, appID)
			if err != nil {
				return err
			}
			if report.Signal != compliance.SignalGreen {
				return dErrors.New(dErrors.CodeIncompleteCompliance, "document set is not fully approved").
					WithDetails(map[string]any{
						"signal":   report.Signal,
						"missing":  report.Missing,
						"rejected": report.Rejected,
						"pending":  report.Pending,
					})
			}
			return nil
		},
	})
}

// Reject closes the review with a mandatory reason.
func (s *Service) Reject(ctx context.Context, appID id.ApplicationID, actor id.ActorID, reason string) (application.Application, error) {
	if reason == "" {
		return application.Application{}, dErrors.New(dErrors.CodeInvalidInput, "rejection reason is required")
	}
	return s.transition(ctx, transitionRequest{
		appID:  appID,
		actor:  actor,
		action: "reject",
		to:     application.StatusRejected,
		reason: &reason,
		notes:  "application rejected: " + reason,
	})
}

// Reopen moves a rejected application back into review, clearing the stored
// rejection reason.
func (s *Service) Reopen(ctx context.Context, appID id.ApplicationID, actor id.ActorID) (application.Application, error) {
	return s.transition(ctx, transitionRequest{
		appID:  appID,
		actor:  actor,
		action: "reopen",
		to:     application.StatusInReview,
		notes:  "application reopened",
	})
}

// ReopenForResubmission is the document-replace hook: replacing a document on
// a rejected application automatically resumes review under the system actor.
// A no-op when the application has already left rejected status.
func (s *Service) ReopenForResubmission(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.transition(ctx, transitionRequest{
		appID:  appID,
		actor:  id.SystemActor,
		action: "reopen",
		to:     application.StatusInReview,
		notes:  "reopened after document resubmission",
		only:   application.StatusRejected,
	})
	if dErrors.Is(err, dErrors.CodeConflict) {
		// Someone else already moved the application on; resubmission proceeds.
		return nil
	}
	return err
}

type transitionRequest struct {
	appID  id.ApplicationID
	actor  id.ActorID
	action string
	to     application.Status
	reason *string
	notes  string

	// only restricts the transition to a single source status when set.
	only application.Status

	guard func(ctx context.Context) error
}

func (s *Service) transition(ctx context.Context, req transitionRequest) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.transition",
		trace.WithAttributes(
			attribute.String("application.id", req.appID.String()),
			attribute.String("transition.action", req.action),
		),
	)
	defer span.End()

	key := req.appID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	app, err := s.Get(ctx, req.appID)
	if err != nil {
		s.recordTransition(req.action, "error")
		return application.Application{}, err
	}

	if req.only != "" && app.Status != req.only {
		s.recordTransition(req.action, "conflict")
		return application.Application{}, dErrors.New(dErrors.CodeConflict, "application is not in the expected status").
			WithDetails(map[string]any{"status": app.Status, "expected": req.only})
	}
	if !app.Status.CanTransitionTo(req.to) {
		s.recordTransition(req.action, "illegal")
		if app.Status == application.StatusApproved {
			return application.Application{}, dErrors.New(dErrors.CodeImmutableState, "approved applications cannot change status")
		}
		return application.Application{}, dErrors.New(dErrors.CodeConflict, "illegal status transition").
			WithDetails(map[string]any{"from": app.Status, "to": req.to})
	}
	if req.guard != nil {
		if err := req.guard(ctx); err != nil {
			s.recordTransition(req.action, "blocked")
			return application.Application{}, err
		}
	}

	from := app.Status
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		upd := application.StatusUpdate{From: from, To: req.to, RejectionReason: req.reason}
		if err := s.apps.UpdateStatus(ctx, req.appID, upd); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, "application not found")
			case errors.Is(err, sentinel.ErrConflict):
				return dErrors.New(dErrors.CodeConflict, "application status changed concurrently")
			default:
				return dErrors.Wrap(dErrors.CodeInternal, "update application status", err)
			}
		}
		return s.history.Record(ctx, req.appID, &from, req.to, req.actor, req.notes)
	})
	if err != nil {
		s.recordTransition(req.action, "error")
		return application.Application{}, err
	}

	app.Status = req.to
	app.RejectionReason = req.reason
	app.UpdatedAt = s.now().UTC()

	s.recordTransition(req.action, "ok")
	s.logger.InfoContext(ctx, "application status changed",
		"application_id", req.appID,
		"from", from,
		"to", req.to,
		"changed_by", req.actor,
	)
	return app, nil
}

func (s *Service) recordTransition(action, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordTransition(action, outcome)
	}
}
