// Package service orchestrates document submission, replacement, and review.
// Upload ordering is strict: the blob store must acknowledge the bytes before
// any metadata row is written, so a storage failure leaves no dangling record.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"permitdesk/internal/application"
	"permitdesk/internal/blob"
	"permitdesk/internal/document"
	"permitdesk/internal/platform/metrics"
	id "permitdesk/pkg/domain"
	dErrors "permitdesk/pkg/domain-errors"
	"permitdesk/pkg/platform/keyedmutex"
	"permitdesk/pkg/platform/sentinel"
	txcontext "permitdesk/pkg/platform/tx"
)

// Reopener is the hook back into the application lifecycle: replacing a
// document on a rejected application resumes its review. Defined here so this
// package depends on the behavior, not on the application service.
type Reopener interface {
	ReopenForResubmission(ctx context.Context, appID id.ApplicationID) error
}

// Service owns the document lifecycle for applications.
type Service struct {
	docs     document.Store
	apps     application.Store
	blobs    blob.Store
	reopener Reopener
	runner   txcontext.Runner
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer

	// locks serializes writes per (application, type) so version chains grow
	// one link at a time.
	locks *keyedmutex.Mutex
}

func New(
	docs document.Store,
	apps application.Store,
	blobs blob.Store,
	reopener Reopener,
	runner txcontext.Runner,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		docs:     docs,
		apps:     apps,
		blobs:    blobs,
		reopener: reopener,
		runner:   runner,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("permitdesk/document"),
		locks:    keyedmutex.New(),
	}
}

// Upload carries one file submission.
type Upload struct {
	FileName  string
	MIMEType  string
	SizeBytes int64
	Body      io.Reader
}

func (u Upload) validate() error {
	if u.FileName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "file name is required")
	}
	if u.SizeBytes <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "file must not be empty")
	}
	return nil
}

// Submit stores the first version of a document type for an application.
func (s *Service) Submit(ctx context.Context, appID id.ApplicationID, docType document.Type, up Upload) (document.Document, error) {
	ctx, span := s.tracer.Start(ctx, "document.Submit",
		trace.WithAttributes(
			attribute.String("application.id", appID.String()),
			attribute.String("document.type", docType.String()),
		),
	)
	defer span.End()

	if err := up.validate(); err != nil {
		return document.Document{}, err
	}

	key := lockKey(appID, docType)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if _, err := s.loadMutableApplication(ctx, appID); err != nil {
		return document.Document{}, err
	}

	doc := document.Document{
		ID:            id.NewDocumentID(),
		ApplicationID: appID,
		Type:          docType,
		FileInfo: document.FileInfo{
			FileName:  up.FileName,
			MIMEType:  up.MIMEType,
			SizeBytes: up.SizeBytes,
		},
	}

	ref, err := s.uploadBlob(ctx, &doc, up.Body)
	if err != nil {
		return document.Document{}, err
	}
	doc.BlobRef = ref.String()

	if err := s.docs.Insert(ctx, &doc); err != nil {
		s.discardBlob(ctx, ref)
		if errors.Is(err, sentinel.ErrDuplicate) {
			return document.Document{}, dErrors.New(dErrors.CodeDuplicateDocument, "a current document of this type already exists").
				WithDetails(map[string]any{"document_type": docType})
		}
		return document.Document{}, dErrors.Wrap(dErrors.CodeInternal, "insert document", err)
	}

	if s.metrics != nil {
		s.metrics.DocumentsSubmitted.Inc()
	}
	s.logger.InfoContext(ctx, "document submitted",
		"application_id", appID,
		"document_type", docType,
		"document_id", doc.ID,
	)
	return doc, nil
}

// Replace supersedes the current version of a document with a new upload. The
// predecessor is retained for history; only the new version is reviewable.
// On a rejected application a successful replace resumes review automatically.
func (s *Service) Replace(ctx context.Context, docID id.DocumentID, up Upload) (document.Document, error) {
	ctx, span := s.tracer.Start(ctx, "document.Replace",
		trace.WithAttributes(attribute.String("document.id", docID.String())),
	)
	defer span.End()

	if err := up.validate(); err != nil {
		return document.Document{}, err
	}

	old, err := s.getDocument(ctx, docID)
	if err != nil {
		return document.Document{}, err
	}

	key := lockKey(old.ApplicationID, old.Type)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	app, err := s.loadMutableApplication(ctx, old.ApplicationID)
	if err != nil {
		return document.Document{}, err
	}

	successor := document.Document{
		ID:            id.NewDocumentID(),
		ApplicationID: old.ApplicationID,
		Type:          old.Type,
		FileInfo: document.FileInfo{
			FileName:  up.FileName,
			MIMEType:  up.MIMEType,
			SizeBytes: up.SizeBytes,
		},
	}

	ref, err := s.uploadBlob(ctx, &successor, up.Body)
	if err != nil {
		return document.Document{}, err
	}
	successor.BlobRef = ref.String()

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.docs.Replace(ctx, docID, &successor); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, "document not found")
			case errors.Is(err, sentinel.ErrConflict):
				return dErrors.New(dErrors.CodeNotCurrent, "document has been superseded; replace the current version").
					WithDetails(map[string]any{"document_id": docID})
			default:
				return dErrors.Wrap(dErrors.CodeInternal, "replace document", err)
			}
		}
		if app.Status == application.StatusRejected {
			return s.reopener.ReopenForResubmission(ctx, old.ApplicationID)
		}
		return nil
	})
	if err != nil {
		s.discardBlob(ctx, ref)
		return document.Document{}, err
	}

	if s.metrics != nil {
		s.metrics.DocumentsReplaced.Inc()
	}
	s.logger.InfoContext(ctx, "document replaced",
		"application_id", old.ApplicationID,
		"document_type", old.Type,
		"old_document_id", docID,
		"new_document_id", successor.ID,
		"version", successor.Version,
	)
	return successor, nil
}

// Review records a reviewer decision on the current version of a document.
func (s *Service) Review(ctx context.Context, docID id.DocumentID, decision document.Decision, notes *string, actor id.ActorID) (document.Document, error) {
	ctx, span := s.tracer.Start(ctx, "document.Review",
		trace.WithAttributes(
			attribute.String("document.id", docID.String()),
			attribute.String("review.decision", string(decision)),
		),
	)
	defer span.End()

	status := document.StatusApproved
	if decision == document.DecisionReject {
		status = document.StatusRejected
	}

	doc, err := s.docs.UpdateReview(ctx, docID, document.ReviewUpdate{Status: status, Notes: notes})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return document.Document{}, dErrors.New(dErrors.CodeNotFound, "document not found")
		case errors.Is(err, sentinel.ErrNotCurrent):
			return document.Document{}, dErrors.New(dErrors.CodeNotCurrent, "only the current version can be reviewed")
		default:
			return document.Document{}, dErrors.Wrap(dErrors.CodeInternal, "update document review", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordReviewDecision(string(decision))
	}
	s.logger.InfoContext(ctx, "document reviewed",
		"document_id", docID,
		"decision", decision,
		"reviewed_by", actor,
	)
	return doc, nil
}

// Versions lists the full version chain for a document type, oldest first.
func (s *Service) Versions(ctx context.Context, appID id.ApplicationID, docType document.Type) ([]document.Document, error) {
	if err := s.ensureApplicationExists(ctx, appID); err != nil {
		return nil, err
	}
	versions, err := s.docs.ListVersions(ctx, appID, docType)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list document versions", err)
	}
	return versions, nil
}

// Current lists the current version of every supplied document type.
func (s *Service) Current(ctx context.Context, appID id.ApplicationID) ([]document.Document, error) {
	if err := s.ensureApplicationExists(ctx, appID); err != nil {
		return nil, err
	}
	current, err := s.docs.ListCurrent(ctx, appID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list current documents", err)
	}
	return current, nil
}

// Open returns the stored file bytes for a document version.
func (s *Service) Open(ctx context.Context, docID id.DocumentID) (document.Document, io.ReadCloser, error) {
	doc, err := s.getDocument(ctx, docID)
	if err != nil {
		return document.Document{}, nil, err
	}
	body, err := s.blobs.Get(ctx, blob.Ref(doc.BlobRef))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return document.Document{}, nil, dErrors.New(dErrors.CodeStorageFailure, "stored file is missing")
		}
		return document.Document{}, nil, dErrors.Wrap(dErrors.CodeStorageFailure, "open stored file", err)
	}
	return doc, body, nil
}

// Requirements returns the document checklist for an application's profile.
func (s *Service) Requirements(ctx context.Context, appID id.ApplicationID) ([]document.Requirement, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load application", err)
	}
	return document.RequiredTypes(app.Profile), nil
}

func (s *Service) loadMutableApplication(ctx context.Context, appID id.ApplicationID) (application.Application, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return application.Application{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return application.Application{}, dErrors.Wrap(dErrors.CodeInternal, "load application", err)
	}
	if app.Status == application.StatusApproved {
		return application.Application{}, dErrors.New(dErrors.CodeImmutableState, "approved applications cannot accept document changes")
	}
	return app, nil
}

func (s *Service) ensureApplicationExists(ctx context.Context, appID id.ApplicationID) error {
	if _, err := s.apps.Get(ctx, appID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "load application", err)
	}
	return nil
}

func (s *Service) getDocument(ctx context.Context, docID id.DocumentID) (document.Document, error) {
	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return document.Document{}, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return document.Document{}, dErrors.Wrap(dErrors.CodeInternal, "load document", err)
	}
	return doc, nil
}

// uploadBlob writes the bytes and returns the ref. Failure here is a hard
// stop: no metadata may reference an unacknowledged upload.
func (s *Service) uploadBlob(ctx context.Context, doc *document.Document, body io.Reader) (blob.Ref, error) {
	key := blobKey(doc)
	ref, err := s.blobs.Put(ctx, key, doc.MIMEType, doc.SizeBytes, body)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeStorageFailure, "store uploaded file", err)
	}
	return ref, nil
}

// discardBlob best-effort removes an upload whose metadata write failed. The
// blob store tolerates re-deleting, so a miss here only leaks an orphan.
func (s *Service) discardBlob(ctx context.Context, ref blob.Ref) {
	if err := s.blobs.Delete(ctx, ref); err != nil {
		s.logger.WarnContext(ctx, "failed to remove orphaned upload", "blob_ref", ref, "error", err)
	}
}

func blobKey(doc *document.Document) string {
	return fmt.Sprintf("applications/%s/%s/%s", doc.ApplicationID, doc.Type, doc.ID)
}

func lockKey(appID id.ApplicationID, t document.Type) string {
	return appID.String() + "/" + t.String()
}
