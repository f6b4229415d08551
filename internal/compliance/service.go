package compliance

import (
	"context"
	"errors"

	"permitdesk/internal/application"
	"permitdesk/internal/document"
	"permitdesk/internal/platform/metrics"
	id "permitdesk/pkg/domain"
	dErrors "permitdesk/pkg/domain-errors"
	"permitdesk/pkg/platform/sentinel"
)

// Service loads the state needed to evaluate an application's compliance
// signal. All rule logic stays in Evaluate; this layer only does I/O.
type Service struct {
	apps    application.Store
	docs    document.Store
	metrics *metrics.Metrics
}

func NewService(apps application.Store, docs document.Store, m *metrics.Metrics) *Service {
	return &Service{apps: apps, docs: docs, metrics: m}
}

// Report evaluates the signal for one application.
func (s *Service) Report(ctx context.Context, appID id.ApplicationID) (Report, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Report{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return Report{}, dErrors.Wrap(dErrors.CodeInternal, "load application", err)
	}

	current, err := s.docs.ListCurrent(ctx, appID)
	if err != nil {
		return Report{}, dErrors.Wrap(dErrors.CodeInternal, "load current documents", err)
	}

	report := Evaluate(app.Profile, current)
	if s.metrics != nil {
		s.metrics.RecordComplianceSignal(string(report.Signal))
	}
	return report, nil
}
