package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permitdesk/internal/application"
	"permitdesk/internal/blob"
	"permitdesk/internal/document"
	docservice "permitdesk/internal/document/service"
	"permitdesk/internal/platform/middleware"
	id "permitdesk/pkg/domain"
	txcontext "permitdesk/pkg/platform/tx"
	"permitdesk/pkg/testutil"
)

type noopReopener struct{}

func (noopReopener) ReopenForResubmission(context.Context, id.ApplicationID) error { return nil }

func newTestRouter(t *testing.T) (chi.Router, *application.InMemoryStore) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	apps := application.NewInMemoryStore()
	docs := document.NewInMemoryStore()
	svc := docservice.New(docs, apps, blob.NewInMemoryStore(), noopReopener{}, txcontext.NoopRunner{}, nil, logger)

	r := chi.NewRouter()
	r.Use(middleware.Actor)
	New(svc, logger).Register(r)
	return r, apps
}

func seedApplication(t *testing.T, apps *application.InMemoryStore) application.Application {
	t.Helper()
	app := application.Application{
		ID:              id.NewApplicationID(),
		ReferenceNumber: "ZC-2026-000001",
		Profile:         application.Profile{ApplicantType: application.ApplicantIndividual},
		ProjectType:     "single detached dwelling",
		Status:          application.StatusPending,
	}
	require.NoError(t, apps.Create(context.Background(), &app))
	return app
}

func TestSubmitAndReplaceOverHTTP(t *testing.T) {
	router, apps := newTestRouter(t)
	app := seedApplication(t, apps)
	base := "/applications/" + app.ID.String()

	var docID string

	testutil.Given(t, "an application with no documents", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, base+"/documents", nil))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	testutil.When(t, "the applicant uploads a tax declaration", func(t *testing.T) {
		req := testutil.NewUploadRequest(t, http.MethodPost, base+"/documents",
			"tax.pdf", "tax content", map[string]string{"document_type": "tax_declaration"})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		doc := testutil.UnmarshalResponse[document.Document](t, rr)
		assert.Equal(t, 1, doc.Version)
		assert.True(t, doc.IsCurrent)
		docID = doc.ID.String()
	})

	testutil.Then(t, "a duplicate upload of the type is refused", func(t *testing.T) {
		req := testutil.NewUploadRequest(t, http.MethodPost, base+"/documents",
			"tax2.pdf", "x", map[string]string{"document_type": "tax_declaration"})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "duplicate_document")
	})

	testutil.Then(t, "replacing grows the version chain", func(t *testing.T) {
		req := testutil.NewUploadRequest(t, http.MethodPost, "/documents/"+docID+"/replace",
			"tax-fixed.pdf", "better content", nil)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		doc := testutil.UnmarshalResponse[document.Document](t, rr)
		assert.Equal(t, 2, doc.Version)

		rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet,
			base+"/documents/tax_declaration/versions", nil))
		testutil.AssertStatus(t, rr, http.StatusOK)
		versions := testutil.UnmarshalResponse[struct {
			Versions []document.Document `json:"versions"`
		}](t, rr)
		assert.Len(t, versions.Versions, 2)
	})

	testutil.Then(t, "the superseded version cannot be replaced again", func(t *testing.T) {
		req := testutil.NewUploadRequest(t, http.MethodPost, "/documents/"+docID+"/replace",
			"tax-v3.pdf", "x", nil)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "not_current_version")
	})
}

func TestReviewOverHTTP(t *testing.T) {
	router, apps := newTestRouter(t)
	app := seedApplication(t, apps)
	base := "/applications/" + app.ID.String()

	req := testutil.NewUploadRequest(t, http.MethodPost, base+"/documents",
		"map.pdf", "map", map[string]string{"document_type": "vicinity_map"})
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	doc := testutil.UnmarshalResponse[document.Document](t, rr)

	reviewReq := testutil.NewJSONRequest(t, http.MethodPost, "/documents/"+doc.ID.String()+"/review",
		map[string]any{"decision": "reject", "notes": "illegible"})
	reviewReq.Header.Set("X-Actor-ID", "reviewer-9")
	rr = testutil.DoRequest(router, reviewReq)
	testutil.AssertStatus(t, rr, http.StatusOK)

	reviewed := testutil.UnmarshalResponse[document.Document](t, rr)
	assert.Equal(t, document.StatusRejected, reviewed.Status)
	require.NotNil(t, reviewed.ReviewerNotes)
	assert.Equal(t, "illegible", *reviewed.ReviewerNotes)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost,
		"/documents/"+doc.ID.String()+"/review", map[string]any{"decision": "shrug"}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}

func TestRequirementsOverHTTP(t *testing.T) {
	router, apps := newTestRouter(t)
	app := seedApplication(t, apps)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet,
		"/applications/"+app.ID.String()+"/requirements", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[struct {
		Requirements []document.Requirement `json:"requirements"`
	}](t, rr)
	assert.NotEmpty(t, resp.Requirements)
}

func TestDownloadOverHTTP(t *testing.T) {
	router, apps := newTestRouter(t)
	app := seedApplication(t, apps)

	req := testutil.NewUploadRequest(t, http.MethodPost, "/applications/"+app.ID.String()+"/documents",
		"plans.pdf", "blueprint bytes", map[string]string{"document_type": "building_plans"})
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	doc := testutil.UnmarshalResponse[document.Document](t, rr)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet,
		"/documents/"+doc.ID.String()+"/file", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "blueprint bytes", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "plans.pdf")
}
