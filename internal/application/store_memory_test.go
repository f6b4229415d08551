package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "permitdesk/pkg/domain"
	"permitdesk/pkg/platform/sentinel"
)

func seedApp(ref string) *Application {
	return &Application{
		ID:              id.NewApplicationID(),
		ReferenceNumber: ref,
		Profile:         Profile{ApplicantType: ApplicantIndividual},
		ProjectType:     "single detached dwelling",
		Status:          StatusPending,
	}
}

func TestInMemoryStore_CreateRejectsDuplicateReference(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Create(ctx, seedApp("ZC-2026-000001")))
	assert.ErrorIs(t, store.Create(ctx, seedApp("ZC-2026-000001")), sentinel.ErrDuplicate)
}

func TestInMemoryStore_UpdateStatusIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	app := seedApp("ZC-2026-000002")
	require.NoError(t, store.Create(ctx, app))

	require.NoError(t, store.UpdateStatus(ctx, app.ID, StatusUpdate{
		From: StatusPending,
		To:   StatusInReview,
	}))

	// Second writer still holding the stale prior status loses.
	err := store.UpdateStatus(ctx, app.ID, StatusUpdate{
		From: StatusPending,
		To:   StatusInReview,
	})
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	err = store.UpdateStatus(ctx, id.NewApplicationID(), StatusUpdate{
		From: StatusPending,
		To:   StatusInReview,
	})
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_UpdateStatusOverwritesRejectionReason(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	app := seedApp("ZC-2026-000003")
	require.NoError(t, store.Create(ctx, app))

	reason := "incomplete"
	require.NoError(t, store.UpdateStatus(ctx, app.ID, StatusUpdate{
		From: StatusPending, To: StatusInReview,
	}))
	require.NoError(t, store.UpdateStatus(ctx, app.ID, StatusUpdate{
		From: StatusInReview, To: StatusRejected, RejectionReason: &reason,
	}))

	got, err := store.Get(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RejectionReason)

	// Reopening writes a nil reason, clearing the stored one.
	require.NoError(t, store.UpdateStatus(ctx, app.ID, StatusUpdate{
		From: StatusRejected, To: StatusInReview,
	}))
	got, err = store.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RejectionReason)
}

func TestInMemoryStore_SetAssessedFee(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	app := seedApp("ZC-2026-000010")
	require.NoError(t, store.Create(ctx, app))

	require.NoError(t, store.SetAssessedFee(ctx, app.ID, decimal.NewFromInt(1500)))

	got, err := store.Get(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssessedFee)
	assert.True(t, got.AssessedFee.Equal(decimal.NewFromInt(1500)))

	assert.ErrorIs(t, store.SetAssessedFee(ctx, id.NewApplicationID(), decimal.NewFromInt(1)), sentinel.ErrNotFound)
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusInReview))
	assert.True(t, StatusInReview.CanTransitionTo(StatusApproved))
	assert.True(t, StatusInReview.CanTransitionTo(StatusRejected))
	assert.True(t, StatusRejected.CanTransitionTo(StatusInReview))

	assert.False(t, StatusPending.CanTransitionTo(StatusApproved))
	assert.False(t, StatusApproved.CanTransitionTo(StatusInReview))
	assert.False(t, StatusApproved.CanTransitionTo(StatusRejected))
	assert.False(t, StatusRejected.CanTransitionTo(StatusApproved))
}

func TestApplicationValidate(t *testing.T) {
	t.Run("rejection reason only when rejected", func(t *testing.T) {
		app := *seedApp("ZC-2026-000004")
		reason := "x"
		app.RejectionReason = &reason
		assert.Error(t, app.Validate())

		app.Status = StatusRejected
		assert.NoError(t, app.Validate())

		app.RejectionReason = nil
		assert.Error(t, app.Validate())
	})

	t.Run("project type required", func(t *testing.T) {
		app := *seedApp("ZC-2026-000005")
		app.ProjectType = ""
		assert.Error(t, app.Validate())
	})
}

func TestFormatReferenceNumber(t *testing.T) {
	assert.Equal(t, "ZC-2026-000042", FormatReferenceNumber(2026, 42))
}
