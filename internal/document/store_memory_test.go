package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "permitdesk/pkg/domain"
	"permitdesk/pkg/platform/sentinel"
)

func newDoc(appID id.ApplicationID, typ Type) *Document {
	return &Document{
		ID:            id.NewDocumentID(),
		ApplicationID: appID,
		Type:          typ,
		FileInfo: FileInfo{
			FileName:  "plan.pdf",
			MIMEType:  "application/pdf",
			SizeBytes: 1024,
		},
		BlobRef: "blob/" + typ.String(),
	}
}

func TestInMemoryStore_InsertAndDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	appID := id.NewApplicationID()

	doc := newDoc(appID, TypeTaxDeclaration)
	require.NoError(t, store.Insert(ctx, doc))
	assert.Equal(t, 1, doc.Version)
	assert.True(t, doc.IsCurrent)
	assert.Equal(t, StatusPending, doc.Status)

	dup := newDoc(appID, TypeTaxDeclaration)
	assert.ErrorIs(t, store.Insert(ctx, dup), sentinel.ErrDuplicate)

	// A different application may hold the same type.
	other := newDoc(id.NewApplicationID(), TypeTaxDeclaration)
	assert.NoError(t, store.Insert(ctx, other))
}

func TestInMemoryStore_ReplaceGrowsVersionChain(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	appID := id.NewApplicationID()

	v1 := newDoc(appID, TypeBuildingPlans)
	require.NoError(t, store.Insert(ctx, v1))

	v2 := newDoc(appID, TypeBuildingPlans)
	require.NoError(t, store.Replace(ctx, v1.ID, v2))
	assert.Equal(t, 2, v2.Version)
	assert.True(t, v2.IsCurrent)
	assert.Equal(t, StatusPending, v2.Status)

	// Predecessor keeps its row, loses its current flag.
	old, err := store.Get(ctx, v1.ID)
	require.NoError(t, err)
	assert.False(t, old.IsCurrent)
	assert.Equal(t, 1, old.Version)

	versions, err := store.ListVersions(ctx, appID, TypeBuildingPlans)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)
}

func TestInMemoryStore_ReplaceSupersededFails(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	appID := id.NewApplicationID()

	v1 := newDoc(appID, TypeBuildingPlans)
	require.NoError(t, store.Insert(ctx, v1))
	v2 := newDoc(appID, TypeBuildingPlans)
	require.NoError(t, store.Replace(ctx, v1.ID, v2))

	// Replacing through the superseded version must fail; the chain only
	// grows from its head.
	v3 := newDoc(appID, TypeBuildingPlans)
	assert.ErrorIs(t, store.Replace(ctx, v1.ID, v3), sentinel.ErrConflict)

	v4 := newDoc(appID, Type("other:unknown"))
	assert.ErrorIs(t, store.Replace(ctx, v4.ID, newDoc(appID, TypeBuildingPlans)), sentinel.ErrNotFound)
}

func TestInMemoryStore_OneCurrentPerType(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	appID := id.NewApplicationID()

	v1 := newDoc(appID, TypeLocationMap)
	require.NoError(t, store.Insert(ctx, v1))
	v2 := newDoc(appID, TypeLocationMap)
	require.NoError(t, store.Replace(ctx, v1.ID, v2))
	v3 := newDoc(appID, TypeLocationMap)
	require.NoError(t, store.Replace(ctx, v2.ID, v3))

	versions, err := store.ListVersions(ctx, appID, TypeLocationMap)
	require.NoError(t, err)
	currentCount := 0
	for _, v := range versions {
		if v.IsCurrent {
			currentCount++
		}
	}
	assert.Equal(t, 1, currentCount)

	current, err := store.ListCurrent(ctx, appID)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, v3.ID, current[0].ID)
}

func TestInMemoryStore_UpdateReview(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	appID := id.NewApplicationID()

	v1 := newDoc(appID, TypeVicinityMap)
	require.NoError(t, store.Insert(ctx, v1))

	notes := "blurry scan"
	reviewed, err := store.UpdateReview(ctx, v1.ID, ReviewUpdate{Status: StatusRejected, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, reviewed.Status)
	assert.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, &notes, reviewed.ReviewerNotes)

	// After replacement the old version is no longer reviewable.
	v2 := newDoc(appID, TypeVicinityMap)
	require.NoError(t, store.Replace(ctx, v1.ID, v2))
	_, err = store.UpdateReview(ctx, v1.ID, ReviewUpdate{Status: StatusApproved})
	assert.ErrorIs(t, err, sentinel.ErrNotCurrent)

	// The fresh version starts pending regardless of the predecessor's fate.
	fresh, err := store.Get(ctx, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, fresh.Status)
}
