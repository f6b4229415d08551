package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permitdesk/internal/application"
	id "permitdesk/pkg/domain"
)

type failingStore struct{}

func (failingStore) Append(context.Context, Entry) error { return errors.New("disk full") }
func (failingStore) List(context.Context, id.ApplicationID) ([]Entry, error) {
	return nil, nil
}

func TestPublisherStampsEntries(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	appID := id.NewApplicationID()

	require.NoError(t, pub.Record(ctx, appID, nil, application.StatusPending, id.ActorID("clerk-7"), "application created"))

	from := application.StatusPending
	require.NoError(t, pub.Record(ctx, appID, &from, application.StatusInReview, id.SystemActor, "review started"))

	entries, err := pub.List(ctx, appID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first, second := entries[0], entries[1]
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Nil(t, first.StatusFrom)
	assert.Equal(t, id.ActorID("clerk-7"), first.ChangedBy)
	assert.True(t, second.ChangedBy.IsSystem())
	require.NotNil(t, second.StatusFrom)
	assert.Equal(t, application.StatusPending, *second.StatusFrom)
}

func TestPublisherFailsClosed(t *testing.T) {
	pub := NewPublisher(failingStore{})
	err := pub.Record(context.Background(), id.NewApplicationID(), nil, application.StatusPending, id.SystemActor, "")
	assert.Error(t, err)
}
