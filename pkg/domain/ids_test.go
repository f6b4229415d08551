package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationID(t *testing.T) {
	appID := NewApplicationID()
	assert.False(t, appID.IsNil())

	parsed, err := ParseApplicationID(appID.String())
	require.NoError(t, err)
	assert.Equal(t, appID, parsed)

	_, err = ParseApplicationID("not-a-uuid")
	assert.Error(t, err)

	assert.True(t, ApplicationID{}.IsNil())
}

func TestDocumentID(t *testing.T) {
	docID := NewDocumentID()
	assert.False(t, docID.IsNil())

	parsed, err := ParseDocumentID(docID.String())
	require.NoError(t, err)
	assert.Equal(t, docID, parsed)

	_, err = ParseDocumentID("")
	assert.Error(t, err)
}

func TestIDJSONRoundTrip(t *testing.T) {
	type payload struct {
		App ApplicationID `json:"app"`
		Doc DocumentID    `json:"doc"`
	}
	in := payload{App: NewApplicationID(), Doc: NewDocumentID()}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	// IDs must serialize as canonical UUID strings, not byte arrays.
	assert.Contains(t, string(raw), in.App.String())
	assert.Contains(t, string(raw), in.Doc.String())

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestActorID(t *testing.T) {
	assert.True(t, SystemActor.IsSystem())
	assert.False(t, ActorID("reviewer-1").IsSystem())
	assert.Equal(t, "reviewer-1", ActorID("reviewer-1").String())
}
