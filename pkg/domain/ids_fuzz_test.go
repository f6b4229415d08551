package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FuzzParseApplicationID checks the parser never panics and that everything it
// accepts round-trips through String.
func FuzzParseApplicationID(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("not-a-uuid")
	f.Add("")
	f.Add("550e8400e29b41d4a716446655440000")

	f.Fuzz(func(t *testing.T, input string) {
		appID, err := ParseApplicationID(input)
		if err != nil {
			return
		}
		reparsed, err := ParseApplicationID(appID.String())
		require.NoError(t, err)
		assert.Equal(t, appID, reparsed)
	})
}
