package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donelist/backend/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		ID:        "task-042",
	}

	out, err := DecodeCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestDecodeCursor_EmptyMeansFirstPage(t *testing.T) {
	out, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDecodeCursor_RejectsTamperedTokens(t *testing.T) {
	for _, token := range []string{
		"not base64!!",
		"bm90IGpzb24",         // valid base64, not JSON
		"e30",                 // "{}" decodes but misses both fields
		"eyJpIjoidGFzayJ9",    // {"i":"task"} with no timestamp
	} {
		_, err := DecodeCursor(token)
		assert.ErrorIs(t, err, domain.ErrInvalidCursor, "token %q", token)
	}
}
