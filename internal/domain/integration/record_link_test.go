package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// RecordLink Tests
// ---------------------------------------------------------------------------

func TestNewRecordLink(t *testing.T) {
	tenantID := uuid.New()

	t.Run("Valid link creation", func(t *testing.T) {
		link, err := NewRecordLink(tenantID, "restaurant.floor", 7, "floor", "abc")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, link.ID)
		assert.Equal(t, tenantID, link.TenantID)
		assert.Equal(t, int64(7), link.RemoteID)
		assert.Equal(t, "abc", link.LocalID)
		assert.False(t, link.SyncedAt.IsZero())
	})

	t.Run("Invalid tenant ID", func(t *testing.T) {
		_, err := NewRecordLink(uuid.Nil, "restaurant.floor", 7, "floor", "abc")
		assert.ErrorIs(t, err, ErrLinkInvalidTenantID)
	})

	t.Run("Invalid remote ID", func(t *testing.T) {
		_, err := NewRecordLink(tenantID, "restaurant.floor", 0, "floor", "abc")
		assert.ErrorIs(t, err, ErrLinkInvalidRemoteID)
	})

	t.Run("Missing models", func(t *testing.T) {
		_, err := NewRecordLink(tenantID, "", 1, "floor", "abc")
		assert.ErrorIs(t, err, ErrLinkInvalidRemoteModel)
		_, err = NewRecordLink(tenantID, "restaurant.floor", 1, "", "abc")
		assert.ErrorIs(t, err, ErrLinkInvalidLocalModel)
	})

	t.Run("Missing local ID", func(t *testing.T) {
		_, err := NewRecordLink(tenantID, "restaurant.floor", 1, "floor", "")
		assert.ErrorIs(t, err, ErrLinkInvalidLocalID)
	})
}

func TestRecordLink_Touch(t *testing.T) {
	link, err := NewRecordLink(uuid.New(), "pos.category", 3, "category", "x")
	require.NoError(t, err)

	later := link.SyncedAt.Add(time.Hour)
	link.Touch(later)
	assert.Equal(t, later, link.SyncedAt)
}

func TestLinkIndex(t *testing.T) {
	tenantID := uuid.New()
	links := []RecordLink{
		{TenantID: tenantID, RemoteModel: "pos.category", RemoteID: 1, LocalModel: "category", LocalID: "a"},
		{TenantID: tenantID, RemoteModel: "pos.category", RemoteID: 2, LocalModel: "category", LocalID: "b"},
	}

	idx := NewLinkIndex(links)
	require.Len(t, idx, 2)
	assert.Equal(t, "b", idx[2].LocalID)
	assert.ElementsMatch(t, []int64{1, 2}, idx.RemoteIDs())

	// Index entries point into the original slice
	idx[1].LocalID = "changed"
	assert.Equal(t, "changed", links[0].LocalID)
}

// ---------------------------------------------------------------------------
// ImageLink Tests
// ---------------------------------------------------------------------------

func TestImageLink(t *testing.T) {
	linkID := uuid.New()

	t.Run("Requires field names", func(t *testing.T) {
		_, err := NewImageLink(linkID, "", "image")
		assert.ErrorIs(t, err, ErrImageInvalidField)
	})

	t.Run("Change detection", func(t *testing.T) {
		img, err := NewImageLink(linkID, "image_128", "image")
		require.NoError(t, err)
		assert.True(t, img.Changed("h1"))

		require.NoError(t, img.Record("h1", time.Now()))
		assert.False(t, img.Changed("h1"))
		assert.True(t, img.Changed("h2"))
		assert.Equal(t, ImageLinkKey{RecordLinkID: linkID, RemoteField: "image_128", LocalField: "image"}, img.Key())
	})

	t.Run("Rejects empty hash", func(t *testing.T) {
		img, err := NewImageLink(linkID, "image_128", "image")
		require.NoError(t, err)
		assert.ErrorIs(t, img.Record("", time.Now()), ErrImageInvalidHash)
	})
}

func TestSyncDirection(t *testing.T) {
	c := Company{ID: uuid.New()}
	assert.True(t, SyncDirectionInbound.IsValid())
	assert.False(t, SyncDirection("SIDEWAYS").IsValid())
	assert.Equal(t, "erpsync:lock:"+c.ID.String()+":OUTBOUND", SyncDirectionOutbound.LockKey(c))
}
