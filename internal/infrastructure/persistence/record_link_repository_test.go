package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormRecordLinkRepository_Create(t *testing.T) {
	db := testutil.NewSyncDB(t)
	repo := NewGormRecordLinkRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	link, err := integration.NewRecordLink(tenantID, "pos.category", 10, "category", "local-1")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, link))

	t.Run("same remote record twice is a duplicate", func(t *testing.T) {
		dup, err := integration.NewRecordLink(tenantID, "pos.category", 10, "category", "local-2")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), integration.ErrDuplicateLink)
	})

	t.Run("same local record twice is a duplicate", func(t *testing.T) {
		dup, err := integration.NewRecordLink(tenantID, "pos.category", 11, "category", "local-1")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), integration.ErrDuplicateLink)
	})

	t.Run("another tenant may reuse the remote id", func(t *testing.T) {
		other, err := integration.NewRecordLink(uuid.New(), "pos.category", 10, "category", "local-9")
		require.NoError(t, err)
		assert.NoError(t, repo.Create(ctx, other))
	})

	t.Run("invalid entries are rejected before insert", func(t *testing.T) {
		err := repo.Create(ctx, &integration.RecordLink{ID: uuid.New(), TenantID: tenantID})
		assert.ErrorIs(t, err, integration.ErrLinkInvalidRemoteModel)
	})
}

func TestGormRecordLinkRepository_Find(t *testing.T) {
	db := testutil.NewSyncDB(t)
	repo := NewGormRecordLinkRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for _, l := range []struct {
		remoteModel string
		remoteID    int64
		localModel  string
		localID     string
	}{
		{"pos.category", 2, "category", "c2"},
		{"pos.category", 1, "category", "c1"},
		{"product.template", 5, "product", "p5"},
	} {
		link, err := integration.NewRecordLink(tenantID, l.remoteModel, l.remoteID, l.localModel, l.localID)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, link))
	}

	links, err := repo.FindByModels(ctx, tenantID, "pos.category", "category")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, int64(1), links[0].RemoteID)
	assert.Equal(t, "c2", links[1].LocalID)

	links, err = repo.FindByLocalModel(ctx, tenantID, "product")
	require.NoError(t, err)
	require.Len(t, links, 1)

	links, err = repo.FindByModels(ctx, uuid.New(), "pos.category", "category")
	require.NoError(t, err)
	assert.Empty(t, links, "ledger lookups are tenant scoped")
}

func TestGormRecordLinkRepository_Touch(t *testing.T) {
	db := testutil.NewSyncDB(t)
	repo := NewGormRecordLinkRepository(db)
	ctx := context.Background()

	link, err := integration.NewRecordLink(uuid.New(), "account.tax", 3, "tax", "t3")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, link))

	at := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.Touch(ctx, link.ID, at))

	links, err := repo.FindByModels(ctx, link.TenantID, "account.tax", "tax")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.True(t, links[0].SyncedAt.Equal(at))

	assert.ErrorIs(t, repo.Touch(ctx, uuid.New(), at), integration.ErrLinkNotFound)
}

func TestGormRecordLinkRepository_FindByModels_SQL(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	repo := NewGormRecordLinkRepository(mockDB.DB)

	tenantID := uuid.New()
	linkID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "remote_model", "remote_id", "local_model", "local_id", "synced_at", "created_at"}).
		AddRow(linkID, tenantID, "restaurant.floor", 7, "floor", "f7", now, now)

	mockDB.Mock.ExpectQuery(`SELECT \* FROM "record_links" WHERE tenant_id = \$1 AND remote_model = \$2 AND local_model = \$3 ORDER BY remote_id ASC`).
		WithArgs(tenantID, "restaurant.floor", "floor").
		WillReturnRows(rows)

	links, err := repo.FindByModels(context.Background(), tenantID, "restaurant.floor", "floor")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, linkID, links[0].ID)
	assert.Equal(t, int64(7), links[0].RemoteID)
	mockDB.ExpectationsWereMet(t)
}
