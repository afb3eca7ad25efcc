package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormImageLinkRepository_SaveUpserts(t *testing.T) {
	db := testutil.NewSyncDB(t)
	repo := NewGormImageLinkRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	link, err := integration.NewRecordLink(tenantID, "product.product", 50, integration.LocalModelProduct, uuid.NewString())
	require.NoError(t, err)
	require.NoError(t, NewGormRecordLinkRepository(db).Create(ctx, link))

	img, err := integration.NewImageLink(link.ID, "image_128", "image")
	require.NoError(t, err)
	require.NoError(t, img.Record("hash-1", time.Now()))
	require.NoError(t, repo.Save(ctx, img))

	// A second entry for the same key with a different id updates the stored hash
	again, err := integration.NewImageLink(link.ID, "image_128", "image")
	require.NoError(t, err)
	require.NoError(t, again.Record("hash-2", time.Now()))
	require.NoError(t, repo.Save(ctx, again))

	links, err := repo.FindByModels(ctx, tenantID, "product.product", integration.LocalModelProduct)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "hash-2", links[0].ContentHash)
	assert.Equal(t, img.ID, links[0].ID)
}

func TestGormImageLinkRepository_FindByModels(t *testing.T) {
	db := testutil.NewSyncDB(t)
	repo := NewGormImageLinkRepository(db)
	records := NewGormRecordLinkRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	save := func(tenant uuid.UUID, remoteModel string, remoteID int64, localModel string) {
		t.Helper()
		link, err := integration.NewRecordLink(tenant, remoteModel, remoteID, localModel, uuid.NewString())
		require.NoError(t, err)
		require.NoError(t, records.Create(ctx, link))
		img, err := integration.NewImageLink(link.ID, "image_128", "image")
		require.NoError(t, err)
		require.NoError(t, img.Record("hash", time.Now()))
		require.NoError(t, repo.Save(ctx, img))
	}

	save(tenantID, "product.product", 1, integration.LocalModelProduct)
	save(tenantID, "product.product", 2, integration.LocalModelProduct)
	save(tenantID, "pos.category", 1, integration.LocalModelCategory)
	save(uuid.New(), "product.product", 1, integration.LocalModelProduct)

	tests := []struct {
		name        string
		tenantID    uuid.UUID
		remoteModel string
		localModel  string
		want        int
	}{
		{"matching pair", tenantID, "product.product", integration.LocalModelProduct, 2},
		{"other pair", tenantID, "pos.category", integration.LocalModelCategory, 1},
		{"unknown tenant", uuid.New(), "product.product", integration.LocalModelProduct, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := repo.FindByModels(ctx, tt.tenantID, tt.remoteModel, tt.localModel)
			require.NoError(t, err)
			assert.Len(t, links, tt.want)
		})
	}
}
