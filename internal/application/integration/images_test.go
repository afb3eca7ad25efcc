package integration_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appintegration "github.com/erp/erpsync/internal/application/integration"
	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/persistence/models"
)

func TestSyncImages_StoresOncePerContent(t *testing.T) {
	h := newHarness(t, appintegration.DefaultBatches())
	h.seedCatalog()
	ctx := context.Background()

	first, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)
	assert.Equal(t, 2, h.store.Puts())
	assert.Equal(t, 1, modelResult(t, first.Images, "pos.category").Updated)
	assert.Equal(t, 1, modelResult(t, first.Images, "product.template").Updated)
	assert.Equal(t, 1, modelResult(t, first.Images, "restaurant.floor").Skipped, "false image is skipped")
	assert.EqualValues(t, 2, h.count(&models.ImageLinkModel{}))

	category := h.load(integration.LocalModelCategory, h.localID("pos.category", 5, integration.LocalModelCategory))
	key, _ := category.Get("image").(string)
	assert.True(t, strings.HasSuffix(key, "-image.png"), key)
	assert.Contains(t, key, h.company.ID.String())

	second, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)
	assert.Equal(t, 2, h.store.Puts(), "unchanged images are not stored again")
	assert.Equal(t, 1, modelResult(t, second.Images, "pos.category").Skipped)
	assert.EqualValues(t, 2, h.count(&models.ImageLinkModel{}))
}

func TestSyncImages_ChangedContentIsStoredAgain(t *testing.T) {
	h := newHarness(t, appintegration.DefaultBatches())
	h.seedCatalog()
	ctx := context.Background()

	_, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)
	categoryID := h.localID("pos.category", 5, integration.LocalModelCategory)
	before := h.load(integration.LocalModelCategory, categoryID).Get("image")

	changed := append(append([]byte(nil), pngBytes...), 0x01)
	h.remote.Put("pos.category", 5, map[string]any{"name": "Drinks", "image_128": encode(changed)})
	res, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)

	assert.Equal(t, 1, modelResult(t, res.Images, "pos.category").Updated)
	assert.Equal(t, 3, h.store.Puts())
	assert.NotEqual(t, before, h.load(integration.LocalModelCategory, categoryID).Get("image"))
	assert.EqualValues(t, 2, h.count(&models.ImageLinkModel{}))
}

func TestSyncImages_RejectsNonImagePayload(t *testing.T) {
	h := newHarness(t, appintegration.DefaultBatches())
	h.seedCatalog()
	h.remote.Put("pos.category", 5, map[string]any{"name": "Drinks", "image_128": encode([]byte("plain text, not a picture"))})

	res, err := h.orchestrator.SyncInbound(context.Background(), h.company)
	require.NoError(t, err)
	assert.Equal(t, 1, modelResult(t, res.Images, "pos.category").Failed)
	assert.Equal(t, "PARTIAL", res.Status())
	assert.Equal(t, 1, h.store.Puts(), "only the product image is stored")
}
