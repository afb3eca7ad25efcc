package integration_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appintegration "github.com/erp/erpsync/internal/application/integration"
	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/persistence"
	"github.com/erp/erpsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
)

func TestSyncInbound_CreatesThenUpdates(t *testing.T) {
	h := newHarness(t, appintegration.DefaultBatches())
	h.seedCatalog()
	ctx := context.Background()

	first, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", first.Status())
	for _, res := range first.Models {
		assert.Equal(t, 1, res.Created, res.RemoteModel)
		assert.Zero(t, res.Updated, res.RemoteModel)
		assert.Zero(t, res.Unresolved, res.RemoteModel)
	}
	links := h.linkCount()
	assert.EqualValues(t, 6, links)

	second, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)
	for _, res := range second.Models {
		assert.Zero(t, res.Created, res.RemoteModel)
		assert.Equal(t, 1, res.Updated, res.RemoteModel)
	}
	assert.Equal(t, links, h.linkCount())
	assert.EqualValues(t, 1, h.count(&models.ProductModel{}))
	assert.EqualValues(t, 1, h.count(&models.TableModel{}))
}

func TestSyncInbound_MapsValuesAndRelations(t *testing.T) {
	h := newHarness(t, appintegration.DefaultBatches())
	h.seedCatalog()

	_, err := h.orchestrator.SyncInbound(context.Background(), h.company)
	require.NoError(t, err)

	restaurantID := h.localID("pos.config", 1, integration.LocalModelRestaurant)
	floorID := h.localID("restaurant.floor", 10, integration.LocalModelFloor)
	floor := h.load(integration.LocalModelFloor, floorID)
	assert.Equal(t, "Ground", floor.Get("name"))
	assert.Equal(t, restaurantID, floor.Get("restaurant"))

	table := h.load(integration.LocalModelTable, h.localID("restaurant.table", 100, integration.LocalModelTable))
	assert.Equal(t, floorID, table.Get("floor"))
	assert.Equal(t, true, table.Get("is_active"))
	assert.EqualValues(t, 4, table.Get("seats"))

	tax := h.load(integration.LocalModelTax, h.localID("account.tax", 7, integration.LocalModelTax))
	assert.Equal(t, "", tax.Get("description"), "false sentinel maps to empty text")
	assert.True(t, decimal.NewFromInt(21).Equal(tax.Get("amount").(decimal.Decimal)))

	productID := h.localID("product.template", 50, integration.LocalModelProduct)
	product := h.load(integration.LocalModelProduct, productID)
	assert.Equal(t, "Cola", product.Get("name"))
	assert.Equal(t, "", product.Get("description"))
	assert.Equal(t, true, product.Get("is_available"))
	assert.True(t, decimal.RequireFromString("2.5").Equal(product.Get("price").(decimal.Decimal)))

	schema := h.schema(integration.LocalModelProduct)
	categories, _ := schema.Relation("categories")
	ids, err := h.local.RelationIDs(context.Background(), categories, productID)
	require.NoError(t, err)
	assert.Equal(t, []string{h.localID("pos.category", 5, integration.LocalModelCategory)}, ids)
}

func TestSyncInbound_ReplacesManyToMany(t *testing.T) {
	h := newHarness(t, appintegration.DefaultBatches())
	h.seedCatalog()
	h.remote.Put("account.tax", 8, map[string]any{"name": "Reduced", "amount": 10.0})
	ctx := context.Background()

	_, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)

	h.remote.Put("product.template", 50, map[string]any{
		"name": "Cola", "pos_categ_ids": []any{5}, "taxes_id": []any{8},
	})
	_, err = h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)

	productID := h.localID("product.template", 50, integration.LocalModelProduct)
	taxes, _ := h.schema(integration.LocalModelProduct).Relation("taxes")
	ids, err := h.local.RelationIDs(ctx, taxes, productID)
	require.NoError(t, err)
	assert.Equal(t, []string{h.localID("account.tax", 8, integration.LocalModelTax)}, ids)
	assert.EqualValues(t, 1, h.count(&models.ProductTaxModel{}))
}

func TestSyncInbound_ConvergesWhenTargetsComeLater(t *testing.T) {
	batches := appintegration.Batches{
		Inbound: []*integration.ModelMapping{
			appintegration.TableMapping,
			appintegration.FloorMapping,
			appintegration.RestaurantMapping,
		},
	}
	h := newHarness(t, batches)
	h.seedCatalog()
	ctx := context.Background()

	first, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)
	table := modelResult(t, first.Models, "restaurant.table")
	assert.Equal(t, 1, table.Created)
	assert.Equal(t, 1, table.Unresolved)

	tableID := h.localID("restaurant.table", 100, integration.LocalModelTable)
	assert.Nil(t, h.load(integration.LocalModelTable, tableID).Get("floor"))

	second, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)
	for _, res := range second.Models {
		assert.Zero(t, res.Unresolved, res.RemoteModel)
		assert.Equal(t, 1, res.Updated, res.RemoteModel)
	}
	assert.Equal(t,
		h.localID("restaurant.floor", 10, integration.LocalModelFloor),
		h.load(integration.LocalModelTable, tableID).Get("floor"),
	)
}

func TestSyncInbound_DeferPolicySkipsUnresolved(t *testing.T) {
	batches := appintegration.Batches{
		Inbound: []*integration.ModelMapping{appintegration.TableMapping},
	}.WithPolicy(integration.UnresolvedDefer)
	h := newHarness(t, batches)
	h.seedCatalog()

	res, err := h.orchestrator.SyncInbound(context.Background(), h.company)
	require.NoError(t, err)
	table := modelResult(t, res.Models, "restaurant.table")
	assert.Equal(t, 1, table.Deferred)
	assert.Zero(t, table.Created)
	assert.Zero(t, h.linkCount())
}

func TestSyncInbound_CountsBadRecordsAndContinues(t *testing.T) {
	batches := appintegration.Batches{
		Inbound: []*integration.ModelMapping{appintegration.TableMapping},
	}
	h := newHarness(t, batches)
	h.remote.Put("restaurant.table", 1, map[string]any{"name": "T1", "active": true, "seats": "many"})
	h.remote.Put("restaurant.table", 2, map[string]any{"name": "T2", "active": true, "seats": 2})

	res, err := h.orchestrator.SyncInbound(context.Background(), h.company)
	require.NoError(t, err)
	table := modelResult(t, res.Models, "restaurant.table")
	assert.Equal(t, 1, table.Failed)
	assert.Equal(t, 1, table.Created)
	assert.Equal(t, "PARTIAL", res.Status())
}

func TestSyncInbound_MappingErrorBeforeConnect(t *testing.T) {
	broken := &integration.ModelMapping{
		RemoteModel: "restaurant.table",
		LocalModel:  integration.LocalModelTable,
		Fields:      integration.Pairs("name", "title"),
	}
	h := newHarness(t, appintegration.Batches{Inbound: []*integration.ModelMapping{broken}})
	h.seedCatalog()

	_, err := h.orchestrator.SyncInbound(context.Background(), h.company)
	require.ErrorIs(t, err, integration.ErrMappingConfig)
	assert.Empty(t, h.connector.Connects())
	assert.Zero(t, h.remote.Calls("search", "restaurant.table"))
	assert.Zero(t, h.linkCount())
}

func TestSyncInbound_RenameUpdatesInPlace(t *testing.T) {
	h := newHarness(t, appintegration.Batches{
		Inbound: []*integration.ModelMapping{appintegration.CategoryMapping},
	})
	h.remote.Put("pos.category", 10, map[string]any{"name": "Drinks"})
	ctx := context.Background()

	_, err := h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)
	categoryID := h.localID("pos.category", 10, integration.LocalModelCategory)
	assert.Equal(t, "Drinks", h.load(integration.LocalModelCategory, categoryID).Get("name"))

	h.remote.Put("pos.category", 10, map[string]any{"name": "Beverages"})
	_, err = h.orchestrator.SyncInbound(ctx, h.company)
	require.NoError(t, err)

	assert.Equal(t, categoryID, h.localID("pos.category", 10, integration.LocalModelCategory))
	assert.Equal(t, "Beverages", h.load(integration.LocalModelCategory, categoryID).Get("name"))
	assert.EqualValues(t, 1, h.linkCount())
	assert.EqualValues(t, 1, h.count(&models.CategoryModel{}))
}

// racingLinks inserts a competing ledger entry right after the engine loaded
// its index, as a concurrent run would.
type racingLinks struct {
	*persistence.GormRecordLinkRepository
	once     sync.Once
	remoteID int64
}

func (r *racingLinks) FindByModels(ctx context.Context, tenantID uuid.UUID, remoteModel, localModel string) ([]integration.RecordLink, error) {
	links, err := r.GormRecordLinkRepository.FindByModels(ctx, tenantID, remoteModel, localModel)
	if err != nil || remoteModel != "pos.category" {
		return links, err
	}
	r.once.Do(func() {
		var link *integration.RecordLink
		link, err = integration.NewRecordLink(tenantID, remoteModel, r.remoteID, localModel, uuid.NewString())
		if err == nil {
			err = r.GormRecordLinkRepository.Create(ctx, link)
		}
	})
	return links, err
}

func TestSyncInbound_DuplicateLinkFailsOnlyThatRecord(t *testing.T) {
	h := newHarness(t,
		appintegration.Batches{Inbound: []*integration.ModelMapping{appintegration.CategoryMapping}},
		withLinkReader(func(repo *persistence.GormRecordLinkRepository) integration.RecordLinkRepository {
			return &racingLinks{GormRecordLinkRepository: repo, remoteID: 5}
		}),
	)
	h.remote.Put("pos.category", 5, map[string]any{"name": "Drinks"})
	h.remote.Put("pos.category", 6, map[string]any{"name": "Food"})

	res, err := h.orchestrator.SyncInbound(context.Background(), h.company)
	require.NoError(t, err)
	category := modelResult(t, res.Models, "pos.category")
	assert.Equal(t, 1, category.Failed)
	assert.Equal(t, 1, category.Created)
	assert.Equal(t, "PARTIAL", res.Status())

	// the local row of the losing record was rolled back with its link
	assert.EqualValues(t, 1, h.count(&models.CategoryModel{}))
	assert.EqualValues(t, 2, h.linkCount())
	food := h.load(integration.LocalModelCategory, h.localID("pos.category", 6, integration.LocalModelCategory))
	assert.Equal(t, "Food", food.Get("name"))

	warns := h.logs.FilterMessage("Failed to sync remote record").All()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].ContextMap()["error"], integration.ErrDuplicateLink.Error())
}
