package integration

import (
	"fmt"
	"strings"

	"github.com/erp/erpsync/internal/domain/integration"
)

// Batches holds the ordered descriptor lists of each direction.
// Inbound order matters: relation targets must be synced before the
// descriptors that reference them.
type Batches struct {
	Inbound  []*integration.ModelMapping
	Images   []*integration.ModelMapping
	Outbound []*integration.ModelMapping
}

// WithPolicy returns a copy of the batches where every descriptor that does not
// set an unresolved policy uses policy
func (b Batches) WithPolicy(policy integration.UnresolvedPolicy) Batches {
	if policy == "" {
		return b
	}
	apply := func(in []*integration.ModelMapping) []*integration.ModelMapping {
		out := make([]*integration.ModelMapping, len(in))
		for i, m := range in {
			copied := *m
			if copied.Unresolved == "" {
				copied.Unresolved = policy
			}
			out[i] = &copied
		}
		return out
	}
	return Batches{Inbound: apply(b.Inbound), Images: apply(b.Images), Outbound: apply(b.Outbound)}
}

// Restaurant point-of-sale configuration
var RestaurantMapping = &integration.ModelMapping{
	RemoteModel: "pos.config",
	LocalModel:  integration.LocalModelRestaurant,
	Fields:      integration.Pairs("name", "name"),
	Defaults: []integration.Default{
		integration.PerScope("credit_product", func(c integration.Company) any {
			if c.CreditProductID == nil {
				return nil
			}
			return c.CreditProductID.String()
		}),
	},
}

var FloorMapping = &integration.ModelMapping{
	RemoteModel: "restaurant.floor",
	LocalModel:  integration.LocalModelFloor,
	Fields:      integration.Pairs("name", "name", "sequence", "sequence"),
	ForeignKeys: integration.Pairs("pos_config_id", "restaurant"),
	Images:      integration.Pairs("background_image", "image"),
}

var TableMapping = &integration.ModelMapping{
	RemoteModel: "restaurant.table",
	LocalModel:  integration.LocalModelTable,
	Fields:      integration.Pairs("name", "name", "active", "is_active", "seats", "seats"),
	ForeignKeys: integration.Pairs("floor_id", "floor"),
}

var CategoryMapping = &integration.ModelMapping{
	RemoteModel: "pos.category",
	LocalModel:  integration.LocalModelCategory,
	Fields:      integration.Pairs("name", "name", "sequence", "sequence"),
	Images:      integration.Pairs("image_128", "image"),
}

var TaxMapping = &integration.ModelMapping{
	RemoteModel: "account.tax",
	LocalModel:  integration.LocalModelTax,
	Fields: integration.Pairs(
		"name", "name",
		"amount", "amount",
		"description", "description",
		"sequence", "sequence",
	),
}

var ProductMapping = &integration.ModelMapping{
	RemoteModel: "product.template",
	LocalModel:  integration.LocalModelProduct,
	Fields: integration.Pairs(
		"name", "name",
		"description", "description",
		"sequence", "sequence",
		"available_in_pos", "is_available",
		"list_price", "price",
	),
	ManyToMany: integration.Pairs(
		"pos_categ_ids", "categories",
		"taxes_id", "taxes",
	),
	Images: integration.Pairs("image_128", "image"),
}

// CustomerMapping pushes local customers as portal users
var CustomerMapping = &integration.ModelMapping{
	RemoteModel: "res.users",
	LocalModel:  integration.LocalModelCustomer,
	Fields:      integration.Pairs("email", "email"),
	CreateDefaults: []integration.Default{
		integration.Literal("active", true),
		// portal group selection
		integration.Literal("sel_groups_1_8_9", 9),
		integration.PerScope("company_id", remoteCompany),
	},
	Computed: []integration.ComputedField{
		{Remote: "name", Compute: customerName},
		{Remote: "login", Compute: customerLogin},
	},
}

// OrderMapping pushes closed local orders. Orders whose table is not linked
// yet wait for a later run.
var OrderMapping = &integration.ModelMapping{
	RemoteModel: "pos.order",
	LocalModel:  integration.LocalModelOrder,
	Fields: integration.Pairs(
		"pos_reference", "reference",
		"amount_total", "amount_total",
		"amount_tax", "amount_tax",
		"amount_paid", "amount_paid",
	),
	ForeignKeys: integration.Pairs(
		"config_id", "restaurant",
		"table_id", "table",
	),
	CreateDefaults: []integration.Default{
		integration.Literal("amount_return", 0),
		integration.PerScope("company_id", remoteCompany),
	},
	Unresolved: integration.UnresolvedDefer,
}

// DefaultBatches returns the descriptor lists used by the service
func DefaultBatches() Batches {
	return Batches{
		Inbound: []*integration.ModelMapping{
			RestaurantMapping,
			FloorMapping,
			TableMapping,
			CategoryMapping,
			TaxMapping,
			ProductMapping,
		},
		Images: []*integration.ModelMapping{
			FloorMapping,
			CategoryMapping,
			ProductMapping,
		},
		Outbound: []*integration.ModelMapping{
			CustomerMapping,
			OrderMapping,
		},
	}
}

func remoteCompany(c integration.Company) any {
	if c.RemoteID <= 0 {
		return false
	}
	return c.RemoteID
}

func customerName(r integration.LocalRecord) (any, error) {
	name := strings.TrimSpace(r.String("first_name") + " " + r.String("last_name"))
	if name == "" {
		name = r.String("email")
	}
	if name == "" {
		return nil, fmt.Errorf("customer %s has neither name nor email", r.ID)
	}
	return name, nil
}

func customerLogin(r integration.LocalRecord) (any, error) {
	if login := r.String("email"); login != "" {
		return login, nil
	}
	return nil, fmt.Errorf("customer %s has no email to use as login", r.ID)
}
