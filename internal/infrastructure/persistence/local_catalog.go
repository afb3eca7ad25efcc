package persistence

import (
	"github.com/erp/erpsync/internal/domain/integration"
)

func tenantSchema(model, table string, fields []integration.LocalField, relations ...integration.LocalRelation) *integration.LocalSchema {
	return &integration.LocalSchema{
		Model:        model,
		Table:        table,
		IDColumn:     "id",
		TenantColumn: "tenant_id",
		Fields:       fields,
		Relations:    relations,
	}
}

func field(name string, kind integration.FieldKind) integration.LocalField {
	return integration.LocalField{Name: name, Column: name, Kind: kind}
}

func belongsTo(name, target string) integration.LocalRelation {
	return integration.LocalRelation{Name: name, Target: target, Column: name + "_id"}
}

func manyToMany(name, target, joinTable, ownerColumn, targetColumn string) integration.LocalRelation {
	return integration.LocalRelation{
		Name:         name,
		Target:       target,
		Many:         true,
		JoinTable:    joinTable,
		OwnerColumn:  ownerColumn,
		TargetColumn: targetColumn,
	}
}

// LocalCatalog describes the local entity tables the sync engines write to.
// It must stay in line with the models package and the SQL migrations.
func LocalCatalog() integration.StaticCatalog {
	return integration.NewStaticCatalog(
		tenantSchema(integration.LocalModelRestaurant, "restaurants",
			[]integration.LocalField{field("name", integration.FieldText)},
			belongsTo("credit_product", integration.LocalModelProduct),
		),
		tenantSchema(integration.LocalModelFloor, "floors",
			[]integration.LocalField{
				field("name", integration.FieldText),
				field("sequence", integration.FieldInteger),
				field("image", integration.FieldBinary),
			},
			belongsTo("restaurant", integration.LocalModelRestaurant),
		),
		tenantSchema(integration.LocalModelTable, "restaurant_tables",
			[]integration.LocalField{
				field("name", integration.FieldText),
				field("is_active", integration.FieldBool),
				field("seats", integration.FieldInteger),
			},
			belongsTo("floor", integration.LocalModelFloor),
		),
		tenantSchema(integration.LocalModelCategory, "categories",
			[]integration.LocalField{
				field("name", integration.FieldText),
				field("sequence", integration.FieldInteger),
				field("image", integration.FieldBinary),
			},
		),
		tenantSchema(integration.LocalModelTax, "taxes",
			[]integration.LocalField{
				field("name", integration.FieldText),
				field("amount", integration.FieldDecimal),
				field("description", integration.FieldText),
				field("sequence", integration.FieldInteger),
			},
		),
		tenantSchema(integration.LocalModelProduct, "products",
			[]integration.LocalField{
				field("name", integration.FieldText),
				field("description", integration.FieldText),
				field("sequence", integration.FieldInteger),
				field("is_available", integration.FieldBool),
				field("price", integration.FieldDecimal),
				field("image", integration.FieldBinary),
			},
			manyToMany("categories", integration.LocalModelCategory, "product_categories", "product_id", "category_id"),
			manyToMany("taxes", integration.LocalModelTax, "product_taxes", "product_id", "tax_id"),
		),
		tenantSchema(integration.LocalModelCustomer, "customers",
			[]integration.LocalField{
				field("first_name", integration.FieldText),
				field("last_name", integration.FieldText),
				field("email", integration.FieldText),
				field("phone", integration.FieldText),
			},
		),
		tenantSchema(integration.LocalModelOrder, "orders",
			[]integration.LocalField{
				field("reference", integration.FieldText),
				field("amount_total", integration.FieldDecimal),
				field("amount_tax", integration.FieldDecimal),
				field("amount_paid", integration.FieldDecimal),
			},
			belongsTo("restaurant", integration.LocalModelRestaurant),
			belongsTo("table", integration.LocalModelTable),
			belongsTo("customer", integration.LocalModelCustomer),
		),
	)
}
