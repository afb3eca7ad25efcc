package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RestaurantModel is a point of sale.
type RestaurantModel struct {
	TenantModel
	Name            string     `gorm:"type:varchar(200);not null;default:''"`
	CreditProductID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (RestaurantModel) TableName() string { return "restaurants" }

// FloorModel is a room of a restaurant.
type FloorModel struct {
	TenantModel
	Name         string     `gorm:"type:varchar(200);not null;default:''"`
	Sequence     int64      `gorm:"not null;default:0"`
	RestaurantID *uuid.UUID `gorm:"type:uuid;index"`
	Image        string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (FloorModel) TableName() string { return "floors" }

// TableModel is a table on a floor.
type TableModel struct {
	TenantModel
	Name     string     `gorm:"type:varchar(200);not null;default:''"`
	IsActive bool       `gorm:"not null;default:true"`
	Seats    int64      `gorm:"not null;default:0"`
	FloorID  *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (TableModel) TableName() string { return "restaurant_tables" }

// CategoryModel is a point of sale product category.
type CategoryModel struct {
	TenantModel
	Name     string `gorm:"type:varchar(200);not null;default:''"`
	Sequence int64  `gorm:"not null;default:0"`
	Image    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string { return "categories" }

// TaxModel is a sales tax.
type TaxModel struct {
	TenantModel
	Name        string          `gorm:"type:varchar(200);not null;default:''"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description string          `gorm:"type:text"`
	Sequence    int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (TaxModel) TableName() string { return "taxes" }

// ProductModel is a sellable product.
type ProductModel struct {
	TenantModel
	Name        string          `gorm:"type:varchar(200);not null;default:''"`
	Description string          `gorm:"type:text"`
	Sequence    int64           `gorm:"not null;default:0"`
	IsAvailable bool            `gorm:"not null;default:false"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Image       string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string { return "products" }

// ProductCategoryModel joins products and categories.
type ProductCategoryModel struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (ProductCategoryModel) TableName() string { return "product_categories" }

// ProductTaxModel joins products and taxes.
type ProductTaxModel struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaxID     uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (ProductTaxModel) TableName() string { return "product_taxes" }

// CustomerModel is a guest account.
type CustomerModel struct {
	TenantModel
	FirstName string `gorm:"type:varchar(100);not null;default:''"`
	LastName  string `gorm:"type:varchar(100);not null;default:''"`
	Email     string `gorm:"type:varchar(255);not null;default:''"`
	Phone     string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string { return "customers" }

// OrderModel is a settled point of sale order.
type OrderModel struct {
	TenantModel
	Reference    string          `gorm:"type:varchar(100);not null;default:''"`
	AmountTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountTax    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RestaurantID *uuid.UUID      `gorm:"type:uuid;index"`
	TableID      *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerID   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string { return "orders" }

// SyncModels returns every model of the sync schema, in migration order.
func SyncModels() []any {
	return []any{
		&CompanyModel{},
		&RecordLinkModel{},
		&ImageLinkModel{},
		&RestaurantModel{},
		&FloorModel{},
		&TableModel{},
		&CategoryModel{},
		&TaxModel{},
		&ProductModel{},
		&ProductCategoryModel{},
		&ProductTaxModel{},
		&CustomerModel{},
		&OrderModel{},
	}
}
