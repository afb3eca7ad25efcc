package integration

// Local model names of the entity types kept in sync
const (
	LocalModelRestaurant = "restaurant"
	LocalModelFloor      = "floor"
	LocalModelTable      = "table"
	LocalModelCategory   = "category"
	LocalModelTax        = "tax"
	LocalModelProduct    = "product"
	LocalModelCustomer   = "customer"
	LocalModelOrder      = "order"
)
