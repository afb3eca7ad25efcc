// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: Base persistence models (BaseModel, TenantModel)
// - integration.go: companies, identity ledger and image ledger
// - local.go: local entity tables kept in sync with the remote ERP
package models
