// Package integration contains the ERP synchronization bounded context.
// It describes how records held by the remote ERP map onto local records
// and keeps the identity correspondence between the two stores.
//
// Key concepts:
//   - Company: the tenant scope every synced record and remote session belongs to
//   - RecordLink: identity ledger entry (remote model/id <-> local model/id)
//   - ImageLink: last seen content hash of a remote image field
//   - ModelMapping: declarative field mapping for one remote/local type pair
//   - LocalSchema: enumerable description of a local entity type
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
