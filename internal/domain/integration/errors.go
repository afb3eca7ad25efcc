package integration

import "errors"

var (
	// ErrConnection indicates the remote system could not be reached or returned a fault
	ErrConnection = errors.New("integration: remote connection error")
	// ErrAuthentication indicates the remote system rejected the credentials
	ErrAuthentication = errors.New("integration: remote authentication failed")
	// ErrMappingConfig indicates a descriptor references a local field or relation that does not exist
	ErrMappingConfig = errors.New("integration: invalid mapping configuration")
	// ErrLocalRecordNotFound indicates a ledger entry points at a local record that no longer exists
	ErrLocalRecordNotFound = errors.New("integration: local record not found")
	// ErrDuplicateLink indicates a ledger uniqueness violation (concurrent run or corrupt data)
	ErrDuplicateLink = errors.New("integration: duplicate record link")
	// ErrLinkNotFound indicates no ledger entry exists
	ErrLinkNotFound = errors.New("integration: record link not found")
	// ErrCompanyNotFound indicates the requested company does not exist
	ErrCompanyNotFound = errors.New("integration: company not found")
	// ErrSyncInProgress indicates another run holds the lock for the same scope and direction
	ErrSyncInProgress = errors.New("integration: sync already in progress")
	// ErrUnknownLocalModel indicates a local model name missing from the local catalog
	ErrUnknownLocalModel = errors.New("integration: unknown local model")
)

// Validation errors
var (
	ErrLinkInvalidTenantID    = errors.New("integration: invalid tenant ID")
	ErrLinkInvalidRemoteID    = errors.New("integration: remote ID must be positive")
	ErrLinkInvalidRemoteModel = errors.New("integration: remote model is required")
	ErrLinkInvalidLocalModel  = errors.New("integration: local model is required")
	ErrLinkInvalidLocalID     = errors.New("integration: local ID is required")
	ErrImageInvalidField      = errors.New("integration: image field names are required")
	ErrImageInvalidHash       = errors.New("integration: content hash is required")
)
