package integration

// ---------------------------------------------------------------------------
// Sync Direction
// ---------------------------------------------------------------------------

// SyncDirection represents the direction of a sync run
type SyncDirection string

const (
	// SyncDirectionInbound pulls remote records into the local store
	SyncDirectionInbound SyncDirection = "INBOUND"
	// SyncDirectionOutbound pushes unlinked local records to the remote system
	SyncDirectionOutbound SyncDirection = "OUTBOUND"
	// SyncDirectionImages pulls remote image fields of linked records
	SyncDirectionImages SyncDirection = "IMAGES"
)

// IsValid returns true if the direction is valid
func (d SyncDirection) IsValid() bool {
	switch d {
	case SyncDirectionInbound, SyncDirectionOutbound, SyncDirectionImages:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncDirection
func (d SyncDirection) String() string {
	return string(d)
}

// LockKey returns the run lock key for a company and direction
func (d SyncDirection) LockKey(c Company) string {
	return "erpsync:lock:" + c.ID.String() + ":" + string(d)
}
