package integration

import (
	"fmt"
	"strings"
)

// FieldPair pairs a remote field name with a local field or relation name
type FieldPair struct {
	Remote string
	Local  string
}

// Pairs builds an ordered list of field pairs from remote/local name pairs.
// It panics on an odd argument count; it is intended for static declarations.
func Pairs(names ...string) []FieldPair {
	if len(names)%2 != 0 {
		panic("integration: Pairs needs an even number of names")
	}
	out := make([]FieldPair, 0, len(names)/2)
	for i := 0; i < len(names); i += 2 {
		out = append(out, FieldPair{Remote: names[i], Local: names[i+1]})
	}
	return out
}

// ValueFunc yields a value derived from the sync scope
type ValueFunc func(Company) any

// Default is a constant (or scope-derived) value for one field
type Default struct {
	Field string
	Value any
	Func  ValueFunc
}

// Literal declares a constant default
func Literal(field string, value any) Default {
	return Default{Field: field, Value: value}
}

// PerScope declares a default computed from the company being synced
func PerScope(field string, fn ValueFunc) Default {
	return Default{Field: field, Func: fn}
}

// Resolve evaluates the default for a scope
func (d Default) Resolve(c Company) any {
	if d.Func != nil {
		return d.Func(c)
	}
	return d.Value
}

// ComputeFunc derives a remote value from a local record
type ComputeFunc func(LocalRecord) (any, error)

// ComputedField is a remote field whose value is derived per local record
type ComputedField struct {
	Remote  string
	Compute ComputeFunc
}

// UnresolvedPolicy decides what happens to a relation whose remote target has
// no ledger entry yet.
type UnresolvedPolicy string

const (
	// UnresolvedDrop leaves the relation empty (single-valued) or omits the
	// missing target (many-valued)
	UnresolvedDrop UnresolvedPolicy = "drop"
	// UnresolvedDefer skips the record for this run so a later run can link it
	UnresolvedDefer UnresolvedPolicy = "defer"
)

// ModelMapping is the field mapping descriptor for one remote/local type pair
type ModelMapping struct {
	RemoteModel string
	LocalModel  string

	// Fields are flat remote->local field pairs
	Fields []FieldPair
	// ForeignKeys are single-valued remote relations -> local relation name
	ForeignKeys []FieldPair
	// ManyToMany are many-valued remote relations -> local relation name
	ManyToMany []FieldPair
	// Images are remote image fields -> local binary field
	Images []FieldPair

	// Defaults are local field values written when a record is created or updated inbound
	Defaults []Default
	// CreateDefaults are remote field values sent when a record is created outbound
	CreateDefaults []Default
	// Computed are remote fields derived from local records when pushing outbound
	Computed []ComputedField

	Unresolved UnresolvedPolicy
}

// Policy returns the unresolved-relation policy, defaulting to UnresolvedDrop
func (m *ModelMapping) Policy() UnresolvedPolicy {
	if m.Unresolved == "" {
		return UnresolvedDrop
	}
	return m.Unresolved
}

// Name returns a printable identifier for the mapping
func (m *ModelMapping) Name() string {
	return m.RemoteModel + "->" + m.LocalModel
}

// RemoteFields returns the union of remote field names the inbound engine reads.
// The remote "id" field is always included.
func (m *ModelMapping) RemoteFields() []string {
	seen := map[string]bool{"id": true}
	fields := []string{"id"}
	add := func(pairs []FieldPair) {
		for _, p := range pairs {
			if !seen[p.Remote] {
				seen[p.Remote] = true
				fields = append(fields, p.Remote)
			}
		}
	}
	add(m.Fields)
	add(m.ForeignKeys)
	add(m.ManyToMany)
	return fields
}

// ImageFields returns the remote image field names plus "id"
func (m *ModelMapping) ImageFields() []string {
	fields := []string{"id"}
	for _, p := range m.Images {
		fields = append(fields, p.Remote)
	}
	return fields
}

// Validate checks the descriptor shape. Binding against local schemas is a
// separate step performed by the application layer.
func (m *ModelMapping) Validate() error {
	if strings.TrimSpace(m.RemoteModel) == "" || strings.TrimSpace(m.LocalModel) == "" {
		return fmt.Errorf("%w: remote and local model are required", ErrMappingConfig)
	}
	switch m.Policy() {
	case UnresolvedDrop, UnresolvedDefer:
	default:
		return fmt.Errorf("%w: %s: unknown unresolved policy %q", ErrMappingConfig, m.Name(), m.Unresolved)
	}
	for _, group := range [][]FieldPair{m.Fields, m.ForeignKeys, m.ManyToMany, m.Images} {
		for _, p := range group {
			if p.Remote == "" || p.Local == "" {
				return fmt.Errorf("%w: %s: empty field name", ErrMappingConfig, m.Name())
			}
		}
	}
	for _, c := range m.Computed {
		if c.Remote == "" || c.Compute == nil {
			return fmt.Errorf("%w: %s: computed field needs a name and a function", ErrMappingConfig, m.Name())
		}
	}
	return nil
}
