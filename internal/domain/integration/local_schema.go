package integration

import "fmt"

// FieldKind is the storage kind of a local field
type FieldKind string

const (
	FieldText    FieldKind = "text"
	FieldInteger FieldKind = "integer"
	FieldDecimal FieldKind = "decimal"
	FieldBool    FieldKind = "bool"
	// FieldBinary holds a storage key (image fields)
	FieldBinary FieldKind = "binary"
)

// LocalField describes one scalar column of a local entity type
type LocalField struct {
	Name   string
	Column string
	Kind   FieldKind
}

// LocalRelation describes a reference from a local entity type to another.
// A single-valued relation is stored in Column on the owner table.
// A many-valued relation is stored in JoinTable with OwnerColumn/TargetColumn.
type LocalRelation struct {
	Name         string
	Target       string
	Many         bool
	Column       string
	JoinTable    string
	OwnerColumn  string
	TargetColumn string
}

// LocalSchema is the enumerable description of a local entity type.
// Local records are addressed by string id and scoped by TenantColumn.
type LocalSchema struct {
	Model        string
	Table        string
	IDColumn     string
	TenantColumn string
	Fields       []LocalField
	Relations    []LocalRelation
}

// Field looks up a scalar field by name
func (s *LocalSchema) Field(name string) (LocalField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return LocalField{}, false
}

// Relation looks up a relation by name
func (s *LocalSchema) Relation(name string) (LocalRelation, bool) {
	for _, r := range s.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return LocalRelation{}, false
}

// Validate checks that the schema is self-consistent
func (s *LocalSchema) Validate() error {
	if s.Model == "" || s.Table == "" || s.IDColumn == "" || s.TenantColumn == "" {
		return fmt.Errorf("%w: schema %q is incomplete", ErrMappingConfig, s.Model)
	}
	for _, r := range s.Relations {
		if r.Target == "" {
			return fmt.Errorf("%w: relation %s.%s has no target", ErrMappingConfig, s.Model, r.Name)
		}
		if r.Many && (r.JoinTable == "" || r.OwnerColumn == "" || r.TargetColumn == "") {
			return fmt.Errorf("%w: many relation %s.%s needs a join table", ErrMappingConfig, s.Model, r.Name)
		}
		if !r.Many && r.Column == "" {
			return fmt.Errorf("%w: relation %s.%s needs a column", ErrMappingConfig, s.Model, r.Name)
		}
	}
	return nil
}

// LocalCatalog resolves local model names to schemas
type LocalCatalog interface {
	Schema(model string) (*LocalSchema, error)
}

// StaticCatalog is a LocalCatalog backed by a map
type StaticCatalog map[string]*LocalSchema

// NewStaticCatalog indexes schemas by model name
func NewStaticCatalog(schemas ...*LocalSchema) StaticCatalog {
	c := make(StaticCatalog, len(schemas))
	for _, s := range schemas {
		c[s.Model] = s
	}
	return c
}

// Schema implements LocalCatalog
func (c StaticCatalog) Schema(model string) (*LocalSchema, error) {
	s, ok := c[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocalModel, model)
	}
	return s, nil
}

// LocalRecord is a local entity read through its schema: scalar fields by
// field name, single-valued relations by relation name (target local id).
type LocalRecord struct {
	ID     string
	Values map[string]any
}

// Get returns a value, or nil when absent
func (r LocalRecord) Get(name string) any {
	if r.Values == nil {
		return nil
	}
	return r.Values[name]
}

// String returns a value formatted as text; nil yields ""
func (r LocalRecord) String(name string) string {
	v := r.Get(name)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
