package integration

import (
	"fmt"

	"github.com/erp/erpsync/internal/domain/integration"
)

// boundField is a descriptor field pair resolved against a local scalar field
type boundField struct {
	Remote string
	Field  integration.LocalField
}

// boundRelation is a descriptor field pair resolved against a local relation
type boundRelation struct {
	Remote   string
	Relation integration.LocalRelation
}

// boundDefault is an inbound default resolved against a local scalar field
// or, when Relation is set, a single-valued relation holding a local id
type boundDefault struct {
	Default  integration.Default
	Field    integration.LocalField
	Relation *integration.LocalRelation
}

// Plan is a descriptor bound to the local schema it writes to.
// Every local name referenced by the descriptor is resolved once, so the
// engines never look fields up by name per record.
type Plan struct {
	Mapping *integration.ModelMapping
	Schema  *integration.LocalSchema

	fields      []boundField
	foreignKeys []boundRelation
	manyToMany  []boundRelation
	images      []boundField
	defaults    []boundDefault
}

// Bind compiles a descriptor against the local catalog. Unknown local fields or
// relations, wrong relation cardinality, relations to unknown local types and
// non-binary image targets are mapping configuration errors.
func Bind(mapping *integration.ModelMapping, catalog integration.LocalCatalog) (*Plan, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	schema, err := catalog.Schema(mapping.LocalModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrMappingConfig, mapping.Name(), err)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	plan := &Plan{Mapping: mapping, Schema: schema}
	configErr := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", integration.ErrMappingConfig, mapping.Name(), fmt.Sprintf(format, args...))
	}

	for _, p := range mapping.Fields {
		f, ok := schema.Field(p.Local)
		if !ok {
			return nil, configErr("unknown local field %q", p.Local)
		}
		if f.Kind == integration.FieldBinary {
			return nil, configErr("field %q is binary; map it as an image", p.Local)
		}
		plan.fields = append(plan.fields, boundField{Remote: p.Remote, Field: f})
	}

	bindRelation := func(p integration.FieldPair, many bool) (boundRelation, error) {
		r, ok := schema.Relation(p.Local)
		if !ok {
			return boundRelation{}, configErr("unknown local relation %q", p.Local)
		}
		if r.Many != many {
			return boundRelation{}, configErr("relation %q has wrong cardinality", p.Local)
		}
		if _, err := catalog.Schema(r.Target); err != nil {
			return boundRelation{}, configErr("relation %q targets unknown model %q", p.Local, r.Target)
		}
		return boundRelation{Remote: p.Remote, Relation: r}, nil
	}
	for _, p := range mapping.ForeignKeys {
		br, err := bindRelation(p, false)
		if err != nil {
			return nil, err
		}
		plan.foreignKeys = append(plan.foreignKeys, br)
	}
	for _, p := range mapping.ManyToMany {
		br, err := bindRelation(p, true)
		if err != nil {
			return nil, err
		}
		plan.manyToMany = append(plan.manyToMany, br)
	}

	for _, p := range mapping.Images {
		f, ok := schema.Field(p.Local)
		if !ok {
			return nil, configErr("unknown image field %q", p.Local)
		}
		if f.Kind != integration.FieldBinary {
			return nil, configErr("image field %q is not binary", p.Local)
		}
		plan.images = append(plan.images, boundField{Remote: p.Remote, Field: f})
	}

	for _, d := range mapping.Defaults {
		if f, ok := schema.Field(d.Field); ok {
			plan.defaults = append(plan.defaults, boundDefault{Default: d, Field: f})
			continue
		}
		r, ok := schema.Relation(d.Field)
		if !ok || r.Many {
			return nil, configErr("unknown default field %q", d.Field)
		}
		plan.defaults = append(plan.defaults, boundDefault{Default: d, Relation: &r})
	}

	return plan, nil
}

// BindAll binds every descriptor, failing on the first configuration error
func BindAll(mappings []*integration.ModelMapping, catalog integration.LocalCatalog) ([]*Plan, error) {
	plans := make([]*Plan, 0, len(mappings))
	for _, m := range mappings {
		p, err := Bind(m, catalog)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Name returns the descriptor name
func (p *Plan) Name() string {
	return p.Mapping.Name()
}

// HasImages reports whether the plan maps any image field
func (p *Plan) HasImages() bool {
	return len(p.images) > 0
}

// relationTargets returns the distinct local models referenced by relations
func (p *Plan) relationTargets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]boundRelation{p.foreignKeys, p.manyToMany} {
		for _, r := range group {
			if !seen[r.Relation.Target] {
				seen[r.Relation.Target] = true
				out = append(out, r.Relation.Target)
			}
		}
	}
	return out
}
