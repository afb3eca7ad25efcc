package persistence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// recordLinksTable is the identity ledger table joined by ListUnlinked
const recordLinksTable = "record_links"

// GormLocalStore implements integration.LocalStore over the column maps of the
// local catalog. It writes through map based statements, so one store serves
// every local entity type.
type GormLocalStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormLocalStore creates a new GormLocalStore
func NewGormLocalStore(db *gorm.DB) *GormLocalStore {
	return &GormLocalStore{db: db, now: time.Now}
}

// columns maps field and single relation names to column values
func columns(schema *integration.LocalSchema, values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values)+1)
	for name, v := range values {
		if f, ok := schema.Field(name); ok {
			out[f.Column] = v
			continue
		}
		if r, ok := schema.Relation(name); ok && !r.Many {
			out[r.Column] = v
			continue
		}
		return nil, fmt.Errorf("%w: %s has no field %q", integration.ErrMappingConfig, schema.Model, name)
	}
	return out, nil
}

// Create inserts a record scoped to tenantID and returns its id
func (s *GormLocalStore) Create(ctx context.Context, schema *integration.LocalSchema, tenantID uuid.UUID, values map[string]any) (string, error) {
	row, err := columns(schema, values)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	now := s.now()
	row[schema.IDColumn] = id
	row[schema.TenantColumn] = tenantID.String()
	row["created_at"] = now
	row["updated_at"] = now

	if err := s.db.WithContext(ctx).Table(schema.Table).Create(row).Error; err != nil {
		return "", fmt.Errorf("create %s: %w", schema.Model, err)
	}
	return id, nil
}

// Update overwrites the given fields of an existing record
func (s *GormLocalStore) Update(ctx context.Context, schema *integration.LocalSchema, tenantID uuid.UUID, id string, values map[string]any) error {
	row, err := columns(schema, values)
	if err != nil {
		return err
	}
	row["updated_at"] = s.now()

	result := s.db.WithContext(ctx).
		Table(schema.Table).
		Where(schema.IDColumn+" = ? AND "+schema.TenantColumn+" = ?", id, tenantID.String()).
		Updates(row)
	if result.Error != nil {
		return fmt.Errorf("update %s: %w", schema.Model, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %s", integration.ErrLocalRecordNotFound, schema.Model, id)
	}
	return nil
}

// ReplaceRelation replaces the full target set of a many-valued relation
func (s *GormLocalStore) ReplaceRelation(ctx context.Context, schema *integration.LocalSchema, relation integration.LocalRelation, id string, targetIDs []string) error {
	if !relation.Many {
		return fmt.Errorf("%w: %s.%s is not a many relation", integration.ErrMappingConfig, schema.Model, relation.Name)
	}
	db := s.db.WithContext(ctx)
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
		db.Statement.Quote(relation.JoinTable), db.Statement.Quote(relation.OwnerColumn))
	if err := db.Exec(stmt, id).Error; err != nil {
		return fmt.Errorf("clear %s.%s: %w", schema.Model, relation.Name, err)
	}

	seen := make(map[string]bool, len(targetIDs))
	rows := make([]map[string]any, 0, len(targetIDs))
	for _, target := range targetIDs {
		if seen[target] {
			continue
		}
		seen[target] = true
		rows = append(rows, map[string]any{relation.OwnerColumn: id, relation.TargetColumn: target})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := db.Table(relation.JoinTable).Create(rows).Error; err != nil {
		return fmt.Errorf("set %s.%s: %w", schema.Model, relation.Name, err)
	}
	return nil
}

// RelationIDs returns the target ids of a many-valued relation
func (s *GormLocalStore) RelationIDs(ctx context.Context, relation integration.LocalRelation, id string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Table(relation.JoinTable).
		Where(relation.OwnerColumn+" = ?", id).
		Pluck(relation.TargetColumn, &ids).Error
	return ids, err
}

// ListUnlinked returns the tenant's records that have no ledger entry pairing
// them with remoteModel. The anti-join runs in the database, so the number of
// linked records never reaches the bind parameter limit.
func (s *GormLocalStore) ListUnlinked(ctx context.Context, schema *integration.LocalSchema, tenantID uuid.UUID, remoteModel string) ([]integration.LocalRecord, error) {
	db := s.db.WithContext(ctx)
	table := db.Statement.Quote(schema.Table)
	linked := db.Session(&gorm.Session{NewDB: true}).
		Table(recordLinksTable+" AS rl").
		Select("1").
		Where("rl.tenant_id = ? AND rl.remote_model = ? AND rl.local_model = ?", tenantID.String(), remoteModel, schema.Model).
		Where(fmt.Sprintf("rl.local_id = CAST(%s.%s AS TEXT)", table, db.Statement.Quote(schema.IDColumn)))

	query := db.
		Table(schema.Table).
		Where(schema.TenantColumn+" = ?", tenantID.String()).
		Where("NOT EXISTS (?)", linked)

	var rows []map[string]any
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", schema.Model, err)
	}

	records := make([]integration.LocalRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toLocalRecord(schema, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Load returns one record by id
func (s *GormLocalStore) Load(ctx context.Context, schema *integration.LocalSchema, tenantID uuid.UUID, id string) (integration.LocalRecord, error) {
	var rows []map[string]any
	err := s.db.WithContext(ctx).
		Table(schema.Table).
		Where(schema.IDColumn+" = ? AND "+schema.TenantColumn+" = ?", id, tenantID.String()).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return integration.LocalRecord{}, fmt.Errorf("load %s: %w", schema.Model, err)
	}
	if len(rows) == 0 {
		return integration.LocalRecord{}, fmt.Errorf("%w: %s %s", integration.ErrLocalRecordNotFound, schema.Model, id)
	}
	return toLocalRecord(schema, rows[0])
}

func toLocalRecord(schema *integration.LocalSchema, row map[string]any) (integration.LocalRecord, error) {
	rec := integration.LocalRecord{
		ID:     asString(row[schema.IDColumn]),
		Values: make(map[string]any, len(schema.Fields)+len(schema.Relations)),
	}
	for _, f := range schema.Fields {
		v, err := fromColumn(f.Kind, row[f.Column])
		if err != nil {
			return rec, fmt.Errorf("%s.%s: %w", schema.Model, f.Name, err)
		}
		rec.Values[f.Name] = v
	}
	for _, r := range schema.Relations {
		if r.Many {
			continue
		}
		if v := row[r.Column]; v != nil {
			rec.Values[r.Name] = asString(v)
		}
	}
	return rec, nil
}

// fromColumn normalizes driver values: SQLite returns integers for booleans
// and PostgreSQL returns numeric columns as text.
func fromColumn(kind integration.FieldKind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case integration.FieldText, integration.FieldBinary:
		return asString(v), nil
	case integration.FieldInteger:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int32:
			return int64(n), nil
		case int:
			return int64(n), nil
		case float64:
			return int64(n), nil
		default:
			return strconv.ParseInt(asString(v), 10, 64)
		}
	case integration.FieldDecimal:
		switch n := v.(type) {
		case float64:
			return decimal.NewFromFloat(n), nil
		case int64:
			return decimal.NewFromInt(n), nil
		default:
			return decimal.NewFromString(asString(v))
		}
	case integration.FieldBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		default:
			return strconv.ParseBool(asString(v))
		}
	}
	return v, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

var _ integration.LocalStore = (*GormLocalStore)(nil)
