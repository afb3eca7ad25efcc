package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/erp/erpsync/internal/domain/integration"
)

// FakeRemote is an in-memory remote ERP. Records are returned after a JSON
// round trip, so numbers arrive as float64 like on the wire.
type FakeRemote struct {
	mu      sync.Mutex
	records map[string]map[int64]map[string]any
	nextID  int64
	calls   map[string]int
	created map[string][]map[string]any

	// CreateErr, when set, is returned by Create for the named model
	CreateErr map[string]error
}

// NewFakeRemote creates an empty FakeRemote
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		records:   make(map[string]map[int64]map[string]any),
		nextID:    1000,
		calls:     make(map[string]int),
		created:   make(map[string][]map[string]any),
		CreateErr: make(map[string]error),
	}
}

// Put stores or replaces a remote record
func (f *FakeRemote) Put(model string, id int64, fields map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[model] == nil {
		f.records[model] = make(map[int64]map[string]any)
	}
	rec := map[string]any{"id": id}
	for k, v := range fields {
		rec[k] = v
	}
	f.records[model][id] = rec
}

// Calls returns how often op ("search", "read", "create", "write") was invoked for model
func (f *FakeRemote) Calls(op, model string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op+":"+model]
}

// Created returns the payloads sent to Create for model
func (f *FakeRemote) Created(model string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.created[model]...)
}

// Search returns all ids of model in ascending order; domain is ignored
func (f *FakeRemote) Search(_ context.Context, model string, _ []any) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["search:"+model]++
	ids := make([]int64, 0, len(f.records[model]))
	for id := range f.records[model] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Read returns the requested fields; missing fields read as false
func (f *FakeRemote) Read(_ context.Context, model string, ids []int64, fields []string) ([]integration.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["read:"+model]++
	out := make([]integration.RemoteRecord, 0, len(ids))
	for _, id := range ids {
		rec, ok := f.records[model][id]
		if !ok {
			continue
		}
		projected := map[string]any{"id": id}
		for _, name := range fields {
			if v, ok := rec[name]; ok {
				projected[name] = v
			} else {
				projected[name] = false
			}
		}
		wire, err := roundTrip(projected)
		if err != nil {
			return nil, err
		}
		out = append(out, wire)
	}
	return out, nil
}

// Create stores a new record and returns its id
func (f *FakeRemote) Create(_ context.Context, model string, values map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create:"+model]++
	if err := f.CreateErr[model]; err != nil {
		return 0, err
	}
	f.nextID++
	id := f.nextID
	if f.records[model] == nil {
		f.records[model] = make(map[int64]map[string]any)
	}
	rec := map[string]any{"id": id}
	for k, v := range values {
		rec[k] = v
	}
	f.records[model][id] = rec
	f.created[model] = append(f.created[model], values)
	return id, nil
}

// Write updates fields of an existing record
func (f *FakeRemote) Write(_ context.Context, model string, id int64, values map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["write:"+model]++
	rec, ok := f.records[model][id]
	if !ok {
		return fmt.Errorf("%w: %s(%d) does not exist", integration.ErrConnection, model, id)
	}
	for k, v := range values {
		rec[k] = v
	}
	return nil
}

func roundTrip(v map[string]any) (integration.RemoteRecord, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out integration.RemoteRecord
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FakeConnector hands out the same FakeRemote for every connection URL
type FakeConnector struct {
	mu       sync.Mutex
	Remote   *FakeRemote
	Err      error
	connects []string
}

// Connect records the URL and returns Remote or Err
func (c *FakeConnector) Connect(_ context.Context, connectionURL string) (integration.RemoteClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects = append(c.connects, connectionURL)
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Remote, nil
}

// Connects returns the URLs passed to Connect
func (c *FakeConnector) Connects() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.connects...)
}

var _ integration.RemoteClient = (*FakeRemote)(nil)
var _ integration.Connector = (*FakeConnector)(nil)

// MemoryStore is an in-memory BinaryStore
type MemoryStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Objects: make(map[string][]byte)}
}

// Put stores a copy of data under key
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = append([]byte(nil), data...)
	return key, nil
}

var _ integration.BinaryStore = (*MemoryStore)(nil)
