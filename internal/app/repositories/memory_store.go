package repositories

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/aaeducates/backend/internal/pkg/helpers"
)

// MemoryTable stores one entity kind in process memory. It honours the same
// schema as PgTable, including uniqueness and many-to-many edges, and is used
// by the memory database driver and by tests.
type MemoryTable[T any] struct {
	mu     sync.RWMutex
	schema Schema[T]
	rows   map[int64]*T
	nextID int64
	now    func() time.Time
}

// NewMemoryTable creates an empty in-memory store for schema
func NewMemoryTable[T any](schema Schema[T]) *MemoryTable[T] {
	return &MemoryTable[T]{
		schema: schema,
		rows:   make(map[int64]*T),
		now:    time.Now,
	}
}

// List returns one page of rows matching filter and the total match count
func (m *MemoryTable[T]) List(_ context.Context, filter Filter, page Page) ([]*T, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := m.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		a, b := *m.schema.ID(matched[i]), *m.schema.ID(matched[j])
		if m.schema.NewestFirst {
			return a > b
		}
		return a < b
	})

	start, end := helpers.CalculateSliceIndices(page.Offset, page.Limit, len(matched))
	out := make([]*T, 0, end-start)
	for _, row := range matched[start:end] {
		out = append(out, m.clone(row))
	}
	return out, int64(len(matched)), nil
}

// Get returns the row with id if it matches filter
func (m *MemoryTable[T]) Get(ctx context.Context, filter Filter, id int64) (*T, error) {
	return m.FindOne(ctx, filter.And("id", id))
}

// FindOne returns the lowest-id row matching filter
func (m *MemoryTable[T]) FindOne(_ context.Context, filter Filter) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := m.match(filter)
	if len(matched) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(matched, func(i, j int) bool {
		return *m.schema.ID(matched[i]) < *m.schema.ID(matched[j])
	})
	return m.clone(matched[0]), nil
}

// Create stores a copy of item and assigns its id
func (m *MemoryTable[T]) Create(_ context.Context, item *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.schema.Stamp != nil {
		m.schema.Stamp(item, m.now(), true)
	}
	if err := m.checkUnique(item, 0); err != nil {
		return err
	}

	m.nextID++
	*m.schema.ID(item) = m.nextID
	m.normalizeLinks(item)
	m.rows[m.nextID] = m.clone(item)
	return nil
}

// Update replaces the stored copy of item
func (m *MemoryTable[T]) Update(ctx context.Context, item *T) error {
	return m.UpdateWhere(ctx, All(), item)
}

// UpdateWhere replaces the row when it still matches filter
func (m *MemoryTable[T]) UpdateWhere(_ context.Context, filter Filter, item *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := *m.schema.ID(item)
	current, ok := m.rows[id]
	if !ok || filter.None || !m.matches(current, filter) {
		return ErrNotFound
	}
	if m.schema.Stamp != nil {
		m.schema.Stamp(item, m.now(), false)
	}
	if err := m.checkUnique(item, id); err != nil {
		return err
	}
	m.normalizeLinks(item)
	m.rows[id] = m.clone(item)
	return nil
}

// Delete removes the row with id
func (m *MemoryTable[T]) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *MemoryTable[T]) match(filter Filter) []*T {
	if filter.None {
		return nil
	}
	out := make([]*T, 0, len(m.rows))
	for _, row := range m.rows {
		if m.matches(row, filter) {
			out = append(out, row)
		}
	}
	return out
}

func (m *MemoryTable[T]) matches(row *T, filter Filter) bool {
	columns := m.columnValues(row)
	for _, cond := range filter.Conds {
		value, ok := columns[cond.Column]
		if !ok {
			return false
		}
		found := false
		for _, want := range cond.Values {
			if equalValues(value, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *MemoryTable[T]) columnValues(row *T) map[string]interface{} {
	values := m.schema.Values(row)
	out := make(map[string]interface{}, len(values)+1)
	out["id"] = *m.schema.ID(row)
	for i, col := range m.schema.Columns {
		out[col] = values[i]
	}
	return out
}

func (m *MemoryTable[T]) checkUnique(item *T, selfID int64) error {
	if len(m.schema.Unique) == 0 {
		return nil
	}
	candidate := m.columnValues(item)
	for _, u := range m.schema.Unique {
		for id, row := range m.rows {
			if id == selfID {
				continue
			}
			existing := m.columnValues(row)
			same := true
			for _, col := range u.Columns {
				if isNull(candidate[col]) || !equalValues(candidate[col], existing[col]) {
					same = false
					break
				}
			}
			if same {
				return m.schema.conflict(u)
			}
		}
	}
	return nil
}

func (m *MemoryTable[T]) normalizeLinks(item *T) {
	for _, link := range m.schema.Links {
		ids := uniqueIDs(link.Get(item))
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		link.Set(item, ids)
	}
}

// clone deep-copies the row so callers never share storage with the table
func (m *MemoryTable[T]) clone(row *T) *T {
	return Clone(row)
}

// equalValues compares column values after dereferencing pointers and
// widening integer kinds, so *int64 columns match int64 filter values.
func equalValues(a, b interface{}) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if isInt(av.Kind()) && isInt(bv.Kind()) {
		return av.Int() == bv.Int()
	}
	if av.Kind() == reflect.String && bv.Kind() == reflect.String {
		return av.String() == bv.String()
	}
	if av.Type().Comparable() && bv.Type().Comparable() {
		return a == b
	}
	return false
}

func deref(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func isNull(v interface{}) bool {
	return deref(v) == nil
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}
