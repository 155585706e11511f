// Package store is an in-memory, collection-oriented data store that
// emulates a managed document database (per-record CRUD, equality and
// array-membership filters, sort-by-field ordering, cursor pagination).
// It backs local development and tests; the contracts hold regardless of
// backing, so a persistent implementation can be substituted behind the
// same surface.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is the open field bag a collection stores per identifier.
type Record = map[string]any

var (
	// ErrNotFound reports that no record exists for the given id. It is
	// distinguishable from a record whose fields are empty.
	ErrNotFound = errors.New("store: record not found")
	// ErrExists reports a write-once conflict from Create.
	ErrExists = errors.New("store: record already exists")
)

// Filter operators accepted by Where.
const (
	OpEqual         = "=="
	OpArrayContains = "array-contains"
)

// Sort directions accepted by OrderBy.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Union tags a partial-update value as an array-union operation: the given
// values are appended to the existing array field (created if absent)
// instead of replacing it. Purely additive; never deduplicates.
type Union struct{ Values []any }

// ArrayUnion builds a Union for Update.
func ArrayUnion(values ...any) Union { return Union{Values: values} }

// Store owns a set of named collections sharing one process-wide instance.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

// New returns an empty store.
func New() *Store {
	return &Store{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it on first use.
func (s *Store) Collection(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &Collection{records: make(map[string]Record)}
		s.collections[name] = c
	}
	return c
}

// Collection maps identifiers to records. All operations take the
// collection lock, so read-modify-write calls (Update, Create) are atomic
// with respect to each other.
type Collection struct {
	mu      sync.RWMutex
	records map[string]Record
}

// Set stores rec under id. With merge set and an existing record, fields
// are shallow-merged into it; otherwise the record is replaced. The id is
// stamped onto the stored record either way. Idempotent under repeated
// identical calls.
func (c *Collection) Set(id string, rec Record, merge bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.records[id]; ok && merge {
		for k, v := range rec {
			existing[k] = cloneValue(v)
		}
		existing["id"] = id
		return
	}
	stored := cloneRecord(rec)
	stored["id"] = id
	c.records[id] = stored
}

// Add inserts rec under a freshly generated identifier, stamping id and
// created_at, and returns the identifier. UUIDs make collisions with
// existing identifiers negligible.
func (c *Collection) Add(rec Record) string {
	id := uuid.NewString()
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := cloneRecord(rec)
	stored["id"] = id
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = nowString()
	}
	c.records[id] = stored
	return id
}

// Create inserts rec under id only if the id is not yet taken, returning
// ErrExists otherwise. The check-then-set runs as one critical section,
// which the idempotency ledgers rely on under concurrent duplicate
// delivery.
func (c *Collection) Create(id string, rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[id]; ok {
		return ErrExists
	}
	stored := cloneRecord(rec)
	stored["id"] = id
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = nowString()
	}
	c.records[id] = stored
	return nil
}

// Get returns a copy of the record or ErrNotFound.
func (c *Collection) Get(id string) (Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Update applies partial to the record under id as one atomic
// read-modify-write. Union-tagged values append to the existing array
// field (creating it when absent); all other values overwrite. updated_at
// is always stamped. Returns ErrNotFound when the id does not exist.
func (c *Collection) Update(id string, partial Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range partial {
		if u, ok := v.(Union); ok {
			arr, _ := rec[k].([]any)
			for _, item := range u.Values {
				arr = append(arr, cloneValue(item))
			}
			rec[k] = arr
			continue
		}
		rec[k] = cloneValue(v)
	}
	rec["updated_at"] = nowString()
	return nil
}

// Delete removes the record under id. Deleting an absent id is a no-op.
func (c *Collection) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, id)
}

/* ================================ Query ================================= */

type filter struct {
	field string
	op    string
	value any
}

// Query composes filters, ordering, and pagination over one collection.
// Multiple Where calls AND together. Stream materializes the matching
// records as a finite snapshot; each call re-evaluates against current
// state.
type Query struct {
	c          *Collection
	filters    []filter
	orderField string
	desc       bool
	limit      int
	cursor     any
	hasCursor  bool
}

// Where starts a query with one filter. op is OpEqual or OpArrayContains.
func (c *Collection) Where(field, op string, value any) *Query {
	return &Query{c: c, filters: []filter{{field, op, value}}}
}

// OrderBy starts a query sorted by field in the given direction.
func (c *Collection) OrderBy(field, direction string) *Query {
	return &Query{c: c, orderField: field, desc: direction == Desc}
}

// All starts an unfiltered query.
func (c *Collection) All() *Query { return &Query{c: c} }

// Where adds a filter; filters AND together.
func (q *Query) Where(field, op string, value any) *Query {
	q.filters = append(q.filters, filter{field, op, value})
	return q
}

// OrderBy sorts results by field. Records missing the field sort as the
// empty string.
func (q *Query) OrderBy(field, direction string) *Query {
	q.orderField = field
	q.desc = direction == Desc
	return q
}

// Limit caps the number of streamed records.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// StartAfter resumes after the first record whose ordering-field value
// equals cursor; only records strictly after it are returned.
func (q *Query) StartAfter(cursor any) *Query {
	q.cursor = cursor
	q.hasCursor = true
	return q
}

// Stream evaluates the query and returns copies of the matching records.
func (q *Query) Stream() []Record {
	q.c.mu.RLock()
	matched := make([]Record, 0)
	for _, rec := range q.c.records {
		if q.matches(rec) {
			matched = append(matched, cloneRecord(rec))
		}
	}
	q.c.mu.RUnlock()

	if q.orderField != "" {
		field := q.orderField
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(matched[i][field], matched[j][field])
			if q.desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if q.hasCursor {
		after := -1
		for i, rec := range matched {
			if compareValues(rec[q.orderField], q.cursor) == 0 {
				after = i
				break
			}
		}
		if after >= 0 {
			matched = matched[after+1:]
		}
	}

	if q.limit > 0 && len(matched) > q.limit {
		matched = matched[:q.limit]
	}
	return matched
}

// Page fetches up to limit records plus one lookahead; when more results
// exist, nextCursor carries the last returned record's ordering-field
// value for the caller's next StartAfter. nextCursor is nil on the final
// page.
func (q *Query) Page(limit int) (items []Record, nextCursor any) {
	saved := q.limit
	q.limit = limit + 1
	rows := q.Stream()
	q.limit = saved
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = rows[limit-1][q.orderField]
	}
	return rows, nextCursor
}

func (q *Query) matches(rec Record) bool {
	for _, f := range q.filters {
		switch f.op {
		case OpEqual:
			if compareValues(rec[f.field], f.value) != 0 {
				return false
			}
		case OpArrayContains:
			arr, ok := rec[f.field].([]any)
			if !ok {
				// array-contains against a non-array field never matches
				return false
			}
			found := false
			for _, item := range arr {
				if compareValues(item, f.value) == 0 {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

/* =============================== Helpers ================================ */

func nowString() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// compareValues orders mixed-type field values. Numbers compare
// numerically, strings lexicographically, bools false<true; nil/absent
// values are treated as the empty string so ordering by a partially
// populated field never fails.
func compareValues(a, b any) int {
	na, aNum := toFloat(a)
	nb, bNum := toFloat(b)
	switch {
	case aNum && bNum:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case aNum && b == nil:
		return 1
	case bNum && a == nil:
		return -1
	}
	if ba, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case !ba && bb:
				return -1
			case ba && !bb:
				return 1
			}
			return 0
		}
	}
	sa, sb := asString(a), asString(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Record:
		return cloneRecord(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
