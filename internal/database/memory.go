package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a process-local Store used for development and tests.
// Documents round-trip through JSON so reads see exactly what the other
// backends would return.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]map[string]interface{})}
}

func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Filter, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	match, err := normalize(filter)
	if err != nil {
		return err
	}

	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	for _, doc := range c.store.collections[c.name] {
		if matches(doc, match) {
			return remarshal(doc, out)
		}
	}
	return ErrNotFound
}

func (c *memoryCollection) Find(ctx context.Context, filter Filter, opts FindOptions, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	match, err := normalize(filter)
	if err != nil {
		return err
	}

	c.store.mu.RLock()
	found := []map[string]interface{}{}
	for _, doc := range c.store.collections[c.name] {
		if matches(doc, match) {
			found = append(found, doc)
		}
	}
	c.store.mu.RUnlock()

	if opts.SortBy != "" {
		sort.SliceStable(found, func(i, j int) bool {
			cmp := compareValues(found[i][opts.SortBy], found[j][opts.SortBy])
			if opts.Order == SortDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if opts.Limit > 0 && int64(len(found)) > opts.Limit {
		found = found[:opts.Limit]
	}

	return remarshal(found, out)
}

func (c *memoryCollection) Insert(ctx context.Context, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	fields, err := normalize(doc)
	if err != nil {
		return err
	}
	if id, ok := fields["id"].(string); !ok || id == "" {
		return errors.New("document must have a string id")
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	for _, existing := range c.store.collections[c.name] {
		if c.conflicts(existing, fields) {
			return ErrDuplicate
		}
	}

	c.store.collections[c.name] = append(c.store.collections[c.name], fields)
	return nil
}

func (c *memoryCollection) Update(ctx context.Context, filter Filter, set Fields) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable(err)
	}

	match, err := normalize(filter)
	if err != nil {
		return 0, err
	}
	patch, err := normalize(set)
	if err != nil {
		return 0, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	for i, doc := range c.store.collections[c.name] {
		if matches(doc, match) {
			c.store.collections[c.name][i] = merge(doc, patch)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) Upsert(ctx context.Context, filter Filter, set Fields) error {
	if _, ok := filter["id"]; !ok {
		return errors.New("upsert filter must contain id")
	}
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}

	match, err := normalize(filter)
	if err != nil {
		return err
	}
	patch, err := normalize(set)
	if err != nil {
		return err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	for i, doc := range c.store.collections[c.name] {
		if matches(doc, match) {
			c.store.collections[c.name][i] = merge(doc, patch)
			return nil
		}
	}

	c.store.collections[c.name] = append(c.store.collections[c.name], merge(match, patch))
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable(err)
	}

	match, err := normalize(filter)
	if err != nil {
		return 0, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	docs := c.store.collections[c.name]
	for i, doc := range docs {
		if matches(doc, match) {
			c.store.collections[c.name] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) conflicts(existing, candidate map[string]interface{}) bool {
	for _, field := range append([]string{"id"}, uniqueFields[c.name]...) {
		if v, ok := candidate[field]; ok && reflect.DeepEqual(existing[field], v) {
			return true
		}
	}
	return false
}

// normalize converts any JSON-encodable value into its generic map form
func normalize(v interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if v == nil {
		return out, nil
	}
	if err := remarshal(v, &out); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	return out, nil
}

func remarshal(in, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func matches(doc, filter map[string]interface{}) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

func merge(doc, patch map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(doc)+len(patch))
	for k, v := range doc {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// compareValues orders JSON scalars; timestamps compare chronologically
func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			at, aErr := time.Parse(time.RFC3339Nano, av)
			bt, bErr := time.Parse(time.RFC3339Nano, bv)
			if aErr == nil && bErr == nil {
				return at.Compare(bt)
			}
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	// missing values sort first
	switch {
	case a == nil && b != nil:
		return -1
	case a != nil && b == nil:
		return 1
	}
	return 0
}
