package store

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

type document = map[string]any

// Memory is an in-process Store. Documents are kept in their JSON form, so
// values round-trip exactly as they would through the sqlite backend.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]document
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]document)}
}

func (m *Memory) FindOne(ctx context.Context, collection string, filter Filter, out any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, backendErr("find", collection, err)
	}
	want, err := normalizeFilter(filter)
	if err != nil {
		return false, encodingErr("find", collection, err)
	}

	m.mu.RLock()
	var found []byte
	for _, doc := range m.collections[collection] {
		if matches(doc, want) {
			found, err = json.Marshal(doc)
			break
		}
	}
	m.mu.RUnlock()

	if err != nil {
		return false, encodingErr("find", collection, err)
	}
	if found == nil {
		return false, nil
	}
	if err := json.Unmarshal(found, out); err != nil {
		return false, encodingErr("find", collection, err)
	}
	return true, nil
}

func (m *Memory) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", backendErr("insert", collection, err)
	}
	d, err := toDocument(doc)
	if err != nil {
		return "", encodingErr("insert", collection, err)
	}
	id := uuid.New().String()
	d[IDField] = id

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], d)
	m.mu.Unlock()
	return id, nil
}

func (m *Memory) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) error {
	if err := ctx.Err(); err != nil {
		return backendErr("update", collection, err)
	}
	want, err := normalizeFilter(filter)
	if err != nil {
		return encodingErr("update", collection, err)
	}
	set, err := toDocument(update.Set)
	if err != nil {
		return encodingErr("update", collection, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.collections[collection] {
		if !matches(doc, want) {
			continue
		}
		for k, v := range set {
			if k != IDField {
				doc[k] = v
			}
		}
		for _, k := range update.Unset {
			if k != IDField {
				delete(doc, k)
			}
		}
		return nil
	}
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }

// toDocument converts v into its JSON object form. A nil map yields an empty document.
func toDocument(v any) (document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	d := document{}
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	if d == nil {
		d = document{}
	}
	return d, nil
}

func normalizeFilter(f Filter) (document, error) {
	return toDocument(map[string]any(f))
}

func matches(doc, want document) bool {
	for k, v := range want {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}
