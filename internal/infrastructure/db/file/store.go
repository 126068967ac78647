// Package file implements the document-store contract on top of a single
// local JSON file. It is a development stand-in for the managed backend:
// the whole store is one object mapping collection name → document id →
// fields, rewritten in full after every Set.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sessionlab/identity-system/internal/core/domain"
	"github.com/sessionlab/identity-system/internal/core/ports"
)

// Store is safe for use from one process only; the mutex covers in-process
// readers and writers, nothing guards the backing file across processes.
type Store struct {
	path string

	mu          sync.Mutex
	collections map[string]map[string]map[string]any
}

// New opens a file-backed store. If the backing file exists and parses, its
// contents seed the in-memory state; otherwise the store starts empty. The
// path lives on the struct and is never exposed as a collection nor written
// into the serialized body.
func New(path string) *Store {
	s := &Store{
		path:        path,
		collections: make(map[string]map[string]map[string]any),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var loaded map[string]map[string]map[string]any
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return s
	}
	s.collections = loaded
	return s
}

func (s *Store) Get(_ context.Context, collection, id string) (ports.Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.collections[collection][id]
	if !ok {
		return ports.Document{}, false, nil
	}
	return ports.Document{ID: id, Fields: copyFields(fields)}, true, nil
}

// Set overwrites the document at id and rewrites the whole backing file.
// Not atomic across a process crash; consistent for subsequent reads within
// the process.
func (s *Store) Set(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		s.collections[collection] = coll
	}
	coll[id] = normalizeFields(fields)

	return s.flush()
}

// Query applies all equality filters over one collection. Documents are
// visited in ascending id order so limit truncation is deterministic for a
// fixed store state.
func (s *Store) Query(_ context.Context, collection string, filters []ports.Filter, limit int) ([]ports.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var results []ports.Document
	for _, id := range ids {
		if !matches(coll[id], filters) {
			continue
		}
		results = append(results, ports.Document{ID: id, Fields: copyFields(coll[id])})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// flush serializes every collection to the backing file. Caller holds the
// mutex.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.collections, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode store: %v", domain.ErrStoreUnavailable, err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrStoreUnavailable, s.path, err)
	}
	return nil
}

func matches(fields map[string]any, filters []ports.Filter) bool {
	for _, f := range filters {
		if fields[f.Field] != f.Value {
			return false
		}
	}
	return true
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// normalizeFields reduces values to a JSON-safe form: timestamps become
// RFC 3339 strings and nested maps are normalized recursively.
func normalizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch tv := v.(type) {
		case time.Time:
			out[k] = tv.Format(time.RFC3339Nano)
		case map[string]any:
			out[k] = normalizeFields(tv)
		default:
			out[k] = v
		}
	}
	return out
}
