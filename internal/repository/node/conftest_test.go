package node

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/doclib/internal/db"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// mockStore implements the consumer interface for tests. Node documents
// and children hashes live in memory unless a function field overrides
// the call.
type mockStore struct {
	docs     map[string][]byte
	children map[string]map[string]string

	searchFn      func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	hsetnxFn      func(ctx context.Context, key, field, value string) (bool, error)
	jsonGetFn     func(ctx context.Context, key string) ([]byte, error)
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error

	// failFields makes HSetNX fail for the given child names.
	failFields map[string]error
	// setMultiErrs are returned by successive JSONSetMulti calls; the first
	// item of a failing call is still written.
	setMultiErrs []error
	hdelErrs     []error

	searches []*db.SearchQuery
	counts   []string
	deleted  []string
}

func (m *mockStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	m.docs[key] = data
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if len(m.setMultiErrs) > 0 {
		err := m.setMultiErrs[0]
		m.setMultiErrs = m.setMultiErrs[1:]
		if err != nil {
			if len(items) > 0 {
				_ = m.JSONSet(ctx, items[0].Key, items[0].Path, items[0].Data)
			}
			return err
		}
	}
	for _, it := range items {
		_ = m.JSONSet(ctx, it.Key, it.Path, it.Data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, _ ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key)
	}
	d, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return d, nil
}

func (m *mockStore) JSONMGet(_ context.Context, keys []string, _ string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.docs[k]
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.docs, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.docs[key]
	return ok, nil
}

func (m *mockStore) HSetNX(ctx context.Context, key, field, value string) (bool, error) {
	if m.hsetnxFn != nil {
		return m.hsetnxFn(ctx, key, field, value)
	}
	if err := m.failFields[field]; err != nil {
		return false, err
	}
	h := m.children[key]
	if h == nil {
		h = map[string]string{}
		m.children[key] = h
	}
	if _, ok := h[field]; ok {
		return false, nil
	}
	h[field] = value
	return true, nil
}

func (m *mockStore) HGet(_ context.Context, key, field string) (string, error) {
	v, ok := m.children[key][field]
	if !ok {
		return "", db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) HDel(_ context.Context, key string, fields ...string) error {
	if len(m.hdelErrs) > 0 {
		err := m.hdelErrs[0]
		m.hdelErrs = m.hdelErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, f := range fields {
		delete(m.children[key], f)
	}
	return nil
}

// Search answers "@ancestors:{id}" queries from memory, in key order and
// honouring Offset and Limit; anything else needs searchFn.
func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	m.searches = append(m.searches, q)
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	entries, err := m.below(q.Query)
	if err != nil {
		return nil, err
	}
	res := &db.SearchResult{Total: len(entries)}
	start := min(q.Offset, len(entries))
	end := len(entries)
	if q.Limit > 0 {
		end = min(start+q.Limit, end)
	}
	res.Entries = entries[start:end]
	return res, nil
}

func (m *mockStore) SearchCount(_ context.Context, _, query string) (int, error) {
	m.counts = append(m.counts, query)
	entries, err := m.below(query)
	return len(entries), err
}

func (m *mockStore) below(query string) ([]db.SearchEntry, error) {
	id, ok := strings.CutPrefix(query, "@ancestors:{")
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	id = strings.ReplaceAll(strings.TrimSuffix(id, "}"), `\`, "")

	var entries []db.SearchEntry
	for _, key := range slices.Sorted(maps.Keys(m.docs)) {
		raw := m.docs[key]
		var d nodeDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		if slices.Contains(d.Ancestors, id) {
			entries = append(entries, db.SearchEntry{Key: key, Fields: map[string]string{"$": string(raw)}})
		}
	}
	return entries, nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{docs: map[string][]byte{}, children: map[string]map[string]string{}}
	repo := New(ms)
	repo.now = func() time.Time { return testNow }
	seq := 0
	repo.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return repo, ms
}

// seed stores n directly and registers it with its parent.
func seed(t *testing.T, ms *mockStore, n domnode.Node) domnode.Node {
	t.Helper()
	data, err := json.Marshal(toDoc(n))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ms.docs[nodeKey(n.ID())] = data
	if n.ParentID() != "" {
		if ms.children[childrenKey(n.ParentID())] == nil {
			ms.children[childrenKey(n.ParentID())] = map[string]string{}
		}
		ms.children[childrenKey(n.ParentID())][n.Name()] = n.ID()
	}
	return n
}

func mkNode(id, name, typ, parent string, ancestors ...string) domnode.Node {
	return domnode.Reconstruct(domnode.Attrs{
		ID:        id,
		Name:      name,
		Type:      typ,
		ParentID:  parent,
		Ancestors: ancestors,
		Creator:   "alice",
		Created:   testNow.Add(-time.Hour),
		Modified:  testNow.Add(-time.Hour),
	})
}

func (m *mockStore) node(t *testing.T, id string) domnode.Node {
	t.Helper()
	raw, ok := m.docs[nodeKey(id)]
	if !ok {
		t.Fatalf("node %s not stored", id)
	}
	n, err := parseNode(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", id, err)
	}
	return n
}
