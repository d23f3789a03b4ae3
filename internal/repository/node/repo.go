package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/doclib/internal/db"
	"github.com/kailas-cloud/doclib/internal/domain"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/domain/query"
	"github.com/kailas-cloud/doclib/internal/logger"
)

// RootID is the well-known id of the repository root.
const RootID = "company-home"

const (
	nodePrefix     = domain.KeyPrefix + "node:"
	childrenPrefix = domain.KeyPrefix + "children:"
)

// store is the consumer interface for nodes (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HGet(ctx context.Context, key, field string) (string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo stores nodes as JSON documents with a per-parent name index.
type Repo struct {
	store    store
	now      func() time.Time
	newID    func() string
	pageSize int
}

// New creates a node repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now, newID: uuid.NewString, pageSize: db.MaxSearchLimit}
}

// EnsureIndex creates the node index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, buildIndex()); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// CheckIndex reports an error when the node index is missing.
func (r *Repo) CheckIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", IndexName, err)
	}
	if !exists {
		return fmt.Errorf("index %s: %w", IndexName, db.ErrIndexNotFound)
	}
	return nil
}

// EnsureRoot creates the repository root and the sites folder if missing.
func (r *Repo) EnsureRoot(ctx context.Context) (domnode.Node, error) {
	root, err := r.Get(ctx, RootID)
	if errors.Is(err, domain.ErrNotFound) {
		now := r.now()
		root = domnode.Reconstruct(domnode.Attrs{
			ID:       RootID,
			QName:    "app:company_home",
			Type:     domnode.TypeCompanyHome,
			Name:     "Company Home",
			Created:  now,
			Modified: now,
			Creator:  "System",
			Modifier: "System",
		})
		if err := r.put(ctx, root); err != nil {
			return domnode.Node{}, err
		}
	} else if err != nil {
		return domnode.Node{}, err
	}

	if _, _, err := r.CreateChild(ctx, root, domnode.Attrs{
		QName:   domnode.SitesSegment,
		Type:    domnode.TypeSites,
		Name:    "Sites",
		Creator: "System",
	}); err != nil {
		return domnode.Node{}, fmt.Errorf("ensure sites folder: %w", err)
	}
	return root, nil
}

// Get returns a node by id.
func (r *Repo) Get(ctx context.Context, id string) (domnode.Node, error) {
	raw, err := r.store.JSONGet(ctx, nodeKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domnode.Node{}, domain.NewNotFound("node", domnode.RefOf(id).String())
		}
		return domnode.Node{}, fmt.Errorf("json.get %s: %w", id, err)
	}
	return parseNode(raw)
}

// GetMany returns nodes in the order of ids. Any missing id is an error.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]domnode.Node, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = nodeKey(id)
	}

	raw, err := r.store.JSONMGet(ctx, keys, ".")
	if err != nil {
		return nil, fmt.Errorf("json.mget: %w", err)
	}

	out := make([]domnode.Node, len(ids))
	for i, id := range ids {
		if i >= len(raw) || raw[i] == nil {
			return nil, domain.NewNotFound("node", domnode.RefOf(id).String())
		}
		n, err := parseNode(raw[i])
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// Path returns the qualified path of n, root first.
func (r *Repo) Path(ctx context.Context, n domnode.Node) ([]domnode.Segment, error) {
	ancestors, err := r.GetMany(ctx, n.Ancestors())
	if err != nil {
		return nil, fmt.Errorf("load ancestors of %s: %w", n.ID(), err)
	}
	return domnode.PathOf(ancestors, n), nil
}

// ChildByName looks a child up by its cm:name.
func (r *Repo) ChildByName(ctx context.Context, parentID, name string) (domnode.Node, error) {
	id, err := r.store.HGet(ctx, childrenKey(parentID), name)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domnode.Node{}, domain.NewNotFound("child", name)
		}
		return domnode.Node{}, fmt.Errorf("hget %s: %w", name, err)
	}
	return r.Get(ctx, id)
}

// ResolvePath walks slash-separated names below root. An empty path
// resolves to root.
func (r *Repo) ResolvePath(ctx context.Context, root domnode.Node, path string) (domnode.Node, error) {
	current := root
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		child, err := r.ChildByName(ctx, current.ID(), name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domnode.Node{}, domain.NewNotFound("path", path)
			}
			return domnode.Node{}, err
		}
		current = child
	}
	return current, nil
}

// CreateChild creates a node under parent unless a child with the same
// name exists, in which case the existing child is returned with
// created=false. Concurrent callers agree on a single winner.
func (r *Repo) CreateChild(
	ctx context.Context, parent domnode.Node, a domnode.Attrs,
) (n domnode.Node, created bool, err error) {
	if a.Name == "" {
		return domnode.Node{}, false, fmt.Errorf("child name is required: %w", domain.ErrBadRequest)
	}

	now := r.now()
	a.ID = r.newID()
	a.ParentID = parent.ID()
	a.Ancestors = append(parent.Ancestors(), parent.ID())
	if a.Created.IsZero() {
		a.Created = now
	}
	a.Modified = now
	if a.Modifier == "" {
		a.Modifier = a.Creator
	}
	n = domnode.Reconstruct(a)

	if err := r.put(ctx, n); err != nil {
		return domnode.Node{}, false, err
	}

	won, err := r.store.HSetNX(ctx, childrenKey(parent.ID()), a.Name, a.ID)
	if err != nil {
		_ = r.store.Del(ctx, nodeKey(a.ID))
		return domnode.Node{}, false, fmt.Errorf("hsetnx %s: %w", a.Name, err)
	}
	if won {
		return n, true, nil
	}

	if err := r.store.Del(ctx, nodeKey(a.ID)); err != nil {
		return domnode.Node{}, false, fmt.Errorf("del orphan %s: %w", a.ID, err)
	}
	existing, err := r.ChildByName(ctx, parent.ID(), a.Name)
	if err != nil {
		return domnode.Node{}, false, err
	}
	return existing, false, nil
}

// Remove deletes n and frees its name in the parent. The subtree of a
// container is left to the caller.
func (r *Repo) Remove(ctx context.Context, n domnode.Node) error {
	if n.ParentID() != "" {
		if err := r.store.HDel(ctx, childrenKey(n.ParentID()), n.Name()); err != nil {
			return fmt.Errorf("hdel %s: %w", n.Name(), err)
		}
	}
	if err := r.store.Del(ctx, nodeKey(n.ID())); err != nil {
		return fmt.Errorf("del %s: %w", n.ID(), err)
	}
	return nil
}

// Search executes a listing query and returns the matching nodes.
// Only the first sort field that maps to a sortable index field is used.
func (r *Repo) Search(ctx context.Context, d query.Descriptor) ([]domnode.Node, error) {
	q := &db.SearchQuery{
		IndexName:    IndexName,
		Query:        d.QueryString(),
		Limit:        d.Limit,
		ReturnFields: []string{"$"},
	}
	for _, s := range d.Sort {
		if f, ok := sortFields[s.Field]; ok {
			q.SortBy = f
			q.SortAsc = s.Ascending
			break
		}
	}

	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Query, err)
	}

	return parseEntries(ctx, res.Entries), nil
}

// Descendants returns every node below id, paging through the index.
func (r *Repo) Descendants(ctx context.Context, id string) ([]domnode.Node, error) {
	q := query.Match(query.FieldAncestors, id).String()
	total, err := r.store.SearchCount(ctx, IndexName, q)
	if err != nil {
		return nil, fmt.Errorf("count %q: %w", q, err)
	}

	nodes := make([]domnode.Node, 0, total)
	for offset := 0; offset < total; offset += r.pageSize {
		res, err := r.store.Search(ctx, &db.SearchQuery{
			IndexName:    IndexName,
			Query:        q,
			Offset:       offset,
			Limit:        r.pageSize,
			ReturnFields: []string{"$"},
		})
		if err != nil {
			return nil, fmt.Errorf("search %q at %d: %w", q, offset, err)
		}
		if len(res.Entries) == 0 {
			break
		}
		nodes = append(nodes, parseEntries(ctx, res.Entries)...)
	}
	return nodes, nil
}

// parseEntries decodes search hits, skipping documents that do not parse.
func parseEntries(ctx context.Context, entries []db.SearchEntry) []domnode.Node {
	nodes := make([]domnode.Node, 0, len(entries))
	for _, e := range entries {
		raw := e.Fields["$"]
		if raw == "" {
			continue
		}
		n, err := parseNode([]byte(raw))
		if err != nil {
			logger.FromContext(ctx).Warn("skipping unreadable node document",
				zap.String("key", e.Key),
				zap.Error(err),
			)
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func (r *Repo) put(ctx context.Context, n domnode.Node) error {
	data, err := marshalNode(n)
	if err != nil {
		return err
	}
	if err := r.store.JSONSet(ctx, nodeKey(n.ID()), "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", n.ID(), err)
	}
	return nil
}

func marshalNode(n domnode.Node) ([]byte, error) {
	data, err := json.Marshal(toDoc(n))
	if err != nil {
		return nil, fmt.Errorf("marshal node %s: %w", n.ID(), err)
	}
	return data, nil
}

func parseNode(raw []byte) (domnode.Node, error) {
	var d nodeDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return domnode.Node{}, fmt.Errorf("unmarshal node: %w", err)
	}
	if d.ID == "" {
		return domnode.Node{}, errors.New("node document without id")
	}
	return d.toNode(), nil
}

func attrsOf(n domnode.Node) domnode.Attrs {
	return toDoc(n).attrs()
}

func nodeKey(id string) string {
	return nodePrefix + id
}

func childrenKey(parentID string) string {
	return childrenPrefix + parentID
}
