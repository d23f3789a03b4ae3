package node

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/doclib/internal/db"
	"github.com/kailas-cloud/doclib/internal/domain"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/domain/query"
	"github.com/kailas-cloud/doclib/internal/logger"
)

// tree: root / lib / Specs / a.txt
func seedTree(t *testing.T, ms *mockStore) (root, lib, specs, doc domnode.Node) {
	t.Helper()
	root = seed(t, ms, mkNode("root", "Company Home", domnode.TypeCompanyHome, ""))
	lib = seed(t, ms, mkNode("lib", "documentLibrary", domnode.TypeFolder, "root", "root"))
	specs = seed(t, ms, mkNode("specs", "Specs", domnode.TypeFolder, "lib", "root", "lib"))
	doc = seed(t, ms, mkNode("doc", "a.txt", domnode.TypeContent, "specs", "root", "lib", "specs"))
	return root, lib, specs, doc
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	seedTree(t, ms)

	n, err := repo.Get(context.Background(), "doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Name() != "a.txt" || n.Type() != domnode.TypeContent || n.ParentID() != "specs" {
		t.Errorf("unexpected node: %+v", n)
	}
	if !n.IsWithin("lib") {
		t.Error("ancestors lost in round trip")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "workspace://SpacesStore/missing-1") {
		t.Errorf("error should name the node ref: %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}

	_, err := repo.Get(context.Background(), "x")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected plain store error, got %v", err)
	}
}

func TestGetMany_Missing(t *testing.T) {
	repo, ms := newTestRepo(t)
	seedTree(t, ms)

	_, err := repo.GetMany(context.Background(), []string{"root", "gone"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, _, doc := seedTree(t, ms)

	segs, err := repo.Path(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, s := range segs {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, "/"); got != "Company Home/documentLibrary/Specs/a.txt" {
		t.Errorf("path = %q", got)
	}
}

// --- ResolvePath ---

func TestResolvePath(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, _, _ := seedTree(t, ms)
	ctx := context.Background()

	tests := []struct {
		path    string
		wantID  string
		wantErr error
	}{
		{"", "lib", nil},
		{"/", "lib", nil},
		{"Specs", "specs", nil},
		{"/Specs/a.txt/", "doc", nil},
		{"Specs/missing", "", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n, err := repo.ResolvePath(ctx, lib, tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && n.ID() != tt.wantID {
				t.Errorf("resolved %s, want %s", n.ID(), tt.wantID)
			}
		})
	}
}

func TestResolvePath_ErrorNamesPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, _, _ := seedTree(t, ms)

	_, err := repo.ResolvePath(context.Background(), lib, "Specs/nope")
	if err == nil || !strings.Contains(err.Error(), "Specs/nope") {
		t.Errorf("expected error naming the path, got %v", err)
	}
}

// --- CreateChild ---

func TestCreateChild_Created(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, _, _ := seedTree(t, ms)

	n, created, err := repo.CreateChild(context.Background(), lib, domnode.Attrs{
		Type:    domnode.TypeFolder,
		Name:    "Drafts",
		Creator: "bob",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected created=true")
	}
	if n.ID() != "id-1" || n.ParentID() != "lib" || !n.Created().Equal(testNow) || n.Modifier() != "bob" {
		t.Errorf("unexpected node: %+v", n)
	}
	if got := ms.children[childrenKey("lib")]["Drafts"]; got != "id-1" {
		t.Errorf("children index = %q", got)
	}
	stored := ms.node(t, "id-1")
	if !stored.IsWithin("root") {
		t.Error("stored node misses ancestors")
	}
}

func TestCreateChild_ExistingReturned(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, specs, _ := seedTree(t, ms)

	n, created, err := repo.CreateChild(context.Background(), lib, domnode.Attrs{
		Type: domnode.TypeFolder,
		Name: "Specs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("expected created=false")
	}
	if n.ID() != specs.ID() {
		t.Errorf("got %s, want existing %s", n.ID(), specs.ID())
	}
	if _, ok := ms.docs[nodeKey("id-1")]; ok {
		t.Error("losing document must be removed")
	}
}

func TestCreateChild_Idempotent(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, _, _ := seedTree(t, ms)
	ctx := context.Background()

	first, _, err := repo.CreateChild(ctx, lib, domnode.Attrs{Type: domnode.TypeFolder, Name: "X"})
	if err != nil {
		t.Fatal(err)
	}
	second, created, err := repo.CreateChild(ctx, lib, domnode.Attrs{Type: domnode.TypeFolder, Name: "X"})
	if err != nil {
		t.Fatal(err)
	}
	if created || second.ID() != first.ID() {
		t.Errorf("second create returned %s (created=%v), want %s", second.ID(), created, first.ID())
	}
	if len(ms.children[childrenKey("lib")]) != 2 {
		t.Errorf("children = %v", ms.children[childrenKey("lib")])
	}
}

func TestCreateChild_IndexError(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, _, _ := seedTree(t, ms)
	ms.hsetnxFn = func(_ context.Context, _, _, _ string) (bool, error) {
		return false, errors.New("timeout")
	}

	_, _, err := repo.CreateChild(context.Background(), lib, domnode.Attrs{Name: "Y"})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := ms.docs[nodeKey("id-1")]; ok {
		t.Error("document must be cleaned up on index failure")
	}
}

func TestCreateChild_NameRequired(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, _, _ := seedTree(t, ms)

	_, _, err := repo.CreateChild(context.Background(), lib, domnode.Attrs{})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

// --- Search ---

func TestSearch_SortAndParse(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, specs, doc := seedTree(t, ms)
	specsRaw := string(ms.docs[nodeKey(specs.ID())])
	docRaw := string(ms.docs[nodeKey(doc.ID())])

	ms.searchFn = func(_ context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 4, Entries: []db.SearchEntry{
			{Key: nodeKey("specs"), Fields: map[string]string{"$": specsRaw}},
			{Key: nodeKey("broken"), Fields: map[string]string{"$": "{not json"}},
			{Key: nodeKey("empty"), Fields: map[string]string{}},
			{Key: nodeKey("doc"), Fields: map[string]string{"$": docRaw}},
		}}, nil
	}

	core, logs := observer.New(zap.WarnLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	nodes, err := repo.Search(ctx, query.Descriptor{
		Query: query.Match(query.FieldParent, "lib"),
		Sort: []query.SortField{
			{Field: "cm:title", Ascending: true},
			{Field: domnode.PropModified, Ascending: false},
		},
		Limit: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 || nodes[0].ID() != "specs" || nodes[1].ID() != "doc" {
		t.Errorf("unexpected nodes: %v", nodes)
	}
	if logs.Len() != 1 || logs.All()[0].ContextMap()["key"] != nodeKey("broken") {
		t.Errorf("unparseable hit not logged with its key: %v", logs.All())
	}

	q := ms.searches[0]
	if q.IndexName != IndexName || q.Query != "@parent:{lib}" || q.Limit != 50 {
		t.Errorf("unexpected query: %+v", q)
	}
	if q.SortBy != query.FieldModified || q.SortAsc {
		t.Errorf("sort = %s asc=%v, want modified desc", q.SortBy, q.SortAsc)
	}
}

func TestSearch_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(_ context.Context, _ *db.SearchQuery) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}

	_, err := repo.Search(context.Background(), query.Descriptor{Query: query.All()})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected wrapped ErrIndexNotFound, got %v", err)
	}
}

// --- EnsureIndex / EnsureRoot ---

func TestEnsureIndex_Creates(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil || created.Name != IndexName || created.StorageType != db.StorageJSON {
		t.Fatalf("unexpected index: %+v", created)
	}
	if !strings.Contains(created.String(), "$.ancestors[*] AS ancestors TAG") {
		t.Errorf("ancestors field missing: %s", created)
	}
}

func TestEnsureIndex_RaceTolerated(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error { return db.ErrIndexExists }

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	if err := repo.CheckIndex(context.Background()); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	if err := repo.CheckIndex(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEnsureRoot(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	root, err := repo.EnsureRoot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.ID() != RootID {
		t.Errorf("root id = %s", root.ID())
	}
	sites, err := repo.ChildByName(ctx, RootID, "Sites")
	if err != nil {
		t.Fatalf("sites folder: %v", err)
	}
	if sites.QName() != domnode.SitesSegment {
		t.Errorf("sites qname = %s", sites.QName())
	}

	if _, err := repo.EnsureRoot(ctx); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(ms.children[childrenKey(RootID)]) != 1 {
		t.Errorf("sites folder duplicated: %v", ms.children[childrenKey(RootID)])
	}
}

func TestRemove(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, _, doc := seedTree(t, ms)

	if err := repo.Remove(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ms.docs[nodeKey("doc")]; ok {
		t.Error("document not deleted")
	}
	if _, ok := ms.children[childrenKey("specs")]["a.txt"]; ok {
		t.Error("name not released in the parent")
	}
}

// --- Descendants ---

func TestDescendants_Pages(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, specs, _ := seedTree(t, ms)
	for i := range 4 {
		seed(t, ms, mkNode(fmt.Sprintf("d%d", i), fmt.Sprintf("d%d.txt", i), domnode.TypeContent,
			"specs", "root", "lib", "specs"))
	}
	repo.pageSize = 2

	nodes, err := repo.Descendants(context.Background(), specs.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 5 {
		t.Errorf("got %d descendants, want 5", len(nodes))
	}
	if len(ms.counts) != 1 || ms.counts[0] != "@ancestors:{specs}" {
		t.Errorf("counts = %v", ms.counts)
	}
	var offsets []int
	for _, q := range ms.searches {
		offsets = append(offsets, q.Offset)
		if q.Limit != 2 {
			t.Errorf("limit = %d, want 2", q.Limit)
		}
	}
	if !slices.Equal(offsets, []int{0, 2, 4}) {
		t.Errorf("offsets = %v, want [0 2 4]", offsets)
	}
}

func TestDescendants_Leaf(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, _, doc := seedTree(t, ms)

	nodes, err := repo.Descendants(context.Background(), doc.ID())
	if err != nil || len(nodes) != 0 {
		t.Errorf("got %v, %v", nodes, err)
	}
	if len(ms.searches) != 0 {
		t.Errorf("empty subtree should not be searched, got %d searches", len(ms.searches))
	}
}
