package node

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/doclib/internal/db"
	"github.com/kailas-cloud/doclib/internal/domain"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

func TestCopy_Document(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, _, _ := seedTree(t, ms)
	src := seed(t, ms, domnode.Reconstruct(domnode.Attrs{
		ID: "wc", Name: "b.txt", Type: domnode.TypeContent, ParentID: "specs",
		Ancestors:  []string{"root", "lib", "specs"},
		Aspects:    []string{domnode.AspectWorkingCopy, domnode.AspectTaggable},
		Properties: map[string]string{domnode.PropWorkingCopyOf: "doc", domnode.PropTitle: "B"},
		Creator:    "alice",
	}))

	c, err := repo.Copy(context.Background(), src, lib, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ParentID() != "lib" || c.Creator() != "bob" || c.Name() != "b.txt" {
		t.Errorf("unexpected copy: %+v", c)
	}
	if c.HasAspect(domnode.AspectWorkingCopy) || c.Prop(domnode.PropWorkingCopyOf) != "" {
		t.Error("working copy state must not be copied")
	}
	if !c.HasAspect(domnode.AspectTaggable) || c.Prop(domnode.PropTitle) != "B" {
		t.Error("regular aspects and props must be copied")
	}
}

func TestCopy_FolderDeep(t *testing.T) {
	repo, ms := newTestRepo(t)
	root, _, specs, _ := seedTree(t, ms)
	seed(t, ms, mkNode("sub", "v2", domnode.TypeFolder, "specs", "root", "lib", "specs"))
	seed(t, ms, mkNode("deep", "z.txt", domnode.TypeContent, "sub", "root", "lib", "specs", "sub"))
	ctx := context.Background()

	c, err := repo.Copy(ctx, specs, root, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deep, err := repo.ResolvePath(ctx, c, "v2/z.txt")
	if err != nil {
		t.Fatalf("copied subtree not resolvable: %v", err)
	}
	if !deep.IsWithin(c.ID()) || deep.ID() == "deep" {
		t.Errorf("unexpected deep copy: %+v", deep)
	}
	if _, err := repo.ResolvePath(ctx, c, "a.txt"); err != nil {
		t.Errorf("direct child not copied: %v", err)
	}
}

func TestCopy_NameConflict(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, specs, doc := seedTree(t, ms)

	_, err := repo.Copy(context.Background(), doc, specs, "bob")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCopy_IntoItself(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, specs, _ := seedTree(t, ms)

	_, err := repo.Copy(context.Background(), lib, specs, "bob")
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

func TestMove_RewritesSubtree(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, specs, _ := seedTree(t, ms)
	archive := seed(t, ms, mkNode("archive", "Archive", domnode.TypeFolder, "root", "root"))

	moved, err := repo.Move(context.Background(), specs, archive, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.ParentID() != "archive" || moved.Modifier() != "bob" {
		t.Errorf("unexpected moved node: %+v", moved)
	}
	if _, ok := ms.children[childrenKey("lib")]["Specs"]; ok {
		t.Error("old parent still lists the node")
	}
	if ms.children[childrenKey("archive")]["Specs"] != "specs" {
		t.Error("new parent does not list the node")
	}

	doc := ms.node(t, "doc")
	want := []string{"root", "archive", "specs"}
	if !slices.Equal(doc.Ancestors(), want) {
		t.Errorf("descendant ancestors = %v, want %v", doc.Ancestors(), want)
	}
}

func TestMove_Conflict(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, lib, _, doc := seedTree(t, ms)
	seed(t, ms, mkNode("other", "a.txt", domnode.TypeContent, "lib", "root", "lib"))

	_, err := repo.Move(context.Background(), doc, lib, "bob")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if ms.children[childrenKey("specs")]["a.txt"] != "doc" {
		t.Error("failed move must keep the old parent entry")
	}
}

func TestMove_SameParentNoop(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, specs, doc := seedTree(t, ms)

	moved, err := repo.Move(context.Background(), doc, specs, "bob")
	if err != nil || moved.ID() != doc.ID() {
		t.Errorf("expected no-op, got %v, %v", moved, err)
	}
}

func TestLink(t *testing.T) {
	repo, ms := newTestRepo(t)
	root, _, specs, doc := seedTree(t, ms)

	fileLink, err := repo.Link(context.Background(), doc, root, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fileLink.Classify() != domnode.KindFileLink || fileLink.Prop(domnode.PropDestination) != "doc" {
		t.Errorf("unexpected file link: %+v", fileLink)
	}

	folderLink, err := repo.Link(context.Background(), specs, root, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folderLink.Classify() != domnode.KindFolderLink {
		t.Errorf("kind = %s, want folderlink", folderLink.Classify())
	}

	if _, err := repo.Link(context.Background(), doc, root, "bob"); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCopy_FailureRemovesPartialCopy(t *testing.T) {
	repo, ms := newTestRepo(t)
	root, _, specs, _ := seedTree(t, ms)
	seed(t, ms, mkNode("sub", "v2", domnode.TypeFolder, "specs", "root", "lib", "specs"))
	seed(t, ms, mkNode("deep", "z.txt", domnode.TypeContent, "sub", "root", "lib", "specs", "sub"))
	before := len(ms.docs)
	ms.failFields = map[string]error{"z.txt": errors.New("connection reset")}

	_, err := repo.Copy(context.Background(), specs, root, "bob")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(ms.docs) != before {
		t.Errorf("documents = %d, want %d", len(ms.docs), before)
	}
	if _, ok := ms.children[childrenKey("root")]["Specs"]; ok {
		t.Error("copy root still listed in the destination")
	}

	// a retry is not blocked by leftovers
	ms.failFields = nil
	if _, err := repo.Copy(context.Background(), specs, root, "bob"); err != nil {
		t.Errorf("retry: %v", err)
	}
}

func TestCopy_DescendantsFailureRemovesRoot(t *testing.T) {
	repo, ms := newTestRepo(t)
	root, _, specs, _ := seedTree(t, ms)
	ms.searchFn = func(_ context.Context, _ *db.SearchQuery) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}

	_, err := repo.Copy(context.Background(), specs, root, "bob")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	if _, ok := ms.children[childrenKey("root")]["Specs"]; ok {
		t.Error("copy root still listed in the destination")
	}
}

func TestMove_RewriteFailureRestores(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, specs, _ := seedTree(t, ms)
	archive := seed(t, ms, mkNode("archive", "Archive", domnode.TypeFolder, "root", "root"))
	ms.setMultiErrs = []error{errors.New("pipeline broken")}

	_, err := repo.Move(context.Background(), specs, archive, "bob")
	if err == nil {
		t.Fatal("expected error")
	}
	assertNotMoved(t, ms)
}

func TestMove_ReleaseFailureRestores(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, specs, _ := seedTree(t, ms)
	archive := seed(t, ms, mkNode("archive", "Archive", domnode.TypeFolder, "root", "root"))
	ms.hdelErrs = []error{errors.New("readonly replica")}

	_, err := repo.Move(context.Background(), specs, archive, "bob")
	if err == nil {
		t.Fatal("expected error")
	}
	assertNotMoved(t, ms)
}

func TestMove_DescendantsFailureReleasesName(t *testing.T) {
	repo, ms := newTestRepo(t)
	_, _, specs, _ := seedTree(t, ms)
	archive := seed(t, ms, mkNode("archive", "Archive", domnode.TypeFolder, "root", "root"))
	ms.searchFn = func(_ context.Context, _ *db.SearchQuery) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}

	_, err := repo.Move(context.Background(), specs, archive, "bob")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	assertNotMoved(t, ms)
}

// assertNotMoved checks that Specs and its subtree still sit under lib.
func assertNotMoved(t *testing.T, ms *mockStore) {
	t.Helper()
	if ms.children[childrenKey("lib")]["Specs"] != "specs" {
		t.Error("old parent lost the node")
	}
	if _, ok := ms.children[childrenKey("archive")]["Specs"]; ok {
		t.Error("destination still claims the name")
	}
	if got := ms.node(t, "specs").ParentID(); got != "lib" {
		t.Errorf("parent = %s, want lib", got)
	}
	want := []string{"root", "lib", "specs"}
	if got := ms.node(t, "doc").Ancestors(); !slices.Equal(got, want) {
		t.Errorf("descendant ancestors = %v, want %v", got, want)
	}
}
