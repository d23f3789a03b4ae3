package evaluator

import (
	"context"
	"sync"

	"github.com/kailas-cloud/doclib/internal/domain"
	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
	"github.com/kailas-cloud/doclib/internal/domain/listing"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// --- Mocks ---

type mockDirectory struct {
	people map[string]domdir.Person
	groups map[string]domdir.Group
	sites  map[string]domdir.Site
	err    error

	mu    sync.Mutex
	calls map[string]int
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		people: map[string]domdir.Person{},
		groups: map[string]domdir.Group{},
		sites:  map[string]domdir.Site{},
		calls:  map[string]int{},
	}
}

func (m *mockDirectory) called(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[key]++
}

func (m *mockDirectory) Person(_ context.Context, userName string) (domdir.Person, error) {
	m.called("person:" + userName)
	if m.err != nil {
		return domdir.Person{}, m.err
	}
	p, ok := m.people[userName]
	if !ok {
		return domdir.Person{}, domain.NewNotFound("person", userName)
	}
	return p, nil
}

func (m *mockDirectory) Group(_ context.Context, id string) (domdir.Group, error) {
	m.called("group:" + id)
	if m.err != nil {
		return domdir.Group{}, m.err
	}
	g, ok := m.groups[id]
	if !ok {
		return domdir.Group{}, domain.NewNotFound("group", id)
	}
	return g, nil
}

func (m *mockDirectory) Site(_ context.Context, shortName string) (domdir.Site, error) {
	m.called("site:" + shortName)
	if m.err != nil {
		return domdir.Site{}, m.err
	}
	s, ok := m.sites[shortName]
	if !ok {
		return domdir.Site{}, domain.NewNotFound("site", shortName)
	}
	return s, nil
}

type mockNodes struct {
	nodes   map[string]domnode.Node
	getErr  error
	pathErr error
}

func (m *mockNodes) Get(_ context.Context, id string) (domnode.Node, error) {
	if m.getErr != nil {
		return domnode.Node{}, m.getErr
	}
	n, ok := m.nodes[id]
	if !ok {
		return domnode.Node{}, domain.NewNotFound("node", id)
	}
	return n, nil
}

func (m *mockNodes) Path(_ context.Context, n domnode.Node) ([]domnode.Segment, error) {
	if m.pathErr != nil {
		return nil, m.pathErr
	}
	var ancestors []domnode.Node
	for _, id := range n.Ancestors() {
		ancestors = append(ancestors, m.nodes[id])
	}
	return domnode.PathOf(ancestors, n), nil
}

type mockAuthz struct {
	perms listing.Permissions
	err   error
}

func (m *mockAuthz) Permissions(_ context.Context, _ domnode.Node, _ string) (listing.Permissions, error) {
	return m.perms, m.err
}

type mockThumbs struct {
	requested []string
	queued    bool
	err       error
}

func (m *mockThumbs) Request(_ context.Context, nodeID string) (bool, error) {
	m.requested = append(m.requested, nodeID)
	return m.queued, m.err
}

// --- Fixtures ---

// tree: Company Home / Sites / eng / documentLibrary / Specs
func newMockNodes() *mockNodes {
	m := &mockNodes{nodes: map[string]domnode.Node{}}
	for _, a := range []domnode.Attrs{
		{ID: "root", QName: "app:company_home", Name: "Company Home", Type: domnode.TypeCompanyHome},
		{ID: "sites", QName: domnode.SitesSegment, Name: "Sites", Type: domnode.TypeSites},
		{ID: "eng", Name: "eng", Type: domnode.TypeSite},
		{ID: "lib", Name: "documentLibrary", Type: domnode.TypeFolder},
		{ID: "specs", Name: "Specs", Type: domnode.TypeFolder},
	} {
		m.nodes[a.ID] = domnode.Reconstruct(a)
	}
	return m
}

var specsAncestors = []string{"root", "sites", "eng", "lib", "specs"}

func mkNode(a domnode.Attrs) domnode.Node {
	if a.Ancestors == nil {
		a.Ancestors = specsAncestors
		a.ParentID = "specs"
	}
	if a.Type == "" {
		a.Type = domnode.TypeContent
	}
	if a.Creator == "" {
		a.Creator = "alice"
	}
	if a.Modifier == "" {
		a.Modifier = a.Creator
	}
	return domnode.Reconstruct(a)
}

type fixture struct {
	dir    *mockDirectory
	nodes  *mockNodes
	authz  *mockAuthz
	thumbs *mockThumbs
	eval   *Evaluator
	caches *Caches
}

func newFixture() *fixture {
	dir := newMockDirectory()
	dir.people["alice"] = domdir.Person{UserName: "alice", FirstName: "Alice", LastName: "Liddell"}
	dir.people["bob"] = domdir.Person{UserName: "bob", FirstName: "Bob"}
	dir.groups["GROUP_eng"] = domdir.Group{ID: "GROUP_eng", DisplayName: "Engineering Team"}
	dir.sites["eng"] = domdir.Site{ShortName: "eng", Title: "Engineering"}

	nodes := newMockNodes()
	authz := &mockAuthz{perms: listing.Permissions{Read: true, Create: true, Edit: true}}
	thumbs := &mockThumbs{queued: true}

	eval := New(nodes, authz, thumbs, nil)
	eval.spawn = func(f func()) { f() }

	caches, err := NewCaches(dir, 0, nil)
	if err != nil {
		panic(err)
	}
	return &fixture{dir: dir, nodes: nodes, authz: authz, thumbs: thumbs, eval: eval, caches: caches}
}
