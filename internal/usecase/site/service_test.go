package site

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/doclib/internal/domain"
	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
	"github.com/kailas-cloud/doclib/internal/domain/listing"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

type mockNodes struct {
	children map[string]domnode.Node // name -> node under the sites folder
	sites    domnode.Node
	noFolder bool
}

func (m *mockNodes) ChildByName(_ context.Context, parentID, name string) (domnode.Node, error) {
	if parentID != "root" || name != SitesFolder || m.noFolder {
		return domnode.Node{}, domain.NewNotFound("node", name)
	}
	return m.sites, nil
}

func (m *mockNodes) CreateChild(_ context.Context, parent domnode.Node, a domnode.Attrs) (domnode.Node, bool, error) {
	if n, ok := m.children[a.Name]; ok {
		return n, false, nil
	}
	a.ID = "node-" + a.Name
	a.ParentID = parent.ID()
	n := domnode.Reconstruct(a)
	m.children[a.Name] = n
	return n, true, nil
}

func (m *mockNodes) Remove(_ context.Context, n domnode.Node) error {
	delete(m.children, n.Name())
	return nil
}

type mockSites struct {
	sites   map[string]domdir.Site
	err     error
	saveErr error
}

func (m *mockSites) Site(_ context.Context, shortName string) (domdir.Site, error) {
	if m.err != nil {
		return domdir.Site{}, m.err
	}
	s, ok := m.sites[shortName]
	if !ok {
		return domdir.Site{}, domain.NewNotFound("site", shortName)
	}
	return s, nil
}

func (m *mockSites) SaveSite(_ context.Context, s domdir.Site) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sites[s.ShortName] = s
	return nil
}

type grant struct {
	node, authority string
	role            listing.Role
}

type mockACL struct {
	grants  []grant
	err     error
	cleared []string
}

func (m *mockACL) Grant(_ context.Context, nodeID, authority string, role listing.Role) error {
	if m.err != nil {
		return m.err
	}
	m.grants = append(m.grants, grant{nodeID, authority, role})
	return nil
}

func (m *mockACL) Clear(_ context.Context, nodeID string) error {
	m.cleared = append(m.cleared, nodeID)
	m.grants = slices.DeleteFunc(m.grants, func(g grant) bool { return g.node == nodeID })
	return nil
}

type fixture struct {
	svc   *Service
	nodes *mockNodes
	sites *mockSites
	acl   *mockACL
}

func newFixture() *fixture {
	f := &fixture{
		nodes: &mockNodes{
			children: map[string]domnode.Node{},
			sites:    domnode.Reconstruct(domnode.Attrs{ID: "sites", Type: domnode.TypeSites, Name: SitesFolder}),
		},
		sites: &mockSites{sites: map[string]domdir.Site{}},
		acl:   &mockACL{},
	}
	f.svc = New("root", f.nodes, f.sites, f.acl)
	return f
}

func asUser(u string) context.Context {
	return domain.ContextWithUser(context.Background(), u)
}

func TestCreate_Public(t *testing.T) {
	f := newFixture()

	s, err := f.svc.Create(asUser("alice"), CreateRequest{ShortName: "eng", Title: "Engineering", Public: true})
	require.NoError(t, err)

	assert.Equal(t, domdir.Site{ShortName: "eng", Title: "Engineering", NodeID: "node-eng"}, s)
	assert.Equal(t, s, f.sites.sites["eng"])

	n := f.nodes.children["eng"]
	assert.Equal(t, domnode.TypeSite, n.Type())
	assert.Equal(t, "sites", n.ParentID())
	assert.Equal(t, "alice", n.Creator())

	assert.Equal(t, []grant{
		{"node-eng", "alice", listing.RoleSiteManager},
		{"node-eng", domdir.EveryoneGroup, listing.RoleConsumer},
	}, f.acl.grants)
}

func TestCreate_PrivateDefaultsTitle(t *testing.T) {
	f := newFixture()

	s, err := f.svc.Create(asUser("bob"), CreateRequest{ShortName: "ops"})
	require.NoError(t, err)

	assert.Equal(t, "ops", s.Title)
	assert.Equal(t, []grant{{"node-ops", "bob", listing.RoleSiteManager}}, f.acl.grants)
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		req     CreateRequest
		prepare func(*fixture)
		want    error
	}{
		{"empty short name", "alice", CreateRequest{}, nil, domain.ErrBadRequest},
		{"bad short name", "alice", CreateRequest{ShortName: "Eng Team"}, nil, domain.ErrBadRequest},
		{"guest", domain.Guest, CreateRequest{ShortName: "eng"}, nil, domain.ErrForbidden},
		{
			"site record exists", "alice", CreateRequest{ShortName: "eng"},
			func(f *fixture) { f.sites.sites["eng"] = domdir.Site{ShortName: "eng"} },
			domain.ErrAlreadyExists,
		},
		{
			"site node exists", "alice", CreateRequest{ShortName: "eng"},
			func(f *fixture) { f.nodes.children["eng"] = domnode.Reconstruct(domnode.Attrs{ID: "old", Name: "eng"}) },
			domain.ErrAlreadyExists,
		},
		{
			"no sites folder", "alice", CreateRequest{ShortName: "eng"},
			func(f *fixture) { f.nodes.noFolder = true },
			domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.prepare != nil {
				tt.prepare(f)
			}
			_, err := f.svc.Create(asUser(tt.user), tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.acl.grants)
		})
	}
}

func TestCreate_LookupFailure(t *testing.T) {
	f := newFixture()
	boom := errors.New("connection reset")
	f.sites.err = boom

	_, err := f.svc.Create(asUser("alice"), CreateRequest{ShortName: "eng"})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCreate_FailureRollsBack(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name    string
		prepare func(*fixture)
	}{
		{"grant", func(f *fixture) { f.acl.err = boom }},
		{"save", func(f *fixture) { f.sites.saveErr = boom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.prepare(f)

			_, err := f.svc.Create(asUser("alice"), CreateRequest{ShortName: "eng", Public: true})
			require.ErrorIs(t, err, boom)

			assert.Empty(t, f.nodes.children, "site node removed")
			assert.Empty(t, f.acl.grants, "roles dropped")
			assert.Equal(t, []string{"node-eng"}, f.acl.cleared)

			// the short name is free again
			f.acl.err, f.sites.saveErr = nil, nil
			s, err := f.svc.Create(asUser("alice"), CreateRequest{ShortName: "eng"})
			require.NoError(t, err)
			assert.Equal(t, "node-eng", s.NodeID)
		})
	}
}
