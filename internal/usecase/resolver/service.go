// Package resolver turns listing arguments into a root node, a path node
// and a location descriptor.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/doclib/internal/domain"
	"github.com/kailas-cloud/doclib/internal/domain/location"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// DefaultContainer is used when the arguments name a site but no container.
const DefaultContainer = "documentLibrary"

// Filter keywords that select a fixed child of the root.
const (
	FilterHolds          = "holds"
	FilterTransfers      = "transfers"
	FilterUnfiledRecords = "unfiledRecords"
)

var fixedChildren = map[string]string{
	FilterHolds:          "Holds",
	FilterTransfers:      "Transfers",
	FilterUnfiledRecords: "Unfiled Records",
}

var containerDescriptions = map[string]string{
	"documentLibrary": "Document Library",
	"wiki":            "Wiki",
	"blog":            "Blog",
	"discussions":     "Discussions",
	"calendar":        "Calendar",
	"links":           "Links",
	"dataLists":       "Data Lists",
	"Saved Searches":  "Saved Searches",
}

// Args are the location arguments of a listing or action request.
// Either NodeRef or Site must be set.
type Args struct {
	NodeRef     string
	Site        string
	Container   string
	Path        string
	Filter      string
	LibraryRoot string
}

// Service resolves listing locations.
type Service struct {
	nodes NodeRepository
	sites SiteDirectory
	authz Authorizer
}

// New creates a resolver.
func New(nodes NodeRepository, sites SiteDirectory, authz Authorizer) *Service {
	return &Service{nodes: nodes, sites: sites, authz: authz}
}

// Resolve produces the root, the path node and its location.
// The only side effect is the creation of a missing site container.
// Rights are inherited downwards, so read access is checked on the base
// node and the library root only: an unreadable site is ErrGone, an
// unreadable node ErrNotFound.
func (s *Service) Resolve(ctx context.Context, args Args) (location.Resolved, error) {
	var base domnode.Node
	var err error
	if args.NodeRef != "" {
		base, err = s.node(ctx, args.NodeRef)
	} else {
		base, err = s.container(ctx, args.Site, args.Container)
	}
	if err != nil {
		return location.Resolved{}, err
	}

	root := base
	if args.LibraryRoot != "" {
		if root, err = s.node(ctx, args.LibraryRoot); err != nil {
			return location.Resolved{}, fmt.Errorf("library root: %w", err)
		}
	}

	var pathNode domnode.Node
	if name, ok := fixedChildren[args.Filter]; ok {
		pathNode, err = s.nodes.ChildByName(ctx, root.ID(), name)
	} else {
		pathNode, err = s.nodes.ResolvePath(ctx, base, args.Path)
	}
	if err != nil {
		return location.Resolved{}, fmt.Errorf("resolve path node: %w", err)
	}

	segs, err := s.nodes.Path(ctx, pathNode)
	if err != nil {
		return location.Resolved{}, fmt.Errorf("qualified path of %s: %w", pathNode.ID(), err)
	}
	loc := location.Describe(segs)
	if loc.InSite() {
		if site, err := s.sites.Site(ctx, loc.Site); err == nil {
			loc.SiteTitle = site.Title
		}
	}

	override := ""
	if args.LibraryRoot != "" {
		override = root.Ref().String()
	}
	return location.NewResolved(root, pathNode, loc, override)
}

func (s *Service) node(ctx context.Context, raw string) (domnode.Node, error) {
	ref, err := domnode.ParseRef(raw)
	if err != nil {
		return domnode.Node{}, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}
	n, err := s.nodes.Get(ctx, ref.ID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domnode.Node{}, domain.NewNotFound("node", raw)
		}
		return domnode.Node{}, err
	}
	perms, err := s.authz.Permissions(ctx, n, domain.UserFromContext(ctx))
	if err != nil {
		return domnode.Node{}, fmt.Errorf("permissions of %s: %w", n.ID(), err)
	}
	if !perms.Read {
		return domnode.Node{}, domain.NewNotFound("node", raw)
	}
	return n, nil
}

// container returns the named site container, creating it when missing.
// A missing site and a failed creation are both reported as ErrGone.
func (s *Service) container(ctx context.Context, siteID, containerID string) (domnode.Node, error) {
	if siteID == "" {
		return domnode.Node{}, fmt.Errorf("site or node reference is required: %w", domain.ErrBadRequest)
	}
	if containerID == "" {
		containerID = DefaultContainer
	}

	site, err := s.sites.Site(ctx, siteID)
	if err != nil {
		return domnode.Node{}, gone("site", siteID, err)
	}
	siteNode, err := s.nodes.Get(ctx, site.NodeID)
	if err != nil {
		return domnode.Node{}, gone("site", siteID, err)
	}

	user := domain.UserFromContext(ctx)
	perms, err := s.authz.Permissions(ctx, siteNode, user)
	if err != nil {
		return domnode.Node{}, gone("site", siteID, err)
	}
	if !perms.Read {
		return domnode.Node{}, gone("site", siteID, domain.ErrForbidden)
	}

	c, err := s.nodes.ChildByName(ctx, siteNode.ID(), containerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domnode.Node{}, err
	}

	if !perms.Create {
		return domnode.Node{}, gone("container", containerID, domain.ErrForbidden)
	}

	desc := containerDescriptions[containerID]
	if desc == "" {
		desc = containerID
	}
	c, _, err = s.nodes.CreateChild(ctx, siteNode, domnode.Attrs{
		Type:    domnode.TypeFolder,
		Name:    containerID,
		Aspects: []string{domnode.AspectSiteContainer},
		Properties: map[string]string{
			domnode.PropDescription: desc,
			domnode.PropComponentID: containerID,
		},
		Creator: user,
	})
	if err != nil {
		return domnode.Node{}, gone("container", containerID, err)
	}
	return c, nil
}

func gone(kind, id string, cause error) error {
	return fmt.Errorf("%s %q: %w: %v", kind, id, domain.ErrGone, cause)
}
