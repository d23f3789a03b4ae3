// Package location describes where a node lives and the outcome of
// resolving listing arguments.
package location

import (
	"strings"

	"github.com/kailas-cloud/doclib/internal/domain"
	"github.com/kailas-cloud/doclib/internal/domain/node"
)

// Descriptor is the (site, container, path) triple shown in breadcrumbs.
// Nodes outside any site only carry Path, as an absolute display path.
type Descriptor struct {
	Site      string `json:"site,omitempty"`
	SiteTitle string `json:"siteTitle,omitempty"`
	Container string `json:"container,omitempty"`
	Path      string `json:"path"`
	File      string `json:"file,omitempty"`
}

// InSite reports whether the descriptor points into a site.
func (d Descriptor) InSite() bool { return d.Site != "" }

// Describe walks the qualified path of a node (root first, node last).
// The segment following the sites folder names the site, the next one the
// container, and the rest forms the path relative to the container.
func Describe(segs []node.Segment) Descriptor {
	for i, s := range segs {
		if s.QName != node.SitesSegment {
			continue
		}
		if i+1 >= len(segs) {
			break
		}
		d := Descriptor{Site: segs[i+1].Name, Path: "/"}
		if i+2 < len(segs) {
			d.Container = segs[i+2].Name
			d.Path = "/" + joinNames(segs[i+3:])
		}
		return d
	}
	return Descriptor{Path: "/" + joinNames(segs)}
}

func joinNames(segs []node.Segment) string {
	names := make([]string, 0, len(segs))
	for _, s := range segs {
		names = append(names, s.Name)
	}
	return strings.Join(names, "/")
}

// Resolved is the immutable result of argument resolution.
type Resolved struct {
	root                node.Node
	pathNode            node.Node
	location            Descriptor
	libraryRootOverride string
}

// NewResolved binds a root and a path node. The path node must be the root
// or one of its descendants.
func NewResolved(root, pathNode node.Node, loc Descriptor, libraryRoot string) (Resolved, error) {
	if !pathNode.IsWithin(root.ID()) {
		return Resolved{}, domain.NewNotFound("node", pathNode.Ref().String()+" under "+root.Ref().String())
	}
	return Resolved{root: root, pathNode: pathNode, location: loc, libraryRootOverride: libraryRoot}, nil
}

// Root returns the listing root.
func (r Resolved) Root() node.Node { return r.root }

// PathNode returns the target node.
func (r Resolved) PathNode() node.Node { return r.pathNode }

// Location returns the location descriptor of the path node.
func (r Resolved) Location() Descriptor { return r.location }

// Site returns the site short name, empty outside sites.
func (r Resolved) Site() string { return r.location.Site }

// Container returns the container id, empty outside sites.
func (r Resolved) Container() string { return r.location.Container }

// LibraryRootOverride returns the libraryRoot argument, if one was given.
func (r Resolved) LibraryRootOverride() string { return r.libraryRootOverride }
