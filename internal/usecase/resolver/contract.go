package resolver

import (
	"context"

	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
	"github.com/kailas-cloud/doclib/internal/domain/listing"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// NodeRepository resolves and lazily creates nodes.
type NodeRepository interface {
	Get(ctx context.Context, id string) (domnode.Node, error)
	ChildByName(ctx context.Context, parentID, name string) (domnode.Node, error)
	ResolvePath(ctx context.Context, root domnode.Node, path string) (domnode.Node, error)
	Path(ctx context.Context, n domnode.Node) ([]domnode.Segment, error)
	CreateChild(ctx context.Context, parent domnode.Node, a domnode.Attrs) (domnode.Node, bool, error)
}

// SiteDirectory looks sites up by short name.
type SiteDirectory interface {
	Site(ctx context.Context, shortName string) (domdir.Site, error)
}

// Authorizer returns the current user's permissions on a node.
type Authorizer interface {
	Permissions(ctx context.Context, n domnode.Node, user string) (listing.Permissions, error)
}
