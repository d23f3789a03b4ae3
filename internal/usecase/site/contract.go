package site

import (
	"context"

	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
	"github.com/kailas-cloud/doclib/internal/domain/listing"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// NodeRepository finds the sites folder and creates site nodes under it.
type NodeRepository interface {
	ChildByName(ctx context.Context, parentID, name string) (domnode.Node, error)
	CreateChild(ctx context.Context, parent domnode.Node, a domnode.Attrs) (domnode.Node, bool, error)
	Remove(ctx context.Context, n domnode.Node) error
}

// SiteDirectory stores site records.
type SiteDirectory interface {
	Site(ctx context.Context, shortName string) (domdir.Site, error)
	SaveSite(ctx context.Context, s domdir.Site) error
}

// Granter assigns and drops roles on nodes.
type Granter interface {
	Grant(ctx context.Context, nodeID, authority string, role listing.Role) error
	Clear(ctx context.Context, nodeID string) error
}
