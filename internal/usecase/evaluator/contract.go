package evaluator

import (
	"context"

	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
	"github.com/kailas-cloud/doclib/internal/domain/listing"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// Directory looks up people, groups and sites.
type Directory interface {
	Person(ctx context.Context, userName string) (domdir.Person, error)
	Group(ctx context.Context, id string) (domdir.Group, error)
	Site(ctx context.Context, shortName string) (domdir.Site, error)
}

// NodeReader resolves link targets and qualified paths.
type NodeReader interface {
	Get(ctx context.Context, id string) (domnode.Node, error)
	Path(ctx context.Context, n domnode.Node) ([]domnode.Segment, error)
}

// Authorizer returns the current user's permissions on a node.
type Authorizer interface {
	Permissions(ctx context.Context, n domnode.Node, user string) (listing.Permissions, error)
}

// ThumbnailQueue requests thumbnail generation for a document.
type ThumbnailQueue interface {
	Request(ctx context.Context, nodeID string) (bool, error)
}
