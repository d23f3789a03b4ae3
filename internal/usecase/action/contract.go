package action

import (
	"context"

	"github.com/kailas-cloud/doclib/internal/domain/listing"
	"github.com/kailas-cloud/doclib/internal/domain/location"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/usecase/resolver"
)

// Resolver resolves the destination of an action.
type Resolver interface {
	Resolve(ctx context.Context, args resolver.Args) (location.Resolved, error)
}

// NodeRepository reads and relocates nodes.
type NodeRepository interface {
	Get(ctx context.Context, id string) (domnode.Node, error)
	Copy(ctx context.Context, src, dest domnode.Node, user string) (domnode.Node, error)
	Move(ctx context.Context, n, dest domnode.Node, user string) (domnode.Node, error)
	Link(ctx context.Context, target, dest domnode.Node, user string) (domnode.Node, error)
}

// Authorizer returns the current user's permissions on a node.
type Authorizer interface {
	Permissions(ctx context.Context, n domnode.Node, user string) (listing.Permissions, error)
}
