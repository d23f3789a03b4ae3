package filterquery

import (
	"context"

	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// FavouriteReader returns the node ids a user marked as favourites.
type FavouriteReader interface {
	Favourites(ctx context.Context, user string) ([]string, error)
}

// NodeReader looks up stored saved-search definitions.
type NodeReader interface {
	ChildByName(ctx context.Context, parentID, name string) (domnode.Node, error)
}
