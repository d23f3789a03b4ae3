package favourite

import (
	"context"

	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// PreferenceStore keeps per-user favourite node ids.
type PreferenceStore interface {
	Favourites(ctx context.Context, user string) ([]string, error)
	AddFavourite(ctx context.Context, user, nodeID string) error
	RemoveFavourite(ctx context.Context, user, nodeID string) error
}

// NodeReader checks that a favourite target exists.
type NodeReader interface {
	Get(ctx context.Context, id string) (domnode.Node, error)
}
