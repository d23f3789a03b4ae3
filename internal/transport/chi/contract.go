package chi

import (
	"context"

	domaction "github.com/kailas-cloud/doclib/internal/domain/action"
	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
	domlisting "github.com/kailas-cloud/doclib/internal/domain/listing"
	"github.com/kailas-cloud/doclib/internal/domain/location"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	healthuc "github.com/kailas-cloud/doclib/internal/usecase/health"
	listinguc "github.com/kailas-cloud/doclib/internal/usecase/listing"
	"github.com/kailas-cloud/doclib/internal/usecase/resolver"
	siteuc "github.com/kailas-cloud/doclib/internal/usecase/site"
)

// ListingService serves document listings and single items.
type ListingService interface {
	List(ctx context.Context, req listinguc.Request) (listinguc.Listing, error)
	Item(ctx context.Context, args resolver.Args) (domlisting.Item, location.Descriptor, error)
}

// ActionService runs multi-item copy, move and link actions.
type ActionService interface {
	Run(ctx context.Context, kind domaction.Kind, dest resolver.Args, nodeRefs []string) (domaction.Summary, error)
}

// FavouriteService manages the current user's favourites.
type FavouriteService interface {
	List(ctx context.Context) ([]domnode.Ref, error)
	Add(ctx context.Context, nodeRef string) (domnode.Ref, error)
	Remove(ctx context.Context, nodeRef string) error
}

// SiteService provisions sites.
type SiteService interface {
	Create(ctx context.Context, req siteuc.CreateRequest) (domdir.Site, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
