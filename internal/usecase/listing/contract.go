package listing

import (
	"context"

	domlisting "github.com/kailas-cloud/doclib/internal/domain/listing"
	"github.com/kailas-cloud/doclib/internal/domain/location"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/domain/query"
	"github.com/kailas-cloud/doclib/internal/usecase/evaluator"
	"github.com/kailas-cloud/doclib/internal/usecase/filterquery"
	"github.com/kailas-cloud/doclib/internal/usecase/resolver"
)

// Resolver resolves listing arguments.
type Resolver interface {
	Resolve(ctx context.Context, args resolver.Args) (location.Resolved, error)
}

// QueryBuilder builds the listing query for a filter.
type QueryBuilder interface {
	Build(ctx context.Context, spec filterquery.Spec, loc location.Resolved, user string) (query.Descriptor, error)
}

// Searcher executes listing queries.
type Searcher interface {
	Search(ctx context.Context, d query.Descriptor) ([]domnode.Node, error)
}

// Evaluator shapes a node into a listing item.
type Evaluator interface {
	Evaluate(ctx context.Context, n domnode.Node, caches *evaluator.Caches, user string) (domlisting.Item, error)
}
