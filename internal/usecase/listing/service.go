// Package listing runs the document-library listing pipeline.
package listing

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/doclib/internal/domain"
	domlisting "github.com/kailas-cloud/doclib/internal/domain/listing"
	"github.com/kailas-cloud/doclib/internal/domain/location"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/domain/query"
	"github.com/kailas-cloud/doclib/internal/logger"
	"github.com/kailas-cloud/doclib/internal/usecase/evaluator"
	"github.com/kailas-cloud/doclib/internal/usecase/filterquery"
	"github.com/kailas-cloud/doclib/internal/usecase/resolver"
)

// Request is a listing request. PageSize 0 returns every item.
type Request struct {
	Args     resolver.Args
	Filter   filterquery.Spec
	PageSize int
	PageNo   int
}

// Listing is one page of evaluated items under a parent.
type Listing struct {
	Items    []domlisting.Item
	Paging   domlisting.Page
	Parent   domlisting.Item
	Location location.Descriptor
	Query    query.Descriptor
}

// Service orchestrates resolve, build, search, evaluate and paginate.
type Service struct {
	resolver  Resolver
	builder   QueryBuilder
	search    Searcher
	eval      Evaluator
	directory evaluator.Directory

	lookups    *prometheus.CounterVec
	itemsTotal *prometheus.CounterVec
}

// New creates a listing service.
func New(r Resolver, b QueryBuilder, s Searcher, e Evaluator, dir evaluator.Directory) *Service {
	return &Service{resolver: r, builder: b, search: s, eval: e, directory: dir}
}

// WithMetrics sets the cache lookup counter (labels "cache", "result") and
// the evaluated item counter (label "result").
func (s *Service) WithMetrics(lookups, itemsTotal *prometheus.CounterVec) *Service {
	s.lookups = lookups
	s.itemsTotal = itemsTotal
	return s
}

// List returns a page of the listing described by req.
func (s *Service) List(ctx context.Context, req Request) (Listing, error) {
	user := domain.UserFromContext(ctx)
	log := logger.FromContext(ctx)

	args := req.Args
	args.Filter = req.Filter.FilterID
	loc, err := s.resolver.Resolve(ctx, args)
	if err != nil {
		return Listing{}, fmt.Errorf("resolve location: %w", err)
	}

	d, err := s.builder.Build(ctx, req.Filter, loc, user)
	if err != nil {
		return Listing{}, fmt.Errorf("build query: %w", err)
	}

	var nodes []domnode.Node
	if !d.Empty {
		if nodes, err = s.search.Search(ctx, d); err != nil {
			return Listing{}, fmt.Errorf("search: %w", err)
		}
	}

	// sized for the hits plus the parent
	caches, err := evaluator.NewCaches(s.directory, len(nodes)+1, s.lookups)
	if err != nil {
		return Listing{}, err
	}

	parent, err := s.eval.Evaluate(ctx, loc.PathNode(), caches, user)
	if err != nil {
		return Listing{}, fmt.Errorf("evaluate parent: %w", err)
	}

	items := make([]domlisting.Item, 0, len(nodes))
	for _, n := range nodes {
		item, err := s.eval.Evaluate(ctx, n, caches, user)
		if err != nil {
			s.countItem("skipped")
			log.Warn("skipping node", zap.String("node_id", n.ID()), zap.Error(err))
			continue
		}
		if !item.Permissions.Read {
			s.countItem("hidden")
			continue
		}
		s.countItem("evaluated")
		items = append(items, item)
	}

	domlisting.Sort(items, d.SortsBy(domnode.PropName))
	page := domlisting.Paginate(items, req.PageSize, req.PageNo)

	log.Debug("listing built",
		zap.String("filter", d.FilterID),
		zap.String("query", d.QueryString()),
		zap.Int("found", len(nodes)),
		zap.Int("total", page.TotalRecords),
	)

	return Listing{
		Items:    page.Items,
		Paging:   page,
		Parent:   parent,
		Location: loc.Location(),
		Query:    d,
	}, nil
}

// Item evaluates a single node addressed by args.
func (s *Service) Item(ctx context.Context, args resolver.Args) (domlisting.Item, location.Descriptor, error) {
	loc, err := s.resolver.Resolve(ctx, args)
	if err != nil {
		return domlisting.Item{}, location.Descriptor{}, fmt.Errorf("resolve location: %w", err)
	}
	caches, err := evaluator.NewCaches(s.directory, 1, s.lookups)
	if err != nil {
		return domlisting.Item{}, location.Descriptor{}, err
	}
	item, err := s.eval.Evaluate(ctx, loc.PathNode(), caches, domain.UserFromContext(ctx))
	if err != nil {
		return domlisting.Item{}, location.Descriptor{}, fmt.Errorf("evaluate %s: %w", loc.PathNode().ID(), err)
	}
	if !item.Permissions.Read {
		return domlisting.Item{}, location.Descriptor{}, domain.NewNotFound("node", loc.PathNode().ID())
	}
	return item, loc.Location(), nil
}

func (s *Service) countItem(result string) {
	if s.itemsTotal != nil {
		s.itemsTotal.WithLabelValues(result).Inc()
	}
}
