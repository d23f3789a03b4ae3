// Package action copies, moves and links several nodes into a destination
// with per-item results.
package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/doclib/internal/domain"
	domaction "github.com/kailas-cloud/doclib/internal/domain/action"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/logger"
	"github.com/kailas-cloud/doclib/internal/usecase/resolver"
)

// MaxItems is the maximum number of nodes per action request.
const MaxItems = 100

// Service runs multi-item actions. Items are processed independently:
// a failed item never undoes the items before it.
type Service struct {
	resolver   Resolver
	nodes      NodeRepository
	authz      Authorizer
	maxItems   int
	itemsTotal *prometheus.CounterVec
}

// New creates an action service.
func New(r Resolver, nodes NodeRepository, authz Authorizer) *Service {
	return &Service{resolver: r, nodes: nodes, authz: authz, maxItems: MaxItems}
}

// WithMaxItems configures the maximum number of items per request.
func (s *Service) WithMaxItems(n int) *Service {
	if n > 0 {
		s.maxItems = n
	}
	return s
}

// WithMetrics sets the per-item counter (labels "action", "status").
func (s *Service) WithMetrics(itemsTotal *prometheus.CounterVec) *Service {
	s.itemsTotal = itemsTotal
	return s
}

// Run applies kind to every node ref with the destination resolved from
// dest. Only a destination that cannot be resolved fails the request;
// everything else is reported per item.
func (s *Service) Run(
	ctx context.Context, kind domaction.Kind, dest resolver.Args, nodeRefs []string,
) (domaction.Summary, error) {
	if len(nodeRefs) == 0 {
		return domaction.Summary{}, fmt.Errorf("no nodes given: %w", domain.ErrBadRequest)
	}

	loc, err := s.resolver.Resolve(ctx, dest)
	if err != nil {
		return domaction.Summary{}, fmt.Errorf("resolve destination: %w", err)
	}
	target := loc.PathNode()
	user := domain.UserFromContext(ctx)

	results := make([]domaction.Result, len(nodeRefs))
	if len(nodeRefs) > s.maxItems {
		for i, ref := range nodeRefs {
			results[i] = domaction.NewError(ref, "",
				fmt.Errorf("at most %d items per request: %w", s.maxItems, domain.ErrBadRequest))
		}
		return s.summarize(ctx, kind, results), nil
	}

	destErr := s.checkDestination(ctx, target, user)
	for i, ref := range nodeRefs {
		if destErr != nil {
			results[i] = domaction.NewError(ref, "", destErr)
			continue
		}
		results[i] = s.apply(ctx, kind, ref, target, user)
	}
	return s.summarize(ctx, kind, results), nil
}

func (s *Service) checkDestination(ctx context.Context, dest domnode.Node, user string) error {
	if !dest.Has(domnode.CapContainer) {
		return fmt.Errorf("destination %s is not a folder: %w", dest.Name(), domain.ErrBadRequest)
	}
	perms, err := s.authz.Permissions(ctx, dest, user)
	if err != nil {
		return fmt.Errorf("permissions of destination: %w", err)
	}
	if !perms.Create {
		return fmt.Errorf("no create permission on %s: %w", dest.Name(), domain.ErrForbidden)
	}
	return nil
}

func (s *Service) apply(
	ctx context.Context, kind domaction.Kind, ref string, dest domnode.Node, user string,
) domaction.Result {
	parsed, err := domnode.ParseRef(ref)
	if err != nil {
		return domaction.NewError(ref, "", fmt.Errorf("%w: %w", domain.ErrBadRequest, err))
	}
	src, err := s.nodes.Get(ctx, parsed.ID())
	if err != nil {
		return domaction.NewError(ref, "", err)
	}
	if err = s.checkSource(ctx, kind, src, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domaction.NewError(ref, "", err)
		}
		return domaction.NewError(ref, src.Name(), err)
	}

	var out domnode.Node
	switch kind {
	case domaction.KindCopy:
		out, err = s.nodes.Copy(ctx, src, dest, user)
	case domaction.KindMove:
		out, err = s.nodes.Move(ctx, src, dest, user)
	case domaction.KindLink:
		out, err = s.nodes.Link(ctx, src, dest, user)
	default:
		err = fmt.Errorf("unknown action %q: %w", kind, domain.ErrBadRequest)
	}
	if err != nil {
		return domaction.NewError(ref, src.Name(), err)
	}
	return domaction.NewOK(ref, src.Name(), out.ID())
}

// checkSource requires read on every source; an unreadable node reads as
// missing. Move additionally needs delete on the source.
func (s *Service) checkSource(ctx context.Context, kind domaction.Kind, n domnode.Node, user string) error {
	perms, err := s.authz.Permissions(ctx, n, user)
	if err != nil {
		return fmt.Errorf("permissions of %s: %w", n.ID(), err)
	}
	if !perms.Read {
		return domain.NewNotFound("node", n.ID())
	}
	if kind == domaction.KindMove && !perms.Delete {
		return fmt.Errorf("no delete permission on %s: %w", n.Name(), domain.ErrForbidden)
	}
	return nil
}

func (s *Service) summarize(ctx context.Context, kind domaction.Kind, results []domaction.Result) domaction.Summary {
	log := logger.FromContext(ctx)
	for _, r := range results {
		status := string(r.Status())
		if s.itemsTotal != nil {
			s.itemsTotal.WithLabelValues(string(kind), status).Inc()
		}
		if err := r.Err(); err != nil && !isClientError(err) {
			log.Warn("action item failed",
				zap.String("action", string(kind)),
				zap.String("node_ref", r.NodeRef()),
				zap.Error(err),
			)
		}
	}
	return domaction.Summarize(results)
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrBadRequest) ||
		errors.Is(err, domain.ErrAlreadyExists)
}
