// Package evaluator shapes raw nodes into listing items.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/doclib/internal/domain"
	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
	"github.com/kailas-cloud/doclib/internal/domain/listing"
	"github.com/kailas-cloud/doclib/internal/domain/location"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/logger"
)

const defaultThumbnailTimeout = 5 * time.Second

// Evaluator classifies nodes and resolves their display context.
type Evaluator struct {
	nodes  NodeReader
	authz  Authorizer
	thumbs ThumbnailQueue

	thumbTimeout time.Duration
	thumbsTotal  *prometheus.CounterVec
	spawn        func(func())
}

// New creates an evaluator. thumbs may be nil to disable thumbnail requests.
// thumbsTotal is a counter vec with label "status"; it may be nil.
func New(nodes NodeReader, authz Authorizer, thumbs ThumbnailQueue, thumbsTotal *prometheus.CounterVec) *Evaluator {
	return &Evaluator{
		nodes:        nodes,
		authz:        authz,
		thumbs:       thumbs,
		thumbTimeout: defaultThumbnailTimeout,
		thumbsTotal:  thumbsTotal,
		spawn:        func(f func()) { go f() },
	}
}

// WithThumbnailTimeout bounds each detached thumbnail request.
func (e *Evaluator) WithThumbnailTimeout(d time.Duration) *Evaluator {
	if d > 0 {
		e.thumbTimeout = d
	}
	return e
}

// Evaluate builds the listing item for n as seen by user.
func (e *Evaluator) Evaluate(
	ctx context.Context, n domnode.Node, caches *Caches, user string,
) (listing.Item, error) {
	item := listing.Item{Node: n, Kind: n.Classify()}

	if item.Kind == domnode.KindFolderLink || item.Kind == domnode.KindFileLink {
		link, err := e.link(ctx, n)
		if err != nil {
			return listing.Item{}, err
		}
		item.Link = link
	}

	if err := e.lockState(ctx, n, caches, &item); err != nil {
		return listing.Item{}, err
	}

	perms, err := e.authz.Permissions(ctx, n, user)
	if err != nil {
		return listing.Item{}, fmt.Errorf("permissions of %s: %w", n.ID(), err)
	}
	item.Permissions = perms

	if item.Creator, err = caches.Person(ctx, n.Creator()); err != nil {
		return listing.Item{}, err
	}
	if item.Modifier, err = caches.Person(ctx, n.Modifier()); err != nil {
		return listing.Item{}, err
	}

	if item.Location, err = e.location(ctx, n, caches); err != nil {
		return listing.Item{}, err
	}

	if item.Kind == domnode.KindDocument && !n.HasAspect(domnode.AspectThumbnailed) {
		e.requestThumbnail(ctx, n.ID())
	}
	return item, nil
}

// link resolves a link target. A deleted target is flagged, not followed.
func (e *Evaluator) link(ctx context.Context, n domnode.Node) (*listing.Link, error) {
	dest := n.Prop(domnode.PropDestination)
	if dest == "" {
		return &listing.Link{Broken: true}, nil
	}
	target, err := e.nodes.Get(ctx, dest)
	if errors.Is(err, domain.ErrNotFound) {
		return &listing.Link{Target: domnode.RefOf(dest), Broken: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("link target of %s: %w", n.ID(), err)
	}
	return &listing.Link{Target: target.Ref(), TargetName: target.Name()}, nil
}

func (e *Evaluator) lockState(ctx context.Context, n domnode.Node, caches *Caches, item *listing.Item) error {
	switch {
	case n.Has(domnode.CapWorkingCopy):
		item.Status = listing.StatusWorkingCopy
		wc := &listing.WorkingCopy{
			Source:       domnode.RefOf(n.Prop(domnode.PropWorkingCopyOf)),
			VersionLabel: n.Prop(domnode.PropVersionLabel),
		}
		owner, err := e.person(ctx, caches, n.Prop(domnode.PropWorkingCopyOwner))
		if err != nil {
			return err
		}
		wc.Owner = owner
		item.WorkingCopy = wc

	case n.Has(domnode.CapLocked) && !n.Has(domnode.CapTransferred) && n.Has(domnode.CapCheckedOut):
		item.Status = listing.StatusHasWorkingCopy
		owner, err := e.person(ctx, caches, n.Prop(domnode.PropLockOwner))
		if err != nil {
			return err
		}
		item.WorkingCopy = &listing.WorkingCopy{
			Copy:  domnode.RefOf(n.Prop(domnode.PropWorkingCopyLink)),
			Owner: owner,
		}
		item.LockOwner = owner

	case n.Has(domnode.CapLocked):
		item.Status = listing.StatusLocked
		owner, err := e.person(ctx, caches, n.Prop(domnode.PropLockOwner))
		if err != nil {
			return err
		}
		item.LockOwner = owner
	}
	return nil
}

func (e *Evaluator) person(ctx context.Context, caches *Caches, authority string) (*domdir.Person, error) {
	if authority == "" {
		return nil, nil
	}
	p, err := caches.Person(ctx, authority)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// location describes the folder holding n, with n as the file.
func (e *Evaluator) location(ctx context.Context, n domnode.Node, caches *Caches) (location.Descriptor, error) {
	segs, err := e.nodes.Path(ctx, n)
	if err != nil {
		return location.Descriptor{}, fmt.Errorf("path of %s: %w", n.ID(), err)
	}
	loc := location.Describe(segs[:len(segs)-1])
	loc.File = n.Name()
	if loc.InSite() {
		site, found, err := caches.Site(ctx, loc.Site)
		if err != nil {
			return location.Descriptor{}, err
		}
		if found {
			loc.SiteTitle = site.Title
		}
	}
	return loc, nil
}

// requestThumbnail queues a thumbnail without waiting for the outcome.
func (e *Evaluator) requestThumbnail(ctx context.Context, nodeID string) {
	if e.thumbs == nil {
		return
	}
	log := logger.FromContext(ctx)
	detached := context.WithoutCancel(ctx)

	e.spawn(func() {
		ctx, cancel := context.WithTimeout(detached, e.thumbTimeout)
		defer cancel()

		queued, err := e.thumbs.Request(ctx, nodeID)
		switch {
		case err != nil:
			e.countThumb("error")
			log.Warn("thumbnail request failed", zap.String("node_id", nodeID), zap.Error(err))
		case queued:
			e.countThumb("queued")
		default:
			e.countThumb("pending")
		}
	})
}

func (e *Evaluator) countThumb(status string) {
	if e.thumbsTotal != nil {
		e.thumbsTotal.WithLabelValues(status).Inc()
	}
}
