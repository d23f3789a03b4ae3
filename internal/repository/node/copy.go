package node

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/doclib/internal/db"
	"github.com/kailas-cloud/doclib/internal/domain"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/logger"
)

// Properties and aspects that describe a checkout or lock and are not
// carried over to copies.
var (
	transientAspects = []string{domnode.AspectWorkingCopy, domnode.AspectCheckedOut, domnode.AspectLockable}
	transientProps   = []string{
		domnode.PropWorkingCopyOf, domnode.PropWorkingCopyLink, domnode.PropWorkingCopyOwner,
		domnode.PropLockOwner, domnode.PropLockType,
	}
)

// Copy duplicates src, including its subtree, under dest. A failure part
// way through removes the copies made so far.
func (r *Repo) Copy(ctx context.Context, src, dest domnode.Node, user string) (domnode.Node, error) {
	if dest.IsWithin(src.ID()) {
		return domnode.Node{}, fmt.Errorf("cannot copy %s into itself: %w", src.Name(), domain.ErrBadRequest)
	}

	root, created, err := r.CreateChild(ctx, dest, copyAttrs(src, user))
	if err != nil {
		return domnode.Node{}, err
	}
	if !created {
		return domnode.Node{}, fmt.Errorf("%s in %s: %w", src.Name(), dest.Name(), domain.ErrAlreadyExists)
	}
	if !src.Has(domnode.CapContainer) {
		return root, nil
	}

	made := []domnode.Node{root}
	fail := func(err error) (domnode.Node, error) {
		r.discard(ctx, made)
		return domnode.Node{}, err
	}

	descendants, err := r.Descendants(ctx, src.ID())
	if err != nil {
		return fail(fmt.Errorf("list descendants of %s: %w", src.ID(), err))
	}
	slices.SortStableFunc(descendants, func(a, b domnode.Node) int {
		return len(a.Ancestors()) - len(b.Ancestors())
	})

	copies := map[string]domnode.Node{src.ID(): root}
	for _, d := range descendants {
		parent, ok := copies[d.ParentID()]
		if !ok {
			continue
		}
		c, created, err := r.CreateChild(ctx, parent, copyAttrs(d, user))
		if err != nil {
			return fail(fmt.Errorf("copy %s: %w", d.ID(), err))
		}
		if created {
			made = append(made, c)
		}
		copies[d.ID()] = c
	}
	return root, nil
}

// discard removes nodes deepest first. Errors are logged; the caller is
// already failing.
func (r *Repo) discard(ctx context.Context, nodes []domnode.Node) {
	for _, n := range slices.Backward(nodes) {
		if err := r.Remove(ctx, n); err != nil {
			logger.FromContext(ctx).Error("discard partial copy",
				zap.String("node_id", n.ID()),
				zap.Error(err),
			)
		}
	}
}

// Move re-parents n under dest and rewrites the ancestry of its subtree.
// The name is claimed in dest first and released in the old parent last;
// a failure in between restores the original documents and claim.
func (r *Repo) Move(ctx context.Context, n, dest domnode.Node, user string) (domnode.Node, error) {
	if n.ParentID() == "" {
		return domnode.Node{}, fmt.Errorf("cannot move the repository root: %w", domain.ErrBadRequest)
	}
	if dest.IsWithin(n.ID()) {
		return domnode.Node{}, fmt.Errorf("cannot move %s into itself: %w", n.Name(), domain.ErrBadRequest)
	}
	if n.ParentID() == dest.ID() {
		return n, nil
	}

	won, err := r.store.HSetNX(ctx, childrenKey(dest.ID()), n.Name(), n.ID())
	if err != nil {
		return domnode.Node{}, fmt.Errorf("hsetnx %s: %w", n.Name(), err)
	}
	if !won {
		return domnode.Node{}, fmt.Errorf("%s in %s: %w", n.Name(), dest.Name(), domain.ErrAlreadyExists)
	}

	var original []domnode.Node
	fail := func(err error) (domnode.Node, error) {
		r.unmove(ctx, n, dest, original)
		return domnode.Node{}, err
	}

	var descendants []domnode.Node
	if n.Has(domnode.CapContainer) {
		if descendants, err = r.Descendants(ctx, n.ID()); err != nil {
			return fail(fmt.Errorf("list descendants of %s: %w", n.ID(), err))
		}
	}

	newAncestors := append(slices.Clone(dest.Ancestors()), dest.ID())

	a := attrsOf(n)
	a.ParentID = dest.ID()
	a.Ancestors = newAncestors
	a.Modified = r.now()
	a.Modifier = user
	moved := domnode.Reconstruct(a)

	items, err := jsonItems(append([]domnode.Node{moved}, reanchor(descendants, n.ID(), newAncestors)...))
	if err != nil {
		return fail(err)
	}
	original = append([]domnode.Node{n}, descendants...)
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fail(fmt.Errorf("rewrite subtree of %s: %w", n.ID(), err))
	}
	if err := r.store.HDel(ctx, childrenKey(n.ParentID()), n.Name()); err != nil {
		return fail(fmt.Errorf("hdel %s: %w", n.Name(), err))
	}
	return moved, nil
}

// unmove undoes a failed move: original documents are written back when
// given and the claim on the name in dest is released.
func (r *Repo) unmove(ctx context.Context, n, dest domnode.Node, original []domnode.Node) {
	log := logger.FromContext(ctx)
	if len(original) > 0 {
		items, err := jsonItems(original)
		if err == nil {
			err = r.store.JSONSetMulti(ctx, items)
		}
		if err != nil {
			log.Error("restore moved subtree", zap.String("node_id", n.ID()), zap.Error(err))
		}
	}
	if err := r.store.HDel(ctx, childrenKey(dest.ID()), n.Name()); err != nil {
		log.Error("release name in destination",
			zap.String("node_id", n.ID()),
			zap.String("dest_id", dest.ID()),
			zap.Error(err),
		)
	}
}

// Link creates a folder or file link to target under dest.
func (r *Repo) Link(ctx context.Context, target, dest domnode.Node, user string) (domnode.Node, error) {
	linkType := domnode.TypeFileLink
	if target.Has(domnode.CapContainer) {
		linkType = domnode.TypeFolderLink
	}

	link, created, err := r.CreateChild(ctx, dest, domnode.Attrs{
		Type: linkType,
		Name: target.Name(),
		Properties: map[string]string{
			domnode.PropDestination: target.ID(),
			domnode.PropTitle:       target.Prop(domnode.PropTitle),
			domnode.PropDescription: target.Prop(domnode.PropDescription),
		},
		Creator: user,
	})
	if err != nil {
		return domnode.Node{}, err
	}
	if !created {
		return domnode.Node{}, fmt.Errorf("%s in %s: %w", target.Name(), dest.Name(), domain.ErrAlreadyExists)
	}
	return link, nil
}

// reanchor replaces everything above oldRoot in each node's ancestry.
func reanchor(nodes []domnode.Node, oldRoot string, prefix []string) []domnode.Node {
	out := make([]domnode.Node, 0, len(nodes))
	for _, n := range nodes {
		anc := n.Ancestors()
		i := slices.Index(anc, oldRoot)
		if i < 0 {
			continue
		}
		a := attrsOf(n)
		a.Ancestors = append(slices.Clone(prefix), anc[i:]...)
		out = append(out, domnode.Reconstruct(a))
	}
	return out
}

func copyAttrs(src domnode.Node, user string) domnode.Attrs {
	a := attrsOf(src)
	a.Created = time.Time{}
	a.Creator = user
	a.Modifier = user
	a.Aspects = slices.DeleteFunc(a.Aspects, func(asp string) bool {
		return slices.Contains(transientAspects, asp)
	})
	for _, p := range transientProps {
		delete(a.Properties, p)
	}
	return a
}

func jsonItems(nodes []domnode.Node) ([]db.JSONSetItem, error) {
	items := make([]db.JSONSetItem, 0, len(nodes))
	for _, n := range nodes {
		data, err := marshalNode(n)
		if err != nil {
			return nil, err
		}
		items = append(items, db.JSONSetItem{Key: nodeKey(n.ID()), Path: "$", Data: data})
	}
	return items, nil
}
