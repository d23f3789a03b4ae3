// Package favourite manages the current user's favourite documents.
package favourite

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/doclib/internal/domain"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

// Service lists and edits favourites of the user carried in the context.
type Service struct {
	prefs PreferenceStore
	nodes NodeReader
}

// New creates a favourites service.
func New(prefs PreferenceStore, nodes NodeReader) *Service {
	return &Service{prefs: prefs, nodes: nodes}
}

// List returns the favourite node refs of the current user.
func (s *Service) List(ctx context.Context) ([]domnode.Ref, error) {
	user := domain.UserFromContext(ctx)
	ids, err := s.prefs.Favourites(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("favourites of %s: %w", user, err)
	}
	refs := make([]domnode.Ref, len(ids))
	for i, id := range ids {
		refs[i] = domnode.RefOf(id)
	}
	return refs, nil
}

// Add marks an existing node as a favourite. Adding twice is a no-op.
func (s *Service) Add(ctx context.Context, nodeRef string) (domnode.Ref, error) {
	user, ref, err := s.target(ctx, nodeRef)
	if err != nil {
		return domnode.Ref{}, err
	}
	n, err := s.nodes.Get(ctx, ref.ID())
	if err != nil {
		return domnode.Ref{}, err
	}
	if err := s.prefs.AddFavourite(ctx, user, n.ID()); err != nil {
		return domnode.Ref{}, fmt.Errorf("add favourite %s: %w", n.ID(), err)
	}
	return n.Ref(), nil
}

// Remove drops a favourite. The node need not exist any more.
func (s *Service) Remove(ctx context.Context, nodeRef string) error {
	user, ref, err := s.target(ctx, nodeRef)
	if err != nil {
		return err
	}
	if err := s.prefs.RemoveFavourite(ctx, user, ref.ID()); err != nil {
		return fmt.Errorf("remove favourite %s: %w", ref.ID(), err)
	}
	return nil
}

func (s *Service) target(ctx context.Context, nodeRef string) (string, domnode.Ref, error) {
	user := domain.UserFromContext(ctx)
	if user == domain.Guest {
		return "", domnode.Ref{}, fmt.Errorf("guest has no favourites: %w", domain.ErrForbidden)
	}
	ref, err := domnode.ParseRef(nodeRef)
	if err != nil {
		return "", domnode.Ref{}, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}
	return user, ref, nil
}
