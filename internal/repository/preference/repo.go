// Package preference stores per-user preferences such as favourites.
package preference

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/doclib/internal/domain"
)

var prefsPrefix = domain.KeyPrefix + "prefs:"

// store is the consumer interface for preferences (ISP).
type store interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements favourites on a Redis set per user.
type Repo struct {
	store store
}

// New creates a preference repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Favourites returns the user's favourite node ids, sorted.
func (r *Repo) Favourites(ctx context.Context, user string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, favouritesKey(user))
	if err != nil {
		return nil, fmt.Errorf("smembers favourites of %s: %w", user, err)
	}
	slices.Sort(ids)
	return ids, nil
}

// AddFavourite marks nodeID as a favourite of user.
func (r *Repo) AddFavourite(ctx context.Context, user, nodeID string) error {
	if err := r.store.SAdd(ctx, favouritesKey(user), nodeID); err != nil {
		return fmt.Errorf("sadd favourite %s: %w", nodeID, err)
	}
	return nil
}

// RemoveFavourite unmarks nodeID. Removing a non-favourite is not an error.
func (r *Repo) RemoveFavourite(ctx context.Context, user, nodeID string) error {
	if err := r.store.SRem(ctx, favouritesKey(user), nodeID); err != nil {
		return fmt.Errorf("srem favourite %s: %w", nodeID, err)
	}
	return nil
}

func favouritesKey(user string) string {
	return prefsPrefix + user + ":favourites"
}
