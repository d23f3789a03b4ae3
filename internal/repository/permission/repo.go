// Package permission keeps per-node access control lists and evaluates
// them along a node's ancestry.
package permission

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/doclib/internal/domain"
	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
	"github.com/kailas-cloud/doclib/internal/domain/listing"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
)

var aclPrefix = domain.KeyPrefix + "acl:"

// store is the consumer interface for ACLs (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Repo implements the permission checks used by listings and actions.
type Repo struct {
	store  store
	admins map[string]struct{}
}

// New creates a permission repository. Admins get every permission.
func New(s store, admins []string) *Repo {
	set := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		set[a] = struct{}{}
	}
	return &Repo{store: s, admins: set}
}

// Grant assigns role to authority on nodeID. Children inherit it.
func (r *Repo) Grant(ctx context.Context, nodeID, authority string, role listing.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("unknown role %q: %w", role, domain.ErrBadRequest)
	}
	if err := r.store.HSet(ctx, aclKey(nodeID), map[string]string{authority: string(role)}); err != nil {
		return fmt.Errorf("grant %s on %s: %w", role, nodeID, err)
	}
	return nil
}

// Clear drops every role granted on nodeID.
func (r *Repo) Clear(ctx context.Context, nodeID string) error {
	if err := r.store.Del(ctx, aclKey(nodeID)); err != nil {
		return fmt.Errorf("clear acl of %s: %w", nodeID, err)
	}
	return nil
}

// Permissions returns what user may do on n. Roles granted on any
// ancestor apply; the creator may always read, edit and delete.
func (r *Repo) Permissions(ctx context.Context, n domnode.Node, user string) (listing.Permissions, error) {
	if _, ok := r.admins[user]; ok {
		return listing.Permissions{Read: true, Create: true, Edit: true, Delete: true}, nil
	}

	chain := append(n.Ancestors(), n.ID())
	keys := make([]string, len(chain))
	for i, id := range chain {
		keys[i] = aclKey(id)
	}
	acls, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return listing.Permissions{}, fmt.Errorf("load acl of %s: %w", n.ID(), err)
	}

	var p listing.Permissions
	for _, acl := range acls {
		for _, authority := range []string{user, domdir.EveryoneGroup} {
			p = p.Or(listing.Role(acl[authority]).Permissions())
		}
	}

	if user != "" && n.Creator() == user {
		p.Read = true
		p.Edit = true
		p.Delete = true
	}
	return p, nil
}

func aclKey(nodeID string) string {
	return aclPrefix + nodeID
}
