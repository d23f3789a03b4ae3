// Package directory stores people, groups and sites as Redis hashes.
package directory

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/doclib/internal/domain"
	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
)

var (
	personPrefix = domain.KeyPrefix + "person:"
	groupPrefix  = domain.KeyPrefix + "group:"
	sitePrefix   = domain.KeyPrefix + "site:"
)

// Hash fields.
const (
	fieldUserName    = "userName"
	fieldFirstName   = "firstName"
	fieldLastName    = "lastName"
	fieldEmail       = "email"
	fieldDisplayName = "displayName"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldNodeID      = "nodeId"
)

// store is the consumer interface for directory records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements the person, group and site lookups.
type Repo struct {
	store store
}

// New creates a directory repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Person returns a person by user name.
func (r *Repo) Person(ctx context.Context, userName string) (domdir.Person, error) {
	m, err := r.load(ctx, personPrefix+userName, "person", userName)
	if err != nil {
		return domdir.Person{}, err
	}
	p := domdir.Person{
		UserName:  m[fieldUserName],
		FirstName: m[fieldFirstName],
		LastName:  m[fieldLastName],
		Email:     m[fieldEmail],
	}
	if p.UserName == "" {
		p.UserName = userName
	}
	return p, nil
}

// SavePerson creates or replaces a person record.
func (r *Repo) SavePerson(ctx context.Context, p domdir.Person) error {
	return r.save(ctx, personPrefix+p.UserName, map[string]string{
		fieldUserName:  p.UserName,
		fieldFirstName: p.FirstName,
		fieldLastName:  p.LastName,
		fieldEmail:     p.Email,
	})
}

// Group returns a group by its authority name (GROUP_...).
func (r *Repo) Group(ctx context.Context, id string) (domdir.Group, error) {
	m, err := r.load(ctx, groupPrefix+id, "group", id)
	if err != nil {
		return domdir.Group{}, err
	}
	g := domdir.Group{ID: id, DisplayName: m[fieldDisplayName]}
	if g.DisplayName == "" {
		g.DisplayName = id
	}
	return g, nil
}

// SaveGroup creates or replaces a group record.
func (r *Repo) SaveGroup(ctx context.Context, g domdir.Group) error {
	return r.save(ctx, groupPrefix+g.ID, map[string]string{fieldDisplayName: g.DisplayName})
}

// Site returns a site by short name.
func (r *Repo) Site(ctx context.Context, shortName string) (domdir.Site, error) {
	m, err := r.load(ctx, sitePrefix+shortName, "site", shortName)
	if err != nil {
		return domdir.Site{}, err
	}
	return domdir.Site{
		ShortName:   shortName,
		Title:       m[fieldTitle],
		Description: m[fieldDescription],
		NodeID:      m[fieldNodeID],
	}, nil
}

// SaveSite creates or replaces a site record.
func (r *Repo) SaveSite(ctx context.Context, s domdir.Site) error {
	return r.save(ctx, sitePrefix+s.ShortName, map[string]string{
		fieldTitle:       s.Title,
		fieldDescription: s.Description,
		fieldNodeID:      s.NodeID,
	})
}

func (r *Repo) load(ctx context.Context, key, kind, id string) (map[string]string, error) {
	if id == "" {
		return nil, domain.NewNotFound(kind, id)
	}
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s %s: %w", kind, id, err)
	}
	if len(m) == 0 {
		return nil, domain.NewNotFound(kind, id)
	}
	return m, nil
}

func (r *Repo) save(ctx context.Context, key string, fields map[string]string) error {
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}
