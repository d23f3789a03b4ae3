package evaluator

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/doclib/internal/domain"
	domdir "github.com/kailas-cloud/doclib/internal/domain/directory"
)

// DefaultMaxNodes is the node count caches are sized for when none is given.
const DefaultMaxNodes = 1000

// authoritiesPerNode is how many people an evaluated node can name:
// creator, modifier and lock owner.
const authoritiesPerNode = 3

type siteEntry struct {
	site  domdir.Site
	found bool
}

// Caches memoise person, group and site lookups for one request.
// Misses are cached too, so each key costs at most one lookup.
// Caches are not safe for concurrent use.
type Caches struct {
	dir     Directory
	people  *lru.Cache[string, domdir.Person]
	groups  *lru.Cache[string, domdir.Person]
	sites   *lru.Cache[string, siteEntry]
	lookups *prometheus.CounterVec
}

// NewCaches creates request-scoped caches over dir for a request that
// evaluates at most maxNodes nodes. Capacity covers every key such a request
// can touch, so nothing is evicted before the request ends.
// lookups is a counter vec with labels "cache" and "result" ("hit"/"miss"); it may be nil.
func NewCaches(dir Directory, maxNodes int, lookups *prometheus.CounterVec) (*Caches, error) {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	authorities := maxNodes * authoritiesPerNode
	people, err := lru.New[string, domdir.Person](authorities)
	if err != nil {
		return nil, fmt.Errorf("person cache: %w", err)
	}
	groups, err := lru.New[string, domdir.Person](authorities)
	if err != nil {
		return nil, fmt.Errorf("group cache: %w", err)
	}
	sites, err := lru.New[string, siteEntry](maxNodes)
	if err != nil {
		return nil, fmt.Errorf("site cache: %w", err)
	}
	return &Caches{dir: dir, people: people, groups: groups, sites: sites, lookups: lookups}, nil
}

// Person returns the display entity for an authority name. Groups are
// shown by their display name; the System account and unknown users get
// placeholders.
func (c *Caches) Person(ctx context.Context, authority string) (domdir.Person, error) {
	if domdir.IsGroup(authority) {
		return c.group(ctx, authority)
	}
	if p, ok := c.people.Get(authority); ok {
		c.count("person", "hit")
		return p, nil
	}
	c.count("person", "miss")

	p, err := c.dir.Person(ctx, authority)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if authority == domdir.SystemUser {
			p = domdir.SystemPerson()
		} else {
			p = domdir.UnknownPerson(authority)
		}
	case err != nil:
		return domdir.Person{}, fmt.Errorf("person %s: %w", authority, err)
	}
	c.people.Add(authority, p)
	return p, nil
}

func (c *Caches) group(ctx context.Context, id string) (domdir.Person, error) {
	if p, ok := c.groups.Get(id); ok {
		c.count("group", "hit")
		return p, nil
	}
	c.count("group", "miss")

	p := domdir.Person{UserName: id, FirstName: id}
	g, err := c.dir.Group(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return domdir.Person{}, fmt.Errorf("group %s: %w", id, err)
	default:
		p.FirstName = g.DisplayName
	}
	c.groups.Add(id, p)
	return p, nil
}

// Site returns a site by short name; found is false when it does not exist.
func (c *Caches) Site(ctx context.Context, shortName string) (site domdir.Site, found bool, err error) {
	if e, ok := c.sites.Get(shortName); ok {
		c.count("site", "hit")
		return e.site, e.found, nil
	}
	c.count("site", "miss")

	s, err := c.dir.Site(ctx, shortName)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.sites.Add(shortName, siteEntry{})
		return domdir.Site{}, false, nil
	case err != nil:
		return domdir.Site{}, false, fmt.Errorf("site %s: %w", shortName, err)
	}
	c.sites.Add(shortName, siteEntry{site: s, found: true})
	return s, true, nil
}

func (c *Caches) count(cache, result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(cache, result).Inc()
	}
}
