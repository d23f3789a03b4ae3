// Package filterquery turns a named filter and a resolved location into a
// listing query.
package filterquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/doclib/internal/domain"
	"github.com/kailas-cloud/doclib/internal/domain/location"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/domain/query"
)

// SavedSearchesContainer is the site container holding saved searches.
const SavedSearchesContainer = "Saved Searches"

// ignoredTypes never show up in a folder listing.
var ignoredTypes = []string{
	domnode.TypeSystemFolder,
	domnode.TypeForums,
	domnode.TypeForum,
	domnode.TypeTopic,
	domnode.TypePost,
	domnode.TypeDispositionSchedule,
	domnode.TypeDispositionActionDef,
	domnode.TypeHoldContainer,
	domnode.TypeHold,
	domnode.TypeTransferContainer,
	domnode.TypeTransfer,
	domnode.TypeSavedSearchesContainer,
}

var folderTypes = []string{domnode.TypeFolder, domnode.TypeSystemFolder}

var sortByName = []query.SortField{{Field: domnode.PropName, Ascending: true}}

// Options configure defaults shared by all filters.
type Options struct {
	// MaxResults caps every query; 0 disables the cap.
	MaxResults int
	// RecentDays is the look-back of recently added/modified filters.
	RecentDays int
	// RecentLimit is the default limit of recent and createdByMe filters.
	RecentLimit int
}

// DefaultOptions returns the stock defaults.
func DefaultOptions() Options {
	return Options{RecentDays: 7, RecentLimit: 50}
}

// Builder builds listing queries.
type Builder struct {
	favourites FavouriteReader
	nodes      NodeReader
	opts       Options
	now        func() time.Time
}

// New creates a query builder.
func New(favourites FavouriteReader, nodes NodeReader, opts Options) *Builder {
	return &Builder{favourites: favourites, nodes: nodes, opts: opts, now: time.Now}
}

// policy is the filter-specific part of a query.
type policy struct {
	clause   query.Clause
	sort     []query.SortField
	limit    int
	language query.Language
	empty    bool
}

// Build produces the query descriptor for spec at loc on behalf of user.
// Every query except the exact-node filter is scoped beneath the root.
func (b *Builder) Build(
	ctx context.Context, spec Spec, loc location.Resolved, user string,
) (query.Descriptor, error) {
	filterID := spec.FilterID
	if filterID == "" {
		filterID = FilterPath
	}

	p, err := b.policy(ctx, filterID, spec, loc, user)
	if err != nil {
		return query.Descriptor{}, err
	}

	clause := p.clause
	if spec.TypeFilter != "" {
		restriction, err := typeRestriction(spec.TypeFilter)
		if err != nil {
			return query.Descriptor{}, err
		}
		clause = query.And(clause, restriction)
	}
	if err := clause.Validate(); err != nil {
		return query.Descriptor{}, fmt.Errorf("filter %s: %w: %w", filterID, domain.ErrBadRequest, err)
	}

	sort := p.sort
	if sort == nil && spec.SortField != "" {
		sort = []query.SortField{{Field: spec.SortField, Ascending: spec.SortAscending}}
	}
	if sort == nil {
		sort = sortByName
	}

	limit := p.limit
	if spec.MaxResults > 0 {
		limit = spec.MaxResults
	}
	if b.opts.MaxResults > 0 && (limit == 0 || limit > b.opts.MaxResults) {
		limit = b.opts.MaxResults
	}

	language := p.language
	if language == "" {
		language = query.LanguageStructured
	}

	return query.Descriptor{
		FilterID:  filterID,
		Query:     clause,
		Language:  language,
		Sort:      sort,
		Limit:     limit,
		Namespace: query.DefaultNamespace,
		Templates: query.DefaultTemplates(),
		Empty:     p.empty,
	}, nil
}

func (b *Builder) policy(
	ctx context.Context, filterID string, spec Spec, loc location.Resolved, user string,
) (policy, error) {
	root := loc.Root().ID()
	under := query.Match(query.FieldAncestors, root)

	switch filterID {
	case FilterPath, FilterUnfiledRecords:
		return policy{clause: children(loc.PathNode().ID())}, nil

	case FilterAll:
		return policy{clause: query.And(
			under,
			query.Not(query.Match(query.FieldType, folderTypes...)),
			query.Not(query.Match(query.FieldType, ignoredTypes...)),
			query.Not(query.Match(query.FieldAspects, domnode.AspectWorkingCopy)),
		)}, nil

	case FilterRecentlyAdded, FilterRecentlyModified, FilterRecentlyAddedByMe, FilterRecentlyModifiedByMe:
		return b.recent(filterID, spec, under, user)

	case FilterCreatedByMe:
		return policy{
			clause: query.And(
				under,
				query.Match(query.FieldCreator, user),
				query.Not(query.Match(query.FieldType, folderTypes...)),
				query.Not(query.Match(query.FieldAspects, domnode.AspectWorkingCopy)),
			),
			limit: b.opts.RecentLimit,
		}, nil

	case FilterFavourites:
		ids, err := b.favourites.Favourites(ctx, user)
		if err != nil {
			return policy{}, fmt.Errorf("load favourites: %w", err)
		}
		if len(ids) == 0 {
			return policy{clause: under, empty: true}, nil
		}
		return policy{clause: query.And(under, query.Match(query.FieldID, ids...))}, nil

	case FilterNode:
		return policy{clause: query.Match(query.FieldID, loc.PathNode().ID())}, nil

	case FilterTag:
		if spec.FilterData == "" {
			return policy{}, fmt.Errorf("tag filter needs a tag: %w", domain.ErrBadRequest)
		}
		return policy{clause: query.And(
			under,
			query.Match(query.FieldTags, spec.FilterData),
			query.Not(query.Match(query.FieldAspects, domnode.AspectWorkingCopy)),
		)}, nil

	case FilterSavedSearch:
		return b.savedSearch(ctx, spec, loc, under)

	case FilterHolds, FilterTransfers:
		if spec.FilterData != "" {
			ref, err := domnode.ParseRef(spec.FilterData)
			if err != nil {
				return policy{}, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
			}
			return policy{clause: query.And(under, query.Match(query.FieldParent, ref.ID()))}, nil
		}
		typ := domnode.TypeHold
		if filterID == FilterTransfers {
			typ = domnode.TypeTransfer
		}
		return policy{clause: query.And(
			query.Match(query.FieldParent, loc.PathNode().ID()),
			query.Match(query.FieldType, typ),
		)}, nil
	}
	return policy{}, fmt.Errorf("unknown filter %q: %w", filterID, domain.ErrBadRequest)
}

// children lists the immediate children of parent, minus system nodes and
// working copies.
func children(parent string) query.Clause {
	return query.And(
		query.Match(query.FieldParent, parent),
		query.Not(query.Match(query.FieldType, ignoredTypes...)),
		query.Not(query.Match(query.FieldAspects, domnode.AspectWorkingCopy)),
	)
}

func (b *Builder) recent(filterID string, spec Spec, under query.Clause, user string) (policy, error) {
	days, err := spec.days(b.opts.RecentDays)
	if err != nil {
		return policy{}, err
	}

	dateField, dateProp, userField := query.FieldModified, domnode.PropModified, query.FieldModifier
	if filterID == FilterRecentlyAdded || filterID == FilterRecentlyAddedByMe {
		dateField, dateProp, userField = query.FieldCreated, domnode.PropCreated, query.FieldCreator
	}

	from, to := dayRange(b.now(), days)
	clauses := []query.Clause{
		under,
		query.Between(dateField, from.UnixMilli(), to.UnixMilli()),
		query.Not(query.Match(query.FieldType, folderTypes...)),
		query.Not(query.Match(query.FieldAspects, domnode.AspectWorkingCopy)),
	}
	if filterID == FilterRecentlyAddedByMe || filterID == FilterRecentlyModifiedByMe {
		clauses = append(clauses, query.Match(userField, user))
	}

	return policy{
		clause: query.And(clauses...),
		sort:   []query.SortField{{Field: dateProp, Ascending: false}},
		limit:  b.opts.RecentLimit,
	}, nil
}

// dayRange spans from the start of the day days ago to the last
// millisecond of today, both inclusive.
func dayRange(now time.Time, days int) (from, to time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -days), today.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// savedDefinition is the JSON stored in a saved-search node.
type savedDefinition struct {
	Query    string            `json:"query"`
	Language query.Language    `json:"language"`
	Sort     []query.SortField `json:"sort"`
}

func (b *Builder) savedSearch(
	ctx context.Context, spec Spec, loc location.Resolved, under query.Clause,
) (policy, error) {
	if spec.FilterData == "" {
		return policy{}, fmt.Errorf("saved search name is required: %w", domain.ErrBadRequest)
	}
	siteNode := loc.Root().ParentID()
	if !loc.Location().InSite() || siteNode == "" {
		return policy{}, fmt.Errorf("saved searches need a site: %w", domain.ErrBadRequest)
	}

	container, err := b.nodes.ChildByName(ctx, siteNode, SavedSearchesContainer)
	if err != nil {
		return policy{}, savedSearchErr(spec.FilterData, err)
	}
	saved, err := b.nodes.ChildByName(ctx, container.ID(), spec.FilterData)
	if err != nil {
		return policy{}, savedSearchErr(spec.FilterData, err)
	}

	var def savedDefinition
	if err := json.Unmarshal([]byte(saved.Prop(domnode.PropSavedQuery)), &def); err != nil {
		return policy{}, fmt.Errorf("saved search %q: %w: %w", spec.FilterData, domain.ErrBadRequest, err)
	}
	if def.Language == "" {
		def.Language = query.LanguageFullText
	}
	if !def.Language.IsValid() {
		return policy{}, fmt.Errorf("saved search %q: unknown language %q: %w",
			spec.FilterData, def.Language, domain.ErrBadRequest)
	}

	var stored query.Clause
	if def.Language == query.LanguageFullText {
		stored = query.Text(query.DefaultTemplates()["keywords"], def.Query)
	} else {
		stored = query.Raw(def.Query)
	}

	p := policy{
		clause: query.And(
			under,
			stored,
			query.Not(query.Match(query.FieldAspects, domnode.AspectWorkingCopy)),
		),
		language: def.Language,
	}
	if len(def.Sort) > 0 {
		p.sort = def.Sort
	}
	return p, nil
}

func savedSearchErr(name string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFound("saved search", name)
	}
	return fmt.Errorf("load saved search %q: %w", name, err)
}

func typeRestriction(t string) (query.Clause, error) {
	switch t {
	case TypeDocuments:
		return query.Match(query.FieldType, domnode.TypeContent), nil
	case TypeFolders:
		return query.Match(query.FieldType, folderTypes...), nil
	case TypeImages:
		return query.Prefix(query.FieldMimetype, "image/"), nil
	}
	return query.Clause{}, fmt.Errorf("unknown type restriction %q: %w", t, domain.ErrBadRequest)
}
