package filterquery

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/doclib/internal/domain"
)

// Filter ids.
const (
	FilterPath                 = "path"
	FilterAll                  = "all"
	FilterRecentlyAdded        = "recentlyAdded"
	FilterRecentlyModified     = "recentlyModified"
	FilterRecentlyAddedByMe    = "recentlyAddedByMe"
	FilterRecentlyModifiedByMe = "recentlyModifiedByMe"
	FilterCreatedByMe          = "createdByMe"
	FilterFavourites           = "favouriteDocuments"
	FilterNode                 = "node"
	FilterTag                  = "tag"
	FilterSavedSearch          = "savedsearch"
	FilterHolds                = "holds"
	FilterTransfers            = "transfers"
	FilterUnfiledRecords       = "unfiledRecords"
)

// Type restrictions appended to any filter.
const (
	TypeDocuments = "documents"
	TypeFolders   = "folders"
	TypeImages    = "images"
)

// Spec selects a filter policy and its parameters.
type Spec struct {
	FilterID      string
	FilterData    string
	MaxResults    int // overrides the filter's default limit when > 0
	SortField     string
	SortAscending bool
	TypeFilter    string
}

// days parses FilterData as a day count for recent filters.
func (s Spec) days(def int) (int, error) {
	if s.FilterData == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s.FilterData)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid day count %q: %w", s.FilterData, domain.ErrBadRequest)
	}
	return n, nil
}
