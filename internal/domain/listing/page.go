package listing

import (
	"slices"
	"strings"
)

// Sort orders items in place: folders and folder links first, then
// documents and file links. With byName, each group is ordered by
// case-insensitive name. The order of equal items is kept.
func Sort(items []Item, byName bool) {
	slices.SortStableFunc(items, func(a, b Item) int {
		af, bf := a.Kind.IsFolderLike(), b.Kind.IsFolderLike()
		if af != bf {
			if af {
				return -1
			}
			return 1
		}
		if byName {
			if c := strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name())); c != 0 {
				return c
			}
		}
		return 1
	})
}

// Page is a window over a sorted item list.
type Page struct {
	Items        []Item
	TotalRecords int
	PageSize     int
	PageNo       int
	StartIndex   int
}

// Paginate returns the pageNo-th window (1-based) of pageSize items.
// A pageSize of 0 or less returns every item.
func Paginate(items []Item, pageSize, pageNo int) Page {
	total := len(items)
	if pageNo < 1 {
		pageNo = 1
	}
	if pageSize <= 0 {
		return Page{Items: items, TotalRecords: total, PageSize: total, PageNo: 1}
	}

	start := (pageNo - 1) * pageSize
	if start > total {
		start = total
	}
	end := min(start+pageSize, total)

	return Page{
		Items:        items[start:end],
		TotalRecords: total,
		PageSize:     pageSize,
		PageNo:       pageNo,
		StartIndex:   start,
	}
}
