// Package query assembles the request descriptor shared by the product
// listing, admin product listing, and admin order listing: an equality
// filter map, a sort directive, and a pagination cursor.
package query

import (
	"net/url"
	"strconv"

	"github.com/luminacart/storefront/pkg/enums"
)

// DefaultPageSize matches the page size used across a browsing session.
const DefaultPageSize = 10

// Filter maps a facet id to the selected option values. An absent facet
// means no constraint.
type Filter map[string][]string

// Sort is the listing sort directive. The zero value means unsorted.
type Sort struct {
	Field     string              `json:"field,omitempty"`
	Direction enums.SortDirection `json:"direction,omitempty"`
}

// IsZero reports whether no sort has been chosen.
func (s Sort) IsZero() bool {
	return s.Field == ""
}

// Pagination is a 1-based page cursor with a fixed per-session page size.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Descriptor is the combined filter/sort/pagination structure consumed
// verbatim by the remote API client. Each change replaces the affected
// field wholesale; descriptors are never deep-merged.
type Descriptor struct {
	Filter Filter     `json:"filter"`
	Sort   Sort       `json:"sort"`
	Page   Pagination `json:"pagination"`
}

// New returns a descriptor at page 1 with no filter and no sort.
func New(pageSize int) Descriptor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Descriptor{
		Filter: Filter{},
		Page:   Pagination{Page: 1, PageSize: pageSize},
	}
}

// ToggleFacet selects or deselects one facet option. Selecting appends the
// value, creating the facet entry on first use; deselecting removes exactly
// one matching entry and drops the facet once empty. Any filter change
// resets pagination to page 1 so a stale page number is never carried into
// a new result set.
func (d Descriptor) ToggleFacet(facet, value string, selected bool) Descriptor {
	next := d.Filter.clone()
	if selected {
		next[facet] = append(next[facet], value)
	} else {
		values := next[facet]
		for i, existing := range values {
			if existing == value {
				values = append(values[:i], values[i+1:]...)
				break
			}
		}
		if len(values) == 0 {
			delete(next, facet)
		} else {
			next[facet] = values
		}
	}
	d.Filter = next
	d.Page.Page = 1
	return d
}

// WithSort replaces the sort directive and resets pagination to page 1.
func (d Descriptor) WithSort(field string, direction enums.SortDirection) Descriptor {
	d.Sort = Sort{Field: field, Direction: direction}
	d.Page.Page = 1
	return d
}

// WithoutSort clears the sort directive and resets pagination to page 1.
func (d Descriptor) WithoutSort() Descriptor {
	d.Sort = Sort{}
	d.Page.Page = 1
	return d
}

// WithPage moves the cursor to the given 1-based page.
func (d Descriptor) WithPage(page int) Descriptor {
	if page < 1 {
		page = 1
	}
	d.Page.Page = page
	return d
}

// Values encodes the descriptor in the remote API's query dialect: facet
// values as repeated params, _sort/_order, _page/_per_page.
func (d Descriptor) Values() url.Values {
	values := url.Values{}
	for facet, selected := range d.Filter {
		for _, option := range selected {
			values.Add(facet, option)
		}
	}
	if !d.Sort.IsZero() {
		values.Set("_sort", d.Sort.Field)
		values.Set("_order", d.Sort.Direction.String())
	}
	page := d.Page
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize <= 0 {
		page.PageSize = DefaultPageSize
	}
	values.Set("_page", strconv.Itoa(page.Page))
	values.Set("_per_page", strconv.Itoa(page.PageSize))
	return values
}

func (f Filter) clone() Filter {
	out := make(Filter, len(f))
	for facet, selected := range f {
		out[facet] = append([]string(nil), selected...)
	}
	return out
}
