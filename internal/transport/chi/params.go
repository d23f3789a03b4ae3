package chi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/doclib/internal/domain"
	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	"github.com/kailas-cloud/doclib/internal/usecase/filterquery"
	"github.com/kailas-cloud/doclib/internal/usecase/resolver"
)

// Listing types accepted in the {type} path segment.
const typeAll = "all"

var listTypes = []any{typeAll, filterquery.TypeDocuments, filterquery.TypeFolders, filterquery.TypeImages}

// ListParams are the query parameters of a document listing.
type ListParams struct {
	Filter      *string
	FilterData  *string
	Max         *int
	SortField   *string
	SortAsc     *bool
	Size        *int
	Pos         *int
	LibraryRoot *string
}

func bindListParams(r *http.Request) (ListParams, error) {
	var p ListParams
	q := r.URL.Query()
	binds := []struct {
		name string
		dest any
	}{
		{"filter", &p.Filter},
		{"filterData", &p.FilterData},
		{"max", &p.Max},
		{"sortField", &p.SortField},
		{"sortAsc", &p.SortAsc},
		{"size", &p.Size},
		{"pos", &p.Pos},
		{"libraryRoot", &p.LibraryRoot},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return ListParams{}, fmt.Errorf("invalid %s parameter: %w", b.name, err)
		}
	}
	return p, nil
}

func (p *ListParams) validate(maxPageSize int) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Max, validation.Min(0)),
		validation.Field(&p.Size, validation.Min(0), validation.Max(maxPageSize)),
		validation.Field(&p.Pos, validation.Min(1)),
		validation.Field(&p.SortField, validation.Length(0, 64)),
	)
}

// spec converts the parameters into a filter spec for the given listing type.
func (p *ListParams) spec(listType string) filterquery.Spec {
	typeFilter := listType
	if typeFilter == typeAll {
		typeFilter = ""
	}
	return filterquery.Spec{
		FilterID:      deref(p.Filter),
		FilterData:    deref(p.FilterData),
		MaxResults:    deref(p.Max),
		SortField:     deref(p.SortField),
		SortAscending: p.SortAsc == nil || *p.SortAsc,
		TypeFilter:    typeFilter,
	}
}

func validateListType(t string) error {
	if err := validation.Validate(t, validation.Required, validation.In(listTypes...)); err != nil {
		return fmt.Errorf("type: %w", err)
	}
	return nil
}

// bindLocation reads the site or node location of a request path. Site
// routes without a container use defaultContainer.
func bindLocation(r *http.Request, defaultContainer string) (resolver.Args, error) {
	rest, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		return resolver.Args{}, fmt.Errorf("invalid path: %w", domain.ErrBadRequest)
	}

	if chi.URLParam(r, "site") != "" {
		var site string
		if err := bindPathParam(r, "site", &site); err != nil {
			return resolver.Args{}, err
		}
		container := defaultContainer
		if chi.URLParam(r, "container") != "" {
			if err := bindPathParam(r, "container", &container); err != nil {
				return resolver.Args{}, err
			}
		}
		return resolver.Args{Site: site, Container: container, Path: rest}, nil
	}

	ref, err := bindNodeRef(r)
	if err != nil {
		return resolver.Args{}, err
	}
	return resolver.Args{NodeRef: ref.String(), Path: rest}, nil
}

// bindNodeRef reads the {store_type}/{store_id}/{id} template arguments.
func bindNodeRef(r *http.Request) (domnode.Ref, error) {
	var storeType, storeID, id string
	for _, p := range []struct {
		name string
		dest *string
	}{
		{"store_type", &storeType},
		{"store_id", &storeID},
		{"id", &id},
	} {
		if err := bindPathParam(r, p.name, p.dest); err != nil {
			return domnode.Ref{}, err
		}
	}
	ref, err := domnode.NewRef(storeType, storeID, id)
	if err != nil {
		return domnode.Ref{}, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}
	return ref, nil
}

func bindPathParam(r *http.Request, name string, dest *string) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, domain.ErrBadRequest)
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
