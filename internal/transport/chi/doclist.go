package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	listinguc "github.com/kailas-cloud/doclib/internal/usecase/listing"
)

// ListDocuments handles GET /api/v1/doclist/{type}/site/... and .../node/...
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	listType := chi.URLParam(r, "type")
	if err := validateListType(listType); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	args, err := bindLocation(r, s.opts.DefaultContainer)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	params, err := bindListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if err := params.validate(s.opts.MaxPageSize); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	args.LibraryRoot = deref(params.LibraryRoot)

	pageSize := s.opts.DefaultPageSize
	if params.Size != nil {
		pageSize = *params.Size
	}
	pageNo := 1
	if params.Pos != nil && *params.Pos > 0 {
		pageNo = *params.Pos
	}

	l, err := s.listing.List(r.Context(), listinguc.Request{
		Args:     args,
		Filter:   params.spec(listType),
		PageSize: pageSize,
		PageNo:   pageNo,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doclistToResponse(l))
}

// GetNode handles GET /api/v1/node/{store_type}/{store_id}/{id}.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	args, err := bindLocation(r, s.opts.DefaultContainer)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	args.LibraryRoot = r.URL.Query().Get("libraryRoot")

	item, loc, err := s.listing.Item(r.Context(), args)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NodeResponse{Item: itemToResponse(item), Location: loc})
}
