package chi

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ListFavourites handles GET /api/v1/favourites.
func (s *Server) ListFavourites(w http.ResponseWriter, r *http.Request) {
	refs, err := s.favourites.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]string, len(refs))
	for i, ref := range refs {
		items[i] = ref.String()
	}
	writeJSON(w, http.StatusOK, FavouritesResponse{Items: items})
}

// AddFavourite handles POST /api/v1/favourites.
func (s *Server) AddFavourite(w http.ResponseWriter, r *http.Request) {
	var req FavouriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.NodeRef, validation.Required, validation.Length(1, 512)),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	ref, err := s.favourites.Add(r.Context(), req.NodeRef)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, FavouriteRequest{NodeRef: ref.String()})
}

// RemoveFavourite handles DELETE /api/v1/favourites/{store_type}/{store_id}/{id}.
func (s *Server) RemoveFavourite(w http.ResponseWriter, r *http.Request) {
	ref, err := bindNodeRef(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := s.favourites.Remove(r.Context(), ref.String()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
