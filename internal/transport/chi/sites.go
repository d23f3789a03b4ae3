package chi

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domnode "github.com/kailas-cloud/doclib/internal/domain/node"
	siteuc "github.com/kailas-cloud/doclib/internal/usecase/site"
)

const (
	visibilityPublic  = "PUBLIC"
	visibilityPrivate = "PRIVATE"
)

// CreateSite handles POST /api/v1/sites.
func (s *Server) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Visibility == "" {
		req.Visibility = visibilityPublic
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.ShortName, validation.Required),
		validation.Field(&req.Visibility, validation.In(visibilityPublic, visibilityPrivate)),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	site, err := s.sites.Create(r.Context(), siteuc.CreateRequest{
		ShortName:   req.ShortName,
		Title:       req.Title,
		Description: req.Description,
		Public:      req.Visibility == visibilityPublic,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, SiteResponse{
		ShortName:   site.ShortName,
		Title:       site.Title,
		Description: site.Description,
		NodeRef:     domnode.RefOf(site.NodeID).String(),
	})
}
