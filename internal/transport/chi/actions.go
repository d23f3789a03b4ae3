package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	domaction "github.com/kailas-cloud/doclib/internal/domain/action"
)

// RunAction handles POST /api/v1/action/{action}/site/... and .../node/...
// Per-item failures are reported in the body with status 200.
func (s *Server) RunAction(w http.ResponseWriter, r *http.Request) {
	kind, err := domaction.ParseKind(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		return
	}

	dest, err := bindLocation(r, s.opts.DefaultContainer)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validateAction(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	summary, err := s.actions.Run(r.Context(), kind, dest, req.NodeRefs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryToResponse(summary))
}

func (s *Server) validateAction(req *ActionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.NodeRefs,
			validation.Required,
			validation.Length(1, s.opts.MaxActionItems),
			validation.Each(validation.Required, validation.Length(1, 512)),
		),
	)
}
