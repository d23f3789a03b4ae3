package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/doclib/internal/domain"
	"github.com/kailas-cloud/doclib/internal/logger"
)

// Error codes of ErrorResponse.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeGone             = "gone"
	codeForbidden        = "forbidden"
	codeUnauthorized     = "unauthorized"
	codeAlreadyExists    = "already_exists"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrGone, http.StatusGone, codeGone),
		sentinelHandler(domain.ErrBadRequest, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, codeForbidden),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, clientMessage(err))
		return true
	}
}

// clientMessage is the message of a client error. Not-found errors are
// reduced to the identifier that failed to resolve.
func clientMessage(err error) string {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return err.Error()
}

// errorCode maps a per-item error to a response code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return codeNotFound
	case errors.Is(err, domain.ErrGone):
		return codeGone
	case errors.Is(err, domain.ErrBadRequest):
		return codeBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return codeForbidden
	case errors.Is(err, domain.ErrAlreadyExists):
		return codeAlreadyExists
	default:
		return codeInternalError
	}
}

// itemError converts a per-item error without exposing internals.
func itemError(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	code := errorCode(err)
	if code == codeInternalError {
		return &ErrorResponse{Code: code, Message: "internal error"}
	}
	return &ErrorResponse{Code: code, Message: clientMessage(err)}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Info("request failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
