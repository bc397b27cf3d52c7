package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"storefront-service/internal/domain"
)

// Reasons carried in ErrorResponse.Reason.
const (
	ReasonValidation       = "validation_error"
	ReasonDuplicate        = "duplicate"
	ReasonCapacityExceeded = "capacity_exceeded"
	ReasonEmptyCart        = "empty_cart"
	ReasonUnauthorized     = "unauthorized"
	ReasonNotFound         = "not_found"
	ReasonDeliveryFailed   = "delivery_failed"
	ReasonInternal         = "internal_error"
)

const genericInternalMessage = "An internal server error occurred"

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
	Field  string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, code int, reason, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message, Reason: reason})
}

// classify maps an error kind to its status and reason. Validation is checked
// first so a validation failure caused by a missing reference stays a 400.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ReasonValidation
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusBadRequest, ReasonDuplicate
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusBadRequest, ReasonCapacityExceeded
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, ReasonEmptyCart
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized, ReasonUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ReasonNotFound
	case errors.Is(err, domain.ErrDelivery):
		return http.StatusInternalServerError, ReasonDeliveryFailed
	default:
		return http.StatusInternalServerError, ReasonInternal
	}
}

// publicMessage drops the package prefix sentinels carry ("store: ", "cart: ").
func publicMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{"store: ", "cart: ", "auth: ", "session: "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}

// respondWithServiceError writes err using the status map. 5xx responses
// are logged and, outside development, carry a generic message.
func (h *HTTPHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code, reason := classify(err)
	resp := ErrorResponse{Reason: reason}

	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("reason", reason),
			zap.Error(err),
		)
		resp.Error = genericInternalMessage
		if reason == ReasonDeliveryFailed {
			resp.Error = "The message could not be sent. Please try again later."
		}
		if h.exposeErrors {
			resp.Error = err.Error()
		}
		respondWithJSON(w, code, resp)
		return
	}

	resp.Error = publicMessage(err)
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	respondWithJSON(w, code, resp)
}
