package httpadapter

import (
	"net/http"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrBusy):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrSubmission),
		domain.IsKind(err, domain.ErrClauseFetch),
		domain.IsKind(err, domain.ErrContract):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
