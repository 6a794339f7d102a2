package httpadapter

import (
	"net/http"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrPatternNotFound),
		domain.IsKind(err, domain.ErrMissingNotFound),
		domain.IsKind(err, domain.ErrSettingsNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
