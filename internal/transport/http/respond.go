package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"clinicbook/backend/internal/domain"
	"clinicbook/backend/internal/store"
)

type errorBody struct {
	Code   string `json:"code"`
	Rule   string `json:"rule,omitempty"`
	Entity string `json:"entity,omitempty"`
}

// rejectionStatus maps a rejection code to an HTTP status. Shape
// problems are 400, missing references 404, contended or duplicate
// resources 409, and requests that are well-formed but break a
// business rule 422.
func rejectionStatus(code domain.RejectionCode) int {
	switch code {
	case domain.RejectInvalidRequest:
		return http.StatusBadRequest
	case domain.RejectNotFound:
		return http.StatusNotFound
	case domain.RejectSchedulingConflict, domain.RejectDuplicateLinkage, domain.RejectAlreadyExists:
		return http.StatusConflict
	case domain.RejectOutsideWorkingWindow, domain.RejectTemporalOrdering:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	var rej *domain.Rejection
	if errors.As(err, &rej) {
		return c.JSON(rejectionStatus(rej.Code), errorBody{
			Code:   string(rej.Code),
			Rule:   rej.Rule,
			Entity: rej.Entity,
		})
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Code: string(domain.RejectNotFound)})
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrAlreadyExists), errors.Is(err, store.ErrDuplicateLinkage):
		return c.JSON(http.StatusConflict, errorBody{Code: string(domain.RejectSchedulingConflict)})
	}
	return c.JSON(http.StatusInternalServerError, errorBody{Code: "internal"})
}
