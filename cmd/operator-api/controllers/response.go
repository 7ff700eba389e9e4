package controllers

import (
	"encoding/json"
	"net/http"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a use case's returned error onto the HTTP status §7
// assigns each error kind, using the existing APIError envelope.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *common.APIError

	switch {
	case isValidationError(err):
		apiErr = common.NewAPIError(http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case common.IsNotFoundError(err):
		apiErr = common.NewAPIError(http.StatusNotFound, "NOT_FOUND", err.Error())
	case common.IsUnauthorizedError(err):
		apiErr = common.NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case common.IsForbiddenError(err):
		apiErr = common.NewAPIError(http.StatusForbidden, "FORBIDDEN", err.Error())
	case common.IsInvalidInputError(err):
		apiErr = common.NewAPIError(http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case common.IsBadRequestError(err):
		apiErr = common.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		apiErr = common.NewAPIError(http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}

	_ = common.WriteErrorResponse(w, apiErr)
}

func isValidationError(err error) bool {
	_, ok := err.(*pool_in.ValidationError)
	return ok
}
