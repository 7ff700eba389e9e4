package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	common "github.com/ore-pool-go/operator/pkg/domain"
)

// ErrorMiddleware maps a context-stored error, or a cancelled or expired
// request context, into the operator's one JSON error envelope when the
// handler has not written a status itself. A handler that already wrote
// a status, including an error status with no body, keeps its response
// as written.
func ErrorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &errorResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		if err := common.GetError(r.Context()); err != nil && !rw.headerWritten {
			slog.ErrorContext(r.Context(), "request failed", "error", err)
			rw.writeErrorResponse(toAPIError(err))
			return
		}

		if ctxErr := r.Context().Err(); ctxErr != nil && !rw.headerWritten {
			slog.ErrorContext(r.Context(), "request context error", "error", ctxErr)
			var apiErr *common.APIError
			switch ctxErr {
			case context.Canceled:
				apiErr = common.NewAPIError(http.StatusRequestTimeout, "REQUEST_CANCELLED", "request was cancelled")
			case context.DeadlineExceeded:
				apiErr = common.NewAPIError(http.StatusRequestTimeout, "REQUEST_TIMEOUT", "request timeout")
			default:
				apiErr = common.NewAPIError(http.StatusInternalServerError, "CONTEXT_ERROR", ctxErr.Error())
			}
			rw.writeErrorResponse(apiErr)
			return
		}

		if rw.statusCode >= 400 && !rw.headerWritten {
			rw.writeErrorResponse(common.NewAPIError(rw.statusCode, "ERROR", http.StatusText(rw.statusCode)))
		}
	})
}

// toAPIError maps the tagged domain error types onto HTTP status, the
// same mapping common.ErrorFromString falls back to for plain errors.
func toAPIError(err error) *common.APIError {
	switch {
	case common.IsNotFoundError(err):
		return common.NewAPIError(http.StatusNotFound, "NOT_FOUND", err.Error())
	case common.IsUnauthorizedError(err):
		return common.NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case common.IsForbiddenError(err):
		return common.NewAPIError(http.StatusForbidden, "FORBIDDEN", err.Error())
	case common.IsInvalidInputError(err):
		return common.NewAPIError(http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case common.IsBadRequestError(err):
		return common.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		return common.ErrorFromString(err)
	}
}

type errorResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (rw *errorResponseWriter) WriteHeader(statusCode int) {
	if !rw.headerWritten {
		rw.statusCode = statusCode
		rw.headerWritten = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *errorResponseWriter) Write(data []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(data)
}

func (rw *errorResponseWriter) writeErrorResponse(apiErr *common.APIError) {
	if !rw.headerWritten {
		if err := common.WriteErrorResponse(rw.ResponseWriter, apiErr); err != nil {
			slog.Error("failed to write error response", "error", err)
		}
	}
}
