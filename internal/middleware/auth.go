package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
)

// RoleChecker reports whether a user holds the admin role. Unknown users are
// reported as a NotFound AppError.
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// AdminOnly lets a request through only when the user named by the id query
// parameter is an admin.
func AdminOnly(roles RoleChecker, errorHandler *apperrors.Handler, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.URL.Query().Get("id")
			if id == "" {
				errorHandler.HandleError(w, r, apperrors.Validation("Please provide a valid admin id"))
				return
			}

			admin, err := roles.IsAdmin(r.Context(), id)
			if err != nil {
				errorHandler.HandleError(w, r, err)
				return
			}
			if !admin {
				logger.Warn("Rejected non-admin request",
					zap.String("user_id", id),
					zap.String("path", r.URL.Path),
					zap.String("request_id", r.Header.Get("X-Request-ID")))
				errorHandler.HandleError(w, r, apperrors.Unauthorized("You are not authorized to access this resource"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
