package middleware

import (
	"net/http"

	"medical-appointment-service/internal/scheduling"
	"medical-appointment-service/pkg/response"
)

// RequireRoles creates a middleware that checks if the caller has any of the
// required roles. Role is read from context (set by AuthMiddleware from JWT
// claims).
func RequireRoles(allowedRoles ...scheduling.ActorRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			allowed := false
			for _, allowedRole := range allowedRoles {
				if role == allowedRole {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff is a convenience middleware for staff-only endpoints
func RequireStaff(next http.Handler) http.Handler {
	return RequireRoles(scheduling.RoleStaff)(next)
}

// RequireDoctorOrStaff is a convenience middleware for clinical endpoints
func RequireDoctorOrStaff(next http.Handler) http.Handler {
	return RequireRoles(scheduling.RoleDoctor, scheduling.RoleStaff)(next)
}
