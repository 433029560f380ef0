package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"medical-appointment-service/internal/scheduling"
	"medical-appointment-service/pkg/jwt"
	"medical-appointment-service/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	UserRoleKey  contextKey = "user_role"
)

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
}

func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		// The identity service revokes tokens by deleting their Redis entry
		revokedKey := fmt.Sprintf("revoked_token:%s", claims.ID)
		if claims.ID != "" {
			revoked, err := m.redisClient.Exists(r.Context(), revokedKey).Result()
			if err != nil {
				response.InternalServerError(w, "Failed to validate token")
				return
			}
			if revoked > 0 {
				response.Unauthorized(w, "Token has been revoked")
				return
			}
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = context.WithValue(ctx, UserRoleKey, scheduling.ActorRole(claims.Role))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmailFromContext extracts user email from context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetRoleFromContext extracts the caller's role from context
func GetRoleFromContext(ctx context.Context) (scheduling.ActorRole, bool) {
	role, ok := ctx.Value(UserRoleKey).(scheduling.ActorRole)
	return role, ok
}

// GetActorFromContext builds the acting identity from context values.
func GetActorFromContext(ctx context.Context) (scheduling.Actor, bool) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return scheduling.Actor{}, false
	}
	role, ok := GetRoleFromContext(ctx)
	if !ok {
		return scheduling.Actor{}, false
	}
	return scheduling.Actor{ID: userID.String(), Role: role}, true
}
