package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/handlers"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	rolesKey  contextKey = "roles"

	// RoleProvider роль исполнителя заказов
	RoleProvider = "provider"
)

const (
	msgMissingToken = "authorization token is required"
	msgInvalidToken = "invalid authorization token"
	msgProviderOnly = "provider role is required"
)

// Auth проверяет bearer-токен и кладет идентификатор пользователя
// и его роли в контекст запроса
func Auth(jwtSecret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				handlers.RespondError(w, http.StatusUnauthorized, msgMissingToken)
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				handlers.RespondError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				handlers.RespondError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			userID, err := parseSubject(claims)
			if err != nil {
				handlers.RespondError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, rolesKey, parseRoles(claims))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireProvider пропускает только пользователей с ролью provider.
// Должен стоять после Auth.
func RequireProvider(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !HasRole(r.Context(), RoleProvider) {
			handlers.RespondForbidden(w, msgProviderOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID возвращает идентификатор пользователя из контекста запроса
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// HasRole проверяет наличие роли у пользователя из контекста запроса
func HasRole(ctx context.Context, role string) bool {
	roles, ok := ctx.Value(rolesKey).([]string)
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// parseSubject извлекает идентификатор пользователя из claim sub
func parseSubject(claims jwt.MapClaims) (int64, error) {
	subject, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject is not a user id: %w", err)
	}
	if userID <= 0 {
		return 0, fmt.Errorf("subject must be positive")
	}

	return userID, nil
}

// parseRoles извлекает роли из claim roles
func parseRoles(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		return nil
	}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if role, ok := r.(string); ok {
			roles = append(roles, role)
		}
	}
	return roles
}
