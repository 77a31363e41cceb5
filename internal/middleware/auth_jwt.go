package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"catalogstudio/internal/domain"
)

// TokenClaims identifies the dashboard user behind a request.
type TokenClaims struct {
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims to the domain identity.
func (c TokenClaims) Actor() domain.Actor {
	role := c.Role
	if role == "" {
		role = domain.UserRoleEditor
	}
	return domain.Actor{ID: c.Subject, Name: c.Name, Email: c.Email, Role: role}
}

// DevActor is attached to every request when authentication is disabled.
var DevActor = domain.Actor{ID: "dev", Name: "Developer", Email: "dev@localhost", Role: domain.UserRoleAdmin}

// SignJWT issues an HS256 token for claims.
func SignJWT(secret string, claims TokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyJWT parses token and checks its HS256 signature and expiry.
func VerifyJWT(secret, token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return claims, nil
}

// AuthJWT requires a bearer token and attaches its actor to the context.
// With an empty secret every request runs as DevActor.
func AuthJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), DevActor)))
				return
			}
			token, err := bearerToken(r)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}
			claims, err := VerifyJWT(secret, token)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), claims.Actor())))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization")
	}
	return strings.TrimSpace(parts[1]), nil
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":{"code":"unauthorized","message":%q}}`, msg)
}
