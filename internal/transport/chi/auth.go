package chi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kailas-cloud/doclib/internal/domain"
)

// UserHeader names the current user when token checks are disabled.
const UserHeader = "X-Doclib-User"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Claims are the bearer token claims. Username wins over the subject.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// User returns the user name carried by the claims.
func (c *Claims) User() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Subject
}

// AuthConfig configures BearerAuthMiddleware.
type AuthConfig struct {
	Secret string
	Issuer string
}

// BearerAuthMiddleware stores the current user in the request context.
// With a secret, an HS256 bearer token is required and its user is taken.
// Without one, the user comes from the X-Doclib-User header, or is the
// guest.
func BearerAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	secret := []byte(cfg.Secret)

	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user := strings.TrimSpace(r.Header.Get(UserHeader))
				next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), user)))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			claims, err := parseToken(auth[len(bearerPrefix):], secret, cfg.Issuer)
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), claims.User())))
		})
	}
}

func parseToken(raw string, secret []byte, issuer string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.User() == "" {
		return nil, errors.New("token carries no user")
	}
	return claims, nil
}
