package chi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kailas-cloud/lectio/internal/domain"
)

// UserIDHeader carries the end user for callers authenticated with a service API key.
const UserIDHeader = "X-User-ID"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// AuthConfig configures AuthMiddleware. With no keys and no secret, authentication is disabled.
type AuthConfig struct {
	APIKeys   []string
	JWTSecret string
	JWTIssuer string
}

type userIDKey struct{}

// ContextWithUserID attaches the authenticated user to ctx.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok && id > 0
}

// requireUser returns the request's user or domain.ErrUnauthorized.
func requireUser(r *http.Request) (int64, error) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		return 0, fmt.Errorf("user identity required: %w", domain.ErrUnauthorized)
	}
	return id, nil
}

// AuthMiddleware authenticates Bearer credentials and resolves the user identity.
// A token matching an API key is a trusted service caller, whose user comes from X-User-ID.
// Any other token must be an HS256 JWT whose subject is the numeric user id.
func AuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}
	secret := []byte(cfg.JWTSecret)

	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.JWTIssuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.JWTIssuer))
	}
	parser := jwt.NewParser(parserOpts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			// Auth disabled: trust X-User-ID as is
			if len(validKeys) == 0 && len(secret) == 0 {
				serveWithHeaderUser(w, r, next)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}
			token := auth[len(bearerPrefix):]

			if _, ok := validKeys[token]; ok {
				serveWithHeaderUser(w, r, next)
				return
			}
			if len(secret) == 0 {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}

			userID, err := userFromJWT(parser, token, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

func serveWithHeaderUser(w http.ResponseWriter, r *http.Request, next http.Handler) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		next.ServeHTTP(w, r)
		return
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, UserIDHeader+" must be a positive integer")
		return
	}
	next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
}

func userFromJWT(parser *jwt.Parser, token string, secret []byte) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse jwt: %w", err)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("jwt subject %q is not a user id", claims.Subject)
	}
	return userID, nil
}
