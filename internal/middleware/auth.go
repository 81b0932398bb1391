package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys
type contextKey string

const userIDContextKey = contextKey("userID")

var errMissingToken = errors.New("missing authorization token")

// Claims are the identity provider's session token claims. The user id is
// the subject, with "uid" accepted for older tokens.
type Claims struct {
	UserID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator resolves the caller's user id from a bearer token. It is
// the single place tokens are decoded.
type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

// ResolveUserID validates the Authorization header and returns the user id.
func (a *Authenticator) ResolveUserID(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	userID := claims.Subject
	if userID == "" {
		userID = claims.UserID
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return userID, nil
}

// Middleware rejects unauthenticated requests and injects the user id in the context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.ResolveUserID(r)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithUserID returns a context carrying userID, as set by Middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetUserIDFromContext récupère l'ID de l'utilisateur authentifié
func GetUserIDFromContext(r *http.Request) (string, error) {
	userID, ok := r.Context().Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user not found in context")
	}
	return userID, nil
}
