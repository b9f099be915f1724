package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fedecoop/padron/pkg/principal"
)

const requestIDHeader = "X-Request-Id"

// requestIDMiddleware stamps every request with an ID for log correlation.
// An inbound ID from a proxy is kept.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// Claims is the token payload the external identity provider issues.
type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	SessionID   string `json:"sid"`
	jwt.RegisteredClaims
}

// Authenticator verifies bearer tokens and lifts the claims into the
// request principal. Token issuance lives with the identity provider; this
// side only holds the shared verification key.
type Authenticator struct {
	signingKey []byte
}

// NewAuthenticator creates an authenticator verifying HMAC-signed tokens
// with the given key.
func NewAuthenticator(signingKey []byte) *Authenticator {
	return &Authenticator{signingKey: signingKey}
}

// Middleware rejects requests without a valid bearer token and attaches the
// token's principal, plus the client address and user agent the audit trail
// records, to the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization missing", http.StatusUnauthorized)
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			http.Error(w, "Malformed authorization header", http.StatusUnauthorized)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.signingKey, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid authorization token", http.StatusUnauthorized)
			return
		}

		sessionID := claims.SessionID
		if sessionID == "" {
			sessionID = r.Header.Get(requestIDHeader)
		}

		p := &principal.Principal{
			ID:          claims.Subject,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
			Role:        principal.Role(claims.Role),
			RemoteIP:    clientIP(r),
			UserAgent:   r.UserAgent(),
			SessionID:   sessionID,
		}

		next.ServeHTTP(w, r.WithContext(principal.WithContext(r.Context(), p)))
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
