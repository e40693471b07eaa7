package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-user-service/internal/model"
)

type tokenAuthorizer interface {
	Authorize(ctx context.Context, accessToken string) (model.AuthIdentity, error)
}

type contextKey string

const identityContextKey contextKey = "auth_identity"

const allowOriginHeader = "Access-Control-Allow-Origin"

// AuthGate classifies every inbound request before business logic:
// preflight and allow-listed paths forward untouched, everything else
// needs a bearer access token that passes both the signature check and
// the session liveness check. Every outcome, rejections included,
// carries the CORS allow-origin header.
type AuthGate struct {
	auth        tokenAuthorizer
	allowOrigin string
	public      map[string]struct{}
	tokenExempt map[string]struct{}
}

// NewAuthGate builds the gate. publicPaths forward without any
// credential check. tokenExemptPaths forward even when a presented
// token fails verification: a refresh call legitimately carries an
// expired access token, so those handlers do their own token checks.
func NewAuthGate(auth tokenAuthorizer, allowOrigin string, publicPaths []string, tokenExemptPaths []string) *AuthGate {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return &AuthGate{
		auth:        auth,
		allowOrigin: allowOrigin,
		public:      pathSet(publicPaths),
		tokenExempt: pathSet(tokenExemptPaths),
	}
}

func (g *AuthGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stamped up front so forwarded and rejected responses alike
		// carry it.
		w.Header().Set(allowOriginHeader, g.allowOrigin)

		// Preflight never carries credentials.
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		path := strings.ToLower(r.URL.Path)
		if _, open := g.public[path]; open {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			g.reject(w, "No token found")
			return
		}

		identity, err := g.auth.Authorize(r.Context(), strings.TrimSpace(header[7:]))
		if err != nil {
			if _, exempt := g.tokenExempt[path]; exempt {
				next.ServeHTTP(w, r)
				return
			}
			g.reject(w, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *AuthGate) reject(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = jsonEncode(w, model.APIResponse{
		Status:  model.StatusFail,
		Message: message,
	})
}

func IdentityFromContext(ctx context.Context) (model.AuthIdentity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.AuthIdentity)
	return identity, ok
}

func pathSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}
