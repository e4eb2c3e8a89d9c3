package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/dashboard-config/internal/errs"
	"github.com/GregMSThompson/dashboard-config/pkg/logger"
)

// tokenVerifier is satisfied by *auth.Client.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Middleware struct {
	AuthClient tokenVerifier
}

func NewMiddleware(client tokenVerifier) *Middleware {
	return &Middleware{AuthClient: client}
}

// context key
type contextKey string

const (
	UIDKey    contextKey = "uid"
	ClaimsKey contextKey = "claims"
)

func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "invalid Authorization header", http.StatusUnauthorized)
			return
		}

		token, err := m.AuthClient.VerifyIDToken(r.Context(), parts[1])
		if err != nil {
			logger.FromContext(r.Context()).Warn("token verification failed", "error", err)
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UIDKey, token.UID)
		ctx = context.WithValue(ctx, ClaimsKey, token.Claims)
		_, ctx = logger.With(ctx, "uid", token.UID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// errorHandler is satisfied by response.ResponseHandler.
type errorHandler interface {
	HandleError(w http.ResponseWriter, r *http.Request, err error)
}

// RequireClaim rejects requests whose token does not carry claim set to true
// with a ForbiddenError written through eh.
func RequireClaim(claim string, eh errorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasClaim(r.Context(), claim) {
				logger.FromContext(r.Context()).Warn("missing required claim", "claim", claim)
				eh.HandleError(w, r, errs.NewForbiddenError("the "+claim+" claim is required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

func HasClaim(ctx context.Context, claim string) bool {
	claims, _ := ctx.Value(ClaimsKey).(map[string]interface{})
	v, _ := claims[claim].(bool)
	return v
}
