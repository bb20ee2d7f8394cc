package devapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/mehmetcc/resirent/internal/auth"
	"github.com/mehmetcc/resirent/internal/httpx"
	"github.com/mehmetcc/resirent/internal/token"
	"go.uber.org/zap"
)

type claimsContextKey struct{}

func withClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// claimsFrom returns the authenticated identity, nil for anonymous requests.
func claimsFrom(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims
}

// authenticate resolves a bearer token when one is sent. An invalid token is
// rejected on every route, public ones included.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			writeTokenNotValid(w)
			return
		}
		claims, err := s.tokens.ValidateAccess(r.Context(), raw)
		if err != nil {
			s.logger.Debug("access token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			writeTokenNotValid(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.Authorize(claimsFrom(r.Context())).Allowed() {
			writeNotAuthenticated(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireActiveOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil {
			writeNotAuthenticated(w)
			return
		}
		if !auth.IsActiveOwner(claims) {
			httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse{
				Detail: "Your owner account is not active. Please wait for admin approval.",
				Code:   httpx.ErrPermissionDenied,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeNotAuthenticated(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse{
		Detail: "Authentication credentials were not provided.",
		Code:   httpx.ErrNotAuthenticated,
	})
}

func writeTokenNotValid(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse{
		Detail: "Given token not valid for any token type",
		Code:   httpx.ErrTokenNotValid,
	})
}
