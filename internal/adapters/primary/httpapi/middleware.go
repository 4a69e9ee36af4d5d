package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/jupiterclapton/skylark/internal/adapters/secondary/security"
)

// Clé privée pour le contexte (évite les collisions)
type contextKey struct{ name string }

var principalCtxKey = &contextKey{"principal"}

// AuthMiddleware décode le header Authorization et valide le token de session.
//
// Pas de header = requête anonyme : on laisse passer SANS principal. C'est la
// couche service qui décide ensuite (toggle = no-op silencieux, compose = 401).
// Un token présent mais invalide, lui, est refusé tout de suite.
func AuthMiddleware(verifier *security.SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, "Invalid token format", http.StatusUnauthorized)
				return
			}

			principal, err := verifier.Verify(tokenStr)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalCtxKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext retourne le principal, ou nil pour une requête anonyme.
func PrincipalFromContext(ctx context.Context) *security.Principal {
	p, _ := ctx.Value(principalCtxKey).(*security.Principal)
	return p
}

// actorID est le raccourci le plus courant : "" = anonyme.
func actorID(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.SubjectID
	}
	return ""
}
