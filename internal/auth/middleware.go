package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware extracts an optional identity from the Authorization
// header. The policy matches the identity provider's contract:
//   - auth disabled: every caller is anonymous, tokens are ignored
//   - no Authorization header: anonymous
//   - header present but token invalid: 401
//   - token valid: identity stored in the request context
func (v *Verifier) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.enabled {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ident, err := v.Verify(tokenStr)
			if err != nil {
				logger.Warn("Rejected bearer token", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}
