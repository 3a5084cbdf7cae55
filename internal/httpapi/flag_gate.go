package httpapi

import (
	"net/http"

	"github.com/condocore/condo-manager/internal/flags"
)

// RequireFlag denies a request with 404 when flagName is disabled, mirroring
// the "short denial response" the gated modules (finance, analytics,
// reports) contract calls for.
func RequireFlag(svc *flags.Service, flagName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !svc.IsEnabled(r.Context(), flagName) {
				http.Error(w, "module disabled", http.StatusNotFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
