package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/condocore/condo-manager/internal/service"
	"github.com/condocore/condo-manager/internal/session"
)

func LoginHandler(users *service.UserService, issuer *session.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		u, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		if u == nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := issuer.Issue(u.Username, string(u.Role))
		if err != nil {
			http.Error(w, "failed to issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": token,
			"user":         service.GetUserDetailsForAPI(u),
		})
	}
}
