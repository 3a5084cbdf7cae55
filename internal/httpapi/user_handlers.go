package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/condocore/condo-manager/internal/domain"
	"github.com/condocore/condo-manager/internal/security"
	"github.com/condocore/condo-manager/internal/service"
	"github.com/condocore/condo-manager/internal/store"
	"github.com/go-chi/chi/v5"
)

func ListUsersHandler(users *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.GetUsersForDisplay(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type createUserRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	FullName  string  `json:"full_name"`
	CondoUnit *string `json:"condo_unit,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

func CreateUserHandler(users *store.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		hash, err := security.Hash(req.Password)
		if err != nil {
			http.Error(w, "failed to hash password", http.StatusInternalServerError)
			return
		}
		u, err := users.Create(r.Context(), domain.UserDraft{
			Username: req.Username, Email: req.Email, PasswordHash: hash,
			Role: domain.Role(req.Role), FullName: req.FullName,
			CondoUnit: req.CondoUnit, Phone: req.Phone, IsActive: true,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, service.GetUserDetailsForAPI(u))
	}
}

func GetUserHandler(users *store.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		u, err := users.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service.GetUserDetailsForAPI(u))
	}
}

func ChangePasswordHandler(users *store.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		var req struct {
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		hash, err := security.Hash(req.NewPassword)
		if err != nil {
			http.Error(w, "failed to hash password", http.StatusInternalServerError)
			return
		}
		if _, err := users.Update(r.Context(), id, domain.UserPatch{PasswordHash: &hash}); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
