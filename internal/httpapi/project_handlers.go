package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/condocore/condo-manager/internal/domain"
	"github.com/condocore/condo-manager/internal/service"
	"github.com/go-chi/chi/v5"
)

func CreateProjectHandler(projects *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft domain.ProjectDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		p, err := projects.CreateProject(r.Context(), draft)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toProjectDTO(*p))
	}
}

func ListProjectsHandler(projects *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := projects.ListProjects(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]projectDTO, len(list))
		for i, p := range list {
			out[i] = toProjectDTO(p)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetProjectHandler(projects *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := projects.GetProjectByID(r.Context(), chi.URLParam(r, "projectID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProjectDTO(*p))
	}
}

func GetProjectStatisticsHandler(projects *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := projects.GetProjectStatistics(r.Context(), chi.URLParam(r, "projectID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func UpdateProjectUnitsHandler(projects *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			NewCount int `json:"new_count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := projects.UpdateProjectUnits(r.Context(), chi.URLParam(r, "projectID"), req.NewCount); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteProjectByIDHandler(projects *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := projects.DeleteProjectByID(r.Context(), chi.URLParam(r, "projectID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteProjectByNameHandler(projects *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "name query parameter is required", http.StatusBadRequest)
			return
		}
		if err := projects.DeleteProject(r.Context(), name); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpdateUnitHandler(projects *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unitID, err := parseID(chi.URLParam(r, "unitID"))
		if err != nil {
			http.Error(w, "invalid unit id", http.StatusBadRequest)
			return
		}
		var patch domain.UnitPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		ok, err := projects.UpdateUnitByID(r.Context(), unitID, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			http.Error(w, "unit not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
