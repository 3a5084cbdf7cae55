// Package httpapi is the HTTP collaborator: thin chi handlers that decode a
// request, call exactly one service/repository method, and encode the
// result. It owns no business rules — those live in internal/service and
// internal/store.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/condocore/condo-manager/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if e, ok := err.(*domain.Error); ok {
		derr = e
	}
	if derr == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch derr.Kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindDuplicate, domain.KindConstraint, domain.KindCannotShrink, domain.KindAmbiguous:
		status = http.StatusConflict
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindAuth:
		status = http.StatusUnauthorized
	case domain.KindDbBusy:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": derr.Error(), "kind": string(derr.Kind)})
}

type unitDTO struct {
	ID                    int64    `json:"id"`
	UnitNumber            string   `json:"unit_number"`
	ProjectID             string   `json:"project_id"`
	Area                  float64  `json:"area"`
	CondoType             string   `json:"condo_type"`
	Status                string   `json:"status"`
	EstimatedPrice        *float64 `json:"estimated_price,omitempty"`
	OwnerName             string   `json:"owner_name"`
	CalculatedMonthlyFees string   `json:"calculated_monthly_fees"`
}

func toUnitDTO(u domain.Unit) unitDTO {
	return unitDTO{
		ID: u.ID, UnitNumber: u.UnitNumber, ProjectID: u.ProjectID, Area: u.Area,
		CondoType: string(u.CondoType), Status: string(u.Status),
		EstimatedPrice: u.EstimatedPrice, OwnerName: u.OwnerName,
		CalculatedMonthlyFees: u.CalculatedMonthlyFees,
	}
}

type projectDTO struct {
	ProjectID        string    `json:"project_id"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	BuildingArea     float64   `json:"building_area"`
	LandArea         float64   `json:"land_area"`
	ConstructionYear int       `json:"construction_year"`
	UnitCount        int       `json:"unit_count"`
	Constructor      string    `json:"constructor"`
	Status           string    `json:"status"`
	Units            []unitDTO `json:"units"`
}

func toProjectDTO(p domain.Project) projectDTO {
	units := make([]unitDTO, len(p.Units))
	for i, u := range p.Units {
		units[i] = toUnitDTO(u)
	}
	return projectDTO{
		ProjectID: p.ProjectID, Name: p.Name, Address: p.Address,
		BuildingArea: p.BuildingArea, LandArea: p.LandArea, ConstructionYear: p.ConstructionYear,
		UnitCount: p.UnitCount, Constructor: p.Constructor, Status: string(p.Status), Units: units,
	}
}
