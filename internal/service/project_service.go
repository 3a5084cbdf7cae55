// Package service holds the thin orchestration objects the HTTP
// collaborator calls: ProjectService and UserService bundle one or more
// repositories and translate repository-level operations into the handful
// of application-level use cases the API exposes.
package service

import (
	"context"
	"fmt"

	"github.com/condocore/condo-manager/internal/domain"
	"github.com/condocore/condo-manager/internal/feecalc"
	"github.com/condocore/condo-manager/internal/store"
	"github.com/rs/zerolog"
)

type ProjectService struct {
	Projects *store.ProjectRepository
	Rates    feecalc.Rates
	Log      zerolog.Logger
}

func NewProjectService(projects *store.ProjectRepository, rates feecalc.Rates, log zerolog.Logger) *ProjectService {
	if rates == nil {
		rates = feecalc.DefaultRates
	}
	return &ProjectService{Projects: projects, Rates: rates, Log: log}
}

func (s *ProjectService) CreateProject(ctx context.Context, draft domain.ProjectDraft) (*domain.Project, error) {
	return s.Projects.CreateProject(ctx, draft)
}

// GetProjectStatistics aggregates a project's Units via pure sum/filter/fold
// over the in-memory slice; it never mutates a Unit and never re-queries
// per-unit.
func (s *ProjectService) GetProjectStatistics(ctx context.Context, projectID string) (*domain.Stats, error) {
	p, err := s.Projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{TotalUnits: len(p.Units)}
	var areaSum, feeSum float64
	for _, u := range p.Units {
		switch u.Status {
		case domain.UnitAvailable:
			stats.Available++
		case domain.UnitSold:
			stats.Sold++
		case domain.UnitReserved:
			stats.Reserved++
		case domain.UnitMaintenance:
			stats.Maintenance++
		}
		areaSum += u.Area
		feeSum += parseFee(feecalc.Calculate(u.Area, u.CondoType, s.Rates))
	}
	if stats.TotalUnits > 0 {
		stats.AvgArea = areaSum / float64(stats.TotalUnits)
	}
	stats.TotalMonthlyFees = feeSum
	return stats, nil
}

// UpdateProjectUnits delegates to the repository's grow/shrink contract.
func (s *ProjectService) UpdateProjectUnits(ctx context.Context, projectID string, newCount int) error {
	return s.Projects.AdjustUnitCount(ctx, projectID, newCount)
}

func (s *ProjectService) DeleteProjectByID(ctx context.Context, projectID string) error {
	return s.Projects.DeleteProject(ctx, projectID)
}

// DeleteProject resolves a human-entered project name to its id, failing
// with KindAmbiguous on multiple matches and KindNotFound on zero, before
// delegating to the id-based delete.
func (s *ProjectService) DeleteProject(ctx context.Context, name string) error {
	matches, err := s.Projects.GetProjectsByName(ctx, name)
	if err != nil {
		return err
	}
	switch len(matches) {
	case 0:
		return domain.New(domain.KindNotFound, "no project named "+name)
	case 1:
		return s.Projects.DeleteProject(ctx, matches[0].ProjectID)
	default:
		s.Log.Warn().Str("name", name).Int("matches", len(matches)).Msg("project name is ambiguous, refusing to delete")
		return domain.New(domain.KindAmbiguous, "multiple projects are named "+name)
	}
}

func (s *ProjectService) UpdateUnitByID(ctx context.Context, unitID int64, patch domain.UnitPatch) (bool, error) {
	return s.Projects.UpdateUnit(ctx, unitID, patch)
}

func (s *ProjectService) GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	return s.Projects.GetProjectByID(ctx, projectID)
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.Projects.ListProjects(ctx)
}

// parseFee reads the plain "%.2f" string feecalc.Calculate produces. The
// repository stores calculated_monthly_fees opaquely; only this aggregation
// step needs the numeric value back.
func parseFee(s string) float64 {
	var f float64
	if _, err := fmt.Sscanf(s, "%f", &f); err != nil {
		return 0
	}
	return f
}
