package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/condocore/condo-manager/internal/domain"
	"github.com/google/uuid"
)

// ProjectRepository is the persistence boundary for the Project/Unit
// aggregate. Unit rows carry their own stable surrogate id; no operation
// here ever deletes and re-inserts a whole unit set to satisfy an update —
// see UpdateUnit, which is the one place that invariant is load-bearing.
type ProjectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

// CreateProject inserts a project row plus N placeholder units, all inside
// one transaction, per the project lifecycle contract.
func (r *ProjectRepository) CreateProject(ctx context.Context, draft domain.ProjectDraft) (*domain.Project, error) {
	if draft.UnitCount < 0 {
		return nil, domain.New(domain.KindValidation, "unit_count must be >= 0")
	}
	if strings.TrimSpace(draft.Name) == "" {
		return nil, domain.New(domain.KindValidation, "name is required")
	}

	projectID := uuid.NewString()
	now := time.Now().UTC()

	err := WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (project_id, name, address, building_area, land_area, construction_year, unit_count, constructor, creation_date, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			projectID, draft.Name, draft.Address, draft.BuildingArea, draft.LandArea,
			draft.ConstructionYear, draft.UnitCount, draft.Constructor, now, string(domain.ProjectActive), now, now,
		)
		if err != nil {
			return wrapWriteErr("create project", err)
		}

		for i := 1; i <= draft.UnitCount; i++ {
			if err := insertPlaceholderUnit(ctx, tx, projectID, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetProjectByID(ctx, projectID)
}

func insertPlaceholderUnit(ctx context.Context, tx *sql.Tx, projectID string, n int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO units (unit_number, project_id, area, condo_type, status, owner_name, calculated_monthly_fees)
		VALUES (?, ?, 0, ?, ?, ?, '0.00')`,
		fmt.Sprintf("UNIT-%d", n), projectID, string(domain.CondoResidential), string(domain.UnitAvailable), domain.PlaceholderOwner,
	)
	if err != nil {
		return wrapWriteErr("insert placeholder unit", err)
	}
	return nil
}

// AdjustUnitCount grows or shrinks a project's unit set to newCount.
// Shrinking only ever removes units that are still AVAILABLE and owned by
// the placeholder owner; if fewer than the required number qualify, the
// whole adjustment fails with domain.KindCannotShrink and nothing changes.
func (r *ProjectRepository) AdjustUnitCount(ctx context.Context, projectID string, newCount int) error {
	if newCount < 0 {
		return domain.New(domain.KindValidation, "new_count must be >= 0")
	}

	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var current int
		if err := tx.QueryRowContext(ctx, `SELECT unit_count FROM projects WHERE project_id = ?`, projectID).Scan(&current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.New(domain.KindNotFound, "project not found")
			}
			return wrapWriteErr("read unit_count", err)
		}

		switch {
		case newCount > current:
			next, err := nextUnitSuffix(ctx, tx, projectID)
			if err != nil {
				return err
			}
			for i := 0; i < newCount-current; i++ {
				if err := insertPlaceholderUnit(ctx, tx, projectID, next+i); err != nil {
					return err
				}
			}
		case newCount < current:
			need := current - newCount
			ids, err := removablePlaceholderIDs(ctx, tx, projectID, need)
			if err != nil {
				return err
			}
			if len(ids) < need {
				return domain.New(domain.KindCannotShrink,
					fmt.Sprintf("only %d of %d units are available placeholders; cannot shrink to %d", len(ids), need, newCount))
			}
			for _, id := range ids {
				if _, err := tx.ExecContext(ctx, `DELETE FROM units WHERE id = ?`, id); err != nil {
					return wrapWriteErr("delete placeholder unit", err)
				}
			}
		default:
			return nil
		}

		if _, err := tx.ExecContext(ctx, `UPDATE projects SET unit_count = ?, updated_at = ? WHERE project_id = ?`,
			newCount, time.Now().UTC(), projectID); err != nil {
			return wrapWriteErr("update unit_count", err)
		}
		return nil
	})
}

// nextUnitSuffix returns one past the highest existing UNIT-N suffix for the
// project, not the row count: a prior shrink can remove a low-numbered
// placeholder while a higher-numbered unit survives (e.g. sold), and basing
// the next number on COUNT(*) would then collide with that survivor.
func nextUnitSuffix(ctx context.Context, tx *sql.Tx, projectID string) (int, error) {
	var max sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(CAST(REPLACE(unit_number, 'UNIT-', '') AS INTEGER)) FROM units WHERE project_id = ?`,
		projectID,
	).Scan(&max); err != nil {
		return 0, wrapWriteErr("max unit suffix", err)
	}
	return int(max.Int64) + 1, nil
}

// removablePlaceholderIDs returns up to limit ids of units that are
// AVAILABLE and owned by the placeholder owner, highest unit_number first —
// shrink removes the most-recently-added placeholders first.
func removablePlaceholderIDs(ctx context.Context, tx *sql.Tx, projectID string, limit int) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM units
		WHERE project_id = ? AND status = ? AND owner_name = ?
		ORDER BY CAST(REPLACE(unit_number, 'UNIT-', '') AS INTEGER) DESC
		LIMIT ?`,
		projectID, string(domain.UnitAvailable), domain.PlaceholderOwner, limit,
	)
	if err != nil {
		return nil, wrapWriteErr("find removable units", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapWriteErr("scan removable unit", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteProject removes the project row; ON DELETE CASCADE removes its Units.
func (r *ProjectRepository) DeleteProject(ctx context.Context, projectID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM projects WHERE project_id = ?`, projectID)
	if err != nil {
		return wrapWriteErr("delete project", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.New(domain.KindNotFound, "project not found")
	}
	return nil
}

// UpdateUnit issues exactly one SQL UPDATE scoped to id = unitID; no other
// row is read or written. Returns false (not an error) if unitID does not
// exist. A duplicate unit_number within the same project surfaces as
// domain.KindConstraint.
func (r *ProjectRepository) UpdateUnit(ctx context.Context, unitID int64, patch domain.UnitPatch) (bool, error) {
	sets := []string{}
	args := []any{}

	if patch.UnitNumber != nil {
		sets = append(sets, "unit_number = ?")
		args = append(args, *patch.UnitNumber)
	}
	if patch.Area != nil {
		sets = append(sets, "area = ?")
		args = append(args, *patch.Area)
	}
	if patch.CondoType != nil {
		ct, ok := normalizeCondoType(*patch.CondoType)
		if !ok {
			return false, domain.New(domain.KindValidation, "condo_type must be residential, commercial, parking, or storage")
		}
		sets = append(sets, "condo_type = ?")
		args = append(args, string(ct))
	}
	if patch.Status != nil {
		st, ok := normalizeUnitStatus(*patch.Status)
		if !ok {
			return false, domain.New(domain.KindValidation, "status must be available, reserved, sold, or maintenance")
		}
		sets = append(sets, "status = ?")
		args = append(args, string(st))
	}
	if patch.ClearEstimatedPrice {
		sets = append(sets, "estimated_price = NULL")
	} else if patch.EstimatedPrice != nil {
		sets = append(sets, "estimated_price = ?")
		args = append(args, *patch.EstimatedPrice)
	}
	if patch.OwnerName != nil {
		sets = append(sets, "owner_name = ?")
		args = append(args, *patch.OwnerName)
	}
	if patch.CalculatedMonthlyFees != nil {
		sets = append(sets, "calculated_monthly_fees = ?")
		args = append(args, *patch.CalculatedMonthlyFees)
	}

	if len(sets) == 0 {
		var exists bool
		err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM units WHERE id = ?)`, unitID).Scan(&exists)
		return exists, err
	}

	args = append(args, unitID)
	q := `UPDATE units SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.Wrap(domain.KindConstraint, "duplicate unit_number within project", err)
		}
		return false, wrapWriteErr("update unit", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapWriteErr("update unit: rows affected", err)
	}
	return n == 1, nil
}

func (r *ProjectRepository) GetProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	row := r.DB.QueryRowContext(ctx, selectProjectColumns+` WHERE project_id = ?`, projectID)
	p, err := scanProject(row)
	if err != nil {
		return nil, err
	}
	units, err := r.unitsForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	p.Units = units
	return p, nil
}

func (r *ProjectRepository) GetProjectsByName(ctx context.Context, name string) ([]domain.Project, error) {
	rows, err := r.DB.QueryContext(ctx, selectProjectColumns+` WHERE name = ? ORDER BY created_at`, name)
	if err != nil {
		return nil, wrapWriteErr("list projects by name", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProjectRows(rows)
		if err != nil {
			return nil, wrapWriteErr("scan project", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range projects {
		units, err := r.unitsForProject(ctx, projects[i].ProjectID)
		if err != nil {
			return nil, err
		}
		projects[i].Units = units
	}
	return projects, nil
}

func (r *ProjectRepository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.DB.QueryContext(ctx, selectProjectColumns+` ORDER BY created_at`)
	if err != nil {
		return nil, wrapWriteErr("list projects", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProjectRows(rows)
		if err != nil {
			return nil, wrapWriteErr("scan project", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range projects {
		units, err := r.unitsForProject(ctx, projects[i].ProjectID)
		if err != nil {
			return nil, err
		}
		projects[i].Units = units
	}
	return projects, nil
}

func (r *ProjectRepository) GetUnitByID(ctx context.Context, id int64) (*domain.Unit, error) {
	row := r.DB.QueryRowContext(ctx, selectUnitColumns+` WHERE id = ?`, id)
	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.New(domain.KindNotFound, "unit not found")
	}
	return u, err
}

// CountAvailable compares the stored status against the canonical
// domain.UnitAvailable enum value, not against a raw string literal.
func (r *ProjectRepository) CountAvailable(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM units WHERE project_id = ? AND status = ?`,
		projectID, string(domain.UnitAvailable),
	).Scan(&count)
	if err != nil {
		return 0, wrapWriteErr("count available units", err)
	}
	return count, nil
}

func (r *ProjectRepository) unitsForProject(ctx context.Context, projectID string) ([]domain.Unit, error) {
	rows, err := r.DB.QueryContext(ctx, selectUnitColumns+` WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, wrapWriteErr("list units", err)
	}
	defer rows.Close()

	var units []domain.Unit
	for rows.Next() {
		u, err := scanUnitRows(rows)
		if err != nil {
			return nil, wrapWriteErr("scan unit", err)
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

const selectProjectColumns = `
	SELECT id, project_id, name, address, building_area, land_area, construction_year, unit_count, constructor, creation_date, status, created_at, updated_at
	FROM projects`

const selectUnitColumns = `
	SELECT id, unit_number, project_id, area, condo_type, status, estimated_price, owner_name, calculated_monthly_fees
	FROM units`

func scanProject(row *sql.Row) (*domain.Project, error) {
	p, err := scanProjectRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.New(domain.KindNotFound, "project not found")
	}
	if err != nil {
		return nil, wrapWriteErr("scan project", err)
	}
	return p, nil
}

func scanProjectRows(s rowScanner) (*domain.Project, error) {
	var p domain.Project
	var status string
	if err := s.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Address, &p.BuildingArea, &p.LandArea,
		&p.ConstructionYear, &p.UnitCount, &p.Constructor, &p.CreationDate, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.ProjectStatus(status)
	return &p, nil
}

func scanUnit(row *sql.Row) (*domain.Unit, error) {
	return scanUnitRows(row)
}

func scanUnitRows(s rowScanner) (*domain.Unit, error) {
	var u domain.Unit
	var condoType, status string
	var estimatedPrice sql.NullFloat64
	if err := s.Scan(&u.ID, &u.UnitNumber, &u.ProjectID, &u.Area, &condoType, &status,
		&estimatedPrice, &u.OwnerName, &u.CalculatedMonthlyFees); err != nil {
		return nil, err
	}
	u.CondoType = domain.CondoType(condoType)
	u.Status = domain.UnitStatus(status)
	if estimatedPrice.Valid {
		u.EstimatedPrice = &estimatedPrice.Float64
	}
	return &u, nil
}

func normalizeCondoType(s string) (domain.CondoType, bool) {
	ct := domain.CondoType(strings.ToLower(strings.TrimSpace(s)))
	switch ct {
	case domain.CondoResidential, domain.CondoCommercial, domain.CondoParking, domain.CondoStorage:
		return ct, true
	}
	return "", false
}

func normalizeUnitStatus(s string) (domain.UnitStatus, bool) {
	st := domain.UnitStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case domain.UnitAvailable, domain.UnitReserved, domain.UnitSold, domain.UnitMaintenance:
		return st, true
	}
	return "", false
}

func wrapWriteErr(op string, err error) error {
	if isBusy(err) {
		return domain.Wrap(domain.KindDbBusy, op, err)
	}
	return domain.Wrap(domain.KindDB, op, err)
}
