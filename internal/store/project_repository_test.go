package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/condocore/condo-manager/internal/domain"
	"github.com/condocore/condo-manager/internal/store"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var projectsSchema = `
CREATE TABLE projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	address TEXT NOT NULL,
	building_area REAL NOT NULL,
	land_area REAL NOT NULL,
	construction_year INTEGER NOT NULL,
	unit_count INTEGER NOT NULL,
	constructor TEXT NOT NULL,
	creation_date TIMESTAMP NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE units (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	unit_number TEXT NOT NULL,
	project_id TEXT NOT NULL REFERENCES projects(project_id) ON DELETE CASCADE,
	area REAL NOT NULL,
	condo_type TEXT NOT NULL,
	status TEXT NOT NULL,
	estimated_price REAL,
	owner_name TEXT NOT NULL,
	calculated_monthly_fees TEXT NOT NULL,
	UNIQUE(project_id, unit_number)
);`

func newProjectTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(`PRAGMA foreign_keys = ON;`)
	require.NoError(t, err)
	_, err = db.Exec(projectsSchema)
	require.NoError(t, err)
	return db
}

func sampleDraft(name string, units int) domain.ProjectDraft {
	return domain.ProjectDraft{
		Name:             name,
		Address:          "123 Main St",
		BuildingArea:     1000,
		LandArea:         2000,
		ConstructionYear: 2020,
		UnitCount:        units,
		Constructor:      "Acme Builders",
	}
}

func TestProjectRepository_CreateProject_S4_ExactUnitCount(t *testing.T) {
	db := newProjectTestDB(t, "proj1")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleDraft("Sunset Towers", 5))
	require.NoError(t, err)
	require.Len(t, p.Units, 5)
	for i, u := range p.Units {
		require.Equal(t, fmt.Sprintf("UNIT-%d", i+1), u.UnitNumber)
		require.Equal(t, domain.UnitAvailable, u.Status)
		require.Equal(t, domain.PlaceholderOwner, u.OwnerName)
	}
}

func TestProjectRepository_AdjustUnitCount_GrowThenShrinkBackToN(t *testing.T) {
	db := newProjectTestDB(t, "proj2")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleDraft("Grow Shrink", 3))
	require.NoError(t, err)

	require.NoError(t, repo.AdjustUnitCount(ctx, p.ProjectID, 6))
	grown, err := repo.GetProjectByID(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, grown.Units, 6)

	require.NoError(t, repo.AdjustUnitCount(ctx, p.ProjectID, 3))
	shrunk, err := repo.GetProjectByID(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, shrunk.Units, 3)
}

func TestProjectRepository_AdjustUnitCount_S3_CannotShrinkSoldUnits(t *testing.T) {
	db := newProjectTestDB(t, "proj3")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleDraft("Occupied", 2))
	require.NoError(t, err)

	sold := string(domain.UnitSold)
	owner := "Jane Buyer"
	for _, u := range p.Units {
		ok, err := repo.UpdateUnit(ctx, u.ID, domain.UnitPatch{Status: &sold, OwnerName: &owner})
		require.NoError(t, err)
		require.True(t, ok)
	}

	err = repo.AdjustUnitCount(ctx, p.ProjectID, 0)
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindCannotShrink))

	// Nothing changed: still 2 units, still sold.
	reread, err := repo.GetProjectByID(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, reread.Units, 2)
	require.Equal(t, 2, reread.UnitCount)
}

func TestProjectRepository_UpdateUnit_S2_IDStabilityAndScope(t *testing.T) {
	db := newProjectTestDB(t, "proj4")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleDraft("Stable IDs", 4))
	require.NoError(t, err)

	originalIDs := make(map[int64]domain.Unit, len(p.Units))
	for _, u := range p.Units {
		originalIDs[u.ID] = u
	}

	target := p.Units[2]
	newArea := 88.5
	ok, err := repo.UpdateUnit(ctx, target.ID, domain.UnitPatch{Area: &newArea})
	require.NoError(t, err)
	require.True(t, ok)

	reread, err := repo.GetProjectByID(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, reread.Units, 4)

	for _, u := range reread.Units {
		original, existed := originalIDs[u.ID]
		require.True(t, existed, "unit id set must be unchanged")
		if u.ID == target.ID {
			require.Equal(t, 88.5, u.Area)
		} else {
			require.Equal(t, original.Area, u.Area, "non-targeted unit must be untouched")
			require.Equal(t, original.UnitNumber, u.UnitNumber)
		}
	}
}

func TestProjectRepository_UpdateUnit_NonexistentReturnsFalseNotError(t *testing.T) {
	db := newProjectTestDB(t, "proj5")
	repo := store.NewProjectRepository(db)
	area := 10.0
	ok, err := repo.UpdateUnit(context.Background(), 99999, domain.UnitPatch{Area: &area})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestProjectRepository_UpdateUnit_DuplicateUnitNumberIsConstraintError(t *testing.T) {
	db := newProjectTestDB(t, "proj6")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleDraft("Dup Numbers", 2))
	require.NoError(t, err)

	clashing := p.Units[0].UnitNumber
	_, err = repo.UpdateUnit(ctx, p.Units[1].ID, domain.UnitPatch{UnitNumber: &clashing})
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindConstraint))
}

func TestProjectRepository_UpdateUnit_EnumAcceptsLooseCase(t *testing.T) {
	db := newProjectTestDB(t, "proj7")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleDraft("Loose Enums", 1))
	require.NoError(t, err)

	loose := "RESERVED"
	ok, err := repo.UpdateUnit(ctx, p.Units[0].ID, domain.UnitPatch{Status: &loose})
	require.NoError(t, err)
	require.True(t, ok)

	u, err := repo.GetUnitByID(ctx, p.Units[0].ID)
	require.NoError(t, err)
	require.Equal(t, domain.UnitReserved, u.Status)
}

func TestProjectRepository_DeleteProject_S6_CascadesUnits(t *testing.T) {
	db := newProjectTestDB(t, "proj8")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleDraft("To Delete", 3))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteProject(ctx, p.ProjectID))

	_, err = repo.GetProjectByID(ctx, p.ProjectID)
	require.True(t, domain.IsKind(err, domain.KindNotFound))

	var unitCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM units WHERE project_id = ?`, p.ProjectID).Scan(&unitCount))
	require.Equal(t, 0, unitCount)
}

func TestProjectRepository_CountAvailable_ComparesEnumNotStringLiteral(t *testing.T) {
	db := newProjectTestDB(t, "proj9")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleDraft("Availability", 3))
	require.NoError(t, err)

	sold := string(domain.UnitSold)
	_, err = repo.UpdateUnit(ctx, p.Units[0].ID, domain.UnitPatch{Status: &sold})
	require.NoError(t, err)

	count, err := repo.CountAvailable(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestProjectRepository_AdjustUnitCount_GrowAfterShrinkRemovedLowerSuffix(t *testing.T) {
	db := newProjectTestDB(t, "proj11")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, sampleDraft("Non-Contiguous Suffixes", 2))
	require.NoError(t, err)

	sold := string(domain.UnitSold)
	owner := "Jane Buyer"
	_, err = repo.UpdateUnit(ctx, p.Units[1].ID, domain.UnitPatch{Status: &sold, OwnerName: &owner})
	require.NoError(t, err)

	// Only UNIT-1 is still an available placeholder, so shrinking to 1
	// removes it and leaves UNIT-2 (sold) as the sole survivor.
	require.NoError(t, repo.AdjustUnitCount(ctx, p.ProjectID, 1))
	shrunk, err := repo.GetProjectByID(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, shrunk.Units, 1)
	require.Equal(t, "UNIT-2", shrunk.Units[0].UnitNumber)

	// Growing back to 2 must not try to re-insert UNIT-2.
	require.NoError(t, repo.AdjustUnitCount(ctx, p.ProjectID, 2))
	grown, err := repo.GetProjectByID(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, grown.Units, 2)
	numbers := map[string]bool{}
	for _, u := range grown.Units {
		numbers[u.UnitNumber] = true
	}
	require.True(t, numbers["UNIT-2"])
	require.True(t, numbers["UNIT-3"])
}

func TestProjectRepository_GetProjectsByName_Ambiguous(t *testing.T) {
	db := newProjectTestDB(t, "proj10")
	repo := store.NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.CreateProject(ctx, sampleDraft("Shared Name", 1))
	require.NoError(t, err)
	_, err = repo.CreateProject(ctx, sampleDraft("Shared Name", 1))
	require.NoError(t, err)

	matches, err := repo.GetProjectsByName(ctx, "Shared Name")
	require.NoError(t, err)
	require.Len(t, matches, 2)
}
