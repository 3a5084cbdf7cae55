package domain

import "time"

// ProjectStatus is one of the canonical, lowercase-at-rest project states.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectInactive ProjectStatus = "inactive"
	ProjectArchived ProjectStatus = "archived"
)

// CondoType is one of the canonical, lowercase-at-rest unit types.
type CondoType string

const (
	CondoResidential CondoType = "residential"
	CondoCommercial  CondoType = "commercial"
	CondoParking     CondoType = "parking"
	CondoStorage     CondoType = "storage"
)

// UnitStatus is one of the canonical, lowercase-at-rest unit states.
type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitReserved    UnitStatus = "reserved"
	UnitSold        UnitStatus = "sold"
	UnitMaintenance UnitStatus = "maintenance"
)

// Role is one of the canonical, lowercase-at-rest user roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
	RoleGuest    Role = "guest"
)

// PlaceholderOwner is the literal string meaning "no real owner".
const PlaceholderOwner = "Disponible"

// Project is a building/development grouping Units.
type Project struct {
	ID               int64
	ProjectID        string
	Name             string
	Address          string
	BuildingArea     float64
	LandArea         float64
	ConstructionYear int
	UnitCount        int
	Constructor      string
	CreationDate     time.Time
	Status           ProjectStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Units            []Unit
}

// Unit is a sellable/leasable space inside a Project. Its surrogate ID is
// stable across updates (spec invariant #3).
type Unit struct {
	ID                     int64
	UnitNumber             string
	ProjectID              string
	Area                   float64
	CondoType              CondoType
	Status                 UnitStatus
	EstimatedPrice         *float64
	OwnerName              string
	CalculatedMonthlyFees  string
}

// User is an authenticated principal.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	FullName     string
	CondoUnit    *string
	Phone        *string
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// UserDraft carries the fields needed to create a User; PasswordHash must
// already have been computed by the caller (security.Hash).
type UserDraft struct {
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	FullName     string
	CondoUnit    *string
	Phone        *string
	IsActive     bool
}

// UserPatch merges non-nil fields into an existing User on Update.
type UserPatch struct {
	Email        *string
	PasswordHash *string
	Role         *Role
	FullName     *string
	CondoUnit    *string
	Phone        *string
	IsActive     *bool
}

// UnitPatch is the partial set of mutable Unit fields accepted by
// ProjectRepository.UpdateUnit. Enum fields accept either the canonical
// value or a loose string, normalized at the store layer.
type UnitPatch struct {
	UnitNumber            *string
	Area                  *float64
	CondoType             *string
	Status                *string
	EstimatedPrice        *float64
	ClearEstimatedPrice   bool
	OwnerName             *string
	CalculatedMonthlyFees *string
}

// ProjectDraft carries the fields needed to create a Project; UnitCount
// placeholder units are auto-provisioned by the repository.
type ProjectDraft struct {
	Name             string
	Address          string
	BuildingArea     float64
	LandArea         float64
	ConstructionYear int
	UnitCount        int
	Constructor      string
}

// Stats is a read-only projection over a Project's Units.
type Stats struct {
	TotalUnits       int
	Available        int
	Sold             int
	Reserved         int
	Maintenance      int
	AvgArea          float64
	TotalMonthlyFees float64
}

// FeatureFlag is a boolean gate read at request time, uncached.
type FeatureFlag struct {
	ID          int64
	FlagName    string
	IsEnabled   bool
	Description string
}
