// Package models defines the core data structures for operator accounts
// and the senior-services domain entities.
package models

import (
	"time"

	"github.com/dpm-muni/dpm-backend/internal/auth"
)

// Account represents a system operator with credentials and a permission
// level. Accounts are distinct from the beneficiaries and caregivers the
// system tracks.
type Account struct {
	// ID is the surrogate primary key, assigned on creation and immutable.
	ID int
	// RUT is the operator's normalized national ID, globally unique.
	RUT string
	// Name is the operator's display name.
	Name string
	// PasswordHash is the bcrypt hash of the password. It is never
	// serialized outward and is only set through the hashing routine.
	PasswordHash string
	// Level is the operator's permission level (1-3).
	Level auth.Level
}

// AccountView is the outward JSON shape of an Account. The password hash
// is deliberately absent.
type AccountView struct {
	ID          int             `json:"id"`
	RUT         string          `json:"rut"`
	Name        string          `json:"name"`
	Level       int             `json:"level"`
	LevelName   string          `json:"level_name"`
	Permissions PermissionsView `json:"permissions"`
}

// PermissionsView summarizes what the account's level allows.
type PermissionsView struct {
	CanViewData        bool `json:"can_view_data"`
	CanCreateAccounts  bool `json:"can_create_accounts"`
	CanDeleteVital     bool `json:"can_delete_vital_records"`
	CanUpdateRecords   bool `json:"can_update_records"`
	CanUpdateFieldData bool `json:"can_update_field_data"`
}

// View converts the account to its outward shape.
func (a *Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		RUT:       a.RUT,
		Name:      a.Name,
		Level:     int(a.Level),
		LevelName: a.Level.Name(),
		Permissions: PermissionsView{
			CanViewData:        a.Level.Allowed(auth.CapView),
			CanCreateAccounts:  a.Level.Allowed(auth.CapCreateAccounts),
			CanDeleteVital:     a.Level.Allowed(auth.CapDeleteVital),
			CanUpdateRecords:   a.Level.Allowed(auth.CapWriteRecords),
			CanUpdateFieldData: a.Level.Allowed(auth.CapWriteFieldData),
		},
	}
}

// Caregiver is a person responsible for coordinating activities, workshops
// and services. Keyed by normalized RUT.
type Caregiver struct {
	RUT       string     `json:"rut"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Elder is an elderly beneficiary of the program. Keyed by normalized RUT.
type Elder struct {
	RUT            string     `json:"rut"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Gender         *string    `json:"gender"`
	BirthDate      *time.Time `json:"birth_date"`
	Address        *string    `json:"address"`
	Sector         *string    `json:"sector"`
	Phone          *string    `json:"phone"`
	Email          *string    `json:"email"`
	DisabilityCard bool       `json:"disability_card"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CommunityCenter is a physical location where activities take place.
type CommunityCenter struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	Sector    *string   `json:"sector"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity is an organized activity for elders, optionally run by a
// caregiver.
type Activity struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	CaregiverRUT *string    `json:"caregiver_rut"`
	Notes        *string    `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Workshop is a recurring educational or recreational workshop. It shares
// the Activity shape but lives in its own table.
type Workshop struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	CaregiverRUT *string    `json:"caregiver_rut"`
	Notes        *string    `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ServiceRecord is a service provided to the community.
type ServiceRecord struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Place        *string    `json:"place"`
	Address      *string    `json:"address"`
	CaregiverRUT *string    `json:"caregiver_rut"`
	Date         *time.Time `json:"date"`
	Status       *string    `json:"status"`
	Notes        *string    `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SupportWorker is support staff assigned to a community center.
type SupportWorker struct {
	RUT       string    `json:"rut"`
	FirstName string    `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Role      *string   `json:"role"`
	CenterID  *int      `json:"center_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Maintenance is an infrastructure maintenance record for a center.
type Maintenance struct {
	ID       int       `json:"id"`
	Date     time.Time `json:"date"`
	CenterID int       `json:"center_id"`
	Detail   *string   `json:"detail"`
	Notes    *string   `json:"notes"`
	// Attachments holds uuid keys referencing uploaded files.
	Attachments *string   `json:"attachments"`
	PerformedBy *string   `json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProgramKind is the kind discriminator used by the participation and
// assignment link records.
type ProgramKind string

const (
	// KindActivity links to an activity.
	KindActivity ProgramKind = "activity"
	// KindWorkshop links to a workshop.
	KindWorkshop ProgramKind = "workshop"
	// KindService links to a service record.
	KindService ProgramKind = "service"
)

// ValidProgramKind reports whether k is one of the defined kinds.
func ValidProgramKind(k ProgramKind) bool {
	return k == KindActivity || k == KindWorkshop || k == KindService
}

// Participation links an elder to an activity, workshop or service.
// The composite key is (ElderRUT, Kind, ProgramID).
type Participation struct {
	ElderRUT  string      `json:"elder_rut"`
	Kind      ProgramKind `json:"kind"`
	ProgramID int         `json:"program_id"`
	Date      time.Time   `json:"date"`
	CreatedAt time.Time   `json:"created_at"`
}

// Assignment links a caregiver to an activity, workshop or service they
// manage. The composite key is (CaregiverRUT, Kind, ProgramID).
type Assignment struct {
	CaregiverRUT string      `json:"caregiver_rut"`
	Kind         ProgramKind `json:"kind"`
	ProgramID    int         `json:"program_id"`
	Date         time.Time   `json:"date"`
	CreatedAt    time.Time   `json:"created_at"`
}
