package service

import (
	"context"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// CaregiverChecker resolves whether a caregiver RUT refers to an existing
// row; program services use it for referential checks before commit.
type CaregiverChecker interface {
	Exists(ctx context.Context, rutID string) (bool, error)
}

// CreateProgramInput carries the shared fields for activity and workshop
// creation.
type CreateProgramInput struct {
	Name         string  `json:"name"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date"`
	CaregiverRUT *string `json:"caregiver_rut"`
	Notes        *string `json:"notes"`
}

// UpdateProgramInput is a partial update; nil fields are left untouched.
type UpdateProgramInput struct {
	Name         *string `json:"name"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	CaregiverRUT *string `json:"caregiver_rut"`
	Notes        *string `json:"notes"`
}

// validateProgramCreate checks the shared activity/workshop create rules.
func validateProgramCreate(ctx context.Context, caregivers CaregiverChecker, in CreateProgramInput) error {
	if err := requireString("name", in.Name); err != nil {
		return err
	}
	if err := maxLen("name", in.Name, 150); err != nil {
		return err
	}
	if err := requireString("start_date", in.StartDate); err != nil {
		return err
	}
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return err
	}
	if in.EndDate != nil && *in.EndDate != "" {
		end, err := parseDate("end_date", *in.EndDate)
		if err != nil {
			return err
		}
		if end.Before(start) {
			return apperr.Validation("end_date", "end_date must not be before start_date")
		}
	}
	return checkCaregiverRef(ctx, caregivers, in.CaregiverRUT)
}

// validateProgramUpdate checks the shared activity/workshop update rules.
func validateProgramUpdate(ctx context.Context, caregivers CaregiverChecker, in UpdateProgramInput) error {
	if in.Name != nil {
		if err := requireString("name", *in.Name); err != nil {
			return err
		}
		if err := maxLen("name", *in.Name, 150); err != nil {
			return err
		}
	}
	if in.StartDate != nil {
		if _, err := parseDate("start_date", *in.StartDate); err != nil {
			return err
		}
	}
	if in.EndDate != nil && *in.EndDate != "" {
		if _, err := parseDate("end_date", *in.EndDate); err != nil {
			return err
		}
	}
	return checkCaregiverRef(ctx, caregivers, in.CaregiverRUT)
}

// checkCaregiverRef validates an optional caregiver reference: the RUT
// must be well-formed and the caregiver must exist.
func checkCaregiverRef(ctx context.Context, caregivers CaregiverChecker, rawRUT *string) error {
	if rawRUT == nil || *rawRUT == "" {
		return nil
	}
	normalized, err := normalizeRUT("caregiver_rut", *rawRUT)
	if err != nil {
		return err
	}
	exists, err := caregivers.Exists(ctx, normalized)
	if err != nil {
		return apperr.Persistence("caregiver lookup failed", err)
	}
	if !exists {
		return apperr.BusinessRule("caregiver not found")
	}
	return nil
}

// normalizedCaregiverRef returns the canonical form of an optional
// caregiver RUT already validated by checkCaregiverRef, or nil when the
// reference is absent or blank.
func normalizedCaregiverRef(rawRUT *string) *string {
	if rawRUT == nil || *rawRUT == "" {
		return nil
	}
	if normalized, err := normalizeRUT("caregiver_rut", *rawRUT); err == nil {
		return &normalized
	}
	return nil
}

// ActivityService manages activities through the crud template.
type ActivityService struct {
	store      ActivityStore
	caregivers CaregiverChecker
	tmpl       *crud.Template[models.Activity, int, CreateProgramInput, UpdateProgramInput]
}

// ActivityStore is the persistence surface the activity service needs.
type ActivityStore interface {
	crud.Store[models.Activity, int]
	List(ctx context.Context, f repository.ProgramFilter, limit, offset int) ([]models.Activity, int, error)
}

// NewActivityService constructs an ActivityService.
func NewActivityService(store ActivityStore, caregivers CaregiverChecker) *ActivityService {
	s := &ActivityService{store: store, caregivers: caregivers}
	s.tmpl = crud.New[models.Activity, int, CreateProgramInput, UpdateProgramInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *ActivityService) EntityName() string { return "activity" }

// ValidateCreate implements crud.Hooks.
func (s *ActivityService) ValidateCreate(ctx context.Context, in CreateProgramInput) error {
	return validateProgramCreate(ctx, s.caregivers, in)
}

// Build implements crud.Hooks.
func (s *ActivityService) Build(ctx context.Context, in CreateProgramInput) (*models.Activity, error) {
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	a := &models.Activity{
		Name:         in.Name,
		StartDate:    start,
		CaregiverRUT: normalizedCaregiverRef(in.CaregiverRUT),
		Notes:        in.Notes,
	}
	if in.EndDate != nil && *in.EndDate != "" {
		end, err := parseDate("end_date", *in.EndDate)
		if err != nil {
			return nil, err
		}
		a.EndDate = &end
	}
	return a, nil
}

// ValidateUpdate implements crud.Hooks.
func (s *ActivityService) ValidateUpdate(ctx context.Context, in UpdateProgramInput, existing *models.Activity) error {
	return validateProgramUpdate(ctx, s.caregivers, in)
}

// ApplyUpdate implements crud.Hooks.
func (s *ActivityService) ApplyUpdate(existing *models.Activity, in UpdateProgramInput) {
	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.StartDate != nil {
		if t, err := time.Parse(dateLayout, *in.StartDate); err == nil {
			existing.StartDate = t
		}
	}
	if in.EndDate != nil {
		if *in.EndDate == "" {
			existing.EndDate = nil
		} else if t, err := time.Parse(dateLayout, *in.EndDate); err == nil {
			existing.EndDate = &t
		}
	}
	if in.CaregiverRUT != nil {
		existing.CaregiverRUT = normalizedCaregiverRef(in.CaregiverRUT)
	}
	if in.Notes != nil {
		existing.Notes = in.Notes
	}
}

// Create creates an activity.
func (s *ActivityService) Create(ctx context.Context, in CreateProgramInput) (*models.Activity, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches an activity by id.
func (s *ActivityService) Get(ctx context.Context, id int) (*models.Activity, error) {
	return s.tmpl.Fetch(ctx, id)
}

// Update applies a partial update to an activity.
func (s *ActivityService) Update(ctx context.Context, id int, in UpdateProgramInput) (*models.Activity, error) {
	return s.tmpl.Update(ctx, id, in)
}

// Delete removes an activity.
func (s *ActivityService) Delete(ctx context.Context, id int) error {
	return s.tmpl.Delete(ctx, id)
}

// List returns a page of activities and the total match count.
func (s *ActivityService) List(ctx context.Context, f repository.ProgramFilter, limit, offset int) ([]models.Activity, int, error) {
	return s.store.List(ctx, f, limit, offset)
}

// WorkshopService manages workshops through the crud template.
type WorkshopService struct {
	store      WorkshopStore
	caregivers CaregiverChecker
	tmpl       *crud.Template[models.Workshop, int, CreateProgramInput, UpdateProgramInput]
}

// WorkshopStore is the persistence surface the workshop service needs.
type WorkshopStore interface {
	crud.Store[models.Workshop, int]
	List(ctx context.Context, f repository.ProgramFilter, limit, offset int) ([]models.Workshop, int, error)
}

// NewWorkshopService constructs a WorkshopService.
func NewWorkshopService(store WorkshopStore, caregivers CaregiverChecker) *WorkshopService {
	s := &WorkshopService{store: store, caregivers: caregivers}
	s.tmpl = crud.New[models.Workshop, int, CreateProgramInput, UpdateProgramInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *WorkshopService) EntityName() string { return "workshop" }

// ValidateCreate implements crud.Hooks.
func (s *WorkshopService) ValidateCreate(ctx context.Context, in CreateProgramInput) error {
	return validateProgramCreate(ctx, s.caregivers, in)
}

// Build implements crud.Hooks.
func (s *WorkshopService) Build(ctx context.Context, in CreateProgramInput) (*models.Workshop, error) {
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	w := &models.Workshop{
		Name:         in.Name,
		StartDate:    start,
		CaregiverRUT: normalizedCaregiverRef(in.CaregiverRUT),
		Notes:        in.Notes,
	}
	if in.EndDate != nil && *in.EndDate != "" {
		end, err := parseDate("end_date", *in.EndDate)
		if err != nil {
			return nil, err
		}
		w.EndDate = &end
	}
	return w, nil
}

// ValidateUpdate implements crud.Hooks.
func (s *WorkshopService) ValidateUpdate(ctx context.Context, in UpdateProgramInput, existing *models.Workshop) error {
	return validateProgramUpdate(ctx, s.caregivers, in)
}

// ApplyUpdate implements crud.Hooks.
func (s *WorkshopService) ApplyUpdate(existing *models.Workshop, in UpdateProgramInput) {
	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.StartDate != nil {
		if t, err := time.Parse(dateLayout, *in.StartDate); err == nil {
			existing.StartDate = t
		}
	}
	if in.EndDate != nil {
		if *in.EndDate == "" {
			existing.EndDate = nil
		} else if t, err := time.Parse(dateLayout, *in.EndDate); err == nil {
			existing.EndDate = &t
		}
	}
	if in.CaregiverRUT != nil {
		existing.CaregiverRUT = normalizedCaregiverRef(in.CaregiverRUT)
	}
	if in.Notes != nil {
		existing.Notes = in.Notes
	}
}

// Create creates a workshop.
func (s *WorkshopService) Create(ctx context.Context, in CreateProgramInput) (*models.Workshop, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches a workshop by id.
func (s *WorkshopService) Get(ctx context.Context, id int) (*models.Workshop, error) {
	return s.tmpl.Fetch(ctx, id)
}

// Update applies a partial update to a workshop.
func (s *WorkshopService) Update(ctx context.Context, id int, in UpdateProgramInput) (*models.Workshop, error) {
	return s.tmpl.Update(ctx, id, in)
}

// Delete removes a workshop.
func (s *WorkshopService) Delete(ctx context.Context, id int) error {
	return s.tmpl.Delete(ctx, id)
}

// List returns a page of workshops and the total match count.
func (s *WorkshopService) List(ctx context.Context, f repository.ProgramFilter, limit, offset int) ([]models.Workshop, int, error) {
	return s.store.List(ctx, f, limit, offset)
}
