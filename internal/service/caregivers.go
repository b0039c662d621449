package service

import (
	"context"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// CaregiverStore is the persistence surface the caregiver service needs.
type CaregiverStore interface {
	crud.Store[models.Caregiver, string]
	CheckUnique(ctx context.Context, rutID string) (bool, error)
	List(ctx context.Context, f repository.CaregiverFilter, limit, offset int) ([]models.Caregiver, int, error)
}

// CreateCaregiverInput carries the fields for caregiver creation.
type CreateCaregiverInput struct {
	RUT       string  `json:"rut"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
}

// UpdateCaregiverInput is a partial update; nil fields are left untouched.
// The RUT is the primary key and immutable.
type UpdateCaregiverInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
}

// CaregiverService manages caregiver records through the crud template.
type CaregiverService struct {
	store CaregiverStore
	tmpl  *crud.Template[models.Caregiver, string, CreateCaregiverInput, UpdateCaregiverInput]
}

// NewCaregiverService constructs a CaregiverService.
func NewCaregiverService(store CaregiverStore) *CaregiverService {
	s := &CaregiverService{store: store}
	s.tmpl = crud.New[models.Caregiver, string, CreateCaregiverInput, UpdateCaregiverInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *CaregiverService) EntityName() string { return "caregiver" }

func validateCaregiverFields(firstName, lastName *string, email, phone *string, birthDate *string) error {
	if firstName != nil {
		if err := requireString("first_name", *firstName); err != nil {
			return err
		}
		if err := maxLen("first_name", *firstName, 100); err != nil {
			return err
		}
	}
	if lastName != nil {
		if err := requireString("last_name", *lastName); err != nil {
			return err
		}
		if err := maxLen("last_name", *lastName, 150); err != nil {
			return err
		}
	}
	if err := checkOptionalEmail("email", email); err != nil {
		return err
	}
	if err := checkOptionalPhone("phone", phone); err != nil {
		return err
	}
	if birthDate != nil && *birthDate != "" {
		if _, err := parseDate("birth_date", *birthDate); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCreate implements crud.Hooks.
func (s *CaregiverService) ValidateCreate(ctx context.Context, in CreateCaregiverInput) error {
	if err := requireString("rut", in.RUT); err != nil {
		return err
	}
	normalized, err := normalizeRUT("rut", in.RUT)
	if err != nil {
		return err
	}
	if err := validateCaregiverFields(&in.FirstName, &in.LastName, in.Email, in.Phone, in.BirthDate); err != nil {
		return err
	}
	unique, err := s.store.CheckUnique(ctx, normalized)
	if err != nil {
		return apperr.Persistence("uniqueness check failed", err)
	}
	if !unique {
		return apperr.BusinessRule("caregiver already exists with this rut")
	}
	return nil
}

// Build implements crud.Hooks.
func (s *CaregiverService) Build(ctx context.Context, in CreateCaregiverInput) (*models.Caregiver, error) {
	normalized, err := normalizeRUT("rut", in.RUT)
	if err != nil {
		return nil, err
	}
	c := &models.Caregiver{
		RUT:       normalized,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	}
	if in.BirthDate != nil && *in.BirthDate != "" {
		t, err := parseDate("birth_date", *in.BirthDate)
		if err != nil {
			return nil, err
		}
		c.BirthDate = &t
	}
	return c, nil
}

// ValidateUpdate implements crud.Hooks.
func (s *CaregiverService) ValidateUpdate(ctx context.Context, in UpdateCaregiverInput, existing *models.Caregiver) error {
	return validateCaregiverFields(in.FirstName, in.LastName, in.Email, in.Phone, in.BirthDate)
}

// ApplyUpdate implements crud.Hooks.
func (s *CaregiverService) ApplyUpdate(existing *models.Caregiver, in UpdateCaregiverInput) {
	if in.FirstName != nil {
		existing.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		existing.LastName = *in.LastName
	}
	if in.Email != nil {
		existing.Email = in.Email
	}
	if in.Phone != nil {
		existing.Phone = in.Phone
	}
	if in.BirthDate != nil {
		if *in.BirthDate == "" {
			existing.BirthDate = nil
		} else if t, err := time.Parse(dateLayout, *in.BirthDate); err == nil {
			existing.BirthDate = &t
		}
	}
}

// Create creates a caregiver.
func (s *CaregiverService) Create(ctx context.Context, in CreateCaregiverInput) (*models.Caregiver, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches a caregiver by normalized RUT.
func (s *CaregiverService) Get(ctx context.Context, rutID string) (*models.Caregiver, error) {
	return s.tmpl.Fetch(ctx, rutID)
}

// Update applies a partial update to a caregiver.
func (s *CaregiverService) Update(ctx context.Context, rutID string, in UpdateCaregiverInput) (*models.Caregiver, error) {
	return s.tmpl.Update(ctx, rutID, in)
}

// Delete removes a caregiver. Programs referencing them fall back to no
// caregiver via the schema's SET NULL.
func (s *CaregiverService) Delete(ctx context.Context, rutID string) error {
	return s.tmpl.Delete(ctx, rutID)
}

// List returns a page of caregivers and the total match count.
func (s *CaregiverService) List(ctx context.Context, f repository.CaregiverFilter, limit, offset int) ([]models.Caregiver, int, error) {
	return s.store.List(ctx, f, limit, offset)
}
