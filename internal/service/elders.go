package service

import (
	"context"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// ElderStore is the persistence surface the elder service needs.
type ElderStore interface {
	crud.Store[models.Elder, string]
	CheckUnique(ctx context.Context, rutID string) (bool, error)
	List(ctx context.Context, f repository.ElderFilter, limit, offset int) ([]models.Elder, int, error)
}

// CreateElderInput carries the fields for elder creation.
type CreateElderInput struct {
	RUT            string  `json:"rut"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Gender         *string `json:"gender"`
	BirthDate      *string `json:"birth_date"`
	Address        *string `json:"address"`
	Sector         *string `json:"sector"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	DisabilityCard *bool   `json:"disability_card"`
}

// UpdateElderInput is a partial update; nil fields are left untouched.
type UpdateElderInput struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Gender         *string `json:"gender"`
	BirthDate      *string `json:"birth_date"`
	Address        *string `json:"address"`
	Sector         *string `json:"sector"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	DisabilityCard *bool   `json:"disability_card"`
}

// ElderService manages elderly beneficiary records through the crud
// template.
type ElderService struct {
	store ElderStore
	tmpl  *crud.Template[models.Elder, string, CreateElderInput, UpdateElderInput]
}

// NewElderService constructs an ElderService.
func NewElderService(store ElderStore) *ElderService {
	s := &ElderService{store: store}
	s.tmpl = crud.New[models.Elder, string, CreateElderInput, UpdateElderInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *ElderService) EntityName() string { return "elder" }

func validateElderFields(firstName, lastName, gender, birthDate, address, sector *string, phone, email *string) error {
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
	if gender != nil {
		if err := maxLen("gender", *gender, 20); err != nil {
			return err
		}
	}
	if birthDate != nil && *birthDate != "" {
		if _, err := parseDate("birth_date", *birthDate); err != nil {
			return err
		}
	}
	if address != nil {
		if err := maxLen("address", *address, 200); err != nil {
			return err
		}
	}
	if sector != nil {
		if err := maxLen("sector", *sector, 100); err != nil {
			return err
		}
	}
	if err := checkOptionalPhone("phone", phone); err != nil {
		return err
	}
	return checkOptionalEmail("email", email)
}

// ValidateCreate implements crud.Hooks.
func (s *ElderService) ValidateCreate(ctx context.Context, in CreateElderInput) error {
	if err := requireString("rut", in.RUT); err != nil {
		return err
	}
	normalized, err := normalizeRUT("rut", in.RUT)
	if err != nil {
		return err
	}
	if err := validateElderFields(&in.FirstName, &in.LastName, in.Gender, in.BirthDate, in.Address, in.Sector, in.Phone, in.Email); err != nil {
		return err
	}
	unique, err := s.store.CheckUnique(ctx, normalized)
	if err != nil {
		return apperr.Persistence("uniqueness check failed", err)
	}
	if !unique {
		return apperr.BusinessRule("elder already exists with this rut")
	}
	return nil
}

// Build implements crud.Hooks.
func (s *ElderService) Build(ctx context.Context, in CreateElderInput) (*models.Elder, error) {
	normalized, err := normalizeRUT("rut", in.RUT)
	if err != nil {
		return nil, err
	}
	e := &models.Elder{
		RUT:       normalized,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Gender:    in.Gender,
		Address:   in.Address,
		Sector:    in.Sector,
		Phone:     in.Phone,
		Email:     in.Email,
	}
	if in.DisabilityCard != nil {
		e.DisabilityCard = *in.DisabilityCard
	}
	if in.BirthDate != nil && *in.BirthDate != "" {
		t, err := parseDate("birth_date", *in.BirthDate)
		if err != nil {
			return nil, err
		}
		e.BirthDate = &t
	}
	return e, nil
}

// ValidateUpdate implements crud.Hooks.
func (s *ElderService) ValidateUpdate(ctx context.Context, in UpdateElderInput, existing *models.Elder) error {
	return validateElderFields(in.FirstName, in.LastName, in.Gender, in.BirthDate, in.Address, in.Sector, in.Phone, in.Email)
}

// ApplyUpdate implements crud.Hooks.
func (s *ElderService) ApplyUpdate(existing *models.Elder, in UpdateElderInput) {
	if in.FirstName != nil {
		existing.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		existing.LastName = *in.LastName
	}
	if in.Gender != nil {
		existing.Gender = in.Gender
	}
	if in.Address != nil {
		existing.Address = in.Address
	}
	if in.Sector != nil {
		existing.Sector = in.Sector
	}
	if in.Phone != nil {
		existing.Phone = in.Phone
	}
	if in.Email != nil {
		existing.Email = in.Email
	}
	if in.DisabilityCard != nil {
		existing.DisabilityCard = *in.DisabilityCard
	}
	if in.BirthDate != nil {
		if *in.BirthDate == "" {
			existing.BirthDate = nil
		} else if t, err := time.Parse(dateLayout, *in.BirthDate); err == nil {
			existing.BirthDate = &t
		}
	}
}

// Create creates an elder record.
func (s *ElderService) Create(ctx context.Context, in CreateElderInput) (*models.Elder, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches an elder by normalized RUT.
func (s *ElderService) Get(ctx context.Context, rutID string) (*models.Elder, error) {
	return s.tmpl.Fetch(ctx, rutID)
}

// Update applies a partial update to an elder.
func (s *ElderService) Update(ctx context.Context, rutID string, in UpdateElderInput) (*models.Elder, error) {
	return s.tmpl.Update(ctx, rutID, in)
}

// Delete removes an elder; participations cascade at the schema level.
func (s *ElderService) Delete(ctx context.Context, rutID string) error {
	return s.tmpl.Delete(ctx, rutID)
}

// List returns a page of elders and the total match count.
func (s *ElderService) List(ctx context.Context, f repository.ElderFilter, limit, offset int) ([]models.Elder, int, error) {
	return s.store.List(ctx, f, limit, offset)
}
