package service

import (
	"context"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// ServiceStore is the persistence surface the service-record service
// needs.
type ServiceStore interface {
	crud.Store[models.ServiceRecord, int]
	List(ctx context.Context, f repository.ProgramFilter, limit, offset int) ([]models.ServiceRecord, int, error)
}

// CreateServiceInput carries the fields for service-record creation.
type CreateServiceInput struct {
	Name         string  `json:"name"`
	Place        *string `json:"place"`
	Address      *string `json:"address"`
	CaregiverRUT *string `json:"caregiver_rut"`
	Date         *string `json:"date"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

// UpdateServiceInput is a partial update; nil fields are left untouched.
type UpdateServiceInput struct {
	Name         *string `json:"name"`
	Place        *string `json:"place"`
	Address      *string `json:"address"`
	CaregiverRUT *string `json:"caregiver_rut"`
	Date         *string `json:"date"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

// ServiceRecordService manages community service records through the
// crud template.
type ServiceRecordService struct {
	store      ServiceStore
	caregivers CaregiverChecker
	tmpl       *crud.Template[models.ServiceRecord, int, CreateServiceInput, UpdateServiceInput]
}

// NewServiceRecordService constructs a ServiceRecordService.
func NewServiceRecordService(store ServiceStore, caregivers CaregiverChecker) *ServiceRecordService {
	s := &ServiceRecordService{store: store, caregivers: caregivers}
	s.tmpl = crud.New[models.ServiceRecord, int, CreateServiceInput, UpdateServiceInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *ServiceRecordService) EntityName() string { return "service" }

func validateServiceFields(name, place, address, status *string, date *string) error {
	if name != nil {
		if err := requireString("name", *name); err != nil {
			return err
		}
		if err := maxLen("name", *name, 150); err != nil {
			return err
		}
	}
	if place != nil {
		if err := maxLen("place", *place, 200); err != nil {
			return err
		}
	}
	if address != nil {
		if err := maxLen("address", *address, 200); err != nil {
			return err
		}
	}
	if status != nil {
		if err := maxLen("status", *status, 50); err != nil {
			return err
		}
	}
	if date != nil && *date != "" {
		if _, err := parseDate("date", *date); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCreate implements crud.Hooks.
func (s *ServiceRecordService) ValidateCreate(ctx context.Context, in CreateServiceInput) error {
	if err := validateServiceFields(&in.Name, in.Place, in.Address, in.Status, in.Date); err != nil {
		return err
	}
	return checkCaregiverRef(ctx, s.caregivers, in.CaregiverRUT)
}

// Build implements crud.Hooks.
func (s *ServiceRecordService) Build(ctx context.Context, in CreateServiceInput) (*models.ServiceRecord, error) {
	rec := &models.ServiceRecord{
		Name:         in.Name,
		Place:        in.Place,
		Address:      in.Address,
		CaregiverRUT: normalizedCaregiverRef(in.CaregiverRUT),
		Status:       in.Status,
		Notes:        in.Notes,
	}
	if in.Date != nil && *in.Date != "" {
		t, err := parseDate("date", *in.Date)
		if err != nil {
			return nil, err
		}
		rec.Date = &t
	}
	return rec, nil
}

// ValidateUpdate implements crud.Hooks.
func (s *ServiceRecordService) ValidateUpdate(ctx context.Context, in UpdateServiceInput, existing *models.ServiceRecord) error {
	if err := validateServiceFields(in.Name, in.Place, in.Address, in.Status, in.Date); err != nil {
		return err
	}
	return checkCaregiverRef(ctx, s.caregivers, in.CaregiverRUT)
}

// ApplyUpdate implements crud.Hooks.
func (s *ServiceRecordService) ApplyUpdate(existing *models.ServiceRecord, in UpdateServiceInput) {
	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Place != nil {
		existing.Place = in.Place
	}
	if in.Address != nil {
		existing.Address = in.Address
	}
	if in.CaregiverRUT != nil {
		existing.CaregiverRUT = normalizedCaregiverRef(in.CaregiverRUT)
	}
	if in.Status != nil {
		existing.Status = in.Status
	}
	if in.Notes != nil {
		existing.Notes = in.Notes
	}
	if in.Date != nil {
		if *in.Date == "" {
			existing.Date = nil
		} else if t, err := time.Parse(dateLayout, *in.Date); err == nil {
			existing.Date = &t
		}
	}
}

// Create creates a service record.
func (s *ServiceRecordService) Create(ctx context.Context, in CreateServiceInput) (*models.ServiceRecord, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches a service record by id.
func (s *ServiceRecordService) Get(ctx context.Context, id int) (*models.ServiceRecord, error) {
	return s.tmpl.Fetch(ctx, id)
}

// Update applies a partial update to a service record.
func (s *ServiceRecordService) Update(ctx context.Context, id int, in UpdateServiceInput) (*models.ServiceRecord, error) {
	return s.tmpl.Update(ctx, id, in)
}

// Delete removes a service record.
func (s *ServiceRecordService) Delete(ctx context.Context, id int) error {
	return s.tmpl.Delete(ctx, id)
}

// List returns a page of service records and the total match count.
func (s *ServiceRecordService) List(ctx context.Context, f repository.ProgramFilter, limit, offset int) ([]models.ServiceRecord, int, error) {
	return s.store.List(ctx, f, limit, offset)
}
