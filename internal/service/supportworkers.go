package service

import (
	"context"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// CenterChecker resolves whether a center id refers to an existing row.
type CenterChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// SupportWorkerStore is the persistence surface the support worker
// service needs.
type SupportWorkerStore interface {
	crud.Store[models.SupportWorker, string]
	CheckUnique(ctx context.Context, rutID string) (bool, error)
	List(ctx context.Context, f repository.SupportWorkerFilter, limit, offset int) ([]models.SupportWorker, int, error)
}

// CreateSupportWorkerInput carries the fields for support worker creation.
type CreateSupportWorkerInput struct {
	RUT       string  `json:"rut"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	CenterID  *int    `json:"center_id"`
}

// UpdateSupportWorkerInput is a partial update; nil fields are left
// untouched.
type UpdateSupportWorkerInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	CenterID  *int    `json:"center_id"`
}

// SupportWorkerService manages support workers through the crud template.
type SupportWorkerService struct {
	store   SupportWorkerStore
	centers CenterChecker
	tmpl    *crud.Template[models.SupportWorker, string, CreateSupportWorkerInput, UpdateSupportWorkerInput]
}

// NewSupportWorkerService constructs a SupportWorkerService.
func NewSupportWorkerService(store SupportWorkerStore, centers CenterChecker) *SupportWorkerService {
	s := &SupportWorkerService{store: store, centers: centers}
	s.tmpl = crud.New[models.SupportWorker, string, CreateSupportWorkerInput, UpdateSupportWorkerInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *SupportWorkerService) EntityName() string { return "support worker" }

func (s *SupportWorkerService) checkCenterRef(ctx context.Context, centerID *int) error {
	if centerID == nil || *centerID == 0 {
		return nil
	}
	exists, err := s.centers.Exists(ctx, *centerID)
	if err != nil {
		return apperr.Persistence("center lookup failed", err)
	}
	if !exists {
		return apperr.BusinessRule("community center not found")
	}
	return nil
}

func validateSupportWorkerFields(firstName, lastName, role *string) error {
	if firstName != nil {
		if err := requireString("first_name", *firstName); err != nil {
			return err
		}
		if err := maxLen("first_name", *firstName, 100); err != nil {
			return err
		}
	}
	if lastName != nil {
		if err := maxLen("last_name", *lastName, 150); err != nil {
			return err
		}
	}
	if role != nil {
		if err := maxLen("role", *role, 100); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCreate implements crud.Hooks.
func (s *SupportWorkerService) ValidateCreate(ctx context.Context, in CreateSupportWorkerInput) error {
	if err := requireString("rut", in.RUT); err != nil {
		return err
	}
	normalized, err := normalizeRUT("rut", in.RUT)
	if err != nil {
		return err
	}
	if err := validateSupportWorkerFields(&in.FirstName, in.LastName, in.Role); err != nil {
		return err
	}
	if err := s.checkCenterRef(ctx, in.CenterID); err != nil {
		return err
	}
	unique, err := s.store.CheckUnique(ctx, normalized)
	if err != nil {
		return apperr.Persistence("uniqueness check failed", err)
	}
	if !unique {
		return apperr.BusinessRule("support worker already exists with this rut")
	}
	return nil
}

// Build implements crud.Hooks.
func (s *SupportWorkerService) Build(ctx context.Context, in CreateSupportWorkerInput) (*models.SupportWorker, error) {
	normalized, err := normalizeRUT("rut", in.RUT)
	if err != nil {
		return nil, err
	}
	return &models.SupportWorker{
		RUT:       normalized,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
		CenterID:  in.CenterID,
	}, nil
}

// ValidateUpdate implements crud.Hooks.
func (s *SupportWorkerService) ValidateUpdate(ctx context.Context, in UpdateSupportWorkerInput, existing *models.SupportWorker) error {
	if err := validateSupportWorkerFields(in.FirstName, in.LastName, in.Role); err != nil {
		return err
	}
	return s.checkCenterRef(ctx, in.CenterID)
}

// ApplyUpdate implements crud.Hooks.
func (s *SupportWorkerService) ApplyUpdate(existing *models.SupportWorker, in UpdateSupportWorkerInput) {
	if in.FirstName != nil {
		existing.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		existing.LastName = in.LastName
	}
	if in.Role != nil {
		existing.Role = in.Role
	}
	if in.CenterID != nil {
		if *in.CenterID == 0 {
			existing.CenterID = nil
		} else {
			existing.CenterID = in.CenterID
		}
	}
}

// Create creates a support worker.
func (s *SupportWorkerService) Create(ctx context.Context, in CreateSupportWorkerInput) (*models.SupportWorker, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches a support worker by normalized RUT.
func (s *SupportWorkerService) Get(ctx context.Context, rutID string) (*models.SupportWorker, error) {
	return s.tmpl.Fetch(ctx, rutID)
}

// Update applies a partial update to a support worker.
func (s *SupportWorkerService) Update(ctx context.Context, rutID string, in UpdateSupportWorkerInput) (*models.SupportWorker, error) {
	return s.tmpl.Update(ctx, rutID, in)
}

// Delete removes a support worker.
func (s *SupportWorkerService) Delete(ctx context.Context, rutID string) error {
	return s.tmpl.Delete(ctx, rutID)
}

// List returns a page of support workers and the total match count.
func (s *SupportWorkerService) List(ctx context.Context, f repository.SupportWorkerFilter, limit, offset int) ([]models.SupportWorker, int, error) {
	return s.store.List(ctx, f, limit, offset)
}
