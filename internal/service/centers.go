package service

import (
	"context"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// CenterStore is the persistence surface the center service needs.
type CenterStore interface {
	crud.Store[models.CommunityCenter, int]
	CheckUniqueName(ctx context.Context, name string, excludeID any) (bool, error)
	List(ctx context.Context, f repository.CenterFilter, limit, offset int) ([]models.CommunityCenter, int, error)
	Sectors(ctx context.Context) ([]string, error)
}

// CreateCenterInput carries the fields for center creation.
type CreateCenterInput struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
	Sector  *string `json:"sector"`
}

// UpdateCenterInput is a partial update; nil fields are left untouched.
type UpdateCenterInput struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Sector  *string `json:"sector"`
}

// CenterService manages community centers through the crud template.
type CenterService struct {
	store CenterStore
	tmpl  *crud.Template[models.CommunityCenter, int, CreateCenterInput, UpdateCenterInput]
}

// NewCenterService constructs a CenterService.
func NewCenterService(store CenterStore) *CenterService {
	s := &CenterService{store: store}
	s.tmpl = crud.New[models.CommunityCenter, int, CreateCenterInput, UpdateCenterInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *CenterService) EntityName() string { return "community center" }

func validateCenterFields(name, address, sector *string) error {
	if name != nil {
		if err := requireString("name", *name); err != nil {
			return err
		}
		if err := maxLen("name", *name, 150); err != nil {
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
	return nil
}

// ValidateCreate implements crud.Hooks.
func (s *CenterService) ValidateCreate(ctx context.Context, in CreateCenterInput) error {
	if err := validateCenterFields(&in.Name, in.Address, in.Sector); err != nil {
		return err
	}
	unique, err := s.store.CheckUniqueName(ctx, in.Name, nil)
	if err != nil {
		return apperr.Persistence("uniqueness check failed", err)
	}
	if !unique {
		return apperr.BusinessRule("community center already exists with this name")
	}
	return nil
}

// Build implements crud.Hooks.
func (s *CenterService) Build(ctx context.Context, in CreateCenterInput) (*models.CommunityCenter, error) {
	return &models.CommunityCenter{
		Name:    in.Name,
		Address: in.Address,
		Sector:  in.Sector,
	}, nil
}

// ValidateUpdate implements crud.Hooks. A name change re-runs the
// uniqueness check, excluding the row being updated.
func (s *CenterService) ValidateUpdate(ctx context.Context, in UpdateCenterInput, existing *models.CommunityCenter) error {
	if err := validateCenterFields(in.Name, in.Address, in.Sector); err != nil {
		return err
	}
	if in.Name != nil && *in.Name != existing.Name {
		unique, err := s.store.CheckUniqueName(ctx, *in.Name, existing.ID)
		if err != nil {
			return apperr.Persistence("uniqueness check failed", err)
		}
		if !unique {
			return apperr.BusinessRule("community center already exists with this name")
		}
	}
	return nil
}

// ApplyUpdate implements crud.Hooks.
func (s *CenterService) ApplyUpdate(existing *models.CommunityCenter, in UpdateCenterInput) {
	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Address != nil {
		existing.Address = in.Address
	}
	if in.Sector != nil {
		existing.Sector = in.Sector
	}
}

// Create creates a community center.
func (s *CenterService) Create(ctx context.Context, in CreateCenterInput) (*models.CommunityCenter, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches a center by id.
func (s *CenterService) Get(ctx context.Context, id int) (*models.CommunityCenter, error) {
	return s.tmpl.Fetch(ctx, id)
}

// Update applies a partial update to a center.
func (s *CenterService) Update(ctx context.Context, id int, in UpdateCenterInput) (*models.CommunityCenter, error) {
	return s.tmpl.Update(ctx, id, in)
}

// Delete removes a center. Maintenance records cascade; assigned support
// workers fall back to no center via SET NULL.
func (s *CenterService) Delete(ctx context.Context, id int) error {
	return s.tmpl.Delete(ctx, id)
}

// List returns a page of centers and the total match count.
func (s *CenterService) List(ctx context.Context, f repository.CenterFilter, limit, offset int) ([]models.CommunityCenter, int, error) {
	return s.store.List(ctx, f, limit, offset)
}

// Sectors returns the distinct sector names across centers.
func (s *CenterService) Sectors(ctx context.Context) ([]string, error) {
	sectors, err := s.store.Sectors(ctx)
	if err != nil {
		return nil, apperr.Persistence("sector listing failed", err)
	}
	return sectors, nil
}
