package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// MaintenanceStore is the persistence surface the maintenance service
// needs.
type MaintenanceStore interface {
	crud.Store[models.Maintenance, int]
	List(ctx context.Context, f repository.MaintenanceFilter, limit, offset int) ([]models.Maintenance, int, error)
}

// CreateMaintenanceInput carries the fields for maintenance creation.
type CreateMaintenanceInput struct {
	Date        string  `json:"date"`
	CenterID    int     `json:"center_id"`
	Detail      *string `json:"detail"`
	Notes       *string `json:"notes"`
	PerformedBy *string `json:"performed_by"`
}

// UpdateMaintenanceInput is a partial update; nil fields are left
// untouched.
type UpdateMaintenanceInput struct {
	Date        *string `json:"date"`
	CenterID    *int    `json:"center_id"`
	Detail      *string `json:"detail"`
	Notes       *string `json:"notes"`
	PerformedBy *string `json:"performed_by"`
}

// MaintenanceService manages maintenance records through the crud
// template.
type MaintenanceService struct {
	store   MaintenanceStore
	centers CenterChecker
	tmpl    *crud.Template[models.Maintenance, int, CreateMaintenanceInput, UpdateMaintenanceInput]
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(store MaintenanceStore, centers CenterChecker) *MaintenanceService {
	s := &MaintenanceService{store: store, centers: centers}
	s.tmpl = crud.New[models.Maintenance, int, CreateMaintenanceInput, UpdateMaintenanceInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *MaintenanceService) EntityName() string { return "maintenance record" }

func (s *MaintenanceService) checkCenter(ctx context.Context, centerID int) error {
	exists, err := s.centers.Exists(ctx, centerID)
	if err != nil {
		return apperr.Persistence("center lookup failed", err)
	}
	if !exists {
		return apperr.BusinessRule("community center not found")
	}
	return nil
}

// ValidateCreate implements crud.Hooks. The center reference is required
// and must exist.
func (s *MaintenanceService) ValidateCreate(ctx context.Context, in CreateMaintenanceInput) error {
	if err := requireString("date", in.Date); err != nil {
		return err
	}
	if _, err := parseDate("date", in.Date); err != nil {
		return err
	}
	if in.CenterID == 0 {
		return apperr.Validation("center_id", "center_id is required")
	}
	return s.checkCenter(ctx, in.CenterID)
}

// Build implements crud.Hooks.
func (s *MaintenanceService) Build(ctx context.Context, in CreateMaintenanceInput) (*models.Maintenance, error) {
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	return &models.Maintenance{
		Date:        date,
		CenterID:    in.CenterID,
		Detail:      in.Detail,
		Notes:       in.Notes,
		PerformedBy: in.PerformedBy,
	}, nil
}

// ValidateUpdate implements crud.Hooks.
func (s *MaintenanceService) ValidateUpdate(ctx context.Context, in UpdateMaintenanceInput, existing *models.Maintenance) error {
	if in.Date != nil {
		if _, err := parseDate("date", *in.Date); err != nil {
			return err
		}
	}
	if in.CenterID != nil {
		if *in.CenterID == 0 {
			return apperr.Validation("center_id", "center_id is required")
		}
		return s.checkCenter(ctx, *in.CenterID)
	}
	return nil
}

// ApplyUpdate implements crud.Hooks.
func (s *MaintenanceService) ApplyUpdate(existing *models.Maintenance, in UpdateMaintenanceInput) {
	if in.Date != nil {
		if t, err := time.Parse(dateLayout, *in.Date); err == nil {
			existing.Date = t
		}
	}
	if in.CenterID != nil {
		existing.CenterID = *in.CenterID
	}
	if in.Detail != nil {
		existing.Detail = in.Detail
	}
	if in.Notes != nil {
		existing.Notes = in.Notes
	}
	if in.PerformedBy != nil {
		existing.PerformedBy = in.PerformedBy
	}
}

// Create creates a maintenance record.
func (s *MaintenanceService) Create(ctx context.Context, in CreateMaintenanceInput) (*models.Maintenance, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches a maintenance record by id.
func (s *MaintenanceService) Get(ctx context.Context, id int) (*models.Maintenance, error) {
	return s.tmpl.Fetch(ctx, id)
}

// Update applies a partial update to a maintenance record.
func (s *MaintenanceService) Update(ctx context.Context, id int, in UpdateMaintenanceInput) (*models.Maintenance, error) {
	return s.tmpl.Update(ctx, id, in)
}

// Delete removes a maintenance record.
func (s *MaintenanceService) Delete(ctx context.Context, id int) error {
	return s.tmpl.Delete(ctx, id)
}

// List returns a page of maintenance records and the total match count.
func (s *MaintenanceService) List(ctx context.Context, f repository.MaintenanceFilter, limit, offset int) ([]models.Maintenance, int, error) {
	return s.store.List(ctx, f, limit, offset)
}

// AddAttachment registers an uploaded file against a maintenance record
// and returns the generated attachment key. Keys accumulate as a
// comma-separated list, matching the original storage layout.
func (s *MaintenanceService) AddAttachment(ctx context.Context, id int) (string, error) {
	record, err := s.tmpl.Fetch(ctx, id)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()
	if record.Attachments == nil || *record.Attachments == "" {
		record.Attachments = &key
	} else {
		joined := *record.Attachments + "," + key
		record.Attachments = &joined
	}
	if err := s.store.Update(ctx, record); err != nil {
		return "", apperr.Persistence("attachment update failed", err)
	}
	return key, nil
}
