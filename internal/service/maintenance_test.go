package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

type fakeMaintenanceStore struct {
	getFn    func(ctx context.Context, id int) (*models.Maintenance, error)
	inserted *models.Maintenance
	updated  *models.Maintenance
}

func (s *fakeMaintenanceStore) Get(ctx context.Context, id int) (*models.Maintenance, error) {
	return s.getFn(ctx, id)
}

func (s *fakeMaintenanceStore) Insert(ctx context.Context, m *models.Maintenance) error {
	s.inserted = m
	m.ID = 1
	return nil
}

func (s *fakeMaintenanceStore) Update(ctx context.Context, m *models.Maintenance) error {
	s.updated = m
	return nil
}

func (s *fakeMaintenanceStore) Delete(ctx context.Context, id int) error { return nil }

func (s *fakeMaintenanceStore) List(ctx context.Context, f repository.MaintenanceFilter, limit, offset int) ([]models.Maintenance, int, error) {
	return nil, 0, nil
}

func TestMaintenanceCreate(t *testing.T) {
	store := &fakeMaintenanceStore{}
	svc := NewMaintenanceService(store, fakeExistsChecker{exists: true})

	detail := "roof repair"
	record, err := svc.Create(context.Background(), CreateMaintenanceInput{
		Date:     "2025-05-20",
		CenterID: 2,
		Detail:   &detail,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != 1 || record.CenterID != 2 || record.Detail == nil || *record.Detail != "roof repair" {
		t.Errorf("unexpected record: %+v", record)
	}
}

func TestMaintenanceCreate_CenterMissing(t *testing.T) {
	svc := NewMaintenanceService(&fakeMaintenanceStore{}, fakeExistsChecker{exists: false})

	_, err := svc.Create(context.Background(), CreateMaintenanceInput{Date: "2025-05-20", CenterID: 9})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != "community center not found" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMaintenanceCreate_MissingCenterID(t *testing.T) {
	svc := NewMaintenanceService(&fakeMaintenanceStore{}, fakeExistsChecker{exists: true})

	_, err := svc.Create(context.Background(), CreateMaintenanceInput{Date: "2025-05-20"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Field != "center_id" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMaintenanceAddAttachment(t *testing.T) {
	existing := &models.Maintenance{
		ID:       1,
		Date:     time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		CenterID: 2,
	}
	store := &fakeMaintenanceStore{
		getFn: func(ctx context.Context, id int) (*models.Maintenance, error) {
			return existing, nil
		},
	}
	svc := NewMaintenanceService(store, fakeExistsChecker{exists: true})

	first, err := svc.AddAttachment(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == "" {
		t.Fatal("expected a generated attachment key")
	}
	if existing.Attachments == nil || *existing.Attachments != first {
		t.Errorf("first key not stored: %v", existing.Attachments)
	}

	second, err := svc.AddAttachment(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second == first {
		t.Errorf("keys must be unique")
	}
	keys := strings.Split(*existing.Attachments, ",")
	if len(keys) != 2 || keys[0] != first || keys[1] != second {
		t.Errorf("keys must accumulate in order: %v", *existing.Attachments)
	}
	if store.updated == nil {
		t.Errorf("record was not persisted")
	}
}

func TestMaintenanceAddAttachment_NotFound(t *testing.T) {
	store := &fakeMaintenanceStore{
		getFn: func(ctx context.Context, id int) (*models.Maintenance, error) {
			return nil, crud.ErrNotFound
		},
	}
	svc := NewMaintenanceService(store, fakeExistsChecker{exists: true})

	_, err := svc.AddAttachment(context.Background(), 9)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != "maintenance record not found" {
		t.Errorf("unexpected error: %v", err)
	}
}
