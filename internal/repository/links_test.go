package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
)

func setupParticipationMock(t *testing.T) (*ParticipationRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewParticipationRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestParticipationGet(t *testing.T) {
	repo, mock, cleanup := setupParticipationMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT elder_rut, kind, program_id, date, created_at`).
		WithArgs("12345678-5", string(models.KindWorkshop), 3).
		WillReturnRows(sqlmock.NewRows([]string{"elder_rut", "kind", "program_id", "date", "created_at"}).
			AddRow("12345678-5", "workshop", 3, now, now))

	key := ParticipationKey{ElderRUT: "12345678-5", Kind: models.KindWorkshop, ProgramID: 3}
	link, err := repo.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.Kind != models.KindWorkshop || link.ProgramID != 3 {
		t.Errorf("unexpected link: %+v", link)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestParticipationGet_NotFound(t *testing.T) {
	repo, mock, cleanup := setupParticipationMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT elder_rut, kind, program_id, date, created_at`).
		WithArgs("12345678-5", string(models.KindActivity), 9).
		WillReturnRows(sqlmock.NewRows([]string{"elder_rut", "kind", "program_id", "date", "created_at"}))

	key := ParticipationKey{ElderRUT: "12345678-5", Kind: models.KindActivity, ProgramID: 9}
	_, err := repo.Get(context.Background(), key)
	if !errors.Is(err, crud.ErrNotFound) {
		t.Errorf("expected crud.ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestParticipationInsert(t *testing.T) {
	repo, mock, cleanup := setupParticipationMock(t)
	defer cleanup()

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO participations`).
		WithArgs("12345678-5", string(models.KindActivity), 1, date).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	link := &models.Participation{ElderRUT: "12345678-5", Kind: models.KindActivity, ProgramID: 1, Date: date}
	if err := repo.Insert(context.Background(), link); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !link.CreatedAt.Equal(now) {
		t.Errorf("expected created_at to be read back")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestParticipationInsert_ReferenceViolation(t *testing.T) {
	repo, mock, cleanup := setupParticipationMock(t)
	defer cleanup()

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO participations`).
		WithArgs("12345678-5", string(models.KindActivity), 404, date).
		WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	link := &models.Participation{ElderRUT: "12345678-5", Kind: models.KindActivity, ProgramID: 404, Date: date}
	err := repo.Insert(context.Background(), link)
	if !errors.Is(err, crud.ErrReference) {
		t.Errorf("expected crud.ErrReference, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestParticipationDelete_NotFound(t *testing.T) {
	repo, mock, cleanup := setupParticipationMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM participations`).
		WithArgs("12345678-5", string(models.KindService), 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	key := ParticipationKey{ElderRUT: "12345678-5", Kind: models.KindService, ProgramID: 2}
	err := repo.Delete(context.Background(), key)
	if !errors.Is(err, crud.ErrNotFound) {
		t.Errorf("expected crud.ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestParticipationListByElder(t *testing.T) {
	repo, mock, cleanup := setupParticipationMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT elder_rut, kind, program_id, date, created_at`).
		WithArgs("12345678-5").
		WillReturnRows(sqlmock.NewRows([]string{"elder_rut", "kind", "program_id", "date", "created_at"}).
			AddRow("12345678-5", "activity", 1, now, now).
			AddRow("12345678-5", "workshop", 2, now, now))

	links, err := repo.ListByElder(context.Background(), "12345678-5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 2 || links[1].Kind != models.KindWorkshop {
		t.Errorf("unexpected links: %+v", links)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func setupAssignmentMock(t *testing.T) (*AssignmentRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewAssignmentRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestAssignmentInsertAndUpdate(t *testing.T) {
	repo, mock, cleanup := setupAssignmentMock(t)
	defer cleanup()

	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO assignments`).
		WithArgs("11111111-1", string(models.KindService), 5, date).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	link := &models.Assignment{CaregiverRUT: "11111111-1", Kind: models.KindService, ProgramID: 5, Date: date}
	if err := repo.Insert(context.Background(), link); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	moved := date.AddDate(0, 0, 7)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE assignments SET date`).
		WithArgs(moved, "11111111-1", string(models.KindService), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	link.Date = moved
	if err := repo.Update(context.Background(), link); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAssignmentListByCaregiver(t *testing.T) {
	repo, mock, cleanup := setupAssignmentMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT caregiver_rut, kind, program_id, date, created_at`).
		WithArgs("11111111-1").
		WillReturnRows(sqlmock.NewRows([]string{"caregiver_rut", "kind", "program_id", "date", "created_at"}).
			AddRow("11111111-1", "service", 5, now, now))

	links, err := repo.ListByCaregiver(context.Background(), "11111111-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 1 || links[0].ProgramID != 5 {
		t.Errorf("unexpected links: %+v", links)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
