package service

import (
	"context"
	"time"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
	"github.com/dpm-muni/dpm-backend/internal/crud"
	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
)

// ProgramChecker resolves whether a program id refers to an existing row
// of one concrete program table.
type ProgramChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// ProgramResolver fans a (kind, id) pair out to the right program table.
type ProgramResolver struct {
	Activities ProgramChecker
	Workshops  ProgramChecker
	Services   ProgramChecker
}

func (r ProgramResolver) check(ctx context.Context, kind models.ProgramKind, id int) error {
	var checker ProgramChecker
	switch kind {
	case models.KindActivity:
		checker = r.Activities
	case models.KindWorkshop:
		checker = r.Workshops
	case models.KindService:
		checker = r.Services
	default:
		return apperr.Validation("kind", "kind must be one of activity, workshop, service")
	}
	exists, err := checker.Exists(ctx, id)
	if err != nil {
		return apperr.Persistence("program lookup failed", err)
	}
	if !exists {
		return apperr.BusinessRule("program not found")
	}
	return nil
}

// ElderChecker resolves whether an elder RUT refers to an existing row.
type ElderChecker interface {
	Exists(ctx context.Context, rutID string) (bool, error)
}

// ParticipationStore is the persistence surface for participation links.
type ParticipationStore interface {
	crud.Store[models.Participation, repository.ParticipationKey]
	ListByElder(ctx context.Context, elderRUT string) ([]models.Participation, error)
}

// CreateParticipationInput carries the fields for enrolling an elder in
// a program.
type CreateParticipationInput struct {
	ElderRUT  string `json:"elder_rut"`
	Kind      string `json:"kind"`
	ProgramID int    `json:"program_id"`
	Date      string `json:"date"`
}

// UpdateParticipationInput is a partial update; only the date is
// mutable on a link.
type UpdateParticipationInput struct {
	Date *string `json:"date"`
}

// ParticipationService manages elder-to-program enrollment links.
type ParticipationService struct {
	store    ParticipationStore
	elders   ElderChecker
	programs ProgramResolver
	tmpl     *crud.Template[models.Participation, repository.ParticipationKey, CreateParticipationInput, UpdateParticipationInput]
}

// NewParticipationService constructs a ParticipationService.
func NewParticipationService(store ParticipationStore, elders ElderChecker, programs ProgramResolver) *ParticipationService {
	s := &ParticipationService{store: store, elders: elders, programs: programs}
	s.tmpl = crud.New[models.Participation, repository.ParticipationKey, CreateParticipationInput, UpdateParticipationInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *ParticipationService) EntityName() string { return "participation" }

// ValidateCreate implements crud.Hooks. Both sides of the link must
// exist before the row is written.
func (s *ParticipationService) ValidateCreate(ctx context.Context, in CreateParticipationInput) error {
	rutID, err := normalizeRUT("elder_rut", in.ElderRUT)
	if err != nil {
		return err
	}
	if !models.ValidProgramKind(models.ProgramKind(in.Kind)) {
		return apperr.Validation("kind", "kind must be one of activity, workshop, service")
	}
	if in.ProgramID == 0 {
		return apperr.Validation("program_id", "program_id is required")
	}
	if err := requireString("date", in.Date); err != nil {
		return err
	}
	if _, err := parseDate("date", in.Date); err != nil {
		return err
	}
	exists, err := s.elders.Exists(ctx, rutID)
	if err != nil {
		return apperr.Persistence("elder lookup failed", err)
	}
	if !exists {
		return apperr.BusinessRule("elder not found")
	}
	return s.programs.check(ctx, models.ProgramKind(in.Kind), in.ProgramID)
}

// Build implements crud.Hooks.
func (s *ParticipationService) Build(ctx context.Context, in CreateParticipationInput) (*models.Participation, error) {
	rutID, err := normalizeRUT("elder_rut", in.ElderRUT)
	if err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	return &models.Participation{
		ElderRUT:  rutID,
		Kind:      models.ProgramKind(in.Kind),
		ProgramID: in.ProgramID,
		Date:      date,
	}, nil
}

// ValidateUpdate implements crud.Hooks.
func (s *ParticipationService) ValidateUpdate(ctx context.Context, in UpdateParticipationInput, existing *models.Participation) error {
	if in.Date != nil {
		if _, err := parseDate("date", *in.Date); err != nil {
			return err
		}
	}
	return nil
}

// ApplyUpdate implements crud.Hooks.
func (s *ParticipationService) ApplyUpdate(existing *models.Participation, in UpdateParticipationInput) {
	if in.Date != nil {
		if t, err := time.Parse(dateLayout, *in.Date); err == nil {
			existing.Date = t
		}
	}
}

// Create enrolls an elder in a program.
func (s *ParticipationService) Create(ctx context.Context, in CreateParticipationInput) (*models.Participation, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches a participation link by composite key.
func (s *ParticipationService) Get(ctx context.Context, key repository.ParticipationKey) (*models.Participation, error) {
	normalized, err := s.normalizeKey(key)
	if err != nil {
		return nil, err
	}
	return s.tmpl.Fetch(ctx, normalized)
}

// Update changes the date on a participation link.
func (s *ParticipationService) Update(ctx context.Context, key repository.ParticipationKey, in UpdateParticipationInput) (*models.Participation, error) {
	normalized, err := s.normalizeKey(key)
	if err != nil {
		return nil, err
	}
	return s.tmpl.Update(ctx, normalized, in)
}

// Delete removes a participation link.
func (s *ParticipationService) Delete(ctx context.Context, key repository.ParticipationKey) error {
	normalized, err := s.normalizeKey(key)
	if err != nil {
		return err
	}
	return s.tmpl.Delete(ctx, normalized)
}

// ListByElder returns every program link for an elder.
func (s *ParticipationService) ListByElder(ctx context.Context, elderRUT string) ([]models.Participation, error) {
	rutID, err := normalizeRUT("elder_rut", elderRUT)
	if err != nil {
		return nil, err
	}
	return s.store.ListByElder(ctx, rutID)
}

func (s *ParticipationService) normalizeKey(key repository.ParticipationKey) (repository.ParticipationKey, error) {
	rutID, err := normalizeRUT("elder_rut", key.ElderRUT)
	if err != nil {
		return key, err
	}
	if !models.ValidProgramKind(key.Kind) {
		return key, apperr.Validation("kind", "kind must be one of activity, workshop, service")
	}
	key.ElderRUT = rutID
	return key, nil
}

// AssignmentStore is the persistence surface for assignment links.
type AssignmentStore interface {
	crud.Store[models.Assignment, repository.AssignmentKey]
	ListByCaregiver(ctx context.Context, caregiverRUT string) ([]models.Assignment, error)
}

// CreateAssignmentInput carries the fields for putting a caregiver in
// charge of a program.
type CreateAssignmentInput struct {
	CaregiverRUT string `json:"caregiver_rut"`
	Kind         string `json:"kind"`
	ProgramID    int    `json:"program_id"`
	Date         string `json:"date"`
}

// UpdateAssignmentInput is a partial update; only the date is mutable
// on a link.
type UpdateAssignmentInput struct {
	Date *string `json:"date"`
}

// AssignmentService manages caregiver-to-program management links.
type AssignmentService struct {
	store      AssignmentStore
	caregivers CaregiverChecker
	programs   ProgramResolver
	tmpl       *crud.Template[models.Assignment, repository.AssignmentKey, CreateAssignmentInput, UpdateAssignmentInput]
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(store AssignmentStore, caregivers CaregiverChecker, programs ProgramResolver) *AssignmentService {
	s := &AssignmentService{store: store, caregivers: caregivers, programs: programs}
	s.tmpl = crud.New[models.Assignment, repository.AssignmentKey, CreateAssignmentInput, UpdateAssignmentInput](store, s)
	return s
}

// EntityName implements crud.Hooks.
func (s *AssignmentService) EntityName() string { return "assignment" }

// ValidateCreate implements crud.Hooks.
func (s *AssignmentService) ValidateCreate(ctx context.Context, in CreateAssignmentInput) error {
	rutID, err := normalizeRUT("caregiver_rut", in.CaregiverRUT)
	if err != nil {
		return err
	}
	if !models.ValidProgramKind(models.ProgramKind(in.Kind)) {
		return apperr.Validation("kind", "kind must be one of activity, workshop, service")
	}
	if in.ProgramID == 0 {
		return apperr.Validation("program_id", "program_id is required")
	}
	if err := requireString("date", in.Date); err != nil {
		return err
	}
	if _, err := parseDate("date", in.Date); err != nil {
		return err
	}
	exists, err := s.caregivers.Exists(ctx, rutID)
	if err != nil {
		return apperr.Persistence("caregiver lookup failed", err)
	}
	if !exists {
		return apperr.BusinessRule("caregiver not found")
	}
	return s.programs.check(ctx, models.ProgramKind(in.Kind), in.ProgramID)
}

// Build implements crud.Hooks.
func (s *AssignmentService) Build(ctx context.Context, in CreateAssignmentInput) (*models.Assignment, error) {
	rutID, err := normalizeRUT("caregiver_rut", in.CaregiverRUT)
	if err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	return &models.Assignment{
		CaregiverRUT: rutID,
		Kind:         models.ProgramKind(in.Kind),
		ProgramID:    in.ProgramID,
		Date:         date,
	}, nil
}

// ValidateUpdate implements crud.Hooks.
func (s *AssignmentService) ValidateUpdate(ctx context.Context, in UpdateAssignmentInput, existing *models.Assignment) error {
	if in.Date != nil {
		if _, err := parseDate("date", *in.Date); err != nil {
			return err
		}
	}
	return nil
}

// ApplyUpdate implements crud.Hooks.
func (s *AssignmentService) ApplyUpdate(existing *models.Assignment, in UpdateAssignmentInput) {
	if in.Date != nil {
		if t, err := time.Parse(dateLayout, *in.Date); err == nil {
			existing.Date = t
		}
	}
}

// Create puts a caregiver in charge of a program.
func (s *AssignmentService) Create(ctx context.Context, in CreateAssignmentInput) (*models.Assignment, error) {
	return s.tmpl.Create(ctx, in)
}

// Get fetches an assignment link by composite key.
func (s *AssignmentService) Get(ctx context.Context, key repository.AssignmentKey) (*models.Assignment, error) {
	normalized, err := s.normalizeKey(key)
	if err != nil {
		return nil, err
	}
	return s.tmpl.Fetch(ctx, normalized)
}

// Update changes the date on an assignment link.
func (s *AssignmentService) Update(ctx context.Context, key repository.AssignmentKey, in UpdateAssignmentInput) (*models.Assignment, error) {
	normalized, err := s.normalizeKey(key)
	if err != nil {
		return nil, err
	}
	return s.tmpl.Update(ctx, normalized, in)
}

// Delete removes an assignment link.
func (s *AssignmentService) Delete(ctx context.Context, key repository.AssignmentKey) error {
	normalized, err := s.normalizeKey(key)
	if err != nil {
		return err
	}
	return s.tmpl.Delete(ctx, normalized)
}

// ListByCaregiver returns every program link for a caregiver.
func (s *AssignmentService) ListByCaregiver(ctx context.Context, caregiverRUT string) ([]models.Assignment, error) {
	rutID, err := normalizeRUT("caregiver_rut", caregiverRUT)
	if err != nil {
		return nil, err
	}
	return s.store.ListByCaregiver(ctx, rutID)
}

func (s *AssignmentService) normalizeKey(key repository.AssignmentKey) (repository.AssignmentKey, error) {
	rutID, err := normalizeRUT("caregiver_rut", key.CaregiverRUT)
	if err != nil {
		return key, err
	}
	if !models.ValidProgramKind(key.Kind) {
		return key, apperr.Validation("kind", "kind must be one of activity, workshop, service")
	}
	key.CaregiverRUT = rutID
	return key, nil
}
