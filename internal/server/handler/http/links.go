package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
	"github.com/dpm-muni/dpm-backend/internal/service"
)

// ParticipationsService defines the interface for elder participation
// links required by the HTTP handlers.
type ParticipationsService interface {
	Create(ctx context.Context, in service.CreateParticipationInput) (*models.Participation, error)
	Get(ctx context.Context, key repository.ParticipationKey) (*models.Participation, error)
	Update(ctx context.Context, key repository.ParticipationKey, in service.UpdateParticipationInput) (*models.Participation, error)
	Delete(ctx context.Context, key repository.ParticipationKey) error
	ListByElder(ctx context.Context, elderRUT string) ([]models.Participation, error)
}

// ParticipationsHandler handles HTTP requests for enrollment links
// between elders and programs.
type ParticipationsHandler struct {
	Service ParticipationsService
}

func participationKey(r *http.Request) (repository.ParticipationKey, error) {
	programID, err := urlParamInt(r, "program_id")
	if err != nil {
		return repository.ParticipationKey{}, err
	}
	return repository.ParticipationKey{
		ElderRUT:  chi.URLParam(r, "elder_rut"),
		Kind:      models.ProgramKind(chi.URLParam(r, "kind")),
		ProgramID: programID,
	}, nil
}

// Create handles POST /api/participations.
func (h *ParticipationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateParticipationInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	link, err := h.Service.Create(r.Context(), in)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusCreated, link)
}

// Get handles GET /api/participations/{elder_rut}/{kind}/{program_id}.
func (h *ParticipationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, err := participationKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	link, err := h.Service.Get(r.Context(), key)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusOK, link)
}

// Update handles PUT /api/participations/{elder_rut}/{kind}/{program_id}.
func (h *ParticipationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	key, err := participationKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	var in service.UpdateParticipationInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	link, err := h.Service.Update(r.Context(), key, in)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusOK, link)
}

// Delete handles DELETE /api/participations/{elder_rut}/{kind}/{program_id}.
func (h *ParticipationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := participationKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	if err := h.Service.Delete(r.Context(), key); err != nil {
		renderError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "record deleted", nil)
}

// ListByElder handles GET /api/elders/{rut}/participations.
func (h *ParticipationsHandler) ListByElder(w http.ResponseWriter, r *http.Request) {
	links, err := h.Service.ListByElder(r.Context(), chi.URLParam(r, "rut"))
	if err != nil {
		renderError(w, err)
		return
	}
	if links == nil {
		links = []models.Participation{}
	}
	respondData(w, http.StatusOK, links)
}

// AssignmentsService defines the interface for caregiver management
// links required by the HTTP handlers.
type AssignmentsService interface {
	Create(ctx context.Context, in service.CreateAssignmentInput) (*models.Assignment, error)
	Get(ctx context.Context, key repository.AssignmentKey) (*models.Assignment, error)
	Update(ctx context.Context, key repository.AssignmentKey, in service.UpdateAssignmentInput) (*models.Assignment, error)
	Delete(ctx context.Context, key repository.AssignmentKey) error
	ListByCaregiver(ctx context.Context, caregiverRUT string) ([]models.Assignment, error)
}

// AssignmentsHandler handles HTTP requests for management links between
// caregivers and programs.
type AssignmentsHandler struct {
	Service AssignmentsService
}

func assignmentKey(r *http.Request) (repository.AssignmentKey, error) {
	programID, err := urlParamInt(r, "program_id")
	if err != nil {
		return repository.AssignmentKey{}, err
	}
	return repository.AssignmentKey{
		CaregiverRUT: chi.URLParam(r, "caregiver_rut"),
		Kind:         models.ProgramKind(chi.URLParam(r, "kind")),
		ProgramID:    programID,
	}, nil
}

// Create handles POST /api/assignments.
func (h *AssignmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAssignmentInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	link, err := h.Service.Create(r.Context(), in)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusCreated, link)
}

// Get handles GET /api/assignments/{caregiver_rut}/{kind}/{program_id}.
func (h *AssignmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, err := assignmentKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	link, err := h.Service.Get(r.Context(), key)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusOK, link)
}

// Update handles PUT /api/assignments/{caregiver_rut}/{kind}/{program_id}.
func (h *AssignmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	key, err := assignmentKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	var in service.UpdateAssignmentInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	link, err := h.Service.Update(r.Context(), key, in)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusOK, link)
}

// Delete handles DELETE /api/assignments/{caregiver_rut}/{kind}/{program_id}.
func (h *AssignmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := assignmentKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	if err := h.Service.Delete(r.Context(), key); err != nil {
		renderError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "record deleted", nil)
}

// ListByCaregiver handles GET /api/caregivers/{rut}/assignments.
func (h *AssignmentsHandler) ListByCaregiver(w http.ResponseWriter, r *http.Request) {
	links, err := h.Service.ListByCaregiver(r.Context(), chi.URLParam(r, "rut"))
	if err != nil {
		renderError(w, err)
		return
	}
	if links == nil {
		links = []models.Assignment{}
	}
	respondData(w, http.StatusOK, links)
}
