package http

import (
	"context"
	"net/http"
)

// MaintenanceAttachmentService registers uploaded files against
// maintenance records.
type MaintenanceAttachmentService interface {
	AddAttachment(ctx context.Context, id int) (string, error)
}

// MaintenanceHandler serves the maintenance endpoints that fall outside
// the standard REST verbs.
type MaintenanceHandler struct {
	Service MaintenanceAttachmentService
}

// AddAttachment handles POST /api/maintenances/{id}/attachments and
// returns the generated attachment key.
func (h *MaintenanceHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid identifier")
		return
	}
	key, err := h.Service.AddAttachment(r.Context(), id)
	if err != nil {
		renderError(w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]string{"attachment": key})
}
