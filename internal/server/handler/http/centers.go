package http

import (
	"context"
	"net/http"
)

// CenterSectorsService lists the distinct sectors centers are registered
// in.
type CenterSectorsService interface {
	Sectors(ctx context.Context) ([]string, error)
}

// CentersHandler serves the center endpoints that fall outside the
// standard REST verbs.
type CentersHandler struct {
	Service CenterSectorsService
}

// Sectors handles GET /api/centers/sectors.
func (h *CentersHandler) Sectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.Service.Sectors(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	if sectors == nil {
		sectors = []string{}
	}
	respondData(w, http.StatusOK, sectors)
}
