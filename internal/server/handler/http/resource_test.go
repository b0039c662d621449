package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpm-muni/dpm-backend/internal/apperr"
)

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type widgetInput struct {
	Name string `json:"name"`
}

type widgetPatch struct {
	Name *string `json:"name"`
}

type widgetFilter struct {
	Name string
}

// fakeWidgetService implements CrudService for the generic resource tests.
type fakeWidgetService struct {
	createFn func(ctx context.Context, in widgetInput) (*widget, error)
	getFn    func(ctx context.Context, id int) (*widget, error)
	updateFn func(ctx context.Context, id int, in widgetPatch) (*widget, error)
	deleteFn func(ctx context.Context, id int) error
	listFn   func(ctx context.Context, f widgetFilter, limit, offset int) ([]widget, int, error)
}

func (s *fakeWidgetService) Create(ctx context.Context, in widgetInput) (*widget, error) {
	return s.createFn(ctx, in)
}

func (s *fakeWidgetService) Get(ctx context.Context, id int) (*widget, error) {
	return s.getFn(ctx, id)
}

func (s *fakeWidgetService) Update(ctx context.Context, id int, in widgetPatch) (*widget, error) {
	return s.updateFn(ctx, id, in)
}

func (s *fakeWidgetService) Delete(ctx context.Context, id int) error {
	return s.deleteFn(ctx, id)
}

func (s *fakeWidgetService) List(ctx context.Context, f widgetFilter, limit, offset int) ([]widget, int, error) {
	return s.listFn(ctx, f, limit, offset)
}

func newWidgetRouter(svc *fakeWidgetService) chi.Router {
	h := &Resource[widget, int, widgetInput, widgetPatch, widgetFilter]{
		Service: svc,
		ParseID: func(r *http.Request) (int, error) { return urlParamInt(r, "id") },
		ParseFilter: func(r *http.Request) widgetFilter {
			return widgetFilter{Name: r.URL.Query().Get("name")}
		},
	}
	r := chi.NewRouter()
	r.Get("/widgets", h.List)
	r.Post("/widgets", h.Create)
	r.Get("/widgets/{id}", h.Get)
	r.Put("/widgets/{id}", h.Update)
	r.Delete("/widgets/{id}", h.Delete)
	return r
}

func TestResourceCreate(t *testing.T) {
	svc := &fakeWidgetService{
		createFn: func(ctx context.Context, in widgetInput) (*widget, error) {
			return &widget{ID: 1, Name: in.Name}, nil
		},
	}
	router := newWidgetRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/widgets", bytes.NewBufferString(`{"name":"first"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, true, payload["success"])
	data := payload["data"].(map[string]any)
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "first", data["name"])
}

func TestResourceCreate_InvalidBody(t *testing.T) {
	router := newWidgetRouter(&fakeWidgetService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/widgets", bytes.NewBufferString(`not json`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid request body", payload["error"])
}

func TestResourceGet_ErrorMapping(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedCode  int
		expectedError string
	}{
		{"not found", apperr.BusinessRule("widget not found"), http.StatusNotFound, "widget not found"},
		{"conflict", apperr.BusinessRule("widget already exists"), http.StatusConflict, "widget already exists"},
		{"persistence", apperr.Persistence("storage operation failed", assert.AnError), http.StatusInternalServerError, "storage operation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWidgetService{
				getFn: func(ctx context.Context, id int) (*widget, error) {
					return nil, tt.err
				},
			}
			router := newWidgetRouter(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/widgets/9", nil)
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			payload := decodeEnvelope(t, rec)
			assert.Equal(t, tt.expectedError, payload["error"])
		})
	}
}

func TestResourceGet_BadID(t *testing.T) {
	router := newWidgetRouter(&fakeWidgetService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/widgets/abc", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid identifier", payload["error"])
}

func TestResourceUpdate_ValidationField(t *testing.T) {
	svc := &fakeWidgetService{
		updateFn: func(ctx context.Context, id int, in widgetPatch) (*widget, error) {
			return nil, apperr.Validation("name", "name is required")
		},
	}
	router := newWidgetRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/widgets/1", bytes.NewBufferString(`{"name":""}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, "name is required", payload["error"])
	assert.Equal(t, "name", payload["field"])
}

func TestResourceDelete(t *testing.T) {
	deleted := 0
	svc := &fakeWidgetService{
		deleteFn: func(ctx context.Context, id int) error {
			deleted = id
			return nil
		},
	}
	router := newWidgetRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/widgets/7", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, deleted)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, "record deleted", payload["message"])
}

func TestResourceList_Pagination(t *testing.T) {
	var gotLimit, gotOffset int
	svc := &fakeWidgetService{
		listFn: func(ctx context.Context, f widgetFilter, limit, offset int) ([]widget, int, error) {
			gotLimit, gotOffset = limit, offset
			return []widget{{ID: 21, Name: "w21"}}, 41, nil
		},
	}
	router := newWidgetRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/widgets?page=3&per_page=10", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, gotLimit)
	assert.Equal(t, 20, gotOffset)

	payload := decodeEnvelope(t, rec)
	data := payload["data"].(map[string]any)
	pagination := data["pagination"].(map[string]any)
	assert.Equal(t, float64(3), pagination["page"])
	assert.Equal(t, float64(10), pagination["per_page"])
	assert.Equal(t, float64(41), pagination["total"])
	assert.Equal(t, float64(5), pagination["pages"])
	assert.Equal(t, true, pagination["has_next"])
	assert.Equal(t, true, pagination["has_prev"])
}

func TestResourceList_ClampsPerPage(t *testing.T) {
	var gotLimit int
	svc := &fakeWidgetService{
		listFn: func(ctx context.Context, f widgetFilter, limit, offset int) ([]widget, int, error) {
			gotLimit = limit
			return nil, 0, nil
		},
	}
	router := newWidgetRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/widgets?per_page=500", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, gotLimit)
}

func TestResourceList_EmptyPageIsArray(t *testing.T) {
	svc := &fakeWidgetService{
		listFn: func(ctx context.Context, f widgetFilter, limit, offset int) ([]widget, int, error) {
			return nil, 0, nil
		},
	}
	router := newWidgetRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/widgets", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeEnvelope(t, rec)
	data := payload["data"].(map[string]any)
	items, ok := data["items"].([]any)
	require.True(t, ok, "items must serialize as an array, got %T", data["items"])
	assert.Len(t, items, 0)

	pagination := data["pagination"].(map[string]any)
	assert.Equal(t, float64(0), pagination["pages"])
	assert.Equal(t, false, pagination["has_next"])
	assert.Equal(t, false, pagination["has_prev"])
}

func TestResourceList_FilterFromQuery(t *testing.T) {
	var gotFilter widgetFilter
	svc := &fakeWidgetService{
		listFn: func(ctx context.Context, f widgetFilter, limit, offset int) ([]widget, int, error) {
			gotFilter = f
			return nil, 0, nil
		},
	}
	router := newWidgetRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/widgets?name=gym", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gym", gotFilter.Name)
}
