package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dpm-muni/dpm-backend/internal/auth"
	"github.com/dpm-muni/dpm-backend/internal/middleware"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth           *AuthHandler
	Accounts       *AccountsHandler
	Caregivers     *CaregiverResource
	Elders         *ElderResource
	Centers        *CenterResource
	CenterExtras   *CentersHandler
	Activities     *ActivityResource
	Workshops      *WorkshopResource
	Services       *ServiceRecordResource
	SupportWorkers *SupportWorkerResource
	Maintenances   *MaintenanceResource
	MaintExtras    *MaintenanceHandler
	Participations *ParticipationsHandler
	Assignments    *AssignmentsHandler
	Health         *HealthHandler
}

// NewRouter constructs the HTTP handler serving the senior-services API.
//
// Only login and the health check are public. Every other route sits
// behind bearer-token authentication, and writes are additionally gated
// by permission level:
//
//	level 1 (support)  - read everything, write participation and
//	                     maintenance data
//	level 2 (manager)  - additionally create/update records and delete
//	                     non-vital ones
//	level 3 (admin)    - additionally manage accounts and delete vital
//	                     records (caregivers, elders, centers)
func NewRouter(h Handlers, resolver middleware.AccountResolver, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	writeRecords := middleware.RequireCapability(auth.CapWriteRecords)
	writeField := middleware.RequireCapability(auth.CapWriteFieldData)
	deleteVital := middleware.RequireCapability(auth.CapDeleteVital)
	manager := middleware.RequireLevel(auth.LevelManager)
	admin := middleware.RequireLevel(auth.LevelAdmin)

	// mountRecords registers the REST verbs for one of the non-vital
	// record collections (programs, support workers).
	mountRecords := func(r chi.Router, res interface {
		List(http.ResponseWriter, *http.Request)
		Create(http.ResponseWriter, *http.Request)
		Get(http.ResponseWriter, *http.Request)
		Update(http.ResponseWriter, *http.Request)
		Delete(http.ResponseWriter, *http.Request)
	}, idPattern string) {
		r.Get("/", res.List)
		r.Get(idPattern, res.Get)
		r.With(writeRecords).Post("/", res.Create)
		r.With(writeRecords).Put(idPattern, res.Update)
		r.With(writeRecords).Delete(idPattern, res.Delete)
	}

	// mountVital is mountRecords with the delete verb restricted to the
	// admin tier.
	mountVital := func(r chi.Router, res interface {
		List(http.ResponseWriter, *http.Request)
		Create(http.ResponseWriter, *http.Request)
		Get(http.ResponseWriter, *http.Request)
		Update(http.ResponseWriter, *http.Request)
		Delete(http.ResponseWriter, *http.Request)
	}, idPattern string) {
		r.Get("/", res.List)
		r.Get(idPattern, res.Get)
		r.With(writeRecords).Post("/", res.Create)
		r.With(writeRecords).Put(idPattern, res.Update)
		r.With(deleteVital).Delete(idPattern, res.Delete)
	}

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Get("/health", h.Health.Check)
		r.Post("/auth/login", h.Auth.Login)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.WithAuth(resolver))

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/password", h.Auth.ChangePassword)

			r.Route("/accounts", func(r chi.Router) {
				r.With(manager).Get("/", h.Accounts.List)
				r.With(manager).Get("/stats", h.Accounts.Stats)
				r.With(manager).Get("/{id}", h.Accounts.Get)
				r.With(manager).Put("/{id}", h.Accounts.Update)
				r.With(admin).Post("/", h.Accounts.Create)
				r.With(admin).Delete("/{id}", h.Accounts.Delete)
				r.With(admin).Put("/{id}/password", h.Accounts.ResetPassword)
			})

			r.Route("/caregivers", func(r chi.Router) {
				mountVital(r, h.Caregivers, "/{rut}")
				r.Get("/{rut}/assignments", h.Assignments.ListByCaregiver)
			})
			r.Route("/elders", func(r chi.Router) {
				mountVital(r, h.Elders, "/{rut}")
				r.Get("/{rut}/participations", h.Participations.ListByElder)
			})
			r.Route("/centers", func(r chi.Router) {
				r.Get("/sectors", h.CenterExtras.Sectors)
				mountVital(r, h.Centers, "/{id}")
			})

			r.Route("/activities", func(r chi.Router) {
				mountRecords(r, h.Activities, "/{id}")
			})
			r.Route("/workshops", func(r chi.Router) {
				mountRecords(r, h.Workshops, "/{id}")
			})
			r.Route("/services", func(r chi.Router) {
				mountRecords(r, h.Services, "/{id}")
			})
			r.Route("/support-workers", func(r chi.Router) {
				mountRecords(r, h.SupportWorkers, "/{rut}")
			})

			r.Route("/maintenances", func(r chi.Router) {
				r.Get("/", h.Maintenances.List)
				r.Get("/{id}", h.Maintenances.Get)
				r.With(writeField).Post("/", h.Maintenances.Create)
				r.With(writeField).Put("/{id}", h.Maintenances.Update)
				r.With(writeField).Post("/{id}/attachments", h.MaintExtras.AddAttachment)
				r.With(writeRecords).Delete("/{id}", h.Maintenances.Delete)
			})

			r.Route("/participations", func(r chi.Router) {
				r.With(writeField).Post("/", h.Participations.Create)
				r.Route("/{elder_rut}/{kind}/{program_id}", func(r chi.Router) {
					r.Get("/", h.Participations.Get)
					r.With(writeField).Put("/", h.Participations.Update)
					r.With(writeRecords).Delete("/", h.Participations.Delete)
				})
			})
			r.Route("/assignments", func(r chi.Router) {
				r.With(writeField).Post("/", h.Assignments.Create)
				r.Route("/{caregiver_rut}/{kind}/{program_id}", func(r chi.Router) {
					r.Get("/", h.Assignments.Get)
					r.With(writeField).Put("/", h.Assignments.Update)
					r.With(writeRecords).Delete("/", h.Assignments.Delete)
				})
			})
		})
	})

	return r
}
