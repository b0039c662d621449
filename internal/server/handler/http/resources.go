package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dpm-muni/dpm-backend/internal/models"
	"github.com/dpm-muni/dpm-backend/internal/repository"
	"github.com/dpm-muni/dpm-backend/internal/service"
)

func rutParam(r *http.Request) (string, error) {
	return chi.URLParam(r, "rut"), nil
}

func idParam(r *http.Request) (int, error) {
	return urlParamInt(r, "id")
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// CaregiverResource is the REST surface for caregivers.
type CaregiverResource = Resource[models.Caregiver, string, service.CreateCaregiverInput, service.UpdateCaregiverInput, repository.CaregiverFilter]

// NewCaregiverResource builds the caregiver REST handler.
func NewCaregiverResource(svc CrudService[models.Caregiver, string, service.CreateCaregiverInput, service.UpdateCaregiverInput, repository.CaregiverFilter]) *CaregiverResource {
	return &CaregiverResource{
		Service: svc,
		ParseID: rutParam,
		ParseFilter: func(r *http.Request) repository.CaregiverFilter {
			q := r.URL.Query()
			return repository.CaregiverFilter{Name: q.Get("name"), RUT: q.Get("rut")}
		},
	}
}

// ElderResource is the REST surface for elders.
type ElderResource = Resource[models.Elder, string, service.CreateElderInput, service.UpdateElderInput, repository.ElderFilter]

// NewElderResource builds the elder REST handler.
func NewElderResource(svc CrudService[models.Elder, string, service.CreateElderInput, service.UpdateElderInput, repository.ElderFilter]) *ElderResource {
	return &ElderResource{
		Service: svc,
		ParseID: rutParam,
		ParseFilter: func(r *http.Request) repository.ElderFilter {
			q := r.URL.Query()
			return repository.ElderFilter{Name: q.Get("name"), RUT: q.Get("rut"), Sector: q.Get("sector")}
		},
	}
}

// CenterResource is the REST surface for community centers.
type CenterResource = Resource[models.CommunityCenter, int, service.CreateCenterInput, service.UpdateCenterInput, repository.CenterFilter]

// NewCenterResource builds the community center REST handler.
func NewCenterResource(svc CrudService[models.CommunityCenter, int, service.CreateCenterInput, service.UpdateCenterInput, repository.CenterFilter]) *CenterResource {
	return &CenterResource{
		Service: svc,
		ParseID: idParam,
		ParseFilter: func(r *http.Request) repository.CenterFilter {
			q := r.URL.Query()
			return repository.CenterFilter{Name: q.Get("name"), Sector: q.Get("sector"), Address: q.Get("address")}
		},
	}
}

func programFilter(r *http.Request) repository.ProgramFilter {
	q := r.URL.Query()
	return repository.ProgramFilter{Name: q.Get("name"), CaregiverRUT: q.Get("caregiver_rut")}
}

// ActivityResource is the REST surface for activities.
type ActivityResource = Resource[models.Activity, int, service.CreateProgramInput, service.UpdateProgramInput, repository.ProgramFilter]

// NewActivityResource builds the activity REST handler.
func NewActivityResource(svc CrudService[models.Activity, int, service.CreateProgramInput, service.UpdateProgramInput, repository.ProgramFilter]) *ActivityResource {
	return &ActivityResource{Service: svc, ParseID: idParam, ParseFilter: programFilter}
}

// WorkshopResource is the REST surface for workshops.
type WorkshopResource = Resource[models.Workshop, int, service.CreateProgramInput, service.UpdateProgramInput, repository.ProgramFilter]

// NewWorkshopResource builds the workshop REST handler.
func NewWorkshopResource(svc CrudService[models.Workshop, int, service.CreateProgramInput, service.UpdateProgramInput, repository.ProgramFilter]) *WorkshopResource {
	return &WorkshopResource{Service: svc, ParseID: idParam, ParseFilter: programFilter}
}

// ServiceRecordResource is the REST surface for service records.
type ServiceRecordResource = Resource[models.ServiceRecord, int, service.CreateServiceInput, service.UpdateServiceInput, repository.ProgramFilter]

// NewServiceRecordResource builds the service record REST handler.
func NewServiceRecordResource(svc CrudService[models.ServiceRecord, int, service.CreateServiceInput, service.UpdateServiceInput, repository.ProgramFilter]) *ServiceRecordResource {
	return &ServiceRecordResource{Service: svc, ParseID: idParam, ParseFilter: programFilter}
}

// SupportWorkerResource is the REST surface for support workers.
type SupportWorkerResource = Resource[models.SupportWorker, string, service.CreateSupportWorkerInput, service.UpdateSupportWorkerInput, repository.SupportWorkerFilter]

// NewSupportWorkerResource builds the support worker REST handler.
func NewSupportWorkerResource(svc CrudService[models.SupportWorker, string, service.CreateSupportWorkerInput, service.UpdateSupportWorkerInput, repository.SupportWorkerFilter]) *SupportWorkerResource {
	return &SupportWorkerResource{
		Service: svc,
		ParseID: rutParam,
		ParseFilter: func(r *http.Request) repository.SupportWorkerFilter {
			return repository.SupportWorkerFilter{Name: r.URL.Query().Get("name"), CenterID: queryInt(r, "center_id")}
		},
	}
}

// MaintenanceResource is the REST surface for maintenance records.
type MaintenanceResource = Resource[models.Maintenance, int, service.CreateMaintenanceInput, service.UpdateMaintenanceInput, repository.MaintenanceFilter]

// NewMaintenanceResource builds the maintenance REST handler.
func NewMaintenanceResource(svc CrudService[models.Maintenance, int, service.CreateMaintenanceInput, service.UpdateMaintenanceInput, repository.MaintenanceFilter]) *MaintenanceResource {
	return &MaintenanceResource{
		Service: svc,
		ParseID: idParam,
		ParseFilter: func(r *http.Request) repository.MaintenanceFilter {
			return repository.MaintenanceFilter{CenterID: queryInt(r, "center_id")}
		},
	}
}
