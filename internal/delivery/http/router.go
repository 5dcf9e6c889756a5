package http

import (
	"net/http"

	"medassist/internal/delivery/http/handler"
	"medassist/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	triageHandler         *handler.TriageHandler
	emergencyHandler      *handler.EmergencyHandler
	appointmentHandler    *handler.AppointmentHandler
	doctorScheduleHandler *handler.DoctorScheduleHandler
	dashboardHandler      *handler.DashboardHandler
	corsMiddleware        *middleware.CORSMiddleware
}

func NewRouter(
	triageHandler *handler.TriageHandler,
	emergencyHandler *handler.EmergencyHandler,
	appointmentHandler *handler.AppointmentHandler,
	doctorScheduleHandler *handler.DoctorScheduleHandler,
	dashboardHandler *handler.DashboardHandler,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		triageHandler:         triageHandler,
		emergencyHandler:      emergencyHandler,
		appointmentHandler:    appointmentHandler,
		doctorScheduleHandler: doctorScheduleHandler,
		dashboardHandler:      dashboardHandler,
		corsMiddleware:        corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Triage
	api.HandleFunc("/triage/assess", r.triageHandler.AssessSymptoms).Methods(http.MethodPost)

	// Emergency cases
	emergencies := api.PathPrefix("/emergencies").Subrouter()
	emergencies.HandleFunc("", r.emergencyHandler.OpenEmergency).Methods(http.MethodPost)
	emergencies.HandleFunc("", r.emergencyHandler.ListActiveEmergencies).Methods(http.MethodGet)
	emergencies.HandleFunc("/{id}", r.emergencyHandler.GetEmergency).Methods(http.MethodGet)
	emergencies.HandleFunc("/{id}/status", r.emergencyHandler.UpdateEmergencyStatus).Methods(http.MethodPut)
	emergencies.HandleFunc("/{id}/location", r.emergencyHandler.ProvideLocation).Methods(http.MethodPut)

	// Appointments
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.HandleFunc("/lock", r.appointmentHandler.LockSlot).Methods(http.MethodPost)
	appointments.HandleFunc("/release", r.appointmentHandler.ReleaseSlot).Methods(http.MethodPost)
	appointments.HandleFunc("", r.appointmentHandler.BookAppointment).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/reschedule", r.appointmentHandler.RescheduleAppointment).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}", r.appointmentHandler.CancelAppointment).Methods(http.MethodDelete)

	// Staff dashboard
	dashboard := api.PathPrefix("/dashboard").Subrouter()
	dashboard.HandleFunc("/alerts", r.dashboardHandler.GetUnreadAlerts).Methods(http.MethodGet)
	dashboard.HandleFunc("/alerts/{id}/read", r.dashboardHandler.MarkAlertRead).Methods(http.MethodPut)
	dashboard.HandleFunc("/activity", r.dashboardHandler.GetRecentActivity).Methods(http.MethodGet)

	// Doctor schedules
	api.HandleFunc("/schedules", r.doctorScheduleHandler.CreateSchedule).Methods(http.MethodPost)
	api.HandleFunc("/schedules", r.doctorScheduleHandler.GetAllSchedules).Methods(http.MethodGet)
	api.HandleFunc("/schedules/{id}", r.doctorScheduleHandler.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/schedules/{id}", r.doctorScheduleHandler.UpdateSchedule).Methods(http.MethodPut)
	api.HandleFunc("/schedules/{id}", r.doctorScheduleHandler.DeleteSchedule).Methods(http.MethodDelete)
	api.HandleFunc("/doctors/{doctorId}/schedules", r.doctorScheduleHandler.GetSchedulesByDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{doctorId}/slots", r.appointmentHandler.GetAvailableSlots).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
