package http

import (
	"net/http"

	"medical-appointment-service/internal/delivery/http/handler"
	"medical-appointment-service/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router             *mux.Router
	appointmentHandler *handler.AppointmentHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	appointmentHandler *handler.AppointmentHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		appointmentHandler: appointmentHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check and metrics
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	r.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Confirmation is public: possession of the token authorizes the caller
	api.HandleFunc("/appointments/confirm/{token}", r.appointmentHandler.Confirm).Methods(http.MethodPost)

	// Appointment routes (protected)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)

	appointments.HandleFunc("", r.appointmentHandler.Create).Methods(http.MethodPost)
	appointments.Handle("", middleware.RequireStaff(http.HandlerFunc(r.appointmentHandler.List))).Methods(http.MethodGet)
	appointments.Handle("/upcoming", middleware.RequireStaff(http.HandlerFunc(r.appointmentHandler.Upcoming))).Methods(http.MethodGet)
	appointments.Handle("/stats", middleware.RequireStaff(http.HandlerFunc(r.appointmentHandler.Stats))).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Get).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Update).Methods(http.MethodPatch)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/reschedule", r.appointmentHandler.Reschedule).Methods(http.MethodPost)
	appointments.Handle("/{id}/start", middleware.RequireDoctorOrStaff(http.HandlerFunc(r.appointmentHandler.Start))).Methods(http.MethodPost)
	appointments.Handle("/{id}/complete", middleware.RequireDoctorOrStaff(http.HandlerFunc(r.appointmentHandler.Complete))).Methods(http.MethodPost)
	appointments.Handle("/{id}/no-show", middleware.RequireStaff(http.HandlerFunc(r.appointmentHandler.MarkNoShow))).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/history", r.appointmentHandler.History).Methods(http.MethodGet)

	// Participant listings and doctor availability (protected)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.HandleFunc("/patients/{id}/appointments", r.appointmentHandler.ListByPatient).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{id}/appointments", r.appointmentHandler.ListByDoctor).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{id}/availability", r.appointmentHandler.CheckAvailability).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{id}/slots", r.appointmentHandler.AvailableSlots).Methods(http.MethodGet)

	r.router.Use(r.corsMiddleware.Handle)
	r.router.Use(middleware.Metrics)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
