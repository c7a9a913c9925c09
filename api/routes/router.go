package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/salonflow-backend/api/controllers"
	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/internal/businesses"
	"github.com/angelmondragon/salonflow-backend/internal/calendar"
	"github.com/angelmondragon/salonflow-backend/internal/catalog"
	"github.com/angelmondragon/salonflow-backend/internal/clients"
	"github.com/angelmondragon/salonflow-backend/internal/employees"
	"github.com/angelmondragon/salonflow-backend/internal/engagements"
	"github.com/angelmondragon/salonflow-backend/internal/identity"
	"github.com/angelmondragon/salonflow-backend/internal/payments"
	"github.com/angelmondragon/salonflow-backend/internal/reporting"
	"github.com/angelmondragon/salonflow-backend/internal/scheduler"
	"github.com/angelmondragon/salonflow-backend/pkg/config"
	"github.com/angelmondragon/salonflow-backend/pkg/logger"
	"github.com/angelmondragon/salonflow-backend/pkg/metrics"
	"github.com/angelmondragon/salonflow-backend/pkg/redis"
)

// Services bundles every domain service the router exposes.
type Services struct {
	Identity    identity.Service
	Businesses  businesses.Service
	Employees   employees.Service
	Clients     clients.Service
	Catalog     catalog.Service
	Scheduler   scheduler.Service
	Calendar    calendar.Service
	Payments    payments.Service
	Engagements engagements.Service
	Reporting   reporting.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	loginLimiter := passthrough
	var idempotencyStore redis.IdempotencyStore
	var cachePinger controllers.Pinger
	if redisClient != nil {
		loginLimiter = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
		idempotencyStore = redisClient
		cachePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", controllers.AuthLogin(svcs.Identity, logg))
		r.Get("/security-question", controllers.AuthSecurityQuestion(svcs.Identity, logg))
		r.With(loginLimiter).Post("/reset-password", controllers.AuthResetPassword(svcs.Identity, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/setup", controllers.AdminAuthSetup(svcs.Identity, logg))
		r.With(loginLimiter).Post("/login", controllers.AdminAuthLogin(svcs.Identity, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, svcs.Identity, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/businesses", func(r chi.Router) {
			r.With(middleware.RequireAdmin(logg)).Post("/", controllers.BusinessCreate(svcs.Businesses, logg))
			r.With(middleware.RequireAdmin(logg)).Get("/", controllers.BusinessList(svcs.Businesses, logg))
			r.Get("/{businessId}", controllers.BusinessGet(svcs.Businesses, logg))
			r.Put("/{businessId}", controllers.BusinessUpdate(svcs.Businesses, logg))
			r.With(middleware.RequireAdmin(logg)).Delete("/{businessId}", controllers.BusinessDeactivate(svcs.Businesses, logg))
			r.Get("/{businessId}/report", controllers.ReportBusinessOverview(svcs.Reporting, logg))
		})

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", controllers.EmployeeCreate(svcs.Employees, logg))
			r.Get("/", controllers.EmployeeList(svcs.Employees, logg))
			r.With(middleware.RequireEmployee(logg)).Post("/password", controllers.EmployeeChangePassword(svcs.Employees, logg))
			r.Get("/{employeeId}", controllers.EmployeeGet(svcs.Employees, logg))
			r.Put("/{employeeId}", controllers.EmployeeUpdate(svcs.Employees, logg))
			r.Delete("/{employeeId}", controllers.EmployeeDeactivate(svcs.Employees, logg))
		})

		r.Route("/appointments", func(r chi.Router) {
			// Stats serves both admins (all businesses) and employees.
			r.Get("/stats", controllers.AppointmentStats(svcs.Scheduler, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireEmployee(logg))
				r.Post("/", controllers.AppointmentBook(svcs.Scheduler, logg))
				r.Get("/", controllers.AppointmentList(svcs.Scheduler, logg))
				r.Get("/{appointmentId}", controllers.AppointmentGet(svcs.Scheduler, logg))
				r.Put("/{appointmentId}", controllers.AppointmentUpdate(svcs.Scheduler, logg))
				r.Post("/{appointmentId}/cancel", controllers.AppointmentCancel(svcs.Scheduler, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireEmployee(logg))

			r.Route("/clients", func(r chi.Router) {
				r.Post("/", controllers.ClientCreate(svcs.Clients, logg))
				r.Get("/", controllers.ClientList(svcs.Clients, logg))
				r.Get("/code/{displayCode}", controllers.ClientGetByCode(svcs.Clients, logg))
				r.Get("/{clientId}", controllers.ClientGet(svcs.Clients, logg))
				r.Put("/{clientId}", controllers.ClientUpdate(svcs.Clients, logg))
				r.Delete("/{clientId}", controllers.ClientDeactivate(svcs.Clients, logg))
				r.Post("/{clientId}/notes", controllers.ClientAddNote(svcs.Clients, logg))
				r.Get("/{clientId}/notes", controllers.ClientListNotes(svcs.Clients, logg))
				r.Post("/{clientId}/services", controllers.EngagementAssign(svcs.Engagements, logg))
				r.Get("/{clientId}/services", controllers.EngagementList(svcs.Engagements, logg))
				r.Get("/{clientId}/history", controllers.EngagementHistory(svcs.Engagements, logg))
				r.Get("/{clientId}/payments", controllers.PaymentListByClient(svcs.Payments, logg))
			})

			r.Route("/services", func(r chi.Router) {
				r.Post("/", controllers.ServiceCreate(svcs.Catalog, logg))
				r.Get("/", controllers.ServiceList(svcs.Catalog, logg))
				r.Get("/{serviceId}", controllers.ServiceGet(svcs.Catalog, logg))
				r.Put("/{serviceId}", controllers.ServiceUpdate(svcs.Catalog, logg))
				r.Delete("/{serviceId}", controllers.ServiceDeactivate(svcs.Catalog, logg))
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Post("/events", controllers.CalendarEventCreate(svcs.Calendar, logg))
				r.Get("/events", controllers.CalendarEventList(svcs.Calendar, logg))
				r.Get("/events/appointment/{appointmentId}", controllers.CalendarEventByAppointment(svcs.Calendar, logg))
				r.Get("/events/{eventId}", controllers.CalendarEventGet(svcs.Calendar, logg))
				r.Put("/events/{eventId}", controllers.CalendarEventUpdate(svcs.Calendar, logg))
				r.Delete("/events/{eventId}", controllers.CalendarEventDelete(svcs.Calendar, logg))
				r.Post("/events/{eventId}/sync", controllers.CalendarEventSync(svcs.Calendar, logg))
				r.Post("/sync", controllers.CalendarSyncPending(svcs.Calendar, logg))
				r.Get("/sync/stats", controllers.CalendarSyncStats(svcs.Calendar, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/", controllers.PaymentCreate(svcs.Payments, logg))
				r.Get("/{paymentId}", controllers.PaymentGet(svcs.Payments, logg))
				r.Post("/{paymentId}/record", controllers.PaymentRecord(svcs.Payments, logg))
				r.Put("/{paymentId}", controllers.PaymentUpdate(svcs.Payments, logg))
				r.Delete("/{paymentId}", controllers.PaymentDelete(svcs.Payments, logg))
			})

			r.Post("/assignments/{assignmentId}/complete", controllers.EngagementComplete(svcs.Engagements, logg))
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
