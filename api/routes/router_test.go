package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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
	pkgAuth "github.com/angelmondragon/salonflow-backend/pkg/auth"
	"github.com/angelmondragon/salonflow-backend/pkg/config"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	"github.com/angelmondragon/salonflow-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubIdentityService struct{}

func (stubIdentityService) SetupAdmin(context.Context, identity.SetupAdminRequest) (*identity.LoginResponse, error) {
	panic("unimplemented")
}

func (stubIdentityService) LoginEmployee(context.Context, identity.LoginRequest) (*identity.LoginResponse, error) {
	return &identity.LoginResponse{AccessToken: "stub-token", TokenType: "Bearer"}, nil
}

func (stubIdentityService) LoginAdmin(context.Context, identity.LoginRequest) (*identity.LoginResponse, error) {
	return &identity.LoginResponse{AccessToken: "stub-token", TokenType: "Bearer"}, nil
}

func (stubIdentityService) SecurityQuestion(context.Context, string) (*identity.SecurityQuestionResponse, error) {
	panic("unimplemented")
}

func (stubIdentityService) ResetPassword(context.Context, identity.ResetPasswordRequest) error {
	panic("unimplemented")
}

func (stubIdentityService) Resolve(_ context.Context, claims *pkgAuth.AccessTokenClaims) (*middleware.Identity, error) {
	resolved := middleware.Identity{
		ActorType: claims.ActorType,
		ActorID:   claims.ActorID,
	}
	if claims.BusinessID != nil {
		resolved.BusinessID = *claims.BusinessID
	}
	if claims.Role != nil {
		resolved.Role = *claims.Role
	}
	return &resolved, nil
}

type stubBusinessService struct{}

func (stubBusinessService) Create(context.Context, businesses.CreateBusinessRequest) (*businesses.BusinessResponse, error) {
	panic("unimplemented")
}

func (stubBusinessService) Get(context.Context, middleware.Identity, int64) (*businesses.BusinessResponse, error) {
	panic("unimplemented")
}

func (stubBusinessService) List(context.Context, pagination.Params) (*businesses.ListBusinessesResponse, error) {
	return &businesses.ListBusinessesResponse{}, nil
}

func (stubBusinessService) Update(context.Context, middleware.Identity, int64, businesses.UpdateBusinessRequest) (*businesses.BusinessResponse, error) {
	panic("unimplemented")
}

func (stubBusinessService) Deactivate(context.Context, int64) error {
	panic("unimplemented")
}

type stubEmployeeService struct{}

func (stubEmployeeService) Create(context.Context, middleware.Identity, employees.CreateEmployeeRequest) (*employees.EmployeeResponse, error) {
	panic("unimplemented")
}

func (stubEmployeeService) Get(context.Context, middleware.Identity, int64) (*employees.EmployeeResponse, error) {
	panic("unimplemented")
}

func (stubEmployeeService) ListByBusiness(context.Context, middleware.Identity, int64) (*employees.ListEmployeesResponse, error) {
	return &employees.ListEmployeesResponse{}, nil
}

func (stubEmployeeService) Update(context.Context, middleware.Identity, int64, employees.UpdateEmployeeRequest) (*employees.EmployeeResponse, error) {
	panic("unimplemented")
}

func (stubEmployeeService) ChangePassword(context.Context, middleware.Identity, employees.ChangePasswordRequest) error {
	panic("unimplemented")
}

func (stubEmployeeService) Deactivate(context.Context, middleware.Identity, int64) error {
	panic("unimplemented")
}

type stubClientService struct{}

func (stubClientService) Create(context.Context, middleware.Identity, clients.CreateClientRequest) (*clients.ClientResponse, error) {
	panic("unimplemented")
}

func (stubClientService) Get(context.Context, middleware.Identity, int64) (*clients.ClientResponse, error) {
	panic("unimplemented")
}

func (stubClientService) GetByDisplayCode(context.Context, middleware.Identity, string) (*clients.ClientResponse, error) {
	panic("unimplemented")
}

func (stubClientService) List(context.Context, middleware.Identity, clients.ListClientsRequest) (*clients.ListClientsResponse, error) {
	return &clients.ListClientsResponse{}, nil
}

func (stubClientService) Update(context.Context, middleware.Identity, int64, clients.UpdateClientRequest) (*clients.ClientResponse, error) {
	panic("unimplemented")
}

func (stubClientService) Deactivate(context.Context, middleware.Identity, int64) error {
	panic("unimplemented")
}

func (stubClientService) AddNote(context.Context, middleware.Identity, int64, clients.AddNoteRequest) (*clients.NoteResponse, error) {
	panic("unimplemented")
}

func (stubClientService) ListNotes(context.Context, middleware.Identity, int64) (*clients.ListNotesResponse, error) {
	panic("unimplemented")
}

type stubCatalogService struct{}

func (stubCatalogService) Create(context.Context, middleware.Identity, catalog.CreateServiceRequest) (*catalog.ServiceResponse, error) {
	panic("unimplemented")
}

func (stubCatalogService) Get(context.Context, middleware.Identity, int64) (*catalog.ServiceResponse, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListByBusiness(context.Context, middleware.Identity) (*catalog.ListServicesResponse, error) {
	return &catalog.ListServicesResponse{}, nil
}

func (stubCatalogService) Update(context.Context, middleware.Identity, int64, catalog.UpdateServiceRequest) (*catalog.ServiceResponse, error) {
	panic("unimplemented")
}

func (stubCatalogService) Deactivate(context.Context, middleware.Identity, int64) error {
	panic("unimplemented")
}

type stubSchedulerService struct{}

func (stubSchedulerService) Book(context.Context, middleware.Identity, scheduler.BookAppointmentRequest) (*scheduler.AppointmentResponse, error) {
	return &scheduler.AppointmentResponse{ID: 1, Status: enums.AppointmentStatusPending}, nil
}

func (stubSchedulerService) Get(context.Context, middleware.Identity, int64) (*scheduler.AppointmentResponse, error) {
	panic("unimplemented")
}

func (stubSchedulerService) List(context.Context, middleware.Identity, scheduler.ListAppointmentsRequest) (*scheduler.ListAppointmentsResponse, error) {
	return &scheduler.ListAppointmentsResponse{}, nil
}

func (stubSchedulerService) Update(context.Context, middleware.Identity, int64, scheduler.UpdateAppointmentRequest) (*scheduler.AppointmentResponse, error) {
	panic("unimplemented")
}

func (stubSchedulerService) Cancel(context.Context, middleware.Identity, int64) (*scheduler.AppointmentResponse, error) {
	panic("unimplemented")
}

func (stubSchedulerService) Stats(context.Context, middleware.Identity) (*scheduler.StatsResponse, error) {
	return &scheduler.StatsResponse{}, nil
}

type stubCalendarService struct{}

func (stubCalendarService) Create(context.Context, middleware.Identity, calendar.CreateEventRequest) (*calendar.EventResponse, error) {
	panic("unimplemented")
}

func (stubCalendarService) Get(context.Context, middleware.Identity, int64) (*calendar.EventResponse, error) {
	panic("unimplemented")
}

func (stubCalendarService) GetByAppointment(context.Context, middleware.Identity, int64) (*calendar.EventResponse, error) {
	panic("unimplemented")
}

func (stubCalendarService) Delete(context.Context, middleware.Identity, int64) error {
	panic("unimplemented")
}

func (stubCalendarService) List(context.Context, middleware.Identity, calendar.ListEventsRequest) (*calendar.ListEventsResponse, error) {
	return &calendar.ListEventsResponse{}, nil
}

func (stubCalendarService) Update(context.Context, middleware.Identity, int64, calendar.UpdateEventRequest) (*calendar.EventResponse, error) {
	panic("unimplemented")
}

func (stubCalendarService) Sync(context.Context, middleware.Identity, int64) (*calendar.EventResponse, error) {
	panic("unimplemented")
}

func (stubCalendarService) SyncPending(context.Context, middleware.Identity) (*calendar.SyncSummary, error) {
	panic("unimplemented")
}

func (stubCalendarService) SyncStats(context.Context, middleware.Identity) (*calendar.SyncStatsResponse, error) {
	panic("unimplemented")
}

type stubPaymentService struct{}

func (stubPaymentService) Create(context.Context, middleware.Identity, payments.CreatePaymentRequest) (*payments.PaymentResponse, error) {
	panic("unimplemented")
}

func (stubPaymentService) Get(context.Context, middleware.Identity, int64) (*payments.PaymentResponse, error) {
	panic("unimplemented")
}

func (stubPaymentService) ListByClient(context.Context, middleware.Identity, int64) (*payments.ListPaymentsResponse, error) {
	panic("unimplemented")
}

func (stubPaymentService) Record(context.Context, middleware.Identity, int64, payments.RecordPaymentRequest) (*payments.PaymentResponse, error) {
	panic("unimplemented")
}

func (stubPaymentService) Update(context.Context, middleware.Identity, int64, payments.UpdatePaymentRequest) (*payments.PaymentResponse, error) {
	panic("unimplemented")
}

func (stubPaymentService) Delete(context.Context, middleware.Identity, int64) error {
	panic("unimplemented")
}

type stubEngagementService struct{}

func (stubEngagementService) Assign(context.Context, middleware.Identity, int64, engagements.AssignServiceRequest) (*engagements.AssignmentResponse, error) {
	panic("unimplemented")
}

func (stubEngagementService) Complete(context.Context, middleware.Identity, int64) (*engagements.AssignmentResponse, error) {
	panic("unimplemented")
}

func (stubEngagementService) ListByClient(context.Context, middleware.Identity, int64) (*engagements.ListAssignmentsResponse, error) {
	panic("unimplemented")
}

func (stubEngagementService) ListHistory(context.Context, middleware.Identity, int64) (*engagements.ListHistoryResponse, error) {
	panic("unimplemented")
}

type stubReportingService struct{}

func (stubReportingService) BusinessOverview(context.Context, middleware.Identity, int64) (*reporting.BusinessOverviewResponse, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "salonflow-test",
			ExpirationMinutes: 30,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	return NewRouter(
		cfg,
		nil, // logger
		stubPinger{},
		nil, // redis
		nil, // http metrics
		nil, // metrics handler
		Services{
			Identity:    stubIdentityService{},
			Businesses:  stubBusinessService{},
			Employees:   stubEmployeeService{},
			Clients:     stubClientService{},
			Catalog:     stubCatalogService{},
			Scheduler:   stubSchedulerService{},
			Calendar:    stubCalendarService{},
			Payments:    stubPaymentService{},
			Engagements: stubEngagementService{},
			Reporting:   stubReportingService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, actorType enums.ActorType, businessID int64, role enums.EmployeeRole) string {
	t.Helper()
	payload := pkgAuth.AccessTokenPayload{
		ActorType: actorType,
		ActorID:   5,
	}
	if actorType == enums.ActorTypeEmployee {
		payload.BusinessID = &businessID
		payload.Role = &role
	}
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyChecksDatabase(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestEmployeeTokenReachesAppointments(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorTypeEmployee, 3, enums.EmployeeRoleEmployee))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminTokenBlockedFromBusinessScopedRoutes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorTypeAdmin, 0, ""))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on business route got %d", resp.Code)
	}
}

func TestAdminTokenReachesAppointmentStats(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/stats", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorTypeAdmin, 0, ""))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin stats got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestEmployeeTokenBlockedFromAdminRoutes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorTypeEmployee, 3, enums.EmployeeRoleOwner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee on admin route got %d", resp.Code)
	}
}

func TestLoginRouteReachable(t *testing.T) {
	router := newTestRouter(testConfig())

	body := `{"username":"sofia","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data identity.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "stub-token" {
		t.Fatalf("unexpected token %q", envelope.Data.AccessToken)
	}
}
