package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubAggregateRepo struct {
	counts  map[enums.AppointmentStatus]int64
	clients [2]int64
	totals  PaymentTotals
}

func (s *stubAggregateRepo) CountAppointmentsByStatus(_ context.Context, _ int64) (map[enums.AppointmentStatus]int64, error) {
	return s.counts, nil
}

func (s *stubAggregateRepo) CountClients(_ context.Context, _ int64) (int64, int64, error) {
	return s.clients[0], s.clients[1], nil
}

func (s *stubAggregateRepo) SumPayments(_ context.Context, _ int64) (*PaymentTotals, error) {
	totals := s.totals
	return &totals, nil
}

type stubEventCounter struct {
	total  int64
	synced int64
}

func (s *stubEventCounter) CountByBusiness(_ context.Context, _ int64) (int64, int64, error) {
	return s.total, s.synced, nil
}

type stubBusinessReader struct {
	byID map[int64]*models.Business
}

func (s *stubBusinessReader) FindByID(_ context.Context, id int64) (*models.Business, error) {
	if b, ok := s.byID[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, aggregates *stubAggregateRepo, events *stubEventCounter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		AggregateRepo: aggregates,
		EventRepo:     events,
		BusinessRepo: &stubBusinessReader{byID: map[int64]*models.Business{
			3: {ID: 3, Name: "Estetica Luna", IsActive: true},
		}},
		Now: func() time.Time { return time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func employeeIdentity(businessID int64) middleware.Identity {
	return middleware.Identity{ActorType: enums.ActorTypeEmployee, ActorID: 5, BusinessID: businessID, Role: enums.EmployeeRoleOwner}
}

func TestBusinessOverviewAggregates(t *testing.T) {
	aggregates := &stubAggregateRepo{
		counts: map[enums.AppointmentStatus]int64{
			enums.AppointmentStatusPending:   2,
			enums.AppointmentStatusConfirmed: 1,
			enums.AppointmentStatusCompleted: 2,
			enums.AppointmentStatusCancelled: 1,
		},
		clients: [2]int64{10, 8},
		totals: PaymentTotals{
			Estimated: decimal.RequireFromString("500.00"),
			Collected: decimal.RequireFromString("320.00"),
			Paid:      3,
			Pending:   2,
		},
	}
	svc := newTestService(t, aggregates, &stubEventCounter{total: 3, synced: 1})

	overview, err := svc.BusinessOverview(context.Background(), employeeIdentity(3), 3)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if overview.BusinessName != "Estetica Luna" {
		t.Fatalf("unexpected business name %q", overview.BusinessName)
	}
	if overview.Appointments.Total != 6 {
		t.Fatalf("expected 6 appointments, got %d", overview.Appointments.Total)
	}
	if overview.Appointments.CompletionRate != 33.33 {
		t.Fatalf("expected completion rate 33.33, got %v", overview.Appointments.CompletionRate)
	}
	if overview.Clients.Active != 8 || overview.Clients.Total != 10 {
		t.Fatalf("unexpected client counts %+v", overview.Clients)
	}
	if !overview.Revenue.CollectedTotal.Equal(decimal.RequireFromString("320.00")) {
		t.Fatalf("unexpected collected total %s", overview.Revenue.CollectedTotal)
	}
	if overview.CalendarSync.SyncPercentage != 33.33 {
		t.Fatalf("expected sync percentage 33.33, got %v", overview.CalendarSync.SyncPercentage)
	}
}

func TestBusinessOverviewEmptyBusiness(t *testing.T) {
	aggregates := &stubAggregateRepo{
		counts: map[enums.AppointmentStatus]int64{},
		totals: PaymentTotals{Estimated: decimal.Zero, Collected: decimal.Zero},
	}
	svc := newTestService(t, aggregates, &stubEventCounter{})

	overview, err := svc.BusinessOverview(context.Background(), employeeIdentity(3), 3)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.Appointments.CompletionRate != 0 {
		t.Fatalf("empty business should report 0 completion rate, got %v", overview.Appointments.CompletionRate)
	}
	if overview.CalendarSync.SyncPercentage != 0 {
		t.Fatalf("empty business should report 0 sync percentage, got %v", overview.CalendarSync.SyncPercentage)
	}
}

func TestBusinessOverviewScopeMismatch(t *testing.T) {
	svc := newTestService(t, &stubAggregateRepo{counts: map[enums.AppointmentStatus]int64{}}, &stubEventCounter{})

	_, err := svc.BusinessOverview(context.Background(), employeeIdentity(8), 3)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
