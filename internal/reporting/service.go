package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service assembles the per-business overview report. It reads across the
// appointment, client, payment and calendar tables but never writes.
type Service interface {
	BusinessOverview(ctx context.Context, identity middleware.Identity, businessID int64) (*BusinessOverviewResponse, error)
}

type service struct {
	aggregates aggregateRepository
	events     eventCounter
	businesses businessReader
	now        func() time.Time
}

type aggregateRepository interface {
	CountAppointmentsByStatus(ctx context.Context, businessID int64) (map[enums.AppointmentStatus]int64, error)
	CountClients(ctx context.Context, businessID int64) (total int64, active int64, err error)
	SumPayments(ctx context.Context, businessID int64) (*PaymentTotals, error)
}

type eventCounter interface {
	CountByBusiness(ctx context.Context, businessID int64) (total int64, synced int64, err error)
}

type businessReader interface {
	FindByID(ctx context.Context, id int64) (*models.Business, error)
}

// ServiceParams bundles the dependencies required to build a reporting service.
type ServiceParams struct {
	AggregateRepo aggregateRepository
	EventRepo     eventCounter
	BusinessRepo  businessReader
	Now           func() time.Time
}

// NewService constructs a reporting service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.AggregateRepo == nil {
		return nil, fmt.Errorf("aggregate repository is required")
	}
	if params.EventRepo == nil {
		return nil, fmt.Errorf("event repository is required")
	}
	if params.BusinessRepo == nil {
		return nil, fmt.Errorf("business repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		aggregates: params.AggregateRepo,
		events:     params.EventRepo,
		businesses: params.BusinessRepo,
		now:        now,
	}, nil
}

func (s *service) BusinessOverview(ctx context.Context, identity middleware.Identity, businessID int64) (*BusinessOverviewResponse, error) {
	if !identity.IsAdmin() && identity.BusinessID != businessID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope mismatch")
	}

	business, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup business")
	}

	counts, err := s.aggregates.CountAppointmentsByStatus(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count appointments")
	}
	appointments := buildAppointmentBreakdown(counts)

	totalClients, activeClients, err := s.aggregates.CountClients(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count clients")
	}

	totals, err := s.aggregates.SumPayments(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum payments")
	}

	totalEvents, syncedEvents, err := s.events.CountByBusiness(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count events")
	}

	return &BusinessOverviewResponse{
		BusinessID:   business.ID,
		BusinessName: business.Name,
		Appointments: appointments,
		Clients: ClientBreakdown{
			Total:  totalClients,
			Active: activeClients,
		},
		Revenue: RevenueBreakdown{
			EstimatedTotal: totals.Estimated,
			CollectedTotal: totals.Collected,
			PaidCount:      totals.Paid,
			PendingCount:   totals.Pending,
		},
		CalendarSync: SyncBreakdown{
			TotalEvents:    totalEvents,
			SyncedEvents:   syncedEvents,
			SyncPercentage: roundRate(syncedEvents, totalEvents),
		},
		GeneratedAt: s.now().UTC(),
	}, nil
}

func buildAppointmentBreakdown(counts map[enums.AppointmentStatus]int64) AppointmentBreakdown {
	breakdown := AppointmentBreakdown{
		Pending:   counts[enums.AppointmentStatusPending],
		Confirmed: counts[enums.AppointmentStatusConfirmed],
		Completed: counts[enums.AppointmentStatusCompleted],
		Cancelled: counts[enums.AppointmentStatusCancelled],
	}
	breakdown.Total = breakdown.Pending + breakdown.Confirmed + breakdown.Completed + breakdown.Cancelled
	breakdown.CompletionRate = roundRate(breakdown.Completed, breakdown.Total)
	return breakdown
}

func roundRate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}
