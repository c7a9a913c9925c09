package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentBreakdown counts appointments per status for one business.
type AppointmentBreakdown struct {
	Total          int64   `json:"total"`
	Pending        int64   `json:"pending"`
	Confirmed      int64   `json:"confirmed"`
	Completed      int64   `json:"completed"`
	Cancelled      int64   `json:"cancelled"`
	CompletionRate float64 `json:"completion_rate"`
}

// ClientBreakdown counts the business directory.
type ClientBreakdown struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// RevenueBreakdown sums client balances for the business.
type RevenueBreakdown struct {
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
	CollectedTotal decimal.Decimal `json:"collected_total"`
	PaidCount      int64           `json:"paid_count"`
	PendingCount   int64           `json:"pending_count"`
}

// SyncBreakdown reports calendar provider coverage.
type SyncBreakdown struct {
	TotalEvents    int64   `json:"total_events"`
	SyncedEvents   int64   `json:"synced_events"`
	SyncPercentage float64 `json:"sync_percentage"`
}

// BusinessOverviewResponse is the aggregate report for a single business.
type BusinessOverviewResponse struct {
	BusinessID   int64                `json:"business_id"`
	BusinessName string               `json:"business_name"`
	Appointments AppointmentBreakdown `json:"appointments"`
	Clients      ClientBreakdown      `json:"clients"`
	Revenue      RevenueBreakdown     `json:"revenue"`
	CalendarSync SyncBreakdown        `json:"calendar_sync"`
	GeneratedAt  time.Time            `json:"generated_at"`
}
