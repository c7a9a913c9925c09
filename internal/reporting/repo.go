package reporting

import (
	"context"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentTotals is the summed balance sheet for one business. Payments hang
// off clients, so business scoping goes through the clients table.
type PaymentTotals struct {
	Estimated decimal.Decimal
	Collected decimal.Decimal
	Paid      int64
	Pending   int64
}

// Repository runs the read-only aggregate queries behind the overview report.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reporting repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type statusCount struct {
	Status enums.AppointmentStatus
	Count  int64
}

func (r *Repository) CountAppointmentsByStatus(ctx context.Context, businessID int64) (map[enums.AppointmentStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("status, COUNT(*) AS count").
		Where("business_id = ?", businessID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *Repository) CountClients(ctx context.Context, businessID int64) (int64, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("business_id = ?", businessID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	var active int64
	err = r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("business_id = ? AND is_active", businessID).
		Count(&active).Error
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

type paymentSums struct {
	Estimated decimal.Decimal
	Collected decimal.Decimal
	Paid      int64
	Pending   int64
}

func (r *Repository) SumPayments(ctx context.Context, businessID int64) (*PaymentTotals, error) {
	var sums paymentSums
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select(
			"COALESCE(SUM(payments.estimated_total), 0) AS estimated, "+
				"COALESCE(SUM(payments.payments_made), 0) AS collected, "+
				"COALESCE(SUM(CASE WHEN payments.status = ? THEN 1 ELSE 0 END), 0) AS paid, "+
				"COALESCE(SUM(CASE WHEN payments.status = ? THEN 1 ELSE 0 END), 0) AS pending",
			enums.PaymentStatusPaid, enums.PaymentStatusPending,
		).
		Joins("JOIN clients ON clients.id = payments.client_id").
		Where("clients.business_id = ?", businessID).
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	return &PaymentTotals{
		Estimated: sums.Estimated,
		Collected: sums.Collected,
		Paid:      sums.Paid,
		Pending:   sums.Pending,
	}, nil
}
