package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/salonflow-backend/internal/calendar"
	"github.com/angelmondragon/salonflow-backend/pkg/config"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type gormTxRunner struct {
	conn *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.conn.WithContext(ctx).Transaction(fn)
}

func newBookingDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Appointment{}, &models.CalendarEvent{}, &models.ServiceHistory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// The booking write path must be all-or-nothing: when the history insert
// fails after the appointment and event rows were created, the transaction
// rolls everything back.
func TestBookRollsBackOnHistoryFailure(t *testing.T) {
	conn := newBookingDB(t, "scheduler_rollback")

	history := &stubHistory{err: errors.New("history insert failed")}
	svc, err := NewService(ServiceParams{
		TxRunner:        gormTxRunner{conn: conn},
		AppointmentRepo: NewRepository(conn),
		EventRepo:       calendar.NewRepository(conn),
		History:         history,
		ClientRepo: &stubClientResolver{byID: map[int64]*models.Client{
			9: {ID: 9, BusinessID: 3, Name: "Maria Lopez", IsActive: true},
		}},
		EmployeeRepo: &stubEmployeeResolver{byID: map[int64]*models.Employee{
			7: {ID: 7, BusinessID: 3, FirstName: "Sofia", LastName: "Mendez", IsActive: true},
		}},
		ServiceRepo: &stubServiceResolver{byID: map[int64]*models.Service{
			2: {ID: 2, BusinessID: 3, Name: "Balayage", IsActive: true},
		}},
		CalendarConfig: config.CalendarConfig{DefaultDurationHours: 1},
		Now:            func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Book(context.Background(), employeeIdentity(3), BookAppointmentRequest{
		Client: "9", Employee: "7", Service: "2", DateTime: futureSlot(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	var appointments int64
	if err := conn.Model(&models.Appointment{}).Count(&appointments).Error; err != nil {
		t.Fatalf("count appointments: %v", err)
	}
	if appointments != 0 {
		t.Fatalf("appointment row leaked past rollback: %d", appointments)
	}

	var events int64
	if err := conn.Model(&models.CalendarEvent{}).Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 0 {
		t.Fatalf("event row leaked past rollback: %d", events)
	}
}

// With real repositories, booking persists both rows and the 1:1 pairing.
func TestBookPersistsAppointmentAndEventTogether(t *testing.T) {
	conn := newBookingDB(t, "scheduler_commit")

	history := &stubHistory{}
	svc, err := NewService(ServiceParams{
		TxRunner:        gormTxRunner{conn: conn},
		AppointmentRepo: NewRepository(conn),
		EventRepo:       calendar.NewRepository(conn),
		History:         history,
		ClientRepo: &stubClientResolver{byID: map[int64]*models.Client{
			9: {ID: 9, BusinessID: 3, Name: "Maria Lopez", IsActive: true},
		}},
		EmployeeRepo: &stubEmployeeResolver{byID: map[int64]*models.Employee{
			7: {ID: 7, BusinessID: 3, FirstName: "Sofia", LastName: "Mendez", IsActive: true},
		}},
		ServiceRepo: &stubServiceResolver{byID: map[int64]*models.Service{
			2: {ID: 2, BusinessID: 3, Name: "Balayage", IsActive: true},
		}},
		CalendarConfig: config.CalendarConfig{DefaultDurationHours: 1},
		Now:            func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Book(context.Background(), employeeIdentity(3), BookAppointmentRequest{
		Client: "9", Employee: "7", Service: "2", DateTime: futureSlot(),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if resp.Status != enums.AppointmentStatusPending {
		t.Fatalf("expected pending, got %s", resp.Status)
	}

	var event models.CalendarEvent
	if err := conn.Where("appointment_id = ?", resp.ID).First(&event).Error; err != nil {
		t.Fatalf("paired event missing: %v", err)
	}
	if !event.StartDateTime.Equal(resp.DateTime) {
		t.Fatalf("event start %v should equal appointment time %v", event.StartDateTime, resp.DateTime)
	}
}
