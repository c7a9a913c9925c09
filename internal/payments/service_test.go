package payments

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

type stubPaymentRepo struct {
	byID    map[int64]*models.Payment
	nextID  int64
	deleted []int64
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{byID: make(map[int64]*models.Payment)}
}

func (s *stubPaymentRepo) Create(_ context.Context, payment *models.Payment) (*models.Payment, error) {
	s.nextID++
	payment.ID = s.nextID
	s.byID[payment.ID] = payment
	return payment, nil
}

func (s *stubPaymentRepo) FindByID(_ context.Context, id int64) (*models.Payment, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentRepo) ListByClient(_ context.Context, clientID int64) ([]models.Payment, error) {
	var rows []models.Payment
	for _, p := range s.byID {
		if p.ClientID == clientID {
			rows = append(rows, *p)
		}
	}
	return rows, nil
}

func (s *stubPaymentRepo) Update(_ context.Context, payment *models.Payment) error {
	s.byID[payment.ID] = payment
	return nil
}

func (s *stubPaymentRepo) Delete(_ context.Context, id int64) error {
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubClientReader struct {
	byID map[int64]*models.Client
}

func (s *stubClientReader) FindByID(_ context.Context, id int64) (*models.Client, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func employeeIdentity(businessID int64) middleware.Identity {
	return middleware.Identity{ActorType: enums.ActorTypeEmployee, ActorID: 5, BusinessID: businessID, Role: enums.EmployeeRoleEmployee}
}

func newTestService(t *testing.T, repo *stubPaymentRepo, clients *stubClientReader) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		PaymentRepo: repo,
		ClientRepo:  clients,
		Now:         func() time.Time { return time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func scopedClients() *stubClientReader {
	return &stubClientReader{byID: map[int64]*models.Client{
		9: {ID: 9, BusinessID: 3, Name: "Maria", IsActive: true},
	}}
}

func TestCreatePaymentDerivesStatus(t *testing.T) {
	svc := newTestService(t, newStubPaymentRepo(), scopedClients())

	pending, err := svc.Create(context.Background(), employeeIdentity(3), CreatePaymentRequest{
		ClientID:       9,
		Method:         enums.PaymentMethodCash,
		EstimatedTotal: decimal.RequireFromString("120.00"),
		PaymentsMade:   decimal.RequireFromString("50.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pending.Status != enums.PaymentStatusPending {
		t.Fatalf("partial collection should be pending, got %s", pending.Status)
	}
	if pending.PaymentDate == nil {
		t.Fatal("a collected amount should stamp the payment date")
	}

	paid, err := svc.Create(context.Background(), employeeIdentity(3), CreatePaymentRequest{
		ClientID:       9,
		Method:         enums.PaymentMethodCard,
		EstimatedTotal: decimal.RequireFromString("80.00"),
		PaymentsMade:   decimal.RequireFromString("80.00"),
	})
	if err != nil {
		t.Fatalf("create paid: %v", err)
	}
	if paid.Status != enums.PaymentStatusPaid {
		t.Fatalf("full collection should be paid, got %s", paid.Status)
	}
}

func TestCreatePaymentRejectsZeroEstimate(t *testing.T) {
	svc := newTestService(t, newStubPaymentRepo(), scopedClients())

	_, err := svc.Create(context.Background(), employeeIdentity(3), CreatePaymentRequest{
		ClientID:       9,
		Method:         enums.PaymentMethodCash,
		EstimatedTotal: decimal.Zero,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("a zero estimate should be a validation error, got %v", err)
	}
}

func TestCreatePaymentKeepsSuppliedDate(t *testing.T) {
	svc := newTestService(t, newStubPaymentRepo(), scopedClients())

	collected := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	resp, err := svc.Create(context.Background(), employeeIdentity(3), CreatePaymentRequest{
		ClientID:       9,
		Method:         enums.PaymentMethodCash,
		EstimatedTotal: decimal.RequireFromString("120.00"),
		PaymentsMade:   decimal.RequireFromString("50.00"),
		PaymentDate:    &collected,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.PaymentDate == nil || !resp.PaymentDate.Equal(collected) {
		t.Fatalf("a supplied collection date must be kept, got %v", resp.PaymentDate)
	}
}

func TestCreatePaymentRejectsOverpayment(t *testing.T) {
	svc := newTestService(t, newStubPaymentRepo(), scopedClients())

	_, err := svc.Create(context.Background(), employeeIdentity(3), CreatePaymentRequest{
		ClientID:       9,
		Method:         enums.PaymentMethodCash,
		EstimatedTotal: decimal.RequireFromString("100.00"),
		PaymentsMade:   decimal.RequireFromString("100.01"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordPaymentAccumulates(t *testing.T) {
	repo := newStubPaymentRepo()
	svc := newTestService(t, repo, scopedClients())

	created, err := svc.Create(context.Background(), employeeIdentity(3), CreatePaymentRequest{
		ClientID:       9,
		Method:         enums.PaymentMethodCash,
		EstimatedTotal: decimal.RequireFromString("100.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != enums.PaymentStatusPending {
		t.Fatalf("zero collection should be pending, got %s", created.Status)
	}

	resp, err := svc.Record(context.Background(), employeeIdentity(3), created.ID, RecordPaymentRequest{
		Amount: decimal.RequireFromString("40.00"),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !resp.PaymentsMade.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("expected running total 40.00, got %s", resp.PaymentsMade)
	}

	resp, err = svc.Record(context.Background(), employeeIdentity(3), created.ID, RecordPaymentRequest{
		Amount: decimal.RequireFromString("60.00"),
	})
	if err != nil {
		t.Fatalf("record remainder: %v", err)
	}
	if resp.Status != enums.PaymentStatusPaid {
		t.Fatalf("fully collected balance should flip to paid, got %s", resp.Status)
	}

	_, err = svc.Record(context.Background(), employeeIdentity(3), created.ID, RecordPaymentRequest{
		Amount: decimal.RequireFromString("0.01"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("overpayment should be a validation error, got %v", err)
	}
}

func TestUpdateCannotDropBelowCollected(t *testing.T) {
	repo := newStubPaymentRepo()
	repo.byID[1] = &models.Payment{
		ID:             1,
		ClientID:       9,
		Method:         enums.PaymentMethodCash,
		EstimatedTotal: decimal.RequireFromString("100.00"),
		PaymentsMade:   decimal.RequireFromString("70.00"),
		Status:         enums.PaymentStatusPending,
	}
	svc := newTestService(t, repo, scopedClients())

	lower := decimal.RequireFromString("50.00")
	_, err := svc.Update(context.Background(), employeeIdentity(3), 1, UpdatePaymentRequest{EstimatedTotal: &lower})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateAdjustsPaymentsMade(t *testing.T) {
	repo := newStubPaymentRepo()
	repo.byID[1] = &models.Payment{
		ID:             1,
		ClientID:       9,
		Method:         enums.PaymentMethodCash,
		EstimatedTotal: decimal.RequireFromString("100.00"),
		PaymentsMade:   decimal.RequireFromString("20.00"),
		Status:         enums.PaymentStatusPending,
	}
	svc := newTestService(t, repo, scopedClients())

	corrected := decimal.RequireFromString("100.00")
	resp, err := svc.Update(context.Background(), employeeIdentity(3), 1, UpdatePaymentRequest{PaymentsMade: &corrected})
	if err != nil {
		t.Fatalf("update payments made: %v", err)
	}
	if resp.Status != enums.PaymentStatusPaid {
		t.Fatalf("a fully corrected balance should flip to paid, got %s", resp.Status)
	}

	excess := decimal.RequireFromString("100.01")
	_, err = svc.Update(context.Background(), employeeIdentity(3), 1, UpdatePaymentRequest{PaymentsMade: &excess})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("correcting past the estimate should be a validation error, got %v", err)
	}
}

func TestUpdateKeepsOriginalPaymentDate(t *testing.T) {
	collected := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	repo := newStubPaymentRepo()
	repo.byID[1] = &models.Payment{
		ID:             1,
		ClientID:       9,
		Method:         enums.PaymentMethodCash,
		EstimatedTotal: decimal.RequireFromString("100.00"),
		PaymentsMade:   decimal.RequireFromString("70.00"),
		PaymentDate:    &collected,
		Status:         enums.PaymentStatusPending,
	}
	svc := newTestService(t, repo, scopedClients())

	card := enums.PaymentMethodCard
	resp, err := svc.Update(context.Background(), employeeIdentity(3), 1, UpdatePaymentRequest{Method: &card})
	if err != nil {
		t.Fatalf("update method: %v", err)
	}
	if resp.PaymentDate == nil || !resp.PaymentDate.Equal(collected) {
		t.Fatalf("editing the method must not move the collection date, got %v", resp.PaymentDate)
	}
}

func TestPaymentScopedByClientBusiness(t *testing.T) {
	repo := newStubPaymentRepo()
	repo.byID[1] = &models.Payment{
		ID:             1,
		ClientID:       9,
		EstimatedTotal: decimal.RequireFromString("10.00"),
		PaymentsMade:   decimal.Zero,
	}
	svc := newTestService(t, repo, scopedClients())

	_, err := svc.Get(context.Background(), employeeIdentity(8), 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant payment read should look like not found, got %v", err)
	}
}

func TestDeletePayment(t *testing.T) {
	repo := newStubPaymentRepo()
	repo.byID[1] = &models.Payment{
		ID:             1,
		ClientID:       9,
		EstimatedTotal: decimal.RequireFromString("10.00"),
		PaymentsMade:   decimal.Zero,
	}
	svc := newTestService(t, repo, scopedClients())

	if err := svc.Delete(context.Background(), employeeIdentity(3), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 1 {
		t.Fatalf("expected hard delete of id 1, got %+v", repo.deleted)
	}
}
