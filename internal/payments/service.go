package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"gorm.io/gorm"
)

const overpaymentMessage = "payments made cannot exceed the estimated total"

// Service tracks money collected against client balances. The store keeps
// the same rule as the service (payments_made <= estimated_total) so a
// racing overpayment loses at the database too. Status is derived on every
// write: paid when the balance is fully collected, pending otherwise.
type Service interface {
	Create(ctx context.Context, identity middleware.Identity, req CreatePaymentRequest) (*PaymentResponse, error)
	Get(ctx context.Context, identity middleware.Identity, id int64) (*PaymentResponse, error)
	ListByClient(ctx context.Context, identity middleware.Identity, clientID int64) (*ListPaymentsResponse, error)
	Record(ctx context.Context, identity middleware.Identity, id int64, req RecordPaymentRequest) (*PaymentResponse, error)
	Update(ctx context.Context, identity middleware.Identity, id int64, req UpdatePaymentRequest) (*PaymentResponse, error)
	Delete(ctx context.Context, identity middleware.Identity, id int64) error
}

type service struct {
	repo    paymentRepository
	clients clientReader
	now     func() time.Time
}

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, id int64) (*models.Payment, error)
	ListByClient(ctx context.Context, clientID int64) ([]models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id int64) error
}

type clientReader interface {
	FindByID(ctx context.Context, id int64) (*models.Client, error)
}

// ServiceParams bundles the dependencies required to build a payments service.
type ServiceParams struct {
	PaymentRepo paymentRepository
	ClientRepo  clientReader
	Now         func() time.Time
}

// NewService constructs a payments service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.PaymentRepo == nil {
		return nil, fmt.Errorf("payment repository is required")
	}
	if params.ClientRepo == nil {
		return nil, fmt.Errorf("client repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.PaymentRepo,
		clients: params.ClientRepo,
		now:     now,
	}, nil
}

func (s *service) Create(ctx context.Context, identity middleware.Identity, req CreatePaymentRequest) (*PaymentResponse, error) {
	client, err := s.findScopedClient(ctx, identity, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "client is deactivated")
	}

	if !req.EstimatedTotal.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated total must be positive")
	}
	if req.PaymentsMade.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payments made must not be negative")
	}
	if req.PaymentsMade.GreaterThan(req.EstimatedTotal) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, overpaymentMessage)
	}

	payment := &models.Payment{
		ClientID:       client.ID,
		Method:         req.Method,
		EstimatedTotal: req.EstimatedTotal,
		PaymentsMade:   req.PaymentsMade,
	}
	if req.PaymentDate != nil {
		collectedAt := req.PaymentDate.UTC()
		payment.PaymentDate = &collectedAt
	}
	s.applyDerivedState(payment)

	created, err := s.repo.Create(ctx, payment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return toPaymentResponse(created), nil
}

func (s *service) Get(ctx context.Context, identity middleware.Identity, id int64) (*PaymentResponse, error) {
	payment, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

func (s *service) ListByClient(ctx context.Context, identity middleware.Identity, clientID int64) (*ListPaymentsResponse, error) {
	if _, err := s.findScopedClient(ctx, identity, clientID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}

	out := make([]PaymentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toPaymentResponse(&rows[i]))
	}
	return &ListPaymentsResponse{Payments: out}, nil
}

// Record adds a collected amount. The new running total must stay within
// the estimated total or the whole call is rejected.
func (s *service) Record(ctx context.Context, identity middleware.Identity, id int64, req RecordPaymentRequest) (*PaymentResponse, error) {
	payment, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	newTotal := payment.PaymentsMade.Add(req.Amount)
	if newTotal.GreaterThan(payment.EstimatedTotal) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, overpaymentMessage)
	}

	payment.PaymentsMade = newTotal
	collectedAt := s.now().UTC()
	payment.PaymentDate = &collectedAt
	s.applyDerivedState(payment)

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
	}
	return toPaymentResponse(payment), nil
}

func (s *service) Update(ctx context.Context, identity middleware.Identity, id int64, req UpdatePaymentRequest) (*PaymentResponse, error) {
	payment, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if req.Method != nil {
		payment.Method = *req.Method
	}
	if req.EstimatedTotal != nil {
		if !req.EstimatedTotal.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated total must be positive")
		}
		payment.EstimatedTotal = *req.EstimatedTotal
	}
	if req.PaymentsMade != nil {
		if req.PaymentsMade.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payments made must not be negative")
		}
		payment.PaymentsMade = *req.PaymentsMade
	}
	if payment.PaymentsMade.GreaterThan(payment.EstimatedTotal) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, overpaymentMessage)
	}
	s.applyDerivedState(payment)

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
	}
	return toPaymentResponse(payment), nil
}

// Delete removes the balance outright. Money records follow the explicit
// delete rule rather than the soft-delete flag the directory entities use.
func (s *service) Delete(ctx context.Context, identity middleware.Identity, id int64) error {
	if _, err := s.findScoped(ctx, identity, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete payment")
	}
	return nil
}

func (s *service) applyDerivedState(payment *models.Payment) {
	if payment.PaymentsMade.Equal(payment.EstimatedTotal) && payment.EstimatedTotal.IsPositive() {
		payment.Status = enums.PaymentStatusPaid
	} else {
		payment.Status = enums.PaymentStatusPending
	}
	// The collection date is stamped once money arrives and then left alone;
	// later writes must not move it. Record restamps explicitly.
	if payment.PaymentDate == nil && payment.PaymentsMade.IsPositive() {
		paidAt := s.now().UTC()
		payment.PaymentDate = &paidAt
	}
}

func (s *service) findScoped(ctx context.Context, identity middleware.Identity, id int64) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup payment")
	}
	if _, err := s.findScopedClient(ctx, identity, payment.ClientID); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) findScopedClient(ctx context.Context, identity middleware.Identity, clientID int64) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client")
	}
	if !identity.IsAdmin() && identity.BusinessID != client.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	return client, nil
}

func toPaymentResponse(payment *models.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:             payment.ID,
		ClientID:       payment.ClientID,
		Method:         payment.Method,
		EstimatedTotal: payment.EstimatedTotal,
		PaymentsMade:   payment.PaymentsMade,
		PaymentDate:    payment.PaymentDate,
		Status:         payment.Status,
		CreatedAt:      payment.CreatedAt,
		UpdatedAt:      payment.UpdatedAt,
	}
}
