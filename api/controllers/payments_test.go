package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/internal/payments"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type stubPaymentService struct {
	created   *payments.PaymentResponse
	createErr error
	recorded  *payments.PaymentResponse
	recordErr error
}

func (s *stubPaymentService) Create(context.Context, middleware.Identity, payments.CreatePaymentRequest) (*payments.PaymentResponse, error) {
	return s.created, s.createErr
}

func (s *stubPaymentService) Get(context.Context, middleware.Identity, int64) (*payments.PaymentResponse, error) {
	panic("unimplemented")
}

func (s *stubPaymentService) ListByClient(context.Context, middleware.Identity, int64) (*payments.ListPaymentsResponse, error) {
	panic("unimplemented")
}

func (s *stubPaymentService) Record(context.Context, middleware.Identity, int64, payments.RecordPaymentRequest) (*payments.PaymentResponse, error) {
	return s.recorded, s.recordErr
}

func (s *stubPaymentService) Update(context.Context, middleware.Identity, int64, payments.UpdatePaymentRequest) (*payments.PaymentResponse, error) {
	panic("unimplemented")
}

func (s *stubPaymentService) Delete(context.Context, middleware.Identity, int64) error {
	panic("unimplemented")
}

func TestPaymentCreateCreated(t *testing.T) {
	svc := &stubPaymentService{created: &payments.PaymentResponse{
		ID:             4,
		ClientID:       9,
		Method:         enums.PaymentMethodCash,
		EstimatedTotal: decimal.RequireFromString("120.00"),
		PaymentsMade:   decimal.RequireFromString("120.00"),
		Status:         enums.PaymentStatusPaid,
	}}
	handler := PaymentCreate(svc, nil)

	body := `{"client_id":9,"method":"cash","estimated_total":"120.00","payments_made":"120.00"}`
	req := testIdentityContext(httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data payments.PaymentResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.PaymentStatusPaid {
		t.Fatalf("expected paid status, got %s", envelope.Data.Status)
	}
}

func TestPaymentCreateOverpaymentRejected(t *testing.T) {
	svc := &stubPaymentService{createErr: pkgerrors.New(pkgerrors.CodeValidation, "payments made cannot exceed the estimated total")}
	handler := PaymentCreate(svc, nil)

	body := `{"client_id":9,"method":"cash","estimated_total":"100.00","payments_made":"150.00"}`
	req := testIdentityContext(httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentCreateRejectsUnknownMethod(t *testing.T) {
	handler := PaymentCreate(&stubPaymentService{}, nil)

	body := `{"client_id":9,"method":"barter","estimated_total":"100.00"}`
	req := testIdentityContext(httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentRecord(t *testing.T) {
	svc := &stubPaymentService{recorded: &payments.PaymentResponse{
		ID:             4,
		ClientID:       9,
		PaymentsMade:   decimal.RequireFromString("40.00"),
		EstimatedTotal: decimal.RequireFromString("100.00"),
		Status:         enums.PaymentStatusPending,
	}}

	router := newParamRouter("/api/v1/payments/{paymentId}/record", http.MethodPost, PaymentRecord(svc, nil))
	req := testIdentityContext(httptest.NewRequest(http.MethodPost, "/api/v1/payments/4/record", strings.NewReader(`{"amount":"40.00"}`)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
