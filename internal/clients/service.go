package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/angelmondragon/salonflow-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	displayCodePrefix      = "CLI"
	displayCodeMaxAttempts = 3
)

// Service manages customer records within a business, including notes and
// the per-business CLI-NNN display codes.
type Service interface {
	Create(ctx context.Context, identity middleware.Identity, req CreateClientRequest) (*ClientResponse, error)
	Get(ctx context.Context, identity middleware.Identity, id int64) (*ClientResponse, error)
	GetByDisplayCode(ctx context.Context, identity middleware.Identity, code string) (*ClientResponse, error)
	List(ctx context.Context, identity middleware.Identity, req ListClientsRequest) (*ListClientsResponse, error)
	Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateClientRequest) (*ClientResponse, error)
	Deactivate(ctx context.Context, identity middleware.Identity, id int64) error
	AddNote(ctx context.Context, identity middleware.Identity, clientID int64, req AddNoteRequest) (*NoteResponse, error)
	ListNotes(ctx context.Context, identity middleware.Identity, clientID int64) (*ListNotesResponse, error)
}

type service struct {
	tx      txRunner
	repo    clientRepository
	notes   noteRepository
	history historyRecorder
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type clientRepository interface {
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	FindByID(ctx context.Context, id int64) (*models.Client, error)
	FindByDisplayCode(ctx context.Context, businessID int64, code string) (*models.Client, error)
	List(ctx context.Context, businessID int64, search string, limit int, cursor *pagination.Cursor) ([]models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	SetActive(ctx context.Context, id int64, active bool) error
	MaxDisplaySequence(ctx context.Context, businessID int64) (int, error)
}

type noteRepository interface {
	WithTx(tx *gorm.DB) noteRepository
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	ListByClient(ctx context.Context, clientID int64) ([]models.Note, error)
}

type historyRecorder interface {
	RecordTx(ctx context.Context, tx *gorm.DB, entry *models.ServiceHistory) error
}

// ServiceParams bundles the dependencies required to build a clients service.
type ServiceParams struct {
	TxRunner   txRunner
	ClientRepo clientRepository
	NoteRepo   noteRepository
	History    historyRecorder
}

// NewService constructs a clients service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.ClientRepo == nil {
		return nil, fmt.Errorf("client repository is required")
	}
	if params.NoteRepo == nil {
		return nil, fmt.Errorf("note repository is required")
	}
	if params.History == nil {
		return nil, fmt.Errorf("history recorder is required")
	}
	return &service{
		tx:      params.TxRunner,
		repo:    params.ClientRepo,
		notes:   params.NoteRepo,
		history: params.History,
	}, nil
}

func (s *service) Create(ctx context.Context, identity middleware.Identity, req CreateClientRequest) (*ClientResponse, error) {
	businessID := identity.BusinessID
	if businessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}

	client := &models.Client{
		BusinessID: businessID,
		Name:       strings.TrimSpace(req.Name),
		Phone:      req.Phone,
		NationalID: req.NationalID,
		Email:      req.Email,
		IsActive:   true,
	}

	// The display code race loses to the unique index; take a fresh
	// sequence number and retry a bounded number of times.
	var created *models.Client
	for attempt := 0; attempt < displayCodeMaxAttempts; attempt++ {
		seq, err := s.repo.MaxDisplaySequence(ctx, businessID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "next display code")
		}
		client.DisplayCode = formatDisplayCode(seq + 1 + attempt)

		created, err = s.repo.Create(ctx, client)
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, "uq_clients_business_display_code") {
			created = nil
			continue
		}
		if db.IsUniqueViolation(err, "national_id") || db.IsUniqueViolation(err, "email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a client with this national id or email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not assign a display code, retry the request")
	}

	return toClientResponse(created), nil
}

func (s *service) Get(ctx context.Context, identity middleware.Identity, id int64) (*ClientResponse, error) {
	client, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

func (s *service) GetByDisplayCode(ctx context.Context, identity middleware.Identity, code string) (*ClientResponse, error) {
	if identity.BusinessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}
	client, err := s.repo.FindByDisplayCode(ctx, identity.BusinessID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client")
	}
	return toClientResponse(client), nil
}

func (s *service) List(ctx context.Context, identity middleware.Identity, req ListClientsRequest) (*ListClientsResponse, error) {
	if identity.BusinessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}

	cursor, err := pagination.ParseCursor(req.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(req.Limit)

	rows, err := s.repo.List(ctx, identity.BusinessID, strings.TrimSpace(req.Search), pagination.LimitWithBuffer(req.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}

	nextCursor := ""
	if len(rows) > limit {
		last := rows[limit-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}

	out := make([]ClientResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toClientResponse(&rows[i]))
	}
	return &ListClientsResponse{Clients: out, NextCursor: nextCursor}, nil
}

func (s *service) Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "client is deactivated")
	}

	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		client.Phone = req.Phone
	}
	if req.NationalID != nil {
		client.NationalID = req.NationalID
	}
	if req.Email != nil {
		client.Email = req.Email
	}

	if err := s.repo.Update(ctx, client); err != nil {
		if db.IsUniqueViolation(err, "national_id") || db.IsUniqueViolation(err, "email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a client with this national id or email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	return toClientResponse(client), nil
}

func (s *service) Deactivate(ctx context.Context, identity middleware.Identity, id int64) error {
	if _, err := s.findScoped(ctx, identity, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate client")
	}
	return nil
}

// AddNote stores the note and its history trail entry atomically.
func (s *service) AddNote(ctx context.Context, identity middleware.Identity, clientID int64, req AddNoteRequest) (*NoteResponse, error) {
	client, err := s.findScoped(ctx, identity, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "client is deactivated")
	}

	note := &models.Note{
		ClientID:    client.ID,
		Description: strings.TrimSpace(req.Description),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.notes.WithTx(tx).Create(ctx, note)
		if err != nil {
			return err
		}
		noteID := created.ID
		return s.history.RecordTx(ctx, tx, &models.ServiceHistory{
			ClientID: client.ID,
			NoteID:   &noteID,
			Summary:  fmt.Sprintf("note added to %s", client.DisplayCode),
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add note")
	}

	return toNoteResponse(note), nil
}

func (s *service) ListNotes(ctx context.Context, identity middleware.Identity, clientID int64) (*ListNotesResponse, error) {
	if _, err := s.findScoped(ctx, identity, clientID); err != nil {
		return nil, err
	}

	rows, err := s.notes.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notes")
	}

	out := make([]NoteResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toNoteResponse(&rows[i]))
	}
	return &ListNotesResponse{Notes: out}, nil
}

func (s *service) findScoped(ctx context.Context, identity middleware.Identity, id int64) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
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

func formatDisplayCode(seq int) string {
	return fmt.Sprintf("%s-%03d", displayCodePrefix, seq)
}

func toClientResponse(client *models.Client) *ClientResponse {
	return &ClientResponse{
		ID:          client.ID,
		BusinessID:  client.BusinessID,
		DisplayCode: client.DisplayCode,
		Name:        client.Name,
		Phone:       client.Phone,
		NationalID:  client.NationalID,
		Email:       client.Email,
		IsActive:    client.IsActive,
		CreatedAt:   client.CreatedAt,
		UpdatedAt:   client.UpdatedAt,
	}
}

func toNoteResponse(note *models.Note) *NoteResponse {
	return &NoteResponse{
		ID:          note.ID,
		ClientID:    note.ClientID,
		Description: note.Description,
		CreatedAt:   note.CreatedAt,
	}
}
