package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetworks/workorder-api/internal/models"
)

// MemoryStore is the storage fallback used when no database is configured.
// The per-entity repositories below share one store and satisfy the same
// interfaces as the sqlx repositories, so the services do not care which backs
// them. Ordering by creation time and id uniqueness match Postgres behaviour.
type MemoryStore struct {
	mu            sync.RWMutex
	requests      map[int]models.MaintenanceRequest
	invoices      map[int]models.Invoice
	users         map[string]models.User
	nextRequestID int
	nextInvoiceID int
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests:      make(map[int]models.MaintenanceRequest),
		invoices:      make(map[int]models.Invoice),
		users:         make(map[string]models.User),
		nextRequestID: 1,
		nextInvoiceID: 1,
	}
}

// Requests returns the request repository view of the store.
func (s *MemoryStore) Requests() *MemoryRequestRepository {
	return &MemoryRequestRepository{store: s}
}

// Invoices returns the invoice repository view of the store.
func (s *MemoryStore) Invoices() *MemoryInvoiceRepository {
	return &MemoryInvoiceRepository{store: s}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{store: s}
}

// MemoryRequestRepository implements request persistence over the store.
type MemoryRequestRepository struct {
	store *MemoryStore
}

// Create inserts a new request and assigns its id.
func (r *MemoryRequestRepository) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	req.ID = s.nextRequestID
	s.nextRequestID++
	req.CreatedAt = now
	req.UpdatedAt = now
	s.requests[req.ID] = cloneRequest(*req)
	return nil
}

// List returns requests ordered by creation time ascending.
func (r *MemoryRequestRepository) List(ctx context.Context) ([]models.MaintenanceRequest, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MaintenanceRequest, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// FindByID fetches a single request.
func (r *MemoryRequestRepository) FindByID(ctx context.Context, id int) (*models.MaintenanceRequest, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := cloneRequest(req)
	return &clone, nil
}

// Update replaces the stored record with the merged one.
func (r *MemoryRequestRepository) Update(ctx context.Context, req *models.MaintenanceRequest) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; !ok {
		return sql.ErrNoRows
	}
	req.UpdatedAt = time.Now().UTC()
	s.requests[req.ID] = cloneRequest(*req)
	return nil
}

// Delete removes a request. Its invoice is kept.
func (r *MemoryRequestRepository) Delete(ctx context.Context, id int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.requests, id)
	return nil
}

// MemoryInvoiceRepository implements invoice persistence over the store.
type MemoryInvoiceRepository struct {
	store *MemoryStore
}

// Create inserts a new invoice and assigns its id.
func (r *MemoryInvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	inv.ID = s.nextInvoiceID
	s.nextInvoiceID++
	inv.CreatedAt = now
	inv.UpdatedAt = now
	s.invoices[inv.ID] = *inv
	return nil
}

// List returns invoices ordered by creation time ascending.
func (r *MemoryInvoiceRepository) List(ctx context.Context) ([]models.Invoice, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// FindByID fetches a single invoice.
func (r *MemoryInvoiceRepository) FindByID(ctx context.Context, id int) (*models.Invoice, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := inv
	return &clone, nil
}

// FindByRequestID returns the invoice tied to a request, if any.
func (r *MemoryInvoiceRepository) FindByRequestID(ctx context.Context, requestID int) (*models.Invoice, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Invoice
	for id := range s.invoices {
		inv := s.invoices[id]
		if inv.RequestID == requestID && (found == nil || inv.ID < found.ID) {
			found = &inv
		}
	}
	if found == nil {
		return nil, sql.ErrNoRows
	}
	clone := *found
	return &clone, nil
}

// Update replaces the stored invoice with the merged one.
func (r *MemoryInvoiceRepository) Update(ctx context.Context, inv *models.Invoice) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[inv.ID]; !ok {
		return sql.ErrNoRows
	}
	inv.UpdatedAt = time.Now().UTC()
	s.invoices[inv.ID] = *inv
	return nil
}

// MemoryUserRepository implements staff accounts over the store.
type MemoryUserRepository struct {
	store *MemoryStore
}

// FindByEmail fetches a staff account by email.
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create inserts a staff account.
func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func cloneRequest(req models.MaintenanceRequest) models.MaintenanceRequest {
	if req.Checklist != nil {
		req.Checklist = append(models.Checklist(nil), req.Checklist...)
	}
	return req
}
