// Package memstore keeps all records in process memory. It backs the server
// when no database is configured and is used by the service tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"casasmart/internal/authz"
	"casasmart/internal/models"
	"casasmart/internal/repositories"
)

type Store struct {
	mu       sync.RWMutex
	quotes   map[uuid.UUID]models.Quote
	projects map[uuid.UUID]models.Project
	invoices map[uuid.UUID]models.Invoice
	bookings map[uuid.UUID]models.Booking
	users    map[uuid.UUID]models.User
}

func New() *Store {
	return &Store{
		quotes:   map[uuid.UUID]models.Quote{},
		projects: map[uuid.UUID]models.Project{},
		invoices: map[uuid.UUID]models.Invoice{},
		bookings: map[uuid.UUID]models.Booking{},
		users:    map[uuid.UUID]models.User{},
	}
}

func (s *Store) Quotes() repositories.QuoteRepository     { return quoteRepo{s} }
func (s *Store) Projects() repositories.ProjectRepository { return projectRepo{s} }
func (s *Store) Invoices() repositories.InvoiceRepository { return invoiceRepo{s} }
func (s *Store) Bookings() repositories.BookingRepository { return bookingRepo{s} }
func (s *Store) Users() repositories.UserRepository       { return userRepo{s} }

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
}

func phoneIn(phone string, candidates []string) bool {
	n := authz.NormalizePhone(phone)
	for _, c := range candidates {
		if c == n {
			return true
		}
	}
	return false
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// ---- quotes ----

type quoteRepo struct{ s *Store }

func cloneQuote(q models.Quote) *models.Quote {
	q.Items = append(models.QuoteItems(nil), q.Items...)
	q.ExpiryDate = cloneTime(q.ExpiryDate)
	q.RejectionReason = cloneString(q.RejectionReason)
	return &q
}

func (r quoteRepo) Create(_ context.Context, q *models.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if _, ok := r.s.quotes[q.ID]; ok {
		return fmt.Errorf("создание котировки: %w", repositories.ErrDuplicate)
	}
	r.s.quotes[q.ID] = *cloneQuote(*q)
	return nil
}

func (r quoteRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q, ok := r.s.quotes[id]
	if !ok {
		return nil, nil
	}
	return cloneQuote(q), nil
}

func (r quoteRepo) Update(_ context.Context, q *models.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.quotes[q.ID]; !ok {
		return notFound("обновление котировки")
	}
	r.s.quotes[q.ID] = *cloneQuote(*q)
	return nil
}

func (r quoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.quotes[id]; !ok {
		return notFound("удаление котировки")
	}
	delete(r.s.quotes, id)
	return nil
}

func (r quoteRepo) List(_ context.Context, f models.QuoteFilter) ([]*models.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var res []*models.Quote
	for _, q := range r.s.quotes {
		if f.Status != nil && q.Status != *f.Status {
			continue
		}
		if f.Scope == models.QuoteScopeActive && q.Status == models.QuoteAccepted {
			continue
		}
		if f.Scope == models.QuoteScopeArchived && q.Status != models.QuoteAccepted {
			continue
		}
		if f.NotExpiredAt != nil && q.IsExpired(*f.NotExpiredAt) {
			continue
		}
		if len(f.Phones) > 0 && !phoneIn(q.CustomerPhone, f.Phones) {
			continue
		}
		res = append(res, cloneQuote(q))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return page(res, f.Limit, f.Offset), nil
}

// ---- projects ----

type projectRepo struct{ s *Store }

func cloneProject(p models.Project) *models.Project {
	p.TechnicianName = cloneString(p.TechnicianName)
	for _, f := range []**time.Time{&p.DateInstallation, &p.DateProgramming, &p.DateQC,
		&p.DateHandover, &p.DateCompleted, &p.DateTerminated} {
		*f = cloneTime(*f)
	}
	for _, f := range []**string{&p.TechPreparation, &p.TechInstallation, &p.TechProgramming,
		&p.TechQC, &p.TechHandover, &p.TerminationReason} {
		*f = cloneString(*f)
	}
	if p.Credentials != nil {
		c := *p.Credentials
		p.Credentials = &c
	}
	return &p
}

func (r projectRepo) Create(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.projects {
		if existing.QuoteID == p.QuoteID {
			return fmt.Errorf("создание проекта: %w", repositories.ErrDuplicate)
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.projects[p.ID] = *cloneProject(*p)
	return nil
}

func (r projectRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	return cloneProject(p), nil
}

func (r projectRepo) GetByQuoteID(_ context.Context, quoteID uuid.UUID) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.projects {
		if p.QuoteID == quoteID {
			return cloneProject(p), nil
		}
	}
	return nil, nil
}

func (r projectRepo) Update(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[p.ID]; !ok {
		return notFound("обновление проекта")
	}
	r.s.projects[p.ID] = *cloneProject(*p)
	return nil
}

func (r projectRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return notFound("удаление проекта")
	}
	delete(r.s.projects, id)
	return nil
}

func (r projectRepo) List(_ context.Context, f models.ProjectFilter) ([]*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var res []*models.Project
	for _, p := range r.s.projects {
		if len(f.Stages) > 0 && !stageIn(p.Stage, f.Stages) {
			continue
		}
		if len(f.Phones) > 0 && !phoneIn(p.CustomerPhone, f.Phones) {
			continue
		}
		res = append(res, cloneProject(p))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return page(res, f.Limit, f.Offset), nil
}

func stageIn(s models.Stage, stages []models.Stage) bool {
	for _, st := range stages {
		if st == s {
			return true
		}
	}
	return false
}

// ---- invoices ----

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) Create(_ context.Context, inv *models.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r invoiceRepo) Update(_ context.Context, inv *models.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.invoices[inv.ID]
	if !ok {
		return notFound("обновление счёта")
	}
	cur.Amount, cur.AmountPaid, cur.Status = inv.Amount, inv.AmountPaid, inv.Status
	r.s.invoices[inv.ID] = cur
	return nil
}

func (r invoiceRepo) sorted(keep func(models.Invoice) bool, newestFirst bool) []*models.Invoice {
	res := []*models.Invoice{}
	for _, inv := range r.s.invoices {
		if keep(inv) {
			c := inv
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if newestFirst {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res
}

func (r invoiceRepo) List(_ context.Context, limit, offset int) ([]*models.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.sorted(func(models.Invoice) bool { return true }, true)
	return page(all, limit, offset), nil
}

func (r invoiceRepo) ListByProjects(_ context.Context, projectIDs []uuid.UUID) ([]*models.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make(map[uuid.UUID]bool, len(projectIDs))
	for _, id := range projectIDs {
		ids[id] = true
	}
	return r.sorted(func(inv models.Invoice) bool { return ids[inv.ProjectID] }, false), nil
}

// ---- bookings ----

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.s.bookings[b.ID] = *b
	return nil
}

func (r bookingRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r bookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return notFound("обновление статуса заявки")
	}
	b.Status = status
	r.s.bookings[id] = b
	return nil
}

func (r bookingRepo) List(_ context.Context, status *models.BookingStatus, limit, offset int) ([]*models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var res []*models.Booking
	for _, b := range r.s.bookings {
		if status != nil && b.Status != *status {
			continue
		}
		c := b
		res = append(res, &c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return page(res, limit, offset), nil
}

// ---- users ----

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := strings.ToLower(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == email {
			return fmt.Errorf("создание пользователя: %w", repositories.ErrDuplicate)
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	c := *u
	c.Email = email
	r.s.users[u.ID] = c
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			c := u
			return &c, nil
		}
	}
	return nil, nil
}
