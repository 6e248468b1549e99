package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"casasmart/internal/metrics"
	"casasmart/internal/models"
	"casasmart/internal/repositories"
)

const (
	ActorOperator = "operator"
	ActorCustomer = "customer"
)

// QuoteInput is the editable part of a quote.
type QuoteInput struct {
	CustomerName  string            `json:"customer_name" binding:"required"`
	CustomerPhone string            `json:"customer_phone"`
	ProjectType   string            `json:"project_type"`
	Items         models.QuoteItems `json:"items"`
}

type QuoteService struct {
	Quotes   repositories.QuoteRepository
	Projects repositories.ProjectRepository
	Invoices repositories.InvoiceRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewQuoteService(quotes repositories.QuoteRepository, projects repositories.ProjectRepository, invoices repositories.InvoiceRepository, log *zap.Logger) *QuoteService {
	return &QuoteService{Quotes: quotes, Projects: projects, Invoices: invoices, log: log, now: time.Now}
}

func (s *QuoteService) price(q *models.Quote, in QuoteInput) error {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return invalid("customer_name", "is required")
	}
	projectType := strings.ToLower(strings.TrimSpace(in.ProjectType))
	if projectType == "" {
		projectType = "villa"
	}
	items, err := PriceItems(in.Items)
	if err != nil {
		return err
	}
	items = ApplySoftwareFee(items, projectType)
	t := ComputeTotals(items)

	q.CustomerName = name
	q.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	q.ProjectType = projectType
	q.Items = items
	q.TotalCost = t.TotalCost
	q.TotalProfit = t.TotalProfit
	q.VATAmount = t.VATAmount
	q.GrandTotal = t.GrandTotal
	return nil
}

// Create prices a new draft quote that expires one month from now.
func (s *QuoteService) Create(ctx context.Context, in QuoteInput) (*models.Quote, error) {
	q := &models.Quote{ID: uuid.New(), Status: models.QuoteDraft}
	if err := s.price(q, in); err != nil {
		return nil, err
	}
	now := s.now()
	expiry := now.AddDate(0, 1, 0)
	q.ExpiryDate = &expiry
	q.CreatedAt, q.UpdatedAt = now, now
	if err := s.Quotes.Create(ctx, q); err != nil {
		return nil, storageErr("create quote", err)
	}
	return q, nil
}

// Update re-prices the quote and puts it back to draft; the expiry date is kept.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, in QuoteInput) (*models.Quote, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == models.QuoteAccepted {
		// проект уже создан: сначала Revoke
		return nil, ErrInvalidTransition
	}
	if err := s.price(q, in); err != nil {
		return nil, err
	}
	q.Status = models.QuoteDraft
	q.UpdatedAt = s.now()
	if err := s.Quotes.Update(ctx, q); err != nil {
		return nil, storageErr("update quote", err)
	}
	return q, nil
}

func (s *QuoteService) Get(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	q, err := s.Quotes.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get quote", err)
	}
	if q == nil {
		return nil, ErrNotFound
	}
	return q, nil
}

// ListOptions are the listing switches exposed to operators.
type ListOptions struct {
	Status         string
	Archived       bool
	IncludeExpired bool
	Limit, Offset  int
}

// List returns active quotes by default: not accepted and not expired.
func (s *QuoteService) List(ctx context.Context, opt ListOptions) ([]*models.Quote, error) {
	f := models.QuoteFilter{Scope: models.QuoteScopeActive, Limit: opt.Limit, Offset: opt.Offset}
	if opt.Archived {
		f.Scope = models.QuoteScopeArchived
	}
	if opt.Status != "" {
		st := models.QuoteStatus(opt.Status)
		if _, ok := QuoteTransitions[opt.Status]; !ok {
			return nil, invalid("status", "unknown quote status")
		}
		f.Status = &st
	}
	if !opt.IncludeExpired && !opt.Archived {
		now := s.now()
		f.NotExpiredAt = &now
	}
	quotes, err := s.Quotes.List(ctx, f)
	if err != nil {
		return nil, storageErr("list quotes", err)
	}
	return quotes, nil
}

func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	p, err := s.Projects.GetByQuoteID(ctx, q.ID)
	if err != nil {
		return storageErr("get project by quote", err)
	}
	if p != nil {
		return ErrInvalidTransition
	}
	return storageErr("delete quote", s.Quotes.Delete(ctx, id))
}

func (s *QuoteService) Send(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(string(q.Status), string(models.QuoteSent), QuoteTransitions) {
		return nil, ErrInvalidTransition
	}
	q.Status = models.QuoteSent
	q.UpdatedAt = s.now()
	if err := s.Quotes.Update(ctx, q); err != nil {
		return nil, storageErr("send quote", err)
	}
	return q, nil
}

// Accept promotes the quote into a project in preparation. At most one project per quote:
// the pre-check gives a clean error, the unique index on projects.quote_id closes the race.
func (s *QuoteService) Accept(ctx context.Context, id uuid.UUID) (*models.Quote, *models.Project, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return s.accept(ctx, q, ActorOperator)
}

func (s *QuoteService) accept(ctx context.Context, q *models.Quote, actor string) (*models.Quote, *models.Project, error) {
	existing, err := s.Projects.GetByQuoteID(ctx, q.ID)
	if err != nil {
		return nil, nil, storageErr("get project by quote", err)
	}
	if existing != nil {
		return nil, nil, ErrDuplicateProject
	}
	if !canTransition(string(q.Status), string(models.QuoteAccepted), QuoteTransitions) {
		return nil, nil, ErrInvalidTransition
	}

	now := s.now()
	p := &models.Project{
		ID:            uuid.New(),
		QuoteID:       q.ID,
		CustomerName:  q.CustomerName,
		CustomerPhone: q.CustomerPhone,
		ProjectType:   q.ProjectType,
		Stage:         models.StagePreparation,
		CreatedAt:     now,
	}
	if err := s.Projects.Create(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, ErrDuplicateProject
		}
		return nil, nil, storageErr("create project", err)
	}

	prev := *q
	q.Status = models.QuoteAccepted
	q.ExpiryDate = nil
	q.RejectionReason = nil
	q.UpdatedAt = now
	if err := s.Quotes.Update(ctx, q); err != nil {
		if delErr := s.Projects.Delete(ctx, p.ID); delErr != nil { // best-effort rollback
			s.log.Error("rollback of project failed",
				zap.String("project_id", p.ID.String()), zap.Error(delErr))
		}
		*q = prev
		return nil, nil, storageErr("accept quote", err)
	}

	metrics.IncrementQuoteDecision("accepted", actor)
	s.log.Info("quote accepted",
		zap.String("quote_id", q.ID.String()),
		zap.String("project_id", p.ID.String()),
		zap.String("actor", actor))
	return q, p, nil
}

func (s *QuoteService) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Quote, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reject(ctx, q, reason, ActorOperator)
}

func (s *QuoteService) reject(ctx context.Context, q *models.Quote, reason, actor string) (*models.Quote, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	if !canTransition(string(q.Status), string(models.QuoteRejected), QuoteTransitions) {
		return nil, ErrInvalidTransition
	}
	q.Status = models.QuoteRejected
	q.RejectionReason = &reason
	q.UpdatedAt = s.now()
	if err := s.Quotes.Update(ctx, q); err != nil {
		return nil, storageErr("reject quote", err)
	}
	metrics.IncrementQuoteDecision("rejected", actor)
	s.log.Info("quote rejected", zap.String("quote_id", q.ID.String()), zap.String("actor", actor))
	return q, nil
}

// Revoke deletes a not-yet-started project and puts the quote back to draft.
func (s *QuoteService) Revoke(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.Projects.GetByQuoteID(ctx, q.ID)
	if err != nil {
		return nil, storageErr("get project by quote", err)
	}
	if p != nil {
		if p.Stage != models.StagePreparation {
			return nil, ErrWorkAlreadyStarted
		}
		// выставленный счёт тоже считается началом работ
		invoices, err := s.Invoices.ListByProjects(ctx, []uuid.UUID{p.ID})
		if err != nil {
			return nil, storageErr("list project invoices", err)
		}
		if len(invoices) > 0 {
			return nil, ErrWorkAlreadyStarted
		}
		if err := s.Projects.Delete(ctx, p.ID); err != nil {
			return nil, storageErr("delete project", err)
		}
	}

	q.Status = models.QuoteDraft
	q.UpdatedAt = s.now()
	if err := s.Quotes.Update(ctx, q); err != nil {
		return nil, storageErr("revoke quote", err)
	}
	metrics.IncrementQuoteDecision("revoked", ActorOperator)
	return q, nil
}
