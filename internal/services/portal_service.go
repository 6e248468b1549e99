package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"casasmart/internal/authz"
	"casasmart/internal/models"
	"casasmart/internal/repositories"
)

const (
	warrantyYears = 2
	// максимум, который отдают репозитории за один запрос
	portalPageSize = 500
)

// stage -> шаг на шкале прогресса (1..5)
var stageIndex = map[models.Stage]int{
	models.StagePreparation:  1,
	models.StageInstallation: 2,
	models.StageProgramming:  3,
	models.StageQC:           4,
	models.StageHandover:     5,
	models.StageCompleted:    5,
}

type WarrantyStatus string

const (
	WarrantyPending WarrantyStatus = "pending"
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
)

type Warranty struct {
	ProjectID   uuid.UUID      `json:"project_id"`
	ProjectType string         `json:"project_type"`
	Status      WarrantyStatus `json:"status"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	DaysLeft    int            `json:"days_left"`
}

// WarrantyFor covers two years from completion; days left are rounded up.
func WarrantyFor(p *models.Project, now time.Time) Warranty {
	w := Warranty{ProjectID: p.ID, ProjectType: p.ProjectType, Status: WarrantyPending}
	if p.DateCompleted == nil {
		return w
	}
	expiry := p.DateCompleted.AddDate(warrantyYears, 0, 0)
	w.ExpiresAt = &expiry
	days := int(math.Ceil(expiry.Sub(now).Hours() / 24))
	if days > 0 {
		w.Status = WarrantyActive
		w.DaysLeft = days
	} else {
		w.Status = WarrantyExpired
	}
	return w
}

type Dashboard struct {
	Project    *models.Project `json:"project"`
	StageIndex int             `json:"stage_index"`
	StageCount int             `json:"stage_count"`
	Warranties []Warranty      `json:"warranties"`
}

type Financials struct {
	ContractValue float64           `json:"total_contract_value"`
	Invoiced      int64             `json:"total_invoiced"`
	Paid          int64             `json:"total_paid"`
	Remaining     float64           `json:"remaining"`
	Invoices      []*models.Invoice `json:"invoices"`
}

// PortalService is the customer side. Every record is checked with authz.PhoneMatches
// against the phone from the caller's token.
type PortalService struct {
	quotes   *QuoteService
	projects repositories.ProjectRepository
	invoices repositories.InvoiceRepository
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewPortalService(quotes *QuoteService, projects repositories.ProjectRepository, invoices repositories.InvoiceRepository, notifier Notifier, log *zap.Logger) *PortalService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &PortalService{quotes: quotes, projects: projects, invoices: invoices, notifier: notifier, log: log, now: time.Now}
}

func callerCandidates(phone string) ([]string, error) {
	c := authz.MatchCandidates(phone)
	if len(c) == 0 {
		return nil, ErrUnauthorized
	}
	return c, nil
}

func (s *PortalService) ListProposals(ctx context.Context, phone string) ([]*models.Quote, error) {
	candidates, err := callerCandidates(phone)
	if err != nil {
		return nil, err
	}
	list, err := s.quotes.Quotes.List(ctx, models.QuoteFilter{Phones: candidates})
	if err != nil {
		return nil, storageErr("list proposals", err)
	}
	res := make([]*models.Quote, 0, len(list))
	for _, q := range list {
		if authz.PhoneMatches(phone, q.CustomerPhone) {
			res = append(res, q)
		}
	}
	return res, nil
}

func (s *PortalService) GetProposal(ctx context.Context, phone string, id uuid.UUID) (*models.Quote, error) {
	q, err := s.quotes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.PhoneMatches(phone, q.CustomerPhone) {
		s.log.Warn("proposal access denied", zap.String("quote_id", id.String()))
		return nil, ErrUnauthorized
	}
	return q, nil
}

func (s *PortalService) decidable(ctx context.Context, phone string, id uuid.UUID) (*models.Quote, error) {
	q, err := s.GetProposal(ctx, phone, id)
	if err != nil {
		return nil, err
	}
	if q.IsExpired(s.now()) {
		return nil, ErrQuoteExpired
	}
	return q, nil
}

func (s *PortalService) AcceptProposal(ctx context.Context, phone string, id uuid.UUID) (*models.Quote, *models.Project, error) {
	q, err := s.decidable(ctx, phone, id)
	if err != nil {
		return nil, nil, err
	}
	q, p, err := s.quotes.accept(ctx, q, ActorCustomer)
	if err != nil {
		return nil, nil, err
	}
	s.notifier.NotifyOps(ctx, "Proposal accepted",
		fmt.Sprintf("%s (%s) accepted quote #%s, grand total %.2f SAR", q.CustomerName, q.CustomerPhone, shortRef(q.ID), q.GrandTotal))
	return q, p, nil
}

func (s *PortalService) RejectProposal(ctx context.Context, phone string, id uuid.UUID, reason string) (*models.Quote, error) {
	q, err := s.decidable(ctx, phone, id)
	if err != nil {
		return nil, err
	}
	q, err = s.quotes.reject(ctx, q, reason, ActorCustomer)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyOps(ctx, "Proposal rejected",
		fmt.Sprintf("%s (%s) rejected quote #%s: %s", q.CustomerName, q.CustomerPhone, shortRef(q.ID), *q.RejectionReason))
	return q, nil
}

func (s *PortalService) ownProjects(ctx context.Context, phone string, stages ...models.Stage) ([]*models.Project, error) {
	candidates, err := callerCandidates(phone)
	if err != nil {
		return nil, err
	}
	// агрегаты считаются по всем проектам, поэтому читаем все страницы
	res := []*models.Project{}
	for offset := 0; ; offset += portalPageSize {
		list, err := s.projects.List(ctx, models.ProjectFilter{
			Phones: candidates,
			Stages: stages,
			Limit:  portalPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, storageErr("list projects", err)
		}
		for _, p := range list {
			if authz.PhoneMatches(phone, p.CustomerPhone) {
				res = append(res, p)
			}
		}
		if len(list) < portalPageSize {
			return res, nil
		}
	}
}

// Vault lists handed-over projects that have credentials.
func (s *PortalService) Vault(ctx context.Context, phone string) ([]*models.Project, error) {
	list, err := s.ownProjects(ctx, phone, models.StageHandover, models.StageCompleted)
	if err != nil {
		return nil, err
	}
	res := make([]*models.Project, 0, len(list))
	for _, p := range list {
		if p.Credentials != nil {
			res = append(res, p)
		}
	}
	return res, nil
}

func (s *PortalService) Financials(ctx context.Context, phone string) (*Financials, error) {
	list, err := s.ownProjects(ctx, phone)
	if err != nil {
		return nil, err
	}
	f := &Financials{Invoices: []*models.Invoice{}}
	ids := make([]uuid.UUID, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
		q, err := s.quotes.Quotes.GetByID(ctx, p.QuoteID)
		if err != nil {
			return nil, storageErr("get quote", err)
		}
		if q != nil {
			f.ContractValue += q.GrandTotal
		}
	}
	invoices, err := s.invoices.ListByProjects(ctx, ids)
	if err != nil {
		return nil, storageErr("list invoices", err)
	}
	for _, inv := range invoices {
		f.Invoiced += inv.Amount
		f.Paid += inv.AmountPaid
		f.Invoices = append(f.Invoices, inv)
	}
	f.Remaining = f.ContractValue - float64(f.Paid)
	return f, nil
}

func (s *PortalService) Dashboard(ctx context.Context, phone string) (*Dashboard, error) {
	list, err := s.ownProjects(ctx, phone)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{StageCount: len(models.Pipeline), Warranties: []Warranty{}}
	now := s.now()
	for _, p := range list {
		// список отсортирован по created_at desc
		if d.Project == nil {
			d.Project = p
			d.StageIndex = stageIndex[p.Stage]
		}
		if p.DateCompleted != nil {
			d.Warranties = append(d.Warranties, WarrantyFor(p, now))
		}
	}
	return d, nil
}

func shortRef(id uuid.UUID) string {
	return id.String()[:8]
}

// InvoiceDocument returns an invoice of one of the caller's projects for rendering.
func (s *PortalService) InvoiceDocument(ctx context.Context, phone string, id uuid.UUID) (*models.Invoice, *models.Project, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storageErr("get invoice", err)
	}
	if inv == nil {
		return nil, nil, ErrNotFound
	}
	p, err := s.projects.GetByID(ctx, inv.ProjectID)
	if err != nil {
		return nil, nil, storageErr("get project", err)
	}
	if p == nil || !authz.PhoneMatches(phone, p.CustomerPhone) {
		return nil, nil, ErrUnauthorized
	}
	return inv, p, nil
}
