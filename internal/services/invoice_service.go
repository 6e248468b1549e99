package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"casasmart/internal/metrics"
	"casasmart/internal/models"
	"casasmart/internal/repositories"
)

// Payment schedule: 40% advance, 40% on installation, 20% on handover.
var scheduleShare = map[models.InvoiceType]float64{
	models.InvoiceDownPayment:  0.40,
	models.InvoiceInstallation: 0.40,
	models.InvoiceHandover:     0.20,
}

var refSuffix = map[models.InvoiceType]string{
	models.InvoiceDownPayment:  "DP",
	models.InvoiceInstallation: "INST",
	models.InvoiceHandover:     "FNL",
	models.InvoiceCustom:       "CUST",
}

// ComputeInvoiceAmount returns the rounded SAR amount for an invoice type.
// custom is only read for the custom type and must be positive.
func ComputeInvoiceAmount(grandTotal float64, t models.InvoiceType, custom *int64) (int64, error) {
	if t == models.InvoiceCustom {
		if custom == nil || *custom <= 0 {
			return 0, ErrInvalidAmount
		}
		return *custom, nil
	}
	share, ok := scheduleShare[t]
	if !ok {
		return 0, invalid("type", "unknown invoice type")
	}
	amount := int64(math.Round(grandTotal * share))
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// InvoiceRef builds INV-<first 4 of id, upper>-<suffix>.
func InvoiceRef(projectID uuid.UUID, t models.InvoiceType) string {
	return fmt.Sprintf("INV-%s-%s", strings.ToUpper(projectID.String()[:4]), refSuffix[t])
}

type InvoiceService struct {
	Invoices repositories.InvoiceRepository
	Projects repositories.ProjectRepository
	Quotes   repositories.QuoteRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewInvoiceService(invoices repositories.InvoiceRepository, projects repositories.ProjectRepository, quotes repositories.QuoteRepository, log *zap.Logger) *InvoiceService {
	return &InvoiceService{Invoices: invoices, Projects: projects, Quotes: quotes, log: log, now: time.Now}
}

// IssueRequest is the operator's input for a new invoice.
type IssueRequest struct {
	Type         models.InvoiceType `json:"type" binding:"required"`
	CustomAmount *int64             `json:"custom_amount"`
}

func (s *InvoiceService) Issue(ctx context.Context, projectID uuid.UUID, req IssueRequest) (*models.Invoice, error) {
	if _, ok := refSuffix[req.Type]; !ok {
		return nil, invalid("type", "must be down_payment, installation, handover or custom")
	}
	p, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, storageErr("get project", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}

	var grandTotal float64
	if req.Type != models.InvoiceCustom {
		q, err := s.Quotes.GetByID(ctx, p.QuoteID)
		if err != nil {
			return nil, storageErr("get quote", err)
		}
		if q == nil {
			return nil, ErrNotFound
		}
		grandTotal = q.GrandTotal
	}
	amount, err := ComputeInvoiceAmount(grandTotal, req.Type, req.CustomAmount)
	if err != nil {
		return nil, err
	}

	inv := &models.Invoice{
		ID:         uuid.New(),
		ProjectID:  p.ID,
		InvoiceRef: InvoiceRef(p.ID, req.Type),
		Type:       req.Type,
		Amount:     amount,
		Status:     models.InvoiceUnpaid,
		CreatedAt:  s.now(),
	}
	if err := s.Invoices.Create(ctx, inv); err != nil {
		return nil, storageErr("create invoice", err)
	}
	metrics.RecordInvoiceIssued(string(inv.Type), inv.Amount)
	s.log.Info("invoice issued",
		zap.String("invoice_ref", inv.InvoiceRef),
		zap.String("project_id", p.ID.String()),
		zap.Int64("amount", inv.Amount))
	return inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	inv, err := s.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get invoice", err)
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	return inv, nil
}

// Document returns an invoice with its project, for rendering.
func (s *InvoiceService) Document(ctx context.Context, id uuid.UUID) (*models.Invoice, *models.Project, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.Projects.GetByID(ctx, inv.ProjectID)
	if err != nil {
		return nil, nil, storageErr("get project", err)
	}
	if p == nil {
		return nil, nil, ErrNotFound
	}
	return inv, p, nil
}

func (s *InvoiceService) List(ctx context.Context, limit, offset int) ([]*models.Invoice, error) {
	list, err := s.Invoices.List(ctx, limit, offset)
	if err != nil {
		return nil, storageErr("list invoices", err)
	}
	return list, nil
}

func (s *InvoiceService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Invoice, error) {
	list, err := s.Invoices.ListByProjects(ctx, []uuid.UUID{projectID})
	if err != nil {
		return nil, storageErr("list project invoices", err)
	}
	return list, nil
}

// RecordPayment adds a received amount; the total paid cannot exceed the invoice amount.
func (s *InvoiceService) RecordPayment(ctx context.Context, id uuid.UUID, amount int64) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.AmountPaid+amount > inv.Amount {
		return nil, invalid("amount", fmt.Sprintf("exceeds the remaining balance (%d SAR)", inv.Balance()))
	}
	inv.AmountPaid += amount
	inv.Status = models.PaymentStatus(inv.Amount, inv.AmountPaid)
	if err := s.Invoices.Update(ctx, inv); err != nil {
		return nil, storageErr("record payment", err)
	}
	return inv, nil
}

// Adjust overwrites both amounts, e.g. after a renegotiation.
func (s *InvoiceService) Adjust(ctx context.Context, id uuid.UUID, amount, amountPaid int64) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amountPaid < 0 {
		return nil, invalid("amount_paid", "cannot be negative")
	}
	if amountPaid > amount {
		return nil, invalid("amount_paid", "cannot exceed total amount")
	}
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Amount = amount
	inv.AmountPaid = amountPaid
	inv.Status = models.PaymentStatus(amount, amountPaid)
	if err := s.Invoices.Update(ctx, inv); err != nil {
		return nil, storageErr("adjust invoice", err)
	}
	return inv, nil
}
