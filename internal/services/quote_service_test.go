package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"casasmart/internal/models"
	"casasmart/internal/repositories"
	"casasmart/internal/repositories/memstore"
)

func newQuoteService(t *testing.T) (*QuoteService, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	return newQuoteServiceOn(st), st
}

// seedQuote stores a quote with a fixed grand total, bypassing pricing.
func seedQuote(t *testing.T, repo repositories.QuoteRepository, grand float64, status models.QuoteStatus) *models.Quote {
	t.Helper()
	expiry := t0.AddDate(0, 1, 0)
	q := &models.Quote{
		ID:            uuid.New(),
		CustomerName:  "Ahmed",
		CustomerPhone: "0598904919",
		ProjectType:   "villa",
		GrandTotal:    grand,
		Status:        status,
		ExpiryDate:    &expiry,
		CreatedAt:     t0,
		UpdatedAt:     t0,
	}
	require.NoError(t, repo.Create(context.Background(), q))
	return q
}

func TestQuoteService_CreatePricesAndExpires(t *testing.T) {
	s, _ := newQuoteService(t)
	q, err := s.Create(context.Background(), QuoteInput{
		CustomerName:  " Ahmed ",
		CustomerPhone: "0598904919",
		Items:         models.QuoteItems{{Name: "Smart Switch", Type: models.ItemHardware, CostPrice: 100, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ahmed", q.CustomerName)
	assert.Equal(t, "villa", q.ProjectType)
	assert.Equal(t, models.QuoteDraft, q.Status)
	require.Len(t, q.Items, 2)
	assert.InDelta(t, (294.0+2500)*1.15, q.GrandTotal, 1e-9)
	require.NotNil(t, q.ExpiryDate)
	assert.Equal(t, t0.AddDate(0, 1, 0), *q.ExpiryDate)

	_, err = s.Create(context.Background(), QuoteInput{CustomerName: "  "})
	assert.ErrorIs(t, err, ErrValidation)
}

// grand_total 11500: один проект; повторное принятие даёт DuplicateProject
func TestQuoteService_AcceptCreatesSingleProject(t *testing.T) {
	s, st := newQuoteService(t)
	ctx := context.Background()
	q := seedQuote(t, st.Quotes(), 11500, models.QuoteSent)

	accepted, p, err := s.Accept(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteAccepted, accepted.Status)
	assert.Nil(t, accepted.ExpiryDate)
	assert.Equal(t, models.StagePreparation, p.Stage)
	assert.Equal(t, q.ID, p.QuoteID)
	assert.Equal(t, "Ahmed", p.CustomerName)
	assert.Equal(t, "0598904919", p.CustomerPhone)
	assert.Equal(t, "villa", p.ProjectType)

	_, _, err = s.Accept(ctx, q.ID)
	assert.ErrorIs(t, err, ErrDuplicateProject)

	projects, err := st.Projects().List(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestQuoteService_AcceptUnknownQuote(t *testing.T) {
	s, _ := newQuoteService(t)
	_, _, err := s.Accept(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteService_Reject(t *testing.T) {
	s, st := newQuoteService(t)
	ctx := context.Background()
	q := seedQuote(t, st.Quotes(), 5000, models.QuoteSent)

	_, err := s.Reject(ctx, q.ID, "  ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	rejected, err := s.Reject(ctx, q.ID, "too expensive")
	require.NoError(t, err)
	assert.Equal(t, models.QuoteRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "too expensive", *rejected.RejectionReason)

	// принятую котировку отклонить нельзя
	_, _, err = s.Accept(ctx, q.ID)
	require.NoError(t, err)
	_, err = s.Reject(ctx, q.ID, "changed mind")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestQuoteService_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("work started", func(t *testing.T) {
		s, st := newQuoteService(t)
		q := seedQuote(t, st.Quotes(), 11500, models.QuoteSent)
		_, p, err := s.Accept(ctx, q.ID)
		require.NoError(t, err)

		p.Stage = models.StageInstallation
		require.NoError(t, st.Projects().Update(ctx, p))

		_, err = s.Revoke(ctx, q.ID)
		assert.ErrorIs(t, err, ErrWorkAlreadyStarted)

		still, err := st.Projects().GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.NotNil(t, still)
	})

	t.Run("still in preparation", func(t *testing.T) {
		s, st := newQuoteService(t)
		q := seedQuote(t, st.Quotes(), 11500, models.QuoteSent)
		_, p, err := s.Accept(ctx, q.ID)
		require.NoError(t, err)

		revoked, err := s.Revoke(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteDraft, revoked.Status)

		gone, err := st.Projects().GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		// можно принять заново
		_, _, err = s.Accept(ctx, q.ID)
		assert.NoError(t, err)
	})

	t.Run("invoice already issued", func(t *testing.T) {
		s, st := newQuoteService(t)
		q := seedQuote(t, st.Quotes(), 11500, models.QuoteSent)
		_, p, err := s.Accept(ctx, q.ID)
		require.NoError(t, err)
		require.NoError(t, st.Invoices().Create(ctx, &models.Invoice{
			ID: uuid.New(), ProjectID: p.ID, Type: models.InvoiceDownPayment,
			Amount: 4600, AmountPaid: 4600, Status: models.InvoicePaid,
		}))

		_, err = s.Revoke(ctx, q.ID)
		assert.ErrorIs(t, err, ErrWorkAlreadyStarted)

		still, err := st.Projects().GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.NotNil(t, still)
		kept, err := st.Quotes().GetByID(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteAccepted, kept.Status)
	})
}

func TestQuoteService_UpdateAndDelete(t *testing.T) {
	s, st := newQuoteService(t)
	ctx := context.Background()
	q := seedQuote(t, st.Quotes(), 1000, models.QuoteSent)

	updated, err := s.Update(ctx, q.ID, QuoteInput{CustomerName: "Ahmed", ProjectType: "apartment"})
	require.NoError(t, err)
	assert.Equal(t, models.QuoteDraft, updated.Status)
	assert.InDelta(t, 1500*1.15, updated.GrandTotal, 1e-9)
	assert.Equal(t, *q.ExpiryDate, *updated.ExpiryDate)

	_, _, err = s.Accept(ctx, q.ID)
	require.NoError(t, err)
	_, err = s.Update(ctx, q.ID, QuoteInput{CustomerName: "Ahmed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Delete(ctx, q.ID), ErrInvalidTransition)

	other := seedQuote(t, st.Quotes(), 1000, models.QuoteDraft)
	require.NoError(t, s.Delete(ctx, other.ID))
	assert.ErrorIs(t, s.Delete(ctx, other.ID), ErrNotFound)
}

func TestQuoteService_ListHidesExpired(t *testing.T) {
	s, st := newQuoteService(t)
	ctx := context.Background()

	active := seedQuote(t, st.Quotes(), 1000, models.QuoteSent)
	expired := seedQuote(t, st.Quotes(), 1000, models.QuoteSent)
	past := t0.Add(-time.Hour)
	expired.ExpiryDate = &past
	require.NoError(t, st.Quotes().Update(ctx, expired))
	accepted := seedQuote(t, st.Quotes(), 1000, models.QuoteSent)
	_, _, err := s.Accept(ctx, accepted.ID)
	require.NoError(t, err)

	list, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	list, err = s.List(ctx, ListOptions{IncludeExpired: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = s.List(ctx, ListOptions{Archived: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, accepted.ID, list[0].ID)

	// истёкшая читается по id
	got, err := s.Get(ctx, expired.ID)
	require.NoError(t, err)
	assert.True(t, got.IsExpired(t0))

	_, err = s.List(ctx, ListOptions{Status: "lost"})
	assert.ErrorIs(t, err, ErrValidation)
}

type failingQuoteRepo struct {
	repositories.QuoteRepository
	failUpdate bool
}

func (r *failingQuoteRepo) Update(ctx context.Context, q *models.Quote) error {
	if r.failUpdate {
		return errors.New("connection reset")
	}
	return r.QuoteRepository.Update(ctx, q)
}

func TestQuoteService_AcceptRollsBackProjectOnStorageError(t *testing.T) {
	st := memstore.New()
	repo := &failingQuoteRepo{QuoteRepository: st.Quotes(), failUpdate: true}
	s := NewQuoteService(repo, st.Projects(), st.Invoices(), zap.NewNop())
	s.now = func() time.Time { return t0 }
	ctx := context.Background()
	q := seedQuote(t, st.Quotes(), 11500, models.QuoteSent)

	_, _, err := s.Accept(ctx, q.ID)
	assert.ErrorIs(t, err, ErrStorage)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "accept quote", se.Op)

	p, err := st.Projects().GetByQuoteID(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, p)

	stored, err := st.Quotes().GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteSent, stored.Status)
}
