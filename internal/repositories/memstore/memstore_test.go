package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casasmart/internal/models"
	"casasmart/internal/repositories"
)

var ctx = context.Background()

func TestProjectPerQuoteIsUnique(t *testing.T) {
	repo := New().Projects()
	quoteID := uuid.New()

	require.NoError(t, repo.Create(ctx, &models.Project{QuoteID: quoteID, Stage: models.StagePreparation}))
	err := repo.Create(ctx, &models.Project{QuoteID: quoteID, Stage: models.StagePreparation})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	p, err := repo.GetByQuoteID(ctx, quoteID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NotEqual(t, uuid.Nil, p.ID)
}

func TestMissingRows(t *testing.T) {
	st := New()

	q, err := st.Quotes().GetByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, q)

	err = st.Quotes().Update(ctx, &models.Quote{ID: uuid.New()})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, st.Projects().Delete(ctx, uuid.New()), repositories.ErrNotFound)
	assert.ErrorIs(t, st.Bookings().UpdateStatus(ctx, uuid.New(), models.BookingContacted), repositories.ErrNotFound)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	repo := New().Quotes()
	q := &models.Quote{
		ID:     uuid.New(),
		Status: models.QuoteDraft,
		Items:  models.QuoteItems{{Name: "Smart Switch", Quantity: 2}},
	}
	require.NoError(t, repo.Create(ctx, q))

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	got.Items[0].Quantity = 99
	got.Status = models.QuoteAccepted

	again, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)
	assert.Equal(t, models.QuoteDraft, again.Status)
}

func TestQuoteListFilters(t *testing.T) {
	repo := New().Quotes()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	mk := func(phone string, status models.QuoteStatus, age time.Duration, expiry *time.Time) *models.Quote {
		q := &models.Quote{ID: uuid.New(), CustomerPhone: phone, Status: status, CreatedAt: now.Add(-age), ExpiryDate: expiry}
		require.NoError(t, repo.Create(ctx, q))
		return q
	}
	newest := mk("059 890 4919", models.QuoteSent, time.Minute, nil)
	mk("0551112233", models.QuoteDraft, 2*time.Minute, nil)
	accepted := mk("0598904919", models.QuoteAccepted, 3*time.Minute, &past)
	mk("0598904919", models.QuoteSent, 4*time.Minute, &past)

	list, err := repo.List(ctx, models.QuoteFilter{Phones: []string{"0598904919"}})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, newest.ID, list[0].ID, "newest first")

	list, err = repo.List(ctx, models.QuoteFilter{Scope: models.QuoteScopeArchived})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, accepted.ID, list[0].ID)

	list, err = repo.List(ctx, models.QuoteFilter{Scope: models.QuoteScopeActive, NotExpiredAt: &now})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.List(ctx, models.QuoteFilter{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUserEmailIsCaseInsensitive(t *testing.T) {
	repo := New().Users()
	require.NoError(t, repo.Create(ctx, &models.User{Email: "Sara@Example.com"}))

	err := repo.Create(ctx, &models.User{Email: "sara@example.COM"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	u, err := repo.GetByEmail(ctx, " SARA@example.com ")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "sara@example.com", u.Email)
}

func TestInvoicesByProjects(t *testing.T) {
	repo := New().Invoices()
	a, b := uuid.New(), uuid.New()
	for _, pid := range []uuid.UUID{a, a, b} {
		require.NoError(t, repo.Create(ctx, &models.Invoice{ID: uuid.New(), ProjectID: pid, Amount: 100}))
	}

	list, err := repo.ListByProjects(ctx, []uuid.UUID{a})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.ListByProjects(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}
