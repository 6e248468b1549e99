package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"casasmart/internal/models"
)

var (
	// ErrNotFound is returned by Update/Delete when no row matched.
	// GetBy* methods return (nil, nil) for a missing row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects the write.
	ErrDuplicate = errors.New("duplicate record")
)

type QuoteRepository interface {
	Create(ctx context.Context, q *models.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Update(ctx context.Context, q *models.Quote) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f models.QuoteFilter) ([]*models.Quote, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f models.ProjectFilter) ([]*models.Project, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, inv *models.Invoice) error
	List(ctx context.Context, limit, offset int) ([]*models.Invoice, error)
	ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]*models.Invoice, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error
	List(ctx context.Context, status *models.BookingStatus, limit, offset int) ([]*models.Booking, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
