package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"casasmart/internal/authz"
	"casasmart/internal/metrics"
	"casasmart/internal/models"
	"casasmart/internal/repositories"
)

// BookingRequest is the public contact form.
type BookingRequest struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	ProjectType string   `json:"project_type"`
	Latitude    *float64 `json:"lat"`
	Longitude   *float64 `json:"lng"`
}

type BookingService struct {
	Repo     repositories.BookingRepository
	limiter  RateLimiter
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewBookingService(repo repositories.BookingRepository, limiter RateLimiter, notifier Notifier, log *zap.Logger) *BookingService {
	if limiter == nil {
		limiter = NoLimit()
	}
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &BookingService{Repo: repo, limiter: limiter, notifier: notifier, log: log, now: time.Now}
}

func (s *BookingService) Submit(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		metrics.IncrementBooking("invalid")
		return nil, invalid("name/phone", "name and phone are required")
	}
	key := authz.NormalizePhone(phone)
	if key == "" {
		metrics.IncrementBooking("invalid")
		return nil, invalid("phone", "must contain digits")
	}

	ok, err := s.limiter.Allow(ctx, key)
	if err != nil {
		// redis недоступен: пропускаем
		s.log.Warn("booking rate limiter unavailable", zap.Error(err))
		ok = true
	}
	if !ok {
		metrics.IncrementBooking("rate_limited")
		return nil, ErrRateLimited
	}

	b := &models.Booking{
		ID:          uuid.New(),
		Name:        name,
		Phone:       phone,
		Email:       strings.TrimSpace(req.Email),
		ProjectType: strings.TrimSpace(req.ProjectType),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      models.BookingPending,
		CreatedAt:   s.now(),
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, storageErr("create booking", err)
	}
	metrics.IncrementBooking("accepted")

	s.notifier.NotifyOps(ctx, "New booking request",
		fmt.Sprintf("%s (%s)\nProject: %s", b.Name, b.Phone, b.ProjectType))
	return b, nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, to models.BookingStatus) (*models.Booking, error) {
	if _, ok := BookingTransitions[string(to)]; !ok {
		return nil, invalid("status", "unknown booking status")
	}
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get booking", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if !canTransition(string(b.Status), string(to), BookingTransitions) {
		return nil, ErrInvalidTransition
	}
	if err := s.Repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, storageErr("update booking status", err)
	}
	b.Status = to
	return b, nil
}

func (s *BookingService) List(ctx context.Context, status string, limit, offset int) ([]*models.Booking, error) {
	var st *models.BookingStatus
	if status != "" {
		if _, ok := BookingTransitions[status]; !ok {
			return nil, invalid("status", "unknown booking status")
		}
		v := models.BookingStatus(status)
		st = &v
	}
	list, err := s.Repo.List(ctx, st, limit, offset)
	if err != nil {
		return nil, storageErr("list bookings", err)
	}
	return list, nil
}
