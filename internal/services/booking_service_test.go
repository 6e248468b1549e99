package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"casasmart/internal/models"
	"casasmart/internal/repositories/memstore"
)

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

type recordingNotifier struct {
	mu       sync.Mutex
	subjects []string
	bodies   []string
}

func (n *recordingNotifier) NotifyOps(_ context.Context, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
}

func newBookingService(limiter RateLimiter, notifier Notifier) *BookingService {
	s := NewBookingService(memstore.New().Bookings(), limiter, notifier, zap.NewNop())
	s.now = func() time.Time { return t0 }
	return s
}

func TestBookingService_Submit(t *testing.T) {
	lim := &fakeLimiter{allow: true}
	n := &recordingNotifier{}
	s := newBookingService(lim, n)
	lat, lng := 21.54, 39.17

	b, err := s.Submit(context.Background(), BookingRequest{
		Name: " Sara ", Phone: "+966 59 890 4919", ProjectType: "villa", Latitude: &lat, Longitude: &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sara", b.Name)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, t0, b.CreatedAt)
	assert.Equal(t, []string{"966598904919"}, lim.keys)
	require.Len(t, n.subjects, 1)
	assert.Contains(t, n.bodies[0], "Sara")
}

func TestBookingService_SubmitValidation(t *testing.T) {
	s := newBookingService(nil, nil)
	for _, req := range []BookingRequest{
		{Phone: "0598904919"},
		{Name: "Sara"},
		{Name: "Sara", Phone: "call me"},
	} {
		_, err := s.Submit(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestBookingService_RateLimited(t *testing.T) {
	n := &recordingNotifier{}
	s := newBookingService(&fakeLimiter{allow: false}, n)

	_, err := s.Submit(context.Background(), BookingRequest{Name: "Sara", Phone: "0598904919"})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Empty(t, n.subjects)

	list, err := s.List(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBookingService_LimiterFailureFailsOpen(t *testing.T) {
	s := newBookingService(&fakeLimiter{err: errors.New("redis: connection refused")}, nil)
	_, err := s.Submit(context.Background(), BookingRequest{Name: "Sara", Phone: "0598904919"})
	assert.NoError(t, err)
}

func TestBookingService_UpdateStatus(t *testing.T) {
	s := newBookingService(nil, nil)
	ctx := context.Background()
	b, err := s.Submit(ctx, BookingRequest{Name: "Sara", Phone: "0598904919"})
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, b.ID, "archived")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := s.UpdateStatus(ctx, b.ID, models.BookingContacted)
	require.NoError(t, err)
	assert.Equal(t, models.BookingContacted, got.Status)

	_, err = s.UpdateStatus(ctx, b.ID, models.BookingCompleted)
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, b.ID, models.BookingPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.UpdateStatus(ctx, uuid.New(), models.BookingCancelled)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.List(ctx, string(models.BookingCompleted), 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = s.List(ctx, "archived", 0, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNoLimit(t *testing.T) {
	ok, err := NoLimit().Allow(context.Background(), "x")
	assert.NoError(t, err)
	assert.True(t, ok)
}
