package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casasmart/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{&services.ValidationError{Field: "phone", Msg: "is required"}, http.StatusBadRequest},
		{services.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get quote: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrUnauthorized, http.StatusForbidden},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrRateLimited, http.StatusTooManyRequests},
		{services.ErrQuoteExpired, http.StatusGone},
		{services.ErrDuplicateProject, http.StatusConflict},
		{services.ErrWorkAlreadyStarted, http.StatusConflict},
		{services.ErrInvalidTransition, http.StatusConflict},
		{services.ErrStageFinal, http.StatusConflict},
		{services.ErrEmailTaken, http.StatusConflict},
		{services.ErrConfirmationRequired, http.StatusPreconditionRequired},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, statusFor(tc.err), tc.err.Error())
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
	assert.Len(t, c.Errors, 1)
}

func TestParamUUID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	_, ok := paramUUID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPageParams(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/quotes?limit=20&offset=-3", nil)

	limit, offset := pageParams(c)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(_ context.Context) error { return p.err }

func TestHealthz(t *testing.T) {
	for _, tc := range []struct {
		name   string
		pinger Pinger
		code   int
	}{
		{"memory store", nil, http.StatusOK},
		{"db up", fakePinger{}, http.StatusOK},
		{"db down", fakePinger{err: errors.New("down")}, http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/healthz", Healthz(tc.pinger))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tc.code, w.Code)
		})
	}
}
