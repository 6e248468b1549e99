package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapWriteErr(t *testing.T) {
	assert.NoError(t, mapWriteErr("создание проекта", nil))

	err := mapWriteErr("создание проекта", &pq.Error{Code: "23505", Constraint: "projects_quote_id_key"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "создание проекта")

	fk := &pq.Error{Code: "23503"}
	err = mapWriteErr("создание счёта", fk)
	assert.NotErrorIs(t, err, ErrDuplicate)
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("23503"), pqErr.Code)

	plain := errors.New("connection reset")
	assert.ErrorIs(t, mapWriteErr("обновление котировки", plain), plain)
}

type fakeResult struct {
	affected int64
	err      error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, r.err }

func TestCheckAffected(t *testing.T) {
	assert.NoError(t, checkAffected("обновление проекта", fakeResult{affected: 1}))
	assert.ErrorIs(t, checkAffected("обновление проекта", fakeResult{}), ErrNotFound)

	boom := errors.New("driver")
	err := checkAffected("обновление проекта", fakeResult{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPhoneClause(t *testing.T) {
	assert.Equal(t,
		` AND regexp_replace(customer_phone, '\D', '', 'g') = ANY($3)`,
		phoneClause("customer_phone", 3))
}

func TestPageArgs(t *testing.T) {
	cases := []struct{ limit, offset, wantLimit, wantOffset int }{
		{0, 0, 100, 0},
		{20, 40, 20, 40},
		{501, 0, 100, 0},
		{500, -1, 500, 0},
	}
	for _, tc := range cases {
		l, o := pageArgs(tc.limit, tc.offset)
		assert.Equal(t, tc.wantLimit, l)
		assert.Equal(t, tc.wantOffset, o)
	}
}

func TestListByProjectsWithoutIDsSkipsQuery(t *testing.T) {
	// nil *sql.DB: любой запрос упал бы с паникой
	repo := NewInvoiceRepository(nil)
	list, err := repo.ListByProjects(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, list)
}
