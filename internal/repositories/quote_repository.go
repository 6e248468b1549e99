package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"casasmart/internal/models"
)

type quoteRepository struct {
	db *sql.DB
}

func NewQuoteRepository(db *sql.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

const quoteColumns = `id, customer_name, customer_phone, project_type, items,
	total_cost, total_profit, vat_amount, grand_total, status,
	expiry_date, rejection_reason, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*models.Quote, error) {
	q := &models.Quote{}
	var (
		expiry sql.NullTime
		reason sql.NullString
	)
	err := row.Scan(
		&q.ID, &q.CustomerName, &q.CustomerPhone, &q.ProjectType, &q.Items,
		&q.TotalCost, &q.TotalProfit, &q.VATAmount, &q.GrandTotal, &q.Status,
		&expiry, &reason, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		t := expiry.Time
		q.ExpiryDate = &t
	}
	if reason.Valid {
		s := reason.String
		q.RejectionReason = &s
	}
	return q, nil
}

func (r *quoteRepository) Create(ctx context.Context, q *models.Quote) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	const query = `
		INSERT INTO quotes (
			id, customer_name, customer_phone, project_type, items,
			total_cost, total_profit, vat_amount, grand_total, status,
			expiry_date, rejection_reason, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`
	_, err := r.db.ExecContext(ctx, query,
		q.ID, q.CustomerName, q.CustomerPhone, q.ProjectType, q.Items,
		q.TotalCost, q.TotalProfit, q.VATAmount, q.GrandTotal, q.Status,
		q.ExpiryDate, q.RejectionReason, q.CreatedAt, q.UpdatedAt,
	)
	return mapWriteErr("создание котировки", err)
}

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение котировки по id: %w", err)
	}
	return q, nil
}

func (r *quoteRepository) Update(ctx context.Context, q *models.Quote) error {
	const query = `
		UPDATE quotes
		SET customer_name=$1, customer_phone=$2, project_type=$3, items=$4,
			total_cost=$5, total_profit=$6, vat_amount=$7, grand_total=$8, status=$9,
			expiry_date=$10, rejection_reason=$11, updated_at=$12
		WHERE id=$13
	`
	res, err := r.db.ExecContext(ctx, query,
		q.CustomerName, q.CustomerPhone, q.ProjectType, q.Items,
		q.TotalCost, q.TotalProfit, q.VATAmount, q.GrandTotal, q.Status,
		q.ExpiryDate, q.RejectionReason, q.UpdatedAt, q.ID,
	)
	if err != nil {
		return mapWriteErr("обновление котировки", err)
	}
	return checkAffected("обновление котировки", res)
}

func (r *quoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("удаление котировки: %w", err)
	}
	return checkAffected("удаление котировки", res)
}

func (r *quoteRepository) List(ctx context.Context, f models.QuoteFilter) ([]*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE 1=1`
	args := []any{}
	i := 1

	if f.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, string(*f.Status))
		i++
	}
	switch f.Scope {
	case models.QuoteScopeActive:
		query += " AND status <> 'accepted'"
	case models.QuoteScopeArchived:
		query += " AND status = 'accepted'"
	}
	if f.NotExpiredAt != nil {
		query += fmt.Sprintf(" AND (expiry_date IS NULL OR expiry_date >= $%d OR status = 'accepted')", i)
		args = append(args, *f.NotExpiredAt)
		i++
	}
	if len(f.Phones) > 0 {
		query += phoneClause("customer_phone", i)
		args = append(args, pq.Array(f.Phones))
		i++
	}

	limit, offset := pageArgs(f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("список котировок: %w", err)
	}
	defer rows.Close()

	res := []*models.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("список котировок: %w", err)
		}
		res = append(res, q)
	}
	return res, rows.Err()
}
