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

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, project_id, invoice_ref, type, amount, amount_paid, status, created_at`

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InvoiceRef, &inv.Type,
		&inv.Amount, &inv.AmountPaid, &inv.Status, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	const query = `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.ProjectID, inv.InvoiceRef, inv.Type,
		inv.Amount, inv.AmountPaid, inv.Status, inv.CreatedAt,
	)
	return mapWriteErr("создание счёта", err)
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение счёта по id: %w", err)
	}
	return inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *models.Invoice) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET amount=$1, amount_paid=$2, status=$3 WHERE id=$4`,
		inv.Amount, inv.AmountPaid, inv.Status, inv.ID,
	)
	if err != nil {
		return fmt.Errorf("обновление счёта: %w", err)
	}
	return checkAffected("обновление счёта", res)
}

func (r *invoiceRepository) List(ctx context.Context, limit, offset int) ([]*models.Invoice, error) {
	limit, offset = pageArgs(limit, offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("список счетов: %w", err)
	}
	return collectInvoices(rows)
}

func (r *invoiceRepository) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]*models.Invoice, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(projectIDs))
	for i, id := range projectIDs {
		ids[i] = id.String()
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE project_id = ANY($1::uuid[]) ORDER BY created_at`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("счета по проектам: %w", err)
	}
	return collectInvoices(rows)
}

func collectInvoices(rows *sql.Rows) ([]*models.Invoice, error) {
	defer rows.Close()
	res := []*models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, inv)
	}
	return res, rows.Err()
}
