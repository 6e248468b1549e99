package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"casasmart/internal/models"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, name, phone, email, project_type, latitude, longitude, status, created_at`

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var email, projectType sql.NullString
	err := row.Scan(&b.ID, &b.Name, &b.Phone, &email, &projectType,
		&b.Latitude, &b.Longitude, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Email = email.String
	b.ProjectType = projectType.String
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	const query = `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),$6,$7,$8,$9)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Name, b.Phone, b.Email, b.ProjectType,
		b.Latitude, b.Longitude, b.Status, b.CreatedAt,
	)
	return mapWriteErr("создание заявки", err)
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение заявки: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return fmt.Errorf("обновление статуса заявки: %w", err)
	}
	return checkAffected("обновление статуса заявки", res)
}

func (r *bookingRepository) List(ctx context.Context, status *models.BookingStatus, limit, offset int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []any{}
	i := 1
	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, string(*status))
		i++
	}
	limit, offset = pageArgs(limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("список заявок: %w", err)
	}
	defer rows.Close()

	res := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}
