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

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, quote_id, customer_name, customer_phone, project_type, technician_name, status,
	date_installation, date_programming, date_qc, date_handover, date_completed, date_terminated,
	tech_preparation, tech_installation, tech_programming, tech_qc, tech_handover,
	termination_reason, credentials, created_at`

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var creds []byte
	err := row.Scan(
		&p.ID, &p.QuoteID, &p.CustomerName, &p.CustomerPhone, &p.ProjectType, &p.TechnicianName, &p.Stage,
		&p.DateInstallation, &p.DateProgramming, &p.DateQC, &p.DateHandover, &p.DateCompleted, &p.DateTerminated,
		&p.TechPreparation, &p.TechInstallation, &p.TechProgramming, &p.TechQC, &p.TechHandover,
		&p.TerminationReason, &creds, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(creds) > 0 && string(creds) != "null" {
		p.Credentials = &models.Credentials{}
		if err := p.Credentials.Scan(creds); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	const query = `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.QuoteID, p.CustomerName, p.CustomerPhone, p.ProjectType, p.TechnicianName, p.Stage,
		p.DateInstallation, p.DateProgramming, p.DateQC, p.DateHandover, p.DateCompleted, p.DateTerminated,
		p.TechPreparation, p.TechInstallation, p.TechProgramming, p.TechQC, p.TechHandover,
		p.TerminationReason, p.Credentials, p.CreatedAt,
	)
	// уникальный индекс на quote_id: второй проект на ту же котировку -> ErrDuplicate
	return mapWriteErr("создание проекта", err)
}

func (r *projectRepository) getOne(ctx context.Context, where string, arg any) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+where, arg)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("получение проекта: %w", err)
	}
	return p, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *projectRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*models.Project, error) {
	return r.getOne(ctx, "quote_id = $1", quoteID)
}

func (r *projectRepository) Update(ctx context.Context, p *models.Project) error {
	const query = `
		UPDATE projects
		SET customer_name=$1, customer_phone=$2, project_type=$3, technician_name=$4, status=$5,
			date_installation=$6, date_programming=$7, date_qc=$8, date_handover=$9,
			date_completed=$10, date_terminated=$11,
			tech_preparation=$12, tech_installation=$13, tech_programming=$14, tech_qc=$15, tech_handover=$16,
			termination_reason=$17, credentials=$18
		WHERE id=$19
	`
	res, err := r.db.ExecContext(ctx, query,
		p.CustomerName, p.CustomerPhone, p.ProjectType, p.TechnicianName, p.Stage,
		p.DateInstallation, p.DateProgramming, p.DateQC, p.DateHandover,
		p.DateCompleted, p.DateTerminated,
		p.TechPreparation, p.TechInstallation, p.TechProgramming, p.TechQC, p.TechHandover,
		p.TerminationReason, p.Credentials, p.ID,
	)
	if err != nil {
		return mapWriteErr("обновление проекта", err)
	}
	return checkAffected("обновление проекта", res)
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("удаление проекта: %w", err)
	}
	return checkAffected("удаление проекта", res)
}

func (r *projectRepository) List(ctx context.Context, f models.ProjectFilter) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE 1=1`
	args := []any{}
	i := 1

	if len(f.Stages) > 0 {
		stages := make([]string, len(f.Stages))
		for k, s := range f.Stages {
			stages[k] = string(s)
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", i)
		args = append(args, pq.Array(stages))
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
		return nil, fmt.Errorf("список проектов: %w", err)
	}
	defer rows.Close()

	res := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("список проектов: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
