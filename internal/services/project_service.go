package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"casasmart/internal/metrics"
	"casasmart/internal/models"
	"casasmart/internal/repositories"
)

// ProjectService applies stage-machine transitions and persists each with a single Update.
type ProjectService struct {
	Repo repositories.ProjectRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewProjectService(repo repositories.ProjectRepository, log *zap.Logger) *ProjectService {
	return &ProjectService{Repo: repo, log: log, now: time.Now}
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get project", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// List accepts a comma separated stage list, e.g. "qc,handover".
func (s *ProjectService) List(ctx context.Context, stages string, limit, offset int) ([]*models.Project, error) {
	f := models.ProjectFilter{Limit: limit, Offset: offset}
	for _, raw := range strings.Split(stages, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		st := models.Stage(raw)
		if !st.Valid() {
			return nil, invalid("status", "unknown stage "+raw)
		}
		f.Stages = append(f.Stages, st)
	}
	projects, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, storageErr("list projects", err)
	}
	return projects, nil
}

func (s *ProjectService) mutate(ctx context.Context, id uuid.UUID, op string, apply func(p *models.Project) error) (*models.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := p.Stage
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, storageErr(op, err)
	}
	if from != p.Stage {
		metrics.IncrementStageTransition(string(from), string(p.Stage))
		s.log.Info("project stage changed",
			zap.String("project_id", p.ID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(p.Stage)))
	}
	return p, nil
}

func (s *ProjectService) Advance(ctx context.Context, id uuid.UUID, confirmed bool) (*models.Project, error) {
	return s.mutate(ctx, id, "advance project", func(p *models.Project) error {
		return Advance(p, s.now(), confirmed)
	})
}

func (s *ProjectService) Retreat(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.mutate(ctx, id, "retreat project", Retreat)
}

func (s *ProjectService) Terminate(ctx context.Context, id uuid.UUID, reason string) (*models.Project, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	return s.mutate(ctx, id, "terminate project", func(p *models.Project) error {
		return Terminate(p, reason, s.now())
	})
}

func (s *ProjectService) ReassignTechnician(ctx context.Context, id uuid.UUID, name string) (*models.Project, error) {
	return s.mutate(ctx, id, "reassign technician", func(p *models.Project) error {
		return ReassignTechnician(p, name)
	})
}

func (s *ProjectService) SetCredentials(ctx context.Context, id uuid.UUID, creds models.Credentials) (*models.Project, error) {
	return s.mutate(ctx, id, "set credentials", func(p *models.Project) error {
		return SetCredentials(p, creds)
	})
}
