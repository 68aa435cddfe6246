package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/worksheets/domain"
	"github.com/alimtiger/Minibini-sub000/internal/worksheets/ports"
	"github.com/alimtiger/Minibini-sub000/internal/worksheets/repository"
	"github.com/alimtiger/Minibini-sub000/internal/worksheets/transport"
	"github.com/alimtiger/Minibini-sub000/platform/apperr"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/sanitize"

	"github.com/google/uuid"
)

// Service contains worksheet business logic. Worksheets are the staging
// area for tasks; their lifecycle is driven by estimate generation and the
// estimate status cascade, never by a direct status write.
type Service struct {
	repo          *repository.Repository
	jobs          ports.JobChecker
	templateTasks ports.TemplateTaskSource
	log           *logger.Logger
}

// New creates a new worksheets service.
func New(repo *repository.Repository, jobs ports.JobChecker, templateTasks ports.TemplateTaskSource, log *logger.Logger) *Service {
	return &Service{repo: repo, jobs: jobs, templateTasks: templateTasks, log: log}
}

// Create opens a draft worksheet on a job.
func (s *Service) Create(ctx context.Context, req transport.CreateWorksheetRequest) (*repository.Worksheet, error) {
	if _, err := s.jobs.JobStatus(ctx, req.JobID); err != nil {
		return nil, err
	}

	now := time.Now()
	w := &repository.Worksheet{
		ID:        uuid.New(),
		JobID:     req.JobID,
		Status:    string(domain.StatusDraft),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.log.Info("worksheet created", "worksheet_id", w.ID, "job_id", w.JobID)
	return w, nil
}

// Get retrieves a worksheet by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Worksheet, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByJob retrieves a job's worksheets.
func (s *Service) ListByJob(ctx context.Context, jobID uuid.UUID) ([]repository.Worksheet, error) {
	return s.repo.ListByJob(ctx, jobID)
}

// requireDraft loads a worksheet and rejects the operation unless it is
// still a draft. The error names the worksheet's actual status.
func (s *Service) requireDraft(ctx context.Context, id uuid.UUID) (*repository.Worksheet, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != string(domain.StatusDraft) {
		return nil, apperr.PreconditionFailed(
			fmt.Sprintf("worksheet is %s; only draft worksheets can be modified", w.Status))
	}
	return w, nil
}

// AddTask appends a task to a draft worksheet.
func (s *Service) AddTask(ctx context.Context, worksheetID uuid.UUID, req transport.AddTaskRequest) (*repository.Task, error) {
	if _, err := s.requireDraft(ctx, worksheetID); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.repo.GetTask(ctx, worksheetID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	t := &repository.Task{
		ID:                uuid.New(),
		WorksheetID:       worksheetID,
		ParentID:          req.ParentID,
		TemplateID:        req.TaskTemplateID,
		MappingID:         req.MappingID,
		InstanceProductID: req.InstanceProductID,
		InstanceNumber:    req.InstanceNumber,
		Name:              sanitize.Text(req.Name),
		Unit:              req.Unit,
		RateCents:         req.RateCents,
		QtyMilli:          req.QtyMilli,
		SortOrder:         req.SortOrder,
		CreatedAt:         time.Now(),
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// SeedFromTemplate copies a work order template's task definitions onto a
// draft worksheet, tagging each task with the template and product
// instance so the generation engine can group them.
func (s *Service) SeedFromTemplate(ctx context.Context, worksheetID uuid.UUID, req transport.SeedFromTemplateRequest) ([]repository.Task, error) {
	if _, err := s.requireDraft(ctx, worksheetID); err != nil {
		return nil, err
	}

	seeds, err := s.templateTasks.TemplateSeedTasks(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return []repository.Task{}, nil
	}

	templateID := req.TemplateID
	now := time.Now()
	created := make([]repository.Task, 0, len(seeds))
	for i, seed := range seeds {
		taskTemplateID := seed.TaskTemplateID
		t := repository.Task{
			ID:                  uuid.New(),
			WorksheetID:         worksheetID,
			TemplateID:          &taskTemplateID,
			MappingID:           seed.MappingID,
			WorkOrderTemplateID: &templateID,
			InstanceProductID:   req.InstanceProductID,
			InstanceNumber:      req.InstanceNumber,
			Name:                seed.Name,
			Unit:                seed.Unit,
			RateCents:           seed.RateCents,
			QtyMilli:            seed.QtyMilli,
			SortOrder:           seed.SortOrder,
			// Spread creation times so the seeded order survives the
			// generation engine's chronological sort.
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
		if err := s.repo.CreateTask(ctx, &t); err != nil {
			return nil, err
		}
		created = append(created, t)
	}
	s.log.Info("worksheet seeded from template",
		"worksheet_id", worksheetID, "template_id", req.TemplateID, "tasks", len(created))
	return created, nil
}

// ListTasks retrieves a worksheet's tasks.
func (s *Service) ListTasks(ctx context.Context, worksheetID uuid.UUID) ([]repository.Task, error) {
	if _, err := s.repo.GetByID(ctx, worksheetID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, worksheetID)
}

// UpdateTask edits a task on a draft worksheet.
func (s *Service) UpdateTask(ctx context.Context, worksheetID, taskID uuid.UUID, req transport.UpdateTaskRequest) (*repository.Task, error) {
	if _, err := s.requireDraft(ctx, worksheetID); err != nil {
		return nil, err
	}

	t, err := s.repo.GetTask(ctx, worksheetID, taskID)
	if err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if *req.ParentID == taskID {
			return nil, apperr.BadRequest("task cannot be its own parent")
		}
		if _, err := s.repo.GetTask(ctx, worksheetID, *req.ParentID); err != nil {
			return nil, err
		}
		t.ParentID = req.ParentID
	}
	if req.Name != nil {
		t.Name = sanitize.Text(*req.Name)
	}
	if req.Unit != nil {
		t.Unit = *req.Unit
	}
	if req.RateCents != nil {
		t.RateCents = *req.RateCents
	}
	if req.QtyMilli != nil {
		t.QtyMilli = *req.QtyMilli
	}
	if req.MappingID != nil {
		t.MappingID = req.MappingID
	}
	if req.InstanceProductID != nil {
		t.InstanceProductID = req.InstanceProductID
	}
	if req.InstanceNumber != nil {
		t.InstanceNumber = req.InstanceNumber
	}
	if req.SortOrder != nil {
		t.SortOrder = *req.SortOrder
	}
	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask removes a task from a draft worksheet.
func (s *Service) DeleteTask(ctx context.Context, worksheetID, taskID uuid.UUID) error {
	if _, err := s.requireDraft(ctx, worksheetID); err != nil {
		return err
	}
	return s.repo.DeleteTask(ctx, worksheetID, taskID)
}

// Revise creates a new draft worksheet version from a finalized one,
// carrying its tasks over and marking the source superseded. Drafts are
// edited in place, not revised.
func (s *Service) Revise(ctx context.Context, id uuid.UUID) (*repository.Worksheet, error) {
	source, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sourceAfter, err := domain.PlanRevision(domain.Status(source.Status))
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	version, err := s.repo.NextVersion(ctx, tx, source.JobID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	revision := &repository.Worksheet{
		ID:        uuid.New(),
		JobID:     source.JobID,
		ParentID:  &source.ID,
		Status:    string(domain.StatusDraft),
		Version:   version,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateTx(ctx, tx, revision); err != nil {
		return nil, err
	}
	if err := s.repo.CopyTasksTx(ctx, tx, source.ID, revision.ID); err != nil {
		return nil, err
	}
	if err := s.repo.SetStatusTx(ctx, tx, source.ID, string(sourceAfter), now); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("worksheet revised",
		"worksheet_id", source.ID, "revision_id", revision.ID, "version", version)
	return revision, nil
}

// Delete removes a draft worksheet and its tasks.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.requireDraft(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
