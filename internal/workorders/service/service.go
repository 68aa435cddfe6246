package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/workorders/domain"
	"github.com/alimtiger/Minibini-sub000/internal/workorders/ports"
	"github.com/alimtiger/Minibini-sub000/internal/workorders/repository"
	"github.com/alimtiger/Minibini-sub000/internal/workorders/transport"
	"github.com/alimtiger/Minibini-sub000/platform/apperr"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/sanitize"

	"github.com/google/uuid"
)

const defaultUnit = "ea"

// Service contains the business logic for work orders.
type Service struct {
	repo          *repository.Repository
	jobs          ports.JobChecker
	templateTasks ports.TemplateTaskSource
	estimates     ports.EstimateSource
	log           *logger.Logger
}

// New creates a new work orders service.
func New(repo *repository.Repository, jobs ports.JobChecker, templateTasks ports.TemplateTaskSource, estimates ports.EstimateSource, log *logger.Logger) *Service {
	return &Service{
		repo:          repo,
		jobs:          jobs,
		templateTasks: templateTasks,
		estimates:     estimates,
		log:           log,
	}
}

// Create opens an empty draft work order for a job.
func (s *Service) Create(ctx context.Context, req transport.CreateWorkOrderRequest) (*repository.WorkOrder, error) {
	if _, err := s.jobs.JobStatus(ctx, req.JobID); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &repository.WorkOrder{
		ID:        uuid.New(),
		JobID:     req.JobID,
		Name:      sanitize.Text(req.Name),
		Status:    string(domain.StatusDraft),
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.CreateTx(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("work order created", "workorder_id", order.ID, "job_id", order.JobID)
	return order, nil
}

// CreateFromTemplate opens a draft work order seeded with a template's
// tasks.
func (s *Service) CreateFromTemplate(ctx context.Context, req transport.CreateFromTemplateRequest) (*repository.WorkOrder, []repository.Task, error) {
	if _, err := s.jobs.JobStatus(ctx, req.JobID); err != nil {
		return nil, nil, err
	}

	seeds, err := s.templateTasks.TemplateTasks(ctx, req.TemplateID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	name := sanitize.Text(req.Name)
	if name == "" {
		name = "Work order"
	}
	order := &repository.WorkOrder{
		ID:         uuid.New(),
		JobID:      req.JobID,
		TemplateID: &req.TemplateID,
		Name:       name,
		Status:     string(domain.StatusDraft),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tasks := make([]repository.Task, 0, len(seeds))
	for i, seed := range seeds {
		templateID := seed.TaskTemplateID
		tasks = append(tasks, repository.Task{
			ID:          uuid.New(),
			WorkOrderID: order.ID,
			TemplateID:  &templateID,
			Name:        seed.Name,
			Unit:        unitOrDefault(seed.Unit),
			RateCents:   seed.RateCents,
			QtyMilli:    seed.QtyMilli,
			SortOrder:   seed.SortOrder,
			CreatedAt:   now.Add(time.Duration(i) * time.Microsecond),
		})
	}

	if err := s.insertWithTasks(ctx, order, tasks); err != nil {
		return nil, nil, err
	}

	s.log.Info("work order created from template",
		"workorder_id", order.ID, "job_id", order.JobID,
		"template_id", req.TemplateID, "tasks", len(tasks))
	return order, tasks, nil
}

// CreateFromEstimate opens a draft work order for an accepted estimate's
// job with one task per estimate line.
func (s *Service) CreateFromEstimate(ctx context.Context, req transport.CreateFromEstimateRequest) (*repository.WorkOrder, []repository.Task, error) {
	est, err := s.estimates.AcceptedEstimate(ctx, req.EstimateID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	name := sanitize.Text(req.Name)
	if name == "" {
		name = "Work order for " + est.Number
	}
	order := &repository.WorkOrder{
		ID:         uuid.New(),
		JobID:      est.JobID,
		EstimateID: &est.ID,
		Name:       name,
		Status:     string(domain.StatusDraft),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tasks := make([]repository.Task, 0, len(est.Lines))
	for i, line := range est.Lines {
		tasks = append(tasks, repository.Task{
			ID:          uuid.New(),
			WorkOrderID: order.ID,
			Name:        line.Description,
			Unit:        unitOrDefault(line.Unit),
			RateCents:   line.UnitPriceCents,
			QtyMilli:    line.QtyMilli,
			SortOrder:   line.LineNo,
			CreatedAt:   now.Add(time.Duration(i) * time.Microsecond),
		})
	}

	if err := s.insertWithTasks(ctx, order, tasks); err != nil {
		return nil, nil, err
	}

	s.log.Info("work order created from estimate",
		"workorder_id", order.ID, "job_id", order.JobID,
		"estimate_id", est.ID, "tasks", len(tasks))
	return order, tasks, nil
}

func (s *Service) insertWithTasks(ctx context.Context, order *repository.WorkOrder, tasks []repository.Task) error {
	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.CreateTx(ctx, tx, order); err != nil {
		return err
	}
	for i := range tasks {
		if err := s.repo.CreateTaskTx(ctx, tx, &tasks[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a work order by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.WorkOrder, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByJob retrieves a job's work orders.
func (s *Service) ListByJob(ctx context.Context, jobID uuid.UUID) ([]repository.WorkOrder, error) {
	return s.repo.ListByJob(ctx, jobID)
}

// Update renames a work order. Completed work orders are read-only.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateWorkOrderRequest) (*repository.WorkOrder, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireEditable(order); err != nil {
		return nil, err
	}

	order.Name = sanitize.Text(req.Name)
	order.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Transition moves a work order to a new status.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, req transport.TransitionWorkOrderRequest) (*repository.WorkOrder, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := domain.Status(order.Status)
	target := domain.Status(req.Status)
	if err := domain.ValidateTransition(from, target); err != nil {
		return nil, err
	}
	if from == target {
		return order, nil
	}

	order.Status = string(target)
	order.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.log.StatusTransition("workorder", order.ID.String(), string(from), string(target))
	return order, nil
}

// Delete removes a work order. Completed work orders are kept as a record
// of performed work and cannot be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireEditable(order); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddTask attaches a task to a work order.
func (s *Service) AddTask(ctx context.Context, workOrderID uuid.UUID, req transport.AddTaskRequest) (*repository.Task, error) {
	order, err := s.repo.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if err := requireEditable(order); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.repo.GetTask(ctx, workOrderID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	task := &repository.Task{
		ID:          uuid.New(),
		WorkOrderID: workOrderID,
		ParentID:    req.ParentID,
		Name:        sanitize.Text(req.Name),
		Unit:        unitOrDefault(req.Unit),
		RateCents:   req.RateCents,
		QtyMilli:    req.QtyMilli,
		SortOrder:   req.SortOrder,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks retrieves a work order's tasks.
func (s *Service) ListTasks(ctx context.Context, workOrderID uuid.UUID) ([]repository.Task, error) {
	if _, err := s.repo.GetByID(ctx, workOrderID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, workOrderID)
}

// UpdateTask updates a task on an editable work order.
func (s *Service) UpdateTask(ctx context.Context, workOrderID, taskID uuid.UUID, req transport.UpdateTaskRequest) (*repository.Task, error) {
	order, err := s.repo.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if err := requireEditable(order); err != nil {
		return nil, err
	}

	task, err := s.repo.GetTask(ctx, workOrderID, taskID)
	if err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if *req.ParentID == taskID {
			return nil, apperr.BadRequest("task cannot be its own parent")
		}
		if _, err := s.repo.GetTask(ctx, workOrderID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	task.ParentID = req.ParentID
	task.Name = sanitize.Text(req.Name)
	task.Unit = unitOrDefault(req.Unit)
	task.RateCents = req.RateCents
	task.QtyMilli = req.QtyMilli
	task.SortOrder = req.SortOrder
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task from an editable work order.
func (s *Service) DeleteTask(ctx context.Context, workOrderID, taskID uuid.UUID) error {
	order, err := s.repo.GetByID(ctx, workOrderID)
	if err != nil {
		return err
	}
	if err := requireEditable(order); err != nil {
		return err
	}
	return s.repo.DeleteTask(ctx, workOrderID, taskID)
}

func requireEditable(order *repository.WorkOrder) error {
	if domain.IsTerminal(domain.Status(order.Status)) {
		return apperr.PreconditionFailed("work order is complete; completed work orders cannot be modified")
	}
	return nil
}

func unitOrDefault(unit string) string {
	if unit == "" {
		return defaultUnit
	}
	return unit
}
