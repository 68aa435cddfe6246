package service

import (
	"context"
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/jobs/domain"
	"github.com/alimtiger/Minibini-sub000/internal/jobs/repository"
	"github.com/alimtiger/Minibini-sub000/internal/jobs/transport"
	"github.com/alimtiger/Minibini-sub000/platform/events"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/sanitize"

	"github.com/google/uuid"
)

// Service contains job lifecycle business logic.
type Service struct {
	repo *repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new jobs service.
func New(repo *repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Create opens a new job in draft.
func (s *Service) Create(ctx context.Context, input transport.CreateJobRequest) (*repository.Job, error) {
	now := time.Now()
	job := &repository.Job{
		ID:          uuid.New(),
		ContactID:   input.ContactID,
		Description: sanitize.Text(input.Description),
		Status:      string(domain.StatusDraft),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}
	s.log.Info("job created", "job_id", job.ID, "job_number", job.JobNumber)
	return job, nil
}

// Get retrieves a job by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Job, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves jobs, optionally filtered by status.
func (s *Service) List(ctx context.Context, status *string) ([]repository.Job, error) {
	if status != nil && !domain.Valid(domain.Status(*status)) {
		return []repository.Job{}, nil
	}
	return s.repo.List(ctx, status)
}

// Update edits a job's details. Status and lifecycle timestamps are not
// editable here; they only move through transitions.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input transport.UpdateJobRequest) (*repository.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.ContactID != nil {
		job.ContactID = *input.ContactID
	}
	if input.Description != nil {
		job.Description = sanitize.Text(*input.Description)
	}
	job.UpdatedAt = time.Now()
	if err := s.repo.UpdateDetails(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Transition moves a job to a new status at a user's request. Cascade-only
// movements, such as entering blocked, are rejected here.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target string) (*repository.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := domain.Status(job.Status)
	to := domain.Status(target)

	now := time.Now()
	ts, err := domain.PlanTransition(from, to,
		domain.Timestamps{StartDate: job.StartDate, CompletedDate: job.CompletedDate}, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ApplyTransition(ctx, id, job.Status, target, ts, now); err != nil {
		return nil, err
	}
	s.log.StatusTransition("job", job.ID.String(), job.Status, target)

	job.Status = target
	job.StartDate = ts.StartDate
	job.CompletedDate = ts.CompletedDate
	job.UpdatedAt = now

	if to == domain.StatusApproved {
		s.bus.Publish(ctx, domain.NewJobApprovedEvent(job.ID, job.JobNumber))
	}
	return job, nil
}

// Delete removes a job and everything hanging off it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("job deleted", "job_id", id)
	return nil
}
