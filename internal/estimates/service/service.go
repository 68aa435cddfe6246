package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/estimates/domain"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/ports"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/repository"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/transport"
	jobsdomain "github.com/alimtiger/Minibini-sub000/internal/jobs/domain"
	wsdomain "github.com/alimtiger/Minibini-sub000/internal/worksheets/domain"
	"github.com/alimtiger/Minibini-sub000/platform/apperr"
	"github.com/alimtiger/Minibini-sub000/platform/config"
	"github.com/alimtiger/Minibini-sub000/platform/events"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/sanitize"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Service contains estimate business logic: generation from worksheets,
// the status engine with its cascade, and the revision chain.
type Service struct {
	repo       *repository.Repository
	worksheets ports.WorksheetSource
	rules      ports.RuleSource
	jobs       ports.JobCascader
	bus        events.Bus
	cfg        config.EstimateConfig
	log        *logger.Logger
	custom     map[string]domain.CustomPriceFunc
}

// New creates a new estimates service.
func New(
	repo *repository.Repository,
	worksheets ports.WorksheetSource,
	rules ports.RuleSource,
	jobs ports.JobCascader,
	bus events.Bus,
	cfg config.EstimateConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		worksheets: worksheets,
		rules:      rules,
		jobs:       jobs,
		bus:        bus,
		cfg:        cfg,
		log:        log,
		custom:     make(map[string]domain.CustomPriceFunc),
	}
}

// RegisterCustomPrice installs the price function backing a
// custom_calculation bundling rule. The name must match the rule's name.
func (s *Service) RegisterCustomPrice(ruleName string, fn domain.CustomPriceFunc) {
	s.custom[ruleName] = fn
}

// Get retrieves an estimate by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Estimate, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByJob retrieves a job's estimates.
func (s *Service) ListByJob(ctx context.Context, jobID uuid.UUID) ([]repository.Estimate, error) {
	return s.repo.ListByJob(ctx, jobID)
}

// Versions retrieves the revision chain of an estimate: every version
// sharing its number, oldest first.
func (s *Service) Versions(ctx context.Context, id uuid.UUID) ([]repository.Estimate, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, e.EstimateNumber)
}

// Lines retrieves an estimate's line items.
func (s *Service) Lines(ctx context.Context, estimateID uuid.UUID) ([]repository.LineItem, error) {
	if _, err := s.repo.GetByID(ctx, estimateID); err != nil {
		return nil, err
	}
	return s.repo.ListLines(ctx, estimateID)
}

// Total sums an estimate's line totals. The estimate total is always the
// literal sum of its lines; it is never stored separately.
func (s *Service) Total(ctx context.Context, estimateID uuid.UUID) (int64, error) {
	if _, err := s.repo.GetByID(ctx, estimateID); err != nil {
		return 0, err
	}
	return s.repo.TotalCents(ctx, estimateID)
}

// Generate runs the generation engine over a draft worksheet: resolves
// each task's mapping, bundles and prices line items, creates the estimate
// in draft, and finalizes the worksheet, all in one transaction.
//
// A worksheet revised from one already linked to an estimate produces the
// next version under the same estimate number; otherwise a fresh number is
// allocated.
func (s *Service) Generate(ctx context.Context, req transport.GenerateRequest) (*repository.Estimate, []repository.LineItem, error) {
	ws, err := s.worksheets.Worksheet(ctx, req.WorksheetID)
	if err != nil {
		return nil, nil, err
	}
	if ws.Status != string(wsdomain.StatusDraft) {
		return nil, nil, apperr.PreconditionFailed(
			fmt.Sprintf("worksheet is %s; only draft worksheets can generate an estimate", ws.Status))
	}

	tasks, err := s.worksheets.GenerationTasks(ctx, req.WorksheetID)
	if err != nil {
		return nil, nil, err
	}
	rules, err := s.rules.ActiveRules(ctx)
	if err != nil {
		return nil, nil, err
	}

	drafts, err := domain.GenerateLines(tasks, rules, s.custom)
	if err != nil {
		return nil, nil, err
	}

	parent, err := s.revisionParent(ctx, ws)
	if err != nil {
		return nil, nil, err
	}

	var (
		estimate *repository.Estimate
		lines    []repository.LineItem
	)
	for attempt := 0; attempt < repository.MaxAllocAttempts(); attempt++ {
		estimate, lines, err = s.generateTx(ctx, ws, parent, drafts)
		if err == nil {
			break
		}
		if !repository.IsNumberCollision(err) {
			return nil, nil, err
		}
	}
	if err != nil {
		return nil, nil, apperr.Internal("could not allocate an estimate number")
	}

	var total int64
	for _, l := range lines {
		total += l.TotalCents
	}
	s.log.Info("estimate generated",
		"estimate_id", estimate.ID, "estimate_number", estimate.EstimateNumber,
		"version", estimate.Version, "lines", len(lines), "total_cents", total)
	s.bus.Publish(ctx, domain.NewEstimateGeneratedEvent(
		estimate.ID, estimate.JobID, estimate.EstimateNumber, estimate.Version, len(lines), total))

	return estimate, lines, nil
}

// revisionParent resolves the estimate a worksheet revision descends from
// by walking to the worksheet's parent and its linked estimate.
func (s *Service) revisionParent(ctx context.Context, ws ports.WorksheetInfo) (*repository.Estimate, error) {
	if ws.ParentID == nil {
		return nil, nil
	}
	parentWS, err := s.worksheets.Worksheet(ctx, *ws.ParentID)
	if err != nil {
		return nil, err
	}
	if parentWS.EstimateID == nil {
		return nil, nil
	}
	return s.repo.GetByID(ctx, *parentWS.EstimateID)
}

func (s *Service) generateTx(ctx context.Context, ws ports.WorksheetInfo, parent *repository.Estimate, drafts []domain.LineDraft) (*repository.Estimate, []repository.LineItem, error) {
	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	estimate := &repository.Estimate{
		ID:        uuid.New(),
		JobID:     ws.JobID,
		Status:    string(domain.StatusDraft),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if parent != nil {
		estimate.ParentID = &parent.ID
		estimate.EstimateNumber = parent.EstimateNumber
		version, err := s.repo.NextVersion(ctx, tx, parent.EstimateNumber)
		if err != nil {
			return nil, nil, err
		}
		estimate.Version = version
	} else {
		number, err := s.repo.NextEstimateNumber(ctx, tx)
		if err != nil {
			return nil, nil, err
		}
		estimate.EstimateNumber = number
		estimate.Version = 1
	}

	if err := s.repo.CreateTx(ctx, tx, estimate); err != nil {
		return nil, nil, err
	}

	lines := make([]repository.LineItem, 0, len(drafts))
	for _, d := range drafts {
		lines = append(lines, repository.LineItem{
			ID:             uuid.New(),
			EstimateID:     estimate.ID,
			LineNo:         d.LineNo,
			Description:    d.Description,
			QtyMilli:       d.QtyMilli,
			Unit:           d.Unit,
			UnitPriceCents: d.UnitPriceCents,
			TotalCents:     d.TotalCents,
			TaskID:         d.TaskID,
		})
	}
	if err := s.repo.InsertLinesTx(ctx, tx, lines); err != nil {
		return nil, nil, err
	}

	if err := s.worksheets.LinkEstimateTx(ctx, tx, ws.ID, estimate.ID, string(wsdomain.StatusFinal), now); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return estimate, lines, nil
}

// Transition moves an estimate to a new status and runs the full cascade:
// linked worksheets follow the derived status and the owning job advances
// through its own engine, all in the same transaction. Either everything
// commits or nothing does.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target string) (*repository.Estimate, error) {
	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	estimate, err := s.repo.GetByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	from := domain.Status(estimate.Status)
	to := domain.Status(target)

	jobHasAccepted := false
	if to == domain.StatusAccepted {
		jobHasAccepted, err = s.repo.JobHasAcceptedTx(ctx, tx, estimate.JobID, estimate.ID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	plan, err := domain.PlanTransition(domain.TransitionInput{
		From:           from,
		To:             to,
		JobHasAccepted: jobHasAccepted,
		SentDate:       estimate.SentDate,
		ClosedDate:     estimate.ClosedDate,
		ValidDays:      s.cfg.GetEstimateValidDays(),
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	validUntil := estimate.ValidUntil
	if plan.ValidUntil != nil {
		validUntil = plan.ValidUntil
	}
	if err := s.repo.ApplyTransitionTx(ctx, tx, estimate.ID, estimate.Status, string(plan.Status),
		plan.SentDate, plan.ClosedDate, validUntil, now); err != nil {
		return nil, err
	}

	if err := s.cascadeWorksheets(ctx, tx, estimate.ID, to, now); err != nil {
		return nil, err
	}
	if err := s.cascadeJob(ctx, tx, estimate.JobID, from, to, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.StatusTransition("estimate", estimate.ID.String(), estimate.Status, string(plan.Status))

	estimate.Status = string(plan.Status)
	estimate.SentDate = plan.SentDate
	estimate.ClosedDate = plan.ClosedDate
	estimate.ValidUntil = validUntil
	estimate.UpdatedAt = now

	if to == domain.StatusAccepted {
		s.bus.Publish(ctx, domain.NewEstimateAcceptedEvent(estimate.ID, estimate.JobID, estimate.EstimateNumber))
	}
	return estimate, nil
}

// cascadeWorksheets drives every worksheet linked to the estimate toward
// the status derived from the estimate's new state. Worksheets already in
// the derived status are left alone.
func (s *Service) cascadeWorksheets(ctx context.Context, tx pgx.Tx, estimateID uuid.UUID, to domain.Status, now time.Time) error {
	derived, ok := domain.DeriveWorksheetStatus(to)
	if !ok {
		return nil
	}
	return s.worksheets.CascadeStatusTx(ctx, tx, estimateID, string(derived), now)
}

// cascadeJob advances the owning job through the steps the estimate
// transition demands, one legal move at a time.
func (s *Service) cascadeJob(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, from, to domain.Status, now time.Time) error {
	jobStatus, err := s.jobs.StatusTx(ctx, tx, jobID)
	if err != nil {
		return err
	}

	steps := domain.PlanJobCascade(from, to, jobsdomain.Status(jobStatus))
	for _, step := range steps {
		if err := s.jobs.ApplyTx(ctx, tx, jobID, string(step), now); err != nil {
			return err
		}
	}
	return nil
}

// Revise opens the next version of a non-draft estimate: a fresh draft
// with the same estimate number, version + 1, parent set to the source,
// and a copy of every line item. The source is superseded through the
// status engine in the same transaction, so its worksheets and job
// cascade exactly as a manual supersede would.
func (s *Service) Revise(ctx context.Context, id uuid.UUID) (*repository.Estimate, []repository.LineItem, error) {
	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	source, err := s.repo.GetByIDTx(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.PlanRevision(domain.Status(source.Status)); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	version, err := s.repo.NextVersion(ctx, tx, source.EstimateNumber)
	if err != nil {
		return nil, nil, err
	}
	revision := &repository.Estimate{
		ID:             uuid.New(),
		JobID:          source.JobID,
		ParentID:       &source.ID,
		EstimateNumber: source.EstimateNumber,
		Version:        version,
		Status:         string(domain.StatusDraft),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateTx(ctx, tx, revision); err != nil {
		return nil, nil, err
	}
	lines, err := s.repo.CopyLinesTx(ctx, tx, source.ID, revision.ID)
	if err != nil {
		return nil, nil, err
	}

	from := domain.Status(source.Status)
	plan, err := domain.PlanTransition(domain.TransitionInput{
		From:       from,
		To:         domain.StatusSuperseded,
		SentDate:   source.SentDate,
		ClosedDate: source.ClosedDate,
		ValidDays:  s.cfg.GetEstimateValidDays(),
		Now:        now,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.ApplyTransitionTx(ctx, tx, source.ID, source.Status, string(plan.Status),
		plan.SentDate, plan.ClosedDate, source.ValidUntil, now); err != nil {
		return nil, nil, err
	}
	if err := s.cascadeWorksheets(ctx, tx, source.ID, domain.StatusSuperseded, now); err != nil {
		return nil, nil, err
	}
	if err := s.cascadeJob(ctx, tx, source.JobID, from, domain.StatusSuperseded, now); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.StatusTransition("estimate", source.ID.String(), source.Status, string(plan.Status))
	s.log.Info("estimate revision opened",
		"estimate_id", revision.ID, "estimate_number", revision.EstimateNumber,
		"version", revision.Version, "parent_id", source.ID, "lines", len(lines))
	return revision, lines, nil
}

// requireDraft loads an estimate and rejects line edits unless it is still
// a draft.
func (s *Service) requireDraft(ctx context.Context, id uuid.UUID) (*repository.Estimate, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != string(domain.StatusDraft) {
		return nil, apperr.PreconditionFailed(
			fmt.Sprintf("estimate is %s; only draft estimates can be edited", e.Status))
	}
	return e, nil
}

// AddLine appends a manual line to a draft estimate.
func (s *Service) AddLine(ctx context.Context, estimateID uuid.UUID, req transport.AddLineRequest) (*repository.LineItem, error) {
	if _, err := s.requireDraft(ctx, estimateID); err != nil {
		return nil, err
	}

	line := &repository.LineItem{
		ID:             uuid.New(),
		EstimateID:     estimateID,
		Description:    sanitize.Text(req.Description),
		QtyMilli:       req.QtyMilli,
		Unit:           req.Unit,
		UnitPriceCents: req.UnitPriceCents,
		TotalCents:     domain.ExtendedAmount(req.QtyMilli, req.UnitPriceCents),
	}

	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.AppendLine(ctx, tx, line); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return line, nil
}

// UpdateLine edits a line of a draft estimate, recomputing its total.
func (s *Service) UpdateLine(ctx context.Context, estimateID, lineID uuid.UUID, req transport.UpdateLineRequest) (*repository.LineItem, error) {
	if _, err := s.requireDraft(ctx, estimateID); err != nil {
		return nil, err
	}

	line, err := s.repo.GetLine(ctx, estimateID, lineID)
	if err != nil {
		return nil, err
	}
	if req.Description != nil {
		line.Description = sanitize.Text(*req.Description)
	}
	if req.QtyMilli != nil {
		line.QtyMilli = *req.QtyMilli
	}
	if req.Unit != nil {
		line.Unit = *req.Unit
	}
	if req.UnitPriceCents != nil {
		line.UnitPriceCents = *req.UnitPriceCents
	}
	line.TotalCents = domain.ExtendedAmount(line.QtyMilli, line.UnitPriceCents)

	if err := s.repo.UpdateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteLine removes a line from a draft estimate; the remaining lines
// renumber densely.
func (s *Service) DeleteLine(ctx context.Context, estimateID, lineID uuid.UUID) error {
	if _, err := s.requireDraft(ctx, estimateID); err != nil {
		return err
	}

	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.repo.DeleteLineTx(ctx, tx, estimateID, lineID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
