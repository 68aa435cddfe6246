package adapters

import (
	"context"

	"github.com/alimtiger/Minibini-sub000/internal/catalog/repository"
	woports "github.com/alimtiger/Minibini-sub000/internal/workorders/ports"
	wsports "github.com/alimtiger/Minibini-sub000/internal/worksheets/ports"

	"github.com/google/uuid"
)

// CatalogWorksheetSeeder supplies work order template tasks for seeding
// estimate worksheets. It implements the worksheets module's
// TemplateTaskSource port.
type CatalogWorksheetSeeder struct {
	repo *repository.Repository
}

func NewCatalogWorksheetSeeder(repo *repository.Repository) *CatalogWorksheetSeeder {
	return &CatalogWorksheetSeeder{repo: repo}
}

func (a *CatalogWorksheetSeeder) TemplateSeedTasks(ctx context.Context, templateID uuid.UUID) ([]wsports.SeedTask, error) {
	rows, err := a.repo.ListTemplateSeedRows(ctx, templateID)
	if err != nil {
		return nil, err
	}
	seeds := make([]wsports.SeedTask, 0, len(rows))
	for _, row := range rows {
		seeds = append(seeds, wsports.SeedTask{
			TaskTemplateID: row.TaskTemplateID,
			MappingID:      row.MappingID,
			Name:           row.Name,
			Unit:           row.Unit,
			RateCents:      row.RateCents,
			QtyMilli:       row.EstQtyMilli,
			SortOrder:      row.SortOrder,
		})
	}
	return seeds, nil
}

// CatalogWorkOrderSeeder supplies work order template tasks for creating
// work orders. It implements the work orders module's TemplateTaskSource
// port.
type CatalogWorkOrderSeeder struct {
	repo *repository.Repository
}

func NewCatalogWorkOrderSeeder(repo *repository.Repository) *CatalogWorkOrderSeeder {
	return &CatalogWorkOrderSeeder{repo: repo}
}

func (a *CatalogWorkOrderSeeder) TemplateTasks(ctx context.Context, templateID uuid.UUID) ([]woports.TemplateSeedTask, error) {
	rows, err := a.repo.ListTemplateSeedRows(ctx, templateID)
	if err != nil {
		return nil, err
	}
	seeds := make([]woports.TemplateSeedTask, 0, len(rows))
	for _, row := range rows {
		seeds = append(seeds, woports.TemplateSeedTask{
			TaskTemplateID: row.TaskTemplateID,
			Name:           row.Name,
			Unit:           row.Unit,
			RateCents:      row.RateCents,
			QtyMilli:       row.EstQtyMilli,
			SortOrder:      row.SortOrder,
		})
	}
	return seeds, nil
}
