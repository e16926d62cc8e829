// Package repository provides data access layer implementations and interfaces for persistence operations
package repository

import (
	"context"

	"github.com/mmutvidal/escapadas-go/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
}

// PipelineRunRepository defines operations for archived pipeline runs
type PipelineRunRepository interface {
	Repository[models.PipelineRun, models.PipelineRunFilter]
	ByUUID(ctx context.Context, uuid string) (*models.PipelineRun, error)
	ListRecent(ctx context.Context, market string, limit int) ([]*models.PipelineRun, error)
}

// PublishedHistoryRepository defines cooldown queries over the publication
// history. Implementations must be durable across process restarts.
type PublishedHistoryRepository interface {
	// IsRecentlyPublished is true when either the offer's exact
	// route+dates key was published within cooldownDays, or the same
	// route (any dates) was published within routeCooldownDays.
	IsRecentlyPublished(ctx context.Context, offer *models.Offer, cooldownDays, routeCooldownDays int) (bool, error)
	// RegisterPublication unconditionally overwrites the offer's key with
	// today's date and the given category.
	RegisterPublication(ctx context.Context, offer *models.Offer, categoryCode string) error
}
