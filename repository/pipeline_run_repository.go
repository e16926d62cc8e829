package repository

import (
	"context"
	"errors"

	"github.com/mmutvidal/escapadas-go/models"
	"gorm.io/gorm"
)

// PipelineRunRepositoryImpl implements PipelineRunRepository interface
type PipelineRunRepositoryImpl struct {
	*BaseRepository[models.PipelineRun, models.PipelineRunFilter]
}

// NewPipelineRunRepository creates a new pipeline run repository
func NewPipelineRunRepository(db *gorm.DB) PipelineRunRepository {
	return &PipelineRunRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PipelineRun, models.PipelineRunFilter](db),
	}
}

// ByUUID retrieves a run by its UUID
func (r *PipelineRunRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.PipelineRun, error) {
	db := r.getDB(ctx)
	var row models.PipelineRun
	if err := db.Where("uuid = ?", uuid).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListRecent retrieves the most recent runs for a market, newest first
func (r *PipelineRunRepositoryImpl) ListRecent(ctx context.Context, market string, limit int) ([]*models.PipelineRun, error) {
	db := r.getDB(ctx)
	if limit <= 0 {
		limit = 10
	}
	var rows []*models.PipelineRun
	q := db.Model(&models.PipelineRun{}).Order("created_at DESC").Limit(limit)
	if market != "" {
		q = q.Where("market = ?", market)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
