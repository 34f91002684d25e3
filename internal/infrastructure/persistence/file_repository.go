package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/document"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFileRepository implements FileRepository using GORM
type GormFileRepository struct {
	db *gorm.DB
}

// NewGormFileRepository creates a new GormFileRepository
func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// FindByID finds file metadata by its ID
func (r *GormFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.FileObject, error) {
	var model models.FileObjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds files matching the filter
func (r *GormFileRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.FileObject, error) {
	var rows []models.FileObjectModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.FileObjectModel{}), filter)
	query = applyPagination(query, filter, FileSortFields, "created_at DESC, id ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return filesToDomain(rows), nil
}

// FindByEntity returns the files attached to one record
func (r *GormFileRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]document.FileObject, error) {
	var rows []models.FileObjectModel
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return filesToDomain(rows), nil
}

// Count counts files matching the filter
func (r *GormFileRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.FileObjectModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates file metadata
func (r *GormFileRepository) Save(ctx context.Context, f *document.FileObject) error {
	return TranslateError(r.db.WithContext(ctx).Save(models.FileObjectModelFromDomain(f)).Error)
}

// Delete deletes file metadata
func (r *GormFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FileObjectModel{}, "id = ?", id)
	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormFileRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(r.db, filter.Search, "file_name")
		query = query.Where(cond, args...)
	}
	if entityType, ok := filterString(filter, "entity_type"); ok {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID, ok := filterString(filter, "entity_id"); ok {
		query = query.Where("entity_id = ?", entityID)
	}
	if contentType, ok := filterString(filter, "content_type"); ok {
		query = query.Where("content_type = ?", contentType)
	}
	return query
}

func filesToDomain(rows []models.FileObjectModel) []document.FileObject {
	out := make([]document.FileObject, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ document.FileRepository = (*GormFileRepository)(nil)
