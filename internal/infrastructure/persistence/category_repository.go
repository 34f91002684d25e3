package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Category, error) {
	var rows []models.CategoryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter)
	query = applyPagination(query, filter, CategorySortFields, "type ASC, name ASC, id ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return categoriesToDomain(rows), nil
}

// FindByType returns every category of one entry type
func (r *GormCategoryRepository) FindByType(ctx context.Context, entryType ledger.EntryType) ([]ledger.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("type = ?", entryType).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return categoriesToDomain(rows), nil
}

// Count counts categories matching the filter
func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks for a category with the same folded name and type
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string, entryType ledger.EntryType, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{}).
		Where("type = ? AND name_key = ?", entryType, ledger.CategoryNameKey(name))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, c *ledger.Category) error {
	return TranslateError(r.db.WithContext(ctx).Save(models.CategoryModelFromDomain(c)).Error)
}

// Delete deletes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CategoryModel{}, "id = ?", id)
	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCategoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(r.db, filter.Search, "name", "description")
		query = query.Where(cond, args...)
	}
	if t, ok := filterString(filter, "type"); ok {
		query = query.Where("type = ?", t)
	}
	return query
}

func categoriesToDomain(rows []models.CategoryModel) []ledger.Category {
	out := make([]ledger.Category, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ ledger.CategoryRepository = (*GormCategoryRepository)(nil)
