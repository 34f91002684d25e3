package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPartnerRepository implements PartnerRepository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// FindByID finds a partner by its ID
func (r *GormPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	var model models.PartnerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds partners matching the filter
func (r *GormPartnerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Partner, error) {
	var rows []models.PartnerModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PartnerModel{}), filter)
	query = applyPagination(query, filter, PartnerSortFields, "name ASC, id ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return partnersToDomain(rows), nil
}

// FindActive returns every active partner
func (r *GormPartnerRepository) FindActive(ctx context.Context) ([]partner.Partner, error) {
	var rows []models.PartnerModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", partner.StatusActive).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return partnersToDomain(rows), nil
}

// Count counts partners matching the filter
func (r *GormPartnerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PartnerModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a partner
func (r *GormPartnerRepository) Save(ctx context.Context, p *partner.Partner) error {
	return TranslateError(r.db.WithContext(ctx).Save(models.PartnerModelFromDomain(p)).Error)
}

// SaveWithLock updates a partner only if its stored version matches the loaded one
func (r *GormPartnerRepository) SaveWithLock(ctx context.Context, p *partner.Partner) error {
	model := models.PartnerModelFromDomain(p)
	model.Version = p.Version + 1
	result := r.db.WithContext(ctx).
		Model(&models.PartnerModel{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Select("*").Omit("id", "created_at", "created_by").
		Updates(model)
	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	p.Version = model.Version
	return nil
}

// WithinShareLock runs fn inside a transaction. On postgres the partners table
// is locked in SHARE ROW EXCLUSIVE mode, which conflicts with itself, so
// concurrent share changes queue up; sqlite already serializes writers.
func (r *GormPartnerRepository) WithinShareLock(ctx context.Context, fn func(ctx context.Context, repo partner.PartnerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE partners IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return TranslateError(err)
			}
		}
		return fn(ctx, NewGormPartnerRepository(tx))
	})
}

// Delete deletes a partner
func (r *GormPartnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PartnerModel{}, "id = ?", id)
	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormPartnerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(r.db, filter.Search, "name", "email")
		query = query.Where(cond, args...)
	}
	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	return query
}

func partnersToDomain(rows []models.PartnerModel) []partner.Partner {
	out := make([]partner.Partner, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ partner.PartnerRepository = (*GormPartnerRepository)(nil)
