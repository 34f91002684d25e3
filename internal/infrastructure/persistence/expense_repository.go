package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds a partner expense by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Expense, error) {
	var model models.PartnerExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds partner expenses matching the filter
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Expense, error) {
	var rows []models.PartnerExpenseModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PartnerExpenseModel{}), filter)
	query = applyPagination(query, filter, ExpenseSortFields, "expense_date DESC, id ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return expensesToDomain(rows), nil
}

// FindByPartner returns every expense of a partner
func (r *GormExpenseRepository) FindByPartner(ctx context.Context, partnerID uuid.UUID) ([]partner.Expense, error) {
	var rows []models.PartnerExpenseModel
	if err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("expense_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return expensesToDomain(rows), nil
}

// Count counts partner expenses matching the filter
func (r *GormExpenseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PartnerExpenseModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPartner counts the expenses of a partner
func (r *GormExpenseRepository) CountByPartner(ctx context.Context, partnerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PartnerExpenseModel{}).
		Where("partner_id = ?", partnerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCategory counts the expenses filed under a category
func (r *GormExpenseRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PartnerExpenseModel{}).
		Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a partner expense
func (r *GormExpenseRepository) Save(ctx context.Context, e *partner.Expense) error {
	return TranslateError(r.db.WithContext(ctx).Save(models.PartnerExpenseModelFromDomain(e)).Error)
}

// Delete deletes a partner expense
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PartnerExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(r.db, filter.Search, "description")
		query = query.Where(cond, args...)
	}
	if partnerID, ok := filterString(filter, "partner_id"); ok {
		query = query.Where("partner_id = ?", partnerID)
	}
	if categoryID, ok := filterString(filter, "category_id"); ok {
		query = query.Where("category_id = ?", categoryID)
	}
	if reimbursed, ok := filterBool(filter, "reimbursed"); ok {
		query = query.Where("reimbursed = ?", reimbursed)
	}
	return applyDateRange(query, "expense_date", filter)
}

func expensesToDomain(rows []models.PartnerExpenseModel) []partner.Expense {
	out := make([]partner.Expense, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ partner.ExpenseRepository = (*GormExpenseRepository)(nil)
