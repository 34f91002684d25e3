package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds transactions matching the filter
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Transaction, error) {
	var rows []models.TransactionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransactionModel{}), filter)
	query = applyPagination(query, filter, TransactionSortFields, "transaction_date DESC, id ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return transactionsToDomain(rows), nil
}

// FindInPeriod returns every transaction dated within [from, to]
func (r *GormTransactionRepository) FindInPeriod(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error) {
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("transaction_date >= ? AND transaction_date <= ?", from, to).
		Order("transaction_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return transactionsToDomain(rows), nil
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransactionModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCategory counts transactions filed under a category
func (r *GormTransactionRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCustomer counts transactions linked to a customer
func (r *GormTransactionRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("customer_id = ?", customerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, t *ledger.Transaction) error {
	return TranslateError(r.db.WithContext(ctx).Save(models.TransactionModelFromDomain(t)).Error)
}

// Delete deletes a transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(r.db, filter.Search, "description", "reference")
		query = query.Where(cond, args...)
	}
	if t, ok := filterString(filter, "type"); ok {
		query = query.Where("type = ?", t)
	}
	if categoryID, ok := filterString(filter, "category_id"); ok {
		query = query.Where("category_id = ?", categoryID)
	}
	if customerID, ok := filterString(filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if projectID, ok := filterString(filter, "project_id"); ok {
		query = query.Where("project_id = ?", projectID)
	}
	return applyDateRange(query, "transaction_date", filter)
}

func transactionsToDomain(rows []models.TransactionModel) []ledger.Transaction {
	out := make([]ledger.Transaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
