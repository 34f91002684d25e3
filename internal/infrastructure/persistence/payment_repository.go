package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CustomerPayment, error) {
	var model models.CustomerPaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds payments matching the filter
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.CustomerPayment, error) {
	var rows []models.CustomerPaymentModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerPaymentModel{}), filter)
	query = applyPagination(query, filter, PaymentSortFields, "payment_date DESC, id ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// FindByCustomer returns every payment of a customer
func (r *GormPaymentRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]finance.CustomerPayment, error) {
	return r.findWhere(ctx, "customer_id = ?", customerID)
}

// FindByInvoice returns every payment linked to an invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]finance.CustomerPayment, error) {
	return r.findWhere(ctx, "invoice_id = ?", invoiceID)
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerPaymentModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCustomer counts the payments of a customer
func (r *GormPaymentRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	return r.countWhere(ctx, "customer_id = ?", customerID)
}

// CountByInvoice counts the payments linked to an invoice
func (r *GormPaymentRepository) CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	return r.countWhere(ctx, "invoice_id = ?", invoiceID)
}

// CountByProject counts the payments linked to a project
func (r *GormPaymentRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return r.countWhere(ctx, "project_id = ?", projectID)
}

// SumByInvoice returns the total paid against an invoice
func (r *GormPaymentRepository) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&models.CustomerPaymentModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("invoice_id = ?", invoiceID).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *finance.CustomerPayment) error {
	return TranslateError(r.db.WithContext(ctx).Save(models.CustomerPaymentModelFromDomain(p)).Error)
}

// Delete deletes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerPaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormPaymentRepository) findWhere(ctx context.Context, cond string, args ...interface{}) ([]finance.CustomerPayment, error) {
	var rows []models.CustomerPaymentModel
	if err := r.db.WithContext(ctx).
		Where(cond, args...).
		Order("payment_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

func (r *GormPaymentRepository) countWhere(ctx context.Context, cond string, args ...interface{}) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerPaymentModel{}).Where(cond, args...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(r.db, filter.Search, "reference", "notes")
		query = query.Where(cond, args...)
	}
	if customerID, ok := filterString(filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if invoiceID, ok := filterString(filter, "invoice_id"); ok {
		query = query.Where("invoice_id = ?", invoiceID)
	}
	if projectID, ok := filterString(filter, "project_id"); ok {
		query = query.Where("project_id = ?", projectID)
	}
	if method, ok := filterString(filter, "method"); ok {
		query = query.Where("method = ?", method)
	}
	return applyDateRange(query, "payment_date", filter)
}

func paymentsToDomain(rows []models.CustomerPaymentModel) []finance.CustomerPayment {
	out := make([]finance.CustomerPayment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
