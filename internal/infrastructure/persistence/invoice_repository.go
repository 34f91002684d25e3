package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CustomerInvoice, error) {
	var model models.CustomerInvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an invoice and locks its row until the transaction ends
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.CustomerInvoice, error) {
	var model models.CustomerInvoiceModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*finance.CustomerInvoice, error) {
	var model models.CustomerInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", strings.ToUpper(strings.TrimSpace(number))).
		First(&model).Error; err != nil {
		return nil, TranslateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.CustomerInvoice, error) {
	var rows []models.CustomerInvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerInvoiceModel{}), filter)
	query = applyPagination(query, filter, InvoiceSortFields, "issue_date DESC, id ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// FindByCustomer returns every invoice of a customer
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]finance.CustomerInvoice, error) {
	var rows []models.CustomerInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("issue_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// FindOutstanding returns every invoice that still has money owed
func (r *GormInvoiceRepository) FindOutstanding(ctx context.Context) ([]finance.CustomerInvoice, error) {
	var rows []models.CustomerInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status <> ?", finance.InvoiceStatusPaid).
		Order("due_date ASC, issue_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerInvoiceModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCustomer counts the invoices of a customer
func (r *GormInvoiceRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	return r.countWhere(ctx, "customer_id = ?", customerID)
}

// CountByProject counts the invoices linked to a project
func (r *GormInvoiceRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return r.countWhere(ctx, "project_id = ?", projectID)
}

// ExistsByNumber checks if an invoice number is taken
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	count, err := r.countWhere(ctx, "invoice_number = ?", strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByNumberPrefix counts invoices whose number starts with prefix
func (r *GormInvoiceRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	return r.countWhere(ctx, `invoice_number LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *finance.CustomerInvoice) error {
	return TranslateError(r.db.WithContext(ctx).Save(models.CustomerInvoiceModelFromDomain(inv)).Error)
}

// SaveWithLock updates an invoice only if its stored version matches the loaded one
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *finance.CustomerInvoice) error {
	model := models.CustomerInvoiceModelFromDomain(inv)
	model.Version = inv.Version + 1
	result := r.db.WithContext(ctx).
		Model(&models.CustomerInvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Select("*").Omit("id", "created_at", "created_by").
		Updates(model)
	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	inv.Version = model.Version
	return nil
}

// Delete deletes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerInvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormInvoiceRepository) countWhere(ctx context.Context, cond string, args ...interface{}) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerInvoiceModel{}).Where(cond, args...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(r.db, filter.Search, "invoice_number", "description")
		query = query.Where(cond, args...)
	}
	if customerID, ok := filterString(filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if projectID, ok := filterString(filter, "project_id"); ok {
		query = query.Where("project_id = ?", projectID)
	}
	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	// overdue_before is the start of "today" as seen by the caller's clock
	if before, ok := filter.Filters["overdue_before"].(time.Time); ok {
		query = query.Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", finance.InvoiceStatusPaid, before)
	}
	return applyDateRange(query, "issue_date", filter)
}

func invoicesToDomain(rows []models.CustomerInvoiceModel) []finance.CustomerInvoice {
	out := make([]finance.CustomerInvoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
