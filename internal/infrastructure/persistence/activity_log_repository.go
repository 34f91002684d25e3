package persistence

import (
	"context"

	"github.com/ledgerbook/backend/internal/domain/identity"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements ActivityLogRepository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create appends a log entry
func (r *GormActivityLogRepository) Create(ctx context.Context, log *identity.ActivityLog) error {
	model, err := models.ActivityLogModelFromDomain(log)
	if err != nil {
		return err
	}
	return TranslateError(r.db.WithContext(ctx).Create(model).Error)
}

// FindAll returns log entries, newest first unless asked otherwise
func (r *GormActivityLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.ActivityLog, error) {
	var rows []models.ActivityLogModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActivityLogModel{}), filter)
	query = applyPagination(query, filter, ActivityLogSortFields, "created_at DESC, id ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]identity.ActivityLog, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, nil
}

// Count counts log entries matching the filter
func (r *GormActivityLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActivityLogModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormActivityLogRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(r.db, filter.Search, "description")
		query = query.Where(cond, args...)
	}
	if userID, ok := filterString(filter, "user_id"); ok {
		query = query.Where("user_id = ?", userID)
	}
	if action, ok := filterString(filter, "action"); ok {
		query = query.Where("action = ?", action)
	}
	if entityType, ok := filterString(filter, "entity_type"); ok {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID, ok := filterString(filter, "entity_id"); ok {
		query = query.Where("entity_id = ?", entityID)
	}
	return applyDateRange(query, "created_at", filter)
}

var _ identity.ActivityLogRepository = (*GormActivityLogRepository)(nil)
