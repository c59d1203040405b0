package repositories

import (
	"context"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/core/domain"

	"gorm.io/gorm"
)

// ApplicationRepository handles application data access
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ApplicationRepository) WithTx(tx *gorm.DB) ApplicationStore {
	return &ApplicationRepository{db: tx}
}

// Create creates a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application with its posting and pharmacist
func (r *ApplicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("JobPosting").
		Preload("Pharmacist").
		First(&app, id).Error
	return &app, err
}

// HasOpenApplication checks whether a non-terminal application already
// exists for the (posting, pharmacist) pair
func (r *ApplicationRepository) HasOpenApplication(ctx context.Context, postingID, pharmacistID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_posting_id = ? AND pharmacist_id = ? AND status IN ?",
			postingID, pharmacistID,
			[]domain.ApplicationStatus{domain.ApplicationApplied, domain.ApplicationUnderReview}).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatusFrom performs a status-guarded update: the row is mutated only
// if its status is still one of from. Returns whether a row was updated.
func (r *ApplicationRepository) UpdateStatusFrom(ctx context.Context, id uint, from []domain.ApplicationStatus, to domain.ApplicationStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

// ListByPosting lists applications for a posting
func (r *ApplicationRepository) ListByPosting(ctx context.Context, postingID uint, offset, limit int) ([]*models.Application, int64, error) {
	var apps []*models.Application
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_posting_id = ?", postingID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Pharmacist").
		Where("job_posting_id = ?", postingID).
		Order("applied_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error

	return apps, total, err
}
