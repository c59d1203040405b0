package repositories

import (
	"context"

	"pharmatch/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// JobPostingRepository handles job posting data access. This core only
// touches postings to pause them on suspension and mark them filled on
// contract activation; posting CRUD lives elsewhere.
type JobPostingRepository struct {
	db *gorm.DB
}

// NewJobPostingRepository creates a new job posting repository
func NewJobPostingRepository(db *gorm.DB) *JobPostingRepository {
	return &JobPostingRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *JobPostingRepository) WithTx(tx *gorm.DB) JobPostingStore {
	return &JobPostingRepository{db: tx}
}

// Create creates a new job posting
func (r *JobPostingRepository) Create(ctx context.Context, posting *models.JobPosting) error {
	return r.db.WithContext(ctx).Create(posting).Error
}

// GetByID gets a job posting by ID
func (r *JobPostingRepository) GetByID(ctx context.Context, id uint) (*models.JobPosting, error) {
	var posting models.JobPosting
	err := r.db.WithContext(ctx).First(&posting, id).Error
	return &posting, err
}

// MarkFilled marks an open or paused posting as filled
func (r *JobPostingRepository) MarkFilled(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("id = ? AND status IN ?", id, []string{models.PostingOpen, models.PostingPaused}).
		Update("status", models.PostingFilled).Error
}

// PauseOpenByPharmacy pauses all of a pharmacy's open postings. Returns the
// number of postings paused.
func (r *JobPostingRepository) PauseOpenByPharmacy(ctx context.Context, pharmacyID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("pharmacy_id = ? AND status = ?", pharmacyID, models.PostingOpen).
		Update("status", models.PostingPaused)
	return result.RowsAffected, result.Error
}

// ResumePausedByPharmacy reopens a pharmacy's paused postings on
// reinstatement. Returns the number of postings reopened.
func (r *JobPostingRepository) ResumePausedByPharmacy(ctx context.Context, pharmacyID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("pharmacy_id = ? AND status = ?", pharmacyID, models.PostingPaused).
		Update("status", models.PostingOpen)
	return result.RowsAffected, result.Error
}
