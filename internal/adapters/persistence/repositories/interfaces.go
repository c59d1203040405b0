package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/core/domain"
)

// The services consume these interfaces; the concrete gorm repositories
// implement them. WithTx returns a copy bound to the given transaction so
// multi-entity flows commit or roll back together.

// UserStore defines user data access
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// PharmacyStore defines pharmacy data access including account standing
type PharmacyStore interface {
	WithTx(tx *gorm.DB) PharmacyStore
	Create(ctx context.Context, pharmacy *models.Pharmacy) error
	GetByID(ctx context.Context, id uint) (*models.Pharmacy, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Pharmacy, error)
	UpdateStanding(ctx context.Context, id uint, fields map[string]interface{}) error
	IncrementPenaltyCount(ctx context.Context, id uint) error
}

// PharmacistStore defines pharmacist data access
type PharmacistStore interface {
	Create(ctx context.Context, pharmacist *models.Pharmacist) error
	GetByID(ctx context.Context, id uint) (*models.Pharmacist, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Pharmacist, error)
}

// JobPostingStore defines job posting data access
type JobPostingStore interface {
	WithTx(tx *gorm.DB) JobPostingStore
	Create(ctx context.Context, posting *models.JobPosting) error
	GetByID(ctx context.Context, id uint) (*models.JobPosting, error)
	MarkFilled(ctx context.Context, id uint) error
	PauseOpenByPharmacy(ctx context.Context, pharmacyID uint) (int64, error)
	ResumePausedByPharmacy(ctx context.Context, pharmacyID uint) (int64, error)
}

// ApplicationStore defines application data access
type ApplicationStore interface {
	WithTx(tx *gorm.DB) ApplicationStore
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	HasOpenApplication(ctx context.Context, postingID, pharmacistID uint) (bool, error)
	UpdateStatusFrom(ctx context.Context, id uint, from []domain.ApplicationStatus, to domain.ApplicationStatus, fields map[string]interface{}) (bool, error)
	ListByPosting(ctx context.Context, postingID uint, offset, limit int) ([]*models.Application, int64, error)
}

// ContractStore defines contract data access
type ContractStore interface {
	WithTx(tx *gorm.DB) ContractStore
	Create(ctx context.Context, contract *models.Contract) error
	GetByID(ctx context.Context, id uint) (*models.Contract, error)
	GetByApplicationID(ctx context.Context, applicationID uint) (*models.Contract, error)
	ExistsByApplicationID(ctx context.Context, applicationID uint) (bool, error)
	UpdateStatusFrom(ctx context.Context, id uint, from []domain.ContractStatus, to domain.ContractStatus, fields map[string]interface{}) (bool, error)
	ListByPharmacy(ctx context.Context, pharmacyID uint, offset, limit int) ([]*models.Contract, int64, error)
	ListByPharmacist(ctx context.Context, pharmacistID uint, offset, limit int) ([]*models.Contract, int64, error)
	ListActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]*models.Contract, error)
}

// PaymentStore defines payment data access
type PaymentStore interface {
	WithTx(tx *gorm.DB) PaymentStore
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByContractID(ctx context.Context, contractID uint) (*models.Payment, error)
	UpdateStatusFrom(ctx context.Context, id uint, from []domain.PaymentStatus, to domain.PaymentStatus, fields map[string]interface{}) (bool, error)
	ListDeadlineElapsed(ctx context.Context, now time.Time) ([]*models.Payment, error)
}

// PenaltyStore defines penalty data access
type PenaltyStore interface {
	WithTx(tx *gorm.DB) PenaltyStore
	Create(ctx context.Context, penalty *models.Penalty) error
	GetByID(ctx context.Context, id uint) (*models.Penalty, error)
	CountByPharmacyAndType(ctx context.Context, pharmacyID uint, penaltyType domain.PenaltyType) (int64, error)
	UpdateStatusFrom(ctx context.Context, id uint, from []domain.PenaltyStatus, to domain.PenaltyStatus, fields map[string]interface{}) (bool, error)
	ListByPharmacy(ctx context.Context, pharmacyID uint, offset, limit int) ([]*models.Penalty, int64, error)
}
