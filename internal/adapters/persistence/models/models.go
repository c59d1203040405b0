package models

import (
	"time"

	"gorm.io/gorm"

	"pharmatch/internal/core/domain"
)

// ============================================================
// Accounts
// ============================================================

// User roles
const (
	RoleAdmin      = "ADMIN"
	RolePharmacy   = "PHARMACY"
	RolePharmacist = "PHARMACIST"
)

// User represents the users table (login accounts)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;not null" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Pharmacy represents the pharmacies table. It also carries the account
// standing written by the penalty engine: IsActive is cleared on a first
// payment-delay offense (temporary suspension), PermanentlySuspended is set
// on the second and can never be cleared by penalty resolution.
type Pharmacy struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name                 string    `gorm:"size:100;not null" json:"name"`
	Phone                string    `gorm:"size:20" json:"phone,omitempty"`
	Email                string    `gorm:"size:100" json:"email,omitempty"`
	Address              string    `gorm:"size:255" json:"address"`
	IsActive             bool      `gorm:"default:true" json:"is_active"`
	PermanentlySuspended bool      `gorm:"default:false" json:"permanently_suspended"`
	PenaltyCount         int       `gorm:"default:0" json:"penalty_count"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Pharmacy) TableName() string {
	return "pharmacies"
}

// Suspended reports whether the pharmacy may not enter new contracts.
func (p *Pharmacy) Suspended() bool {
	return !p.IsActive || p.PermanentlySuspended
}

// Pharmacist represents the pharmacists table
type Pharmacist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:20" json:"phone,omitempty"`
	Email     string    `gorm:"size:100" json:"email,omitempty"`
	LicenseNo string    `gorm:"size:50" json:"license_no"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Pharmacist) TableName() string {
	return "pharmacists"
}

// ============================================================
// Job postings & applications
// ============================================================

// Job posting statuses
const (
	PostingOpen   = "open"
	PostingPaused = "paused"
	PostingFilled = "filled"
	PostingClosed = "closed"
)

// JobPosting carries the financial terms a contract is derived from.
// DailyWage is in yen.
type JobPosting struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PharmacyID      uint      `gorm:"index;not null" json:"pharmacy_id"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	DailyWage       int64     `gorm:"not null" json:"daily_wage"`
	WorkDays        int       `gorm:"not null" json:"work_days"`
	InitialWorkDate time.Time `gorm:"not null" json:"initial_work_date"`
	Status          string    `gorm:"size:20;not null;default:'open';index" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Pharmacy *Pharmacy `gorm:"foreignKey:PharmacyID" json:"pharmacy,omitempty"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// Application represents a pharmacist's expression of interest in a posting.
// At most one non-terminal application may exist per (posting, pharmacist)
// pair. Rows are never deleted.
type Application struct {
	ID              uint                     `gorm:"primaryKey" json:"id"`
	JobPostingID    uint                     `gorm:"index:idx_application_pair;not null" json:"job_posting_id"`
	PharmacistID    uint                     `gorm:"index:idx_application_pair;not null" json:"pharmacist_id"`
	Status          domain.ApplicationStatus `gorm:"size:20;not null;index" json:"status"`
	AppliedAt       time.Time                `gorm:"not null" json:"applied_at"`
	RejectionReason string                   `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                `gorm:"autoUpdateTime" json:"updated_at"`

	JobPosting *JobPosting `gorm:"foreignKey:JobPostingID" json:"job_posting,omitempty"`
	Pharmacist *Pharmacist `gorm:"foreignKey:PharmacistID" json:"pharmacist,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// ============================================================
// Contracts, payments, penalties
// ============================================================

// Contract is the binding record created the instant an application is
// accepted. Amounts are in yen; PlatformFee is always round-half-up of 40%
// of TotalCompensation, PaymentDeadline is always InitialWorkDate - 3 days,
// EndDate is always InitialWorkDate + WorkDays days. Cancellation is a
// status, never a row removal.
type Contract struct {
	ID                uint                  `gorm:"primaryKey" json:"id"`
	ApplicationID     uint                  `gorm:"uniqueIndex;not null" json:"application_id"`
	PharmacyID        uint                  `gorm:"index;not null" json:"pharmacy_id"`
	PharmacistID      uint                  `gorm:"index;not null" json:"pharmacist_id"`
	JobPostingID      uint                  `gorm:"index;not null" json:"job_posting_id"`
	InitialWorkDate   time.Time             `gorm:"not null" json:"initial_work_date"`
	WorkDays          int                   `gorm:"not null" json:"work_days"`
	DailyWage         int64                 `gorm:"not null" json:"daily_wage"`
	TotalCompensation int64                 `gorm:"not null" json:"total_compensation"`
	PlatformFee       int64                 `gorm:"not null" json:"platform_fee"`
	PaymentDeadline   time.Time             `gorm:"not null;index" json:"payment_deadline"`
	EndDate           time.Time             `gorm:"not null;index" json:"end_date"`
	Status            domain.ContractStatus `gorm:"size:20;not null;index" json:"status"`
	ActivatedAt       *time.Time            `json:"activated_at,omitempty"`
	CancelledAt       *time.Time            `json:"cancelled_at,omitempty"`
	CompletedAt       *time.Time            `json:"completed_at,omitempty"`
	CreatedAt         time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time             `gorm:"autoUpdateTime" json:"updated_at"`

	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Pharmacy    *Pharmacy    `gorm:"foreignKey:PharmacyID" json:"pharmacy,omitempty"`
	Pharmacist  *Pharmacist  `gorm:"foreignKey:PharmacistID" json:"pharmacist,omitempty"`
	JobPosting  *JobPosting  `gorm:"foreignKey:JobPostingID" json:"job_posting,omitempty"`
	Payment     *Payment     `gorm:"foreignKey:ContractID" json:"payment,omitempty"`
}

func (Contract) TableName() string {
	return "contracts"
}

// Payment is the platform-fee invoice tied 1:1 to a contract. Amount is
// immutable once set and always equals the contract's PlatformFee.
type Payment struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	ContractID       uint                 `gorm:"uniqueIndex;not null" json:"contract_id"`
	PharmacyID       uint                 `gorm:"index;not null" json:"pharmacy_id"`
	ReferenceNo      string               `gorm:"uniqueIndex;size:36;not null" json:"reference_no"`
	Amount           int64                `gorm:"not null" json:"amount"`
	PaymentStatus    domain.PaymentStatus `gorm:"size:20;not null;index" json:"payment_status"`
	PaymentDate      *time.Time           `json:"payment_date,omitempty"`
	TransferName     string               `gorm:"size:100" json:"transfer_name,omitempty"`
	ReportNote       string               `gorm:"type:text" json:"report_note,omitempty"`
	ConfirmationNote string               `gorm:"type:text" json:"confirmation_note,omitempty"`
	ReportedAt       *time.Time           `json:"reported_at,omitempty"`
	ConfirmedAt      *time.Time           `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// Penalty is a sanction record against a pharmacy, created only by the
// deadline scheduler when a fee crosses its deadline unpaid.
type Penalty struct {
	ID             uint                 `gorm:"primaryKey" json:"id"`
	PharmacyID     uint                 `gorm:"index;not null" json:"pharmacy_id"`
	ContractID     uint                 `gorm:"index;not null" json:"contract_id"`
	PenaltyType    domain.PenaltyType   `gorm:"size:30;not null;index" json:"penalty_type"`
	Reason         string               `gorm:"type:text;not null" json:"reason"`
	PenaltyStatus  domain.PenaltyStatus `gorm:"size:20;not null;index" json:"penalty_status"`
	AppealReason   string               `gorm:"type:text" json:"appeal_reason,omitempty"`
	ImposedAt      time.Time            `gorm:"not null" json:"imposed_at"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
	ResolutionNote string               `gorm:"type:text" json:"resolution_note,omitempty"`
	CreatedAt      time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	Pharmacy *Pharmacy `gorm:"foreignKey:PharmacyID" json:"pharmacy,omitempty"`
	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

func (Penalty) TableName() string {
	return "penalties"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Pharmacy{},
		&Pharmacist{},
		&JobPosting{},
		&Application{},
		&Contract{},
		&Payment{},
		&Penalty{},
	)
}
