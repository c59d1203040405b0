package config

import (
	"log"
	"time"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if s.cfg.IsDev() {
		if err := s.seedDemoMarketplace(); err != nil {
			log.Printf("⚠️ Demo seeder skipped: %v", err)
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@pharmatch.example.jp",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedDemoMarketplace seeds a demo pharmacy, pharmacist and open posting so
// the contract flow can be exercised right after first boot. Dev mode only.
func (s *Seeder) seedDemoMarketplace() error {
	var count int64
	s.db.Model(&models.Pharmacy{}).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("demo123456")
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		pharmacyUser := &models.User{
			Username: "sakura-pharmacy",
			Email:    "owner@sakura-pharmacy.example.jp",
			Password: hashedPassword,
			Role:     models.RolePharmacy,
			IsActive: true,
		}
		if err := tx.Create(pharmacyUser).Error; err != nil {
			return err
		}

		pharmacy := &models.Pharmacy{
			UserID:   pharmacyUser.ID,
			Name:     "Sakura Pharmacy",
			Phone:    "03-1234-5678",
			Email:    "owner@sakura-pharmacy.example.jp",
			Address:  "1-2-3 Nihonbashi, Chuo-ku, Tokyo",
			IsActive: true,
		}
		if err := tx.Create(pharmacy).Error; err != nil {
			return err
		}

		pharmacistUser := &models.User{
			Username: "tanaka-yuki",
			Email:    "tanaka@example.jp",
			Password: hashedPassword,
			Role:     models.RolePharmacist,
			IsActive: true,
		}
		if err := tx.Create(pharmacistUser).Error; err != nil {
			return err
		}

		pharmacist := &models.Pharmacist{
			UserID:    pharmacistUser.ID,
			Name:      "Tanaka Yuki",
			Phone:     "090-1111-2222",
			Email:     "tanaka@example.jp",
			LicenseNo: "PH-2026-0042",
		}
		if err := tx.Create(pharmacist).Error; err != nil {
			return err
		}

		posting := &models.JobPosting{
			PharmacyID:      pharmacy.ID,
			Title:           "Locum pharmacist, weekday mornings",
			Description:     "Dispensing and patient counselling, 9:00-13:00.",
			DailyWage:       25000,
			WorkDays:        30,
			InitialWorkDate: time.Now().UTC().AddDate(0, 0, 14).Truncate(24 * time.Hour),
			Status:          models.PostingOpen,
		}
		if err := tx.Create(posting).Error; err != nil {
			return err
		}

		log.Printf("✅ Demo marketplace seeded: pharmacy #%d, pharmacist #%d, posting #%d",
			pharmacy.ID, pharmacist.ID, posting.ID)
		return nil
	})
}
