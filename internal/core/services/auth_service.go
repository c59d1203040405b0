package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"pharmatch/internal/adapters/persistence/models"
	"pharmatch/internal/adapters/persistence/repositories"
	"pharmatch/internal/config"
	"pharmatch/internal/core/domain"
	"pharmatch/internal/pkg/jwt"
	"pharmatch/internal/pkg/password"

	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = domain.ErrInvalidCredentials
)

// AuthService handles authentication business logic
type AuthService struct {
	db          *gorm.DB
	users       repositories.UserStore
	pharmacies  repositories.PharmacyStore
	pharmacists repositories.PharmacistStore
	cfg         *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	db *gorm.DB,
	users repositories.UserStore,
	pharmacies repositories.PharmacyStore,
	pharmacists repositories.PharmacistStore,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		db:          db,
		users:       users,
		pharmacies:  pharmacies,
		pharmacists: pharmacists,
		cfg:         cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`

	// Pharmacist only
	LicenseNo string `json:"license_no"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// Register creates a login account together with its pharmacy or pharmacist
// profile. Admin accounts are seeded, never registered.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	role := strings.ToUpper(strings.TrimSpace(input.Role))
	if role != models.RolePharmacy && role != models.RolePharmacist {
		return nil, ErrInvalidRole
	}
	if !password.Validate(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.users.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.TrimSpace(input.Email),
		Password: hashed,
		Role:     role,
		IsActive: true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		switch role {
		case models.RolePharmacy:
			return tx.Create(&models.Pharmacy{
				UserID:   user.ID,
				Name:     input.Name,
				Phone:    input.Phone,
				Email:    user.Email,
				Address:  input.Address,
				IsActive: true,
			}).Error
		case models.RolePharmacist:
			return tx.Create(&models.Pharmacist{
				UserID:    user.ID,
				Name:      input.Name,
				Phone:     input.Phone,
				Email:     user.Email,
				LicenseNo: input.LicenseNo,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.Username, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (%s)", user.Username, user.Role)
	return &AuthResponse{AccessToken: token, User: user}, nil
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.Username, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{AccessToken: token, User: user}, nil
}

// PharmacyFor resolves the pharmacy profile behind a login account
func (s *AuthService) PharmacyFor(ctx context.Context, userID uint) (*models.Pharmacy, error) {
	pharmacy, err := s.pharmacies.GetByUserID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return pharmacy, nil
}

// PharmacistFor resolves the pharmacist profile behind a login account
func (s *AuthService) PharmacistFor(ctx context.Context, userID uint) (*models.Pharmacist, error) {
	pharmacist, err := s.pharmacists.GetByUserID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return pharmacist, nil
}
