package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mikepea/astroclub/pkg/astroclub/apperrors"
	"github.com/mikepea/astroclub/pkg/astroclub/events"
	"github.com/mikepea/astroclub/pkg/astroclub/logger"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"gorm.io/gorm"
)

// Service implements signup, login and password changes
type Service struct {
	db     *gorm.DB
	tokens *TokenManager
	cost   int
	events events.Publisher

	decoyOnce sync.Once
	decoy     string
}

func NewService(db *gorm.DB, tokens *TokenManager, cost int, pub events.Publisher) *Service {
	return &Service{db: db, tokens: tokens, cost: cost, events: pub}
}

// SignupInput represents the signup request body
type SignupInput struct {
	Email     string      `json:"email" binding:"required,email"`
	Password  string      `json:"password" binding:"required,min=8"`
	FirstName string      `json:"first_name" binding:"omitempty,max=100"`
	LastName  string      `json:"last_name" binding:"omitempty,max=100"`
	Role      models.Role `json:"role" binding:"omitempty,oneof=MEMBER GUEST USER"`
}

// LoginInput represents the login request body
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is returned on successful login
type LoginResult struct {
	Role        models.Role `json:"role"`
	AccessToken string      `json:"access_token"`
}

// ChangePasswordInput represents the password change request body
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

var errInvalidCredentials = apperrors.New(apperrors.ErrInvalidCredentials, "Invalid credentials")

// NormalizeEmail is the form emails are stored and looked up in
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a user. The role defaults to USER. ADMIN is never
// self-assigned; admins come from EnsureAdmin or a role change by an admin.
func (s *Service) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() || role.IsAdmin() {
		return models.User{}, apperrors.Validation("role must be one of [MEMBER GUEST USER]")
	}

	email := NormalizeEmail(in.Email)
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, apperrors.Conflict("Email already exists")
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, apperrors.Conflict("Email already exists")
		}
		return models.User{}, err
	}

	events.Emit(ctx, s.events, events.UserSignedUp, user.Public())
	return user, nil
}

// Login verifies credentials and issues an access token. Every failure
// returns the same error so callers cannot tell which part was wrong.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(in.Email)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return LoginResult{}, err
	}

	// Unknown users and users without a password still pay for one bcrypt
	// compare so response time does not reveal which emails exist.
	if err != nil || user.PasswordHash == "" {
		CheckPassword(in.Password, s.decoyHash())
		return LoginResult{}, errInvalidCredentials
	}
	if !CheckPassword(in.Password, user.PasswordHash) {
		return LoginResult{}, errInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Role: user.Role, AccessToken: token}, nil
}

// decoyHash is a hash of a random secret at the service's cost
func (s *Service) decoyHash() string {
	s.decoyOnce.Do(func() {
		hash, err := HashPassword(uuid.NewString(), s.cost)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to build decoy password hash")
			return
		}
		s.decoy = hash
	})
	return s.decoy
}

// ChangePassword replaces the password of userID after checking the current one
func (s *Service) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return apperrors.FromDB(err, "user")
	}

	if !CheckPassword(in.CurrentPassword, user.PasswordHash) {
		return errInvalidCredentials
	}

	hash, err := HashPassword(in.NewPassword, s.cost)
	if err != nil {
		return err
	}
	return db.Model(&user).Update("password_hash", hash).Error
}

// EnsureAdmin creates an ADMIN account with the given credentials when the
// database has no admin yet. It does nothing when email is empty.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return err
	}

	email = NormalizeEmail(email)
	var existing models.User
	err = db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if err := db.Model(&existing).Updates(map[string]interface{}{
			"role":          models.RoleAdmin,
			"password_hash": hash,
		}).Error; err != nil {
			return err
		}
		logger.Info().Str("email", email).Msg("Promoted existing user to admin")
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	admin := models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info().Str("email", email).Msg("Created default admin user")
	return nil
}
