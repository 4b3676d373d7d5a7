package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/core/domain"
	"github.com/udaykiran8062/schoolManagement/internal/core/port"
	"github.com/udaykiran8062/schoolManagement/internal/infra/logger"
	"github.com/udaykiran8062/schoolManagement/internal/infra/security"
)

// ErrDuplicateUser signals a registration that collides with an
// existing account's email or mobile within the same user type.
var ErrDuplicateUser = errors.New("user already exists")

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RegisterInput is the payload for creating a new account.
type RegisterInput struct {
	Username string
	FullName string
	Mobile   string
	Email    string
	Password string
	UserType domain.UserType
	Role     int64
}

// RegistrationService creates accounts. Password quality is enforced
// before hashing; duplicates are checked per user type, so the same
// contact details may register as, say, both parent and teacher.
type RegistrationService struct {
	users     port.UserRepository
	validator *security.PasswordValidator
	logger    *zap.Logger
}

func NewRegistrationService(users port.UserRepository, validator *security.PasswordValidator, lg *zap.Logger) *RegistrationService {
	return &RegistrationService{users: users, validator: validator, logger: lg}
}

func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Mobile = strings.TrimSpace(input.Mobile)
	input.FullName = strings.TrimSpace(input.FullName)

	// Username is optional at registration; logins match the email and
	// mobile columns too, so defaulting keeps the row addressable.
	if input.Username == "" {
		if input.Email != "" {
			input.Username = input.Email
		} else {
			input.Username = input.Mobile
		}
	}

	if err := s.validate(input); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByContact(ctx, input.Email, input.Mobile, input.UserType)
	if err != nil {
		return nil, fmt.Errorf("check duplicates: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		UUID:         uuid.NewString(),
		Username:     input.Username,
		FullName:     input.FullName,
		Mobile:       input.Mobile,
		Email:        input.Email,
		PasswordHash: hash,
		UserType:     input.UserType,
		Role:         input.Role,
		Status:       domain.UserStatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", created.ID),
		zap.Int16("user_type", int16(created.UserType)),
		zap.String("email", logger.MaskEmail(created.Email)),
	)

	sanitized := created.Sanitized()
	return &sanitized, nil
}

func (s *RegistrationService) validate(input RegisterInput) error {
	if input.Email == "" && input.Mobile == "" {
		return &ValidationError{Field: "email", Message: "email or mobile is required"}
	}
	if input.Email != "" && !strings.Contains(input.Email, "@") {
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if !input.UserType.Valid() {
		return &ValidationError{Field: "userType", Message: "is not a known user type"}
	}
	if err := s.validator.Validate(input.Password); err != nil {
		return &ValidationError{Field: "password", Message: err.Error()}
	}
	return nil
}
