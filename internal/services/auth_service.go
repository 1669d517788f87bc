package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/utils"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

const (
	otpKeyPrefix = "otp:"
	otpTTL       = 5 * time.Minute
)

type authService struct {
	repo        repositories.Repository
	db          *gorm.DB
	logger      *slog.Logger
	validator   *validator.Validator
	redisClient *redis.Client
	tokens      *utils.JWTManager
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, redisClient *redis.Client, tokens *utils.JWTManager) AuthService {
	return &authService{
		repo:        repo,
		db:          db,
		logger:      logger,
		validator:   validator,
		redisClient: redisClient,
		tokens:      tokens,
	}
}

// ===== OTP =====

func (s *authService) SendOTP(ctx context.Context, req *SendOTPRequest) error {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return NewValidationError(errs)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	if s.redisClient == nil {
		return fmt.Errorf("otp store not available")
	}

	// A re-send replaces any outstanding code for the phone.
	key := otpKeyPrefix + req.Phone
	if err := s.redisClient.Set(ctx, key, code, otpTTL).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	// Dev-mode delivery: the code goes to the log instead of an SMS
	// gateway.
	s.logger.Info("OTP issued",
		"phone", req.Phone,
		"code", code)

	return nil
}

func (s *authService) verifyOTP(ctx context.Context, phone, code string) error {
	if s.redisClient == nil {
		return ErrInvalidOTP
	}

	key := otpKeyPrefix + phone
	stored, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrInvalidOTP
		}
		return fmt.Errorf("failed to read otp: %w", err)
	}

	if stored != code {
		return ErrInvalidOTP
	}

	// Consume on success so the code is single-use.
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("Failed to delete consumed otp", "error", err)
	}

	return nil
}

// ===== REGISTRATION & LOGIN =====

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	s.logger.Info("Registering student", "username", req.Username)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	if err := s.verifyOTP(ctx, req.Phone, req.OTP); err != nil {
		return nil, err
	}

	if taken, err := s.repo.User().ExistsByUsername(ctx, s.db, req.Username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, ErrUsernameTaken
	}

	if taken, err := s.repo.User().ExistsByEmail(ctx, s.db, req.Email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Self-registration is always a student account.
	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           models.RoleStudent,
		Phone:          req.Phone,
		PhoneVerified:  true,
		FullName:       req.FullName,
		Specialization: req.Specialization,
	}

	if err := s.repo.User().Create(ctx, s.db, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("Student registered", "user_id", user.ID)

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	user, err := s.repo.User().GetByUsername(ctx, s.db, req.Username)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		// Allow email in the username field.
		user, err = s.repo.User().GetByEmail(ctx, s.db, req.Username)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ===== ADMIN USER MANAGEMENT =====

func (s *authService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	s.logger.Info("Creating user", "username", req.Username, "role", req.Role)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	if taken, err := s.repo.User().ExistsByUsername(ctx, s.db, req.Username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, ErrUsernameTaken
	}

	if taken, err := s.repo.User().ExistsByEmail(ctx, s.db, req.Email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           models.UserRole(req.Role),
		FullName:       req.FullName,
		Specialization: req.Specialization,
	}

	if err := s.repo.User().Create(ctx, s.db, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.GetProfile(ctx, id)
}

func (s *authService) ListUsers(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	page, size := pageFromOffset(filters.Limit, filters.Offset)
	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

func (s *authService) DeleteUser(ctx context.Context, id uint, actorID uint) error {
	if id == actorID {
		return NewPermissionError(actorID, "user", "delete", "cannot delete own account")
	}

	if _, err := s.repo.User().GetByID(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.repo.User().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", id, "actor_id", actorID)
	return nil
}

// generateOTP draws six decimal digits from crypto/rand. Bytes 250-255
// are discarded so every digit is equally likely.
func generateOTP() (string, error) {
	digits := make([]byte, 0, 6)
	buf := make([]byte, 16)
	for len(digits) < 6 {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 250 {
				continue
			}
			digits = append(digits, '0'+b%10)
			if len(digits) == 6 {
				break
			}
		}
	}
	return string(digits), nil
}
