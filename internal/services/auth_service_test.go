package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/utils"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

func newTestAuthService(t *testing.T, repo *mockRepository) (*authService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := &authService{
		repo:        repo,
		db:          nil,
		logger:      logger,
		validator:   validator.New(),
		redisClient: client,
		tokens:      utils.NewJWTManager("test-secret", time.Hour),
	}
	return service, mr
}

func addTestUser(repo *mockRepository, username, password string, role models.UserRole) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return repo.users.add(&models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	})
}

func TestAuthService_SendOTP(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	service, mr := newTestAuthService(t, repo)

	if err := service.SendOTP(ctx, &SendOTPRequest{Phone: "9876543210"}); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}

	code, err := mr.Get("otp:9876543210")
	if err != nil {
		t.Fatalf("OTP was not stored: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("Expected a 6 digit code, got %q", code)
	}
	if ttl := mr.TTL("otp:9876543210"); ttl <= 0 || ttl > 5*time.Minute {
		t.Errorf("Expected a TTL within 5 minutes, got %v", ttl)
	}

	// A re-send replaces the outstanding code.
	if err := service.SendOTP(ctx, &SendOTPRequest{Phone: "9876543210"}); err != nil {
		t.Fatalf("Second SendOTP failed: %v", err)
	}

	if err := service.SendOTP(ctx, &SendOTPRequest{Phone: "123"}); !IsValidationError(err) {
		t.Errorf("Expected a validation error for a short phone, got %v", err)
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	validRequest := func(otp string) *RegisterRequest {
		return &RegisterRequest{
			Username: "asha42",
			Email:    "asha@example.com",
			Password: "s3cret-password",
			Phone:    "9876543210",
			OTP:      otp,
		}
	}

	t.Run("registers a student with a valid otp", func(t *testing.T) {
		repo := newMockRepository()
		service, mr := newTestAuthService(t, repo)
		mr.Set("otp:9876543210", "123456")

		resp, err := service.Register(ctx, validRequest("123456"))
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if resp.Token == "" {
			t.Error("Registration should issue a token")
		}
		if resp.User.Role != models.RoleStudent {
			t.Errorf("Self-registration must create a student, got %s", resp.User.Role)
		}
		if !resp.User.PhoneVerified {
			t.Error("Phone should be marked verified")
		}
		if resp.User.PasswordHash == "s3cret-password" {
			t.Error("Password must not be stored in the clear")
		}

		// The code is single-use.
		if _, err := mr.Get("otp:9876543210"); err == nil {
			t.Error("OTP should be consumed after registration")
		}
	})

	t.Run("wrong otp is rejected", func(t *testing.T) {
		repo := newMockRepository()
		service, mr := newTestAuthService(t, repo)
		mr.Set("otp:9876543210", "123456")

		_, err := service.Register(ctx, validRequest("654321"))
		if !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("Expected ErrInvalidOTP, got %v", err)
		}
	})

	t.Run("missing otp is rejected", func(t *testing.T) {
		repo := newMockRepository()
		service, _ := newTestAuthService(t, repo)

		_, err := service.Register(ctx, validRequest("123456"))
		if !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("Expected ErrInvalidOTP, got %v", err)
		}
	})

	t.Run("expired otp is rejected", func(t *testing.T) {
		repo := newMockRepository()
		service, mr := newTestAuthService(t, repo)
		mr.Set("otp:9876543210", "123456")
		mr.SetTTL("otp:9876543210", time.Minute)
		mr.FastForward(2 * time.Minute)

		_, err := service.Register(ctx, validRequest("123456"))
		if !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("Expected ErrInvalidOTP, got %v", err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := newMockRepository()
		addTestUser(repo, "asha42", "whatever", models.RoleStudent)
		service, mr := newTestAuthService(t, repo)
		mr.Set("otp:9876543210", "123456")

		_, err := service.Register(ctx, validRequest("123456"))
		if !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("Expected ErrUsernameTaken, got %v", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	addTestUser(repo, "asha42", "s3cret-password", models.RoleStudent)
	service, _ := newTestAuthService(t, repo)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := service.Login(ctx, &LoginRequest{Username: "asha42", Password: "s3cret-password"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.Token == "" {
			t.Error("Login should issue a token")
		}

		claims, err := service.tokens.ParseToken(resp.Token)
		if err != nil {
			t.Fatalf("Issued token does not verify: %v", err)
		}
		if claims.Username != "asha42" {
			t.Errorf("Token carries the wrong username: %s", claims.Username)
		}
	})

	t.Run("email works in the username field", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{Username: "asha42@example.com", Password: "s3cret-password"})
		if err != nil {
			t.Fatalf("Login by email failed: %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{Username: "asha42", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{Username: "nobody", Password: "whatever"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_CreateUser(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	service, _ := newTestAuthService(t, repo)

	user, err := service.CreateUser(ctx, &CreateUserRequest{
		Username: "meera",
		Email:    "meera@example.com",
		Password: "hr-password-1",
		Role:     "hr",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Role != models.RoleHR {
		t.Errorf("Expected role hr, got %s", user.Role)
	}

	_, err = service.CreateUser(ctx, &CreateUserRequest{
		Username: "rogue",
		Email:    "rogue@example.com",
		Password: "rogue-password",
		Role:     "superuser",
	})
	if !IsValidationError(err) {
		t.Errorf("Expected a validation error for an unknown role, got %v", err)
	}
}

func TestAuthService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	admin := addTestUser(repo, "admin", "admin-password", models.RoleAdmin)
	victim := addTestUser(repo, "leaver", "bye-password", models.RoleStudent)
	service, _ := newTestAuthService(t, repo)

	if err := service.DeleteUser(ctx, victim.ID, admin.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := repo.users.GetByID(ctx, nil, victim.ID); err == nil {
		t.Error("User should be gone")
	}

	if err := service.DeleteUser(ctx, admin.ID, admin.ID); !IsPermissionError(err) {
		t.Errorf("Expected a permission error for self-deletion, got %v", err)
	}

	if err := service.DeleteUser(ctx, 999, admin.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateOTP()
		if err != nil {
			t.Fatalf("generateOTP failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("Expected 6 digits, got %q", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("Non-digit in code %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("Codes should vary across draws")
	}

	// 2400 uniform digits miss a given value with probability well under
	// one in a billion.
	digitCounts := make(map[rune]int)
	for i := 0; i < 400; i++ {
		code, err := generateOTP()
		if err != nil {
			t.Fatalf("generateOTP failed: %v", err)
		}
		for _, c := range code {
			digitCounts[c]++
		}
	}
	for d := '0'; d <= '9'; d++ {
		if digitCounts[d] == 0 {
			t.Errorf("Digit %c never drawn across 400 codes", d)
		}
	}
}
