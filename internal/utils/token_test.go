package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/AssessHub-IN/portal-service/internal/models"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)

	user := &models.User{
		ID:       42,
		Username: "asha",
		Role:     models.RoleStudent,
	}

	token, err := manager.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("Token should not be empty")
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("Expected user id 42, got %d", claims.UserID)
	}
	if claims.Username != "asha" {
		t.Errorf("Expected username asha, got %s", claims.Username)
	}
	if claims.Role != string(models.RoleStudent) {
		t.Errorf("Expected role student, got %s", claims.Role)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Error("Token should expire in the future")
	}
}

func TestJWTManager_WrongKey(t *testing.T) {
	issuer := NewJWTManager("issuing-key", time.Hour)
	verifier := NewJWTManager("different-key", time.Hour)

	token, err := issuer.GenerateToken(&models.User{ID: 1, Username: "asha", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := verifier.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for a foreign signature, got %v", err)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret-key", -time.Minute)

	token, err := manager.GenerateToken(&models.User{ID: 1, Username: "asha", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := manager.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for an expired token, got %v", err)
	}
}

func TestJWTManager_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := manager.ParseToken(input); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Input %q: expected ErrInvalidToken, got %v", input, err)
		}
	}
}
