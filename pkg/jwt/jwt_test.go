package jwt

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-construction-inventory/internal/config"
)

func TestGenerateAndValidate(t *testing.T) {
	Init(config.JWTConfig{Secret: "test-secret", Issuer: "tests", ExpireHours: 1})

	id := uuid.New()
	token, err := GenerateToken(id, "a@b.c", "Andi", "inventory", []string{"inventory:read"}, "v1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != id {
		t.Errorf("UserID = %v, want %v", claims.UserID, id)
	}
	if claims.Issuer != "tests" {
		t.Errorf("Issuer = %q, want tests", claims.Issuer)
	}
	if claims.TokenVersion != "v1" {
		t.Errorf("TokenVersion = %q, want v1", claims.TokenVersion)
	}
}

func TestValidateRejects(t *testing.T) {
	Init(config.JWTConfig{Secret: "test-secret", Issuer: "tests", ExpireHours: 1})

	foreign := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{UserID: uuid.New()})
	signed, err := foreign.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", signed},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.token); err != ErrInvalidToken {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
