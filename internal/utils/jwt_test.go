package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
)

func TestGenerateAndValidateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("test-secret")

	tokenString, err := jwtUtil.GenerateToken("user-123", "petsitter")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if tokenString == "" {
		t.Fatal("empty token")
	}

	token, err := jwtUtil.ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if !token.Valid {
		t.Fatal("token should be valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims should be MapClaims")
	}
	if claims["user_id"] != "user-123" {
		t.Errorf("user_id = %v, want user-123", claims["user_id"])
	}
	if claims["role"] != "petsitter" {
		t.Errorf("role = %v, want petsitter", claims["role"])
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		t.Error("jti missing")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tokenString, err := NewJWTUtil("secret-a").GenerateToken("user-123", "client")
	if err != nil {
		t.Fatal(err)
	}

	token, err := NewJWTUtil("secret-b").ValidateToken(tokenString)
	if err == nil && token.Valid {
		t.Fatal("token signed with another secret should not validate")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := NewJWTUtil("test-secret").ValidateToken("not-a-token"); err == nil {
		t.Fatal("garbage input should not validate")
	}
}
