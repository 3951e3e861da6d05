package jwt

import (
	"errors"
	"testing"
)

const testSecret = "test_secret"

func TestValidateAccessToken_RoundTripsEmail(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		email  string
	}{
		{name: "plain address", userID: 1, email: "alice@example.com"},
		{name: "plus address", userID: 42, email: "bob+loans@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateAccessToken(tt.userID, tt.email, testSecret, 15)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}

			claims, err := ValidateAccessToken(token, testSecret)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if claims.Email != tt.email {
				t.Fatalf("expected email %q, got %q", tt.email, claims.Email)
			}
			if claims.UserID != tt.userID {
				t.Fatalf("expected user id %d, got %d", tt.userID, claims.UserID)
			}
		})
	}
}

func TestValidateAccessToken_RejectsExpired(t *testing.T) {
	token, err := GenerateAccessToken(1, "alice@example.com", testSecret, -1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = ValidateAccessToken(token, testSecret)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateAccessToken_RejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "alice@example.com", testSecret, 15)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = ValidateAccessToken(token, "other_secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateAccessToken_RejectsGarbage(t *testing.T) {
	_, err := ValidateAccessToken("not-a-token", testSecret)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateRefreshToken_RoundTrips(t *testing.T) {
	token, err := GenerateRefreshToken(7, "tok-123", testSecret, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateRefreshToken(token, testSecret)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 7 || claims.TokenID != "tok-123" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
