package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harborstay/booking-backend/pkg/config"
	"github.com/harborstay/booking-backend/pkg/enums"
)

func testJWTConfig(minutes int) config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "harborstay-admin",
		ExpirationMinutes: minutes,
	}
}

func TestMintAndParseOperatorToken(t *testing.T) {
	cfg := testJWTConfig(30)
	now := time.Now().UTC()

	token, err := MintOperatorToken(cfg, now, OperatorTokenPayload{
		OperatorID: "op-42",
		Role:       enums.OperatorRoleRevenueManager,
	})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}

	claims, err := ParseOperatorToken(cfg, token)
	if err != nil {
		t.Fatalf("parse operator token: %v", err)
	}

	if claims.OperatorID != "op-42" {
		t.Fatalf("expected operator_id op-42, got %s", claims.OperatorID)
	}
	if claims.Subject != "op-42" {
		t.Fatalf("expected subject op-42, got %s", claims.Subject)
	}
	if claims.Role != enums.OperatorRoleRevenueManager {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseOperatorTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig(10)
	token, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{
		OperatorID: "op-1",
		Role:       enums.OperatorRoleFrontDesk,
	})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}

	if _, err := ParseOperatorToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseOperatorTokenExpired(t *testing.T) {
	cfg := testJWTConfig(15)
	token, err := MintOperatorToken(cfg, time.Now().Add(-time.Hour), OperatorTokenPayload{
		OperatorID: "op-1",
		Role:       enums.OperatorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}

	_, err = ParseOperatorToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseOperatorTokenWrongIssuer(t *testing.T) {
	cfg := testJWTConfig(15)
	token, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{
		OperatorID: "op-1",
		Role:       enums.OperatorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseOperatorToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseOperatorTokenRejectsUnknownRole(t *testing.T) {
	cfg := testJWTConfig(15)
	claims := OperatorClaims{
		OperatorID: "op-1",
		Role:       "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseOperatorToken(cfg, token); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestMintOperatorTokenValidatesPayload(t *testing.T) {
	cfg := testJWTConfig(5)
	if _, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{OperatorID: "op-1"}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{Role: enums.OperatorRoleAdmin}); err == nil {
		t.Fatal("expected missing operator error")
	}
	if _, err := MintOperatorToken(testJWTConfig(0), time.Now(), OperatorTokenPayload{OperatorID: "op-1", Role: enums.OperatorRoleAdmin}); err == nil {
		t.Fatal("expected expiration config error")
	}
}
