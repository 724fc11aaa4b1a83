package utils

import (
	"testing"
	"time"

	"servicehub/config"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.AppConfig.JWTSecret
	config.AppConfig.JWTSecret = secret
	t.Cleanup(func() { config.AppConfig.JWTSecret = prev })
}

func TestTokenRoundTripCarriesIdentity(t *testing.T) {
	withSecret(t, "test-secret")

	tok, err := GenerateToken(Identity{Subject: "admin-1", Role: "client_admin", OrganizationID: "org-1"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	id, err := IdentityFromToken(tok)
	if err != nil {
		t.Fatalf("IdentityFromToken: %v", err)
	}
	if id.Subject != "admin-1" || id.Role != "client_admin" || id.OrganizationID != "org-1" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestIdentityFromTokenRejects(t *testing.T) {
	withSecret(t, "test-secret")

	expired, _ := GenerateToken(Identity{Subject: "c-1", Role: "customer"}, -time.Minute)
	noRole, _ := GenerateToken(Identity{Subject: "c-1"}, time.Hour)

	withSecret(t, "other-secret")
	foreign, _ := GenerateToken(Identity{Subject: "c-1", Role: "customer"}, time.Hour)
	withSecret(t, "test-secret")

	cases := map[string]string{
		"expired":      expired,
		"missing role": noRole,
		"wrong key":    foreign,
		"garbage":      "not.a.token",
	}
	for name, tok := range cases {
		if _, err := IdentityFromToken(tok); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}

func TestMissingSecretRefusesTokens(t *testing.T) {
	withSecret(t, "")
	if _, err := GenerateToken(Identity{Subject: "c-1", Role: "customer"}, time.Hour); err == nil {
		t.Fatalf("expected an error without a secret")
	}
}
