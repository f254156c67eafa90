package delegation

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/louisbranch/claimledger/internal/errors"
)

func TestLoadGrantConfigFromEnv(t *testing.T) {
	t.Setenv("CLAIMLEDGER_SIGNER_GRANT_ISSUER", "")
	t.Setenv("CLAIMLEDGER_SIGNER_GRANT_AUDIENCE", "")
	t.Setenv("CLAIMLEDGER_SIGNER_GRANT_PUBLIC_KEY", "")

	if _, err := LoadGrantConfigFromEnv(nil); err == nil {
		t.Fatal("expected error when env vars are missing")
	}

	pubKey, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	t.Setenv("CLAIMLEDGER_SIGNER_GRANT_ISSUER", "issuer")
	t.Setenv("CLAIMLEDGER_SIGNER_GRANT_AUDIENCE", "claimledger")
	t.Setenv("CLAIMLEDGER_SIGNER_GRANT_PUBLIC_KEY", base64.RawStdEncoding.EncodeToString(pubKey))

	cfg, err := LoadGrantConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load grant config: %v", err)
	}
	if cfg.Issuer != "issuer" || cfg.Audience != "claimledger" {
		t.Fatal("expected issuer and audience to be loaded")
	}
	if len(cfg.Key) != ed25519.PublicKeySize {
		t.Fatalf("expected public key size %d", ed25519.PublicKeySize)
	}
}

func TestValidateSignerGrantSuccess(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	grant := signGrant(t, priv, map[string]any{
		"alg": "EdDSA",
		"typ": "JWT",
	}, map[string]any{
		"iss":        "issuer",
		"aud":        []string{"claimledger", "secondary"},
		"exp":        now.Add(2 * time.Hour).Unix(),
		"iat":        now.Add(-time.Minute).Unix(),
		"jti":        "jti-1",
		"account_id": "dao",
		"signer_id":  "alice",
	})

	cfg := GrantConfig{Issuer: "issuer", Audience: "claimledger", Key: pub, Now: func() time.Time { return now }}
	claims, err := ValidateSignerGrant(grant, GrantExpectation{Account: "dao", Signer: "alice"}, cfg)
	if err != nil {
		t.Fatalf("validate signer grant: %v", err)
	}
	if claims.Account != "dao" || claims.Signer != "alice" {
		t.Fatal("expected account and signer claims to match")
	}
}

func TestValidateSignerGrantFailures(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate other key: %v", err)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := GrantConfig{Issuer: "issuer", Audience: "claimledger", Key: pub, Now: func() time.Time { return now }}
	base := map[string]any{
		"iss":        "issuer",
		"aud":        "claimledger",
		"exp":        now.Add(time.Hour).Unix(),
		"jti":        "jti-1",
		"account_id": "dao",
		"signer_id":  "alice",
	}

	override := func(key string, value any) map[string]any {
		payload := make(map[string]any, len(base))
		for k, v := range base {
			payload[k] = v
		}
		payload[key] = value
		return payload
	}

	tests := []struct {
		name  string
		grant string
	}{
		{"empty grant", ""},
		{"wrong signature", signGrant(t, otherPriv, map[string]any{"alg": "EdDSA"}, base)},
		{"wrong issuer", signGrant(t, priv, map[string]any{"alg": "EdDSA"}, override("iss", "other"))},
		{"wrong audience", signGrant(t, priv, map[string]any{"alg": "EdDSA"}, override("aud", "other"))},
		{"expired", signGrant(t, priv, map[string]any{"alg": "EdDSA"}, override("exp", now.Add(-time.Minute).Unix()))},
		{"missing jti", signGrant(t, priv, map[string]any{"alg": "EdDSA"}, override("jti", ""))},
		{"account mismatch", signGrant(t, priv, map[string]any{"alg": "EdDSA"}, override("account_id", "other"))},
		{"signer mismatch", signGrant(t, priv, map[string]any{"alg": "EdDSA"}, override("signer_id", "bob"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSignerGrant(tt.grant, GrantExpectation{Account: "dao", Signer: "alice"}, cfg)
			if !apperrors.IsCode(err, apperrors.CodeGrantInvalid) {
				t.Fatalf("expected grant-invalid error, got %v", err)
			}
		})
	}
}

func TestModuleWithGrantVerification(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := testClock()
	cfg := GrantConfig{Issuer: "issuer", Audience: "claimledger", Key: pub, Now: now}
	module, _ := newTestModule(t, WithGrantVerification(cfg))

	grant := signGrant(t, priv, map[string]any{"alg": "EdDSA"}, map[string]any{
		"iss":        "issuer",
		"aud":        "claimledger",
		"exp":        now().Add(time.Hour).Unix(),
		"jti":        "jti-1",
		"account_id": "dao",
		"signer_id":  "alice",
	})

	// Membership alone is no longer enough.
	_, err = module.CreateClaim(context.Background(), Credentials{Signer: "alice"}, daoInput("carol"), "")
	if !apperrors.IsCode(err, apperrors.CodeGrantInvalid) {
		t.Fatalf("expected grant-invalid error without grant, got %v", err)
	}

	created, err := module.CreateClaim(context.Background(), Credentials{Signer: "alice", Grant: grant}, daoInput("carol"), "")
	if err != nil {
		t.Fatalf("delegated create with grant: %v", err)
	}
	if created.Creditor != "dao" {
		t.Fatalf("expected account as creditor, got %q", created.Creditor)
	}
}

func signGrant(t *testing.T, privateKey ed25519.PrivateKey, header, payload map[string]any) string {
	t.Helper()

	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	encodedHeader := base64.RawURLEncoding.EncodeToString(headerJSON)
	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signingInput := encodedHeader + "." + encodedPayload
	signature := ed25519.Sign(privateKey, []byte(signingInput))
	encodedSig := base64.RawURLEncoding.EncodeToString(signature)
	return signingInput + "." + encodedSig
}
