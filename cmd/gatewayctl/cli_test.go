package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"carrier-gateway/internal/auth"
	"carrier-gateway/internal/config"
	"carrier-gateway/internal/webhook"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSign_PrintsHeadersVerifiableByMiddleware(t *testing.T) {
	body := `MessageSid=SM1&MessageStatus=delivered`
	out, err := run(t, body, "sign", "--secret", "whsec", "--timestamp", "1700000000")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	want := webhook.Sign("whsec", "1700000000", []byte(body))
	if !strings.Contains(out, webhook.HeaderTimestamp+": 1700000000") {
		t.Fatalf("missing timestamp header in %q", out)
	}
	if !strings.Contains(out, webhook.HeaderSignature+": "+want) {
		t.Fatalf("missing signature header in %q", out)
	}
}

func TestToken_IssuesVerifiableToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	t.Setenv("WEBHOOK_SECRET", "whsec")

	out, err := run(t, "", "token", "user-42", "--ttl", "1m")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	m, err := auth.NewManager(config.AuthConfig{JWTSecret: "jwt-secret"})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	claims, err := m.Verify(strings.TrimSpace(out), time.Now())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Fatalf("unexpected user: %q", claims.UserID)
	}
}

func TestToken_RequiresUserID(t *testing.T) {
	if _, err := run(t, "", "token"); err == nil {
		t.Fatalf("expected args error")
	}
}

func TestMigrate_ListDoesNotNeedDatabase(t *testing.T) {
	out, err := run(t, "", "migrate", "--list")
	if err != nil {
		t.Fatalf("migrate --list: %v", err)
	}
	if !strings.Contains(out, "001_init.sql") {
		t.Fatalf("expected embedded migration listed, got %q", out)
	}
}

func TestSend_MockCarrier(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	t.Setenv("WEBHOOK_SECRET", "whsec")
	t.Setenv("CARRIERS_ENABLED", "mock")

	out, err := run(t, "", "send", "--to", "+1 (555) 123-4567", "--text", "hi", "--ref", "r1")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(out, `"provider": "mock"`) || !strings.Contains(out, `"client_ref": "r1"`) {
		t.Fatalf("unexpected output %q", out)
	}
}
