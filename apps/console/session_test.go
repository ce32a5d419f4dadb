package main

import (
	"testing"
)

func TestAdminSessionTokenRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)

	token, err := app.createAdminSessionToken(AdminSession{Username: "admin", Token: "upstream-abc"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	session, err := app.verifyAdminSessionToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if session.Username != "admin" || session.Token != "upstream-abc" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestAdminSessionTokenWrongSecretFails(t *testing.T) {
	app, _ := newTestApp(t)
	token, err := app.createAdminSessionToken(AdminSession{Username: "admin", Token: "upstream-abc"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	other, _ := newTestApp(t)
	other.cfg.AppSigningSecret = "fedcba9876543210"
	if _, err := other.verifyAdminSessionToken(token); err == nil {
		t.Fatal("expected verification to fail with a different secret")
	}
}

func TestAdminSessionTokenGarbageFails(t *testing.T) {
	app, _ := newTestApp(t)
	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := app.verifyAdminSessionToken(token); err == nil {
			t.Fatalf("expected failure for token %q", token)
		}
	}
}
