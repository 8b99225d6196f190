package notify

import (
	"context"
	"net"
	"testing"
	"time"

	"servicemon/internal/config"
)

func testContacts() config.Contacts {
	return config.Contacts{
		Source:          config.Source{Account: "monitor", Service: "@example.com"},
		Recipients:      []string{"team@example.com", "oncall@example.com"},
		ScriptRecipient: []string{"ops@example.com"},
	}
}

func TestNewEmail_RequiresCredential(t *testing.T) {
	_, err := NewEmail(testContacts(), config.EmailMetadata{Subject: "x"}, "", 0, "")
	if err == nil {
		t.Fatal("want error for empty password")
	}
}

func TestNewEmail_Defaults(t *testing.T) {
	e, err := NewEmail(testContacts(), config.EmailMetadata{Subject: "x"}, "", 0, "secret")
	if err != nil {
		t.Fatalf("NewEmail: %v", err)
	}
	if e.Host != DefaultSMTPHost || e.Port != DefaultSMTPPort {
		t.Fatalf("want default host/port, got %s:%d", e.Host, e.Port)
	}
}

func TestEmail_FromJoinsAccountAndService(t *testing.T) {
	e, err := NewEmail(testContacts(), config.EmailMetadata{}, "", 0, "secret")
	if err != nil {
		t.Fatalf("NewEmail: %v", err)
	}
	if got := e.From(); got != "monitor@example.com" {
		t.Fatalf("want monitor@example.com, got %q", got)
	}
}

func TestEmail_RecipientsFollowAudience(t *testing.T) {
	e, err := NewEmail(testContacts(), config.EmailMetadata{}, "", 0, "secret")
	if err != nil {
		t.Fatalf("NewEmail: %v", err)
	}

	all := e.recipientsFor(AudienceAll)
	if len(all) != 2 || all[0] != "team@example.com" {
		t.Fatalf("all recipients wrong: %v", all)
	}

	ops := e.recipientsFor(AudienceOperators)
	if len(ops) != 1 || ops[0] != "ops@example.com" {
		t.Fatalf("operator recipients wrong: %v", ops)
	}
}

func TestEmail_SendFailsWhenServerUnreachable(t *testing.T) {
	// Grab a port nothing listens on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	e, err := NewEmail(testContacts(), config.EmailMetadata{Subject: "x"}, "127.0.0.1", port, "secret")
	if err != nil {
		t.Fatalf("NewEmail: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Send(ctx, "body", AudienceAll); err == nil {
		t.Fatal("want send error against closed port")
	}
}
