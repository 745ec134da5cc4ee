package jobs

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	exp := time.Now().UTC().Add(15 * time.Minute).Truncate(time.Second)

	b, err := EncodePayload(KindPasswordReset, PasswordResetPayload{
		Name:      "Alice",
		Token:     "deadbeefdeadbeefdeadbeefdeadbeef",
		ResetURL:  "http://localhost:8080/reset?token=deadbeef",
		ExpiresAt: exp,
	})

	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}

	j, err := New(KindPasswordReset, "alice@mail.example.edu", b)

	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	decoded, err := DecodePayload(j)

	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}

	p, ok := decoded.(PasswordResetPayload)

	if !ok {
		t.Fatalf("expected PasswordResetPayload, got %T", decoded)
	}

	if p.Name != "Alice" || p.Token != "deadbeefdeadbeefdeadbeefdeadbeef" {
		t.Errorf("unexpected payload: %+v", p)
	}

	if !p.ExpiresAt.Equal(exp) {
		t.Errorf("expiry mangled: want %v got %v", exp, p.ExpiresAt)
	}
}

func TestEncodePayloadKindMismatch(t *testing.T) {
	_, err := EncodePayload(KindPasswordReset, AdminCredentialsPayload{Name: "Bob"})

	if !errors.Is(err, ErrPayloadKindMismatch) {
		t.Fatalf("expected ErrPayloadKindMismatch, got %v", err)
	}
}

func TestEncodePayloadInvalidKind(t *testing.T) {
	_, err := EncodePayload(Kind("bogus"), PasswordResetPayload{})

	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	j := Job{Kind: KindAdminCredentials}

	_, err := DecodePayload(j)

	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New(Kind("bogus"), "x@example.com", []byte(`{}`))

	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
