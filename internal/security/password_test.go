package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "secret1" {
		t.Fatal("hash must not equal plaintext")
	}

	if err := CheckPassword(hash, "secret1"); err != nil {
		t.Errorf("expected password to verify: %v", err)
	}

	if err := CheckPassword(hash, "secret2"); err == nil {
		t.Error("expected mismatch for wrong password")
	}
}

func TestRehashInvalidatesOldPassword(t *testing.T) {
	oldHash, err := HashPassword("secret1")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	newHash, err := HashPassword("secret2")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if err := CheckPassword(newHash, "secret2"); err != nil {
		t.Errorf("new plaintext should verify against new hash: %v", err)
	}

	if err := CheckPassword(newHash, "secret1"); err == nil {
		t.Error("old plaintext must not verify against new hash")
	}

	if oldHash == newHash {
		t.Error("bcrypt hashes should be salted, got identical hashes")
	}
}

func TestNewResetToken(t *testing.T) {
	a, err := NewResetToken()

	if err != nil {
		t.Fatalf("NewResetToken failed: %v", err)
	}

	b, err := NewResetToken()

	if err != nil {
		t.Fatalf("NewResetToken failed: %v", err)
	}

	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}

	if a == b {
		t.Error("two tokens should not collide")
	}
}

func TestNewInitialPassword(t *testing.T) {
	p, err := NewInitialPassword(12)

	if err != nil {
		t.Fatalf("NewInitialPassword failed: %v", err)
	}

	if len(p) != 12 {
		t.Errorf("expected 12 chars, got %d", len(p))
	}

	// zero or negative lengths fall back to the default
	p, err = NewInitialPassword(0)

	if err != nil {
		t.Fatalf("NewInitialPassword failed: %v", err)
	}

	if len(p) != 12 {
		t.Errorf("expected fallback length 12, got %d", len(p))
	}
}
