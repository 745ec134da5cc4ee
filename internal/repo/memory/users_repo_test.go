package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmutuku/campushub/internal/domain/user"
)

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, "Alice@Mail.Example.EDU", "hash1", "Alice", user.RoleUser)

	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// same address, different case
	_, err = repo.Create(ctx, "alice@mail.example.edu", "hash2", "Alice 2", user.RoleUser)

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestConsumeResetTokenOnce(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	u, err := repo.Create(ctx, "alice@mail.example.edu", "hash", "Alice", user.RoleUser)

	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = repo.SetResetToken(ctx, u.ID, "tok-1", time.Now().Add(15*time.Minute))

	if err != nil {
		t.Fatalf("SetResetToken failed: %v", err)
	}

	if err := repo.ConsumeResetToken(ctx, u.Email, "tok-1", "newhash"); err != nil {
		t.Fatalf("first consume failed: %v", err)
	}

	// replay must fail identically to an unknown token
	err = repo.ConsumeResetToken(ctx, u.Email, "tok-1", "otherhash")

	if !errors.Is(err, user.ErrResetInvalid) {
		t.Fatalf("expected ErrResetInvalid on replay, got %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)

	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.PasswordHash != "newhash" {
		t.Errorf("hash not updated, got %q", got.PasswordHash)
	}

	if got.ResetToken != nil || got.ResetExpires != nil {
		t.Error("reset fields must be cleared after consumption")
	}
}

func TestConsumeResetTokenExpired(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	u, _ := repo.Create(ctx, "alice@mail.example.edu", "hash", "Alice", user.RoleUser)
	_ = repo.SetResetToken(ctx, u.ID, "tok-1", time.Now().Add(-time.Minute))

	err := repo.ConsumeResetToken(ctx, u.Email, "tok-1", "newhash")

	if !errors.Is(err, user.ErrResetInvalid) {
		t.Fatalf("expected ErrResetInvalid for expired token, got %v", err)
	}
}

func TestConcurrentConsumeExactlyOneWins(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	u, _ := repo.Create(ctx, "alice@mail.example.edu", "hash", "Alice", user.RoleUser)
	_ = repo.SetResetToken(ctx, u.ID, "tok-1", time.Now().Add(15*time.Minute))

	const attempts = 16

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			results <- repo.ConsumeResetToken(ctx, u.Email, "tok-1", "newhash")
		}()
	}

	wg.Wait()
	close(results)

	wins := 0

	for err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, user.ErrResetInvalid) {
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Fatalf("expected exactly one successful consumption, got %d", wins)
	}
}

func TestPartialUpdateHashPath(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	u, _ := repo.Create(ctx, "alice@mail.example.edu", "hash-old", "Alice", user.RoleUser)

	newHash := "hash-new"
	got, err := repo.UpdateProfile(ctx, u.ID, user.UpdateProfileParams{PasswordHash: &newHash})

	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if got.PasswordHash != "hash-new" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}

	if got.Name != "Alice" || got.Email != "alice@mail.example.edu" {
		t.Errorf("untouched fields changed: %+v", got)
	}
}
