package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmutuku/campushub/internal/domain/user"
)

// UsersRepo is an in-memory credential store with the same semantics as the
// postgres one. Handler tests run against it.
type UsersRepo struct {
	mu    sync.Mutex
	users map[string]user.User // keyed by id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		users: make(map[string]user.User),
	}
}

func (r *UsersRepo) findByEmailLocked(email string) (user.User, bool) {
	email = user.NormalizeEmail(email)

	for _, u := range r.users {
		if u.Email == email {
			return u, true
		}
	}

	return user.User{}, false
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.findByEmailLocked(email); exists {
		return user.User{}, user.ErrEmailTaken
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        user.NormalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.findByEmailLocked(email)

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, p user.UpdateProfileParams) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if p.Email != nil {
		if existing, exists := r.findByEmailLocked(*p.Email); exists && existing.ID != id {
			return user.User{}, user.ErrEmailTaken
		}

		u.Email = user.NormalizeEmail(*p.Email)
	}

	if p.Name != nil {
		u.Name = *p.Name
	}

	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}

	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u

	return u, nil
}

func (r *UsersRepo) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok {
		return user.ErrNotFound
	}

	u.ResetToken = &token
	u.ResetExpires = &expires
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u

	return nil
}

// ConsumeResetToken mirrors the single-statement conditional update of the
// postgres repo: match and clear under one lock, so a racing second caller
// always sees the token already gone.
func (r *UsersRepo) ConsumeResetToken(ctx context.Context, email, token, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.findByEmailLocked(email)

	if !ok {
		return user.ErrResetInvalid
	}

	if u.ResetToken == nil || *u.ResetToken != token {
		return user.ErrResetInvalid
	}

	if u.ResetExpires == nil || !u.ResetExpires.After(time.Now()) {
		return user.ErrResetInvalid
	}

	u.PasswordHash = newHash
	u.ResetToken = nil
	u.ResetExpires = nil
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = u

	return nil
}

func (r *UsersRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok {
		return user.ErrNotFound
	}

	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u

	return nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.users, id)

	return nil
}

func (r *UsersRepo) ListStaff(ctx context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []user.User

	for _, u := range r.users {
		if u.Role != user.RoleUser {
			out = append(out, u)
		}
	}

	return out, nil
}
