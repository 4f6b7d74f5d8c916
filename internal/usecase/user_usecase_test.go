package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmart/backend/internal/auth"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/pkg/e"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, e.ErrEmailTaken
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, e.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return nil, e.ErrUserNotFound
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return e.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(f.users)), nil
}

func newTestUserUC(repo *fakeUserRepo) *UserUseCase {
	tokens := auth.NewTokenManager(&cfg.AuthCfg{JWTSecret: "test-secret", TokenTTL: time.Hour})
	return NewUserUC(repo, tokens, nopLogger{})
}

func TestSignupIssuesToken(t *testing.T) {
	uc := newTestUserUC(newFakeUserRepo())

	res, err := uc.Signup(context.Background(), &SignupReq{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.False(t, res.User.IsAdmin)
}

func TestSignupDuplicateEmail(t *testing.T) {
	uc := newTestUserUC(newFakeUserRepo())

	req := &SignupReq{Name: "Alice", Email: "alice@example.com", Password: "correct horse"}
	_, err := uc.Signup(context.Background(), req)
	require.NoError(t, err)

	_, err = uc.Signup(context.Background(), req)
	assert.ErrorIs(t, err, e.ErrEmailTaken)
}

func TestSignupValidation(t *testing.T) {
	uc := newTestUserUC(newFakeUserRepo())

	cases := []SignupReq{
		{Name: "", Email: "a@b.com", Password: "long enough"},
		{Name: "A", Email: "not-an-email", Password: "long enough"},
		{Name: "A", Email: "a@b.com", Password: "short"},
	}
	for _, req := range cases {
		_, err := uc.Signup(context.Background(), &req)
		assert.ErrorIs(t, err, e.ErrValidation)
	}
}

func TestSigninWrongCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newTestUserUC(repo)

	_, err := uc.Signup(context.Background(), &SignupReq{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = uc.Signin(context.Background(), &SigninReq{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	_, err = uc.Signin(context.Background(), &SigninReq{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	res, err := uc.Signin(context.Background(), &SigninReq{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestUpdateProfileChangesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newTestUserUC(repo)

	signedUp, err := uc.Signup(context.Background(), &SignupReq{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = uc.UpdateProfile(context.Background(), signedUp.User.ID, &UpdateProfileReq{
		Name:     "Alice B",
		Password: "new password",
	})
	require.NoError(t, err)

	_, err = uc.Signin(context.Background(), &SigninReq{Email: "alice@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	res, err := uc.Signin(context.Background(), &SigninReq{Email: "alice@example.com", Password: "new password"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", res.User.Name)
}

func TestDeleteUserRejectsAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newTestUserUC(repo)

	admin, err := repo.Create(context.Background(), &domain.User{
		Name: "Root", Email: "root@example.com", IsAdmin: true,
	})
	require.NoError(t, err)
	regular, err := repo.Create(context.Background(), &domain.User{
		Name: "Bob", Email: "bob@example.com",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.DeleteUser(context.Background(), admin.ID), e.ErrValidation)
	assert.NoError(t, uc.DeleteUser(context.Background(), regular.ID))
	assert.ErrorIs(t, uc.DeleteUser(context.Background(), regular.ID), e.ErrUserNotFound)
}

func TestAdminUpdateUserTogglesRole(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newTestUserUC(repo)

	user, err := repo.Create(context.Background(), &domain.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	info, err := uc.AdminUpdateUser(context.Background(), user.ID, &AdminUpdateUserReq{
		Name:    "Bob Admin",
		IsAdmin: true,
	})
	require.NoError(t, err)

	assert.True(t, info.IsAdmin)
	assert.Equal(t, "Bob Admin", info.Name)
	assert.Equal(t, "bob@example.com", info.Email)
}
