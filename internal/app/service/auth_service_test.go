package service

import (
	"context"
	"testing"
	"time"

	"calc_service/internal/common"
	"calc_service/internal/common/security"
	"calc_service/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, throttle LoginThrottle) (*AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	svc := NewAuthService(
		repo,
		security.NewHasher(bcrypt.MinCost),
		security.NewTokenManager([]byte("test-secret"), time.Hour),
		PasswordPolicy{MinLength: 8},
		throttle,
		zap.NewNop(),
	)
	return svc, repo
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, nil)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "A@X.com",
		Password: "GoodPass1!",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "a@x.com", user.Email) // normalized
	assert.True(t, user.IsActive)
	assert.Empty(t, user.HashedPassword)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "a", Email: "not-an-email", Password: "GoodPass1!"})
	assert.ErrorIs(t, err, common.ErrInvalidEmail)

	_, err = svc.Register(ctx, RegisterRequest{Username: "a", Email: "a@x.com", Password: "short1"})
	assert.ErrorIs(t, err, common.ErrWeakPassword)

	_, err = svc.Register(ctx, RegisterRequest{Username: "a", Email: "a@x.com", Password: "nodigitshere"})
	assert.ErrorIs(t, err, common.ErrWeakPassword)

	_, err = svc.Register(ctx, RegisterRequest{Username: "", Email: "a@x.com", Password: "GoodPass1!"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice2", Email: "a@x.com", Password: "OtherPass2!"})
	assert.ErrorIs(t, err, common.ErrDuplicateUser)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.HashedPassword)
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)

	_, wrongPw := svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "wrong"})
	_, noUser := svc.Login(ctx, LoginRequest{Email: "nouser@x.com", Password: "anything"})

	assert.ErrorIs(t, wrongPw, common.ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, common.ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), noUser.Error())
}

func TestLogin_Throttled(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, newFakeThrottle(2))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "wrong"})
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	}

	// Window exhausted, even the right password is rejected
	_, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "GoodPass1!"})
	assert.ErrorIs(t, err, common.ErrTooManyAttempts)
}

func TestAuthorize(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)

	got, err := svc.Authorize(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.HashedPassword)

	_, err = svc.Authorize(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrMalformedToken)
}

func TestAuthorize_DisabledUser(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, user.ID))

	_, err = svc.Authorize(ctx, resp.Token)
	assert.ErrorIs(t, err, common.ErrUserDisabled)
}

func TestAuthorize_SubjectGone(t *testing.T) {
	t.Parallel()
	svc, repo := newTestAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)

	// Simulate the account vanishing out from under a live token
	repo.mu.Lock()
	repo.users = map[string]*model.User{}
	repo.mu.Unlock()

	_, err = svc.Authorize(ctx, resp.Token)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong", "NewPass99!")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "GoodPass1!", "weak")
	assert.ErrorIs(t, err, common.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "GoodPass1!", "NewPass99!"))

	_, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "GoodPass1!"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "NewPass99!"})
	assert.NoError(t, err)
}

func TestLogin_DisabledUser(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@x.com", Password: "GoodPass1!"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, user.ID))

	_, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "GoodPass1!"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}
