package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/auth"
)

type stubUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (r *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *stubUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *stubUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) UpdateLastLogin(ctx context.Context, userID int64) error {
	return nil
}

type storedToken struct {
	userID     int64
	expiryDate time.Time
	revoked    bool
}

type stubTokenRepo struct {
	tokens map[string]*storedToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]*storedToken)}
}

func (r *stubTokenRepo) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	r.tokens[token] = &storedToken{userID: userID, expiryDate: expiryDate}
	return nil
}

func (r *stubTokenRepo) GetTokenByValue(ctx context.Context, token string) (int64, time.Time, bool, error) {
	st, ok := r.tokens[token]
	if !ok {
		return 0, time.Time{}, false, apperrors.ErrTokenNotFound
	}
	return st.userID, st.expiryDate, st.revoked, nil
}

func (r *stubTokenRepo) RevokeToken(ctx context.Context, token string) error {
	if st, ok := r.tokens[token]; ok {
		st.revoked = true
	}
	return nil
}

func (r *stubTokenRepo) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	for _, st := range r.tokens {
		if st.userID == userID {
			st.revoked = true
		}
	}
	return nil
}

func newAuthServiceForTest(users *stubUserRepo, tokens *stubTokenRepo) *AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	return NewAuthService(users, tokens, jwtService, zerolog.Nop())
}

func validRegisterRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username: "jdoe",
		Email:    "JDoe@College.edu",
		Password: "hunter42x",
		FullName: "John Doe",
		Branch:   "Computer Science",
		Year:     3,
	}
}

func TestRegister(t *testing.T) {
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	svc := newAuthServiceForTest(users, tokens)

	resp, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	user, err := users.GetByEmail(context.Background(), "jdoe@college.edu")
	require.NoError(t, err, "email is stored lowercased")
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.UserStatusActive, user.Status, "accounts are active immediately")
	assert.NotEqual(t, "hunter42x", user.Password, "password is stored hashed")
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthServiceForTest(newStubUserRepo(), newStubTokenRepo())

	tests := []struct {
		name   string
		mutate func(*dto.RegisterRequest)
		want   error
	}{
		{"bad email", func(r *dto.RegisterRequest) { r.Email = "not-an-email" }, apperrors.ErrInvalidEmail},
		{"short password", func(r *dto.RegisterRequest) { r.Password = "ab1" }, apperrors.ErrInvalidPassword},
		{"password without digit", func(r *dto.RegisterRequest) { r.Password = "onlyletters" }, apperrors.ErrInvalidPassword},
		{"password without letter", func(r *dto.RegisterRequest) { r.Password = "12345678" }, apperrors.ErrInvalidPassword},
		{"short username", func(r *dto.RegisterRequest) { r.Username = "ab" }, apperrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(req)
			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	users := newStubUserRepo()
	svc := newAuthServiceForTest(users, newStubTokenRepo())

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		req := validRegisterRequest()
		req.Username = "other"
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		req := validRegisterRequest()
		req.Email = "other@college.edu"
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)
	})
}

func TestLogin(t *testing.T) {
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	svc := newAuthServiceForTest(users, tokens)

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "jdoe@college.edu", Password: "hunter42x"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "jdoe@college.edu", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@college.edu", Password: "hunter42x"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("suspended account", func(t *testing.T) {
		user, err := users.GetByEmail(context.Background(), "jdoe@college.edu")
		require.NoError(t, err)
		user.Status = models.UserStatusSuspended
		defer func() { user.Status = models.UserStatusActive }()

		_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "jdoe@college.edu", Password: "hunter42x"})
		assert.ErrorIs(t, err, apperrors.ErrAccountSuspended)
	})
}

func TestRefreshTokenRotation(t *testing.T) {
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	svc := newAuthServiceForTest(users, tokens)

	resp, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// The old token is revoked by rotation.
	_, err = svc.RefreshToken(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestRefreshTokenExpired(t *testing.T) {
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	svc := newAuthServiceForTest(users, tokens)

	user := &models.User{Username: "jdoe", Email: "jdoe@college.edu", Status: models.UserStatusActive}
	require.NoError(t, users.Create(context.Background(), user))
	require.NoError(t, tokens.CreateToken(context.Background(), "stale", user.ID, time.Now().Add(-time.Minute)))

	_, err := svc.RefreshToken(context.Background(), "stale")
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestLogoutRevokesAllTokens(t *testing.T) {
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	svc := newAuthServiceForTest(users, tokens)

	resp, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), 1))

	_, err = svc.RefreshToken(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}
