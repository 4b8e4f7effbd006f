package account

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collab-novel-api/internal/domain/entity"
	"collab-novel-api/internal/domain/repository"
	"collab-novel-api/internal/infrastructure/messaging"
	"collab-novel-api/internal/testutil"
	apperrors "collab-novel-api/pkg/errors"
	"collab-novel-api/pkg/utils"
)

func newService(t *testing.T) (*Service, *testutil.Store, *testutil.Publisher) {
	t.Helper()
	store := testutil.NewStore()
	pub := &testutil.Publisher{}
	jwt := utils.NewJWTManager("test-secret", "collab-novel-api", time.Hour)
	return NewService(&testutil.Transactor{}, testutil.UserRepo{S: store}, jwt, pub), store, pub
}

func TestSignupAcceptsValidUser(t *testing.T) {
	svc, store, pub := newService(t)

	user, err := svc.Signup(context.Background(), "validuser", "valid@example.com", "Validpass1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	stored := store.Users[user.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "Validpass1", stored.PasswordHash)
	assert.True(t, stored.CheckPassword("Validpass1"))
	assert.Equal(t, []string{messaging.EventUserRegistered}, pub.Types())
}

func TestSignupValidation(t *testing.T) {
	cases := []struct {
		name                      string
		username, email, password string
		field, message            string
	}{
		{"short username", "ab", "valid@example.com", "Validpass1", "username", "Invalid username"},
		{"long username", strings.Repeat("a", 31), "valid@example.com", "Validpass1", "username", "Invalid username"},
		{"bad email", "validuser", "not-an-email", "Validpass1", "email", "Invalid email address"},
		{"no digit", "validuser", "valid@example.com", "Validpass", "password", "Invalid password"},
		{"no upper", "validuser", "valid@example.com", "validpass1", "password", "Invalid password"},
		{"no lower", "validuser", "valid@example.com", "VALIDPASS1", "password", "Invalid password"},
		{"too short", "validuser", "valid@example.com", "Vp1", "password", "Invalid password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, _ := newService(t)
			_, err := svc.Signup(context.Background(), tc.username, tc.email, tc.password)
			appErr := apperrors.AsAppError(err)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
			assert.Equal(t, tc.field, appErr.Field)
			assert.Equal(t, tc.message, appErr.Message)
			assert.Empty(t, store.Users)
		})
	}
}

func TestSignupDuplicateIsConflict(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, "validuser", "valid@example.com", "Validpass1")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "validuser", "other@example.com", "Validpass1")
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	assert.Equal(t, "username", appErr.Field)

	_, err = svc.Signup(ctx, "otheruser", "VALID@example.com", "Validpass1")
	appErr = apperrors.AsAppError(err)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	assert.Equal(t, "email", appErr.Field)
}

// lateDuplicate 查重通过但写入时触发唯一约束
type lateDuplicate struct {
	testutil.UserRepo
}

func (lateDuplicate) Create(context.Context, *entity.User) error {
	return repository.ErrDuplicateKey
}

func TestSignupStorageConflictIsConflict(t *testing.T) {
	store := testutil.NewStore()
	jwt := utils.NewJWTManager("test-secret", "collab-novel-api", time.Hour)
	svc := NewService(&testutil.Transactor{}, lateDuplicate{testutil.UserRepo{S: store}}, jwt, nil)

	_, err := svc.Signup(context.Background(), "validuser", "valid@example.com", "Validpass1")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateUser)
	assert.Equal(t, http.StatusConflict, apperrors.AsAppError(err).HTTPStatus)
}

func TestSignupStorageFailure(t *testing.T) {
	svc, store, _ := newService(t)
	store.Err = errors.New("connection reset")

	_, err := svc.Signup(context.Background(), "validuser", "valid@example.com", "Validpass1")
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.AsAppError(err).Code)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	user, err := svc.Signup(ctx, "validuser", "valid@example.com", "Validpass1")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "valid@example.com", "Validpass1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, session.ExpiresIn)

	claims, err := svc.jwt.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "validuser", claims.Username)
}

func TestLoginFailures(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, "validuser", "valid@example.com", "Validpass1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "valid@example.com", "Wrongpass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "Validpass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Equal(t, "Invalid credentials", apperrors.AsAppError(err).Message)

	_, err = svc.Login(ctx, "bad-email", "Validpass1")
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "Invalid email address", appErr.Message)
}
