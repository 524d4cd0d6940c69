package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market-backend/internal/models"
)

const testJWTSecret = "test-secret"

func newTestUserService(users *fakeUserStore, blobs *fakeBlobStorage) *UserService {
	if blobs == nil {
		blobs = &fakeBlobStorage{}
	}
	return NewUserService(users, blobs, testJWTSecret)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		confirm  string
		wantMsg  string
	}{
		{"empty email", "", "secret1", "secret1", "valid email is required"},
		{"malformed email", "not-an-email", "secret1", "secret1", "valid email is required"},
		{"short password", "a@campus.test", "abc", "abc", "at least 6 characters"},
		{"mismatched confirm", "a@campus.test", "secret1", "secret2", "passwords do not match"},
	}

	svc := newTestUserService(newFakeUserStore(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password, tt.confirm)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: "u1", Email: "a@campus.test"})
	svc := newTestUserService(users, nil)

	_, err := svc.Register(context.Background(), "a@campus.test", "secret1", "secret1")
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegisterAndSignIn(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestUserService(users, nil)

	result, err := svc.Register(context.Background(), "  A@Campus.Test ", "secret1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@campus.test", result.User.Email)
	assert.NotEmpty(t, result.Token)
	assert.NotEqual(t, "secret1", result.User.PasswordHash)

	signedIn, err := svc.SignIn(context.Background(), "a@campus.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, signedIn.User.ID)
}

func TestSignInWrongPassword(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestUserService(users, nil)

	_, err := svc.Register(context.Background(), "a@campus.test", "secret1", "secret1")
	require.NoError(t, err)

	_, err = svc.SignIn(context.Background(), "a@campus.test", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInUnknownEmail(t *testing.T) {
	svc := newTestUserService(newFakeUserStore(), nil)

	_, err := svc.SignIn(context.Background(), "nobody@campus.test", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestJWTRoundTrip(t *testing.T) {
	svc := newTestUserService(newFakeUserStore(), nil)

	token, err := svc.GenerateJWT("u1", "a@campus.test")
	require.NoError(t, err)

	session, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "a@campus.test", session.Email)
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	svc := newTestUserService(newFakeUserStore(), nil)
	other := NewUserService(newFakeUserStore(), &fakeBlobStorage{}, "different-secret")

	token, err := other.GenerateJWT("u1", "a@campus.test")
	require.NoError(t, err)

	_, err = svc.ValidateJWT(token)
	assert.Error(t, err)
}

func TestUpdateProfileTrimsFields(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: "u1", Email: "a@campus.test"})
	svc := newTestUserService(users, nil)

	user, err := svc.UpdateProfile(context.Background(), "u1", " Sam ", " Engineering ", " 555-1234 ", " @sam ")
	require.NoError(t, err)
	assert.Equal(t, "Sam", user.Name)
	assert.Equal(t, "Engineering", user.Faculty)
	assert.Equal(t, "555-1234", user.Phone)
	assert.Equal(t, "@sam", user.Instagram)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := newTestUserService(newFakeUserStore(), nil)

	_, err := svc.UpdateProfile(context.Background(), "missing", "Sam", "", "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadProfilePhotoReplacesInPlace(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: "u1", Email: "a@campus.test"})
	blobs := &fakeBlobStorage{}
	svc := newTestUserService(users, blobs)

	url, err := svc.UploadProfilePhoto(context.Background(), "u1", "image/jpeg", imageBody())
	require.NoError(t, err)
	assert.Contains(t, url, "profile_images/u1/profile.jpg")

	again, err := svc.UploadProfilePhoto(context.Background(), "u1", "", imageBody())
	require.NoError(t, err)
	assert.Equal(t, url, again)

	user, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, url, user.PhotoURL)
}
