package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pluckandpay/internal/storage"
)

// fakeUserStorage is an in-memory UserStorage, enough for credential
// round trips without a database.
type fakeUserStorage struct {
	users  map[int64]storage.User
	nextID int64
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{users: make(map[int64]storage.User), nextID: 1}
}

func (f *fakeUserStorage) CreateUser(_ context.Context, u storage.User) (storage.User, error) {
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStorage) GetUserByEmail(_ context.Context, email string) (storage.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return storage.User{}, storage.ErrNotFound
}

func (f *fakeUserStorage) GetUserByID(_ context.Context, id int64) (storage.User, error) {
	u, ok := f.users[id]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStorage) UpdateUser(_ context.Context, id int64, upd storage.UserUpdate) (storage.User, error) {
	u, ok := f.users[id]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Location != nil {
		u.Location = *upd.Location
	}
	f.users[id] = u
	return u, nil
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeUserStorage()
	svc := NewService(store, "test-secret", time.Hour)

	token, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Kumari",
		Email:    "kumari@estate.lk",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// The stored password is hashed, never the plain text.
	u, err := store.GetUserByEmail(context.Background(), "kumari@estate.lk")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.Equal(t, "manager", u.Role)

	loginToken, err := svc.Login(context.Background(), "kumari@estate.lk", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newFakeUserStorage()
	svc := NewService(store, "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Kumari", Email: "kumari@estate.lk", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Other", Email: "kumari@estate.lk", Password: "different",
	})
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newFakeUserStorage()
	svc := NewService(store, "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Kumari", Email: "kumari@estate.lk", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "kumari@estate.lk", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@estate.lk", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssuedTokenClaims(t *testing.T) {
	store := newFakeUserStorage()
	svc := NewService(store, "test-secret", time.Hour)

	tokenString, err := svc.Register(context.Background(), RegisterInput{
		Name: "Kumari", Email: "kumari@estate.lk", Password: "secret123", Role: "admin",
	})
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(1), claims["uid"])
	assert.Equal(t, "admin", claims["role"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))
}
