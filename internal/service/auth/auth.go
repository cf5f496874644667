package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"pluckandpay/internal/storage"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserStorage interface {
	CreateUser(ctx context.Context, u storage.User) (storage.User, error)
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	GetUserByID(ctx context.Context, id int64) (storage.User, error)
	UpdateUser(ctx context.Context, id int64, upd storage.UserUpdate) (storage.User, error)
}

type Service struct {
	storage UserStorage
	secret  []byte
	expiry  time.Duration
}

func NewService(storage UserStorage, secret string, expiry time.Duration) *Service {
	return &Service{storage: storage, secret: []byte(secret), expiry: expiry}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
	Location string
}

// Register creates a user with a bcrypt-hashed password and returns a
// signed token. A duplicate email yields storage.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	const op = "service.auth.Register"

	_, err := s.storage.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return "", storage.ErrEmailTaken
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: hash password: %w", op, err)
	}

	role := in.Role
	if role == "" {
		role = "manager"
	}

	user, err := s.storage.CreateUser(ctx, storage.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        in.Phone,
		Location:     in.Location,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.issueToken(user)
}

// Login checks credentials and returns a signed token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.auth.Login"

	user, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *Service) Me(ctx context.Context, userID int64) (storage.User, error) {
	return s.storage.GetUserByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, upd storage.UserUpdate) (storage.User, error) {
	return s.storage.UpdateUser(ctx, userID, upd)
}

func (s *Service) issueToken(user storage.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(s.expiry).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
