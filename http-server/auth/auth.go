package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"pluckandpay/internal/httpapi"
	mwauth "pluckandpay/internal/middleware/auth"
	authservice "pluckandpay/internal/service/auth"
	"pluckandpay/internal/storage"
)

type Service interface {
	Register(ctx context.Context, in authservice.RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, userID int64) (storage.User, error)
	UpdateProfile(ctx context.Context, userID int64, upd storage.UserUpdate) (storage.User, error)
}

type tokenResponse struct {
	Token string `json:"token"`
}

func Register(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Register"

		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
			Phone    string `json:"phone"`
			Location string `json:"location"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		var errs []httpapi.FieldErr
		if req.Name == "" {
			errs = append(errs, httpapi.FieldErr{Field: "name", Message: "name is required"})
		}
		if req.Email == "" {
			errs = append(errs, httpapi.FieldErr{Field: "email", Message: "email is required"})
		}
		if len(req.Password) < 6 {
			errs = append(errs, httpapi.FieldErr{Field: "password", Message: "password must be at least 6 characters"})
		}
		if len(errs) > 0 {
			httpapi.Validation(w, r, errs)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		token, err := svc.Register(ctx, authservice.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     req.Role,
			Phone:    req.Phone,
			Location: req.Location,
		})
		if errors.Is(err, storage.ErrEmailTaken) {
			httpapi.BadRequest(w, r, "User already exists")
			return
		}
		if err != nil {
			log.Error("register failed", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, tokenResponse{Token: token})
	}
}

func Login(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Login"

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		var errs []httpapi.FieldErr
		if req.Email == "" {
			errs = append(errs, httpapi.FieldErr{Field: "email", Message: "email is required"})
		}
		if req.Password == "" {
			errs = append(errs, httpapi.FieldErr{Field: "password", Message: "password is required"})
		}
		if len(errs) > 0 {
			httpapi.Validation(w, r, errs)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		token, err := svc.Login(ctx, req.Email, req.Password)
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			httpapi.BadRequest(w, r, "Invalid credentials")
			return
		}
		if err != nil {
			log.Error("login failed", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, tokenResponse{Token: token})
	}
}

func Me(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Me"

		ident, ok := mwauth.IdentityFromContext(r.Context())
		if !ok {
			httpapi.Unauthorized(w, r, "No token, authorization denied")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := svc.Me(ctx, ident.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.NotFound(w, r, "User not found")
			return
		}
		if err != nil {
			log.Error("me failed", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, user)
	}
}

func UpdateProfile(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.UpdateProfile"

		ident, ok := mwauth.IdentityFromContext(r.Context())
		if !ok {
			httpapi.Unauthorized(w, r, "No token, authorization denied")
			return
		}

		var upd storage.UserUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			httpapi.BadRequest(w, r, "Invalid JSON")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := svc.UpdateProfile(ctx, ident.UserID, upd)
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.NotFound(w, r, "User not found")
			return
		}
		if err != nil {
			log.Error("profile update failed", slog.String("op", op), slog.String("error", err.Error()))
			httpapi.ServerError(w, r)
			return
		}

		render.JSON(w, r, user)
	}
}
