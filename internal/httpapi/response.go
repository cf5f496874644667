package httpapi

import (
	"net/http"

	"github.com/go-chi/render"
)

// ErrResponse is the error body every endpoint returns: a message, plus
// field-level messages for validation failures.
type ErrResponse struct {
	Message string     `json:"message"`
	Errors  []FieldErr `json:"errors,omitempty"`
}

type FieldErr struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, ErrResponse{Message: message})
}

func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrResponse{Message: message})
}

func Validation(w http.ResponseWriter, r *http.Request, errs []FieldErr) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrResponse{Message: "Validation failed", Errors: errs})
}

// ServerError hides internal detail from the caller; the handler logs it.
func ServerError(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, ErrResponse{Message: "Server error"})
}

func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, ErrResponse{Message: message})
}
