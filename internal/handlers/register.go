package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/services"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password string) error
}

// RegisterRequest represents the JSON body for user signup
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// default: john_doe
	Username string `json:"username"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// RegisterResponse represents a successful signup response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// Success message
	// default: Signup successful! Please login.
	Message string `json:"message"`
}

// RegisterErrorResponse represents an error response for signup
// swagger:model RegisterErrorResponse
type RegisterErrorResponse struct {
	// Error message
	// default: Username already exists.
	Error string `json:"error"`
}

// NewRegisterHandler returns an HTTP handler for user signup.
// @Summary Sign up a new user
// @Description Creates a new user account. The username is trimmed and must be unique.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User signup request"
// @Success 201 {object} handlers.RegisterResponse "User successfully created"
// @Failure 400 {object} handlers.RegisterErrorResponse "Empty credentials or username taken"
// @Router /register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RegisterErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		err := svc.Register(r.Context(), req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmptyCredentials):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(RegisterErrorResponse{
					Error: "Username and password cannot be empty.",
				})
			case errors.Is(err, services.ErrUsernameTaken):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(RegisterErrorResponse{
					Error: "Username already exists.",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RegisterErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RegisterResponse{
			Message: "Signup successful! Please login.",
		})
	}
}
