package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/smartbill/smartbill/internal/jwt"
	"github.com/smartbill/smartbill/internal/logger"
)

// LogoutTokener defines only the token methods needed by this handler.
type LogoutTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// Logouter defines the interface that the service must implement.
type Logouter interface {
	Logout(ctx context.Context, userID int64)
}

// LogoutResponse represents a successful logout response
// swagger:model LogoutResponse
type LogoutResponse struct {
	// Success message
	// default: Logged out
	Message string `json:"message"`
}

// LogoutErrorResponse represents an error response for logout
// swagger:model LogoutErrorResponse
type LogoutErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewLogoutHandler returns an HTTP handler for closing the user's session.
// Logging out clears the session's prediction history.
// @Summary User logout
// @Description Close the session and clear its prediction history
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.LogoutResponse "Logged out"
// @Failure 401 {object} handlers.LogoutErrorResponse "Unauthorized"
// @Router /logout [post]
// @Security BearerAuth
func NewLogoutHandler(svc Logouter, tokenGetter LogoutTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Info("unauthorized logout request: missing or invalid token")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(LogoutErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to parse token claims", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(LogoutErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		svc.Logout(ctx, claims.UserID)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(LogoutResponse{
			Message: "Logged out",
		})
	}
}
