package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartbill/smartbill/internal/jwt"
	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/models"
	"github.com/smartbill/smartbill/internal/session"
)

// HistoryTokener defines only the token methods needed by this handler.
type HistoryTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// HistoryReader reads the session's recent predictions.
type HistoryReader interface {
	History(userID int64) ([]models.Prediction, error)
}

// HistoryResponse represents the session's recent predictions,
// most-recent-last
// swagger:model HistoryResponse
type HistoryResponse struct {
	// Recent predictions
	History []models.Prediction `json:"history"`
}

// HistoryErrorResponse represents an error response for history
// swagger:model HistoryErrorResponse
type HistoryErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewHistoryHandler returns an HTTP handler listing the session's recent
// predictions.
// @Summary List recent predictions
// @Description Returns the session's prediction history, oldest first, capped at the most recent five
// @Tags prediction
// @Produce json
// @Success 200 {object} handlers.HistoryResponse "Prediction history"
// @Failure 401 {object} handlers.HistoryErrorResponse "Unauthorized"
// @Router /predictions/history [get]
// @Security BearerAuth
func NewHistoryHandler(sessions HistoryReader, tokenGetter HistoryTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Info("unauthorized history request: missing or invalid token")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(HistoryErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to parse token claims", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(HistoryErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		history, err := sessions.History(claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrNotLoggedIn):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(HistoryErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("failed to read history", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(HistoryErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		if history == nil {
			history = []models.Prediction{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(HistoryResponse{
			History: history,
		})
	}
}
