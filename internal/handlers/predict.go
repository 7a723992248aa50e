package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartbill/smartbill/internal/jwt"
	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/models"
	"github.com/smartbill/smartbill/internal/predictor"
	"github.com/smartbill/smartbill/internal/services"
	"github.com/smartbill/smartbill/internal/session"
)

// PredictTokener defines only the token methods needed by this handler.
type PredictTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// Predicter defines the interface that the prediction service must implement.
type Predicter interface {
	Predict(ctx context.Context, userID int64, username string, record models.FeatureRecord) (*models.Prediction, error)
}

// PredictResponse represents a successful prediction response
// swagger:model PredictResponse
type PredictResponse struct {
	// Success message
	// default: Prediction generated successfully!
	Message string `json:"message"`

	// The prediction result
	Prediction *models.Prediction `json:"prediction"`
}

// PredictErrorResponse represents an error response for prediction
// swagger:model PredictErrorResponse
type PredictErrorResponse struct {
	// Error message
	// default: Prediction is currently unavailable
	Error string `json:"error"`
}

// NewPredictHandler returns an HTTP handler running both models over the
// submitted feature record.
// @Summary Predict voltage and electricity bill
// @Description Runs the voltage and bill models over the household feature record and returns the predictions with derived usage values. The result is appended to the session history.
// @Tags prediction
// @Accept json
// @Produce json
// @Param request body models.FeatureRecord true "Household feature record"
// @Success 200 {object} handlers.PredictResponse "Prediction result"
// @Failure 400 {object} handlers.PredictErrorResponse "Invalid request body or feature record out of range"
// @Failure 401 {object} handlers.PredictErrorResponse "Unauthorized"
// @Failure 503 {object} handlers.PredictErrorResponse "Prediction models unavailable"
// @Router /predict [post]
// @Security BearerAuth
func NewPredictHandler(svc Predicter, tokenGetter PredictTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Info("unauthorized prediction request: missing or invalid token")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(PredictErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to parse token claims", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(PredictErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		var record models.FeatureRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(PredictErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		prediction, err := svc.Predict(ctx, claims.UserID, claims.Username, record)
		if err != nil {
			switch {
			case errors.Is(err, predictor.ErrModelUnavailable):
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(PredictErrorResponse{
					Error: "Prediction is currently unavailable",
				})
			case errors.Is(err, services.ErrInvalidInput):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(PredictErrorResponse{
					Error: "Feature record out of range",
				})
			case errors.Is(err, session.ErrNotLoggedIn):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(PredictErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("prediction failed", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(PredictErrorResponse{
					Error: "Prediction failed",
				})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(PredictResponse{
			Message:    "Prediction generated successfully!",
			Prediction: prediction,
		})
	}
}
