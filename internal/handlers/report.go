package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/smartbill/smartbill/internal/jwt"
	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/models"
	"github.com/smartbill/smartbill/internal/session"
)

// ReportTokener defines only the token methods needed by this handler.
type ReportTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// LastPredictionReader reads the session's most recent prediction.
type LastPredictionReader interface {
	Last(userID int64) (*models.Prediction, error)
}

// ReportErrorResponse represents an error response for the report download
// swagger:model ReportErrorResponse
type ReportErrorResponse struct {
	// Error message
	// default: No prediction available yet
	Error string `json:"error"`
}

// NewReportHandler returns an HTTP handler emitting a downloadable
// plain-text summary of the session's last prediction.
// @Summary Download prediction report
// @Description Returns a plain-text summary of the most recent prediction
// @Tags prediction
// @Produce plain
// @Success 200 {string} string "Report text"
// @Failure 401 {object} handlers.ReportErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ReportErrorResponse "No prediction available yet"
// @Router /report [get]
// @Security BearerAuth
func NewReportHandler(sessions LastPredictionReader, tokenGetter ReportTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Info("unauthorized report request: missing or invalid token")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ReportErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to parse token claims", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(ReportErrorResponse{
				Error: "Unauthorized",
			})
			return
		}

		last, err := sessions.Last(claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrNotLoggedIn):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(ReportErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("failed to read last prediction", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ReportErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		if last == nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ReportErrorResponse{
				Error: "No prediction available yet",
			})
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="smartbill_report.txt"`)
		w.WriteHeader(http.StatusOK)

		fmt.Fprintf(w, "SmartBill Prediction Report\n")
		fmt.Fprintf(w, "===========================\n")
		fmt.Fprintf(w, "User: %s\n\n", last.Username)
		fmt.Fprintf(w, "Predicted Voltage: %.1f V\n", last.Voltage)
		fmt.Fprintf(w, "Estimated Monthly Bill: %.0f\n", last.Bill)
		fmt.Fprintf(w, "Estimated Usage: %.0f kWh/month\n", last.UsageKWh)
		fmt.Fprintf(w, "Usage Category: %s\n", last.Category)
	}
}
