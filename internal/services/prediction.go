package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/models"
	"github.com/smartbill/smartbill/internal/predictor"
)

// Derivation constants of the prediction contract. The divisor is the
// assumed price per kWh; the thresholds split the bill into usage tiers.
const (
	usageRatePerKWh     = 7.0
	billMediumThreshold = 1500.0
	billHighThreshold   = 3000.0
)

// ErrInvalidInput is returned when a feature record fails range validation.
var ErrInvalidInput = errors.New("invalid feature record")

// ModelProvider supplies the cached voltage and bill models.
type ModelProvider interface {
	Models(ctx context.Context) (voltage, bill *predictor.Model, err error)
}

// PredictionRecorder appends prediction results to a user's session.
type PredictionRecorder interface {
	Record(userID int64, p models.Prediction) error
}

// PredictionOutputsCache caches raw model outputs per feature record.
type PredictionOutputsCache interface {
	GetOutputs(ctx context.Context, record models.FeatureRecord) (voltage, bill float64, err error)
	SetOutputs(ctx context.Context, record models.FeatureRecord, voltage, bill float64) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// PredictionService runs both models over a validated feature record,
// derives the usage estimate and category, and records the result.
type PredictionService struct {
	provider    ModelProvider
	sessions    PredictionRecorder
	cache       PredictionOutputsCache
	kafkaWriter KafkaWriter
	validate    *validator.Validate
}

// NewPredictionService creates a new PredictionService. The cache and the
// Kafka writer are optional; nil disables them.
func NewPredictionService(
	provider ModelProvider,
	sessions PredictionRecorder,
	cache PredictionOutputsCache,
	kafkaWriter KafkaWriter,
) *PredictionService {
	return &PredictionService{
		provider:    provider,
		sessions:    sessions,
		cache:       cache,
		kafkaWriter: kafkaWriter,
		validate:    validator.New(),
	}
}

// Predict evaluates both models for the user's feature record and appends
// the result to the user's session history. Failures leave the session
// unchanged; nothing is retried.
func (s *PredictionService) Predict(ctx context.Context, userID int64, username string, record models.FeatureRecord) (*models.Prediction, error) {
	voltageModel, billModel, err := s.provider.Models(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(record); err != nil {
		logger.Log.Infow("feature record failed validation", "username", username, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	voltage, bill, err := s.outputs(ctx, voltageModel, billModel, record)
	if err != nil {
		return nil, err
	}

	prediction := models.Prediction{
		PredictionID: uuid.NewString(),
		Timestamp:    time.Now().Unix(),
		Username:     username,
		Voltage:      voltage,
		Bill:         bill,
		UsageKWh:     bill / usageRatePerKWh,
		Category:     usageCategory(bill),
	}

	if err := s.sessions.Record(userID, prediction); err != nil {
		logger.Log.Errorw("failed to record prediction", "userID", userID, "error", err)
		return nil, err
	}

	s.publishPrediction(ctx, prediction)

	return &prediction, nil
}

// outputs returns the raw model outputs, going through the cache when one
// is configured. Cache failures fall back to calling the models.
func (s *PredictionService) outputs(ctx context.Context, voltageModel, billModel *predictor.Model, record models.FeatureRecord) (voltage, bill float64, err error) {
	if s.cache != nil {
		if voltage, bill, err = s.cache.GetOutputs(ctx, record); err == nil {
			return voltage, bill, nil
		}
	}

	voltage = voltageModel.Predict(record)
	bill = billModel.Predict(record)

	if s.cache != nil {
		if err := s.cache.SetOutputs(ctx, record, voltage, bill); err != nil {
			logger.Log.Errorw("failed to cache prediction outputs", "error", err)
		}
	}

	return voltage, bill, nil
}

// usageCategory maps a predicted bill to its usage tier. The boundary
// behavior matters: 3000.00 is still medium, 1500.00 is already medium.
func usageCategory(bill float64) string {
	switch {
	case bill > billHighThreshold:
		return models.CategoryHigh
	case bill >= billMediumThreshold:
		return models.CategoryMedium
	default:
		return models.CategoryLow
	}
}

// publishPrediction publishes a prediction event to Kafka, best effort.
func (s *PredictionService) publishPrediction(ctx context.Context, p models.Prediction) {
	if s.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "prediction_id", p.PredictionID)
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		logger.Log.Errorw("Failed to marshal prediction for Kafka", "prediction_id", p.PredictionID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(p.PredictionID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish prediction to Kafka", "prediction_id", p.PredictionID, "error", err)
	} else {
		logger.Log.Infow("Prediction published to Kafka", "prediction_id", p.PredictionID, "bill", p.Bill)
	}
}
