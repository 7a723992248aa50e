package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/models"
)

// PredictionCacheRepository caches raw model outputs in Redis, keyed by the
// full feature record. Predictions are deterministic per model load, so a
// cache hit skips both model calls.
type PredictionCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached outputs
}

// NewPredictionCacheRepository creates a new repository instance with optional TTL
func NewPredictionCacheRepository(client *redis.Client, expiration time.Duration) *PredictionCacheRepository {
	return &PredictionCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// cachedOutputs is the value stored per feature record.
type cachedOutputs struct {
	Voltage float64 `json:"voltage"`
	Bill    float64 `json:"bill"`
}

func cacheKey(record models.FeatureRecord) string {
	return fmt.Sprintf("prediction:%d:%d:%d:%d:%d:%d:%d:%d:%d:%d:%d",
		record.Fans, record.Lights, record.Fridge, record.TV, record.AC,
		record.WaterHeater, record.WashingMachine, record.Microwave,
		record.FamilyMembers, record.HouseSize, record.Rooms,
	)
}

// GetOutputs fetches cached model outputs for a feature record.
func (r *PredictionCacheRepository) GetOutputs(ctx context.Context, record models.FeatureRecord) (voltage, bill float64, err error) {
	key := cacheKey(record)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow("prediction cache miss",
			"key", key,
			"error", err,
		)
		if err == redis.Nil {
			return 0, 0, fmt.Errorf("prediction outputs not found in cache for %s", key)
		}
		return 0, 0, err
	}

	var outputs cachedOutputs
	if err := json.Unmarshal([]byte(val), &outputs); err != nil {
		logger.Log.Infow("prediction cache decode failed",
			"key", key,
			"value", val,
			"error", err,
		)
		return 0, 0, err
	}

	logger.Log.Infow("prediction cache hit",
		"key", key,
		"voltage", outputs.Voltage,
		"bill", outputs.Bill,
	)

	return outputs.Voltage, outputs.Bill, nil
}

// SetOutputs caches model outputs for a feature record with expiration.
func (r *PredictionCacheRepository) SetOutputs(ctx context.Context, record models.FeatureRecord, voltage, bill float64) error {
	key := cacheKey(record)

	data, err := json.Marshal(cachedOutputs{Voltage: voltage, Bill: bill})
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow("prediction cache set",
		"key", key,
		"voltage", voltage,
		"bill", bill,
		"error", err,
	)

	return err
}
