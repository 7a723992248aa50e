package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/models"
)

// ErrModelUnavailable is returned when the model artifacts could not be
// loaded. The prediction feature stays disabled until the next load attempt.
var ErrModelUnavailable = errors.New("prediction models unavailable")

// Model is a serialized linear regression artifact produced by the training
// pipeline: an intercept plus one weight per named feature.
type Model struct {
	Name         string             `json:"name"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// Load reads and validates a model artifact from disk.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact %s: %w", path, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model artifact %s: %w", path, err)
	}

	if len(m.Coefficients) == 0 {
		return nil, fmt.Errorf("model artifact %s has no coefficients", path)
	}

	known := models.FeatureRecord{}.Features()
	for name := range m.Coefficients {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("model artifact %s references unknown feature %q", path, name)
		}
	}

	return &m, nil
}

// Predict evaluates the model on a feature record. Pure and deterministic.
func (m *Model) Predict(record models.FeatureRecord) float64 {
	features := record.Features()

	out := m.Intercept
	for name, weight := range m.Coefficients {
		out += weight * features[name]
	}
	return out
}

// Provider loads the voltage and bill models from fixed paths and caches
// them for the rest of the process, or for a bounded window when a reload
// interval is configured. A failed load is cached for the same window, so
// a missing artifact disables prediction rather than hammering the disk.
type Provider struct {
	voltagePath string
	billPath    string
	reload      time.Duration

	mu       sync.Mutex
	voltage  *Model
	bill     *Model
	loadErr  error
	loadedAt time.Time
}

// NewProvider creates a Provider. A zero reload interval means the models
// are loaded at most once per process lifetime.
func NewProvider(voltagePath, billPath string, reload time.Duration) *Provider {
	return &Provider{
		voltagePath: voltagePath,
		billPath:    billPath,
		reload:      reload,
	}
}

// Models returns the cached voltage and bill models, loading them on first
// use or after the reload window has elapsed.
func (p *Provider) Models(ctx context.Context) (voltage, bill *Model, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fresh := !p.loadedAt.IsZero() && (p.reload == 0 || time.Since(p.loadedAt) < p.reload)
	if fresh {
		return p.voltage, p.bill, p.loadErr
	}

	p.voltage, p.bill, p.loadErr = nil, nil, nil
	p.loadedAt = time.Now()

	v, err := Load(p.voltagePath)
	if err != nil {
		logger.Log.Errorw("failed to load voltage model", "path", p.voltagePath, "error", err)
		p.loadErr = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		return nil, nil, p.loadErr
	}

	b, err := Load(p.billPath)
	if err != nil {
		logger.Log.Errorw("failed to load bill model", "path", p.billPath, "error", err)
		p.loadErr = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		return nil, nil, p.loadErr
	}

	p.voltage, p.bill = v, b
	logger.Log.Infow("prediction models loaded",
		"voltage_model", v.Name,
		"bill_model", b.Name,
	)

	return p.voltage, p.bill, nil
}
