package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrModelUnavailable indicates the model failed to initialize. The
// submission flow treats this as "no prediction", never as a hard error.
var ErrModelUnavailable = errors.New("classifier model unavailable")

// Runtime runs inference over a captured photo and returns the raw
// multi-class output. Implementations own model loading and lifecycle;
// the engine owns only interpretation.
type Runtime interface {
	RunInference(ctx context.Context, photoPath string) ([]LabelScore, error)
}

// modelState tracks the lifecycle of the underlying model.
type modelState int

const (
	modelUninitialized modelState = iota
	modelReady
	modelUnavailable
)

// Handle wraps a Runtime with explicit lifecycle state so an
// initialization failure is reported once and cached instead of being
// retried on every call.
type Handle struct {
	mu      sync.Mutex
	state   modelState
	runtime Runtime
	initFn  func() (Runtime, error)
	logger  *zap.Logger
}

// NewHandle creates a lazily-initialized model handle.
func NewHandle(initFn func() (Runtime, error), logger *zap.Logger) *Handle {
	return &Handle{initFn: initFn, logger: logger}
}

// RunInference runs inference if the model is available. Returns
// ErrModelUnavailable once initialization has failed; callers degrade
// to submitting without a prediction.
func (h *Handle) RunInference(ctx context.Context, photoPath string) ([]LabelScore, error) {
	h.mu.Lock()
	if h.state == modelUninitialized {
		rt, err := h.initFn()
		if err != nil {
			h.state = modelUnavailable
			h.logger.Error("classifier model failed to initialize", zap.Error(err))
		} else {
			h.state = modelReady
			h.runtime = rt
		}
	}
	state, rt := h.state, h.runtime
	h.mu.Unlock()

	if state != modelReady {
		return nil, ErrModelUnavailable
	}
	return rt.RunInference(ctx, photoPath)
}

// HTTPRuntime calls the edge inference sidecar that hosts the
// pre-trained model.
type HTTPRuntime struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRuntime creates a runtime backed by the inference sidecar at endpoint.
func NewHTTPRuntime(endpoint string, timeout time.Duration) *HTTPRuntime {
	return &HTTPRuntime{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	PhotoPath string `json:"photo_path"`
}

type inferenceResponse struct {
	Predictions []LabelScore `json:"predictions"`
}

// RunInference submits the photo reference to the sidecar and returns
// its raw label scores.
func (r *HTTPRuntime) RunInference(ctx context.Context, photoPath string) ([]LabelScore, error) {
	body, err := json.Marshal(inferenceRequest{PhotoPath: photoPath})
	if err != nil {
		return nil, fmt.Errorf("failed to encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference sidecar returned status %d", resp.StatusCode)
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	return out.Predictions, nil
}
