package mlclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"BubblyService/config"
	"BubblyService/pkg/resilience"
	"BubblyService/pkg/server"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	endpointPredict = "predict"
	endpointTrain   = "train"
	endpointHealth  = "health"
)

// StatusError ответ ML-сервиса с кодом вне 2xx
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ml %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ml %s: status %d", e.Endpoint, e.StatusCode)
}

type predictRequest struct {
	UserID uint `json:"user_id"`
	Limit  int  `json:"limit"`
}

type predictResponse struct {
	RecommendedBubbleIDs []uint `json:"recommended_bubble_ids"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Client HTTP-клиент внешнего сервиса рекомендаций
type Client struct {
	baseURL        string
	httpClient     *http.Client
	predictTimeout time.Duration
	trainTimeout   time.Duration
	healthTimeout  time.Duration
	breaker        *resilience.CircuitBreaker
	logger         *zap.Logger
}

// NewClient создает клиент ML-сервиса. Вызовы /predict идут через breaker.
func NewClient(cfg config.MLConfig, breaker *resilience.CircuitBreaker, logger *zap.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		httpClient:     &http.Client{},
		predictTimeout: cfg.PredictTimeout,
		trainTimeout:   cfg.TrainTimeout,
		healthTimeout:  cfg.HealthTimeout,
		breaker:        breaker,
		logger:         logger,
	}
}

// Predict запрашивает упорядоченный список id баблов для пользователя
func (c *Client) Predict(ctx context.Context, userID uint, limit int) ([]uint, error) {
	var ids []uint

	err := c.breaker.Execute(ctx, endpointPredict, func(ctx context.Context) error {
		var resp predictResponse
		if err := c.do(ctx, http.MethodPost, endpointPredict, c.predictTimeout, predictRequest{UserID: userID, Limit: limit}, &resp); err != nil {
			return err
		}
		ids = resp.RecommendedBubbleIDs
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// Train запускает переобучение модели
func (c *Client) Train(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, endpointTrain, c.trainTimeout, nil, nil)
}

// Health возвращает тело ответа /health ML-сервиса
func (c *Client) Health(ctx context.Context) (interface{}, error) {
	var body interface{}
	if err := c.do(ctx, http.MethodGet, endpointHealth, c.healthTimeout, nil, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, timeout time.Duration, in, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		server.RecordMLRequest(endpoint, time.Since(start), err)
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ml %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ml %s: read body: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		var e errorResponse
		if json.Unmarshal(data, &e) == nil {
			statusErr.Message = e.Message
		}
		return statusErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("ml %s: decode response: %w", endpoint, err)
	}

	c.logger.Debug("ML request completed",
		zap.String("endpoint", endpoint),
		zap.Duration("duration", time.Since(start)))

	return nil
}
