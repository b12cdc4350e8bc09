package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"empathic-credit/internal/domain"
)

// Scorer define la interfaz hacia el modelo ML de riesgo crediticio.
// La llamada puede ser lenta o fallar; el caller decide reintentos.
type Scorer interface {
	Predict(ctx context.Context, features domain.FeatureVector) (float64, error)
}

// HTTPClient implementa Scorer contra el servicio HTTP del modelo.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente apuntando al endpoint de prediccion.
// El timeout acota la dependencia externa mas propensa a latencia.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) Predict(ctx context.Context, features domain.FeatureVector) (float64, error) {
	bodyBytes, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(bodyBytes))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("risk model error response",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", respBody),
			)
		}
		return 0, fmt.Errorf("risk model http error: status=%d", resp.StatusCode)
	}

	var pr predictResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}
	if pr.Error != nil {
		return 0, fmt.Errorf("risk model api error: %s", pr.Error.Message)
	}
	if pr.RiskScore < 0 || pr.RiskScore > 1 {
		return 0, fmt.Errorf("risk model returned score out of range: %f", pr.RiskScore)
	}

	return pr.RiskScore, nil
}

type predictRequest struct {
	Features domain.FeatureVector `json:"features"`
}

type predictResponse struct {
	RiskScore float64 `json:"risk_score"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
