package projection

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/bodyforecast/internal/telemetry/metrics"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ErrProvider is returned for any failure of the generative model provider.
var ErrProvider = errors.New("projection provider error")

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type GeminiClientParams struct {
	BaseURL    string // https://generativelanguage.googleapis.com
	Model      string
	APIKey     string
	HttpClient *http.Client
	CacheSize  int
	CacheTTL   time.Duration
	Metrics    *metrics.Manager
}

// GeminiClient generates text with the Gemini REST API. Identical prompts are
// answered from a local cache for CacheTTL.
type GeminiClient struct {
	baseURL        string
	model          string
	apiKey         string
	httpClient     *http.Client
	cache          *freecache.Cache
	cacheTTLSec    int
	metricsManager *metrics.Manager
}

func NewGeminiClient(params GeminiClientParams) *GeminiClient {
	cacheSize := params.CacheSize
	if cacheSize <= 0 {
		cacheSize = 8 * 1024 * 1024
	}
	return &GeminiClient{
		baseURL:        strings.TrimSuffix(params.BaseURL, "/"),
		model:          params.Model,
		apiKey:         params.APIKey,
		httpClient:     params.HttpClient,
		cache:          freecache.NewCache(cacheSize),
		cacheTTLSec:    int(params.CacheTTL.Seconds()),
		metricsManager: params.Metrics,
	}
}

func cacheKey(model, prompt string) []byte {
	sum := sha256.Sum256([]byte(model + "::" + prompt))
	return []byte(hex.EncodeToString(sum[:]))
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "projection.gemini.generate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("gemini.model", c.model))

	key := cacheKey(c.model, prompt)
	if cached, err := c.cache.Get(key); err == nil {
		log.Tracef("projection text found in cache")
		if c.metricsManager != nil {
			c.metricsManager.CounterProjectionCacheHits.Inc()
		}
		span.SetAttributes(attribute.Bool("gemini.cache_hit", true))
		return string(cached), nil
	}

	text, err := c.call(ctx, prompt)
	if err != nil {
		return "", err
	}

	if c.cacheTTLSec > 0 {
		if err := c.cache.Set(key, []byte(text), c.cacheTTLSec); err != nil {
			log.Errorf("failed to cache projection text: %s", err)
		}
	}
	return text, nil
}

func (c *GeminiClient) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	begin := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metricsManager != nil {
		c.metricsManager.HistProjectionGenDuration.Observe(time.Since(begin).Seconds())
	}
	if err != nil {
		return "", fmt.Errorf("%w: http client do: %s", ErrProvider, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %s", ErrProvider, err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBytes, &genResp); err != nil {
		return "", fmt.Errorf("%w: status %d, unmarshal response: %s", ErrProvider, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if genResp.Error != nil {
			return "", fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, genResp.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrProvider)
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text, finish reason %s", ErrProvider, genResp.Candidates[0].FinishReason)
	}
	return text, nil
}
