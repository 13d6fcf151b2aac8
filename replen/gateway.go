package replen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel is one gateway-reported quantity for a product in a branch.
type StockLevel struct {
	ProductCode string          `json:"product_code"`
	CurrentQty  decimal.Decimal `json:"current_qty"`
}

type WaveTaskPayload struct {
	LocationCode   string          `json:"location_code"`
	ProductCode    string          `json:"product_code"`
	Description    string          `json:"description"`
	QtyToReplenish decimal.Decimal `json:"qty_to_replenish"`
	AbcClass       string          `json:"abc_class"`
	Priority       int             `json:"priority"`
}

type WavePayload struct {
	WaveNumber  string            `json:"wave_number"`
	Branch      string            `json:"branch"`
	Tasks       []WaveTaskPayload `json:"tasks"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Gateway is the external warehouse-management system: it reports stock for a
// branch and accepts replenishment batches. Treated as unreliable and latent;
// both calls may simply fail and the next tick retries.
type Gateway interface {
	FetchStock(ctx context.Context, companyId string, branch string) ([]StockLevel, error)
	SendWave(ctx context.Context, companyId string, payload WavePayload) (string, error)
}

type httpGateway struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	stockPath string
	wavePath  string
	http      *http.Client
	limiter   <-chan time.Time
}

// NewHTTPGateway builds the real gateway client from a company's settings.
// Paths, header name and rate limit are env-tunable.
func NewHTTPGateway(apiUrl string, apiKey string) (Gateway, error) {
	if strings.TrimSpace(apiUrl) == "" {
		return nil, errors.New("gateway api url is empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gateway api key is empty")
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("REPLEN_GW_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	stockPath := strings.TrimSpace(os.Getenv("REPLEN_GW_STOCK_PATH"))
	if stockPath == "" {
		stockPath = "/v1/stock-levels"
	}
	wavePath := strings.TrimSpace(os.Getenv("REPLEN_GW_WAVE_PATH"))
	if wavePath == "" {
		wavePath = "/v1/replenishment-waves"
	}
	rateLimitPerMin := int64(60)
	if v := strings.TrimSpace(os.Getenv("REPLEN_GW_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &httpGateway{
		baseURL:   strings.TrimRight(apiUrl, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		stockPath: stockPath,
		wavePath:  wavePath,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   time.Tick(interval),
	}, nil
}

type stockListResponse struct {
	Data  []StockLevel `json:"data"`
	Items []StockLevel `json:"items"`
}

type waveAckResponse struct {
	AckReference string `json:"ack_reference"`
	Reference    string `json:"reference"`
}

func (g *httpGateway) FetchStock(ctx context.Context, companyId string, branch string) ([]StockLevel, error) {
	<-g.limiter
	params := url.Values{}
	params.Set("company", companyId)
	params.Set("branch", branch)
	endpoint := g.baseURL + g.stockPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(g.apiKeyHdr, g.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway stock fetch error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed stockListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	levels := parsed.Data
	if len(levels) == 0 {
		levels = parsed.Items
	}
	return levels, nil
}

func (g *httpGateway) SendWave(ctx context.Context, companyId string, payload WavePayload) (string, error) {
	<-g.limiter
	params := url.Values{}
	params.Set("company", companyId)
	endpoint := g.baseURL + g.wavePath + "?" + params.Encode()

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set(g.apiKeyHdr, g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway wave dispatch error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed waveAckResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	ack := parsed.AckReference
	if ack == "" {
		ack = parsed.Reference
	}
	if ack == "" {
		return "", errors.New("gateway wave dispatch returned no ack reference")
	}
	return ack, nil
}
