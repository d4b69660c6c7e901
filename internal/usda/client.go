package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/joescodelmao/nutrilog/internal/metrics"
	"github.com/joescodelmao/nutrilog/internal/model"
	"github.com/joescodelmao/nutrilog/internal/security"
)

const providerName = "usda"

// SearchResult は正規化済みの食品検索結果を表す。
// Itemsはページサイズで切り詰められた結果で、TotalHitsは
// プロバイダ側の総ヒット件数を示す。
type SearchResult struct {
	Items     []model.NormalizedFood
	TotalHits int
}

// ClientConfig はUSDAクライアントの設定。
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	CacheTTL       time.Duration
	PerMinute      int
	PerHour        int
	SearchPageSize int
}

// Client はUSDA FoodData Central APIのクライアント。
// レスポンスはTTLキャッシュに保存され、送信レートは分間・時間あたりの
// クオータで制限される。同一リクエストの同時実行はsingleflightで集約され、
// 上流への呼び出しは1回にまとめられる。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	collector  metrics.MetricsCollector
	sanitizer  security.TextSanitizerService
	cache      *responseCache
	limiter    *quotaLimiter
	group      singleflight.Group
	baseURL    string // テスト用にエンドポイントを差し替え可能
	apiKey     string
	pageSize   int
}

// NewClient はClient の新しいインスタンスを生成する。
// httpClientのタイムアウトは呼び出し元で設定済みであることを前提とする。
func NewClient(
	cfg ClientConfig,
	httpClient *http.Client,
	logger *slog.Logger,
	collector metrics.MetricsCollector,
	sanitizer security.TextSanitizerService,
) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		collector:  collector,
		sanitizer:  sanitizer,
		cache:      newResponseCache(cfg.CacheTTL),
		limiter:    newQuotaLimiter(cfg.PerMinute, cfg.PerHour),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		pageSize:   cfg.SearchPageSize,
	}
}

// Close はキャッシュのクリーンアップゴルーチンを停止する。
func (c *Client) Close() {
	c.cache.close()
}

// ResetQuota は消費済みのレート制限枠を解放する。テスト用。
func (c *Client) ResetQuota() {
	c.limiter.reset()
}

// ResetCache はキャッシュ済みレスポンスをすべて破棄する。
func (c *Client) ResetCache() {
	c.cache.reset()
}

// searchResponse はUSDA検索APIのレスポンス形式。
type searchResponse struct {
	TotalHits int          `json:"totalHits"`
	Foods     []searchFood `json:"foods"`
}

type searchFood struct {
	FdcID           int64            `json:"fdcId"`
	Description     string           `json:"description"`
	BrandOwner      string           `json:"brandOwner"`
	FoodCategory    string           `json:"foodCategory"`
	ServingSize     float64          `json:"servingSize"`
	ServingSizeUnit string           `json:"servingSizeUnit"`
	FoodNutrients   []searchNutrient `json:"foodNutrients"`
}

type searchNutrient struct {
	NutrientNumber string  `json:"nutrientNumber"`
	NutrientID     int     `json:"nutrientId"`
	Value          float64 `json:"value"`
}

// detailResponse はUSDA食品詳細APIのレスポンス形式。
// 検索APIとは栄養素レコードの構造が異なる。
type detailResponse struct {
	FdcID               int64            `json:"fdcId"`
	Description         string           `json:"description"`
	BrandOwner          string           `json:"brandOwner"`
	BrandedFoodCategory string           `json:"brandedFoodCategory"`
	FoodCategory        detailCategory   `json:"foodCategory"`
	ServingSize         float64          `json:"servingSize"`
	ServingSizeUnit     string           `json:"servingSizeUnit"`
	FoodNutrients       []detailNutrient `json:"foodNutrients"`
}

type detailCategory struct {
	Description string `json:"description"`
}

type detailNutrient struct {
	Nutrient struct {
		ID     int    `json:"id"`
		Number string `json:"number"`
	} `json:"nutrient"`
	Amount float64 `json:"amount"`
}

// Search は食品名でUSDAデータベースを検索し、正規化済みの結果を返す。
// クエリの前後空白は無視され、空クエリはバリデーションエラーとなる。
// キャッシュヒット時は上流を呼び出さず、レート制限枠も消費しない。
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, model.NewEmptyQueryError()
	}

	key := searchCacheKey(trimmed, c.pageSize)
	if cached, ok := c.cache.get(key); ok {
		c.collector.RecordCacheHit("search")
		return cached.(*SearchResult), nil
	}
	c.collector.RecordCacheMiss("search")

	// 同一クエリの同時実行を集約し、上流呼び出しを1回にまとめる
	v, err, _ := c.group.Do(key, func() (any, error) {
		if cached, ok := c.cache.get(key); ok {
			return cached.(*SearchResult), nil
		}
		result, err := c.fetchSearch(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		c.cache.set(key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SearchResult), nil
}

// GetFoodDetails は単一食品の詳細をFoodData Central IDで取得し、
// 正規化済みレコードを返す。
func (c *Client) GetFoodDetails(ctx context.Context, fdcID int64) (*model.NormalizedFood, error) {
	key := detailCacheKey(fdcID)
	if cached, ok := c.cache.get(key); ok {
		c.collector.RecordCacheHit("detail")
		return cached.(*model.NormalizedFood), nil
	}
	c.collector.RecordCacheMiss("detail")

	v, err, _ := c.group.Do(key, func() (any, error) {
		if cached, ok := c.cache.get(key); ok {
			return cached.(*model.NormalizedFood), nil
		}
		food, err := c.fetchDetail(ctx, fdcID)
		if err != nil {
			return nil, err
		}
		c.cache.set(key, food)
		return food, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.NormalizedFood), nil
}

// fetchSearch は検索APIを呼び出して正規化する。キャッシュには触れない。
func (c *Client) fetchSearch(ctx context.Context, query string) (*SearchResult, error) {
	reqURL := fmt.Sprintf("%s/foods/search?%s", c.baseURL, url.Values{
		"query":    {query},
		"pageSize": {strconv.Itoa(c.pageSize)},
		"api_key":  {c.apiKey},
	}.Encode())

	body, err := c.doRequest(ctx, "search", reqURL, "")
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("USDA検索レスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		c.collector.RecordProviderFailure("search", "parse")
		return nil, model.NewProviderTransportError(err)
	}

	items := make([]model.NormalizedFood, 0, len(resp.Foods))
	for _, f := range resp.Foods {
		raw := make([]RawNutrient, 0, len(f.FoodNutrients))
		for _, n := range f.FoodNutrients {
			raw = append(raw, RawNutrient{Number: n.NutrientNumber, FDCID: n.NutrientID, Value: n.Value})
		}
		items = append(items, normalizeFood(
			c.sanitizer.Sanitize,
			f.FdcID,
			f.Description, f.BrandOwner, f.FoodCategory,
			f.ServingSize, f.ServingSizeUnit,
			NormalizeNutrients(raw),
		))
	}

	return &SearchResult{Items: items, TotalHits: resp.TotalHits}, nil
}

// fetchDetail は詳細APIを呼び出して正規化する。キャッシュには触れない。
func (c *Client) fetchDetail(ctx context.Context, fdcID int64) (*model.NormalizedFood, error) {
	reqURL := fmt.Sprintf("%s/food/%d?%s", c.baseURL, fdcID, url.Values{
		"api_key": {c.apiKey},
	}.Encode())

	body, err := c.doRequest(ctx, "detail", reqURL, strconv.FormatInt(fdcID, 10))
	if err != nil {
		return nil, err
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("USDA食品詳細レスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
			slog.Int64("fdc_id", fdcID),
		)
		c.collector.RecordProviderFailure("detail", "parse")
		return nil, model.NewProviderTransportError(err)
	}

	category := resp.BrandedFoodCategory
	if category == "" {
		category = resp.FoodCategory.Description
	}

	raw := make([]RawNutrient, 0, len(resp.FoodNutrients))
	for _, n := range resp.FoodNutrients {
		raw = append(raw, RawNutrient{Number: n.Nutrient.Number, FDCID: n.Nutrient.ID, Value: n.Amount})
	}

	food := normalizeFood(
		c.sanitizer.Sanitize,
		resp.FdcID,
		resp.Description, resp.BrandOwner, category,
		resp.ServingSize, resp.ServingSizeUnit,
		NormalizeNutrients(raw),
	)
	return &food, nil
}

// doRequest はレート制限の確認からレスポンスボディの読み取りまでを行う。
// 上流の障害は輸送エラーとステータスエラーに分類される。
// resourceIDが指定されている場合、404は対象リソースの不在として扱う。
func (c *Client) doRequest(ctx context.Context, operation, reqURL, resourceID string) ([]byte, error) {
	if !c.limiter.allow() {
		c.logger.Warn("プロバイダのレート制限枠を使い切りました",
			slog.String("operation", operation),
		)
		c.collector.RecordQuotaRejected()
		return nil, model.NewRateLimitExceededError(providerName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Nutrilog/1.0 Nutrition Tracker")

	c.collector.RecordProviderRequest(operation)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.collector.RecordProviderLatency(time.Since(start))
	if err != nil {
		c.logger.Error("USDA APIの呼び出しに失敗しました",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		c.collector.RecordProviderFailure(operation, "transport")
		return nil, model.NewProviderTransportError(err)
	}
	defer resp.Body.Close()

	c.collector.RecordProviderStatus(resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("USDA APIがエラーステータスを返しました",
			slog.String("operation", operation),
			slog.Int("http_status", resp.StatusCode),
		)
		c.collector.RecordProviderFailure(operation, "status")
		if resp.StatusCode == http.StatusNotFound && resourceID != "" {
			return nil, model.NewFoodNotFoundError(resourceID)
		}
		return nil, model.NewProviderStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.collector.RecordProviderFailure(operation, "transport")
		return nil, model.NewProviderTransportError(err)
	}
	return body, nil
}
