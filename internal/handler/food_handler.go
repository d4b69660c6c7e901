package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joescodelmao/nutrilog/internal/analysis"
	"github.com/joescodelmao/nutrilog/internal/model"
)

// FoodServiceInterface は食品ハンドラーが必要とするサービスインターフェース。
type FoodServiceInterface interface {
	// SearchFoods は食品を検索する。プロバイダ障害時はローカルカタログへフォールバックする。
	SearchFoods(ctx context.Context, query string, limit int) (*analysis.FoodSearchResult, error)
	// GetFood はカタログの食品を取得する。
	GetFood(ctx context.Context, id string) (*model.FoodItem, error)
	// CreateFood は食品を手動登録する。
	CreateFood(ctx context.Context, req analysis.ManualFoodRequest) (*model.FoodItem, error)
	// ImportFood は外部プロバイダの食品をカタログへ取り込む。
	ImportFood(ctx context.Context, fdcID int64) (*model.FoodItem, error)
}

// FoodHandler は食品カタログのHTTPハンドラー。
type FoodHandler struct {
	service FoodServiceInterface
}

// NewFoodHandler はFoodHandlerを生成する。
func NewFoodHandler(service FoodServiceInterface) *FoodHandler {
	return &FoodHandler{service: service}
}

// defaultSearchLimit は検索結果のデフォルト件数。
const defaultSearchLimit = 25

// createFoodRequest は食品手動登録リクエストのボディ。
type createFoodRequest struct {
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Nutrients   model.Nutrients `json:"nutrients"`
	ServingSize float64         `json:"servingSize"`
	ServingUnit string          `json:"servingUnit"`
	ImageURL    string          `json:"imageUrl"`
}

// importFoodRequest は食品インポートリクエストのボディ。
type importFoodRequest struct {
	FdcID int64 `json:"fdcId"`
}

// foodResponse は食品情報のAPIレスポンス。
type foodResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	Nutrients   model.Nutrients `json:"nutrients"`
	ServingSize float64         `json:"servingSize"`
	ServingUnit string          `json:"servingUnit"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Source      string          `json:"source"`
	SourceID    string          `json:"sourceId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// SearchFoods は食品検索を処理する。
// GET /api/foods/search?q={query}&limit={limit}
func (h *FoodHandler) SearchFoods(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			handleServiceError(w, model.NewValidationError("limitは正の整数で指定してください"))
			return
		}
		limit = parsed
	}

	result, err := h.service.SearchFoods(r.Context(), query, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetFood は食品詳細を取得する。
// GET /api/foods/:id
func (h *FoodHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	foodID := chi.URLParam(r, "id")

	food, err := h.service.GetFood(r.Context(), foodID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFoodResponse(food))
}

// CreateFood は食品の手動登録を処理する。
// POST /api/foods
func (h *FoodHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	var req createFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	food, err := h.service.CreateFood(r.Context(), analysis.ManualFoodRequest{
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    req.Category,
		Nutrients:   req.Nutrients,
		ServingSize: req.ServingSize,
		ServingUnit: req.ServingUnit,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFoodResponse(food))
}

// ImportFood は外部プロバイダからの食品インポートを処理する。
// POST /api/foods/import
func (h *FoodHandler) ImportFood(w http.ResponseWriter, r *http.Request) {
	var req importFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if req.FdcID <= 0 {
		handleServiceError(w, model.NewValidationError("fdcIdは正の整数で指定してください"))
		return
	}

	food, err := h.service.ImportFood(r.Context(), req.FdcID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFoodResponse(food))
}

// SetupFoodRoutes は食品カタログ関連のルーティングを設定したchi.Routerを返す。
// importMiddleware が nil でない場合、POST /api/foods/import にインポート専用レート制限を適用する。
func SetupFoodRoutes(service FoodServiceInterface, importMiddleware func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h := NewFoodHandler(service)

	r.Route("/api/foods", func(r chi.Router) {
		r.Get("/search", h.SearchFoods)
		r.Post("/", h.CreateFood)

		// POST /api/foods/import - 食品インポート（インポート専用レート制限を適用）
		if importMiddleware != nil {
			r.With(importMiddleware).Post("/import", h.ImportFood)
		} else {
			r.Post("/import", h.ImportFood)
		}

		r.Get("/{id}", h.GetFood)
	})

	return r
}

// toFoodResponse はmodel.FoodItemからAPIレスポンスに変換する。
func toFoodResponse(food *model.FoodItem) foodResponse {
	return foodResponse{
		ID:          food.ID,
		Name:        food.Name,
		Brand:       food.Brand,
		Category:    food.Category,
		Nutrients:   food.Nutrients,
		ServingSize: food.ServingSize,
		ServingUnit: food.ServingUnit,
		ImageURL:    food.ImageURL,
		Source:      string(food.Source),
		SourceID:    food.SourceID,
		CreatedAt:   food.CreatedAt,
		UpdatedAt:   food.UpdatedAt,
	}
}
