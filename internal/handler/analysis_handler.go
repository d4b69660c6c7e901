package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joescodelmao/nutrilog/internal/aggregate"
	"github.com/joescodelmao/nutrilog/internal/analysis"
	"github.com/joescodelmao/nutrilog/internal/model"
)

// AnalysisServiceInterface は栄養分析ハンドラーが必要とするサービスインターフェース。
type AnalysisServiceInterface interface {
	// GetAnalysis は指定日の摂取実績と目標の比較分析を返す。
	GetAnalysis(ctx context.Context, userID string, date time.Time) (*analysis.Analysis, error)
	// GetTrends は指定期間の日別トレンドを返す。
	GetTrends(ctx context.Context, userID string, endDate time.Time, windowDays int) (*aggregate.Trends, error)
	// MealSuggestions は食事区分に応じた食品候補を返す。
	MealSuggestions(ctx context.Context, userID string, slot model.MealSlot) (*analysis.MealSuggestionResult, error)
}

// AnalysisHandler は栄養分析のHTTPハンドラー。
type AnalysisHandler struct {
	service AnalysisServiceInterface
}

// NewAnalysisHandler はAnalysisHandlerを生成する。
func NewAnalysisHandler(service AnalysisServiceInterface) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// defaultTrendWindowDays はトレンド集計のデフォルト期間（日数）。
const defaultTrendWindowDays = 7

// GetAnalysis は指定日の栄養分析を取得する。
// GET /api/analysis?date={YYYY-MM-DD}
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.service.GetAnalysis(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetTrends は日別トレンドを取得する。
// GET /api/analysis/trends?end={YYYY-MM-DD}&days={N}
func (h *AnalysisHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	endDate, err := parseDateParam(r.URL.Query().Get("end"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	windowDays := defaultTrendWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			handleServiceError(w, model.NewValidationError("daysは正の整数で指定してください"))
			return
		}
		windowDays = parsed
	}

	trends, err := h.service.GetTrends(r.Context(), userID, endDate, windowDays)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trends)
}

// MealSuggestions は食事区分に応じた食品候補を取得する。
// GET /api/analysis/suggestions?slot={mealSlot}
func (h *AnalysisHandler) MealSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	slot := model.MealSlot(r.URL.Query().Get("slot"))

	result, err := h.service.MealSuggestions(r.Context(), userID, slot)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SetupAnalysisRoutes は栄養分析関連のルーティングを設定したchi.Routerを返す。
func SetupAnalysisRoutes(service AnalysisServiceInterface) http.Handler {
	r := chi.NewRouter()
	h := NewAnalysisHandler(service)

	r.Route("/api/analysis", func(r chi.Router) {
		r.Get("/", h.GetAnalysis)
		r.Get("/trends", h.GetTrends)
		r.Get("/suggestions", h.MealSuggestions)
	})

	return r
}
