package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joescodelmao/nutrilog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 食品カタログ
	FoodService FoodServiceInterface

	// 食事記録
	LogService LogServiceInterface

	// 栄養目標
	GoalService GoalServiceInterface

	// 栄養分析
	AnalysisService AnalysisServiceInterface

	// メトリクスエンドポイント。nilの場合は/metricsを公開しない
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → UserID → RateLimit(General)
//
// ヘルスチェック（/health）とメトリクス（/metrics）はユーザーID要求の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	foodHandler := NewFoodHandler(deps.FoodService)
	logHandler := NewLogHandler(deps.LogService)
	goalsHandler := NewGoalsHandler(deps.GoalService)
	analysisHandler := NewAnalysisHandler(deps.AnalysisService)

	// --- ユーザーID不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- ユーザーIDが必要なルート ---
	// ミドルウェアスタック: UserID → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewUserIDMiddleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 食品カタログ
		r.Route("/api/foods", func(r chi.Router) {
			r.Get("/search", foodHandler.SearchFoods)
			r.Post("/", foodHandler.CreateFood)

			// POST /api/foods/import - 食品インポート（インポート専用レート制限を追加）
			r.With(deps.RateLimiter.ImportMiddleware()).Post("/import", foodHandler.ImportFood)

			r.Get("/{id}", foodHandler.GetFood)
		})

		// 食事記録
		r.Route("/api/logs", func(r chi.Router) {
			r.Post("/", logHandler.LogFood)

			r.Route("/{date}", func(r chi.Router) {
				r.Get("/", logHandler.GetDailyLog)
				r.Delete("/entries/{entryID}", logHandler.RemoveEntry)
			})
		})

		// 栄養目標
		r.Route("/api/goals", func(r chi.Router) {
			r.Put("/", goalsHandler.SetupGoals)
			r.Get("/", goalsHandler.GetGoals)
		})

		// 栄養分析
		r.Route("/api/analysis", func(r chi.Router) {
			r.Get("/", analysisHandler.GetAnalysis)
			r.Get("/trends", analysisHandler.GetTrends)
			r.Get("/suggestions", analysisHandler.MealSuggestions)
		})
	})

	return r
}
