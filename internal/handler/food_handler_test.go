package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joescodelmao/nutrilog/internal/aggregate"
	"github.com/joescodelmao/nutrilog/internal/analysis"
	"github.com/joescodelmao/nutrilog/internal/goal"
	"github.com/joescodelmao/nutrilog/internal/middleware"
	"github.com/joescodelmao/nutrilog/internal/model"
)

// --- モック定義 ---

// mockFoodService はFoodServiceInterfaceのモック実装。
type mockFoodService struct {
	searchFoodsFn func(ctx context.Context, query string, limit int) (*analysis.FoodSearchResult, error)
	getFoodFn     func(ctx context.Context, id string) (*model.FoodItem, error)
	createFoodFn  func(ctx context.Context, req analysis.ManualFoodRequest) (*model.FoodItem, error)
	importFoodFn  func(ctx context.Context, fdcID int64) (*model.FoodItem, error)
}

func (m *mockFoodService) SearchFoods(ctx context.Context, query string, limit int) (*analysis.FoodSearchResult, error) {
	if m.searchFoodsFn != nil {
		return m.searchFoodsFn(ctx, query, limit)
	}
	return &analysis.FoodSearchResult{}, nil
}

func (m *mockFoodService) GetFood(ctx context.Context, id string) (*model.FoodItem, error) {
	if m.getFoodFn != nil {
		return m.getFoodFn(ctx, id)
	}
	return nil, nil
}

func (m *mockFoodService) CreateFood(ctx context.Context, req analysis.ManualFoodRequest) (*model.FoodItem, error) {
	if m.createFoodFn != nil {
		return m.createFoodFn(ctx, req)
	}
	return nil, nil
}

func (m *mockFoodService) ImportFood(ctx context.Context, fdcID int64) (*model.FoodItem, error) {
	if m.importFoodFn != nil {
		return m.importFoodFn(ctx, fdcID)
	}
	return nil, nil
}

// mockLogService はLogServiceInterfaceのモック実装。
type mockLogService struct {
	logFoodFn     func(ctx context.Context, userID string, req analysis.LogFoodRequest) (*model.DailyLog, error)
	getDailyLogFn func(ctx context.Context, userID string, date time.Time) (*model.DailyLog, error)
	removeEntryFn func(ctx context.Context, userID string, date time.Time, entryID string) (*model.DailyLog, error)
}

func (m *mockLogService) LogFood(ctx context.Context, userID string, req analysis.LogFoodRequest) (*model.DailyLog, error) {
	if m.logFoodFn != nil {
		return m.logFoodFn(ctx, userID, req)
	}
	return model.NewDailyLog(userID, "2025-06-01"), nil
}

func (m *mockLogService) GetDailyLog(ctx context.Context, userID string, date time.Time) (*model.DailyLog, error) {
	if m.getDailyLogFn != nil {
		return m.getDailyLogFn(ctx, userID, date)
	}
	return model.NewDailyLog(userID, date.Format("2006-01-02")), nil
}

func (m *mockLogService) RemoveEntry(ctx context.Context, userID string, date time.Time, entryID string) (*model.DailyLog, error) {
	if m.removeEntryFn != nil {
		return m.removeEntryFn(ctx, userID, date, entryID)
	}
	return model.NewDailyLog(userID, date.Format("2006-01-02")), nil
}

// mockGoalService はGoalServiceInterfaceのモック実装。
type mockGoalService struct {
	setupGoalsFn func(ctx context.Context, userID string, input goal.SetupInput) (*model.NutritionalGoals, error)
	getGoalsFn   func(ctx context.Context, userID string) (*model.NutritionalGoals, error)
}

func (m *mockGoalService) SetupGoals(ctx context.Context, userID string, input goal.SetupInput) (*model.NutritionalGoals, error) {
	if m.setupGoalsFn != nil {
		return m.setupGoalsFn(ctx, userID, input)
	}
	return &model.NutritionalGoals{UserID: userID}, nil
}

func (m *mockGoalService) GetGoals(ctx context.Context, userID string) (*model.NutritionalGoals, error) {
	if m.getGoalsFn != nil {
		return m.getGoalsFn(ctx, userID)
	}
	return &model.NutritionalGoals{UserID: userID}, nil
}

// mockAnalysisService はAnalysisServiceInterfaceのモック実装。
type mockAnalysisService struct {
	getAnalysisFn     func(ctx context.Context, userID string, date time.Time) (*analysis.Analysis, error)
	getTrendsFn       func(ctx context.Context, userID string, endDate time.Time, windowDays int) (*aggregate.Trends, error)
	mealSuggestionsFn func(ctx context.Context, userID string, slot model.MealSlot) (*analysis.MealSuggestionResult, error)
}

func (m *mockAnalysisService) GetAnalysis(ctx context.Context, userID string, date time.Time) (*analysis.Analysis, error) {
	if m.getAnalysisFn != nil {
		return m.getAnalysisFn(ctx, userID, date)
	}
	return &analysis.Analysis{}, nil
}

func (m *mockAnalysisService) GetTrends(ctx context.Context, userID string, endDate time.Time, windowDays int) (*aggregate.Trends, error) {
	if m.getTrendsFn != nil {
		return m.getTrendsFn(ctx, userID, endDate, windowDays)
	}
	return &aggregate.Trends{}, nil
}

func (m *mockAnalysisService) MealSuggestions(ctx context.Context, userID string, slot model.MealSlot) (*analysis.MealSuggestionResult, error) {
	if m.mealSuggestionsFn != nil {
		return m.mealSuggestionsFn(ctx, userID, slot)
	}
	return &analysis.MealSuggestionResult{}, nil
}

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
// 既に注入済みのルートコンテキストがあればパラメータを追記する。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// sampleFood はテスト用の食品を返す。
func sampleFood() *model.FoodItem {
	return &model.FoodItem{
		ID:          "food-1",
		Name:        "鶏むね肉",
		Category:    "poultry products",
		Nutrients:   model.Nutrients{Calories: 165, Protein: 31, Fat: 3.6},
		ServingSize: 100,
		ServingUnit: "g",
		Source:      model.FoodSourceManual,
	}
}

// --- GET /api/foods/search テスト ---

func TestFoodHandler_SearchFoods_Success(t *testing.T) {
	svc := &mockFoodService{
		searchFoodsFn: func(ctx context.Context, query string, limit int) (*analysis.FoodSearchResult, error) {
			if query != "chicken" {
				t.Errorf("query = %q, want %q", query, "chicken")
			}
			if limit != 10 {
				t.Errorf("limit = %d, want 10", limit)
			}
			return &analysis.FoodSearchResult{
				Source:    model.SearchSourceProvider,
				Items:     []analysis.FoodSummary{{Name: "Chicken Breast"}},
				TotalHits: 1,
			}, nil
		},
	}

	h := NewFoodHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/foods/search?q=chicken&limit=10", nil)
	w := httptest.NewRecorder()

	h.SearchFoods(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var result analysis.FoodSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Source != model.SearchSourceProvider {
		t.Errorf("source = %q, want %q", result.Source, model.SearchSourceProvider)
	}
	if len(result.Items) != 1 {
		t.Errorf("items = %d, want 1", len(result.Items))
	}
}

func TestFoodHandler_SearchFoods_DefaultLimit(t *testing.T) {
	svc := &mockFoodService{
		searchFoodsFn: func(ctx context.Context, query string, limit int) (*analysis.FoodSearchResult, error) {
			if limit != defaultSearchLimit {
				t.Errorf("limit = %d, want %d", limit, defaultSearchLimit)
			}
			return &analysis.FoodSearchResult{}, nil
		},
	}

	h := NewFoodHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/foods/search?q=rice", nil)
	w := httptest.NewRecorder()

	h.SearchFoods(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestFoodHandler_SearchFoods_InvalidLimit_Returns400(t *testing.T) {
	h := NewFoodHandler(&mockFoodService{})

	req := httptest.NewRequest(http.MethodGet, "/api/foods/search?q=rice&limit=abc", nil)
	w := httptest.NewRecorder()

	h.SearchFoods(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestFoodHandler_SearchFoods_EmptyQuery_Returns400(t *testing.T) {
	svc := &mockFoodService{
		searchFoodsFn: func(ctx context.Context, query string, limit int) (*analysis.FoodSearchResult, error) {
			return nil, model.NewEmptyQueryError()
		},
	}

	h := NewFoodHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/foods/search", nil)
	w := httptest.NewRecorder()

	h.SearchFoods(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}

	body := parseAPIErrorResponse(t, w)
	if body["category"] != "validation" {
		t.Errorf("category = %q, want %q", body["category"], "validation")
	}
}

func TestFoodHandler_SearchFoods_RateLimited_Returns429(t *testing.T) {
	svc := &mockFoodService{
		searchFoodsFn: func(ctx context.Context, query string, limit int) (*analysis.FoodSearchResult, error) {
			return nil, model.NewRateLimitExceededError("usda")
		},
	}

	h := NewFoodHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/foods/search?q=rice", nil)
	w := httptest.NewRecorder()

	h.SearchFoods(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
}

// --- GET /api/foods/:id テスト ---

func TestFoodHandler_GetFood_Success(t *testing.T) {
	svc := &mockFoodService{
		getFoodFn: func(ctx context.Context, id string) (*model.FoodItem, error) {
			if id != "food-1" {
				t.Errorf("id = %q, want %q", id, "food-1")
			}
			return sampleFood(), nil
		},
	}

	h := NewFoodHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/foods/food-1", nil)
	req = withChiURLParam(req, "id", "food-1")
	w := httptest.NewRecorder()

	h.GetFood(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body foodResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Name != "鶏むね肉" {
		t.Errorf("name = %q, want %q", body.Name, "鶏むね肉")
	}
	if body.Nutrients.Protein != 31 {
		t.Errorf("protein = %f, want 31", body.Nutrients.Protein)
	}
}

func TestFoodHandler_GetFood_NotFound_Returns404(t *testing.T) {
	svc := &mockFoodService{
		getFoodFn: func(ctx context.Context, id string) (*model.FoodItem, error) {
			return nil, model.NewFoodNotFoundError(id)
		},
	}

	h := NewFoodHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/foods/missing", nil)
	req = withChiURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.GetFood(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}

	body := parseAPIErrorResponse(t, w)
	if body["category"] != "not_found" {
		t.Errorf("category = %q, want %q", body["category"], "not_found")
	}
}

// --- POST /api/foods テスト ---

func TestFoodHandler_CreateFood_Success(t *testing.T) {
	svc := &mockFoodService{
		createFoodFn: func(ctx context.Context, req analysis.ManualFoodRequest) (*model.FoodItem, error) {
			if req.Name != "玄米ごはん" {
				t.Errorf("name = %q, want %q", req.Name, "玄米ごはん")
			}
			if req.ServingSize != 150 {
				t.Errorf("servingSize = %f, want 150", req.ServingSize)
			}
			return &model.FoodItem{
				ID:          "food-new",
				Name:        req.Name,
				Nutrients:   req.Nutrients,
				ServingSize: req.ServingSize,
				ServingUnit: req.ServingUnit,
				Source:      model.FoodSourceManual,
			}, nil
		},
	}

	h := NewFoodHandler(svc)

	body := `{"name": "玄米ごはん", "nutrients": {"calories": 248, "carbohydrates": 51.7}, "servingSize": 150, "servingUnit": "g"}`
	req := httptest.NewRequest(http.MethodPost, "/api/foods", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.CreateFood(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created foodResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Source != "manual" {
		t.Errorf("source = %q, want %q", created.Source, "manual")
	}
}

func TestFoodHandler_CreateFood_InvalidBody_Returns400(t *testing.T) {
	h := NewFoodHandler(&mockFoodService{})

	req := httptest.NewRequest(http.MethodPost, "/api/foods", bytes.NewBufferString("{invalid"))
	w := httptest.NewRecorder()

	h.CreateFood(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// --- POST /api/foods/import テスト ---

func TestFoodHandler_ImportFood_Success(t *testing.T) {
	svc := &mockFoodService{
		importFoodFn: func(ctx context.Context, fdcID int64) (*model.FoodItem, error) {
			if fdcID != 171077 {
				t.Errorf("fdcID = %d, want 171077", fdcID)
			}
			return &model.FoodItem{
				ID:       "food-imported",
				Name:     "Chicken Breast",
				Source:   model.FoodSourceUSDA,
				SourceID: "171077",
			}, nil
		},
	}

	h := NewFoodHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/foods/import", bytes.NewBufferString(`{"fdcId": 171077}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.ImportFood(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var imported foodResponse
	if err := json.NewDecoder(resp.Body).Decode(&imported); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if imported.Source != "usda" {
		t.Errorf("source = %q, want %q", imported.Source, "usda")
	}
	if imported.SourceID != "171077" {
		t.Errorf("sourceId = %q, want %q", imported.SourceID, "171077")
	}
}

func TestFoodHandler_ImportFood_InvalidFdcID_Returns400(t *testing.T) {
	h := NewFoodHandler(&mockFoodService{
		importFoodFn: func(ctx context.Context, fdcID int64) (*model.FoodItem, error) {
			t.Fatal("service should not be called for an invalid fdcId")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/foods/import", bytes.NewBufferString(`{"fdcId": 0}`))
	w := httptest.NewRecorder()

	h.ImportFood(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestFoodHandler_ImportFood_ProviderFailure_Returns502(t *testing.T) {
	svc := &mockFoodService{
		importFoodFn: func(ctx context.Context, fdcID int64) (*model.FoodItem, error) {
			return nil, model.NewProviderStatusError(http.StatusInternalServerError)
		},
	}

	h := NewFoodHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/foods/import", bytes.NewBufferString(`{"fdcId": 171077}`))
	w := httptest.NewRecorder()

	h.ImportFood(w, req)

	if w.Result().StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadGateway)
	}

	body := parseAPIErrorResponse(t, w)
	if body["category"] != "external" {
		t.Errorf("category = %q, want %q", body["category"], "external")
	}
}
