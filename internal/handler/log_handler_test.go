package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joescodelmao/nutrilog/internal/analysis"
	"github.com/joescodelmao/nutrilog/internal/model"
)

// sampleDailyLog は朝食1件を含むテスト用の1日の記録を返す。
func sampleDailyLog() *model.DailyLog {
	log := model.NewDailyLog("user-123", "2025-06-01")
	log.Meals[model.MealSlotBreakfast] = []model.LogEntry{
		{
			ID:          "entry-1",
			FoodID:      "food-1",
			FoodName:    "オートミール",
			Nutrients:   model.Nutrients{Calories: 380, Protein: 13, Carbohydrates: 68},
			ServingSize: 100,
			ServingUnit: "g",
			Quantity:    50,
			MealSlot:    model.MealSlotBreakfast,
		},
	}
	return log
}

// --- POST /api/logs テスト ---

func TestLogHandler_LogFood_Success(t *testing.T) {
	svc := &mockLogService{
		logFoodFn: func(ctx context.Context, userID string, req analysis.LogFoodRequest) (*model.DailyLog, error) {
			if userID != "user-123" {
				t.Errorf("userID = %q, want %q", userID, "user-123")
			}
			if req.FoodID != "food-1" {
				t.Errorf("foodID = %q, want %q", req.FoodID, "food-1")
			}
			if req.MealSlot != model.MealSlotBreakfast {
				t.Errorf("mealSlot = %q, want %q", req.MealSlot, model.MealSlotBreakfast)
			}
			if req.Quantity != 50 {
				t.Errorf("quantity = %f, want 50", req.Quantity)
			}
			if req.Date.Format("2006-01-02") != "2025-06-01" {
				t.Errorf("date = %q, want %q", req.Date.Format("2006-01-02"), "2025-06-01")
			}
			return sampleDailyLog(), nil
		},
	}

	h := NewLogHandler(svc)

	body := `{"foodId": "food-1", "date": "2025-06-01", "mealSlot": "breakfast", "quantity": 50}`
	req := httptest.NewRequest(http.MethodPost, "/api/logs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.LogFood(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var logResp dailyLogResponse
	if err := json.NewDecoder(resp.Body).Decode(&logResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if logResp.Date != "2025-06-01" {
		t.Errorf("date = %q, want %q", logResp.Date, "2025-06-01")
	}
	if len(logResp.Meals[model.MealSlotBreakfast]) != 1 {
		t.Fatalf("breakfast entries = %d, want 1", len(logResp.Meals[model.MealSlotBreakfast]))
	}

	// 合計は返却時に導出される（数量50g、基準提供量100g → 0.5倍）
	if logResp.Total.Calories != 190 {
		t.Errorf("total calories = %f, want 190", logResp.Total.Calories)
	}
}

func TestLogHandler_LogFood_NoUserID_Returns401(t *testing.T) {
	h := NewLogHandler(&mockLogService{})

	body := `{"foodId": "food-1", "mealSlot": "breakfast", "quantity": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/logs", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.LogFood(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestLogHandler_LogFood_InvalidDate_Returns400(t *testing.T) {
	h := NewLogHandler(&mockLogService{
		logFoodFn: func(ctx context.Context, userID string, req analysis.LogFoodRequest) (*model.DailyLog, error) {
			t.Fatal("service should not be called for an invalid date")
			return nil, nil
		},
	})

	body := `{"foodId": "food-1", "date": "06/01/2025", "mealSlot": "breakfast", "quantity": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/logs", bytes.NewBufferString(body))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.LogFood(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestLogHandler_LogFood_UnknownFood_Returns404(t *testing.T) {
	svc := &mockLogService{
		logFoodFn: func(ctx context.Context, userID string, req analysis.LogFoodRequest) (*model.DailyLog, error) {
			return nil, model.NewFoodNotFoundError(req.FoodID)
		},
	}

	h := NewLogHandler(svc)

	body := `{"foodId": "missing", "date": "2025-06-01", "mealSlot": "breakfast", "quantity": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/logs", bytes.NewBufferString(body))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.LogFood(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

// --- GET /api/logs/:date テスト ---

func TestLogHandler_GetDailyLog_Success(t *testing.T) {
	svc := &mockLogService{
		getDailyLogFn: func(ctx context.Context, userID string, date time.Time) (*model.DailyLog, error) {
			if date.Format("2006-01-02") != "2025-06-01" {
				t.Errorf("date = %q, want %q", date.Format("2006-01-02"), "2025-06-01")
			}
			return sampleDailyLog(), nil
		},
	}

	h := NewLogHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/logs/2025-06-01", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "date", "2025-06-01")
	w := httptest.NewRecorder()

	h.GetDailyLog(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var logResp dailyLogResponse
	if err := json.NewDecoder(resp.Body).Decode(&logResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if logResp.MealTotals[model.MealSlotBreakfast].Calories != 190 {
		t.Errorf("breakfast calories = %f, want 190", logResp.MealTotals[model.MealSlotBreakfast].Calories)
	}
}

// --- DELETE /api/logs/:date/entries/:entryID テスト ---

func TestLogHandler_RemoveEntry_ReturnsRefreshedLog(t *testing.T) {
	svc := &mockLogService{
		removeEntryFn: func(ctx context.Context, userID string, date time.Time, entryID string) (*model.DailyLog, error) {
			if entryID != "entry-1" {
				t.Errorf("entryID = %q, want %q", entryID, "entry-1")
			}
			return model.NewDailyLog(userID, date.Format("2006-01-02")), nil
		},
	}

	h := NewLogHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/logs/2025-06-01/entries/entry-1", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "date", "2025-06-01")
	req = withChiURLParam(req, "entryID", "entry-1")
	w := httptest.NewRecorder()

	h.RemoveEntry(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var logResp dailyLogResponse
	if err := json.NewDecoder(resp.Body).Decode(&logResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if logResp.Total.Calories != 0 {
		t.Errorf("total calories = %f, want 0", logResp.Total.Calories)
	}
}

func TestLogHandler_RemoveEntry_NotFound_Returns404(t *testing.T) {
	svc := &mockLogService{
		removeEntryFn: func(ctx context.Context, userID string, date time.Time, entryID string) (*model.DailyLog, error) {
			return nil, model.NewEntryNotFoundError(entryID)
		},
	}

	h := NewLogHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/logs/2025-06-01/entries/missing", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "date", "2025-06-01")
	req = withChiURLParam(req, "entryID", "missing")
	w := httptest.NewRecorder()

	h.RemoveEntry(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}
