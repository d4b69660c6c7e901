package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joescodelmao/nutrilog/internal/aggregate"
	"github.com/joescodelmao/nutrilog/internal/analysis"
	"github.com/joescodelmao/nutrilog/internal/model"
)

// LogServiceInterface は食事記録ハンドラーが必要とするサービスインターフェース。
type LogServiceInterface interface {
	// LogFood は食事記録を追加し、更新後の1日の記録を返す。
	LogFood(ctx context.Context, userID string, req analysis.LogFoodRequest) (*model.DailyLog, error)
	// GetDailyLog は指定日の食事記録を取得する。
	GetDailyLog(ctx context.Context, userID string, date time.Time) (*model.DailyLog, error)
	// RemoveEntry は食事記録の1エントリを削除し、更新後の1日の記録を返す。
	RemoveEntry(ctx context.Context, userID string, date time.Time, entryID string) (*model.DailyLog, error)
}

// LogHandler は食事記録のHTTPハンドラー。
type LogHandler struct {
	service LogServiceInterface
}

// NewLogHandler はLogHandlerを生成する。
func NewLogHandler(service LogServiceInterface) *LogHandler {
	return &LogHandler{service: service}
}

// logFoodRequest は食事記録追加リクエストのボディ。
type logFoodRequest struct {
	FoodID   string  `json:"foodId"`
	Date     string  `json:"date"`
	MealSlot string  `json:"mealSlot"`
	Quantity float64 `json:"quantity"`
}

// logEntryResponse は食事記録1エントリのAPIレスポンス。
type logEntryResponse struct {
	ID          string          `json:"id"`
	FoodID      string          `json:"foodId"`
	FoodName    string          `json:"foodName"`
	Nutrients   model.Nutrients `json:"nutrients"`
	ServingSize float64         `json:"servingSize"`
	ServingUnit string          `json:"servingUnit"`
	Quantity    float64         `json:"quantity"`
	MealSlot    string          `json:"mealSlot"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// dailyLogResponse は1日の食事記録のAPIレスポンス。
// 食事区分ごとの合計と1日の合計は常に返却時に導出する。
type dailyLogResponse struct {
	Date       string                                `json:"date"`
	Meals      map[model.MealSlot][]logEntryResponse `json:"meals"`
	MealTotals map[model.MealSlot]model.Nutrients    `json:"mealTotals"`
	Total      model.Nutrients                       `json:"total"`
}

// LogFood は食事記録の追加を処理する。
// POST /api/logs
func (h *LogHandler) LogFood(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req logFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	date, err := parseDateParam(req.Date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	log, err := h.service.LogFood(r.Context(), userID, analysis.LogFoodRequest{
		FoodID:   req.FoodID,
		Date:     date,
		MealSlot: model.MealSlot(req.MealSlot),
		Quantity: req.Quantity,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDailyLogResponse(log))
}

// GetDailyLog は指定日の食事記録を取得する。
// GET /api/logs/:date
func (h *LogHandler) GetDailyLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	date, err := parseDateParam(chi.URLParam(r, "date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	log, err := h.service.GetDailyLog(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDailyLogResponse(log))
}

// RemoveEntry は食事記録の1エントリを削除する。
// DELETE /api/logs/:date/entries/:entryID
func (h *LogHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	date, err := parseDateParam(chi.URLParam(r, "date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entryID := chi.URLParam(r, "entryID")

	log, err := h.service.RemoveEntry(r.Context(), userID, date, entryID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDailyLogResponse(log))
}

// SetupLogRoutes は食事記録関連のルーティングを設定したchi.Routerを返す。
func SetupLogRoutes(service LogServiceInterface) http.Handler {
	r := chi.NewRouter()
	h := NewLogHandler(service)

	r.Route("/api/logs", func(r chi.Router) {
		r.Post("/", h.LogFood)
		r.Route("/{date}", func(r chi.Router) {
			r.Get("/", h.GetDailyLog)
			r.Delete("/entries/{entryID}", h.RemoveEntry)
		})
	})

	return r
}

// toDailyLogResponse はmodel.DailyLogからAPIレスポンスに変換する。
func toDailyLogResponse(log *model.DailyLog) dailyLogResponse {
	totals := aggregate.ComputeTotals(log)

	meals := make(map[model.MealSlot][]logEntryResponse, len(log.Meals))
	for slot, entries := range log.Meals {
		converted := make([]logEntryResponse, 0, len(entries))
		for _, entry := range entries {
			converted = append(converted, logEntryResponse{
				ID:          entry.ID,
				FoodID:      entry.FoodID,
				FoodName:    entry.FoodName,
				Nutrients:   entry.Nutrients,
				ServingSize: entry.ServingSize,
				ServingUnit: entry.ServingUnit,
				Quantity:    entry.Quantity,
				MealSlot:    string(entry.MealSlot),
				CreatedAt:   entry.CreatedAt,
			})
		}
		meals[slot] = converted
	}

	return dailyLogResponse{
		Date:       log.Date,
		Meals:      meals,
		MealTotals: totals.Meals,
		Total:      totals.Total,
	}
}
