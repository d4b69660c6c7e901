package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joescodelmao/nutrilog/internal/goal"
	"github.com/joescodelmao/nutrilog/internal/model"
)

// GoalServiceInterface は栄養目標ハンドラーが必要とするサービスインターフェース。
type GoalServiceInterface interface {
	// SetupGoals は身体情報から栄養目標を算出して保存する。
	SetupGoals(ctx context.Context, userID string, input goal.SetupInput) (*model.NutritionalGoals, error)
	// GetGoals は指定ユーザーの目標を取得する。
	GetGoals(ctx context.Context, userID string) (*model.NutritionalGoals, error)
}

// GoalsHandler は栄養目標のHTTPハンドラー。
type GoalsHandler struct {
	service GoalServiceInterface
}

// NewGoalsHandler はGoalsHandlerを生成する。
func NewGoalsHandler(service GoalServiceInterface) *GoalsHandler {
	return &GoalsHandler{service: service}
}

// setupGoalsRequest は栄養目標設定リクエストのボディ。
type setupGoalsRequest struct {
	WeightKg       float64 `json:"weightKg"`
	HeightCm       float64 `json:"heightCm"`
	Age            int     `json:"age"`
	Sex            string  `json:"sex"`
	GoalType       string  `json:"goalType"`
	ActivityLevel  string  `json:"activityLevel"`
	WeeklyChangeLb float64 `json:"weeklyChangeLb"`
	ProteinPct     float64 `json:"proteinPct"`
	CarbPct        float64 `json:"carbPct"`
	FatPct         float64 `json:"fatPct"`
	FiberGrams     float64 `json:"fiberGrams"`
}

// macroTargetResponse は単一マクロ栄養素の目標量のAPIレスポンス。
type macroTargetResponse struct {
	Grams    float64 `json:"grams"`
	Calories int     `json:"calories"`
}

// goalsResponse は栄養目標のAPIレスポンス。
type goalsResponse struct {
	Calories       int                 `json:"calories"`
	Protein        macroTargetResponse `json:"protein"`
	Carbohydrates  macroTargetResponse `json:"carbohydrates"`
	Fat            macroTargetResponse `json:"fat"`
	FiberGrams     float64             `json:"fiberGrams"`
	GoalType       string              `json:"goalType"`
	ActivityLevel  string              `json:"activityLevel"`
	WeeklyChangeLb float64             `json:"weeklyChangeLb"`
	BMR            *float64            `json:"bmr,omitempty"`
	TDEE           *int                `json:"tdee,omitempty"`
	BMI            *float64            `json:"bmi,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// SetupGoals は栄養目標の設定を処理する。既存の目標があれば更新する。
// PUT /api/goals
func (h *GoalsHandler) SetupGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req setupGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if !model.ValidGoalType(model.GoalType(req.GoalType)) {
		handleServiceError(w, model.NewValidationError("目標種別の指定が不正です"))
		return
	}

	input := goal.SetupInput{
		Metrics: goal.BodyMetrics{
			WeightKg: req.WeightKg,
			HeightCm: req.HeightCm,
			Age:      req.Age,
			Sex:      model.Sex(req.Sex),
		},
		GoalType:       model.GoalType(req.GoalType),
		ActivityLevel:  model.ActivityLevel(req.ActivityLevel),
		WeeklyChangeLb: req.WeeklyChangeLb,
		FiberGrams:     req.FiberGrams,
	}
	// マクロ配分が一部でも指定された場合のみカスタム配分として扱う
	if req.ProteinPct != 0 || req.CarbPct != 0 || req.FatPct != 0 {
		input.Split = goal.MacroSplit{
			ProteinPct: req.ProteinPct,
			CarbPct:    req.CarbPct,
			FatPct:     req.FatPct,
		}
	}

	goals, err := h.service.SetupGoals(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalsResponse(goals))
}

// GetGoals は栄養目標を取得する。
// GET /api/goals
func (h *GoalsHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	goals, err := h.service.GetGoals(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalsResponse(goals))
}

// SetupGoalsRoutes は栄養目標関連のルーティングを設定したchi.Routerを返す。
func SetupGoalsRoutes(service GoalServiceInterface) http.Handler {
	r := chi.NewRouter()
	h := NewGoalsHandler(service)

	r.Route("/api/goals", func(r chi.Router) {
		r.Put("/", h.SetupGoals)
		r.Get("/", h.GetGoals)
	})

	return r
}

// toGoalsResponse はmodel.NutritionalGoalsからAPIレスポンスに変換する。
func toGoalsResponse(goals *model.NutritionalGoals) goalsResponse {
	return goalsResponse{
		Calories:       goals.Calories,
		Protein:        macroTargetResponse{Grams: goals.Protein.Grams, Calories: goals.Protein.Calories},
		Carbohydrates:  macroTargetResponse{Grams: goals.Carbohydrates.Grams, Calories: goals.Carbohydrates.Calories},
		Fat:            macroTargetResponse{Grams: goals.Fat.Grams, Calories: goals.Fat.Calories},
		FiberGrams:     goals.FiberGrams,
		GoalType:       string(goals.GoalType),
		ActivityLevel:  string(goals.ActivityLevel),
		WeeklyChangeLb: goals.WeeklyChangeLb,
		BMR:            goals.BMR,
		TDEE:           goals.TDEE,
		BMI:            goals.BMI,
		CreatedAt:      goals.CreatedAt,
		UpdatedAt:      goals.UpdatedAt,
	}
}
