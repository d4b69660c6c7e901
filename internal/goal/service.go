package goal

import (
	"context"
	"log/slog"
	"time"

	"github.com/joescodelmao/nutrilog/internal/model"
	"github.com/joescodelmao/nutrilog/internal/repository"
)

// defaultFiberGrams は食物繊維のデフォルト目標量（g/日）。
const defaultFiberGrams = 25.0

// SetupInput は目標算出の入力パラメータ。
// Splitがゼロ値の場合はデフォルト配分（25/45/30）が適用される。
type SetupInput struct {
	Metrics        BodyMetrics
	GoalType       model.GoalType
	ActivityLevel  model.ActivityLevel
	WeeklyChangeLb float64
	Split          MacroSplit
	FiberGrams     float64
}

// Service は栄養目標の算出と永続化を行う。
type Service struct {
	goalsRepo repository.GoalsRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はService の新しいインスタンスを生成する。
func NewService(goalsRepo repository.GoalsRepository, logger *slog.Logger) *Service {
	return &Service{
		goalsRepo: goalsRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// SetupGoals は身体情報から栄養目標を算出して保存する。
// BMR→TDEE→BMI→目標カロリー→マクロ配分の順で導出し、
// 既存の目標があれば更新、なければ作成する。
func (s *Service) SetupGoals(ctx context.Context, userID string, input SetupInput) (*model.NutritionalGoals, error) {
	if err := input.Metrics.Validate(); err != nil {
		return nil, err
	}

	bmr := CalculateBMR(input.Metrics)
	tdee, err := CalculateTDEE(bmr, input.ActivityLevel)
	if err != nil {
		return nil, err
	}
	bmi, bmiCat := CalculateBMI(input.Metrics.WeightKg, input.Metrics.HeightCm)

	calories, err := CalculateTargetCalories(tdee, input.GoalType, input.WeeklyChangeLb)
	if err != nil {
		return nil, err
	}

	split := input.Split
	if split == (MacroSplit{}) {
		split = DefaultMacroSplit()
	}
	protein, carbs, fat, err := CalculateMacros(calories, split)
	if err != nil {
		return nil, err
	}

	fiber := input.FiberGrams
	if fiber <= 0 {
		fiber = defaultFiberGrams
	}

	now := s.now()
	goals := &model.NutritionalGoals{
		UserID:         userID,
		Calories:       calories,
		Protein:        protein,
		Carbohydrates:  carbs,
		Fat:            fat,
		FiberGrams:     fiber,
		GoalType:       input.GoalType,
		ActivityLevel:  input.ActivityLevel,
		WeeklyChangeLb: input.WeeklyChangeLb,
		BMR:            &bmr,
		TDEE:           &tdee,
		BMI:            &bmi,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	existing, err := s.goalsRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		goals.CreatedAt = existing.CreatedAt
		if err := s.goalsRepo.Update(ctx, goals); err != nil {
			return nil, err
		}
	} else {
		if err := s.goalsRepo.Create(ctx, goals); err != nil {
			return nil, err
		}
	}

	s.logger.Info("栄養目標を算出しました",
		slog.String("user_id", userID),
		slog.String("goal_type", string(input.GoalType)),
		slog.Int("calories", calories),
		slog.Int("tdee", tdee),
		slog.String("bmi_category", bmiCat),
	)

	return goals, nil
}

// GetGoals は指定ユーザーの目標を取得する。見つからない場合はnot_foundエラーを返す。
func (s *Service) GetGoals(ctx context.Context, userID string) (*model.NutritionalGoals, error) {
	goals, err := s.goalsRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		return nil, model.NewGoalsNotFoundError()
	}
	return goals, nil
}
