// Package analysis は栄養分析のオーケストレーションを提供する。
// 食品検索・食事記録・目標との突き合わせ・トレンド集計を束ね、
// HTTPハンドラーが利用する上位インターフェースを構成する。
package analysis

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/joescodelmao/nutrilog/internal/aggregate"
	"github.com/joescodelmao/nutrilog/internal/metrics"
	"github.com/joescodelmao/nutrilog/internal/model"
	"github.com/joescodelmao/nutrilog/internal/recommend"
	"github.com/joescodelmao/nutrilog/internal/repository"
	"github.com/joescodelmao/nutrilog/internal/security"
	"github.com/joescodelmao/nutrilog/internal/usda"
)

// NutritionProvider は外部栄養データプロバイダのインターフェース。
type NutritionProvider interface {
	Search(ctx context.Context, query string) (*usda.SearchResult, error)
	GetFoodDetails(ctx context.Context, fdcID int64) (*model.NormalizedFood, error)
}

// Analysis は1日分の栄養分析結果を表す。
// 目標未設定のユーザーはHasGoalsがfalseとなり、実績の集計のみが返る。
type Analysis struct {
	HasGoals        bool                      `json:"hasGoals"`
	Goals           *model.NutritionalGoals   `json:"goals,omitempty"`
	Log             *model.DailyLog           `json:"log"`
	Totals          aggregate.DayTotals       `json:"totals"`
	Deficits        *recommend.Deficits       `json:"deficits,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations,omitempty"`
	Progress        map[string]float64        `json:"progress,omitempty"`
	Score           *recommend.NutritionScore `json:"score,omitempty"`
}

// FoodSummary は検索結果の1件を表す。
// ローカルカタログ由来の結果はIDを持ち、プロバイダ由来の結果はSourceIDを持つ。
type FoodSummary struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Brand       string           `json:"brand,omitempty"`
	Category    string           `json:"category,omitempty"`
	Nutrients   model.Nutrients  `json:"nutrients"`
	ServingSize float64          `json:"servingSize"`
	ServingUnit string           `json:"servingUnit"`
	Source      model.FoodSource `json:"source"`
	SourceID    string           `json:"sourceId,omitempty"`
}

// FoodSearchResult はタグ付きの食品検索結果を表す。
// Sourceはどの経路（プロバイダ／ローカル）で取得されたかを示す。
type FoodSearchResult struct {
	Source    model.SearchSource `json:"source"`
	Items     []FoodSummary      `json:"items"`
	TotalHits int                `json:"totalHits"`
}

// LogFoodRequest は食事記録の追加リクエスト。
type LogFoodRequest struct {
	FoodID   string
	Date     time.Time
	MealSlot model.MealSlot
	Quantity float64
}

// ManualFoodRequest は手動での食品登録リクエスト。
type ManualFoodRequest struct {
	Name        string
	Brand       string
	Category    string
	Nutrients   model.Nutrients
	ServingSize float64
	ServingUnit string
	ImageURL    string
}

// MealSuggestion は1件の食事候補を表す。
type MealSuggestion struct {
	Food     FoodSummary `json:"food"`
	Calories float64     `json:"calories"`
}

// MealSuggestionResult は食事区分に応じた候補一覧を表す。
type MealSuggestionResult struct {
	MealSlot       model.MealSlot   `json:"mealSlot"`
	TargetCalories float64          `json:"targetCalories"`
	Suggestions    []MealSuggestion `json:"suggestions"`
}

// slotCalorieShare は食事区分ごとの1日カロリー配分（パーセント）。
var slotCalorieShare = map[model.MealSlot]float64{
	model.MealSlotBreakfast: 25,
	model.MealSlotLunch:     35,
	model.MealSlotDinner:    30,
	model.MealSlotSnack:     10,
}

// slotCategories は食事区分ごとの候補検索カテゴリ。
var slotCategories = map[model.MealSlot][]string{
	model.MealSlotBreakfast: {"breakfast cereals", "dairy and egg products", "fruits and fruit juices", "baked products"},
	model.MealSlotLunch:     {"poultry products", "beef products", "finfish and shellfish products", "vegetables and vegetable products", "cereal grains and pasta"},
	model.MealSlotDinner:    {"poultry products", "beef products", "finfish and shellfish products", "vegetables and vegetable products", "cereal grains and pasta"},
	model.MealSlotSnack:     {"snacks", "nut and seed products", "fruits and fruit juices"},
}

// suggestionTolerance は候補カロリーの許容幅（目標±20%）。
const suggestionTolerance = 0.2

// maxSuggestions は返却する候補の上限数。
const maxSuggestions = 5

// Service は栄養分析のオーケストレーションを行う。
type Service struct {
	foodRepo   repository.FoodRepository
	logRepo    repository.FoodLogRepository
	goalsRepo  repository.GoalsRepository
	provider   NutritionProvider
	aggregator *aggregate.Aggregator
	urlGuard   security.URLGuardService
	sanitizer  security.TextSanitizerService
	collector  metrics.MetricsCollector
	logger     *slog.Logger
	now        func() time.Time
}

// NewService はService の新しいインスタンスを生成する。
func NewService(
	foodRepo repository.FoodRepository,
	logRepo repository.FoodLogRepository,
	goalsRepo repository.GoalsRepository,
	provider NutritionProvider,
	aggregator *aggregate.Aggregator,
	urlGuard security.URLGuardService,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	return &Service{
		foodRepo:   foodRepo,
		logRepo:    logRepo,
		goalsRepo:  goalsRepo,
		provider:   provider,
		aggregator: aggregator,
		urlGuard:   urlGuard,
		sanitizer:  sanitizer,
		collector:  collector,
		logger:     logger,
		now:        time.Now,
	}
}

// GetAnalysis は指定日の摂取実績と目標を突き合わせた分析結果を返す。
// 目標未設定の場合はエラーではなくHasGoals=falseの結果を返す。
func (s *Service) GetAnalysis(ctx context.Context, userID string, date time.Time) (*Analysis, error) {
	log, err := s.logRepo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	totals := aggregate.ComputeTotals(log)

	goals, err := s.goalsRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		return &Analysis{
			HasGoals: false,
			Log:      log,
			Totals:   totals,
		}, nil
	}

	deficits := recommend.ComputeDeficits(totals.Total, goals)
	recs := recommend.Evaluate(totals.Total, goals)
	score := recommend.Score(totals.Total, goals)

	return &Analysis{
		HasGoals:        true,
		Goals:           goals,
		Log:             log,
		Totals:          totals,
		Deficits:        &deficits,
		Recommendations: recs,
		Progress:        progressOf(totals.Total, goals),
		Score:           &score,
	}, nil
}

// progressOf は栄養素別の目標達成率（上限なし、小数第1位）を算出する。
func progressOf(totals model.Nutrients, goals *model.NutritionalGoals) map[string]float64 {
	progress := make(map[string]float64, 4)
	add := func(name string, consumed, goal float64) {
		if goal <= 0 {
			return
		}
		progress[name] = math.Round(consumed/goal*1000) / 10
	}
	add("calories", totals.Calories, float64(goals.Calories))
	add("protein", totals.Protein, goals.Protein.Grams)
	add("carbohydrates", totals.Carbohydrates, goals.Carbohydrates.Grams)
	add("fat", totals.Fat, goals.Fat.Grams)
	return progress
}

// SearchFoods は外部プロバイダで食品を検索する。
// プロバイダ障害（外部エラー）時はローカルカタログへフォールバックし、
// 結果にどちらの経路で取得したかをタグ付けして返す。
// バリデーションエラーとレート制限はフォールバックせずそのまま返す。
func (s *Service) SearchFoods(ctx context.Context, query string, limit int) (*FoodSearchResult, error) {
	result, err := s.provider.Search(ctx, query)
	if err != nil {
		if model.CategoryOf(err) != model.CategoryExternal {
			return nil, err
		}

		s.logger.Warn("プロバイダ検索に失敗したためローカルカタログへフォールバックします",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		foods, localErr := s.foodRepo.Search(ctx, query, limit)
		if localErr != nil {
			return nil, localErr
		}

		items := make([]FoodSummary, 0, len(foods))
		for _, f := range foods {
			items = append(items, summarizeFoodItem(f))
		}
		return &FoodSearchResult{
			Source:    model.SearchSourceLocal,
			Items:     items,
			TotalHits: len(items),
		}, nil
	}

	items := make([]FoodSummary, 0, len(result.Items))
	for _, f := range result.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		items = append(items, summarizeNormalized(f))
	}
	return &FoodSearchResult{
		Source:    model.SearchSourceProvider,
		Items:     items,
		TotalHits: result.TotalHits,
	}, nil
}

func summarizeFoodItem(f *model.FoodItem) FoodSummary {
	return FoodSummary{
		ID:          f.ID,
		Name:        f.Name,
		Brand:       f.Brand,
		Category:    f.Category,
		Nutrients:   f.Nutrients,
		ServingSize: f.ServingSize,
		ServingUnit: f.ServingUnit,
		Source:      f.Source,
		SourceID:    f.SourceID,
	}
}

func summarizeNormalized(f model.NormalizedFood) FoodSummary {
	return FoodSummary{
		Name:        f.Name,
		Brand:       f.Brand,
		Category:    f.Category,
		Nutrients:   f.Nutrients,
		ServingSize: f.ServingSize,
		ServingUnit: f.ServingUnit,
		Source:      f.Source,
		SourceID:    f.SourceID,
	}
}

// GetFood は指定IDの食品を取得する。見つからない場合はnot_foundエラーを返す。
func (s *Service) GetFood(ctx context.Context, id string) (*model.FoodItem, error) {
	food, err := s.foodRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if food == nil {
		return nil, model.NewFoodNotFoundError(id)
	}
	return food, nil
}

// CreateFood は手動で食品をカタログへ登録する。
// テキストはサニタイズされ、画像URLはSSRF防止の事前検証を通過する必要がある。
func (s *Service) CreateFood(ctx context.Context, req ManualFoodRequest) (*model.FoodItem, error) {
	name := s.sanitizer.Sanitize(req.Name)
	if name == "" {
		return nil, model.NewValidationError("食品名を指定してください")
	}
	if req.ServingSize <= 0 {
		return nil, model.NewValidationError("基準提供量は正の数で指定してください")
	}

	if req.ImageURL != "" {
		if err := s.urlGuard.ValidateURL(req.ImageURL); err != nil {
			return nil, model.NewUnsafeImageURLError(err.Error())
		}
	}

	servingUnit := req.ServingUnit
	if servingUnit == "" {
		servingUnit = "g"
	}

	now := s.now()
	food := &model.FoodItem{
		ID:          uuid.NewString(),
		Name:        name,
		Brand:       s.sanitizer.Sanitize(req.Brand),
		Category:    s.sanitizer.Sanitize(req.Category),
		Nutrients:   req.Nutrients,
		ServingSize: req.ServingSize,
		ServingUnit: servingUnit,
		ImageURL:    req.ImageURL,
		Source:      model.FoodSourceManual,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.foodRepo.Create(ctx, food); err != nil {
		return nil, err
	}

	s.logger.Info("食品を登録しました",
		slog.String("food_id", food.ID),
		slog.String("name", food.Name),
	)
	return food, nil
}

// ImportFood は外部プロバイダの食品をローカルカタログへ取り込む。
// (source, sourceId) で重複排除され、既存レコードがあればそれを返す。
func (s *Service) ImportFood(ctx context.Context, fdcID int64) (*model.FoodItem, error) {
	sourceID := strconv.FormatInt(fdcID, 10)

	existing, err := s.foodRepo.FindBySourceID(ctx, model.FoodSourceUSDA, sourceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	normalized, err := s.provider.GetFoodDetails(ctx, fdcID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	food := &model.FoodItem{
		ID:          uuid.NewString(),
		Name:        normalized.Name,
		Brand:       normalized.Brand,
		Category:    normalized.Category,
		Nutrients:   normalized.Nutrients,
		ServingSize: normalized.ServingSize,
		ServingUnit: normalized.ServingUnit,
		Source:      normalized.Source,
		SourceID:    normalized.SourceID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.foodRepo.Create(ctx, food); err != nil {
		return nil, err
	}

	s.logger.Info("プロバイダの食品を取り込みました",
		slog.String("food_id", food.ID),
		slog.String("source_id", sourceID),
	)
	return food, nil
}

// LogFood はカタログの食品を食事記録へ追加し、更新後の日次ログを返す。
// エントリは記録時点の栄養素スナップショットを保持し、追加は単一INSERTで行われる。
func (s *Service) LogFood(ctx context.Context, userID string, req LogFoodRequest) (*model.DailyLog, error) {
	if !model.ValidMealSlot(req.MealSlot) {
		return nil, model.NewValidationError("食事区分の指定が不正です")
	}
	if req.Quantity <= 0 {
		return nil, model.NewValidationError("摂取量は正の数で指定してください")
	}

	food, err := s.foodRepo.FindByID(ctx, req.FoodID)
	if err != nil {
		return nil, err
	}
	if food == nil {
		return nil, model.NewFoodNotFoundError(req.FoodID)
	}

	entry := &model.LogEntry{
		ID:          uuid.NewString(),
		FoodID:      food.ID,
		FoodName:    food.Name,
		Nutrients:   food.Nutrients,
		ServingSize: food.ServingSize,
		ServingUnit: food.ServingUnit,
		Quantity:    req.Quantity,
		MealSlot:    req.MealSlot,
		CreatedAt:   s.now(),
	}

	if err := s.logRepo.AppendEntry(ctx, userID, req.Date, entry); err != nil {
		return nil, err
	}
	s.collector.RecordEntriesLogged(1)

	return s.logRepo.FindByUserAndDate(ctx, userID, req.Date)
}

// GetDailyLog は指定日の日次ログを返す。記録のない日は空のログを返す。
func (s *Service) GetDailyLog(ctx context.Context, userID string, date time.Time) (*model.DailyLog, error) {
	return s.logRepo.FindByUserAndDate(ctx, userID, date)
}

// RemoveEntry は食事記録のエントリを削除し、更新後の日次ログを返す。
// 対象が存在しない場合はnot_foundエラーを返す。
func (s *Service) RemoveEntry(ctx context.Context, userID string, date time.Time, entryID string) (*model.DailyLog, error) {
	if err := s.logRepo.RemoveEntry(ctx, userID, date, entryID); err != nil {
		return nil, err
	}
	return s.logRepo.FindByUserAndDate(ctx, userID, date)
}

// GetTrends は終了日から遡ったwindowDays日分の期間トレンドを返す。
func (s *Service) GetTrends(ctx context.Context, userID string, endDate time.Time, windowDays int) (*aggregate.Trends, error) {
	return s.aggregator.ComputeTrends(ctx, userID, endDate, windowDays)
}

// MealSuggestions は食事区分に応じた候補食品を返す。
// 区分ごとのカロリー配分から目標量を導出し、カタログ内のカテゴリ候補を
// 目標±20%の範囲で絞り込み、目標に近い順で上位5件を返す。
// 目標未設定のユーザーはnot_foundエラーとなる。
func (s *Service) MealSuggestions(ctx context.Context, userID string, slot model.MealSlot) (*MealSuggestionResult, error) {
	if !model.ValidMealSlot(slot) {
		return nil, model.NewValidationError("食事区分の指定が不正です")
	}

	goals, err := s.goalsRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		return nil, model.NewGoalsNotFoundError()
	}

	target := float64(goals.Calories) * slotCalorieShare[slot] / 100

	candidates, err := s.foodRepo.SearchByCategories(ctx, slotCategories[slot], 50)
	if err != nil {
		return nil, err
	}

	low := target * (1 - suggestionTolerance)
	high := target * (1 + suggestionTolerance)

	var suggestions []MealSuggestion
	for _, food := range candidates {
		cal := food.Nutrients.Calories
		if cal < low || cal > high {
			continue
		}
		suggestions = append(suggestions, MealSuggestion{
			Food:     summarizeFoodItem(food),
			Calories: cal,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return math.Abs(suggestions[i].Calories-target) < math.Abs(suggestions[j].Calories-target)
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return &MealSuggestionResult{
		MealSlot:       slot,
		TargetCalories: target,
		Suggestions:    suggestions,
	}, nil
}
