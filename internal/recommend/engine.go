// Package recommend は摂取実績と目標の差分に基づく推奨事項の生成を提供する。
package recommend

import (
	"fmt"
	"math"

	"github.com/joescodelmao/nutrilog/internal/model"
)

// RecommendationType は推奨事項の重要度区分を表す。
type RecommendationType string

const (
	// TypeSuccess は目標を良好に達成している状態。
	TypeSuccess RecommendationType = "success"
	// TypeInfo は参考情報レベルの提案。
	TypeInfo RecommendationType = "info"
	// TypeWarning は注意が必要な状態。
	TypeWarning RecommendationType = "warning"
)

// Recommendation は1件の推奨事項を表す。
type Recommendation struct {
	Type    RecommendationType `json:"type"`
	Message string             `json:"message"`
}

// Deficits は目標と摂取実績の差分（目標 − 実績）を表す。
// 正の値は不足、負の値は超過を意味する。
type Deficits struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
}

// 判定閾値。摂取実績と目標の差分および絶対量に対して適用される。
const (
	calorieOverThreshold   = 200.0  // 超過警告（kcal）
	calorieUnderThreshold  = 200.0  // 残量案内（kcal）
	proteinShortThreshold  = 20.0   // タンパク質不足（g)
	proteinOverThreshold   = 10.0   // タンパク質目標達成（g）
	carbShortThreshold     = 30.0   // 炭水化物不足（g)
	fatShortThreshold      = 15.0   // 脂質不足（g)
	fiberDailyTarget       = 25.0   // 食物繊維の推奨摂取量（g/日）
	sodiumDailyLimit       = 2300.0 // ナトリウムの推奨上限（mg/日）
	sugarDailyLimit        = 50.0   // 糖類の推奨上限（g/日）
)

// ComputeDeficits は目標と摂取実績の差分を算出する（小数第1位に丸め）。
// 欠損フィールドはゼロとして扱い、エラーは返さない。
func ComputeDeficits(totals model.Nutrients, goals *model.NutritionalGoals) Deficits {
	return Deficits{
		Calories:      round1(float64(goals.Calories) - totals.Calories),
		Protein:       round1(goals.Protein.Grams - totals.Protein),
		Carbohydrates: round1(goals.Carbohydrates.Grams - totals.Carbohydrates),
		Fat:           round1(goals.Fat.Grams - totals.Fat),
		Fiber:         round1(goals.FiberGrams - totals.Fiber),
	}
}

// Evaluate は摂取実績と目標から推奨事項の一覧を生成する。
// 出力の並びは決定的（カロリー→タンパク質→炭水化物→脂質→食物繊維→
// ナトリウム→糖類）であり、同一入力に対して常に同一の結果を返す。
// 不正な栄養素データがあっても失敗せず、ゼロとして評価する。
func Evaluate(totals model.Nutrients, goals *model.NutritionalGoals) []Recommendation {
	deficits := ComputeDeficits(totals, goals)
	recs := []Recommendation{}

	switch {
	case deficits.Calories < -calorieOverThreshold:
		recs = append(recs, Recommendation{
			Type:    TypeWarning,
			Message: fmt.Sprintf("目標カロリーを%.0fkcal超過しています。明日の摂取量を調整しましょう", -deficits.Calories),
		})
	case deficits.Calories > calorieUnderThreshold:
		recs = append(recs, Recommendation{
			Type:    TypeInfo,
			Message: fmt.Sprintf("目標まであと%.0fkcal摂取できます", deficits.Calories),
		})
	}

	switch {
	case deficits.Protein > proteinShortThreshold:
		recs = append(recs, Recommendation{
			Type:    TypeInfo,
			Message: fmt.Sprintf("タンパク質があと%.1fg不足しています。肉・魚・豆類を追加しましょう", deficits.Protein),
		})
	case deficits.Protein < -proteinOverThreshold:
		recs = append(recs, Recommendation{
			Type:    TypeSuccess,
			Message: "タンパク質の目標を達成しています",
		})
	}

	if deficits.Carbohydrates > carbShortThreshold {
		recs = append(recs, Recommendation{
			Type:    TypeInfo,
			Message: fmt.Sprintf("炭水化物があと%.1fg不足しています", deficits.Carbohydrates),
		})
	}

	if deficits.Fat > fatShortThreshold {
		recs = append(recs, Recommendation{
			Type:    TypeInfo,
			Message: fmt.Sprintf("脂質があと%.1fg不足しています", deficits.Fat),
		})
	}

	if totals.Fiber < fiberDailyTarget {
		recs = append(recs, Recommendation{
			Type:    TypeInfo,
			Message: "食物繊維が不足しています。野菜・果物・全粒穀物を増やしましょう",
		})
	}

	if totals.Sodium > sodiumDailyLimit {
		recs = append(recs, Recommendation{
			Type:    TypeWarning,
			Message: fmt.Sprintf("ナトリウム摂取量（%.0fmg）が推奨上限の%.0fmgを超えています", totals.Sodium, sodiumDailyLimit),
		})
	}

	if totals.Sugar > sugarDailyLimit {
		recs = append(recs, Recommendation{
			Type:    TypeWarning,
			Message: fmt.Sprintf("糖類摂取量（%.1fg）が推奨上限の%.0fgを超えています", totals.Sugar, sugarDailyLimit),
		})
	}

	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
