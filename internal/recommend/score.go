package recommend

import (
	"math"

	"github.com/joescodelmao/nutrilog/internal/model"
)

// NutritionScore は1日の栄養バランスの総合評価を表す。
type NutritionScore struct {
	Overall   float64            `json:"overall"` // 0〜100
	Grade     string             `json:"grade"`   // A〜F
	Message   string             `json:"message"`
	Breakdown map[string]float64 `json:"breakdown"` // 栄養素別の達成率（100上限）
}

// Score は摂取実績の目標達成率から総合スコアを算出する。
// 各栄養素の達成率は100%を上限としてキャップされ、総合値はその平均。
// 目標が0の栄養素は評価から除外される。
func Score(totals model.Nutrients, goals *model.NutritionalGoals) NutritionScore {
	breakdown := make(map[string]float64, 4)
	var sum float64
	var count int

	add := func(name string, consumed, goal float64) {
		if goal <= 0 {
			return
		}
		pct := math.Min(consumed/goal*100, 100)
		pct = math.Round(pct*10) / 10
		breakdown[name] = pct
		sum += pct
		count++
	}

	add("calories", totals.Calories, float64(goals.Calories))
	add("protein", totals.Protein, goals.Protein.Grams)
	add("carbohydrates", totals.Carbohydrates, goals.Carbohydrates.Grams)
	add("fat", totals.Fat, goals.Fat.Grams)

	var overall float64
	if count > 0 {
		overall = math.Round(sum/float64(count)*10) / 10
	}

	grade, message := gradeFor(overall)
	return NutritionScore{
		Overall:   overall,
		Grade:     grade,
		Message:   message,
		Breakdown: breakdown,
	}
}

// gradeFor はスコアを等級と講評に変換する。
func gradeFor(overall float64) (string, string) {
	switch {
	case overall >= 90:
		return "A", "素晴らしい栄養バランスです"
	case overall >= 80:
		return "B", "良好な栄養バランスです"
	case overall >= 70:
		return "C", "おおむね目標に沿っています"
	case overall >= 60:
		return "D", "目標との差が大きくなっています"
	default:
		return "F", "目標に対して摂取が大きく不足しています"
	}
}
