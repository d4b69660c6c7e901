// Package aggregate は食事記録の集計機能を提供する。
// 日次・食事区分別の栄養素合計と、期間トレンドの算出を行う。
package aggregate

import "github.com/joescodelmao/nutrilog/internal/model"

// DayTotals は1日分の集計結果を表す。
// 食事区分別の小計と1日の総計を保持する。
type DayTotals struct {
	Meals map[model.MealSlot]model.Nutrients `json:"meals"`
	Total model.Nutrients                    `json:"total"`
}

// ComputeTotals は日次ログから食事区分別・日次の栄養素合計を算出する。
// 各エントリの寄与は 摂取量 / 基準提供量 を乗数として栄養素スナップショットに
// 掛けたもの。提供量が1未満の場合は除数1として扱い、ゼロ除算を避ける。
// 丸めは累積の最後に一度だけ行う（小数第1位）。
// 純粋関数であり、同一ログに対して常に同一の結果を返す。
func ComputeTotals(log *model.DailyLog) DayTotals {
	totals := DayTotals{
		Meals: make(map[model.MealSlot]model.Nutrients, len(model.MealSlots)),
	}

	var day model.Nutrients
	for _, slot := range model.MealSlots {
		var meal model.Nutrients
		for _, entry := range log.Meals[slot] {
			multiplier := entry.Quantity / servingDivisor(entry.ServingSize)
			meal.Add(entry.Nutrients, multiplier)
			day.Add(entry.Nutrients, multiplier)
		}
		totals.Meals[slot] = meal.Rounded()
	}
	totals.Total = day.Rounded()

	return totals
}

// servingDivisor は提供量を集計の除数に変換する。1未満は1に切り上げる。
func servingDivisor(servingSize float64) float64 {
	if servingSize < 1 {
		return 1
	}
	return servingSize
}
