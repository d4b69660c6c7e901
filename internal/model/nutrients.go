// Package model はドメインモデルを定義する。
package model

import "math"

// Nutrients は正規化済み栄養素ベクトルを表す。
// すべてのデータソース（USDA・手動登録）はこのスキーマに正規化される。
// 各フィールドは非負の数値で、欠損値は0として扱う。
type Nutrients struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
	Sodium        float64 `json:"sodium"`
	SaturatedFat  float64 `json:"saturatedFat"`
	TransFat      float64 `json:"transFat"`
	Cholesterol   float64 `json:"cholesterol"`
	Potassium     float64 `json:"potassium"`
	Calcium       float64 `json:"calcium"`
	Iron          float64 `json:"iron"`
	VitaminA      float64 `json:"vitaminA"`
	VitaminC      float64 `json:"vitaminC"`
}

// Add は各栄養素にother×multiplierを加算する。
// 集計処理（食事別・日別合計）で使用される。
func (n *Nutrients) Add(other Nutrients, multiplier float64) {
	n.Calories += other.Calories * multiplier
	n.Protein += other.Protein * multiplier
	n.Carbohydrates += other.Carbohydrates * multiplier
	n.Fat += other.Fat * multiplier
	n.Fiber += other.Fiber * multiplier
	n.Sugar += other.Sugar * multiplier
	n.Sodium += other.Sodium * multiplier
	n.SaturatedFat += other.SaturatedFat * multiplier
	n.TransFat += other.TransFat * multiplier
	n.Cholesterol += other.Cholesterol * multiplier
	n.Potassium += other.Potassium * multiplier
	n.Calcium += other.Calcium * multiplier
	n.Iron += other.Iron * multiplier
	n.VitaminA += other.VitaminA * multiplier
	n.VitaminC += other.VitaminC * multiplier
}

// Rounded は各栄養素を小数第1位に丸めた新しいNutrientsを返す。
// 合計値は集計の最後に1回だけ丸める（途中で丸めると誤差が蓄積する）。
func (n Nutrients) Rounded() Nutrients {
	return Nutrients{
		Calories:      round1(n.Calories),
		Protein:       round1(n.Protein),
		Carbohydrates: round1(n.Carbohydrates),
		Fat:           round1(n.Fat),
		Fiber:         round1(n.Fiber),
		Sugar:         round1(n.Sugar),
		Sodium:        round1(n.Sodium),
		SaturatedFat:  round1(n.SaturatedFat),
		TransFat:      round1(n.TransFat),
		Cholesterol:   round1(n.Cholesterol),
		Potassium:     round1(n.Potassium),
		Calcium:       round1(n.Calcium),
		Iron:          round1(n.Iron),
		VitaminA:      round1(n.VitaminA),
		VitaminC:      round1(n.VitaminC),
	}
}

// round1 は小数第1位に丸める。
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
