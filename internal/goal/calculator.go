// Package goal は栄養目標の算出と管理機能を提供する。
// 基礎代謝量（BMR）・総消費カロリー（TDEE）・BMI・目標カロリー・
// マクロ栄養素配分の純粋な計算関数と、算出結果を永続化するサービスを含む。
package goal

import (
	"math"

	"github.com/joescodelmao/nutrilog/internal/model"
)

// caloriesPerPound は体重1ポンドの増減に相当するカロリー量。
const caloriesPerPound = 3500.0

// activityMultipliers は身体活動レベルごとのTDEE係数。
var activityMultipliers = map[model.ActivityLevel]float64{
	model.ActivityLevelSedentary:        1.2,
	model.ActivityLevelLightlyActive:    1.375,
	model.ActivityLevelModeratelyActive: 1.55,
	model.ActivityLevelVeryActive:       1.725,
	model.ActivityLevelExtremelyActive:  1.9,
}

// BodyMetrics はユーザーの身体情報。すべての計算の入力となる。
type BodyMetrics struct {
	WeightKg float64
	HeightCm float64
	Age      int
	Sex      model.Sex
}

// Validate は身体情報の妥当性を確認する。
func (m BodyMetrics) Validate() error {
	if m.WeightKg <= 0 {
		return model.NewValidationError("体重は正の数で指定してください")
	}
	if m.HeightCm <= 0 {
		return model.NewValidationError("身長は正の数で指定してください")
	}
	if m.Age <= 0 {
		return model.NewValidationError("年齢は正の数で指定してください")
	}
	if m.Sex != model.SexMale && m.Sex != model.SexFemale {
		return model.NewValidationError("性別はmaleまたはfemaleで指定してください")
	}
	return nil
}

// CalculateBMR はMifflin-St Jeor式で基礎代謝量（kcal/日）を算出する。
// 男性: 10w + 6.25h - 5a + 5、女性: 10w + 6.25h - 5a - 161。
func CalculateBMR(m BodyMetrics) float64 {
	base := 10*m.WeightKg + 6.25*m.HeightCm - 5*float64(m.Age)
	if m.Sex == model.SexMale {
		return base + 5
	}
	return base - 161
}

// CalculateTDEE は基礎代謝量と活動レベルから1日の総消費カロリーを算出する。
// 未定義の活動レベルはバリデーションエラーとなる。
func CalculateTDEE(bmr float64, level model.ActivityLevel) (int, error) {
	multiplier, ok := activityMultipliers[level]
	if !ok {
		return 0, model.NewValidationError("活動レベルの指定が不正です")
	}
	return int(math.Round(bmr * multiplier)), nil
}

// CalculateBMI は体格指数を算出し、小数第1位に丸めて分類とともに返す。
func CalculateBMI(weightKg, heightCm float64) (float64, string) {
	heightM := heightCm / 100
	bmi := math.Round(weightKg/(heightM*heightM)*10) / 10
	return bmi, bmiCategory(bmi)
}

// bmiCategory はBMI値の分類を返す（閾値18.5 / 25 / 30）。
func bmiCategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// CalculateTargetCalories は目標種別と週あたりの体重変化量から
// 1日の目標摂取カロリーを導出する。
// 体重1ポンドあたり3500kcalを7日で割った日次調整量をTDEEに加減する。
func CalculateTargetCalories(tdee int, goalType model.GoalType, weeklyChangeLb float64) (int, error) {
	if !model.ValidGoalType(goalType) {
		return 0, model.NewValidationError("目標種別の指定が不正です")
	}
	if weeklyChangeLb < 0 {
		return 0, model.NewValidationError("週あたりの体重変化量は0以上で指定してください")
	}

	daily := weeklyChangeLb * caloriesPerPound / 7
	switch goalType {
	case model.GoalTypeWeightLoss:
		return int(math.Round(float64(tdee) - daily)), nil
	case model.GoalTypeWeightGain, model.GoalTypeMuscleGain:
		return int(math.Round(float64(tdee) + daily)), nil
	default: // maintenance
		return tdee, nil
	}
}

// MacroSplit はマクロ栄養素のカロリー配分比率（パーセント）。
type MacroSplit struct {
	ProteinPct float64
	CarbPct    float64
	FatPct     float64
}

// DefaultMacroSplit はデフォルト配分（タンパク質25% / 炭水化物45% / 脂質30%）。
func DefaultMacroSplit() MacroSplit {
	return MacroSplit{ProteinPct: 25, CarbPct: 45, FatPct: 30}
}

// CalculateMacros は目標カロリーを比率で配分し、グラム換算の目標量を返す。
// 比率の合計が100から0.1を超えて外れている場合は計算エラーとなる。
// グラム値はタンパク質・炭水化物が4 kcal/g、脂質が9 kcal/gで換算され、
// 小数第1位に丸められる。
func CalculateMacros(calories int, split MacroSplit) (protein, carbs, fat model.MacroTarget, err error) {
	total := split.ProteinPct + split.CarbPct + split.FatPct
	if math.Abs(total-100) > 0.1 {
		return model.MacroTarget{}, model.MacroTarget{}, model.MacroTarget{},
			model.NewMacroDistributionError(total)
	}

	c := float64(calories)
	protein = model.NewProteinTarget(round1(c * split.ProteinPct / 100 / 4))
	carbs = model.NewCarbTarget(round1(c * split.CarbPct / 100 / 4))
	fat = model.NewFatTarget(round1(c * split.FatPct / 100 / 9))
	return protein, carbs, fat, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
