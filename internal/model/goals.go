package model

import (
	"math"
	"time"
)

// GoalType は体重目標の種別を表す。
type GoalType string

const (
	// GoalTypeWeightLoss は減量目標。
	GoalTypeWeightLoss GoalType = "weight_loss"
	// GoalTypeWeightGain は増量目標。
	GoalTypeWeightGain GoalType = "weight_gain"
	// GoalTypeMaintenance は現状維持目標。
	GoalTypeMaintenance GoalType = "maintenance"
	// GoalTypeMuscleGain は筋肉増量目標。カロリー計算上は増量と同様に扱う。
	GoalTypeMuscleGain GoalType = "muscle_gain"
)

// ValidGoalType はgが定義済みの目標種別かどうかを返す。
func ValidGoalType(g GoalType) bool {
	switch g {
	case GoalTypeWeightLoss, GoalTypeWeightGain, GoalTypeMaintenance, GoalTypeMuscleGain:
		return true
	default:
		return false
	}
}

// ActivityLevel は身体活動レベルを表す。TDEE計算の係数を決定する。
type ActivityLevel string

const (
	// ActivityLevelSedentary はほぼ運動しない生活。
	ActivityLevelSedentary ActivityLevel = "sedentary"
	// ActivityLevelLightlyActive は週1〜3回の軽い運動。
	ActivityLevelLightlyActive ActivityLevel = "lightly_active"
	// ActivityLevelModeratelyActive は週3〜5回の中程度の運動。
	ActivityLevelModeratelyActive ActivityLevel = "moderately_active"
	// ActivityLevelVeryActive は週6〜7回の激しい運動。
	ActivityLevelVeryActive ActivityLevel = "very_active"
	// ActivityLevelExtremelyActive は肉体労働または1日2回のトレーニング。
	ActivityLevelExtremelyActive ActivityLevel = "extremely_active"
)

// Sex は代謝計算に使用する性別を表す。
type Sex string

const (
	// SexMale は男性。
	SexMale Sex = "male"
	// SexFemale は女性。
	SexFemale Sex = "female"
)

// MacroTarget は単一マクロ栄養素の目標量を表す。
// グラム値から換算係数（タンパク質・炭水化物: 4 kcal/g、脂質: 9 kcal/g）で
// カロリー等価値を導出して保持する。
type MacroTarget struct {
	Grams    float64 `json:"grams"`
	Calories int     `json:"calories"`
}

// NewProteinTarget はタンパク質の目標量を生成する（4 kcal/g）。
func NewProteinTarget(grams float64) MacroTarget {
	return MacroTarget{Grams: grams, Calories: int(math.Round(grams * 4))}
}

// NewCarbTarget は炭水化物の目標量を生成する（4 kcal/g）。
func NewCarbTarget(grams float64) MacroTarget {
	return MacroTarget{Grams: grams, Calories: int(math.Round(grams * 4))}
}

// NewFatTarget は脂質の目標量を生成する（9 kcal/g）。
func NewFatTarget(grams float64) MacroTarget {
	return MacroTarget{Grams: grams, Calories: int(math.Round(grams * 9))}
}

// NutritionalGoals はユーザーの栄養目標を表す。
// ユーザーごとに最大1件のみ存在する（作成時に一意性が強制される）。
// 2件目の作成は拒否され、以降の変更はすべて更新として扱う。
type NutritionalGoals struct {
	UserID         string
	Calories       int // 1日の目標摂取カロリー
	Protein        MacroTarget
	Carbohydrates  MacroTarget
	Fat            MacroTarget
	FiberGrams     float64 // 食物繊維の目標グラム数
	GoalType       GoalType
	ActivityLevel  ActivityLevel
	WeeklyChangeLb float64 // 週あたりの目標体重変化（ポンド）

	// 算出時にキャッシュされる代謝指標。未算出の場合はnil。
	BMR  *float64
	TDEE *int
	BMI  *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
