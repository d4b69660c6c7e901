package recommend

import (
	"strings"
	"testing"

	"github.com/joescodelmao/nutrilog/internal/model"
)

func testGoals() *model.NutritionalGoals {
	return &model.NutritionalGoals{
		UserID:        "user-1",
		Calories:      2000,
		Protein:       model.NewProteinTarget(125),
		Carbohydrates: model.NewCarbTarget(225),
		Fat:           model.NewFatTarget(66.7),
		FiberGrams:    25,
	}
}

// hasType は指定区分の推奨事項が含まれるかを返す。
func hasType(recs []Recommendation, typ RecommendationType, fragment string) bool {
	for _, r := range recs {
		if r.Type == typ && strings.Contains(r.Message, fragment) {
			return true
		}
	}
	return false
}

// TestComputeDeficits_GoalMinusConsumed は差分が目標−実績で算出されることを検証する。
func TestComputeDeficits_GoalMinusConsumed(t *testing.T) {
	totals := model.Nutrients{Calories: 1500, Protein: 100.04, Fiber: 10}

	d := ComputeDeficits(totals, testGoals())

	if d.Calories != 500 {
		t.Errorf("Calories deficit = %v, want 500", d.Calories)
	}
	// 125 - 100.04 = 24.96 → 25.0
	if d.Protein != 25 {
		t.Errorf("Protein deficit = %v, want 25", d.Protein)
	}
	if d.Fiber != 15 {
		t.Errorf("Fiber deficit = %v, want 15", d.Fiber)
	}
}

// TestEvaluate_CalorieThresholds はカロリー超過・残量の閾値（±200kcal）を検証する。
func TestEvaluate_CalorieThresholds(t *testing.T) {
	tests := []struct {
		name     string
		calories float64
		wantType RecommendationType
		fragment string
	}{
		{"201kcal超過で警告", 2201, TypeWarning, "超過"},
		{"201kcal不足で案内", 1799, TypeInfo, "摂取できます"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := Evaluate(model.Nutrients{Calories: tt.calories}, testGoals())
			if !hasType(recs, tt.wantType, tt.fragment) {
				t.Errorf("expected %s recommendation containing %q, got %+v",
					tt.wantType, tt.fragment, recs)
			}
		})
	}
}

// TestEvaluate_CalorieWithinBand は±200kcal以内でカロリー推奨が出ないことを検証する。
func TestEvaluate_CalorieWithinBand(t *testing.T) {
	recs := Evaluate(model.Nutrients{Calories: 1900, Fiber: 30}, testGoals())

	for _, r := range recs {
		if strings.Contains(r.Message, "kcal") {
			t.Errorf("unexpected calorie recommendation: %+v", r)
		}
	}
}

// TestEvaluate_ProteinThresholds はタンパク質の不足（>20g）と達成（<-10g）を検証する。
func TestEvaluate_ProteinThresholds(t *testing.T) {
	// 不足: 125 - 100 = 25g > 20g
	recs := Evaluate(model.Nutrients{Calories: 2000, Protein: 100, Fiber: 30}, testGoals())
	if !hasType(recs, TypeInfo, "タンパク質") {
		t.Errorf("expected protein shortfall info, got %+v", recs)
	}

	// 達成: 125 - 140 = -15g < -10g
	recs = Evaluate(model.Nutrients{Calories: 2000, Protein: 140, Fiber: 30}, testGoals())
	if !hasType(recs, TypeSuccess, "タンパク質") {
		t.Errorf("expected protein success, got %+v", recs)
	}
}

// TestEvaluate_SodiumAndSugarLimits はナトリウム（2300mg）と糖類（50g）の
// 上限超過で警告が出ることを検証する。
func TestEvaluate_SodiumAndSugarLimits(t *testing.T) {
	totals := model.Nutrients{
		Calories: 2000,
		Fiber:    30,
		Sodium:   2500,
		Sugar:    60,
	}

	recs := Evaluate(totals, testGoals())

	if !hasType(recs, TypeWarning, "ナトリウム") {
		t.Errorf("expected sodium warning, got %+v", recs)
	}
	if !hasType(recs, TypeWarning, "糖類") {
		t.Errorf("expected sugar warning, got %+v", recs)
	}

	// 上限ちょうどは警告なし
	recs = Evaluate(model.Nutrients{Calories: 2000, Fiber: 30, Sodium: 2300, Sugar: 50}, testGoals())
	if hasType(recs, TypeWarning, "ナトリウム") || hasType(recs, TypeWarning, "糖類") {
		t.Errorf("limits themselves should not trigger warnings: %+v", recs)
	}
}

// TestEvaluate_FiberTarget は食物繊維25g未満で案内が出ることを検証する。
func TestEvaluate_FiberTarget(t *testing.T) {
	recs := Evaluate(model.Nutrients{Calories: 2000, Fiber: 10}, testGoals())
	if !hasType(recs, TypeInfo, "食物繊維") {
		t.Errorf("expected fiber info, got %+v", recs)
	}

	recs = Evaluate(model.Nutrients{Calories: 2000, Fiber: 25}, testGoals())
	if hasType(recs, TypeInfo, "食物繊維") {
		t.Errorf("25g should not trigger the fiber recommendation: %+v", recs)
	}
}

// TestEvaluate_Deterministic は同一入力に対して常に同一の並びで
// 推奨事項が生成されることを検証する。
func TestEvaluate_Deterministic(t *testing.T) {
	totals := model.Nutrients{Calories: 2300, Protein: 90, Sodium: 2500, Sugar: 70}
	goals := testGoals()

	first := Evaluate(totals, goals)
	second := Evaluate(totals, goals)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("recommendation %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// TestEvaluate_ZeroIntake は摂取記録ゼロでも失敗せず評価されることを検証する。
func TestEvaluate_ZeroIntake(t *testing.T) {
	recs := Evaluate(model.Nutrients{}, testGoals())
	if len(recs) == 0 {
		t.Fatal("zero intake should produce recommendations")
	}
	if !hasType(recs, TypeInfo, "摂取できます") {
		t.Errorf("expected remaining-calories info, got %+v", recs)
	}
}
