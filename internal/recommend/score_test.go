package recommend

import (
	"testing"

	"github.com/joescodelmao/nutrilog/internal/model"
)

// TestScore_PerfectIntake は目標どおりの摂取でスコア100・等級Aになることを検証する。
func TestScore_PerfectIntake(t *testing.T) {
	totals := model.Nutrients{Calories: 2000, Protein: 125, Carbohydrates: 225, Fat: 66.7}

	score := Score(totals, testGoals())

	if score.Overall != 100 {
		t.Errorf("Overall = %v, want 100", score.Overall)
	}
	if score.Grade != "A" {
		t.Errorf("Grade = %q, want A", score.Grade)
	}
}

// TestScore_OverconsumptionCapped は超過摂取の達成率が100%で頭打ちに
// なることを検証する。
func TestScore_OverconsumptionCapped(t *testing.T) {
	totals := model.Nutrients{Calories: 4000, Protein: 300, Carbohydrates: 500, Fat: 200}

	score := Score(totals, testGoals())

	for name, pct := range score.Breakdown {
		if pct > 100 {
			t.Errorf("breakdown[%s] = %v, should be capped at 100", name, pct)
		}
	}
	if score.Overall != 100 {
		t.Errorf("Overall = %v, want 100", score.Overall)
	}
}

// TestScore_HalfIntake は半量摂取でスコア50・等級Fになることを検証する。
func TestScore_HalfIntake(t *testing.T) {
	totals := model.Nutrients{Calories: 1000, Protein: 62.5, Carbohydrates: 112.5, Fat: 33.35}

	score := Score(totals, testGoals())

	if score.Overall != 50 {
		t.Errorf("Overall = %v, want 50", score.Overall)
	}
	if score.Grade != "F" {
		t.Errorf("Grade = %q, want F", score.Grade)
	}
}

// TestScore_GradeBoundaries は等級の境界値を検証する。
func TestScore_GradeBoundaries(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{90, "A"},
		{89.9, "B"},
		{80, "B"},
		{70, "C"},
		{60, "D"},
		{59.9, "F"},
	}

	for _, tt := range tests {
		grade, _ := gradeFor(tt.overall)
		if grade != tt.want {
			t.Errorf("gradeFor(%v) = %q, want %q", tt.overall, grade, tt.want)
		}
	}
}

// TestScore_ZeroGoalsExcluded は目標0の栄養素が評価から除外されることを検証する。
func TestScore_ZeroGoalsExcluded(t *testing.T) {
	goals := &model.NutritionalGoals{UserID: "user-1", Calories: 2000}
	totals := model.Nutrients{Calories: 2000}

	score := Score(totals, goals)

	if len(score.Breakdown) != 1 {
		t.Errorf("len(Breakdown) = %d, want 1 (only calories has a goal)", len(score.Breakdown))
	}
	if score.Overall != 100 {
		t.Errorf("Overall = %v, want 100", score.Overall)
	}
}
