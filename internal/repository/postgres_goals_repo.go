package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/joescodelmao/nutrilog/internal/model"
)

// uniqueViolationCode はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolationCode = "23505"

// PostgresGoalsRepo はPostgreSQLを使用した栄養目標リポジトリ。
type PostgresGoalsRepo struct {
	db *sql.DB
}

// NewPostgresGoalsRepo はPostgresGoalsRepoを生成する。
func NewPostgresGoalsRepo(db *sql.DB) *PostgresGoalsRepo {
	return &PostgresGoalsRepo{db: db}
}

// FindByUserID は指定ユーザーの目標を取得する。見つからない場合はnilを返す。
func (r *PostgresGoalsRepo) FindByUserID(ctx context.Context, userID string) (*model.NutritionalGoals, error) {
	goals := &model.NutritionalGoals{}
	var proteinGrams, carbGrams, fatGrams float64
	var activityLevel sql.NullString
	var bmr, bmi sql.NullFloat64
	var tdee sql.NullInt64

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, calories, protein_grams, carb_grams, fat_grams,
		        fiber_grams, goal_type, activity_level, weekly_change_lb,
		        bmr, tdee, bmi, created_at, updated_at
		 FROM nutritional_goals WHERE user_id = $1`,
		userID,
	).Scan(
		&goals.UserID, &goals.Calories, &proteinGrams, &carbGrams, &fatGrams,
		&goals.FiberGrams, &goals.GoalType, &activityLevel, &goals.WeeklyChangeLb,
		&bmr, &tdee, &bmi, &goals.CreatedAt, &goals.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("栄養目標の取得に失敗しました: %w", err)
	}

	goals.Protein = model.NewProteinTarget(proteinGrams)
	goals.Carbohydrates = model.NewCarbTarget(carbGrams)
	goals.Fat = model.NewFatTarget(fatGrams)
	goals.ActivityLevel = model.ActivityLevel(nullStringValue(activityLevel))
	if bmr.Valid {
		goals.BMR = &bmr.Float64
	}
	if tdee.Valid {
		v := int(tdee.Int64)
		goals.TDEE = &v
	}
	if bmi.Valid {
		goals.BMI = &bmi.Float64
	}

	return goals, nil
}

// Create は目標を作成する。同一ユーザーの2件目は一意制約違反となり、
// already-existsエラーを返す。
func (r *PostgresGoalsRepo) Create(ctx context.Context, goals *model.NutritionalGoals) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO nutritional_goals (user_id, calories, protein_grams, carb_grams,
		     fat_grams, fiber_grams, goal_type, activity_level, weekly_change_lb,
		     bmr, tdee, bmi, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		goals.UserID, goals.Calories,
		goals.Protein.Grams, goals.Carbohydrates.Grams, goals.Fat.Grams,
		goals.FiberGrams, string(goals.GoalType),
		nullString(string(goals.ActivityLevel)), goals.WeeklyChangeLb,
		nullFloat(goals.BMR), nullInt(goals.TDEE), nullFloat(goals.BMI),
		goals.CreatedAt, goals.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
			return model.NewGoalsAlreadyExistError()
		}
		return fmt.Errorf("栄養目標の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は既存の目標を全置換で更新する。
func (r *PostgresGoalsRepo) Update(ctx context.Context, goals *model.NutritionalGoals) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE nutritional_goals SET
		     calories = $2, protein_grams = $3, carb_grams = $4, fat_grams = $5,
		     fiber_grams = $6, goal_type = $7, activity_level = $8,
		     weekly_change_lb = $9, bmr = $10, tdee = $11, bmi = $12,
		     updated_at = $13
		 WHERE user_id = $1`,
		goals.UserID, goals.Calories,
		goals.Protein.Grams, goals.Carbohydrates.Grams, goals.Fat.Grams,
		goals.FiberGrams, string(goals.GoalType),
		nullString(string(goals.ActivityLevel)), goals.WeeklyChangeLb,
		nullFloat(goals.BMR), nullInt(goals.TDEE), nullFloat(goals.BMI),
		goals.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("栄養目標の更新に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewGoalsNotFoundError()
	}
	return nil
}

// nullFloat はnilを許容するfloat64ポインタをsql.NullFloat64に変換する。
func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// nullInt はnilを許容するintポインタをsql.NullInt64に変換する。
func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

var _ GoalsRepository = (*PostgresGoalsRepo)(nil)
