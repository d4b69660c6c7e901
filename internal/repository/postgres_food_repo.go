package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/joescodelmao/nutrilog/internal/model"
)

// foodColumns はfoodsテーブルのSELECT列リスト。
const foodColumns = `id, name, brand, category,
        calories, protein, carbohydrates, fat, fiber, sugar, sodium,
        saturated_fat, trans_fat, cholesterol, potassium, calcium, iron,
        vitamin_a, vitamin_c,
        serving_size, serving_unit, image_url, source, source_id,
        created_at, updated_at`

// PostgresFoodRepo はPostgreSQLを使用した食品カタログリポジトリ。
type PostgresFoodRepo struct {
	db *sql.DB
}

// NewPostgresFoodRepo はPostgresFoodRepoを生成する。
func NewPostgresFoodRepo(db *sql.DB) *PostgresFoodRepo {
	return &PostgresFoodRepo{db: db}
}

// scanFood は1行を食品モデルへ読み取る。
func scanFood(scan func(dest ...any) error) (*model.FoodItem, error) {
	food := &model.FoodItem{}
	var brand, category, imageURL, sourceID sql.NullString

	err := scan(
		&food.ID, &food.Name, &brand, &category,
		&food.Nutrients.Calories, &food.Nutrients.Protein,
		&food.Nutrients.Carbohydrates, &food.Nutrients.Fat,
		&food.Nutrients.Fiber, &food.Nutrients.Sugar, &food.Nutrients.Sodium,
		&food.Nutrients.SaturatedFat, &food.Nutrients.TransFat,
		&food.Nutrients.Cholesterol, &food.Nutrients.Potassium,
		&food.Nutrients.Calcium, &food.Nutrients.Iron,
		&food.Nutrients.VitaminA, &food.Nutrients.VitaminC,
		&food.ServingSize, &food.ServingUnit, &imageURL, &food.Source, &sourceID,
		&food.CreatedAt, &food.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	food.Brand = nullStringValue(brand)
	food.Category = nullStringValue(category)
	food.ImageURL = nullStringValue(imageURL)
	food.SourceID = nullStringValue(sourceID)
	return food, nil
}

// FindByID は指定IDの食品を取得する。見つからない場合はnilを返す。
func (r *PostgresFoodRepo) FindByID(ctx context.Context, id string) (*model.FoodItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE id = $1`, id)

	food, err := scanFood(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("食品の取得に失敗しました: %w", err)
	}
	return food, nil
}

// FindBySourceID はプロバイダとプロバイダ固有IDで食品を検索する。
// 見つからない場合はnilを返す。
func (r *PostgresFoodRepo) FindBySourceID(ctx context.Context, source model.FoodSource, sourceID string) (*model.FoodItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE source = $1 AND source_id = $2`,
		string(source), sourceID)

	food, err := scanFood(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ソースIDによる食品の検索に失敗しました: %w", err)
	}
	return food, nil
}

// Search は食品名・ブランド・カテゴリの部分一致で検索する。
func (r *PostgresFoodRepo) Search(ctx context.Context, query string, limit int) ([]*model.FoodItem, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM foods
		 WHERE lower(name) LIKE $1
		    OR lower(coalesce(brand, '')) LIKE $1
		    OR lower(coalesce(category, '')) LIKE $1
		 ORDER BY lower(name)
		 LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("食品の検索に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectFoods(rows)
}

// SearchByCategories は指定カテゴリのいずれかに属する食品を返す。
func (r *PostgresFoodRepo) SearchByCategories(ctx context.Context, categories []string, limit int) ([]*model.FoodItem, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(categories))
	for i, c := range categories {
		lowered[i] = strings.ToLower(c)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM foods
		 WHERE lower(coalesce(category, '')) = ANY($1)
		 ORDER BY lower(name)
		 LIMIT $2`,
		pq.Array(lowered), limit)
	if err != nil {
		return nil, fmt.Errorf("カテゴリによる食品の検索に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectFoods(rows)
}

func collectFoods(rows *sql.Rows) ([]*model.FoodItem, error) {
	var foods []*model.FoodItem
	for rows.Next() {
		food, err := scanFood(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("食品行の読み取りに失敗しました: %w", err)
		}
		foods = append(foods, food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("食品一覧の走査に失敗しました: %w", err)
	}
	return foods, nil
}

// Create は食品を作成する。
func (r *PostgresFoodRepo) Create(ctx context.Context, food *model.FoodItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO foods (id, name, brand, category,
		     calories, protein, carbohydrates, fat, fiber, sugar, sodium,
		     saturated_fat, trans_fat, cholesterol, potassium, calcium, iron,
		     vitamin_a, vitamin_c,
		     serving_size, serving_unit, image_url, source, source_id,
		     created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		         $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`,
		food.ID, food.Name, nullString(food.Brand), nullString(food.Category),
		food.Nutrients.Calories, food.Nutrients.Protein,
		food.Nutrients.Carbohydrates, food.Nutrients.Fat,
		food.Nutrients.Fiber, food.Nutrients.Sugar, food.Nutrients.Sodium,
		food.Nutrients.SaturatedFat, food.Nutrients.TransFat,
		food.Nutrients.Cholesterol, food.Nutrients.Potassium,
		food.Nutrients.Calcium, food.Nutrients.Iron,
		food.Nutrients.VitaminA, food.Nutrients.VitaminC,
		food.ServingSize, food.ServingUnit, nullString(food.ImageURL),
		string(food.Source), nullString(food.SourceID),
		food.CreatedAt, food.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("食品の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は食品情報を全置換で更新する。
func (r *PostgresFoodRepo) Update(ctx context.Context, food *model.FoodItem) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE foods SET
		     name = $2, brand = $3, category = $4,
		     calories = $5, protein = $6, carbohydrates = $7, fat = $8,
		     fiber = $9, sugar = $10, sodium = $11,
		     saturated_fat = $12, trans_fat = $13, cholesterol = $14,
		     potassium = $15, calcium = $16, iron = $17,
		     vitamin_a = $18, vitamin_c = $19,
		     serving_size = $20, serving_unit = $21, image_url = $22,
		     updated_at = $23
		 WHERE id = $1`,
		food.ID, food.Name, nullString(food.Brand), nullString(food.Category),
		food.Nutrients.Calories, food.Nutrients.Protein,
		food.Nutrients.Carbohydrates, food.Nutrients.Fat,
		food.Nutrients.Fiber, food.Nutrients.Sugar, food.Nutrients.Sodium,
		food.Nutrients.SaturatedFat, food.Nutrients.TransFat,
		food.Nutrients.Cholesterol, food.Nutrients.Potassium,
		food.Nutrients.Calcium, food.Nutrients.Iron,
		food.Nutrients.VitaminA, food.Nutrients.VitaminC,
		food.ServingSize, food.ServingUnit, nullString(food.ImageURL),
		food.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("食品の更新に失敗しました: %w", err)
	}
	return nil
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

var _ FoodRepository = (*PostgresFoodRepo)(nil)
