package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/joescodelmao/nutrilog/internal/model"
)

// dateLayout はlog_date列の文字列表現。
const dateLayout = "2006-01-02"

// logEntryColumns はlog_entriesテーブルのSELECT列リスト。
const logEntryColumns = `id, log_date, meal_slot, food_id, food_name,
        calories, protein, carbohydrates, fat, fiber, sugar, sodium,
        saturated_fat, trans_fat, cholesterol, potassium, calcium, iron,
        vitamin_a, vitamin_c,
        serving_size, serving_unit, quantity, created_at`

// PostgresFoodLogRepo はPostgreSQLを使用した食事記録リポジトリ。
// 日次ログはエントリ行の(user_id, log_date)グルーピングで導出される。
type PostgresFoodLogRepo struct {
	db *sql.DB
}

// NewPostgresFoodLogRepo はPostgresFoodLogRepoを生成する。
func NewPostgresFoodLogRepo(db *sql.DB) *PostgresFoodLogRepo {
	return &PostgresFoodLogRepo{db: db}
}

// scanLogEntry は1行を食事記録エントリへ読み取り、所属日付とともに返す。
func scanLogEntry(scan func(dest ...any) error) (*model.LogEntry, string, error) {
	entry := &model.LogEntry{}
	var logDate time.Time
	var foodID sql.NullString

	err := scan(
		&entry.ID, &logDate, &entry.MealSlot, &foodID, &entry.FoodName,
		&entry.Nutrients.Calories, &entry.Nutrients.Protein,
		&entry.Nutrients.Carbohydrates, &entry.Nutrients.Fat,
		&entry.Nutrients.Fiber, &entry.Nutrients.Sugar, &entry.Nutrients.Sodium,
		&entry.Nutrients.SaturatedFat, &entry.Nutrients.TransFat,
		&entry.Nutrients.Cholesterol, &entry.Nutrients.Potassium,
		&entry.Nutrients.Calcium, &entry.Nutrients.Iron,
		&entry.Nutrients.VitaminA, &entry.Nutrients.VitaminC,
		&entry.ServingSize, &entry.ServingUnit, &entry.Quantity, &entry.CreatedAt,
	)
	if err != nil {
		return nil, "", err
	}

	entry.FoodID = nullStringValue(foodID)
	return entry, logDate.Format(dateLayout), nil
}

// FindByUserAndDate は指定日の日次ログを取得する。
// エントリが存在しない日は空のスロットを持つログを返す。
func (r *PostgresFoodLogRepo) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.DailyLog, error) {
	day := date.Format(dateLayout)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+logEntryColumns+` FROM log_entries
		 WHERE user_id = $1 AND log_date = $2
		 ORDER BY created_at, id`,
		userID, day)
	if err != nil {
		return nil, fmt.Errorf("食事記録の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	log := model.NewDailyLog(userID, day)
	for rows.Next() {
		entry, _, err := scanLogEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("食事記録行の読み取りに失敗しました: %w", err)
		}
		log.Meals[entry.MealSlot] = append(log.Meals[entry.MealSlot], *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("食事記録の走査に失敗しました: %w", err)
	}

	return log, nil
}

// FindByUserAndDateRange は期間内（両端含む）の日次ログを日付順で返す。
// エントリが存在しない日は結果に含まれない。
func (r *PostgresFoodLogRepo) FindByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]*model.DailyLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+logEntryColumns+` FROM log_entries
		 WHERE user_id = $1 AND log_date BETWEEN $2 AND $3
		 ORDER BY log_date, created_at, id`,
		userID, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("期間指定の食事記録の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var logs []*model.DailyLog
	byDate := make(map[string]*model.DailyLog)

	for rows.Next() {
		entry, day, err := scanLogEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("食事記録行の読み取りに失敗しました: %w", err)
		}

		log, ok := byDate[day]
		if !ok {
			log = model.NewDailyLog(userID, day)
			byDate[day] = log
			logs = append(logs, log)
		}
		log.Meals[entry.MealSlot] = append(log.Meals[entry.MealSlot], *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("食事記録の走査に失敗しました: %w", err)
	}

	return logs, nil
}

// AppendEntry はエントリを単一INSERTで追加する。
func (r *PostgresFoodLogRepo) AppendEntry(ctx context.Context, userID string, date time.Time, entry *model.LogEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO log_entries (id, user_id, log_date, meal_slot, food_id, food_name,
		     calories, protein, carbohydrates, fat, fiber, sugar, sodium,
		     saturated_fat, trans_fat, cholesterol, potassium, calcium, iron,
		     vitamin_a, vitamin_c,
		     serving_size, serving_unit, quantity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		         $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		entry.ID, userID, date.Format(dateLayout), string(entry.MealSlot),
		nullString(entry.FoodID), entry.FoodName,
		entry.Nutrients.Calories, entry.Nutrients.Protein,
		entry.Nutrients.Carbohydrates, entry.Nutrients.Fat,
		entry.Nutrients.Fiber, entry.Nutrients.Sugar, entry.Nutrients.Sodium,
		entry.Nutrients.SaturatedFat, entry.Nutrients.TransFat,
		entry.Nutrients.Cholesterol, entry.Nutrients.Potassium,
		entry.Nutrients.Calcium, entry.Nutrients.Iron,
		entry.Nutrients.VitaminA, entry.Nutrients.VitaminC,
		entry.ServingSize, entry.ServingUnit, entry.Quantity, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("食事記録の追加に失敗しました: %w", err)
	}
	return nil
}

// RemoveEntry はエントリを単一DELETEで削除する。
// 対象が存在しない場合はnot_foundエラーを返す。
func (r *PostgresFoodLogRepo) RemoveEntry(ctx context.Context, userID string, date time.Time, entryID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM log_entries
		 WHERE id = $1 AND user_id = $2 AND log_date = $3`,
		entryID, userID, date.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("食事記録の削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewEntryNotFoundError(entryID)
	}
	return nil
}

var _ FoodLogRepository = (*PostgresFoodLogRepo)(nil)
