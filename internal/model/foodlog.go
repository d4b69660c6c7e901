package model

import "time"

// MealSlot は1日の食事区分を表す。
type MealSlot string

const (
	// MealSlotBreakfast は朝食。
	MealSlotBreakfast MealSlot = "breakfast"
	// MealSlotLunch は昼食。
	MealSlotLunch MealSlot = "lunch"
	// MealSlotDinner は夕食。
	MealSlotDinner MealSlot = "dinner"
	// MealSlotSnack は間食。
	MealSlotSnack MealSlot = "snack"
)

// MealSlots は全食事区分を集計順に並べたリスト。
var MealSlots = []MealSlot{MealSlotBreakfast, MealSlotLunch, MealSlotDinner, MealSlotSnack}

// ValidMealSlot はsが定義済みの食事区分かどうかを返す。
func ValidMealSlot(s MealSlot) bool {
	switch s {
	case MealSlotBreakfast, MealSlotLunch, MealSlotDinner, MealSlotSnack:
		return true
	default:
		return false
	}
}

// LogEntry は食事記録の1エントリを表す。
// 記録時点の食品の栄養素ベクトルと提供量のスナップショットを保持する。
// スナップショット方式のため、カタログ側の食品が後から編集されても
// 過去の集計値は変化しない。
type LogEntry struct {
	ID          string
	FoodID      string // 参照元食品ID。カタログから削除された場合も記録は残る
	FoodName    string
	Nutrients   Nutrients // 記録時点のスナップショット
	ServingSize float64   // 記録時点の基準提供量
	ServingUnit string
	Quantity    float64 // 摂取量（提供量単位）。正の数
	MealSlot    MealSlot
	CreatedAt   time.Time
}

// DailyLog は(ユーザー, 日付)ごとの食事記録を表す。
// 食事区分ごとのエントリ列を保持する。合計値は常に導出され、保存されない。
// 記録が1件もない日付は空の区分を持つDailyLogとして扱う（遅延生成）。
type DailyLog struct {
	UserID string
	Date   string // YYYY-MM-DD
	Meals  map[MealSlot][]LogEntry
}

// NewDailyLog は空の食事区分を持つDailyLogを生成する。
func NewDailyLog(userID, date string) *DailyLog {
	meals := make(map[MealSlot][]LogEntry, len(MealSlots))
	for _, slot := range MealSlots {
		meals[slot] = []LogEntry{}
	}
	return &DailyLog{
		UserID: userID,
		Date:   date,
		Meals:  meals,
	}
}

// EntryCount は全食事区分のエントリ総数を返す。
func (d *DailyLog) EntryCount() int {
	count := 0
	for _, entries := range d.Meals {
		count += len(entries)
	}
	return count
}
