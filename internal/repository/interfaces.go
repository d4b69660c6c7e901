// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/joescodelmao/nutrilog/internal/model"
)

// FoodRepository は食品カタログの永続化インターフェース。
type FoodRepository interface {
	// FindByID は指定IDの食品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.FoodItem, error)

	// FindBySourceID はプロバイダとプロバイダ固有IDで食品を検索する。
	// 見つからない場合はnilを返す。外部インポート時の重複排除に使用する。
	FindBySourceID(ctx context.Context, source model.FoodSource, sourceID string) (*model.FoodItem, error)

	// Search は食品名・ブランド・カテゴリの部分一致で検索する。
	// 大文字小文字は区別しない。limit件まで返す。
	Search(ctx context.Context, query string, limit int) ([]*model.FoodItem, error)

	// SearchByCategories は指定カテゴリのいずれかに属する食品を返す。
	SearchByCategories(ctx context.Context, categories []string, limit int) ([]*model.FoodItem, error)

	// Create は食品を作成する。
	Create(ctx context.Context, food *model.FoodItem) error

	// Update は食品情報を全置換で更新する。栄養素の部分マージは行わない。
	Update(ctx context.Context, food *model.FoodItem) error
}

// FoodLogRepository は食事記録の永続化インターフェース。
// 日次ログはエントリ行のグルーピングで導出されるため、
// 追加・削除は単一行の操作となり読み出し・書き戻しの競合が発生しない。
type FoodLogRepository interface {
	// FindByUserAndDate は指定日の日次ログを取得する。
	// エントリが存在しない日は空のスロットを持つログを返す。
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.DailyLog, error)

	// FindByUserAndDateRange は期間内（両端含む）の日次ログを日付順で返す。
	// エントリが存在しない日は結果に含まれない。
	FindByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]*model.DailyLog, error)

	// AppendEntry はエントリを単一INSERTで追加する。
	AppendEntry(ctx context.Context, userID string, date time.Time, entry *model.LogEntry) error

	// RemoveEntry はエントリを単一DELETEで削除する。
	// 対象が存在しない場合はnot_foundエラーを返す。
	RemoveEntry(ctx context.Context, userID string, date time.Time, entryID string) error
}

// GoalsRepository は栄養目標の永続化インターフェース。
type GoalsRepository interface {
	// FindByUserID は指定ユーザーの目標を取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.NutritionalGoals, error)

	// Create は目標を作成する。同一ユーザーの2件目は一意制約違反となり、
	// already-existsエラーを返す。
	Create(ctx context.Context, goals *model.NutritionalGoals) error

	// Update は既存の目標を全置換で更新する。
	Update(ctx context.Context, goals *model.NutritionalGoals) error
}
