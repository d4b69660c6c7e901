package model

import "time"

// FoodSource は食品データの取得元を表す。
type FoodSource string

const (
	// FoodSourceManual は手動登録された食品を示す。
	FoodSourceManual FoodSource = "manual"
	// FoodSourceUSDA はUSDA FoodData Centralからインポートされた食品を示す。
	FoodSourceUSDA FoodSource = "usda"
)

// FoodItem はローカルカタログ内の食品を表す。
// 栄養素ベクトルは作成後イミュータブルであり、変更は明示的な
// 全置換更新（マージ加算ではない）のみで行う。
// (Source, SourceID) の組が外部プロバイダとの重複排除キーとなる。
type FoodItem struct {
	ID          string
	Name        string
	Brand       string
	Category    string // 未分類の場合は空文字列
	Nutrients   Nutrients
	ServingSize float64 // 基準提供量。正の数
	ServingUnit string
	ImageURL    string
	Source      FoodSource
	SourceID    string // プロバイダ固有ID。手動登録の場合は空
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizedFood は外部プロバイダのレコードを正規化した未保存の食品データを表す。
// NutrientNormalizerの出力であり、カタログへの取り込み時にFoodItemへ変換される。
type NormalizedFood struct {
	Name        string
	Brand       string
	Category    string
	Nutrients   Nutrients
	ServingSize float64
	ServingUnit string
	Source      FoodSource
	SourceID    string
}

// SearchSource は食品検索結果のデータ経路を表す。
// プロバイダ障害時のローカルフォールバックを呼び出し元が判別できるように、
// 検索結果には必ずどちらの経路で取得されたかがタグ付けされる。
type SearchSource string

const (
	// SearchSourceProvider は外部プロバイダから取得した検索結果を示す。
	SearchSourceProvider SearchSource = "provider"
	// SearchSourceLocal はローカルカタログから取得した検索結果を示す。
	SearchSourceLocal SearchSource = "local"
)
