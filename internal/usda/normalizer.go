// Package usda はUSDA FoodData Central連携機能を提供する。
// レート制限・TTLキャッシュ付きのAPIクライアントと、
// プロバイダ固有の栄養素レコードを正規化スキーマへ変換するノーマライザを含む。
package usda

import (
	"math"
	"strconv"

	"github.com/joescodelmao/nutrilog/internal/model"
)

// defaultServingSize はUSDAレコードの基準提供量（100g）。
// レコードに提供量が含まれない場合に使用する。
const defaultServingSize = 100.0

// defaultServingUnit はUSDAレコードのデフォルト提供単位。
const defaultServingUnit = "g"

// canonicalField は正規化スキーマ内の栄養素フィールドを表す。
type canonicalField int

const (
	fieldCalories canonicalField = iota
	fieldProtein
	fieldCarbohydrates
	fieldFat
	fieldFiber
	fieldSugar
	fieldSodium
	fieldSaturatedFat
	fieldTransFat
	fieldCholesterol
	fieldPotassium
	fieldCalcium
	fieldIron
	fieldVitaminA
	fieldVitaminC
)

// nutrientNumberTable はUSDA栄養素番号から正規化フィールドへの閉じた対応表。
// 部分文字列マッチではなく明示的な列挙で対応付けを行うため、
// 未対応の栄養素番号は静かに欠損するのではなく、この表の不在として可視化される。
// 306がカリウム、301がカルシウム（USDA National Nutrient Databaseの定義どおり）。
var nutrientNumberTable = map[string]canonicalField{
	"208": fieldCalories,      // Energy (kcal)
	"203": fieldProtein,       // Protein
	"205": fieldCarbohydrates, // Carbohydrate, by difference
	"204": fieldFat,           // Total lipid (fat)
	"291": fieldFiber,         // Fiber, total dietary
	"269": fieldSugar,         // Sugars, total
	"307": fieldSodium,        // Sodium, Na
	"606": fieldSaturatedFat,  // Fatty acids, total saturated
	"605": fieldTransFat,      // Fatty acids, total trans
	"601": fieldCholesterol,   // Cholesterol
	"306": fieldPotassium,     // Potassium, K
	"301": fieldCalcium,       // Calcium, Ca
	"303": fieldIron,          // Iron, Fe
	"320": fieldVitaminA,      // Vitamin A, RAE
	"401": fieldVitaminC,      // Vitamin C, total ascorbic acid
}

// fdcNutrientIDTable はFoodData Central形式の栄養素ID（整数）から
// 正規化フィールドへの対応表。新形式のレスポンスはレガシー番号の代わりに
// このIDを返すことがあるため、両方の識別子で照合する。
var fdcNutrientIDTable = map[int]canonicalField{
	1008: fieldCalories,
	1003: fieldProtein,
	1005: fieldCarbohydrates,
	1004: fieldFat,
	1079: fieldFiber,
	2000: fieldSugar,
	1093: fieldSodium,
	1258: fieldSaturatedFat,
	1257: fieldTransFat,
	1253: fieldCholesterol,
	1092: fieldPotassium,
	1087: fieldCalcium,
	1089: fieldIron,
	1106: fieldVitaminA,
	1162: fieldVitaminC,
}

// RawNutrient はプロバイダから受信した栄養素レコード1件を表す。
// 検索APIと詳細APIで識別子の形式が異なるため、両方を保持する。
type RawNutrient struct {
	Number string  // レガシー栄養素番号（例: "203"）
	FDCID  int     // FoodData Central栄養素ID（例: 1003）
	Value  float64 // 基準提供量あたりの含有量
}

// NormalizeNutrients はプロバイダの栄養素レコード列を正規化ベクトルへ変換する。
// 対応表にない栄養素は破棄し、欠損フィールドは0のままとする。
// 値は小数第2位に丸める。純粋関数であり入力を変更しない。
func NormalizeNutrients(raw []RawNutrient) model.Nutrients {
	var n model.Nutrients

	for _, r := range raw {
		field, ok := nutrientNumberTable[r.Number]
		if !ok {
			field, ok = fdcNutrientIDTable[r.FDCID]
		}
		if !ok {
			continue // 未対応の栄養素は破棄
		}

		value := round2(r.Value)
		switch field {
		case fieldCalories:
			n.Calories = value
		case fieldProtein:
			n.Protein = value
		case fieldCarbohydrates:
			n.Carbohydrates = value
		case fieldFat:
			n.Fat = value
		case fieldFiber:
			n.Fiber = value
		case fieldSugar:
			n.Sugar = value
		case fieldSodium:
			n.Sodium = value
		case fieldSaturatedFat:
			n.SaturatedFat = value
		case fieldTransFat:
			n.TransFat = value
		case fieldCholesterol:
			n.Cholesterol = value
		case fieldPotassium:
			n.Potassium = value
		case fieldCalcium:
			n.Calcium = value
		case fieldIron:
			n.Iron = value
		case fieldVitaminA:
			n.VitaminA = value
		case fieldVitaminC:
			n.VitaminC = value
		}
	}

	return n
}

// normalizeFood は共通フィールドから正規化済み食品レコードを構築する。
// 名前・ブランド・カテゴリはサニタイズされる。
func normalizeFood(
	sanitize func(string) string,
	fdcID int64,
	description, brandOwner, category string,
	servingSize float64,
	servingUnit string,
	nutrients model.Nutrients,
) model.NormalizedFood {
	name := sanitize(description)
	if name == "" {
		name = sanitize(brandOwner)
	}
	if name == "" {
		name = "Unknown"
	}

	if servingSize <= 0 {
		servingSize = defaultServingSize
	}
	if servingUnit == "" {
		servingUnit = defaultServingUnit
	}

	return model.NormalizedFood{
		Name:        name,
		Brand:       sanitize(brandOwner),
		Category:    sanitize(category),
		Nutrients:   nutrients,
		ServingSize: servingSize,
		ServingUnit: servingUnit,
		Source:      model.FoodSourceUSDA,
		SourceID:    strconv.FormatInt(fdcID, 10),
	}
}

// round2 は小数第2位に丸める。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
