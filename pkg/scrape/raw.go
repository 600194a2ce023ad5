package scrape

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textutils "github.com/shouni/go-utils/text"
)

// RawRecipe は、ページから抽出した schema.org/Recipe のJSON-LDオブジェクトを保持します。
// JSON-LDの値は文字列・リスト・オブジェクトが混在する異種混合のため、
// 型付きアクセサーがフラットなGoの値へ正規化します。
type RawRecipe struct {
	URL  string            // 取得元URL (生HTML入力の場合は空)
	Data map[string]any    // Recipe オブジェクトの生データ
	Doc  *goquery.Document // サイト固有パーサーの後処理用に保持する解析済みドキュメント
}

// schemaOrgPrefix は、suitableForDiet などで値がURL形式になっている場合に除去する接頭辞です。
const schemaOrgPrefix = "https://schema.org/"

// Title はレシピ名を返します。
func (r *RawRecipe) Title() string {
	return r.stringField("name")
}

// Author は著者名を返します。文字列、Personオブジェクト、そのリストの3形態に対応します。
func (r *RawRecipe) Author() string {
	switch v := r.Data["author"].(type) {
	case string:
		return normalize(v)
	case map[string]any:
		return normalize(asString(v["name"]))
	case []any:
		for _, item := range v {
			if name := authorName(item); name != "" {
				return name
			}
		}
	}
	return ""
}

// Yields は分量 (recipeYield) を文字列として返します。数値・文字列・リストに対応します。
func (r *RawRecipe) Yields() string {
	return firstString(r.Data["recipeYield"])
}

// Description は説明文を返します。
func (r *RawRecipe) Description() string {
	return r.stringField("description")
}

// Image は画像URLを返します。文字列、ImageObject、そのリストの3形態に対応します。
func (r *RawRecipe) Image() string {
	return imageURL(r.Data["image"])
}

// Category はカテゴリー (recipeCategory) を返します。リストの場合は先頭要素を採用します。
func (r *RawRecipe) Category() string {
	return firstString(r.Data["recipeCategory"])
}

// Cuisine は料理ジャンル (recipeCuisine) を返します。
func (r *RawRecipe) Cuisine() string {
	return firstString(r.Data["recipeCuisine"])
}

// Keywords はキーワードのリストを返します。カンマ区切り文字列とリストの両形態に対応します。
func (r *RawRecipe) Keywords() []string {
	switch v := r.Data["keywords"].(type) {
	case string:
		var keywords []string
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				keywords = append(keywords, trimmed)
			}
		}
		return keywords
	case []any:
		return asStringSlice(v)
	}
	return nil
}

// DietaryRestrictions は食事制限 (suitableForDiet) のリストを返します。
// "https://schema.org/GlutenFreeDiet" のようなURL形式の値は型名のみに短縮します。
func (r *RawRecipe) DietaryRestrictions() []string {
	var diets []string
	for _, diet := range asStringSlice(toList(r.Data["suitableForDiet"])) {
		diets = append(diets, strings.TrimPrefix(diet, schemaOrgPrefix))
	}
	return diets
}

// Ingredients は材料 (recipeIngredient) のリストを返します。
func (r *RawRecipe) Ingredients() []string {
	return asStringSlice(toList(r.Data["recipeIngredient"]))
}

// Instructions は手順 (recipeInstructions) をJSON-LDの値のまま返します。
// 文字列・HowToStepオブジェクトの混在リストをそのまま保持し、単一文字列はリストに包みます。
func (r *RawRecipe) Instructions() []any {
	return toList(r.Data["recipeInstructions"])
}

// Nutrients は栄養情報 (nutrition) を文字列マップとして返します。@型注釈は除去します。
func (r *RawRecipe) Nutrients() map[string]string {
	obj, ok := r.Data["nutrition"].(map[string]any)
	if !ok {
		return nil
	}

	nutrients := make(map[string]string, len(obj))
	for key, value := range obj {
		if strings.HasPrefix(key, "@") {
			continue
		}
		if s := asString(value); s != "" {
			nutrients[key] = s
		}
	}
	if len(nutrients) == 0 {
		return nil
	}
	return nutrients
}

// PrepTime は準備時間 (ISO 8601 duration) を返します。
func (r *RawRecipe) PrepTime() string {
	return asString(r.Data["prepTime"])
}

// CookTime は調理時間 (ISO 8601 duration) を返します。
func (r *RawRecipe) CookTime() string {
	return asString(r.Data["cookTime"])
}

// TotalTime は合計時間 (ISO 8601 duration) を返します。
func (r *RawRecipe) TotalTime() string {
	return asString(r.Data["totalTime"])
}

// DatePublished は公開日を返します。
func (r *RawRecipe) DatePublished() string {
	return asString(r.Data["datePublished"])
}

// stringField は、文字列フィールドを取得して正規化する内部ヘルパーです。
func (r *RawRecipe) stringField(key string) string {
	return normalize(asString(r.Data[key]))
}

// ----------------------------------------------------------------------
// 変換ヘルパー
// ----------------------------------------------------------------------

// normalize は、抽出した文字列の空白・改行を整えます。
func normalize(s string) string {
	return textutils.NormalizeText(s)
}

// asString は、JSON-LDのスカラー値を文字列に変換します。数値は小数点以下を持たない限り整数表記にします。
func asString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstString は、スカラーまたはリストから最初の空でない文字列表現を返します。
func firstString(value any) string {
	if list, ok := value.([]any); ok {
		for _, item := range list {
			if s := asString(item); s != "" {
				return s
			}
		}
		return ""
	}
	return asString(value)
}

// toList は、スカラー値を単一要素のリストに包み、リストはそのまま返します。
func toList(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// asStringSlice は、anyのリストを空要素を除いた文字列スライスに変換します。
func asStringSlice(list []any) []string {
	var result []string
	for _, item := range list {
		if s := asString(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// authorName は、authorリストの1要素から名前を取り出します。
func authorName(item any) string {
	switch v := item.(type) {
	case string:
		return normalize(v)
	case map[string]any:
		return normalize(asString(v["name"]))
	}
	return ""
}

// imageURL は、imageフィールドの3形態 (文字列 / ImageObject / リスト) からURLを取り出します。
func imageURL(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		return strings.TrimSpace(asString(v["url"]))
	case []any:
		for _, item := range v {
			if u := imageURL(item); u != "" {
				return u
			}
		}
	}
	return ""
}
