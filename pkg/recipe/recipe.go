package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ----------------------------------------------------------------------
// 定数定義 (JSON-LD スキーマヘッダー)
// ----------------------------------------------------------------------

const (
	// SchemaContext は recipe.json に常に付与される @context の値です。
	SchemaContext = "https://schema.org"
	// SchemaType は recipe.json に常に付与される @type の値です。
	SchemaType = "Recipe"
)

// RecipeForCookBook は、クックブック向けに整形された1件のレシピを表すフラットなレコードです。
// 1回のパース成功ごとに生成され、直後にシリアライズされて破棄されます。
type RecipeForCookBook struct {
	Name               string
	RecipeYield        int
	Author             string
	Description        string
	URL                string
	Image              string // 画像のURL
	PrepTime           string
	CookTime           string
	TotalTime          string
	RecipeCategory     string
	Keywords           []string
	Tool               []string
	RecipeIngredient   []string
	RecipeInstructions []any // JSON-LDの値をそのまま保持 (文字列またはHowToStepオブジェクト)
	Nutrition          map[string]string
	DatePublished      string

	folderName string // FolderName() の計算結果のキャッシュ
}

// FolderName は、レシピ名から出力フォルダー名を導出します。
// 小文字化し、空白を "_" に、"/" を "-" に置換します。結果はキャッシュされます。
func (r *RecipeForCookBook) FolderName() string {
	if r.folderName == "" {
		name := strings.ToLower(r.Name)
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, "/", "-")
		r.folderName = name
	}
	return r.folderName
}

// ToJSON は、レシピをJSON互換のマップに変換します。
// 空の値を持つフィールドをすべて取り除き、スキーマヘッダー (@context/@type) を付与します。
func (r *RecipeForCookBook) ToJSON() map[string]any {
	asMap := map[string]any{
		"name":               r.Name,
		"recipeYield":        r.RecipeYield,
		"author":             r.Author,
		"description":        r.Description,
		"url":                r.URL,
		"image":              r.Image,
		"prepTime":           r.PrepTime,
		"cookTime":           r.CookTime,
		"totalTime":          r.TotalTime,
		"recipeCategory":     r.RecipeCategory,
		"keywords":           r.Keywords,
		"tool":               r.Tool,
		"recipeIngredient":   r.RecipeIngredient,
		"recipeInstructions": r.RecipeInstructions,
		"nutrition":          r.Nutrition,
		"datePublished":      r.DatePublished,
	}

	for key, value := range asMap {
		if isEmptyValue(value) {
			delete(asMap, key)
		}
	}

	asMap["@context"] = SchemaContext
	asMap["@type"] = SchemaType
	return asMap
}

// EncodeJSON は、ToJSON の結果を2スペースインデントのJSONバイト列に変換します。
// レシピ本文に含まれる "&" や "<" をエスケープしないため、標準の json.Marshal ではなく
// Encoder の SetEscapeHTML(false) を使用します。
func (r *RecipeForCookBook) EncodeJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(r.ToJSON()); err != nil {
		return nil, fmt.Errorf("レシピのJSONシリアライズに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// isEmptyValue は、ToJSON で省略すべき「空」の値かどうかを判定します。
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case string:
		return v == ""
	case int:
		return v == 0
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]string:
		return len(v) == 0
	case nil:
		return true
	default:
		return false
	}
}
