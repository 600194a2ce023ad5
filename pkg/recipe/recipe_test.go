package recipe_test

import (
	"encoding/json"
	"testing"

	"github.com/shouni/go-web-cookbook/pkg/recipe"
	"github.com/stretchr/testify/assert"
)

// TestToJSON_DropsEmptyFields は、空のフィールドがシリアライズ結果から省略されることを検証します。
func TestToJSON_DropsEmptyFields(t *testing.T) {
	r := &recipe.RecipeForCookBook{
		Name:        "Mock Recipe",
		RecipeYield: 4,
		// Author, Description などはすべて空のまま
	}

	asMap := r.ToJSON()

	assert.Equal(t, "Mock Recipe", asMap["name"])
	assert.Equal(t, 4, asMap["recipeYield"])

	// 空のフィールドは存在してはならない
	for _, key := range []string{
		"author", "description", "url", "image",
		"prepTime", "cookTime", "totalTime", "recipeCategory",
		"keywords", "tool", "recipeIngredient", "recipeInstructions",
		"nutrition", "datePublished",
	} {
		assert.NotContains(t, asMap, key, "空フィールド %s が省略されていません", key)
	}
}

// TestToJSON_InjectsSchemaHeader は、スキーマヘッダーが常に付与されることを検証します。
func TestToJSON_InjectsSchemaHeader(t *testing.T) {
	r := &recipe.RecipeForCookBook{Name: "Mock Recipe", RecipeYield: 2}

	asMap := r.ToJSON()

	assert.Equal(t, "https://schema.org", asMap["@context"])
	assert.Equal(t, "Recipe", asMap["@type"])
}

// TestToJSON_KeepsPopulatedFields は、値を持つフィールドがすべて保持されることを検証します。
func TestToJSON_KeepsPopulatedFields(t *testing.T) {
	r := &recipe.RecipeForCookBook{
		Name:               "Mock Recipe",
		RecipeYield:        4,
		Author:             "Mock Author",
		Description:        "Mock description",
		URL:                "http://example.com",
		Image:              "http://example.com/image.jpg",
		PrepTime:           "PT30M",
		CookTime:           "PT30M",
		TotalTime:          "PT1H",
		RecipeCategory:     "Mock Category",
		Keywords:           []string{"keyword1", "keyword2"},
		Tool:               []string{"Tool1"},
		RecipeIngredient:   []string{"ingredient1", "ingredient2"},
		RecipeInstructions: []any{map[string]any{"step": "Mock step"}},
		Nutrition:          map[string]string{"calories": "200 kcal"},
		DatePublished:      "2023-01-01",
	}

	asMap := r.ToJSON()

	assert.Equal(t, "Mock Author", asMap["author"])
	assert.Equal(t, []string{"keyword1", "keyword2"}, asMap["keywords"])
	assert.Equal(t, []string{"Tool1"}, asMap["tool"])
	assert.Equal(t, []string{"ingredient1", "ingredient2"}, asMap["recipeIngredient"])
	assert.Equal(t, map[string]string{"calories": "200 kcal"}, asMap["nutrition"])
	assert.Equal(t, "2023-01-01", asMap["datePublished"])
}

// TestEncodeJSON は、シリアライズ結果が有効なJSONであり、HTMLエスケープされないことを検証します。
func TestEncodeJSON(t *testing.T) {
	r := &recipe.RecipeForCookBook{
		Name:        "Sweet & Sour",
		RecipeYield: 2,
		Description: "A <b>bold</b> dish",
	}

	data, err := r.EncodeJSON()
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Sweet & Sour", decoded["name"])
	assert.Equal(t, "A <b>bold</b> dish", decoded["description"])

	// SetEscapeHTML(false) により "&" は "&" にならない
	assert.Contains(t, string(data), "Sweet & Sour")
}

// TestFolderName は、フォルダー名の導出規則を検証します。
func TestFolderName(t *testing.T) {
	testCases := []struct {
		name     string
		recipe   string
		expected string
	}{
		{name: "spaces_to_underscores", recipe: "Chicken Curry", expected: "chicken_curry"},
		{name: "slash_to_dash", recipe: "Mac/Cheese", expected: "mac-cheese"},
		{name: "mixed", recipe: "Fish & Chips / Fries", expected: "fish_&_chips_-_fries"},
		{name: "already_lowercase", recipe: "soup", expected: "soup"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := &recipe.RecipeForCookBook{Name: tc.recipe, RecipeYield: 1}
			assert.Equal(t, tc.expected, r.FolderName())

			// 2回目の呼び出しでも同じ結果 (キャッシュの検証)
			assert.Equal(t, tc.expected, r.FolderName())
		})
	}
}
