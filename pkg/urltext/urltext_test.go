package urltext_test

import (
	"testing"

	"github.com/shouni/go-web-cookbook/pkg/urltext"
	"github.com/stretchr/testify/assert"
)

// TestExtractURLs は、自由形式テキストからのURL抽出を検証します。
func TestExtractURLs(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected []string
	}{
		// 1. 改行区切りのURLリスト
		{
			name:     "newline_list",
			text:     "http://example.com\nnot a web url\nhttp://test.com",
			expected: []string{"http://example.com", "http://test.com"},
		},

		// 2. 空のテキスト
		{
			name:     "empty_text",
			text:     "",
			expected: []string{},
		},

		// 3. 文章中のURL (文末の句読点は除去)
		{
			name:     "urls_in_prose",
			text:     "Check out https://example.com/recipes/pasta. Also https://example.com/recipes/soup, it's great!",
			expected: []string{"https://example.com/recipes/pasta", "https://example.com/recipes/soup"},
		},

		// 4. 重複は最初の出現のみ
		{
			name:     "deduplicates_preserving_order",
			text:     "https://a.example\nhttps://b.example\nhttps://a.example",
			expected: []string{"https://a.example", "https://b.example"},
		},

		// 5. https と http の混在
		{
			name:     "mixed_schemes",
			text:     "https://secure.example/x http://plain.example/y",
			expected: []string{"https://secure.example/x", "http://plain.example/y"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, urltext.ExtractURLs(tc.text))
		})
	}
}

// TestLooksLikeHTML は、URLリストと生HTMLの振り分け判定を検証します。
func TestLooksLikeHTML(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected bool
	}{
		{name: "doctype", text: "<!DOCTYPE html><html><body></body></html>", expected: true},
		{name: "html_tag", text: "<html><head></head></html>", expected: true},
		{name: "div_fragment", text: `<div class="recipe">...</div>`, expected: true},
		{name: "url_list", text: "http://example.com\nhttp://test.com", expected: false},
		{name: "plain_prose", text: "a list of my favourite recipes", expected: false},
		{name: "less_than_sign", text: "2 < 3 servings", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, urltext.LooksLikeHTML(tc.text))
		})
	}
}
