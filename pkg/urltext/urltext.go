package urltext

import (
	"regexp"
	"strings"
)

// ----------------------------------------------------------------------
// 定数定義 (抽出関連のみ)
// ----------------------------------------------------------------------

// urlPattern は、自由形式のテキストに含まれる http(s) URLを検出します。
// 引用符・括弧・タグ区切りは URLの一部とみなしません。
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)

// htmlMarkerPattern は、テキストがHTMLドキュメントらしいかどうかを判定します。
var htmlMarkerPattern = regexp.MustCompile(`(?i)<\s*(!doctype|html|head|body|div|script|article)\b`)

// trailingPunctuation は、文末にURLが置かれた場合に付着しがちな記号です。
const trailingPunctuation = ".,;:!?"

// ExtractURLs は、テキストから http(s) URLを出現順に抽出します。
// 重複は最初の出現のみ残します。URLが見つからない場合は空のスライスを返します。
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]struct{}, len(matches))
	urls := make([]string, 0, len(matches))
	for _, match := range matches {
		url := strings.TrimRight(match, trailingPunctuation)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls
}

// LooksLikeHTML は、テキストがHTMLドキュメントらしいかどうかを判定します。
// URLリストファイルと生HTMLファイルの振り分けに使用します。
func LooksLikeHTML(text string) bool {
	return htmlMarkerPattern.MatchString(text)
}
