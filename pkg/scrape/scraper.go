package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、URLからUTF-8にデコード済みのHTMLバイト列を取得する機能のインターフェースを定義します。
// Scraper は、この抽象に依存します。
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) ([]byte, error)
}

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------

const (
	// jsonLDSelector は、構造化データを含む script 要素のセレクターです。
	jsonLDSelector = `script[type="application/ld+json"]`
	// recipeType は、抽出対象の schema.org 型名です。
	recipeType = "Recipe"
)

// Scraper は、Fetcher を使ってレシピ構造化データの抽出プロセスを管理します。
type Scraper struct {
	fetcher Fetcher
}

// NewScraper は、新しいScraperのインスタンスを生成します。
func NewScraper(fetcher Fetcher) (*Scraper, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("scrape.NewScraper: Fetcher cannot be nil")
	}
	return &Scraper{
		fetcher: fetcher,
	}, nil
}

// FetchAndScrape は指定されたURLからHTMLを取得し、レシピ構造化データを抽出します。
func (s *Scraper) FetchAndScrape(ctx context.Context, url string) (*RawRecipe, error) {
	// 1. Fetcherから生のバイト配列を取得 (通信の責務)
	htmlBytes, err := s.fetcher.FetchHTML(ctx, url)
	if err != nil {
		return nil, err
	}

	// 2. Scraper内で解析 (解析の責務)
	return s.ScrapeHTML(htmlBytes, url)
}

// ScrapeHTML は、生のHTMLバイト列から schema.org/Recipe のJSON-LDオブジェクトを抽出します。
// 解析済みの goquery.Document もあわせて保持し、サイト固有のパーサーによる後処理を可能にします。
func (s *Scraper) ScrapeHTML(htmlBytes []byte, orgURL string) (*RawRecipe, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	var recipeData map[string]any

	// すべての JSON-LD ブロックを出現順に走査し、最初に見つかった Recipe オブジェクトを採用する
	doc.Find(jsonLDSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		var node any
		if err := json.Unmarshal([]byte(sel.Text()), &node); err != nil {
			// 壊れたJSON-LDブロックはスキップして次を試す
			return true
		}
		if found := findRecipeNode(node); found != nil {
			recipeData = found
			return false
		}
		return true
	})

	if recipeData == nil {
		return nil, fmt.Errorf("レシピのJSON-LDが見つかりませんでした (URL: %s)", orgURL)
	}

	return &RawRecipe{
		URL:  orgURL,
		Data: recipeData,
		Doc:  doc,
	}, nil
}

// findRecipeNode は、JSON-LDノードを再帰的に探索し、@type が Recipe のオブジェクトを返します。
// 裸のオブジェクト、トップレベル配列、@graph ラッパーの3形態に対応します。
func findRecipeNode(node any) map[string]any {
	switch n := node.(type) {
	case map[string]any:
		if hasRecipeType(n["@type"]) {
			return n
		}
		if graph, ok := n["@graph"]; ok {
			return findRecipeNode(graph)
		}
	case []any:
		for _, item := range n {
			if found := findRecipeNode(item); found != nil {
				return found
			}
		}
	}
	return nil
}

// hasRecipeType は、@type の値 (文字列または文字列リスト) に Recipe が含まれるかを判定します。
func hasRecipeType(typeValue any) bool {
	switch t := typeValue.(type) {
	case string:
		return strings.EqualFold(t, recipeType)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, recipeType) {
				return true
			}
		}
	}
	return false
}
