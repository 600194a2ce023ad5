package parsers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	textutils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-web-cookbook/pkg/recipe"
	"github.com/shouni/go-web-cookbook/pkg/scrape"
)

// appliancesSelector は、Albert Heijn のレシピページで調理器具リストを指す要素です。
const appliancesSelector = `ul[data-testhook="appliances"] li`

// AlbertHeijnParser は、Albert Heijn (www.ah.nl) のレシピ向けパーサーです。
// デフォルトの正規化に加えて、ページ本体から調理器具リストを抽出します。
type AlbertHeijnParser struct {
	DefaultParser
}

// Headers は、Albert Heijn のボット対策を通過するためのブラウザー相当のヘッダーを返します。
func (p *AlbertHeijnParser) Headers() map[string]string {
	return map[string]string{
		"User-Agent":                DefaultUserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":           "nl,en-US;q=0.7,en;q=0.3",
		"Accept-Encoding":           "gzip, deflate, br, zstd",
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "cross-site",
		"Sec-GPC":                   "1",
		"Priority":                  "u=0, i",
		"Pragma":                    "no-cache",
		"Cache-Control":             "no-cache",
	}
}

// Parse は、デフォルトの正規化に加えて調理器具 (Tool) を抽出します。
func (p *AlbertHeijnParser) Parse(raw *scrape.RawRecipe) (*recipe.RecipeForCookBook, error) {
	cookbookRecipe, err := p.DefaultParser.Parse(raw)
	if err != nil {
		return nil, err
	}

	if raw.Doc != nil {
		raw.Doc.Find(appliancesSelector).Each(func(i int, sel *goquery.Selection) {
			if tool := textutils.NormalizeText(strings.TrimSpace(sel.Text())); tool != "" {
				cookbookRecipe.Tool = append(cookbookRecipe.Tool, tool)
			}
		})
	}

	return cookbookRecipe, nil
}
