package parsers

import (
	"log"
	"net/url"
	"regexp"
	"strconv"

	"github.com/shouni/go-web-cookbook/pkg/recipe"
	"github.com/shouni/go-web-cookbook/pkg/scrape"
)

// ----------------------------------------------------------------------
// インターフェースとディスパッチ
// ----------------------------------------------------------------------

// Parser は、抽出済みのレシピ生データをクックブック向けレコードに正規化する機能を定義します。
// Headers は、対象ホストへのHTTPリクエストに付与すべきヘッダーを返します。
type Parser interface {
	Parse(raw *scrape.RawRecipe) (*recipe.RecipeForCookBook, error)
	Headers() map[string]string
}

// hostParserRegistry は、ホスト名の完全一致によるパーサーの静的マッピングです。
// あいまい一致やバージョニングは行いません。未知のホストはデフォルトパーサーに落ちます。
var hostParserRegistry = map[string]Parser{
	"www.ah.nl": &AlbertHeijnParser{},
}

var defaultParser Parser = &DefaultParser{}

// ForHost は、ホスト名に対応するパーサーを返します。未登録のホストはデフォルトパーサーです。
func ForHost(host string) Parser {
	parser, ok := hostParserRegistry[host]
	if !ok {
		log.Printf("%s は未登録のホストのため、デフォルトパーサーを使用します", host)
		return defaultParser
	}
	return parser
}

// ForURL は、URLのホスト名に対応するパーサーを返します。URLが不正な場合もデフォルトパーサーです。
func ForURL(rawURL string) Parser {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return defaultParser
	}
	return ForHost(parsed.Hostname())
}

// HeadersForHost は、ホスト名に対応するリクエストヘッダーを返します。
// HTTPクライアント層 (pkg/fetch) からのコールバックとして使用されます。
func HeadersForHost(host string) map[string]string {
	return ForHost(host).Headers()
}

// ----------------------------------------------------------------------
// デフォルトパーサー
// ----------------------------------------------------------------------

// DefaultUserAgent は、サイトからのブロックを避けるためのUser-Agentです。
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:139.0) Gecko/20100101 Firefox/139.0"

// leadingIntPattern は、"4 servings" のような分量文字列の先頭の整数を取り出します。
var leadingIntPattern = regexp.MustCompile(`^\s*(\d+)`)

// DefaultParser は、すべてのホストで使用できる汎用のレシピパーサーです。
type DefaultParser struct{}

// Headers は、デフォルトのリクエストヘッダーを返します。
func (p *DefaultParser) Headers() map[string]string {
	return map[string]string{
		"User-Agent": DefaultUserAgent,
	}
}

// Parse は、レシピ生データから RecipeForCookBook を構築します。
// キーワードには食事制限と料理ジャンルを合流させます。Tool はデフォルトでは抽出しません。
func (p *DefaultParser) Parse(raw *scrape.RawRecipe) (*recipe.RecipeForCookBook, error) {
	cookbookRecipe := &recipe.RecipeForCookBook{
		Name:               raw.Title(),
		Author:             raw.Author(),
		RecipeYield:        ParseYield(raw.Yields()),
		Description:        raw.Description(),
		URL:                raw.URL,
		Image:              raw.Image(),
		PrepTime:           raw.PrepTime(),
		CookTime:           raw.CookTime(),
		TotalTime:          raw.TotalTime(),
		RecipeCategory:     raw.Category(),
		Keywords:           append(raw.Keywords(), raw.DietaryRestrictions()...),
		RecipeIngredient:   raw.Ingredients(),
		RecipeInstructions: raw.Instructions(),
		Nutrition:          raw.Nutrients(),
		DatePublished:      raw.DatePublished(),
	}

	if cuisine := raw.Cuisine(); cuisine != "" {
		cookbookRecipe.Keywords = append(cookbookRecipe.Keywords, cuisine)
	}

	return cookbookRecipe, nil
}

// ParseYield は、分量文字列の先頭の整数を取り出します。数値がない場合は 0 を返します。
func ParseYield(yields string) int {
	match := leadingIntPattern.FindStringSubmatch(yields)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return n
}
