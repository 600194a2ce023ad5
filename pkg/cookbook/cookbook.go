package cookbook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shouni/go-web-cookbook/pkg/parsers"
	"github.com/shouni/go-web-cookbook/pkg/recipe"
	"github.com/shouni/go-web-cookbook/pkg/retry"
	"github.com/shouni/go-web-cookbook/pkg/scrape"
)

// ----------------------------------------------------------------------
// 定数と依存性の定義
// ----------------------------------------------------------------------

const (
	// RecipeFilename は、レシピデータの出力ファイル名です。
	RecipeFilename = "recipe.json"
	// ImageFilename は、レシピ画像の出力ファイル名です。
	ImageFilename = "full.jpg"
	// FailedURLsFilename は、失敗URLを記録するファイル名です。
	FailedURLsFilename = "failed_urls.txt"

	// DefaultMaxRounds は、バッチ全体の再試行回数のデフォルトです。
	DefaultMaxRounds = 3
	// DefaultRoundPause は、再試行ラウンド間の固定待機時間です。
	DefaultRoundPause = 2 * time.Second

	folderMode = 0o755
	fileMode   = 0o644
)

// Fetcher は、Converter が必要とするHTTP機能のインターフェースを定義します。
// FetchHTML はレシピページ (UTF-8デコード済み)、FetchBytes は画像の取得に使用します。
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) ([]byte, error)
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ----------------------------------------------------------------------
// レシピコンテナ
// ----------------------------------------------------------------------

// Container は、1件のURLまたは生HTMLが fetch → parse → save の各段階を
// 通過する様子を追跡するレコードです。Converter の初期化時に作られ、
// 処理の進行に応じてその場で更新され、実行後のレポートのために保持されます。
type Container struct {
	URL     string // 取得元URL (生HTML入力の場合は空)
	RawHTML []byte // 生HTML入力 (URL入力の場合はnil)
	Label   string // ログ・レポート用の表示名 (URLまたはファイル名)

	Raw          *scrape.RawRecipe          // 抽出されたレシピ生データ
	Parsed       *recipe.RecipeForCookBook  // 正規化済みレシピ
	TargetFolder string                     // 作成された出力フォルダー (成功時のみ)
	Succeeded    bool
	Err          error // 最後に発生したエラー
}

// ----------------------------------------------------------------------
// Converter (オーケストレーター)
// ----------------------------------------------------------------------

// Converter は、URL・生HTMLのリストを逐次処理し、レシピごとに
// recipe.json と full.jpg を出力フォルダーへ保存します。
// 並行処理は行いません。1件ずつの直列パイプラインです。
type Converter struct {
	containers []*Container
	target     string
	fetcher    Fetcher
	scraper    *scrape.Scraper
	maxRounds  uint64
	pause      time.Duration
}

// Option は Converter の設定を行うための関数型です。
type Option func(*Converter)

// WithMaxRounds はバッチ全体の再試行回数を設定します。
func WithMaxRounds(rounds uint64) Option {
	return func(c *Converter) {
		c.maxRounds = rounds
	}
}

// WithRoundPause は再試行ラウンド間の待機時間を設定します。
func WithRoundPause(pause time.Duration) Option {
	return func(c *Converter) {
		c.pause = pause
	}
}

// NewConverter は、新しいConverterを生成します。
func NewConverter(fetcher Fetcher, targetFolder string, options ...Option) (*Converter, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("cookbook.NewConverter: Fetcher cannot be nil")
	}
	if targetFolder == "" {
		return nil, fmt.Errorf("cookbook.NewConverter: 出力先フォルダーが指定されていません")
	}

	scraper, err := scrape.NewScraper(fetcher)
	if err != nil {
		return nil, err
	}

	c := &Converter{
		target:    targetFolder,
		fetcher:   fetcher,
		scraper:   scraper,
		maxRounds: DefaultMaxRounds,
		pause:     DefaultRoundPause,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// AddURLs は、処理対象のURLをコンテナとして登録します。
func (c *Converter) AddURLs(urls ...string) {
	for _, url := range urls {
		c.containers = append(c.containers, &Container{URL: url, Label: url})
	}
}

// AddRawHTML は、取得済みの生HTMLをコンテナとして登録します。
// label はログ・レポート用の表示名 (通常は入力ファイル名) です。
func (c *Converter) AddRawHTML(label string, html []byte) {
	c.containers = append(c.containers, &Container{RawHTML: html, Label: label})
}

// Containers は、実行後レポートのためにすべてのコンテナを返します。
func (c *Converter) Containers() []*Container {
	return c.containers
}

// Run は、登録されたすべてのコンテナを処理します。
// 失敗が残っている間は固定間隔でバッチを再試行し (成功済みは再処理しない)、
// 最終的に失敗したコンテナのエラーを結合して返します。全件成功なら nil です。
func (c *Converter) Run(ctx context.Context) error {
	if len(c.containers) == 0 {
		return fmt.Errorf("処理対象のレシピが一つも登録されていません")
	}

	// 1. 出力先フォルダーの準備
	if err := os.MkdirAll(c.target, folderMode); err != nil {
		return fmt.Errorf("出力先フォルダー %s の作成に失敗しました: %w", c.target, err)
	}

	// 2. バッチ処理本体: 未成功のコンテナのみを1件ずつ処理する
	processPending := func() error {
		var errs []error
		for _, container := range c.containers {
			if container.Succeeded {
				continue
			}

			if err := c.processOne(ctx, container); err != nil {
				container.Err = err
				errs = append(errs, fmt.Errorf("%s の処理に失敗しました: %w", container.Label, err))
				log.Printf("%s の処理に失敗しました: %v", container.Label, err)
				continue
			}

			container.Succeeded = true
			container.Err = nil
		}
		return errors.Join(errs...)
	}

	// 3. 固定間隔でのバッチ再試行 (バックオフなし)
	retryCfg := retry.Config{MaxRetries: c.maxRounds, Interval: c.pause}
	runErr := retry.Do(ctx, retryCfg, "レシピ変換バッチ", processPending,
		func(err error) bool { return true }) // バッチレベルではエラー種別を区別しない

	// 4. 失敗URLファイルの更新 (結果にかかわらず実行)
	if err := c.updateFailedURLsFile(filepath.Join(c.target, FailedURLsFilename)); err != nil {
		log.Printf("失敗URLファイルの更新に失敗しました: %v", err)
	}

	// 5. 最終結果の集約
	if runErr == nil {
		return nil
	}
	var failures []error
	for _, container := range c.containers {
		if !container.Succeeded && container.Err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", container.Label, container.Err))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%d 件のレシピ処理に失敗しました: %w", len(failures), errors.Join(failures...))
}

// processOne は、1件のコンテナを fetch → scrape → parse → save の順で処理します。
// 保存途中の失敗では作成済みフォルダーを巻き戻します。
func (c *Converter) processOne(ctx context.Context, container *Container) error {
	// 1. HTMLの取得 (生HTML入力の場合はスキップ)
	htmlBytes := container.RawHTML
	if container.URL != "" {
		fetched, err := c.fetcher.FetchHTML(ctx, container.URL)
		if err != nil {
			return fmt.Errorf("ページの取得に失敗しました: %w", err)
		}
		htmlBytes = fetched
	}

	// 2. レシピ構造化データの抽出
	raw, err := c.scraper.ScrapeHTML(htmlBytes, container.URL)
	if err != nil {
		return err
	}
	container.Raw = raw

	// 3. ホスト別パーサーによる正規化
	parser := parsers.ForURL(container.URL)
	parsed, err := parser.Parse(raw)
	if err != nil {
		return err
	}
	container.Parsed = parsed
	log.Printf("'%s' (著者: '%s') のレシピを受信しました", parsed.Name, parsed.Author)

	// 4. 出力フォルダーの作成 (衝突時はサフィックスを付与)
	folder, err := c.createTargetFolder(parsed)
	if err != nil {
		return err
	}
	container.TargetFolder = folder

	// 5. recipe.json と画像の保存。失敗時はフォルダーごと巻き戻す
	if err := c.saveRecipeJSON(parsed, folder); err != nil {
		c.rollback(container)
		return err
	}
	if err := c.saveImage(ctx, parsed, folder); err != nil {
		c.rollback(container)
		return err
	}

	return nil
}

// createTargetFolder は、レシピのフォルダー名で出力フォルダーを作成します。
// 既存フォルダーと衝突した場合は _2, _3, ... のサフィックスで未使用の名前を探します。
func (c *Converter) createTargetFolder(parsed *recipe.RecipeForCookBook) (string, error) {
	base := parsed.FolderName()
	if base == "" {
		return "", fmt.Errorf("レシピ名が空のためフォルダー名を導出できません")
	}

	name := base
	for i := 2; ; i++ {
		path := filepath.Join(c.target, name)

		// os.Mkdir は既存フォルダーでは失敗するため、存在チェックと作成が1回で済む
		err := os.Mkdir(path, folderMode)
		if err == nil {
			return path, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("フォルダー %s の作成に失敗しました: %w", path, err)
		}

		next := fmt.Sprintf("%s_%d", base, i)
		log.Printf("フォルダー %s は既に存在するため、'%s' を試します", path, next)
		name = next
	}
}

// saveRecipeJSON は、レシピデータを recipe.json として保存します。
func (c *Converter) saveRecipeJSON(parsed *recipe.RecipeForCookBook, folder string) error {
	data, err := parsed.EncodeJSON()
	if err != nil {
		return err
	}

	path := filepath.Join(folder, RecipeFilename)
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("recipe.json の書き込みに失敗しました: %w", err)
	}

	log.Printf("レシピを %s に保存しました", path)
	return nil
}

// saveImage は、レシピ画像をダウンロードして full.jpg として保存します。
// 画像URLを持たないレシピではエラーとせずスキップします。
func (c *Converter) saveImage(ctx context.Context, parsed *recipe.RecipeForCookBook, folder string) error {
	if parsed.Image == "" {
		log.Printf("'%s' は画像URLを持たないため、画像の保存をスキップします", parsed.Name)
		return nil
	}

	data, err := c.fetcher.FetchBytes(ctx, parsed.Image)
	if err != nil {
		return fmt.Errorf("画像のダウンロードに失敗しました (URL: %s): %w", parsed.Image, err)
	}

	path := filepath.Join(folder, ImageFilename)
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("画像の書き込みに失敗しました: %w", err)
	}

	log.Printf("画像を %s に保存しました", path)
	return nil
}

// rollback は、処理途中で失敗したコンテナの作成済みフォルダーを削除します。
func (c *Converter) rollback(container *Container) {
	if container.TargetFolder == "" {
		return
	}
	if err := os.RemoveAll(container.TargetFolder); err != nil {
		log.Printf("フォルダー %s の巻き戻しに失敗しました: %v", container.TargetFolder, err)
	}
	container.TargetFolder = ""
}
