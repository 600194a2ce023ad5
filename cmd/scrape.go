package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/go-web-cookbook/pkg/cookbook"
	"github.com/shouni/go-web-cookbook/pkg/urltext"
)

// コマンドラインフラグ変数を定義
var (
	scrapeURLs   []string // --url フラグで受け取るレシピURL (繰り返し指定可)
	scrapeFiles  []string // --file フラグで受け取る入力ファイル (URLリストまたは生HTML、繰り返し指定可)
	scrapeTarget string   // --target フラグで受け取る出力先フォルダー
)

// defaultTargetFolder は、すべてのレシピを保存するデフォルトの出力先です。
const defaultTargetFolder = "parsed_recipes"

// rawPage は、入力ファイルから読み込んだ生HTMLを表します。
type rawPage struct {
	label string
	html  []byte
}

// collectFromFiles は、--file で指定されたファイルをURLリストと生HTMLに振り分けます。
func collectFromFiles(files []string) (urls []string, pages []rawPage, err error) {
	for _, file := range files {
		contents, readErr := os.ReadFile(file)
		if readErr != nil {
			return nil, nil, fmt.Errorf("ファイル %s の読み取りに失敗しました: %w", file, readErr)
		}

		text := string(contents)
		log.Printf("%s からURLを抽出します", file)
		found := urltext.ExtractURLs(text)
		log.Printf("%s から %d 件のURLが見つかりました", file, len(found))

		if len(found) > 0 {
			urls = append(urls, found...)
			continue
		}

		// URLが1件もない場合、HTMLドキュメントなら生HTML入力として扱う
		if urltext.LooksLikeHTML(text) {
			log.Printf("%s を生HTML入力として処理します", file)
			pages = append(pages, rawPage{label: file, html: contents})
			continue
		}

		log.Printf("%s にはURLもHTMLも見つかりませんでした。スキップします", file)
	}
	return urls, pages, nil
}

// readURLsFromStdin は、標準入力からURLを一行ずつ読み込みます。
func readURLsFromStdin() ([]string, error) {
	log.Println("URLが指定されていないため、標準入力からURLを読み込みます (Ctrl+DまたはEOFで終了)...")

	var urls []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if url := strings.TrimSpace(scanner.Text()); url != "" {
			urls = append(urls, url)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("標準入力の読み取りエラー: %w", err)
	}
	return urls, nil
}

// runCookbookPipeline は、URL・生HTMLのリストをConverterに登録して実行し、結果を報告します。
// scrape と feed の両コマンドで共有されるメインロジックです。
func runCookbookPipeline(urls []string, pages []rawPage, targetFolder string) error {

	// 1. 依存性の初期化
	fetcher := GetGlobalFetcher()
	if fetcher == nil {
		return fmt.Errorf("HTTPクライアントが初期化されていません。rootコマンドのPreRunを確認してください")
	}

	converter, err := cookbook.NewConverter(
		fetcher,
		targetFolder,
		cookbook.WithMaxRounds(uint64(max(Flags.Rounds, 0))),
	)
	if err != nil {
		return fmt.Errorf("Converterの初期化エラー: %w", err)
	}

	// 2. URLのスキーム補完とバリデーション
	for _, rawURL := range urls {
		processedURL, err := ensureScheme(rawURL)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー (%s): %w", rawURL, err)
		}
		converter.AddURLs(processedURL)
	}
	for _, page := range pages {
		converter.AddRawHTML(page.label, page.html)
	}

	// 3. 全体処理のコンテキストを設定
	itemCount := len(urls) + len(pages)
	timeout := overallTimeout(itemCount)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Printf("レシピ変換開始 (対象: %d 件, 出力先: %s, 全体タイムアウト: %s)\n",
		itemCount, targetFolder, timeout)

	// 4. メインロジックの実行
	runErr := converter.Run(ctx)

	// 5. 結果の出力
	fmt.Println("--- レシピ変換結果 ---")

	successCount := 0
	errorCount := 0
	for i, container := range converter.Containers() {
		if container.Succeeded {
			successCount++
			fmt.Printf("✅ [%d] %s\n", i+1, container.Label)
			fmt.Printf("     保存先: %s\n", container.TargetFolder)
		} else {
			errorCount++
			fmt.Printf("❌ [%d] %s\n", i+1, container.Label)
			fmt.Printf("     エラー: %v\n", container.Err)
		}
	}

	fmt.Println("-----------------------")
	fmt.Printf("完了: 成功 %d 件, 失敗 %d 件\n", successCount, errorCount)

	return runErr
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "レシピURLを取得し、recipe.json と画像をフォルダーごとに保存します",
	Long: `--url フラグまたは --file フラグ (URLリストか生HTMLのファイル) でレシピを受け取り、
構造化データを抽出して <出力先>/<レシピ名>/recipe.json と full.jpg に保存します。
どちらも指定されない場合は、標準入力からURLを一行ずつ読み込みます。`,
	Args: cobra.NoArgs, // 位置引数は取らない

	RunE: func(cmd *cobra.Command, args []string) error {

		// 1. 処理対象の決定 (フラグ優先)
		urls := append([]string{}, scrapeURLs...)

		fileURLs, pages, err := collectFromFiles(scrapeFiles)
		if err != nil {
			return err
		}
		urls = append(urls, fileURLs...)

		// 2. フラグ・ファイルのいずれにも入力がない場合は標準入力に落ちる
		if len(urls) == 0 && len(pages) == 0 {
			stdinURLs, err := readURLsFromStdin()
			if err != nil {
				return err
			}
			urls = stdinURLs
		}

		if len(urls) == 0 && len(pages) == 0 {
			return fmt.Errorf("処理対象のレシピが一つも指定されていません")
		}

		// 3. メインロジックの実行
		return runCookbookPipeline(urls, pages, scrapeTarget)
	},
}

func init() {
	// --url フラグ: レシピURL (繰り返し指定可)
	scrapeCmd.Flags().StringArrayVarP(&scrapeURLs, "url", "u", nil,
		"取得対象のレシピURL (繰り返し指定可)")

	// --file フラグ: URLリストまたは生HTMLのファイル (繰り返し指定可)
	scrapeCmd.Flags().StringArrayVarP(&scrapeFiles, "file", "f", nil,
		"レシピURLを含むファイル、または保存済みレシピページのHTMLファイル (繰り返し指定可)")

	// --target フラグ: 出力先フォルダー
	scrapeCmd.Flags().StringVarP(&scrapeTarget, "target", "t", defaultTargetFolder,
		"すべての出力レシピを保存するフォルダー")
}
