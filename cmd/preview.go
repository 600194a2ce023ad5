package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-web-cookbook/pkg/parsers"
	"github.com/shouni/go-web-cookbook/pkg/scrape"
)

var previewURL string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "1件のレシピURLを取得・抽出し、recipe.json の内容を表示します",
	Long: `指定されたURLまたは標準入力からレシピページを取得し、抽出・正規化した結果の
JSONを標準出力に表示します。ファイルへの書き込みは行いません。`,
	RunE: func(cmd *cobra.Command, args []string) error {

		// 1. 処理対象URLの決定 (フラグ優先)
		urlToProcess := previewURL
		if urlToProcess == "" {
			log.Println("URLが指定されていないため、標準入力からURLを読み込みます...")
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("処理するURLを入力してください: ")

			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("標準入力の読み取りエラー: %w", err)
				}
				return fmt.Errorf("URLが入力されていません")
			}
			urlToProcess = scanner.Text()
		}

		// 2. URLのスキーム補完とバリデーション
		processedURL, err := ensureScheme(urlToProcess)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		previewTimeout := overallTimeout(1)
		log.Printf("処理対象URL: %s (全体タイムアウト: %s)\n", processedURL, previewTimeout)

		// 3. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントが初期化されていません。rootコマンドのPreRunを確認してください")
		}

		scraper, err := scrape.NewScraper(fetcher)
		if err != nil {
			return fmt.Errorf("Scraperの初期化エラー: %w", err)
		}

		// 4. メインロジックの実行
		ctx, cancel := context.WithTimeout(context.Background(), previewTimeout)
		defer cancel()

		raw, err := scraper.FetchAndScrape(ctx, processedURL)
		if err != nil {
			return fmt.Errorf("レシピ抽出エラー (URL: %s): %w", processedURL, err)
		}

		parsed, err := parsers.ForURL(processedURL).Parse(raw)
		if err != nil {
			return fmt.Errorf("レシピ正規化エラー (URL: %s): %w", processedURL, err)
		}

		data, err := parsed.EncodeJSON()
		if err != nil {
			return err
		}

		// 5. 結果の出力
		fmt.Printf("--- '%s' (著者: '%s') ---\n", parsed.Name, parsed.Author)
		fmt.Print(string(data))

		return nil
	},
}

func init() {
	// previewURL 変数にフラグのポインタをバインドします
	previewCmd.Flags().StringVarP(&previewURL, "url", "u", "", "抽出対象のレシピURL")
}
