package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/shouni/go-web-cookbook/pkg/feed"
)

// コマンドラインフラグ変数を定義
var (
	feedURL    string // --url フラグで受け取るフィードURL
	feedTarget string // --target フラグで受け取る出力先フォルダー
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "RSS/Atomフィードからレシピリンクを収集し、まとめて保存します",
	Long: `指定されたURLからRSSまたはAtomフィードを取得し、各記事のリンクをレシピページとして
取得・抽出し、<出力先>/<レシピ名>/ 以下に recipe.json と full.jpg を保存します。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {

		// 1. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}
		parser := feed.NewParser(fetcher)

		// 2. URLのスキーム補完とフィードの取得
		processedURL, err := ensureScheme(feedURL)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		feedTimeout := overallTimeout(1)
		ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
		defer cancel()

		log.Printf("処理対象フィードURL: %s (タイムアウト: %s)", processedURL, feedTimeout)

		parsedFeed, err := parser.FetchAndParse(ctx, processedURL)
		if err != nil {
			return fmt.Errorf("フィード解析パイプラインの実行エラー: %w", err)
		}

		// 3. フィードからレシピリンクを抽出
		links := feed.GetAllLinks(feed.NewFeedAdapter(parsedFeed))
		if len(links) == 0 {
			return fmt.Errorf("フィード %s に記事リンクが一つもありません", processedURL)
		}

		fmt.Printf("--- フィード解析結果 ---\n")
		fmt.Printf("フィードタイトル: %s\n", parsedFeed.Title)
		fmt.Printf("レシピリンク数: %d\n", len(links))
		fmt.Println("-----------------------")

		// 4. メインロジックの実行
		return runCookbookPipeline(links, nil, feedTarget)
	},
}

func init() {
	// サブコマンド固有のフラグ定義
	feedCmd.Flags().StringVarP(&feedURL, "url", "u", "", "解析対象のフィード (RSS/Atom) URL")
	feedCmd.Flags().StringVarP(&feedTarget, "target", "t", defaultTargetFolder,
		"すべての出力レシピを保存するフォルダー")

	// URLフラグを必須にする
	feedCmd.MarkFlagRequired("url")
}
