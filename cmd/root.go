package cmd

import (
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-web-cookbook/pkg/cookbook"
	"github.com/shouni/go-web-cookbook/pkg/fetch"
	"github.com/shouni/go-web-cookbook/pkg/parsers"
)

// --- グローバル定数 ---

const (
	appName           = "web-cookbook"
	defaultTimeoutSec = 10 // 秒
	defaultMaxRetries = 5  // HTTPリクエストのデフォルトリトライ回数
	defaultRounds     = cookbook.DefaultMaxRounds

	// 全体処理のタイムアウト定数 (各サブコマンドで利用)
	DefaultOverallTimeout = 20 * time.Second
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int    // --timeout HTTPタイムアウト
	MaxRetries int    // --max-retries HTTPリトライ回数
	Rounds     int    // --rounds バッチ全体の再試行回数
	Interface  string // --interface 送信元IPを束縛するネットワークインターフェース名
}

var Flags AppFlags               // アプリケーション固有フラグにアクセスするためのグローバル変数
var globalFetcher *fetch.Client  // 全サブコマンドで共有するHTTPクライアント

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		defaultTimeoutSec,
		"HTTPリクエストのタイムアウト時間（秒）",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.MaxRetries,
		"max-retries",
		defaultMaxRetries,
		"HTTPリクエストのリトライ最大回数",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.Rounds,
		"rounds",
		defaultRounds,
		"失敗したレシピに対するバッチ全体の再試行回数",
	)
	rootCmd.PersistentFlags().StringVarP(
		&Flags.Interface,
		"interface",
		"i",
		"",
		"送信元IPを束縛するネットワークインターフェース名 (省略時は束縛なし)",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {

	timeout := time.Duration(Flags.TimeoutSec) * time.Second

	// clibase.Flags の利用
	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。", timeout)
		log.Printf("HTTPクライアントのリトライ回数を設定しました (MaxRetries: %d)。", Flags.MaxRetries)
		if Flags.Interface != "" {
			log.Printf("送信元インターフェースを設定しました (Interface: %s)。", Flags.Interface)
		}
	}

	// 共有フェッチャーの初期化。ホスト別ヘッダーはパーサー定義から注入する
	client, err := fetch.New(fetch.Config{
		Timeout:    timeout,
		MaxRetries: uint64(Flags.MaxRetries),
		Interface:  Flags.Interface,
		Headers:    parsers.HeadersForHost,
	})
	if err != nil {
		return err
	}
	globalFetcher = client

	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() *fetch.Client {
	return globalFetcher
}

// overallTimeout は、コマンド全体の処理時間の上限を計算します。
// クライアントタイムアウトの2倍を1件あたりの上限とし、件数と再試行ラウンド数でスケールさせます。
func overallTimeout(itemCount int) time.Duration {
	perItem := time.Duration(Flags.TimeoutSec*2) * time.Second
	if Flags.TimeoutSec == 0 {
		// 0秒が設定された場合の防御的な設定
		perItem = DefaultOverallTimeout
	}

	rounds := time.Duration(Flags.Rounds + 1)
	pauses := time.Duration(Flags.Rounds) * cookbook.DefaultRoundPause
	return perItem*time.Duration(max(itemCount, 1))*rounds + pauses
}

// --- エントリポイント ---

// Execute は、rootCmd を実行するメイン関数です。clibaseのExecuteを使用する。
func Execute() {
	// clibase.Execute を使用して、アプリケーションの初期化、フラグ設定、サブコマンドの登録を一括で行う
	clibase.Execute(
		appName,
		addAppPersistentFlags, // カスタムフラグの追加コールバック
		initAppPreRunE,        // カスタムPersistentPreRunEコールバック
		// サブコマンドのリスト
		scrapeCmd,
		feedCmd,
		previewCmd,
	)
	// clibase.Execute() の中で os.Exit(1) が処理されるため、ここでは不要
}
