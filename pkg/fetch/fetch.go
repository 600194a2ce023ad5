package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"golang.org/x/net/html/charset"
)

// ----------------------------------------------------------------------
// 定数とインターフェース
// ----------------------------------------------------------------------

const (
	// DefaultHTTPTimeout は、デフォルトのHTTPタイムアウトです。
	DefaultHTTPTimeout = 10 * time.Second

	// DefaultUserAgent は、ヘッダーソースが指定されない場合のUser-Agentです。
	DefaultUserAgent = "Mozilla/5.0"
)

// Doer は、標準の *http.Client.Do()と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HeaderSource は、リクエスト先のホスト名から付与すべきHTTPヘッダーを返す関数です。
// ホストごとのパーサー定義 (pkg/parsers) がこの形で注入されます。
type HeaderSource func(host string) map[string]string

// ----------------------------------------------------------------------
// 設定とコンストラクタ
// ----------------------------------------------------------------------

// Config はClientの構築パラメータです。
type Config struct {
	Timeout    time.Duration
	MaxRetries uint64
	Interface  string       // 送信元IPを束縛するネットワークインターフェース名 (空なら束縛なし)
	Headers    HeaderSource // ホスト別リクエストヘッダー (nilならUser-Agentのみ)
}

// Client は httpkit.Client をラップし、ヘッダー注入と送信元インターフェース束縛をカプセル化します。
// httpkit.Client を埋め込むことで、Fetcher などのインターフェースを自動的に満たします。
type Client struct {
	*httpkit.Client // httpkit.Client を埋め込み、そのすべてのメソッドを継承
}

// New は新しいClientを初期化します。
// 内部で httpkit.New を呼び出し、リトライ付きの転送層はhttpkitに委譲します。
func New(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPTimeout
	}

	base, err := baseHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	kitClient := httpkit.New(
		cfg.Timeout,
		httpkit.WithMaxRetries(cfg.MaxRetries),
		httpkit.WithHTTPClient(&headerDoer{
			base:    base,
			headers: cfg.Headers,
		}),
	)

	return &Client{Client: kitClient}, nil
}

// FetchHTML は URL からHTMLを取得し、文字コードをUTF-8にデコードして返します。
// リトライロジックは httpkit.Client が処理します。
func (c *Client) FetchHTML(ctx context.Context, url string) ([]byte, error) {
	body, err := c.Client.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	// メタ情報・BOMから文字コードを推定し、UTF-8に正規化する
	// Content-Type を渡すと常に判定が固定されるため、本文からの推定に任せる
	reader, err := charset.NewReader(bytes.NewReader(body), "")
	if err != nil {
		return nil, fmt.Errorf("文字コードの判定に失敗しました (URL: %s): %w", url, err)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("HTMLのデコードに失敗しました (URL: %s): %w", url, err)
	}
	return decoded, nil
}

// IsNonRetryableError は与えられたエラーが非リトライ対象のHTTPエラーであるかを判断します。
// httpkit の同名関数を呼び出します。
func IsNonRetryableError(err error) bool {
	return httpkit.IsNonRetryableError(err)
}

// ----------------------------------------------------------------------
// ヘッダー注入 Doer
// ----------------------------------------------------------------------

// headerDoer は、リクエスト実行前にホスト別ヘッダーを付与する Doer の実装です。
type headerDoer struct {
	base    Doer
	headers HeaderSource
}

// Do は、ヘッダーを付与してから下層のクライアントに委譲します。
func (d *headerDoer) Do(req *http.Request) (*http.Response, error) {
	if d.headers != nil {
		for key, value := range d.headers(req.URL.Hostname()) {
			req.Header.Set(key, value)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", DefaultUserAgent)
	}
	return d.base.Do(req)
}

// ----------------------------------------------------------------------
// 送信元インターフェース束縛
// ----------------------------------------------------------------------

// baseHTTPClient は、設定に応じた下層の *http.Client を構築します。
func baseHTTPClient(cfg Config) (*http.Client, error) {
	if cfg.Interface == "" {
		return &http.Client{Timeout: cfg.Timeout}, nil
	}

	localAddr, err := localAddrForInterface(cfg.Interface)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{
		Timeout:   cfg.Timeout,
		LocalAddr: localAddr,
	}
	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}, nil
}

// localAddrForInterface は、指定されたネットワークインターフェースの最初の利用可能なIPを
// TCPの送信元アドレスとして解決します。
func localAddrForInterface(name string) (*net.TCPAddr, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("ネットワークインターフェース %s が見つかりません: %w", name, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("インターフェース %s のアドレス取得に失敗しました: %w", name, err)
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLinkLocalUnicast() {
			continue
		}
		return &net.TCPAddr{IP: ipNet.IP}, nil
	}

	return nil, fmt.Errorf("インターフェース %s に利用可能なIPアドレスがありません", name)
}
