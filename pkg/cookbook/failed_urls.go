package cookbook

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/shouni/go-web-cookbook/pkg/urltext"
)

// failedURLs は、今回の実行で最終的に失敗したコンテナのURLを返します。
// 生HTML入力のコンテナはURLを持たないため記録対象外です。
func (c *Converter) failedURLs() []string {
	var urls []string
	for _, container := range c.containers {
		if !container.Succeeded && container.URL != "" {
			urls = append(urls, container.URL)
		}
	}
	return urls
}

// succeededURLs は、今回の実行で成功したコンテナのURLを返します。
func (c *Converter) succeededURLs() []string {
	var urls []string
	for _, container := range c.containers {
		if container.Succeeded && container.URL != "" {
			urls = append(urls, container.URL)
		}
	}
	return urls
}

// updateFailedURLsFile は、失敗URLファイルを更新します。
// 内容は「過去に記録されたURL ∪ 今回の失敗URL − 今回の成功URL」で、
// 重複を除き、初出順を保って1行1URLで書き出します。
func (c *Converter) updateFailedURLsFile(path string) error {
	// 1. 既存ファイルから過去の失敗URLを読み取る (ファイルがなければ空)
	var previous []string
	if contents, err := os.ReadFile(path); err == nil {
		previous = urltext.ExtractURLs(string(contents))
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("失敗URLファイル %s の読み取りに失敗しました: %w", path, err)
	}

	// 2. 成功URLの集合 (ファイルから取り除く対象)
	succeeded := make(map[string]struct{})
	for _, url := range c.succeededURLs() {
		succeeded[url] = struct{}{}
	}

	// 3. 和集合から成功分を除き、初出順で重複排除
	seen := make(map[string]struct{})
	var merged []string
	for _, url := range append(previous, c.failedURLs()...) {
		if _, ok := succeeded[url]; ok {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		merged = append(merged, url)
	}

	// 4. 記録すべきURLがなく、ファイルも存在しない場合は何もしない
	if len(merged) == 0 {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
	}

	var builder strings.Builder
	for _, url := range merged {
		builder.WriteString(url)
		builder.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(builder.String()), fileMode); err != nil {
		return fmt.Errorf("失敗URLファイル %s の書き込みに失敗しました: %w", path, err)
	}

	if len(merged) > 0 {
		log.Printf("失敗URL %d 件を %s に記録しました", len(merged), path)
	}
	return nil
}
