package feed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/shouni/go-web-cookbook/pkg/feed"
	"github.com/stretchr/testify/assert"
)

// MockFetcher はテスト用の feed.Fetcher インターフェースの実装です。
type MockFetcher struct {
	body       string
	fetchError error
}

func (m *MockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if m.fetchError != nil {
		return nil, m.fetchError
	}
	return []byte(m.body), nil
}

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Recipe Feed</title>
    <link>https://example.com</link>
    <item><title>Pasta</title><link>https://example.com/recipes/pasta</link></item>
    <item><title>Soup</title><link>https://example.com/recipes/soup</link></item>
    <item><title>No Link</title></item>
  </channel>
</rss>`

func TestFetchAndParse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		parser := feed.NewParser(&MockFetcher{body: sampleRSS})

		parsed, err := parser.FetchAndParse(context.Background(), "https://example.com/feed.xml")
		assert.NoError(t, err)
		assert.Equal(t, "Recipe Feed", parsed.Title)
		assert.Len(t, parsed.Items, 3)
	})

	t.Run("fetch_error", func(t *testing.T) {
		parser := feed.NewParser(&MockFetcher{fetchError: errors.New("network down")})

		parsed, err := parser.FetchAndParse(context.Background(), "https://example.com/feed.xml")
		assert.Error(t, err)
		assert.Nil(t, parsed)
		assert.Contains(t, err.Error(), "フィードの取得失敗")
	})

	t.Run("parse_error", func(t *testing.T) {
		parser := feed.NewParser(&MockFetcher{body: "this is not a feed"})

		parsed, err := parser.FetchAndParse(context.Background(), "https://example.com/feed.xml")
		assert.Error(t, err)
		assert.Nil(t, parsed)
		assert.Contains(t, err.Error(), "RSSフィードのパース失敗")
	})
}

func TestFeedAdapter_GetLinks(t *testing.T) {
	t.Run("extracts_item_links", func(t *testing.T) {
		parser := feed.NewParser(&MockFetcher{body: sampleRSS})
		parsed, err := parser.FetchAndParse(context.Background(), "https://example.com/feed.xml")
		assert.NoError(t, err)

		links := feed.NewFeedAdapter(parsed).GetLinks()

		// リンクを持たないアイテムは除外される
		assert.Equal(t, []string{
			"https://example.com/recipes/pasta",
			"https://example.com/recipes/soup",
		}, links)
	})

	t.Run("nil_feed_returns_empty", func(t *testing.T) {
		adapter := feed.NewFeedAdapter(nil)
		assert.Empty(t, adapter.GetLinks())
	})

	t.Run("empty_items_returns_empty", func(t *testing.T) {
		adapter := feed.NewFeedAdapter(&gofeed.Feed{Title: "empty"})
		assert.Empty(t, adapter.GetLinks())
	})
}

func TestGetAllLinks(t *testing.T) {
	assert.Empty(t, feed.GetAllLinks(nil))

	adapter := feed.NewFeedAdapter(&gofeed.Feed{
		Items: []*gofeed.Item{{Link: "https://example.com/r/1"}},
	})
	assert.Equal(t, []string{"https://example.com/r/1"}, feed.GetAllLinks(adapter))
}
