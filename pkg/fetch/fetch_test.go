package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shouni/go-web-cookbook/pkg/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetchHTML_HeaderInjection は、ホスト別ヘッダーがリクエストに付与されることを検証します。
func TestFetchHTML_HeaderInjection(t *testing.T) {
	var receivedHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeaders = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><p>ok</p></body></html>"))
	}))
	defer server.Close()

	headers := func(host string) map[string]string {
		return map[string]string{
			"User-Agent":      "custom-agent/1.0",
			"Accept-Language": "nl,en-US;q=0.7",
		}
	}

	client, err := fetch.New(fetch.Config{Headers: headers})
	require.NoError(t, err)

	body, err := client.FetchHTML(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, string(body), "<p>ok</p>")
	assert.Equal(t, "custom-agent/1.0", receivedHeaders.Get("User-Agent"))
	assert.Equal(t, "nl,en-US;q=0.7", receivedHeaders.Get("Accept-Language"))
}

// TestFetchHTML_DefaultUserAgent は、ヘッダーソースなしでもUser-Agentが設定されることを検証します。
func TestFetchHTML_DefaultUserAgent(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	client, err := fetch.New(fetch.Config{})
	require.NoError(t, err)

	_, err = client.FetchHTML(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, fetch.DefaultUserAgent, receivedUA)
}

// TestFetchHTML_CharsetDecoding は、UTF-8以外のページがUTF-8へ正規化されることを検証します。
func TestFetchHTML_CharsetDecoding(t *testing.T) {
	// ISO-8859-1 の "café" (0xE9 = é)
	latin1Body := []byte("<html><head><meta charset=\"iso-8859-1\"></head><body><p>caf\xe9</p></body></html>")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write(latin1Body)
	}))
	defer server.Close()

	client, err := fetch.New(fetch.Config{})
	require.NoError(t, err)

	body, err := client.FetchHTML(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "café")
}

// TestNew_UnknownInterface は、存在しないインターフェース名がエラーになることを検証します。
func TestNew_UnknownInterface(t *testing.T) {
	client, err := fetch.New(fetch.Config{Interface: "no-such-interface-0"})
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "no-such-interface-0")
}
