package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, uint64(DefaultMaxRetries), cfg.MaxRetries, "MaxRetries should match DefaultMaxRetries constant.")
	require.Equal(t, DefaultInterval, cfg.Interval, "Interval should match constant.")
}

func TestDo(t *testing.T) {
	// テスト用の高速な設定
	testCfg := Config{MaxRetries: 3, Interval: 1 * time.Millisecond}
	opName := "test_operation"

	// 予期されるエラーメッセージを実装に合わせて正確に生成
	maxRetriesErrText := fmt.Sprintf("%sに失敗しました: 最大リトライ回数 (%d回) に到達。最終エラー: 一時的なエラーが発生、リトライします: retryable error", opName, testCfg.MaxRetries)
	permanentErrText := "致命的なエラーのためリトライを中止: fatal error"

	tests := []struct {
		name          string
		ctx           context.Context
		cfg           Config
		operation     Operation
		shouldRetry   ShouldRetryFunc
		expectedError string
		exactMatch    bool
	}{
		{
			name:          "successful operation",
			ctx:           context.Background(),
			cfg:           testCfg,
			operation:     func() error { return nil },
			shouldRetry:   func(err error) bool { return false },
			expectedError: "",
		},
		{
			name: "retryable error and success within max retries",
			ctx:  context.Background(),
			cfg:  testCfg,
			operation: func() Operation {
				attempt := 0
				return func() error {
					attempt++
					if attempt < 3 {
						return errors.New("retryable error")
					}
					return nil
				}
			}(),
			shouldRetry:   func(err error) bool { return err.Error() == "retryable error" },
			expectedError: "",
		},
		{
			name:          "permanent error stops retrying",
			ctx:           context.Background(),
			cfg:           testCfg,
			operation:     func() error { return errors.New("fatal error") },
			shouldRetry:   func(err error) bool { return false },
			expectedError: permanentErrText,
			exactMatch:    true,
		},
		{
			name:          "context canceled",
			ctx:           func() context.Context { ctx, cancel := context.WithCancel(context.Background()); cancel(); return ctx }(),
			cfg:           testCfg,
			operation:     func() error { return errors.New("some error") },
			shouldRetry:   func(err error) bool { return true },
			expectedError: "test_operationに失敗しました: コンテキストタイムアウト/キャンセル: context canceled",
		},
		{
			name:          "max retries exceeded",
			ctx:           context.Background(),
			cfg:           testCfg,
			operation:     func() error { return errors.New("retryable error") },
			shouldRetry:   func(err error) bool { return true },
			expectedError: maxRetriesErrText,
			exactMatch:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Do(tt.ctx, tt.cfg, opName, tt.operation, tt.shouldRetry)

			if tt.expectedError != "" {
				require.Error(t, err)
				if tt.exactMatch {
					require.Equal(t, tt.expectedError, err.Error())
				} else {
					// コンテキストエラーは元のエラーをラップしているため、Containsを使用
					require.Contains(t, err.Error(), tt.expectedError)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestDo_ConstantInterval は、リトライ間隔が一定であることを検証します。
func TestDo_ConstantInterval(t *testing.T) {
	cfg := Config{MaxRetries: 2, Interval: 20 * time.Millisecond}

	var timestamps []time.Time
	op := func() error {
		timestamps = append(timestamps, time.Now())
		return errors.New("retryable error")
	}

	err := Do(context.Background(), cfg, "interval_check", op, func(error) bool { return true })
	require.Error(t, err)
	require.Len(t, timestamps, 3) // 初回 + リトライ2回

	// 2回の待機がいずれもほぼ設定値であること (指数的に増加しないこと)
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		require.GreaterOrEqual(t, gap, cfg.Interval)
		require.Less(t, gap, 10*cfg.Interval)
	}
}
