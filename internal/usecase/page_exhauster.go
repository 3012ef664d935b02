package usecase

import (
	"errors"
	"time"

	"github.com/nrad-K/go-job-watcher/internal/config"
	"github.com/nrad-K/go-job-watcher/internal/infra"
	"github.com/nrad-K/go-job-watcher/internal/logger"
)

// ExhaustResultは、一覧ページの読み込みで実行した操作の回数です。
type ExhaustResult struct {
	Clicks  int
	Scrolls int
}

// PageExhausterは、一覧ページを「もっと見る」のクリックとスクロールで読み切ります。
type PageExhauster struct {
	cfg    config.ExhaustConfig
	logger logger.AppLogger
	pause  func(time.Duration)
}

// NewPageExhausterは、PageExhausterを生成します。pauseがnilの場合はtime.Sleepを使います。
func NewPageExhauster(cfg config.ExhaustConfig, logger logger.AppLogger, pause func(time.Duration)) *PageExhauster {
	if pause == nil {
		pause = time.Sleep
	}
	return &PageExhauster{
		cfg:    cfg,
		logger: logger,
		pause:  pause,
	}
}

// Exhaustは、クリックフェーズとスクロールフェーズを順に実行します。
// どちらのフェーズの失敗もログに残すだけで、呼び出し元には返しません。
func (e *PageExhauster) Exhaust(client infra.BrowserClient) ExhaustResult {
	var result ExhaustResult
	if e.cfg.Click.Enabled {
		result.Clicks = e.clickUntilExhausted(client)
	}
	if e.cfg.Scroll.Enabled {
		result.Scrolls = e.scrollUntilStable(client)
	}
	e.logger.Info("一覧ページの読み込みが完了しました", "clicks", result.Clicks, "scrolls", result.Scrolls)
	return result
}

// clickUntilExhaustedは、ボタンが利用できなくなるか試行回数に達するまでクリックします。
// 遮られたクリックは試行回数に数えず、待機してから同じ試行をやり直します。
func (e *PageExhauster) clickUntilExhausted(client infra.BrowserClient) int {
	cfg := e.cfg.Click
	wait := time.Duration(cfg.WaitSeconds) * time.Second

	clicks := 0
	intercepts := 0
	for clicks < cfg.MaxAttempts {
		err := client.ClickWhenReady(cfg.Selector, wait)
		switch {
		case err == nil:
			clicks++
			intercepts = 0
			e.logger.Debug("「もっと見る」をクリックしました", "attempt", clicks)
			e.pause(time.Duration(cfg.PauseMillis) * time.Millisecond)

		case errors.Is(err, infra.ErrClickIntercepted):
			intercepts++
			if intercepts > cfg.MaxIntercepts {
				e.logger.Warn("クリックが繰り返し遮られたため中断します", "attempt", clicks+1, "intercepts", intercepts)
				return clicks
			}
			e.logger.Debug("クリックが遮られたため再試行します", "attempt", clicks+1, "intercepts", intercepts)
			e.pause(time.Duration(cfg.InterceptPauseMs) * time.Millisecond)

		case errors.Is(err, infra.ErrControlUnavailable):
			e.logger.Info("「もっと見る」が見つからないため、すべての求人を読み込んだと判断します", "clicks", clicks)
			return clicks

		default:
			e.logger.Error("「もっと見る」のクリックに失敗しました", "error", err)
			return clicks
		}
	}

	e.logger.Info("クリックの試行回数の上限に達しました", "max_attempts", cfg.MaxAttempts)
	return clicks
}

// scrollUntilStableは、スクロール前後でドキュメントの高さが変わらなくなるまでスクロールします。
func (e *PageExhauster) scrollUntilStable(client infra.BrowserClient) int {
	cfg := e.cfg.Scroll

	last, err := client.DocumentHeight()
	if err != nil {
		e.logger.Error("ドキュメントの高さを取得できませんでした", "error", err)
		return 0
	}

	scrolls := 0
	for scrolls < cfg.MaxAttempts {
		if err := client.ScrollToBottom(); err != nil {
			e.logger.Error("スクロールに失敗しました", "error", err)
			return scrolls
		}
		scrolls++
		e.pause(time.Duration(cfg.PauseMillis) * time.Millisecond)

		height, err := client.DocumentHeight()
		if err != nil {
			e.logger.Error("ドキュメントの高さを取得できませんでした", "error", err)
			return scrolls
		}
		if height == last {
			e.logger.Info("ページの高さが変わらないため、スクロールを終了します", "scrolls", scrolls, "height", height)
			return scrolls
		}
		last = height
	}

	e.logger.Info("スクロールの試行回数の上限に達しました", "max_attempts", cfg.MaxAttempts)
	return scrolls
}
