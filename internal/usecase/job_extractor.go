package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/nrad-K/go-job-watcher/internal/config"
	"github.com/nrad-K/go-job-watcher/internal/domain/model"
	"github.com/nrad-K/go-job-watcher/internal/infra"
	"github.com/nrad-K/go-job-watcher/internal/logger"
)

const (
	// 描画完了後、HTMLを読む前に待つ時間
	settleDelay = 1 * time.Second
	// 詳細ページの再試行までの待機時間
	retryDelay = 1 * time.Second
)

var errNavigation = errors.New("詳細ページへの遷移に失敗しました")

// ExtractResultは、詳細ページ1件の抽出結果です。
// Errがnilでない場合でも、Recordにはリンクだけを持つ部分レコードが入ります。
type ExtractResult struct {
	Record   model.JobRecord
	Attempts int
	Err      error
}

type JobExtractorArgs struct {
	Cfg        *config.WatcherConfig
	Normalizer infra.DateNormalizer
	Logger     logger.AppLogger
	Now        func() time.Time
	Pause      func(time.Duration)
}

// JobExtractorは、詳細ページからタイトル・投稿日・職務内容を抽出します。
type JobExtractor struct {
	cfg        *config.WatcherConfig
	normalizer infra.DateNormalizer
	logger     logger.AppLogger
	now        func() time.Time
	pause      func(time.Duration)
}

func NewJobExtractor(args JobExtractorArgs) *JobExtractor {
	now := args.Now
	if now == nil {
		now = time.Now
	}
	pause := args.Pause
	if pause == nil {
		pause = time.Sleep
	}
	return &JobExtractor{
		cfg:        args.Cfg,
		normalizer: args.Normalizer,
		logger:     args.Logger,
		now:        now,
		pause:      pause,
	}
}

// Extractは、詳細ページを開いてJobRecordを抽出します。
// 遷移の失敗と描画待ちのタイムアウトはRetryLimitまで再試行します。
// 抽出に失敗してもエラーで中断せず、リンク以外がUnknownの部分レコードを返します。
//
// args:
//
//	client: ブラウザクライアント
//	link: 詳細ページの絶対URL
//
// return:
//
//	ExtractResult: 抽出結果と試行回数
func (x *JobExtractor) Extract(client infra.BrowserClient, link string) ExtractResult {
	var lastErr error
	attempts := 0
	for attempts < x.cfg.RetryLimit {
		attempts++

		record, err := x.extractOnce(client, link)
		if err == nil {
			return ExtractResult{Record: record, Attempts: attempts}
		}
		lastErr = err

		if !isRetryable(err) {
			break
		}
		if attempts < x.cfg.RetryLimit {
			x.logger.Warn("リトライ中", "link", link, "attempt", attempts, "retry_limit", x.cfg.RetryLimit, "error", err)
			x.pause(retryDelay)
		}
	}

	x.logger.Error("求人詳細の抽出に失敗しました", "link", link, "attempts", attempts, "error", lastErr)
	return ExtractResult{
		Record:   model.NewPartialJobRecord(link, x.now()),
		Attempts: attempts,
		Err:      lastErr,
	}
}

func isRetryable(err error) bool {
	return errors.Is(err, errNavigation) || errors.Is(err, infra.ErrRenderTimeout)
}

func (x *JobExtractor) extractOnce(client infra.BrowserClient, link string) (record model.JobRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("抽出中にパニックが発生しました: %v", r)
		}
	}()

	if err := client.Navigate(link); err != nil {
		return model.JobRecord{}, fmt.Errorf("%w: %w", errNavigation, err)
	}

	if err := client.WaitFor(x.cfg.Selector.ContentMarker, x.cfg.RenderTimeout()); err != nil {
		return model.JobRecord{}, err
	}
	x.pause(settleDelay)

	html, err := client.GetHTML()
	if err != nil {
		return model.JobRecord{}, fmt.Errorf("詳細ページのHTML取得に失敗しました: %w", err)
	}

	doc, err := infra.NewHTMLDocument(html)
	if err != nil {
		return model.JobRecord{}, err
	}

	title := x.resolveField(doc, "title", x.cfg.Selector.Title, link)
	description := x.resolveField(doc, "description", x.cfg.Selector.Description, link)

	postedDate := model.NewUnknownPostedDate()
	if raw := x.resolveField(doc, "posted_date", x.cfg.Selector.PostedDate, link); raw != "" {
		postedDate = x.normalizer.Normalize(raw)
	}

	record = model.NewJobRecord(model.JobRecordArgs{
		Title:       title,
		Link:        link,
		PostedDate:  postedDate,
		Description: description,
		ScrapedAt:   x.now(),
	})
	x.logger.Info("求人詳細を抽出しました", "title", record.Title(), "posted_date", record.PostedDate().String(), "link", link)
	return record, nil
}

// resolveFieldは、ロケーターを先頭から順に試し、最初に空でない値を返したものを採用します。
// どのロケーターも値を返さない場合は空文字を返します。
func (x *JobExtractor) resolveField(doc infra.HTMLDocument, field string, locators []config.SelectorConfig, link string) string {
	for i, locator := range locators {
		value, err := doc.Extract(locator)
		if err != nil {
			x.logger.Warn("ロケーターの評価に失敗しました", "field", field, "locator", i, "error", err)
			continue
		}
		if value != "" {
			if i > 0 {
				x.logger.Debug("フォールバックのロケーターを使用しました", "field", field, "locator", i)
			}
			return value
		}
	}

	x.logger.Warn("項目が見つかりません", "field", field, "link", link)
	return ""
}
