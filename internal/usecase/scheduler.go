package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/nrad-K/go-job-watcher/internal/config"
	"github.com/nrad-K/go-job-watcher/internal/domain/model"
	"github.com/nrad-K/go-job-watcher/internal/domain/repository"
	"github.com/nrad-K/go-job-watcher/internal/infra"
	"github.com/nrad-K/go-job-watcher/internal/logger"
)

// SchedulerArgsは、Schedulerを構築するための引数を保持します。
type SchedulerArgs struct {
	Cfg       *config.WatcherConfig
	Launch    infra.BrowserLauncher
	Exhauster *PageExhauster
	Collector *LinkCollector
	Extractor *JobExtractor
	Store     *infra.DedupStore
	Writer    *infra.ResultWriter
	Repo      repository.CrawlJobRepository
	Logger    logger.AppLogger
	Now       func() time.Time
}

// CycleReportは、1サイクルの実行結果の集計です。
type CycleReport struct {
	CycleID        uuid.UUID
	Links          int
	Extracted      int
	Failed         int
	New            int
	PostedToday    int
	HistoryWritten int
	TodayWritten   int
	Duration       time.Duration
}

// Schedulerは、一定間隔でサイクルを繰り返す外側の制御ループです。
// 1サイクルの失敗はそのサイクル内で閉じ込められ、プロセスを終了させません。
type Scheduler struct {
	cfg       *config.WatcherConfig
	launch    infra.BrowserLauncher
	exhauster *PageExhauster
	collector *LinkCollector
	extractor *JobExtractor
	store     *infra.DedupStore
	writer    *infra.ResultWriter
	repo      repository.CrawlJobRepository
	logger    logger.AppLogger
	now       func() time.Time
	after     func(time.Duration) <-chan time.Time
}

// 1サイクルで報告する失敗リンクの上限
const pendingFailureLimit = 100

func NewScheduler(args SchedulerArgs) *Scheduler {
	now := args.Now
	if now == nil {
		now = time.Now
	}
	repo := args.Repo
	if repo == nil {
		repo = infra.NewNopCrawlJobClient()
	}
	return &Scheduler{
		cfg:       args.Cfg,
		launch:    args.Launch,
		exhauster: args.Exhauster,
		collector: args.Collector,
		extractor: args.Extractor,
		store:     args.Store,
		writer:    args.Writer,
		repo:      repo,
		logger:    args.Logger,
		now:       now,
		after:     time.After,
	}
}

// Runは、停止されるまでサイクルを繰り返します。
// 全履歴を読み込めない場合もエラーを記録して待機を続け、各サイクルの開始時に読み込みを再試行します。
// ctxのキャンセルはサイクル間の待機中とサイクル開始前にのみ確認し、実行中のサイクルは中断しません。
func (s *Scheduler) Run(ctx context.Context) {
	if _, err := s.store.LoadHistoryIdentities(); err != nil {
		s.logger.Error("全履歴の読み込みに失敗しました。次のサイクルで再試行します", "error", err)
	}

	s.logger.Info("求人ウォッチャーを開始します", "target_url", s.cfg.TargetURL, "interval", s.cfg.PollInterval())

	for {
		if ctx.Err() != nil {
			s.logger.Info("停止要求を受け取ったため終了します")
			return
		}

		if _, err := s.RunCycle(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("サイクルの実行中にエラーが発生しました", "error", err)
		}

		s.logger.Info("次のサイクルまで待機します", "interval", s.cfg.PollInterval())
		select {
		case <-ctx.Done():
			s.logger.Info("停止要求を受け取ったため終了します")
			return
		case <-s.after(s.cfg.PollInterval()):
		}
	}
}

// RunCycleは、ブラウザの起動から結果の保存までの1サイクルを実行します。
// ブラウザはどの経路で終了してもサイクルの終わりに必ず閉じられます。
// パニックはここで回収し、エラーとして返します。
func (s *Scheduler) RunCycle(ctx context.Context) (report CycleReport, err error) {
	report.CycleID = uuid.New()
	log := s.logger.With("cycle_id", report.CycleID.String())
	started := s.now()
	log.Info("サイクルを開始します")

	defer func() {
		report.Duration = s.now().Sub(started)
		if err != nil {
			log.Error("サイクルが途中で終了しました", "error", err, "duration", report.Duration)
			return
		}
		log.Info("サイクルが完了しました",
			"links", report.Links,
			"extracted", report.Extracted,
			"failed", report.Failed,
			"new", report.New,
			"posted_today", report.PostedToday,
			"history_written", report.HistoryWritten,
			"today_written", report.TodayWritten,
			"duration", report.Duration,
		)
	}()

	// 読み込み済みであればメモリ上の集合がそのまま使われます
	if _, err := s.store.LoadHistoryIdentities(); err != nil {
		return report, fmt.Errorf("全履歴の読み込みに失敗しました: %w", err)
	}

	s.logPendingFailures(ctx, log)

	client, err := s.launch()
	if err != nil {
		return report, fmt.Errorf("ブラウザの起動に失敗しました: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			log.Warn("ブラウザのクローズに失敗しました", "error", cerr)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("サイクル中にパニックが発生しました: %v", r)
		}
	}()

	if err := client.Navigate(s.cfg.TargetURL); err != nil {
		return report, fmt.Errorf("一覧ページへのナビゲーションに失敗しました: %w", err)
	}

	s.exhauster.Exhaust(client)

	links, err := s.collector.Collect(client)
	if err != nil {
		return report, err
	}
	report.Links = len(links)

	records := s.extractAll(ctx, log, client, report.CycleID, links, &report)

	fresh, today := s.classify(records)
	report.New = len(fresh)
	report.PostedToday = len(today)

	report.HistoryWritten, err = s.writer.AppendHistory(fresh)
	if err != nil {
		return report, err
	}
	report.TodayWritten, err = s.writer.AppendToday(today)
	if err != nil {
		return report, err
	}

	return report, nil
}

// extractAllは、リンクをDOM順に1件ずつ抽出し、結果を台帳に記録します。
func (s *Scheduler) extractAll(ctx context.Context, log logger.AppLogger, client infra.BrowserClient, cycleID uuid.UUID, links []string, report *CycleReport) []model.JobRecord {
	seen := make(map[string]struct{}, len(links))
	records := make([]model.JobRecord, 0, len(links))
	for i, link := range links {
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		log.Info("求人詳細を処理中", "index", i+1, "total", len(links), "link", link)
		result := s.extractor.Extract(client, link)
		if result.Err != nil {
			report.Failed++
		} else {
			report.Extracted++
		}
		s.recordOutcome(ctx, log, cycleID, link, result)
		records = append(records, result.Record)
	}
	return records
}

// classifyは、全履歴にないタイトルのレコードを新規とし、そのうち投稿日が今日のものを本日投稿分とします。
func (s *Scheduler) classify(records []model.JobRecord) (fresh, today []model.JobRecord) {
	now := s.now()
	titles := make(map[string]struct{}, len(records))
	for _, record := range records {
		if _, dup := titles[record.Title()]; dup || !s.store.IsNewHistory(record.Title()) {
			s.logger.Debug("記録済みの求人です", "title", record.Title())
			continue
		}
		titles[record.Title()] = struct{}{}

		fresh = append(fresh, record)
		if record.PostedDate().IsSameDay(now) {
			today = append(today, record)
		}
	}
	return fresh, today
}

// recordOutcomeは、抽出結果を台帳に保存します。保存の失敗はサイクルを止めません。
func (s *Scheduler) recordOutcome(ctx context.Context, log logger.AppLogger, cycleID uuid.UUID, link string, result ExtractResult) {
	parsed, err := url.Parse(link)
	if err != nil {
		log.Warn("台帳に記録するURLのパースに失敗しました", "link", link, "error", err)
		return
	}

	job := model.CrawlJob{
		ID:        uuid.New(),
		CycleID:   cycleID,
		URL:       *parsed,
		Status:    model.CrawlJobStatusSuccess,
		Attempts:  result.Attempts,
		UpdatedAt: s.now(),
	}
	if result.Err != nil {
		job.Status = model.CrawlJobStatusFailed
		job.Error = result.Err.Error()
	}

	if err := s.repo.Save(ctx, job); err != nil {
		log.Warn("台帳への保存に失敗しました", "link", link, "error", err)
	}
}

// logPendingFailuresは、前回までのサイクルで抽出に失敗したまま残っているリンクを報告します。
// 失敗したリンクは一覧に残っていれば今回のサイクルで再び抽出されます。
func (s *Scheduler) logPendingFailures(ctx context.Context, log logger.AppLogger) {
	failed, err := s.repo.FindListByStatus(ctx, pendingFailureLimit, model.CrawlJobStatusFailed)
	if err != nil {
		log.Warn("台帳から失敗したリンクを取得できませんでした", "error", err)
		return
	}
	if len(failed) == 0 {
		return
	}

	log.Warn("前回までに抽出に失敗したリンクがあります", "count", len(failed))
	for _, job := range failed {
		log.Debug("抽出に失敗したリンク", "link", job.URL.String(), "attempts", job.Attempts, "error", job.Error)
	}
}
