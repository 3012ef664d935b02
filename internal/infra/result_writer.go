package infra

import (
	"fmt"

	"github.com/nrad-K/go-job-watcher/internal/constants"
	"github.com/nrad-K/go-job-watcher/internal/domain/model"
	"github.com/nrad-K/go-job-watcher/internal/logger"
)

// ResultWriterは、DedupStoreに問い合わせながら2つの出力CSVに追記します。
type ResultWriter struct {
	history *CSVLog
	today   *CSVLog
	store   *DedupStore
	logger  logger.AppLogger
}

func NewResultWriter(history, today *CSVLog, store *DedupStore, logger logger.AppLogger) *ResultWriter {
	return &ResultWriter{
		history: history,
		today:   today,
		store:   store,
		logger:  logger,
	}
}

// AppendHistoryは、まだ記録されていないタイトルのレコードを全履歴CSVに追記します。
// 同じバッチ内で重複するタイトルも1行だけ書き込まれます。
//
// return:
//
//	int: 書き込んだ行数
//	error: 読み込み・書き込みのエラー
func (w *ResultWriter) AppendHistory(records []model.JobRecord) (int, error) {
	if _, err := w.store.LoadHistoryIdentities(); err != nil {
		return 0, err
	}

	batch := make(map[string]struct{}, len(records))
	rows := make([][]string, 0, len(records))
	titles := make([]string, 0, len(records))
	for _, job := range records {
		if _, dup := batch[job.Title()]; dup || !w.store.IsNewHistory(job.Title()) {
			w.logger.Info("求人は記録済みのためスキップします", "title", job.Title())
			continue
		}
		batch[job.Title()] = struct{}{}

		rows = append(rows, []string{
			job.Title(),
			job.Link(),
			job.PostedDate().String(),
			job.Description(),
			job.ScrapedAt().Format(constants.ScrapeTimestampLayout),
		})
		titles = append(titles, job.Title())
	}

	if err := w.history.Append(rows); err != nil {
		return 0, fmt.Errorf("全履歴CSVへの保存に失敗しました: %w", err)
	}
	for _, title := range titles {
		w.store.MarkHistory(title)
	}

	w.logger.Info("新しい求人を保存しました", "count", len(rows), "file", w.history.Path())
	return len(rows), nil
}

// AppendTodayは、本日投稿分CSVを読み直したうえで、未記録のリンクのレコードだけを追記します。
func (w *ResultWriter) AppendToday(records []model.JobRecord) (int, error) {
	if _, err := w.store.LoadTodayIdentities(); err != nil {
		return 0, err
	}

	rows := make([][]string, 0, len(records))
	for _, job := range records {
		if !w.store.IsNewToday(job.Link()) {
			w.logger.Info("本日投稿分に記録済みのためスキップします", "link", job.Link())
			continue
		}
		rows = append(rows, []string{
			job.Link(),
			job.Title(),
			job.PostedDate().String(),
		})
		w.store.MarkToday(job.Link())
		w.logger.Info("本日投稿分に追加します", "title", job.Title(), "link", job.Link())
	}

	if err := w.today.Append(rows); err != nil {
		return 0, fmt.Errorf("本日投稿分CSVへの保存に失敗しました: %w", err)
	}

	w.logger.Info("本日投稿分を保存しました", "count", len(rows), "file", w.today.Path())
	return len(rows), nil
}
