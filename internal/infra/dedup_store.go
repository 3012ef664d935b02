package infra

import (
	"fmt"

	"github.com/nrad-K/go-job-watcher/internal/constants"
	"github.com/nrad-K/go-job-watcher/internal/logger"
)

// DedupStoreは、出力CSVから再構築した2つの識別子集合を保持します。
// 全履歴はタイトル、本日投稿分はリンクで識別します。どちらの集合も要素が削除されることはありません。
type DedupStore struct {
	history *CSVLog
	today   *CSVLog
	logger  logger.AppLogger

	seenTitles    map[string]struct{}
	historyLoaded bool
	seenLinks     map[string]struct{}
}

func NewDedupStore(history, today *CSVLog, logger logger.AppLogger) *DedupStore {
	return &DedupStore{
		history:    history,
		today:      today,
		logger:     logger,
		seenTitles: make(map[string]struct{}),
		seenLinks:  make(map[string]struct{}),
	}
}

// LoadHistoryIdentitiesは、全履歴CSVから記録済みのタイトル集合を読み込みます。
// 読み込みはプロセス中に一度だけ行われ、以降はメモリ上の集合を返します。
func (s *DedupStore) LoadHistoryIdentities() (map[string]struct{}, error) {
	if s.historyLoaded {
		return s.seenTitles, nil
	}

	titles, err := s.readIdentities(s.history, constants.HistoryTitleColumn)
	if err != nil {
		return nil, err
	}
	for title := range titles {
		s.seenTitles[title] = struct{}{}
	}
	s.historyLoaded = true

	s.logger.Info("記録済みの求人を読み込みました", "count", len(s.seenTitles), "file", s.history.Path())
	return s.seenTitles, nil
}

// IsNewHistoryは、タイトルが全履歴にまだ記録されていないかを返します。
func (s *DedupStore) IsNewHistory(title string) bool {
	_, exists := s.seenTitles[title]
	return !exists
}

func (s *DedupStore) MarkHistory(title string) {
	s.seenTitles[title] = struct{}{}
}

// LoadTodayIdentitiesは、本日投稿分CSVを読み直してリンク集合を置き換えます。
// 呼び出しのたびにファイルを読み込みます。
func (s *DedupStore) LoadTodayIdentities() (map[string]struct{}, error) {
	links, err := s.readIdentities(s.today, constants.TodayLinkColumn)
	if err != nil {
		return nil, err
	}
	s.seenLinks = links

	s.logger.Info("本日投稿分の既存URLを読み込みました", "count", len(s.seenLinks), "file", s.today.Path())
	return s.seenLinks, nil
}

// IsNewTodayは、直近に読み込んだ集合に対してリンクが未記録かを返します。
func (s *DedupStore) IsNewToday(link string) bool {
	_, exists := s.seenLinks[link]
	return !exists
}

func (s *DedupStore) MarkToday(link string) {
	s.seenLinks[link] = struct{}{}
}

func (s *DedupStore) readIdentities(log *CSVLog, column int) (map[string]struct{}, error) {
	values, malformed, err := log.ReadColumn(column)
	if err != nil {
		return nil, fmt.Errorf("%s の読み込みに失敗しました: %w", log.Path(), err)
	}
	for _, row := range malformed {
		s.logger.Warn("不正な行をスキップしました", "file", log.Path(), "line", row.Line, "error", row.Err)
	}
	return values, nil
}
