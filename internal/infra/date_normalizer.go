package infra

import (
	"strings"
	"time"

	"github.com/nrad-K/go-job-watcher/internal/constants"
	"github.com/nrad-K/go-job-watcher/internal/domain/model"
	"github.com/nrad-K/go-job-watcher/internal/logger"
)

type DateNormalizer interface {
	Normalize(raw string) model.PostedDate
}

type dateNormalizer struct {
	marker  string
	layouts []string
	now     func() time.Time
	logger  logger.AppLogger
}

// NewDateNormalizerは投稿日テキストを暦日に変換するDateNormalizerを生成します。
//
// args:
//
//	marker: 取り除く接頭辞（例: "Posted on:"）
//	layouts: 順に試す絶対日付のレイアウト
//	now: 現在時刻を返す関数
//	logger: ロガー
func NewDateNormalizer(marker string, layouts []string, now func() time.Time, logger logger.AppLogger) DateNormalizer {
	if now == nil {
		now = time.Now
	}
	return &dateNormalizer{
		marker:  marker,
		layouts: layouts,
		now:     now,
		logger:  logger,
	}
}

// Normalizeは生の投稿日テキストを解析します。
// "Today"/"Yesterday" を含む場合は相対日付として扱い、それ以外はレイアウトを順に試して
// 最初に成功したものを採用します。どれにもマッチしない場合はUnknownを返します。
func (n *dateNormalizer) Normalize(raw string) model.PostedDate {
	dateStr := raw
	if n.marker != "" && strings.Contains(dateStr, n.marker) {
		dateStr = strings.ReplaceAll(dateStr, n.marker, "")
	}
	dateStr = strings.Join(strings.Fields(dateStr), " ")

	switch {
	case strings.Contains(dateStr, constants.RelativeToday):
		return model.NewPostedDate(n.now())
	case strings.Contains(dateStr, constants.RelativeYesterday):
		return model.NewPostedDate(n.now().AddDate(0, 0, -1))
	}

	for _, layout := range n.layouts {
		parsed, err := time.Parse(layout, dateStr)
		if err == nil {
			return model.NewPostedDate(parsed)
		}
	}

	n.logger.Warn("認識できない日付形式です", "raw", raw)
	return model.NewUnknownPostedDate()
}
