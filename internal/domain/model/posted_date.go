package model

import (
	"time"

	"github.com/nrad-K/go-job-watcher/internal/constants"
)

// Unknownは抽出・解析できなかった値を表す文字列です。
const Unknown = "N/A"

// PostedDateは投稿日を表します。日付が判明しない場合はUnknownとして扱われ、
// 空文字や曖昧な値を持つことはありません。
type PostedDate struct {
	date  time.Time
	known bool
}

// NewPostedDateは時刻部分を切り捨てた日付を生成します。
func NewPostedDate(t time.Time) PostedDate {
	y, m, d := t.Date()
	return PostedDate{
		date:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		known: true,
	}
}

func NewUnknownPostedDate() PostedDate {
	return PostedDate{}
}

func (p PostedDate) IsKnown() bool {
	return p.known
}

// Stringは MM-DD-YYYY 形式、または Unknown を返します。
func (p PostedDate) String() string {
	if !p.known {
		return Unknown
	}
	return p.date.Format(constants.CanonicalDateLayout)
}

// IsSameDayは投稿日がnowと同じ暦日かどうかを判定します。
func (p PostedDate) IsSameDay(now time.Time) bool {
	if !p.known {
		return false
	}
	return p.String() == now.Format(constants.CanonicalDateLayout)
}
