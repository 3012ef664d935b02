package model

import "time"

// JobRecordは詳細ページ1件から抽出した求人情報です。生成後に変更されることはありません。
type JobRecord struct {
	title       string
	link        string
	postedDate  PostedDate
	description string
	scrapedAt   time.Time
}

type JobRecordArgs struct {
	Title       string
	Link        string
	PostedDate  PostedDate
	Description string
	ScrapedAt   time.Time
}

// NewJobRecordは空のフィールドをUnknownに置き換えてJobRecordを生成します。
func NewJobRecord(args JobRecordArgs) JobRecord {
	return JobRecord{
		title:       orUnknown(args.Title),
		link:        args.Link,
		postedDate:  args.PostedDate,
		description: orUnknown(args.Description),
		scrapedAt:   args.ScrapedAt,
	}
}

// NewPartialJobRecordはリンク以外がすべてUnknownのレコードを生成します。
func NewPartialJobRecord(link string, scrapedAt time.Time) JobRecord {
	return NewJobRecord(JobRecordArgs{Link: link, ScrapedAt: scrapedAt})
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

func (j JobRecord) Title() string {
	return j.title
}

func (j JobRecord) Link() string {
	return j.link
}

func (j JobRecord) PostedDate() PostedDate {
	return j.postedDate
}

func (j JobRecord) Description() string {
	return j.description
}

func (j JobRecord) ScrapedAt() time.Time {
	return j.scrapedAt
}
