package model

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

type CrawlJobStatus string

const (
	CrawlJobStatusSuccess CrawlJobStatus = "SUCCESS"
	CrawlJobStatusFailed  CrawlJobStatus = "FAILED"
)

// CrawlJobは詳細ページ1件の抽出結果を台帳に残すための記録です。
type CrawlJob struct {
	ID        uuid.UUID      `json:"id"`
	CycleID   uuid.UUID      `json:"cycle_id"`
	URL       url.URL        `json:"url"`
	Status    CrawlJobStatus `json:"status"`
	Attempts  int            `json:"attempts"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}
