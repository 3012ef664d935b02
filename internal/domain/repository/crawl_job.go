package repository

import (
	"context"

	"github.com/nrad-K/go-job-watcher/internal/domain/model"
)

type CrawlJobRepository interface {
	Save(ctx context.Context, job model.CrawlJob) error
	FindListByStatus(ctx context.Context, size int, status model.CrawlJobStatus) ([]model.CrawlJob, error)
}
