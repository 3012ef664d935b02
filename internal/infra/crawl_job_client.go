package infra

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nrad-K/go-job-watcher/internal/domain/model"
	"github.com/nrad-K/go-job-watcher/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

type crawlJobClient struct {
	redis *redis.Client
}

// NewCrawlJobClientは、詳細ページごとの抽出結果をRedisに記録するリポジトリを返します。
func NewCrawlJobClient(rds *redis.Client) repository.CrawlJobRepository {
	return &crawlJobClient{
		redis: rds,
	}
}

// Saveは、URLごとに最新の結果だけが残るように保存します。
func (r *crawlJobClient) Save(ctx context.Context, job model.CrawlJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal crawl job: %w", err)
	}

	key, err := generateJobKey(job.Status, job.URL.String())
	if err != nil {
		return fmt.Errorf("failed to generate job key: %w", err)
	}

	stale, err := generateJobKey(oppositeStatus(job.Status), job.URL.String())
	if err != nil {
		return fmt.Errorf("failed to generate job key: %w", err)
	}

	pipe := r.redis.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.Del(ctx, stale)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save crawl job to redis: %w", err)
	}

	return nil
}

// FindListByStatusは、指定したステータスで記録されている台帳を最大size件返します。
// キーの列挙にはSCANを使い、値はMGETでまとめて取得します。
func (r *crawlJobClient) FindListByStatus(ctx context.Context, size int, status model.CrawlJobStatus) ([]model.CrawlJob, error) {
	pattern, err := generateJobKey(status, "*")
	if err != nil {
		return nil, err
	}

	var keys []string
	iter := r.redis.Scan(ctx, 0, pattern, int64(size)).Iterator()
	for len(keys) < size && iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("台帳のキーの列挙に失敗しました: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("台帳の取得に失敗しました: %w", err)
	}

	jobs := make([]model.CrawlJob, 0, len(values))
	for i, value := range values {
		// SCANとMGETの間に状態が変わったキーはnilになる
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var job model.CrawlJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return nil, fmt.Errorf("%s の台帳を解析できませんでした: %w", keys[i], err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func generateJobKey(status model.CrawlJobStatus, url string) (string, error) {
	switch status {
	case model.CrawlJobStatusSuccess:
		return fmt.Sprintf("job_watcher:success_job:%s", url), nil
	case model.CrawlJobStatusFailed:
		return fmt.Sprintf("job_watcher:failed_job:%s", url), nil
	default:
		return "", fmt.Errorf("unsupported job status for key generation: %s", status)
	}
}

func oppositeStatus(status model.CrawlJobStatus) model.CrawlJobStatus {
	if status == model.CrawlJobStatusSuccess {
		return model.CrawlJobStatusFailed
	}
	return model.CrawlJobStatusSuccess
}

type nopCrawlJobClient struct{}

// NewNopCrawlJobClientは、Redisが設定されていない場合に使う何もしないリポジトリを返します。
func NewNopCrawlJobClient() repository.CrawlJobRepository {
	return nopCrawlJobClient{}
}

func (nopCrawlJobClient) Save(context.Context, model.CrawlJob) error {
	return nil
}

func (nopCrawlJobClient) FindListByStatus(context.Context, int, model.CrawlJobStatus) ([]model.CrawlJob, error) {
	return nil, nil
}
