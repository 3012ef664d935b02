package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nrad-K/go-job-watcher/internal/config"
	"github.com/nrad-K/go-job-watcher/internal/constants"
	"github.com/nrad-K/go-job-watcher/internal/domain/repository"
	"github.com/nrad-K/go-job-watcher/internal/infra"
	"github.com/nrad-K/go-job-watcher/internal/logger"
	"github.com/nrad-K/go-job-watcher/internal/usecase"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "1サイクルだけ実行して終了します",
	Long:  `求人一覧の読み込みから結果の保存までを1回だけ実行します。cronなど外部のスケジューラーから起動する場合に使います。`,
	Run: func(cmd *cobra.Command, args []string) {
		runWatcher(cmd, true)
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

// runWatcherは、設定・ロガー・各コンポーネントを組み立ててSchedulerを実行します。
func runWatcher(cmd *cobra.Command, once bool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := godotenv.Load()
	if err != nil {
		// .envがない場合は環境変数をそのまま使う
	}

	// 設定ファイル読み込み
	cfg, found, err := config.LoadWatcherConfig(configPath)
	if err != nil {
		log.Fatalf("設定ファイルの読み込みに失敗: %v", err)
	}

	// logger初期化
	appLogger, closer := logger.New(logger.Config{
		FilePath: cfg.LogFile,
		Level:    cfg.LogLevel,
	}, cmd.OutOrStdout())
	defer closer.Close()

	if !found {
		appLogger.Info("設定ファイルが見つからないため既定値で起動します", "path", configPath)
	}

	repo := newCrawlJobRepository(ctx, os.Getenv("REDIS_ADDRESS"), os.Getenv("REDIS_PASSWORD"), appLogger)

	history := infra.NewCSVLog(cfg.HistoryFile, constants.GetHistoryCSVHeaders())
	today := infra.NewCSVLog(cfg.TodayFile, constants.GetTodayCSVHeaders())
	store := infra.NewDedupStore(history, today, appLogger)
	normalizer := infra.NewDateNormalizer(cfg.Selector.DateMarker, constants.GetPostedDateLayouts(), nil, appLogger)

	scheduler := usecase.NewScheduler(usecase.SchedulerArgs{
		Cfg:       &cfg,
		Launch:    infra.NewBrowserLauncher(&cfg),
		Exhauster: usecase.NewPageExhauster(cfg.Exhaust, appLogger, nil),
		Collector: usecase.NewLinkCollector(&cfg, appLogger),
		Extractor: usecase.NewJobExtractor(usecase.JobExtractorArgs{
			Cfg:        &cfg,
			Normalizer: normalizer,
			Logger:     appLogger,
		}),
		Store:  store,
		Writer: infra.NewResultWriter(history, today, store, appLogger),
		Repo:   repo,
		Logger: appLogger,
	})

	if once {
		if _, err := scheduler.RunCycle(ctx); err != nil {
			appLogger.Error("サイクルの実行中にエラーが発生しました", "error", err)
			closer.Close()
			os.Exit(1)
		}
		return
	}

	scheduler.Run(ctx)
	appLogger.Info("求人ウォッチャーを終了しました")
}

// newCrawlJobRepositoryは、addrが指定されていればRedisの台帳を、
// 設定されていないかRedisに接続できない場合は何もしない台帳を返します。
func newCrawlJobRepository(ctx context.Context, addr, password string, appLogger logger.AppLogger) repository.CrawlJobRepository {
	if addr == "" {
		return infra.NewNopCrawlJobClient()
	}

	// Redisクライアント初期化
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	// Redisへの接続を確認 (ping)
	if err := rdb.Ping(ctx).Err(); err != nil {
		appLogger.Warn("Redisへの接続に失敗したため、台帳を記録せずに続行します", "addr", addr, "error", err)
		rdb.Close()
		return infra.NewNopCrawlJobClient()
	}
	appLogger.Info("Redisへの接続を確認しました", "addr", addr)

	return infra.NewCrawlJobClient(rdb)
}
