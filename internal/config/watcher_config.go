package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// WatcherConfigは求人ウォッチャーの動作設定をまとめる構造体です。
type WatcherConfig struct {
	TargetURL                string          `yaml:"target_url" validate:"required,url"`                  // 求人一覧ページのURL
	PollIntervalSeconds      int             `yaml:"poll_interval_seconds" validate:"min=1,max=86400"`    // サイクル間の待機時間（秒）
	RetryLimit               int             `yaml:"retry_limit" validate:"min=1,max=10"`                 // 詳細ページ1件あたりの最大試行回数
	HistoryFile              string          `yaml:"history_file" validate:"required"`                    // 全履歴CSVのパス
	TodayFile                string          `yaml:"today_file" validate:"required"`                      // 本日投稿分CSVのパス
	LogFile                  string          `yaml:"log_file" validate:"required"`                        // ログファイルのパス
	LogLevel                 string          `yaml:"log_level" validate:"oneof=debug info warn error"`    // ログレベル
	EnableHeadless           bool            `yaml:"enable_headless"`                                     // ヘッドレスでブラウザを起動するか
	UserAgent                string          `yaml:"user_agent"`                                          // 空の場合はブラウザ既定値
	NavigationTimeoutSeconds int             `yaml:"navigation_timeout_seconds" validate:"min=1,max=300"` // ページ遷移のタイムアウト（秒）
	RenderTimeoutSeconds     int             `yaml:"render_timeout_seconds" validate:"min=1,max=300"`     // 詳細ページの描画待ちタイムアウト（秒）
	Exhaust                  ExhaustConfig   `yaml:"exhaust" validate:"required"`                         // 一覧ページを読み切るための設定
	Selector                 WatcherSelector `yaml:"selector" validate:"required"`                        // 抽出に使うセレクター
}

// ExhaustConfigは「もっと見る」クリックとスクロールの2段階の読み込み戦略を定義します。
type ExhaustConfig struct {
	Click  ClickConfig  `yaml:"click"`
	Scroll ScrollConfig `yaml:"scroll"`
}

// ClickConfigはクリックによる追加読み込みの設定です。
type ClickConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Selector         string `yaml:"selector" validate:"required_if=Enabled true"`
	MaxAttempts      int    `yaml:"max_attempts" validate:"min=0,max=1000"`
	WaitSeconds      int    `yaml:"wait_seconds" validate:"min=1,max=120"`         // ボタンがクリック可能になるまでの待機時間
	PauseMillis      int    `yaml:"pause_ms" validate:"min=0,max=60000"`           // クリック後の待機時間
	InterceptPauseMs int    `yaml:"intercept_pause_ms" validate:"min=0,max=60000"` // クリックが遮られた場合の待機時間
	MaxIntercepts    int    `yaml:"max_intercepts" validate:"min=1,max=100"`       // 1回の試行で許容する遮断回数
}

// ScrollConfigはスクロールによる遅延読み込みの設定です。
type ScrollConfig struct {
	Enabled     bool `yaml:"enabled"`
	MaxAttempts int  `yaml:"max_attempts" validate:"min=0,max=1000"`
	PauseMillis int  `yaml:"pause_ms" validate:"min=0,max=60000"`
}

// SelectorConfigは1つのロケーターを定義します。
// Containsが指定された場合、そのテキストを含む要素のみを対象にします。
type SelectorConfig struct {
	Selector string `yaml:"selector" validate:"required,min=1"`
	Contains string `yaml:"contains"`
	Attr     string `yaml:"attr"`
	Regex    string `yaml:"regex"`
}

// WatcherSelectorは一覧ページと詳細ページのセレクターを定義します。
// Title, PostedDate, Descriptionは先頭から順に試すフォールバック付きのロケーター列です。
type WatcherSelector struct {
	ListingCard   string           `yaml:"listing_card" validate:"required,min=1"`     // 求人カード(複数)
	CardLink      SelectorConfig   `yaml:"card_link" validate:"required"`              // カード内の詳細リンク
	ContentMarker string           `yaml:"content_marker" validate:"required,min=1"`   // 詳細ページの描画完了を示す要素
	Title         []SelectorConfig `yaml:"title" validate:"required,min=1,dive"`       // タイトル
	PostedDate    []SelectorConfig `yaml:"posted_date" validate:"required,min=1,dive"` // 投稿日
	Description   []SelectorConfig `yaml:"description" validate:"required,min=1,dive"` // 職務内容
	DateMarker    string           `yaml:"date_marker"`                                // 投稿日テキストの接頭辞
}

// バリデーターのインスタンス
var v = validator.New()

// Defaultsは、ytjobs.coを対象とした既定の設定を返します。
func Defaults() WatcherConfig {
	return WatcherConfig{
		TargetURL:                "https://ytjobs.co",
		PollIntervalSeconds:      3600,
		RetryLimit:               3,
		HistoryFile:              "job_listings.csv",
		TodayFile:                "today_jobs.csv",
		LogFile:                  "job_scraper.log",
		LogLevel:                 "info",
		EnableHeadless:           true,
		NavigationTimeoutSeconds: 30,
		RenderTimeoutSeconds:     10,
		Exhaust: ExhaustConfig{
			Click: ClickConfig{
				Enabled:          true,
				Selector:         `button:has-text("Load More")`,
				MaxAttempts:      5,
				WaitSeconds:      10,
				PauseMillis:      3000,
				InterceptPauseMs: 1000,
				MaxIntercepts:    5,
			},
			Scroll: ScrollConfig{
				Enabled:     true,
				MaxAttempts: 10,
				PauseMillis: 2000,
			},
		},
		Selector: WatcherSelector{
			ListingCard:   "div[data-testid='jobCardElement']",
			CardLink:      SelectorConfig{Selector: "a", Attr: "href"},
			ContentMarker: "h1",
			Title:         []SelectorConfig{{Selector: "h1"}},
			PostedDate:    []SelectorConfig{{Selector: "div", Contains: "Posted on:"}},
			Description:   []SelectorConfig{{Selector: "div.ql-editor"}},
			DateMarker:    "Posted on:",
		},
	}
}

// LoadWatcherConfigはYAMLファイルからWatcherConfigを読み込みます。
// ファイルが存在しない場合は既定値を返し、found=falseを返します。
//
// args:
//
//	path: 設定ファイルのパス
//
// return:
//
//	WatcherConfig: 読み込んだ設定
//	bool: ファイルが見つかったか
//	error: 読み込み・解析・バリデーションのエラー
func LoadWatcherConfig(path string) (WatcherConfig, bool, error) {
	cfg := Defaults()

	f, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := Validate(cfg); err != nil {
				return WatcherConfig{}, false, err
			}
			return cfg, false, nil
		}
		return WatcherConfig{}, false, fmt.Errorf("設定ファイルを読み込めませんでした: %w", err)
	}

	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return WatcherConfig{}, true, fmt.Errorf("YAMLの解析に失敗しました: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return WatcherConfig{}, true, err
	}

	return cfg, true, nil
}

// Validateは構造体タグとカスタムルールで設定を検証します。
func Validate(cfg WatcherConfig) error {
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("設定のバリデーションに失敗しました: %w", err)
	}

	// カスタムバリデーション
	if !cfg.Exhaust.Click.Enabled && !cfg.Exhaust.Scroll.Enabled {
		return fmt.Errorf("exhaust.clickとexhaust.scrollの少なくとも一方を有効にしてください")
	}
	if cfg.Selector.CardLink.Attr == "" {
		return fmt.Errorf("selector.card_linkにはattrが必要です")
	}

	return nil
}

func (c WatcherConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c WatcherConfig) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSeconds) * time.Second
}

func (c WatcherConfig) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSeconds) * time.Second
}
