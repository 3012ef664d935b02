package usecase

import (
	"fmt"
	"net/url"

	"github.com/nrad-K/go-job-watcher/internal/config"
	"github.com/nrad-K/go-job-watcher/internal/infra"
	"github.com/nrad-K/go-job-watcher/internal/logger"
)

// LinkCollectorは、読み込み済みの一覧ページから詳細ページのURLを集めます。
type LinkCollector struct {
	targetURL string
	selector  config.WatcherSelector
	logger    logger.AppLogger
}

func NewLinkCollector(cfg *config.WatcherConfig, logger logger.AppLogger) *LinkCollector {
	return &LinkCollector{
		targetURL: cfg.TargetURL,
		selector:  cfg.Selector,
		logger:    logger,
	}
}

// Collectは、求人カードごとに詳細リンクを抽出し、最初に現れた順で重複のないURLを返します。
// リンクを持たないカードや解決できないリンクは警告を出してスキップします。
//
// return:
//
//	[]string: 絶対URLの一覧
//	error: ページの取得・解析に失敗した場合のエラー
func (c *LinkCollector) Collect(client infra.BrowserClient) ([]string, error) {
	html, err := client.GetHTML()
	if err != nil {
		return nil, fmt.Errorf("一覧ページのHTML取得に失敗しました: %w", err)
	}

	doc, err := infra.NewHTMLDocument(html)
	if err != nil {
		return nil, err
	}

	baseURL := c.targetURL
	if current, err := client.CurrentURL(); err == nil && current.IsAbs() {
		baseURL = current.String()
	}

	cards := doc.ExtractEach(c.selector.ListingCard, c.selector.CardLink)
	seen := make(map[string]struct{}, len(cards))
	links := make([]string, 0, len(cards))
	for _, card := range cards {
		if !card.Found {
			c.logger.Warn("求人カードにリンクがないためスキップします", "card", card.Index)
			continue
		}

		link, err := resolveURL(baseURL, card.Value)
		if err != nil {
			c.logger.Warn("リンクの解決に失敗したためスキップします", "card", card.Index, "href", card.Value, "error", err)
			continue
		}

		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	c.logger.Info("求人リンクを収集しました", "cards", len(cards), "links", len(links))
	return links, nil
}

// resolveURLは、与えられたURLをベースURLに対して解決し、絶対URLを返します。
// targetURLが既に絶対URLであればそれを返し、相対URLであればベースURLに解決します。
func resolveURL(baseURL, targetURL string) (string, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return "", fmt.Errorf("ターゲットURL %s のパースに失敗しました: %w", targetURL, err)
	}

	if parsed.IsAbs() {
		return parsed.String(), nil
	}

	parsedBase, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("ベースURL %s のパースに失敗しました: %w", baseURL, err)
	}

	return parsedBase.ResolveReference(parsed).String(), nil
}
