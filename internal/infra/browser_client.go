package infra

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nrad-K/go-job-watcher/internal/config"
	"github.com/playwright-community/playwright-go"
)

var (
	// ErrControlUnavailableは、クリック対象が存在しないかクリック可能にならなかったことを示します。
	ErrControlUnavailable = errors.New("クリック対象が利用できません")
	// ErrClickInterceptedは、他の要素がクリックを遮ったことを示します。
	ErrClickIntercepted = errors.New("クリックが他の要素に遮られました")
	// ErrRenderTimeoutは、待機対象の要素が時間内に描画されなかったことを示します。
	ErrRenderTimeout = errors.New("要素の描画待機がタイムアウトしました")
)

// BrowserClientは、1サイクルで利用するブラウザ操作のインターフェースです。
type BrowserClient interface {
	Navigate(url string) error
	CurrentURL() (*url.URL, error)
	ClickWhenReady(selector string, wait time.Duration) error
	WaitFor(selector string, timeout time.Duration) error
	GetHTML() (string, error)
	ScrollToBottom() error
	DocumentHeight() (int, error)
	Close() error
}

// BrowserLauncherは、新しいブラウザセッションを起動します。
type BrowserLauncher func() (BrowserClient, error)

type browserClient struct {
	pw      *playwright.Playwright
	cfg     *config.WatcherConfig
	browser playwright.Browser
	page    playwright.Page
	context playwright.BrowserContext
}

// NewBrowserLauncherは、呼び出しごとにPlaywrightのセッションを起動するBrowserLauncherを返します。
func NewBrowserLauncher(cfg *config.WatcherConfig) BrowserLauncher {
	return func() (BrowserClient, error) {
		return NewBrowserClient(cfg)
	}
}

// NewBrowserClientは、Playwrightを用いたbrowserClientを生成します。
//
// args:
//
//	cfg: ウォッチャー設定
//
// return:
//
//	*browserClient: 生成されたクライアント
//	error: 失敗時のエラー
func NewBrowserClient(cfg *config.WatcherConfig) (*browserClient, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("playwrightの起動に失敗しました: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.EnableHeadless),
		Args:     []string{"--no-sandbox", "--disable-dev-shm-usage"},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("ブラウザの起動に失敗しました: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	}
	if cfg.UserAgent != "" {
		contextOptions.UserAgent = playwright.String(cfg.UserAgent)
	}
	context, err := browser.NewContext(contextOptions)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("ブラウザコンテキストの作成に失敗しました: %w", err)
	}

	client := &browserClient{
		pw:      pw,
		browser: browser,
		context: context,
		cfg:     cfg,
	}

	if err := setupResourceBlocking(context); err != nil {
		client.Close()
		return nil, fmt.Errorf("リソースブロックの設定に失敗しました: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ページの作成に失敗しました: %w", err)
	}
	client.page = page

	return client, nil
}

func setupResourceBlocking(context playwright.BrowserContext) error {
	return context.Route("**/*.{png,jpg,jpeg,gif,svg,woff,woff2,ttf,eot,otf}", func(route playwright.Route) {
		route.Abort()
	})
}

// Navigateは、指定したURLにブラウザを遷移させます。
func (b *browserClient) Navigate(url string) error {
	if _, err := b.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(b.cfg.NavigationTimeout().Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("%s へのナビゲーションに失敗しました: %w", url, err)
	}
	return nil
}

// ClickWhenReadyは、要素が表示されクリック可能になるまで最大waitだけ待ってクリックします。
// 要素が現れない・クリック可能にならない場合はErrControlUnavailable、
// 他の要素に遮られた場合はErrClickInterceptedを返します。
func (b *browserClient) ClickWhenReady(selector string, wait time.Duration) error {
	timeout := playwright.Float(float64(wait.Milliseconds()))
	locator := b.page.Locator(selector).First()

	if err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: timeout,
	}); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return fmt.Errorf("%s: %w", selector, ErrControlUnavailable)
		}
		return fmt.Errorf("セレクター '%s' の可視状態待機に失敗しました: %w", selector, err)
	}

	if err := locator.Click(playwright.LocatorClickOptions{Timeout: timeout}); err != nil {
		if isInterceptedClick(err) {
			return fmt.Errorf("%s: %w", selector, ErrClickIntercepted)
		}
		if errors.Is(err, playwright.ErrTimeout) {
			return fmt.Errorf("%s: %w", selector, ErrControlUnavailable)
		}
		return fmt.Errorf("%sのクリックに失敗しました: %w", selector, err)
	}
	return nil
}

// Playwrightは遮断されたクリックを再試行し、タイムアウト時のメッセージに理由を含めます。
func isInterceptedClick(err error) bool {
	return strings.Contains(err.Error(), "intercepts pointer events")
}

// WaitForは、セレクタに一致する要素がDOMに現れるまで待機します。
func (b *browserClient) WaitFor(selector string, timeout time.Duration) error {
	err := b.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return fmt.Errorf("%s: %w", selector, ErrRenderTimeout)
		}
		return fmt.Errorf("セレクター '%s' の待機に失敗しました: %w", selector, err)
	}
	return nil
}

// GetHTMLは、現在のページの描画済みHTMLを取得します。
func (b *browserClient) GetHTML() (string, error) {
	html, err := b.page.Content()
	if err != nil {
		return "", fmt.Errorf("ページコンテンツの取得に失敗しました: %w", err)
	}
	return html, nil
}

// ScrollToBottomは、ドキュメントの末尾までスクロールします。
func (b *browserClient) ScrollToBottom() error {
	if _, err := b.page.Evaluate("() => window.scrollTo(0, document.body.scrollHeight)"); err != nil {
		return fmt.Errorf("スクロールに失敗しました: %w", err)
	}
	return nil
}

// DocumentHeightは、現在のドキュメントの高さを返します。
func (b *browserClient) DocumentHeight() (int, error) {
	result, err := b.page.Evaluate("() => document.body.scrollHeight")
	if err != nil {
		return 0, fmt.Errorf("ドキュメントの高さの取得に失敗しました: %w", err)
	}

	switch h := result.(type) {
	case int:
		return h, nil
	case int64:
		return int(h), nil
	case float64:
		return int(h), nil
	default:
		return 0, fmt.Errorf("想定外のドキュメントの高さです: %v", result)
	}
}

// CurrentURLは、現在のページのURLを返します。
func (b *browserClient) CurrentURL() (*url.URL, error) {
	rawURL := b.page.URL()
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("現在のURLのパースに失敗しました: %w", err)
	}
	return parsed, nil
}

// Closeは、ブラウザとPlaywrightインスタンスを閉じます。
// 途中で失敗しても残りのリソースの解放を続けます。
func (b *browserClient) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ブラウザコンテキストのクローズに失敗しました: %w", err))
		}
	}

	if err := b.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("ブラウザを閉じれませんでした: %w", err))
	}

	if err := b.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("playwrightの停止に失敗しました: %w", err))
	}
	return errors.Join(errs...)
}
