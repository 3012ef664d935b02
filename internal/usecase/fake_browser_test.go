package usecase

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/nrad-K/go-job-watcher/internal/infra"
)

// fakeBrowserは、URLごとに用意したHTMLを返すBrowserClientです。
type fakeBrowser struct {
	pages   map[string]string
	current string

	// URLごとに、Navigate/WaitForが順に返すエラー。尽きたらnilを返します。
	navErrs  map[string][]error
	waitErrs map[string][]error

	// ClickWhenReadyが順に返す結果。尽きたらErrControlUnavailableを返します。
	clickResults []error
	// DocumentHeightが順に返す値。尽きたら最後の値を返し続けます。
	heights []int

	panicOnHTML bool

	navigations []string
	clickCalls  int
	scrolls     int
	heightCalls int
	closed      bool
}

func newFakeBrowser(pages map[string]string) *fakeBrowser {
	return &fakeBrowser{
		pages:    pages,
		navErrs:  map[string][]error{},
		waitErrs: map[string][]error{},
		heights:  []int{1000},
	}
}

var _ infra.BrowserClient = (*fakeBrowser)(nil)

func (f *fakeBrowser) Navigate(u string) error {
	f.navigations = append(f.navigations, u)
	if errs := f.navErrs[u]; len(errs) > 0 {
		f.navErrs[u] = errs[1:]
		if errs[0] != nil {
			return errs[0]
		}
	}
	if _, ok := f.pages[u]; !ok {
		return fmt.Errorf("no page for %s", u)
	}
	f.current = u
	return nil
}

func (f *fakeBrowser) CurrentURL() (*url.URL, error) {
	return url.Parse(f.current)
}

func (f *fakeBrowser) ClickWhenReady(selector string, wait time.Duration) error {
	f.clickCalls++
	if len(f.clickResults) == 0 {
		return fmt.Errorf("%s: %w", selector, infra.ErrControlUnavailable)
	}
	err := f.clickResults[0]
	f.clickResults = f.clickResults[1:]
	return err
}

func (f *fakeBrowser) WaitFor(selector string, timeout time.Duration) error {
	if errs := f.waitErrs[f.current]; len(errs) > 0 {
		f.waitErrs[f.current] = errs[1:]
		return errs[0]
	}
	return nil
}

func (f *fakeBrowser) GetHTML() (string, error) {
	if f.panicOnHTML {
		panic("boom")
	}
	html, ok := f.pages[f.current]
	if !ok {
		return "", errors.New("no page loaded")
	}
	return html, nil
}

func (f *fakeBrowser) ScrollToBottom() error {
	f.scrolls++
	return nil
}

func (f *fakeBrowser) DocumentHeight() (int, error) {
	f.heightCalls++
	if f.heightCalls <= len(f.heights) {
		return f.heights[f.heightCalls-1], nil
	}
	return f.heights[len(f.heights)-1], nil
}

func (f *fakeBrowser) Close() error {
	f.closed = true
	return nil
}

func noPause(time.Duration) {}
