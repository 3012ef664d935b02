package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/nrad-K/go-job-watcher/internal/config"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ブラウザを実際に起動するため、-short では実行しません。
func TestBrowserClient_ListingPage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	cfg := config.Defaults()
	client, err := NewBrowserClient(&cfg)
	if err != nil {
		t.Skipf("playwright is not available: %v", err)
	}
	defer client.Close()

	listing := `<html><body style="margin:0">
<div data-testid="jobCardElement"><a href="/jobs/1">One</a></div>
<button id="more" disabled>Load More</button>
</body></html>`

	require.NoError(t, client.page.Route("**/*", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html"),
			Body:        listing,
		})
	}))

	require.NoError(t, client.Navigate("https://jobs.example.com/"))

	html, err := client.GetHTML()
	require.NoError(t, err)
	assert.Contains(t, html, "jobCardElement")

	current, err := client.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, "jobs.example.com", current.Host)

	err = client.ClickWhenReady("button.absent", 200*time.Millisecond)
	assert.True(t, errors.Is(err, ErrControlUnavailable), "got %v", err)

	err = client.WaitFor("h1", 200*time.Millisecond)
	assert.True(t, errors.Is(err, ErrRenderTimeout), "got %v", err)

	height, err := client.DocumentHeight()
	require.NoError(t, err)
	assert.Greater(t, height, 0)
	assert.NoError(t, client.ScrollToBottom())
}
