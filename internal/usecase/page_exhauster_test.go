package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/nrad-K/go-job-watcher/internal/config"
	"github.com/nrad-K/go-job-watcher/internal/infra"
	"github.com/nrad-K/go-job-watcher/internal/logger"
	"github.com/stretchr/testify/assert"
)

func exhaustConfig() config.ExhaustConfig {
	return config.Defaults().Exhaust
}

func TestPageExhauster_ClickStopsWhenControlUnavailable(t *testing.T) {
	client := newFakeBrowser(nil)
	client.clickResults = []error{nil, nil}

	cfg := exhaustConfig()
	cfg.Scroll.Enabled = false
	result := NewPageExhauster(cfg, logger.NewNop(), noPause).Exhaust(client)

	assert.Equal(t, 2, result.Clicks)
	assert.Equal(t, 3, client.clickCalls)
	assert.Equal(t, 0, client.scrolls)
}

func TestPageExhauster_ClickBudget(t *testing.T) {
	client := newFakeBrowser(nil)
	client.clickResults = make([]error, 10)

	cfg := exhaustConfig()
	cfg.Click.MaxAttempts = 3
	cfg.Scroll.Enabled = false
	result := NewPageExhauster(cfg, logger.NewNop(), noPause).Exhaust(client)

	assert.Equal(t, 3, result.Clicks)
	assert.Equal(t, 3, client.clickCalls)
}

func TestPageExhauster_InterceptedClicksAreNotCounted(t *testing.T) {
	client := newFakeBrowser(nil)
	client.clickResults = []error{infra.ErrClickIntercepted, infra.ErrClickIntercepted, nil, infra.ErrClickIntercepted, nil}

	var pauses []time.Duration
	cfg := exhaustConfig()
	cfg.Click.MaxAttempts = 2
	cfg.Scroll.Enabled = false
	result := NewPageExhauster(cfg, logger.NewNop(), func(d time.Duration) { pauses = append(pauses, d) }).Exhaust(client)

	assert.Equal(t, 2, result.Clicks)
	assert.Equal(t, 5, client.clickCalls)
	assert.Equal(t, []time.Duration{
		time.Second, time.Second, 3 * time.Second,
		time.Second, 3 * time.Second,
	}, pauses)
}

func TestPageExhauster_InterceptLimit(t *testing.T) {
	client := newFakeBrowser(nil)
	for i := 0; i < 20; i++ {
		client.clickResults = append(client.clickResults, infra.ErrClickIntercepted)
	}

	cfg := exhaustConfig()
	cfg.Click.MaxIntercepts = 2
	cfg.Scroll.Enabled = false
	result := NewPageExhauster(cfg, logger.NewNop(), noPause).Exhaust(client)

	assert.Equal(t, 0, result.Clicks)
	assert.Equal(t, 3, client.clickCalls)
}

func TestPageExhauster_OtherClickErrorEndsPhase(t *testing.T) {
	client := newFakeBrowser(nil)
	client.clickResults = []error{nil, errors.New("target closed"), nil}
	client.heights = []int{1000, 1000}

	result := NewPageExhauster(exhaustConfig(), logger.NewNop(), noPause).Exhaust(client)

	assert.Equal(t, 1, result.Clicks)
	assert.Equal(t, 2, client.clickCalls)
	assert.Equal(t, 1, result.Scrolls, "scroll phase still runs")
}

func TestPageExhauster_ScrollUntilStable(t *testing.T) {
	tests := []struct {
		name        string
		heights     []int
		maxAttempts int
		want        int
	}{
		{name: "stable immediately", heights: []int{1000}, maxAttempts: 10, want: 1},
		{name: "grows then stable", heights: []int{1000, 2000, 3000, 3000}, maxAttempts: 10, want: 3},
		{name: "budget exhausted", heights: []int{1, 2, 3, 4, 5, 6, 7, 8}, maxAttempts: 4, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeBrowser(nil)
			client.heights = tt.heights

			cfg := exhaustConfig()
			cfg.Click.Enabled = false
			cfg.Scroll.MaxAttempts = tt.maxAttempts
			result := NewPageExhauster(cfg, logger.NewNop(), noPause).Exhaust(client)

			assert.Equal(t, tt.want, result.Scrolls)
			assert.Equal(t, tt.want, client.scrolls)
			assert.Equal(t, 0, client.clickCalls)
		})
	}
}
