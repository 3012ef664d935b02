package infra

import (
	"testing"

	"github.com/nrad-K/go-job-watcher/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailFixture = `
<html><body>
  <h1>  Video   Editor </h1>
  <div class="meta">
    <div>Company: Acme</div>
    <div>Posted on: Today</div>
  </div>
  <div class="ql-editor"><p>Edit long-form videos.</p><p>Remote.</p></div>
  <span class="price">Budget ¥1,980 per video</span>
</body></html>`

func TestHTMLDocument_Extract(t *testing.T) {
	doc, err := NewHTMLDocument(detailFixture)
	require.NoError(t, err)

	tests := []struct {
		name    string
		locator config.SelectorConfig
		want    string
	}{
		{name: "text", locator: config.SelectorConfig{Selector: "h1"}, want: "Video Editor"},
		{name: "innermost contains", locator: config.SelectorConfig{Selector: "div", Contains: "Posted on:"}, want: "Posted on: Today"},
		{name: "block text", locator: config.SelectorConfig{Selector: "div.ql-editor"}, want: "Edit long-form videos.Remote."},
		{name: "regex", locator: config.SelectorConfig{Selector: ".price", Regex: `¥[\d,]+`}, want: "¥1,980"},
		{name: "attr missing", locator: config.SelectorConfig{Selector: "h1", Attr: "data-id"}, want: ""},
		{name: "no match", locator: config.SelectorConfig{Selector: "h2"}, want: ""},
		{name: "contains no match", locator: config.SelectorConfig{Selector: "div", Contains: "Deadline"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := doc.Extract(tt.locator)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTMLDocument_ExtractInvalidRegex(t *testing.T) {
	doc, err := NewHTMLDocument(detailFixture)
	require.NoError(t, err)

	_, err = doc.Extract(config.SelectorConfig{Selector: "h1", Regex: "("})
	assert.Error(t, err)
}

func TestHTMLDocument_ExtractEach(t *testing.T) {
	doc, err := NewHTMLDocument(`
<div class="card"><a href="/jobs/1">One</a></div>
<div class="card"><span>no link</span></div>
<div class="card"><a href=" https://example.com/jobs/2 ">Two</a></div>`)
	require.NoError(t, err)

	values := doc.ExtractEach("div.card", config.SelectorConfig{Selector: "a", Attr: "href"})
	require.Len(t, values, 3)
	assert.Equal(t, ScopedValue{Index: 0, Value: "/jobs/1", Found: true}, values[0])
	assert.Equal(t, ScopedValue{Index: 1, Value: "", Found: false}, values[1])
	assert.Equal(t, ScopedValue{Index: 2, Value: "https://example.com/jobs/2", Found: true}, values[2])
}
