package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostedDate(t *testing.T) {
	d := NewPostedDate(time.Date(2025, time.January, 3, 18, 30, 0, 0, time.Local))
	assert.True(t, d.IsKnown())
	assert.Equal(t, "01-03-2025", d.String())
	assert.True(t, d.IsSameDay(time.Date(2025, time.January, 3, 0, 1, 0, 0, time.Local)))
	assert.False(t, d.IsSameDay(time.Date(2025, time.January, 4, 0, 0, 0, 0, time.Local)))

	unknown := NewUnknownPostedDate()
	assert.False(t, unknown.IsKnown())
	assert.Equal(t, Unknown, unknown.String())
	assert.False(t, unknown.IsSameDay(time.Now()))
}

func TestNewJobRecord_DefaultsToUnknown(t *testing.T) {
	now := time.Now()
	rec := NewPartialJobRecord("https://example.com/jobs/1", now)

	assert.Equal(t, "https://example.com/jobs/1", rec.Link())
	assert.Equal(t, Unknown, rec.Title())
	assert.Equal(t, Unknown, rec.Description())
	assert.Equal(t, Unknown, rec.PostedDate().String())
	assert.Equal(t, now, rec.ScrapedAt())
}
