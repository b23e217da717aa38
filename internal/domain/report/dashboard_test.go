package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewInventoryAlerts(t *testing.T) {
	alerts := NewInventoryAlerts(4, 1)
	assert.Equal(t, int64(5), alerts.TotalAlerts)
}

func TestNewAnalyticsWindow(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)

	// 22:30 UTC is already the next day in Nairobi (UTC+3)
	now := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)
	w := NewAnalyticsWindow(now, nairobi)

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, nairobi), w.TodayStart)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, nairobi), w.TomorrowStart)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, nairobi), w.WeekStart)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, nairobi), w.MonthStart)

	utc := NewAnalyticsWindow(now, nil)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), utc.TodayStart)
}
