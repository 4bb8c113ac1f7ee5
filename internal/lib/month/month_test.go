package month

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextResetDate(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "середина месяца",
			now:  time.Date(2026, time.May, 15, 13, 45, 0, 0, time.UTC),
			want: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "переход через год",
			now:  time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC),
			want: time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "первое число месяца",
			now:  time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextResetDate(tt.now))
		})
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysSince(now.UnixMilli(), now))
	assert.Equal(t, 0, DaysSince(now.Add(-time.Hour).UnixMilli(), now))
	assert.Equal(t, 1, DaysSince(now.AddDate(0, 0, -1).UnixMilli(), now))
	assert.Equal(t, 7, DaysSince(now.AddDate(0, 0, -7).UnixMilli(), now))
	// Метка из будущего обрезается до нуля.
	assert.Equal(t, 0, DaysSince(now.AddDate(0, 0, 3).UnixMilli(), now))
}
