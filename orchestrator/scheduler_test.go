package orchestrator

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	tests := []struct {
		name         string
		now          time.Time
		hour, minute int
		want         time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2025, 8, 1, 6, 0, 0, 0, time.UTC),
			hour: 7, minute: 30,
			want: time.Date(2025, 8, 1, 7, 30, 0, 0, time.UTC),
		},
		{
			name: "already passed, tomorrow",
			now:  time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC),
			hour: 7, minute: 30,
			want: time.Date(2025, 8, 2, 7, 30, 0, 0, time.UTC),
		},
		{
			name: "exactly now, tomorrow",
			now:  time.Date(2025, 8, 1, 7, 30, 0, 0, time.UTC),
			hour: 7, minute: 30,
			want: time.Date(2025, 8, 2, 7, 30, 0, 0, time.UTC),
		},
		{
			name: "month rollover",
			now:  time.Date(2025, 8, 31, 23, 0, 0, 0, time.UTC),
			hour: 7, minute: 0,
			want: time.Date(2025, 9, 1, 7, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRun(tt.now, tt.hour, tt.minute)
			if !got.Equal(tt.want) {
				t.Errorf("NextRun = %v, want %v", got, tt.want)
			}
		})
	}
}
