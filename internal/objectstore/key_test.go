package objectstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPartitionKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		date     time.Time
		filename string
		want     string
	}{
		{
			name:     "zero padded month and day",
			prefix:   "predictit/raw",
			date:     time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
			filename: "predictit_markets_20260203_100000.json",
			want:     "predictit/raw/year=2026/month=02/day=03/predictit_markets_20260203_100000.json",
		},
		{
			name:     "double digit date",
			prefix:   "predictit/raw",
			date:     time.Date(2026, 11, 28, 0, 0, 0, 0, time.UTC),
			filename: "f.json",
			want:     "predictit/raw/year=2026/month=11/day=28/f.json",
		},
		{
			name:     "trailing slash on prefix trimmed",
			prefix:   "markets/",
			date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			filename: "f.json",
			want:     "markets/year=2025/month=01/day=01/f.json",
		},
		{
			name:     "filename stripped to base name",
			prefix:   "predictit/raw",
			date:     time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC),
			filename: "/tmp/etl_data/out.json",
			want:     "predictit/raw/year=2026/month=05/day=09/out.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartitionKey(tt.prefix, tt.date, tt.filename))
		})
	}
}

func TestPartitionKeyDeterministic(t *testing.T) {
	date := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	first := PartitionKey("p", date, "a.json")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, PartitionKey("p", date, "a.json"))
	}
}
