package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCount(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]any
		want    int64
		wantErr bool
	}{
		{name: "int64", rows: [][]any{{int64(42)}}, want: 42},
		{name: "int", rows: [][]any{{7}}, want: 7},
		{name: "float64", rows: [][]any{{float64(3)}}, want: 3},
		{name: "string", rows: [][]any{{"128"}}, want: 128},
		{name: "bytes", rows: [][]any{{[]byte("9")}}, want: 9},
		{name: "empty result", rows: nil, wantErr: true},
		{name: "non numeric string", rows: [][]any{{"abc"}}, wantErr: true},
		{name: "unexpected type", rows: [][]any{{struct{}{}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScanCount(tt.rows)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
