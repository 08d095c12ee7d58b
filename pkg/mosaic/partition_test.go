package mosaic

import "testing"

func TestPartition(t *testing.T) {
	tests := []struct {
		name         string
		ratios       []float64
		start        int
		width        float64
		maxRowHeight float64
		wantCount    int
		wantTerminal bool
	}{
		{
			name:   "single item fits",
			ratios: []float64{2}, width: 400, maxRowHeight: 1000,
			wantCount: 1,
		},
		{
			name:   "grows until height fits",
			ratios: []float64{1, 1, 1}, width: 300, maxRowHeight: 150,
			wantCount: 2,
		},
		{
			name:   "first fit stops early",
			ratios: []float64{1, 1, 1, 1}, width: 300, maxRowHeight: 1000,
			wantCount: 1,
		},
		{
			name:   "remainder that fits is not terminal",
			ratios: []float64{1, 1}, width: 300, maxRowHeight: 150,
			wantCount: 2,
		},
		{
			name:   "remainder that never fits is terminal",
			ratios: []float64{1, 1, 1}, start: 2, width: 300, maxRowHeight: 150,
			wantCount: 1, wantTerminal: true,
		},
		{
			name:   "nothing fits",
			ratios: []float64{1, 1, 1}, width: 1000, maxRowHeight: 1,
			wantCount: 3, wantTerminal: true,
		},
		{
			name:   "start at end",
			ratios: []float64{1, 1}, start: 2, width: 300, maxRowHeight: 150,
			wantCount: 0, wantTerminal: true,
		},
		{
			name:   "empty",
			ratios: nil, width: 300, maxRowHeight: 150,
			wantCount: 0, wantTerminal: true,
		},
		{
			name:   "exact boundary accepted",
			ratios: []float64{0.5, 0.5, 1}, width: 200, maxRowHeight: 100,
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, terminal := Partition(tt.ratios, tt.start, tt.width, tt.maxRowHeight)
			if count != tt.wantCount || terminal != tt.wantTerminal {
				t.Errorf("Partition() = (%d, %v), want (%d, %v)", count, terminal, tt.wantCount, tt.wantTerminal)
			}
		})
	}
}
