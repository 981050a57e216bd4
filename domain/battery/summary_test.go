package battery

import (
	"math"
	"testing"
)

func obs(id string, cycle int, failure bool) Observation {
	return Observation{BatteryID: id, Cycle: cycle, Failure: failure, HasFailure: true}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		dataset      *Dataset
		wantRecords  int
		wantUnits    int
		wantFeatures int
		wantRate     float64
	}{
		{
			name: "labeled dataset",
			dataset: &Dataset{
				Headers: ExpectedColumns,
				Observations: []Observation{
					obs("B0005", 1, false),
					obs("B0005", 2, true),
					obs("B0006", 1, false),
					obs("B0007", 1, true),
				},
			},
			wantRecords:  4,
			wantUnits:    3,
			wantFeatures: 10,
			wantRate:     50,
		},
		{
			name: "missing failure column reports zero rate",
			dataset: &Dataset{
				Headers: ExpectedColumns[:10],
				Observations: []Observation{
					{BatteryID: "B0005", Cycle: 1},
					{BatteryID: "B0006", Cycle: 1},
				},
			},
			wantRecords:  2,
			wantUnits:    2,
			wantFeatures: 10,
			wantRate:     0,
		},
		{
			name:         "empty dataset",
			dataset:      &Dataset{Headers: ExpectedColumns},
			wantRecords:  0,
			wantUnits:    0,
			wantFeatures: 10,
			wantRate:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.dataset)

			if got.TotalRecords != tt.wantRecords {
				t.Errorf("TotalRecords = %d, want %d", got.TotalRecords, tt.wantRecords)
			}
			if got.BatteryUnits != tt.wantUnits {
				t.Errorf("BatteryUnits = %d, want %d", got.BatteryUnits, tt.wantUnits)
			}
			if got.FeatureCount != tt.wantFeatures {
				t.Errorf("FeatureCount = %d, want %d", got.FeatureCount, tt.wantFeatures)
			}
			if math.Abs(got.FailureRate-tt.wantRate) > 1e-9 {
				t.Errorf("FailureRate = %f, want %f", got.FailureRate, tt.wantRate)
			}
		})
	}
}

func TestByBatteryOrdersByCycle(t *testing.T) {
	ds := &Dataset{
		Observations: []Observation{
			obs("B0005", 3, false),
			obs("B0005", 1, false),
			obs("B0005", 2, false),
		},
	}

	grouped := ds.ByBattery()
	cycles := []int{}
	for _, o := range grouped["B0005"] {
		cycles = append(cycles, o.Cycle)
	}

	for i := 1; i < len(cycles); i++ {
		if cycles[i] < cycles[i-1] {
			t.Fatalf("cycles not sorted: %v", cycles)
		}
	}
}

func TestNumericColumnDropsNaN(t *testing.T) {
	ds := &Dataset{
		Headers: []string{ColCapacity},
		Columns: map[string][]float64{
			ColCapacity: {1.8, math.NaN(), 1.7},
		},
	}

	values := ds.NumericColumn(ColCapacity)
	if len(values) != 2 {
		t.Fatalf("expected 2 values after NaN drop, got %d", len(values))
	}
}
