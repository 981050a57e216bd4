package analysis

import (
	"context"
	"math"
	"testing"

	"battwatch/domain/battery"
)

func TestEnsembleWeightsSumToOne(t *testing.T) {
	total := WeightTrend + WeightRules + WeightAnomaly
	if math.Abs(total-1.0) > 1e-9 {
		t.Errorf("weights sum to %f, want 1.0", total)
	}
}

func TestRiskBand(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, BandLow},
		{29.9, BandLow},
		{30, BandElevated},
		{59.9, BandElevated},
		{60, BandHigh},
		{100, BandHigh},
	}
	for _, tt := range tests {
		if got := riskBand(tt.percent); got != tt.want {
			t.Errorf("riskBand(%.1f) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}

func TestRuleSignal(t *testing.T) {
	tests := []struct {
		name string
		obs  battery.Observation
		want float64
	}{
		{
			name: "all within bands",
			obs:  battery.Observation{Voltage: 3.7, Temperature: 25, InternalResistance: 0.05},
			want: 0,
		},
		{
			name: "low voltage",
			obs:  battery.Observation{Voltage: 2.8, Temperature: 25, InternalResistance: 0.05},
			want: 1.0 / 3,
		},
		{
			name: "all bands violated",
			obs:  battery.Observation{Voltage: 2.5, Temperature: 45, InternalResistance: 0.3},
			want: 1,
		},
		{
			name: "NaN fields do not count",
			obs:  battery.Observation{Voltage: math.NaN(), Temperature: math.NaN(), InternalResistance: math.NaN()},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ruleSignal(tt.obs); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ruleSignal = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestScoreBatteriesRanksDegradedHigher(t *testing.T) {
	healthy := fadingBattery("B0005", 50, 2.0, 1.95)
	degraded := fadingBattery("B0006", 50, 2.0, 1.2)
	ds := datasetFrom(healthy, degraded)

	scores := ScoreBatteries(context.Background(), ds)
	if len(scores) != 2 {
		t.Fatalf("scores = %d, want 2", len(scores))
	}
	if scores[0].BatteryID != "B0006" {
		t.Errorf("highest risk = %s, want B0006 (degraded unit)", scores[0].BatteryID)
	}
	if scores[0].RiskPercent <= scores[1].RiskPercent {
		t.Errorf("degraded risk %.1f not above healthy risk %.1f",
			scores[0].RiskPercent, scores[1].RiskPercent)
	}
	for _, s := range scores {
		if s.RiskPercent < 0 || s.RiskPercent > 100 {
			t.Errorf("risk for %s = %f, want within [0, 100]", s.BatteryID, s.RiskPercent)
		}
		if s.RiskBand == "" {
			t.Errorf("risk band for %s is empty", s.BatteryID)
		}
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(-0.5) != 0 {
		t.Error("negative value not clamped to 0")
	}
	if clamp01(1.5) != 1 {
		t.Error("value above 1 not clamped")
	}
	if clamp01(0.42) != 0.42 {
		t.Error("in-range value changed")
	}
}
