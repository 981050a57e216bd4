package analysis

import (
	"context"
	"math"
	"testing"

	"battwatch/domain/battery"
)

// fadingBattery builds observations with capacity and SOH declining
// linearly over the given number of cycles.
func fadingBattery(id string, cycles int, startCap, endCap float64) []battery.Observation {
	obs := make([]battery.Observation, 0, cycles)
	for i := 0; i < cycles; i++ {
		frac := float64(i) / float64(cycles-1)
		capacity := startCap + (endCap-startCap)*frac
		obs = append(obs, battery.Observation{
			BatteryID: id,
			Cycle:     i + 1,
			Capacity:  capacity,
			SOH:       capacity / startCap * 100,
			Voltage:   3.7,
		})
	}
	return obs
}

func datasetFrom(groups ...[]battery.Observation) *battery.Dataset {
	ds := &battery.Dataset{
		Headers: battery.ExpectedColumns,
		Columns: map[string][]float64{},
	}
	for _, obs := range groups {
		for _, o := range obs {
			ds.Observations = append(ds.Observations, o)
			ds.Columns[battery.ColCapacity] = append(ds.Columns[battery.ColCapacity], o.Capacity)
		}
	}
	return ds
}

func TestProfileBattery(t *testing.T) {
	obs := fadingBattery("B0005", 100, 2.0, 1.4)
	profile := profileBattery("B0005", obs)

	if profile.CycleCount != 100 {
		t.Errorf("CycleCount = %d, want 100", profile.CycleCount)
	}
	if math.Abs(profile.FirstCapacity-2.0) > 1e-9 {
		t.Errorf("FirstCapacity = %f, want 2.0", profile.FirstCapacity)
	}
	if math.Abs(profile.LastCapacity-1.4) > 1e-9 {
		t.Errorf("LastCapacity = %f, want 1.4", profile.LastCapacity)
	}
	if math.Abs(profile.FadePercent-30.0) > 1e-6 {
		t.Errorf("FadePercent = %f, want 30.0", profile.FadePercent)
	}
	if profile.SOHSlope >= 0 {
		t.Errorf("SOHSlope = %f, want negative for a fading battery", profile.SOHSlope)
	}
}

func TestProfileBatteryCountsFailureCycles(t *testing.T) {
	obs := fadingBattery("B0006", 10, 2.0, 1.8)
	obs[8].Failure = true
	obs[9].Failure = true

	profile := profileBattery("B0006", obs)
	if profile.FailureCycles != 2 {
		t.Errorf("FailureCycles = %d, want 2", profile.FailureCycles)
	}
}

func TestProfileBatterySkipsNaNCapacity(t *testing.T) {
	obs := []battery.Observation{
		{BatteryID: "B0007", Cycle: 1, Capacity: math.NaN(), SOH: math.NaN()},
		{BatteryID: "B0007", Cycle: 2, Capacity: 1.9, SOH: 95},
		{BatteryID: "B0007", Cycle: 3, Capacity: 1.8, SOH: 90},
	}
	profile := profileBattery("B0007", obs)

	if math.Abs(profile.FirstCapacity-1.9) > 1e-9 {
		t.Errorf("FirstCapacity = %f, want 1.9 (NaN row skipped)", profile.FirstCapacity)
	}
	if math.Abs(profile.LatestSOH-90) > 1e-9 {
		t.Errorf("LatestSOH = %f, want 90", profile.LatestSOH)
	}
}

func TestProfileBatteriesSortedByID(t *testing.T) {
	ds := datasetFrom(
		fadingBattery("B0018", 20, 1.8, 1.5),
		fadingBattery("B0005", 20, 2.0, 1.7),
		fadingBattery("B0006", 20, 1.9, 1.6),
	)

	profiles := ProfileBatteries(context.Background(), ds)
	if len(profiles) != 3 {
		t.Fatalf("profiles = %d, want 3", len(profiles))
	}
	wantOrder := []string{"B0005", "B0006", "B0018"}
	for i, want := range wantOrder {
		if profiles[i].BatteryID != want {
			t.Errorf("profiles[%d] = %s, want %s", i, profiles[i].BatteryID, want)
		}
	}
}

func TestTrendSlopeFlatSeries(t *testing.T) {
	obs := []battery.Observation{
		{Cycle: 1, SOH: 100},
		{Cycle: 2, SOH: 100},
		{Cycle: 3, SOH: 100},
	}
	if slope := trendSlope(obs); slope != 0 {
		t.Errorf("slope = %f, want 0 for a flat series", slope)
	}
}
