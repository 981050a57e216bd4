package analysis

import (
	"context"
	"math"
	"sort"
	"sync"

	"battwatch/domain/battery"

	"golang.org/x/sync/semaphore"
)

// maxProfileWorkers bounds concurrent per-battery profiling.
const maxProfileWorkers = 8

// BatteryProfile summarizes one battery unit's degradation across its
// recorded cycles.
type BatteryProfile struct {
	BatteryID     string  `json:"battery_id"`
	CycleCount    int     `json:"cycle_count"`
	FirstCapacity float64 `json:"first_capacity"`
	LastCapacity  float64 `json:"last_capacity"`
	FadePercent   float64 `json:"fade_percent"`
	LatestSOH     float64 `json:"latest_soh"`
	SOHSlope      float64 `json:"soh_slope"`
	FailureCycles int     `json:"failure_cycles"`
}

// ProfileBatteries computes a degradation profile for every battery in
// the dataset. Batteries are profiled concurrently, bounded by a
// weighted semaphore.
func ProfileBatteries(ctx context.Context, ds *battery.Dataset) []BatteryProfile {
	grouped := ds.ByBattery()
	ids := ds.BatteryIDs()

	sem := semaphore.NewWeighted(maxProfileWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	profiles := make([]BatteryProfile, 0, len(ids))

	for _, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(id string, obs []battery.Observation) {
			defer wg.Done()
			defer sem.Release(1)

			profile := profileBattery(id, obs)
			mu.Lock()
			profiles = append(profiles, profile)
			mu.Unlock()
		}(id, grouped[id])
	}
	wg.Wait()

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].BatteryID < profiles[j].BatteryID })
	return profiles
}

func profileBattery(id string, obs []battery.Observation) BatteryProfile {
	profile := BatteryProfile{
		BatteryID:  id,
		CycleCount: len(obs),
	}
	if len(obs) == 0 {
		return profile
	}

	profile.FirstCapacity = firstValid(obs, func(o battery.Observation) float64 { return o.Capacity })
	profile.LastCapacity = lastValid(obs, func(o battery.Observation) float64 { return o.Capacity })
	profile.LatestSOH = lastValid(obs, func(o battery.Observation) float64 { return o.SOH })

	if profile.FirstCapacity > 0 && !math.IsNaN(profile.LastCapacity) {
		profile.FadePercent = (profile.FirstCapacity - profile.LastCapacity) / profile.FirstCapacity * 100
	}

	profile.SOHSlope = trendSlope(obs)

	for _, o := range obs {
		if o.Failure {
			profile.FailureCycles++
		}
	}
	return profile
}

// trendSlope fits SOH against cycle index by least squares and returns
// the per-cycle slope. Negative values mean the battery is degrading.
func trendSlope(obs []battery.Observation) float64 {
	var sumX, sumY, sumXY, sumXX float64
	n := 0.0
	for _, o := range obs {
		if math.IsNaN(o.SOH) {
			continue
		}
		x := float64(o.Cycle)
		sumX += x
		sumY += o.SOH
		sumXY += x * o.SOH
		sumXX += x * x
		n++
	}
	if n < 2 {
		return 0
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func firstValid(obs []battery.Observation, get func(battery.Observation) float64) float64 {
	for _, o := range obs {
		if v := get(o); !math.IsNaN(v) {
			return v
		}
	}
	return math.NaN()
}

func lastValid(obs []battery.Observation, get func(battery.Observation) float64) float64 {
	for i := len(obs) - 1; i >= 0; i-- {
		if v := get(obs[i]); !math.IsNaN(v) {
			return v
		}
	}
	return math.NaN()
}
