package analysis

import (
	"context"
	"math"
	"sort"

	"battwatch/domain/battery"

	"github.com/montanaflynn/stats"
)

// Ensemble weights for the three failure-risk signals: temporal trend,
// threshold rules, anomaly distance.
const (
	WeightTrend   = 0.5
	WeightRules   = 0.3
	WeightAnomaly = 0.2
)

// Operating bands outside which the rule signal starts penalizing.
const (
	minHealthyVoltage = 3.0
	maxHealthyTemp    = 40.0
	maxHealthyIR      = 0.15
)

// HealthScore is the per-battery failure-risk assessment shown on the
// prediction page.
type HealthScore struct {
	BatteryID    string  `json:"battery_id"`
	TrendScore   float64 `json:"trend_score"`
	RuleScore    float64 `json:"rule_score"`
	AnomalyScore float64 `json:"anomaly_score"`
	RiskPercent  float64 `json:"risk_percent"`
	RiskBand     string  `json:"risk_band"`
}

// Risk bands for the combined score.
const (
	BandLow      = "low"
	BandElevated = "elevated"
	BandHigh     = "high"
)

// ScoreBatteries assesses failure risk for every battery by combining
// three independent signals with fixed ensemble weights. Each signal
// is normalized to [0, 1] before weighting.
func ScoreBatteries(ctx context.Context, ds *battery.Dataset) []HealthScore {
	profiles := ProfileBatteries(ctx, ds)
	grouped := ds.ByBattery()

	fleet := fleetBaseline(ds)

	scores := make([]HealthScore, 0, len(profiles))
	for _, p := range profiles {
		obs := grouped[p.BatteryID]
		if len(obs) == 0 {
			continue
		}
		latest := obs[len(obs)-1]

		score := HealthScore{
			BatteryID:    p.BatteryID,
			TrendScore:   trendSignal(p),
			RuleScore:    ruleSignal(latest),
			AnomalyScore: anomalySignal(latest, fleet),
		}
		score.RiskPercent = (WeightTrend*score.TrendScore +
			WeightRules*score.RuleScore +
			WeightAnomaly*score.AnomalyScore) * 100
		score.RiskBand = riskBand(score.RiskPercent)
		scores = append(scores, score)
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].RiskPercent > scores[j].RiskPercent })
	return scores
}

func riskBand(riskPercent float64) string {
	switch {
	case riskPercent >= 60:
		return BandHigh
	case riskPercent >= 30:
		return BandElevated
	default:
		return BandLow
	}
}

// trendSignal maps degradation speed to [0, 1]: SOH below 70% or a
// steep negative slope saturates the signal.
func trendSignal(p BatteryProfile) float64 {
	signal := 0.0

	if !math.IsNaN(p.LatestSOH) && p.LatestSOH > 0 {
		// 100% SOH -> 0; 70% SOH -> 1
		signal = clamp01((100 - p.LatestSOH) / 30)
	}

	if p.SOHSlope < 0 {
		// Losing 0.5% SOH per cycle saturates the slope term.
		slopeTerm := clamp01(-p.SOHSlope / 0.5)
		if slopeTerm > signal {
			signal = slopeTerm
		}
	}

	if p.FadePercent > 0 {
		fadeTerm := clamp01(p.FadePercent / 30)
		if fadeTerm > signal {
			signal = fadeTerm
		}
	}

	return signal
}

// ruleSignal scores the latest observation against fixed operating
// bands. Each violated band contributes a third of the signal.
func ruleSignal(latest battery.Observation) float64 {
	violations := 0.0
	if !math.IsNaN(latest.Voltage) && latest.Voltage < minHealthyVoltage {
		violations++
	}
	if !math.IsNaN(latest.Temperature) && latest.Temperature > maxHealthyTemp {
		violations++
	}
	if !math.IsNaN(latest.InternalResistance) && latest.InternalResistance > maxHealthyIR {
		violations++
	}
	return violations / 3
}

type baseline struct {
	capMean, capStd float64
	ok              bool
}

func fleetBaseline(ds *battery.Dataset) baseline {
	values := ds.NumericColumn(battery.ColCapacity)
	if len(values) < 3 {
		return baseline{}
	}
	mean, _ := stats.Mean(values)
	std, _ := stats.StandardDeviation(values)
	if std == 0 {
		return baseline{}
	}
	return baseline{capMean: mean, capStd: std, ok: true}
}

// anomalySignal measures how far the latest capacity sits from the
// fleet distribution; three standard deviations saturates the signal.
func anomalySignal(latest battery.Observation, fleet baseline) float64 {
	if !fleet.ok || math.IsNaN(latest.Capacity) {
		return 0
	}
	z := math.Abs(latest.Capacity-fleet.capMean) / fleet.capStd
	return clamp01(z / 3)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
