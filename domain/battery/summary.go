package battery

// Summary holds the quick-stats metrics shown on the dashboard home
// page: total rows, distinct battery units, feature count and the
// failure-label ratio as a percentage.
type Summary struct {
	TotalRecords int     `json:"total_records"`
	BatteryUnits int     `json:"battery_units"`
	FeatureCount int     `json:"feature_count"`
	FailureRate  float64 `json:"failure_rate"`
}

// Summarize computes summary statistics for a loaded dataset.
// A dataset without the failure column reports a 0% failure rate
// rather than an error, and its full column count as features.
func Summarize(d *Dataset) Summary {
	summary := Summary{
		TotalRecords: len(d.Observations),
		BatteryUnits: len(d.BatteryIDs()),
		FeatureCount: len(d.Headers),
	}

	if !d.HasColumn(ColFailure) {
		return summary
	}

	// The label column is not a feature.
	summary.FeatureCount = len(d.Headers) - 1

	if len(d.Observations) == 0 {
		return summary
	}

	failures := 0
	for _, obs := range d.Observations {
		if obs.Failure {
			failures++
		}
	}
	summary.FailureRate = float64(failures) / float64(len(d.Observations)) * 100
	return summary
}
