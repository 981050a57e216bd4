package analysis

import (
	"math"

	"battwatch/domain/battery"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// FeatureStats holds descriptive statistics for one dataset column.
type FeatureStats struct {
	Name         string  `json:"name"`
	SampleSize   int     `json:"sample_size"`
	MissingCount int     `json:"missing_count"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`

	// Relationship to the failure label, when the label is present.
	FailureCorr   float64 `json:"failure_corr"`
	FailurePValue float64 `json:"failure_p_value"`
	HasFailure    bool    `json:"has_failure"`
}

// numericColumns are the dataset columns profiled on the exploration
// page; identifiers and the label are excluded.
var numericColumns = []string{
	battery.ColCycle,
	battery.ColVoltage,
	battery.ColCurrent,
	battery.ColTemperature,
	battery.ColCapacity,
	battery.ColTime,
	battery.ColInternalResistance,
	battery.ColSOC,
	battery.ColSOH,
}

// ProfileFeatures computes descriptive statistics for every numeric
// column present in the dataset, plus each column's correlation with
// the failure label when the label column exists.
func ProfileFeatures(ds *battery.Dataset) []FeatureStats {
	var label []float64
	if ds.HasColumn(battery.ColFailure) {
		label = ds.Columns[battery.ColFailure]
	}

	results := make([]FeatureStats, 0, len(numericColumns))
	for _, col := range numericColumns {
		if !ds.HasColumn(col) {
			continue
		}
		fs := profileColumn(col, ds.Columns[col])
		if label != nil {
			fs.FailureCorr, fs.FailurePValue = CorrelationWithP(ds.Columns[col], label)
			fs.HasFailure = true
		}
		results = append(results, fs)
	}
	return results
}

func profileColumn(name string, raw []float64) FeatureStats {
	values := make([]float64, 0, len(raw))
	missing := 0
	for _, v := range raw {
		if math.IsNaN(v) {
			missing++
			continue
		}
		values = append(values, v)
	}

	fs := FeatureStats{
		Name:         name,
		SampleSize:   len(values),
		MissingCount: missing,
	}
	if len(values) == 0 {
		return fs
	}

	fs.Mean, _ = stats.Mean(values)
	fs.Median, _ = stats.Median(values)
	fs.StdDev, _ = stats.StandardDeviation(values)
	fs.Min, _ = stats.Min(values)
	fs.Max, _ = stats.Max(values)
	fs.Q25, _ = stats.Percentile(values, 25)
	fs.Q75, _ = stats.Percentile(values, 75)
	return fs
}

// CorrelationWithP computes the Pearson correlation between two
// columns and a two-sided p-value from the Student's t distribution.
// Rows where either value is NaN are dropped pairwise. Degenerate
// inputs return (0, 1).
func CorrelationWithP(x, y []float64) (float64, float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	px := make([]float64, 0, n)
	py := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		px = append(px, x[i])
		py = append(py, y[i])
	}
	if len(px) < 3 {
		return 0, 1
	}

	r, err := stats.Pearson(px, py)
	if err != nil || math.IsNaN(r) {
		return 0, 1
	}
	if r >= 1 || r <= -1 {
		return r, 0
	}

	df := float64(len(px) - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	if p > 1 {
		p = 1
	}
	return r, p
}
