package battery

import (
	"math"
	"sort"
)

// Column names of the combined NASA battery dataset. The failure
// column is the binary label; everything before it is a feature.
const (
	ColBatteryID          = "battery_id"
	ColCycle              = "cycle"
	ColVoltage            = "voltage"
	ColCurrent            = "current"
	ColTemperature        = "temperature"
	ColCapacity           = "capacity"
	ColTime               = "time"
	ColInternalResistance = "internal_resistance"
	ColSOC                = "SOC"
	ColSOH                = "SOH"
	ColFailure            = "failure"
)

// ExpectedColumns lists the canonical dataset schema in order.
var ExpectedColumns = []string{
	ColBatteryID,
	ColCycle,
	ColVoltage,
	ColCurrent,
	ColTemperature,
	ColCapacity,
	ColTime,
	ColInternalResistance,
	ColSOC,
	ColSOH,
	ColFailure,
}

// Observation is a single (battery unit, cycle) measurement row.
// Numeric fields that could not be parsed from the source file are NaN.
type Observation struct {
	BatteryID          string
	Cycle              int
	Voltage            float64
	Current            float64
	Temperature        float64
	Capacity           float64
	Time               float64
	InternalResistance float64
	SOC                float64
	SOH                float64
	Failure            bool
	HasFailure         bool // false when the failure column is absent
}

// Dataset holds a loaded tabular record set. Columns preserves every
// column seen in the source file, including ones outside the expected
// schema, keyed by header name.
type Dataset struct {
	Headers      []string
	Observations []Observation
	Columns      map[string][]float64
}

// HasColumn reports whether the dataset carries the named header.
func (d *Dataset) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// BatteryIDs returns the distinct battery identifiers in stable order.
func (d *Dataset) BatteryIDs() []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, obs := range d.Observations {
		if !seen[obs.BatteryID] {
			seen[obs.BatteryID] = true
			ids = append(ids, obs.BatteryID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ByBattery groups observations per battery, ordered by cycle.
func (d *Dataset) ByBattery() map[string][]Observation {
	grouped := make(map[string][]Observation)
	for _, obs := range d.Observations {
		grouped[obs.BatteryID] = append(grouped[obs.BatteryID], obs)
	}
	for id := range grouped {
		obs := grouped[id]
		sort.Slice(obs, func(i, j int) bool { return obs[i].Cycle < obs[j].Cycle })
		grouped[id] = obs
	}
	return grouped
}

// NumericColumn returns the values of a column with NaNs removed.
func (d *Dataset) NumericColumn(name string) []float64 {
	raw, ok := d.Columns[name]
	if !ok {
		return nil
	}
	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}
